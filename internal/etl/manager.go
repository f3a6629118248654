package etl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"etlcli/internal/infrastructure"
)

// Manager runs stages sequentially, stopping at the first failure.
type Manager struct {
	stages []Stage
	tracer trace.Tracer
	logger *slog.Logger
}

// NewManager creates a manager for the given stages.
func NewManager(tracer trace.Tracer, logger *slog.Logger, stages ...Stage) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		stages: stages,
		tracer: tracer,
		logger: infrastructure.WithComponent(logger, "pipeline"),
	}
}

// Run executes each stage in order against the shared state. The returned
// error carries the ID of the stage that failed.
func (m *Manager) Run(ctx context.Context, state *State) error {
	runStart := time.Now()
	m.logger.InfoContext(ctx, "Pipeline run started",
		slog.String("run_id", state.RunID),
		slog.Int("stage_count", len(m.stages)))

	for _, stage := range m.stages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline cancelled before stage %s: %w", stage.ID(), err)
		}

		if err := stage.Validate(state); err != nil {
			return fmt.Errorf("stage %s validation failed: %w", stage.ID(), err)
		}

		if err := m.runStage(ctx, stage, state); err != nil {
			return fmt.Errorf("stage %s failed: %w", stage.ID(), err)
		}
	}

	m.logger.InfoContext(ctx, "Pipeline run completed",
		slog.String("run_id", state.RunID),
		slog.Duration("duration", time.Since(runStart)))
	return nil
}

func (m *Manager) runStage(ctx context.Context, stage Stage, state *State) error {
	stageCtx := ctx
	var span trace.Span
	if m.tracer != nil {
		stageCtx, span = m.tracer.Start(ctx, "stage."+stage.ID(),
			trace.WithAttributes(
				attribute.String("stage.id", stage.ID()),
				attribute.String("stage.name", stage.Name()),
				attribute.String("run.id", state.RunID),
			))
		defer span.End()
	}

	start := time.Now()
	m.logger.InfoContext(stageCtx, "Stage started",
		slog.String("stage", stage.ID()))

	err := stage.Execute(stageCtx, state)
	duration := time.Since(start)

	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		m.logger.ErrorContext(stageCtx, "Stage failed",
			slog.String("stage", stage.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return err
	}

	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
	m.logger.InfoContext(stageCtx, "Stage completed",
		slog.String("stage", stage.ID()),
		slog.Duration("duration", duration))
	return nil
}
