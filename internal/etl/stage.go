package etl

import "context"

// Stage is a single pipeline step.
type Stage interface {
	// ID returns the unique identifier for this stage
	ID() string

	// Name returns the human-readable name for this stage
	Name() string

	// Validate checks if the stage can be executed with the current state
	Validate(state *State) error

	// Execute runs the stage with the given context and run state
	Execute(ctx context.Context, state *State) error
}

// BaseStage provides the identity plumbing for stage implementations.
type BaseStage struct {
	id   string
	name string
}

// NewBaseStage creates a new base stage
func NewBaseStage(id, name string) BaseStage {
	return BaseStage{id: id, name: name}
}

// ID returns the stage ID
func (b *BaseStage) ID() string {
	return b.id
}

// Name returns the stage name
func (b *BaseStage) Name() string {
	return b.name
}

// Validate provides a default validation that always passes
func (b *BaseStage) Validate(state *State) error {
	return nil
}
