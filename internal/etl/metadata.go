package etl

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"etlcli/internal/errors"
	"etlcli/pkg/contracts"
)

// RunMetadata is the _run_meta.json payload describing one pipeline run.
type RunMetadata struct {
	RunID        string                `json:"run_id"`
	Version      contracts.VersionInfo `json:"version"`
	TimestampUTC time.Time             `json:"timestamp_utc"`
	DurationSec  float64               `json:"duration_seconds"`

	Rows struct {
		OrdersRaw   int `json:"orders_raw"`
		OrdersClean int `json:"orders_clean"`
		Users       int `json:"users"`
		Analytics   int `json:"analytics"`
		Listings    int `json:"listings"`
	} `json:"rows"`

	MissingCreatedAt int     `json:"missing_created_at"`
	CountryMatchRate float64 `json:"country_match_rate"`

	Outputs map[string]string `json:"outputs"`
}

// WriteMetadataStage records what the run read, produced and measured.
type WriteMetadataStage struct {
	BaseStage
	started time.Time
}

// NewWriteMetadataStage creates the run metadata stage. started is the run
// start time used to compute the duration.
func NewWriteMetadataStage(started time.Time) *WriteMetadataStage {
	return &WriteMetadataStage{
		BaseStage: NewBaseStage("write_metadata", "Write Run Metadata"),
		started:   started,
	}
}

func (s *WriteMetadataStage) Execute(ctx context.Context, state *State) error {
	now := time.Now().UTC()

	meta := RunMetadata{
		RunID:        state.RunID,
		Version:      contracts.GetVersionInfo(),
		TimestampUTC: now,
		DurationSec:  now.Sub(s.started).Seconds(),

		MissingCreatedAt: state.Stats.MissingCreatedAt,
		CountryMatchRate: state.Stats.CountryMatchRate,
		Outputs:          state.Outputs,
	}
	meta.Rows.OrdersRaw = len(state.Orders)
	meta.Rows.OrdersClean = len(state.OrdersClean)
	meta.Rows.Users = len(state.Users)
	meta.Rows.Analytics = len(state.Analytics)
	meta.Rows.Listings = len(state.Listings)

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errors.NewStorageError("failed to marshal run metadata", err)
	}

	path := state.Paths.RunMetaJSON
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewStorageError("failed to write run metadata", err)
	}
	state.RecordOutput("run_meta", path)

	slog.InfoContext(ctx, "Wrote run metadata",
		slog.String("file_path", path),
		slog.String("run_id", state.RunID))
	return nil
}
