package etl

import (
	"etlcli/internal/config"
	"etlcli/internal/dataprocessing"
	"etlcli/internal/geodata"
	"etlcli/pkg/contracts/domain"
)

// State carries the data a run accumulates as stages execute. Stages read
// what earlier stages produced and add their own results; there is no
// concurrent access within a run.
type State struct {
	Cfg   *config.Config
	Paths *config.Paths
	RunID string

	// Typed input tables.
	Orders []domain.Order
	Users  []domain.User

	// Cleaning results.
	OrdersClean []domain.Order
	Missingness []dataprocessing.MissingnessRow

	// Analysis results.
	Analytics []domain.AnalyticsRow
	Stats     domain.JoinStats
	Revenue   []dataprocessing.RevenueRow

	// Listings results.
	Listings   []domain.Listing
	AreaPrices []geodata.AreaPrice

	// Outputs maps a short label to the absolute path written.
	Outputs map[string]string
}

// NewState creates a run state for the given configuration.
func NewState(cfg *config.Config, paths *config.Paths, runID string) *State {
	return &State{
		Cfg:     cfg,
		Paths:   paths,
		RunID:   runID,
		Outputs: make(map[string]string),
	}
}

// RecordOutput registers a written artifact under a short label.
func (s *State) RecordOutput(label, path string) {
	s.Outputs[label] = path
}
