package etl

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"etlcli/internal/dataprocessing"
	"etlcli/internal/errors"
	"etlcli/internal/exporter"
	"etlcli/internal/geodata"
	"etlcli/internal/validation"
	"etlcli/pkg/contracts/domain"
)

// LoadListingsStage parses and normalizes the property listings CSV.
type LoadListingsStage struct {
	BaseStage
}

// NewLoadListingsStage creates the listings loading stage.
func NewLoadListingsStage() *LoadListingsStage {
	return &LoadListingsStage{BaseStage: NewBaseStage("load_listings", "Load Listings CSV")}
}

func (s *LoadListingsStage) Execute(ctx context.Context, state *State) error {
	listings, err := dataprocessing.ParseListingsCSV(state.Paths.ListingsCSV)
	if err != nil {
		return err
	}
	if err := validation.NonEmpty("listings", len(listings)); err != nil {
		return err
	}

	state.Listings = geodata.CleanListings(listings)
	slog.InfoContext(ctx, "Loaded listings",
		slog.Int("rows", len(state.Listings)))
	return nil
}

// EnrichListingsStage resolves each listing's area through the geodata
// provider chain.
type EnrichListingsStage struct {
	BaseStage
	client *geodata.Client
}

// NewEnrichListingsStage creates the area enrichment stage.
func NewEnrichListingsStage(client *geodata.Client) *EnrichListingsStage {
	return &EnrichListingsStage{
		BaseStage: NewBaseStage("enrich_listings", "Enrich Listings with Areas"),
		client:    client,
	}
}

func (s *EnrichListingsStage) Validate(state *State) error {
	if state.Listings == nil {
		return errors.NewValidationError("enrichment needs loaded listings")
	}
	return nil
}

func (s *EnrichListingsStage) Execute(ctx context.Context, state *State) error {
	index, err := geodata.BuildAreaIndex(ctx, s.client)
	if err != nil {
		return err
	}

	geodata.ResolveMissing(ctx, s.client, index, state.Listings, state.Cfg.Geodata.MaxConcurrent)
	state.Listings = geodata.AssignAreas(state.Listings, index)

	unknown := lo.CountBy(state.Listings, func(l domain.Listing) bool {
		return l.Area == domain.AreaUnknown
	})
	slog.InfoContext(ctx, "Assigned areas",
		slog.Int("listings", len(state.Listings)),
		slog.Int("unknown_area", unknown))
	return nil
}

// PriceStage flags price outliers, winsorizes prices and aggregates the
// average winsorized price per area.
type PriceStage struct {
	BaseStage
}

// NewPriceStage creates the price analysis stage.
func NewPriceStage() *PriceStage {
	return &PriceStage{BaseStage: NewBaseStage("price_analysis", "Analyze Listing Prices")}
}

func (s *PriceStage) Validate(state *State) error {
	if state.Listings == nil {
		return errors.NewValidationError("price analysis needs loaded listings")
	}
	return nil
}

func (s *PriceStage) Execute(ctx context.Context, state *State) error {
	cfg := state.Cfg.ETL
	state.Listings = geodata.FlagPriceOutliers(state.Listings, cfg.OutlierK)

	outliers := lo.CountBy(state.Listings, func(l domain.Listing) bool {
		return l.PriceOutlier
	})
	slog.InfoContext(ctx, "Flagged price outliers", slog.Int("outliers", outliers))

	state.Listings = geodata.WinsorizePrices(state.Listings, cfg.WinsorLo, cfg.WinsorHi)
	state.AreaPrices = geodata.AvgPriceByArea(state.Listings)
	return nil
}

// WriteChartStage renders the average-price-by-area bar chart.
type WriteChartStage struct {
	BaseStage
}

// NewWriteChartStage creates the chart export stage.
func NewWriteChartStage() *WriteChartStage {
	return &WriteChartStage{BaseStage: NewBaseStage("write_chart", "Write Price Chart")}
}

func (s *WriteChartStage) Validate(state *State) error {
	if state.AreaPrices == nil {
		return errors.NewValidationError("chart export needs area price aggregates")
	}
	return nil
}

func (s *WriteChartStage) Execute(ctx context.Context, state *State) error {
	labels := make([]string, len(state.AreaPrices))
	values := make([]float64, len(state.AreaPrices))
	for i, ap := range state.AreaPrices {
		labels[i] = string(ap.Area)
		values[i] = ap.AvgPrice
	}

	path := state.Paths.PriceByLocationHTML
	if err := exporter.WriteBarChart(path, "Average Winsorized Price by Area", "avg_price_winsorized", labels, values); err != nil {
		return err
	}
	state.RecordOutput("price_by_location", path)
	return nil
}
