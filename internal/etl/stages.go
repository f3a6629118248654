package etl

import (
	"context"
	"log/slog"

	"etlcli/internal/dataprocessing"
	"etlcli/internal/errors"
	"etlcli/internal/exporter"
	"etlcli/internal/validation"
	"etlcli/pkg/contracts/domain"
)

// LoadRawStage parses the raw CSV inputs and enforces the column types.
type LoadRawStage struct {
	BaseStage
}

// NewLoadRawStage creates the raw CSV loading stage.
func NewLoadRawStage() *LoadRawStage {
	return &LoadRawStage{BaseStage: NewBaseStage("load_raw", "Load Raw CSVs")}
}

func (s *LoadRawStage) Execute(ctx context.Context, state *State) error {
	orders, err := dataprocessing.ParseOrdersCSV(state.Paths.OrdersCSV)
	if err != nil {
		return err
	}
	users, err := dataprocessing.ParseUsersCSV(state.Paths.UsersCSV)
	if err != nil {
		return err
	}

	state.Orders = dataprocessing.EnforceOrderSchema(orders)
	state.Users = dataprocessing.EnforceUserSchema(users)

	slog.InfoContext(ctx, "Loaded raw inputs",
		slog.Int("orders", len(state.Orders)),
		slog.Int("users", len(state.Users)))
	return nil
}

// LoadProcessedStage reads the cleaned Parquet tables written by an earlier
// run instead of the raw CSVs.
type LoadProcessedStage struct {
	BaseStage
}

// NewLoadProcessedStage creates the Parquet loading stage.
func NewLoadProcessedStage() *LoadProcessedStage {
	return &LoadProcessedStage{BaseStage: NewBaseStage("load_processed", "Load Processed Tables")}
}

func (s *LoadProcessedStage) Execute(ctx context.Context, state *State) error {
	orders, err := exporter.ReadOrders(ctx, state.Paths.OrdersCleanParquet)
	if err != nil {
		return err
	}
	users, err := exporter.ReadUsers(ctx, state.Paths.UsersParquet)
	if err != nil {
		return err
	}

	state.Orders = dataprocessing.EnforceOrderSchema(orders)
	// The processed orders table is already cleaned; downstream stages
	// consume it as such.
	state.OrdersClean = state.Orders
	state.Users = dataprocessing.EnforceUserSchema(users)

	slog.InfoContext(ctx, "Loaded processed tables",
		slog.Int("orders", len(state.Orders)),
		slog.Int("users", len(state.Users)))
	return nil
}

// QualityStage runs the hard data quality gates. Any violation aborts the
// run.
type QualityStage struct {
	BaseStage
}

// NewQualityStage creates the quality gate stage.
func NewQualityStage() *QualityStage {
	return &QualityStage{BaseStage: NewBaseStage("quality_checks", "Data Quality Checks")}
}

func (s *QualityStage) Validate(state *State) error {
	if state.Orders == nil || state.Users == nil {
		return errors.NewValidationError("quality checks need loaded orders and users")
	}
	return nil
}

func (s *QualityStage) Execute(ctx context.Context, state *State) error {
	if err := validation.NonEmpty("orders", len(state.Orders)); err != nil {
		return err
	}
	if err := validation.NonEmpty("users", len(state.Users)); err != nil {
		return err
	}

	userIDs := make([]string, len(state.Users))
	for i, u := range state.Users {
		userIDs[i] = u.UserID
	}
	if err := validation.UniqueKey("user_id", userIDs, false); err != nil {
		return err
	}

	amounts := make([]domain.Float, len(state.Orders))
	quantities := make([]domain.Int, len(state.Orders))
	for i, o := range state.Orders {
		amounts[i] = o.Amount
		quantities[i] = o.Quantity
	}
	if err := validation.InRangeFloat("amount", amounts, validation.Float64Ptr(0), nil); err != nil {
		return err
	}
	if err := validation.InRangeInt("quantity", quantities, validation.Int64Ptr(0), nil); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Quality checks passed")
	return nil
}

// CleanStage derives the cleaned orders table: missingness report, status
// normalization, missing-value flags and latest-wins deduplication.
type CleanStage struct {
	BaseStage
}

// NewCleanStage creates the order cleaning stage.
func NewCleanStage() *CleanStage {
	return &CleanStage{BaseStage: NewBaseStage("clean_orders", "Clean Orders")}
}

func (s *CleanStage) Validate(state *State) error {
	if state.Orders == nil {
		return errors.NewValidationError("cleaning needs loaded orders")
	}
	return nil
}

func (s *CleanStage) Execute(ctx context.Context, state *State) error {
	state.Missingness = dataprocessing.MissingnessReport(state.Orders)

	cleaned := make([]domain.Order, len(state.Orders))
	for i, o := range state.Orders {
		o.StatusClean = dataprocessing.CleanStatus(o.Status)
		cleaned[i] = o
	}
	cleaned = dataprocessing.AddMissingFlags(cleaned)

	deduped := dataprocessing.DedupeKeepLatest(cleaned,
		func(o domain.Order) string { return o.OrderID },
		func(o domain.Order) domain.Time { return o.CreatedAt })

	slog.InfoContext(ctx, "Cleaned orders",
		slog.Int("rows_in", len(cleaned)),
		slog.Int("rows_out", len(deduped)),
		slog.Int("duplicates_dropped", len(cleaned)-len(deduped)))

	state.OrdersClean = deduped
	return nil
}

// AnalyticsStage joins the cleaned orders to users and adds the winsorized
// amount and outlier flag columns.
type AnalyticsStage struct {
	BaseStage
}

// NewAnalyticsStage creates the analysis table stage.
func NewAnalyticsStage() *AnalyticsStage {
	return &AnalyticsStage{BaseStage: NewBaseStage("build_analytics", "Build Analysis Table")}
}

func (s *AnalyticsStage) Validate(state *State) error {
	if state.OrdersClean == nil || state.Users == nil {
		return errors.NewValidationError("analytics needs cleaned orders and users")
	}
	return nil
}

func (s *AnalyticsStage) Execute(ctx context.Context, state *State) error {
	rows, stats, err := dataprocessing.SafeLeftJoin(state.OrdersClean, state.Users)
	if err != nil {
		return err
	}

	cfg := state.Cfg.ETL
	rows = dataprocessing.WinsorizeAmounts(rows, cfg.WinsorLo, cfg.WinsorHi)
	rows = dataprocessing.FlagAmountOutliers(rows, cfg.OutlierK)

	state.Analytics = rows
	state.Stats = stats
	state.Revenue = dataprocessing.RevenueByCountry(rows)

	slog.InfoContext(ctx, "Built analysis table",
		slog.Int("rows", stats.Rows),
		slog.Int("missing_created_at", stats.MissingCreatedAt),
		slog.Float64("country_match_rate", stats.CountryMatchRate))
	return nil
}

// WriteRawStage writes the typed raw tables to Parquet.
type WriteRawStage struct {
	BaseStage
	parquet *exporter.ParquetWriter
}

// NewWriteRawStage creates the raw table export stage.
func NewWriteRawStage() *WriteRawStage {
	return &WriteRawStage{
		BaseStage: NewBaseStage("write_raw", "Write Raw Tables"),
		parquet:   exporter.NewParquetWriter(),
	}
}

func (s *WriteRawStage) Validate(state *State) error {
	if state.Orders == nil || state.Users == nil {
		return errors.NewValidationError("raw export needs loaded orders and users")
	}
	return nil
}

func (s *WriteRawStage) Execute(ctx context.Context, state *State) error {
	if err := s.parquet.WriteOrders(state.Paths.OrdersParquet, state.Orders); err != nil {
		return err
	}
	state.RecordOutput("orders", state.Paths.OrdersParquet)

	if err := s.parquet.WriteUsers(state.Paths.UsersParquet, state.Users); err != nil {
		return err
	}
	state.RecordOutput("users", state.Paths.UsersParquet)
	return nil
}

// WriteCleanStage writes the cleaned orders table, the users table and the
// missingness report.
type WriteCleanStage struct {
	BaseStage
	parquet *exporter.ParquetWriter
	csv     *exporter.CSVWriter
}

// NewWriteCleanStage creates the cleaned table export stage.
func NewWriteCleanStage() *WriteCleanStage {
	return &WriteCleanStage{
		BaseStage: NewBaseStage("write_clean", "Write Cleaned Tables"),
		parquet:   exporter.NewParquetWriter(),
		csv:       exporter.NewCSVWriter(),
	}
}

func (s *WriteCleanStage) Validate(state *State) error {
	if state.OrdersClean == nil || state.Users == nil {
		return errors.NewValidationError("clean export needs cleaned orders and users")
	}
	return nil
}

func (s *WriteCleanStage) Execute(ctx context.Context, state *State) error {
	if err := s.parquet.WriteOrdersClean(state.Paths.OrdersCleanParquet, state.OrdersClean); err != nil {
		return err
	}
	state.RecordOutput("orders_clean", state.Paths.OrdersCleanParquet)

	if err := s.parquet.WriteUsers(state.Paths.UsersParquet, state.Users); err != nil {
		return err
	}
	state.RecordOutput("users", state.Paths.UsersParquet)

	if state.Missingness != nil {
		if err := s.csv.WriteMissingnessReport(state.Paths.MissingnessCSV, state.Missingness); err != nil {
			return err
		}
		state.RecordOutput("order_missingness", state.Paths.MissingnessCSV)
	}
	return nil
}

// WriteAnalyticsStage writes the analysis table and the revenue reports.
type WriteAnalyticsStage struct {
	BaseStage
	parquet *exporter.ParquetWriter
	csv     *exporter.CSVWriter
}

// NewWriteAnalyticsStage creates the analysis export stage.
func NewWriteAnalyticsStage() *WriteAnalyticsStage {
	return &WriteAnalyticsStage{
		BaseStage: NewBaseStage("write_analytics", "Write Analysis Outputs"),
		parquet:   exporter.NewParquetWriter(),
		csv:       exporter.NewCSVWriter(),
	}
}

func (s *WriteAnalyticsStage) Validate(state *State) error {
	if state.Analytics == nil {
		return errors.NewValidationError("analytics export needs the analysis table")
	}
	return nil
}

func (s *WriteAnalyticsStage) Execute(ctx context.Context, state *State) error {
	if err := s.parquet.WriteAnalytics(state.Paths.AnalyticsParquet, state.Analytics); err != nil {
		return err
	}
	state.RecordOutput("analytics_table", state.Paths.AnalyticsParquet)

	if err := s.csv.WriteRevenueReport(state.Paths.RevenueCSV, state.Revenue); err != nil {
		return err
	}
	state.RecordOutput("revenue_by_country", state.Paths.RevenueCSV)

	if err := exporter.WriteRevenueWorkbook(state.Paths.RevenueXLSX, state.Revenue); err != nil {
		return err
	}
	state.RecordOutput("revenue_by_country_xlsx", state.Paths.RevenueXLSX)
	return nil
}
