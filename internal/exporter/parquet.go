package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"etlcli/internal/errors"
	"etlcli/pkg/contracts/domain"
)

// timestampUTC is the storage type for all timestamp columns.
var timestampUTC = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

// OrdersSchema describes the typed orders table.
func OrdersSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "order_id", Type: arrow.BinaryTypes.String},
		{Name: "user_id", Type: arrow.BinaryTypes.String},
		{Name: "amount", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "quantity", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "status", Type: arrow.BinaryTypes.String},
		{Name: "created_at", Type: timestampUTC, Nullable: true},
	}, nil)
}

// OrdersCleanSchema extends the orders table with the cleaning columns.
func OrdersCleanSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "order_id", Type: arrow.BinaryTypes.String},
		{Name: "user_id", Type: arrow.BinaryTypes.String},
		{Name: "amount", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "quantity", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "status", Type: arrow.BinaryTypes.String},
		{Name: "created_at", Type: timestampUTC, Nullable: true},
		{Name: "status_clean", Type: arrow.BinaryTypes.String},
		{Name: "amount__isna", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "quantity__isna", Type: arrow.FixedWidthTypes.Boolean},
	}, nil)
}

// UsersSchema describes the typed users table.
func UsersSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "user_id", Type: arrow.BinaryTypes.String},
		{Name: "country", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "signup_date", Type: timestampUTC, Nullable: true},
	}, nil)
}

// AnalyticsSchema describes the joined analysis table. Time-part columns from
// the user side carry the _user suffix.
func AnalyticsSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "order_id", Type: arrow.BinaryTypes.String},
		{Name: "user_id", Type: arrow.BinaryTypes.String},
		{Name: "amount", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "quantity", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "status", Type: arrow.BinaryTypes.String},
		{Name: "created_at", Type: timestampUTC, Nullable: true},
		{Name: "status_clean", Type: arrow.BinaryTypes.String},
		{Name: "amount__isna", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "quantity__isna", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "date", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "year", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "month", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "dow", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "hour", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "country", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "signup_date", Type: timestampUTC, Nullable: true},
		{Name: "date_user", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "year_user", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "month_user", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "dow_user", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "hour_user", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "matched", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "amount_winsor", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "amount__is_outlier", Type: arrow.FixedWidthTypes.Boolean},
	}, nil)
}

// ParquetWriter writes typed tables to Parquet files.
type ParquetWriter struct {
	allocator memory.Allocator
}

// NewParquetWriter creates a Parquet writer with the default allocator.
func NewParquetWriter() *ParquetWriter {
	return &ParquetWriter{allocator: memory.DefaultAllocator}
}

func (w *ParquetWriter) writeRecord(filePath string, schema *arrow.Schema, rec arrow.Record) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return errors.NewStorageError("failed to create directory", err)
	}

	f, err := os.Create(filePath)
	if err != nil {
		return errors.NewStorageError("failed to create parquet file", err)
	}

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	writer, err := pqarrow.NewFileWriter(schema, f, props, pqarrow.DefaultWriterProps())
	if err != nil {
		f.Close()
		return errors.NewStorageError("failed to create parquet writer", err)
	}

	if err := writer.Write(rec); err != nil {
		writer.Close()
		return errors.NewStorageError("failed to write parquet record", err)
	}

	// Close flushes row groups and the footer, then closes the file.
	if err := writer.Close(); err != nil {
		return errors.NewStorageError("failed to close parquet writer", err)
	}

	slog.Info("Wrote parquet file",
		slog.String("file_path", filePath),
		slog.Int64("rows", rec.NumRows()))
	return nil
}

func appendFloat(b *array.Float64Builder, v domain.Float) {
	if v.Valid {
		b.Append(v.Value)
	} else {
		b.AppendNull()
	}
}

func appendInt(b *array.Int64Builder, v domain.Int) {
	if v.Valid {
		b.Append(v.Value)
	} else {
		b.AppendNull()
	}
}

func appendString(b *array.StringBuilder, v domain.String) {
	if v.Valid {
		b.Append(v.Value)
	} else {
		b.AppendNull()
	}
}

func appendTime(b *array.TimestampBuilder, v domain.Time) {
	if v.Valid {
		b.Append(arrow.Timestamp(v.Value.UnixMicro()))
	} else {
		b.AppendNull()
	}
}

func appendOrderFields(builder *array.RecordBuilder, o domain.Order) {
	builder.Field(0).(*array.StringBuilder).Append(o.OrderID)
	builder.Field(1).(*array.StringBuilder).Append(o.UserID)
	appendFloat(builder.Field(2).(*array.Float64Builder), o.Amount)
	appendInt(builder.Field(3).(*array.Int64Builder), o.Quantity)
	builder.Field(4).(*array.StringBuilder).Append(o.Status)
	appendTime(builder.Field(5).(*array.TimestampBuilder), o.CreatedAt)
}

// WriteOrders writes the typed orders table.
func (w *ParquetWriter) WriteOrders(filePath string, orders []domain.Order) error {
	schema := OrdersSchema()
	builder := array.NewRecordBuilder(w.allocator, schema)
	defer builder.Release()

	for _, o := range orders {
		appendOrderFields(builder, o)
	}

	rec := builder.NewRecord()
	defer rec.Release()
	return w.writeRecord(filePath, schema, rec)
}

// WriteOrdersClean writes the deduplicated orders table with the cleaning
// columns.
func (w *ParquetWriter) WriteOrdersClean(filePath string, orders []domain.Order) error {
	schema := OrdersCleanSchema()
	builder := array.NewRecordBuilder(w.allocator, schema)
	defer builder.Release()

	for _, o := range orders {
		appendOrderFields(builder, o)
		builder.Field(6).(*array.StringBuilder).Append(o.StatusClean)
		builder.Field(7).(*array.BooleanBuilder).Append(o.AmountMissing)
		builder.Field(8).(*array.BooleanBuilder).Append(o.QuantityMissing)
	}

	rec := builder.NewRecord()
	defer rec.Release()
	return w.writeRecord(filePath, schema, rec)
}

// WriteUsers writes the typed users table.
func (w *ParquetWriter) WriteUsers(filePath string, users []domain.User) error {
	schema := UsersSchema()
	builder := array.NewRecordBuilder(w.allocator, schema)
	defer builder.Release()

	for _, u := range users {
		builder.Field(0).(*array.StringBuilder).Append(u.UserID)
		appendString(builder.Field(1).(*array.StringBuilder), u.Country)
		appendTime(builder.Field(2).(*array.TimestampBuilder), u.SignupDate)
	}

	rec := builder.NewRecord()
	defer rec.Release()
	return w.writeRecord(filePath, schema, rec)
}

// WriteAnalytics writes the joined analysis table.
func (w *ParquetWriter) WriteAnalytics(filePath string, rows []domain.AnalyticsRow) error {
	schema := AnalyticsSchema()
	builder := array.NewRecordBuilder(w.allocator, schema)
	defer builder.Release()

	for _, r := range rows {
		appendOrderFields(builder, r.Order)
		builder.Field(6).(*array.StringBuilder).Append(r.StatusClean)
		builder.Field(7).(*array.BooleanBuilder).Append(r.AmountMissing)
		builder.Field(8).(*array.BooleanBuilder).Append(r.QuantityMissing)
		appendString(builder.Field(9).(*array.StringBuilder), r.Created.Date)
		appendInt(builder.Field(10).(*array.Int64Builder), r.Created.Year)
		appendString(builder.Field(11).(*array.StringBuilder), r.Created.Month)
		appendString(builder.Field(12).(*array.StringBuilder), r.Created.DOW)
		appendInt(builder.Field(13).(*array.Int64Builder), r.Created.Hour)
		appendString(builder.Field(14).(*array.StringBuilder), r.Country)
		appendTime(builder.Field(15).(*array.TimestampBuilder), r.SignupDate)
		appendString(builder.Field(16).(*array.StringBuilder), r.SignupParts.Date)
		appendInt(builder.Field(17).(*array.Int64Builder), r.SignupParts.Year)
		appendString(builder.Field(18).(*array.StringBuilder), r.SignupParts.Month)
		appendString(builder.Field(19).(*array.StringBuilder), r.SignupParts.DOW)
		appendInt(builder.Field(20).(*array.Int64Builder), r.SignupParts.Hour)
		builder.Field(21).(*array.BooleanBuilder).Append(r.Matched)
		appendFloat(builder.Field(22).(*array.Float64Builder), r.AmountWinsor)
		builder.Field(23).(*array.BooleanBuilder).Append(r.AmountOutlier)
	}

	rec := builder.NewRecord()
	defer rec.Release()
	return w.writeRecord(filePath, schema, rec)
}

func floatAt(col *array.Float64, i int) domain.Float {
	if col.IsNull(i) {
		return domain.Float{}
	}
	return domain.NewFloat(col.Value(i))
}

func intAt(col *array.Int64, i int) domain.Int {
	if col.IsNull(i) {
		return domain.Int{}
	}
	return domain.NewInt(col.Value(i))
}

func stringAt(col *array.String, i int) domain.String {
	if col.IsNull(i) {
		return domain.String{}
	}
	return domain.NewString(col.Value(i))
}

func timeAt(col *array.Timestamp, i int) domain.Time {
	if col.IsNull(i) {
		return domain.Time{}
	}
	return domain.NewTime(col.Value(i).ToTime(arrow.Microsecond))
}

func readTable(ctx context.Context, filePath string) (arrow.Table, error) {
	rdr, err := file.OpenParquetFile(filePath, false)
	if err != nil {
		return nil, errors.NewStorageError(
			fmt.Sprintf("failed to open parquet file %s", filePath), err)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{BatchSize: 4096}, memory.DefaultAllocator)
	if err != nil {
		return nil, errors.NewStorageError("failed to create parquet reader", err)
	}

	table, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, errors.NewStorageError("failed to read parquet table", err)
	}
	return table, nil
}

// ReadOrders reads back a typed orders table written by WriteOrders or
// WriteOrdersClean. The cleaning columns are restored when present.
func ReadOrders(ctx context.Context, filePath string) ([]domain.Order, error) {
	table, err := readTable(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer table.Release()

	hasCleanCols := table.Schema().HasField("status_clean")

	orders := make([]domain.Order, 0, table.NumRows())
	tr := array.NewTableReader(table, 4096)
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		orderID := rec.Column(0).(*array.String)
		userID := rec.Column(1).(*array.String)
		amount := rec.Column(2).(*array.Float64)
		quantity := rec.Column(3).(*array.Int64)
		status := rec.Column(4).(*array.String)
		createdAt := rec.Column(5).(*array.Timestamp)

		for i := 0; i < int(rec.NumRows()); i++ {
			o := domain.Order{
				OrderID:   orderID.Value(i),
				UserID:    userID.Value(i),
				Amount:    floatAt(amount, i),
				Quantity:  intAt(quantity, i),
				Status:    status.Value(i),
				CreatedAt: timeAt(createdAt, i),
			}
			if hasCleanCols {
				o.StatusClean = rec.Column(6).(*array.String).Value(i)
				o.AmountMissing = rec.Column(7).(*array.Boolean).Value(i)
				o.QuantityMissing = rec.Column(8).(*array.Boolean).Value(i)
			}
			orders = append(orders, o)
		}
	}

	return orders, nil
}

// ReadUsers reads back a typed users table written by WriteUsers.
func ReadUsers(ctx context.Context, filePath string) ([]domain.User, error) {
	table, err := readTable(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer table.Release()

	users := make([]domain.User, 0, table.NumRows())
	tr := array.NewTableReader(table, 4096)
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		userID := rec.Column(0).(*array.String)
		country := rec.Column(1).(*array.String)
		signup := rec.Column(2).(*array.Timestamp)

		for i := 0; i < int(rec.NumRows()); i++ {
			users = append(users, domain.User{
				UserID:     userID.Value(i),
				Country:    stringAt(country, i),
				SignupDate: timeAt(signup, i),
			})
		}
	}

	return users, nil
}
