package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"etlcli/internal/errors"
	"etlcli/internal/validation"
	"etlcli/pkg/contracts/domain"
)

// columnMap maps column names to their position in the header row.
type columnMap map[string]int

func newColumnMap(header []string) columnMap {
	m := make(columnMap, len(header))
	for i, name := range header {
		m[strings.TrimSpace(name)] = i
	}
	return m
}

// get returns the trimmed cell for a named column, or "" when the row is
// short or the column is absent.
func (m columnMap) get(row []string, name string) string {
	idx, ok := m[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// readTable reads a CSV file, validates the required columns and returns
// the header map plus all data rows.
func readTable(filePath string, required []string) (columnMap, [][]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, errors.NewStorageError(fmt.Sprintf("failed to open %s", filePath), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, errors.NewParsingError(fmt.Sprintf("%s has no header row", filePath), nil)
	}
	if err != nil {
		return nil, nil, errors.NewParsingError(fmt.Sprintf("failed to read header of %s", filePath), err)
	}

	// Strip a UTF-8 BOM if the file came out of Excel
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	if err := validation.RequireColumns(header, required); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filePath, err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.NewParsingError(fmt.Sprintf("failed to read rows of %s", filePath), err)
	}

	return newColumnMap(header), rows, nil
}

// ParseOrdersCSV reads the raw orders CSV and enforces the order schema:
// string IDs, nullable float amount, nullable int quantity, nullable UTC
// created_at. Unparseable cells coerce to null, never to an error.
func ParseOrdersCSV(filePath string) ([]domain.Order, error) {
	cols, rows, err := readTable(filePath, domain.OrderColumns)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, domain.Order{
			OrderID:   cols.get(row, "order_id"),
			UserID:    cols.get(row, "user_id"),
			Amount:    CoerceFloat(cols.get(row, "amount")),
			Quantity:  CoerceInt(cols.get(row, "quantity")),
			Status:    cols.get(row, "status"),
			CreatedAt: CoerceTime(cols.get(row, "created_at")),
		})
	}

	slog.Info("Parsed orders CSV",
		slog.String("file", filePath),
		slog.Int("rows", len(orders)))

	return orders, nil
}

// ParseUsersCSV reads the raw users CSV and enforces the user schema.
func ParseUsersCSV(filePath string) ([]domain.User, error) {
	cols, rows, err := readTable(filePath, domain.UserColumns)
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, domain.User{
			UserID:     cols.get(row, "user_id"),
			Country:    CoerceString(cols.get(row, "country")),
			SignupDate: CoerceTime(cols.get(row, "signup_date")),
		})
	}

	slog.Info("Parsed users CSV",
		slog.String("file", filePath),
		slog.Int("rows", len(users)))

	return users, nil
}

// ParseListingsCSV reads the property listings CSV. Only the columns the
// listings pipeline uses are extracted; the file may carry many more.
func ParseListingsCSV(filePath string) ([]domain.Listing, error) {
	cols, rows, err := readTable(filePath, domain.ListingColumns)
	if err != nil {
		return nil, err
	}

	listings := make([]domain.Listing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, domain.Listing{
			Location:  cols.get(row, "location"),
			ListTitle: cols.get(row, "listTitle"),
			Price:     CoerceFloat(cols.get(row, "price")),
		})
	}

	slog.Info("Parsed listings CSV",
		slog.String("file", filePath),
		slog.Int("rows", len(listings)))

	return listings, nil
}
