// Package dataprocessing implements the table transforms of the cleaning
// pipeline: CSV parsing with header mapping, schema enforcement with
// per-cell coercion, text normalization, deduplication, time-part
// extraction, IQR outlier detection, winsorization, the validated left join
// and the missingness/revenue reports.
//
// Every transform is a pure function over record slices: input rows in,
// derived rows out, no side effects. Writing happens in internal/exporter.
package dataprocessing
