// Package exporter writes the pipeline outputs: Parquet tables for the
// processed data, CSV and Excel reports, and the HTML figures. Writers are
// idempotent; an existing output is truncated and rewritten.
package exporter
