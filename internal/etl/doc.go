// Package etl wires the pipeline stages together. Each command composes a
// subset of the stages and hands them to the Manager, which runs them in
// order with a trace span and timing log per stage.
package etl
