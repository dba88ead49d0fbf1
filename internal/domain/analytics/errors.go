package analytics

import "errors"

var (
	// ErrInvalidWindow is returned when a custom period is requested without
	// both bounds supplied.
	ErrInvalidWindow = errors.New("custom period requires both start and end")

	// ErrNoTenant is returned when Compute is called without a tenant
	// identifier. The pipeline fails fast before any read is attempted.
	ErrNoTenant = errors.New("no tenant context")

	// ErrUnknownReport is returned by the CSV exporter for an unrecognized
	// report type.
	ErrUnknownReport = errors.New("unknown report type")
)
