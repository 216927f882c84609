// Package services holds the read side of the statistics server: loading
// generated reports from the output directory, announcing when they change,
// and answering health probes.
// Handlers in internal/transport/http depend on these services through small
// interfaces so they can be tested with mocks.
package services
