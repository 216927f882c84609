// Package shared holds code used across descstats packages that belongs to
// no single layer.
//
// The testutil subpackage provides a buffered slog handler and assertion
// helpers for tests that check what a component logged.
package shared
