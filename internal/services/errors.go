package services

import "errors"

// ErrReportMissing is returned when the engine's JSON output does not exist yet.
var ErrReportMissing = errors.New("report not generated")
