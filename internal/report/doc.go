// Package report writes and reads the statistics reports produced by the
// engines.
//
// This package contains four components:
//
// WriteJSON / ReadJSON: the engine's JSON output, written atomically so the
// HTTP server never reads a partial report.
//
// WriteWorkbook: an .xlsx rendition of a report with one sheet per dataset
// and per grouped section, built with excelize.
//
// WriteCSV: a flat CSV with one row per dataset, section, group and column,
// prefixed with a UTF-8 BOM for Excel.
//
// Console: the human readable preview printed while an engine runs.
//
// Example usage:
//
//	rep := domain.NewReport()
//	rep.Set("fb_ads", section)
//
//	if err := report.WriteJSON(jsonPath, rep, 2); err != nil {
//	    return err
//	}
//	if err := report.WriteWorkbook(xlsxPath, rep); err != nil {
//	    return err
//	}
package report
