package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	apperrors "descstats/internal/errors"
	"descstats/internal/files"
	"descstats/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVHeaders are the leading columns of the flat export; the statistics
// follow in domain.StatNames order.
var CSVHeaders = []string{"dataset", "section", "group", "column"}

// WriteCSV flattens rep into one row per dataset, section, group and column
// and writes it to path. Flat sections use an empty section name; the
// overall block of a grouped section uses "overall".
func WriteCSV(path string, rep *domain.Report) error {
	var buf bytes.Buffer
	// BOM so Excel recognizes UTF-8
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(append(append([]string{}, CSVHeaders...), domain.StatNames...)); err != nil {
		return apperrors.NewStorageError("failed to write headers", err).WithContext("path", path)
	}

	for _, record := range Records(rep) {
		if err := w.Write(record); err != nil {
			return apperrors.NewStorageError("failed to write record", err).WithContext("path", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.NewStorageError("failed to write CSV", err).WithContext("path", path)
	}

	if err := files.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return apperrors.NewStorageError("failed to write CSV", err).WithContext("path", path)
	}
	return nil
}

// Records returns the flat rows WriteCSV emits, without the header.
func Records(rep *domain.Report) [][]string {
	var records [][]string
	add := func(dataset, section, group string, set *domain.ColumnSet) {
		if set == nil {
			return
		}
		set.Range(func(col string, st domain.ColumnStats) bool {
			records = append(records, append([]string{dataset, section, group, col}, formatStats(st)...))
			return true
		})
	}

	rep.Range(func(dataset string, section *domain.Section) bool {
		if section == nil {
			return true
		}
		if !section.Grouped() {
			add(dataset, "", "", section.Columns)
			return true
		}
		add(dataset, domain.OverallKey, "", section.Overall)
		section.Groups.Range(func(name string, groups *domain.GroupSet) bool {
			groups.Range(func(key string, set *domain.ColumnSet) bool {
				add(dataset, name, key, set)
				return true
			})
			return true
		})
		return true
	})
	return records
}

func formatStats(st domain.ColumnStats) []string {
	out := make([]string, len(domain.StatNames))
	for i, v := range statCells(st) {
		out[i] = formatValue(v)
	}
	return out
}

// formatValue renders a statistic for CSV output; absent values are empty.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
