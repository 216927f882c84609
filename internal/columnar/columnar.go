// Package columnar converts a table into typed columns and summarizes them
// with gonum. Nulls are dropped before any statistic is taken.
package columnar

import (
	"context"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"descstats/internal/table"
	"descstats/pkg/contracts/domain"
)

// DataType is the inferred type of a column
type DataType string

const (
	Float64 DataType = "Float64"
	Utf8    DataType = "Utf8"
	Null    DataType = "Null"
)

// LoadOptions keeps headers verbatim and trims cells, so whitespace-only
// cells read as null.
var LoadOptions = table.LoadOptions{TrimSpace: true}

// Column is one typed, null-free column
type Column struct {
	Name    string
	Type    DataType
	Floats  []float64
	Strings []string
	// Nulls counts the dropped cells.
	Nulls int
}

// Len returns the number of non-null values
func (c *Column) Len() int {
	if c.Type == Float64 {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// Frame is a set of typed columns in header order
type Frame struct {
	Columns []*Column
	Rows    int
}

// IsNull reports whether a cell counts as null: missing or blank.
func IsNull(v table.Value) bool {
	return !v.Present || (!v.Numeric && v.Raw == "")
}

// FromTable infers a schema for t and builds typed columns. A column is
// Float64 when every non-null cell is a finite number, Null when it has no
// non-null cell, and Utf8 otherwise.
func FromTable(t *table.Table) *Frame {
	f := &Frame{Rows: t.Len()}
	for _, name := range t.Headers {
		values, _ := t.Column(name)
		f.Columns = append(f.Columns, buildColumn(name, values))
	}
	return f
}

func buildColumn(name string, values []table.Value) *Column {
	col := &Column{Name: name, Type: Null}
	numeric := true
	for _, v := range values {
		if IsNull(v) {
			col.Nulls++
			continue
		}
		col.Type = Float64
		if !v.Numeric {
			numeric = false
		}
	}
	if col.Type == Null {
		return col
	}
	if !numeric {
		col.Type = Utf8
	}

	for _, v := range values {
		if IsNull(v) {
			continue
		}
		if col.Type == Float64 {
			col.Floats = append(col.Floats, v.Num)
		} else {
			col.Strings = append(col.Strings, v.Raw)
		}
	}
	return col
}

// ValueCount is one entry of a frequency table
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts returns the frequency of each string, highest count first.
// Ties keep first-appearance order.
func ValueCounts(values []string) []ValueCount {
	index := make(map[string]int)
	var counts []ValueCount
	for _, v := range values {
		i, ok := index[v]
		if !ok {
			i = len(counts)
			index[v] = i
			counts = append(counts, ValueCount{Value: v})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(a, b int) bool {
		return counts[a].Count > counts[b].Count
	})
	return counts
}

// Summarize computes the statistics of one column. ok is false for Null
// columns, which are left out of the output.
func Summarize(col *Column) (domain.ColumnStats, bool) {
	out := domain.ColumnStats{Count: col.Len()}
	switch col.Type {
	case Float64:
		if col.Len() == 1 {
			x := col.Floats[0]
			out.SetNumeric(x, x, x)
			return out, true
		}
		mean, std := stat.MeanStdDev(col.Floats, nil)
		out.SetNumeric(mean, floats.Min(col.Floats), floats.Max(col.Floats))
		out.SetStdDev(std)
	case Utf8:
		counts := ValueCounts(col.Strings)
		out.SetCategorical(len(counts), counts[0].Value, counts[0].Count)
	default:
		return out, false
	}
	return out, true
}

// Summarizer runs the columnar engine
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a summarizer
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger}
}

// Summarize builds typed columns from t and summarizes every non-null column.
func (s *Summarizer) Summarize(ctx context.Context, t *table.Table) *domain.ColumnSet {
	frame := FromTable(t)
	set := domain.NewColumnSet()
	for _, col := range frame.Columns {
		st, ok := Summarize(col)
		if !ok {
			s.logger.DebugContext(ctx, "Skipping all-null column",
				slog.String("column", col.Name))
			continue
		}
		set.Set(col.Name, st)
	}
	return set
}
