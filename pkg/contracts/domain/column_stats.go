package domain

import "math"

// ColumnStats is the per-column aggregate record shared by every engine.
//
// The numeric block (mean, stddev, min, max) is present only when the column
// held at least one numeric value; the categorical block (unique,
// most_common, most_common_count) only when it held at least one string
// value. A column of mixed cells carries both.
//
// JSON layout:
//
//	{
//	  "count": 120,
//	  "mean": 41.5,
//	  "stddev": 3.2,
//	  "min": 0,
//	  "max": 99,
//	  "unique": 4,
//	  "most_common": "USD",
//	  "most_common_count": 97
//	}
type ColumnStats struct {
	Count           int      `json:"count"`
	Mean            *float64 `json:"mean,omitempty"`
	StdDev          *float64 `json:"stddev,omitempty"`
	Min             *float64 `json:"min,omitempty"`
	Max             *float64 `json:"max,omitempty"`
	Unique          *int     `json:"unique,omitempty"`
	MostCommon      *string  `json:"most_common,omitempty"`
	MostCommonCount *int     `json:"most_common_count,omitempty"`
}

// SetNumeric fills the numeric block. Non-finite inputs are dropped so the
// record always serializes.
func (c *ColumnStats) SetNumeric(mean, min, max float64) {
	c.Mean = finite(mean)
	c.Min = finite(min)
	c.Max = finite(max)
}

// SetStdDev records the standard deviation; NaN and negative values are ignored.
func (c *ColumnStats) SetStdDev(stddev float64) {
	if stddev < 0 {
		return
	}
	c.StdDev = finite(stddev)
}

// SetCategorical fills the categorical block.
func (c *ColumnStats) SetCategorical(unique int, mostCommon string, mostCommonCount int) {
	c.Unique = &unique
	c.MostCommon = &mostCommon
	c.MostCommonCount = &mostCommonCount
}

// HasNumeric reports whether the numeric block is present.
func (c ColumnStats) HasNumeric() bool {
	return c.Mean != nil
}

// HasCategorical reports whether the categorical block is present.
func (c ColumnStats) HasCategorical() bool {
	return c.MostCommon != nil
}

// Fields returns the present statistics in canonical order, used by the
// console and workbook writers.
func (c ColumnStats) Fields() []Field {
	fields := []Field{{Name: "count", Value: c.Count}}
	if c.Mean != nil {
		fields = append(fields, Field{Name: "mean", Value: *c.Mean})
	}
	if c.StdDev != nil {
		fields = append(fields, Field{Name: "stddev", Value: *c.StdDev})
	}
	if c.Min != nil {
		fields = append(fields, Field{Name: "min", Value: *c.Min})
	}
	if c.Max != nil {
		fields = append(fields, Field{Name: "max", Value: *c.Max})
	}
	if c.Unique != nil {
		fields = append(fields, Field{Name: "unique", Value: *c.Unique})
	}
	if c.MostCommon != nil {
		fields = append(fields, Field{Name: "most_common", Value: *c.MostCommon})
	}
	if c.MostCommonCount != nil {
		fields = append(fields, Field{Name: "most_common_count", Value: *c.MostCommonCount})
	}
	return fields
}

// Field is one named statistic.
type Field struct {
	Name  string
	Value any
}

// StatNames lists every statistic in output order.
var StatNames = []string{
	"count", "mean", "stddev", "min", "max", "unique", "most_common", "most_common_count",
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
