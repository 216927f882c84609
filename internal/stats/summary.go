// Package stats computes column statistics by hand, without a table library.
//
// A column is summarized in one pass: numeric cells feed a running
// mean/variance accumulator, string cells feed a frequency counter that
// remembers first appearance so ties resolve deterministically.
package stats

import (
	"math"

	"descstats/internal/table"
	"descstats/pkg/contracts/domain"
)

// accumulator keeps Welford's running moments
type accumulator struct {
	n    int
	mean float64
	m2   float64
	min  float64
	max  float64
}

func (a *accumulator) add(x float64) {
	a.n++
	if a.n == 1 {
		a.min, a.max = x, x
	} else {
		a.min = math.Min(a.min, x)
		a.max = math.Max(a.max, x)
	}
	delta := x - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (x - a.mean)
}

// stddev is the sample standard deviation, 0 below two observations.
func (a *accumulator) stddev() float64 {
	if a.n < 2 {
		return 0
	}
	v := a.m2 / float64(a.n-1)
	if v < 0 {
		// rounding on near-constant columns
		v = 0
	}
	return math.Sqrt(v)
}

// Counter counts string occurrences in first-seen order
type Counter struct {
	order  []string
	counts map[string]int
}

// NewCounter returns an empty counter
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add counts one occurrence of s
func (c *Counter) Add(s string) {
	if _, ok := c.counts[s]; !ok {
		c.order = append(c.order, s)
	}
	c.counts[s]++
}

// Len returns the number of distinct values
func (c *Counter) Len() int {
	return len(c.order)
}

// MostCommon returns the value with the highest count. Ties go to the value
// seen first.
func (c *Counter) MostCommon() (string, int) {
	var best string
	bestCount := 0
	for _, s := range c.order {
		if n := c.counts[s]; n > bestCount {
			best, bestCount = s, n
		}
	}
	return best, bestCount
}

// Summarize computes the statistics of one column. Missing fields are not
// counted; empty cells are, as the string "".
func Summarize(values []table.Value) domain.ColumnStats {
	var acc accumulator
	cats := NewCounter()
	count := 0

	for _, v := range values {
		if !v.Present {
			continue
		}
		count++
		if v.Numeric {
			acc.add(v.Num)
			continue
		}
		cats.Add(v.Raw)
	}

	out := domain.ColumnStats{Count: count}
	if acc.n > 0 {
		out.SetNumeric(acc.mean, acc.min, acc.max)
		out.SetStdDev(acc.stddev())
	}
	if cats.Len() > 0 {
		top, freq := cats.MostCommon()
		out.SetCategorical(cats.Len(), top, freq)
	}
	return out
}

// Analyse summarizes every column of t in header order.
func Analyse(t *table.Table) *domain.ColumnSet {
	return analyseRows(t.Headers, t.Rows)
}

func analyseRows(headers []string, rows []table.Row) *domain.ColumnSet {
	set := domain.NewColumnSet()
	for _, h := range headers {
		values := make([]table.Value, len(rows))
		for i, row := range rows {
			values[i] = row[h]
		}
		set.Set(h, Summarize(values))
	}
	return set
}
