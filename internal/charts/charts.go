// Package charts renders per-dataset figures with gonum/plot.
package charts

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"descstats/internal/columnar"
	apperrors "descstats/internal/errors"
	"descstats/internal/files"
)

// maxLabelRunes bounds bar labels; some categorical values are whole HTML anchors.
const maxLabelRunes = 40

// Size is a figure's dimensions in inches
type Size struct {
	Width  float64
	Height float64
}

// HasData reports whether values hold more than one distinct value. Callers
// drop nulls first.
func HasData[T comparable](values []T) bool {
	if len(values) == 0 {
		return false
	}
	first := values[0]
	for _, v := range values[1:] {
		if v != first {
			return true
		}
	}
	return false
}

// Quantile returns the q-quantile of values by linear interpolation between
// the closest ranks of the sorted data. values need not be sorted.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	switch {
	case q <= 0:
		return sorted[0]
	case q >= 1:
		return sorted[len(sorted)-1]
	}

	h := float64(len(sorted)-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[i]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// ClipAbove keeps the values not greater than limit, in order.
func ClipAbove(values []float64, limit float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v <= limit {
			out = append(out, v)
		}
	}
	return out
}

// Histogram draws the distribution of values after clipping everything
// above the clip quantile.
func Histogram(values []float64, title, path string, bins int, clip float64, size Size) error {
	if len(values) == 0 {
		return apperrors.NewRenderError("histogram needs at least one value", nil).
			WithContext("path", path)
	}
	data := ClipAbove(values, Quantile(values, clip))

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(plotter.Values(data), bins)
	if err != nil {
		return apperrors.NewRenderError("failed to build histogram", err).WithContext("path", path)
	}
	p.Add(h)

	return save(p, size, path)
}

// BoxPlot draws a horizontal box plot of values.
func BoxPlot(values []float64, title, path string, size Size) error {
	if len(values) == 0 {
		return apperrors.NewRenderError("box plot needs at least one value", nil).
			WithContext("path", path)
	}

	p := plot.New()
	p.Title.Text = title

	box, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(values))
	if err != nil {
		return apperrors.NewRenderError("failed to build box plot", err).WithContext("path", path)
	}
	box.Horizontal = true
	p.Add(box)
	p.NominalY("")

	return save(p, size, path)
}

// TopBar draws horizontal bars for the n most frequent values, the most
// frequent at the top.
func TopBar(values []string, n int, title, path string, size Size) error {
	counts := columnar.ValueCounts(values)
	if len(counts) == 0 {
		return apperrors.NewRenderError("bar chart needs at least one value", nil).
			WithContext("path", path)
	}
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}

	// Bars are laid out bottom-up.
	heights := make(plotter.Values, len(counts))
	labels := make([]string, len(counts))
	for i, c := range counts {
		j := len(counts) - 1 - i
		heights[j] = float64(c.Count)
		labels[j] = shorten(c.Value)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Count"

	bars, err := plotter.NewBarChart(heights, vg.Points(14))
	if err != nil {
		return apperrors.NewRenderError("failed to build bar chart", err).WithContext("path", path)
	}
	bars.Horizontal = true
	p.Add(bars)
	p.NominalY(labels...)

	return save(p, size, path)
}

func shorten(s string) string {
	if utf8.RuneCountInString(s) <= maxLabelRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxLabelRunes-1]) + "…"
}

func save(p *plot.Plot, size Size, path string) error {
	w := vg.Length(size.Width) * vg.Inch
	h := vg.Length(size.Height) * vg.Inch
	wt, err := p.WriterTo(w, h, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return apperrors.NewRenderError(fmt.Sprintf("failed to encode %s", path), err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return apperrors.NewRenderError(fmt.Sprintf("failed to encode %s", path), err)
	}
	if err := files.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return apperrors.NewRenderError(fmt.Sprintf("failed to save %s", path), err)
	}
	return nil
}
