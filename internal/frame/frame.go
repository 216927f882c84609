// Package frame computes describe-style column statistics on a gota dataframe.
package frame

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	apperrors "descstats/internal/errors"
	"descstats/internal/stats"
	"descstats/pkg/contracts/domain"
)

// MissingValues are read as NaN.
var MissingValues = []string{"", "NA", "NaN", "null"}

// Describer summarizes CSV files through a dataframe
type Describer struct {
	logger *slog.Logger
}

// NewDescriber creates a describer
func NewDescriber(logger *slog.Logger) *Describer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Describer{logger: logger}
}

// Load reads the CSV at path into a dataframe with type detection.
func Load(ctx context.Context, path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, apperrors.NewStorageError("failed to open CSV file", err).
			WithContext("path", path)
	}
	defer f.Close()

	return Read(ctx, f)
}

// Read parses CSV data into a dataframe. Short rows are padded with missing
// values and extra trailing fields are dropped.
func Read(ctx context.Context, r io.Reader) (dataframe.DataFrame, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(3); err == nil && bytes.Equal(prefix, []byte{0xEF, 0xBB, 0xBF}) {
		br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		if err := ctx.Err(); err != nil {
			return dataframe.DataFrame{}, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dataframe.DataFrame{}, apperrors.NewParsingError("failed to read CSV record", err)
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return dataframe.DataFrame{}, apperrors.NewParsingError("CSV has no header row", nil)
	}

	width := len(records[0])
	if len(records) == 1 {
		cols := make([]series.Series, width)
		for i, name := range records[0] {
			cols[i] = series.New([]string{}, series.String, name)
		}
		return dataframe.New(cols...), nil
	}

	for i := 1; i < len(records); i++ {
		switch {
		case len(records[i]) < width:
			padded := make([]string, width)
			copy(padded, records[i])
			records[i] = padded
		case len(records[i]) > width:
			records[i] = records[i][:width]
		}
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(MissingValues),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, apperrors.NewParsingError("failed to build dataframe", df.Err)
	}
	return df, nil
}

// Describe loads path and summarizes every column in header order.
func (d *Describer) Describe(ctx context.Context, path string) (*domain.ColumnSet, int, error) {
	df, err := Load(ctx, path)
	if err != nil {
		return nil, 0, err
	}

	set := DescribeFrame(df)
	d.logger.DebugContext(ctx, "Dataframe described",
		slog.String("path", path),
		slog.Int("rows", df.Nrow()),
		slog.Int("columns", df.Ncol()))
	return set, df.Nrow(), nil
}

// DescribeFrame summarizes every column of df.
func DescribeFrame(df dataframe.DataFrame) *domain.ColumnSet {
	set := domain.NewColumnSet()
	for _, name := range df.Names() {
		set.Set(name, DescribeSeries(df.Col(name)))
	}
	return set
}

// DescribeSeries summarizes one column. count is the number of non-missing
// elements; Int and Float columns get the numeric block, String and Bool
// columns the categorical one.
func DescribeSeries(s series.Series) domain.ColumnStats {
	present := presentIndexes(s)
	out := domain.ColumnStats{Count: len(present)}
	if len(present) == 0 {
		return out
	}

	sub := s.Subset(present)
	switch s.Type() {
	case series.Int, series.Float:
		nums := series.Floats(sub.Float())
		out.SetNumeric(nums.Mean(), nums.Min(), nums.Max())
		if nums.Len() > 1 {
			out.SetStdDev(nums.StdDev())
		}
	default:
		counter := stats.NewCounter()
		for _, rec := range sub.Records() {
			counter.Add(rec)
		}
		top, freq := counter.MostCommon()
		out.SetCategorical(counter.Len(), top, freq)
	}
	return out
}

func presentIndexes(s series.Series) []int {
	nan := s.IsNaN()
	idx := make([]int, 0, len(nan))
	for i, missing := range nan {
		if !missing {
			idx = append(idx, i)
		}
	}
	return idx
}
