package columnar

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"descstats/internal/table"
)

func readTable(t *testing.T, data string) *table.Table {
	t.Helper()
	tbl, err := table.Read(strings.NewReader(data), "tw", LoadOptions)
	require.NoError(t, err)
	return tbl
}

const tweetsCSV = `likeCount,lang,empty,mixed
4,en,,1
8, ,,x
,fr,,2
12,en,  ,3
`

func TestFromTable_InfersSchema(t *testing.T) {
	frame := FromTable(readTable(t, tweetsCSV))
	require.Len(t, frame.Columns, 4)
	assert.Equal(t, 4, frame.Rows)

	tests := []struct {
		name  string
		typ   DataType
		len   int
		nulls int
	}{
		{"likeCount", Float64, 3, 1},
		{"lang", Utf8, 3, 1},
		{"empty", Null, 0, 4},
		{"mixed", Utf8, 4, 0},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := frame.Columns[i]
			assert.Equal(t, tt.name, col.Name)
			assert.Equal(t, tt.typ, col.Type)
			assert.Equal(t, tt.len, col.Len())
			assert.Equal(t, tt.nulls, col.Nulls)
		})
	}
}

func TestValueCounts(t *testing.T) {
	counts := ValueCounts([]string{"b", "a", "c", "a", "b", "d"})
	assert.Equal(t, []ValueCount{
		{"b", 2}, {"a", 2}, {"c", 1}, {"d", 1},
	}, counts)

	assert.Empty(t, ValueCounts(nil))
}

func TestSummarize(t *testing.T) {
	t.Run("float column", func(t *testing.T) {
		st, ok := Summarize(&Column{Name: "x", Type: Float64, Floats: []float64{4, 8, 12}})
		require.True(t, ok)
		assert.Equal(t, 3, st.Count)
		assert.Equal(t, 8.0, *st.Mean)
		assert.InDelta(t, 4.0, *st.StdDev, 1e-12)
		assert.Equal(t, 4.0, *st.Min)
		assert.Equal(t, 12.0, *st.Max)
	})

	t.Run("single value omits stddev", func(t *testing.T) {
		st, ok := Summarize(&Column{Name: "x", Type: Float64, Floats: []float64{-2}})
		require.True(t, ok)
		assert.Nil(t, st.StdDev)
		assert.Equal(t, -2.0, *st.Max)
	})

	t.Run("string column", func(t *testing.T) {
		st, ok := Summarize(&Column{Name: "x", Type: Utf8, Strings: []string{"en", "fr", "en"}})
		require.True(t, ok)
		assert.Equal(t, 2, *st.Unique)
		assert.Equal(t, "en", *st.MostCommon)
		assert.Equal(t, 2, *st.MostCommonCount)
		assert.False(t, st.HasNumeric())
	})

	t.Run("null column is skipped", func(t *testing.T) {
		_, ok := Summarize(&Column{Name: "x", Type: Null})
		assert.False(t, ok)
	})
}

func TestSummarizer_Summarize(t *testing.T) {
	set := NewSummarizer(nil).Summarize(context.Background(), readTable(t, tweetsCSV))

	assert.Equal(t, []string{"likeCount", "lang", "mixed"}, set.Keys())

	likes, _ := set.Get("likeCount")
	assert.Equal(t, 3, likes.Count)
	assert.Equal(t, 8.0, *likes.Mean)
	assert.False(t, math.Signbit(*likes.StdDev))

	lang, _ := set.Get("lang")
	assert.Equal(t, 3, lang.Count)
	assert.Equal(t, "en", *lang.MostCommon)
}
