package table

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "descstats/internal/errors"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		numeric bool
		num     float64
		text    string
	}{
		{"integer", "42", true, 42, "42"},
		{"float with spaces", " 3.5 ", true, 3.5, "3.5"},
		{"negative exponent", "-1e-3", true, -0.001, "-1e-3"},
		{"empty", "", false, 0, ""},
		{"blank", "   ", false, 0, ""},
		{"text", " USD ", false, 0, "USD"},
		{"nan stays text", "NaN", false, 0, "NaN"},
		{"inf stays text", "inf", false, 0, "inf"},
		{"thousands separator", "1,000", false, 0, "1,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Coerce(tt.raw)
			assert.True(t, v.Present)
			assert.Equal(t, tt.numeric, v.Numeric)
			assert.Equal(t, tt.num, v.Num)
			assert.Equal(t, tt.text, v.Raw)
		})
	}
}

func TestRead(t *testing.T) {
	data := "\xEF\xBB\xBF Page_ID ,Spend,Currency\n1,10.5, USD\n1,,EUR\n2,7\n"

	tbl, err := Read(strings.NewReader(data), "ads", LoadOptions{NormalizeHeaders: true, TrimSpace: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"page_id", "spend", "currency"}, tbl.Headers)
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, "ads (3 columns, 3 rows)", tbl.String())

	spend, ok := tbl.Column("spend")
	require.True(t, ok)
	assert.True(t, spend[0].Numeric)
	assert.Equal(t, 10.5, spend[0].Num)
	assert.False(t, spend[1].Numeric, "empty cell is a string value")
	assert.True(t, spend[1].Present)

	currency, _ := tbl.Column("currency")
	assert.Equal(t, "USD", currency[0].Raw)
	assert.False(t, currency[2].Present, "short row leaves the field missing")

	_, ok = tbl.Column("absent")
	assert.False(t, ok)
	assert.True(t, tbl.HasColumn("page_id"))
}

func TestRead_KeepsHeadersAndTextVerbatim(t *testing.T) {
	data := "Page Category,Likes\n Media ,3\n"

	tbl, err := Read(strings.NewReader(data), "posts", LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Page Category", "Likes"}, tbl.Headers)
	cat, _ := tbl.Column("Page Category")
	assert.Equal(t, " Media ", cat[0].Raw)
}

func TestRead_NumericCellsKeepRawText(t *testing.T) {
	data := "page_id,n\n 12,1\n12 ,2\n"

	tbl, err := Read(strings.NewReader(data), "pages", LoadOptions{})
	require.NoError(t, err)
	ids, _ := tbl.Column("page_id")
	require.Len(t, ids, 2)
	assert.Equal(t, " 12", ids[0].Raw)
	assert.Equal(t, "12 ", ids[1].Raw)
	assert.True(t, ids[0].Numeric)
	assert.Equal(t, 12.0, ids[0].Num)

	trimmed, err := Read(strings.NewReader(data), "pages", LoadOptions{TrimSpace: true})
	require.NoError(t, err)
	ids, _ = trimmed.Column("page_id")
	assert.Equal(t, "12", ids[0].Raw)
	assert.Equal(t, "12", ids[1].Raw)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(strings.NewReader(""), "empty", LoadOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ReadContext(ctx, strings.NewReader("a\n1\n"), "cancelled", LoadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRead_LazyQuotes(t *testing.T) {
	data := "text,n\nsay \"hi\" there,1\n"

	tbl, err := Read(strings.NewReader(data), "quotes", LoadOptions{})
	require.NoError(t, err)
	col, _ := tbl.Column("text")
	assert.Equal(t, `say "hi" there`, col[0].Raw)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tw.csv")
	require.NoError(t, os.WriteFile(path, []byte("lang,likeCount\nen,5\n"), 0644))

	tbl, err := Load(context.Background(), path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, path, tbl.Name)
	assert.Equal(t, 1, tbl.Len())

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), LoadOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
