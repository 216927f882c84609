// Package table loads CSV files into rows of coerced cell values.
//
// Every cell goes through Coerce: text that parses as a finite float becomes
// numeric, anything else stays a trimmed string. Rows shorter than the header
// yield values with Present set to false rather than an error.
package table

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	apperrors "descstats/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Value is one coerced cell
type Value struct {
	Raw     string
	Num     float64
	Numeric bool
	// Present is false when the row had no field for this column.
	Present bool
}

// Row maps header name to cell value
type Row map[string]Value

// Table is a loaded CSV file
type Table struct {
	Name    string
	Headers []string
	Rows    []Row
}

// LoadOptions controls header and cell handling
type LoadOptions struct {
	// NormalizeHeaders trims and lower-cases every header.
	NormalizeHeaders bool
	// TrimSpace trims cell text before it is stored in Raw.
	TrimSpace bool
}

// Coerce tries to read raw as a float. Non-finite results such as NaN and
// Inf stay strings, as does empty text.
func Coerce(raw string) Value {
	text := strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(text, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Value{Raw: text, Num: f, Numeric: true, Present: true}
	}
	return Value{Raw: text, Present: true}
}

// Load opens path and reads it with Read. The table is named after the file.
func Load(ctx context.Context, path string, opts LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open CSV file", err).
			WithContext("path", path)
	}
	defer f.Close()

	t, err := ReadContext(ctx, f, path, opts)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Read parses CSV data from r
func Read(r io.Reader, name string, opts LoadOptions) (*Table, error) {
	return ReadContext(context.Background(), r, name, opts)
}

// ReadContext parses CSV data from r, checking ctx between records.
func ReadContext(ctx context.Context, r io.Reader, name string, opts LoadOptions) (*Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewParsingError("CSV has no header row", nil).
			WithContext("name", name)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read CSV header", err).
			WithContext("name", name)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		if opts.NormalizeHeaders {
			h = strings.ToLower(strings.TrimSpace(h))
		}
		headers[i] = h
	}

	t := &Table{Name: name, Headers: headers}
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read CSV record", err).
				WithContext("name", name).
				WithContext("line", line)
		}

		row := make(Row, len(headers))
		for i, h := range headers {
			if i >= len(record) {
				row[h] = Value{}
				continue
			}
			// Num is parsed from trimmed text; Raw keeps the cell as written
			v := Coerce(record[i])
			if !opts.TrimSpace {
				v.Raw = record[i]
			}
			row[h] = v
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether name is one of the headers
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Column returns the values of one column in row order
func (t *Table) Column(name string) ([]Value, bool) {
	if !t.HasColumn(name) {
		return nil, false
	}
	values := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[name]
	}
	return values, true
}

// String implements fmt.Stringer
func (t *Table) String() string {
	return fmt.Sprintf("%s (%d columns, %d rows)", t.Name, len(t.Headers), len(t.Rows))
}
