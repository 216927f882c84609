package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OverallKey names the ungrouped section of a grouped dataset report.
const OverallKey = "overall"

// GroupedPrefix starts every grouped section name, e.g. "grouped_by_page_id_ad_id".
const GroupedPrefix = "grouped_by_"

// ColumnSet maps column name to its statistics, in CSV header order.
type ColumnSet = OrderedMap[ColumnStats]

// GroupSet maps a rendered group key to the column statistics of that group.
type GroupSet = OrderedMap[*ColumnSet]

// Report maps dataset name to that dataset's section, in configured order.
type Report = OrderedMap[*Section]

// NewColumnSet returns an empty column set.
func NewColumnSet() *ColumnSet { return NewOrderedMap[ColumnStats]() }

// NewGroupSet returns an empty group set.
func NewGroupSet() *GroupSet { return NewOrderedMap[*ColumnSet]() }

// NewReport returns an empty report.
func NewReport() *Report { return NewOrderedMap[*Section]() }

// Section is one dataset's slice of a report. Engines without grouping fill
// Columns only. The grouping engine fills Overall and Groups instead, which
// serializes as {"overall": {...}, "grouped_by_<keys>": {...}, ...}.
type Section struct {
	Columns *ColumnSet
	Overall *ColumnSet
	Groups  *OrderedMap[*GroupSet]
}

// Grouped reports whether the section carries the overall/grouped layout.
func (s *Section) Grouped() bool {
	return s.Overall != nil
}

// Column returns one column's statistics from the flat or overall set.
func (s *Section) Column(name string) (ColumnStats, bool) {
	if s.Grouped() {
		return s.Overall.Get(name)
	}
	return s.Columns.Get(name)
}

// ColumnNames returns the column names of the flat or overall set.
func (s *Section) ColumnNames() []string {
	if s.Grouped() {
		return s.Overall.Keys()
	}
	return s.Columns.Keys()
}

// MarshalJSON implements json.Marshaler.
func (s *Section) MarshalJSON() ([]byte, error) {
	if !s.Grouped() {
		if s.Columns == nil {
			return []byte("{}"), nil
		}
		return s.Columns.MarshalJSON()
	}

	out := NewOrderedMap[json.Marshaler]()
	out.Set(OverallKey, s.Overall)
	s.Groups.Range(func(name string, g *GroupSet) bool {
		out.Set(name, g)
		return true
	})
	return out.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler. An object whose "overall" value
// is an object of column records is read as the grouped layout; a flat
// column named "overall" holds statistics and is read as a column.
func (s *Section) UnmarshalJSON(data []byte) error {
	raw := NewOrderedMap[json.RawMessage]()
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}

	overall, ok := raw.Get(OverallKey)
	if ok && isColumnRecords(overall) {
		s.Overall = NewColumnSet()
		if err := s.Overall.UnmarshalJSON(overall); err != nil {
			return fmt.Errorf("decode overall: %w", err)
		}
		s.Groups = NewOrderedMap[*GroupSet]()
		var decodeErr error
		raw.Range(func(key string, msg json.RawMessage) bool {
			if key == OverallKey {
				return true
			}
			g := NewGroupSet()
			if err := g.UnmarshalJSON(msg); err != nil {
				decodeErr = fmt.Errorf("decode %s: %w", key, err)
				return false
			}
			s.Groups.Set(key, g)
			return true
		})
		return decodeErr
	}

	s.Columns = NewColumnSet()
	return s.Columns.UnmarshalJSON(data)
}

// isColumnRecords reports whether msg is an object whose every value is an
// object. Column statistics always carry a numeric "count", so they never
// qualify.
func isColumnRecords(msg json.RawMessage) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(msg, &fields); err != nil {
		return false
	}
	for _, v := range fields {
		if v = bytes.TrimSpace(v); len(v) == 0 || v[0] != '{' {
			return false
		}
	}
	return true
}

// SectionName renders the grouped section name for a set of key columns.
func SectionName(keys []string) string {
	return GroupedPrefix + strings.Join(keys, "_")
}
