package stats

import (
	"strings"

	"descstats/internal/table"
	"descstats/pkg/contracts/domain"
)

// GroupKeySeparator joins the values of a multi-column key.
const GroupKeySeparator = "|"

// GroupKey is the tuple of raw key values identifying a group
type GroupKey []string

// String renders the key as its values joined with "|".
func (k GroupKey) String() string {
	return strings.Join(k, GroupKeySeparator)
}

// Group is one partition of a table's rows
type Group struct {
	Key  GroupKey
	Rows []table.Row
}

// Groups holds the partitions in first-appearance order plus the rows that
// could not be placed.
type Groups struct {
	Keys    []string
	Groups  []*Group
	Skipped int
}

// Len returns the number of groups
func (g *Groups) Len() int {
	return len(g.Groups)
}

// Rows returns the total number of grouped rows
func (g *Groups) Rows() int {
	n := 0
	for _, grp := range g.Groups {
		n += len(grp.Rows)
	}
	return n
}

// GroupRows partitions the rows of t by the raw values of keys. A row missing
// any key is skipped, which includes every row when a key column is absent.
func GroupRows(t *table.Table, keys []string) *Groups {
	out := &Groups{Keys: keys}
	index := make(map[string]*Group)

	for _, row := range t.Rows {
		key, ok := rowKey(row, keys)
		if !ok {
			out.Skipped++
			continue
		}
		id := quoteKey(key)
		grp, found := index[id]
		if !found {
			grp = &Group{Key: key}
			index[id] = grp
			out.Groups = append(out.Groups, grp)
		}
		grp.Rows = append(grp.Rows, row)
	}
	return out
}

func rowKey(row table.Row, keys []string) (GroupKey, bool) {
	key := make(GroupKey, len(keys))
	for i, k := range keys {
		v, ok := row[k]
		if !ok || !v.Present {
			return nil, false
		}
		key[i] = v.Raw
	}
	return key, true
}

// AnalyseGroups summarizes every column of every group, keyed by
// GroupKey.String.
func AnalyseGroups(headers []string, groups *Groups) *domain.GroupSet {
	set := domain.NewGroupSet()
	for _, grp := range groups.Groups {
		name := grp.Key.String()
		if _, dup := set.Get(name); dup {
			// Distinct tuples can render alike when a value holds the separator.
			name = quoteKey(grp.Key)
		}
		set.Set(name, analyseRows(headers, grp.Rows))
	}
	return set
}

func quoteKey(k GroupKey) string {
	parts := make([]string, len(k))
	for i, v := range k {
		parts[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return strings.Join(parts, GroupKeySeparator)
}

// Preview returns the first max groups of set, or all of them when max <= 0.
func Preview(set *domain.GroupSet, max int) *domain.GroupSet {
	if max <= 0 || set.Len() <= max {
		return set
	}
	out := domain.NewGroupSet()
	for _, k := range set.Keys()[:max] {
		v, _ := set.Get(k)
		out.Set(k, v)
	}
	return out
}

// SectionName renders the grouped section name for a set of key columns.
func SectionName(keys []string) string {
	return domain.SectionName(keys)
}
