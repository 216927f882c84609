package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"descstats/pkg/contracts/domain"
)

// Console prints human readable previews while an engine runs.
type Console struct {
	w io.Writer
}

// NewConsole creates a console printing to w, or to stdout when w is nil.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

// Analyzing announces a dataset
func (c *Console) Analyzing(label string) {
	fmt.Fprintf(c.w, "\n=== Analyzing: %s ===\n", label)
}

// Columns prints each column's statistics.
func (c *Console) Columns(set *domain.ColumnSet) {
	if set == nil {
		return
	}
	set.Range(func(col string, st domain.ColumnStats) bool {
		fmt.Fprintf(c.w, "\nColumn: %s\n", col)
		for _, f := range st.Fields() {
			fmt.Fprintf(c.w, "  %-20s: %v\n", f.Name, f.Value)
		}
		fmt.Fprintln(c.w, strings.Repeat("-", 50))
		return true
	})
}

// Groups prints the groups of one grouped section under title.
func (c *Console) Groups(title string, groups *domain.GroupSet) {
	fmt.Fprintf(c.w, "\n--- %s ---\n", title)
	if groups == nil {
		return
	}
	groups.Range(func(key string, set *domain.ColumnSet) bool {
		fmt.Fprintf(c.w, "\nGroup: %s\n", key)
		set.Range(func(col string, st domain.ColumnStats) bool {
			fmt.Fprintf(c.w, "  %s\n", col)
			for _, f := range st.Fields() {
				fmt.Fprintf(c.w, "    %-18s: %v\n", f.Name, f.Value)
			}
			return true
		})
		fmt.Fprintln(c.w, strings.Repeat("-", 60))
		return true
	})
}

// Saved reports a written output file.
func (c *Console) Saved(what, path string) {
	fmt.Fprintf(c.w, "\n%s saved to '%s'\n", what, path)
}
