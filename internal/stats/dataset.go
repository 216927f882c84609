package stats

import (
	"context"
	"log/slog"

	"descstats/internal/table"
	"descstats/pkg/contracts/domain"
)

// GroupingResult describes one grouping of a dataset
type GroupingResult struct {
	Keys    []string
	Section string
	Groups  int
	Rows    int
	Skipped int
	// Preview holds the statistics of the first groups only.
	Preview *domain.GroupSet
}

// Analyzer runs the manual engine over a loaded table
type Analyzer struct {
	logger        *slog.Logger
	previewGroups int
}

// NewAnalyzer creates an analyzer. previewGroups bounds how many groups per
// grouping are summarized into the output; 0 keeps them all.
func NewAnalyzer(logger *slog.Logger, previewGroups int) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger, previewGroups: previewGroups}
}

// Analyse builds the grouped section of t: overall statistics plus one
// grouped entry per key set in groupKeys.
func (a *Analyzer) Analyse(ctx context.Context, t *table.Table, groupKeys [][]string) (*domain.Section, []GroupingResult, error) {
	section := &domain.Section{
		Overall: Analyse(t),
		Groups:  domain.NewOrderedMap[*domain.GroupSet](),
	}

	results := make([]GroupingResult, 0, len(groupKeys))
	for _, keys := range groupKeys {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		for _, k := range keys {
			if !t.HasColumn(k) {
				a.logger.WarnContext(ctx, "Group key column not found, every row skipped",
					slog.String("dataset", t.Name),
					slog.String("column", k))
			}
		}

		groups := GroupRows(t, keys)
		shown := groups
		if a.previewGroups > 0 && groups.Len() > a.previewGroups {
			shown = &Groups{Keys: keys, Groups: groups.Groups[:a.previewGroups]}
		}

		result := GroupingResult{
			Keys:    keys,
			Section: SectionName(keys),
			Groups:  groups.Len(),
			Rows:    groups.Rows(),
			Skipped: groups.Skipped,
			Preview: AnalyseGroups(t.Headers, shown),
		}
		section.Groups.Set(result.Section, result.Preview)
		results = append(results, result)

		a.logger.InfoContext(ctx, "Rows grouped",
			slog.String("section", result.Section),
			slog.Int("groups", result.Groups),
			slog.Int("grouped_rows", result.Rows),
			slog.Int("skipped_rows", result.Skipped),
			slog.Int("previewed", result.Preview.Len()))
	}

	return section, results, nil
}
