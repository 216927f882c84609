package cli

import (
	"fmt"
	"log/slog"

	"descstats/internal/charts"
	"descstats/internal/files"
	"descstats/internal/operations"
)

// RunPlots renders the charts of every configured dataset into
// figures/<dataset>/.
func RunPlots(env *Env) ([]charts.Figure, error) {
	renderer := charts.NewRenderer(env.Config.Charts, files.NewManager(env.Paths, env.Logger), env.Logger)

	figures, err := operations.NewPlotRunner(renderer, env.RunnerOptions()).Run(env.Ctx, env.Config.Datasets)
	if err != nil {
		return nil, err
	}

	for _, ds := range env.Config.Datasets {
		fmt.Fprintf(env.Stdout, " Plots stored in %s\n", display(env, env.Paths.GetDatasetFiguresDir(ds.Name)))
	}
	fmt.Fprintln(env.Stdout, "\n All plots generated and saved.")

	env.Logger.InfoContext(env.Ctx, "Plots completed", slog.Int("figures", len(figures)))
	return figures, nil
}
