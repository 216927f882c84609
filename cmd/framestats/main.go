// Command framestats computes descriptive statistics for the configured datasets
// with the gota dataframe engine and writes frame_stats_output.json.
package main

import (
	"context"
	"flag"
	"fmt"

	"descstats/internal/cli"
	"descstats/pkg/contracts"
)

const binary = "framestats"

func main() {
	var (
		flags cli.Flags
		opts  cli.StatsOptions
	)
	flags.Register(flag.CommandLine)
	flag.BoolVar(&opts.CSV, "csv", false, "also write the report as CSV")
	flag.BoolVar(&opts.NoWorkbook, "no-xlsx", false, "skip the workbook export")
	flag.Parse()

	if flags.Version {
		fmt.Println(contracts.GetFullVersionString(binary))
		return
	}

	cli.Exit(binary, run(context.Background(), &flags, opts))
}

func run(ctx context.Context, flags *cli.Flags, opts cli.StatsOptions) error {
	env, err := cli.Setup(ctx, binary, flags)
	if err != nil {
		return err
	}
	defer env.Close()

	return cli.RunStats(env, "frame", opts)
}
