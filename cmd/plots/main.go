// Command plots renders a histogram, a boxplot and top-N bar charts for each
// configured dataset under figures/<dataset>/.
package main

import (
	"context"
	"flag"
	"fmt"

	"descstats/internal/cli"
	"descstats/pkg/contracts"
)

const binary = "plots"

func main() {
	var flags cli.Flags
	flags.Register(flag.CommandLine)
	flag.Parse()

	if flags.Version {
		fmt.Println(contracts.GetFullVersionString(binary))
		return
	}

	cli.Exit(binary, run(context.Background(), &flags))
}

func run(ctx context.Context, flags *cli.Flags) error {
	env, err := cli.Setup(ctx, binary, flags)
	if err != nil {
		return err
	}
	defer env.Close()

	_, err = cli.RunPlots(env)
	return err
}
