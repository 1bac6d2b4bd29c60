package main

import (
	"github.com/scott-cotton/cli"
)

type MainConfig struct {
	NoEnvironment bool   `cli:"name=i aliases=no-environment desc='do not use environment variables for substitutions'"`
	Out           string `cli:"name=o aliases=output-file desc='output file, - for stdout' default=-"`

	Defines []string

	Main *cli.Command
}

func MainCommand() *cli.Command {
	cfg := &MainConfig{Out: "-"}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "D",
		Aliases:     []string{"define"},
		Description: "map KEY to VALUE for variable substitutions",
		Type:        cli.NamedFuncOpt(cfg.defineOpt, "(KEY=VALUE)"),
	})
	return cli.NewCommandAt(&cfg.Main, "yp-preprocess").
		WithSynopsis("yp-preprocess [opts] in-file").
		WithDescription(`yp-preprocess replaces each line of in-file containing
DIRECT_INCLUDE=FILE with the contents of FILE. $NAME and ${NAME} in
FILE are substituted, and unknown names are left as they are.`).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return ypPreprocess(cfg, cc, args)
		})
}
