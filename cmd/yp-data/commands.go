package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, []*cli.Opt{
		&cli.Opt{
			Name:        "I",
			Aliases:     []string{"include"},
			Description: "add search locations for relative includes",
			Type:        cli.NamedFuncOpt(cfg.includeOpt, "(dir)"),
		},
		&cli.Opt{
			Name:        "D",
			Aliases:     []string{"define"},
			Description: "map KEY to VALUE for variable substitutions",
			Type:        cli.NamedFuncOpt(cfg.defineOpt, "(KEY=VALUE)"),
		},
		&cli.Opt{
			Name:        "U",
			Aliases:     []string{"undefine"},
			Description: "unmap KEY for variable substitutions",
			Type:        cli.NamedFuncOpt(cfg.undefineOpt, "(KEY)"),
		},
		&cli.Opt{
			Name:        "unbound-placeholder",
			Description: "substitute unbound variables with VALUE instead of failing",
			Type:        cli.NamedFuncOpt(cfg.placeholderOpt, "(VALUE)"),
		},
		&cli.Opt{
			Name:        "schema-prefix",
			Description: "prefix for relative schema locations (overrides $YP_SCHEMA_PREFIX)",
			Type:        cli.NamedFuncOpt(cfg.schemaPrefixOpt, "(prefix)"),
		},
		&cli.Opt{
			Name:        "time-format",
			Description: "format for date-time substitutions (overrides $YP_TIME_FORMAT*)",
			Type:        cli.NamedFuncOpt(cfg.timeFormatOpt, "([NAME=]FORMAT)"),
		}}...)

	return cli.NewCommandAt(&cfg.Main, "yp-data").
		WithSynopsis("yp-data [opts] [in-file [out-file]]").
		WithDescription(mainDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return ypData(cfg, cc, args)
		})
}

const mainDescription = `yp-data processes include directives and variable
substitutions in a YAML document.

in-file and out-file default to "-", standard input and output.

An include is a map with an INCLUDE key, naming a file to be included
in place of the map. QUERY selects part of the included document and
VARIABLES binds variables for the included document. With MERGE true,
a sequence or map is merged into the enclosing one.

Placeholders $NAME and ${NAME} in strings are replaced by variable
values. ${NAME.int}, ${NAME.float} and ${NAME.bool} produce typed
values. Names beginning with YP_TIME_ produce date-times.

If the first line of in-file is a schema comment, the output is
validated against the schema.`
