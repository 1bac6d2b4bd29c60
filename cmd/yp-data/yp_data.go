package main

import (
	"fmt"

	"github.com/signadot/yamlprocessor/yp"
	"github.com/signadot/yamlprocessor/yp/eval"
	"github.com/signadot/yamlprocessor/yp/timevar"

	"github.com/scott-cotton/cli"
)

// set with -ldflags "-X main.version=..."
var version = "devel"

func ypData(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Version {
		fmt.Fprintf(cc.Out, "yp-data %s\n", version)
		return nil
	}
	if len(args) > 2 {
		return fmt.Errorf("%w: expected at most 2 arguments, got %d", cli.ErrUsage, len(args))
	}
	in, out := yp.StdioName, yp.StdioName
	if len(args) > 0 {
		in = args[0]
	}
	if len(args) > 1 {
		out = args[1]
	}
	p, err := cfg.processor(cc)
	if err != nil {
		return err
	}
	return p.Process(in, out)
}

func (cfg *MainConfig) processor(cc *cli.Context) (*yp.Processor, error) {
	p := yp.DefaultProcessor()
	if err := p.LoadEnv(cc.Env); err != nil {
		return nil, err
	}
	p.IncludePaths = append(p.IncludePaths, cfg.IncludePaths...)
	if cfg.SchemaPrefix != nil {
		p.SchemaPrefix = *cfg.SchemaPrefix
	}
	p.ProcessInclude = !cfg.NoProcessInclude
	p.Variables = cfg.variables(cc.Env)

	x := p.Expander
	x.Disabled = cfg.NoProcessVariable
	x.Policy, x.Placeholder = eval.PolicyFor(cfg.Placeholder)
	if cfg.TimeRef != "" {
		t, err := timevar.ParseTime(cfg.TimeRef)
		if err != nil {
			return nil, fmt.Errorf("%w: -time-ref: %w", cli.ErrUsage, err)
		}
		x.Time.Ref = t
	}
	for name, f := range cfg.timeFormats() {
		x.Time.Formats[name] = f
	}

	p.Log = theLog
	p.Stdin = cc.In
	p.Stdout = cc.Out
	p.EncodeOptions = cfg.encOpts(cc.Out)
	return p, nil
}
