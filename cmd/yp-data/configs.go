package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/signadot/yamlprocessor/yp"
	"github.com/signadot/yamlprocessor/yp/encode"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	NoEnvironment     bool   `cli:"name=i aliases=no-environment desc='do not use environment variables for substitutions'"`
	NoProcessInclude  bool   `cli:"name=no-process-include desc='do not process include directives'"`
	NoProcessVariable bool   `cli:"name=no-process-variable desc='do not process variable substitutions'"`
	TimeRef           string `cli:"name=time-ref desc='reference time for date-time substitutions (overrides $YP_TIME_REF_VALUE)'"`
	Indent            int    `cli:"name=indent desc='spaces per indentation level' default=2"`
	Color             bool   `cli:"name=color desc='encode with color'"`
	Version           bool   `cli:"name=V aliases=version desc='print version and exit'"`

	IncludePaths []string
	Defines      []string
	Undefines    []string
	Placeholder  *string
	SchemaPrefix *string
	TimeFormats  []string

	Main *cli.Command
}

func (cfg *MainConfig) includeOpt(_ *cli.Context, a string) (any, error) {
	cfg.IncludePaths = append(cfg.IncludePaths, yp.SplitPathList(a)...)
	return nil, nil
}

func (cfg *MainConfig) defineOpt(_ *cli.Context, a string) (any, error) {
	if !strings.Contains(a, "=") {
		return nil, fmt.Errorf("%w: -D %q: expected KEY=VALUE", cli.ErrUsage, a)
	}
	cfg.Defines = append(cfg.Defines, a)
	return nil, nil
}

func (cfg *MainConfig) undefineOpt(_ *cli.Context, a string) (any, error) {
	cfg.Undefines = append(cfg.Undefines, a)
	return nil, nil
}

func (cfg *MainConfig) placeholderOpt(_ *cli.Context, a string) (any, error) {
	cfg.Placeholder = &a
	return a, nil
}

func (cfg *MainConfig) schemaPrefixOpt(_ *cli.Context, a string) (any, error) {
	cfg.SchemaPrefix = &a
	return a, nil
}

func (cfg *MainConfig) timeFormatOpt(_ *cli.Context, a string) (any, error) {
	cfg.TimeFormats = append(cfg.TimeFormats, a)
	return nil, nil
}

// variables builds the substitution variables from environ and the
// -U and -D options, in that order.
func (cfg *MainConfig) variables(environ []string) map[string]string {
	res := map[string]string{}
	if !cfg.NoEnvironment {
		res = yp.EnvVariables(environ)
	}
	for _, k := range cfg.Undefines {
		delete(res, k)
	}
	for _, kv := range cfg.Defines {
		k, v, _ := strings.Cut(kv, "=")
		res[k] = v
	}
	return res
}

// timeFormats returns the -time-format options by name, the empty
// name being the default format.
func (cfg *MainConfig) timeFormats() map[string]string {
	res := map[string]string{}
	for _, f := range cfg.TimeFormats {
		name, fmat, ok := strings.Cut(f, "=")
		if !ok {
			name, fmat = "", f
		}
		res[name] = fmat
	}
	return res
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	var res []encode.EncodeOption
	if cfg.Indent > 0 {
		res = append(res, encode.EncodeIndent(cfg.Indent))
	}
	if cfg.Color {
		return append(res, encode.EncodeColors(encode.NewColors()))
	}
	colorsSet := false
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		colorsSet = opt.Value != nil
		break
	}
	if colorsSet {
		return res
	}
	f, ok := w.(*os.File)
	if !ok {
		return res
	}
	if isatty.IsTerminal(f.Fd()) {
		res = append(res, encode.EncodeColors(encode.NewColors()))
	}
	return res
}
