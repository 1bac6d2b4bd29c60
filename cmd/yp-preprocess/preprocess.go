package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/signadot/yamlprocessor/yp"
	"github.com/signadot/yamlprocessor/yp/preprocess"

	"github.com/natefinch/atomic"
	"github.com/scott-cotton/cli"
)

func ypPreprocess(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: expected 1 input file, got %d", cli.ErrUsage, len(args))
	}
	var in io.Reader = cc.In
	if args[0] != yp.StdioName {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	buf := bytes.NewBuffer(nil)
	if err := preprocess.New(cfg.variables(cc.Env)).Process(in, buf); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if cfg.Out == "" || cfg.Out == yp.StdioName {
		_, err := io.Copy(cc.Out, buf)
		return err
	}
	if err := atomic.WriteFile(cfg.Out, buf); err != nil {
		return fmt.Errorf("could not write %s: %w", cfg.Out, err)
	}
	theLog.Info("wrote " + cfg.Out)
	return nil
}

func (cfg *MainConfig) defineOpt(_ *cli.Context, a string) (any, error) {
	if !strings.Contains(a, "=") {
		return nil, fmt.Errorf("%w: -D %q: expected KEY=VALUE", cli.ErrUsage, a)
	}
	cfg.Defines = append(cfg.Defines, a)
	return nil, nil
}

// variables are the environment, unless disabled, overridden by -D
// options.
func (cfg *MainConfig) variables(environ []string) map[string]string {
	res := map[string]string{}
	if !cfg.NoEnvironment {
		res = yp.EnvVariables(environ)
	}
	for _, kv := range cfg.Defines {
		k, v, _ := strings.Cut(kv, "=")
		res[k] = v
	}
	return res
}
