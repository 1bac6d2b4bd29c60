package yp

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/signadot/yamlprocessor/yp/debug"
	"github.com/signadot/yamlprocessor/yp/timevar"
)

const (
	EnvIncludePath  = "YP_INCLUDE_PATH"
	EnvSchemaPrefix = "YP_SCHEMA_PREFIX"
	EnvTimeRef      = "YP_TIME_REF_VALUE"
	EnvTimeFormat   = "YP_TIME_FORMAT"
)

// LoadEnv configures p from the YP_* entries of environ, given in the
// form of os.Environ.
func (p *Processor) LoadEnv(environ []string) error {
	env := EnvVariables(environ)
	if v := env[EnvIncludePath]; v != "" {
		p.IncludePaths = append(p.IncludePaths, SplitPathList(v)...)
	}
	if v, ok := env[EnvSchemaPrefix]; ok {
		p.SchemaPrefix = v
	}
	calc := p.Expander.Time
	if v := env[EnvTimeRef]; v != "" && calc != nil {
		t, err := timevar.ParseTime(v)
		if err != nil {
			return fmt.Errorf("error decoding env $%s: %w", EnvTimeRef, err)
		}
		calc.Ref = t
	}
	if calc != nil {
		for name, f := range EnvTimeFormats(environ) {
			calc.Formats[name] = f
		}
	}
	if debug.LoadEnv() {
		debug.Logf("loaded env: include paths %v, schema prefix %q\n", p.IncludePaths, p.SchemaPrefix)
	}
	return nil
}

// EnvTimeFormats extracts time formats from environment entries of the
// form YP_TIME_FORMAT=FMT (the default format) and
// YP_TIME_FORMAT_NAME=FMT.
func EnvTimeFormats(environ []string) map[string]string {
	res := map[string]string{}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch {
		case k == EnvTimeFormat:
			res[""] = v
		case strings.HasPrefix(k, EnvTimeFormat+"_"):
			res[k[len(EnvTimeFormat)+1:]] = v
		}
	}
	return res
}

// EnvVariables returns environment entries as variables.
func EnvVariables(environ []string) map[string]string {
	res := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		res[k] = v
	}
	return res
}

// SplitPathList splits a list of directories separated by the OS path
// list separator, dropping empty elements.
func SplitPathList(v string) []string {
	var res []string
	for _, dir := range filepath.SplitList(v) {
		if dir != "" {
			res = append(res, dir)
		}
	}
	return res
}
