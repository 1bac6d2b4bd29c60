package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/signadot/yamlprocessor/yp/debug"
	"github.com/signadot/yamlprocessor/yp/ir"

	"github.com/santhosh-tekuri/jsonschema/v5"
	_ "github.com/santhosh-tekuri/jsonschema/v5/httploader"
	"github.com/tidwall/jsonc"
)

// rootName is the resource holding the {"$ref": ref} wrapper schema.
const rootName = ".yp-root.schema.json"

// Validate validates doc against the schema at ref.
func Validate(doc *ir.Node, ref string) error {
	s, err := Compile(ref)
	if err != nil {
		return err
	}
	v, err := instance(doc)
	if err != nil {
		return err
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// Compile compiles the schema {"$ref": ref}. Relative references are
// taken relative to the working directory.
func Compile(ref string) (*jsonschema.Schema, error) {
	if s := lookup(ref); s != nil {
		return s, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root := fileURL(filepath.Join(wd, rootName))
	wrapper, err := json.Marshal(map[string]string{"$ref": ref})
	if err != nil {
		return nil, err
	}
	var missing string
	c := jsonschema.NewCompiler()
	c.LoadURL = func(s string) (io.ReadCloser, error) {
		r, err := loadURL(s)
		if errors.Is(err, fs.ErrNotExist) {
			missing = s
		}
		return r, err
	}
	if err := c.AddResource(root, bytes.NewReader(wrapper)); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompile, ref, err)
	}
	s, err := c.Compile(root)
	if err != nil {
		if missing != "" {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, missing, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrCompile, ref, err)
	}
	if debug.Schema() {
		debug.Logf("compiled schema %s\n", ref)
	}
	register(ref, s)
	return s, nil
}

// loadURL reads local schema files allowing comments and trailing
// commas. Other URLs go to the loaders registered with jsonschema.
func loadURL(s string) (io.ReadCloser, error) {
	u, err := url.Parse(s)
	if err != nil || u.Scheme != "file" {
		return jsonschema.LoadURL(s)
	}
	d, err := os.ReadFile(filepath.FromSlash(u.Path))
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(jsonc.ToJSON(d))), nil
}

// instance gives the JSON view of doc in the form produced by decoding
// with json.Decoder.UseNumber.
func instance(doc *ir.Node) (any, error) {
	d, err := json.Marshal(ir.ToJSONAny(doc))
	if err != nil {
		return nil, fmt.Errorf("could not convert document to json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(d))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
