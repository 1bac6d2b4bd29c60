// Package parse decodes YAML documents into document trees, keeping
// the key order of every mapping.
package parse

import (
	"fmt"
	"strings"

	"github.com/signadot/yamlprocessor/yp/ir"

	"github.com/goccy/go-yaml"
)

func Parse(d []byte, opts ...ParseOption) (*ir.Node, error) {
	pOpts := &parseOpts{filename: "<input>"}
	for _, opt := range opts {
		opt(pOpts)
	}
	var v any
	if err := yaml.UnmarshalWithOptions(d, &v, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, pOpts.filename, err)
	}
	node, err := fromYAML(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pOpts.filename, err)
	}
	return node, nil
}

// FirstLine returns the first line of d without its line terminator.
func FirstLine(d []byte) string {
	s := string(d)
	if i := strings.IndexByte(s, '\n'); i != -1 {
		s = s[:i]
	}
	return strings.TrimSuffix(s, "\r")
}

func fromYAML(v any) (*ir.Node, error) {
	switch x := v.(type) {
	case yaml.MapSlice:
		kvs := make([]ir.KeyVal, 0, len(x))
		for _, item := range x {
			k, err := fromYAML(item.Key)
			if err != nil {
				return nil, err
			}
			if !k.Type.IsLeaf() {
				return nil, fmt.Errorf("%w: got %s", ErrKeyType, k.Type)
			}
			val, err := fromYAML(item.Value)
			if err != nil {
				return nil, err
			}
			kvs = append(kvs, ir.KeyVal{Key: k, Val: val})
		}
		return ir.FromKeyVals(kvs), nil
	case []any:
		vs := make([]*ir.Node, len(x))
		for i, elt := range x {
			n, err := fromYAML(elt)
			if err != nil {
				return nil, err
			}
			vs[i] = n
		}
		return ir.FromSlice(vs), nil
	}
	n, err := ir.FromJSONAny(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNodeType, err)
	}
	return n, nil
}
