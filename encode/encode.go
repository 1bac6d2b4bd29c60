// Package encode writes document trees as block style YAML.
package encode

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/signadot/yamlprocessor/yp/ir"

	"github.com/goccy/go-yaml"
)

type EncState struct {
	indent int
	colors *Colors
}

func Encode(node *ir.Node, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{indent: 2}
	for _, opt := range opts {
		opt(es)
	}
	d, err := yaml.MarshalWithOptions(toYAML(node),
		yaml.Indent(es.indent),
		yaml.UseLiteralStyleIfMultiline(true))
	if err != nil {
		return fmt.Errorf("could not encode yaml: %w", err)
	}
	out := string(d)
	if es.colors != nil {
		out = es.colors.Color(out)
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err = io.WriteString(w, out)
	return err
}

func toYAML(node *ir.Node) any {
	switch node.Type {
	case ir.ObjectType:
		res := make(yaml.MapSlice, len(node.Fields))
		for i, f := range node.Fields {
			res[i] = yaml.MapItem{Key: toYAML(f), Value: toYAML(node.Values[i])}
		}
		return res
	case ir.ArrayType:
		res := make([]any, len(node.Values))
		for i, elt := range node.Values {
			res[i] = toYAML(elt)
		}
		return res
	case ir.StringType:
		return node.String
	case ir.BoolType:
		return node.Bool
	case ir.NumberType:
		switch {
		case node.Int64 != nil:
			return *node.Int64
		case node.Float64 != nil:
			return *node.Float64
		}
		if u, err := strconv.ParseUint(node.Number, 10, 64); err == nil {
			return u
		}
		if f, err := strconv.ParseFloat(node.Number, 64); err == nil && !math.IsInf(f, 0) {
			return f
		}
		return node.Number
	default:
		return nil
	}
}
