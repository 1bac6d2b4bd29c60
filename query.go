package yp

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/signadot/yamlprocessor/yp/ir"

	"github.com/jmespath/go-jmespath"
)

// query evaluates the JMESPath expression q against doc.
func query(doc *ir.Node, q string) (*ir.Node, error) {
	qv := &queryValues{objects: map[uintptr]*ir.Node{}}
	out, err := jmespath.Search(q, qv.from(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrQuery, q, err)
	}
	res, err := qv.to(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrQuery, q, err)
	}
	return res, nil
}

// queryValues converts between nodes and the values jmespath works on,
// remembering which node each object came from.
type queryValues struct {
	objects map[uintptr]*ir.Node
}

// from converts node. Numbers become float64, which is the only number
// type jmespath compares and sorts.
func (qv *queryValues) from(node *ir.Node) any {
	switch node.Type {
	case ir.ObjectType:
		m := make(map[string]any, len(node.Fields))
		for i, f := range node.Fields {
			m[f.Text()] = qv.from(node.Values[i])
		}
		qv.objects[reflect.ValueOf(m).Pointer()] = node
		return m
	case ir.ArrayType:
		vs := make([]any, len(node.Values))
		for i, elt := range node.Values {
			vs[i] = qv.from(elt)
		}
		return vs
	case ir.NumberType:
		switch {
		case node.Int64 != nil:
			return float64(*node.Int64)
		case node.Float64 != nil:
			return *node.Float64
		}
		if f, err := strconv.ParseFloat(node.Number, 64); err == nil {
			return f
		}
		return node.Number
	case ir.StringType:
		return node.String
	case ir.BoolType:
		return node.Bool
	}
	return nil
}

// to converts a query result back to a node. Objects selected as they
// are keep their key order and scalar types. Other numbers with an
// integral value come back as ints.
func (qv *queryValues) to(v any) (*ir.Node, error) {
	switch x := v.(type) {
	case map[string]any:
		if node, ok := qv.objects[reflect.ValueOf(x).Pointer()]; ok {
			return node.Clone(), nil
		}
		m := make(map[string]*ir.Node, len(x))
		for k, elt := range x {
			n, err := qv.to(elt)
			if err != nil {
				return nil, err
			}
			m[k] = n
		}
		return ir.FromMap(m), nil
	case []any:
		vs := make([]*ir.Node, len(x))
		for i, elt := range x {
			n, err := qv.to(elt)
			if err != nil {
				return nil, err
			}
			vs[i] = n
		}
		return ir.FromSlice(vs), nil
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return ir.FromInt(int64(x)), nil
		}
		return ir.FromFloat(x), nil
	}
	return ir.FromJSONAny(v)
}
