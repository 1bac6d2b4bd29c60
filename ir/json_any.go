package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// ToJSONAny converts a node to the values produced by encoding/json.
// Non-string object keys are rendered with Text.
func ToJSONAny(node *Node) any {
	switch node.Type {
	case ObjectType:
		res := make(map[string]any, len(node.Fields))
		for i, f := range node.Fields {
			res[f.Text()] = ToJSONAny(node.Values[i])
		}
		return res
	case ArrayType:
		res := make([]any, len(node.Values))
		for i, elt := range node.Values {
			res[i] = ToJSONAny(elt)
		}
		return res
	case StringType:
		return node.String
	case NumberType:
		if node.Int64 != nil {
			return *node.Int64
		}
		if node.Float64 != nil {
			return *node.Float64
		}
		return json.Number(node.Number)
	case BoolType:
		return node.Bool
	default:
		return nil
	}
}

// FromJSONAny converts a value built from maps, slices and scalars back
// to a node. Maps are emitted with their keys sorted.
func FromJSONAny(v any) (*Node, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case *Node:
		return x.Clone(), nil
	case string:
		return FromString(x), nil
	case bool:
		return FromBool(x), nil
	case int:
		return FromInt(int64(x)), nil
	case int64:
		return FromInt(x), nil
	case int32:
		return FromInt(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return &Node{Type: NumberType, Number: strconv.FormatUint(x, 10)}, nil
		}
		return FromInt(int64(x)), nil
	case float64:
		return FromFloat(x), nil
	case float32:
		return FromFloat(float64(x)), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return FromInt(i), nil
		}
		if f, err := x.Float64(); err == nil {
			return FromFloat(f), nil
		}
		return &Node{Type: NumberType, Number: string(x)}, nil
	case time.Time:
		return FromString(x.Format(time.RFC3339Nano)), nil
	case []any:
		vs := make([]*Node, len(x))
		for i, elt := range x {
			n, err := FromJSONAny(elt)
			if err != nil {
				return nil, err
			}
			vs[i] = n
		}
		return FromSlice(vs), nil
	case map[string]any:
		m := make(map[string]*Node, len(x))
		for k, elt := range x {
			n, err := FromJSONAny(elt)
			if err != nil {
				return nil, err
			}
			m[k] = n
		}
		return FromMap(m), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		vs := make([]any, rv.Len())
		for i := range vs {
			vs[i] = rv.Index(i).Interface()
		}
		return FromJSONAny(vs)
	case reflect.Map:
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		return FromJSONAny(m)
	case reflect.Int, reflect.Int8, reflect.Int16:
		return FromInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return FromInt(int64(rv.Uint())), nil
	}
	return nil, fmt.Errorf("%w: unsupported value %T", ErrConvert, v)
}
