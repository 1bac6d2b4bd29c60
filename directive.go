package yp

import (
	"github.com/signadot/yamlprocessor/yp/ir"
)

const (
	IncludeKey   = "INCLUDE"
	MergeKey     = "MERGE"
	QueryKey     = "QUERY"
	VariablesKey = "VARIABLES"
)

// Directive is a map which includes another document in place of
// itself.
type Directive struct {
	Include string
	Merge   bool
	Query   string

	// Variables are bound while resolving the included document.
	// Values are substituted before they are bound.
	Variables map[string]string
}

// ParseDirective reports whether node has the shape of a directive and
// returns it if so. A directive is a map with a string INCLUDE and
// optionally a bool MERGE, a string QUERY and a VARIABLES map of
// scalars. Any other key, or any other value type, makes node plain
// data.
func ParseDirective(node *ir.Node) (*Directive, bool) {
	if node.Type != ir.ObjectType || len(node.Fields) == 0 {
		return nil, false
	}
	d := &Directive{}
	hasInclude := false
	for i, f := range node.Fields {
		if f.Type != ir.StringType {
			return nil, false
		}
		v := node.Values[i]
		switch f.String {
		case IncludeKey:
			if v.Type != ir.StringType {
				return nil, false
			}
			d.Include = v.String
			hasInclude = true
		case MergeKey:
			if v.Type != ir.BoolType {
				return nil, false
			}
			d.Merge = v.Bool
		case QueryKey:
			if v.Type != ir.StringType {
				return nil, false
			}
			d.Query = v.String
		case VariablesKey:
			vars, ok := directiveVars(v)
			if !ok {
				return nil, false
			}
			d.Variables = vars
		default:
			return nil, false
		}
	}
	if !hasInclude {
		return nil, false
	}
	return d, true
}

func directiveVars(v *ir.Node) (map[string]string, bool) {
	if v.Type != ir.ObjectType {
		return nil, false
	}
	res := make(map[string]string, len(v.Fields))
	for i, f := range v.Fields {
		val := v.Values[i]
		if !f.Type.IsLeaf() || !val.Type.IsLeaf() {
			return nil, false
		}
		if val.Type == ir.NullType {
			res[f.Text()] = ""
			continue
		}
		res[f.Text()] = val.Text()
	}
	return res, true
}
