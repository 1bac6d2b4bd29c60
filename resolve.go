package yp

import (
	"fmt"
	"slices"

	"github.com/signadot/yamlprocessor/yp/debug"
	"github.com/signadot/yamlprocessor/yp/eval"
	"github.com/signadot/yamlprocessor/yp/ir"
)

// branch is the context in which part of a document is resolved: the
// files it was included through, outermost first, and the variables in
// scope.
type branch struct {
	files []string
	scope *eval.Scope
}

func (b *branch) file() string {
	return b.files[len(b.files)-1]
}

// frame is a container waiting to have its entries resolved.
type frame struct {
	node *ir.Node
	b    *branch
	path string
}

// Resolve resolves all directives and placeholders in root, which was
// loaded from filename. Containers are updated in place.
func (p *Processor) Resolve(root *ir.Node, filename string) (*ir.Node, error) {
	b := &branch{
		files: []string{filename},
		scope: eval.NewScope(p.Variables),
	}
	root, b, _, err := p.entry(root, b, ir.RootPath)
	if err != nil {
		return nil, err
	}
	var stack []frame
	if !root.Type.IsLeaf() {
		stack = append(stack, frame{node: root, b: b, path: ir.RootPath})
	}
	for len(stack) != 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		var next []frame
		switch f.node.Type {
		case ir.ArrayType:
			next, err = p.resolveArray(f)
		case ir.ObjectType:
			next, err = p.resolveObject(f)
		}
		if err != nil {
			return nil, err
		}
		slices.Reverse(next)
		stack = append(stack, next...)
	}
	return root, nil
}

type arrayItem struct {
	node *ir.Node
	b    *branch
}

func (p *Processor) resolveArray(f frame) ([]frame, error) {
	queue := make([]arrayItem, len(f.node.Values))
	for i, v := range f.node.Values {
		queue[i] = arrayItem{node: v, b: f.b}
	}
	var (
		out    = make([]*ir.Node, 0, len(queue))
		frames []frame
	)
	for len(queue) != 0 {
		it := queue[0]
		queue = queue[1:]
		path := ir.IndexPath(f.path, len(out))
		v, b, merge, err := p.entry(it.node, it.b, path)
		if err != nil {
			return nil, err
		}
		if merge {
			if v.Type != ir.ArrayType {
				return nil, fmt.Errorf("%s: %s: %w: cannot merge %s into Array", it.b.file(), path, ErrMergeType, v.Type)
			}
			spliced := make([]arrayItem, len(v.Values))
			for i, elt := range v.Values {
				spliced[i] = arrayItem{node: elt, b: b}
			}
			queue = append(spliced, queue...)
			continue
		}
		out = append(out, v)
		if !v.Type.IsLeaf() {
			frames = append(frames, frame{node: v, b: b, path: path})
		}
	}
	f.node.Values = out
	return frames, nil
}

type objectItem struct {
	key, val *ir.Node
	b        *branch
	merged   bool
}

func (p *Processor) resolveObject(f frame) ([]frame, error) {
	queue := make([]objectItem, len(f.node.Fields))
	for i, k := range f.node.Fields {
		queue[i] = objectItem{key: k, val: f.node.Values[i], b: f.b}
	}
	var (
		keys     = make([]*ir.Node, 0, len(queue))
		vals     = make([]*ir.Node, 0, len(queue))
		branches = make([]*branch, 0, len(queue))
		index    = map[string]int{}
		visited  = map[string]bool{}
	)
	for len(queue) != 0 {
		it := queue[0]
		queue = queue[1:]
		k := it.key.Key()
		if !it.merged && visited[k] {
			continue
		}
		path := ir.FieldPath(f.path, it.key)
		v, b, merge, err := p.entry(it.val, it.b, path)
		if err != nil {
			return nil, err
		}
		if merge {
			if v.Type != ir.ObjectType {
				return nil, fmt.Errorf("%s: %s: %w: cannot merge %s into Object", it.b.file(), path, ErrMergeType, v.Type)
			}
			spliced := make([]objectItem, len(v.Fields))
			for i, mk := range v.Fields {
				spliced[i] = objectItem{key: mk, val: v.Values[i], b: b, merged: true}
			}
			queue = append(spliced, queue...)
			continue
		}
		if it.merged {
			visited[k] = true
		}
		if i, ok := index[k]; ok {
			vals[i], branches[i] = v, b
			continue
		}
		index[k] = len(keys)
		keys = append(keys, it.key)
		vals = append(vals, v)
		branches = append(branches, b)
	}
	f.node.Fields, f.node.Values = keys, vals
	var frames []frame
	for i, v := range vals {
		if !v.Type.IsLeaf() {
			frames = append(frames, frame{node: v, b: branches[i], path: ir.FieldPath(f.path, keys[i])})
		}
	}
	return frames, nil
}

// entry resolves the value of a single container entry. It returns
// the new value, the branch in which its contents are to be resolved,
// and whether the value is to be merged into the container.
func (p *Processor) entry(node *ir.Node, b *branch, path string) (*ir.Node, *branch, bool, error) {
	if node.Type == ir.StringType {
		v, err := p.Expander.Expand(node.String, b.scope)
		if err != nil {
			return nil, nil, false, fmt.Errorf("%s: %s: %w", b.file(), path, err)
		}
		return v, b, false, nil
	}
	if !p.ProcessInclude {
		return node, b, false, nil
	}
	d, ok := ParseDirective(node)
	if !ok {
		return node, b, false, nil
	}
	v, vb, err := p.include(d, b, path)
	if err != nil {
		return nil, nil, false, err
	}
	return v, vb, d.Merge && path != ir.RootPath, nil
}

// include resolves the directive d found in branch b. If the included
// value is itself a directive, it is resolved in turn.
func (p *Processor) include(d *Directive, b *branch, path string) (*ir.Node, *branch, error) {
	for {
		name, err := p.Expander.ExpandString(d.Include, b.scope)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %s.%s: %w", b.file(), path, IncludeKey, err)
		}
		vars := make(map[string]string, len(d.Variables))
		for k, v := range d.Variables {
			xv, err := p.Expander.ExpandString(v, b.scope)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %s.%s.%s: %w", b.file(), path, VariablesKey, k, err)
			}
			vars[k] = xv
		}
		node, files, err := p.fetch(name, b.files, d.Query == "" && len(vars) == 0)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %s: %w", b.file(), path, err)
		}
		nb := &branch{files: files, scope: b.scope.With(vars)}
		if debug.Include() {
			debug.Logf("%s: %s: include %s\n", b.file(), path, nb.file())
		}
		if d.Query != "" {
			node, err = query(node, d.Query)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %s: %w", b.file(), path, err)
			}
		}
		if node.Type == ir.StringType {
			node, err = p.Expander.Expand(node.String, nb.scope)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %s: %w", nb.file(), ir.RootPath, err)
			}
		}
		next, ok := ParseDirective(node)
		if !ok {
			return node, nb, nil
		}
		d, b, path = next, nb, ir.RootPath
	}
}

// maxIncludeDepth bounds the include chain.
const maxIncludeDepth = 64

// fetch returns a copy of the document an include named name refers to,
// along with the file chain extended by the file it came from. When
// verbatim is set the include neither queries nor binds variables, so
// re-entering a file already in the chain can never terminate.
func (p *Processor) fetch(name string, files []string, verbatim bool) (*ir.Node, []string, error) {
	if frag, ok := p.Fragments[name]; ok {
		return frag.Clone(), files, nil
	}
	file, err := p.FindFile(name, files)
	if err != nil {
		return nil, nil, err
	}
	if file != StdioName {
		if verbatim && slices.Contains(files, file) {
			return nil, nil, fmt.Errorf("%w: %s", ErrIncludeCycle, file)
		}
		if len(files) >= maxIncludeDepth {
			return nil, nil, fmt.Errorf("%w: %s: more than %d nested includes", ErrIncludeCycle, file, maxIncludeDepth)
		}
	}
	node, err := p.loadFile(file)
	if err != nil {
		return nil, nil, err
	}
	return node, append(slices.Clone(files), file), nil
}
