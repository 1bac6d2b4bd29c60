// Package yp resolves include directives and variable placeholders in
// YAML documents.
package yp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/signadot/yamlprocessor/yp/encode"
	"github.com/signadot/yamlprocessor/yp/eval"
	"github.com/signadot/yamlprocessor/yp/ir"
	"github.com/signadot/yamlprocessor/yp/parse"
	"github.com/signadot/yamlprocessor/yp/schema"

	"github.com/natefinch/atomic"
)

type Processor struct {
	// ProcessInclude enables include directives. When false,
	// directives are left as plain data.
	ProcessInclude bool

	Expander  *eval.Expander
	Variables map[string]string

	IncludePaths []string
	SchemaPrefix string

	// Fragments are documents available to includes by name. They
	// take precedence over files.
	Fragments map[string]*ir.Node

	EncodeOptions []encode.EncodeOption
	Log           *slog.Logger

	Stdin  io.Reader
	Stdout io.Writer

	docs map[string]*ir.Node
}

func DefaultProcessor() *Processor {
	return &Processor{
		ProcessInclude: true,
		Expander:       eval.NewExpander(),
		Variables:      map[string]string{},
		Fragments:      map[string]*ir.Node{},
		Stdin:          os.Stdin,
		Stdout:         os.Stdout,
	}
}

// Document is a loaded root document.
type Document struct {
	Root     *ir.Node
	Filename string
	// Schema is the schema location given on the first line, if any.
	Schema string
}

// Load loads the root document named in, which is found like an
// include with no parents.
func (p *Processor) Load(in string) (*Document, error) {
	name, err := p.FindFile(in, nil)
	if err != nil {
		return nil, err
	}
	d, err := p.read(name)
	if err != nil {
		return nil, err
	}
	root, err := parse.Parse(d, parse.ParseFilename(name))
	if err != nil {
		return nil, err
	}
	return &Document{
		Root:     root,
		Filename: name,
		Schema:   schema.Location(parse.FirstLine(d)),
	}, nil
}

// Process loads in, resolves it and writes the result to out. If the
// document names a schema, the result is validated after it is
// written.
func (p *Processor) Process(in, out string) error {
	if out == "" {
		out = StdioName
	}
	doc, err := p.Load(in)
	if err != nil {
		return err
	}
	res, err := p.Resolve(doc.Root, doc.Filename)
	if err != nil {
		return err
	}
	if err := p.write(res, out); err != nil {
		return err
	}
	if doc.Schema == "" {
		return nil
	}
	err = schema.Validate(res, schema.Resolve(doc.Schema, p.SchemaPrefix))
	if errors.Is(err, schema.ErrNotFound) {
		err = fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if err != nil {
		p.report(slog.LevelError, "not ok "+out, "error", err)
		return err
	}
	p.report(slog.LevelInfo, "ok "+out)
	return nil
}

func (p *Processor) report(level slog.Level, msg string, args ...any) {
	if p.Log == nil {
		return
	}
	p.Log.Log(context.Background(), level, msg, args...)
}

func (p *Processor) write(node *ir.Node, out string) error {
	buf := bytes.NewBuffer(nil)
	if err := encode.Encode(node, buf, p.EncodeOptions...); err != nil {
		return err
	}
	if out == StdioName {
		_, err := io.Copy(p.stdout(), buf)
		return err
	}
	if err := atomic.WriteFile(out, buf); err != nil {
		return fmt.Errorf("could not write %s: %w", out, err)
	}
	return nil
}

func (p *Processor) read(name string) ([]byte, error) {
	if name != StdioName {
		return os.ReadFile(name)
	}
	if p.Stdin == nil {
		return nil, errors.New("no standard input")
	}
	return io.ReadAll(p.Stdin)
}

func (p *Processor) stdout() io.Writer {
	if p.Stdout == nil {
		return os.Stdout
	}
	return p.Stdout
}

// loadFile parses the file name. Each file is parsed once, callers get
// a copy.
func (p *Processor) loadFile(name string) (*ir.Node, error) {
	if node, ok := p.docs[name]; ok {
		return node.Clone(), nil
	}
	d, err := p.read(name)
	if err != nil {
		return nil, err
	}
	node, err := parse.Parse(d, parse.ParseFilename(name))
	if err != nil {
		return nil, err
	}
	if p.docs == nil {
		p.docs = map[string]*ir.Node{}
	}
	p.docs[name] = node
	return node.Clone(), nil
}
