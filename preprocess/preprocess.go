// Package preprocess splices files named on DIRECT_INCLUDE= lines into
// a text document, before it is parsed.
package preprocess

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/signadot/yamlprocessor/yp/debug"
	"github.com/signadot/yamlprocessor/yp/eval"
)

const Keyword = "DIRECT_INCLUDE="

var ErrInclude = errors.New("direct include failed")

type Preprocessor struct {
	// Variables are substituted in included file names. Unknown
	// names are left as they are.
	Variables map[string]string

	Expander *eval.Expander
}

func New(vars map[string]string) *Preprocessor {
	return &Preprocessor{
		Variables: vars,
		Expander:  &eval.Expander{Policy: eval.PassThrough},
	}
}

// Process copies r to w, replacing each line which contains Keyword
// with the contents of the file named after it.
func (p *Preprocessor) Process(r io.Reader, w io.Writer) error {
	scope := eval.NewScope(p.Variables)
	br := bufio.NewReader(r)
	for n := 1; ; n++ {
		line, err := br.ReadString('\n')
		if line != "" {
			if lerr := p.line(line, n, scope, w); lerr != nil {
				return lerr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (p *Preprocessor) line(line string, n int, scope *eval.Scope, w io.Writer) error {
	_, rest, ok := strings.Cut(line, Keyword)
	if !ok {
		_, err := io.WriteString(w, line)
		return err
	}
	name, _, _ := strings.Cut(rest, "=")
	name, err := p.Expander.ExpandString(strings.TrimSpace(name), scope)
	if err != nil {
		return fmt.Errorf("%w: line %d: %w", ErrInclude, n, err)
	}
	d, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("%w: line %d: %w", ErrInclude, n, err)
	}
	if debug.Include() {
		debug.Logf("line %d: direct include %s\n", n, name)
	}
	_, err = w.Write(d)
	return err
}
