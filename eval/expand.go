package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/signadot/yamlprocessor/yp/debug"
	"github.com/signadot/yamlprocessor/yp/ir"
	"github.com/signadot/yamlprocessor/yp/timevar"
)

// Policy says what to do with a placeholder whose name is not bound.
type Policy int

const (
	// Fail reports an UnboundVariableError.
	Fail Policy = iota
	// PassThrough leaves the placeholder text as it is.
	PassThrough
	// Placeholder substitutes Expander.Placeholder.
	Placeholder
)

// Original is the placeholder value selecting PassThrough.
const Original = "YP_ORIGINAL"

// PolicyFor returns the policy and placeholder selected by the
// placeholder value v. A nil v selects Fail.
func PolicyFor(v *string) (Policy, string) {
	switch {
	case v == nil:
		return Fail, ""
	case *v == Original:
		return PassThrough, ""
	}
	return Placeholder, *v
}

// Expander substitutes placeholders of the form $NAME, ${NAME} and
// ${NAME.cast} in strings.
//
// A run of backslashes before a placeholder escapes it: the run is
// halved and, if it had odd length, the placeholder is kept as text.
// A placeholder with a cast (int, float or bool) must make up the
// entire string, and it produces a typed value.
type Expander struct {
	Time        *timevar.Calculator
	Policy      Policy
	Placeholder string
	Disabled    bool
}

func NewExpander() *Expander {
	return &Expander{Time: timevar.New()}
}

// Expand substitutes the placeholders of s using scope. The result is
// a string node unless s is a single cast placeholder.
func (x *Expander) Expand(s string, scope *Scope) (*ir.Node, error) {
	if x.Disabled || strings.IndexByte(s, '$') == -1 {
		return ir.FromString(s), nil
	}
	res, err := x.expand(s, scope)
	if err != nil {
		return nil, err
	}
	if debug.Expand() && (res.Type != ir.StringType || res.String != s) {
		debug.Logf("expand %q -> %q\n", s, res.Text())
	}
	return res, nil
}

// ExpandString is like Expand but always gives text.
func (x *Expander) ExpandString(s string, scope *Scope) (string, error) {
	res, err := x.Expand(s, scope)
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

func (x *Expander) expand(s string, scope *Scope) (*ir.Node, error) {
	var out strings.Builder
	pos, search := 0, 0
	for {
		j := strings.IndexByte(s[search:], '$')
		if j == -1 {
			break
		}
		j += search
		tok, ok := scanToken(s, j)
		if !ok {
			search = j + 1
			continue
		}
		k := j
		for k > pos && s[k-1] == '\\' {
			k--
		}
		nEsc := j - k
		out.WriteString(s[pos:k])
		out.WriteString(strings.Repeat(`\`, nEsc/2))
		pos, search = tok.end, tok.end
		if nEsc%2 == 1 {
			out.WriteString(s[j:tok.end])
			continue
		}
		if tok.cast != "" {
			if k != 0 || nEsc != 0 || tok.end != len(s) {
				return nil, fmt.Errorf("%w: %q: cast %s must be the whole value", ErrMalformed, s, s[j:tok.end])
			}
			v, found, err := x.resolve(tok.name, scope)
			if err != nil {
				return nil, err
			}
			if !found {
				return ir.FromString(s), nil
			}
			return cast(v, tok.cast)
		}
		v, found, err := x.resolve(tok.name, scope)
		if err != nil {
			return nil, err
		}
		if !found {
			v = s[j:tok.end]
		}
		out.WriteString(v)
	}
	out.WriteString(s[pos:])
	return ir.FromString(out.String()), nil
}

// resolve finds the value of name. found is false when the policy
// says to leave the placeholder as it is.
func (x *Expander) resolve(name string, scope *Scope) (string, bool, error) {
	if v, ok := scope.Lookup(name); ok {
		return v, true, nil
	}
	if x.Time != nil && timevar.IsTimeName(name) {
		v, err := x.Time.Eval(name)
		if err != nil {
			return "", false, &UnboundVariableError{Name: name, Err: err}
		}
		return v, true, nil
	}
	switch x.Policy {
	case PassThrough:
		return "", false, nil
	case Placeholder:
		return x.Placeholder, true, nil
	}
	return "", false, &UnboundVariableError{Name: name}
}

type token struct {
	name string
	cast string
	end  int
}

// scanToken scans a placeholder starting at the '$' at s[i].
func scanToken(s string, i int) (token, bool) {
	i++
	braced := i < len(s) && s[i] == '{'
	if braced {
		i++
	}
	start := i
	if i == len(s) || !isNameStart(s[i]) {
		return token{}, false
	}
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	tok := token{name: s[start:i], end: i}
	if !braced {
		return tok, true
	}
	if i < len(s) && s[i] == '.' {
		i++
		c := i
		for i < len(s) && isNameChar(s[i]) {
			i++
		}
		tok.cast = s[c:i]
		switch tok.cast {
		case "int", "float", "bool":
		default:
			return token{}, false
		}
	}
	if i == len(s) || s[i] != '}' {
		return token{}, false
	}
	tok.end = i + 1
	return tok, true
}

func isNameStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || ('0' <= c && c <= '9')
}

func cast(v, kind string) (*ir.Node, error) {
	switch kind {
	case "int":
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an int", ErrBadCast, v)
		}
		return ir.FromInt(i), nil
	case "float":
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a float", ErrBadCast, v)
		}
		return ir.FromFloat(f), nil
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1":
		return ir.FromBool(true), nil
	case "false", "no", "0":
		return ir.FromBool(false), nil
	}
	return nil, fmt.Errorf("%w: %q is not a bool", ErrBadCast, v)
}
