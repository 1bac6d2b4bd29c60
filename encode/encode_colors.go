package encode

import (
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml/lexer"
	"github.com/goccy/go-yaml/printer"
)

type ColorAttr int

const (
	FieldColor ColorAttr = iota
	StringColor
	NumberColor
	BoolColor
	AnchorColor
	CommentColor
)

// Colors maps syntactic elements of encoded YAML to terminal colors.
type Colors struct {
	Map map[ColorAttr]*color.Color
}

func NewColors() *Colors {
	return &Colors{
		Map: map[ColorAttr]*color.Color{
			FieldColor:   color.RGB(128, 168, 196),
			StringColor:  color.RGB(8, 196, 16),
			NumberColor:  color.RGB(128, 216, 236),
			BoolColor:    color.New(color.FgCyan),
			AnchorColor:  color.RGB(196, 168, 128),
			CommentColor: color.New(color.FgBlue),
		},
	}
}

// Color re-renders the YAML text src with color escapes.
func (c *Colors) Color(src string) string {
	p := printer.Printer{
		MapKey:  c.property(FieldColor),
		String:  c.property(StringColor),
		Number:  c.property(NumberColor),
		Bool:    c.property(BoolColor),
		Anchor:  c.property(AnchorColor),
		Alias:   c.property(AnchorColor),
		Comment: c.property(CommentColor),
	}
	return p.PrintTokens(lexer.Tokenize(src))
}

func (c *Colors) property(a ColorAttr) func() *printer.Property {
	col, ok := c.Map[a]
	if !ok {
		return nil
	}
	col.EnableColor()
	prefix, suffix, _ := strings.Cut(col.Sprint("\x00"), "\x00")
	return func() *printer.Property {
		return &printer.Property{Prefix: prefix, Suffix: suffix}
	}
}
