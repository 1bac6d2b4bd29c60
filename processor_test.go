package yp

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signadot/yamlprocessor/yp/encode"
	"github.com/signadot/yamlprocessor/yp/eval"
	"github.com/signadot/yamlprocessor/yp/ir"
	"github.com/signadot/yamlprocessor/yp/parse"
	"github.com/signadot/yamlprocessor/yp/schema"

	"github.com/google/go-cmp/cmp"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func resolveFile(p *Processor, path string) (*ir.Node, error) {
	doc, err := p.Load(path)
	if err != nil {
		return nil, err
	}
	return p.Resolve(doc.Root, doc.Filename)
}

type resolveTest struct {
	desc  string
	files map[string]string
	vars  map[string]string
	out   string
	err   error
}

func TestResolve(t *testing.T) {
	tests := []resolveTest{
		{
			desc: "include replaces directive",
			files: map[string]string{
				"main.yaml": "a:\n  INCLUDE: b.yaml\nz: 0\n",
				"b.yaml":    "x: 1\ny: [2, 3]\n",
			},
			out: "a:\n  x: 1\n  y:\n  - 2\n  - 3\nz: 0",
		},
		{
			desc: "key order is preserved",
			files: map[string]string{
				"main.yaml": "xyz: 1\npqrs: 2\nabc: 3\nijk: 4\n",
			},
			out: "xyz: 1\npqrs: 2\nabc: 3\nijk: 4",
		},
		{
			desc: "variables apply to the include and its descendants only",
			files: map[string]string{
				"main.yaml":  "hello:\n  INCLUDE: greet.yaml\n  VARIABLES:\n    WHO: earth\nother: $WHO\n",
				"greet.yaml": "msg: hi $WHO\nsub:\n  INCLUDE: sub.yaml\n",
				"sub.yaml":   "$WHO again\n",
			},
			vars: map[string]string{"WHO": "mars"},
			out:  "hello:\n  msg: hi earth\n  sub: earth again\nother: mars",
		},
		{
			desc: "variable values are substituted in the enclosing scope",
			files: map[string]string{
				"main.yaml": "v:\n  INCLUDE: v.yaml\n  VARIABLES:\n    WHO: $WHO and venus\n",
				"v.yaml":    "[$WHO]\n",
			},
			vars: map[string]string{"WHO": "mars"},
			out:  "v:\n- mars and venus",
		},
		{
			desc: "list merge splices elements in order",
			files: map[string]string{
				"main.yaml": "- a\n- INCLUDE: list.yaml\n  MERGE: true\n- d\n",
				"list.yaml": "- b\n- c\n- INCLUDE: more.yaml\n  MERGE: true\n  VARIABLES:\n    X: x\n",
				"more.yaml": "- $X\n- {k: $X}\n",
			},
			out: "- a\n- b\n- c\n- x\n- k: x\n- d",
		},
		{
			desc: "map merge keeps first position and drops later originals",
			files: map[string]string{
				"main.yaml": "a: 1\nb: 2\nhere:\n  INCLUDE: m.yaml\n  MERGE: true\nb2: 3\nc: original\n",
				"m.yaml":    "a: 10\nc: 30\nn: new\n",
			},
			out: "a: 10\nb: 2\nc: 30\nn: new\nb2: 3",
		},
		{
			desc: "merged map values are resolved in the include's scope",
			files: map[string]string{
				"main.yaml": "m:\n  INCLUDE: m.yaml\n  MERGE: true\n  VARIABLES:\n    N: \"5\"\n",
				"m.yaml":    "n: ${N.int}\nsub:\n  INCLUDE: sub.yaml\n",
				"sub.yaml":  "got: $N\n",
			},
			out: "n: 5\nsub:\n  got: \"5\"",
		},
		{
			desc: "root directive with variables ignores merge",
			files: map[string]string{
				"main.yaml": "INCLUDE: x.yaml\nMERGE: true\nVARIABLES:\n  V: 1\n",
				"x.yaml":    "v: ${V.int}\nf: ${V.float}\n",
			},
			out: "v: 1\nf: 1.0",
		},
		{
			desc: "include path is substituted",
			files: map[string]string{
				"main.yaml":  "a:\n  INCLUDE: $SUB/c.yaml\n",
				"sub/c.yaml": "c\n",
			},
			vars: map[string]string{"SUB": "sub"},
			out:  "a: c",
		},
		{
			desc: "nested include is relative to its parent",
			files: map[string]string{
				"main.yaml":  "a:\n  INCLUDE: sub/a.yaml\n",
				"sub/a.yaml": "INCLUDE: b.yaml\n",
				"sub/b.yaml": "from sub\n",
				"b.yaml":     "from top\n",
			},
			out: "a: from sub",
		},
		{
			desc: "extra keys make a plain map",
			files: map[string]string{
				"main.yaml": "a:\n  INCLUDE: nope.yaml\n  OTHER: 1\nb:\n  INCLUDE: nope.yaml\n  MERGE: maybe\n",
			},
			out: "a:\n  INCLUDE: nope.yaml\n  OTHER: 1\nb:\n  INCLUDE: nope.yaml\n  MERGE: maybe",
		},
		{
			desc: "query selects from the included document",
			files: map[string]string{
				"main.yaml":   "fav:\n  INCLUDE: people.yaml\n  QUERY: people[?favourite].name\n",
				"people.yaml": "people:\n- name: ann\n  favourite: true\n" +
					"- name: bob\n  favourite: false\n- name: cy\n  favourite: true\n",
			},
			out: "fav:\n- ann\n- cy",
		},
		{
			desc: "query projection",
			files: map[string]string{
				"main.yaml":  "ids:\n  INCLUDE: items.yaml\n  QUERY: items[*].id\nnames:\n  INCLUDE: items.yaml\n  QUERY: sort(keys(@))\n",
				"items.yaml": "items:\n- id: 1\n- id: 2.5\nother: x\n",
			},
			out: "ids:\n- 1\n- 2.5\nnames:\n- items\n- other",
		},
		{
			desc: "query keeps selected map as is",
			files: map[string]string{
				"main.yaml": "c:\n  INCLUDE: c.yaml\n  QUERY: conf\n",
				"c.yaml":    "conf:\n  z: 1\n  a: 2.0\n",
			},
			out: "c:\n  z: 1\n  a: 2.0",
		},
		{
			desc: "self include with query",
			files: map[string]string{
				"main.yaml": "defaults:\n  x: 1\nuse:\n  INCLUDE: main.yaml\n  QUERY: defaults.x\n",
			},
			out: "defaults:\n  x: 1\nuse: 1",
		},
		{
			desc: "self include without end",
			files: map[string]string{
				"main.yaml": "use:\n  INCLUDE: main.yaml\n  QUERY: '@'\n",
			},
			err: ErrIncludeCycle,
		},
		{
			desc: "missing include",
			files: map[string]string{
				"main.yaml": "a:\n  INCLUDE: nope.yaml\n",
			},
			err: ErrNotFound,
		},
		{
			desc: "list merge of a map",
			files: map[string]string{
				"main.yaml": "- INCLUDE: m.yaml\n  MERGE: true\n",
				"m.yaml":    "a: 1\n",
			},
			err: ErrMergeType,
		},
		{
			desc: "map merge of a list",
			files: map[string]string{
				"main.yaml": "m:\n  INCLUDE: l.yaml\n  MERGE: true\n",
				"l.yaml":    "- 1\n",
			},
			err: ErrMergeType,
		},
		{
			desc: "include cycle",
			files: map[string]string{
				"main.yaml": "a:\n  INCLUDE: b.yaml\n",
				"b.yaml":    "b:\n  INCLUDE: main.yaml\n",
			},
			err: ErrIncludeCycle,
		},
		{
			desc: "unbound variable",
			files: map[string]string{
				"main.yaml": "a: [x, $NOPE]\n",
			},
			err: eval.ErrUnbound,
		},
		{
			desc: "cast with text",
			files: map[string]string{
				"main.yaml": "a: Not ${N.float}.\n",
			},
			vars: map[string]string{"N": "8"},
			err:  eval.ErrMalformed,
		},
		{
			desc: "bad query",
			files: map[string]string{
				"main.yaml": "a:\n  INCLUDE: b.yaml\n  QUERY: \"people[?\"\n",
				"b.yaml":    "x: 1\n",
			},
			err: ErrQuery,
		},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, test.files)
			p := DefaultProcessor()
			p.Variables = test.vars
			res, err := resolveFile(p, filepath.Join(dir, "main.yaml"))
			if test.err != nil {
				if !errors.Is(err, test.err) {
					t.Fatalf("expected %v, got %v", test.err, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.out, encode.MustString(res)); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIncludeSearchOrder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"top/main.yaml": "a:\n  INCLUDE: x.yaml\nb:\n  INCLUDE: y.yaml\n",
		"top/x.yaml":    "from parent\n",
		"inc1/x.yaml":   "from inc1\n",
		"inc1/y.yaml":   "y from inc1\n",
		"inc2/y.yaml":   "y from inc2\n",
	})
	p := DefaultProcessor()
	p.IncludePaths = []string{filepath.Join(dir, "inc1"), filepath.Join(dir, "inc2")}
	res, err := resolveFile(p, filepath.Join(dir, "top", "main.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("a: from parent\nb: y from inc1", encode.MustString(res)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestFindFileRoot(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"inc/root.yaml": "a: 1\n"})
	p := DefaultProcessor()
	p.IncludePaths = []string{filepath.Join(dir, "inc")}
	got, err := p.FindFile("root.yaml", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(dir, "inc", "root.yaml") {
		t.Errorf("got %q", got)
	}
	if got, _ := p.FindFile("-", nil); got != "-" {
		t.Errorf("stdin name changed to %q", got)
	}
	if _, err := p.FindFile(filepath.Join(dir, "nope.yaml"), nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFragments(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.yaml": "a:\n  INCLUDE: frag.yaml\nb:\n  INCLUDE: frag.yaml\n  VARIABLES:\n    V: two\n",
		"frag.yaml": "from file\n",
	})
	p := DefaultProcessor()
	frag, err := parse.Parse([]byte("v: $V\n"))
	if err != nil {
		t.Fatal(err)
	}
	p.Fragments["frag.yaml"] = frag
	p.Variables = map[string]string{"V": "one"}
	res, err := resolveFile(p, filepath.Join(dir, "main.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("a:\n  v: one\nb:\n  v: two", encode.MustString(res)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
	if frag.Values[0].String != "$V" {
		t.Errorf("fragment was modified: %q", frag.Values[0].String)
	}
}

func TestNoProcessInclude(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.yaml": "a:\n  INCLUDE: $F\nb: $F\n",
	})
	p := DefaultProcessor()
	p.ProcessInclude = false
	p.Variables = map[string]string{"F": "f.yaml"}
	res, err := resolveFile(p, filepath.Join(dir, "main.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("a:\n  INCLUDE: f.yaml\nb: f.yaml", encode.MustString(res)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestNoProcessVariable(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.yaml": "a: $X\nb:\n  INCLUDE: b.yaml\n",
		"b.yaml":    "${Y.int}\n",
	})
	p := DefaultProcessor()
	p.Expander.Disabled = true
	res, err := resolveFile(p, filepath.Join(dir, "main.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"a": "$X", "b": "${Y.int}"}
	if diff := cmp.Diff(want, ir.ToJSONAny(res)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestEscapes(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.yaml": `a: '\$X'` + "\n" + `b: '\\$X'` + "\n" + `c: '\\\${X.int}'` + "\n",
	})
	p := DefaultProcessor()
	p.Variables = map[string]string{"X": "x"}
	res, err := resolveFile(p, filepath.Join(dir, "main.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"a": "$X", "b": `\x`, "c": `\${X.int}`}
	if diff := cmp.Diff(want, ir.ToJSONAny(res)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.yaml": "a:\n  INCLUDE: b.yaml\nl:\n- INCLUDE: c.yaml\n  MERGE: true\n",
		"b.yaml":    "x: 1\ns: \"two\\nlines\\n\"\n",
		"c.yaml":    "- 1\n- {k: v}\n",
	})
	p := DefaultProcessor()
	out := filepath.Join(dir, "out.yaml")
	if err := p.Process(filepath.Join(dir, "main.yaml"), out); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	out2 := filepath.Join(dir, "out2.yaml")
	if err := DefaultProcessor().Process(out, out2); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(out2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
}

func TestProcessStdio(t *testing.T) {
	p := DefaultProcessor()
	p.Stdin = strings.NewReader("a: $X\n")
	buf := bytes.NewBuffer(nil)
	p.Stdout = buf
	p.Variables = map[string]string{"X": "x"}
	if err := p.Process("-", "-"); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "a: x\n" {
		t.Errorf("got %q", got)
	}
}

const testSchema = `{
  "type": "object",
  "properties": {"n": {"type": "integer"}},
  "required": ["n"]
}`

func TestProcessSchema(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"s/schema.json": testSchema,
		"good.yaml":     "#!schema.json\nn: ${N.int}\n",
		"bad.yaml":      "# yaml-language-server: $schema=schema.json\nn: $N\n",
	})
	logBuf := bytes.NewBuffer(nil)
	p := DefaultProcessor()
	p.Log = slog.New(slog.NewTextHandler(logBuf, nil))
	p.SchemaPrefix = "file://" + filepath.ToSlash(filepath.Join(dir, "s")) + "/"
	p.Variables = map[string]string{"N": "3"}

	out := filepath.Join(dir, "good.out.yaml")
	if err := p.Process(filepath.Join(dir, "good.yaml"), out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logBuf.String(), "ok "+out) {
		t.Errorf("expected ok report, got %q", logBuf.String())
	}

	out = filepath.Join(dir, "bad.out.yaml")
	err := p.Process(filepath.Join(dir, "bad.yaml"), out)
	if !errors.Is(err, schema.ErrValidation) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if !strings.Contains(logBuf.String(), "not ok "+out) {
		t.Errorf("expected not ok report, got %q", logBuf.String())
	}
	d, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output should be written before validation: %v", err)
	}
	if string(d) != "n: \"3\"\n" {
		t.Errorf("got output %q", d)
	}
}

func TestTimestampKept(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.yaml": "t: 2001-12-14t21:59:43.10-05:00\n",
	})
	res, err := resolveFile(DefaultProcessor(), filepath.Join(dir, "main.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"t": "2001-12-14t21:59:43.10-05:00"}
	if diff := cmp.Diff(want, ir.ToJSONAny(res)); diff != "" {
		t.Errorf("timestamp (-want +got):\n%s", diff)
	}
}

func TestProcessSchemaMissing(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.yaml": "#!nowhere.json\na: 1\n",
	})
	p := DefaultProcessor()
	p.SchemaPrefix = "file://" + filepath.ToSlash(dir) + "/"
	err := p.Process(filepath.Join(dir, "main.yaml"), filepath.Join(dir, "out.yaml"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if !errors.Is(err, schema.ErrNotFound) {
		t.Errorf("expected schema.ErrNotFound, got %v", err)
	}
}

func TestLoadSchemaLine(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"main.yaml": "#!my.schema.json\na: 1\n"})
	doc, err := DefaultProcessor().Load(filepath.Join(dir, "main.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Schema != "my.schema.json" {
		t.Errorf("got schema %q", doc.Schema)
	}
}
