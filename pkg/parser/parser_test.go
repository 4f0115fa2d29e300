package parser

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/tacc/pkg/codegen"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/lexer"
	"github.com/xplshn/tacc/pkg/symtab"
	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/util"
)

// sliceScanner replays a fixed token list, all on line 1.
type sliceScanner struct {
	toks []token.Token
	pos  int
}

func (s *sliceScanner) Scan() token.Token {
	if s.pos >= len(s.toks) {
		return token.Token{Type: token.EOF}
	}
	s.pos++
	return s.toks[s.pos-1]
}

func (s *sliceScanner) Line() int { return 1 }

func parse(t *testing.T, src string) (string, *symtab.Table, error) {
	t.Helper()
	cfg := config.NewConfig()
	var out bytes.Buffer
	env := symtab.New()
	p := NewParser(lexer.NewLexer([]rune(src), cfg), env, codegen.NewContext(&out, cfg), cfg, nil)
	err := p.Program()
	return out.String(), env, err
}

func TestScannerInterface(t *testing.T) {
	toks := []token.Token{
		{Type: token.LBrace},
		{Type: token.Basic, Value: "int"}, {Type: token.Ident, Value: "x"}, {Type: token.Semi},
		{Type: token.Ident, Value: "x"}, {Type: token.Assign}, {Type: token.Num, Value: "7"}, {Type: token.Semi},
		{Type: token.RBrace},
	}
	cfg := config.NewConfig()
	var out bytes.Buffer
	p := NewParser(&sliceScanner{toks: toks}, symtab.New(), codegen.NewContext(&out, cfg), cfg, nil)
	if err := p.Program(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("L1:\n\tx = 7\nL2:\n", out.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestBreakBindsInnermostLoop(t *testing.T) {
	src := `{ int i;
	while (i < 10) {
		do { i = i + 1; break; } while (i < 5);
		break;
	}
}`
	got, _, err := parse(t, src)
	if err != nil {
		t.Fatal(err)
	}
	// The do loop's after label is the join label of the while body, so its
	// break lands just before the outer break.
	want := "L1:\n" +
		"\tiffalse i < 10 goto L2\n" +
		"L3:\n" +
		"\ti = i + 1\n" +
		"L6:\n" +
		"\tgoto L4\n" +
		"L5:\n" +
		"\tif i < 5 goto L3\n" +
		"L4:\n" +
		"\tgoto L2\n" +
		"\tgoto L1\n" +
		"L2:\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestLoopContextRestored(t *testing.T) {
	_, _, err := parse(t, "{ int i; while (i < 1) i = 2; break; }")
	if err == nil || err.(*util.CompileError).Msg != "Unclosed 'break' statement." {
		t.Errorf("break after a loop must fail, got %v", err)
	}
}

func TestDeclarations(t *testing.T) {
	_, env, err := parse(t, "{ char c; int m[2][3]; bool[4] b; { float[2] f[3]; } }")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, id := range env.Entries() {
		got = append(got, id.String()+" "+id.Typ.String())
	}
	want := []string{"c char", "m [2][3]int", "b [4]bool", "f [3][2]float"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if env.Used() != 1+24+4+48 {
		t.Errorf("Used() = %d", env.Used())
	}
	if env.Depth() != 0 {
		t.Errorf("scopes left open: %d", env.Depth())
	}
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		name, src, want string
	}{
		{"arithmetic", "{ int a; int b; int c; a = a + b * c - -a; }",
			"L1:\n\tt1 = b * c\n\tt2 = a + t1\n\tt3 = minus a\n\ta = t2 - t3\nL2:\n"},
		{"equality of comparisons", "{ int a; int b; int c; bool r; r = a < b == b < c; }",
			"L1:\n" +
				"\tiffalse a < b goto L5\n\tt2 = true\n\tgoto L6\nL5:\n\tt2 = false\nL6:\n" +
				"\tiffalse b < c goto L7\n\tt3 = true\n\tgoto L8\nL7:\n\tt3 = false\nL8:\n" +
				"\tiffalse t2 == t3 goto L3\n\tt1 = true\n\tgoto L4\nL3:\n\tt1 = false\nL4:\n" +
				"\tr = t1\nL2:\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := parse(t, tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestErrorPosition(t *testing.T) {
	_, _, err := parse(t, "{ int x;\n  x = 1\n}")
	ce, ok := err.(*util.CompileError)
	if !ok {
		t.Fatalf("got %T %v", err, err)
	}
	if ce.Line != 3 || ce.Tok.Type != token.RBrace || ce.Kind != util.KindSyntax {
		t.Errorf("error at line %d on %v (kind %d)", ce.Line, ce.Tok, ce.Kind)
	}
}
