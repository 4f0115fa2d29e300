package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/token"
)

type tok struct {
	Type  token.Type
	Value string
}

func scanAll(src string, cfg *config.Config) []tok {
	l := NewLexer([]rune(src), cfg)
	var out []tok
	for {
		t := l.Scan()
		out = append(out, tok{t.Type, t.Value})
		if t.Type == token.EOF {
			return out
		}
	}
}

func TestScan(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []tok
	}{
		{"declaration", "int a[10];", []tok{
			{token.Basic, "int"}, {token.Ident, "a"}, {token.LBracket, ""}, {token.Num, "10"},
			{token.RBracket, ""}, {token.Semi, ""}, {token.EOF, ""},
		}},
		{"two character operators", "<= >= == != && || < > = !", []tok{
			{token.Lte, ""}, {token.Gte, ""}, {token.EqEq, ""}, {token.Neq, ""}, {token.AndAnd, ""},
			{token.OrOr, ""}, {token.Lt, ""}, {token.Gt, ""}, {token.Assign, ""}, {token.Not, ""}, {token.EOF, ""},
		}},
		{"single character fallback", "& | @", []tok{
			{token.Char, "&"}, {token.Char, "|"}, {token.Char, "@"}, {token.EOF, ""},
		}},
		{"reals", "3.5 7. 0.5", []tok{
			{token.Real, "3.5"}, {token.Real, "7.0"}, {token.Real, "0.5"}, {token.EOF, ""},
		}},
		{"integers keep their digits", "007 0 99999999999999999999 00.5", []tok{
			{token.Num, "7"}, {token.Num, "0"}, {token.Num, "99999999999999999999"}, {token.Real, "0.5"}, {token.EOF, ""},
		}},
		{"ascii digits only", "\u0663 x\u0663", []tok{
			{token.Char, "\u0663"}, {token.Ident, "x\u0663"}, {token.EOF, ""},
		}},
		{"keywords", "if else while do break true false x1", []tok{
			{token.If, "if"}, {token.Else, "else"}, {token.While, "while"}, {token.Do, "do"},
			{token.Break, "break"}, {token.True, "true"}, {token.False, "false"}, {token.Ident, "x1"}, {token.EOF, ""},
		}},
		{"comments", "a // rest\n/* b\n c */ d / e", []tok{
			{token.Ident, "a"}, {token.Ident, "d"}, {token.Slash, ""}, {token.Ident, "e"}, {token.EOF, ""},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, scanAll(tt.src, config.NewConfig())); diff != "" {
				t.Errorf("tokens (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCommentsDisabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatCComments, false)
	want := []tok{{token.Ident, "a"}, {token.Slash, ""}, {token.Slash, ""}, {token.Ident, "b"}, {token.EOF, ""}}
	if diff := cmp.Diff(want, scanAll("a // b", cfg)); diff != "" {
		t.Errorf("tokens (-want +got):\n%s", diff)
	}
}

func TestLinesAndPositions(t *testing.T) {
	l := NewLexer([]rune("{\n  x\n\n = 1; }"), config.NewConfig())
	l.Scan()
	x := l.Scan()
	if x.Line != 2 || x.Column != 3 || x.Len != 1 {
		t.Errorf("x at %d:%d len %d, want 2:3 len 1", x.Line, x.Column, x.Len)
	}
	if eq := l.Scan(); eq.Line != 4 || l.Line() != 4 {
		t.Errorf("'=' on line %d, scanner on line %d, want 4", eq.Line, l.Line())
	}
	for l.Scan().Type != token.EOF {
	}
	if l.Scan().Type != token.EOF {
		t.Error("EOF should repeat")
	}
}

func TestFormatReal(t *testing.T) {
	for in, want := range map[float64]string{1: "1.0", 2.5: "2.5", 0.125: "0.125", 100: "100.0"} {
		if got := FormatReal(in); got != want {
			t.Errorf("FormatReal(%v) = %q, want %q", in, got, want)
		}
	}
}
