package codegen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/token"
)

func id(name string, typ *ast.Type) *ast.Node {
	return ast.NewIdent(token.Token{Type: token.Ident, Value: name}, typ, 0)
}

func must(n *ast.Node, err error) *ast.Node {
	if err != nil {
		panic(err)
	}
	return n
}

func newCtx(inline bool) (*Context, *bytes.Buffer) {
	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatInlineLabels, inline)
	var out bytes.Buffer
	return NewContext(&out, cfg), &out
}

func lines(s ...string) string { return strings.Join(s, "\n") + "\n" }

var (
	a   = id("a", ast.TypeInt)
	b   = id("b", ast.TypeInt)
	p   = id("p", ast.TypeBool)
	q   = id("q", ast.TypeBool)
	lt  = must(ast.NewRel(token.Token{Type: token.Lt}, a, b))
	neg = must(ast.NewNot(token.Token{Type: token.Not}, p))
)

func TestEmitJumps(t *testing.T) {
	tests := []struct {
		t, f int
		want string
	}{
		{3, 4, lines("\tif a < b goto L3", "\tgoto L4")},
		{3, 0, lines("\tif a < b goto L3")},
		{0, 4, lines("\tiffalse a < b goto L4")},
		{0, 0, ""},
	}
	for _, tt := range tests {
		ctx, out := newCtx(false)
		ctx.Jumping(lt, tt.t, tt.f)
		if diff := cmp.Diff(tt.want, out.String()); diff != "" {
			t.Errorf("Jumping(%d, %d) (-want +got):\n%s", tt.t, tt.f, diff)
		}
	}
}

func TestJumpingLogical(t *testing.T) {
	or := must(ast.NewOr(token.OrWord, lt, neg))
	ctx, out := newCtx(false)
	ctx.Jumping(or, 0, 9)
	want := lines("\tif a < b goto L1", "\tif p goto L9", "L1:")
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("or, fall through on true (-want +got):\n%s", diff)
	}

	and := must(ast.NewAnd(token.AndWord, p, q))
	ctx, out = newCtx(false)
	ctx.Jumping(and, 7, 0)
	want = lines("\tiffalse p goto L1", "\tif q goto L7", "L1:")
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("and, fall through on false (-want +got):\n%s", diff)
	}

	ctx, out = newCtx(false)
	ctx.Jumping(and, 7, 8)
	want = lines("\tiffalse p goto L8", "\tif q goto L7", "\tgoto L8")
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("and, both targets (-want +got):\n%s", diff)
	}
	if ctx.Temps() != 0 || ctx.Labels() != 0 {
		t.Error("jumping code should allocate nothing when both targets are given")
	}
}

func TestConstantJumps(t *testing.T) {
	ctx, out := newCtx(false)
	ctx.Jumping(ast.True, 5, 6)
	ctx.Jumping(ast.True, 0, 6)
	ctx.Jumping(ast.False, 5, 6)
	ctx.Jumping(ast.False, 5, 0)
	if diff := cmp.Diff(lines("\tgoto L5", "\tgoto L6"), out.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestReduce(t *testing.T) {
	ctx, out := newCtx(false)
	sum := must(ast.NewArith(token.PlusWord, a, must(ast.NewArith(token.StarWord, b, ast.NewInt(4)))))
	r := ctx.Reduce(sum)
	if r.String() != "t2" || r.Typ != ast.TypeInt {
		t.Errorf("Reduce returned %s of type %s", r, r.Typ)
	}
	if diff := cmp.Diff(lines("\tt1 = b * 4", "\tt2 = a + t1"), out.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if ctx.Reduce(a) != a {
		t.Error("atoms reduce to themselves")
	}
}

func TestMaterialize(t *testing.T) {
	ctx, out := newCtx(false)
	v := ctx.Gen(neg)
	if v.Type != ast.Temp || v.Typ != ast.TypeBool {
		t.Fatalf("Gen(!p) = %s", v)
	}
	want := lines("\tif p goto L1", "\tt1 = true", "\tgoto L2", "L1:", "\tt1 = false", "L2:")
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestStatements(t *testing.T) {
	x := id("x", ast.TypeInt)
	set := must(ast.NewSet(x, b))
	ifElse := must(ast.NewElse(token.Token{Type: token.If}, lt, set, ast.Null))
	loop := ast.NewDo(token.Token{Type: token.Do})
	brk := must(ast.NewBreak(token.Token{Type: token.Break}, loop))
	if err := ast.InitDo(loop, ast.NewSeq(ifElse, brk), p); err != nil {
		t.Fatal(err)
	}

	ctx, out := newCtx(false)
	if err := ctx.GenProgram(ast.NewSeq(loop, ast.Null)); err != nil {
		t.Fatal(err)
	}
	want := lines(
		"L1:",
		"\tiffalse a < b goto L6",
		"L5:",
		"\tx = b",
		"\tgoto L4",
		"L6:",
		"L4:",
		"\tgoto L2",
		"L3:",
		"\tif p goto L1",
		"L2:",
	)
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if loop.After != 2 {
		t.Errorf("loop.After = %d, want 2", loop.After)
	}
}

func TestInlineLabels(t *testing.T) {
	ctx, out := newCtx(true)
	ctx.EmitLabel(1)
	ctx.Emit("x = %d", 1)
	ctx.EmitLabel(2)
	ctx.EmitLabel(3)
	if err := ctx.Finish(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("L1:\tx = 1\nL2:L3:\n", out.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteError(t *testing.T) {
	ctx := NewContext(failWriter{}, config.NewConfig())
	ctx.Emit("x = 1")
	ctx.Emit("x = 2")
	err := ctx.Finish()
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Finish() = %v", err)
	}
}
