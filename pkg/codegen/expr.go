package codegen

import (
	"fmt"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/token"
)

func isAtom(n *ast.Node) bool {
	return n.Type == ast.Ident || n.Type == ast.Temp || n.Type == ast.Constant
}

func isLogical(n *ast.Node) bool {
	switch n.Type {
	case ast.Or, ast.And, ast.Not, ast.Rel:
		return true
	}
	return false
}

// Gen lowers the operands of n and returns an expression that fits on the
// right-hand side of a single instruction. A logical expression is
// materialized into a temporary.
func (ctx *Context) Gen(n *ast.Node) *ast.Node {
	switch n.Type {
	case ast.Ident, ast.Temp, ast.Constant:
		return n
	case ast.Arith:
		d := n.Data.(ast.BinaryNode)
		return n.Rebuild(ast.BinaryNode{Left: ctx.Reduce(d.Left), Right: ctx.Reduce(d.Right)})
	case ast.Unary:
		return n.Rebuild(ast.UnaryNode{Expr: ctx.Reduce(n.Data.(ast.UnaryNode).Expr)})
	case ast.Access:
		d := n.Data.(ast.AccessNode)
		return n.Rebuild(ast.AccessNode{Array: d.Array, Index: ctx.Reduce(d.Index)})
	case ast.Or, ast.And, ast.Not, ast.Rel:
		return ctx.materialize(n)
	}
	panic(unhandled(n))
}

// Reduce returns an atomic operand for n: a name, a temporary or a constant.
func (ctx *Context) Reduce(n *ast.Node) *ast.Node {
	if isAtom(n) || isLogical(n) {
		return ctx.Gen(n)
	}
	x := ctx.Gen(n)
	t := ctx.NewTemp(n.Typ)
	ctx.Emit("%s = %s", t, x)
	return t
}

// materialize stores the truth value of n in a fresh temporary.
func (ctx *Context) materialize(n *ast.Node) *ast.Node {
	f, a := ctx.NewLabel(), ctx.NewLabel()
	temp := ctx.NewTemp(n.Typ)
	ctx.Jumping(n, 0, f)
	ctx.Emit("%s = true", temp)
	ctx.Emit("goto L%d", a)
	ctx.EmitLabel(f)
	ctx.Emit("%s = false", temp)
	ctx.EmitLabel(a)
	return temp
}

// Jumping emits code that transfers control to t when n is true and to f
// when it is false. Either label may be 0, in which case that outcome falls
// through to whatever is emitted next.
func (ctx *Context) Jumping(n *ast.Node, t, f int) {
	switch n.Type {
	case ast.Or:
		d := n.Data.(ast.BinaryNode)
		label := t
		if t == 0 {
			label = ctx.NewLabel()
		}
		ctx.Jumping(d.Left, label, 0)
		ctx.Jumping(d.Right, t, f)
		if t == 0 {
			ctx.EmitLabel(label)
		}
	case ast.And:
		d := n.Data.(ast.BinaryNode)
		label := f
		if f == 0 {
			label = ctx.NewLabel()
		}
		ctx.Jumping(d.Left, 0, label)
		ctx.Jumping(d.Right, t, f)
		if f == 0 {
			ctx.EmitLabel(label)
		}
	case ast.Not:
		ctx.Jumping(n.Data.(ast.UnaryNode).Expr, f, t)
	case ast.Rel:
		d := n.Data.(ast.BinaryNode)
		a := ctx.Reduce(d.Left)
		b := ctx.Reduce(d.Right)
		ctx.emitJumps(fmt.Sprintf("%s %s %s", a, n.Tok, b), t, f)
	case ast.Constant:
		switch {
		case n.Tok.Type == token.True && t != 0:
			ctx.Emit("goto L%d", t)
		case n.Tok.Type == token.False && f != 0:
			ctx.Emit("goto L%d", f)
		}
	case ast.Access:
		ctx.emitJumps(ctx.Reduce(n).String(), t, f)
	case ast.Ident, ast.Temp, ast.Arith, ast.Unary:
		ctx.emitJumps(n.String(), t, f)
	default:
		panic(unhandled(n))
	}
}

func (ctx *Context) emitJumps(test string, t, f int) {
	switch {
	case t != 0 && f != 0:
		ctx.Emit("if %s goto L%d", test, t)
		ctx.Emit("goto L%d", f)
	case t != 0:
		ctx.Emit("if %s goto L%d", test, t)
	case f != 0:
		ctx.Emit("iffalse %s goto L%d", test, f)
	}
}
