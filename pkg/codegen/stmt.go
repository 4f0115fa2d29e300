package codegen

import "github.com/xplshn/tacc/pkg/ast"

// GenStmt emits s. Control enters at label begin and leaves for label after.
func (ctx *Context) GenStmt(s *ast.Node, begin, after int) {
	switch s.Type {
	case ast.NullStmt:
	case ast.If:
		d := s.Data.(ast.IfNode)
		label := ctx.NewLabel()
		ctx.Jumping(d.Cond, 0, after)
		ctx.EmitLabel(label)
		ctx.GenStmt(d.Then, label, after)
	case ast.Else:
		d := s.Data.(ast.ElseNode)
		label1, label2 := ctx.NewLabel(), ctx.NewLabel()
		ctx.Jumping(d.Cond, 0, label2)
		ctx.EmitLabel(label1)
		ctx.GenStmt(d.Then, label1, after)
		ctx.Emit("goto L%d", after)
		ctx.EmitLabel(label2)
		ctx.GenStmt(d.Else, label2, after)
	case ast.While:
		d := s.Data.(ast.WhileNode)
		s.After = after
		ctx.Jumping(d.Cond, 0, after)
		label := ctx.NewLabel()
		ctx.EmitLabel(label)
		ctx.GenStmt(d.Body, label, begin)
		ctx.Emit("goto L%d", begin)
	case ast.Do:
		d := s.Data.(ast.DoNode)
		s.After = after
		label := ctx.NewLabel()
		ctx.GenStmt(d.Body, begin, label)
		ctx.EmitLabel(label)
		ctx.Jumping(d.Cond, begin, 0)
	case ast.Seq:
		d := s.Data.(ast.SeqNode)
		switch {
		case d.First.IsNull():
			ctx.GenStmt(d.Second, begin, after)
		case d.Second.IsNull():
			ctx.GenStmt(d.First, begin, after)
		default:
			label := ctx.NewLabel()
			ctx.GenStmt(d.First, begin, label)
			ctx.EmitLabel(label)
			ctx.GenStmt(d.Second, label, after)
		}
	case ast.Break:
		ctx.Emit("goto L%d", s.Data.(ast.BreakNode).Loop.After)
	case ast.Set:
		d := s.Data.(ast.SetNode)
		ctx.Emit("%s = %s", d.Id, ctx.Gen(d.Expr))
	case ast.SetElem:
		d := s.Data.(ast.SetElemNode)
		index := ctx.Reduce(d.Index)
		value := ctx.Reduce(d.Expr)
		ctx.Emit("%s[%s] = %s", d.Array, index, value)
	default:
		panic(unhandled(s))
	}
}
