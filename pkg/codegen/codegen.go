// Package codegen emits three-address code straight from type-checked AST
// nodes. Nothing is buffered: every instruction is written the moment it is
// produced.
package codegen

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/config"
)

// Context is one compilation's emitter. Labels and temporaries are numbered
// from 1 by two independent counters; label 0 means "fall through".
type Context struct {
	out        io.Writer
	labelCount int
	tempCount  int
	inline     bool
	open       bool // a label is printed and its line not yet ended
	err        error
}

func NewContext(out io.Writer, cfg *config.Config) *Context {
	return &Context{
		out:    out,
		inline: cfg.IsFeatureEnabled(config.FeatInlineLabels),
	}
}

func (ctx *Context) NewLabel() int {
	ctx.labelCount++
	return ctx.labelCount
}

func (ctx *Context) NewTemp(typ *ast.Type) *ast.Node {
	ctx.tempCount++
	return ast.NewTemp(typ, ctx.tempCount)
}

// Labels and Temps report how many of each were allocated.
func (ctx *Context) Labels() int { return ctx.labelCount }
func (ctx *Context) Temps() int  { return ctx.tempCount }

func (ctx *Context) write(s string) {
	if ctx.err != nil {
		return
	}
	if _, err := io.WriteString(ctx.out, s); err != nil {
		ctx.err = errors.Wrap(err, "writing output")
	}
}

// Emit writes one tab-indented instruction.
func (ctx *Context) Emit(format string, args ...interface{}) {
	ctx.write("\t" + fmt.Sprintf(format, args...) + "\n")
	ctx.open = false
}

func (ctx *Context) EmitLabel(label int) {
	if ctx.inline {
		ctx.write(fmt.Sprintf("L%d:", label))
		ctx.open = true
		return
	}
	ctx.write(fmt.Sprintf("L%d:\n", label))
}

// Finish ends a trailing label line left open in inline mode and returns the
// first write error, if any.
func (ctx *Context) Finish() error {
	if ctx.open {
		ctx.write("\n")
		ctx.open = false
	}
	return ctx.err
}

func (ctx *Context) Err() error { return ctx.err }

// GenProgram wraps the top-level statement in a begin/after label pair.
func (ctx *Context) GenProgram(s *ast.Node) error {
	begin, after := ctx.NewLabel(), ctx.NewLabel()
	ctx.EmitLabel(begin)
	ctx.GenStmt(s, begin, after)
	ctx.EmitLabel(after)
	return ctx.Finish()
}

func unhandled(n *ast.Node) string {
	return fmt.Sprintf("internal error: unhandled node type %d in codegen", n.Type)
}
