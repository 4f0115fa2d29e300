// Package compiler runs one complete compilation. Each call builds its own
// scanner, scope stack and emitter, so calls share no state and may run
// concurrently.
package compiler

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/codegen"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/lexer"
	"github.com/xplshn/tacc/pkg/parser"
	"github.com/xplshn/tacc/pkg/symtab"
	"github.com/xplshn/tacc/pkg/util"
)

// Result describes a compilation, successful or not.
type Result struct {
	Used    int         // bytes allocated to variables
	Symbols []*ast.Node // every declaration, in order
	Labels  int
	Temps   int
}

// Compile translates src and writes the three-address code to out.
// Warnings go to diag, which may be nil. A compile error is a
// *util.CompileError and leaves out untouched.
func Compile(name string, src []rune, out io.Writer, cfg *config.Config, diag io.Writer) (*Result, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	w := bufio.NewWriter(out)
	env := symtab.New()
	ctx := codegen.NewContext(w, cfg)

	var rep *util.Reporter
	if diag != nil {
		rep = util.NewReporter(name, src, diag)
	}
	p := parser.NewParser(lexer.NewLexer(src, cfg), env, ctx, cfg, rep)
	err := p.Program()

	res := &Result{Used: env.Used(), Symbols: env.Entries(), Labels: ctx.Labels(), Temps: ctx.Temps()}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = errors.Wrapf(ferr, "writing code for %s", name)
	}
	return res, err
}
