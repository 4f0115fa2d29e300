package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/token"
)

var (
	// ErrSyntax matches every error raised because an expected token was missing.
	ErrSyntax = errors.New("syntax error")
	// ErrType matches every semantic error: type mismatches, undeclared names,
	// subscript arity and stray breaks.
	ErrType = errors.New("type error")
)

type ErrorKind int

const (
	KindSyntax ErrorKind = iota
	KindType
)

// CompileError is the single diagnostic that stops a compilation.
type CompileError struct {
	Kind ErrorKind
	Tok  token.Token
	Line int
	Msg  string
}

func (e *CompileError) Error() string { return fmt.Sprintf("Near line %d:\n  %s", e.Line, e.Msg) }

func (e *CompileError) Unwrap() error {
	if e.Kind == KindType {
		return ErrType
	}
	return ErrSyntax
}

func SyntaxError(format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: KindSyntax, Msg: fmt.Sprintf(format, args...)}
}

func TypeError(format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: KindType, Msg: fmt.Sprintf(format, args...)}
}

// Reporter prints diagnostics for one source file.
type Reporter struct {
	Name    string
	Content []rune
	Out     io.Writer
	color   bool
}

func NewReporter(name string, content []rune, out io.Writer) *Reporter {
	if out == nil {
		out = io.Discard
	}
	r := &Reporter{Name: name, Content: content, Out: out}
	if f, ok := out.(*os.File); ok {
		r.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return r
}

func (r *Reporter) paint(code, s string) string {
	if !r.color {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// printErrorLine prints the source line and a caret indicating the error position
func (r *Reporter) printErrorLine(line, col, length int) {
	if line <= 0 {
		return
	}
	lines := strings.Split(string(r.Content), "\n")
	if line > len(lines) {
		return
	}
	fmt.Fprintf(r.Out, "  %s\n", lines[line-1])
	if col <= 0 {
		return
	}
	caret := "^"
	if length > 1 {
		caret += strings.Repeat("~", length-1)
	}
	fmt.Fprintf(r.Out, "  %s%s\n", strings.Repeat(" ", col-1), r.paint("32", caret))
}

// Error prints a compile error. Anything else is printed as a plain message.
func (r *Reporter) Error(err error) {
	var ce *CompileError
	if !errors.As(err, &ce) {
		fmt.Fprintf(r.Out, "%s: %s %v\n", r.Name, r.paint("31", "error:"), err)
		return
	}
	fmt.Fprintf(r.Out, "%s:%d:%d: %s %s\n", r.Name, ce.Line, ce.Tok.Column, r.paint("31", "error:"), ce.Msg)
	col := ce.Tok.Column
	if ce.Tok.Line != ce.Line {
		col = 0
	}
	r.printErrorLine(ce.Line, col, ce.Tok.Len)
}

// Warn prints a formatted warning message if the corresponding warning is enabled
func (r *Reporter) Warn(cfg *config.Config, wt config.Warning, tok token.Token, format string, args ...interface{}) {
	if r == nil || !cfg.IsWarningEnabled(wt) {
		return
	}
	fmt.Fprintf(r.Out, "%s:%d:%d: %s ", r.Name, tok.Line, tok.Column, r.paint("33", "warning:"))
	fmt.Fprintf(r.Out, format, args...)
	fmt.Fprintf(r.Out, " [-W%s]\n", cfg.Warnings[wt].Name)
	r.printErrorLine(tok.Line, tok.Column, tok.Len)
}
