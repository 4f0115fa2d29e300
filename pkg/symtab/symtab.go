// Package symtab holds the scope stack used while parsing. Storage is a flat
// frame: every declaration takes the next free bytes and nothing is ever
// given back, not even when its block closes.
package symtab

import (
	"math"

	"github.com/pkg/errors"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/token"
)

// ErrNoScope is returned by Declare when no block is open.
var ErrNoScope = errors.New("declaration outside of any scope")

// ErrFrameFull is returned by Declare when the frame size would overflow.
var ErrFrameFull = errors.New("storage for variables out of range")

type scope map[string]*ast.Node

type Table struct {
	scopes  []scope
	entries []*ast.Node
	used    int
}

func New() *Table { return &Table{} }

func (t *Table) Push() { t.scopes = append(t.scopes, make(scope)) }

func (t *Table) Pop() {
	if len(t.scopes) > 0 {
		t.scopes = t.scopes[:len(t.scopes)-1]
	}
}

func (t *Table) Depth() int { return len(t.scopes) }

// Used is the number of bytes allocated so far.
func (t *Table) Used() int { return t.used }

// Declare binds tok in the innermost scope at the next free offset. A name
// already bound in the same scope is replaced.
func (t *Table) Declare(tok token.Token, typ *ast.Type) (*ast.Node, error) {
	if len(t.scopes) == 0 {
		return nil, errors.Wrapf(ErrNoScope, "declaring '%s'", tok.Value)
	}
	if typ.Width > math.MaxInt-t.used {
		return nil, errors.Wrapf(ErrFrameFull, "declaring '%s'", tok.Value)
	}
	id := ast.NewIdent(tok, typ, t.used)
	t.scopes[len(t.scopes)-1][tok.Value] = id
	t.entries = append(t.entries, id)
	t.used += typ.Width
	return id, nil
}

// Resolve searches from the innermost scope outwards.
func (t *Table) Resolve(name string) *ast.Node {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if id, ok := t.scopes[i][name]; ok {
			return id
		}
	}
	return nil
}

func (t *Table) DeclaredInCurrent(name string) bool {
	if len(t.scopes) == 0 {
		return false
	}
	_, ok := t.scopes[len(t.scopes)-1][name]
	return ok
}

func (t *Table) DeclaredOutside(name string) bool {
	for i := len(t.scopes) - 2; i >= 0; i-- {
		if _, ok := t.scopes[i][name]; ok {
			return true
		}
	}
	return false
}

// Entries lists every binding ever made, in declaration order, including
// those whose scope has closed and those that were replaced.
func (t *Table) Entries() []*ast.Node {
	out := make([]*ast.Node, len(t.entries))
	copy(out, t.entries)
	return out
}
