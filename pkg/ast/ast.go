// Package ast defines the nodes built by the parser. Every constructor type
// checks its operands on the spot, so a node that exists is well typed.
package ast

import (
	"strconv"

	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/util"
)

// NodeType defines the kind of a node in the AST
type NodeType int

const (
	// Expressions
	Ident NodeType = iota
	Temp
	Constant
	Arith
	Unary
	Access
	Or
	And
	Not
	Rel

	// Statements
	NullStmt
	If
	Else
	While
	Do
	Set
	SetElem
	Seq
	Break
)

// Node is an expression (Typ set) or a statement. After is written by loop
// statements during code generation and read by the breaks inside them.
type Node struct {
	Type  NodeType
	Tok   token.Token
	Data  interface{}
	Typ   *Type
	After int
}

// --- Node Data Structs ---
type IdentNode struct {
	Name   string
	Offset int
}
type TempNode struct{ Number int }
type ConstantNode struct{}
type BinaryNode struct{ Left, Right *Node }
type UnaryNode struct{ Expr *Node }
type AccessNode struct{ Array, Index *Node }
type IfNode struct{ Cond, Then *Node }
type ElseNode struct{ Cond, Then, Else *Node }
type WhileNode struct{ Cond, Body *Node }
type DoNode struct{ Body, Cond *Node }
type SetNode struct{ Id, Expr *Node }
type SetElemNode struct{ Array, Index, Expr *Node }
type SeqNode struct{ First, Second *Node }
type BreakNode struct{ Loop *Node }

// Null is the empty statement. Test for it with IsNull.
var Null = &Node{Type: NullStmt}

var (
	True  = NewConstant(token.TrueWord, TypeBool)
	False = NewConstant(token.FalseWord, TypeBool)
)

func (n *Node) IsNull() bool { return n == nil || n.Type == NullStmt }

func (n *Node) IsExpr() bool { return n != nil && n.Type <= Rel }

// Rebuild returns a copy of n carrying different data. Code generation uses it
// to swap operands for their reduced forms without repeating the type check.
func (n *Node) Rebuild(data interface{}) *Node {
	c := *n
	c.Data = data
	return &c
}

// --- Expressions ---

func NewIdent(tok token.Token, typ *Type, offset int) *Node {
	return &Node{Type: Ident, Tok: tok, Typ: typ, Data: IdentNode{Name: tok.Value, Offset: offset}}
}

func NewTemp(typ *Type, number int) *Node {
	return &Node{Type: Temp, Tok: token.TempWord, Typ: typ, Data: TempNode{Number: number}}
}

func NewConstant(tok token.Token, typ *Type) *Node {
	return &Node{Type: Constant, Tok: tok, Typ: typ, Data: ConstantNode{}}
}

// NewInt builds an integer constant not found in the source, such as an
// element width.
func NewInt(v int) *Node {
	return NewConstant(token.Token{Type: token.Num, Value: strconv.Itoa(v)}, TypeInt)
}

func arrayMismatch(a, b *Type) bool { return a.IsArray() || b.IsArray() }

func NewArith(tok token.Token, left, right *Node) (*Node, error) {
	if arrayMismatch(left.Typ, right.Typ) {
		return nil, util.TypeError("Type error: array dimensions don't match.")
	}
	t := Promote(left.Typ, right.Typ)
	if t == nil {
		return nil, util.TypeError("Type mismatch for arithmetic '%s'.", tok)
	}
	return &Node{Type: Arith, Tok: tok, Typ: t, Data: BinaryNode{Left: left, Right: right}}, nil
}

func NewUnary(tok token.Token, expr *Node) (*Node, error) {
	if expr.Typ.IsArray() {
		return nil, util.TypeError("Type error: array dimensions don't match.")
	}
	t := Promote(TypeInt, expr.Typ)
	if t == nil {
		return nil, util.TypeError("Type mismatch for unary '%s'.", tok)
	}
	return &Node{Type: Unary, Tok: tok, Typ: t, Data: UnaryNode{Expr: expr}}, nil
}

func NewAccess(array, index *Node, typ *Type) *Node {
	return &Node{Type: Access, Tok: token.IndexWord, Typ: typ, Data: AccessNode{Array: array, Index: index}}
}

func newLogical(nodeType NodeType, tok token.Token, left, right *Node) (*Node, error) {
	if left.Typ != TypeBool || right.Typ != TypeBool {
		return nil, util.TypeError("Type mismatch for logical statements.")
	}
	return &Node{Type: nodeType, Tok: tok, Typ: TypeBool, Data: BinaryNode{Left: left, Right: right}}, nil
}

func NewOr(tok token.Token, left, right *Node) (*Node, error) { return newLogical(Or, tok, left, right) }

func NewAnd(tok token.Token, left, right *Node) (*Node, error) { return newLogical(And, tok, left, right) }

func NewNot(tok token.Token, expr *Node) (*Node, error) {
	if expr.Typ != TypeBool {
		return nil, util.TypeError("Type mismatch for logical statements.")
	}
	return &Node{Type: Not, Tok: tok, Typ: TypeBool, Data: UnaryNode{Expr: expr}}, nil
}

// NewRel accepts two numeric operands of any width, or two operands of the
// same non-array type.
func NewRel(tok token.Token, left, right *Node) (*Node, error) {
	if arrayMismatch(left.Typ, right.Typ) {
		return nil, util.TypeError("Type error: array dimensions don't match.")
	}
	if Promote(left.Typ, right.Typ) == nil && left.Typ != right.Typ {
		return nil, util.TypeError("Type mismatch for relational '%s'.", tok)
	}
	return &Node{Type: Rel, Tok: tok, Typ: TypeBool, Data: BinaryNode{Left: left, Right: right}}, nil
}

// --- Statements ---

func requireBool(cond *Node, stmt string) error {
	if cond.Typ != TypeBool {
		return util.TypeError("Boolean required in '%s' statement.", stmt)
	}
	return nil
}

func NewIf(tok token.Token, cond, then *Node) (*Node, error) {
	if err := requireBool(cond, "if"); err != nil {
		return nil, err
	}
	return &Node{Type: If, Tok: tok, Data: IfNode{Cond: cond, Then: then}}, nil
}

func NewElse(tok token.Token, cond, then, els *Node) (*Node, error) {
	if err := requireBool(cond, "if-else"); err != nil {
		return nil, err
	}
	return &Node{Type: Else, Tok: tok, Data: ElseNode{Cond: cond, Then: then, Else: els}}, nil
}

// NewWhile and NewDo allocate a loop before its body is parsed so that breaks
// inside the body can refer to it. Finish them with InitWhile and InitDo.
func NewWhile(tok token.Token) *Node { return &Node{Type: While, Tok: tok} }

func NewDo(tok token.Token) *Node { return &Node{Type: Do, Tok: tok} }

func InitWhile(loop, cond, body *Node) error {
	if err := requireBool(cond, "while"); err != nil {
		return err
	}
	loop.Data = WhileNode{Cond: cond, Body: body}
	return nil
}

func InitDo(loop, body, cond *Node) error {
	if err := requireBool(cond, "do-while"); err != nil {
		return err
	}
	loop.Data = DoNode{Body: body, Cond: cond}
	return nil
}

func assignMismatch(target, value *Type) error {
	if arrayMismatch(target, value) {
		return util.TypeError("Type error: array dimensions don't match.")
	}
	return util.TypeError("Type error: variable doesn't match expression.")
}

// NewSet allows numeric to numeric and bool to bool only.
func NewSet(id, expr *Node) (*Node, error) {
	numeric := id.Typ.IsNumeric() && expr.Typ.IsNumeric()
	boolean := id.Typ == TypeBool && expr.Typ == TypeBool
	if !numeric && !boolean {
		return nil, assignMismatch(id.Typ, expr.Typ)
	}
	return &Node{Type: Set, Tok: id.Tok, Data: SetNode{Id: id, Expr: expr}}, nil
}

// NewSetElem stores into a scalar element; whole arrays are never copied.
func NewSetElem(access, expr *Node) (*Node, error) {
	if arrayMismatch(access.Typ, expr.Typ) {
		return nil, assignMismatch(access.Typ, expr.Typ)
	}
	if access.Typ != expr.Typ && Promote(access.Typ, expr.Typ) == nil {
		return nil, assignMismatch(access.Typ, expr.Typ)
	}
	a := access.Data.(AccessNode)
	return &Node{Type: SetElem, Tok: a.Array.Tok, Data: SetElemNode{Array: a.Array, Index: a.Index, Expr: expr}}, nil
}

func NewSeq(first, second *Node) *Node {
	return &Node{Type: Seq, Data: SeqNode{First: first, Second: second}}
}

// NewBreak binds a break to the innermost enclosing loop, nil when there is none.
func NewBreak(tok token.Token, loop *Node) (*Node, error) {
	if loop.IsNull() {
		return nil, util.TypeError("Unclosed 'break' statement.")
	}
	return &Node{Type: Break, Tok: tok, Data: BreakNode{Loop: loop}}, nil
}
