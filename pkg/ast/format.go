package ast

import "fmt"

// String renders an expression as an operand or right-hand side of emitted
// code. Statements have no textual form.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Type {
	case Ident:
		return n.Data.(IdentNode).Name
	case Temp:
		return fmt.Sprintf("t%d", n.Data.(TempNode).Number)
	case Constant:
		return n.Tok.String()
	case Arith, Or, And, Rel:
		d := n.Data.(BinaryNode)
		return fmt.Sprintf("%s %s %s", d.Left, n.Tok, d.Right)
	case Unary, Not:
		return fmt.Sprintf("%s %s", n.Tok, n.Data.(UnaryNode).Expr)
	case Access:
		d := n.Data.(AccessNode)
		return fmt.Sprintf("%s[%s]", d.Array, d.Index)
	}
	return ""
}
