package ast

import (
	"fmt"
	"math"

	"github.com/xplshn/tacc/pkg/util"
)

// TypeKind defines the kind of a Type
type TypeKind int

const (
	TYPE_INT TypeKind = iota
	TYPE_FLOAT
	TYPE_CHAR
	TYPE_BOOL
	TYPE_ARRAY
)

// Type is a scalar or an array of Length elements of type Of.
// Scalars are shared and compared by identity.
type Type struct {
	Kind   TypeKind
	Name   string
	Width  int
	Length int
	Of     *Type
}

var (
	TypeInt   = &Type{Kind: TYPE_INT, Name: "int", Width: 4}
	TypeFloat = &Type{Kind: TYPE_FLOAT, Name: "float", Width: 8}
	TypeChar  = &Type{Kind: TYPE_CHAR, Name: "char", Width: 1}
	TypeBool  = &Type{Kind: TYPE_BOOL, Name: "bool", Width: 1}
)

// TypeFromName maps a type keyword to its scalar type.
func TypeFromName(name string) *Type {
	switch name {
	case "int": return TypeInt
	case "float": return TypeFloat
	case "char": return TypeChar
	case "bool": return TypeBool
	}
	return nil
}

// MakeArray builds the type of an array of n elements of type of. The size
// must be non-negative and the total width must fit in an int.
func MakeArray(n int, of *Type) (*Type, error) {
	if n < 0 || (of.Width > 0 && n > math.MaxInt/of.Width) {
		return nil, util.TypeError("Array size %d out of range.", n)
	}
	return &Type{Kind: TYPE_ARRAY, Name: "[]", Width: n * of.Width, Length: n, Of: of}, nil
}

// NewArray is MakeArray for sizes known to be valid. It panics otherwise.
func NewArray(n int, of *Type) *Type {
	t, err := MakeArray(n, of)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Type) IsArray() bool { return t != nil && t.Kind == TYPE_ARRAY }

func (t *Type) IsNumeric() bool {
	return t == TypeInt || t == TypeChar || t == TypeFloat
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.IsArray() {
		return fmt.Sprintf("[%d]%s", t.Length, t.Of)
	}
	return t.Name
}

// Promote returns the wider of two numeric types along char < int < float,
// or nil when either operand is not numeric.
func Promote(a, b *Type) *Type {
	switch {
	case !a.IsNumeric() || !b.IsNumeric():
		return nil
	case a == TypeFloat || b == TypeFloat:
		return TypeFloat
	case a == TypeInt || b == TypeInt:
		return TypeInt
	}
	return TypeChar
}
