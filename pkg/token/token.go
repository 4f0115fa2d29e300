package token

type Type int

const (
	EOF Type = iota
	Ident
	Num
	Real
	Basic // int, float, char, bool
	If
	Else
	While
	Do
	Break
	True
	False
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semi
	Assign
	Plus
	Minus
	Star
	Slash
	Lt
	Gt
	Lte
	Gte
	EqEq
	Neq
	AndAnd
	OrOr
	Not
	Neg   // unary minus, never produced by the lexer
	Index // array access operator
	Temp
	Char // any other single character
)

var KeywordMap = map[string]Type{
	"if":    If,
	"else":  Else,
	"while": While,
	"do":    Do,
	"break": Break,
	"true":  True,
	"false": False,
	"int":   Basic,
	"float": Basic,
	"char":  Basic,
	"bool":  Basic,
}

var typeStrings = map[Type]string{
	EOF:      "end of input",
	LParen:   "(",
	RParen:   ")",
	LBrace:   "{",
	RBrace:   "}",
	LBracket: "[",
	RBracket: "]",
	Semi:     ";",
	Assign:   "=",
	Plus:     "+",
	Minus:    "-",
	Star:     "*",
	Slash:    "/",
	Lt:       "<",
	Gt:       ">",
	Lte:      "<=",
	Gte:      ">=",
	EqEq:     "==",
	Neq:      "!=",
	AndAnd:   "&&",
	OrOr:     "||",
	Not:      "!",
	Neg:      "minus",
	Index:    "[]",
	Temp:     "t",
	True:     "true",
	False:    "false",
	If:       "if",
	Else:     "else",
	While:    "while",
	Do:       "do",
	Break:    "break",
}

func (t Type) String() string {
	if s, ok := typeStrings[t]; ok {
		return s
	}
	switch t {
	case Ident:
		return "identifier"
	case Num:
		return "integer literal"
	case Real:
		return "real literal"
	case Basic:
		return "type"
	}
	return "character"
}

type Token struct {
	Type   Type
	Value  string
	Line   int
	Column int
	Len    int
}

// String returns the lexeme as it appears in emitted code.
func (t Token) String() string {
	if t.Value != "" {
		return t.Value
	}
	return t.Type.String()
}

// Pre-interned words. Positions are left zero.
var (
	TrueWord  = Token{Type: True, Value: "true"}
	FalseWord = Token{Type: False, Value: "false"}
	AndWord   = Token{Type: AndAnd, Value: "&&"}
	OrWord    = Token{Type: OrOr, Value: "||"}
	EqWord    = Token{Type: EqEq, Value: "=="}
	NeWord    = Token{Type: Neq, Value: "!="}
	LeWord    = Token{Type: Lte, Value: "<="}
	GeWord    = Token{Type: Gte, Value: ">="}
	NegWord   = Token{Type: Neg, Value: "minus"}
	IndexWord = Token{Type: Index, Value: "[]"}
	TempWord  = Token{Type: Temp, Value: "t"}
	StarWord  = Token{Type: Star, Value: "*"}
	PlusWord  = Token{Type: Plus, Value: "+"}
)
