package lexer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/token"
)

// Lexer is a pull scanner: every Scan consumes exactly one token.
type Lexer struct {
	source []rune
	pos    int
	line   int
	column int
	cfg    *config.Config
	words  map[string]token.Type
}

func NewLexer(source []rune, cfg *config.Config) *Lexer {
	l := &Lexer{
		source: source, line: 1, column: 1, cfg: cfg,
		words: make(map[string]token.Type, len(token.KeywordMap)),
	}
	for w, t := range token.KeywordMap {
		l.words[w] = t
	}
	return l
}

// Line is the number of the line the scanner is currently on.
func (l *Lexer) Line() int { return l.line }

func (l *Lexer) Scan() token.Token {
	l.skipWhitespaceAndComments()
	startPos, startCol, startLine := l.pos, l.column, l.line

	if l.isAtEnd() {
		return l.makeToken(token.EOF, "", startPos, startCol, startLine)
	}

	ch := l.peek()
	if unicode.IsLetter(ch) {
		return l.word(startPos, startCol, startLine)
	}
	if isDigit(ch) {
		return l.number(startPos, startCol, startLine)
	}

	l.advance()
	switch ch {
	case '&': return l.matchThen('&', token.AndAnd, startPos, startCol, startLine)
	case '|': return l.matchThen('|', token.OrOr, startPos, startCol, startLine)
	case '=': return l.matchThenElse('=', token.EqEq, token.Assign, startPos, startCol, startLine)
	case '!': return l.matchThenElse('=', token.Neq, token.Not, startPos, startCol, startLine)
	case '<': return l.matchThenElse('=', token.Lte, token.Lt, startPos, startCol, startLine)
	case '>': return l.matchThenElse('=', token.Gte, token.Gt, startPos, startCol, startLine)
	case '(': return l.makeToken(token.LParen, "", startPos, startCol, startLine)
	case ')': return l.makeToken(token.RParen, "", startPos, startCol, startLine)
	case '{': return l.makeToken(token.LBrace, "", startPos, startCol, startLine)
	case '}': return l.makeToken(token.RBrace, "", startPos, startCol, startLine)
	case '[': return l.makeToken(token.LBracket, "", startPos, startCol, startLine)
	case ']': return l.makeToken(token.RBracket, "", startPos, startCol, startLine)
	case ';': return l.makeToken(token.Semi, "", startPos, startCol, startLine)
	case '+': return l.makeToken(token.Plus, "", startPos, startCol, startLine)
	case '-': return l.makeToken(token.Minus, "", startPos, startCol, startLine)
	case '*': return l.makeToken(token.Star, "", startPos, startCol, startLine)
	case '/': return l.makeToken(token.Slash, "", startPos, startCol, startLine)
	}
	return l.makeToken(token.Char, string(ch), startPos, startCol, startLine)
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	return ch
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) makeToken(tokType token.Type, value string, startPos, startCol, startLine int) token.Token {
	return token.Token{
		Type: tokType, Value: value,
		Line: startLine, Column: startCol, Len: l.pos - startPos,
	}
}

// matchThen builds a two-character operator, or falls back to the first
// character as a plain one-character token.
func (l *Lexer) matchThen(expected rune, thenType token.Type, sPos, sCol, sLine int) token.Token {
	if l.peek() == expected {
		l.advance()
		return l.makeToken(thenType, "", sPos, sCol, sLine)
	}
	return l.makeToken(token.Char, string(l.source[sPos]), sPos, sCol, sLine)
}

func (l *Lexer) matchThenElse(expected rune, thenType, elseType token.Type, sPos, sCol, sLine int) token.Token {
	if l.peek() == expected {
		l.advance()
		return l.makeToken(thenType, "", sPos, sCol, sLine)
	}
	return l.makeToken(elseType, "", sPos, sCol, sLine)
}

func (l *Lexer) skipWhitespaceAndComments() {
	comments := l.cfg.IsFeatureEnabled(config.FeatCComments)
	for {
		switch l.peek() {
		case ' ', '\t', '\n', '\r':
			l.advance()
		case '/':
			if !comments {
				return
			}
			switch l.peekNext() {
			case '/':
				for !l.isAtEnd() && l.peek() != '\n' {
					l.advance()
				}
			case '*':
				l.advance()
				l.advance()
				for !l.isAtEnd() && !(l.peek() == '*' && l.peekNext() == '/') {
					l.advance()
				}
				l.advance()
				l.advance()
			default:
				return
			}
		default:
			return
		}
	}
}

// word scans an identifier or reserved word. The first spelling of an
// identifier is interned so later occurrences come back as the same word.
func (l *Lexer) word(startPos, startCol, startLine int) token.Token {
	for unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek()) {
		l.advance()
	}
	value := string(l.source[startPos:l.pos])
	tokType, ok := l.words[value]
	if !ok {
		tokType = token.Ident
		l.words[value] = tokType
	}
	return l.makeToken(tokType, value, startPos, startCol, startLine)
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

// number scans an integer or real literal. Only ASCII digits count. An
// integer keeps its digits, less leading zeros, so literals of any length
// survive unchanged; range checks belong to the parser.
func (l *Lexer) number(startPos, startCol, startLine int) token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	digits := strings.TrimLeft(string(l.source[startPos:l.pos]), "0")
	if digits == "" {
		digits = "0"
	}
	if l.peek() != '.' {
		return l.makeToken(token.Num, digits, startPos, startCol, startLine)
	}
	l.advance()

	fl, _ := strconv.ParseFloat(digits, 64)
	deg := 10.0
	for isDigit(l.peek()) {
		fl += float64(l.advance()-'0') / deg
		deg *= 10
	}
	return l.makeToken(token.Real, FormatReal(fl), startPos, startCol, startLine)
}

// FormatReal prints a real literal the way it appears in emitted code: the
// shortest exact form, always with a decimal point.
func FormatReal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
