package parser

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/codegen"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/symtab"
	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/util"
)

// Scanner is the token source. Scan returns a token.EOF token once the
// input is exhausted and keeps returning it.
type Scanner interface {
	Scan() token.Token
	Line() int
}

// bailout carries the first error up to Program.
type bailout struct{ err *util.CompileError }

// Parser holds the state for the parsing process
type Parser struct {
	lex       Scanner
	look      token.Token
	env       *symtab.Table
	ctx       *codegen.Context
	cfg       *config.Config
	rep       *util.Reporter
	enclosing *ast.Node // innermost loop, nil outside of any
}

// NewParser reads the first token right away. rep may be nil, which
// silences warnings.
func NewParser(lex Scanner, env *symtab.Table, ctx *codegen.Context, cfg *config.Config, rep *util.Reporter) *Parser {
	p := &Parser{lex: lex, env: env, ctx: ctx, cfg: cfg, rep: rep}
	p.move()
	return p
}

// Program parses one block and emits its code between a begin and an after
// label. Code is emitted only once the whole block has type checked.
func (p *Parser) Program() (err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			err = b.err
		}
	}()
	s := p.block()
	return p.ctx.GenProgram(s)
}

// Parser helpers
func (p *Parser) move() { p.look = p.lex.Scan() }

func (p *Parser) check(tokType token.Type) bool { return p.look.Type == tokType }

func (p *Parser) match(tokType token.Type) {
	if !p.check(tokType) {
		p.fail(util.SyntaxError("Unexpected token '%s'", p.look))
	}
	p.move()
}

func (p *Parser) fail(err error) {
	ce, ok := errors.Cause(err).(*util.CompileError)
	if !ok {
		ce = util.TypeError("%v", err)
	}
	ce.Line = p.lex.Line()
	ce.Tok = p.look
	panic(bailout{ce})
}

func (p *Parser) must(n *ast.Node, err error) *ast.Node {
	if err != nil {
		p.fail(err)
	}
	return n
}

func (p *Parser) block() *ast.Node {
	p.match(token.LBrace)
	p.env.Push()
	p.decls()
	s := p.stmts()
	p.match(token.RBrace)
	p.env.Pop()
	return s
}

func (p *Parser) decls() {
	for p.check(token.Basic) {
		typ := p.typ()
		tok := p.look
		p.match(token.Ident)
		if p.check(token.LBracket) {
			typ = p.dims(typ)
		}
		p.match(token.Semi)

		switch {
		case p.env.DeclaredInCurrent(tok.Value):
			if p.cfg.IsFeatureEnabled(config.FeatStrictDecl) {
				p.fail(util.TypeError("'%s' redeclared in this block.", tok))
			}
			p.rep.Warn(p.cfg, config.WarnRedecl, tok, "'%s' redeclared in this block", tok)
		case p.env.DeclaredOutside(tok.Value):
			p.rep.Warn(p.cfg, config.WarnShadow, tok, "declaration of '%s' shadows an outer one", tok)
		}
		if _, err := p.env.Declare(tok, typ); err != nil {
			p.fail(err)
		}
	}
}

func (p *Parser) typ() *ast.Type {
	t := ast.TypeFromName(p.look.Value)
	p.match(token.Basic)
	if !p.check(token.LBracket) {
		return t
	}
	return p.dims(t)
}

// dims builds T[n][m] as n arrays of (m arrays of T). Dimensions may follow
// the type keyword, the declared name, or both; int[2] a[3] is [3][2]int.
func (p *Parser) dims(t *ast.Type) *ast.Type {
	p.match(token.LBracket)
	tok := p.look
	p.match(token.Num)
	p.match(token.RBracket)
	n, err := strconv.Atoi(tok.Value)
	if err != nil {
		p.fail(util.TypeError("Array size %s out of range.", tok))
	}
	if p.check(token.LBracket) {
		t = p.dims(t)
	}
	arr, err := ast.MakeArray(n, t)
	if err != nil {
		p.fail(err)
	}
	return arr
}

func (p *Parser) stmts() *ast.Node {
	if p.check(token.RBrace) {
		return ast.Null
	}
	return ast.NewSeq(p.stmt(), p.stmts())
}

func (p *Parser) body(tok token.Token) *ast.Node {
	s := p.stmt()
	if s.IsNull() {
		p.rep.Warn(p.cfg, config.WarnEmptyBody, tok, "'%s' has an empty body", tok)
	}
	return s
}

func (p *Parser) stmt() *ast.Node {
	tok := p.look
	switch tok.Type {
	case token.Semi:
		p.move()
		return ast.Null
	case token.If:
		p.match(token.If)
		p.match(token.LParen)
		x := p.boolExpr()
		p.match(token.RParen)
		s1 := p.body(tok)
		if !p.check(token.Else) {
			return p.must(ast.NewIf(tok, x, s1))
		}
		elseTok := p.look
		p.match(token.Else)
		s2 := p.body(elseTok)
		return p.must(ast.NewElse(tok, x, s1, s2))
	case token.While:
		loop := ast.NewWhile(tok)
		saved := p.enclosing
		p.enclosing = loop
		p.match(token.While)
		p.match(token.LParen)
		x := p.boolExpr()
		p.match(token.RParen)
		s1 := p.body(tok)
		if err := ast.InitWhile(loop, x, s1); err != nil {
			p.fail(err)
		}
		p.enclosing = saved
		return loop
	case token.Do:
		loop := ast.NewDo(tok)
		saved := p.enclosing
		p.enclosing = loop
		p.match(token.Do)
		s1 := p.body(tok)
		p.match(token.While)
		p.match(token.LParen)
		x := p.boolExpr()
		p.match(token.RParen)
		p.match(token.Semi)
		if err := ast.InitDo(loop, s1, x); err != nil {
			p.fail(err)
		}
		p.enclosing = saved
		return loop
	case token.Break:
		p.match(token.Break)
		p.match(token.Semi)
		return p.must(ast.NewBreak(tok, p.enclosing))
	case token.LBrace:
		return p.block()
	}
	return p.assign()
}

func (p *Parser) assign() *ast.Node {
	tok := p.look
	p.match(token.Ident)
	id := p.resolve(tok)
	var s *ast.Node
	if p.check(token.Assign) {
		p.move()
		s = p.must(ast.NewSet(id, p.boolExpr()))
	} else {
		x := p.offset(id)
		p.match(token.Assign)
		s = p.must(ast.NewSetElem(x, p.boolExpr()))
	}
	p.match(token.Semi)
	return s
}

func (p *Parser) resolve(tok token.Token) *ast.Node {
	id := p.env.Resolve(tok.Value)
	if id == nil {
		p.fail(util.TypeError("'%s' undeclared.", tok))
	}
	return id
}

// Expression Parsing
func (p *Parser) boolExpr() *ast.Node {
	x := p.join()
	for p.check(token.OrOr) {
		tok := p.look
		p.move()
		x = p.must(ast.NewOr(tok, x, p.join()))
	}
	return x
}

func (p *Parser) join() *ast.Node {
	x := p.equality()
	for p.check(token.AndAnd) {
		tok := p.look
		p.move()
		x = p.must(ast.NewAnd(tok, x, p.equality()))
	}
	return x
}

func (p *Parser) equality() *ast.Node {
	x := p.rel()
	for p.check(token.EqEq) || p.check(token.Neq) {
		tok := p.look
		p.move()
		x = p.must(ast.NewRel(tok, x, p.rel()))
	}
	return x
}

func (p *Parser) rel() *ast.Node {
	x := p.expr()
	switch p.look.Type {
	case token.Lt, token.Gt, token.Lte, token.Gte:
		tok := p.look
		p.move()
		return p.must(ast.NewRel(tok, x, p.expr()))
	}
	return x
}

func (p *Parser) expr() *ast.Node {
	x := p.term()
	for p.check(token.Plus) || p.check(token.Minus) {
		tok := p.look
		p.move()
		x = p.must(ast.NewArith(tok, x, p.term()))
	}
	return x
}

func (p *Parser) term() *ast.Node {
	x := p.unary()
	for p.check(token.Star) || p.check(token.Slash) {
		tok := p.look
		p.move()
		x = p.must(ast.NewArith(tok, x, p.unary()))
	}
	return x
}

func (p *Parser) unary() *ast.Node {
	switch p.look.Type {
	case token.Minus:
		p.move()
		return p.must(ast.NewUnary(token.NegWord, p.unary()))
	case token.Not:
		tok := p.look
		p.move()
		return p.must(ast.NewNot(tok, p.unary()))
	}
	return p.factor()
}

func (p *Parser) factor() *ast.Node {
	tok := p.look
	switch tok.Type {
	case token.LParen:
		p.move()
		x := p.boolExpr()
		p.match(token.RParen)
		return x
	case token.Num:
		p.move()
		return ast.NewConstant(tok, ast.TypeInt)
	case token.Real:
		p.move()
		return ast.NewConstant(tok, ast.TypeFloat)
	case token.True:
		p.move()
		return ast.True
	case token.False:
		p.move()
		return ast.False
	case token.Ident:
		id := p.resolve(tok)
		p.move()
		if !p.check(token.LBracket) {
			return id
		}
		return p.offset(id)
	}
	p.fail(util.SyntaxError("Syntax error"))
	return nil
}

// offset folds the subscripts of id into one byte offset: the first index
// times the width of one element at that depth, plus each further index
// times the width one level down.
func (p *Parser) offset(id *ast.Node) *ast.Node {
	typ := id.Typ
	p.match(token.LBracket)
	i := p.boolExpr()
	p.match(token.RBracket)
	if !typ.IsArray() {
		p.fail(util.TypeError("'%s' is not an array, or dimensions mismatch.", id))
	}
	typ = typ.Of
	loc := p.must(ast.NewArith(token.StarWord, i, ast.NewInt(typ.Width)))
	for p.check(token.LBracket) {
		p.match(token.LBracket)
		i = p.boolExpr()
		p.match(token.RBracket)
		if !typ.IsArray() {
			p.fail(util.TypeError("'%s' is not an array, or dimensions mismatch.", id))
		}
		typ = typ.Of
		t1 := p.must(ast.NewArith(token.StarWord, i, ast.NewInt(typ.Width)))
		loc = p.must(ast.NewArith(token.PlusWord, loc, t1))
	}
	return ast.NewAccess(id, loc, typ)
}
