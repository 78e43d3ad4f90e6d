// Package parser implements the syntactic analyzer for the LOLCODE front
// end: a recursive-descent parser (no Pratt/precedence climbing needed,
// since every LOLCODE binary operator is a prefix keyword phrase, e.g.
// "SUM OF a AN b") that turns a token stream into the ast node kinds
// package eval consumes.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dr8co/lolcode/ast"
	"github.com/dr8co/lolcode/lexer"
	"github.com/dr8co/lolcode/token"
)

// Parser holds the running state of a recursive-descent parse: the lexer
// feeding it tokens, the current/lookahead token, and accumulated errors.
type Parser struct {
	l      *lexer.Lexer
	errors []string

	cur  token.Token
	peek token.Token
}

// New creates a Parser reading from l, primed with the first two tokens.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Errors returns every error accumulated during parsing.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) errorf(format string, a ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, a...))
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

// expect records an error if cur doesn't match t, then unconditionally
// advances — parse errors are recorded, not fatal, so the parser always
// makes forward progress over malformed input.
func (p *Parser) expect(t token.Type) token.Token {
	tok := p.cur
	if tok.Type != t {
		p.errorf("line %d: expected %s, got %s %q", tok.Line, t, tok.Type, tok.Literal)
	}
	p.next()
	return tok
}

// expectWord is expect for the handful of keywords ("U" in "IF U SAY SO")
// that the lexer has no dedicated token type for and tokenizes as a plain
// identifier.
func (p *Parser) expectWord(word string) {
	if p.cur.Type != token.IDENT || !strings.EqualFold(p.cur.Literal, word) {
		p.errorf("line %d: expected %q, got %s %q", p.cur.Line, word, p.cur.Type, p.cur.Literal)
	}
	p.next()
}

// skipSeparators consumes NEWLINE/COMMA tokens, both of which terminate a
// statement in LOLCODE's source grammar (a trailing comma keeps the next
// statement on the same line).
func (p *Parser) skipSeparators() {
	for p.cur.Type == token.NEWLINE || p.cur.Type == token.COMMA {
		p.next()
	}
}

// ParseProgram parses an optional "HAI ... KTHXBAI" envelope around a
// sequence of statements; the envelope is optional so single expressions
// (e.g. from -e or a REPL line) parse without it.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}

	if p.cur.Type == token.HAI {
		p.next()
		if p.cur.Type == token.NUMBR || p.cur.Type == token.NUMBAR {
			p.next() // version literal, not otherwise meaningful to the core
		}
		p.skipSeparators()
		prog.Statements = p.parseStatementsUntil(func() bool {
			return p.cur.Type == token.KTHXBAI || p.cur.Type == token.EOF
		})
		p.expect(token.KTHXBAI)
		return prog
	}

	prog.Statements = p.parseStatementsUntil(func() bool { return p.cur.Type == token.EOF })
	return prog
}

// parseStatementsUntil parses statements, skipping separators between and
// around them, until stop() reports true or input runs out.
func (p *Parser) parseStatementsUntil(stop func() bool) []ast.Statement {
	var stmts []ast.Statement
	p.skipSeparators()
	for !stop() && p.cur.Type != token.EOF {
		stmts = append(stmts, p.parseStatement())
		p.skipSeparators()
	}
	return stmts
}

func (p *Parser) parseBlockUntil(stop func() bool) *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.cur, Statements: p.parseStatementsUntil(stop)}
	return block
}

func (p *Parser) parseStatement() ast.Statement {
	switch {
	case p.cur.Type == token.VISIBLE:
		return p.parsePrint()
	case p.cur.Type == token.GIMMEH:
		return p.parseInput()
	case p.cur.Type == token.I_KW && p.peek.Type == token.HAS:
		return p.parseDeclaration()
	case p.cur.Type == token.O_KW && p.peek.Type == token.RLY:
		return p.parseIfThenElse()
	case p.cur.Type == token.WTF:
		return p.parseSwitch()
	case p.cur.Type == token.IM && p.peek.Type == token.IN:
		return p.parseLoop()
	case p.cur.Type == token.HOW:
		return p.parseFuncDef()
	case p.cur.Type == token.FOUND:
		return p.parseReturn()
	case p.cur.Type == token.GTFO:
		tok := p.cur
		p.next()
		return &ast.BreakStmt{Token: tok}
	case p.cur.Type == token.O_KW && p.peek.Type == token.HAI:
		return p.parseAltArrayDef()
	case p.cur.Type == token.CAN && p.peek.Type == token.HAS:
		return p.parseImport()
	case p.cur.Type == token.IDENT:
		return p.parseIdentifierLedStatement()
	default:
		tok := p.cur
		expr := p.parseExpression()
		return &ast.ExprStmt{Token: tok, Expression: expr}
	}
}

func (p *Parser) parsePrint() ast.Statement {
	tok := p.expect(token.VISIBLE)
	args := []ast.Expression{p.parseExpression()}
	for isExprStart(p.cur.Type) {
		args = append(args, p.parseExpression())
	}
	noNewline := false
	if p.cur.Type == token.BANG {
		p.next()
		noNewline = true
	}
	return &ast.PrintStmt{Token: tok, Args: args, NoNewline: noNewline}
}

func (p *Parser) parseInput() ast.Statement {
	tok := p.expect(token.GIMMEH)
	target := p.parseIdentifierChain()
	return &ast.InputStmt{Token: tok, Target: target}
}

func (p *Parser) parseDeclaration() ast.Statement {
	tok := p.expect(token.I_KW)
	p.expect(token.HAS)
	p.expect(token.A_KW)
	target := p.parseIdentifierChain()

	decl := &ast.DeclarationStmt{Token: tok, Target: target}
	switch {
	case p.cur.Type == token.ITZ:
		p.next()
		if p.cur.Type == token.A_KW && isTypeToken(p.peek.Type) {
			p.next()
			decl.Type = p.parseType()
		} else {
			decl.Init = p.parseExpression()
		}
	case p.cur.Type == token.TEH:
		p.next()
		decl.Type = p.parseType()
	case p.cur.Type == token.LIEK:
		p.next()
		decl.Parent = p.parseIdentifierChain()
	}
	return decl
}

func isTypeToken(t token.Type) bool {
	switch t {
	case token.NUMBR_TYPE, token.NUMBAR_TYPE, token.YARN_TYPE, token.TROOF_TYPE, token.BUKKIT, token.NOOB:
		return true
	default:
		return false
	}
}

func (p *Parser) parseType() ast.ValueKind {
	tok := p.cur
	p.next()
	switch tok.Type {
	case token.NUMBR_TYPE:
		return ast.KindInteger
	case token.NUMBAR_TYPE:
		return ast.KindFloat
	case token.YARN_TYPE:
		return ast.KindString
	case token.TROOF_TYPE:
		return ast.KindBoolean
	case token.BUKKIT:
		return ast.KindArray
	case token.NOOB:
		return ast.KindNil
	default:
		p.errorf("line %d: expected a type keyword, got %s %q", tok.Line, tok.Type, tok.Literal)
		return ast.KindNil
	}
}

// parseIdentifierLedStatement handles the four statement forms that begin
// with an assignable target: assignment ("X R expr"), deallocation ("X R
// NOOB"), in-place cast ("X IS NOW A type"), and a bare identifier read as
// an expression statement.
func (p *Parser) parseIdentifierLedStatement() ast.Statement {
	tok := p.cur
	target := p.parseIdentifierChain()

	switch p.cur.Type {
	case token.R_KW:
		p.next()
		if p.cur.Type == token.NOOB {
			p.next()
			return &ast.DeallocationStmt{Token: tok, Target: target}
		}
		return &ast.AssignmentStmt{Token: tok, Target: target, Value: p.parseExpression()}
	case token.IS:
		p.next()
		p.expect(token.NOW)
		p.expect(token.A_KW)
		return &ast.CastStmt{Token: tok, Target: target, Type: p.parseType()}
	default:
		return &ast.ExprStmt{Token: tok, Expression: &ast.IdentifierExpr{Token: tok, Ident: target}}
	}
}

// parseIdentifierChain parses a (possibly dotted) identifier. The lexer
// already merges "A.B.C" into one IDENT token (readWord treats '.' as a
// word character), so splitting on '.' reconstructs the Slot chain. ME_KW
// and I_KW are accepted too, since "ME"/"I" are valid bareword Scope
// identifiers (spec.md §4.2 "get_scope") even though the lexer gives them
// their own token types.
func (p *Parser) parseIdentifierChain() *ast.Identifier {
	tok := p.cur
	var literal string
	switch tok.Type {
	case token.IDENT:
		literal = tok.Literal
	case token.ME_KW:
		literal = "ME"
	case token.I_KW:
		literal = "I"
	default:
		p.errorf("line %d: expected an identifier, got %s %q", tok.Line, tok.Type, tok.Literal)
		literal = tok.Literal
	}
	p.next()

	parts := strings.Split(literal, ".")
	root := &ast.Identifier{Token: tok, Name: parts[0]}
	cur := root
	for _, part := range parts[1:] {
		cur.Slot = &ast.Identifier{Token: tok, Name: part}
		cur = cur.Slot
	}
	return root
}

func (p *Parser) parseIfThenElse() ast.Statement {
	tok := p.expect(token.O_KW)
	p.expect(token.RLY)
	p.expect(token.QUESTION)
	p.skipSeparators()

	p.expect(token.YA)
	p.expect(token.RLY)
	p.skipSeparators()

	stop := func() bool {
		return p.cur.Type == token.MEBBE || p.cur.Type == token.NO || p.cur.Type == token.OIC
	}
	ifThenElse := &ast.IfThenElseStmt{Token: tok, Yes: p.parseBlockUntil(stop)}

	for p.cur.Type == token.MEBBE {
		p.next()
		guard := p.parseExpression()
		p.skipSeparators()
		ifThenElse.Guards = append(ifThenElse.Guards, guard)
		ifThenElse.Blocks = append(ifThenElse.Blocks, p.parseBlockUntil(stop))
	}

	if p.cur.Type == token.NO {
		p.next()
		p.expect(token.WAI)
		p.skipSeparators()
		ifThenElse.No = p.parseBlockUntil(func() bool { return p.cur.Type == token.OIC })
	}

	p.expect(token.OIC)
	return ifThenElse
}

func (p *Parser) parseSwitch() ast.Statement {
	tok := p.expect(token.WTF)
	p.expect(token.QUESTION)
	p.skipSeparators()

	sw := &ast.SwitchStmt{Token: tok}
	stop := func() bool {
		return p.cur.Type == token.OMG || p.cur.Type == token.OMGWTF || p.cur.Type == token.OIC
	}
	for p.cur.Type == token.OMG {
		p.next()
		guard := p.parseExpression()
		p.skipSeparators()
		sw.Guards = append(sw.Guards, guard)
		sw.Blocks = append(sw.Blocks, p.parseBlockUntil(stop))
	}
	if p.cur.Type == token.OMGWTF {
		p.next()
		p.skipSeparators()
		sw.Default = p.parseBlockUntil(func() bool { return p.cur.Type == token.OIC })
	}
	p.expect(token.OIC)
	return sw
}

func (p *Parser) parseLoop() ast.Statement {
	tok := p.expect(token.IM)
	p.expect(token.IN)
	p.expect(token.YR)
	label := p.consumeLabel()

	loop := &ast.LoopStmt{Token: tok, Label: label}

	switch p.cur.Type {
	case token.UPPIN, token.NERFIN:
		isUp := p.cur.Type == token.UPPIN
		p.next()
		p.expect(token.YR)
		loop.Var = p.parseIdentifierChain()
		loop.UpdateIsAddSub = true
		op := ast.OpAdd
		loop.UpdateDelta = 1
		if !isUp {
			op = ast.OpSub
			loop.UpdateDelta = -1
		}
		loop.Update = &ast.OpExpr{Kind: op, Args: []ast.Expression{
			&ast.IdentifierExpr{Ident: loop.Var},
			&ast.Constant{Kind: ast.KindInteger, Int: 1},
		}}
	}

	switch p.cur.Type {
	case token.TIL:
		p.next()
		loop.GuardIsUntil = true
		loop.Guard = p.parseExpression()
	case token.WILE:
		p.next()
		loop.Guard = p.parseExpression()
	}

	p.skipSeparators()
	loop.Body = p.parseBlockUntil(func() bool {
		return p.cur.Type == token.IM && p.peek.Type == token.OUTTA
	})

	p.expect(token.IM)
	p.expect(token.OUTTA)
	p.expect(token.YR)
	p.consumeLabel()
	return loop
}

// consumeLabel reads a loop/function label, a bareword that the lexer
// tokenizes as IDENT.
func (p *Parser) consumeLabel() string {
	lit := p.cur.Literal
	if p.cur.Type != token.IDENT {
		p.errorf("line %d: expected a label, got %s %q", p.cur.Line, p.cur.Type, p.cur.Literal)
	}
	p.next()
	return lit
}

func (p *Parser) parseFuncDef() ast.Statement {
	tok := p.expect(token.HOW)
	p.expect(token.IZ)
	p.expect(token.I_KW)
	name := p.consumeLabel()

	def := &ast.FuncDefStmt{Token: tok, Name: name}
	if p.cur.Type == token.YR {
		p.next()
		def.Args = append(def.Args, p.parseIdentifierChain())
		for p.cur.Type == token.AN {
			p.next()
			p.expect(token.YR)
			def.Args = append(def.Args, p.parseIdentifierChain())
		}
	}

	p.skipSeparators()
	def.Body = p.parseBlockUntil(func() bool {
		return p.cur.Type == token.IF && p.peek.Type == token.IDENT && strings.EqualFold(p.peek.Literal, "U")
	})

	p.expect(token.IF)
	p.expectWord("U")
	p.expect(token.SAY)
	p.expect(token.SO)
	return def
}

func (p *Parser) parseReturn() ast.Statement {
	tok := p.expect(token.FOUND)
	p.expect(token.YR)
	return &ast.ReturnStmt{Token: tok, Value: p.parseExpression()}
}

func (p *Parser) parseAltArrayDef() ast.Statement {
	tok := p.expect(token.O_KW)
	p.expect(token.HAI)
	p.expect(token.IM)
	name := p.consumeLabel()

	altArray := &ast.AltArrayDefStmt{Token: tok, Name: name}
	if p.cur.Type == token.IM {
		p.next()
		p.expect(token.LIEK)
		altArray.Parent = p.parseExpression()
	}

	p.skipSeparators()
	altArray.Body = p.parseBlockUntil(func() bool { return p.cur.Type == token.KTHX })
	p.expect(token.KTHX)
	return altArray
}

func (p *Parser) parseImport() ast.Statement {
	tok := p.expect(token.CAN)
	p.expect(token.HAS)
	library := strings.ToUpper(p.cur.Literal)
	p.next()
	if p.cur.Type == token.QUESTION {
		p.next()
	}
	return &ast.ImportStmt{Token: tok, Library: library}
}

// isExprStart reports whether t can begin an expression, used to keep
// consuming VISIBLE's argument list until something else (NEWLINE, "!")
// ends it.
func isExprStart(t token.Type) bool {
	switch t {
	case token.NUMBR, token.NUMBAR, token.YARN, token.WIN, token.FAIL, token.NOOB, token.IT,
		token.MAEK, token.SUM, token.DIFF, token.PRODUKT, token.QUOSHUNT, token.MOD,
		token.BIGGR, token.SMALLR, token.BOTH, token.EITHER, token.WON, token.NOT,
		token.DIFFRINT, token.SMOOSH, token.I_KW, token.IDENT:
		return true
	default:
		return false
	}
}

func (p *Parser) parseExpression() ast.Expression {
	switch p.cur.Type {
	case token.NUMBR:
		return p.parseIntegerConstant()
	case token.NUMBAR:
		return p.parseFloatConstant()
	case token.YARN:
		tok := p.cur
		p.next()
		return &ast.Constant{Token: tok, Kind: ast.KindString, Str: tok.Literal}
	case token.WIN:
		tok := p.cur
		p.next()
		return &ast.Constant{Token: tok, Kind: ast.KindBoolean, Bool: true}
	case token.FAIL:
		tok := p.cur
		p.next()
		return &ast.Constant{Token: tok, Kind: ast.KindBoolean, Bool: false}
	case token.NOOB:
		tok := p.cur
		p.next()
		return &ast.Constant{Token: tok, Kind: ast.KindNil}
	case token.IT:
		tok := p.cur
		p.next()
		return &ast.ImpVarExpr{Token: tok}
	case token.MAEK:
		return p.parseCast()
	case token.SUM, token.DIFF, token.PRODUKT, token.QUOSHUNT, token.MOD, token.BIGGR, token.SMALLR:
		return p.parseArithmetic()
	case token.BOTH:
		return p.parseBoth()
	case token.EITHER:
		return p.parseBinaryOp(token.EITHER, ast.OpOr)
	case token.WON:
		return p.parseBinaryOp(token.WON, ast.OpXor)
	case token.NOT:
		tok := p.cur
		p.next()
		return &ast.OpExpr{Token: tok, Kind: ast.OpNot, Args: []ast.Expression{p.parseExpression()}}
	case token.DIFFRINT:
		tok := p.cur
		p.next()
		a := p.parseExpression()
		p.expect(token.AN)
		b := p.parseExpression()
		return &ast.OpExpr{Token: tok, Kind: ast.OpNeq, Args: []ast.Expression{a, b}}
	case token.SMOOSH:
		return p.parseConcat()
	case token.I_KW:
		return p.parseIStartedExpression()
	case token.IDENT, token.ME_KW:
		target := p.parseIdentifierChain()
		return &ast.IdentifierExpr{Ident: target}
	default:
		tok := p.cur
		p.errorf("line %d: unexpected token %s %q in expression", tok.Line, tok.Type, tok.Literal)
		p.next()
		return &ast.Constant{Token: tok, Kind: ast.KindNil}
	}
}

func (p *Parser) parseIntegerConstant() ast.Expression {
	tok := p.cur
	n, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		p.errorf("line %d: invalid NUMBR literal %q: %v", tok.Line, tok.Literal, err)
	}
	p.next()
	return &ast.Constant{Token: tok, Kind: ast.KindInteger, Int: n}
}

func (p *Parser) parseFloatConstant() ast.Expression {
	tok := p.cur
	f, err := strconv.ParseFloat(tok.Literal, 32)
	if err != nil {
		p.errorf("line %d: invalid NUMBAR literal %q: %v", tok.Line, tok.Literal, err)
	}
	p.next()
	return &ast.Constant{Token: tok, Kind: ast.KindFloat, Float: float32(f)}
}

func (p *Parser) parseCast() ast.Expression {
	tok := p.expect(token.MAEK)
	v := p.parseExpression()
	p.expect(token.A_KW)
	return &ast.CastExpr{Token: tok, Value: v, Target: p.parseType()}
}

var arithKinds = map[token.Type]ast.OpKind{
	token.SUM:      ast.OpAdd,
	token.DIFF:     ast.OpSub,
	token.PRODUKT:  ast.OpMult,
	token.QUOSHUNT: ast.OpDiv,
	token.MOD:      ast.OpMod,
	token.BIGGR:    ast.OpMax,
	token.SMALLR:   ast.OpMin,
}

func (p *Parser) parseArithmetic() ast.Expression {
	tok := p.cur
	kind := arithKinds[tok.Type]
	p.next()
	p.expect(token.OF)
	a := p.parseExpression()
	p.expect(token.AN)
	b := p.parseExpression()
	return &ast.OpExpr{Token: tok, Kind: kind, Args: []ast.Expression{a, b}}
}

// parseBoth disambiguates "BOTH SAEM a AN b" (equality) from "BOTH OF a AN
// b" (AND), the only two-word overload in the grammar.
func (p *Parser) parseBoth() ast.Expression {
	tok := p.expect(token.BOTH)
	if p.cur.Type == token.SAEM {
		p.next()
		a := p.parseExpression()
		p.expect(token.AN)
		b := p.parseExpression()
		return &ast.OpExpr{Token: tok, Kind: ast.OpEq, Args: []ast.Expression{a, b}}
	}
	p.expect(token.OF)
	a := p.parseExpression()
	p.expect(token.AN)
	b := p.parseExpression()
	return &ast.OpExpr{Token: tok, Kind: ast.OpAnd, Args: []ast.Expression{a, b}}
}

func (p *Parser) parseBinaryOp(want token.Type, kind ast.OpKind) ast.Expression {
	tok := p.expect(want)
	p.expect(token.OF)
	a := p.parseExpression()
	p.expect(token.AN)
	b := p.parseExpression()
	return &ast.OpExpr{Token: tok, Kind: kind, Args: []ast.Expression{a, b}}
}

func (p *Parser) parseConcat() ast.Expression {
	tok := p.expect(token.SMOOSH)
	args := []ast.Expression{p.parseExpression()}
	for p.cur.Type == token.AN {
		p.next()
		args = append(args, p.parseExpression())
	}
	if p.cur.Type == token.MKAY {
		p.next()
	}
	return &ast.OpExpr{Token: tok, Kind: ast.OpConcat, Args: args}
}

// parseIStartedExpression handles the two expression forms that begin with
// the "I" keyword: a function call ("I IZ f YR a AN YR b MKAY") and a
// system command ("I CAN HAS SHELL expr?").
func (p *Parser) parseIStartedExpression() ast.Expression {
	tok := p.expect(token.I_KW)
	switch p.cur.Type {
	case token.IZ:
		p.next()
		target := p.parseIdentifierChain()
		var args []ast.Expression
		if p.cur.Type == token.YR {
			p.next()
			args = append(args, p.parseExpression())
			for p.cur.Type == token.AN {
				p.next()
				p.expect(token.YR)
				args = append(args, p.parseExpression())
			}
		}
		if p.cur.Type == token.MKAY {
			p.next()
		}
		return &ast.FuncCallExpr{Token: tok, Target: target, Args: args}
	case token.CAN:
		p.next()
		p.expect(token.HAS)
		p.expect(token.SHELL)
		cmd := p.parseExpression()
		if p.cur.Type == token.QUESTION {
			p.next()
		}
		return &ast.SystemCommandExpr{Token: tok, Command: cmd}
	default:
		p.errorf("line %d: expected IZ or CAN after I, got %s %q", p.cur.Line, p.cur.Type, p.cur.Literal)
		return &ast.Constant{Token: tok, Kind: ast.KindNil}
	}
}
