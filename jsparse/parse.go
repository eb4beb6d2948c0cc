// Package jsparse converts JS-dialect source text into ir.Stmt trees,
// grounded on github.com/robfig/soy/parse's two-token-lookahead tree
// struct and precedence-climbing expression parser, adapted to the
// restricted JS-dialect grammar of js2esi.token.cparser.
package jsparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/akamai/js2esi/ir"
	"github.com/akamai/js2esi/jslex"
)

// Parse parses the named source text into a top-level ir.Stmt (a Block of
// declarations), matching cparser's `script : declarations | empty`.
func Parse(name, text string) (prog ir.Stmt, err error) {
	p := &parser{name: name, lex: jslex.Lex(name, text), text: text}
	defer p.recover(&err)
	var stmts []ir.Stmt
	for p.peek().Typ != jslex.ItemEOF {
		stmts = append(stmts, p.declaration())
	}
	return &ir.Block{Stmts: stmts}, nil
}

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }

type parser struct {
	name      string
	text      string
	lex       *jslex.Lexer
	tok       [2]jslex.Item
	peekCount int
}

func (p *parser) recover(errp *error) {
	e := recover()
	if e == nil {
		return
	}
	if pe, ok := e.(*parseError); ok {
		*errp = pe
		return
	}
	panic(e)
}

func (p *parser) next() jslex.Item {
	if p.peekCount > 0 {
		p.peekCount--
	} else {
		p.tok[0] = p.lex.NextItem()
	}
	return p.tok[p.peekCount]
}

func (p *parser) backup() { p.peekCount++ }

func (p *parser) peek() jslex.Item {
	if p.peekCount > 0 {
		return p.tok[p.peekCount-1]
	}
	p.peekCount = 1
	p.tok[0] = p.lex.NextItem()
	return p.tok[0]
}

func (p *parser) errorf(format string, args ...interface{}) {
	tok := p.tok[0]
	if p.peekCount > 0 {
		tok = p.tok[p.peekCount-1]
	}
	line, col := p.lex.LineCol(tok.Pos)
	panic(&parseError{msg: fmt.Sprintf("%s@%d,%d: ERROR: %s", p.name, line, col, fmt.Sprintf(format, args...))})
}

func (p *parser) expect(t jslex.ItemType, ctx string) jslex.Item {
	tok := p.next()
	if tok.Typ != t {
		p.errorf("unexpected %v in %s", tok, ctx)
	}
	return tok
}

func (p *parser) expectOp(sym, ctx string) jslex.Item {
	tok := p.next()
	if tok.Typ != jslex.ItemOp || tok.Val != sym {
		p.errorf("expected %q in %s, got %v", sym, ctx, tok)
	}
	return tok
}

func (p *parser) isKeyword(tok jslex.Item, word string) bool {
	return tok.Typ == jslex.ItemKeyword && tok.Val == word
}

func (p *parser) isIdent(tok jslex.Item, word string) bool {
	return tok.Typ == jslex.ItemIdent && tok.Val == word
}

// declaration : statement | comment | functiondef
func (p *parser) declaration() ir.Stmt {
	tok := p.peek()
	switch {
	case tok.Typ == jslex.ItemComment:
		return p.comment()
	case p.isKeyword(tok, "function"):
		return p.functionDef()
	default:
		return p.statement()
	}
}

func (p *parser) comment() ir.Stmt {
	tok := p.next()
	text := strings.TrimPrefix(tok.Val, "//")
	if strings.HasPrefix(text, "/*") {
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	}
	return &ir.Comment{Text: strings.TrimSpace(text)}
}

func (p *parser) block() ir.Stmt {
	p.expect(jslex.ItemLBrace, "block")
	var stmts []ir.Stmt
	for p.peek().Typ != jslex.ItemRBrace {
		stmts = append(stmts, p.declaration())
	}
	p.expect(jslex.ItemRBrace, "block")
	return &ir.Block{Explicit: true, Stmts: stmts}
}

// statement handles one cstatement production.
func (p *parser) statement() ir.Stmt {
	tok := p.peek()
	switch {
	case tok.Typ == jslex.ItemLBrace:
		return p.block()
	case p.isKeyword(tok, "if"):
		return p.ifStmt()
	case p.isKeyword(tok, "for"):
		return p.forStmt()
	case p.isKeyword(tok, "try"):
		return p.tryStmt()
	case p.isKeyword(tok, "break"):
		p.next()
		p.expect(jslex.ItemSemicolon, "break")
		return ir.NewBreak(ir.Pos(tok.Pos))
	case p.isKeyword(tok, "return"):
		return p.returnStmt()
	case p.isKeyword(tok, "require"):
		return p.importStmt(false)
	case p.isKeyword(tok, "include"):
		return p.includeStmt(false)
	case p.isKeyword(tok, "eval"):
		return p.includeStmt(true)
	default:
		return p.exprOrAssignStmt()
	}
}

// assign : [let|var|const] IDENT = expr ; (purely syntactic prefix, no
// semantic scoping distinction per spec.md §4.2)
func (p *parser) exprOrAssignStmt() ir.Stmt {
	tok := p.peek()
	if p.isKeyword(tok, "let") || p.isKeyword(tok, "var") || p.isKeyword(tok, "const") {
		p.next()
		tok = p.peek()
	}
	if tok.Typ == jslex.ItemIdent {
		// look ahead for an assignment form; `name(` starts a call instead,
		// so name is pushed back and parsed as an expression below.
		name := tok
		p.next()
		if p.peek().Typ != jslex.ItemLParen {
			return p.assignTail(name)
		}
		p.tok[1] = name
		p.peekCount = 2
	}
	// bare expression statement (print/printraw/printv calls lower here).
	e := p.expr(0)
	p.expect(jslex.ItemSemicolon, "expression statement")
	return exprStatement(e)
}

// exprStatement lowers a bare FunctionCall expression statement to an
// Output when it names print/printraw/printv, per spec.md §4.2.
func exprStatement(e ir.Expr) ir.Stmt {
	if fc, ok := e.(*ir.FunctionCall); ok {
		switch fc.Name {
		case "print":
			return &ir.Output{Stmts: fc.Args}
		case "printraw":
			return &ir.Output{Stmts: fc.Args, Raw: true}
		case "printv":
			return &ir.Output{Stmts: fc.Args, Vars: true}
		}
	}
	return &ir.Output{Stmts: []ir.Expr{e}}
}

func compoundOpKind(sym string) (ir.OpKind, bool) {
	switch sym {
	case "+=":
		return ir.OpAdd, true
	case "-=":
		return ir.OpSub, true
	case "*=":
		return ir.OpMul, true
	case "/=":
		return ir.OpDiv, true
	case "%=":
		return ir.OpMod, true
	}
	return 0, false
}

// assignTail parses the remainder of an assignment/increment statement
// given that `name` (a bare identifier) has just been consumed. Also
// handles `name[key] = expr;` and `name.sym = expr;` lvalue forms.
func (p *parser) assignTail(name jslex.Item) ir.Stmt {
	pos := ir.Pos(name.Pos)
	var key ir.Expr
	switch p.peek().Typ {
	case jslex.ItemLBracket:
		p.next()
		key = p.expr(0)
		p.expect(jslex.ItemRBracket, "subscript assignment")
	case jslex.ItemDot:
		p.next()
		sym := p.expect(jslex.ItemIdent, "property assignment")
		key = ir.NewLiteral(pos, sym.Val)
	}
	tok := p.next()
	switch {
	case tok.Typ == jslex.ItemOp && tok.Val == "=":
		val := p.expr(0)
		p.expect(jslex.ItemSemicolon, "assign")
		return ir.NewAssign(pos, name.Val, key, val)
	case tok.Typ == jslex.ItemOp:
		if op, ok := compoundOpKind(tok.Val); ok {
			val := p.expr(0)
			p.expect(jslex.ItemSemicolon, "compound assign")
			lvalue := ir.NewVariable(pos, name.Val, key, nil)
			return ir.NewAssign(pos, name.Val, key, ir.NewOperator(pos, op, lvalue, val))
		}
		if tok.Val == "++" || tok.Val == "--" {
			p.expect(jslex.ItemSemicolon, "increment")
			op := ir.OpAdd
			if tok.Val == "--" {
				op = ir.OpSub
			}
			lvalue := ir.NewVariable(pos, name.Val, key, nil)
			one := ir.NewLiteral(pos, float64(1))
			return ir.NewAssign(pos, name.Val, key, ir.NewOperator(pos, op, lvalue, one))
		}
	}
	p.errorf("expected assignment operator, got %v", tok)
	return nil
}

func (p *parser) returnStmt() ir.Stmt {
	p.next()
	if p.peek().Typ == jslex.ItemSemicolon {
		p.next()
		return &ir.FunctionReturn{}
	}
	e := p.expr(0)
	p.expect(jslex.ItemSemicolon, "return")
	return &ir.FunctionReturn{Value: e}
}

func (p *parser) ifStmt() ir.Stmt {
	pos := ir.Pos(p.next().Pos)
	p.expect(jslex.ItemLParen, "if")
	cond := p.expr(0)
	p.expect(jslex.ItemRParen, "if")
	match := p.statement()
	var nomatch ir.Stmt
	if p.isKeyword(p.peek(), "else") {
		p.next()
		if p.isKeyword(p.peek(), "if") {
			nomatch = p.ifStmt()
		} else {
			nomatch = p.statement()
		}
	}
	return ir.NewIf(pos, cond, match, nomatch, nil)
}

// forStmt handles both `for (let x of expr) body` / `for (x of expr) body`
// (ForEach) and the C-style `for (init; cond; step) body`, which lowers per
// spec.md §4.2 to `init; _loop = [range]; foreach _loop { if (!cond) break; body; step; }`.
func (p *parser) forStmt() ir.Stmt {
	pos := ir.Pos(p.next().Pos)
	p.expect(jslex.ItemLParen, "for")
	if p.isKeyword(p.peek(), "let") {
		p.next()
	}
	if p.peek().Typ == jslex.ItemIdent {
		save := p.peekCount
		savedTok := p.tok
		ident := p.next()
		if p.isKeyword(p.peek(), "of") {
			p.next()
			coll := p.expr(0)
			p.expect(jslex.ItemRParen, "for..of")
			body := p.statement()
			return ir.NewForEach(pos, coll, body, ident.Val)
		}
		p.peekCount = save
		p.tok = savedTok
	}
	init := p.statement() // includes trailing ';'
	cond := p.expr(0)
	p.expect(jslex.ItemSemicolon, "for")
	step := p.simpleAssignNoSemi()
	p.expect(jslex.ItemRParen, "for")
	body := p.statement()

	loopVar := "_loop"
	notCond := ir.NewOperator(pos, ir.OpNot, cond)
	guard := ir.NewIf(pos, notCond, ir.NewBreak(pos), nil, nil)
	fe := ir.NewForEach(pos, ir.NewVariable(pos, loopVar, nil, nil),
		&ir.Block{Stmts: []ir.Stmt{guard, body, step}}, "_i")
	return &ir.Block{Stmts: []ir.Stmt{init, ir.NewAssign(pos, loopVar, nil, ir.NewFunctionCall(pos, "range", nil)), fe}}
}

// simpleAssignNoSemi parses a bare assignment/increment for the `step`
// clause of a C-style for loop, where no trailing semicolon follows.
func (p *parser) simpleAssignNoSemi() ir.Stmt {
	name := p.expect(jslex.ItemIdent, "for step")
	tok := p.next()
	pos := ir.Pos(name.Pos)
	switch {
	case tok.Typ == jslex.ItemOp && tok.Val == "=":
		val := p.expr(0)
		return ir.NewAssign(pos, name.Val, nil, val)
	case tok.Typ == jslex.ItemOp:
		if op, ok := compoundOpKind(tok.Val); ok {
			val := p.expr(0)
			return ir.NewAssign(pos, name.Val, nil, ir.NewOperator(pos, op, ir.NewVariable(pos, name.Val, nil, nil), val))
		}
		if tok.Val == "++" || tok.Val == "--" {
			op := ir.OpAdd
			if tok.Val == "--" {
				op = ir.OpSub
			}
			return ir.NewAssign(pos, name.Val, nil, ir.NewOperator(pos, op, ir.NewVariable(pos, name.Val, nil, nil), ir.NewLiteral(pos, float64(1))))
		}
	}
	p.errorf("expected assignment in for step, got %v", tok)
	return nil
}

func (p *parser) tryStmt() ir.Stmt {
	p.next()
	attempt := p.statement()
	t := &ir.Try{Attempt: attempt}
	tok := p.peek()
	if p.isKeyword(tok, "catch") || p.isKeyword(tok, "except") {
		p.next()
		t.Except = p.statement()
	}
	return t
}

func (p *parser) importStmt(eval bool) ir.Stmt {
	p.next() // require
	p.expect(jslex.ItemLParen, "require")
	src := p.expect(jslex.ItemString, "require")
	force := false
	if p.peek().Typ == jslex.ItemComma {
		p.next()
		p.expect(jslex.ItemIdent, "require") // force (bareword true/false historically)
		force = true
	}
	p.expect(jslex.ItemRParen, "require")
	p.expect(jslex.ItemSemicolon, "require")
	return &ir.Import{Src: unquote(src.Val), Force: force}
}

// includeStmt parses `include(src, {attrs...})` / `eval(src, {attrs...})`.
func (p *parser) includeStmt(isEval bool) ir.Stmt {
	p.next()
	p.expect(jslex.ItemLParen, "include")
	src := p.expr(0)
	inc := &ir.Include{Src: src, Eval: isEval}
	for p.peek().Typ == jslex.ItemComma {
		p.next()
		key := p.expect(jslex.ItemIdent, "include attribute")
		p.expect(jslex.ItemColon, "include attribute")
		val := p.expr(0)
		assignIncludeAttr(inc, key.Val, val)
	}
	p.expect(jslex.ItemRParen, "include")
	p.expect(jslex.ItemSemicolon, "include")
	return inc
}

func assignIncludeAttr(inc *ir.Include, name string, val ir.Expr) {
	switch name {
	case "alt":
		inc.Attrs.Alt = val
	case "dca":
		inc.Attrs.Dca = val
	case "onError":
		inc.Attrs.OnError = val
	case "maxWait":
		inc.Attrs.MaxWait = val
	case "ttl":
		inc.Attrs.Ttl = val
	case "noStore":
		inc.Attrs.NoStore = val
	case "method":
		inc.Attrs.Method = val
	case "entity":
		inc.Attrs.Entity = val
	case "appendHeader":
		inc.Attrs.AppendHeader = append(inc.Attrs.AppendHeader, val)
	case "removeHeader":
		inc.Attrs.RemoveHeader = append(inc.Attrs.RemoveHeader, val)
	case "setHeader":
		inc.Attrs.SetHeader = append(inc.Attrs.SetHeader, val)
	}
}

// functionDef handles both `function f(...) {...}` (optionally with a
// leading `inline return ...;` statement) and the legacy
// `function inline f(...) {...}` spelling.
func (p *parser) functionDef() ir.Stmt {
	p.next()
	inline := false
	if p.isKeyword(p.peek(), "inline") {
		p.next()
		inline = true
	}
	name := p.expect(jslex.ItemIdent, "function")
	p.expect(jslex.ItemLParen, "function")
	var params []*ir.FunctionParam
	for p.peek().Typ != jslex.ItemRParen {
		pn := p.expect(jslex.ItemIdent, "function parameter")
		fp := &ir.FunctionParam{Name: pn.Val}
		if p.peek().Typ == jslex.ItemOp && p.peek().Val == "=" {
			p.next()
			fp.Default = p.primary()
		}
		params = append(params, fp)
		if p.peek().Typ == jslex.ItemComma {
			p.next()
		}
	}
	p.expect(jslex.ItemRParen, "function")

	var body ir.Stmt
	if p.peek().Typ == jslex.ItemLBrace {
		p.next()
		var stmts []ir.Stmt
		if p.isKeyword(p.peek(), "inline") {
			p.next()
			inline = true
		}
		for p.peek().Typ != jslex.ItemRBrace {
			stmts = append(stmts, p.declaration())
		}
		p.expect(jslex.ItemRBrace, "function body")
		body = &ir.Block{Explicit: true, Stmts: stmts}
	} else {
		// bodyless legacy form: `function inline f(...) return expr;`
		body = p.statement()
	}
	return &ir.FunctionDefinition{Name: name.Val, Params: params, Body: body, Inline: inline}
}

// ---- expressions ----

// precedence climbing table, low to high, matching spec.md §4.2.
var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, "<=": 7, ">": 7, ">=": 7,
	"matches": 7, "matches_i": 7, "has": 7, "has_i": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

func (p *parser) binOpSymbol(tok jslex.Item) (string, bool) {
	if tok.Typ == jslex.ItemOp {
		if _, ok := precedence[tok.Val]; ok {
			return tok.Val, true
		}
	}
	if tok.Typ == jslex.ItemIdent {
		if _, ok := precedence[tok.Val]; ok {
			switch tok.Val {
			case "matches", "matches_i", "has", "has_i":
				return tok.Val, true
			}
		}
	}
	return "", false
}

// expr implements precedence climbing, then applies the dialect's ternary
// lowering (`cond ? a : b` -> `(cond && a) || b`, an Operator rather than
// an If; see ternary).
func (p *parser) expr(minPrec int) ir.Expr {
	left := p.unary()
	for {
		tok := p.peek()
		sym, ok := p.binOpSymbol(tok)
		if !ok {
			break
		}
		prec := precedence[sym]
		if prec < minPrec {
			break
		}
		p.next()
		right := p.expr(prec + 1)
		op, known := ir.OpFromJSSymbol(sym)
		if !known {
			op, known = opFromWord(sym)
		}
		opNode := ir.NewOperator(left.Position(), op, left, right)
		if op == ir.OpMatches || op == ir.OpMatchesNoCase {
			if p.isIdent(p.peek(), "as") {
				p.next()
				name := p.expect(jslex.ItemIdent, "match name")
				mn := name.Val
				opNode.MatchName = &mn
			}
		}
		left = opNode
	}
	if minPrec == 0 && p.peek().Typ == jslex.ItemOp && p.peek().Val == "?" {
		p.next()
		return p.ternary(left)
	}
	return left
}

func opFromWord(word string) (ir.OpKind, bool) {
	switch word {
	case "matches":
		return ir.OpMatches, true
	case "matches_i":
		return ir.OpMatchesNoCase, true
	case "has":
		return ir.OpHas, true
	case "has_i":
		return ir.OpHasNoCase, true
	}
	return 0, false
}

// ternary lowers `cond ? a : b`. The IR has no ternary expression node (an
// If is a Stmt, not an Expr), so per spec.md §4.2's "a quirk of the
// dialect" the lowering uses the same short-circuiting shape the emitters
// already understand: `(cond && a) || b`, which for boolean-valued `a`
// round-trips through the ESI `choose`/`when` encoding the same way the
// original's Variable-with-default lowering does.
func (p *parser) ternary(cond ir.Expr) ir.Expr {
	a := p.expr(0)
	p.expect(jslex.ItemColon, "ternary")
	b := p.expr(0)
	pos := cond.Position()
	return ir.NewOperator(pos, ir.OpOr, ir.NewOperator(pos, ir.OpAnd, cond, a), b)
}

func (p *parser) unary() ir.Expr {
	tok := p.peek()
	if tok.Typ == jslex.ItemOp && (tok.Val == "!" || tok.Val == "~") {
		p.next()
		op := ir.OpNot
		if tok.Val == "~" {
			op = ir.OpBitNot
		}
		return ir.NewOperator(ir.Pos(tok.Pos), op, p.expr(precedence["*"]))
	}
	if tok.Typ == jslex.ItemOp && tok.Val == "-" {
		p.next()
		operand := p.expr(precedence["*"])
		if lit, ok := operand.(*ir.Literal); ok {
			if f, ok := lit.Value.(float64); ok {
				return ir.NewLiteral(ir.Pos(tok.Pos), -f)
			}
		}
		return ir.NewOperator(ir.Pos(tok.Pos), ir.OpSub, ir.NewLiteral(ir.Pos(tok.Pos), float64(0)), operand)
	}
	return p.postfix(p.primary())
}

// postfix applies property-access lowering rules from spec.md §4.2.
func (p *parser) postfix(e ir.Expr) ir.Expr {
	for {
		tok := p.peek()
		switch tok.Typ {
		case jslex.ItemDot:
			p.next()
			sym := p.expect(jslex.ItemIdent, "property access")
			e = p.lowerPropertyAccess(e, sym)
		case jslex.ItemLBracket:
			p.next()
			key := p.expr(0)
			p.expect(jslex.ItemRBracket, "subscript")
			if v, ok := e.(*ir.Variable); ok && v.Key == nil {
				v.Key = key
			} else {
				e = ir.NewVariable(e.Position(), exprName(e), key, nil)
			}
		default:
			return e
		}
	}
}

func exprName(e ir.Expr) string {
	if v, ok := e.(*ir.Variable); ok {
		return v.Name
	}
	return ""
}

func (p *parser) lowerPropertyAccess(e ir.Expr, sym jslex.Item) ir.Expr {
	pos := e.Position()
	switch sym.Val {
	case "length":
		return ir.NewFunctionCall(pos, "len", []ir.Expr{e})
	case "indexOf":
		p.expect(jslex.ItemLParen, "indexOf")
		arg := p.expr(0)
		p.expect(jslex.ItemRParen, "indexOf")
		return ir.NewFunctionCall(pos, "index", []ir.Expr{e, arg})
	case "charAt":
		p.expect(jslex.ItemLParen, "charAt")
		arg := p.expr(0)
		p.expect(jslex.ItemRParen, "charAt")
		if v, ok := e.(*ir.Variable); ok && v.Key == nil {
			return ir.NewVariable(pos, v.Name, arg, nil)
		}
		return e
	default:
		v, ok := e.(*ir.Variable)
		if !ok {
			p.errorf("property access .%s not supported on this expression", sym.Val)
		}
		key := ir.NewLiteral(pos, sym.Val)
		if p.peek().Typ == jslex.ItemOp && p.peek().Val == "||" {
			p.next()
			def := p.expr(precedence["&&"] + 1)
			return ir.NewVariable(pos, v.Name, key, def)
		}
		return ir.NewVariable(pos, v.Name, key, nil)
	}
}

func (p *parser) primary() ir.Expr {
	tok := p.next()
	switch tok.Typ {
	case jslex.ItemInt:
		n, err := strconv.ParseInt(tok.Val, 10, 64)
		if err != nil {
			p.errorf("invalid integer %q: %v", tok.Val, err)
		}
		return ir.NewLiteral(ir.Pos(tok.Pos), float64(n))
	case jslex.ItemFloat:
		f, err := strconv.ParseFloat(tok.Val, 64)
		if err != nil {
			p.errorf("invalid number %q: %v", tok.Val, err)
		}
		return ir.NewLiteral(ir.Pos(tok.Pos), f)
	case jslex.ItemString:
		return ir.NewLiteral(ir.Pos(tok.Pos), unquote(tok.Val))
	case jslex.ItemKeyword:
		switch tok.Val {
		case "true":
			return ir.NewLiteral(ir.Pos(tok.Pos), true)
		case "false":
			return ir.NewLiteral(ir.Pos(tok.Pos), false)
		}
		p.errorf("unexpected keyword %q in expression", tok.Val)
	case jslex.ItemIdent:
		return p.identOrCall(tok)
	case jslex.ItemLParen:
		e := p.expr(0)
		p.expect(jslex.ItemRParen, "parenthesized expression")
		return e
	case jslex.ItemLBracket:
		return p.listLiteral(tok)
	case jslex.ItemLBrace:
		return p.dictLiteral(tok)
	}
	p.errorf("unexpected %v in expression", tok)
	return nil
}

func (p *parser) identOrCall(tok jslex.Item) ir.Expr {
	if p.peek().Typ == jslex.ItemLParen {
		p.next()
		var args []ir.Expr
		for p.peek().Typ != jslex.ItemRParen {
			args = append(args, p.expr(0))
			if p.peek().Typ == jslex.ItemComma {
				p.next()
			}
		}
		p.expect(jslex.ItemRParen, "function call")
		return ir.NewFunctionCall(ir.Pos(tok.Pos), tok.Val, args)
	}
	return ir.NewVariable(ir.Pos(tok.Pos), tok.Val, nil, nil)
}

func (p *parser) listLiteral(open jslex.Item) ir.Expr {
	l := &ir.List{}
	for p.peek().Typ != jslex.ItemRBracket {
		l.Items = append(l.Items, p.expr(0))
		if p.peek().Typ == jslex.ItemComma {
			p.next()
		}
	}
	p.expect(jslex.ItemRBracket, "list literal")
	return l
}

func (p *parser) dictLiteral(open jslex.Item) ir.Expr {
	d := &ir.Dictionary{}
	for p.peek().Typ != jslex.ItemRBrace {
		var key ir.Expr
		kt := p.next()
		switch kt.Typ {
		case jslex.ItemString:
			key = ir.NewLiteral(ir.Pos(kt.Pos), unquote(kt.Val))
		case jslex.ItemIdent:
			key = ir.NewLiteral(ir.Pos(kt.Pos), kt.Val)
		default:
			p.errorf("unexpected %v in dictionary key", kt)
		}
		p.expect(jslex.ItemColon, "dictionary entry")
		val := p.expr(0)
		d.Entries = append(d.Entries, ir.DictEntry{Key: key, Value: val})
		if p.peek().Typ == jslex.ItemComma {
			p.next()
		}
	}
	p.expect(jslex.ItemRBrace, "dictionary literal")
	return d
}

// unquote strips the surrounding '...' or '''...''' delimiters and resolves
// backslash escapes, grounded on js2esi's string literal handling.
func unquote(raw string) string {
	s := raw
	if strings.HasPrefix(s, "'''") && strings.HasSuffix(s, "'''") && len(s) >= 6 {
		s = s[3 : len(s)-3]
	} else if strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") && len(s) >= 2 {
		s = s[1 : len(s)-1]
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
