// Package jsemit renders the shared IR back to JS-dialect source text.
// Grounded on js2esi.node.*.__js__ methods (one rendering method per node
// kind in the original) collapsed here into a single exhaustive
// type-switch per the design notes' "prefer exhaustive pattern matching
// over node variants" guidance, and on ir.Context for the buffered-
// lookahead / indent plumbing robfig/soy's own emitters thread through a
// context value.
package jsemit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/akamai/js2esi/ir"
)

// Emit writes tree as JS-dialect source to ctxt's sink.
func Emit(ctxt *ir.Context, tree ir.Stmt) {
	emitStmt(ctxt, tree)
}

// String renders tree to a standalone string, for tests.
func String(tree ir.Stmt) string {
	var b strings.Builder
	Emit(ir.NewContext(&b), tree)
	return b.String()
}

// ExprString renders a standalone expression, with no enclosing
// statement. Used by optimize's literal-folding pass to hand a folded
// expression's JS-text form to an embedded JS VM for evaluation.
func ExprString(e ir.Expr) string {
	var b strings.Builder
	emitExpr(ir.NewContext(&b), e)
	return b.String()
}

func emitStmt(ctxt *ir.Context, s ir.Stmt) {
	if s == nil {
		return
	}
	ctxt.PushNode(s)
	defer ctxt.PopNode()
	switch n := s.(type) {
	case *ir.Block:
		emitBlock(ctxt, n.Stmts, n.Explicit)
	case *ir.BlockFragment:
		emitStmtGroup(ctxt, n.Stmts)
	case *ir.Assign:
		emitAssign(ctxt, n)
	case *ir.If:
		emitIf(ctxt, n)
	case *ir.ForEach:
		emitForEach(ctxt, n)
	case *ir.Break:
		ctxt.Writef("%sbreak;\n", ctxt.Indent)
	case *ir.Try:
		emitTry(ctxt, n)
	case *ir.FunctionDefinition:
		emitFunctionDefinition(ctxt, n)
	case *ir.FunctionReturn:
		emitFunctionReturn(ctxt, n)
	case *ir.Include:
		emitInclude(ctxt, n)
	case *ir.Import:
		emitImport(ctxt, n)
	case *ir.Output:
		emitOutput(ctxt, n)
	case *ir.Comment:
		ctxt.Writef("%s// %s\n", ctxt.Indent, n.Text)
	case *ir.Debug:
		ctxt.Writef("%sdebug(", ctxt.Indent)
		emitExpr(ctxt, n.Message)
		ctxt.Write(");\n")
	case *ir.DebugBlock:
		if ctxt.Debug {
			emitStmt(ctxt, n.Body)
		}
	case *ir.IfDebug:
		if ctxt.Debug {
			emitStmt(ctxt, n.Body)
		}
	case *ir.Log:
		ctxt.Writef("%slog(", ctxt.Indent)
		emitExpr(ctxt, n.Message)
		ctxt.Write(");\n")
	case *ir.FunctionParam:
		ctxt.Write(n.Name)
		if n.Default != nil {
			ctxt.Write(" = ")
			emitExpr(ctxt, n.Default)
		}
	default:
		panic(fmt.Sprintf("jsemit: unhandled statement kind %T", s))
	}
}

// emitBlock emits stmts, wrapped in braces unless it's a single statement
// and neither explicit nor a lone Comment (a lone Comment still gets
// braces so it doesn't visually glue to the next statement after
// round-trip, matching the block-grouping note).
func emitBlock(ctxt *ir.Context, stmts []ir.Stmt, explicit bool) {
	_, lastIsComment := lastOf(stmts).(*ir.Comment)
	if len(stmts) == 1 && !explicit && !lastIsComment {
		emitStmtGroup(ctxt, stmts)
		return
	}
	ctxt.Writef("%s{\n", ctxt.Indent)
	ctxt.Indent++
	emitStmtGroup(ctxt, stmts)
	ctxt.Indent--
	ctxt.Writef("%s}\n", ctxt.Indent)
}

func lastOf(stmts []ir.Stmt) ir.Stmt {
	if len(stmts) == 0 {
		return nil
	}
	return stmts[len(stmts)-1]
}

// emitStmtGroup emits a statement list, grouping consecutive statements
// of the same concrete kind: Assign groups get their '=' column-aligned
// to the longest lvalue width, Comment groups get a blank "//" separator
// between each to prevent round-trip glueing.
func emitStmtGroup(ctxt *ir.Context, stmts []ir.Stmt) {
	i := 0
	for i < len(stmts) {
		j := i + 1
		for j < len(stmts) && sameKind(stmts[i], stmts[j]) {
			j++
		}
		run := stmts[i:j]
		switch run[0].(type) {
		case *ir.Assign:
			emitAssignGroup(ctxt, run)
		case *ir.Comment:
			for k, c := range run {
				emitStmt(ctxt, c)
				if k != len(run)-1 {
					ctxt.Writef("%s//\n", ctxt.Indent)
				}
			}
		default:
			for _, s := range run {
				emitStmt(ctxt, s)
			}
		}
		i = j
	}
}

func sameKind(a, b ir.Stmt) bool {
	return fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
}

func emitAssignGroup(ctxt *ir.Context, run []ir.Stmt) {
	width := 0
	for _, s := range run {
		a := s.(*ir.Assign)
		if w := lvalueWidth(a); w > width {
			width = w
		}
	}
	prev := ctxt.Assignwidth
	ctxt.Assignwidth = width
	for _, s := range run {
		emitStmt(ctxt, s)
	}
	ctxt.Assignwidth = prev
}

func lvalueWidth(a *ir.Assign) int {
	w := stringWidth(a.Name)
	if a.Key != nil {
		w += 2 + stringWidth(exprAsCompactString(a.Key)) // '[' key ']', as emitAssign renders it
	}
	return w
}

func emitAssign(ctxt *ir.Context, a *ir.Assign) {
	lvalue := a.Name
	if a.Key != nil {
		lvalue = a.Name + "[" + exprAsCompactString(a.Key) + "]"
	}
	opSym := "="
	value := a.Value
	if op, ok := value.(*ir.Operator); ok && len(op.Args) == 2 && compoundFoldable(op.Op) {
		if v, ok := op.Args[0].(*ir.Variable); ok {
			lv := &ir.Variable{Name: a.Name, Key: a.Key}
			if v.SameRef(lv) {
				opSym = op.Op.JSSymbol() + "="
				value = op.Args[1]
			}
		}
	}
	pad := ctxt.Assignwidth - stringWidth(lvalue)
	ctxt.Writef("%s%s%s %s= ", ctxt.Indent, lvalue, strings.Repeat(" ", max(pad, 0)), opSym[:len(opSym)-1])
	emitExpr(ctxt, value)
	ctxt.Write(";\n")
}

func compoundFoldable(op ir.OpKind) bool {
	switch op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod:
		return true
	default:
		return false
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// emitIf wraps an If whose match branch is itself a no-nomatch If in an
// explicit Block, so the nested If's braces survive round-trip and
// dangling-else can't creep in.
func emitIf(ctxt *ir.Context, n *ir.If) {
	ctxt.Writef("%sif (", ctxt.Indent)
	emitExpr(ctxt, n.Test)
	ctxt.Write(") ")
	matchStmt := n.Match
	if inner, ok := matchStmt.(*ir.If); ok && inner.NoMatch == nil {
		matchStmt = &ir.Block{Stmts: []ir.Stmt{inner}, Explicit: true}
	}
	savedIndent := ctxt.Indent
	ctxt.Indent = 0
	withInline(ctxt, func() { emitBlock(ctxt, blockStmts(matchStmt), isExplicit(matchStmt)) })
	ctxt.Indent = savedIndent
	if n.NoMatch != nil {
		ctxt.Writef("%selse ", ctxt.Indent)
		savedIndent = ctxt.Indent
		ctxt.Indent = 0
		withInline(ctxt, func() { emitBlock(ctxt, blockStmts(n.NoMatch), isExplicit(n.NoMatch)) })
		ctxt.Indent = savedIndent
	}
}

// withInline runs fn with output captured so the emitted block's opening
// brace lands on the same line as "if (...) "/"else " rather than on a
// fresh indented line.
func withInline(ctxt *ir.Context, fn func()) {
	ctxt.PushBuffered()
	fn()
	text := ctxt.PopBuffered()
	ctxt.Write(strings.TrimLeft(text, " \t"))
}

func blockStmts(s ir.Stmt) []ir.Stmt {
	if b, ok := s.(*ir.Block); ok {
		return b.Stmts
	}
	return []ir.Stmt{s}
}

func isExplicit(s ir.Stmt) bool {
	b, ok := s.(*ir.Block)
	return ok && b.Explicit
}

func emitForEach(ctxt *ir.Context, n *ir.ForEach) {
	ctxt.Writef("%sfor (let %s of ", ctxt.Indent, n.Item)
	emitExpr(ctxt, n.Collection)
	ctxt.Write(") ")
	savedIndent := ctxt.Indent
	ctxt.Indent = 0
	withInline(ctxt, func() { emitBlock(ctxt, blockStmts(n.Body), isExplicit(n.Body)) })
	ctxt.Indent = savedIndent
}

func emitTry(ctxt *ir.Context, n *ir.Try) {
	ctxt.Writef("%stry {\n", ctxt.Indent)
	ctxt.Indent++
	emitStmtGroup(ctxt, blockStmts(n.Attempt))
	ctxt.Indent--
	ctxt.Writef("%s} catch {\n", ctxt.Indent)
	ctxt.Indent++
	emitStmtGroup(ctxt, blockStmts(n.Except))
	ctxt.Indent--
	ctxt.Writef("%s}\n", ctxt.Indent)
}

func emitFunctionDefinition(ctxt *ir.Context, n *ir.FunctionDefinition) {
	ctxt.Writef("%sfunction %s(", ctxt.Indent, n.Name)
	for i, p := range n.Params {
		if i != 0 {
			ctxt.Write(", ")
		}
		ctxt.Write(p.Name)
		if p.Default != nil {
			ctxt.Write(" = ")
			emitExpr(ctxt, p.Default)
		}
	}
	ctxt.Write(") {\n")
	ctxt.Indent++
	if n.Inline {
		ctxt.Writef("%sinline ", ctxt.Indent)
		emitInlineReturn(ctxt, n.Body)
	} else {
		emitStmtGroup(ctxt, blockStmts(n.Body))
	}
	ctxt.Indent--
	ctxt.Writef("%s}\n", ctxt.Indent)
}

// emitInlineReturn emits the body's return statement without the leading
// indent (the caller already wrote "inline " at the right column).
func emitInlineReturn(ctxt *ir.Context, body ir.Stmt) {
	stmts := blockStmts(body)
	if len(stmts) != 1 {
		emitStmtGroup(ctxt, stmts)
		return
	}
	ret, ok := stmts[0].(*ir.FunctionReturn)
	if !ok {
		emitStmt(ctxt, stmts[0])
		return
	}
	ctxt.Write("return ")
	if ret.Value != nil {
		emitExpr(ctxt, ret.Value)
	}
	ctxt.Write(";\n")
}

func emitFunctionReturn(ctxt *ir.Context, n *ir.FunctionReturn) {
	if n.Value == nil {
		ctxt.Writef("%sreturn;\n", ctxt.Indent)
		return
	}
	ctxt.Writef("%sreturn ", ctxt.Indent)
	emitExpr(ctxt, n.Value)
	ctxt.Write(";\n")
}

func emitInclude(ctxt *ir.Context, n *ir.Include) {
	kw := "include"
	if n.Eval {
		kw = "eval"
	}
	ctxt.Writef("%s%s(", ctxt.Indent, kw)
	emitExpr(ctxt, n.Src)
	writeNamedArg(ctxt, "alt", n.Attrs.Alt)
	writeNamedArg(ctxt, "dca", n.Attrs.Dca)
	writeNamedArg(ctxt, "onError", n.Attrs.OnError)
	writeNamedArg(ctxt, "maxWait", n.Attrs.MaxWait)
	writeNamedArg(ctxt, "ttl", n.Attrs.Ttl)
	writeNamedArg(ctxt, "noStore", n.Attrs.NoStore)
	writeNamedArg(ctxt, "method", n.Attrs.Method)
	writeNamedArg(ctxt, "entity", n.Attrs.Entity)
	for _, h := range n.Attrs.AppendHeader {
		writeNamedArg(ctxt, "appendHeader", h)
	}
	for _, h := range n.Attrs.RemoveHeader {
		writeNamedArg(ctxt, "removeHeader", h)
	}
	for _, h := range n.Attrs.SetHeader {
		writeNamedArg(ctxt, "setHeader", h)
	}
	ctxt.Write(");\n")
}

func writeNamedArg(ctxt *ir.Context, name string, e ir.Expr) {
	if e == nil {
		return
	}
	ctxt.Writef(", %s: ", name)
	emitExpr(ctxt, e)
}

func emitImport(ctxt *ir.Context, n *ir.Import) {
	ctxt.Writef("%srequire(%s", ctxt.Indent, quoteString(n.Src))
	if n.Force {
		ctxt.Write(", force: true")
	}
	ctxt.Write(");\n")
}

func emitOutput(ctxt *ir.Context, n *ir.Output) {
	fn := "print"
	switch {
	case n.Vars:
		fn = "printv"
	case n.Raw:
		fn = "printraw"
	}
	ctxt.Writef("%s%s(", ctxt.Indent, fn)
	for i, e := range n.Stmts {
		if i != 0 {
			ctxt.Write(", ")
		}
		emitExpr(ctxt, e)
	}
	ctxt.Write(");\n")
}

// --- expressions ---

func emitExpr(ctxt *ir.Context, e ir.Expr) {
	switch n := e.(type) {
	case *ir.Literal:
		emitLiteral(ctxt, n)
	case *ir.Variable:
		emitVariable(ctxt, n)
	case *ir.FunctionCall:
		emitFunctionCall(ctxt, n)
	case *ir.List:
		ctxt.Write("[")
		for i, it := range n.Items {
			if i != 0 {
				ctxt.Write(", ")
			}
			emitExpr(ctxt, it)
		}
		ctxt.Write("]")
	case *ir.Dictionary:
		ctxt.Write("{")
		for i, de := range n.Entries {
			if i != 0 {
				ctxt.Write(", ")
			}
			emitExpr(ctxt, de.Key)
			ctxt.Write(": ")
			emitExpr(ctxt, de.Value)
		}
		ctxt.Write("}")
	case *ir.Operator:
		emitOperator(ctxt, n)
	default:
		panic(fmt.Sprintf("jsemit: unhandled expression kind %T", e))
	}
}

func emitLiteral(ctxt *ir.Context, l *ir.Literal) {
	switch v := l.Value.(type) {
	case bool:
		ctxt.Write(strconv.FormatBool(v))
	case float64:
		ctxt.Write(formatNumber(v))
	case string:
		ctxt.Write(quoteString(v))
	default:
		ctxt.Writef("%v", v)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// quoteString renders s as a single-quoted '...' literal, backslash-
// escaping quotes, backslashes and control characters; the '''...''' form
// is never produced.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString("\\'")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case '\r':
			b.WriteString("\\r")
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, "\\x%02x", r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func exprAsCompactString(e ir.Expr) string {
	var b strings.Builder
	emitExpr(ir.NewContext(&b), e)
	return b.String()
}

func emitVariable(ctxt *ir.Context, v *ir.Variable) {
	ctxt.Write(v.Name)
	if v.Key != nil {
		ctxt.Write("[")
		emitExpr(ctxt, v.Key)
		ctxt.Write("]")
	}
	if v.Default != nil {
		ctxt.Write(" || ")
		emitExpr(ctxt, v.Default)
	}
}

func emitFunctionCall(ctxt *ir.Context, f *ir.FunctionCall) {
	ctxt.Write(f.Name)
	ctxt.Write("(")
	for i, a := range f.Args {
		if i != 0 {
			ctxt.Write(", ")
		}
		emitExpr(ctxt, a)
	}
	ctxt.Write(")")
}

// emitOperator parenthesizes any Operator argument (defensive but always
// correct, per the design notes).
func emitOperator(ctxt *ir.Context, o *ir.Operator) {
	if o.Op == ir.OpNot || o.Op == ir.OpBitNot {
		ctxt.Write(o.Op.JSSymbol())
		emitOperand(ctxt, o.Args[0])
		return
	}
	sep := o.Op.JSSymbol()
	for i, a := range o.Args {
		if i != 0 {
			ctxt.Write(sep)
		}
		emitOperand(ctxt, a)
	}
	if o.IsMatchKind() && o.MatchName != nil {
		ctxt.Writef(" as %s", *o.MatchName)
	}
}

func emitOperand(ctxt *ir.Context, e ir.Expr) {
	if _, ok := e.(*ir.Operator); ok {
		ctxt.Write("(")
		emitExpr(ctxt, e)
		ctxt.Write(")")
		return
	}
	emitExpr(ctxt, e)
}
