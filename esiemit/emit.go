// Package esiemit renders the shared IR to ESI XML, the mirror image of
// jsemit. Grounded on js2esi.node.*.__esi__ methods collapsed into one
// exhaustive type-switch, and on ir.Context for the Testlevel/Matchname
// single-slot bookkeeping and buffered lookahead the original's Context
// class provides.
package esiemit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/akamai/js2esi/errortypes"
	"github.com/akamai/js2esi/ir"
)

// emitError wraps a structural error (MatchNameConflict,
// BadMatchNameContext) so it can unwind through the plain-signature
// emit* functions via panic/recover, the same shape jsparse/esiparse use
// for their own fatal errors.
type emitError struct{ err error }

// Emit writes tree as ESI XML to ctxt's sink, returning the first
// structural error raised along the way, if any.
func Emit(ctxt *ir.Context, tree ir.Stmt) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ee, ok := r.(*emitError); ok {
				err = ee.err
				return
			}
			panic(r)
		}
	}()
	emitStmt(ctxt, tree)
	return nil
}

// String renders tree to a standalone string.
func String(tree ir.Stmt, debug bool) (string, error) {
	var b strings.Builder
	ctxt := ir.NewContext(&b)
	ctxt.Debug = debug
	if err := Emit(ctxt, tree); err != nil {
		return "", err
	}
	return b.String(), nil
}

func emitStmt(ctxt *ir.Context, s ir.Stmt) {
	if s == nil {
		return
	}
	ctxt.PushNode(s)
	defer ctxt.PopNode()
	switch n := s.(type) {
	case *ir.Block:
		for _, st := range n.Stmts {
			emitStmt(ctxt, st)
		}
	case *ir.BlockFragment:
		for _, st := range n.Stmts {
			emitStmt(ctxt, st)
		}
	case *ir.Assign:
		emitAssign(ctxt, n)
	case *ir.If:
		emitChoose(ctxt, n)
	case *ir.ForEach:
		emitForEach(ctxt, n)
	case *ir.Break:
		ctxt.Writef("%s<esi:break/>\n", ctxt.Indent)
	case *ir.Try:
		emitTry(ctxt, n)
	case *ir.FunctionDefinition:
		emitFunctionDefinition(ctxt, n)
	case *ir.FunctionReturn:
		emitFunctionReturn(ctxt, n)
	case *ir.Include:
		emitInclude(ctxt, n)
	case *ir.Output:
		emitOutput(ctxt, n)
	case *ir.Comment:
		ctxt.Writef("%s<esi:comment text=%s/>\n", ctxt.Indent, quoteAttr(n.Text))
	case *ir.Debug:
		if ctxt.Debug {
			ctxt.Writef("%s<esi:comment text=%s/>\n", ctxt.Indent, quoteAttr("DEBUG: "+exprAsText(n.Message)))
		}
	case *ir.DebugBlock:
		if ctxt.Debug {
			emitStmt(ctxt, n.Body)
		}
	case *ir.IfDebug:
		if ctxt.Debug {
			emitStmt(ctxt, n.Body)
		}
	case *ir.Log:
		ctxt.Writef("%s<esi:comment text=%s/>\n", ctxt.Indent, quoteAttr("LOG: "+exprAsText(n.Message)))
	case *ir.Import:
		// Imports are fully inlined by internal/importresolve before an
		// ESI tree reaches this emitter; nothing to render at this level.
		emitStmt(ctxt, n.Inline)
	default:
		panic(fmt.Sprintf("esiemit: unhandled statement kind %T", s))
	}
}

func exprAsText(e ir.Expr) string {
	var b strings.Builder
	ctxt := ir.NewContext(&b)
	emitExprMixed(ctxt, e)
	return b.String()
}

// --- assign ---

// emitAssign picks the attribute form unless the serialized value would
// need a literal quote or newline, in which case it falls back to the
// body form, per the dual syntax's own production rule.
func emitAssign(ctxt *ir.Context, a *ir.Assign) {
	ctxt.PushBuffered()
	emitExprForAttr(ctxt, a.Value)
	serialized := ctxt.PopBuffered()

	name := a.Name
	if a.Key != nil {
		name = a.Name // ESI assign has no subscript form; key folded into value at parse time for js source, kept here defensively
	}
	if !strings.ContainsAny(serialized, "\"\n") {
		ctxt.Writef("%s<esi:assign name=%s value=%s/>\n", ctxt.Indent, quoteAttr(name), quoteAttr(serialized))
		return
	}
	ctxt.Writef("%s<esi:assign name=%s>", ctxt.Indent, quoteAttr(name))
	emitExprRaw(ctxt, a.Value)
	ctxt.Write("</esi:assign>\n")
}

// --- choose / when / otherwise ---

// emitChoose folds a chain of If nodes (NoMatch holding the next If, or a
// final non-If else-branch as <esi:otherwise>) back into one <esi:choose>.
func emitChoose(ctxt *ir.Context, n *ir.If) {
	type when struct {
		test ir.Expr
		body ir.Stmt
	}
	var whens []when
	var otherwise ir.Stmt
	cur := n
	for {
		whens = append(whens, when{test: cur.Test, body: cur.Match})
		if next, ok := cur.NoMatch.(*ir.If); ok {
			cur = next
			continue
		}
		otherwise = cur.NoMatch
		break
	}

	ctxt.Writef("%s<esi:choose>\n", ctxt.Indent)
	ctxt.Indent++
	ctxt.Testlevel++
	for _, w := range whens {
		testStr := quoteAttrExpr(ctxt, w.test)
		ctxt.Writef("%s<esi:when test=%s", ctxt.Indent, testStr)
		if ctxt.Matchname != nil {
			ctxt.Writef(" matchname=%s", quoteAttr(*ctxt.Matchname))
			ctxt.Matchname = nil
		}
		ctxt.Write(">\n")
		ctxt.Indent++
		tl := ctxt.Testlevel
		ctxt.Testlevel = 0
		emitStmt(ctxt, w.body)
		ctxt.Testlevel = tl
		ctxt.Indent--
		ctxt.Writef("%s</esi:when>\n", ctxt.Indent)
	}
	if otherwise != nil {
		ctxt.Writef("%s<esi:otherwise>\n", ctxt.Indent)
		ctxt.Indent++
		tl := ctxt.Testlevel
		ctxt.Testlevel = 0
		emitStmt(ctxt, otherwise)
		ctxt.Testlevel = tl
		ctxt.Indent--
		ctxt.Writef("%s</esi:otherwise>\n", ctxt.Indent)
	}
	ctxt.Testlevel--
	ctxt.Indent--
	ctxt.Writef("%s</esi:choose>\n", ctxt.Indent)
}

// checkMatchName enforces the single-slot matchname reservation, mirrored
// from Matches.__esi__: a matchname already pending from an earlier
// operator in the same test is a conflict regardless of this operator's
// own name, and a named match outside a test-level context never has
// anywhere to surface to.
func checkMatchName(ctxt *ir.Context, o *ir.Operator) {
	if !o.IsMatchKind() {
		return
	}
	if ctxt.Matchname != nil {
		name := "(default)"
		if o.MatchName != nil {
			name = *o.MatchName
		}
		panic(&emitError{errortypes.NewMatchNameConflict(ctxt.Filename, 0, 0, name)})
	}
	if o.MatchName == nil {
		return
	}
	if ctxt.Testlevel <= 0 {
		panic(&emitError{errortypes.NewBadMatchNameContext(ctxt.Filename, 0, 0)})
	}
	ctxt.Matchname = o.MatchName
}

// quoteAttrExpr renders e through ctxt's buffered sink rather than a
// fresh Context, so Testlevel/Matchname carry through to any nested
// Matches operator (see checkMatchName).
func quoteAttrExpr(ctxt *ir.Context, e ir.Expr) string {
	ctxt.PushBuffered()
	emitExprRaw(ctxt, e)
	return quoteAttr(ctxt.PopBuffered())
}

// --- try / foreach / function ---

func emitTry(ctxt *ir.Context, n *ir.Try) {
	ctxt.Writef("%s<esi:try>\n", ctxt.Indent)
	ctxt.Indent++
	ctxt.Writef("%s<esi:attempt>\n", ctxt.Indent)
	ctxt.Indent++
	emitStmt(ctxt, n.Attempt)
	ctxt.Indent--
	ctxt.Writef("%s</esi:attempt>\n", ctxt.Indent)
	ctxt.Writef("%s<esi:except>\n", ctxt.Indent)
	ctxt.Indent++
	emitStmt(ctxt, n.Except)
	ctxt.Indent--
	ctxt.Writef("%s</esi:except>\n", ctxt.Indent)
	ctxt.Indent--
	ctxt.Writef("%s</esi:try>\n", ctxt.Indent)
}

func emitForEach(ctxt *ir.Context, n *ir.ForEach) {
	ctxt.Writef("%s<esi:foreach collection=%s", ctxt.Indent, quoteAttrExpr(ctxt, n.Collection))
	if n.Item != "" && n.Item != "item" {
		ctxt.Writef(" item=%s", quoteAttr(n.Item))
	}
	ctxt.Write(">\n")
	ctxt.Indent++
	emitStmt(ctxt, n.Body)
	ctxt.Indent--
	ctxt.Writef("%s</esi:foreach>\n", ctxt.Indent)
}

func emitFunctionDefinition(ctxt *ir.Context, n *ir.FunctionDefinition) {
	if n.Inline {
		// Reaching here with Inline still set means the tree did not go
		// through optimize (which clears the flag below level 5 and drops
		// inline definitions at or above it); ESI has no inline-function
		// construct, so it's emitted as a regular named function,
		// matching the un-inline pass.
		n = &ir.FunctionDefinition{Name: n.Name, Params: n.Params, Body: n.Body}
	}
	ctxt.Writef("%s<esi:function name=%s>\n", ctxt.Indent, quoteAttr(n.Name))
	ctxt.Indent++
	for _, p := range n.Params {
		ctxt.Writef("%s<esi:assign name=%s value=%s/>\n", ctxt.Indent, quoteAttr(p.Name), quoteAttrExpr(ctxt, defaultOrArgKey(p)))
	}
	emitStmt(ctxt, n.Body)
	ctxt.Indent--
	ctxt.Writef("%s</esi:function>\n", ctxt.Indent)
}

// defaultOrArgKey renders a parameter's binding from ARGS with its
// default, the ESI-side equivalent of a JS default parameter.
func defaultOrArgKey(p *ir.FunctionParam) ir.Expr {
	return ir.NewVariable(p.Position(), "ARGS", ir.NewLiteral(p.Position(), p.Name), p.Default)
}

func emitFunctionReturn(ctxt *ir.Context, n *ir.FunctionReturn) {
	if n.Value == nil {
		ctxt.Writef("%s<esi:return/>\n", ctxt.Indent)
		return
	}
	ctxt.Writef("%s<esi:return value=%s/>\n", ctxt.Indent, quoteAttrExpr(ctxt, n.Value))
}

// --- include / eval ---

var includeAttrDenormalize = map[string]string{
	"alt": "alt", "dca": "dca", "onError": "onerror", "maxWait": "maxwait",
	"ttl": "ttl", "noStore": "no-store", "method": "method", "entity": "entity",
	"appendHeader": "appendheader", "removeHeader": "removeheader", "setHeader": "setheader",
}

func emitInclude(ctxt *ir.Context, n *ir.Include) {
	tag := "include"
	if n.Eval {
		tag = "eval"
	}
	ctxt.Writef("%s<esi:%s src=%s", ctxt.Indent, tag, quoteAttrMixed(n.Src))
	writeAttr(ctxt, "alt", n.Attrs.Alt)
	writeDcaAttr(ctxt, n.Attrs.Dca)
	writeAttr(ctxt, "onerror", n.Attrs.OnError)
	writeAttr(ctxt, "maxwait", n.Attrs.MaxWait)
	writeAttr(ctxt, "ttl", n.Attrs.Ttl)
	writeAttr(ctxt, "no-store", n.Attrs.NoStore)
	writeAttr(ctxt, "method", n.Attrs.Method)
	writeAttr(ctxt, "entity", n.Attrs.Entity)
	for _, h := range n.Attrs.AppendHeader {
		writeAttr(ctxt, "appendheader", h)
	}
	for _, h := range n.Attrs.RemoveHeader {
		writeAttr(ctxt, "removeheader", h)
	}
	for _, h := range n.Attrs.SetHeader {
		writeAttr(ctxt, "setheader", h)
	}
	ctxt.Write("/>\n")
}

func writeAttr(ctxt *ir.Context, name string, e ir.Expr) {
	if e == nil {
		return
	}
	ctxt.Writef(" %s=%s", name, quoteAttrMixed(e))
}

// writeDcaAttr applies the dca quirk: wrap in single quotes instead of
// double quotes if the serialized value itself contains a '>'.
func writeDcaAttr(ctxt *ir.Context, e ir.Expr) {
	if e == nil {
		return
	}
	var b strings.Builder
	emitExprMixed(ir.NewContext(&b), e)
	val := b.String()
	if strings.Contains(val, ">") {
		ctxt.Writef(" dca='%s'", val)
		return
	}
	ctxt.Writef(" dca=%s", quoteAttr(val))
}

// --- output ---

func emitOutput(ctxt *ir.Context, n *ir.Output) {
	if logged := maybeEmitDebugLog(ctxt, n); logged {
		return
	}
	switch {
	case n.Vars:
		ctxt.Writef("%s<esi:vars>", ctxt.Indent)
		for _, e := range n.Stmts {
			emitExprMixed(ctxt, e)
		}
		ctxt.Write("</esi:vars>\n")
	case n.Raw:
		for _, e := range n.Stmts {
			if lit, ok := e.(*ir.Literal); ok {
				if s, ok := lit.Value.(string); ok {
					ctxt.Write(s)
					continue
				}
			}
			emitExprMixed(ctxt, e)
		}
	default:
		for _, e := range n.Stmts {
			emitExprMixed(ctxt, e)
		}
	}
}

// maybeEmitDebugLog rewrites a bare add_header(...) call tagged
// debug="translate" into a <esi:comment> log line when the context is in
// debug mode, per the translate-time log convention.
func maybeEmitDebugLog(ctxt *ir.Context, n *ir.Output) bool {
	if !ctxt.Debug || len(n.Stmts) != 1 {
		return false
	}
	fc, ok := n.Stmts[0].(*ir.FunctionCall)
	if !ok || fc.Name != "add_header" || fc.Debug != "translate" {
		return false
	}
	ctxt.Writef("%s<esi:comment text=%s/>\n", ctxt.Indent, quoteAttr("LOG: "+exprAsText(fc)))
	return true
}

// --- expression rendering ---
//
// ESI has two distinct expression contexts: "raw" (inside test=/value=
// attributes and <esi:assign> body form, where the full operator grammar
// applies unescaped) and "mixed" (inside <esi:vars>/plain attribute text,
// where only $(...) / $name(...) / literal text is legal and literal text
// is escaped rather than quoted).

func emitExprForAttr(ctxt *ir.Context, e ir.Expr) {
	emitExprRaw(ctxt, e)
}

func emitExprRaw(ctxt *ir.Context, e ir.Expr) {
	switch n := e.(type) {
	case *ir.Literal:
		ctxt.Write(rawLiteral(n))
	case *ir.Variable:
		emitVarRef(ctxt, n)
	case *ir.FunctionCall:
		emitFuncCall(ctxt, n)
	case *ir.Operator:
		emitOperatorRaw(ctxt, n)
	default:
		panic(fmt.Sprintf("esiemit: unhandled raw expression kind %T", e))
	}
}

func rawLiteral(l *ir.Literal) string {
	switch v := l.Value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return "'" + strings.NewReplacer("\\", "\\\\", "'", "\\'").Replace(v) + "'"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func emitVarRef(ctxt *ir.Context, v *ir.Variable) {
	ctxt.Writef("$(%s", v.Name)
	if v.Key != nil {
		ctxt.Write("{")
		emitExprRaw(ctxt, v.Key)
		ctxt.Write("}")
	}
	if v.Default != nil {
		ctxt.Write("|")
		emitExprRaw(ctxt, v.Default)
	}
	ctxt.Write(")")
}

func emitFuncCall(ctxt *ir.Context, f *ir.FunctionCall) {
	ctxt.Writef("$%s(", f.Name)
	for i, a := range f.Args {
		if i != 0 {
			ctxt.Write(",")
		}
		emitExprRaw(ctxt, a)
	}
	ctxt.Write(")")
}

// emitOperatorRaw renders an operator in the full (non-isvars) grammar:
// operands are parenthesized defensively. A matches/matches_i operator's
// own matchname is consumed into ctxt.Matchname by checkMatchName and
// surfaces only at the enclosing <esi:when>, never re-emitted here.
func emitOperatorRaw(ctxt *ir.Context, o *ir.Operator) {
	checkMatchName(ctxt, o)
	if o.Op == ir.OpNot || o.Op == ir.OpBitNot {
		ctxt.Write(o.Op.ESISymbol())
		emitOperandRaw(ctxt, o.Args[0])
		return
	}
	for i, a := range o.Args {
		if i != 0 {
			ctxt.Write(o.Op.ESISymbol())
		}
		emitOperandRaw(ctxt, a)
	}
}

func emitOperandRaw(ctxt *ir.Context, e ir.Expr) {
	if _, ok := e.(*ir.Operator); ok {
		ctxt.Write("(")
		emitExprRaw(ctxt, e)
		ctxt.Write(")")
		return
	}
	emitExprRaw(ctxt, e)
}

// emitExprMixed renders an expression in mixed-content (isvars/attribute
// text) context: literal text is escaped rather than quoted, Plus has no
// surface symbol (juxtaposition is concatenation), and operand
// parenthesization is omitted since mixed context has no ambiguity beyond
// what $(...) already delimits.
func emitExprMixed(ctxt *ir.Context, e ir.Expr) {
	switch n := e.(type) {
	case *ir.Literal:
		ctxt.Write(mixedLiteral(n))
	case *ir.Variable:
		emitVarRef(ctxt, n)
	case *ir.FunctionCall:
		emitFuncCall(ctxt, n)
	case *ir.Operator:
		emitOperatorMixed(ctxt, n)
	default:
		panic(fmt.Sprintf("esiemit: unhandled mixed expression kind %T", e))
	}
}

func mixedLiteral(l *ir.Literal) string {
	switch v := l.Value.(type) {
	case string:
		return escapeMixedText(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// escapeMixedText backslash-escapes the characters mixed content can't
// carry literally: a literal "<esi:" opener (which would otherwise start
// a nested tag), the backslash itself, and a literal dollar sign (which
// would otherwise start a $(...) / $name(...) reference).
func escapeMixedText(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' || c == '$':
			b.WriteByte('\\')
			b.WriteByte(c)
		case strings.HasPrefix(s[i:], "<esi:"):
			b.WriteString("\\<esi:")
			i += len("<esi:") - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// emitOperatorMixed renders a boolean/arithmetic operator inline inside
// mixed content without parentheses; And/Or whose arguments are boolean
// literals collapse directly to "1"/"0" rather than "true"/"false",
// matching ESI's own truthiness-as-string-digit convention in this
// context.
func emitOperatorMixed(ctxt *ir.Context, o *ir.Operator) {
	checkMatchName(ctxt, o)
	if o.Op == ir.OpAnd || o.Op == ir.OpOr {
		if v, ok := foldBoolMixed(o); ok {
			ctxt.Write(v)
			return
		}
	}
	if o.Op == ir.OpNot || o.Op == ir.OpBitNot {
		ctxt.Write(o.Op.ESISymbol())
		emitExprMixed(ctxt, o.Args[0])
		return
	}
	sep := o.Op.ESISymbol()
	if o.Op == ir.OpAdd {
		sep = ""
	}
	for i, a := range o.Args {
		if i != 0 {
			ctxt.Write(sep)
		}
		emitExprMixed(ctxt, a)
	}
}

func foldBoolMixed(o *ir.Operator) (string, bool) {
	vals := make([]bool, len(o.Args))
	for i, a := range o.Args {
		lit, ok := a.(*ir.Literal)
		if !ok {
			return "", false
		}
		b, ok := lit.Value.(bool)
		if !ok {
			return "", false
		}
		vals[i] = b
	}
	result := vals[0]
	for _, v := range vals[1:] {
		if o.Op == ir.OpAnd {
			result = result && v
		} else {
			result = result || v
		}
	}
	if result {
		return "1", true
	}
	return "0", true
}

// --- quoting ---

func quoteAttr(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		default:
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('"')
	return b.String()
}

func quoteAttrMixed(e ir.Expr) string {
	var b strings.Builder
	emitExprMixed(ir.NewContext(&b), e)
	return quoteAttr(b.String())
}
