// Package ir defines the intermediate representation shared by the
// JS-dialect and ESI surface languages: a tree of Nodes produced by either
// parser, consumed by either emitter, and rewritten by the optimizer's
// proxy/resolve pass, which builds a new tree rather than editing nodes.
package ir

import "sync/atomic"

// Pos is a byte offset into the original source text from which a Node was
// parsed. It is used only to construct diagnostics; the IR itself carries no
// other trace of surface syntax.
type Pos int

// Position returns this position. Implemented as a method so node structs
// may embed a Pos and satisfy Node for free.
func (p Pos) Position() Pos { return p }

var idSeq int64

func nextID() int64 {
	return atomic.AddInt64(&idSeq, 1)
}

// Node is any piece of the IR tree.
type Node interface {
	ID() int64
	Position() Pos
}

// ParentNode is a Node with children, used by generic tree walks
// (Children, Walk and the optimizer passes built on it).
type ParentNode interface {
	Node
	Children() []Node
}

// Expr is a Node that produces a value: Literal, Variable, FunctionCall,
// Operator, List, Dictionary.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a Node that has only side effects: Block, BlockFragment, Assign,
// If, ForEach, Break, Try, FunctionDefinition, FunctionReturn, Include,
// Import, Output, Comment, Debug, DebugBlock, IfDebug, Log.
type Stmt interface {
	Node
	stmtNode()
}

// base is embedded by every node to provide ID() and Position(). Nodes
// carry no proxy of their own: replacements live in a ProxyTable keyed by
// ID and are consulted only by Resolve (see proxy.go), per the design note
// that the tree handed to an emitter must already be fully resolved.
//
// ID is assigned lazily on first call rather than eagerly in a constructor:
// both parsers build a number of nodes via bare struct literals (e.g.
// &Block{Stmts: stmts}) rather than the New* constructors, and a node
// created that way must still receive an id unique from every other node
// the moment anything (Resolve, DeepCopy, an optimizer pass) needs to key
// off it, or two such nodes would collide on id 0.
type base struct {
	id  int64
	pos Pos
}

func newBase(pos Pos) base {
	return base{id: nextID(), pos: pos}
}

func (b *base) ID() int64 {
	if b.id == 0 {
		b.id = nextID()
	}
	return b.id
}

func (b base) Position() Pos { return b.pos }

// Type identifies a Literal's intrinsic value type.
type Type int

const (
	TypeBool Type = iota
	TypeNumber
	TypeString
)

// Literal is a constant value. Its Type is derived from the dynamic type of
// Value, never stored redundantly.
type Literal struct {
	base
	Value interface{} // bool, float64, or string
}

func NewLiteral(pos Pos, value interface{}) *Literal {
	return &Literal{base: newBase(pos), Value: normalizeLiteral(value)}
}

func normalizeLiteral(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return v
	}
}

// Type derives the literal's type from its value.
func (l *Literal) Type() Type {
	switch l.Value.(type) {
	case bool:
		return TypeBool
	case string:
		return TypeString
	default:
		return TypeNumber
	}
}

func (*Literal) exprNode() {}

// CoerceExpr coerces an arbitrary Go value into an Expr: a pass-through if it is
// already one, otherwise a Literal wrapping the raw value. Grounded on
// js2esi.node.helper.expr().
func CoerceExpr(pos Pos, v interface{}) Expr {
	if v == nil {
		return nil
	}
	if e, ok := v.(Expr); ok {
		return e
	}
	return NewLiteral(pos, v)
}

// Variable references a named value, optionally subscripted by Key and
// falling back to Default when absent.
type Variable struct {
	base
	Name    string
	Key     Expr
	Default Expr
}

func NewVariable(pos Pos, name string, key, def Expr) *Variable {
	return &Variable{base: newBase(pos), Name: name, Key: key, Default: def}
}

func (*Variable) exprNode() {}

func (v *Variable) Children() []Node {
	var out []Node
	if v.Key != nil {
		out = append(out, v.Key)
	}
	if v.Default != nil {
		out = append(out, v.Default)
	}
	return out
}

// SameRef reports whether v and other refer to the same name and key,
// per spec.md's "An Assign's key, when present, is mirrored by any Variable
// it rewrites into" invariant.
func (v *Variable) SameRef(other *Variable) bool {
	if other == nil || v.Name != other.Name {
		return false
	}
	return exprEqualKey(v.Key, other.Key)
}

func exprEqualKey(a, b Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	la, aok := a.(*Literal)
	lb, bok := b.(*Literal)
	if aok && bok {
		return la.Value == lb.Value
	}
	return a == b
}

// FunctionCall invokes a named function (a library builtin, a user
// FunctionDefinition, or, after inlining, a proxy target).
type FunctionCall struct {
	base
	Name  string
	Args  []Expr
	Debug string // default "translate"
}

func NewFunctionCall(pos Pos, name string, args []Expr) *FunctionCall {
	return &FunctionCall{base: newBase(pos), Name: name, Args: args, Debug: "translate"}
}

func (*FunctionCall) exprNode() {}

func (f *FunctionCall) Children() []Node {
	out := make([]Node, len(f.Args))
	for i, a := range f.Args {
		out[i] = a
	}
	return out
}

// List is an ordered sequence literal.
type List struct {
	base
	Items []Expr
}

func (*List) exprNode() {}

func (l *List) Children() []Node {
	out := make([]Node, len(l.Items))
	for i, it := range l.Items {
		out[i] = it
	}
	return out
}

// DictEntry is one key/value pair of a Dictionary.
type DictEntry struct {
	Key   Expr
	Value Expr
}

// Dictionary is an ordered sequence of key/value pairs.
type Dictionary struct {
	base
	Entries []DictEntry
}

func (*Dictionary) exprNode() {}

func (d *Dictionary) Children() []Node {
	out := make([]Node, 0, len(d.Entries)*2)
	for _, e := range d.Entries {
		out = append(out, e.Key, e.Value)
	}
	return out
}

// Block is an ordered statement list that emits braces in JS output when
// Explicit is set (or when round-trip safety requires it; see jsemit).
type Block struct {
	base
	Stmts    []Stmt
	Explicit bool
}

func NewBlock(pos Pos, explicit bool, stmts ...Stmt) *Block {
	return &Block{base: newBase(pos), Stmts: stmts, Explicit: explicit}
}

func (*Block) stmtNode() {}

func (b *Block) Children() []Node {
	out := make([]Node, len(b.Stmts))
	for i, s := range b.Stmts {
		out[i] = s
	}
	return out
}

// BlockFragment is an ordered statement list that never emits braces.
type BlockFragment struct {
	base
	Stmts []Stmt
}

func (*BlockFragment) stmtNode() {}

func (b *BlockFragment) Children() []Node {
	out := make([]Node, len(b.Stmts))
	for i, s := range b.Stmts {
		out[i] = s
	}
	return out
}

// Assign sets a named variable (optionally keyed) to the value of an
// expression.
type Assign struct {
	base
	Name  string
	Key   Expr
	Value Expr
}

func NewAssign(pos Pos, name string, key, value Expr) *Assign {
	return &Assign{base: newBase(pos), Name: name, Key: key, Value: value}
}

func (*Assign) stmtNode() {}

func (a *Assign) Children() []Node {
	var out []Node
	if a.Key != nil {
		out = append(out, a.Key)
	}
	out = append(out, a.Value)
	return out
}

// If is a conditional. NoMatch, when itself an If, forms an else-if chain.
// Debug, when non-nil, is the original source's "debug triple" collapsed to
// its trigger expression; construction wraps Match/NoMatch in Debug('yes')/
// Debug('no') blocks exactly as js2esi.node.conditional.If does.
type If struct {
	base
	Test    Expr
	Match   Stmt
	NoMatch Stmt
	Debug   Expr
}

// NewIf builds an If, applying the debug-triple wrapping from
// js2esi.node.conditional.If.__init__ when debug is non-nil.
func NewIf(pos Pos, test Expr, match, nomatch Stmt, debug Expr) *If {
	if debug != nil {
		match = &Block{base: newBase(pos), Stmts: []Stmt{
			&Debug{base: newBase(pos), Message: NewLiteral(pos, "yes")},
			match,
		}}
		nomatch = &Block{base: newBase(pos), Stmts: []Stmt{
			&Debug{base: newBase(pos), Message: NewLiteral(pos, "no")},
			nomatch,
		}}
	}
	return &If{base: newBase(pos), Test: test, Match: match, NoMatch: nomatch, Debug: debug}
}

func (*If) stmtNode() {}

func (i *If) Children() []Node {
	out := []Node{i.Test}
	if i.Match != nil {
		out = append(out, i.Match)
	}
	if i.NoMatch != nil {
		out = append(out, i.NoMatch)
	}
	return out
}

// ForEach iterates Collection, binding each element to Item (default
// "item") for the duration of Body.
type ForEach struct {
	base
	Collection Expr
	Body       Stmt
	Item       string
}

func NewForEach(pos Pos, collection Expr, body Stmt, item string) *ForEach {
	if item == "" {
		item = "item"
	}
	return &ForEach{base: newBase(pos), Collection: collection, Body: body, Item: item}
}

func (*ForEach) stmtNode() {}

func (f *ForEach) Children() []Node { return []Node{f.Collection, f.Body} }

// Break exits the innermost ForEach.
type Break struct{ base }

func NewBreak(pos Pos) *Break { return &Break{base: newBase(pos)} }

func (*Break) stmtNode() {}

// Try runs Attempt, falling back to Except on failure.
type Try struct {
	base
	Attempt Stmt
	Except  Stmt
}

func (*Try) stmtNode() {}

func (t *Try) Children() []Node {
	out := []Node{t.Attempt}
	if t.Except != nil {
		out = append(out, t.Except)
	}
	return out
}

// FunctionParam is one formal parameter of a FunctionDefinition.
type FunctionParam struct {
	base
	Name    string
	Default Expr
}

func (*FunctionParam) stmtNode() {}

func (p *FunctionParam) Children() []Node {
	if p.Default != nil {
		return []Node{p.Default}
	}
	return nil
}

// FunctionDefinition declares a named function. Inline functions are
// resolved away by the optimizer at level 5 and above (see optimize
// package) and do not reach the ESI emitter after it; non-inline functions
// lower to <esi:function>.
type FunctionDefinition struct {
	base
	Name   string
	Params []*FunctionParam
	Body   Stmt
	Inline bool
}

func (*FunctionDefinition) stmtNode() {}

func (f *FunctionDefinition) Children() []Node {
	out := make([]Node, 0, len(f.Params)+1)
	for _, p := range f.Params {
		out = append(out, p)
	}
	out = append(out, f.Body)
	return out
}

// FunctionReturn exits a FunctionDefinition body, optionally with a value.
type FunctionReturn struct {
	base
	Value Expr
}

func (*FunctionReturn) stmtNode() {}

func (r *FunctionReturn) Children() []Node {
	if r.Value != nil {
		return []Node{r.Value}
	}
	return nil
}

// IncludeAttrs is the recognized attribute bag for Include/Eval.
type IncludeAttrs struct {
	Alt           Expr
	Dca           Expr
	OnError       Expr
	MaxWait       Expr
	Ttl           Expr
	NoStore       Expr
	Method        Expr
	Entity        Expr
	AppendHeader  []Expr
	RemoveHeader  []Expr
	SetHeader     []Expr
}

// Include fetches Src and inlines the response; Eval is Include with its
// Eval flag set (ESI's <esi:eval>).
type Include struct {
	base
	Src   Expr
	Attrs IncludeAttrs
	Eval  bool
}

func (*Include) stmtNode() {}

func (i *Include) Children() []Node {
	out := []Node{i.Src}
	add := func(e Expr) {
		if e != nil {
			out = append(out, e)
		}
	}
	add(i.Attrs.Alt)
	add(i.Attrs.Dca)
	add(i.Attrs.OnError)
	add(i.Attrs.MaxWait)
	add(i.Attrs.Ttl)
	add(i.Attrs.NoStore)
	add(i.Attrs.Method)
	add(i.Attrs.Entity)
	for _, e := range i.Attrs.AppendHeader {
		out = append(out, e)
	}
	for _, e := range i.Attrs.RemoveHeader {
		out = append(out, e)
	}
	for _, e := range i.Attrs.SetHeader {
		out = append(out, e)
	}
	return out
}

// Import brings in the IR of another source file. Inline is populated by
// the resolver (internal/importresolve), not by either parser.
type Import struct {
	base
	Src    string
	Force  bool
	Inline Stmt
}

func (*Import) stmtNode() {}

func (i *Import) Children() []Node {
	if i.Inline != nil {
		return []Node{i.Inline}
	}
	return nil
}

// Output prints one or more expressions. Raw restricts to literals and
// suppresses escaping; Vars wraps the ESI rendering in <esi:vars>.
type Output struct {
	base
	Stmts []Expr
	Raw   bool
	Vars  bool
}

func (*Output) stmtNode() {}

func (o *Output) Children() []Node {
	out := make([]Node, len(o.Stmts))
	for i, s := range o.Stmts {
		out[i] = s
	}
	return out
}

// Comment is a source comment carried through to both emitters.
type Comment struct {
	base
	Text string
}

func (*Comment) stmtNode() {}

// Debug materializes only when the emission Context's debug flag is set;
// see Context.Debug in context.go.
type Debug struct {
	base
	Message Expr
}

func (*Debug) stmtNode() {}

func (d *Debug) Children() []Node { return []Node{d.Message} }

// DebugBlock materializes Body only in debug mode.
type DebugBlock struct {
	base
	Body Stmt
}

func (*DebugBlock) stmtNode() {}

func (d *DebugBlock) Children() []Node { return []Node{d.Body} }

// IfDebug is DebugBlock's conditional sibling: emits Body only when the
// Context is in debug mode, with no other structural effect.
type IfDebug struct {
	base
	Body Stmt
}

func (*IfDebug) stmtNode() {}

func (d *IfDebug) Children() []Node { return []Node{d.Body} }

// Log is the ESI-side materialization of an add_header call tagged
// debug="translate" (see esiemit), or a standalone debug log statement.
// Supplemental to spec.md, grounded on js2esi.node.log.Log.
type Log struct {
	base
	Message Expr
}

func (*Log) stmtNode() {}

func (l *Log) Children() []Node { return []Node{l.Message} }
