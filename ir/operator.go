package ir

// OpKind enumerates every operator symbol the IR can represent. Mapping
// from surface symbol to OpKind, and from OpKind to precedence and to each
// emitter's surface rendering, are static tables (opInfo below), per the
// design note preferring a global operator registry over dynamic dispatch.
type OpKind int

const (
	OpAdd OpKind = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
	OpNot
	OpBitNot
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShiftLeft
	OpShiftRight
	OpConcat
	OpMatches
	OpMatchesNoCase
	OpHas
	OpHasNoCase
)

// Arity describes how many operands an OpKind's Operator node expects.
type Arity int

const (
	Unary Arity = iota
	Binary
	NAry // chains of two or more operands, e.g. a+b+c folded into one node
)

type opDescriptor struct {
	jsSymbol  string
	esiSymbol string
	arity     Arity
	prec      int // higher binds tighter; matches jsparse's precedence table
}

// opTable is the static enum->rendering/precedence registry. Lookup the
// other direction (surface symbol -> OpKind) via jsSymbolToOp/esiSymbolToOp.
var opTable = map[OpKind]opDescriptor{
	OpOr:            {"||", "||", Binary, 1},
	OpAnd:           {"&&", "&&", Binary, 2},
	OpBitOr:         {"|", "|", Binary, 3},
	OpBitXor:        {"^", "^", Binary, 4},
	OpBitAnd:        {"&", "&", Binary, 5},
	OpEq:            {"==", "==", Binary, 6},
	OpNotEq:         {"!=", "!=", Binary, 6},
	OpLt:            {"<", "<", Binary, 7},
	OpLte:           {"<=", "<=", Binary, 7},
	OpGt:            {">", ">", Binary, 7},
	OpGte:           {">=", ">=", Binary, 7},
	OpMatches:       {" matches ", " matches ", Binary, 7},
	OpMatchesNoCase: {" matches_i ", " matches_i ", Binary, 7},
	OpHas:           {" has ", " has ", Binary, 7},
	OpHasNoCase:     {" has_i ", " has_i ", Binary, 7},
	OpShiftLeft:     {"<<", "<<", Binary, 8},
	OpShiftRight:    {">>", ">>", Binary, 8},
	OpAdd:           {"+", "+", NAry, 9},
	OpSub:           {"-", "-", NAry, 9},
	OpMul:           {"*", "*", NAry, 10},
	OpDiv:           {"/", "/", NAry, 10},
	OpMod:           {"%", "%", NAry, 10},
	OpNot:           {"!", "!", Unary, 11},
	OpBitNot:        {"~", "~", Unary, 11},
	OpConcat:        {"..", "..", Binary, 9},
}

var jsSymbolToOp = map[string]OpKind{}
var esiSymbolToOp = map[string]OpKind{}

func init() {
	for op, d := range opTable {
		jsSymbolToOp[d.jsSymbol] = op
		esiSymbolToOp[d.esiSymbol] = op
	}
}

// OpFromJSSymbol looks up an OpKind by its JS-dialect surface symbol.
func OpFromJSSymbol(sym string) (OpKind, bool) {
	op, ok := jsSymbolToOp[sym]
	return op, ok
}

// OpFromESISymbol looks up an OpKind by its ESI surface symbol.
func OpFromESISymbol(sym string) (OpKind, bool) {
	op, ok := esiSymbolToOp[sym]
	return op, ok
}

// JSSymbol is the JS-dialect rendering of op.
func (op OpKind) JSSymbol() string { return opTable[op].jsSymbol }

// ESISymbol is the ESI rendering of op.
func (op OpKind) ESISymbol() string { return opTable[op].esiSymbol }

// Precedence returns op's binding power; higher binds tighter.
func (op OpKind) Precedence() int { return opTable[op].prec }

// ArityKind returns whether op is conventionally unary, binary, or n-ary.
// Operator.Args is not checked against it; literal folding does not shrink
// Args but replaces a folded Operator as a whole with a Literal.
func (op OpKind) ArityKind() Arity { return opTable[op].arity }

// Operator is an n-ary operator application. Matches/MatchesNoCase
// additionally carry an optional MatchName, consumed by the ESI emitter's
// single-slot Context.Matchname (see context.go) and set only inside a
// test-level context (spec.md invariant; enforced by esiemit's
// checkMatchName at emission time).
type Operator struct {
	base
	Op        OpKind
	Args      []Expr
	MatchName *string
}

func NewOperator(pos Pos, op OpKind, args ...Expr) *Operator {
	return &Operator{base: newBase(pos), Op: op, Args: args}
}

func (*Operator) exprNode() {}

func (o *Operator) Children() []Node {
	out := make([]Node, len(o.Args))
	for i, a := range o.Args {
		out[i] = a
	}
	return out
}

// IsMatchKind reports whether o is a matches/matches_i operator, the only
// kind eligible to carry a MatchName.
func (o *Operator) IsMatchKind() bool {
	return o.Op == OpMatches || o.Op == OpMatchesNoCase
}

// FindMatchOperator performs the same first-hit depth-first search as
// js2esi.node.conditional.findMatchOperator: unwrap a leading Not, then
// search args in order for the first matches/matches_i operator.
func FindMatchOperator(expr Expr) *Operator {
	switch e := expr.(type) {
	case *Operator:
		if e.Op == OpNot && len(e.Args) == 1 {
			return FindMatchOperator(e.Args[0])
		}
		if e.IsMatchKind() {
			return e
		}
		for _, a := range e.Args {
			if m := FindMatchOperator(a); m != nil {
				return m
			}
		}
	}
	return nil
}
