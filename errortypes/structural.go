package errortypes

import "fmt"

// The structural error kinds from spec.md §7. Each is raised immediately
// (never accumulated in the lexical/syntax error counter) since it
// represents a violation of programmer intent rather than a typo;
// continuing translation after one would produce garbage. Each embeds
// pos so it satisfies ErrFilePos (see filepos.go) for free.

type pos struct {
	file string
	line int
	col  int
}

func (p pos) File() string { return p.file }
func (p pos) Line() int    { return p.line }
func (p pos) Col() int     { return p.col }

func newPos(file string, line, col int) pos { return pos{file: file, line: line, col: col} }

// MatchNameConflict is raised when a matches/matches_i operator is reached
// while the emission Context's single matchname slot is already occupied.
type MatchNameConflict struct {
	pos
	Name string
}

func NewMatchNameConflict(file string, line, col int, name string) *MatchNameConflict {
	return &MatchNameConflict{pos: newPos(file, line, col), Name: name}
}

func (e *MatchNameConflict) Error() string {
	return fmt.Sprintf("match name conflict: %q", e.Name)
}

// BadMatchNameContext is raised when a Matches operator carries a
// matchName outside of a test-level context.
type BadMatchNameContext struct {
	pos
}

func NewBadMatchNameContext(file string, line, col int) *BadMatchNameContext {
	return &BadMatchNameContext{pos: newPos(file, line, col)}
}

func (e *BadMatchNameContext) Error() string {
	return "matches/matches_i match name used outside a test-level context"
}

// DanglingMatchName is raised when an <esi:when matchname="..."> cannot
// find a matches/matches_i operator anywhere in its test expression.
type DanglingMatchName struct {
	pos
	Name string
}

func NewDanglingMatchName(file string, line, col int, name string) *DanglingMatchName {
	return &DanglingMatchName{pos: newPos(file, line, col), Name: name}
}

func (e *DanglingMatchName) Error() string {
	return fmt.Sprintf("dangling match name %q: no matches/matches_i operator found in test", e.Name)
}

// StructureError covers inline-function violations, recursive inline
// resolution, and the optimizer's iteration-cap overflow.
type StructureError struct {
	pos
	Reason string
}

func NewStructureError(file string, line, col int, reason string) *StructureError {
	return &StructureError{pos: newPos(file, line, col), Reason: reason}
}

func (e *StructureError) Error() string { return e.Reason }

// UnknownOperator is raised when a surface symbol doesn't map to any
// registered OpKind.
type UnknownOperator struct {
	pos
	Symbol string
}

func NewUnknownOperator(file string, line, col int, symbol string) *UnknownOperator {
	return &UnknownOperator{pos: newPos(file, line, col), Symbol: symbol}
}

func (e *UnknownOperator) Error() string { return fmt.Sprintf("unknown operator %q", e.Symbol) }

// InvalidNegation is raised by the JS parser when unary minus is applied
// to a non-negatable term.
type InvalidNegation struct {
	pos
}

func NewInvalidNegation(file string, line, col int) *InvalidNegation {
	return &InvalidNegation{pos: newPos(file, line, col)}
}

func (e *InvalidNegation) Error() string { return "invalid negation" }

// OperatorError covers any other operator-application mismatch (arity,
// disallowed subvariant use, etc).
type OperatorError struct {
	pos
	Reason string
}

func NewOperatorError(file string, line, col int, reason string) *OperatorError {
	return &OperatorError{pos: newPos(file, line, col), Reason: reason}
}

func (e *OperatorError) Error() string { return e.Reason }

// MissingAttribute is raised e.g. for an <esi:include> with no src.
type MissingAttribute struct {
	pos
	Attr string
	Elem string
}

func NewMissingAttribute(file string, line, col int, elem, attr string) *MissingAttribute {
	return &MissingAttribute{pos: newPos(file, line, col), Elem: elem, Attr: attr}
}

func (e *MissingAttribute) Error() string {
	return fmt.Sprintf("%s: missing required attribute %q", e.Elem, e.Attr)
}

// UnknownAttribute is raised for an attribute not in the recognized bag,
// with an optional case-insensitive "did you mean" hint.
type UnknownAttribute struct {
	pos
	Elem string
	Attr string
	Hint string // empty if no close match was found
}

func NewUnknownAttribute(file string, line, col int, elem, attr, hint string) *UnknownAttribute {
	return &UnknownAttribute{pos: newPos(file, line, col), Elem: elem, Attr: attr, Hint: hint}
}

func (e *UnknownAttribute) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: unknown attribute %q (did you mean %q?)", e.Elem, e.Attr, e.Hint)
	}
	return fmt.Sprintf("%s: unknown attribute %q", e.Elem, e.Attr)
}

// ImportNotFound is raised when a require()'d source file can't be found
// in any of the configured lookup directories. Fatal, per spec.md §7's
// Import error class.
type ImportNotFound struct {
	pos
	Src   string
	Tried []string
}

func NewImportNotFound(file string, line, col int, src string, tried []string) *ImportNotFound {
	return &ImportNotFound{pos: newPos(file, line, col), Src: src, Tried: tried}
}

func (e *ImportNotFound) Error() string {
	return fmt.Sprintf("could not find import %q (tried %d location(s))", e.Src, len(e.Tried))
}

// CompilationErrors aggregates the lexical/syntax error count accumulated
// over one compile; the CLI maps it to exit code 100+count.
type CompilationErrors struct {
	Count int
}

func (e *CompilationErrors) Error() string {
	return fmt.Sprintf("%d compilation error(s)", e.Count)
}

// DecompilationErrors is CompilationErrors' decompile-direction sibling.
type DecompilationErrors struct {
	Count int
}

func (e *DecompilationErrors) Error() string {
	return fmt.Sprintf("%d decompilation error(s)", e.Count)
}
