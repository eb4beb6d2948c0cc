package jsemit

import (
	"strings"
	"testing"

	"github.com/akamai/js2esi/ir"
)

func TestEmitAssign(t *testing.T) {
	tree := &ir.Block{Stmts: []ir.Stmt{
		ir.NewAssign(0, "v", nil, ir.NewLiteral(0, 3.0)),
	}}
	out := String(tree)
	if !strings.Contains(out, "v = 3;") {
		t.Errorf("expected output to contain 'v = 3;', got %q", out)
	}
}

func TestEmitCompoundAssign(t *testing.T) {
	v := ir.NewVariable(0, "v", nil, nil)
	tree := &ir.Block{Stmts: []ir.Stmt{
		ir.NewAssign(0, "v", nil, ir.NewOperator(0, ir.OpAdd, v, ir.NewLiteral(0, 1.0))),
	}}
	out := String(tree)
	if !strings.Contains(out, "v += 1;") {
		t.Errorf("expected compound-assign form 'v += 1;', got %q", out)
	}
}

func TestEmitStringLiteralQuoting(t *testing.T) {
	tree := &ir.Block{Stmts: []ir.Stmt{
		ir.NewAssign(0, "v", nil, ir.NewLiteral(0, "it's fine")),
	}}
	out := String(tree)
	if !strings.Contains(out, `\'`) {
		t.Errorf("expected the embedded quote to be escaped, got %q", out)
	}
}

func TestExprStringRendersStandaloneExpression(t *testing.T) {
	e := ir.NewOperator(0, ir.OpAdd, ir.NewLiteral(0, 1.0), ir.NewLiteral(0, 2.0))
	out := ExprString(e)
	if strings.Contains(out, ";") || strings.Contains(out, "\n") {
		t.Errorf("expected a bare expression with no statement punctuation, got %q", out)
	}
	if !strings.Contains(out, "1") || !strings.Contains(out, "2") {
		t.Errorf("expected both operands to appear, got %q", out)
	}
}

func TestEmitIfWithElse(t *testing.T) {
	tree := &ir.Block{Stmts: []ir.Stmt{
		ir.NewIf(0, ir.NewLiteral(0, true),
			&ir.Block{Stmts: []ir.Stmt{ir.NewAssign(0, "a", nil, ir.NewLiteral(0, 1.0))}},
			&ir.Block{Stmts: []ir.Stmt{ir.NewAssign(0, "a", nil, ir.NewLiteral(0, 2.0))}},
			nil),
	}}
	out := String(tree)
	if !strings.Contains(out, "if (") || !strings.Contains(out, "else") {
		t.Errorf("expected an if/else rendering, got %q", out)
	}
}
