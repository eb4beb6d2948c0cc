package esiemit

import (
	"strings"
	"testing"

	"github.com/akamai/js2esi/ir"
)

func mustString(t *testing.T, tree ir.Stmt, debug bool) string {
	t.Helper()
	out, err := String(tree, debug)
	if err != nil {
		t.Fatalf("String failed: %v", err)
	}
	return out
}

func TestEmitAssignAttributeForm(t *testing.T) {
	tree := &ir.Block{Stmts: []ir.Stmt{
		ir.NewAssign(0, "v", nil, ir.NewLiteral(0, 3.0)),
	}}
	out := mustString(t, tree, false)
	if !strings.Contains(out, `<esi:assign name="v" value="3"/>`) {
		t.Errorf("expected an attribute-form assign, got %q", out)
	}
}

func TestEmitIfFoldsToChoose(t *testing.T) {
	m := ir.NewOperator(0, ir.OpMatches, ir.NewVariable(0, "a", nil, nil), ir.NewLiteral(0, "^x"))
	tree := &ir.Block{Stmts: []ir.Stmt{
		ir.NewIf(0, m,
			&ir.Block{Stmts: []ir.Stmt{ir.NewAssign(0, "v", nil, ir.NewLiteral(0, 1.0))}},
			&ir.Block{Stmts: []ir.Stmt{ir.NewAssign(0, "v", nil, ir.NewLiteral(0, 2.0))}},
			nil),
	}}
	out := mustString(t, tree, false)
	if !strings.Contains(out, "<esi:choose>") {
		t.Errorf("expected an <esi:choose> rendering, got %q", out)
	}
	if !strings.Contains(out, "<esi:when") || !strings.Contains(out, "<esi:otherwise>") {
		t.Errorf("expected when/otherwise branches, got %q", out)
	}
}

func TestEmitDebugHiddenUnlessDebugMode(t *testing.T) {
	tree := &ir.Block{Stmts: []ir.Stmt{
		&ir.Debug{Message: ir.NewLiteral(0, "hi")},
	}}
	if out := mustString(t, tree, false); strings.Contains(out, "DEBUG") {
		t.Errorf("expected Debug to be suppressed outside debug mode, got %q", out)
	}
	if out := mustString(t, tree, true); !strings.Contains(out, "DEBUG: hi") {
		t.Errorf("expected Debug text in debug mode, got %q", out)
	}
}

func TestEmitForEachOmitsDefaultItemName(t *testing.T) {
	tree := &ir.Block{Stmts: []ir.Stmt{
		ir.NewForEach(0, ir.NewVariable(0, "list", nil, nil),
			&ir.Block{Stmts: []ir.Stmt{ir.NewAssign(0, "v", nil, ir.NewLiteral(0, 1.0))}}, ""),
	}}
	out := mustString(t, tree, false)
	if strings.Contains(out, `item="item"`) {
		t.Errorf("expected the default item name to be omitted, got %q", out)
	}
	if !strings.Contains(out, "<esi:foreach") {
		t.Errorf("expected an <esi:foreach> rendering, got %q", out)
	}
}

func TestEmitChooseSurfacesMatchName(t *testing.T) {
	name := "m"
	m := &ir.Operator{Op: ir.OpMatches, Args: []ir.Expr{
		ir.NewVariable(0, "a", nil, nil), ir.NewLiteral(0, "^x"),
	}, MatchName: &name}
	tree := ir.NewIf(0, m,
		&ir.Block{Stmts: []ir.Stmt{ir.NewAssign(0, "v", nil, ir.NewLiteral(0, 1.0))}},
		nil, nil)
	out := mustString(t, tree, false)
	if !strings.Contains(out, `matchname="m"`) {
		t.Errorf("expected the match name hoisted onto <esi:when>, got %q", out)
	}
}

func TestEmitMatchNameOutsideTestLevelErrors(t *testing.T) {
	name := "m"
	m := &ir.Operator{Op: ir.OpMatches, Args: []ir.Expr{
		ir.NewVariable(0, "a", nil, nil), ir.NewLiteral(0, "^x"),
	}, MatchName: &name}
	tree := &ir.Block{Stmts: []ir.Stmt{
		ir.NewAssign(0, "v", nil, m),
	}}
	if _, err := String(tree, false); err == nil {
		t.Fatal("expected an error for a match name outside a test-level context")
	}
}

func TestEmitMatchNameConflictErrors(t *testing.T) {
	name1, name2 := "m1", "m2"
	m1 := &ir.Operator{Op: ir.OpMatches, Args: []ir.Expr{
		ir.NewVariable(0, "a", nil, nil), ir.NewLiteral(0, "^x"),
	}, MatchName: &name1}
	m2 := &ir.Operator{Op: ir.OpMatches, Args: []ir.Expr{
		ir.NewVariable(0, "b", nil, nil), ir.NewLiteral(0, "^y"),
	}, MatchName: &name2}
	and := &ir.Operator{Op: ir.OpAnd, Args: []ir.Expr{m1, m2}}
	tree := ir.NewIf(0, and,
		&ir.Block{Stmts: []ir.Stmt{ir.NewAssign(0, "v", nil, ir.NewLiteral(0, 1.0))}},
		nil, nil)
	if _, err := String(tree, false); err == nil {
		t.Fatal("expected a match name conflict error for two named matches in one test")
	}
}
