package jsparse

import (
	"testing"

	"github.com/akamai/js2esi/ir"
)

func mustParse(t *testing.T, src string) ir.Stmt {
	t.Helper()
	tree, err := Parse("t.js", src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return tree
}

func TestParseSimpleAssign(t *testing.T) {
	tree := mustParse(t, `v = 1 + 2;`)
	block := tree.(*ir.Block)
	if len(block.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(block.Stmts))
	}
	a, ok := block.Stmts[0].(*ir.Assign)
	if !ok {
		t.Fatalf("expected *ir.Assign, got %T", block.Stmts[0])
	}
	if a.Name != "v" {
		t.Errorf("expected lvalue 'v', got %q", a.Name)
	}
	op, ok := a.Value.(*ir.Operator)
	if !ok || op.Op != ir.OpAdd {
		t.Fatalf("expected an OpAdd operator, got %#v", a.Value)
	}
}

func TestParseIfMatches(t *testing.T) {
	tree := mustParse(t, `if (x matches '^a' as m) { y = m; }`)
	block := tree.(*ir.Block)
	ifst, ok := block.Stmts[0].(*ir.If)
	if !ok {
		t.Fatalf("expected *ir.If, got %T", block.Stmts[0])
	}
	match := ir.FindMatchOperator(ifst.Test)
	if match == nil {
		t.Fatalf("expected a matches operator in the test")
	}
	if match.MatchName == nil || *match.MatchName != "m" {
		t.Errorf("expected match name 'm', got %v", match.MatchName)
	}
}

func TestParseInclude(t *testing.T) {
	tree := mustParse(t, `include('/foo', alt: '/bar');`)
	block := tree.(*ir.Block)
	inc, ok := block.Stmts[0].(*ir.Include)
	if !ok {
		t.Fatalf("expected *ir.Include, got %T", block.Stmts[0])
	}
	lit, ok := inc.Src.(*ir.Literal)
	if !ok || lit.Value != "/foo" {
		t.Errorf("expected src literal '/foo', got %#v", inc.Src)
	}
	if inc.Attrs.Alt == nil {
		t.Errorf("expected alt attribute to be set")
	}
}

func TestParseInlineFunction(t *testing.T) {
	tree := mustParse(t, `function inline double(x) { return x * 2; }`)
	block := tree.(*ir.Block)
	fn, ok := block.Stmts[0].(*ir.FunctionDefinition)
	if !ok {
		t.Fatalf("expected *ir.FunctionDefinition, got %T", block.Stmts[0])
	}
	if !fn.Inline {
		t.Errorf("expected Inline to be true")
	}
	if len(fn.Params) != 1 || fn.Params[0].Name != "x" {
		t.Errorf("expected one param named 'x', got %#v", fn.Params)
	}
}

func TestParseSyntaxErrorReturnsError(t *testing.T) {
	_, err := Parse("t.js", `v = ;`)
	if err == nil {
		t.Fatalf("expected a parse error for an empty expression")
	}
}
