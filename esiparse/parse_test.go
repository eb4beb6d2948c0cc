package esiparse

import (
	"testing"

	"github.com/akamai/js2esi/ir"
)

func mustParse(t *testing.T, src string) ir.Stmt {
	t.Helper()
	tree, err := Parse("t.esi", src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return tree
}

func TestParseAssignAttributeForm(t *testing.T) {
	tree := mustParse(t, `<esi:assign name="v" value="1"/>`)
	block := tree.(*ir.Block)
	a, ok := block.Stmts[0].(*ir.Assign)
	if !ok {
		t.Fatalf("expected *ir.Assign, got %T", block.Stmts[0])
	}
	if a.Name != "v" {
		t.Errorf("expected name 'v', got %q", a.Name)
	}
	lit, ok := a.Value.(*ir.Literal)
	if !ok || lit.Value != 1.0 {
		t.Errorf("expected literal 1.0, got %#v", a.Value)
	}
}

func TestParseChooseFoldsToIf(t *testing.T) {
	src := `<esi:choose>
		<esi:when test="$(a)=='1'"><esi:assign name="v" value="1"/></esi:when>
		<esi:otherwise><esi:assign name="v" value="2"/></esi:otherwise>
	</esi:choose>`
	tree := mustParse(t, src)
	block := tree.(*ir.Block)
	ifst, ok := block.Stmts[0].(*ir.If)
	if !ok {
		t.Fatalf("expected <esi:choose> to fold to *ir.If, got %T", block.Stmts[0])
	}
	if ifst.Match == nil || ifst.NoMatch == nil {
		t.Fatalf("expected both branches to be populated")
	}
}

func TestParseMissingRequiredAttributeErrors(t *testing.T) {
	_, err := Parse("t.esi", `<esi:assign value="1"/>`)
	if err == nil {
		t.Fatalf("expected an error for a missing 'name' attribute")
	}
}
