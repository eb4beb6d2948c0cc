package optimize

import (
	"testing"

	"github.com/akamai/js2esi/ir"
	"github.com/akamai/js2esi/jsparse"
)

func TestOptimizeInlinesSimpleCall(t *testing.T) {
	tree, err := jsparse.Parse("t.js", `
		function inline double(x) { return x * 2; }
		v = double(3);
	`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	optimized, err := Optimize(tree, 5, "t.js")
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	block := optimized.(*ir.Block)
	var assign *ir.Assign
	for _, s := range block.Stmts {
		if a, ok := s.(*ir.Assign); ok {
			assign = a
		}
	}
	if assign == nil {
		t.Fatalf("expected an Assign statement to survive inlining")
	}
	// level 5 also folds literals (>= 3), so the inlined 3 * 2 becomes 6.
	lit, ok := assign.Value.(*ir.Literal)
	if !ok || lit.Value != 6.0 {
		t.Fatalf("expected the inlined body 3 * 2 folded to Literal 6, got %#v", assign.Value)
	}
}

func TestOptimizeFoldsLiteralArithmetic(t *testing.T) {
	tree, err := jsparse.Parse("t.js", `v = 1 + 2;`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	optimized, err := Optimize(tree, 3, "t.js")
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	block := optimized.(*ir.Block)
	assign := block.Stmts[0].(*ir.Assign)
	lit, ok := assign.Value.(*ir.Literal)
	if !ok {
		t.Fatalf("expected folding to collapse 1+2 to a Literal, got %#v", assign.Value)
	}
	if lit.Value != 3.0 {
		t.Errorf("expected folded value 3.0, got %v", lit.Value)
	}
}

func TestOptimizeRejectsMultiStatementInlineBody(t *testing.T) {
	tree, err := jsparse.Parse("t.js", `
		function inline bad(x) { y = x; return y; }
		v = bad(3);
	`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := Optimize(tree, 5, "t.js"); err == nil {
		t.Fatalf("expected a StructureError for a multi-statement inline body")
	}
}

func TestOptimizeBelowFiveClearsInlineFlag(t *testing.T) {
	tree, err := jsparse.Parse("t.js", `function inline f(x) { return x; }`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	optimized, err := Optimize(tree, 0, "t.js")
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	block := optimized.(*ir.Block)
	fn := block.Stmts[0].(*ir.FunctionDefinition)
	if fn.Inline {
		t.Errorf("expected Inline to be cleared at optimize level < 5")
	}
}
