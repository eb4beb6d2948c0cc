package ir

import "testing"

func TestResolveReplacesProxiedNode(t *testing.T) {
	x := NewVariable(0, "x", nil, nil)
	assign := NewAssign(0, "y", nil, x)

	table := ProxyTable{}
	table.SetProxy(x, NewLiteral(0, 2.0))

	resolved := Resolve(assign, table).(*Assign)
	lit, ok := resolved.Value.(*Literal)
	if !ok {
		t.Fatalf("expected Value to resolve to a Literal, got %T", resolved.Value)
	}
	if lit.Value != 2.0 {
		t.Errorf("expected resolved literal 2.0, got %v", lit.Value)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	block := &Block{Stmts: []Stmt{
		NewAssign(0, "a", nil, NewLiteral(0, 1.0)),
	}}
	table := ProxyTable{}

	once := Resolve(block, table)
	twice := Resolve(once, table)

	if Children(once)[0].(*Assign).Name != Children(twice)[0].(*Assign).Name {
		t.Errorf("resolving an already-resolved tree should be a no-op")
	}
}

func TestWalkPicksUpMutationMadeDuringVisit(t *testing.T) {
	imp := &Import{Src: "lib.js"}
	block := &Block{Stmts: []Stmt{imp}}

	var sawInlineChild bool
	Walk(block, func(n Node) {
		if i, ok := n.(*Import); ok && i.Inline == nil {
			i.Inline = &Block{Stmts: []Stmt{&Comment{Text: "from lib.js"}}}
		}
		if _, ok := n.(*Comment); ok {
			sawInlineChild = true
		}
	})

	if !sawInlineChild {
		t.Fatalf("Walk should have descended into the Inline block attached mid-walk")
	}
}

func TestDeepCopyAssignsFreshIDs(t *testing.T) {
	orig := NewAssign(0, "a", nil, NewLiteral(0, "hi"))
	origID := orig.ID()

	copied := DeepCopy(orig).(*Assign)
	if copied.ID() == origID {
		t.Errorf("DeepCopy should assign a fresh id, got the same id %d", origID)
	}
	if copied.Value.(*Literal).Value != "hi" {
		t.Errorf("DeepCopy should preserve literal values")
	}

	// Mutating the copy's child must not affect the original's.
	copied.Value.(*Literal).Value = "bye"
	if orig.Value.(*Literal).Value != "hi" {
		t.Errorf("DeepCopy should not alias child nodes with the original")
	}
}

func TestChildrenOnLeafIsNil(t *testing.T) {
	if got := Children(NewLiteral(0, 1.0)); got != nil {
		t.Errorf("Children of a Literal should be nil, got %v", got)
	}
}
