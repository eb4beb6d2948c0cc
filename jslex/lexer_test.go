package jslex

import "testing"

func collect(src string) []Item {
	l := Lex("t.js", src)
	var items []Item
	for {
		it := l.NextItem()
		items = append(items, it)
		if it.Typ == ItemEOF || it.Typ == ItemError {
			return items
		}
	}
}

func TestLexBasicAssign(t *testing.T) {
	items := collect(`v = 1 + 2;`)

	want := []struct {
		typ ItemType
		val string
	}{
		{ItemIdent, "v"},
		{ItemOp, "="},
		{ItemInt, "1"},
		{ItemOp, "+"},
		{ItemInt, "2"},
		{ItemSemicolon, ";"},
		{ItemEOF, ""},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d: %v", len(items), len(want), items)
	}
	for i, w := range want {
		if items[i].Typ != w.typ {
			t.Errorf("item %d: got type %v, want %v (%q)", i, items[i].Typ, w.typ, items[i].Val)
		}
		if w.typ != ItemEOF && items[i].Val != w.val {
			t.Errorf("item %d: got val %q, want %q", i, items[i].Val, w.val)
		}
	}
}

func TestLexStringAndFloat(t *testing.T) {
	items := collect(`'hello' 3.5`)
	if items[0].Typ != ItemString || items[0].Val != "'hello'" {
		t.Errorf("expected a string token, got %+v", items[0])
	}
	if items[1].Typ != ItemFloat || items[1].Val != "3.5" {
		t.Errorf("expected a float token, got %+v", items[1])
	}
}

func TestLexKeyword(t *testing.T) {
	items := collect(`if (x) {}`)
	if items[0].Typ != ItemKeyword || items[0].Val != "if" {
		t.Errorf("expected keyword 'if', got %+v", items[0])
	}
}

func TestLexUnterminatedStringErrors(t *testing.T) {
	items := collect(`'oops`)
	last := items[len(items)-1]
	if last.Typ != ItemError {
		t.Fatalf("expected an ItemError for an unterminated string, got %+v", last)
	}
}

func TestLineCol(t *testing.T) {
	l := Lex("t.js", "a\nb = 1;")
	var pos int
	for {
		it := l.NextItem()
		if it.Val == "1" {
			pos = it.Pos
			break
		}
		if it.Typ == ItemEOF {
			t.Fatal("never found the '1' token")
		}
	}
	line, col := l.LineCol(pos)
	if line != 2 {
		t.Errorf("expected line 2, got %d", line)
	}
	if col <= 0 {
		t.Errorf("expected a positive column, got %d", col)
	}
}
