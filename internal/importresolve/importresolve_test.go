package importresolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/akamai/js2esi/ir"
	"github.com/akamai/js2esi/jsparse"
)

func TestResolveInlinesFromImportingFileDir(t *testing.T) {
	dir := t.TempDir()
	libPath := filepath.Join(dir, "lib.js")
	if err := os.WriteFile(libPath, []byte(`x = 1;`), 0o644); err != nil {
		t.Fatal(err)
	}
	mainPath := filepath.Join(dir, "main.js")

	tree, err := jsparse.Parse(mainPath, `require('lib.js');`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if err := Resolve(tree, mainPath, Options{}, nil); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	block := tree.(*ir.Block)
	imp := block.Stmts[0].(*ir.Import)
	if imp.Inline == nil {
		t.Fatalf("expected the import to be inlined")
	}
	inner := imp.Inline.(*ir.Block)
	if len(inner.Stmts) != 1 {
		t.Fatalf("expected the inlined file's one statement, got %d", len(inner.Stmts))
	}
}

func TestResolveDedupsRepeatedImport(t *testing.T) {
	dir := t.TempDir()
	libPath := filepath.Join(dir, "lib.js")
	if err := os.WriteFile(libPath, []byte(`x = 1;`), 0o644); err != nil {
		t.Fatal(err)
	}
	mainPath := filepath.Join(dir, "main.js")

	tree, err := jsparse.Parse(mainPath, `require('lib.js'); require('lib.js');`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if err := Resolve(tree, mainPath, Options{}, nil); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	block := tree.(*ir.Block)
	first := block.Stmts[0].(*ir.Import).Inline.(*ir.Block)
	second := block.Stmts[1].(*ir.Import).Inline.(*ir.Block)
	if len(first.Stmts) != 1 {
		t.Errorf("expected the first import to inline the file's statement")
	}
	if len(second.Stmts) != 0 {
		t.Errorf("expected the repeated import to collapse to an empty block, got %d stmts", len(second.Stmts))
	}
}

func TestResolveMissingImportErrors(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.js")
	tree, err := jsparse.Parse(mainPath, `require('nope.js');`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := Resolve(tree, mainPath, Options{}, nil); err == nil {
		t.Fatalf("expected an error for a missing import")
	}
}
