// Package importresolve walks a parsed IR tree resolving require()
// directives into inline subtrees, recursively. Grounded on
// js2esi.tools.main.resolveImports.
package importresolve

import (
	"os"
	"path/filepath"

	"github.com/akamai/js2esi/errortypes"
	"github.com/akamai/js2esi/ir"
	"github.com/akamai/js2esi/jsparse"
)

// Options configures one resolution pass.
type Options struct {
	// Lib is the ordered list of directories searched for an import, in
	// addition to the importing file's own directory (tried last, per
	// the original's `context.lib + [dirname(frompath)]` order). Entries
	// containing a glob segment (`*`/`?`) are expanded via filepath.Glob
	// before being searched, per the glob2re-inspired -L behavior.
	Lib []string

	// OnTrace, if set, receives a human-readable line for every import
	// attempt (successful or not), mirroring the original's -v tracing.
	OnTrace func(string)
}

// libDirs expands any glob segments in opts.Lib into concrete
// directories, preserving order and dropping non-matching patterns
// silently (a glob that matches nothing is not an error; a literal
// directory that doesn't exist is surfaced only if actually needed).
func libDirs(opts Options) []string {
	var out []string
	for _, entry := range opts.Lib {
		if !containsGlobMeta(entry) {
			out = append(out, entry)
			continue
		}
		matches, err := filepath.Glob(entry)
		if err != nil {
			continue
		}
		out = append(out, matches...)
	}
	return out
}

func containsGlobMeta(s string) bool {
	for _, r := range s {
		if r == '*' || r == '?' || r == '[' {
			return true
		}
	}
	return false
}

// Resolve walks tree depth-first, resolving every unresolved Import it
// finds. frompath is the absolute or relative path of the file tree was
// parsed from (used to derive the final fallback search directory and to
// report positions). seen tracks the realpath of every import already
// inlined this compile, so a repeated non-force import becomes an empty
// Block rather than being re-parsed (spec.md's per-compile dedup set).
func Resolve(tree ir.Stmt, frompath string, opts Options, seen map[string]bool) error {
	if seen == nil {
		seen = map[string]bool{}
	}
	var resolveErr error
	ir.Walk(tree, func(n ir.Node) {
		if resolveErr != nil {
			return
		}
		imp, ok := n.(*ir.Import)
		if !ok || imp.Inline != nil {
			return
		}
		if err := resolveOne(imp, frompath, opts, seen); err != nil {
			resolveErr = err
		}
	})
	return resolveErr
}

func resolveOne(imp *ir.Import, frompath string, opts Options, seen map[string]bool) error {
	dirs := append(append([]string{}, libDirs(opts)...), filepath.Dir(frompath))
	var tried []string
	var found string
	for _, dir := range dirs {
		path := filepath.Join(dir, imp.Src)
		tried = append(tried, path)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			found = path
			break
		}
		if opts.OnTrace != nil {
			opts.OnTrace("tried \"" + path + "\" and failed: file not found")
		}
	}
	if found == "" {
		return errortypes.NewImportNotFound(frompath, 0, 0, imp.Src, tried)
	}

	realpath, err := filepath.Abs(found)
	if err != nil {
		realpath = found
	}
	if !imp.Force && seen[realpath] {
		if opts.OnTrace != nil {
			opts.OnTrace("skipping import of \"" + found + "\" (already imported)")
		}
		imp.Inline = &ir.Block{}
		return nil
	}

	contents, err := os.ReadFile(found)
	if err != nil {
		return errortypes.NewImportNotFound(frompath, 0, 0, imp.Src, tried)
	}
	if opts.OnTrace != nil {
		opts.OnTrace("importing \"" + found + "\"...")
	}
	subtree, err := jsparse.Parse(found, string(contents))
	if err != nil {
		return err
	}
	seen[realpath] = true
	if err := Resolve(subtree, found, opts, seen); err != nil {
		return err
	}
	imp.Inline = subtree
	return nil
}
