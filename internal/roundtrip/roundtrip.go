// Package roundtrip implements the fixed-point property checks from
// spec.md §8, used only from _test.go files across the module (never
// imported by cmd/js2esi or internal/cli). Grounded on the "parse, emit,
// re-parse, diff" shape of original_source/js2esi/tools/test.py, kept as
// an internal test helper rather than a CLI feature per SPEC_FULL.md.
package roundtrip

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/akamai/js2esi/esiemit"
	"github.com/akamai/js2esi/esiparse"
	"github.com/akamai/js2esi/ir"
	"github.com/akamai/js2esi/jsemit"
	"github.com/akamai/js2esi/jsparse"
)

// CompileJS parses JS-dialect source js and emits its ESI translation,
// with no import resolution or optimization (callers needing those
// stages run them explicitly before diffing).
func CompileJS(name, js string) (string, error) {
	tree, err := jsparse.Parse(name, js)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	ctxt := ir.NewContext(&b)
	ctxt.Filename = name
	if err := esiemit.Emit(ctxt, tree); err != nil {
		return "", err
	}
	return b.String(), nil
}

// DecompileESI parses ESI source esi and emits its JS-dialect
// translation.
func DecompileESI(name, esi string) (string, error) {
	tree, err := esiparse.Parse(name, esi)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	jsemit.Emit(ir.NewContext(&b), tree)
	return b.String(), nil
}

// FixedPoint checks spec.md §8's round-trip convergence property:
// compile(decompile(compile(J))) == compile(J). Returns a diff string
// (empty if the property holds) rendered via go-diff for a readable
// test-failure message.
func FixedPoint(name, js string) (string, error) {
	esi1, err := CompileJS(name, js)
	if err != nil {
		return "", fmt.Errorf("first compile: %w", err)
	}
	js2, err := DecompileESI(name, esi1)
	if err != nil {
		return "", fmt.Errorf("decompile: %w", err)
	}
	esi2, err := CompileJS(name, js2)
	if err != nil {
		return "", fmt.Errorf("second compile: %w", err)
	}
	if esi1 == esi2 {
		return "", nil
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(esi1, esi2, false)
	return dmp.DiffPrettyText(diffs), nil
}

// nodeCmpOpts ignores every ir node kind's unexported base (id, pos):
// node identity and source position are irrelevant to the structural
// equality the idempotence/monotonicity properties care about.
var nodeCmpOpts = cmpopts.IgnoreUnexported(
	ir.Literal{}, ir.Variable{}, ir.FunctionCall{}, ir.List{}, ir.Dictionary{},
	ir.Block{}, ir.BlockFragment{}, ir.Assign{}, ir.If{}, ir.ForEach{}, ir.Break{},
	ir.Try{}, ir.FunctionParam{}, ir.FunctionDefinition{}, ir.FunctionReturn{},
	ir.Include{}, ir.Import{}, ir.Output{}, ir.Comment{}, ir.Debug{},
	ir.DebugBlock{}, ir.IfDebug{}, ir.Log{}, ir.Operator{},
)

// TreeEqual reports whether two IR trees are structurally identical,
// ignoring node identity. Used for the proxy-resolution-idempotence and
// optimizer-monotonicity properties from spec.md §8.
func TreeEqual(a, b ir.Node) bool {
	return cmp.Equal(a, b, nodeCmpOpts)
}

// TreeDiff is TreeEqual's companion for test failure messages.
func TreeDiff(a, b ir.Node) string {
	return cmp.Diff(a, b, nodeCmpOpts)
}
