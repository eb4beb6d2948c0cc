// Package optimize implements the tree-rewrite passes applied between
// parsing and emission: inline-function resolution and literal folding.
// Grounded on js2esi.node.base.Item.optimize and
// js2esi.node.function.FunctionDefinition.inlineInto, re-architected per
// the design notes onto ir.ProxyTable/ir.Resolve rather than in-place
// __dict__ rewriting.
package optimize

import (
	"fmt"
	"math"

	"github.com/robertkrimen/otto"

	"github.com/akamai/js2esi/errortypes"
	"github.com/akamai/js2esi/ir"
	"github.com/akamai/js2esi/jsemit"
)

const maxIterations = 1000

// Optimize rewrites tree according to level (0-9), returning the rewritten
// tree. Each level is strictly additive over the previous: an un-inline
// pass below 5, inline resolution at/above 5, literal folding at/above 3.
func Optimize(tree ir.Stmt, level int, file string) (ir.Stmt, error) {
	if level < 5 {
		unInline(tree)
	} else {
		resolved, err := resolveInlines(tree, file)
		if err != nil {
			return nil, err
		}
		tree = resolved.(ir.Stmt)
	}
	if level >= 3 {
		folded, err := foldLiterals(tree, file)
		if err != nil {
			return nil, err
		}
		tree = folded.(ir.Stmt)
	}
	return tree, nil
}

// unInline clears the inline flag on every FunctionDefinition in tree,
// in place (no rewrite needed since Inline is a plain bool field read by
// the emitters, not part of the proxy/resolve mechanism).
func unInline(tree ir.Node) {
	ir.Walk(tree, func(n ir.Node) {
		if fd, ok := n.(*ir.FunctionDefinition); ok {
			fd.Inline = false
		}
	})
}

// --- inline resolution ---

func findInlineDefs(tree ir.Node) map[string]*ir.FunctionDefinition {
	defs := map[string]*ir.FunctionDefinition{}
	ir.Walk(tree, func(n ir.Node) {
		if fd, ok := n.(*ir.FunctionDefinition); ok && fd.Inline {
			defs[fd.Name] = fd
		}
	})
	return defs
}

// callsToInline reports whether n contains any FunctionCall targeting a
// name in defs.
func callsToInline(n ir.Node, defs map[string]*ir.FunctionDefinition) bool {
	found := false
	ir.Walk(n, func(c ir.Node) {
		if fc, ok := c.(*ir.FunctionCall); ok {
			if _, ok := defs[fc.Name]; ok {
				found = true
			}
		}
	})
	return found
}

func resolveInlines(tree ir.Stmt, file string) (ir.Node, error) {
	defs := findInlineDefs(tree)
	ret := ir.Node(tree)

	count := 0
	changed := true
	for changed {
		count++
		if count > maxIterations {
			return nil, errortypes.NewStructureError(file, 0, 0,
				"resolving inlined functions appears to have entered an infinite loop")
		}
		changed = false
		proxies := ir.ProxyTable{}
		var inlineErr error
		for _, fdef := range defs {
			ir.Walk(fdef, func(n ir.Node) {
				if inlineErr != nil {
					return
				}
				fc, ok := n.(*ir.FunctionCall)
				if !ok {
					return
				}
				subfdef, ok := defs[fc.Name]
				if !ok {
					return
				}
				if callsToInline(subfdef, defs) {
					return // subfdef isn't self-contained yet; wait for a later pass
				}
				if err := inlineInto(subfdef, fc, proxies, file); err != nil {
					inlineErr = err
					return
				}
				changed = true
			})
		}
		if inlineErr != nil {
			return nil, inlineErr
		}
		if changed {
			ret = ir.Resolve(ret, proxies)
			defs = findInlineDefs(ret)
		}
	}

	for _, fdef := range defs {
		if callsToInline(fdef, defs) {
			return nil, errortypes.NewStructureError(file, 0, 0,
				fmt.Sprintf("recursive inlined function %s() detected", fdef.Name))
		}
	}

	for {
		proxies := ir.ProxyTable{}
		found := false
		var inlineErr error
		ir.Walk(ret, func(n ir.Node) {
			if found || inlineErr != nil {
				return
			}
			fc, ok := n.(*ir.FunctionCall)
			if !ok {
				return
			}
			subfdef, ok := defs[fc.Name]
			if !ok {
				return
			}
			if err := inlineInto(subfdef, fc, proxies, file); err != nil {
				inlineErr = err
				return
			}
			found = true
		})
		if inlineErr != nil {
			return nil, inlineErr
		}
		if !found {
			break
		}
		ret = ir.Resolve(ret, proxies)
	}

	// every call site is expanded; drop the inline definitions themselves.
	proxies := ir.ProxyTable{}
	for _, fdef := range findInlineDefs(ret) {
		proxies.SetProxy(fdef, &ir.BlockFragment{})
	}
	return ir.Resolve(ret, proxies), nil
}

// inlineInto applies the call-site restrictions and proxy wiring from
// js2esi.node.function.FunctionDefinition.inlineInto: the body must
// reduce to a single return expression, arg/param counts must line up
// (missing args covered by defaults), each argument must be a literal,
// function call, or simple variable, and the body may not reference
// ARGS.
func inlineInto(fdef *ir.FunctionDefinition, caller *ir.FunctionCall, proxies ir.ProxyTable, file string) error {
	body := ir.Node(fdef.Body)
	for {
		blk, ok := body.(*ir.Block)
		if !ok || len(blk.Stmts) != 1 {
			break
		}
		body = blk.Stmts[0]
	}
	ret, ok := body.(*ir.FunctionReturn)
	if !ok {
		return errortypes.NewStructureError(file, 0, 0,
			fmt.Sprintf("inlined function %s() body can currently only comprise a single return statement", fdef.Name))
	}
	expr := ret.Value

	if len(caller.Args) > len(fdef.Params) {
		plural := "s"
		if len(fdef.Params) == 1 {
			plural = ""
		}
		return errortypes.NewStructureError(file, 0, 0,
			fmt.Sprintf("inline function %s() takes at most %d argument%s (%d given)",
				fdef.Name, len(fdef.Params), plural, len(caller.Args)))
	}
	for idx := len(caller.Args); idx < len(fdef.Params); idx++ {
		if fdef.Params[idx].Default == nil {
			return errortypes.NewStructureError(file, 0, 0,
				fmt.Sprintf("call to inline function %s() does not provide a value for parameter %q (at index %d)",
					fdef.Name, fdef.Params[idx].Name, idx))
		}
	}
	for _, arg := range caller.Args {
		switch v := arg.(type) {
		case *ir.Literal, *ir.FunctionCall:
		case *ir.Variable:
			if v.Key != nil || v.Default != nil {
				return errortypes.NewStructureError(file, 0, 0,
					fmt.Sprintf("inline function %s() called with non-simple variable (i.e. with a subkey or a default)", fdef.Name))
			}
		default:
			return errortypes.NewStructureError(file, 0, 0,
				fmt.Sprintf("inline function %s() called with a type currently not allowed"+
					" (only literals, simple variables or function calls are allowed)", fdef.Name))
		}
	}

	copied := ir.DeepCopy(expr).(ir.Expr)
	vartab := map[string]ir.Expr{}
	for idx := range caller.Args {
		vartab[fdef.Params[idx].Name] = caller.Args[idx]
	}
	for idx := len(caller.Args); idx < len(fdef.Params); idx++ {
		vartab[fdef.Params[idx].Name] = fdef.Params[idx].Default
	}

	var argsErr error
	ir.Walk(copied, func(n ir.Node) {
		v, ok := n.(*ir.Variable)
		if !ok {
			return
		}
		if v.Name == "ARGS" {
			argsErr = errortypes.NewStructureError(file, 0, 0,
				fmt.Sprintf("inline function %s() cannot use variable \"ARGS\"", fdef.Name))
			return
		}
		repl, ok := vartab[v.Name]
		if !ok {
			return
		}
		proxies.SetProxy(v, ir.DeepCopy(repl))
	})
	if argsErr != nil {
		return argsErr
	}
	proxies.SetProxy(caller, copied)
	return nil
}

// --- literal folding ---

// foldLiterals collapses Operator nodes over same-typed Literal args for
// the arithmetic operators, to a fixed point (capped at maxIterations).
// Not is deliberately excluded (see DESIGN.md, Open Question 2).
func foldLiterals(tree ir.Stmt, file string) (ir.Node, error) {
	ret := ir.Node(tree)
	count := 0
	changed := true
	for changed {
		count++
		if count > maxIterations {
			return nil, errortypes.NewStructureError(file, 0, 0,
				"collapsing literals appears to have entered an infinite loop")
		}
		changed = false
		proxies := ir.ProxyTable{}
		ir.Walk(ret, func(n ir.Node) {
			op, ok := n.(*ir.Operator)
			if !ok {
				return
			}
			if !foldable(op.Op) {
				return
			}
			folded, ok := foldOperator(op)
			if !ok {
				return
			}
			proxies.SetProxy(op, folded)
			changed = true
		})
		if changed {
			ret = ir.Resolve(ret, proxies)
		}
	}
	return ret, nil
}

func foldable(op ir.OpKind) bool {
	switch op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod:
		return true
	default:
		return false
	}
}

// foldOperator evaluates op if every argument is a Literal of the same
// derived type. Rather than hand-rolling arithmetic by Go type switch,
// the folder hands op's own JS-dialect text (via jsemit, used here in
// isolation from any full program) to an embedded otto VM and reparses
// its result back into a Literal — the dialect's constant folding really
// is restricted-JS constant evaluation, so it is evaluated as such.
func foldOperator(op *ir.Operator) (ir.Expr, bool) {
	if len(op.Args) == 0 {
		return nil, false
	}
	var typ ir.Type
	for i, a := range op.Args {
		lit, ok := a.(*ir.Literal)
		if !ok {
			return nil, false
		}
		if i == 0 {
			typ = lit.Type()
		} else if lit.Type() != typ {
			return nil, false
		}
	}
	// string folding is restricted to Add (concatenation); every other
	// operator over same-typed string literals isn't arithmetic at all.
	if typ == ir.TypeString && op.Op != ir.OpAdd {
		return nil, false
	}

	src := jsemit.ExprString(op)
	vm := otto.New()
	val, err := vm.Run(src)
	if err != nil {
		return nil, false
	}
	folded, ok := literalFromOtto(op.Position(), val)
	if !ok {
		return nil, false
	}
	return folded, true
}

// literalFromOtto converts an otto.Value back to an ir.Literal, rejecting
// non-finite numeric results (a div/mod by zero produces Infinity/NaN in
// JS semantics, which the dialect has no literal form for; that case is
// left unfolded rather than emitting a value that can't round-trip).
func literalFromOtto(pos ir.Pos, val otto.Value) (*ir.Literal, bool) {
	switch {
	case val.IsBoolean():
		b, err := val.ToBoolean()
		if err != nil {
			return nil, false
		}
		return ir.NewLiteral(pos, b), true
	case val.IsString():
		s, err := val.ToString()
		if err != nil {
			return nil, false
		}
		return ir.NewLiteral(pos, s), true
	case val.IsNumber():
		f, err := val.ToFloat()
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, false
		}
		return ir.NewLiteral(pos, f), true
	default:
		return nil, false
	}
}

