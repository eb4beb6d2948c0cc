package ir

// ProxyTable is the side-table of node-id -> replacement node used by the
// optimizer's rewrite passes. Per spec.md §9's design note, the IR itself
// never mutates a node in place; a rewrite instead records a replacement
// here, and a single Resolve walk materialises the final tree.
type ProxyTable map[int64]Node

// SetProxy records that n should be replaced by target wherever it is
// encountered during Resolve. Setting a proxy for a node that already has
// one replaces the earlier entry; neither ProxyTable nor its callers check
// for it.
func (t ProxyTable) SetProxy(n Node, target Node) {
	t[n.ID()] = target
}

// Resolve walks n and its descendants, replacing every node for which t
// holds a proxy with the (transitively) resolved proxy target, and
// otherwise rebuilding n with its children resolved. Resolve is idempotent:
// resolving an already-resolved tree against the same table returns an
// equivalent tree, since a fully resolved tree contains no node whose ID
// appears as a key in t.
func Resolve(n Node, t ProxyTable) Node {
	if n == nil {
		return nil
	}
	if target, ok := t[n.ID()]; ok {
		return Resolve(target, t)
	}
	switch v := n.(type) {
	case *Literal:
		return v
	case *Variable:
		return &Variable{base: v.base, Name: v.Name,
			Key:     resolveExpr(v.Key, t),
			Default: resolveExpr(v.Default, t)}
	case *FunctionCall:
		return &FunctionCall{base: v.base, Name: v.Name, Debug: v.Debug,
			Args: resolveExprs(v.Args, t)}
	case *Operator:
		return &Operator{base: v.base, Op: v.Op, MatchName: v.MatchName,
			Args: resolveExprs(v.Args, t)}
	case *List:
		return &List{base: v.base, Items: resolveExprs(v.Items, t)}
	case *Dictionary:
		entries := make([]DictEntry, len(v.Entries))
		for i, e := range v.Entries {
			entries[i] = DictEntry{Key: resolveExpr(e.Key, t), Value: resolveExpr(e.Value, t)}
		}
		return &Dictionary{base: v.base, Entries: entries}
	case *Block:
		return &Block{base: v.base, Explicit: v.Explicit, Stmts: resolveStmts(v.Stmts, t)}
	case *BlockFragment:
		return &BlockFragment{base: v.base, Stmts: resolveStmts(v.Stmts, t)}
	case *Assign:
		return &Assign{base: v.base, Name: v.Name,
			Key: resolveExpr(v.Key, t), Value: resolveExpr(v.Value, t)}
	case *If:
		return &If{base: v.base, Test: resolveExpr(v.Test, t),
			Match: resolveStmt(v.Match, t), NoMatch: resolveStmt(v.NoMatch, t),
			Debug: resolveExpr(v.Debug, t)}
	case *ForEach:
		return &ForEach{base: v.base, Item: v.Item,
			Collection: resolveExpr(v.Collection, t), Body: resolveStmt(v.Body, t)}
	case *Break:
		return v
	case *Try:
		return &Try{base: v.base, Attempt: resolveStmt(v.Attempt, t), Except: resolveStmt(v.Except, t)}
	case *FunctionParam:
		return &FunctionParam{base: v.base, Name: v.Name, Default: resolveExpr(v.Default, t)}
	case *FunctionDefinition:
		params := make([]*FunctionParam, len(v.Params))
		for i, p := range v.Params {
			params[i] = Resolve(p, t).(*FunctionParam)
		}
		return &FunctionDefinition{base: v.base, Name: v.Name, Inline: v.Inline,
			Params: params, Body: resolveStmt(v.Body, t)}
	case *FunctionReturn:
		return &FunctionReturn{base: v.base, Value: resolveExpr(v.Value, t)}
	case *Include:
		a := v.Attrs
		a.Alt = resolveExpr(a.Alt, t)
		a.Dca = resolveExpr(a.Dca, t)
		a.OnError = resolveExpr(a.OnError, t)
		a.MaxWait = resolveExpr(a.MaxWait, t)
		a.Ttl = resolveExpr(a.Ttl, t)
		a.NoStore = resolveExpr(a.NoStore, t)
		a.Method = resolveExpr(a.Method, t)
		a.Entity = resolveExpr(a.Entity, t)
		a.AppendHeader = resolveExprs(a.AppendHeader, t)
		a.RemoveHeader = resolveExprs(a.RemoveHeader, t)
		a.SetHeader = resolveExprs(a.SetHeader, t)
		return &Include{base: v.base, Src: resolveExpr(v.Src, t), Attrs: a, Eval: v.Eval}
	case *Import:
		return &Import{base: v.base, Src: v.Src, Force: v.Force, Inline: resolveStmt(v.Inline, t)}
	case *Output:
		return &Output{base: v.base, Raw: v.Raw, Vars: v.Vars, Stmts: resolveExprs(v.Stmts, t)}
	case *Comment:
		return v
	case *Debug:
		return &Debug{base: v.base, Message: resolveExpr(v.Message, t)}
	case *DebugBlock:
		return &DebugBlock{base: v.base, Body: resolveStmt(v.Body, t)}
	case *IfDebug:
		return &IfDebug{base: v.base, Body: resolveStmt(v.Body, t)}
	case *Log:
		return &Log{base: v.base, Message: resolveExpr(v.Message, t)}
	default:
		return v
	}
}

func resolveExpr(e Expr, t ProxyTable) Expr {
	if e == nil {
		return nil
	}
	r := Resolve(e, t)
	if r == nil {
		return nil
	}
	return r.(Expr)
}

func resolveStmt(s Stmt, t ProxyTable) Stmt {
	if s == nil {
		return nil
	}
	r := Resolve(s, t)
	if r == nil {
		return nil
	}
	return r.(Stmt)
}

func resolveExprs(in []Expr, t ProxyTable) []Expr {
	if in == nil {
		return nil
	}
	out := make([]Expr, len(in))
	for i, e := range in {
		out[i] = resolveExpr(e, t)
	}
	return out
}

func resolveStmts(in []Stmt, t ProxyTable) []Stmt {
	if in == nil {
		return nil
	}
	out := make([]Stmt, len(in))
	for i, s := range in {
		out[i] = resolveStmt(s, t)
	}
	return out
}

// Children returns n's direct child Nodes, or nil for a leaf. It is the
// generic entry point used by Walk (and so by optimizer passes) and by the
// CLI's tree dump instead of type-switching at every call site.
func Children(n Node) []Node {
	if p, ok := n.(ParentNode); ok {
		return p.Children()
	}
	return nil
}

// Walk calls visit for n and every descendant, preorder.
func Walk(n Node, visit func(Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range Children(n) {
		Walk(c, visit)
	}
}

// DeepCopy clones n and its descendants, assigning fresh IDs throughout.
// Used by the optimizer's inline expansion, which must not alias an
// argument expression across multiple substitution sites (spec.md §3
// Lifecycle invariant).
func DeepCopy(n Node) Node {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *Literal:
		return NewLiteral(v.pos, v.Value)
	case *Variable:
		return &Variable{base: newBase(v.pos), Name: v.Name,
			Key: deepCopyExpr(v.Key), Default: deepCopyExpr(v.Default)}
	case *FunctionCall:
		return &FunctionCall{base: newBase(v.pos), Name: v.Name, Debug: v.Debug,
			Args: deepCopyExprs(v.Args)}
	case *Operator:
		var mn *string
		if v.MatchName != nil {
			s := *v.MatchName
			mn = &s
		}
		return &Operator{base: newBase(v.pos), Op: v.Op, MatchName: mn, Args: deepCopyExprs(v.Args)}
	case *List:
		return &List{base: newBase(v.pos), Items: deepCopyExprs(v.Items)}
	case *Dictionary:
		entries := make([]DictEntry, len(v.Entries))
		for i, e := range v.Entries {
			entries[i] = DictEntry{Key: deepCopyExpr(e.Key), Value: deepCopyExpr(e.Value)}
		}
		return &Dictionary{base: newBase(v.pos), Entries: entries}
	case *Block:
		return &Block{base: newBase(v.pos), Explicit: v.Explicit, Stmts: deepCopyStmts(v.Stmts)}
	case *BlockFragment:
		return &BlockFragment{base: newBase(v.pos), Stmts: deepCopyStmts(v.Stmts)}
	case *Assign:
		return &Assign{base: newBase(v.pos), Name: v.Name, Key: deepCopyExpr(v.Key), Value: deepCopyExpr(v.Value)}
	case *If:
		return &If{base: newBase(v.pos), Test: deepCopyExpr(v.Test),
			Match: deepCopyStmt(v.Match), NoMatch: deepCopyStmt(v.NoMatch), Debug: deepCopyExpr(v.Debug)}
	case *ForEach:
		return &ForEach{base: newBase(v.pos), Item: v.Item,
			Collection: deepCopyExpr(v.Collection), Body: deepCopyStmt(v.Body)}
	case *Break:
		return NewBreak(v.pos)
	case *Try:
		return &Try{base: newBase(v.pos), Attempt: deepCopyStmt(v.Attempt), Except: deepCopyStmt(v.Except)}
	case *FunctionParam:
		return &FunctionParam{base: newBase(v.pos), Name: v.Name, Default: deepCopyExpr(v.Default)}
	case *FunctionDefinition:
		params := make([]*FunctionParam, len(v.Params))
		for i, p := range v.Params {
			params[i] = DeepCopy(p).(*FunctionParam)
		}
		return &FunctionDefinition{base: newBase(v.pos), Name: v.Name, Inline: v.Inline,
			Params: params, Body: deepCopyStmt(v.Body)}
	case *FunctionReturn:
		return &FunctionReturn{base: newBase(v.pos), Value: deepCopyExpr(v.Value)}
	case *Include:
		a := v.Attrs
		a.Alt = deepCopyExpr(a.Alt)
		a.Dca = deepCopyExpr(a.Dca)
		a.OnError = deepCopyExpr(a.OnError)
		a.MaxWait = deepCopyExpr(a.MaxWait)
		a.Ttl = deepCopyExpr(a.Ttl)
		a.NoStore = deepCopyExpr(a.NoStore)
		a.Method = deepCopyExpr(a.Method)
		a.Entity = deepCopyExpr(a.Entity)
		a.AppendHeader = deepCopyExprs(a.AppendHeader)
		a.RemoveHeader = deepCopyExprs(a.RemoveHeader)
		a.SetHeader = deepCopyExprs(a.SetHeader)
		return &Include{base: newBase(v.pos), Src: deepCopyExpr(v.Src), Attrs: a, Eval: v.Eval}
	case *Import:
		return &Import{base: newBase(v.pos), Src: v.Src, Force: v.Force, Inline: deepCopyStmt(v.Inline)}
	case *Output:
		return &Output{base: newBase(v.pos), Raw: v.Raw, Vars: v.Vars, Stmts: deepCopyExprs(v.Stmts)}
	case *Comment:
		return &Comment{base: newBase(v.pos), Text: v.Text}
	case *Debug:
		return &Debug{base: newBase(v.pos), Message: deepCopyExpr(v.Message)}
	case *DebugBlock:
		return &DebugBlock{base: newBase(v.pos), Body: deepCopyStmt(v.Body)}
	case *IfDebug:
		return &IfDebug{base: newBase(v.pos), Body: deepCopyStmt(v.Body)}
	case *Log:
		return &Log{base: newBase(v.pos), Message: deepCopyExpr(v.Message)}
	default:
		return v
	}
}

func deepCopyExpr(e Expr) Expr {
	if e == nil {
		return nil
	}
	return DeepCopy(e).(Expr)
}

func deepCopyStmt(s Stmt) Stmt {
	if s == nil {
		return nil
	}
	return DeepCopy(s).(Stmt)
}

func deepCopyExprs(in []Expr) []Expr {
	if in == nil {
		return nil
	}
	out := make([]Expr, len(in))
	for i, e := range in {
		out[i] = deepCopyExpr(e)
	}
	return out
}

func deepCopyStmts(in []Stmt) []Stmt {
	if in == nil {
		return nil
	}
	out := make([]Stmt, len(in))
	for i, s := range in {
		out[i] = deepCopyStmt(s)
	}
	return out
}
