package specialize

import "github.com/langforge/monomorph/ir"

// applyRaw substitutes bound type variables from raw but, unlike
// ir/subst's StrictSubst, leaves any variable raw does not cover exactly
// as it is rather than defaulting it by kind. TypeMatch's rule-dispatch
// test (spec.md §4.6) needs this non-defaulting form: a scrutinee type
// variable left generic must stay a distinguishable variable so it can be
// marked rigid, not collapse into the same default every other
// unconstrained variable collapses to.
func applyRaw(t ir.Type, raw map[string]ir.Type) ir.Type {
	switch tt := t.(type) {
	case ir.TVar:
		if repl, ok := raw[tt.Name]; ok {
			return repl
		}
		return tt
	case ir.TApp:
		return ir.TApp{Fn: applyRaw(tt.Fn, raw), Arg: applyRaw(tt.Arg, raw)}
	case ir.TAlias:
		args := make([]ir.Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = applyRaw(a, raw)
		}
		return ir.TAlias{Sym: tt.Sym, Args: args, Expansion: applyRaw(tt.Expansion, raw)}
	case ir.TAssoc:
		return ir.TAssoc{Sym: tt.Sym, Arg: applyRaw(tt.Arg, raw), Loc: tt.Loc}
	default:
		return t
	}
}
