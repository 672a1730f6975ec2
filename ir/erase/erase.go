// Package erase implements the Type Eraser (spec.md §4.1, C1): normalizing
// a fully-substituted type into its erased canonical form, used to key the
// specialization registry's memo and as the unification target for
// instance/default dispatch.
//
// Grounded on internal/typesystem/kind_checker.go's KindCheck (a recursive,
// kind-directed type-switch that normalizes as it validates) and on the
// monomorphization-specific defaulting behavior internal/typesystem/types.go
// already special-cases inside TCon.Apply ("Allow substitution of TCon if it
// matches a key... required for Monomorphization where generic type
// parameters are represented as Rigid TCons") — pulled out here into its own
// named pass, per spec.md's C1/C2 split.
package erase

import "github.com/langforge/monomorph/ir"

// Erase normalizes t into its erased form per spec.md §4.1.
func Erase(t ir.Type, eqEnv *ir.EqEnv) ir.Type {
	switch tt := t.(type) {
	case ir.TVar:
		return ir.Default(tt.K)

	case ir.TCon:
		if tt.IsConcreteEffect() {
			return ir.EffImpure
		}
		return tt

	case ir.TApp:
		return ir.TApp{Fn: Erase(tt.Fn, eqEnv), Arg: Erase(tt.Arg, eqEnv)}

	case ir.TAlias:
		args := make([]ir.Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = Erase(a, eqEnv)
		}
		return ir.TAlias{Sym: tt.Sym, Args: args, Expansion: Erase(tt.Expansion, eqEnv)}

	case ir.TAssoc:
		arg := Erase(tt.Arg, eqEnv)
		reduced, ok := eqEnv.Reduce(tt.Sym, arg)
		if !ok {
			raiseAssocFailure(tt.Sym, arg, tt.Loc)
		}
		// Reduce one step, per spec.md §4.1 ("reduce one step through
		// eqEnv"); the reduced type may itself still need erasing (e.g.
		// it may mention a now-free variable).
		return Erase(reduced, eqEnv)

	case ir.TRowSet, ir.TCaseSet:
		return tt

	default:
		return t
	}
}
