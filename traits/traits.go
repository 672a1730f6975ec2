// Package traits implements the Trait Resolver (spec.md §4.5, C5):
// resolving a SigRef at a concrete instantiation type to either a matching
// instance member or the signature's default body.
//
// Grounded on internal/symbols/symbol_table_implementations.go's
// FindMatchingImplementation (rename each candidate instance's target type,
// unify it against the demanded type, first/only match wins) and
// internal/symbols/symbol_table_traits.go's HasTraitDefaultMethod (fall
// back to the signature's own default body). The teacher rejects
// overlapping instances at RegisterImplementation time, so by the time its
// resolver runs at most one candidate can match; this resolver still
// defends that invariant itself (spec.md §4.5 item 3), since nothing in
// this pass's External AST Interface guarantees the upstream registration
// discipline was actually enforced on the Root it was handed.
package traits

import (
	"github.com/langforge/monomorph/ice"
	"github.com/langforge/monomorph/ir"
	"github.com/langforge/monomorph/ir/unify"
)

// Resolution is the outcome of resolving a signature at a concrete type:
// either a concrete instance member or the signature's default body.
type Resolution struct {
	// Member is non-nil when an instance matched.
	Member *ir.TopDef
	// Default is non-nil when no instance matched but the signature
	// carries a default body.
	Default ir.Expr
	// MatchedType is the instance target type that matched, for
	// diagnostics; zero value when Default was used.
	MatchedType ir.Type
}

// Resolve dispatches sig at the (already erased) type t against root's
// trait instances, per spec.md §4.5:
//  1. collect every Instance of sig.Trait whose target type unifies with t;
//  2. exactly one match picks that instance's member named sig.MethodName;
//  3. more than one match is an internal error (overlap the registry
//     should have already prevented);
//  4. zero matches falls back to the signature's default body;
//  5. zero matches and no default is an internal error.
func Resolve(sig *ir.Sig, t ir.Type, root *ir.Root, at ir.Location) Resolution {
	candidates := root.Instances[sig.Trait.Key()]

	var matches []Resolution
	for _, inst := range candidates {
		res, err := unify.Try(inst.Type, t, root.EqEnv, unify.NoRigid)
		if err != nil {
			continue
		}
		_ = res // the mapping itself is not needed: we only need match/no-match.
		member, ok := findMember(inst, sig.MethodName)
		if !ok {
			continue
		}
		matches = append(matches, Resolution{Member: member, MatchedType: inst.Type})
	}

	switch len(matches) {
	case 1:
		return matches[0]
	case 0:
		if sig.DefaultBody != nil {
			return Resolution{Default: sig.DefaultBody}
		}
		ice.Raise(ice.TraitResolutionFailure, at.ICE(),
			"no instance and no default body for trait signature",
			sig.Sym.String(), t.String())
	default:
		ice.Raise(ice.TraitResolutionFailure, at.ICE(),
			"more than one instance matches trait signature",
			sig.Sym.String(), t.String())
	}
	panic("unreachable") // ice.Raise always panics.
}

func findMember(inst *ir.Instance, name string) (*ir.TopDef, bool) {
	for i := range inst.Members {
		if inst.Members[i].Name == name {
			return &inst.Members[i].Def, true
		}
	}
	return nil, false
}
