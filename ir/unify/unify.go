// Package unify implements the Unifier Adapter (spec.md §4.3, C3):
// producing a Strict Substitution that unifies a declared polymorphic
// scheme's base type with a concrete demanded type, panicking on failure
// because post-type-check this phase can only encounter unifiable pairs
// (spec.md §4.3 "panic on failure").
//
// Grounded on internal/typesystem/unify.go's unifyInternal: co-inductive
// cycle-checked structural unification with a Resolver seam for alias
// expansion. This adapter generalizes that seam to ir/EqEnv-backed
// associated-type reduction and adds a rigidity environment (spec.md §4.6
// TypeMatch step 1) the teacher's unifier has no equivalent of, since the
// teacher never needed to make a pattern-matching type test conservative.
package unify

import (
	"fmt"
	"sort"

	"github.com/langforge/monomorph/ice"
	"github.com/langforge/monomorph/ir"
	"github.com/langforge/monomorph/ir/subst"
)

// Rigid marks a set of type variable names as non-unifiable with anything
// but themselves (spec.md glossary "Rigidity"; §4.6 TypeMatch step 1).
type Rigid map[string]bool

// NoRigid is the empty rigidity environment used by ordinary scheme
// instantiation (spec.md §4.3 "an empty rigidity environment").
var NoRigid = Rigid{}

// Result is the outcome of a successful unification: the raw mapping plus
// any equality constraints unification could not immediately discharge
// (spec.md §9 Open Question — recorded, not acted upon).
type Result struct {
	Mapping   subst.Raw
	Residuals []ir.EqConstraint
}

// Try attempts to unify t1 (the declared/expected side) with t2 (the
// demanded/actual side) and returns an error rather than panicking,
// for callers — like TypeMatch rule dispatch (spec.md §4.6) — that treat
// failure as "try the next alternative" rather than an invariant
// violation.
func Try(t1, t2 ir.Type, eqEnv *ir.EqEnv, rigid Rigid) (Result, error) {
	acc := subst.Raw{}
	var residuals []ir.EqConstraint
	if err := unify(t1, t2, eqEnv, rigid, acc, &residuals, nil); err != nil {
		return Result{}, err
	}
	return Result{Mapping: acc, Residuals: residuals}, nil
}

// Unify is the C3 entry point: unify a declared scheme base against a
// concrete demanded type, panicking with an ice.Error on failure (spec.md
// §4.3). The returned StrictSubst wraps the resulting mapping.
func Unify(schemeBase, demanded ir.Type, eqEnv *ir.EqEnv, at ir.Location) (subst.StrictSubst, []ir.EqConstraint) {
	res, err := Try(schemeBase, demanded, eqEnv, NoRigid)
	if err != nil {
		ice.Raise(ice.UnificationFailure, at.ICE(),
			"declared scheme does not unify with demanded type: "+err.Error(),
			schemeBase.String(), demanded.String())
	}
	return subst.FromRaw(res.Mapping, eqEnv), res.Residuals
}

type pair struct{ a, b string }

func unify(t1, t2 ir.Type, eqEnv *ir.EqEnv, rigid Rigid, acc subst.Raw, residuals *[]ir.EqConstraint, visited []pair) error {
	t1 = deref(t1, acc)
	t2 = deref(t2, acc)

	// TAlias unifies through its expansion: the alias wrapper itself
	// carries no independent identity once expanded.
	if a, ok := t1.(ir.TAlias); ok {
		return unify(a.Expansion, t2, eqEnv, rigid, acc, residuals, visited)
	}
	if a, ok := t2.(ir.TAlias); ok {
		return unify(t1, a.Expansion, eqEnv, rigid, acc, residuals, visited)
	}

	key := pair{a: t1.String(), b: t2.String()}
	for _, p := range visited {
		if p == key {
			return nil // co-inductive cycle: already assumed equal.
		}
	}
	visited = append(visited, key)

	v1, v1ok := t1.(ir.TVar)
	v2, v2ok := t2.(ir.TVar)

	switch {
	case v1ok && v2ok && v1.Name == v2.Name:
		return nil
	case v1ok && rigid[v1.Name]:
		return fmt.Errorf("rigid type variable %s cannot unify with %s", v1.Name, t2.String())
	case v2ok && rigid[v2.Name]:
		return fmt.Errorf("rigid type variable %s cannot unify with %s", v2.Name, t1.String())
	case v1ok:
		return bind(v1, t2, acc)
	case v2ok:
		return bind(v2, t1, acc)
	}

	switch a := t1.(type) {
	case ir.TCon:
		b, ok := t2.(ir.TCon)
		if !ok || a.Name != b.Name {
			return fmt.Errorf("cannot unify %s with %s", t1.String(), t2.String())
		}
		return nil

	case ir.TApp:
		b, ok := t2.(ir.TApp)
		if !ok {
			return fmt.Errorf("cannot unify %s with %s", t1.String(), t2.String())
		}
		if err := unify(a.Fn, b.Fn, eqEnv, rigid, acc, residuals, visited); err != nil {
			return err
		}
		return unify(a.Arg, b.Arg, eqEnv, rigid, acc, residuals, visited)

	case ir.TAssoc:
		b, ok := t2.(ir.TAssoc)
		if ok && a.Sym.Key() == b.Sym.Key() {
			// Unifiable arguments make the applications equal; arguments
			// that do not unify do not make them unequal (an associated
			// type need not be injective), so that case falls through.
			trial := make(subst.Raw, len(acc))
			for k, v := range acc {
				trial[k] = v
			}
			var trialResiduals []ir.EqConstraint
			if err := unify(a.Arg, b.Arg, eqEnv, rigid, trial, &trialResiduals, visited); err == nil {
				for k, v := range trial {
					acc[k] = v
				}
				*residuals = append(*residuals, trialResiduals...)
				return nil
			}
		}
		// Try reducing one step before giving up.
		if reduced, ok := eqEnv.Reduce(a.Sym, deref(a.Arg, acc)); ok {
			return unify(reduced, t2, eqEnv, rigid, acc, residuals, visited)
		}
		// Can't immediately decide; record as a residual equality
		// constraint rather than failing outright (spec.md §9).
		*residuals = append(*residuals, ir.EqConstraint{Left: t1, Right: t2})
		return nil

	case ir.TRowSet:
		b, ok := t2.(ir.TRowSet)
		if !ok || !sameLabelSet(a.Labels, b.Labels) || a.Negated != b.Negated {
			return fmt.Errorf("cannot unify row %s with %s", t1.String(), t2.String())
		}
		return nil

	case ir.TCaseSet:
		b, ok := t2.(ir.TCaseSet)
		if !ok || a.Enum != b.Enum || !sameLabelSet(a.Labels, b.Labels) {
			return fmt.Errorf("cannot unify case-set %s with %s", t1.String(), t2.String())
		}
		return nil
	}

	if t2b, ok := t2.(ir.TAssoc); ok {
		if reduced, ok := eqEnv.Reduce(t2b.Sym, deref(t2b.Arg, acc)); ok {
			return unify(t1, reduced, eqEnv, rigid, acc, residuals, visited)
		}
		*residuals = append(*residuals, ir.EqConstraint{Left: t1, Right: t2})
		return nil
	}

	return fmt.Errorf("cannot unify %s with %s", t1.String(), t2.String())
}

func deref(t ir.Type, acc subst.Raw) ir.Type {
	for {
		v, ok := t.(ir.TVar)
		if !ok {
			return t
		}
		next, ok := acc[v.Name]
		if !ok {
			return t
		}
		t = next
	}
}

func bind(v ir.TVar, t ir.Type, acc subst.Raw) error {
	if occurs(v.Name, t, acc) {
		return fmt.Errorf("occurs check failed: %s occurs in %s", v.Name, t.String())
	}
	acc[v.Name] = t
	return nil
}

func occurs(name string, t ir.Type, acc subst.Raw) bool {
	t = deref(t, acc)
	for _, fv := range t.FreeTypeVars() {
		if fv.Name == name {
			return true
		}
	}
	return false
}

func sameLabelSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := append([]string{}, a...), append([]string{}, b...)
	sort.Strings(sa)
	sort.Strings(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}
