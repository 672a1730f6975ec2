// Package subst implements the Strict Substitution (spec.md §4.2, C2):
// applying a type-var mapping both substitutes bound variables and
// defaults any variable the mapping doesn't cover, reduces associated
// types through the equality environment, and simplifies the Boolean/
// case-set algebra as concrete operator constants are revealed.
//
// Grounded on internal/typesystem/types.go's Subst/Compose and its
// ApplyWithCycleCheck switch (one case per Type constructor, structural
// recursion, explicit flattening rules) — generalized to ir's five-kind,
// five-constructor Type sum, with the teacher's non-defaulting behavior
// turned into StrictSubst's defaulting-on-miss per spec.md §4.2 item 1.
package subst

import (
	"github.com/langforge/monomorph/ir"
)

// Raw is a plain, non-defaulting type-var substitution: the underlying
// mapping StrictSubst wraps. Spec.md §4.2's "raw accessor" exposes exactly
// this, "needed only for type-match unification" (§4.6).
type Raw map[string]ir.Type

// StrictSubst wraps a Raw mapping plus the equality environment needed to
// reduce associated types (spec.md §4.2).
type StrictSubst struct {
	mapping Raw
	eqEnv   *ir.EqEnv
}

// Empty returns a StrictSubst with no bindings (spec.md §4.2
// "Construction: empty").
func Empty(eqEnv *ir.EqEnv) StrictSubst {
	return StrictSubst{mapping: Raw{}, eqEnv: eqEnv}
}

// FromRaw wraps an existing raw mapping (e.g. the result of unification)
// in a StrictSubst, without copying it.
func FromRaw(mapping Raw, eqEnv *ir.EqEnv) StrictSubst {
	if mapping == nil {
		mapping = Raw{}
	}
	return StrictSubst{mapping: mapping, eqEnv: eqEnv}
}

// Extend returns a copy of s with v bound to t (spec.md §4.2 "extend(var,
// type) (adds one binding)").
func (s StrictSubst) Extend(v string, t ir.Type) StrictSubst {
	next := make(Raw, len(s.mapping)+1)
	for k, vv := range s.mapping {
		next[k] = vv
	}
	next[v] = t
	return StrictSubst{mapping: next, eqEnv: s.eqEnv}
}

// Unbind returns a copy of s with v's binding removed, if any. Used by the
// Scope/region-variable rule (spec.md §4.6): "unbind the var in the
// underlying mapping, then bind it to Impure".
func (s StrictSubst) Unbind(v string) StrictSubst {
	next := make(Raw, len(s.mapping))
	for k, vv := range s.mapping {
		if k == v {
			continue
		}
		next[k] = vv
	}
	return StrictSubst{mapping: next, eqEnv: s.eqEnv}
}

// Raw exposes the underlying non-defaulting mapping (spec.md §4.2).
func (s StrictSubst) Raw() Raw {
	return s.mapping
}

// EqEnv exposes the equality environment s was built with.
func (s StrictSubst) EqEnv() *ir.EqEnv {
	return s.eqEnv
}

// Apply is the sole entry point for strict substitution (spec.md §4.2
// items 1-5).
func (s StrictSubst) Apply(t ir.Type) ir.Type {
	return s.apply(t, map[string]bool{})
}

func (s StrictSubst) apply(t ir.Type, visited map[string]bool) ir.Type {
	switch tt := t.(type) {
	case ir.TVar:
		if visited[tt.Name] {
			return ir.Default(tt.K)
		}
		if repl, ok := s.mapping[tt.Name]; ok {
			nv := copyVisited(visited)
			nv[tt.Name] = true
			return s.apply(repl, nv)
		}
		// Item 1: variables outside the mapping's domain default by kind.
		return ir.Default(tt.K)

	case ir.TCon:
		// Item 2: a concrete named effect collapses to the universal
		// effect constant, regardless of substitution domain.
		if tt.IsConcreteEffect() {
			return ir.EffImpure
		}
		return tt

	case ir.TApp:
		fn := s.apply(tt.Fn, visited)
		arg := s.apply(tt.Arg, visited)
		return simplify(fn, arg)

	case ir.TAlias:
		args := make([]ir.Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = s.apply(a, visited)
		}
		return ir.TAlias{Sym: tt.Sym, Args: args, Expansion: s.apply(tt.Expansion, visited)}

	case ir.TAssoc:
		arg := s.apply(tt.Arg, visited)
		reduced, ok := s.eqEnv.Reduce(tt.Sym, arg)
		if !ok {
			raiseAssocFailure(tt.Sym, arg, tt.Loc)
		}
		return s.apply(reduced, visited)

	case ir.TRowSet, ir.TCaseSet:
		return tt

	default:
		return t
	}
}

func copyVisited(m map[string]bool) map[string]bool {
	next := make(map[string]bool, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	return next
}
