package subst

import (
	"sort"

	"github.com/langforge/monomorph/ice"
	"github.com/langforge/monomorph/ir"
)

// simplify builds fn applied to arg, normalizing the Boolean/case-set
// algebra when fn resolves to one of the recognized operator constants
// (spec.md §4.2 item 3: "Use the canonical smart constructors that
// normalize identity/absorption laws"). It is the one place ir/subst
// performs algebraic simplification rather than plain tree-building,
// because these laws only become decidable *after* substitution has
// revealed a concrete operator head — exactly spec.md §9's framing
// ("Boolean-style simplifications only become valid after substitution
// reveals concrete operator constants").
func simplify(fn ir.Type, arg ir.Type) ir.Type {
	head, isCon := ir.Head(fn).(ir.TCon)
	if !isCon {
		return ir.Apply1(fn, arg)
	}

	switch head.Name {
	case ir.OpComplementName:
		return simplifyComplement(arg)
	case ir.OpUnionName:
		if operand, ok := fn.(ir.TApp); ok {
			return simplifyUnion(operand.Arg, arg)
		}
	case ir.OpIntersectionName:
		if operand, ok := fn.(ir.TApp); ok {
			return simplifyIntersection(operand.Arg, arg)
		}
	case ir.OpCaseComplementName:
		return simplifyCaseComplement(head.CaseEnum, arg)
	case ir.OpCaseUnionName:
		if operand, ok := fn.(ir.TApp); ok {
			return simplifyCaseUnion(head.CaseEnum, operand.Arg, arg)
		}
	case ir.OpCaseIntersectionName:
		if operand, ok := fn.(ir.TApp); ok {
			return simplifyCaseIntersection(head.CaseEnum, operand.Arg, arg)
		}
	}
	// A binary operator that has only now received its first argument, or
	// a head that is not an operator: just build the application.
	return ir.Apply1(fn, arg)
}

func asRowSet(t ir.Type) (ir.TRowSet, bool) {
	rs, ok := t.(ir.TRowSet)
	return rs, ok
}

func asCaseSet(t ir.Type) (ir.TCaseSet, bool) {
	cs, ok := t.(ir.TCaseSet)
	return cs, ok
}

func simplifyComplement(x ir.Type) ir.Type {
	// Complement(Complement(x)) = x.
	if app, ok := x.(ir.TApp); ok {
		if con, ok := ir.Head(app).(ir.TCon); ok && con.Name == ir.OpComplementName {
			return app.Arg
		}
	}
	if rs, ok := asRowSet(x); ok {
		return ir.TRowSet{K: rs.K, Labels: rs.Labels, Negated: !rs.Negated}
	}
	return ir.Apply1(ir.OpComplement(), x)
}

func simplifyUnion(a, b ir.Type) ir.Type {
	// Identity: Union(x, Empty) = x, Union(Empty, x) = x.
	if isEmptyRow(a) {
		return b
	}
	if isEmptyRow(b) {
		return a
	}
	// Absorption: Union(x, Full) = Full, Union(Full, x) = Full.
	if isFullRow(a) {
		return a
	}
	if isFullRow(b) {
		return b
	}
	ra, aok := asRowSet(a)
	rb, bok := asRowSet(b)
	if aok && bok && !ra.Negated && !rb.Negated {
		return ir.TRowSet{K: ra.K, Labels: unionLabels(ra.Labels, rb.Labels)}
	}
	return ir.Apply1(ir.OpUnion(), a, b)
}

func simplifyIntersection(a, b ir.Type) ir.Type {
	// Absorption: Intersection(x, Full) = x, Intersection(Full, x) = x.
	if isFullRow(a) {
		return b
	}
	if isFullRow(b) {
		return a
	}
	// Identity with empty: Intersection(x, Empty) = Empty.
	if isEmptyRow(a) {
		return a
	}
	if isEmptyRow(b) {
		return b
	}
	ra, aok := asRowSet(a)
	rb, bok := asRowSet(b)
	if aok && bok && !ra.Negated && !rb.Negated {
		return ir.TRowSet{K: ra.K, Labels: intersectLabels(ra.Labels, rb.Labels)}
	}
	return ir.Apply1(ir.OpIntersection(), a, b)
}

func isEmptyRow(t ir.Type) bool {
	rs, ok := asRowSet(t)
	return ok && !rs.Negated && len(rs.Labels) == 0
}

func isFullRow(t ir.Type) bool {
	rs, ok := asRowSet(t)
	return ok && rs.Negated && len(rs.Labels) == 0
}

func simplifyCaseComplement(enum string, x ir.Type) ir.Type {
	// Complement(Complement(x)) = x holds regardless of the enum's
	// universe, so this case is always safe to normalize.
	if app, ok := x.(ir.TApp); ok {
		if con, ok := ir.Head(app).(ir.TCon); ok && con.Name == ir.OpCaseComplementName && con.CaseEnum == enum {
			return app.Arg
		}
	}
	// A concrete TCaseSet literal's own Labels is only the set being
	// complemented, not the enum's full universe (ir/subst has no registry
	// of per-enum case lists — that lives upstream, in the type-checker's
	// environment) — so the complement of a concrete literal cannot be
	// reduced to another concrete literal here without risking a wrong
	// answer. Leave it as an unevaluated application; a caller that tracks
	// per-enum universes can still get an exact result by pre-reducing
	// through TAssoc/eqEnv before this point.
	return ir.Apply1(ir.OpCaseComplement(enum), x)
}

func simplifyCaseUnion(enum string, a, b ir.Type) ir.Type {
	ca, aok := asCaseSet(a)
	cb, bok := asCaseSet(b)
	if aok && len(ca.Labels) == 0 {
		return b
	}
	if bok && len(cb.Labels) == 0 {
		return a
	}
	if aok && bok && ca.Enum == enum && cb.Enum == enum {
		return ir.TCaseSet{Enum: enum, Labels: unionLabels(ca.Labels, cb.Labels)}
	}
	return ir.Apply1(ir.OpCaseUnion(enum), a, b)
}

func simplifyCaseIntersection(enum string, a, b ir.Type) ir.Type {
	ca, aok := asCaseSet(a)
	cb, bok := asCaseSet(b)
	if aok && len(ca.Labels) == 0 {
		return a
	}
	if bok && len(cb.Labels) == 0 {
		return b
	}
	if aok && bok && ca.Enum == enum && cb.Enum == enum {
		return ir.TCaseSet{Enum: enum, Labels: intersectLabels(ca.Labels, cb.Labels)}
	}
	return ir.Apply1(ir.OpCaseIntersection(enum), a, b)
}

func unionLabels(a, b []string) []string {
	set := map[string]bool{}
	for _, l := range a {
		set[l] = true
	}
	for _, l := range b {
		set[l] = true
	}
	return sortedKeys(set)
}

func intersectLabels(a, b []string) []string {
	inB := map[string]bool{}
	for _, l := range b {
		inB[l] = true
	}
	set := map[string]bool{}
	for _, l := range a {
		if inB[l] {
			set[l] = true
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func raiseAssocFailure(sym ir.Symbol, arg ir.Type, loc ir.Location) {
	ice.Raise(ice.AssociatedTypeReductionFailure, loc.ICE(),
		"no reduction for associated type application",
		sym.String()+"["+arg.String()+"]")
}
