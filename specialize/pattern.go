package specialize

import (
	"github.com/google/uuid"

	"github.com/langforge/monomorph/ir"
	"github.com/langforge/monomorph/ir/subst"
)

// specializePattern rewrites p's type annotations under s and freshens
// every variable it binds, threading the growing Env left to right so the
// returned Env carries every binder in the pattern (spec.md §4.8).
func specializePattern(p ir.Pattern, env Env, s subst.StrictSubst) (ir.Pattern, Env) {
	switch pp := p.(type) {
	case ir.PWildcard:
		return ir.PWildcard{PatternMeta: metaP(pp.PatternMeta, s)}, env

	case ir.PVar:
		fresh := pp.Sym.Fresh(uuid.NewString())
		return ir.PVar{PatternMeta: metaP(pp.PatternMeta, s), Sym: fresh}, env.Bind(pp.Sym, fresh)

	case ir.PConst:
		return ir.PConst{PatternMeta: metaP(pp.PatternMeta, s), Value: pp.Value}, env

	case ir.PTag:
		args := make([]ir.Pattern, len(pp.Args))
		cur := env
		for i, a := range pp.Args {
			args[i], cur = specializePattern(a, cur, s)
		}
		return ir.PTag{PatternMeta: metaP(pp.PatternMeta, s), Tag: pp.Tag, Args: args}, cur

	case ir.PTuple:
		elems := make([]ir.Pattern, len(pp.Elems))
		cur := env
		for i, e := range pp.Elems {
			elems[i], cur = specializePattern(e, cur, s)
		}
		return ir.PTuple{PatternMeta: metaP(pp.PatternMeta, s), Elems: elems}, cur

	case ir.PRecord:
		labels := make([]ir.LabelPattern, len(pp.Labels))
		cur := env
		for i, lp := range pp.Labels {
			var sub ir.Pattern
			sub, cur = specializePattern(lp.Pattern, cur, s)
			labels[i] = ir.LabelPattern{Label: lp.Label, Pattern: sub}
		}
		return ir.PRecord{PatternMeta: metaP(pp.PatternMeta, s), Labels: labels}, cur

	case ir.PEmptyRecord:
		return ir.PEmptyRecord{PatternMeta: metaP(pp.PatternMeta, s)}, env

	default:
		panic("specialize: unhandled pattern variant")
	}
}

func metaP(m ir.PatternMeta, s subst.StrictSubst) ir.PatternMeta {
	return ir.PatternMeta{Loc: m.Loc, Tpe: s.Apply(m.Tpe)}
}
