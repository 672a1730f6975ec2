// Package specialize implements the Expression Specializer (spec.md §4.6,
// C6): the recursive rewrite that, given an expression, an environment
// mapping old local binders to fresh ones, and a Strict Substitution,
// produces a monomorphic copy with every DefRef/SigRef resolved and
// demanded from the Specialization Registry, and every local binder
// freshened so distinct specializations never share a binder (spec.md
// §4.8).
//
// Grounded on internal/vm/compiler.go's specialize(): compiling a
// function's body again under a fresh locals table and substitution is
// this pass's Specialize, generalized from "emit bytecode" to "rewrite to
// a fresh IR tree", and on internal/typesystem/types.go's
// ApplyWithCycleCheck for the one-case-per-node-kind structural recursion
// shape.
package specialize

import (
	"github.com/google/uuid"

	"github.com/langforge/monomorph/ice"
	"github.com/langforge/monomorph/ir"
	"github.com/langforge/monomorph/ir/erase"
	"github.com/langforge/monomorph/ir/subst"
	"github.com/langforge/monomorph/ir/unify"
	"github.com/langforge/monomorph/registry"
	"github.com/langforge/monomorph/traits"
)

// Specializer owns the read-only Root it resolves DefRef/SigRef targets
// against and the Registry it demands fresh specializations from.
type Specializer struct {
	root       *ir.Root
	reg        *registry.Registry
	onResidual func(ir.EqConstraint)
}

// New builds a Specializer over root, demanding specializations through
// reg. onResidual, if non-nil, is called for every equality constraint
// unification records but does not act on (spec.md §9 Open Question;
// SPEC_FULL.md §8 driver.Config.OnResidualEquality).
func New(root *ir.Root, reg *registry.Registry, onResidual func(ir.EqConstraint)) *Specializer {
	return &Specializer{root: root, reg: reg, onResidual: onResidual}
}

func (sp *Specializer) reportResiduals(rs []ir.EqConstraint) {
	if sp.onResidual == nil {
		return
	}
	for _, r := range rs {
		sp.onResidual(r)
	}
}

// SpecializeDef rewrites one registry.Item's source definition into its
// fresh, monomorphic form: freshen its formals, substitute its declared
// types, and recursively specialize its body (spec.md §4.7 "specialize
// the body under (env, subst)").
func (sp *Specializer) SpecializeDef(item registry.Item) *ir.TopDef {
	env := NewEnv()
	params := make([]ir.Formal, len(item.SourceDef.Spec.Params))
	for i, p := range item.SourceDef.Spec.Params {
		fresh := p.Sym.Fresh(uuid.NewString())
		env = env.Bind(p.Sym, fresh)
		params[i] = ir.Formal{Sym: fresh, Tpe: item.Subst.Apply(p.Tpe)}
	}
	body := sp.Specialize(item.SourceDef.Body, env, item.Subst, item.Depth)
	newSpec := ir.Spec{
		Doc:         item.SourceDef.Spec.Doc,
		Annotations: item.SourceDef.Spec.Annotations,
		Modifiers:   item.SourceDef.Spec.Modifiers,
		Params:      params,
		Scheme:      ir.Scheme{Base: item.Subst.Apply(item.SourceDef.Spec.Scheme.Base)},
		ReturnTpe:   item.Subst.Apply(item.SourceDef.Spec.ReturnTpe),
		EffectTpe:   item.Subst.Apply(item.SourceDef.Spec.EffectTpe),
		Loc:         item.SourceDef.Spec.Loc,
	}
	return &ir.TopDef{Sym: item.FreshSym, Spec: newSpec, Body: body}
}

// Specialize is the C6 entry point: rewrite e under env/s, recursing
// structurally and resolving every reference it encounters.
func (sp *Specializer) Specialize(e ir.Expr, env Env, s subst.StrictSubst, depth int) ir.Expr {
	switch ee := e.(type) {
	case ir.Var:
		fresh, ok := env.Lookup(ee.Sym)
		if !ok {
			ice.Raise(ice.UnboundVariable, ee.Loc.ICE(),
				"Var resolved outside its binder environment", ee.Sym.String())
		}
		return ir.Var{ExprMeta: sp.meta(ee.ExprMeta, s), Sym: fresh}

	case ir.DefRef:
		return sp.specializeDefRef(ee, env, s, depth)

	case ir.SigRef:
		return sp.specializeSigRef(ee, env, s, depth)

	case ir.Const:
		return ir.Const{ExprMeta: sp.meta(ee.ExprMeta, s), Value: ee.Value}

	case ir.Lambda:
		l := sp.specializeLambda(&ee, env, s, depth)
		return *l

	case *ir.Lambda:
		return sp.specializeLambda(ee, env, s, depth)

	case ir.Apply:
		return ir.Apply{
			ExprMeta: sp.meta(ee.ExprMeta, s),
			Fn:       sp.Specialize(ee.Fn, env, s, depth),
			Args:     sp.specializeAll(ee.Args, env, s, depth),
		}

	case ir.ApplyAtomic:
		return ir.ApplyAtomic{
			ExprMeta: sp.meta(ee.ExprMeta, s),
			Op:       ee.Op,
			Args:     sp.specializeAll(ee.Args, env, s, depth),
		}

	case ir.Let:
		bound := sp.Specialize(ee.Bound, env, s, depth)
		fresh := ee.Sym.Fresh(uuid.NewString())
		bodyEnv := env.Bind(ee.Sym, fresh)
		return ir.Let{
			ExprMeta: sp.meta(ee.ExprMeta, s),
			Sym:      fresh,
			Bound:    bound,
			Body:     sp.Specialize(ee.Body, bodyEnv, s, depth),
		}

	case ir.LetRec:
		fresh := ee.Sym.Fresh(uuid.NewString())
		recEnv := env.Bind(ee.Sym, fresh)
		return ir.LetRec{
			ExprMeta: sp.meta(ee.ExprMeta, s),
			Sym:      fresh,
			Bound:    sp.Specialize(ee.Bound, recEnv, s, depth),
			Body:     sp.Specialize(ee.Body, recEnv, s, depth),
		}

	case ir.Scope:
		return sp.specializeScope(ee, env, s, depth)

	case ir.If:
		return ir.If{
			ExprMeta: sp.meta(ee.ExprMeta, s),
			Cond:     sp.Specialize(ee.Cond, env, s, depth),
			Then:     sp.Specialize(ee.Then, env, s, depth),
			Else:     sp.Specialize(ee.Else, env, s, depth),
		}

	case ir.Stm:
		return ir.Stm{ExprMeta: sp.meta(ee.ExprMeta, s), Stmts: sp.specializeAll(ee.Stmts, env, s, depth)}

	case ir.Discard:
		return ir.Discard{
			ExprMeta: sp.meta(ee.ExprMeta, s),
			Value:    sp.Specialize(ee.Value, env, s, depth),
			Rest:     sp.Specialize(ee.Rest, env, s, depth),
		}

	case ir.Match:
		return sp.specializeMatch(ee, env, s, depth)

	case ir.TypeMatch:
		return sp.specializeTypeMatch(ee, env, s, depth)

	case ir.VectorLit:
		return ir.VectorLit{ExprMeta: sp.meta(ee.ExprMeta, s), Elems: sp.specializeAll(ee.Elems, env, s, depth)}

	case ir.VectorLoad:
		return ir.VectorLoad{
			ExprMeta: sp.meta(ee.ExprMeta, s),
			Vector:   sp.Specialize(ee.Vector, env, s, depth),
			Index:    sp.Specialize(ee.Index, env, s, depth),
		}

	case ir.VectorLength:
		return ir.VectorLength{ExprMeta: sp.meta(ee.ExprMeta, s), Vector: sp.Specialize(ee.Vector, env, s, depth)}

	case ir.Ascribe:
		return ir.Ascribe{
			ExprMeta: sp.meta(ee.ExprMeta, s),
			Value:    sp.Specialize(ee.Value, env, s, depth),
			As:       s.Apply(ee.As),
		}

	case ir.Cast:
		// Source-declared annotations only existed for the type-checker;
		// this pass drops them rather than substituting them (see Cast's
		// doc comment).
		return ir.Cast{
			ExprMeta:  sp.meta(ee.ExprMeta, s),
			Value:     sp.Specialize(ee.Value, env, s, depth),
			SourceTpe: nil,
			SourceEff: nil,
		}

	case ir.TryCatch:
		catches := make([]ir.CatchClause, len(ee.Catches))
		for i, c := range ee.Catches {
			fresh := c.Sym.Fresh(uuid.NewString())
			cEnv := env.Bind(c.Sym, fresh)
			catches[i] = ir.CatchClause{
				Sym:    fresh,
				ExnTpe: s.Apply(c.ExnTpe),
				Body:   sp.Specialize(c.Body, cEnv, s, depth),
			}
		}
		return ir.TryCatch{
			ExprMeta: sp.meta(ee.ExprMeta, s),
			Body:     sp.Specialize(ee.Body, env, s, depth),
			Catches:  catches,
		}

	case ir.TryWith:
		rules := make([]ir.HandlerRule, len(ee.Rules))
		for i, r := range ee.Rules {
			params := make([]ir.Formal, len(r.Params))
			rEnv := env
			for j, p := range r.Params {
				fresh := p.Sym.Fresh(uuid.NewString())
				rEnv = rEnv.Bind(p.Sym, fresh)
				params[j] = ir.Formal{Sym: fresh, Tpe: s.Apply(p.Tpe)}
			}
			rules[i] = ir.HandlerRule{Op: r.Op, Params: params, Body: sp.Specialize(r.Body, rEnv, s, depth)}
		}
		return ir.TryWith{
			ExprMeta: sp.meta(ee.ExprMeta, s),
			Effect:   ee.Effect,
			Body:     sp.Specialize(ee.Body, env, s, depth),
			Rules:    rules,
		}

	case ir.Do:
		return ir.Do{
			ExprMeta: sp.meta(ee.ExprMeta, s),
			Effect:   ee.Effect,
			Op:       ee.Op,
			Args:     sp.specializeAll(ee.Args, env, s, depth),
		}

	case ir.NewObject:
		methods := make([]ir.ObjectMethod, len(ee.Methods))
		for i, m := range ee.Methods {
			methods[i] = ir.ObjectMethod{Name: m.Name, Fn: sp.specializeLambda(m.Fn, env, s, depth)}
		}
		return ir.NewObject{ExprMeta: sp.meta(ee.ExprMeta, s), Methods: methods}

	default:
		ice.Raise(ice.UnboundVariable, e.Meta().Loc.ICE(), "unhandled expression variant during specialization")
		panic("unreachable")
	}
}

func (sp *Specializer) meta(m ir.ExprMeta, s subst.StrictSubst) ir.ExprMeta {
	out := ir.ExprMeta{Loc: m.Loc, Tpe: s.Apply(m.Tpe)}
	if m.Eff != nil {
		out.Eff = s.Apply(m.Eff)
	}
	return out
}

func (sp *Specializer) specializeAll(es []ir.Expr, env Env, s subst.StrictSubst, depth int) []ir.Expr {
	out := make([]ir.Expr, len(es))
	for i, e := range es {
		out[i] = sp.Specialize(e, env, s, depth)
	}
	return out
}

func (sp *Specializer) specializeLambda(l *ir.Lambda, env Env, s subst.StrictSubst, depth int) *ir.Lambda {
	params := make([]ir.Formal, len(l.Params))
	cur := env
	for i, p := range l.Params {
		fresh := p.Sym.Fresh(uuid.NewString())
		cur = cur.Bind(p.Sym, fresh)
		params[i] = ir.Formal{Sym: fresh, Tpe: s.Apply(p.Tpe)}
	}
	body := sp.Specialize(l.Body, cur, s, depth)
	out := &ir.Lambda{ExprMeta: sp.meta(l.ExprMeta, s), Params: params, Body: body}
	return out
}

func (sp *Specializer) specializeScope(e ir.Scope, env Env, s subst.StrictSubst, depth int) ir.Expr {
	// spec.md §4.6/§9 Scope rule: rebind the region effect variable to the
	// universal (impure) effect constant for the duration of Body only,
	// then discharge it — the rebinding never escapes into the Scope
	// node's own annotation, which is computed against the outer subst.
	fresh := e.Sym.Fresh(uuid.NewString())
	bodyEnv := env.Bind(e.Sym, fresh)
	scoped := s.Unbind(e.Region.Name).Extend(e.Region.Name, ir.EffImpure)
	body := sp.Specialize(e.Body, bodyEnv, scoped, depth)
	return ir.Scope{
		ExprMeta: sp.meta(e.ExprMeta, s),
		Sym:      fresh,
		Region:   e.Region,
		Body:     body,
	}
}

func (sp *Specializer) specializeMatch(e ir.Match, env Env, s subst.StrictSubst, depth int) ir.Expr {
	scrut := sp.Specialize(e.Scrutinee, env, s, depth)
	rules := make([]ir.MatchRule, len(e.Rules))
	for i, r := range e.Rules {
		pat, ruleEnv := specializePattern(r.Pattern, env, s)
		var guard ir.Expr
		if r.Guard != nil {
			guard = sp.Specialize(r.Guard, ruleEnv, s, depth)
		}
		rules[i] = ir.MatchRule{Pattern: pat, Guard: guard, Body: sp.Specialize(r.Body, ruleEnv, s, depth)}
	}
	return ir.Match{ExprMeta: sp.meta(e.ExprMeta, s), Scrutinee: scrut, Rules: rules}
}

// specializeTypeMatch resolves the dynamic type test statically (spec.md
// §4.6): since specialization only ever runs at a concrete instantiation,
// the rules are tried in order and the first whose type unifies with the
// scrutinee type is the one that fires, so rather than emit a TypeMatch
// node, this collapses the expression into a Let binding the scrutinee
// straight into that rule's body.
func (sp *Specializer) specializeTypeMatch(e ir.TypeMatch, env Env, s subst.StrictSubst, depth int) ir.Expr {
	scrut := sp.Specialize(e.Scrutinee, env, s, depth)
	scrutType := applyRaw(e.ScrutineeTpe, s.Raw())

	rigid := unify.Rigid{}
	for _, fv := range scrutType.FreeTypeVars() {
		rigid[fv.Name] = true
	}

	for _, rule := range e.Rules {
		ruleTpe := applyRaw(rule.RuleTpe, s.Raw())
		res, err := unify.Try(ruleTpe, scrutType, s.EqEnv(), rigid)
		if err != nil {
			continue
		}
		fresh := rule.Sym.Fresh(uuid.NewString())
		bodyEnv := env.Bind(rule.Sym, fresh)
		bodySubst := s
		for v, t := range res.Mapping {
			bodySubst = bodySubst.Extend(v, t)
		}
		body := sp.Specialize(rule.Body, bodyEnv, bodySubst, depth)
		return ir.Let{
			ExprMeta: sp.meta(e.ExprMeta, s),
			Sym:      fresh,
			Bound:    scrut,
			Body:     body,
		}
	}

	ice.Raise(ice.UnificationFailure, e.Loc.ICE(),
		"no TypeMatch rule unifies with the specialized scrutinee type",
		scrutType.String())
	panic("unreachable")
}

func (sp *Specializer) specializeDefRef(e ir.DefRef, env Env, s subst.StrictSubst, depth int) ir.Expr {
	def, ok := sp.root.Defs[e.Sym.Key()]
	if !ok {
		ice.Raise(ice.UnboundVariable, e.Loc.ICE(), "unbound top-level definition reference", e.Sym.String())
	}
	demanded := s.Apply(e.At)
	erasedType := erase.Erase(demanded, s.EqEnv())
	callSubst, residuals := unify.Unify(def.Spec.Scheme.Base, demanded, s.EqEnv(), e.Loc)
	sp.reportResiduals(residuals)
	fresh := sp.reg.Demand(e.Sym, def, erasedType, callSubst, depth+1, e.Loc)
	return ir.DefRef{ExprMeta: sp.meta(e.ExprMeta, s), Sym: fresh, At: erasedType}
}

func (sp *Specializer) specializeSigRef(e ir.SigRef, env Env, s subst.StrictSubst, depth int) ir.Expr {
	sig, ok := sp.root.Sigs[e.Sym.Key()]
	if !ok {
		ice.Raise(ice.UnboundVariable, e.Loc.ICE(), "unbound trait signature reference", e.Sym.String())
	}
	demanded := s.Apply(e.At)
	erasedType := erase.Erase(demanded, s.EqEnv())

	res := traits.Resolve(sig, erasedType, sp.root, e.Loc)
	var target *ir.TopDef
	if res.Member != nil {
		target = res.Member
	} else {
		target = &ir.TopDef{Sym: sig.Sym, Spec: sig.Spec, Body: res.Default}
	}
	callSubst, residuals := unify.Unify(target.Spec.Scheme.Base, demanded, s.EqEnv(), e.Loc)
	sp.reportResiduals(residuals)
	fresh := sp.reg.Demand(target.Sym, target, erasedType, callSubst, depth+1, e.Loc)
	return ir.DefRef{ExprMeta: sp.meta(e.ExprMeta, s), Sym: fresh, At: erasedType}
}
