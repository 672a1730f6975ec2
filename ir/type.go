package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the sum of type shapes this pass manipulates, per spec.md §3:
// variable, constant, application (curried), alias, associated-type
// application — plus the two literal "set" shapes (TRowSet, TCaseSet) used
// by the Boolean/case-set algebra substitution performs on the fly (§4.2
// item 3). Generalized from internal/typesystem/types.go's `Type` interface
// (String/Apply/FreeTypeVariables/Kind) with `Apply` pulled out into the
// ir/subst package, since spec.md splits "what a type looks like" (C8) from
// "how it gets substituted" (C2) into separate components.
type Type interface {
	String() string
	Kind() Kind
	FreeTypeVars() []TVar
}

// TVar is a type variable, the thing erasure and substitution act on.
type TVar struct {
	Name string
	K    Kind
}

func (t TVar) String() string        { return t.Name }
func (t TVar) Kind() Kind            { return t.K }
func (t TVar) FreeTypeVars() []TVar  { return []TVar{t} }

// TCon is a type constant or type constructor: a named, non-variable leaf
// (Int, List, Pure, Complement, ...). Operator constants used by the
// Boolean/case-set algebra (§4.2 item 3) are TCon values built by the
// OpComplement/OpUnion/... constructors below.
type TCon struct {
	Name string
	K    Kind

	// CaseEnum is set only for the CaseComplement/CaseUnion/CaseIntersection
	// operator constants, naming the enum they are scoped to.
	CaseEnum string
}

func (t TCon) String() string       { return t.Name }
func (t TCon) Kind() Kind           { return t.K }
func (t TCon) FreeTypeVars() []TVar { return nil }

// IsConcreteEffect reports whether t names a concrete, non-universal effect
// constant (e.g. "IO", "State") as opposed to Pure or the universal effect
// constant Impure. Per §4.1/§4.2: such a constant is replaced by Impure
// during erasure/substitution.
func (t TCon) IsConcreteEffect() bool {
	_, isEffect := t.K.(KEffect)
	return isEffect && t.Name != EffPure.Name && t.Name != EffImpure.Name
}

// TApp is a curried type application (t1 applied to t2).
type TApp struct {
	Fn  Type
	Arg Type
}

func (t TApp) String() string { return fmt.Sprintf("(%s %s)", t.Fn.String(), t.Arg.String()) }
func (t TApp) Kind() Kind {
	// Applications produced by this pass are always well-kinded by the time
	// they reach it (upstream type inference guarantees it); we don't carry
	// arrow kinds, so we report the result kind of the known operator
	// families and otherwise fall back to the function's own kind.
	if con, ok := Head(t).(TCon); ok {
		switch {
		case con.Name == OpComplementName || con.Name == OpUnionName || con.Name == OpIntersectionName:
			return KRow{}
		case con.Name == OpCaseComplementName || con.Name == OpCaseUnionName || con.Name == OpCaseIntersectionName:
			return KCaseSet{Enum: con.CaseEnum}
		}
	}
	return t.Fn.Kind()
}
func (t TApp) FreeTypeVars() []TVar {
	return uniqueTVars(append(t.Fn.FreeTypeVars(), t.Arg.FreeTypeVars()...))
}

// Head returns the leftmost function in a chain of curried TApps.
func Head(t Type) Type {
	for {
		app, ok := t.(TApp)
		if !ok {
			return t
		}
		t = app.Fn
	}
}

// Args returns the argument list of a chain of curried TApps, left to right.
func Args(t Type) []Type {
	var args []Type
	for {
		app, ok := t.(TApp)
		if !ok {
			break
		}
		args = append([]Type{app.Arg}, args...)
		t = app.Fn
	}
	return args
}

// Apply1 builds a single curried application.
func Apply1(fn Type, args ...Type) Type {
	t := fn
	for _, a := range args {
		t = TApp{Fn: t, Arg: a}
	}
	return t
}

// TAlias is a type-alias reference: a symbol applied to arguments, carrying
// its (already-expanded) expansion alongside for components that don't need
// to re-expand it.
type TAlias struct {
	Sym       Symbol
	Args      []Type
	Expansion Type
}

func (t TAlias) String() string {
	if len(t.Args) == 0 {
		return t.Sym.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Sym.Name, strings.Join(parts, ", "))
}
func (t TAlias) Kind() Kind { return t.Expansion.Kind() }
func (t TAlias) FreeTypeVars() []TVar {
	var vars []TVar
	for _, a := range t.Args {
		vars = append(vars, a.FreeTypeVars()...)
	}
	return uniqueTVars(vars)
}

// TAssoc is an associated-type application: a trait's associated-type
// symbol applied to the instance's concrete type, reduced via the equality
// environment (§4.1 item "Associated-type application", §4.2 item 5).
type TAssoc struct {
	Sym Symbol
	Arg Type
	// Loc is the source location of the type this associated-type
	// application appears in, used only to report a reduction failure
	// (spec.md §6 "naming the source location of the offending type").
	Loc Location
}

func (t TAssoc) String() string { return fmt.Sprintf("%s[%s]", t.Sym.Name, t.Arg.String()) }
func (t TAssoc) Kind() Kind     { return KValue{} } // resolved before any caller inspects this further
func (t TAssoc) FreeTypeVars() []TVar {
	return t.Arg.FreeTypeVars()
}

// TRowSet is a concrete (possibly variable-free) row value: either exactly
// the given labels (Negated == false) or the complement of the given labels
// against an unbounded universe (Negated == true, i.e. "every label except
// these"). This is the literal operand/result shape of the Boolean algebra
// §4.2 item 3 normalizes: Complement/Union/Intersection.
type TRowSet struct {
	K       Kind // KRow or KSchemaRow
	Labels  []string
	Negated bool
}

func (t TRowSet) String() string {
	labels := append([]string{}, t.Labels...)
	sort.Strings(labels)
	if t.Negated {
		return fmt.Sprintf("!{%s}", strings.Join(labels, ","))
	}
	return fmt.Sprintf("{%s}", strings.Join(labels, ","))
}
func (t TRowSet) Kind() Kind           { return t.K }
func (t TRowSet) FreeTypeVars() []TVar { return nil }

// TCaseSet is a concrete subset of case tags drawn from a fixed, named
// enumeration (§4.1 "case-set(E)"). It carries only the enum's name, not
// the enum's full case list, so ir/subst leaves the complement of a
// concrete TCaseSet literal unreduced.
type TCaseSet struct {
	Enum   string
	Labels []string
}

func (t TCaseSet) String() string {
	labels := append([]string{}, t.Labels...)
	sort.Strings(labels)
	return fmt.Sprintf("%s{%s}", t.Enum, strings.Join(labels, ","))
}
func (t TCaseSet) Kind() Kind           { return KCaseSet{Enum: t.Enum} }
func (t TCaseSet) FreeTypeVars() []TVar { return nil }

// Well-known constants.
var (
	Unit            = TCon{Name: "Unit", K: KValue{}}
	EffPure         = TCon{Name: "Pure", K: KEffect{}}
	EffImpure       = TCon{Name: "Impure", K: KEffect{}}
	EmptyRow   Type = TRowSet{K: KRow{}, Negated: false}
	EmptySchemaRow Type = TRowSet{K: KSchemaRow{}, Negated: false}
)

// EmptyCaseSet returns the empty case-set over the named enum.
func EmptyCaseSet(enum string) Type {
	return TCaseSet{Enum: enum}
}

// Operator constant names recognized by ir/subst's algebraic simplifier.
const (
	OpComplementName      = "Complement"
	OpUnionName           = "Union"
	OpIntersectionName    = "Intersection"
	OpCaseComplementName  = "CaseComplement"
	OpCaseUnionName       = "CaseUnion"
	OpCaseIntersectionName = "CaseIntersection"
)

// OpComplement, OpUnion and OpIntersection build the Boolean (open-universe,
// row-shaped) set operators; OpCaseComplement, OpCaseUnion and
// OpCaseIntersection build their enum-bounded case-set counterparts.
func OpComplement() Type   { return TCon{Name: OpComplementName, K: KRow{}} }
func OpUnion() Type        { return TCon{Name: OpUnionName, K: KRow{}} }
func OpIntersection() Type { return TCon{Name: OpIntersectionName, K: KRow{}} }

func OpCaseComplement(enum string) Type {
	return TCon{Name: OpCaseComplementName, K: KCaseSet{Enum: enum}, CaseEnum: enum}
}
func OpCaseUnion(enum string) Type {
	return TCon{Name: OpCaseUnionName, K: KCaseSet{Enum: enum}, CaseEnum: enum}
}
func OpCaseIntersection(enum string) Type {
	return TCon{Name: OpCaseIntersectionName, K: KCaseSet{Enum: enum}, CaseEnum: enum}
}
