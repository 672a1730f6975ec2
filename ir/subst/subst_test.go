package subst_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/langforge/monomorph/ir"
	"github.com/langforge/monomorph/ir/subst"
)

func TestApplyDefaultsUnboundVariables(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	s := subst.Empty(eqEnv)

	require.Equal(t, ir.Unit, s.Apply(ir.TVar{Name: "a", K: ir.KValue{}}))
	require.Equal(t, ir.EffPure, s.Apply(ir.TVar{Name: "e", K: ir.KEffect{}}))
	require.Equal(t, ir.EmptyRow, s.Apply(ir.TVar{Name: "r", K: ir.KRow{}}))
}

func TestApplyBindsKnownVariables(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	s := subst.Empty(eqEnv).Extend("a", ir.TCon{Name: "Int", K: ir.KValue{}})

	require.Equal(t, ir.TCon{Name: "Int", K: ir.KValue{}}, s.Apply(ir.TVar{Name: "a", K: ir.KValue{}}))
	// Unbound variables still default even after another is bound.
	require.Equal(t, ir.Unit, s.Apply(ir.TVar{Name: "b", K: ir.KValue{}}))
}

func TestApplyCollapsesConcreteEffectsToImpure(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	s := subst.Empty(eqEnv)

	io := ir.TCon{Name: "IO", K: ir.KEffect{}}
	require.Equal(t, ir.EffImpure, s.Apply(io))
	require.Equal(t, ir.EffPure, s.Apply(ir.EffPure))
}

func TestApplyReducesAssociatedTypes(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	assocSym := ir.NewSymbol([]string{"Container"}, "Elem")
	intTy := ir.TCon{Name: "Int", K: ir.KValue{}}
	listInt := ir.TCon{Name: "ListInt", K: ir.KValue{}}
	eqEnv.Put(assocSym, listInt, intTy)

	s := subst.Empty(eqEnv)
	assoc := ir.TAssoc{Sym: assocSym, Arg: listInt}
	require.Equal(t, intTy, s.Apply(assoc))
}

func TestApplyReductionFailurePanics(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	s := subst.Empty(eqEnv)
	assoc := ir.TAssoc{Sym: ir.NewSymbol([]string{"Container"}, "Elem"), Arg: ir.TCon{Name: "Unknown", K: ir.KValue{}}}

	require.Panics(t, func() { s.Apply(assoc) })
}

func TestApplySimplifiesUnionIdentityAndAbsorption(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	s := subst.Empty(eqEnv)

	rowA := ir.TRowSet{K: ir.KRow{}, Labels: []string{"x", "y"}}
	union := ir.TApp{Fn: ir.TApp{Fn: ir.OpUnion(), Arg: rowA}, Arg: ir.EmptyRow}
	require.Equal(t, rowA, s.Apply(union))

	full := ir.TRowSet{K: ir.KRow{}, Negated: true}
	absorbed := ir.TApp{Fn: ir.TApp{Fn: ir.OpUnion(), Arg: rowA}, Arg: full}
	require.Equal(t, full, s.Apply(absorbed))
}

func TestApplySimplifiesDoubleComplement(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	s := subst.Empty(eqEnv)

	rowA := ir.TRowSet{K: ir.KRow{}, Labels: []string{"x"}}
	doubled := ir.TApp{Fn: ir.OpComplement(), Arg: ir.TApp{Fn: ir.OpComplement(), Arg: rowA}}
	require.Equal(t, rowA, s.Apply(doubled))
}

func TestApplySimplifiesCaseSetUnion(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	s := subst.Empty(eqEnv)

	a := ir.TCaseSet{Enum: "Shape", Labels: []string{"Circle"}}
	b := ir.TCaseSet{Enum: "Shape", Labels: []string{"Square"}}
	union := ir.TApp{Fn: ir.TApp{Fn: ir.OpCaseUnion("Shape"), Arg: a}, Arg: b}
	require.Equal(t, ir.TCaseSet{Enum: "Shape", Labels: []string{"Circle", "Square"}}, s.Apply(union))
}

func TestApplySimplifiesCaseComplementOfComplement(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	s := subst.Empty(eqEnv)

	a := ir.TCaseSet{Enum: "Shape", Labels: []string{"Circle"}}
	doubled := ir.TApp{Fn: ir.OpCaseComplement("Shape"), Arg: ir.TApp{Fn: ir.OpCaseComplement("Shape"), Arg: a}}
	require.Equal(t, a, s.Apply(doubled))
}

func TestApplyLeavesCaseComplementOfConcreteLiteralUnreduced(t *testing.T) {
	// ir/subst has no registry of an enum's full case list, so the
	// complement of a single concrete literal cannot be normalized to
	// another concrete literal without risking a wrong answer (it must
	// not, for example, collapse to the empty set).
	eqEnv := ir.NewEqEnv()
	s := subst.Empty(eqEnv)

	a := ir.TCaseSet{Enum: "Shape", Labels: []string{"Circle"}}
	complement := ir.TApp{Fn: ir.OpCaseComplement("Shape"), Arg: a}
	got := s.Apply(complement)

	require.Equal(t, complement, got)
	require.NotEqual(t, ir.TCaseSet{Enum: "Shape", Labels: nil}, got)
}
