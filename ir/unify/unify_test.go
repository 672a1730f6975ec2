package unify_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/langforge/monomorph/ir"
	"github.com/langforge/monomorph/ir/unify"
)

func TestUnifyBindsFreeVariable(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	a := ir.TVar{Name: "a", K: ir.KValue{}}
	intTy := ir.TCon{Name: "Int", K: ir.KValue{}}

	res, err := unify.Try(a, intTy, eqEnv, unify.NoRigid)
	require.NoError(t, err)
	require.Equal(t, intTy, res.Mapping["a"])
}

func TestUnifyStructuralMismatchFails(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	intTy := ir.TCon{Name: "Int", K: ir.KValue{}}
	boolTy := ir.TCon{Name: "Bool", K: ir.KValue{}}

	_, err := unify.Try(intTy, boolTy, eqEnv, unify.NoRigid)
	require.Error(t, err)
}

func TestUnifyRigidVariableRejectsBinding(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	a := ir.TVar{Name: "a", K: ir.KValue{}}
	intTy := ir.TCon{Name: "Int", K: ir.KValue{}}

	_, err := unify.Try(a, intTy, eqEnv, unify.Rigid{"a": true})
	require.Error(t, err)

	// A rigid variable still unifies with itself.
	res, err := unify.Try(a, a, eqEnv, unify.Rigid{"a": true})
	require.NoError(t, err)
	require.Empty(t, res.Mapping)
}

func TestUnifyOccursCheckFails(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	a := ir.TVar{Name: "a", K: ir.KValue{}}
	listOfA := ir.TApp{Fn: ir.TCon{Name: "List", K: ir.KValue{}}, Arg: a}

	_, err := unify.Try(a, listOfA, eqEnv, unify.NoRigid)
	require.Error(t, err)
}

func TestUnifyRecursesThroughApplication(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	listCon := ir.TCon{Name: "List", K: ir.KValue{}}
	a := ir.TVar{Name: "a", K: ir.KValue{}}
	intTy := ir.TCon{Name: "Int", K: ir.KValue{}}

	scheme := ir.TApp{Fn: listCon, Arg: a}
	demanded := ir.TApp{Fn: listCon, Arg: intTy}

	res, err := unify.Try(scheme, demanded, eqEnv, unify.NoRigid)
	require.NoError(t, err)
	require.Equal(t, intTy, res.Mapping["a"])
}

func TestUnifyRecordsResidualEqualityConstraintInsteadOfFailing(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	lhs := ir.TAssoc{Sym: ir.NewSymbol([]string{"Trait"}, "Out"), Arg: ir.TCon{Name: "A", K: ir.KValue{}}}
	rhs := ir.TAssoc{Sym: ir.NewSymbol([]string{"Trait"}, "Out"), Arg: ir.TCon{Name: "B", K: ir.KValue{}}}

	res, err := unify.Try(lhs, rhs, eqEnv, unify.NoRigid)
	require.NoError(t, err)
	require.Len(t, res.Residuals, 1)
}

func TestUnifyPanicsOnFailureThroughTheICEAdapter(t *testing.T) {
	eqEnv := ir.NewEqEnv()
	intTy := ir.TCon{Name: "Int", K: ir.KValue{}}
	boolTy := ir.TCon{Name: "Bool", K: ir.KValue{}}

	require.Panics(t, func() {
		unify.Unify(intTy, boolTy, eqEnv, ir.Location{})
	})
}
