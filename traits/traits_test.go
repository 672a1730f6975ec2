package traits_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/langforge/monomorph/ice"
	"github.com/langforge/monomorph/ir"
	"github.com/langforge/monomorph/traits"
)

func intTy() ir.Type  { return ir.TCon{Name: "Int", K: ir.KValue{}} }
func boolTy() ir.Type { return ir.TCon{Name: "Bool", K: ir.KValue{}} }

func showSig(defaultBody ir.Expr) *ir.Sig {
	return &ir.Sig{
		Sym:         ir.NewSymbol([]string{"Show"}, "show"),
		Spec:        ir.Spec{Scheme: ir.Scheme{Base: ir.TVar{Name: "a", K: ir.KValue{}}}},
		DefaultBody: defaultBody,
		Trait:       ir.NewSymbol(nil, "Show"),
		MethodName:  "show",
	}
}

func instanceFor(t ir.Type, method string) *ir.Instance {
	return &ir.Instance{
		Type: t,
		Members: []ir.InstanceMember{
			{Name: method, Def: ir.TopDef{
				Sym:  ir.NewSymbol([]string{"Show", t.String()}, method),
				Spec: ir.Spec{Scheme: ir.Scheme{Base: t}},
				Body: ir.Const{Value: "instance"},
			}},
		},
	}
}

func TestResolveSingleInstanceMatch(t *testing.T) {
	sig := showSig(nil)
	root := ir.NewRoot()
	root.Instances[sig.Trait.Key()] = []*ir.Instance{instanceFor(intTy(), "show")}

	res := traits.Resolve(sig, intTy(), root, ir.Location{})
	require.NotNil(t, res.Member)
	require.Nil(t, res.Default)
	require.Equal(t, intTy(), res.MatchedType)
}

func TestResolveFallsBackToDefault(t *testing.T) {
	defaultBody := ir.Const{Value: "default"}
	sig := showSig(defaultBody)
	root := ir.NewRoot()
	root.Instances[sig.Trait.Key()] = []*ir.Instance{instanceFor(intTy(), "show")}

	res := traits.Resolve(sig, boolTy(), root, ir.Location{})
	require.Nil(t, res.Member)
	require.Equal(t, defaultBody, res.Default)
}

func TestResolveNoMatchNoDefaultRaisesICE(t *testing.T) {
	sig := showSig(nil)
	root := ir.NewRoot()

	defer func() {
		r := recover()
		require.NotNil(t, r)
		iceErr, ok := r.(ice.Error)
		require.True(t, ok)
		require.Equal(t, ice.TraitResolutionFailure, iceErr.Kind)
	}()
	traits.Resolve(sig, intTy(), root, ir.Location{})
}

func TestResolveOverlappingInstancesRaisesICE(t *testing.T) {
	sig := showSig(nil)
	root := ir.NewRoot()
	a := ir.TVar{Name: "x", K: ir.KValue{}} // unifies with anything
	root.Instances[sig.Trait.Key()] = []*ir.Instance{instanceFor(a, "show"), instanceFor(intTy(), "show")}

	defer func() {
		r := recover()
		require.NotNil(t, r)
		iceErr, ok := r.(ice.Error)
		require.True(t, ok)
		require.Equal(t, ice.TraitResolutionFailure, iceErr.Kind)
	}()
	traits.Resolve(sig, intTy(), root, ir.Location{})
}
