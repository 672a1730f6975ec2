package registry_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/langforge/monomorph/ice"
	"github.com/langforge/monomorph/ir"
	"github.com/langforge/monomorph/ir/subst"
	"github.com/langforge/monomorph/registry"
)

func testDef(name string) *ir.TopDef {
	sym := ir.NewSymbol(nil, name)
	base := ir.TCon{Name: "Unit", K: ir.KValue{}}
	return &ir.TopDef{Sym: sym, Spec: ir.Spec{Scheme: ir.Scheme{Base: base}}, Body: ir.Const{Value: 1}}
}

func TestDemandMintsOnceAndMemoizes(t *testing.T) {
	reg := registry.New(registry.DefaultMaxDepth)
	eqEnv := ir.NewEqEnv()
	s := subst.Empty(eqEnv)
	def := testDef("id")
	erased := ir.TCon{Name: "Int", K: ir.KValue{}}

	a := reg.Demand(def.Sym, def, erased, s, 0, ir.Location{})
	b := reg.Demand(def.Sym, def, erased, s, 0, ir.Location{})
	require.Equal(t, a, b)

	wave := reg.DrainWave()
	require.Len(t, wave, 1, "the second demand for the same pair must not enqueue a second item")
}

func TestDemandDistinctTypesMintDistinctSymbols(t *testing.T) {
	reg := registry.New(registry.DefaultMaxDepth)
	eqEnv := ir.NewEqEnv()
	s := subst.Empty(eqEnv)
	def := testDef("id")

	a := reg.Demand(def.Sym, def, ir.TCon{Name: "Int", K: ir.KValue{}}, s, 0, ir.Location{})
	b := reg.Demand(def.Sym, def, ir.TCon{Name: "Bool", K: ir.KValue{}}, s, 0, ir.Location{})
	require.NotEqual(t, a, b)

	wave := reg.DrainWave()
	require.Len(t, wave, 2)
}

func TestConcurrentDemandsForSamePairAreSerialized(t *testing.T) {
	reg := registry.New(registry.DefaultMaxDepth)
	eqEnv := ir.NewEqEnv()
	s := subst.Empty(eqEnv)
	def := testDef("id")
	erased := ir.TCon{Name: "Int", K: ir.KValue{}}

	const n = 64
	results := make([]ir.Symbol, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = reg.Demand(def.Sym, def, erased, s, 0, ir.Location{})
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		require.Equal(t, results[0], results[i])
	}
	require.Len(t, reg.DrainWave(), 1, "concurrent demands for the same pair must enqueue exactly once")
}

func TestSeedEnqueuesOnceAndKeepsIdentity(t *testing.T) {
	reg := registry.New(registry.DefaultMaxDepth)
	eqEnv := ir.NewEqEnv()
	s := subst.Empty(eqEnv)
	def := testDef("main")

	reg.Seed(def, s)
	reg.Seed(def, s)

	wave := reg.DrainWave()
	require.Len(t, wave, 1)
	require.Equal(t, def.Sym, wave[0].FreshSym)
}

func TestDrainWaveEmptiesQueue(t *testing.T) {
	reg := registry.New(registry.DefaultMaxDepth)
	eqEnv := ir.NewEqEnv()
	s := subst.Empty(eqEnv)
	def := testDef("id")
	reg.Demand(def.Sym, def, ir.TCon{Name: "Int", K: ir.KValue{}}, s, 0, ir.Location{})

	require.True(t, reg.Pending())
	reg.DrainWave()
	require.False(t, reg.Pending())
}

func TestDemandPastMaxDepthRaisesICE(t *testing.T) {
	reg := registry.New(2)
	eqEnv := ir.NewEqEnv()
	s := subst.Empty(eqEnv)
	def := testDef("id")

	defer func() {
		r := recover()
		require.NotNil(t, r)
		iceErr, ok := r.(ice.Error)
		require.True(t, ok)
		require.Equal(t, ice.SpecializationDepthExceeded, iceErr.Kind)
	}()
	reg.Demand(def.Sym, def, ir.TCon{Name: "Int", K: ir.KValue{}}, s, 3, ir.Location{})
}

func TestPutAndGetRoundtrip(t *testing.T) {
	reg := registry.New(registry.DefaultMaxDepth)
	sym := ir.NewSymbol(nil, "id").Fresh("u1")
	def := testDef("id")
	reg.Put(sym, def)

	got, ok := reg.Get(sym)
	require.True(t, ok)
	require.Same(t, def, got)
	require.Len(t, reg.All(), 1)
}
