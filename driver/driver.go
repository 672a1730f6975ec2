package driver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/langforge/monomorph/ice"
	"github.com/langforge/monomorph/ir"
	"github.com/langforge/monomorph/ir/subst"
	"github.com/langforge/monomorph/registry"
	"github.com/langforge/monomorph/specialize"
)

// Run is the sole external entry point (spec.md §6): seed the registry
// with every already-monomorphic definition in root, drain it to
// fixpoint in concurrent waves (spec.md §4.9), and return the specialized
// Root. Internal-error panics raised anywhere below this call are
// recovered here and returned as an error (spec.md §7 "panic at
// detection, recover at the pass boundary").
func Run(root *ir.Root, cfg Config) (out *ir.Root, err error) {
	defer func() {
		if r := recover(); r != nil {
			if iceErr, ok := r.(ice.Error); ok {
				err = iceErr
				return
			}
			panic(r)
		}
	}()

	cfg.setDefaults()
	reg := registry.New(cfg.MaxSpecializationDepth)
	sp := specialize.New(root, reg, cfg.OnResidualEquality)

	for _, def := range root.Defs {
		if def.Spec.Scheme.IsMonomorphic() {
			reg.Seed(def, subst.Empty(root.EqEnv))
		}
	}

	for reg.Pending() {
		if waveErr := drainWave(sp, reg, cfg.MaxWaveConcurrency); waveErr != nil {
			return nil, waveErr
		}
	}

	return assemble(root, reg), nil
}

// drainWave specializes one wave of pending demands concurrently (spec.md
// §4.9), bounded by limit, and writes each result into reg's store before
// returning — so that demands raised while specializing this wave's
// bodies are visible as a fresh wave on the next iteration of Run's loop.
func drainWave(sp *specialize.Specializer, reg *registry.Registry, limit int) error {
	wave := reg.DrainWave()
	if len(wave) == 0 {
		return nil
	}

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(limit)

	results := make([]*ir.TopDef, len(wave))
	for i, item := range wave {
		i, item := i, item
		g.Go(func() error {
			def, err := specializeOne(sp, item)
			if err != nil {
				return err
			}
			results[i] = def
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, item := range wave {
		reg.Put(item.FreshSym, results[i])
	}
	return nil
}

// specializeOne runs one item's specialization with its own panic
// recovery, so one item's internal error surfaces as this wave's error
// rather than crashing every goroutine the errgroup is running.
func specializeOne(sp *specialize.Specializer, item registry.Item) (def *ir.TopDef, err error) {
	defer func() {
		if r := recover(); r != nil {
			if iceErr, ok := r.(ice.Error); ok {
				err = iceErr
				return
			}
			panic(r)
		}
	}()
	def = sp.SpecializeDef(item)
	return def, nil
}

// assemble builds the output Root: Defs is replaced by the registry's
// specialized store; Aliases/EqEnv carry over unchanged since nothing
// about type aliases or associated-type reduction facts is specific to
// any one instantiation. Traits, Instances, and Sigs are left empty
// (spec.md §4.9 step 4 "trait, signature, and instance tables cleared —
// monomorphization has absorbed them"): every SigRef this pass
// encountered has already been resolved to a concrete DefRef, so nothing
// downstream needs the trait/instance/signature tables any more.
func assemble(root *ir.Root, reg *registry.Registry) *ir.Root {
	out := ir.NewRoot()
	out.Aliases = root.Aliases
	out.EqEnv = root.EqEnv
	for k, def := range reg.All() {
		out.Defs[k] = def
	}
	return out
}
