package specialize

import (
	"github.com/benbjohnson/immutable"

	"github.com/langforge/monomorph/ir"
)

// Env is the persistent old-symbol -> fresh-symbol map threaded through
// recursive specialization (spec.md §4.8 "fresh local binders"). Branching
// at every pattern arm and lambda body needs each branch to see its own
// bindings without mutating its siblings', so Env uses a persistent map
// rather than a plain Go map copied at every branch point — grounded on
// wdamron-poly's immutable-backed type environment, generalized here from
// type schemes to local symbol renamings.
type Env struct {
	m *immutable.Map
}

// NewEnv returns the empty environment.
func NewEnv() Env {
	return Env{m: immutable.NewMap(nil)}
}

// Bind returns a copy of e with old mapped to fresh.
func (e Env) Bind(old, fresh ir.Symbol) Env {
	return Env{m: e.m.Set(old.Key(), fresh)}
}

// Lookup returns the fresh symbol old was bound to, if any.
func (e Env) Lookup(old ir.Symbol) (ir.Symbol, bool) {
	v, ok := e.m.Get(old.Key())
	if !ok {
		return ir.Symbol{}, false
	}
	return v.(ir.Symbol), true
}
