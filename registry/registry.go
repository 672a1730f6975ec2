// Package registry implements the Specialization Registry (spec.md §4.4,
// C4): the memo mapping (source symbol, erased type) to a fresh symbol, the
// pending work queue those demands populate, and the result store the
// driver drains into.
//
// Grounded on internal/vm/compiler.go's specialize(): "if root.globals has
// specName, return; else registerGlobal(specName) *before* compiling the
// body" — the memo-before-body discipline that breaks recursive
// specialization cycles. The teacher's compiler runs single-threaded, so a
// plain map read-then-write is atomic enough; this pass's driver runs
// waves of demands concurrently (spec.md §4.9), so the same discipline is
// reimplemented here with golang.org/x/sync/singleflight making the
// check-or-install sequence atomic per memo key.
package registry

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/langforge/monomorph/ice"
	"github.com/langforge/monomorph/ir"
	"github.com/langforge/monomorph/ir/erase"
	"github.com/langforge/monomorph/ir/subst"
)

// Item is one unit of pending work: a demand for the specialization of
// SourceDef at ErasedType, already assigned FreshSym, waiting to be drained
// and specialized by the driver (spec.md §4.4/§4.9).
type Item struct {
	SourceSym  ir.Symbol
	FreshSym   ir.Symbol
	ErasedType ir.Type
	SourceDef  *ir.TopDef
	Subst      subst.StrictSubst
	Depth      int
}

// DefaultMaxDepth bounds specialization recursion (spec.md §10
// supplemental guard), grounded on internal/vm/compiler.go's
// maxSpecializeDepth.
const DefaultMaxDepth = 256

// Registry is the Specialization Registry. Zero value is not usable; build
// with New.
type Registry struct {
	mu       sync.Mutex
	memo     map[string]ir.Symbol
	store    map[string]*ir.TopDef
	queue    []Item
	group    singleflight.Group
	maxDepth int
}

// New builds an empty Registry with the given recursion-depth ceiling.
func New(maxDepth int) *Registry {
	return &Registry{
		memo:     map[string]ir.Symbol{},
		store:    map[string]*ir.TopDef{},
		maxDepth: maxDepth,
	}
}

func memoKey(sourceSym ir.Symbol, erasedType ir.Type) string {
	return sourceSym.Key() + "@" + erasedType.String()
}

// Demand returns the fresh symbol for (sourceSym, erasedType), minting one
// and enqueuing SourceDef for specialization under s if this is the first
// demand for this pair (spec.md §4.4 "Demand"). Concurrent demands for the
// same pair observe the same fresh symbol and enqueue the work exactly
// once (spec.md §4.9 "first writer for a given key wins").
func (r *Registry) Demand(sourceSym ir.Symbol, sourceDef *ir.TopDef, erasedType ir.Type, s subst.StrictSubst, depth int, at ir.Location) ir.Symbol {
	key := memoKey(sourceSym, erasedType)
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existing, ok := r.memo[key]; ok {
			return existing, nil
		}
		if depth > r.maxDepth {
			return nil, ice.New(ice.SpecializationDepthExceeded, at.ICE(),
				fmt.Sprintf("specialization recursion exceeded depth %d", r.maxDepth),
				sourceSym.String(), erasedType.String())
		}
		fresh := sourceSym.Fresh(uuid.NewString())
		r.memo[key] = fresh
		r.queue = append(r.queue, Item{
			SourceSym:  sourceSym,
			FreshSym:   fresh,
			ErasedType: erasedType,
			SourceDef:  sourceDef,
			Subst:      s,
			Depth:      depth,
		})
		return fresh, nil
	})
	if err != nil {
		// Raised here rather than inside Do: singleflight wraps a panic
		// from its function in its own type, which would hide the ice.Error.
		panic(err)
	}
	return v.(ir.Symbol)
}

// Seed installs sourceDef as its own fresh symbol, unconditionally
// enqueuing it for specialization (spec.md §4.9 "seed the queue with every
// already-monomorphic definition"). Unlike Demand, Seed never mints a new
// UID: a monomorphic definition is specialized exactly once, as itself,
// not once per demanded instantiation. The memo key and Item.ErasedType are
// keyed by the erased form of Scheme.Base, not the raw scheme (spec.md
// §4.7 item 3 "keyed by (source_sym, erased base type)") — otherwise a
// later Demand for the same def, which always erases through
// specialize's DefRef/SigRef resolution, could compute a different key
// than the one Seed installed and mint a spurious duplicate.
func (r *Registry) Seed(sourceDef *ir.TopDef, s subst.StrictSubst) {
	erasedType := erase.Erase(sourceDef.Spec.Scheme.Base, s.EqEnv())

	r.mu.Lock()
	defer r.mu.Unlock()
	key := memoKey(sourceDef.Sym, erasedType)
	if _, ok := r.memo[key]; ok {
		return
	}
	r.memo[key] = sourceDef.Sym
	r.queue = append(r.queue, Item{
		SourceSym:  sourceDef.Sym,
		FreshSym:   sourceDef.Sym,
		ErasedType: erasedType,
		SourceDef:  sourceDef,
		Subst:      s,
		Depth:      0,
	})
}

// Lookup reports the memoized fresh symbol for (sourceSym, erasedType), if
// any demand has been made for it yet.
func (r *Registry) Lookup(sourceSym ir.Symbol, erasedType ir.Type) (ir.Symbol, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sym, ok := r.memo[memoKey(sourceSym, erasedType)]
	return sym, ok
}

// DrainWave atomically removes and returns all items currently queued,
// leaving the queue empty for the next wave (spec.md §4.9 "drain the
// current wave").
func (r *Registry) DrainWave() []Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	wave := r.queue
	r.queue = nil
	return wave
}

// Pending reports whether any demand is still queued, without draining it.
func (r *Registry) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue) > 0
}

// Put records the specialized definition for fresh (spec.md §4.4 "Result
// store"), called once per fresh symbol after its body has been
// specialized.
func (r *Registry) Put(fresh ir.Symbol, def *ir.TopDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[fresh.Key()] = def
}

// Get looks up a previously stored specialized definition.
func (r *Registry) Get(fresh ir.Symbol) (*ir.TopDef, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.store[fresh.Key()]
	return def, ok
}

// All returns every specialized definition produced so far, keyed by fresh
// symbol string (spec.md §4.9 "emit the final Root").
func (r *Registry) All() map[string]*ir.TopDef {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*ir.TopDef, len(r.store))
	for k, v := range r.store {
		out[k] = v
	}
	return out
}
