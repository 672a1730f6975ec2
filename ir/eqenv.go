package ir

// EqConstraint is an equality constraint returned by unification that this
// pass records but does not act on (spec.md §9 Open Question). It is
// surfaced to callers through driver.Config.OnResidualEquality rather than
// silently discarded.
type EqConstraint struct {
	Left, Right Type
	At          Location
}

// eqKey identifies an associated-type reduction: (assoc_sym, arg_type).
type eqKey struct {
	sym string
	arg string
}

// EqEnv is the read-only equality/associated-type environment produced by
// the upstream type inferencer (spec.md §3, §6): a mapping from
// (assoc_sym, arg_type) to its reduced type. It is closed under reduction
// for any pair that appears in well-typed input (spec.md §3 invariant).
type EqEnv struct {
	entries map[eqKey]Type
}

// NewEqEnv builds an empty EqEnv; reductions are added with Put.
func NewEqEnv() *EqEnv {
	return &EqEnv{entries: map[eqKey]Type{}}
}

// Put records that assoc applied to arg reduces to result.
func (e *EqEnv) Put(assoc Symbol, arg Type, result Type) {
	e.entries[eqKey{sym: assoc.Key(), arg: arg.String()}] = result
}

// Reduce looks up the reduction of assoc applied to arg. The second return
// value is false if the environment has no entry — per spec.md §4.1/§6,
// that is an invariant violation the caller must raise as an internal
// error naming the offending location, not something Reduce recovers from.
func (e *EqEnv) Reduce(assoc Symbol, arg Type) (Type, bool) {
	if e == nil {
		return nil, false
	}
	t, ok := e.entries[eqKey{sym: assoc.Key(), arg: arg.String()}]
	return t, ok
}
