package ir

// Constraint is a trait (or equality) constraint attached to a Scheme,
// e.g. "T: Show" or "T: Convert<U>". Generalized from
// internal/typesystem/types.go's Constraint{TypeVar, Trait, Args}.
type Constraint struct {
	TypeVar string
	Trait   string
	Args    []Type
}

// Scheme is a declared polymorphic type: ∀ TVars. Constraints ⇒ Base
// (spec.md §3 "declared scheme").
type Scheme struct {
	TVars       []TVar
	Constraints []Constraint
	Base        Type
}

func (s Scheme) IsMonomorphic() bool {
	return len(s.TVars) == 0
}

// Spec carries everything about a definition or signature that isn't its
// body: documentation, annotations, modifiers, type/formal parameters, the
// declared scheme, return/effect types, trait/equality constraints, and
// source location (spec.md §3 "A Spec carries...").
type Spec struct {
	Doc              string
	Annotations      []string
	Modifiers        []string
	TypeParams       []TVar
	Params           []Formal
	Scheme           Scheme
	ReturnTpe        Type
	EffectTpe        Type
	TraitConstraints []Constraint
	EqConstraints    []EqConstraint
	Loc              Location
}

// TopDef is a top-level definition: Spec plus Body (spec.md §3
// "Def{spec, body}").
type TopDef struct {
	Sym  Symbol
	Spec Spec
	Body Expr
}

// Sig is a top-level trait signature: Spec plus an optional default body
// (spec.md §3 "Sig{spec, default_body?}"). Trait names the owning trait and
// MethodName is the signature's unqualified name, both read by the trait
// resolver (spec.md §4.5).
type Sig struct {
	Sym         Symbol
	Spec        Spec
	DefaultBody Expr // nil if the signature has no default
	Trait       Symbol
	MethodName  string
}

// InstanceMember is one method definition inside a trait Instance.
type InstanceMember struct {
	Name string
	Def  TopDef
}

// Instance is one trait instance: a concrete target type plus its member
// definitions (spec.md §3 "Instance{type, body_defs, …}").
type Instance struct {
	Type    Type
	Members []InstanceMember
}

// TypeAlias is a type-level macro: Params substituted into Body to expand
// an application of Sym.
type TypeAlias struct {
	Sym    Symbol
	Params []TVar
	Body   Type
}

// Trait records a trait's identity. Trait resolution does not read it:
// instances are looked up by Sig.Trait's key in Root.Instances, and a
// default body is specialized under the signature's own symbol.
// SuperTraits is read-only context supplementing spec.md (see SPEC_FULL.md
// §10); nothing in this pass walks it.
type Trait struct {
	Sym         Symbol
	Namespace   []string
	Name        string
	SuperTraits []string
}

// Root is the External AST Interface (spec.md §6/§3): the subset of the
// surrounding compiler's IR this pass reads and writes.
type Root struct {
	Defs      map[string]*TopDef
	Sigs      map[string]*Sig
	Traits    map[string]*Trait
	Instances map[string][]*Instance // keyed by trait Symbol.Key()
	Aliases   map[string]*TypeAlias
	EqEnv     *EqEnv
}

// NewRoot builds an empty Root with initialized maps.
func NewRoot() *Root {
	return &Root{
		Defs:      map[string]*TopDef{},
		Sigs:      map[string]*Sig{},
		Traits:    map[string]*Trait{},
		Instances: map[string][]*Instance{},
		Aliases:   map[string]*TypeAlias{},
		EqEnv:     NewEqEnv(),
	}
}
