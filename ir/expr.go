package ir

// Expr is the sum of expression shapes named in spec.md §3. Generalized
// from the teacher's Visitor/Accept AST (internal/ast/ast_core.go) to a
// type-switch-friendly closed sum, matching the style the teacher itself
// uses for Type recursion (internal/typesystem/types.go's
// ApplyWithCycleCheck, internal/typesystem/unify.go's unifyInternal):
// the specializer is a pure bottom-up rewrite with no third-party visitor
// to satisfy, so a switch on a sealed interface is the idiomatic fit.
type Expr interface {
	Meta() *ExprMeta
}

// ExprMeta is the metadata every expression carries. Eff is nil for
// expression forms that don't track an effect of their own (e.g. Const).
type ExprMeta struct {
	Loc Location
	Tpe Type
	Eff Type
}

func (m ExprMeta) Meta() *ExprMeta { return &m }

// Var is a reference to a local binder.
type Var struct {
	ExprMeta
	Sym Symbol
}

// DefRef is a reference to a top-level definition at a concrete
// instantiation type, awaiting specialization (spec.md §3/§4.6 "Expr::Def").
type DefRef struct {
	ExprMeta
	Sym Symbol
	At  Type
}

// SigRef is a reference to a trait signature at a concrete instantiation
// type, awaiting resolution to a concrete Def (spec.md §4.5/§4.6).
type SigRef struct {
	ExprMeta
	Sym Symbol
	At  Type
}

// Const is a literal constant.
type Const struct {
	ExprMeta
	Value any
}

// Formal is one lambda/definition formal parameter.
type Formal struct {
	Sym Symbol
	Tpe Type
}

// Lambda is a function literal.
type Lambda struct {
	ExprMeta
	Params []Formal
	Body   Expr
}

// Apply is a general (non-intrinsic) application.
type Apply struct {
	ExprMeta
	Fn   Expr
	Args []Expr
}

// ApplyAtomic is an application of a built-in/intrinsic operation.
type ApplyAtomic struct {
	ExprMeta
	Op   string
	Args []Expr
}

// Let is a non-recursive binding.
type Let struct {
	ExprMeta
	Sym   Symbol
	Bound Expr
	Body  Expr
}

// LetRec is a (possibly self-)recursive binding: Sym is in scope in Bound
// as well as Body.
type LetRec struct {
	ExprMeta
	Sym   Symbol
	Bound Expr
	Body  Expr
}

// Scope introduces a region: Region is the effect variable scoping
// allocation-like effects raised inside Body (spec.md §4.6 "Scope", §9
// "Region variable").
type Scope struct {
	ExprMeta
	Sym    Symbol
	Region TVar
	Body   Expr
}

// If is a conditional.
type If struct {
	ExprMeta
	Cond, Then, Else Expr
}

// Stm is a statement sequence; the last statement is the result.
type Stm struct {
	ExprMeta
	Stmts []Expr
}

// Discard evaluates Value for effect and discards its result, then
// evaluates Rest.
type Discard struct {
	ExprMeta
	Value Expr
	Rest  Expr
}

// MatchRule is one arm of a Match.
type MatchRule struct {
	Pattern Pattern
	Guard   Expr // nil if no guard
	Body    Expr
}

// Match is a structural pattern match (spec.md §4.6 "Match").
type Match struct {
	ExprMeta
	Scrutinee Expr
	Rules     []MatchRule
}

// TypeMatchRule is one arm of a TypeMatch: Sym binds the scrutinee,
// narrowed to RuleTpe, inside Body.
type TypeMatchRule struct {
	Sym     Symbol
	RuleTpe Type
	Body    Expr
}

// TypeMatch is a runtime type test with a narrowing let-bind (spec.md §4.6
// "TypeMatch"). ScrutineeTpe is the scrutinee's type *before* strict
// defaulting, since type-match rules must be tested against the
// non-strict form (§4.6 step 1: rigid type variables).
type TypeMatch struct {
	ExprMeta
	Scrutinee    Expr
	ScrutineeTpe Type
	Rules        []TypeMatchRule
	ResultTpe    Type
}

// VectorLit is a vector literal.
type VectorLit struct {
	ExprMeta
	Elems []Expr
}

// VectorLoad indexes into a vector.
type VectorLoad struct {
	ExprMeta
	Vector Expr
	Index  Expr
}

// VectorLength returns a vector's length.
type VectorLength struct {
	ExprMeta
	Vector Expr
}

// Ascribe annotates an expression's static type without affecting runtime
// behavior.
type Ascribe struct {
	ExprMeta
	Value Expr
	As    Type
}

// Cast is a source-declared type/effect annotation. Per spec.md §4.6, its
// source-declared annotations (SourceTpe/SourceEff) are dropped during
// specialization — they exist only so the type-checker had something to
// check against, and this pass erases them rather than substituting them.
type Cast struct {
	ExprMeta
	Value     Expr
	SourceTpe Type
	SourceEff Type
}

// CatchClause is one arm of a TryCatch.
type CatchClause struct {
	Sym    Symbol
	ExnTpe Type
	Body   Expr
}

// TryCatch is Java-style exception handling.
type TryCatch struct {
	ExprMeta
	Body    Expr
	Catches []CatchClause
}

// HandlerRule is one operation clause of a TryWith handler. Params includes
// the continuation parameter as one of its entries (spec.md §4.6 "TryWith").
type HandlerRule struct {
	Op     string
	Params []Formal
	Body   Expr
}

// TryWith installs an algebraic effect handler for Effect around Body.
type TryWith struct {
	ExprMeta
	Effect Symbol
	Body   Expr
	Rules  []HandlerRule
}

// Do invokes an effect operation (spec.md glossary: "effect operation
// invocation"). Unlike SigRef, Do needs no trait resolution: it is a
// request sent to whichever handler is installed at runtime, so
// specialization only substitutes types and recurses structurally.
type Do struct {
	ExprMeta
	Effect Symbol
	Op     string
	Args   []Expr
}

// ObjectMethod is one method of a NewObject literal.
type ObjectMethod struct {
	Name string
	Fn   *Lambda
}

// NewObject is an object literal with methods.
type NewObject struct {
	ExprMeta
	Methods []ObjectMethod
}
