// Package types implements the canonical type dictionary (spec.md §4.A):
// built-in base types, class types, and lazily-instantiated list types,
// plus the numeric promotion graph.
//
// Type identity is interned in the Registry and is immutable; the one
// mutable per-use attribute a type carries contextually (is_reference) is
// split out into a separate Ref value (spec.md §9 "deepcopy of types"
// design note — this avoids a defensive deepcopy on every lookup).
package types

import "fmt"

// Kind discriminates the Type sum type.
type Kind int

const (
	KindVoid Kind = iota
	KindNumeric
	KindCharacter
	KindString
	KindClass
	KindList
)

// NumericKind distinguishes the three numeric representations.
type NumericKind int

const (
	Signed NumericKind = iota
	Unsigned
	FloatingPoint
)

// Type is a single canonical, interned entry in the registry. Every type
// reachable from user code has exactly one Type value representing it;
// equality of *Type pointers is equality of type identity.
type Type struct {
	Kind           Kind
	Keyword        string
	SyntacticSugar []string
	UnderlyingType string
	IsBasicType    bool

	// Numeric-only fields (Kind == KindNumeric).
	NumericKind NumericKind
	NumBits     int
	promotions  []*Type

	// List-only field (Kind == KindList).
	Inner *Type
}

// Ref is a use-site modifier carried alongside a *Type by the AST and the
// scope tables: the mutable is_reference flag the typing pass assigns to
// function/lifecycle arguments; list receivers of push/pop/size calls are
// not marked and stay plain values. Keeping it out of Type
// itself means registry lookups never need to copy the Type to avoid
// aliasing (spec.md invariant 7 in §8 still holds: Get returns the same
// *Type pointer every time a keyword is looked up, which is the whole
// point of interning; callers that need a use-site modifier wrap it in a
// Ref themselves).
type Ref struct {
	Type        *Type
	IsReference bool
}

// NonVoid reports whether t is a type other than void.
func (t *Type) NonVoid() bool { return t.Kind != KindVoid }

// CanPromoteTo reports whether t can be used where other is expected,
// either because they are the same type or because t promotes to other.
func (t *Type) CanPromoteTo(other *Type) bool {
	if t == other {
		return true
	}
	for _, p := range t.promotions {
		if p == other {
			return true
		}
	}
	return false
}

func (t *Type) String() string { return t.Keyword }

// Registry is the canonical dictionary of all types known during a single
// compilation: the fixed built-in table (spec.md §3), plus classes and
// list instantiations registered on demand.
type Registry struct {
	byKeyword map[string]*Type
	order     []string
}

// NewRegistry constructs a registry pre-populated with the fixed built-in
// type table and their promotion graph, and pre-instantiates list[char]
// for the file standard library (spec.md §4.A invariant).
func NewRegistry() *Registry {
	r := &Registry{byKeyword: make(map[string]*Type)}

	basics := []*Type{
		{Kind: KindVoid, Keyword: "void", UnderlyingType: "void", IsBasicType: true},
		{Kind: KindNumeric, Keyword: "u1", NumericKind: Unsigned, NumBits: 1,
			SyntacticSugar: []string{"bool"}, UnderlyingType: "bool", IsBasicType: true},
		{Kind: KindNumeric, Keyword: "u8", NumericKind: Unsigned, NumBits: 8, UnderlyingType: "uint8_t", IsBasicType: true},
		{Kind: KindNumeric, Keyword: "u16", NumericKind: Unsigned, NumBits: 16, UnderlyingType: "uint16_t", IsBasicType: true},
		{Kind: KindNumeric, Keyword: "u32", NumericKind: Unsigned, NumBits: 32, UnderlyingType: "uint32_t", IsBasicType: true},
		{Kind: KindNumeric, Keyword: "u64", NumericKind: Unsigned, NumBits: 64, UnderlyingType: "uint64_t", IsBasicType: true},
		{Kind: KindNumeric, Keyword: "s8", NumericKind: Signed, NumBits: 8, UnderlyingType: "int8_t", IsBasicType: true},
		{Kind: KindNumeric, Keyword: "s16", NumericKind: Signed, NumBits: 16, UnderlyingType: "int16_t", IsBasicType: true},
		{Kind: KindNumeric, Keyword: "s32", NumericKind: Signed, NumBits: 32, UnderlyingType: "int32_t", IsBasicType: true},
		{Kind: KindNumeric, Keyword: "s64", NumericKind: Signed, NumBits: 64, UnderlyingType: "int64_t", IsBasicType: true},
		{Kind: KindNumeric, Keyword: "f32", NumericKind: FloatingPoint, NumBits: 32, UnderlyingType: "float", IsBasicType: true},
		{Kind: KindNumeric, Keyword: "f64", NumericKind: FloatingPoint, NumBits: 64, UnderlyingType: "double", IsBasicType: true},
		// base: internal placeholder for an as-yet-undetermined integer literal.
		{Kind: KindNumeric, Keyword: "base", NumericKind: Signed, NumBits: 64, UnderlyingType: "int64_t", IsBasicType: true},
		{Kind: KindCharacter, Keyword: "char", UnderlyingType: "char", IsBasicType: true},
		{Kind: KindString, Keyword: "string", UnderlyingType: "char*", IsBasicType: true},
	}
	for _, t := range basics {
		r.register(t)
	}

	promote := func(from string, to ...string) {
		ft := r.byKeyword[from]
		for _, k := range to {
			ft.promotions = append(ft.promotions, r.byKeyword[k])
		}
	}
	promote("u1", "u8", "u16", "u32", "u64")
	promote("u8", "u16", "u32", "u64")
	promote("u16", "u32", "u64")
	promote("u32", "u64")
	promote("s8", "s16", "s32", "s64")
	promote("s16", "s32", "s64")
	promote("s32", "s64")
	promote("f32", "f64")

	r.AddListType(r.byKeyword["char"])

	return r
}

// register interns t under its keyword and every syntactic_sugar alias.
func (r *Registry) register(t *Type) {
	r.byKeyword[t.Keyword] = t
	r.order = append(r.order, t.Keyword)
	for _, alias := range t.SyntacticSugar {
		r.byKeyword[alias] = t
	}
}

// Add idempotently registers an unspecialised named type. Returns the
// canonical Type. The tokeniser registers class names with AddClassType,
// not with Add.
func (r *Registry) Add(keyword string) *Type {
	if t, ok := r.byKeyword[keyword]; ok {
		return t
	}
	t := &Type{Kind: KindVoid, Keyword: keyword}
	r.register(t)
	return t
}

// AddClassType idempotently registers (and returns) the canonical class
// type for keyword.
func (r *Registry) AddClassType(keyword string) *Type {
	if t, ok := r.byKeyword[keyword]; ok {
		if t.Kind != KindClass {
			panic(fmt.Sprintf("internal compiler error: %q already registered as a non-class type", keyword))
		}
		return t
	}
	t := &Type{Kind: KindClass, Keyword: keyword, UnderlyingType: keyword}
	r.register(t)
	return t
}

// AddListType idempotently registers (and returns) the canonical list[T]
// type for the given inner type.
func (r *Registry) AddListType(inner *Type) *Type {
	keyword := fmt.Sprintf("list[%s]", inner.Keyword)
	if t, ok := r.byKeyword[keyword]; ok {
		return t
	}
	t := &Type{Kind: KindList, Keyword: keyword, Inner: inner, UnderlyingType: "list_" + inner.Keyword}
	r.register(t)
	return t
}

// Get returns the canonical Type for keyword, or nil if unknown.
//
// Unlike the source implementation this returns the interned pointer
// directly rather than a defensive deep copy: identity is shared and
// immutable here, and the per-use is_reference flag lives in Ref instead
// (see the Ref doc comment).
func (r *Registry) Get(keyword string) *Type {
	return r.byKeyword[keyword]
}

// Keywords returns every registered keyword in registration order
// (including class and list instantiations, excluding sugar aliases),
// used by the emitter to iterate basic types deterministically and by
// tests asserting idempotent registration (spec.md §8 invariant 7).
func (r *Registry) Keywords() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// CallableFunctions returns the fixed map from list method name to the
// keyword of its return type (spec.md §4.D rule 9).
func CallableFunctions() map[string]string {
	return map[string]string{
		"push": "void",
		"pop":  "void",
		"size": "u64",
	}
}
