package ir

import "strings"

// Symbol identifies a top-level definition, a signature, a trait, or a local
// binder. Source-level symbols carry no UID; symbols minted during
// specialization (fresh top-level definitions, §4.7, and fresh local
// binders, §4.8) carry a UID that makes them globally unique, so that
// "for any two distinct specializations of the same source symbol, their
// fresh symbols differ" (spec.md §3) holds by construction rather than by
// convention.
type Symbol struct {
	Namespace []string
	Name      string
	UID       string
}

// NewSymbol builds a source-level symbol with no UID.
func NewSymbol(namespace []string, name string) Symbol {
	return Symbol{Namespace: namespace, Name: name}
}

// Fresh returns a copy of s carrying uid, identifying a freshened copy of s.
func (s Symbol) Fresh(uid string) Symbol {
	return Symbol{Namespace: s.Namespace, Name: s.Name, UID: uid}
}

// Qualified reports whether s lives in a non-empty namespace.
func (s Symbol) Qualified() bool {
	return len(s.Namespace) > 0
}

// Key returns a string uniquely identifying s, suitable as a map key.
// Symbol itself is not comparable with == because Namespace is a slice.
func (s Symbol) Key() string {
	return s.String()
}

func (s Symbol) String() string {
	var b strings.Builder
	for _, n := range s.Namespace {
		b.WriteString(n)
		b.WriteByte('.')
	}
	b.WriteString(s.Name)
	if s.UID != "" {
		b.WriteByte('#')
		b.WriteString(s.UID)
	}
	return b.String()
}
