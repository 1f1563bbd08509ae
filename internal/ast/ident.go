package ast

import "strings"

// Ident is a single SQL identifier. Value holds the identifier without
// surrounding quotes; Quoted records whether it was written quoted.
type Ident struct {
	Value  string
	Quoted bool
}

// IsZero reports whether the identifier is absent.
func (i Ident) IsZero() bool {
	return i.Value == ""
}

// Normalized returns the identifier as the database resolves it:
// unquoted identifiers fold to lower case, quoted ones are kept verbatim.
func (i Ident) Normalized() string {
	if i.Quoted {
		return i.Value
	}
	return strings.ToLower(i.Value)
}

// String returns the identifier as written in the source.
func (i Ident) String() string {
	if !i.Quoted {
		return i.Value
	}
	return `"` + strings.ReplaceAll(i.Value, `"`, `""`) + `"`
}

// ObjectName is a possibly schema-qualified name such as public.users.
type ObjectName struct {
	Parts []Ident
}

// Name returns the unqualified last part.
func (n ObjectName) Name() Ident {
	if len(n.Parts) == 0 {
		return Ident{}
	}
	return n.Parts[len(n.Parts)-1]
}

// IsZero reports whether the name is absent.
func (n ObjectName) IsZero() bool {
	return len(n.Parts) == 0
}

// Key is the normalized dotted form used to compare names.
func (n ObjectName) Key() string {
	parts := make([]string, len(n.Parts))
	for i, p := range n.Parts {
		parts[i] = p.Normalized()
	}
	return strings.Join(parts, ".")
}

// String returns the dotted name as written.
func (n ObjectName) String() string {
	parts := make([]string, len(n.Parts))
	for i, p := range n.Parts {
		parts[i] = p.String()
	}
	return strings.Join(parts, ".")
}

// NewObjectName builds an ObjectName from unquoted parts. Mostly useful in tests.
func NewObjectName(parts ...string) ObjectName {
	n := ObjectName{Parts: make([]Ident, len(parts))}
	for i, p := range parts {
		n.Parts[i] = Ident{Value: p}
	}
	return n
}

func names(list []ObjectName) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.String()
	}
	return out
}
