package relmodel

import "strings"

// Type is a normalized semantic type name, e.g. "integer" or "bool".
// The empty Type means "any type".
type Type string

// Well-known types.
const (
	Any      Type = ""
	Integer  Type = "integer"
	BigInt   Type = "bigint"
	SmallInt Type = "smallint"
	Numeric  Type = "numeric"
	Bool     Type = "bool"
	Text     Type = "text"
)

var typeSynonyms = map[string]Type{
	"int":               Integer,
	"int4":              Integer,
	"integer":           Integer,
	"int8":              BigInt,
	"bigint":            BigInt,
	"int2":              SmallInt,
	"smallint":          SmallInt,
	"tinyint":           SmallInt,
	"decimal":           Numeric,
	"numeric":           Numeric,
	"bool":              Bool,
	"boolean":           Bool,
	"text":              Text,
	"varchar":           Text,
	"character varying": Text,
	"string":            Text,
}

// NormalizeType maps a declared type name onto its canonical Type.
// Length and precision modifiers ("varchar(20)", "numeric(10,2)") are
// dropped. Unknown names are lower-cased and kept as-is.
func NormalizeType(name string) Type {
	n := strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexByte(n, '('); i >= 0 {
		n = strings.TrimSpace(n[:i])
	}
	if t, ok := typeSynonyms[n]; ok {
		return t
	}
	return Type(n)
}

// IsNumeric reports whether a decimal literal is a valid value of t.
func (t Type) IsNumeric() bool {
	switch t {
	case Integer, BigInt, SmallInt, Numeric:
		return true
	}
	return false
}

// HasLiteral reports whether the generator can always produce a literal
// of type t without consulting the scope.
func (t Type) HasLiteral() bool {
	return t.IsNumeric() || t == Bool
}

// Matches reports whether a value of type t satisfies a request for want.
// The Any request is satisfied by every type.
func (t Type) Matches(want Type) bool {
	return want == Any || t == want
}

func (t Type) String() string {
	if t == Any {
		return "any"
	}
	return string(t)
}
