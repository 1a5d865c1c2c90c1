package kind

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// Kind is a sealed interface representing an inferred type.
// Only Scalar, Array, Object, Record, Option and Either implement it.
type Kind interface {
	kindNode() // Sealed - only these types implement it
	String() string
}

// Scalar is a leaf kind without children.
type Scalar uint8

// Scalar kinds. Any is the zero value and doubles as the fallback for
// constructs whose type cannot be expressed.
const (
	Any Scalar = iota
	Null
	Bool
	Int
	Float
	Decimal
	Number
	String
	Datetime
	Duration
	Uuid
	Bytes
)

var scalarNames = [...]string{
	Any:      "any",
	Null:     "null",
	Bool:     "bool",
	Int:      "int",
	Float:    "float",
	Decimal:  "decimal",
	Number:   "number",
	String:   "string",
	Datetime: "datetime",
	Duration: "duration",
	Uuid:     "uuid",
	Bytes:    "bytes",
}

func (Scalar) kindNode() {}

func (s Scalar) String() string {
	if int(s) < len(scalarNames) {
		return scalarNames[s]
	}
	return "any"
}

// ScalarByName returns the scalar with the given lowercase name.
func ScalarByName(name string) (Scalar, bool) {
	for i, n := range scalarNames {
		if n == name {
			return Scalar(i), true
		}
	}
	return Any, false
}

// Array is a homogeneous list of Elem.
type Array struct {
	Elem Kind
}

func (Array) kindNode() {}

func (a Array) String() string {
	return "array<" + str(a.Elem) + ">"
}

// Object maps field names to kinds. Key order is irrelevant.
type Object map[string]Kind

func (Object) kindNode() {}

func (o Object) String() string {
	var b strings.Builder
	b.WriteString("object{")
	for i, k := range o.SortedKeys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteKey(k))
		b.WriteString(": ")
		b.WriteString(str(o[k]))
	}
	b.WriteByte('}')
	return b.String()
}

// SortedKeys returns the field names in canonical order.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// Merge copies every field of other into o, overwriting existing keys.
func (o Object) Merge(other Object) {
	for k, v := range other {
		o[k] = Clone(v)
	}
}

// Record is a reference to a row of one of Tables. Tables is never empty.
type Record struct {
	Tables []string
}

func (Record) kindNode() {}

func (r Record) String() string {
	return "record<" + strings.Join(r.Tables, " | ") + ">"
}

// Option is a value of Inner or nothing.
type Option struct {
	Inner Kind
}

func (Option) kindNode() {}

func (o Option) String() string {
	return "option<" + str(o.Inner) + ">"
}

// Either is one of an ordered, deduplicated set of alternatives.
type Either struct {
	Alts []Kind
}

func (Either) kindNode() {}

func (e Either) String() string {
	parts := make([]string, len(e.Alts))
	for i, a := range e.Alts {
		parts[i] = str(a)
	}
	return strings.Join(parts, " | ")
}

// quoteKey quotes field names that are not plain identifiers.
func quoteKey(k string) string {
	if isIdent(k) {
		return k
	}
	return strconv.Quote(k)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func str(k Kind) string {
	if k == nil {
		return "any"
	}
	return k.String()
}

// Rec creates a Record kind for the given tables.
func Rec(tables ...string) Record {
	return Record{Tables: tables}
}

// ArrayOf wraps k in an Array.
func ArrayOf(k Kind) Array {
	return Array{Elem: k}
}

// Optional wraps k in an Option unless it already is one.
func Optional(k Kind) Kind {
	if o, ok := k.(Option); ok {
		return o
	}
	return Option{Inner: k}
}

// IsDoubleOptional reports whether k is Option<Option<_>>.
func IsDoubleOptional(k Kind) bool {
	o, ok := k.(Option)
	if !ok {
		return false
	}
	_, ok = o.Inner.(Option)
	return ok
}

// Flatten collapses a stack of Options into a single Option.
func Flatten(k Kind) Kind {
	for {
		o, ok := k.(Option)
		if !ok {
			return k
		}
		inner, ok := o.Inner.(Option)
		if !ok {
			return o
		}
		k = inner
	}
}

// Union combines kinds into an Either. Nested Eithers are flattened, equal
// alternatives are dropped (first occurrence wins) and a single remaining
// alternative is returned as is.
func Union(kinds ...Kind) Kind {
	var alts []Kind
	var add func(k Kind)
	add = func(k Kind) {
		if e, ok := k.(Either); ok {
			for _, a := range e.Alts {
				add(a)
			}
			return
		}
		for _, existing := range alts {
			if Equal(existing, k) {
				return
			}
		}
		alts = append(alts, k)
	}
	for _, k := range kinds {
		add(k)
	}
	switch len(alts) {
	case 0:
		return Any
	case 1:
		return alts[0]
	default:
		return Either{Alts: alts}
	}
}

// Clone returns a deep copy of k.
func Clone(k Kind) Kind {
	switch v := k.(type) {
	case nil:
		return nil
	case Scalar:
		return v
	case Array:
		return Array{Elem: Clone(v.Elem)}
	case Object:
		return v.Clone()
	case Record:
		return Record{Tables: slices.Clone(v.Tables)}
	case Option:
		return Option{Inner: Clone(v.Inner)}
	case Either:
		alts := make([]Kind, len(v.Alts))
		for i, a := range v.Alts {
			alts[i] = Clone(a)
		}
		return Either{Alts: alts}
	default:
		return k
	}
}

// Clone returns a deep copy of the object.
func (o Object) Clone() Object {
	out := make(Object, len(o))
	for k, v := range o {
		out[k] = Clone(v)
	}
	return out
}

// compareKeys orders keys by UTF-16 code units so that the text rendering and
// the canonical JSON encoding agree on field order.
func compareKeys(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
