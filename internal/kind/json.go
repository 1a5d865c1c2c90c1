package kind

import (
	"bytes"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Marshal encodes k as canonical JSON: object keys sorted by UTF-16 code
// units, strings NFC-normalized, no HTML escaping. Equal kinds always encode
// to identical bytes, which makes the output usable for hashing.
//
// Encoding:
//
//	{"kind":"string"}
//	{"elem":<kind>,"kind":"array"}
//	{"fields":{"name":<kind>},"kind":"object"}
//	{"kind":"record","tables":["user"]}
//	{"inner":<kind>,"kind":"option"}
//	{"alts":[<kind>...],"kind":"either"}
func Marshal(k Kind) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, k); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, k Kind) error {
	switch v := k.(type) {
	case nil:
		return fmt.Errorf("cannot encode nil kind")
	case Scalar:
		buf.WriteString(`{"kind":`)
		writeString(buf, v.String())
		buf.WriteByte('}')
	case Array:
		buf.WriteString(`{"elem":`)
		if err := encode(buf, v.Elem); err != nil {
			return fmt.Errorf("array element: %w", err)
		}
		buf.WriteString(`,"kind":"array"}`)
	case Object:
		buf.WriteString(`{"fields":{`)
		for i, key := range v.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, key)
			buf.WriteByte(':')
			if err := encode(buf, v[key]); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
		}
		buf.WriteString(`},"kind":"object"}`)
	case Record:
		if len(v.Tables) == 0 {
			return fmt.Errorf("record without tables")
		}
		buf.WriteString(`{"kind":"record","tables":[`)
		for i, t := range v.Tables {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, t)
		}
		buf.WriteString(`]}`)
	case Option:
		buf.WriteString(`{"inner":`)
		if err := encode(buf, v.Inner); err != nil {
			return fmt.Errorf("option: %w", err)
		}
		buf.WriteString(`,"kind":"option"}`)
	case Either:
		buf.WriteString(`{"alts":[`)
		for i, a := range v.Alts {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, a); err != nil {
				return fmt.Errorf("either[%d]: %w", i, err)
			}
		}
		buf.WriteString(`],"kind":"either"}`)
	default:
		return fmt.Errorf("unknown kind type: %T", k)
	}
	return nil
}

// writeString writes s as a JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// Encoding a plain string cannot fail.
	_ = enc.Encode(norm.NFC.String(s))
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
}

// wire is the decoded shape of one encoded kind.
type wire struct {
	Kind   string                     `json:"kind"`
	Elem   json.RawMessage            `json:"elem,omitempty"`
	Inner  json.RawMessage            `json:"inner,omitempty"`
	Fields map[string]json.RawMessage `json:"fields,omitempty"`
	Tables []string                   `json:"tables,omitempty"`
	Alts   []json.RawMessage          `json:"alts,omitempty"`
}

// Unmarshal decodes a kind produced by Marshal.
func Unmarshal(data []byte) (Kind, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	switch w.Kind {
	case "array":
		elem, err := Unmarshal(w.Elem)
		if err != nil {
			return nil, fmt.Errorf("array element: %w", err)
		}
		return ArrayOf(elem), nil
	case "object":
		obj := make(Object, len(w.Fields))
		for key, raw := range w.Fields {
			v, err := Unmarshal(raw)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			obj[key] = v
		}
		return obj, nil
	case "record":
		if len(w.Tables) == 0 {
			return nil, fmt.Errorf("record without tables")
		}
		return Rec(w.Tables...), nil
	case "option":
		inner, err := Unmarshal(w.Inner)
		if err != nil {
			return nil, fmt.Errorf("option: %w", err)
		}
		return Option{Inner: inner}, nil
	case "either":
		alts := make([]Kind, len(w.Alts))
		for i, raw := range w.Alts {
			v, err := Unmarshal(raw)
			if err != nil {
				return nil, fmt.Errorf("either[%d]: %w", i, err)
			}
			alts[i] = v
		}
		return Either{Alts: alts}, nil
	default:
		s, ok := ScalarByName(w.Kind)
		if !ok {
			return nil, fmt.Errorf("unknown kind %q", w.Kind)
		}
		return s, nil
	}
}

// Value adapts a Kind to encoding/json so it can sit inside response structs.
type Value struct {
	K Kind
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return Marshal(v.K)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	k, err := Unmarshal(data)
	if err != nil {
		return err
	}
	v.K = k
	return nil
}

// Values wraps each kind in a Value.
func Values(kinds []Kind) []Value {
	out := make([]Value, len(kinds))
	for i, k := range kinds {
		out[i] = Value{K: k}
	}
	return out
}

// ValueMap wraps each kind of m in a Value.
func ValueMap(m map[string]Kind) map[string]Value {
	out := make(map[string]Value, len(m))
	for name, k := range m {
		out[name] = Value{K: k}
	}
	return out
}
