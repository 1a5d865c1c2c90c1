package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

// marshalKinds encodes return types as a canonical JSON array TEXT.
func marshalKinds(kinds []kind.Kind) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, k := range kinds {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := kind.Marshal(k)
		if err != nil {
			return "", fmt.Errorf("marshal return type %d: %w", i, err)
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.String(), nil
}

// marshalVariables encodes variables as a canonical JSON object TEXT.
// Keys are plain identifiers, so byte order equals UTF-16 order.
func marshalVariables(vars map[string]kind.Kind) (string, error) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalString(&buf, name); err != nil {
			return "", err
		}
		buf.WriteByte(':')
		data, err := kind.Marshal(vars[name])
		if err != nil {
			return "", fmt.Errorf("marshal variable %s: %w", name, err)
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.String(), nil
}

func unmarshalKinds(data string) ([]kind.Kind, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal return types: %w", err)
	}
	kinds := make([]kind.Kind, len(raw))
	for i, r := range raw {
		k, err := kind.Unmarshal(r)
		if err != nil {
			return nil, fmt.Errorf("unmarshal return type %d: %w", i, err)
		}
		kinds[i] = k
	}
	return kinds, nil
}

func unmarshalVariables(data string) (map[string]kind.Kind, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal variables: %w", err)
	}
	vars := make(map[string]kind.Kind, len(raw))
	for name, r := range raw {
		k, err := kind.Unmarshal(r)
		if err != nil {
			return nil, fmt.Errorf("unmarshal variable %s: %w", name, err)
		}
		vars[name] = k
	}
	return vars, nil
}
