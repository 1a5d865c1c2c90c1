package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

// DomainRun prefixes run input hashes. The version suffix allows a future
// change of encoding without colliding with existing rows.
const DomainRun = "surreal-codegen/run/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InputHash identifies an inference input. It hashes canonical JSON of
//
//	{"globals":{<name>:<kind>...},"queries":<source>,"schema":<source>}
//
// with NFC-normalized sources, so byte-different but canonically equal
// text hashes the same.
func InputHash(schemaSrc, querySrc string, globals map[string]kind.Kind) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"globals":{`)

	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalString(&buf, name); err != nil {
			return "", err
		}
		buf.WriteByte(':')
		data, err := kind.Marshal(globals[name])
		if err != nil {
			return "", fmt.Errorf("InputHash: global %s: %w", name, err)
		}
		buf.Write(data)
	}

	buf.WriteString(`},"queries":`)
	if err := writeCanonicalString(&buf, querySrc); err != nil {
		return "", err
	}
	buf.WriteString(`,"schema":`)
	if err := writeCanonicalString(&buf, schemaSrc); err != nil {
		return "", err
	}
	buf.WriteByte('}')

	return hashWithDomain(DomainRun, buf.Bytes()), nil
}

// writeCanonicalString writes s NFC-normalized without HTML escaping.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}
