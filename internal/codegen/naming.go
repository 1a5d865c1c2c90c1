package codegen

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// acronyms are rendered fully upper-cased in Go identifiers.
var acronyms = map[string]bool{
	"ACL":  true,
	"API":  true,
	"CPU":  true,
	"DB":   true,
	"DNS":  true,
	"HTML": true,
	"HTTP": true,
	"ID":   true,
	"IP":   true,
	"JSON": true,
	"SQL":  true,
	"TTL":  true,
	"UID":  true,
	"URI":  true,
	"URL":  true,
	"UUID": true,
	"XML":  true,
}

var rules = ruleset()

func ruleset() *inflect.Ruleset {
	r := inflect.NewDefaultRuleset()
	for a := range acronyms {
		r.AddAcronym(a)
	}
	return r
}

// AddAcronym registers an extra acronym, e.g. "GQL".
func AddAcronym(word string) {
	word = strings.ToUpper(word)
	acronyms[word] = true
	rules.AddAcronym(word)
}

// words splits s on non-alphanumeric runes and on case boundaries:
// "memberOf" -> [member Of], "HTTPCode" -> [HTTP Code], "->org" -> [org].
func words(s string) []string {
	var (
		out []string
		cur []rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	rs := []rune(s)
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 && unicode.IsUpper(r) {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

func title(w string) string {
	return cases.Title(language.English).String(w)
}

// Pascal converts a field, table or file name to an exported identifier.
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		if up := strings.ToUpper(w); acronyms[up] {
			b.WriteString(up)
			continue
		}
		b.WriteString(title(strings.ToLower(w)))
	}
	id := b.String()
	switch {
	case id == "":
		return "Field"
	case unicode.IsDigit(rune(id[0])):
		return "F" + id
	}
	return id
}

// Snake converts an identifier to lower snake case.
func Snake(s string) string {
	ws := words(s)
	for i, w := range ws {
		ws[i] = strings.ToLower(w)
	}
	return strings.Join(ws, "_")
}

// Singular returns the singular of a Pascal-cased name, or name+"Item" when
// inflection leaves it unchanged.
func Singular(name string) string {
	if s := rules.Singularize(name); s != "" && s != name {
		return s
	}
	return name + "Item"
}

// QueryName derives the Go name of a query file: "queries/list_users.cue"
// -> "ListUsers".
func QueryName(path string) string {
	base := filepath.Base(path)
	return Pascal(strings.TrimSuffix(base, filepath.Ext(base)))
}

// FileName is the generated file for a query name: "ListUsers" ->
// "list_users.gen.go".
func FileName(name string) string {
	return Snake(name) + ".gen.go"
}
