package codegen

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/DrewRidley/surreal-codegen/internal/infer"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

const (
	header    = "Code generated by surreal-codegen. DO NOT EDIT."
	pkgJSON   = "encoding/json"
	pkgTime   = "time"
	pkgUUID   = "github.com/google/uuid"
	recordID  = "RecordID"
	varsName  = "Vars"
	resultSfx = "Result"
)

// Query is one inferred query document.
type Query struct {
	// Name is the Go name prefix, usually QueryName of the source file.
	Name   string
	Result *infer.Result
}

// Generator accumulates declarations for a single Go file.
type Generator struct {
	pkg      string
	decls    []jen.Code
	declared map[string]bool
	pending  []pendingStruct
	record   bool
}

type pendingStruct struct {
	name string
	obj  kind.Object
}

// New returns a generator for package pkg.
func New(pkg string) *Generator {
	return &Generator{pkg: pkg, declared: make(map[string]bool)}
}

// Add renders the source constant, the variables struct and one result type
// per statement of q. Statements that return null, such as LET, get no type.
func (g *Generator) Add(q Query) error {
	if q.Result == nil {
		return fmt.Errorf("query %s: no inference result", q.Name)
	}
	name := Pascal(q.Name)
	if g.declared[name+"Query"] {
		return fmt.Errorf("query %s: declared twice", name)
	}
	g.declared[name+"Query"] = true

	g.emit(
		jen.Commentf("%sQuery is the SurrealQL source of the %s query.", name, name),
		jen.Const().Id(name+"Query").Op("=").Lit(source(q.Result)),
	)

	if len(q.Result.Variables) > 0 {
		vars := kind.Object(q.Result.Variables)
		typeName := g.reserve(name + varsName)
		g.emit(
			jen.Commentf("%s holds the parameters of %sQuery.", typeName, name),
			jen.Type().Id(typeName).Add(g.structType(typeName, vars)),
		)
		g.flush()
	}

	for i, k := range q.Result.ReturnTypes {
		if k == kind.Null {
			continue
		}
		typeName := name + resultSfx
		if len(q.Result.ReturnTypes) > 1 {
			typeName += strconv.Itoa(i)
		}
		typeName = g.reserve(typeName)
		var typ *jen.Statement
		if obj, ok := k.(kind.Object); ok {
			typ = g.structType(typeName, obj)
		} else {
			typ = g.goType(typeName, k)
		}
		g.emit(
			jen.Commentf("%s is %s.", typeName, describe(i, len(q.Result.ReturnTypes), k)),
			jen.Type().Id(typeName).Add(typ),
		)
		g.flush()
	}
	return nil
}

func describe(i, n int, k kind.Kind) string {
	if n == 1 {
		return "the result of the query: " + k.String()
	}
	return fmt.Sprintf("the result of statement %d: %s", i, k.String())
}

func source(res *infer.Result) string {
	parts := make([]string, len(res.Statements))
	for i, s := range res.Statements {
		parts[i] = s.String() + ";"
	}
	return strings.Join(parts, "\n")
}

// emit appends one declaration group followed by a blank line.
func (g *Generator) emit(code ...jen.Code) {
	g.decls = append(g.decls, code...)
	g.decls = append(g.decls, jen.Line())
}

// reserve returns name, or name with a numeric suffix if it is taken.
func (g *Generator) reserve(name string) string {
	candidate := name
	for i := 2; g.declared[candidate]; i++ {
		candidate = name + strconv.Itoa(i)
	}
	g.declared[candidate] = true
	return candidate
}

// flush declares nested structs queued while rendering a type, parents first.
func (g *Generator) flush() {
	for len(g.pending) > 0 {
		p := g.pending[0]
		g.pending = g.pending[1:]
		g.emit(jen.Type().Id(p.name).Add(g.structType(p.name, p.obj)))
	}
}

func (g *Generator) structType(name string, obj kind.Object) *jen.Statement {
	used := make(map[string]bool, len(obj))
	fields := make([]jen.Code, 0, len(obj))
	for _, key := range obj.SortedKeys() {
		field := Pascal(key)
		for i := 2; used[field]; i++ {
			field = Pascal(key) + strconv.Itoa(i)
		}
		used[field] = true

		k := obj[key]
		tag := key
		if _, ok := k.(kind.Option); ok {
			tag += ",omitempty"
		}
		fields = append(fields, jen.Id(field).Add(g.goType(name+field, k)).Tag(map[string]string{"json": tag}))
	}
	return jen.Struct(fields...)
}

// goType maps k to a Go type. name seeds the names of nested structs.
func (g *Generator) goType(name string, k kind.Kind) *jen.Statement {
	switch k := k.(type) {
	case kind.Scalar:
		return scalarType(k)
	case kind.Array:
		return jen.Index().Add(g.goType(Singular(name), k.Elem))
	case kind.Object:
		n := g.reserve(name)
		g.pending = append(g.pending, pendingStruct{name: n, obj: k})
		return jen.Id(n)
	case kind.Record:
		g.record = true
		return jen.Id(recordID)
	case kind.Option:
		inner := g.goType(name, k.Inner)
		if nilable(k.Inner) {
			return inner
		}
		return jen.Op("*").Add(inner)
	case kind.Either:
		return g.eitherType(name, k)
	}
	return jen.Any()
}

func (g *Generator) eitherType(name string, e kind.Either) *jen.Statement {
	var alts []kind.Kind
	for _, a := range e.Alts {
		if a != kind.Null {
			alts = append(alts, a)
		}
	}
	if len(alts) == 1 {
		return g.goType(name, kind.Option{Inner: alts[0]})
	}
	records := true
	for _, a := range alts {
		if _, ok := a.(kind.Record); !ok {
			records = false
			break
		}
	}
	if records && len(alts) > 0 {
		g.record = true
		return jen.Id(recordID)
	}
	return jen.Qual(pkgJSON, "RawMessage")
}

func scalarType(s kind.Scalar) *jen.Statement {
	switch s {
	case kind.Bool:
		return jen.Bool()
	case kind.Int:
		return jen.Int64()
	case kind.Float:
		return jen.Float64()
	case kind.Decimal, kind.Number:
		return jen.Qual(pkgJSON, "Number")
	case kind.String, kind.Duration:
		return jen.String()
	case kind.Datetime:
		return jen.Qual(pkgTime, "Time")
	case kind.Uuid:
		return jen.Qual(pkgUUID, "UUID")
	case kind.Bytes:
		return jen.Index().Byte()
	}
	return jen.Any()
}

func nilable(k kind.Kind) bool {
	switch k := k.(type) {
	case kind.Array:
		return true
	case kind.Scalar:
		return k == kind.Any || k == kind.Null || k == kind.Bytes
	case kind.Either:
		return true
	}
	return false
}

// Render writes the formatted Go file.
func (g *Generator) Render(w io.Writer) error {
	f := jen.NewFile(g.pkg)
	f.HeaderComment(header)
	if g.record {
		f.Comment(recordID + ` is a SurrealDB record id such as "user:alice".`)
		f.Type().Id(recordID).String()
		f.Line()
	}
	for _, d := range g.decls {
		f.Add(d)
	}
	return f.Render(w)
}

// Generate renders queries into one Go file of package pkg.
func Generate(pkg string, queries ...Query) ([]byte, error) {
	g := New(pkg)
	for _, q := range queries {
		if err := g.Add(q); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if err := g.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", pkg, err)
	}
	return buf.Bytes(), nil
}
