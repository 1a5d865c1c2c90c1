package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

// Validation error codes (E100-E199)
const (
	ErrNilDocument = "E100" // no document to validate

	// Schema errors (E101-E109)
	ErrUndefinedEndpoint = "E101" // relation in/out names an undefined table
	ErrDuplicateField    = "E102" // field path defined twice on one table
	ErrUndefinedLink     = "E103" // record<T> names an undefined table
	ErrFieldBeforeTable  = "E104" // field defined before its table
	ErrDuplicateTable    = "E105" // table defined twice

	// Query errors (E110-E119)
	ErrUndefinedTarget = "E110" // statement target names an undefined table
	ErrEmptyTargets    = "E111" // statement has no targets
	ErrUndefinedGraph  = "E112" // graph step names an undefined table
)

// ValidationError represents a document validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled document for references to undefined tables
// and duplicate definitions. Returns all errors found (does not fail-fast).
func Validate(doc *Document) []ValidationError {
	if doc == nil {
		return []ValidationError{{Field: "document", Message: "no document", Code: ErrNilDocument}}
	}

	v := &validator{tables: make(map[string]bool)}
	for _, def := range doc.Definitions {
		if t, ok := def.(*ast.DefineTable); ok {
			if v.tables[t.Name] {
				v.add(ErrDuplicateTable, "table."+t.Name, "table %q defined twice", t.Name)
			}
			v.tables[t.Name] = true
		}
	}

	v.schema(doc.Definitions)
	for i, stmt := range doc.Statements {
		v.statement(fmt.Sprintf("queries[%d]", i), stmt)
	}
	return v.errs
}

type validator struct {
	tables map[string]bool
	errs   []ValidationError
}

func (v *validator) add(code, field, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
}

// table reports an undefined table name, suggesting the closest match.
func (v *validator) table(code, field, name string) {
	if v.tables[name] {
		return
	}
	msg := fmt.Sprintf("undefined table %q", name)
	if s := v.suggest(name); s != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", s)
	}
	v.errs = append(v.errs, ValidationError{Field: field, Message: msg, Code: code})
}

// suggest returns the defined table closest to name within an edit
// distance of two.
func (v *validator) suggest(name string) string {
	names := make([]string, 0, len(v.tables))
	for t := range v.tables {
		names = append(names, t)
	}
	sort.Strings(names)

	best, bestDist := "", 3
	for _, t := range names {
		if d := levenshtein.ComputeDistance(name, t); d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

func (v *validator) schema(defs []ast.Definition) {
	seen := make(map[string]bool)
	declared := make(map[string]bool)

	for _, def := range defs {
		switch d := def.(type) {
		case *ast.DefineTable:
			declared[d.Name] = true
			if d.Relation != nil {
				for _, t := range d.Relation.In {
					v.table(ErrUndefinedEndpoint, "table."+d.Name+".relation.in", t)
				}
				for _, t := range d.Relation.Out {
					v.table(ErrUndefinedEndpoint, "table."+d.Name+".relation.out", t)
				}
			}
		case *ast.DefineField:
			field := "table." + d.Table + ".fields." + strings.Join(d.Path, ".")
			if !declared[d.Table] {
				v.add(ErrFieldBeforeTable, field, "field defined before table %q", d.Table)
			}
			key := d.Table + "\x00" + strings.Join(d.Path, ".")
			if seen[key] {
				v.add(ErrDuplicateField, field, "field %q defined twice", strings.Join(d.Path, "."))
			}
			seen[key] = true
			for _, t := range linkedTables(d.Type) {
				v.table(ErrUndefinedLink, field, t)
			}
		}
	}
}

func (v *validator) statement(field string, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Select:
		v.targets(field+".from", s.What)
		v.value(field+".where", s.Where)
		for _, item := range s.Fields.Items {
			v.value(field+".select", item.Expr)
		}
	case *ast.Create:
		v.targets(field+".create", s.What)
		v.data(field, s.Data)
	case *ast.Update:
		v.targets(field+".update", s.What)
		v.data(field, s.Data)
		v.value(field+".where", s.Where)
	case *ast.Delete:
		v.targets(field+".delete", s.What)
		v.value(field+".where", s.Where)
	case *ast.Insert:
		v.targets(field+".insert", []ast.Value{s.Into})
		v.data(field, s.Data)
	case *ast.Relate:
		v.targets(field+".relate", []ast.Value{s.Kind})
		v.data(field, s.Data)
	case *ast.Let:
		v.value(field+".value", s.Value)
	case *ast.Return:
		v.value(field+".return", s.Value)
	}
}

func (v *validator) targets(field string, what []ast.Value) {
	if len(what) == 0 {
		v.add(ErrEmptyTargets, field, "statement has no targets")
		return
	}
	for _, w := range what {
		switch t := w.(type) {
		case *ast.Table:
			v.table(ErrUndefinedTarget, field, t.Name)
		case *ast.RecordID:
			v.table(ErrUndefinedTarget, field, t.Table)
		case *ast.Array:
			if len(t.Items) == 0 {
				v.add(ErrEmptyTargets, field, "statement has no targets")
			}
			v.targets(field, t.Items)
		default:
			v.value(field, w)
		}
	}
}

func (v *validator) data(field string, data ast.Data) {
	switch d := data.(type) {
	case *ast.Content:
		v.value(field+".content", d.Value)
	case *ast.Set:
		for _, a := range d.Assignments {
			v.value(field+".set."+a.Field.String(), a.Value)
		}
	}
}

// value checks graph steps and nested subqueries.
func (v *validator) value(field string, val ast.Value) {
	switch e := val.(type) {
	case *ast.Idiom:
		for _, p := range e.Parts {
			switch p := p.(type) {
			case *ast.Graph:
				for _, t := range p.Tables {
					v.table(ErrUndefinedGraph, field, t)
				}
			case *ast.Start:
				v.value(field, p.Value)
			}
		}
	case *ast.RecordID:
		v.table(ErrUndefinedTarget, field, e.Table)
	case *ast.Array:
		for _, item := range e.Items {
			v.value(field, item)
		}
	case *ast.Object:
		for _, entry := range e.Entries {
			v.value(field+"."+entry.Key, entry.Value)
		}
	case *ast.Binary:
		v.value(field, e.Left)
		v.value(field, e.Right)
	case *ast.Subquery:
		v.statement(field, e.Stmt)
	}
}

// linkedTables returns the tables named by record kinds inside k.
func linkedTables(k kind.Kind) []string {
	var out []string
	var walk func(kind.Kind)
	walk = func(k kind.Kind) {
		switch k := k.(type) {
		case kind.Record:
			out = append(out, k.Tables...)
		case kind.Array:
			walk(k.Elem)
		case kind.Option:
			walk(k.Inner)
		case kind.Either:
			for _, alt := range k.Alts {
				walk(alt)
			}
		case kind.Object:
			for _, key := range k.SortedKeys() {
				walk(k[key])
			}
		}
	}
	walk(k)
	return out
}
