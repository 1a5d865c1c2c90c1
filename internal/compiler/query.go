package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

// statementKeys are the keys that select a statement form. `return` is
// missing on purpose: it is also the output clause of a mutation and only
// names a statement when no other key is present.
var statementKeys = []string{"select", "create", "update", "delete", "insert", "relate", "let"}

// CompileQueries reads the `queries` list of a document.
//
//	queries: [
//		{select: "*, ->memberOf->org AS orgs", from: "user", where: "id = $id"},
//		{create: "user", content: "$user", return: "NONE"},
//		{relate: "memberOf", from: "$user", with: "$org", content: {role: "$role"}},
//	]
//
// Strings in value positions are expressions; structs nest subqueries
// (`{select: ...}`), operators (`{left, op, right}`) and object literals.
func CompileQueries(v cue.Value) ([]ast.Statement, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	queriesVal := lookup(v, "queries")
	if !queriesVal.Exists() {
		return nil, nil
	}

	list, err := queriesVal.List()
	if err != nil {
		return nil, &CompileError{Field: "queries", Message: "queries must be a list", Pos: queriesVal.Pos()}
	}

	var stmts []ast.Statement
	for i := 0; list.Next(); i++ {
		stmt, err := compileStatement(fmt.Sprintf("queries[%d]", i), list.Value())
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// CompileGlobals reads the optional `globals` struct, mapping parameter
// names to type expressions.
func CompileGlobals(v cue.Value) (map[string]kind.Kind, error) {
	globalsVal := lookup(v, "globals")
	if !globalsVal.Exists() {
		return nil, nil
	}
	iter, err := globalsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	globals := make(map[string]kind.Kind)
	for iter.Next() {
		name := strings.TrimPrefix(iter.Label(), "$")
		k, err := compileKind("globals."+name, iter.Value())
		if err != nil {
			return nil, err
		}
		globals[name] = k
	}
	return globals, nil
}

func statementKey(v cue.Value) (string, bool) {
	for _, key := range statementKeys {
		if lookup(v, key).Exists() {
			return key, true
		}
	}
	if lookup(v, "return").Exists() {
		return "return", true
	}
	return "", false
}

func compileStatement(field string, v cue.Value) (ast.Statement, error) {
	key, ok := statementKey(v)
	if !ok {
		return nil, &CompileError{
			Field:   field,
			Message: "expected one of select, create, update, delete, insert, relate, let, return",
			Pos:     v.Pos(),
		}
	}
	c := &stmtCompiler{field: field, v: v}

	switch key {
	case "select":
		return c.selectStmt()
	case "create":
		what, err := c.targets("create")
		if err != nil {
			return nil, err
		}
		stmt := &ast.Create{What: what}
		if stmt.Only, err = c.bool("only"); err != nil {
			return nil, err
		}
		if stmt.Data, err = c.data(); err != nil {
			return nil, err
		}
		if stmt.Output, err = c.output(); err != nil {
			return nil, err
		}
		return stmt, nil
	case "update":
		what, err := c.targets("update")
		if err != nil {
			return nil, err
		}
		stmt := &ast.Update{What: what}
		if stmt.Only, err = c.bool("only"); err != nil {
			return nil, err
		}
		if stmt.Data, err = c.data(); err != nil {
			return nil, err
		}
		if stmt.Where, err = c.optionalValue("where"); err != nil {
			return nil, err
		}
		if stmt.Output, err = c.output(); err != nil {
			return nil, err
		}
		return stmt, nil
	case "delete":
		what, err := c.targets("delete")
		if err != nil {
			return nil, err
		}
		stmt := &ast.Delete{What: what}
		if stmt.Only, err = c.bool("only"); err != nil {
			return nil, err
		}
		if stmt.Where, err = c.optionalValue("where"); err != nil {
			return nil, err
		}
		if stmt.Output, err = c.output(); err != nil {
			return nil, err
		}
		return stmt, nil
	case "insert":
		into, err := c.target("insert")
		if err != nil {
			return nil, err
		}
		stmt := &ast.Insert{Into: into}
		if stmt.Data, err = c.data(); err != nil {
			return nil, err
		}
		if stmt.Output, err = c.output(); err != nil {
			return nil, err
		}
		return stmt, nil
	case "relate":
		return c.relateStmt()
	case "let":
		return c.letStmt()
	default:
		value, err := c.value("return")
		if err != nil {
			return nil, err
		}
		return &ast.Return{Value: value}, nil
	}
}

// stmtCompiler reads the clauses of one statement struct.
type stmtCompiler struct {
	field string
	v     cue.Value
}

func (c *stmtCompiler) errorf(name string, pos cue.Value, format string, args ...any) error {
	return &CompileError{
		Field:   c.field + "." + name,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos.Pos(),
	}
}

func (c *stmtCompiler) wrap(name string, pos cue.Value, err error) error {
	var ce *CompileError
	if errors.As(err, &ce) {
		return err
	}
	return &CompileError{Field: c.field + "." + name, Message: err.Error(), Pos: pos.Pos()}
}

func (c *stmtCompiler) selectStmt() (ast.Statement, error) {
	fieldsVal := lookup(c.v, "select")
	fields, err := compileFields(c.field+".select", fieldsVal)
	if err != nil {
		return nil, err
	}
	what, err := c.targets("from")
	if err != nil {
		return nil, err
	}
	stmt := &ast.Select{Fields: fields, What: what}
	if stmt.Only, err = c.bool("only"); err != nil {
		return nil, err
	}
	if stmt.Where, err = c.optionalValue("where"); err != nil {
		return nil, err
	}
	if stmt.Limit, err = c.optionalValue("limit"); err != nil {
		return nil, err
	}
	if stmt.Start, err = c.optionalValue("start"); err != nil {
		return nil, err
	}
	if stmt.Fetch, err = c.fetch(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (c *stmtCompiler) relateStmt() (ast.Statement, error) {
	edge, err := c.target("relate")
	if err != nil {
		return nil, err
	}
	from, err := c.target("from")
	if err != nil {
		return nil, err
	}
	with, err := c.target("with")
	if err != nil {
		return nil, err
	}
	stmt := &ast.Relate{Kind: edge, From: from, With: with}
	if stmt.Data, err = c.data(); err != nil {
		return nil, err
	}
	if stmt.Output, err = c.output(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (c *stmtCompiler) letStmt() (ast.Statement, error) {
	nameVal := lookup(c.v, "let")
	name, err := nameVal.String()
	if err != nil || !strings.HasPrefix(name, "$") || len(name) < 2 {
		return nil, c.errorf("let", nameVal, "let takes a parameter name such as \"$x\"")
	}
	value, err := c.value("value")
	if err != nil {
		return nil, err
	}
	return &ast.Let{Name: name[1:], Value: value}, nil
}

func (c *stmtCompiler) bool(name string) (bool, error) {
	v := lookup(c.v, name)
	if !v.Exists() {
		return false, nil
	}
	b, err := v.Bool()
	if err != nil {
		return false, c.errorf(name, v, "%s must be a bool", name)
	}
	return b, nil
}

func (c *stmtCompiler) value(name string) (ast.Value, error) {
	v := lookup(c.v, name)
	if !v.Exists() {
		return nil, c.errorf(name, c.v, "%s is required", name)
	}
	value, err := compileValue(c.field+"."+name, v)
	if err != nil {
		return nil, c.wrap(name, v, err)
	}
	return value, nil
}

func (c *stmtCompiler) optionalValue(name string) (ast.Value, error) {
	if !lookup(c.v, name).Exists() {
		return nil, nil
	}
	return c.value(name)
}

// target reads a single statement target; bare identifiers are tables.
func (c *stmtCompiler) target(name string) (ast.Value, error) {
	v := lookup(c.v, name)
	if !v.Exists() {
		return nil, c.errorf(name, c.v, "%s is required", name)
	}
	s, err := v.String()
	if err != nil {
		return nil, c.errorf(name, v, "%s must be an expression string", name)
	}
	t, err := ParseTarget(s)
	if err != nil {
		return nil, c.wrap(name, v, err)
	}
	return t, nil
}

// targets reads a target list: a string, which may itself hold an array
// literal, or a CUE list of strings.
func (c *stmtCompiler) targets(name string) ([]ast.Value, error) {
	v := lookup(c.v, name)
	if !v.Exists() {
		return nil, c.errorf(name, c.v, "%s is required", name)
	}
	if v.IncompleteKind() != cue.ListKind {
		t, err := c.target(name)
		if err != nil {
			return nil, err
		}
		return []ast.Value{t}, nil
	}
	list, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var what []ast.Value
	for list.Next() {
		s, err := list.Value().String()
		if err != nil {
			return nil, c.errorf(name, list.Value(), "%s entries must be expression strings", name)
		}
		t, err := ParseTarget(s)
		if err != nil {
			return nil, c.wrap(name, list.Value(), err)
		}
		what = append(what, t)
	}
	return what, nil
}

func (c *stmtCompiler) fetch() ([]*ast.Idiom, error) {
	v := lookup(c.v, "fetch")
	if !v.Exists() {
		return nil, nil
	}
	var paths []string
	if s, err := v.String(); err == nil {
		for _, p := range strings.Split(s, ",") {
			paths = append(paths, strings.TrimSpace(p))
		}
	} else {
		list, err := v.List()
		if err != nil {
			return nil, c.errorf("fetch", v, "fetch must be a string or a list of strings")
		}
		for list.Next() {
			s, err := list.Value().String()
			if err != nil {
				return nil, c.errorf("fetch", list.Value(), "fetch entries must be strings")
			}
			paths = append(paths, s)
		}
	}

	var idioms []*ast.Idiom
	for _, p := range paths {
		parsed, err := ParseValue(p)
		if err != nil {
			return nil, c.wrap("fetch", v, err)
		}
		idiom, ok := parsed.(*ast.Idiom)
		if !ok || !idiom.FieldsOnly() {
			return nil, c.errorf("fetch", v, "fetch takes field paths, got %q", p)
		}
		idioms = append(idioms, idiom)
	}
	return idioms, nil
}

// data reads `content` or `set`.
func (c *stmtCompiler) data() (ast.Data, error) {
	content := lookup(c.v, "content")
	set := lookup(c.v, "set")
	switch {
	case content.Exists() && set.Exists():
		return nil, c.errorf("content", content, "content and set are mutually exclusive")
	case content.Exists():
		value, err := c.value("content")
		if err != nil {
			return nil, err
		}
		return &ast.Content{Value: value}, nil
	case set.Exists():
		return c.set(set)
	}
	return nil, nil
}

func (c *stmtCompiler) set(v cue.Value) (ast.Data, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, c.errorf("set", v, "set must map field paths to values")
	}
	data := &ast.Set{}
	for iter.Next() {
		label := iter.Label()
		path, err := ParseValue(label)
		if err != nil {
			return nil, c.wrap("set."+label, iter.Value(), err)
		}
		idiom, ok := path.(*ast.Idiom)
		if !ok || !idiom.FieldsOnly() {
			return nil, c.errorf("set."+label, iter.Value(), "set keys must be field paths")
		}
		value, err := compileValue(c.field+".set."+label, iter.Value())
		if err != nil {
			return nil, c.wrap("set."+label, iter.Value(), err)
		}
		data.Assignments = append(data.Assignments, ast.Assignment{Field: idiom, Op: "=", Value: value})
	}
	return data, nil
}

var outputKeywords = map[string]func() ast.Output{
	"NONE":   func() ast.Output { return &ast.OutputNone{} },
	"NULL":   func() ast.Output { return &ast.OutputNull{} },
	"DIFF":   func() ast.Output { return &ast.OutputDiff{} },
	"BEFORE": func() ast.Output { return &ast.OutputBefore{} },
	"AFTER":  func() ast.Output { return &ast.OutputAfter{} },
}

// output reads the RETURN clause of a mutation.
func (c *stmtCompiler) output() (ast.Output, error) {
	v := lookup(c.v, "return")
	if !v.Exists() {
		return nil, nil
	}
	if s, err := v.String(); err == nil {
		if mk, ok := outputKeywords[strings.ToUpper(strings.TrimSpace(s))]; ok {
			return mk(), nil
		}
	}
	fields, err := compileFields(c.field+".return", v)
	if err != nil {
		return nil, err
	}
	return &ast.OutputFields{Fields: fields}, nil
}

// compileFields reads a field list. A string is parsed whole; a list holds
// strings and `{expr, as}` structs.
func compileFields(field string, v cue.Value) (ast.Fields, error) {
	if s, err := v.String(); err == nil {
		fields, err := ParseFields(s)
		if err != nil {
			return ast.Fields{}, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
		}
		return fields, nil
	}

	list, err := v.List()
	if err != nil {
		return ast.Fields{}, &CompileError{Field: field, Message: "fields must be a string or a list", Pos: v.Pos()}
	}
	var fields ast.Fields
	for i := 0; list.Next(); i++ {
		item := list.Value()
		itemField := fmt.Sprintf("%s[%d]", field, i)

		if s, err := item.String(); err == nil {
			parsed, err := ParseFields(s)
			if err != nil {
				return ast.Fields{}, &CompileError{Field: itemField, Message: err.Error(), Pos: item.Pos()}
			}
			if parsed.Single {
				return ast.Fields{}, &CompileError{Field: itemField, Message: "VALUE must be the whole field list", Pos: item.Pos()}
			}
			fields.Wildcard = fields.Wildcard || parsed.Wildcard
			fields.Items = append(fields.Items, parsed.Items...)
			continue
		}

		exprVal := lookup(item, "expr")
		if !exprVal.Exists() {
			return ast.Fields{}, &CompileError{Field: itemField, Message: "expected a string or {expr, as}", Pos: item.Pos()}
		}
		expr, err := compileValue(itemField+".expr", exprVal)
		if err != nil {
			return ast.Fields{}, err
		}
		proj := ast.Projection{Expr: expr}
		if as := lookup(item, "as"); as.Exists() {
			if proj.Alias, err = as.String(); err != nil {
				return ast.Fields{}, &CompileError{Field: itemField + ".as", Message: "alias must be a string", Pos: as.Pos()}
			}
		}
		fields.Items = append(fields.Items, proj)
	}
	return fields, nil
}

// compileValue maps a CUE value in expression position to a syntax value.
func compileValue(field string, v cue.Value) (ast.Value, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		value, err := ParseValue(s)
		if err != nil {
			return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
		}
		return value, nil
	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &ast.Literal{Kind: ast.LitNumber, Text: strconv.FormatInt(i, 10)}, nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &ast.Literal{Kind: ast.LitNumber, Text: strconv.FormatFloat(f, 'g', -1, 64)}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &ast.Literal{Kind: ast.LitBool, Text: strconv.FormatBool(b)}, nil
	case cue.NullKind:
		return &ast.Literal{Kind: ast.LitNull, Text: "NULL"}, nil
	case cue.ListKind:
		list, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		arr := &ast.Array{}
		for i := 0; list.Next(); i++ {
			item, err := compileValue(fmt.Sprintf("%s[%d]", field, i), list.Value())
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, item)
		}
		return arr, nil
	case cue.StructKind:
		if _, ok := statementKey(v); ok {
			stmt, err := compileStatement(field, v)
			if err != nil {
				return nil, err
			}
			return &ast.Subquery{Stmt: stmt}, nil
		}
		if op := lookup(v, "op"); op.Exists() {
			return compileBinary(field, v, op)
		}
		return compileObjectLiteral(field, v)
	}
	return nil, &CompileError{Field: field, Message: "value must be concrete", Pos: v.Pos()}
}

func compileBinary(field string, v, opVal cue.Value) (ast.Value, error) {
	op, err := opVal.String()
	if err != nil {
		return nil, &CompileError{Field: field + ".op", Message: "op must be a string", Pos: opVal.Pos()}
	}
	left, err := requiredValue(field, v, "left")
	if err != nil {
		return nil, err
	}
	right, err := requiredValue(field, v, "right")
	if err != nil {
		return nil, err
	}
	return &ast.Binary{Op: strings.ToUpper(op), Left: left, Right: right}, nil
}

func requiredValue(field string, v cue.Value, name string) (ast.Value, error) {
	sub := lookup(v, name)
	if !sub.Exists() {
		return nil, &CompileError{Field: field + "." + name, Message: name + " is required", Pos: v.Pos()}
	}
	return compileValue(field+"."+name, sub)
}

func compileObjectLiteral(field string, v cue.Value) (ast.Value, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	obj := &ast.Object{}
	for iter.Next() {
		value, err := compileValue(field+"."+iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		obj.Entries = append(obj.Entries, ast.ObjectEntry{Key: iter.Label(), Value: value})
	}
	return obj, nil
}
