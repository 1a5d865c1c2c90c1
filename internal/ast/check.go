package ast

import (
	"fmt"
)

// CheckResult reports constructs whose result types the inference engine
// does not model precisely.
type CheckResult struct {
	// Complete is true when every construct is fully modelled.
	Complete bool

	// Gaps lists the approximated or unsupported constructs, in source order.
	Gaps []string
}

// Check walks the statements and reports inference gaps.
//
// Gaps are advisory. Statements containing them may still infer (SET
// payloads are ignored, for example) or may fail during inference (RETURN
// DIFF). Check is a pure function with no side effects.
func Check(stmts []Statement) CheckResult {
	c := &checker{gaps: []string{}}
	for i, s := range stmts {
		c.index = i
		c.checkStatement(s)
	}
	return CheckResult{
		Complete: len(c.gaps) == 0,
		Gaps:     c.gaps,
	}
}

type checker struct {
	index int
	gaps  []string
}

func (c *checker) addGap(format string, args ...any) {
	c.gaps = append(c.gaps, fmt.Sprintf("statement %d: ", c.index)+fmt.Sprintf(format, args...))
}

func (c *checker) checkStatement(s Statement) {
	if s == nil {
		c.addGap("nil statement")
		return
	}

	switch st := s.(type) {
	case *Select:
		c.checkFields(st.Fields)
		c.checkValues(st.What)
		c.checkValue(st.Where)
	case *Create:
		c.checkValues(st.What)
		c.checkData(st.Data)
		c.checkOutput(st.Output)
	case *Update:
		c.checkValues(st.What)
		c.checkData(st.Data)
		c.checkValue(st.Where)
		c.checkOutput(st.Output)
	case *Delete:
		c.checkValues(st.What)
		c.checkValue(st.Where)
		c.checkOutput(st.Output)
	case *Insert:
		if _, ok := st.Into.(*Table); !ok {
			c.addGap("INSERT INTO %s: target is not a table name", st.Into)
		}
		c.checkData(st.Data)
		c.checkOutput(st.Output)
	case *Relate:
		c.checkData(st.Data)
		c.checkOutput(st.Output)
	case *Let:
		c.checkValue(st.Value)
	case *Return:
		c.checkValue(st.Value)
	default:
		c.addGap("unknown statement type %T", s)
	}
}

func (c *checker) checkData(d Data) {
	switch data := d.(type) {
	case nil, *Content:
	case *Set:
		for _, a := range data.Assignments {
			c.addGap("SET %s: assignment does not contribute parameter types", a.Field)
		}
	}
}

func (c *checker) checkOutput(o Output) {
	switch out := o.(type) {
	case *OutputDiff:
		c.addGap("RETURN DIFF is not supported")
	case *OutputFields:
		c.checkFields(out.Fields)
	}
}

func (c *checker) checkFields(f Fields) {
	if f.Single && len(f.Items) != 1 {
		c.addGap("SELECT VALUE with %d fields", len(f.Items))
	}
	for _, it := range f.Items {
		c.checkValue(it.Expr)
	}
}

func (c *checker) checkValues(vs []Value) {
	for _, v := range vs {
		c.checkValue(v)
	}
}

func (c *checker) checkValue(v Value) {
	switch val := v.(type) {
	case *Subquery:
		c.checkStatement(val.Stmt)
	case *Binary:
		c.checkValue(val.Left)
		c.checkValue(val.Right)
	case *Array:
		c.checkValues(val.Items)
	case *Object:
		for _, e := range val.Entries {
			c.checkValue(e.Value)
		}
	case *Idiom:
		for _, p := range val.Parts {
			if g, ok := p.(*Graph); ok && g.Dir == Both {
				c.addGap("%s: bidirectional traversal is approximated", val)
			}
			if s, ok := p.(*Start); ok {
				c.checkValue(s.Value)
			}
		}
	}
}
