package infer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/schema"
)

// Result is the outcome of inferring a batch of statements.
type Result struct {
	// Statements is the input, passed through for naming downstream.
	Statements []ast.Statement

	// ReturnTypes holds one kind per statement, in input order.
	ReturnTypes []kind.Kind

	// Variables maps each free parameter to the kind the caller must supply.
	Variables map[string]kind.Kind
}

// Option configures an inference run.
type Option func(*options)

type options struct {
	globals map[string]kind.Kind
	logger  *zap.Logger
}

// WithGlobals supplies pre-known parameter kinds, e.g. `auth: record<user>`.
func WithGlobals(globals map[string]kind.Kind) Option {
	return func(o *options) {
		o.globals = globals
	}
}

// WithLogger sets the logger. Statements are logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Infer builds the schema from defs and infers stmts against it.
func Infer(defs []ast.Definition, stmts []ast.Statement, opts ...Option) (*Result, error) {
	model, err := schema.Build(defs)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return InferModel(model, stmts, opts...)
}

// InferModel infers stmts against an already built model. The model is only
// read, so concurrent calls may share it.
func InferModel(model *schema.Model, stmts []ast.Statement, opts ...Option) (*Result, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	st := NewState(model, o.globals, o.logger)
	types := make([]kind.Kind, 0, len(stmts))
	for i, stmt := range stmts {
		k, err := st.Statement(stmt)
		if err != nil {
			o.logger.Debug("inference failed",
				zap.Int("index", i),
				zap.Error(err))
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		o.logger.Debug("inferred statement",
			zap.Int("index", i),
			zap.Stringer("statement", stmt),
			zap.Stringer("kind", k))
		types = append(types, k)
	}

	return &Result{
		Statements:  stmts,
		ReturnTypes: types,
		Variables:   st.Variables(),
	}, nil
}

// Statement infers the result kind of one statement.
func (s *State) Statement(stmt ast.Statement) (kind.Kind, error) {
	switch st := stmt.(type) {
	case *ast.Select:
		return s.inferSelect(st)
	case *ast.Relate:
		return s.inferRelate(st)
	case *ast.Create:
		return s.inferCreate(st)
	case *ast.Update:
		return s.inferUpdate(st)
	case *ast.Delete:
		return s.inferDelete(st)
	case *ast.Insert:
		return s.inferInsert(st)
	case *ast.Let:
		k, err := s.Eval(st.Value)
		if err != nil {
			return nil, err
		}
		// Top-level LETs land in the base frame; inside a subquery the
		// binding ends with it.
		s.Bind(st.Name, k)
		return kind.Null, nil
	case *ast.Return:
		return s.Eval(st.Value)
	default:
		desc := fmt.Sprintf("%T", stmt)
		return nil, schema.Unsupported(desc, "unsupported statement %s", desc)
	}
}
