package harness

import (
	"fmt"
	"maps"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"go.uber.org/zap"

	"github.com/DrewRidley/surreal-codegen/internal/compiler"
	"github.com/DrewRidley/surreal-codegen/internal/infer"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

// Harness runs scenarios.
type Harness struct {
	logger *zap.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger passed through to inference.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// New creates a harness. Logging is discarded unless WithLogger is given.
func New(opts ...Option) *Harness {
	h := &Harness{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(scenario)
}

// Run compiles the scenario's document, infers it and evaluates the
// assertions. The returned error covers problems with the scenario itself;
// inference failures are recorded in Result.Err.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	doc, err := compileScenario(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to compile scenario %s: %w", scenario.Name, err)
	}

	globals, err := scenario.ParsedGlobals()
	if err != nil {
		return nil, err
	}
	merged := make(map[string]kind.Kind, len(doc.Globals)+len(globals))
	maps.Copy(merged, doc.Globals)
	maps.Copy(merged, globals)

	result := NewResult()
	res, err := infer.Infer(doc.Definitions, doc.Statements,
		infer.WithGlobals(merged),
		infer.WithLogger(h.logger.With(zap.String("scenario", scenario.Name))),
	)
	if err != nil {
		result.Err = err
	} else {
		result.ReturnTypes = res.ReturnTypes
		result.Variables = res.Variables
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario finished",
		zap.String("scenario", scenario.Name),
		zap.Bool("pass", result.Pass),
		zap.Int("statements", len(doc.Statements)),
	)
	return result, nil
}

func compileScenario(s *Scenario) (*compiler.Document, error) {
	if s.CUE != "" {
		v := cuecontext.New().CompileString(s.CUE, cue.Filename(s.Name+".cue"))
		return compiler.Compile(v)
	}

	doc := &compiler.Document{Globals: map[string]kind.Kind{}}
	for _, f := range s.Files {
		d, err := compiler.LoadDocument(f)
		if err != nil {
			return nil, err
		}
		doc.Definitions = append(doc.Definitions, d.Definitions...)
		doc.Statements = append(doc.Statements, d.Statements...)
		maps.Copy(doc.Globals, d.Globals)
	}
	return doc, nil
}
