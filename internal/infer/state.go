package infer

import (
	"maps"

	"go.uber.org/zap"

	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/schema"
)

// State is the mutable context of one inference run.
type State struct {
	model   *schema.Model
	globals map[string]kind.Kind
	scopes  []map[string]kind.Kind
	vars    map[string]kind.Kind
	log     *zap.Logger
}

// NewState creates a state over model. globals are pre-known parameter kinds
// consulted after every scope frame.
func NewState(model *schema.Model, globals map[string]kind.Kind, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	return &State{
		model:   model,
		globals: maps.Clone(globals),
		scopes:  []map[string]kind.Kind{{}},
		vars:    map[string]kind.Kind{},
		log:     log,
	}
}

// Model returns the schema the state reads.
func (s *State) Model() *schema.Model {
	return s.model
}

// Push opens a scope frame.
func (s *State) Push() {
	s.scopes = append(s.scopes, map[string]kind.Kind{})
}

// Pop closes the innermost scope frame, restoring the bindings visible
// before the matching Push. The base frame is never popped.
func (s *State) Pop() {
	if len(s.scopes) > 1 {
		s.scopes = s.scopes[:len(s.scopes)-1]
	}
}

// Depth returns the number of open frames, including the base frame.
func (s *State) Depth() int {
	return len(s.scopes)
}

// Bind sets name in the innermost frame.
func (s *State) Bind(name string, k kind.Kind) {
	s.scopes[len(s.scopes)-1][name] = k
}

// Lookup finds name in the innermost frame first, then outer frames, then
// globals.
func (s *State) Lookup(name string) (kind.Kind, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if k, ok := s.scopes[i][name]; ok {
			return k, true
		}
	}
	k, ok := s.globals[name]
	return k, ok
}

// free reports whether name is a parameter the caller must supply.
func (s *State) free(name string) bool {
	if IsAmbient(name) {
		return false
	}
	_, bound := s.Lookup(name)
	return !bound
}

// Require records that the caller must supply name with kind k. Repeated
// requirements accumulate as a union. Bound and ambient names are ignored.
func (s *State) Require(name string, k kind.Kind) {
	if !s.free(name) {
		return
	}
	if existing, ok := s.vars[name]; ok {
		k = kind.Union(existing, k)
	}
	s.vars[name] = k
	s.log.Debug("required parameter",
		zap.String("name", name),
		zap.Stringer("kind", k))
}

// Variables returns a copy of the required variables.
func (s *State) Variables() map[string]kind.Kind {
	out := make(map[string]kind.Kind, len(s.vars))
	for name, k := range s.vars {
		if IsAmbient(name) {
			continue
		}
		if _, ok := s.globals[name]; ok {
			continue
		}
		out[name] = kind.Clone(k)
	}
	return out
}

// parentBindings binds $parent to the current row, if there is one.
func (s *State) parentBindings() map[string]kind.Kind {
	bindings := map[string]kind.Kind{}
	if this, ok := s.Lookup(string(This)); ok {
		bindings[string(Parent)] = this
	}
	return bindings
}

// within runs fn inside a fresh frame holding bindings.
func (s *State) within(bindings map[string]kind.Kind, fn func() (kind.Kind, error)) (kind.Kind, error) {
	s.Push()
	defer s.Pop()
	for name, k := range bindings {
		s.Bind(name, k)
	}
	return fn()
}
