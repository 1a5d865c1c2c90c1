package harness

import "github.com/DrewRidley/surreal-codegen/internal/kind"

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool

	// ReturnTypes holds one kind per statement. Empty when inference failed.
	ReturnTypes []kind.Kind

	// Variables maps each inferred parameter to its kind.
	Variables map[string]kind.Kind

	// Err is the inference error, if any.
	Err error

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Variables: map[string]kind.Kind{},
		Errors:    []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
