package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/schema"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

func assertReturnType(result *Result, a Assertion) error {
	want, err := kind.Parse(a.Kind)
	if err != nil {
		return err
	}
	if a.Index >= len(result.ReturnTypes) {
		return &AssertionError{
			Type:     AssertReturnType,
			Expected: fmt.Sprintf("statement %d: %s", a.Index, want),
			Actual:   fmt.Sprintf("%d statements", len(result.ReturnTypes)),
		}
	}
	got := result.ReturnTypes[a.Index]
	if !kind.Equal(want, got) {
		return &AssertionError{
			Type:     AssertReturnType,
			Expected: fmt.Sprintf("statement %d: %s", a.Index, want),
			Actual:   got.String(),
		}
	}
	return nil
}

func assertVariable(result *Result, a Assertion) error {
	want, err := kind.Parse(a.Kind)
	if err != nil {
		return err
	}
	got, ok := result.Variables[a.Name]
	if !ok {
		return &AssertionError{
			Type:     AssertVariable,
			Expected: fmt.Sprintf("$%s: %s", a.Name, want),
			Actual:   fmt.Sprintf("not inferred (have %s)", variableNames(result.Variables)),
		}
	}
	if !kind.Equal(want, got) {
		return &AssertionError{
			Type:     AssertVariable,
			Expected: fmt.Sprintf("$%s: %s", a.Name, want),
			Actual:   fmt.Sprintf("$%s: %s", a.Name, got),
		}
	}
	return nil
}

func assertVariableCount(result *Result, a Assertion) error {
	if len(result.Variables) != a.Count {
		return &AssertionError{
			Type:     AssertVariableCount,
			Expected: fmt.Sprintf("%d variables", a.Count),
			Actual:   fmt.Sprintf("%d variables: %s", len(result.Variables), variableNames(result.Variables)),
		}
	}
	return nil
}

func assertError(result *Result, a Assertion) error {
	if result.Err == nil {
		return &AssertionError{
			Type:     AssertError,
			Expected: a.Code,
			Actual:   "inference succeeded",
		}
	}
	if got := string(schema.CodeOf(result.Err)); got != a.Code {
		return &AssertionError{
			Type:     AssertError,
			Expected: a.Code,
			Actual:   result.Err.Error(),
		}
	}
	return nil
}

func variableNames(vars map[string]kind.Kind) string {
	if len(vars) == 0 {
		return "none"
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, "$"+name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// EvaluateAssertions evaluates all assertions against the result and returns
// the failure messages. An inference error fails the run unless an error
// assertion expects it.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	expectsError := false
	for _, a := range assertions {
		if a.Type == AssertError {
			expectsError = true
		}
	}
	if result.Err != nil && !expectsError {
		errors = append(errors, fmt.Sprintf("inference failed: %v", result.Err))
	}

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertReturnType:
			if result.Err != nil {
				continue
			}
			err = assertReturnType(result, assertion)
		case AssertVariable:
			if result.Err != nil {
				continue
			}
			err = assertVariable(result, assertion)
		case AssertVariableCount:
			if result.Err != nil {
				continue
			}
			err = assertVariableCount(result, assertion)
		case AssertError:
			err = assertError(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
