package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/compiler"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
	Cycles []compiler.LinkCycle       `json:"cycles,omitempty"`
	Gaps   []string                   `json:"gaps,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema> [queries]",
		Short: "Check a schema and optional queries without inferring",
		Long: `Validate a schema document and, optionally, a query document.

Reports references to undefined tables, duplicate definitions and schema
errors. Record-link cycles and constructs whose types are approximated are
listed as information; they do not fail validation.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	doc := &compiler.Document{Globals: map[string]kind.Kind{}}
	for _, path := range args {
		src, err := loadSource(path)
		if err != nil {
			return commandError(formatter, err)
		}
		opts.Logger.Debug("loaded document",
			zap.String("path", path),
			zap.Int("definitions", len(src.Doc.Definitions)),
			zap.Int("statements", len(src.Doc.Statements)),
		)
		doc.Definitions = slices.Concat(doc.Definitions, src.Doc.Definitions)
		doc.Statements = slices.Concat(doc.Statements, src.Doc.Statements)
		maps.Copy(doc.Globals, src.Doc.Globals)
	}

	result := validateDocument(doc)
	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// validateDocument runs reference validation, then builds the schema model
// to catch what only the model detects, then collects advisories.
func validateDocument(doc *compiler.Document) ValidationResult {
	result := ValidationResult{Errors: compiler.Validate(doc)}
	if len(result.Errors) == 0 {
		if _, err := schema.Build(doc.Definitions); err != nil {
			code := string(schema.CodeOf(err))
			if code == "" {
				code = ErrCodeGeneric
			}
			result.Errors = append(result.Errors, compiler.ValidationError{
				Field:   "table",
				Message: err.Error(),
				Code:    code,
			})
		}
	}
	result.Valid = len(result.Errors) == 0
	result.Cycles = compiler.AnalyzeLinks(doc.Definitions)
	result.Gaps = ast.Check(doc.Statements).Gaps
	return result
}

func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✓ Document valid")
	for _, c := range result.Cycles {
		fmt.Fprintf(w, "  %s: %s\n", c.Level, c.Message)
	}
	for _, g := range result.Gaps {
		fmt.Fprintf(w, "  gap: %s\n", g)
	}
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %s", plural(len(errs), "error")))

	if formatter.Format == "json" {
		if err := formatter.Failure(errs[0].Code, errs[0].Message, result); err != nil {
			return err
		}
		return failure
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	for _, err := range errs {
		fmt.Fprintf(w, "  %s\n", err.Error())
	}
	return failure
}
