package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DrewRidley/surreal-codegen/internal/infer"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/schema"
	"github.com/DrewRidley/surreal-codegen/internal/store"
)

// InferOptions holds flags for the infer command.
type InferOptions struct {
	*RootOptions
	Cache   string   // SQLite cache path; empty disables caching
	Globals []string // name=type
}

// InferResult is the payload of the infer command.
type InferResult struct {
	Source      string                `json:"source"`
	ReturnTypes []kind.Value          `json:"return_types"`
	Variables   map[string]kind.Value `json:"variables"`
	Cached      bool                  `json:"cached"`
	RunID       string                `json:"run_id,omitempty"`
}

// NewInferCommand creates the infer command.
func NewInferCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InferOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "infer <schema> <queries>",
		Short: "Infer result types of a query document",
		Long: `Infer the result type of every statement in a query document and the
types of the parameters it uses.

Both arguments are CUE files or directories. Globals declared in either
document, or with --global, are treated as already bound.

Exit codes:
  0 - Inference succeeded
  1 - Inference failed (unknown table, unknown field, ...)
  2 - Command error (invalid paths, malformed documents)

Examples:
  surreal-codegen infer schema.cue queries/list_users.cue
  surreal-codegen infer schema.cue q.cue --global auth=record<user>
  surreal-codegen infer schema.cue q.cue --cache .surreal-codegen.db --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfer(cmd.Context(), opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Cache, "cache", "", "cache inference results in this SQLite database")
	cmd.Flags().StringArrayVarP(&opts.Globals, "global", "g", nil, "bind a parameter, e.g. auth=record<user> (repeatable)")

	return cmd
}

func runInfer(ctx context.Context, opts *InferOptions, schemaPath, queryPath string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	log := opts.Logger.With(zap.String("queries", queryPath))

	flagGlobals, err := parseGlobals(opts.Globals)
	if err != nil {
		return commandError(formatter, err)
	}
	schemaSrc, err := loadSource(schemaPath)
	if err != nil {
		return commandError(formatter, err)
	}
	querySrc, err := loadSource(queryPath)
	if err != nil {
		return commandError(formatter, err)
	}
	globals := mergeGlobals(schemaSrc.Doc.Globals, querySrc.Doc.Globals, flagGlobals)

	var (
		st   *store.Store
		hash string
	)
	if opts.Cache != "" {
		st, err = store.Open(opts.Cache)
		if err != nil {
			return commandError(formatter, &LoadError{Code: ErrCodeCache, Message: err.Error()})
		}
		defer st.Close()

		hash, err = store.InputHash(schemaSrc.Text, querySrc.Text, globals)
		if err != nil {
			return commandError(formatter, &LoadError{Code: ErrCodeCache, Message: err.Error()})
		}
		run, ok, err := st.LookupRun(ctx, hash)
		if err != nil {
			return commandError(formatter, &LoadError{Code: ErrCodeCache, Message: err.Error()})
		}
		if ok && len(run.ReturnTypes) != len(querySrc.Doc.Statements) {
			log.Debug("ignoring cached run with a different statement count", zap.String("run_id", run.ID))
			ok = false
		}
		if ok {
			log.Debug("cache hit", zap.String("run_id", run.ID), zap.Int64("seq", run.Seq))
			return outputInfer(formatter, InferResult{
				Source:      queryPath,
				ReturnTypes: kind.Values(run.ReturnTypes),
				Variables:   kind.ValueMap(run.Variables),
				Cached:      true,
				RunID:       run.ID,
			})
		}
	}

	defs := slices.Concat(schemaSrc.Doc.Definitions, querySrc.Doc.Definitions)
	res, err := infer.Infer(defs, querySrc.Doc.Statements,
		infer.WithGlobals(globals),
		infer.WithLogger(log),
	)
	if err != nil {
		return inferenceError(formatter, err)
	}

	result := InferResult{
		Source:      queryPath,
		ReturnTypes: kind.Values(res.ReturnTypes),
		Variables:   kind.ValueMap(res.Variables),
	}
	if st != nil {
		run, err := st.WriteRun(ctx, store.Run{
			InputHash:   hash,
			Source:      queryPath,
			ReturnTypes: res.ReturnTypes,
			Variables:   res.Variables,
		})
		if err != nil {
			return commandError(formatter, &LoadError{Code: ErrCodeCache, Message: err.Error()})
		}
		result.RunID = run.ID
		log.Debug("cached run", zap.String("run_id", run.ID), zap.Int64("seq", run.Seq))
	}
	return outputInfer(formatter, result)
}

func outputInfer(f *OutputFormatter, result InferResult) error {
	if f.Format == "json" {
		return f.Success(result)
	}
	types := make([]kind.Kind, len(result.ReturnTypes))
	for i, v := range result.ReturnTypes {
		types[i] = v.K
	}
	vars := make(map[string]kind.Kind, len(result.Variables))
	for name, v := range result.Variables {
		vars[name] = v.K
	}
	text := formatKinds(types, vars)
	if result.Cached {
		text += "\n(cached)"
	}
	return f.Success(strings.TrimPrefix(text, "\n"))
}

// commandError reports a load or flag problem and exits with code 2.
func commandError(f *OutputFormatter, err error) error {
	if outErr := f.Error(loadErrorCode(err), err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, "command failed", err)
}

// inferenceError reports an inference failure under its schema error code
// and exits with code 1.
func inferenceError(f *OutputFormatter, err error) error {
	code := string(schema.CodeOf(err))
	if code == "" {
		code = ErrCodeGeneric
	}
	if outErr := f.Error(code, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, "inference failed", err)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
