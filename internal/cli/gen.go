package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DrewRidley/surreal-codegen/internal/codegen"
	"github.com/DrewRidley/surreal-codegen/internal/config"
	"github.com/DrewRidley/surreal-codegen/internal/infer"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/schema"
	"github.com/DrewRidley/surreal-codegen/internal/store"
)

// GenOptions holds flags for the gen command.
type GenOptions struct {
	*RootOptions
	Output  string // overrides the config's output dir
	Package string // overrides the config's package
	Jobs    int    // concurrent query files; <= 0 means GOMAXPROCS
}

// GeneratedFile describes one rendered query file.
type GeneratedFile struct {
	Query      string `json:"query"`
	Output     string `json:"output"`
	Statements int    `json:"statements"`
	Variables  int    `json:"variables"`
	Cached     bool   `json:"cached"`
}

// GenResult is the payload of the gen command.
type GenResult struct {
	Package string          `json:"package"`
	Files   []GeneratedFile `json:"files"`
}

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate Go types for every configured query document",
		Long: `Generate Go result and parameter types for every query document matched
by the project file (surreal-codegen.yaml, or --config).

Query documents are inferred concurrently against one schema model. Each
produces <name>.gen.go in the output directory.

Examples:
  surreal-codegen gen
  surreal-codegen gen --config api/surreal-codegen.yaml --output api/queries`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runGen(cmd.Context(), opts, cmd)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory (overrides config)")
	cmd.Flags().StringVarP(&opts.Package, "package", "p", "", "Go package name (overrides config)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "query files processed concurrently (default GOMAXPROCS)")

	return cmd
}

// generator holds what every query file shares.
type generator struct {
	cfg        *config.Config
	pkg        string
	output     string
	schemaText string
	defs       int
	model      *schema.Model
	globals    map[string]kind.Kind
	store      *store.Store
	log        *zap.Logger
}

func runGen(ctx context.Context, opts *GenOptions, cmd *cobra.Command) (*GenResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return nil, commandError(formatter, err)
	}
	gen, err := newGenerator(cfg, opts)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, commandError(formatter, err)
		}
		return nil, inferenceError(formatter, err)
	}
	if gen.store != nil {
		defer gen.store.Close()
	}

	files, err := cfg.QueryFiles()
	if err != nil {
		return nil, commandError(formatter, &LoadError{Code: ErrCodeScanError, Message: err.Error()})
	}
	if len(files) == 0 {
		return nil, commandError(formatter, &LoadError{Code: ErrCodeNoFiles, Message: "no query documents match the configured patterns"})
	}
	if err := checkOutputNames(files); err != nil {
		return nil, commandError(formatter, err)
	}
	if err := os.MkdirAll(gen.output, 0755); err != nil {
		return nil, commandError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: err.Error()})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]GeneratedFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range files {
		g.Go(func() error {
			r, err := gen.generate(gctx, path)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, commandError(formatter, err)
		}
		return nil, inferenceError(formatter, err)
	}

	result := &GenResult{Package: gen.pkg, Files: results}
	if err := outputGen(formatter, result); err != nil {
		return nil, err
	}
	return result, nil
}

func newGenerator(cfg *config.Config, opts *GenOptions) (*generator, error) {
	gen := &generator{
		cfg:    cfg,
		pkg:    cfg.Package,
		output: cfg.Output,
		log:    opts.Logger,
	}
	if opts.Package != "" {
		gen.pkg = opts.Package
	}
	if opts.Output != "" {
		gen.output = opts.Output
	}

	schemaSrc, err := loadSource(cfg.Schema)
	if err != nil {
		return nil, err
	}
	gen.schemaText = schemaSrc.Text
	gen.defs = len(schemaSrc.Doc.Definitions)

	cfgGlobals, err := cfg.ParsedGlobals()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeConfig, Message: err.Error()}
	}
	gen.globals = mergeGlobals(schemaSrc.Doc.Globals, cfgGlobals)

	gen.model, err = schema.Build(schemaSrc.Doc.Definitions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Schema, err)
	}

	if cfg.Cache != "" {
		gen.store, err = store.Open(cfg.Cache)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeCache, Message: err.Error()}
		}
	}

	gen.log.Debug("schema loaded",
		zap.String("schema", cfg.Schema),
		zap.Int("definitions", gen.defs),
		zap.Strings("tables", gen.model.Tables()),
	)
	return gen, nil
}

// checkOutputNames rejects query files that would render to the same file.
func checkOutputNames(files []string) error {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		out := codegen.FileName(codegen.QueryName(f))
		if prev, ok := seen[out]; ok {
			return &LoadError{
				Code:    ErrCodeWriteFailed,
				Message: fmt.Sprintf("%s and %s both generate %s", prev, f, out),
			}
		}
		seen[out] = f
	}
	return nil
}

// generate infers and renders one query document. The model is shared and
// only read; each call owns its inference state.
func (g *generator) generate(ctx context.Context, path string) (GeneratedFile, error) {
	if err := ctx.Err(); err != nil {
		return GeneratedFile{}, err
	}
	log := g.log.With(zap.String("queries", path))

	src, err := loadSource(path)
	if err != nil {
		return GeneratedFile{}, err
	}
	globals := mergeGlobals(g.globals, src.Doc.Globals)

	model := g.model
	if len(src.Doc.Definitions) > 0 {
		// A query document defining its own tables extends the schema for
		// that document only.
		schemaDoc, err := loadSource(g.cfg.Schema)
		if err != nil {
			return GeneratedFile{}, err
		}
		model, err = schema.Build(slices.Concat(schemaDoc.Doc.Definitions, src.Doc.Definitions))
		if err != nil {
			return GeneratedFile{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	res, cached, err := g.infer(ctx, model, src, globals, log)
	if err != nil {
		return GeneratedFile{}, fmt.Errorf("%s: %w", path, err)
	}

	name := codegen.QueryName(path)
	code, err := codegen.Generate(g.pkg, codegen.Query{Name: name, Result: res})
	if err != nil {
		return GeneratedFile{}, &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	out := filepath.Join(g.output, codegen.FileName(name))
	if err := os.WriteFile(out, code, 0644); err != nil {
		return GeneratedFile{}, &LoadError{Code: ErrCodeWriteFailed, Message: err.Error()}
	}
	log.Debug("generated", zap.String("output", out), zap.Bool("cached", cached))

	return GeneratedFile{
		Query:      path,
		Output:     out,
		Statements: len(res.ReturnTypes),
		Variables:  len(res.Variables),
		Cached:     cached,
	}, nil
}

// infer runs inference, consulting the cache first when one is configured.
func (g *generator) infer(ctx context.Context, model *schema.Model, src *source, globals map[string]kind.Kind, log *zap.Logger) (*infer.Result, bool, error) {
	var hash string
	if g.store != nil {
		var err error
		hash, err = store.InputHash(g.schemaText, src.Text, globals)
		if err != nil {
			return nil, false, &LoadError{Code: ErrCodeCache, Message: err.Error()}
		}
		run, ok, err := g.store.LookupRun(ctx, hash)
		if err != nil {
			return nil, false, &LoadError{Code: ErrCodeCache, Message: err.Error()}
		}
		if ok && len(run.ReturnTypes) == len(src.Doc.Statements) {
			return &infer.Result{
				Statements:  src.Doc.Statements,
				ReturnTypes: run.ReturnTypes,
				Variables:   run.Variables,
			}, true, nil
		}
	}

	res, err := infer.InferModel(model, src.Doc.Statements,
		infer.WithGlobals(globals),
		infer.WithLogger(log),
	)
	if err != nil {
		return nil, false, err
	}

	if g.store != nil {
		if _, err := g.store.WriteRun(ctx, store.Run{
			InputHash:   hash,
			Source:      src.Path,
			ReturnTypes: res.ReturnTypes,
			Variables:   maps.Clone(res.Variables),
		}); err != nil {
			return nil, false, &LoadError{Code: ErrCodeCache, Message: err.Error()}
		}
	}
	return res, false, nil
}

func outputGen(f *OutputFormatter, result *GenResult) error {
	if f.Format == "json" {
		return f.Success(result)
	}
	w := f.Writer
	for _, file := range result.Files {
		note := ""
		if file.Cached {
			note = " (cached)"
		}
		fmt.Fprintf(w, "✓ %s -> %s%s\n", file.Query, file.Output, note)
	}
	fmt.Fprintf(w, "\nGenerated %s in package %s\n", plural(len(result.Files), "file"), result.Package)
	return nil
}
