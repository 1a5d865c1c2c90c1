package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/DrewRidley/surreal-codegen/internal/kind"
	"github.com/DrewRidley/surreal-codegen/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Cache  string
	Source string // only runs of this query document
	Limit  int
}

// HistoryEntry is one cached run as reported by the history command.
type HistoryEntry struct {
	ID          string                `json:"id"`
	Seq         int64                 `json:"seq"`
	Source      string                `json:"source"`
	InputHash   string                `json:"input_hash"`
	ReturnTypes []kind.Value          `json:"return_types"`
	Variables   map[string]kind.Value `json:"variables"`
	CreatedAt   time.Time             `json:"created_at"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List cached inference runs, newest first",
		Long: `List inference runs recorded in the cache database.

The cache is named with --cache, or taken from the project file.

Examples:
  surreal-codegen history --cache .surreal-codegen.db
  surreal-codegen history --limit 5 --format json
  surreal-codegen history --source queries/list_users.cue`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Cache, "cache", "", "cache database (default: cache from the project file)")
	cmd.Flags().StringVar(&opts.Source, "source", "", "only list runs of this query document")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum runs to list (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	path := opts.Cache
	if path == "" {
		cfg, err := loadConfig(opts.RootOptions)
		if err != nil {
			return commandError(formatter, err)
		}
		path = cfg.Cache
	}
	if path == "" {
		return commandError(formatter, &LoadError{Code: ErrCodeCache, Message: "no cache configured; pass --cache"})
	}

	st, err := store.Open(path)
	if err != nil {
		return commandError(formatter, &LoadError{Code: ErrCodeCache, Message: err.Error()})
	}
	defer st.Close()

	var runs []store.Run
	if opts.Source != "" {
		runs, err = st.ListRunsFor(cmd.Context(), opts.Source, opts.Limit)
	} else {
		runs, err = st.ListRuns(cmd.Context(), opts.Limit)
	}
	if err != nil {
		return commandError(formatter, &LoadError{Code: ErrCodeCache, Message: err.Error()})
	}

	entries := make([]HistoryEntry, len(runs))
	for i, r := range runs {
		entries[i] = HistoryEntry{
			ID:          r.ID,
			Seq:         r.Seq,
			Source:      r.Source,
			InputHash:   r.InputHash,
			ReturnTypes: kind.Values(r.ReturnTypes),
			Variables:   kind.ValueMap(r.Variables),
			CreatedAt:   r.CreatedAt,
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}

	w := formatter.Writer
	if len(entries) == 0 {
		fmt.Fprintln(w, "No cached runs.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(w, "#%d %s  %s  (%s, %s)\n",
			e.Seq, e.Source, shortHash(e.InputHash),
			plural(len(e.ReturnTypes), "statement"), humanize.Time(e.CreatedAt))
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
