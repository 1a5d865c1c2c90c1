package cli

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DrewRidley/surreal-codegen/internal/config"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*GenOptions
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{GenOptions: &GenOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the schema, queries or project file change",
		Long: `Run gen, then watch the schema, the directories matched by the query
patterns and the project file, running gen again after each burst of
changes. Failed runs are reported and watching continues. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory (overrides config)")
	cmd.Flags().StringVarP(&opts.Package, "package", "p", "", "Go package name (overrides config)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "query files processed concurrently (default GOMAXPROCS)")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 200*time.Millisecond, "quiet period before regenerating")

	return cmd
}

func runWatch(ctx context.Context, opts *WatchOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	log := opts.Logger

	cfgPath := configPath(opts.RootOptions)
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return commandError(formatter, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return commandError(formatter, &LoadError{Code: ErrCodeGeneric, Message: err.Error()})
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	addDirs := func(cfg *config.Config) {
		for _, dir := range watchDirs(cfg, cfgPath) {
			if watched[dir] {
				continue
			}
			if err := watcher.Add(dir); err != nil {
				log.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
				continue
			}
			watched[dir] = true
			log.Debug("watching", zap.String("dir", dir))
		}
	}
	addDirs(cfg)

	regenerate := func() {
		if _, err := runGen(ctx, opts.GenOptions, cmd); err != nil {
			log.Warn("generation failed", zap.Error(err))
		}
	}
	regenerate()

	var (
		timer     *time.Timer
		fire      <-chan time.Time
		cfgChange bool
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					// New subdirectories can hold files matching ** patterns.
					addDirs(cfg)
					continue
				}
			}
			isCfg := samePath(ev.Name, cfgPath)
			if !isCfg && !cfg.Watches(ev.Name) {
				continue
			}
			cfgChange = cfgChange || isCfg
			log.Debug("change", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(opts.Debounce)
			} else {
				timer.Reset(opts.Debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))

		case <-fire:
			fire = nil
			if cfgChange {
				cfgChange = false
				next, err := loadConfig(opts.RootOptions)
				if err != nil {
					log.Warn("keeping previous project file", zap.Error(err))
				} else {
					cfg = next
					addDirs(cfg)
				}
			}
			regenerate()
		}
	}
}

func configPath(opts *RootOptions) string {
	path := opts.Config
	if path == "" {
		path = config.DefaultFile
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// watchDirs lists the directories to watch: the project file's directory,
// the schema (or its directory) and every directory under the static prefix
// of each query pattern.
func watchDirs(cfg *config.Config, cfgPath string) []string {
	set := map[string]bool{filepath.Dir(cfgPath): true}

	if info, err := os.Stat(cfg.Schema); err == nil && info.IsDir() {
		addTree(set, cfg.Schema)
	} else {
		set[filepath.Dir(cfg.Schema)] = true
	}
	for _, pattern := range cfg.Queries {
		addTree(set, staticPrefix(pattern))
	}

	dirs := make([]string, 0, len(set))
	for d := range set {
		dirs = append(dirs, filepath.Clean(d))
	}
	sort.Strings(dirs)
	return dirs
}

// staticPrefix returns the directory part of a glob before its first
// wildcard segment.
func staticPrefix(pattern string) string {
	parts := strings.Split(filepath.ToSlash(pattern), "/")
	var static []string
	for i, p := range parts {
		if strings.ContainsAny(p, "*?[{") {
			break
		}
		if i == len(parts)-1 {
			// A pattern with no wildcard names a file.
			break
		}
		static = append(static, p)
	}
	prefix := strings.Join(static, "/")
	if prefix == "" {
		if strings.HasPrefix(pattern, "/") {
			return "/"
		}
		return "."
	}
	if strings.HasPrefix(pattern, "/") && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return filepath.FromSlash(prefix)
}

func addTree(set map[string]bool, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			set[path] = true
		}
		return nil
	})
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
