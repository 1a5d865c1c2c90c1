package cli

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"sort"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/DrewRidley/surreal-codegen/internal/compiler"
	"github.com/DrewRidley/surreal-codegen/internal/config"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeConfig      = "E008" // Project file missing or invalid
	ErrCodeBadGlobal   = "E009" // --global flag malformed
	ErrCodeCache       = "E010" // Inference cache unavailable

	// Document compile errors
	ErrCodeSchema  = "E021" // Invalid table definition
	ErrCodeQuery   = "E022" // Invalid statement
	ErrCodeGlobals = "E023" // Invalid globals section
)

// LoadError represents an error that occurred while loading inputs.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// source is a loaded document together with its raw text, which feeds the
// cache key.
type source struct {
	Path string
	Doc  *compiler.Document
	Text string
}

// loadSource reads and compiles a CUE file or directory.
func loadSource(path string) (*source, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", path, err)}
	}

	var text bytes.Buffer
	if info.IsDir() {
		files, err := compiler.FindCUEFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(files) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
		}
		sort.Strings(files)
		for _, f := range files {
			data, err := os.ReadFile(f)
			if err != nil {
				return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
			}
			text.Write(data)
			text.WriteByte('\n')
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
		}
		text.Write(data)
	}

	doc, err := compiler.LoadDocument(path)
	if err != nil {
		return nil, convertCompileError(err, path)
	}
	return &source{Path: path, Doc: doc, Text: text.String()}, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeBuildFailed,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "cue":
		return ErrCodeBuildFailed
	case strings.HasPrefix(field, "table"):
		return ErrCodeSchema
	case strings.HasPrefix(field, "queries"):
		return ErrCodeQuery
	case strings.HasPrefix(field, "globals"):
		return ErrCodeGlobals
	default:
		return ErrCodeGeneric
	}
}

// loadConfig loads the project file named by --config, or the default file
// in the working directory.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	path := opts.Config
	if path == "" {
		path = config.DefaultFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeConfig, Message: err.Error()}
	}
	return cfg, nil
}

// parseGlobals parses name=type flags, e.g. auth=record<user>.
func parseGlobals(flags []string) (map[string]kind.Kind, error) {
	out := make(map[string]kind.Kind, len(flags))
	for _, f := range flags {
		name, expr, ok := strings.Cut(f, "=")
		name = strings.TrimPrefix(strings.TrimSpace(name), "$")
		if !ok || name == "" {
			return nil, &LoadError{Code: ErrCodeBadGlobal, Message: fmt.Sprintf("global %q must be name=type", f)}
		}
		k, err := kind.Parse(strings.TrimSpace(expr))
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadGlobal, Message: fmt.Sprintf("global %s: %v", name, err)}
		}
		out[name] = k
	}
	return out, nil
}

// mergeGlobals layers the maps left to right; later entries win.
func mergeGlobals(layers ...map[string]kind.Kind) map[string]kind.Kind {
	out := make(map[string]kind.Kind)
	for _, l := range layers {
		maps.Copy(out, l)
	}
	return out
}

// loadErrorCode returns the code of a LoadError, or ErrCodeGeneric.
func loadErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeGeneric
}
