package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/DrewRidley/surreal-codegen/internal/ast"
	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

// Document is a compiled input: schema definitions, statements and the
// globals it declares. Any of them may be empty.
type Document struct {
	Definitions []ast.Definition
	Statements  []ast.Statement
	Globals     map[string]kind.Kind
}

// Compile reads every section of a built CUE value.
func Compile(v cue.Value) (*Document, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	defs, err := CompileSchema(v)
	if err != nil {
		return nil, err
	}
	stmts, err := CompileQueries(v)
	if err != nil {
		return nil, err
	}
	globals, err := CompileGlobals(v)
	if err != nil {
		return nil, err
	}
	return &Document{Definitions: defs, Statements: stmts, Globals: globals}, nil
}

// LoadFile builds a single CUE file.
func LoadFile(path string) (cue.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, err
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(path))
	if err := v.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return v, nil
}

// LoadDir builds the CUE package in dir, unifying all of its files.
func LoadDir(dir string) (cue.Value, error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, fmt.Errorf("loading CUE files: %w", inst.Err)
	}
	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return v, nil
}

// Load builds path, which may be a file or a directory.
func Load(path string) (cue.Value, error) {
	info, err := os.Stat(path)
	if err != nil {
		return cue.Value{}, err
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadDocument loads and compiles path.
func LoadDocument(path string) (*Document, error) {
	v, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Compile(v)
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
