package module

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sunholo/mumei/internal/ast"
	merrors "github.com/sunholo/mumei/internal/errors"
	"github.com/sunholo/mumei/internal/lexer"
	"github.com/sunholo/mumei/internal/parser"
)

// Resolver walks Import items, loading and registering each file's
// declarations into a shared Env exactly once. loading/loaded are
// scoped to a single top-level compile; they are never observed
// outside the resolver.
type Resolver struct {
	Env     *Env
	loading map[string]bool
	loaded  map[string][]ast.Item
}

// NewResolver creates a Resolver over a fresh Global Environment.
func NewResolver() *Resolver {
	return &Resolver{
		Env:     NewEnv(),
		loading: make(map[string]bool),
		loaded:  make(map[string][]ast.Item),
	}
}

func canonicalize(path, baseDir string) string {
	if !strings.HasSuffix(path, ".mm") {
		path += ".mm"
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(baseDir, path))
}

func circularImportErr(path string, pos ast.Pos) error {
	return merrors.Wrap(&merrors.Report{
		Schema:  "mumei.error/v1",
		Code:    merrors.IMP002,
		Phase:   "resolver",
		Message: "circular import of \"" + path + "\"",
		Pos:     pos.String(),
		Data:    map[string]any{"path": path},
	})
}

func importNotFoundErr(path string, pos ast.Pos, cause error) error {
	return merrors.Wrap(&merrors.Report{
		Schema:  "mumei.error/v1",
		Code:    merrors.IMP001,
		Phase:   "resolver",
		Message: "cannot read import \"" + path + "\": " + cause.Error(),
		Pos:     pos.String(),
		Data:    map[string]any{"path": path},
	})
}

func ioErr(path string, cause error) error {
	return merrors.Wrap(&merrors.Report{
		Schema:  "mumei.error/v1",
		Code:    merrors.IO001,
		Phase:   "resolver",
		Message: "cannot read source file \"" + path + "\": " + cause.Error(),
	})
}

func parseErr(path string, cause error) error {
	return merrors.Wrap(&merrors.Report{
		Schema:  "mumei.error/v1",
		Code:    merrors.PAR001,
		Phase:   "parser",
		Message: cause.Error(),
		Data:    map[string]any{"file": path},
	})
}

// ResolveEntry parses and resolves the compile's entry file, returning
// its own items (in source order, imports included) once every
// transitively imported module has been registered into r.Env.
func (r *Resolver) ResolveEntry(path string) ([]ast.Item, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ioErr(path, err)
	}
	items, err := parseFile(abs)
	if err != nil {
		return nil, err
	}
	if err := r.Resolve(items, filepath.Dir(abs)); err != nil {
		return nil, err
	}
	return items, nil
}

func parseFile(absPath string) ([]ast.Item, error) {
	src, err := os.ReadFile(absPath)
	if err != nil {
		return nil, ioErr(absPath, err)
	}
	l := lexer.New(string(src), absPath)
	p := parser.New(l, absPath)
	items, err := p.ParseProgram()
	if err != nil {
		return nil, parseErr(absPath, err)
	}
	return items, nil
}

// Resolve registers every non-import item directly into Env; Import
// items trigger a (possibly recursive) file load relative to baseDir.
func (r *Resolver) Resolve(items []ast.Item, baseDir string) error {
	for _, item := range items {
		imp, isImport := item.(*ast.Import)
		if !isImport {
			if err := r.Env.Register(item); err != nil {
				return err
			}
			continue
		}
		if err := r.resolveImport(imp, baseDir); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveImport(imp *ast.Import, baseDir string) error {
	canonical := canonicalize(imp.Path, baseDir)

	if r.loading[canonical] {
		return circularImportErr(canonical, imp.Pos)
	}

	cached, alreadyLoaded := r.loaded[canonical]
	if alreadyLoaded {
		if imp.Alias != "" {
			for _, it := range cached {
				if _, ok := it.(*ast.Import); ok {
					continue
				}
				r.Env.RegisterFQN(imp.Alias, it)
			}
		}
		return nil
	}

	r.loading[canonical] = true
	items, err := parseFile(canonical)
	if err != nil {
		r.loading[canonical] = false
		return importNotFoundErr(imp.Path, imp.Pos, err)
	}

	if err := r.Resolve(items, filepath.Dir(canonical)); err != nil {
		delete(r.loading, canonical)
		return err
	}
	delete(r.loading, canonical)
	r.loaded[canonical] = items

	if imp.Alias != "" {
		for _, it := range items {
			if _, ok := it.(*ast.Import); ok {
				continue
			}
			r.Env.RegisterFQN(imp.Alias, it)
		}
	}
	return nil
}
