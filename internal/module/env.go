// Package module resolves imports into a single Global Environment:
// flat, unique-keyed registries of every refined type, struct, and
// atom definition reachable from a compile's entry file.
package module

import (
	"github.com/sunholo/mumei/internal/ast"
	merrors "github.com/sunholo/mumei/internal/errors"
)

// Env is the Global Environment: three independent name -> definition
// mappings. Keys are unique; a second registration under the same
// plain (non-FQN) name is a DuplicateDefinition.
type Env struct {
	Types   map[string]*ast.RefinedType
	Structs map[string]*ast.StructDef
	Atoms   map[string]*ast.Atom
}

// NewEnv creates an empty Global Environment.
func NewEnv() *Env {
	return &Env{
		Types:   make(map[string]*ast.RefinedType),
		Structs: make(map[string]*ast.StructDef),
		Atoms:   make(map[string]*ast.Atom),
	}
}

func duplicateDefinitionErr(name string, pos ast.Pos) error {
	return merrors.Wrap(&merrors.Report{
		Schema:  "mumei.error/v1",
		Code:    merrors.IMP003,
		Phase:   "resolver",
		Message: "duplicate definition of \"" + name + "\"",
		Pos:     pos.String(),
		Data:    map[string]any{"name": name},
	})
}

// Register inserts item under its plain name, failing if that name is
// already taken. Import items are not registered here; the resolver
// handles them directly.
func (e *Env) Register(item ast.Item) error {
	switch it := item.(type) {
	case *ast.RefinedType:
		if _, ok := e.Types[it.Name]; ok {
			return duplicateDefinitionErr(it.Name, it.Pos)
		}
		e.Types[it.Name] = it
	case *ast.StructDef:
		if _, ok := e.Structs[it.Name]; ok {
			return duplicateDefinitionErr(it.Name, it.Pos)
		}
		e.Structs[it.Name] = it
	case *ast.Atom:
		if _, ok := e.Atoms[it.Name]; ok {
			return duplicateDefinitionErr(it.Name, it.Pos)
		}
		e.Atoms[it.Name] = it
	case *ast.Import:
		// handled by the resolver's import walk, not registered directly
	}
	return nil
}

// RegisterFQN registers a clone of item under "alias::name", the form
// an aliased import produces. FQN registrations never collide with
// plain names so they bypass the duplicate check: two modules may be
// imported under different aliases without conflict.
func (e *Env) RegisterFQN(alias string, item ast.Item) {
	fqn := alias + "::"
	switch it := item.(type) {
	case *ast.RefinedType:
		clone := *it
		clone.Name = fqn + it.Name
		e.Types[clone.Name] = &clone
	case *ast.StructDef:
		clone := *it
		clone.Name = fqn + it.Name
		e.Structs[clone.Name] = &clone
	case *ast.Atom:
		clone := *it
		clone.Name = fqn + it.Name
		e.Atoms[clone.Name] = &clone
	}
}
