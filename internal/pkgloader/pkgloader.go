// Package pkgloader implements the external-module resolution seam
// spec.md §6 names: a `using Foo` import resolves to zero or more
// lowered Module values, or a load error when nothing registered
// answers for that path. Actual module contents (what "Dates" or
// "Base.Iterators" actually export) are out of scope, same as
// internal/prelude's text blobs — this package owns the lookup
// contract, not a standard library.
//
// Grounded on the teacher's own module resolution in
// internal/interpreter/modules.go, which maps an import path to a
// registered *ModuleInfo or raises an undefined-module error; this
// package generalizes that single global registry into an injectable
// Registry so cmd/juliavm (or a test) can seed exactly the modules a
// given run should see.
package pkgloader

import (
	"fmt"
	"strings"

	"juliavm/internal/ir"
)

// Module is one resolved external package: the subset of an
// ir.Program a `using` import contributes to the importing program.
type Module struct {
	Name      string
	Functions []*ir.Function
	Structs   []*ir.StructDef
}

// Loader resolves a using-import to the modules it names.
type Loader interface {
	Load(imp ir.UsingImport) ([]Module, error)
}

// Registry is the in-memory Loader this module ships: modules must be
// Register-ed before a program using them can load, mirroring the
// teacher's fixed table of built-in module names rather than touching
// the filesystem or network for package resolution (spec.md's stated
// Non-goal).
type Registry struct {
	modules map[string]Module
}

func NewRegistry() *Registry {
	return &Registry{modules: map[string]Module{}}
}

// Register makes mod resolvable under exactly name; a nested module is
// registered under its full dotted name ("A.B"), the key Load builds
// for `using A.B`.
func (r *Registry) Register(name string, mod Module) {
	r.modules[name] = mod
}

// Load resolves imp.Path (e.g. ["Base", "Iterators"]) against the
// registry by joining it with ".", the same dotted spelling
// ir.UsingImport.Path documents for nested module references. A path
// with no registered match is a load error, never a silent no-op,
// since spec.md requires an explicit diagnostic when a program
// references a package this run doesn't carry.
func (r *Registry) Load(imp ir.UsingImport) ([]Module, error) {
	key := strings.Join(imp.Path, ".")
	if mod, ok := r.modules[key]; ok {
		return []Module{mod}, nil
	}
	return nil, fmt.Errorf("pkgloader: no module registered for %q", key)
}

// LoadAll resolves every import in imports, collecting every resolved
// Module and failing on the first one that doesn't resolve.
func LoadAll(l Loader, imports []ir.UsingImport) ([]Module, error) {
	var out []Module
	for _, imp := range imports {
		mods, err := l.Load(imp)
		if err != nil {
			return nil, err
		}
		out = append(out, mods...)
	}
	return out, nil
}
