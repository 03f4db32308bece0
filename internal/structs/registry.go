// Package structs implements the struct registry: a process-wide table
// of named struct definitions and their monomorphized specializations,
// with cycle validation on registration.
package structs

import (
	"fmt"
	"strings"
	"sync"

	"github.com/b-macker/naab/internal/types"
)

// FieldDef is one (name, type) pair of a struct definition, in declaration
// order.
type FieldDef struct {
	Name string
	Type *types.Type
}

// Def is StructDef: a unique name, ordered fields, a name→index
// lookup, and — for generic definitions — the type parameter names bound
// at each construction site.
type Def struct {
	Name           string
	Fields         []FieldDef
	FieldIndex     map[string]int
	TypeParameters []string // nil for non-generic definitions

	// BaseName and TypeArgs are set on monomorphized specializations
	// (e.g. Box_int's BaseName is "Box", TypeArgs is [int]); empty for a
	// plain (non-generic) definition.
	BaseName string
	TypeArgs []*types.Type
}

// IsGeneric reports whether d is an unspecialized generic definition.
func (d *Def) IsGeneric() bool { return len(d.TypeParameters) > 0 }

// FieldType returns the declared type of field name, or nil if absent.
func (d *Def) FieldType(name string) *types.Type {
	if i, ok := d.FieldIndex[name]; ok {
		return d.Fields[i].Type
	}
	return nil
}

// Registry is the process-wide name→Def table.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Def
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register validates and adds def. Non-generic definitions are checked
// for static field cycles (e.g. `A { x: A }` without nullability); generic
// definitions defer that check to each specialization.
func (r *Registry) Register(def *Def) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !def.IsGeneric() {
		if err := r.checkCycle(def); err != nil {
			return err
		}
	}
	index := make(map[string]int, len(def.Fields))
	for i, f := range def.Fields {
		index[f.Name] = i
	}
	def.FieldIndex = index
	r.defs[def.Name] = def
	return nil
}

// Get looks up a registered definition (plain or specialized) by name.
func (r *Registry) Get(name string) (*Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}

// Mangle produces the deterministic, diagnostics-reversible specialization
// name for a generic struct instantiated with typeArgs (e.g. "Box", [int]
// -> "Box_int"), per "mangling the base name with its type
// arguments".
func Mangle(baseName string, typeArgs []*types.Type) string {
	parts := make([]string, len(typeArgs))
	for i, t := range typeArgs {
		parts[i] = mangleOne(t)
	}
	return baseName + "_" + strings.Join(parts, "_")
}

func mangleOne(t *types.Type) string {
	s := t.String()
	s = strings.NewReplacer("?", "opt", "<", "_", ">", "", ", ", "_", " ", "", "|", "or", "[", "arr", "]", "", "{", "dict", "}", "", ":", "").Replace(s)
	return s
}

// Specialize registers (idempotently) the monomorphized Def for a generic
// base struct instantiated with concrete fields, and runs cycle validation
// on the specialization. The second return value reports whether this
// call newly registered the specialization (false if it already existed —
// `new Box<int>{ ... }` called twice resolves to the same Def).
func (r *Registry) Specialize(base *Def, typeArgs []*types.Type, fields []FieldDef) (*Def, bool, error) {
	name := Mangle(base.Name, typeArgs)
	r.mu.Lock()
	if existing, ok := r.defs[name]; ok {
		r.mu.Unlock()
		return existing, false, nil
	}
	r.mu.Unlock()

	spec := &Def{
		Name:     name,
		Fields:   fields,
		BaseName: base.Name,
		TypeArgs: typeArgs,
	}
	if err := r.Register(spec); err != nil {
		return nil, false, err
	}
	return spec, true, nil
}

// checkCycle runs a DFS over def's (and only def's) non-nullable struct
// fields looking for a path back to def.Name, per "DFS with a
// visiting set".
func (r *Registry) checkCycle(def *Def) error {
	visiting := map[string]bool{def.Name: true}
	var walk func(d *Def) error
	walk = func(d *Def) error {
		for _, f := range d.Fields {
			if err := r.checkFieldType(f.Type, visiting); err != nil {
				return fmt.Errorf("struct %q: %w", def.Name, err)
			}
		}
		return nil
	}
	return walk(def)
}

func (r *Registry) checkFieldType(t *types.Type, visiting map[string]bool) error {
	if t == nil || t.IsNullable {
		return nil
	}
	switch t.Kind {
	case types.KStruct:
		if visiting[t.StructName] {
			return fmt.Errorf("cyclic field reference through %q (non-nullable)", t.StructName)
		}
		next, ok := r.defs[t.StructName]
		if !ok {
			// Self-reference to the struct currently being registered, or
			// a forward reference not yet in the table: treated as a
			// cycle only if it names def itself, which visiting already
			// covers via the struct's own name key.
			return nil
		}
		visiting[t.StructName] = true
		defer delete(visiting, t.StructName)
		for _, f := range next.Fields {
			if err := r.checkFieldType(f.Type, visiting); err != nil {
				return err
			}
		}
	case types.KList:
		return r.checkFieldType(t.Element, visiting)
	case types.KDict:
		return r.checkFieldType(t.DictValue, visiting)
	}
	return nil
}
