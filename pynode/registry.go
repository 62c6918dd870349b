package pynode

import (
	"fmt"
	"strings"
)

// entityTypeMarker marks an input port's declared type as an entity
// reference, used by the validator's entity-input provenance rule.
const entityTypeMarker = "实体"

// variadicPortMarker marks a port name as variadic (accepts a trailing
// run of same-typed arguments).
const variadicPortMarker = "~"

// Def is a single entry of the node registry: a normalized spec plus its
// derived indices.
type Def struct {
	NormalizedSpec
}

// Registry is the indexed node-definition library built from normalized
// specs.
type Registry struct {
	byKey   map[string]*Def
	byAlias map[string]*Def

	entityInputParamsByFunc map[string]map[string]bool
	variadicMinArgs         map[string]int
}

// Build indexes normalized specs into a Registry. Duplicate standard keys
// are an error unless the two specs declare disjoint server/client scopes,
// in which case both are retained under scope-suffixed keys
// ("Category/Name#server", "Category/Name#client").
func Build(specs []NormalizedSpec) (*Registry, error) {
	r := &Registry{
		byKey:                   map[string]*Def{},
		byAlias:                 map[string]*Def{},
		entityInputParamsByFunc: map[string]map[string]bool{},
		variadicMinArgs:         map[string]int{},
	}

	seen := map[string]*Def{}
	for i := range specs {
		spec := specs[i]
		if spec.StandardKey == "" {
			continue
		}
		def := &Def{NormalizedSpec: spec}

		if existing, ok := seen[spec.StandardKey]; ok {
			if !scopesDisjoint(existing.Scopes, def.Scopes) {
				return nil, fmt.Errorf("duplicate node definition for %q (%s and %s)",
					spec.StandardKey, existing.FilePath, spec.FilePath)
			}
			r.byKey[scopedKey(existing.StandardKey, existing.Scopes)] = existing
			r.byKey[scopedKey(def.StandardKey, def.Scopes)] = def
		} else {
			seen[spec.StandardKey] = def
			r.byKey[spec.StandardKey] = def
		}

		for _, alias := range spec.Aliases {
			r.byAlias[alias] = def
		}

		r.indexEntityInputs(def)
		r.indexVariadic(def)
	}

	return r, nil
}

func scopesDisjoint(a, b []string) bool {
	set := map[string]bool{}
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if set[s] {
			return false
		}
	}
	return len(a) > 0 && len(b) > 0
}

func scopedKey(key string, scopes []string) string {
	if len(scopes) == 0 {
		return key
	}
	return key + "#" + strings.Join(scopes, ",")
}

func (r *Registry) indexEntityInputs(def *Def) {
	for name, typeName := range def.InputTypes {
		if strings.Contains(typeName, entityTypeMarker) {
			set := r.entityInputParamsByFunc[def.Name]
			if set == nil {
				set = map[string]bool{}
				r.entityInputParamsByFunc[def.Name] = set
			}
			set[name] = true
		}
	}
}

func (r *Registry) indexVariadic(def *Def) {
	variadicCount := 0
	for name := range def.InputTypes {
		if strings.Contains(name, variadicPortMarker) {
			variadicCount++
		}
	}
	if variadicCount == 1 {
		r.variadicMinArgs[def.Name] = 1
	} else if variadicCount > 1 {
		r.variadicMinArgs[def.Name] = 2
	}
}

// Get resolves a definition by its "Category/Name" standard key.
func (r *Registry) Get(standardKey string) (*Def, bool) {
	d, ok := r.byKey[standardKey]
	return d, ok
}

// GetByAlias resolves a definition by one of its declared aliases.
func (r *Registry) GetByAlias(alias string) (*Def, bool) {
	d, ok := r.byAlias[alias]
	return d, ok
}

// EntityInputNames returns the set of input port names of funcName whose
// declared type is an entity reference.
func (r *Registry) EntityInputNames(funcName string) map[string]bool {
	return r.entityInputParamsByFunc[funcName]
}

// VariadicMinArgs returns the minimum argument count a variadic node
// requires: 1 for exactly one variadic input, 2 for more than one, 0 if the
// node has no variadic inputs.
func (r *Registry) VariadicMinArgs(funcName string) int {
	return r.variadicMinArgs[funcName]
}
