package model

import "strings"

// binaryExtensions are the suffixes stripped for display. Anything else after
// a dot is part of the unit name ("Company.Product.Core").
var binaryExtensions = []string{
	".dll", ".exe", ".so", ".dylib", ".a", ".lib", ".o", ".obj", ".wasm", ".jar",
}

// DisplayName strips a known binary extension from name, case-insensitively.
func DisplayName(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range binaryExtensions {
		if len(name) > len(ext) && strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// Resolver maps names found in References and Dependants back to entries.
//
// The raw Name is the canonical key. Producers sometimes list references
// without the extension, so a display-name alias is consulted second; an alias
// shared by two entries is ambiguous and never resolves.
type Resolver struct {
	byName  map[string]int
	byAlias map[string]int
}

const ambiguous = -1

// NewResolver indexes entries by position.
func NewResolver(entries []CompilationEntry) *Resolver {
	r := &Resolver{
		byName:  make(map[string]int, len(entries)),
		byAlias: make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		r.byName[e.Name] = i
	}
	for i, e := range entries {
		alias := DisplayName(e.Name)
		if alias == e.Name {
			continue
		}
		if _, taken := r.byName[alias]; taken {
			continue
		}
		if _, seen := r.byAlias[alias]; seen {
			r.byAlias[alias] = ambiguous
			continue
		}
		r.byAlias[alias] = i
	}
	return r
}

// Resolve returns the position of the entry name refers to.
func (r *Resolver) Resolve(name string) (int, bool) {
	if r == nil {
		return 0, false
	}
	if i, ok := r.byName[name]; ok {
		return i, true
	}
	if i, ok := r.byAlias[name]; ok && i != ambiguous {
		return i, true
	}
	return 0, false
}
