package compiler

import (
	"sort"
	"sync"

	"github.com/deepnoodle-ai/classgen/codegen"
)

// EnumInfo describes a generated enum class.
type EnumInfo struct {
	Name       string // qualified name, dot separated
	BinaryName string
	Kind       codegen.Kind
	Members    []codegen.Member
}

// Member returns the member with the given declared name.
func (e *EnumInfo) Member(name string) (codegen.Member, bool) {
	for _, m := range e.Members {
		if m.Name == name {
			return m, true
		}
	}
	return codegen.Member{}, false
}

// Registry records the members of every emitted enum so that later stages
// can resolve references such as Color.Red to a constant and its value.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	enums map[string]*EnumInfo
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{enums: map[string]*EnumInfo{}}
}

// Register records an enum. The first registration of a name wins, matching
// the artifact table; Register reports whether info was recorded.
func (r *Registry) Register(info *EnumInfo) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enums[info.Name]; ok {
		return false
	}
	r.enums[info.Name] = info
	return true
}

// Enum returns the enum registered under a qualified name. If no enum has
// that exact name, an unqualified name matches the single enum with that
// simple name, if there is exactly one.
func (r *Registry) Enum(name string) (*EnumInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if info, ok := r.enums[name]; ok {
		return info, true
	}
	var found *EnumInfo
	for qualified, info := range r.enums {
		if simpleName(qualified) != name {
			continue
		}
		if found != nil {
			return nil, false
		}
		found = info
	}
	return found, found != nil
}

// Lookup resolves a member of an enum.
func (r *Registry) Lookup(enum, member string) (codegen.Member, bool) {
	info, ok := r.Enum(enum)
	if !ok {
		return codegen.Member{}, false
	}
	return info.Member(member)
}

// Names returns the registered qualified names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.enums))
	for name := range r.enums {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge copies the enums of other into r. Names already registered keep
// their existing entry.
func (r *Registry) Merge(other *Registry) {
	for _, name := range other.Names() {
		if info, ok := other.Enum(name); ok {
			r.Register(info)
		}
	}
}

func simpleName(qualified string) string {
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' {
			return qualified[i+1:]
		}
	}
	return qualified
}
