package compiler

import (
	"sort"
	"sync"

	"github.com/deepnoodle-ai/classgen/errors"
	"github.com/hashicorp/go-multierror"
)

// Artifact is a generated class file and the declaration it came from.
type Artifact struct {
	Name   string // qualified name, dot separated
	Data   []byte
	Origin errors.SourceLocation
}

// ArtifactTable holds every class generated during a run, keyed by
// qualified name. Names are unique: inserting an existing name fails and
// leaves the table unchanged. It is safe for concurrent use.
type ArtifactTable struct {
	mu      sync.RWMutex
	entries map[string]Artifact
}

// NewArtifactTable returns an empty table.
func NewArtifactTable() *ArtifactTable {
	return &ArtifactTable{entries: map[string]Artifact{}}
}

// Put inserts a class under name. The existence check and the insert happen
// in one critical section. An existing entry yields a
// *errors.NameCollisionError and the table is not modified. The data is
// copied.
func (t *ArtifactTable) Put(name string, data []byte, origin errors.SourceLocation) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.entries[name]; ok {
		return &errors.NameCollisionError{Name: name, Location: origin, Previous: prev.Origin}
	}
	t.entries[name] = Artifact{Name: name, Data: clone(data), Origin: origin}
	return nil
}

// Contains reports whether a class with the given name exists.
func (t *ArtifactTable) Contains(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[name]
	return ok
}

// Get returns a copy of the class data stored under name.
func (t *ArtifactTable) Get(name string) ([]byte, bool) {
	a, ok := t.Artifact(name)
	return a.Data, ok
}

// Artifact returns the entry stored under name with a copy of its data.
func (t *ArtifactTable) Artifact(name string) (Artifact, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.entries[name]
	if !ok {
		return Artifact{}, false
	}
	a.Data = clone(a.Data)
	return a, true
}

// Origin returns the location of the declaration that produced name.
func (t *ArtifactTable) Origin(name string) (errors.SourceLocation, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.entries[name]
	return a.Origin, ok
}

// Len returns the number of classes in the table.
func (t *ArtifactTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Names returns the qualified names in sorted order.
func (t *ArtifactTable) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Each calls fn for every artifact in name order and stops at the first
// error, which it returns.
func (t *ArtifactTable) Each(fn func(Artifact) error) error {
	for _, name := range t.Names() {
		a, ok := t.Artifact(name)
		if !ok {
			continue
		}
		if err := fn(a); err != nil {
			return err
		}
	}
	return nil
}

// Merge inserts every artifact of other, in name order. Names already
// present are rejected with a NameCollisionError each; the remaining
// artifacts are still inserted. The returned error is a
// *multierror.Error when any collision occurred.
func (t *ArtifactTable) Merge(other *ArtifactTable) error {
	var result *multierror.Error
	_ = other.Each(func(a Artifact) error {
		if err := t.Put(a.Name, a.Data, a.Origin); err != nil {
			result = multierror.Append(result, err)
		}
		return nil
	})
	return result.ErrorOrNil()
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
