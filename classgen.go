// Package classgen compiles TypeScript enum declarations into JVM class
// files.
//
//	table, err := classgen.Compile(ctx, []classgen.Source{
//		{Name: "colors.ts", Code: "namespace ui { export enum Color { Red, Green } }"},
//	})
//	data, _ := table.Get("ui.Color") // ui/Color.class
//
// Each non-ambient enum becomes one class named after the namespace blocks
// that enclose it. Class names are unique across all sources of a
// compilation; when two sources declare the same class the earlier source
// wins.
package classgen

import (
	"context"

	"github.com/deepnoodle-ai/classgen/compiler"
	"github.com/deepnoodle-ai/classgen/sink"
	"github.com/gofrs/uuid"
)

// Source is one declaration file.
type Source struct {
	Name string
	Code string
}

// Result is everything a compilation produced.
type Result struct {
	// RunID identifies the compilation in logs.
	RunID uuid.UUID
	// Artifacts holds the class files keyed by qualified name.
	Artifacts *compiler.ArtifactTable
	// Enums describes the members of every generated enum.
	Enums *compiler.Registry
}

// Build compiles sources and returns the artifacts together with the enum
// registry. On failure the partial result is returned alongside the error.
func Build(ctx context.Context, sources []Source, opts ...Option) (*Result, error) {
	o := collectOptions(opts...)
	sessionOpts, err := o.sessionOpts()
	if err != nil {
		return nil, err
	}
	session := compiler.NewSession(sessionOpts...)
	files := make([]*compiler.File, len(sources))
	for i, src := range sources {
		files[i] = &compiler.File{Name: src.Name, Source: src.Code}
	}
	err = session.CompileFiles(ctx, files)
	return &Result{
		RunID:     session.ID(),
		Artifacts: session.Artifacts(),
		Enums:     session.Registry(),
	}, err
}

// Compile parses and compiles sources and returns the generated classes.
func Compile(ctx context.Context, sources []Source, opts ...Option) (*compiler.ArtifactTable, error) {
	result, err := Build(ctx, sources, opts...)
	if result == nil {
		return nil, err
	}
	return result.Artifacts, err
}

// CompileString compiles a single source.
func CompileString(ctx context.Context, name, code string, opts ...Option) (*compiler.ArtifactTable, error) {
	return Compile(ctx, []Source{{Name: name, Code: code}}, opts...)
}

// Publish writes every artifact to target, which is a directory, a file://,
// s3:// or postgres:// URL. It returns the number of classes written.
func Publish(ctx context.Context, table *compiler.ArtifactTable, target string) (int, error) {
	return publish(ctx, table, target)
}

// Publish writes the result's artifacts to target. Stored rows carry the
// result's RunID.
func (r *Result) Publish(ctx context.Context, target string) (int, error) {
	return publish(ctx, r.Artifacts, target, sink.WithRunID(r.RunID))
}

func publish(ctx context.Context, table *compiler.ArtifactTable, target string, opts ...sink.Option) (int, error) {
	s, err := sink.Open(ctx, target, opts...)
	if err != nil {
		return 0, err
	}
	n, err := sink.Publish(ctx, table, s)
	if closeErr := s.Close(); err == nil {
		err = closeErr
	}
	return n, err
}
