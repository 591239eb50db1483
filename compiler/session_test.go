package compiler

import (
	"context"
	"testing"

	"github.com/deepnoodle-ai/classgen/classfile"
	"github.com/deepnoodle-ai/classgen/codegen"
	"github.com/deepnoodle-ai/classgen/errors"
	"github.com/deepnoodle-ai/classgen/parser"
	"github.com/deepnoodle-ai/classgen/syntax"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
)

func TestCompileFileNamespaces(t *testing.T) {
	src := `
enum Top { A }
namespace a.b {
	export enum Color { Red, Green }
	namespace c {
		enum Deep { X = "x" }
	}
	declare enum Hidden { H }
}
declare namespace ambient {
	enum Skipped { S }
}
module m { const enum Flag { On = 1 << 0, Off = 0 } }
`
	session := NewSession()
	require.NoError(t, session.CompileFile(context.Background(), &File{Name: "all.ts", Source: src}))
	require.Equal(t, []string{"Top", "a.b.Color", "a.b.c.Deep", "m.Flag"}, session.Artifacts().Names())

	data, _ := session.Artifacts().Get("a.b.c.Deep")
	cf, err := classfile.Parse(data)
	require.NoError(t, err)
	require.Equal(t, "a/b/c/Deep", cf.Name)

	m, ok := session.Registry().Lookup("Flag", "On")
	require.True(t, ok)
	require.Equal(t, int32(1), m.Int)
	_, ok = session.Registry().Enum("Hidden")
	require.False(t, ok)
}

func TestCompileFileParseError(t *testing.T) {
	session := NewSession()
	err := session.CompileFile(context.Background(), &File{Name: "bad.ts", Source: "enum {"})
	var perr *parser.Errors
	require.True(t, errors.As(err, &perr))
	require.Equal(t, 0, session.Artifacts().Len())
}

func TestCompileFileStopsAtFirstError(t *testing.T) {
	src := "enum A { X }\nenum A { Y }\nenum B { Z }\n"
	session := NewSession()
	err := session.CompileFile(context.Background(), &File{Name: "dup.ts", Source: src})
	var collision *errors.NameCollisionError
	require.True(t, errors.As(err, &collision))
	require.Equal(t, 2, collision.Location.Line)
	require.Equal(t, 1, collision.Previous.Line)
	require.Equal(t, []string{"A"}, session.Artifacts().Names())
}

func TestCompileFileKeepGoing(t *testing.T) {
	src := "enum A { X }\nenum A { Y }\nenum Empty {}\nenum B { Z }\n"
	session := NewSession(WithKeepGoing(true))
	err := session.CompileFile(context.Background(), &File{Name: "dup.ts", Source: src})
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 2)

	var collision *errors.NameCollisionError
	require.True(t, errors.As(merr.Errors[0], &collision))
	var genErr *errors.GenerationError
	require.True(t, errors.As(merr.Errors[1], &genErr))
	require.Equal(t, "failed to generate bytecode for enum: Empty", genErr.Message)

	require.Equal(t, []string{"A", "B"}, session.Artifacts().Names())
}

func TestCompileFilesEarlierFileWins(t *testing.T) {
	files := []*File{
		{Name: "one.ts", Source: "namespace p { enum Color { Red } }\nenum One { A }"},
		{Name: "two.ts", Source: "namespace p { enum Color { Blue, Green } }\nenum Two { B }"},
		{Name: "three.ts", Source: "enum Three { C }"},
	}

	session := NewSession(WithKeepGoing(true), WithJobs(3))
	err := session.CompileFiles(context.Background(), files)
	var collision *errors.NameCollisionError
	require.True(t, errors.As(err, &collision))
	require.Equal(t, "p.Color", collision.Name)
	require.Equal(t, "two.ts", collision.Location.Filename)
	require.Equal(t, "one.ts", collision.Previous.Filename)

	require.Equal(t, []string{"One", "Three", "Two", "p.Color"}, session.Artifacts().Names())
	_, ok := session.Registry().Lookup("p.Color", "Red")
	require.True(t, ok)
	_, ok = session.Registry().Lookup("p.Color", "Blue")
	require.False(t, ok)
}

func TestCompileFilesFailFast(t *testing.T) {
	files := []*File{
		{Name: "one.ts", Source: "enum One { A }"},
		{Name: "two.ts", Source: "enum Two {}"},
		{Name: "three.ts", Source: "enum Three { C"},
	}
	session := NewSession(WithJobs(1))
	err := session.CompileFiles(context.Background(), files)
	var genErr *errors.GenerationError
	require.True(t, errors.As(err, &genErr))
	require.Equal(t, "two.ts", genErr.Filename)
	// Files after the failing one are not merged.
	require.Equal(t, []string{"One"}, session.Artifacts().Names())
}

func TestCompileFilesValidators(t *testing.T) {
	files := []*File{
		{Name: "ok.ts", Source: "enum Ok { A = 1 }"},
		{Name: "loose.ts", Source: "enum Loose { A = 1, B }"},
	}
	session := NewSession(WithKeepGoing(true), WithValidators(syntax.NewRulesValidator(syntax.Strict)))
	err := session.CompileFiles(context.Background(), files)
	var verrs *syntax.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Equal(t, "member B has no initializer", verrs.Errors[0].Message)
	require.Equal(t, "loose.ts", verrs.Errors[0].Position.File)
	require.Equal(t, []string{"Ok"}, session.Artifacts().Names())
}

func TestCompileFilesDeterministic(t *testing.T) {
	var files []*File
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files = append(files, &File{
			Name:   name + ".ts",
			Source: "namespace " + name + " { enum Shared { X, Y } }\nenum Shared { Z" + name + " }",
		})
	}

	var first map[string][]byte
	for i := 0; i < 5; i++ {
		session := NewSession(WithKeepGoing(true), WithJobs(4))
		err := session.CompileFiles(context.Background(), files)
		var merr *multierror.Error
		require.True(t, errors.As(err, &merr))
		require.Len(t, merr.Errors, 7)
		for j, e := range merr.Errors {
			var collision *errors.NameCollisionError
			require.True(t, errors.As(e, &collision))
			require.Equal(t, files[j+1].Name, collision.Location.Filename)
		}
		snap := snapshot(session.Artifacts())
		require.Len(t, snap, 9)
		if first == nil {
			first = snap
			continue
		}
		require.Equal(t, first, snap)
	}
	shared := first["Shared"]
	cf, err := classfile.Parse(shared)
	require.NoError(t, err)
	_, ok := cf.Field("ZA")
	require.True(t, ok)
}

func TestCompileFilesPreParsed(t *testing.T) {
	src := "enum Pre { A }"
	program, err := parser.Parse(context.Background(), src, parser.WithFilename("pre.ts"))
	require.NoError(t, err)

	encoder, err := codegen.NewEncoder(8)
	require.NoError(t, err)
	session := NewSession(WithEncoder(encoder))
	require.NoError(t, session.CompileFiles(context.Background(), []*File{
		{Name: "pre.ts", Source: src, Program: program},
	}))
	data, ok := session.Artifacts().Get("Pre")
	require.True(t, ok)
	require.Equal(t, []byte{0x00, 0x34}, data[6:8])
}

func TestCompileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session := NewSession()
	err := session.CompileFiles(ctx, []*File{{Name: "x.ts", Source: "enum X { A }"}})
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, session.CompileFile(ctx, &File{Name: "x.ts", Source: "enum X { A }"}), context.Canceled)
	require.Equal(t, 0, session.Artifacts().Len())
}

func TestSessionID(t *testing.T) {
	a, b := NewSession(), NewSession()
	require.NotEqual(t, a.ID(), b.ID())
	require.Equal(t, 4, int(a.ID().Version()))
}
