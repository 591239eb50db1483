package compiler

import (
	"context"
	"runtime"

	"github.com/deepnoodle-ai/classgen/ast"
	"github.com/deepnoodle-ai/classgen/codegen"
	"github.com/deepnoodle-ai/classgen/parser"
	"github.com/deepnoodle-ai/classgen/syntax"
	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// File is one source file to compile. Program may be nil, in which case
// Source is parsed first.
type File struct {
	Name    string
	Source  string
	Program *ast.Program
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithEncoder sets the class encoder. The default targets Java 17.
func WithEncoder(encoder codegen.ClassEncoder) Option {
	return func(s *Session) {
		s.encoder = encoder
	}
}

// WithKeepGoing makes compilation continue past failing declarations and
// files, returning every diagnostic at the end as a *multierror.Error.
func WithKeepGoing(keepGoing bool) Option {
	return func(s *Session) {
		s.keepGoing = keepGoing
	}
}

// WithJobs bounds the number of files compiled in parallel by
// CompileFiles. Values below one mean GOMAXPROCS.
func WithJobs(jobs int) Option {
	return func(s *Session) {
		s.jobs = jobs
	}
}

// WithParserOptions sets the options used to parse files that arrive
// without a Program.
func WithParserOptions(opts ...parser.Option) Option {
	return func(s *Session) {
		s.parserOpts = append(s.parserOpts, opts...)
	}
}

// WithValidators adds syntax checks run on every file before generation.
// A file with violations generates nothing.
func WithValidators(validators ...syntax.Validator) Option {
	return func(s *Session) {
		s.validators = append(s.validators, validators...)
	}
}

// Session is one compilation run. It owns the artifact table and enum
// registry that every compiled file contributes to.
type Session struct {
	id         uuid.UUID
	artifacts  *ArtifactTable
	registry   *Registry
	encoder    codegen.ClassEncoder
	logger     zerolog.Logger
	keepGoing  bool
	jobs       int
	parserOpts []parser.Option
	validators []syntax.Validator
}

// NewSession returns a session with an empty artifact table.
func NewSession(opts ...Option) *Session {
	s := &Session{
		id:        uuid.Must(uuid.NewV4()),
		artifacts: NewArtifactTable(),
		registry:  NewRegistry(),
		encoder:   &codegen.Encoder{},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.jobs < 1 {
		s.jobs = runtime.GOMAXPROCS(0)
	}
	s.logger = s.logger.With().Str("run", s.id.String()).Logger()
	return s
}

// ID returns the run identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Artifacts returns the session's artifact table.
func (s *Session) Artifacts() *ArtifactTable {
	return s.artifacts
}

// Registry returns the enums generated so far.
func (s *Session) Registry() *Registry {
	return s.registry
}

// CompileFile generates every declaration of a file, in source order,
// directly into the session's table. Artifacts generated before a failure
// remain in the table.
func (s *Session) CompileFile(ctx context.Context, f *File) error {
	return s.compile(ctx, f, s.artifacts, s.registry)
}

// CompileFiles compiles files in parallel, each into a private table, then
// merges the private tables into the session's table in input order. When
// two files declare the same class the earlier file wins and the later one
// receives a NameCollisionError. Without keep-going, the first error in
// input order is returned and later files are not merged.
func (s *Session) CompileFiles(ctx context.Context, files []*File) error {
	type result struct {
		artifacts *ArtifactTable
		registry  *Registry
		err       error
	}
	results := make([]result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)
	for i, f := range files {
		g.Go(func() error {
			r := result{artifacts: NewArtifactTable(), registry: NewRegistry()}
			r.err = s.compile(gctx, f, r.artifacts, r.registry)
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	var all *multierror.Error
	for i, r := range results {
		mergeErr := s.artifacts.Merge(r.artifacts)
		s.registry.Merge(r.registry)
		for _, err := range []error{r.err, mergeErr} {
			if err == nil {
				continue
			}
			if !s.keepGoing {
				return err
			}
			all = multierror.Append(all, err)
		}
		s.logger.Debug().Str("file", files[i].Name).Int("classes", r.artifacts.Len()).Msg("merged file")
	}
	s.logger.Info().Int("files", len(files)).Int("classes", s.artifacts.Len()).Msg("compilation finished")
	return all.ErrorOrNil()
}

func (s *Session) compile(ctx context.Context, f *File, artifacts *ArtifactTable, registry *Registry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	program := f.Program
	if program == nil {
		var err error
		opts := append([]parser.Option{parser.WithFilename(f.Name)}, s.parserOpts...)
		program, err = parser.Parse(ctx, f.Source, opts...)
		if err != nil {
			return err
		}
	}
	if err := syntax.Check(program, f.Source, s.validators...); err != nil {
		return err
	}
	u := NewUnit(f.Name, f.Source, artifacts, s.encoder)
	u.Registry = registry
	u.Logger = s.logger.With().Str("file", f.Name).Logger()

	var diagnostics *multierror.Error
	var walk func(stmts []ast.Stmt) error
	walk = func(stmts []ast.Stmt) error {
		for _, stmt := range stmts {
			if err := ctx.Err(); err != nil {
				return err
			}
			switch st := stmt.(type) {
			case *ast.NamespaceDecl:
				for _, seg := range st.Names {
					u.Namespace.Push(seg.Name)
				}
				err := walk(st.Body)
				for range st.Names {
					u.Namespace.Pop()
				}
				if err != nil {
					return err
				}
			case ast.Decl:
				if err := Generate(u, st); err != nil {
					if !s.keepGoing {
						return err
					}
					u.Logger.Debug().Err(err).Msg("declaration failed")
					diagnostics = multierror.Append(diagnostics, err)
				}
			}
		}
		return nil
	}
	if err := walk(program.Stmts); err != nil {
		if diagnostics != nil {
			return multierror.Append(diagnostics, err)
		}
		return err
	}
	return diagnostics.ErrorOrNil()
}
