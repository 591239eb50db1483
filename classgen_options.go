package classgen

import (
	"github.com/deepnoodle-ai/classgen/classfile"
	"github.com/deepnoodle-ai/classgen/codegen"
	"github.com/deepnoodle-ai/classgen/compiler"
	"github.com/deepnoodle-ai/classgen/parser"
	"github.com/deepnoodle-ai/classgen/syntax"
	"github.com/rs/zerolog"
)

// Option configures a compilation.
type Option func(*options)

type options struct {
	target    int
	logger    *zerolog.Logger
	keepGoing bool
	jobs      int
	encoder   codegen.ClassEncoder
	maxDepth  int
	rules     *syntax.Rules
}

func collectOptions(opts ...Option) *options {
	o := &options{target: classfile.DefaultTarget}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) sessionOpts() ([]compiler.Option, error) {
	encoder := o.encoder
	if encoder == nil {
		e, err := codegen.NewEncoder(o.target)
		if err != nil {
			return nil, err
		}
		encoder = e
	}
	opts := []compiler.Option{
		compiler.WithEncoder(encoder),
		compiler.WithKeepGoing(o.keepGoing),
		compiler.WithJobs(o.jobs),
	}
	if o.maxDepth > 0 {
		opts = append(opts, compiler.WithParserOptions(parser.WithMaxDepth(o.maxDepth)))
	}
	if o.rules != nil {
		opts = append(opts, compiler.WithValidators(syntax.NewRulesValidator(*o.rules)))
	}
	if o.logger != nil {
		opts = append(opts, compiler.WithLogger(*o.logger))
	}
	return opts, nil
}

// WithTarget sets the Java release the class files are produced for.
// Releases 8 through 21 are supported; the default is 17.
func WithTarget(release int) Option {
	return func(o *options) {
		o.target = release
	}
}

// WithLogger sets the logger used while compiling. By default nothing is
// logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithKeepGoing reports every failing declaration instead of stopping at the
// first one. The returned error is then a *multierror.Error.
func WithKeepGoing(keepGoing bool) Option {
	return func(o *options) {
		o.keepGoing = keepGoing
	}
}

// WithJobs bounds the number of sources compiled in parallel.
func WithJobs(jobs int) Option {
	return func(o *options) {
		o.jobs = jobs
	}
}

// WithEncoder replaces the class encoder. WithTarget is ignored when an
// encoder is supplied.
func WithEncoder(encoder codegen.ClassEncoder) Option {
	return func(o *options) {
		o.encoder = encoder
	}
}

// WithMaxDepth limits how deeply namespace blocks may nest.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithRules rejects sources that break the given syntax rules, for example
// syntax.Strict.
func WithRules(rules syntax.Rules) Option {
	return func(o *options) {
		o.rules = &rules
	}
}
