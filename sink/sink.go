// Package sink publishes generated class files to a destination: a local
// directory tree, an S3 bucket, or a Postgres table.
package sink

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/deepnoodle-ai/classgen/compiler"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
)

// Sink receives class files keyed by qualified name ("a.b.Color").
type Sink interface {
	Write(ctx context.Context, name string, data []byte) error
	Close() error
}

// Option configures a sink opened by Open.
type Option func(*options)

type options struct {
	runID uuid.UUID
}

// WithRunID tags stored artifacts with the run ID of the compilation that
// produced them. Only the Postgres sink records it.
func WithRunID(id uuid.UUID) Option {
	return func(o *options) {
		o.runID = id
	}
}

func collectOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Open returns the sink for a target:
//
//	out/classes, file:///tmp/out   a directory tree
//	s3://bucket/prefix             objects in an S3 bucket
//	s3://key:secret@bucket/prefix?region=eu-west-1
//	postgres://user@host/db        rows in the classgen_artifacts table
func Open(ctx context.Context, target string, opts ...Option) (Sink, error) {
	if target == "" {
		return nil, fmt.Errorf("sink: empty target")
	}
	if !strings.Contains(target, "://") {
		return NewDir(target)
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("sink: invalid target %q: %w", target, err)
	}
	switch u.Scheme {
	case "file":
		return NewDir(u.Host + u.Path)
	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("sink: s3 target %q has no bucket", target)
		}
		return OpenS3(ctx, u.Host, strings.TrimPrefix(u.Path, "/"), s3Config(u))
	case "postgres", "postgresql":
		return OpenPostgres(ctx, target, opts...)
	default:
		return nil, fmt.Errorf("sink: unsupported target scheme %q", u.Scheme)
	}
}

// Publish writes every artifact of the table to s in name order and returns
// the number written. It stops at the first failure.
func Publish(ctx context.Context, table *compiler.ArtifactTable, s Sink) (int, error) {
	log := zerolog.Ctx(ctx)
	count := 0
	err := table.Each(func(a compiler.Artifact) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Write(ctx, a.Name, a.Data); err != nil {
			return fmt.Errorf("sink: writing %s: %w", a.Name, err)
		}
		log.Debug().Str("class", a.Name).Int("bytes", len(a.Data)).Msg("published class")
		count++
		return nil
	})
	return count, err
}

func s3Config(u *url.URL) S3Config {
	cfg := S3Config{Region: u.Query().Get("region")}
	if u.User != nil {
		cfg.AccessKeyID = u.User.Username()
		cfg.SecretAccessKey, _ = u.User.Password()
	}
	return cfg
}

// classPath is the relative, slash separated path of a class file.
func classPath(name string) string {
	return compiler.BinaryName(name) + ".class"
}
