package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// Dir writes class files below a root directory, one file per class at the
// path a JVM class loader expects: a.b.Color is stored as a/b/Color.class.
type Dir struct {
	root string
}

// NewDir returns a sink rooted at root. A leading "~" is expanded to the
// user's home directory.
func NewDir(root string) (*Dir, error) {
	expanded, err := homedir.Expand(root)
	if err != nil {
		return nil, fmt.Errorf("sink: %w", err)
	}
	return &Dir{root: expanded}, nil
}

// Root returns the directory classes are written below.
func (d *Dir) Root() string {
	return d.root
}

// Path returns the file a class is written to.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, filepath.FromSlash(classPath(name)))
}

func (d *Dir) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := d.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (d *Dir) Close() error {
	return nil
}
