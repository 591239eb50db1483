package classgen

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/deepnoodle-ai/classgen/classfile"
	"github.com/deepnoodle-ai/classgen/errors"
	"github.com/deepnoodle-ai/classgen/syntax"
	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
)

func TestCompile(t *testing.T) {
	table, err := Compile(context.Background(), []Source{
		{Name: "ui.ts", Code: "namespace ui { export enum Color { Red, Green = 5, Blue } }"},
		{Name: "net.ts", Code: `declare enum Remote { A } enum Method { Get = "GET", Post = "POST" }`},
	})
	assert.Nil(t, err)
	assert.Equal(t, table.Names(), []string{"Method", "ui.Color"})

	data, ok := table.Get("ui.Color")
	assert.True(t, ok)
	cf, err := classfile.Parse(data)
	assert.Nil(t, err)
	assert.Equal(t, cf.Name, "ui/Color")
	assert.Equal(t, cf.Major, classfile.Java17)
}

func TestCompileString(t *testing.T) {
	table, err := CompileString(context.Background(), "one.ts", "enum One { A }", WithTarget(11))
	assert.Nil(t, err)
	data, ok := table.Get("One")
	assert.True(t, ok)
	assert.Equal(t, binary.BigEndian.Uint16(data[6:]), uint16(55))
}

func TestCompileInvalidTarget(t *testing.T) {
	table, err := CompileString(context.Background(), "one.ts", "enum One { A }", WithTarget(7))
	assert.True(t, table == nil)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "unsupported java target 7")
}

func TestBuildKeepGoing(t *testing.T) {
	result, err := Build(context.Background(), []Source{
		{Name: "a.ts", Code: "enum Color { Red }"},
		{Name: "b.ts", Code: "enum Color { Blue }\nenum Empty {}\nenum Size { S }"},
	}, WithKeepGoing(true), WithJobs(2))
	assert.NotNil(t, result)
	var merr *multierror.Error
	assert.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
	assert.Equal(t, result.Artifacts.Names(), []string{"Color", "Size"})
	assert.Equal(t, result.Enums.Names(), []string{"Color", "Size"})
	assert.NotEqual(t, result.RunID, uuid.Nil)
}

func TestBuildFailFast(t *testing.T) {
	result, err := Build(context.Background(), []Source{
		{Name: "a.ts", Code: "enum Color { Red }\nenum Color { Blue }"},
	})
	var collision *errors.NameCollisionError
	assert.True(t, errors.As(err, &collision))
	assert.Equal(t, result.Artifacts.Names(), []string{"Color"})
}

func TestMaxDepth(t *testing.T) {
	_, err := CompileString(context.Background(), "deep.ts",
		"namespace a { namespace b { namespace c { enum E { X } } } }", WithMaxDepth(2))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "maximum nesting depth exceeded")
}

func TestRules(t *testing.T) {
	_, err := CompileString(context.Background(), "strict.ts", "enum E { X = 1 << 2 }", WithRules(syntax.Strict))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "member X has a computed initializer at strict.ts:1:14")

	table, err := CompileString(context.Background(), "strict.ts", "enum E { X = 4 }", WithRules(syntax.Strict))
	assert.Nil(t, err)
	assert.Equal(t, table.Names(), []string{"E"})
}

func TestPublish(t *testing.T) {
	table, err := CompileString(context.Background(), "ui.ts", "namespace ui.widgets { enum Kind { Button } }")
	assert.Nil(t, err)

	root := t.TempDir()
	n, err := Publish(context.Background(), table, "file://"+root)
	assert.Nil(t, err)
	assert.Equal(t, n, 1)

	data, err := os.ReadFile(filepath.Join(root, "ui", "widgets", "Kind.class"))
	assert.Nil(t, err)
	original, _ := table.Get("ui.widgets.Kind")
	assert.Equal(t, data, original)

	_, err = Publish(context.Background(), table, "gopher://x")
	assert.NotNil(t, err)
}

func TestResultPublish(t *testing.T) {
	result, err := Build(context.Background(), []Source{{Name: "m.ts", Code: "enum Mode { On, Off }"}})
	assert.Nil(t, err)

	root := t.TempDir()
	n, err := result.Publish(context.Background(), root)
	assert.Nil(t, err)
	assert.Equal(t, n, 1)
	_, err = os.Stat(filepath.Join(root, "Mode.class"))
	assert.Nil(t, err)
}
