// Package codegen encodes enum declarations as JVM class files.
//
// Each enum becomes a final class extending java.lang.Enum with one public
// static final constant per member, a private value field, and the members a
// Java enum compiler would generate:
//
//	public static Color[] values()
//	public static Color valueOf(String name)
//	public int getValue()
//	public static Color fromValue(int value)
//
// String enums use String in place of int for the value field, getValue and
// fromValue. fromValue throws IllegalArgumentException when no member has the
// given value.
//
// Ambient declarations ("declare enum", or any enum inside a declare block)
// exist only for type checking. Encoding one yields [Ambient] rather than
// bytes.
package codegen

import (
	"path"
	"path/filepath"

	"github.com/deepnoodle-ai/classgen/ast"
	"github.com/deepnoodle-ai/classgen/classfile"
	"github.com/deepnoodle-ai/classgen/errors"
)

// Outcome is the result of encoding a declaration: either [Emitted] or
// [Ambient].
type Outcome interface {
	outcome()
}

// Emitted carries the class file produced for a declaration together with
// the member analysis it was built from.
type Emitted struct {
	Class []byte
	Enum  *Enum
}

// Ambient reports that the declaration produces no class file.
type Ambient struct{}

func (Emitted) outcome() {}
func (Ambient) outcome() {}

// ClassEncoder turns an enum declaration into class file bytes.
type ClassEncoder interface {
	EncodeEnum(binaryName string, decl *ast.EnumDecl) (Outcome, error)
}

// Encoder is the default ClassEncoder. The zero value targets
// [classfile.DefaultTarget].
type Encoder struct {
	major uint16
}

// NewEncoder returns an encoder producing class files for the given Java
// release.
func NewEncoder(target int) (*Encoder, error) {
	major, err := classfile.MajorVersion(target)
	if err != nil {
		return nil, err
	}
	return &Encoder{major: major}, nil
}

// Target returns the Java release the encoder produces class files for.
func (e *Encoder) Target() int {
	return classfile.Release(e.majorVersion())
}

func (e *Encoder) majorVersion() uint16 {
	if e == nil || e.major == 0 {
		return classfile.Java17
	}
	return e.major
}

// EncodeEnum encodes decl as the class binaryName, for example "a/b/Color".
// Errors are *errors.EncodingError values located at the most specific node
// available.
func (e *Encoder) EncodeEnum(binaryName string, decl *ast.EnumDecl) (Outcome, error) {
	if decl.Declare {
		return Ambient{}, nil
	}
	enum, err := Analyze(decl)
	if err != nil {
		return nil, err
	}
	w := classfile.NewClassWriter(e.majorVersion(),
		classfile.AccPublic|classfile.AccFinal|classfile.AccSuper|classfile.AccEnum,
		binaryName, javaLangEnum)
	l := newLayout(w, binaryName, enum)
	if err := l.build(); err != nil {
		return nil, capacityError(decl, err)
	}
	if file := decl.Pos().File; file != "" {
		w.SetSourceFile(path.Base(filepath.ToSlash(file)))
	}
	data, err := w.Bytes()
	if err != nil {
		return nil, capacityError(decl, err)
	}
	return Emitted{Class: data, Enum: enum}, nil
}

func capacityError(decl *ast.EnumDecl, err error) error {
	return &errors.EncodingError{
		Node:    decl.Name,
		Message: "enum " + decl.Name.Name + " exceeds a class file limit",
		Cause:   err,
	}
}
