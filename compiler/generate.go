package compiler

import (
	"fmt"

	"github.com/deepnoodle-ai/classgen/ast"
	"github.com/deepnoodle-ai/classgen/codegen"
	"github.com/deepnoodle-ai/classgen/errors"
	"github.com/rs/zerolog"
)

// Unit is the state lent to Generate for one source file. The namespace
// context belongs to the file; the artifact table, registry and encoder are
// usually shared by every file of a session.
type Unit struct {
	Filename  string
	Source    string
	Namespace *NamespaceContext
	Artifacts *ArtifactTable
	Registry  *Registry // optional
	Encoder   codegen.ClassEncoder
	Logger    zerolog.Logger
}

// NewUnit returns a unit for one file with an empty namespace context.
func NewUnit(filename, source string, artifacts *ArtifactTable, encoder codegen.ClassEncoder) *Unit {
	return &Unit{
		Filename:  filename,
		Source:    source,
		Namespace: &NamespaceContext{},
		Artifacts: artifacts,
		Encoder:   encoder,
		Logger:    zerolog.Nop(),
	}
}

func (u *Unit) location(node ast.Node) errors.SourceLocation {
	return errors.LocationOf(node, u.Filename, u.Source)
}

// Generate produces the artifact for one declaration in the unit's current
// namespace. Every declaration kind is handled here; a kind without a
// generator is reported as an error rather than ignored.
func Generate(u *Unit, decl ast.Decl) error {
	switch d := decl.(type) {
	case *ast.EnumDecl:
		return generateEnum(u, d)
	default:
		return &errors.UnsupportedDeclarationError{
			Location: u.location(decl),
			Kind:     fmt.Sprintf("%T", decl),
		}
	}
}

// generateEnum encodes an enum and stores it under its qualified name.
// Ambient enums succeed without touching the table. On any failure the
// table is left as it was.
func generateEnum(u *Unit, decl *ast.EnumDecl) error {
	name := QualifiedName(u.Namespace.CurrentPackage(), decl.Name.Name)
	binaryName := BinaryName(name)
	origin := u.location(decl.Name)
	log := u.Logger.With().Str("class", name).Logger()

	if !decl.Declare {
		if prev, ok := u.Artifacts.Origin(name); ok {
			return &errors.NameCollisionError{Name: name, Location: origin, Previous: prev}
		}
	}

	outcome, err := u.Encoder.EncodeEnum(binaryName, decl)
	if err != nil {
		return u.generationError(decl, name, err)
	}
	switch o := outcome.(type) {
	case codegen.Ambient:
		log.Debug().Msg("ambient enum, no class generated")
		return nil
	case codegen.Emitted:
		if err := u.Artifacts.Put(name, o.Class, origin); err != nil {
			return err
		}
		if u.Registry != nil && o.Enum != nil {
			u.Registry.Register(&EnumInfo{
				Name:       name,
				BinaryName: binaryName,
				Kind:       o.Enum.Kind,
				Members:    o.Enum.Members,
			})
		}
		log.Debug().Int("bytes", len(o.Class)).Int("members", len(decl.Members)).Msg("generated enum class")
		return nil
	default:
		return u.generationError(decl, name, fmt.Errorf("encoder returned unexpected outcome %T", outcome))
	}
}

func (u *Unit) generationError(decl *ast.EnumDecl, name string, cause error) error {
	return &errors.GenerationError{
		Source:   u.Source,
		Filename: u.Filename,
		Node:     decl,
		Message:  "failed to generate bytecode for enum: " + name,
		Cause:    cause,
	}
}
