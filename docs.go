package classgen

import (
	"encoding/json"
	"strings"

	"github.com/deepnoodle-ai/classgen/classfile"
	"github.com/deepnoodle-ai/classgen/errors"
)

// DocsOption configures documentation retrieval.
type DocsOption func(*docsOptions)

type docsOptions struct {
	category string
	topic    string
	all      bool
}

// DocsCategory filters documentation to a category: "syntax", "layout",
// "errors" or "targets".
func DocsCategory(cat string) DocsOption {
	return func(o *docsOptions) {
		o.category = cat
	}
}

// DocsTopic retrieves documentation for one topic: an error code such as
// "E2012" or a generated member such as "fromValue".
func DocsTopic(topic string) DocsOption {
	return func(o *docsOptions) {
		o.topic = topic
	}
}

// DocsAll returns the complete documentation.
func DocsAll() DocsOption {
	return func(o *docsOptions) {
		o.all = true
	}
}

// Documentation provides structured access to the classgen reference.
type Documentation struct {
	data any
}

// JSON returns the documentation as indented JSON.
func (d *Documentation) JSON() string {
	b, _ := json.MarshalIndent(d.data, "", "  ")
	return string(b)
}

// Data returns the raw documentation data.
func (d *Documentation) Data() any {
	return d.data
}

// Version is the current classgen version.
const Version = "0.3.0"

type docsInfo struct {
	Version     string `json:"version"`
	Description string `json:"description"`
	Pipeline    string `json:"pipeline"`
}

type docsSyntaxItem struct {
	Syntax string `json:"syntax"`
	Notes  string `json:"notes"`
}

type docsMember struct {
	Name      string `json:"name"`
	Signature string `json:"signature"`
	Doc       string `json:"doc"`
}

type docsErrorCode struct {
	Code        string `json:"code"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Example     string `json:"example,omitempty"`
	Fix         string `json:"fix,omitempty"`
}

type docsTargets struct {
	Default   int   `json:"default"`
	Supported []int `json:"supported"`
}

type docsQuickReference struct {
	Classgen docsInfo          `json:"classgen"`
	Syntax   []docsSyntaxItem  `json:"syntax"`
	Topics   map[string]string `json:"topics"`
}

type docsFullDocumentation struct {
	Classgen docsInfo         `json:"classgen"`
	Syntax   []docsSyntaxItem `json:"syntax"`
	Layout   []docsMember     `json:"layout"`
	Errors   []docsErrorCode  `json:"errors"`
	Targets  docsTargets      `json:"targets"`
}

// Docs returns structured documentation about the accepted declarations,
// the generated class layout and the diagnostics.
//
//	fmt.Println(classgen.Docs(classgen.DocsTopic("E2012")).JSON())
func Docs(opts ...DocsOption) *Documentation {
	o := &docsOptions{}
	for _, opt := range opts {
		opt(o)
	}
	switch {
	case o.all:
		return &Documentation{data: buildFullDocumentation()}
	case o.category != "":
		return &Documentation{data: buildCategoryDocs(o.category)}
	case o.topic != "":
		return &Documentation{data: buildTopicDocs(o.topic)}
	default:
		return &Documentation{data: buildQuickReference()}
	}
}

func info() docsInfo {
	return docsInfo{
		Version:     Version,
		Description: "Compiles TypeScript enum declarations into JVM class files",
		Pipeline:    "source → lexer → parser → generator → class file → sink",
	}
}

func buildQuickReference() docsQuickReference {
	return docsQuickReference{
		Classgen: info(),
		Syntax:   docsSyntax,
		Topics: map[string]string{
			"syntax":  "Accepted declarations",
			"layout":  "Members of a generated enum class",
			"errors":  "Diagnostic codes",
			"targets": "Supported Java releases",
		},
	}
}

func buildFullDocumentation() docsFullDocumentation {
	return docsFullDocumentation{
		Classgen: info(),
		Syntax:   docsSyntax,
		Layout:   docsLayout,
		Errors:   errorCodeDocs(),
		Targets:  targets(),
	}
}

func buildCategoryDocs(category string) any {
	switch category {
	case "syntax":
		return map[string]any{"category": "syntax", "items": docsSyntax}
	case "layout":
		return map[string]any{"category": "layout", "members": docsLayout}
	case "errors":
		return map[string]any{"category": "errors", "codes": errorCodeDocs()}
	case "targets":
		return map[string]any{"category": "targets", "targets": targets()}
	default:
		return map[string]any{"error": "unknown category: " + category}
	}
}

func buildTopicDocs(topic string) any {
	for _, code := range errorCodeDocs() {
		if strings.EqualFold(code.Code, topic) {
			return map[string]any{"type": "error", "error": code}
		}
	}
	for _, m := range docsLayout {
		if m.Name == topic {
			return map[string]any{"type": "member", "member": m}
		}
	}
	return map[string]any{"error": "unknown topic: " + topic}
}

func errorCodeDocs() []docsErrorCode {
	codes := errors.Codes()
	out := make([]docsErrorCode, 0, len(codes))
	for _, code := range codes {
		d := docsErrorCode{
			Code:        code.String(),
			Category:    code.Category(),
			Description: code.Description(),
		}
		if ex, ok := docsErrorExamples[code]; ok {
			d.Example, d.Fix = ex[0], ex[1]
		}
		out = append(out, d)
	}
	return out
}

func targets() docsTargets {
	var supported []int
	for release := 8; release <= 21; release++ {
		if _, err := classfile.MajorVersion(release); err == nil {
			supported = append(supported, release)
		}
	}
	return docsTargets{Default: classfile.DefaultTarget, Supported: supported}
}

var docsSyntax = []docsSyntaxItem{
	{Syntax: "enum Color { Red, Green }", Notes: "Numeric enum; members count up from 0"},
	{Syntax: "enum Flag { A = 1 << 0, B = A | 4 }", Notes: "Constant initializers may reference earlier members"},
	{Syntax: `enum Dir { Up = "UP" }`, Notes: "String enum; every member needs a value"},
	{Syntax: "const enum / export enum", Notes: "Compiled like a plain enum"},
	{Syntax: "declare enum E { }", Notes: "Ambient; no class is generated"},
	{Syntax: "namespace a.b { ... } / module m { ... }", Notes: "Sets the Java package of enclosed enums"},
	{Syntax: "declare namespace n { ... }", Notes: "Every enum inside is ambient"},
}

var docsLayout = []docsMember{
	{Name: "constants", Signature: "public static final Color RED", Doc: "One constant per member, named in upper case"},
	{Name: "value", Signature: "private final int value", Doc: "The member's value; String for string enums"},
	{Name: "values", Signature: "public static Color[] values()", Doc: "A copy of all constants in declaration order"},
	{Name: "valueOf", Signature: "public static Color valueOf(String name)", Doc: "The constant with the given Java name"},
	{Name: "getValue", Signature: "public int getValue()", Doc: "The member's value"},
	{Name: "fromValue", Signature: "public static Color fromValue(int value)", Doc: "The first constant with the given value; throws IllegalArgumentException otherwise"},
}

var docsErrorExamples = map[errors.ErrorCode][2]string{
	errors.E1001: {"enum Color { Red Green }", "enum Color { Red, Green }"},
	errors.E1007: {"namespace ui { enum Color { Red }", "namespace ui { enum Color { Red } }"},
	errors.E2011: {`enum Mixed { A = 1, B = "b" }`, `enum Mixed { A = "a", B = "b" }`},
	errors.E2012: {"enum Color { Red }\nenum Color { Blue }", "namespace alt { enum Color { Blue } }"},
}
