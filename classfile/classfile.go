// Package classfile writes and reads JVM class files.
//
// The writer side is a small assembler: a [ConstantPool] that deduplicates
// entries, a [Code] builder with labels and stack map frames, and a
// [ClassWriter] that lays out fields, methods and attributes. The reader side,
// [Parse], decodes the structures the writer produces so that generated
// classes can be inspected and verified in tests.
//
// Capacity limits of the format are reported as errors rather than producing
// truncated output: [ErrConstantPoolOverflow], [ErrCodeTooLarge],
// [ErrTooManyFields] and [ErrTooManyMethods].
package classfile

import (
	"errors"
	"fmt"
)

// Magic is the four byte header of every class file.
const Magic uint32 = 0xCAFEBABE

// Access flags for classes, fields and methods.
const (
	AccPublic    uint16 = 0x0001
	AccPrivate   uint16 = 0x0002
	AccProtected uint16 = 0x0004
	AccStatic    uint16 = 0x0008
	AccFinal     uint16 = 0x0010
	AccSuper     uint16 = 0x0020
	AccSynthetic uint16 = 0x1000
	AccEnum      uint16 = 0x4000
)

// Constant pool tags.
const (
	TagUtf8               byte = 1
	TagInteger            byte = 3
	TagFloat              byte = 4
	TagLong               byte = 5
	TagDouble             byte = 6
	TagClass              byte = 7
	TagString             byte = 8
	TagFieldref           byte = 9
	TagMethodref          byte = 10
	TagInterfaceMethodref byte = 11
	TagNameAndType        byte = 12
)

// Format limits.
const (
	MaxPoolIndex  = 65534
	MaxCodeLength = 65535
	MaxMembers    = 65535
	MaxUtf8Length = 65535
)

var (
	ErrConstantPoolOverflow = errors.New("constant pool overflow: more than 65535 entries")
	ErrCodeTooLarge         = errors.New("method code too large: more than 65535 bytes")
	ErrTooManyFields        = errors.New("too many fields: more than 65535")
	ErrTooManyMethods       = errors.New("too many methods: more than 65535")
	ErrStringTooLong        = errors.New("string constant too long: more than 65535 bytes")
	ErrBranchTooFar         = errors.New("branch offset does not fit in 16 bits")
	ErrUnboundLabel         = errors.New("branch to unbound label")
)

// Major versions by Java release.
const (
	Java8  uint16 = 52
	Java11 uint16 = 55
	Java17 uint16 = 61
	Java21 uint16 = 65
)

// DefaultTarget is the Java release targeted when none is configured.
const DefaultTarget = 17

// MajorVersion returns the class file major version for a Java release.
// Releases 8 through 21 are supported; every one of them requires stack
// map frames, which the Code builder always emits.
func MajorVersion(target int) (uint16, error) {
	if target < 8 || target > 21 {
		return 0, fmt.Errorf("unsupported java target %d (supported: 8 to 21)", target)
	}
	return uint16(44 + target), nil
}

// Release returns the Java release for a major version, or 0 if unknown.
func Release(major uint16) int {
	if major < 49 {
		return 0
	}
	return int(major) - 44
}

var accessNames = []struct {
	flag uint16
	name string
}{
	{AccPublic, "public"},
	{AccPrivate, "private"},
	{AccProtected, "protected"},
	{AccStatic, "static"},
	{AccFinal, "final"},
	{AccSynthetic, "synthetic"},
	{AccEnum, "enum"},
}

// AccessString renders access flags as Java modifiers, for example
// "public static final enum". AccSuper is omitted.
func AccessString(access uint16) string {
	var b []byte
	for _, a := range accessNames {
		if access&a.flag == 0 {
			continue
		}
		if len(b) > 0 {
			b = append(b, ' ')
		}
		b = append(b, a.name...)
	}
	return string(b)
}
