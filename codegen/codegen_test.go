package codegen

import (
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/classgen/classfile"
	"github.com/deepnoodle-ai/classgen/dis"
	"github.com/deepnoodle-ai/classgen/errors"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, name, src string) (*classfile.ClassFile, Emitted) {
	t.Helper()
	outcome, err := (&Encoder{}).EncodeEnum(name, parseEnum(t, src))
	require.NoError(t, err)
	emitted, ok := outcome.(Emitted)
	require.True(t, ok, "expected Emitted, got %T", outcome)
	cf, err := classfile.Parse(emitted.Class)
	require.NoError(t, err)
	return cf, emitted
}

func opcodes(t *testing.T, cf *classfile.ClassFile, name string) []string {
	t.Helper()
	m, ok := cf.Method(name, "")
	require.True(t, ok, "method %s", name)
	instructions, err := dis.Disassemble(m.Code.Code, cf)
	require.NoError(t, err)
	var out []string
	for _, instr := range instructions {
		line := instr.Name
		if instr.Info != "" {
			line += " " + instr.Info
		}
		out = append(out, line)
	}
	return out
}

func TestNumericEnumClass(t *testing.T) {
	cf, emitted := encode(t, "a/b/Color", "enum Color { Red, Green = 5, Blue }")

	require.Equal(t, classfile.Java17, cf.Major)
	require.Equal(t, "a/b/Color", cf.Name)
	require.Equal(t, "java/lang/Enum", cf.SuperName)
	require.Equal(t, classfile.AccPublic|classfile.AccFinal|classfile.AccSuper|classfile.AccEnum, cf.Access)
	require.Equal(t, "color.ts", cf.SourceFile)
	require.Equal(t, Numeric, emitted.Enum.Kind)

	var fields []string
	for _, f := range cf.Fields {
		fields = append(fields, fmt.Sprintf("%04x %s %s", f.Access, f.Name, f.Descriptor))
	}
	require.Equal(t, []string{
		"4019 RED La/b/Color;",
		"4019 GREEN La/b/Color;",
		"4019 BLUE La/b/Color;",
		"0012 value I",
		"101a $VALUES [La/b/Color;",
	}, fields)

	var methods []string
	for _, m := range cf.Methods {
		methods = append(methods, fmt.Sprintf("%04x %s%s", m.Access, m.Name, m.Descriptor))
	}
	require.Equal(t, []string{
		"0002 <init>(Ljava/lang/String;II)V",
		"0008 <clinit>()V",
		"0009 values()[La/b/Color;",
		"0009 valueOf(Ljava/lang/String;)La/b/Color;",
		"0001 getValue()I",
		"0009 fromValue(I)La/b/Color;",
	}, methods)
}

func TestStaticInitializer(t *testing.T) {
	cf, _ := encode(t, "Color", "enum Color { Red, Green = 5, Blue = 100000 }")
	require.Equal(t, []string{
		"new Color", "dup", `ldc "RED"`, "iconst_0", "iconst_0",
		"invokespecial Color.<init>:(Ljava/lang/String;II)V", "putstatic Color.RED:LColor;",
		"new Color", "dup", `ldc "GREEN"`, "iconst_1", "iconst_5",
		"invokespecial Color.<init>:(Ljava/lang/String;II)V", "putstatic Color.GREEN:LColor;",
		"new Color", "dup", `ldc "BLUE"`, "iconst_2", "ldc 100000",
		"invokespecial Color.<init>:(Ljava/lang/String;II)V", "putstatic Color.BLUE:LColor;",
		"iconst_3", "anewarray Color",
		"dup", "iconst_0", "getstatic Color.RED:LColor;", "aastore",
		"dup", "iconst_1", "getstatic Color.GREEN:LColor;", "aastore",
		"dup", "iconst_2", "getstatic Color.BLUE:LColor;", "aastore",
		"putstatic Color.$VALUES:[LColor;",
		"return",
	}, opcodes(t, cf, "<clinit>"))

	m, _ := cf.Method("<clinit>", "")
	require.Equal(t, uint16(5), m.Code.MaxStack)
	require.Equal(t, uint16(0), m.Code.MaxLocals)
}

func TestAccessorMethods(t *testing.T) {
	cf, _ := encode(t, "Color", "enum Color { Red }")
	require.Equal(t, []string{
		"aload_0", "aload_1", "iload_2",
		"invokespecial java/lang/Enum.<init>:(Ljava/lang/String;I)V",
		"aload_0", "iload_3", "putfield Color.value:I", "return",
	}, opcodes(t, cf, "<init>"))
	require.Equal(t, []string{
		"getstatic Color.$VALUES:[LColor;",
		"invokevirtual [LColor;.clone:()Ljava/lang/Object;",
		"checkcast [LColor;",
		"areturn",
	}, opcodes(t, cf, "values"))
	require.Equal(t, []string{
		"ldc Color",
		"aload_0",
		"invokestatic java/lang/Enum.valueOf:(Ljava/lang/Class;Ljava/lang/String;)Ljava/lang/Enum;",
		"checkcast Color",
		"areturn",
	}, opcodes(t, cf, "valueOf"))
	require.Equal(t, []string{"aload_0", "getfield Color.value:I", "ireturn"}, opcodes(t, cf, "getValue"))
}

func TestFromValueNumeric(t *testing.T) {
	cf, _ := encode(t, "Color", "enum Color { Red }")
	require.Equal(t, []string{
		"invokestatic Color.values:()[LColor;", "astore_1",
		"aload_1", "arraylength", "istore_2",
		"iconst_0", "istore_3",
		"iload_3", "iload_2", "if_icmpge",
		"aload_1", "iload_3", "aaload", "astore",
		"aload", "invokevirtual Color.getValue:()I",
		"iload_0", "if_icmpne",
		"aload", "areturn",
		"iinc", "goto",
		"new java/lang/IllegalArgumentException", "dup",
		"new java/lang/StringBuilder", "dup",
		"invokespecial java/lang/StringBuilder.<init>:()V",
		`ldc "Invalid value: "`,
		"invokevirtual java/lang/StringBuilder.append:(Ljava/lang/String;)Ljava/lang/StringBuilder;",
		"iload_0",
		"invokevirtual java/lang/StringBuilder.append:(I)Ljava/lang/StringBuilder;",
		"invokevirtual java/lang/StringBuilder.toString:()Ljava/lang/String;",
		"invokespecial java/lang/IllegalArgumentException.<init>:(Ljava/lang/String;)V",
		"athrow",
	}, opcodes(t, cf, "fromValue"))

	m, _ := cf.Method("fromValue", "(I)LColor;")
	require.Equal(t, uint16(4), m.Code.MaxStack)
	require.Equal(t, uint16(5), m.Code.MaxLocals)

	instructions, err := dis.Disassemble(m.Code.Code, cf)
	require.NoError(t, err)
	offsets := map[string][]int{}
	for _, instr := range instructions {
		offsets[instr.Name] = append(offsets[instr.Name], instr.Offset)
		if instr.Name == "goto" || instr.Name == "if_icmpge" || instr.Name == "if_icmpne" {
			offsets[instr.Name+" target"] = append(offsets[instr.Name+" target"], instr.Operands[0])
		}
	}
	loop := offsets["iload_3"][0]
	next := offsets["iinc"][0]
	end := offsets["new"][0]
	require.Equal(t, loop, offsets["goto target"][0])
	require.Equal(t, next, offsets["if_icmpne target"][0])
	require.Equal(t, end, offsets["if_icmpge target"][0])

	require.Len(t, m.Code.Frames, 3)
	arrayType := func(v classfile.VerificationType) string { return cf.ClassName(v.Index) }
	for _, f := range m.Code.Frames {
		require.Equal(t, byte(255), f.Type)
		require.Empty(t, f.Stack)
		require.Equal(t, classfile.ItemInteger, f.Locals[0].Tag)
		require.Equal(t, "[LColor;", arrayType(f.Locals[1]))
	}
	require.Equal(t, uint16(loop), m.Code.Frames[0].OffsetDelta)
	require.Equal(t, uint16(next-loop-1), m.Code.Frames[1].OffsetDelta)
	require.Equal(t, uint16(end-next-1), m.Code.Frames[2].OffsetDelta)
	require.Len(t, m.Code.Frames[0].Locals, 4)
	require.Len(t, m.Code.Frames[1].Locals, 5)
	require.Equal(t, "Color", arrayType(m.Code.Frames[1].Locals[4]))
	require.Len(t, m.Code.Frames[2].Locals, 4)
}

func TestStringEnumClass(t *testing.T) {
	cf, emitted := encode(t, "pkg/Direction", `enum Direction { Up = "UP", Down = "DOWN" }`)
	require.Equal(t, String, emitted.Enum.Kind)

	field, ok := cf.Field("value")
	require.True(t, ok)
	require.Equal(t, "Ljava/lang/String;", field.Descriptor)

	_, ok = cf.Method("<init>", "(Ljava/lang/String;ILjava/lang/String;)V")
	require.True(t, ok)
	_, ok = cf.Method("getValue", "()Ljava/lang/String;")
	require.True(t, ok)
	m, ok := cf.Method("fromValue", "(Ljava/lang/String;)Lpkg/Direction;")
	require.True(t, ok)
	require.Equal(t, "java/lang/String", cf.ClassName(m.Code.Frames[0].Locals[0].Index))

	clinit := strings.Join(opcodes(t, cf, "<clinit>"), "\n")
	require.Contains(t, clinit, "ldc \"UP\"\ninvokespecial pkg/Direction.<init>:(Ljava/lang/String;ILjava/lang/String;)V")

	fromValue := opcodes(t, cf, "fromValue")
	require.Contains(t, fromValue, "invokevirtual java/lang/String.equals:(Ljava/lang/Object;)Z")
	require.Contains(t, fromValue, "ifeq")
	require.Contains(t, fromValue, "invokevirtual java/lang/StringBuilder.append:(Ljava/lang/String;)Ljava/lang/StringBuilder;")
	require.NotContains(t, fromValue, "invokevirtual java/lang/StringBuilder.append:(I)Ljava/lang/StringBuilder;")
}

func TestAmbientEnum(t *testing.T) {
	for _, src := range []string{
		"declare enum Color { Red }",
		"declare const enum Color { Red }",
		"declare enum Color { }",
		`declare enum Color { A = 1, B = "b" }`,
	} {
		outcome, err := (&Encoder{}).EncodeEnum("Color", parseEnum(t, src))
		require.NoError(t, err, src)
		require.Equal(t, Ambient{}, outcome, src)
	}
}

func TestEncoderTarget(t *testing.T) {
	require.Equal(t, classfile.DefaultTarget, (&Encoder{}).Target())

	enc, err := NewEncoder(8)
	require.NoError(t, err)
	require.Equal(t, 8, enc.Target())
	outcome, err := enc.EncodeEnum("Color", parseEnum(t, "enum Color { Red }"))
	require.NoError(t, err)
	data := outcome.(Emitted).Class
	require.Equal(t, classfile.Java8, binary.BigEndian.Uint16(data[6:]))

	_, err = NewEncoder(22)
	require.Error(t, err)
}

func TestDeterministicOutput(t *testing.T) {
	src := `enum Color { Red = 1 << 0, Green = 1 << 1, Blue = Red | Green }`
	_, first := encode(t, "x/Color", src)
	_, second := encode(t, "x/Color", src)
	require.Equal(t, first.Class, second.Class)
}

func TestEncodingErrors(t *testing.T) {
	_, err := (&Encoder{}).EncodeEnum("E", parseEnum(t, "enum E { }"))
	var encErr *errors.EncodingError
	require.True(t, errors.As(err, &encErr))
	require.Equal(t, "empty enums are not supported", encErr.Message)
}

func TestCodeTooLarge(t *testing.T) {
	var b strings.Builder
	b.WriteString("enum Big {")
	for i := 0; i < 4000; i++ {
		fmt.Fprintf(&b, " M%d,", i)
	}
	b.WriteString(" }")

	outcome, err := (&Encoder{}).EncodeEnum("Big", parseEnum(t, b.String()))
	require.Nil(t, outcome)
	require.ErrorIs(t, err, classfile.ErrCodeTooLarge)
	var encErr *errors.EncodingError
	require.True(t, errors.As(err, &encErr))
	require.Equal(t, "enum Big exceeds a class file limit", encErr.Message)
}
