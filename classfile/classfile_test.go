package classfile

import (
	"encoding/binary"
	"testing"

	"github.com/deepnoodle-ai/classgen/op"
	"github.com/stretchr/testify/require"
)

func TestConstantPoolDeduplicates(t *testing.T) {
	pool := NewConstantPool()
	a := pool.Utf8("a")
	require.Equal(t, uint16(1), a)
	require.Equal(t, a, pool.Utf8("a"))

	s := pool.String("a")
	require.Equal(t, uint16(2), s)
	require.Equal(t, s, pool.String("a"))

	m1 := pool.Methodref("java/lang/Enum", "ordinal", "()I")
	m2 := pool.Methodref("java/lang/Enum", "ordinal", "()I")
	require.Equal(t, m1, m2)
	// Utf8 x3 (class name, method name, descriptor), Class, NameAndType, Methodref
	require.Equal(t, 2+6+1, pool.Count())
	require.NoError(t, pool.Err())
}

func TestConstantPoolOverflow(t *testing.T) {
	pool := NewConstantPool()
	for i := 0; i < MaxPoolIndex; i++ {
		require.NotZero(t, pool.Integer(int32(i)))
	}
	require.NoError(t, pool.Err())
	require.Equal(t, MaxPoolIndex+1, pool.Count())

	require.Zero(t, pool.Integer(-1))
	require.ErrorIs(t, pool.Err(), ErrConstantPoolOverflow)
	// Existing entries still resolve, new ones do not.
	require.Zero(t, pool.Utf8("new"))
}

func TestModifiedUTF8(t *testing.T) {
	tests := []struct {
		input    string
		expected []byte
	}{
		{"abc", []byte("abc")},
		{"\x00", []byte{0xC0, 0x80}},
		{"é", []byte{0xC3, 0xA9}},
		{"€", []byte{0xE2, 0x82, 0xAC}},
		{"😀", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			enc := encodeModifiedUTF8(tt.input)
			require.Equal(t, tt.expected, enc)
			require.Equal(t, tt.input, decodeModifiedUTF8(enc))
		})
	}
}

func TestPushInt(t *testing.T) {
	tests := []struct {
		value    int32
		expected []byte
	}{
		{-1, []byte{byte(op.IConstM1)}},
		{0, []byte{byte(op.IConst0)}},
		{5, []byte{byte(op.IConst5)}},
		{6, []byte{byte(op.BIPush), 6}},
		{-128, []byte{byte(op.BIPush), 0x80}},
		{127, []byte{byte(op.BIPush), 0x7f}},
		{128, []byte{byte(op.SIPush), 0x00, 0x80}},
		{-32768, []byte{byte(op.SIPush), 0x80, 0x00}},
		{40000, []byte{byte(op.Ldc), 1}},
	}
	for _, tt := range tests {
		code := newCode(NewConstantPool())
		code.PushInt(tt.value)
		require.Equal(t, tt.expected, code.code, "value %d", tt.value)
	}
}

func TestLocals(t *testing.T) {
	code := newCode(NewConstantPool())
	code.ALoad(0)
	code.ALoad(4)
	code.IStore(3)
	code.AStore(300)
	require.Equal(t, []byte{
		byte(op.ALoad0),
		byte(op.ALoad), 4,
		byte(op.IStore3),
		byte(op.Wide), byte(op.AStore), 0x01, 0x2c,
	}, code.code)
}

func buildLoopClass(t *testing.T) []byte {
	t.Helper()
	w := NewClassWriter(Java17, AccPublic|AccFinal|AccSuper, "demo/Loop", "java/lang/Object")
	w.AddField(AccPrivate|AccStatic, "count", "I")

	code := w.NewCode()
	loop, end := code.NewLabel(), code.NewLabel()
	code.PushInt(0)
	code.IStore(0)
	code.Mark(loop)
	code.Frame(loop, []VerificationType{IntegerType}, nil)
	code.ILoad(0)
	code.PushInt(10)
	code.Jump(op.IfICmpGe, end)
	code.IInc(0, 1)
	code.Jump(op.Goto, loop)
	code.Mark(end)
	code.Frame(end, []VerificationType{IntegerType}, nil)
	code.Emit(op.Return)
	code.SetMaxs(2, 1)
	require.NoError(t, w.AddMethod(AccPublic|AccStatic, "run", "()V", code))

	box := w.NewCode()
	box.ILoad(0)
	box.InvokeStatic("java/lang/Integer", "valueOf", "(I)Ljava/lang/Integer;")
	box.Emit(op.AReturn)
	box.SetMaxs(1, 1)
	require.NoError(t, w.AddMethod(AccPublic|AccStatic, "box", "(I)Ljava/lang/Integer;", box))

	w.SetSourceFile("Loop.ts")
	data, err := w.Bytes()
	require.NoError(t, err)
	return data
}

func TestWriteAndParse(t *testing.T) {
	data := buildLoopClass(t)
	require.Equal(t, Magic, binary.BigEndian.Uint32(data))

	cf, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, Java17, cf.Major)
	require.Equal(t, 17, Release(cf.Major))
	require.Equal(t, "demo/Loop", cf.Name)
	require.Equal(t, "java/lang/Object", cf.SuperName)
	require.Equal(t, AccPublic|AccFinal|AccSuper, cf.Access)
	require.Equal(t, "Loop.ts", cf.SourceFile)

	field, ok := cf.Field("count")
	require.True(t, ok)
	require.Equal(t, "I", field.Descriptor)
	require.Equal(t, AccPrivate|AccStatic, field.Access)

	run, ok := cf.Method("run", "()V")
	require.True(t, ok)
	require.Equal(t, []byte{
		0x03,             // iconst_0
		0x3b,             // istore_0
		0x1a,             // iload_0
		0x10, 0x0a,       // bipush 10
		0xa2, 0x00, 0x09, // if_icmpge +9
		0x84, 0x00, 0x01, // iinc 0 1
		0xa7, 0xff, 0xf7, // goto -9
		0xb1, // return
	}, run.Code.Code)
	require.Equal(t, uint16(2), run.Code.MaxStack)
	require.Equal(t, uint16(1), run.Code.MaxLocals)
	require.Len(t, run.Code.Frames, 2)
	require.Equal(t, byte(255), run.Code.Frames[0].Type)
	require.Equal(t, uint16(2), run.Code.Frames[0].OffsetDelta)
	require.Equal(t, uint16(11), run.Code.Frames[1].OffsetDelta)
	require.Equal(t, []VerificationType{IntegerType}, run.Code.Frames[1].Locals)
	require.Empty(t, run.Code.Frames[1].Stack)

	box, ok := cf.Method("box", "")
	require.True(t, ok)
	require.Len(t, box.Code.Code, 5)
	require.Empty(t, box.Code.Frames)
	ref := binary.BigEndian.Uint16(box.Code.Code[2:])
	require.Equal(t, "java/lang/Integer.valueOf:(I)Ljava/lang/Integer;", cf.Describe(ref))

	_, ok = cf.Method("missing", "")
	require.False(t, ok)
}

func TestFramesSortedByOffset(t *testing.T) {
	w := NewClassWriter(Java8, AccPublic, "demo/Frames", "java/lang/Object")
	code := w.NewCode()
	first, second := code.NewLabel(), code.NewLabel()
	code.Jump(op.Goto, first)
	code.Mark(second)
	code.Emit(op.Return)
	code.Mark(first)
	code.Jump(op.Goto, second)
	// Recorded out of order on purpose.
	code.Frame(first, nil, nil)
	code.Frame(second, nil, nil)
	code.SetMaxs(0, 0)
	require.NoError(t, w.AddMethod(AccStatic, "f", "()V", code))
	data, err := w.Bytes()
	require.NoError(t, err)

	cf, err := Parse(data)
	require.NoError(t, err)
	m, _ := cf.Method("f", "()V")
	require.Equal(t, uint16(3), m.Code.Frames[0].OffsetDelta) // second at 3
	require.Equal(t, uint16(0), m.Code.Frames[1].OffsetDelta) // first at 4
}

func TestCodeTooLarge(t *testing.T) {
	w := NewClassWriter(Java17, AccPublic, "demo/Big", "java/lang/Object")
	code := w.NewCode()
	for i := 0; i <= MaxCodeLength; i++ {
		code.Emit(op.Nop)
	}
	err := w.AddMethod(AccStatic, "big", "()V", code)
	require.ErrorIs(t, err, ErrCodeTooLarge)
	_, err = w.Bytes()
	require.ErrorIs(t, err, ErrCodeTooLarge)
}

func TestUnboundLabel(t *testing.T) {
	w := NewClassWriter(Java17, AccPublic, "demo/Bad", "java/lang/Object")
	code := w.NewCode()
	code.Jump(op.Goto, code.NewLabel())
	require.ErrorIs(t, w.AddMethod(AccStatic, "bad", "()V", code), ErrUnboundLabel)
}

func TestPoolOverflowSurfacesFromBytes(t *testing.T) {
	w := NewClassWriter(Java17, AccPublic, "demo/Many", "java/lang/Object")
	for i := 0; i < MaxPoolIndex; i++ {
		w.Pool().Integer(int32(i))
	}
	_, err := w.Bytes()
	require.ErrorIs(t, err, ErrConstantPoolOverflow)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte{0xCA, 0xFE})
	require.ErrorIs(t, err, ErrTruncated)

	_, err = Parse([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 61})
	require.EqualError(t, err, "classfile: bad magic 0xDEADBEEF")

	data := buildLoopClass(t)
	_, err = Parse(data[:len(data)-3])
	require.ErrorIs(t, err, ErrTruncated)

	_, err = Parse(append(data, 0))
	require.EqualError(t, err, "classfile: 1 trailing bytes")
}

func TestMajorVersion(t *testing.T) {
	v, err := MajorVersion(8)
	require.NoError(t, err)
	require.Equal(t, Java8, v)
	v, err = MajorVersion(21)
	require.NoError(t, err)
	require.Equal(t, Java21, v)
	v, err = MajorVersion(DefaultTarget)
	require.NoError(t, err)
	require.Equal(t, Java17, v)
	_, err = MajorVersion(7)
	require.EqualError(t, err, "unsupported java target 7 (supported: 8 to 21)")
	require.Equal(t, 0, Release(40))
}

func TestAccessString(t *testing.T) {
	tests := []struct {
		access   uint16
		expected string
	}{
		{AccPublic | AccFinal | AccSuper | AccEnum, "public final enum"},
		{0x4019, "public static final enum"},
		{0x101a, "private static final synthetic"},
		{AccSuper, ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, AccessString(tt.access))
	}
}
