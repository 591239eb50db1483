package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(InvokeSpecial)
	require.Equal(t, "invokespecial", info.Name)
	require.Equal(t, Const2, info.Operands)
	require.Equal(t, InvokeSpecial, info.Code)
	require.True(t, info.Valid())
}

func TestGetInfoAllOpcodes(t *testing.T) {
	tests := []struct {
		code     Code
		value    byte
		name     string
		operands int
	}{
		{ALoad0, 0x2a, "aload_0", 0},
		{ILoad0, 0x1a, "iload_0", 0},
		{AStore0, 0x4b, "astore_0", 0},
		{IStore0, 0x3b, "istore_0", 0},
		{ALoad, 0x19, "aload", 1},
		{AStore, 0x3a, "astore", 1},
		{IConstM1, 0x02, "iconst_m1", 0},
		{IConst0, 0x03, "iconst_0", 0},
		{BIPush, 0x10, "bipush", 1},
		{SIPush, 0x11, "sipush", 2},
		{Ldc, 0x12, "ldc", 1},
		{LdcW, 0x13, "ldc_w", 2},
		{New, 0xbb, "new", 2},
		{Dup, 0x59, "dup", 0},
		{InvokeSpecial, 0xb7, "invokespecial", 2},
		{InvokeStatic, 0xb8, "invokestatic", 2},
		{InvokeVirtual, 0xb6, "invokevirtual", 2},
		{InvokeInterface, 0xb9, "invokeinterface", 4},
		{PutStatic, 0xb3, "putstatic", 2},
		{GetStatic, 0xb2, "getstatic", 2},
		{PutField, 0xb5, "putfield", 2},
		{GetField, 0xb4, "getfield", 2},
		{ANewArray, 0xbd, "anewarray", 2},
		{AAStore, 0x53, "aastore", 0},
		{AALoad, 0x32, "aaload", 0},
		{ArrayLength, 0xbe, "arraylength", 0},
		{AReturn, 0xb0, "areturn", 0},
		{IReturn, 0xac, "ireturn", 0},
		{Return, 0xb1, "return", 0},
		{AThrow, 0xbf, "athrow", 0},
		{CheckCast, 0xc0, "checkcast", 2},
		{IfICmpGe, 0xa2, "if_icmpge", 2},
		{IfICmpNe, 0xa0, "if_icmpne", 2},
		{IfEq, 0x99, "ifeq", 2},
		{Goto, 0xa7, "goto", 2},
		{IInc, 0x84, "iinc", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.value, byte(tt.code))
			info := GetInfo(tt.code)
			require.Equal(t, tt.name, info.Name)
			require.Equal(t, tt.operands, info.Operands.Size())
			require.Equal(t, tt.name, tt.code.String())
		})
	}
}

func TestUnknownOpcode(t *testing.T) {
	info := GetInfo(Code(0xfe))
	require.False(t, info.Valid())
	require.Equal(t, "unknown", Code(0xfe).String())
}

func TestIsBranch(t *testing.T) {
	require.True(t, Goto.IsBranch())
	require.True(t, IfICmpGe.IsBranch())
	require.False(t, Ldc.IsBranch())
	require.False(t, IInc.IsBranch())
}
