// Package op defines the JVM opcodes emitted by the class generator and the
// operand layout needed to decode them again.
package op

// Code is a single-byte JVM opcode.
type Code uint8

const (
	Nop        Code = 0x00
	AConstNull Code = 0x01
	IConstM1   Code = 0x02
	IConst0    Code = 0x03
	IConst1    Code = 0x04
	IConst2    Code = 0x05
	IConst3    Code = 0x06
	IConst4    Code = 0x07
	IConst5    Code = 0x08
	BIPush     Code = 0x10
	SIPush     Code = 0x11
	Ldc        Code = 0x12
	LdcW       Code = 0x13

	// Load
	ILoad   Code = 0x15
	ALoad   Code = 0x19
	ILoad0  Code = 0x1a
	ILoad1  Code = 0x1b
	ILoad2  Code = 0x1c
	ILoad3  Code = 0x1d
	ALoad0  Code = 0x2a
	ALoad1  Code = 0x2b
	ALoad2  Code = 0x2c
	ALoad3  Code = 0x2d
	AALoad  Code = 0x32
	IStore  Code = 0x36
	AStore  Code = 0x3a
	IStore0 Code = 0x3b
	IStore1 Code = 0x3c
	IStore2 Code = 0x3d
	IStore3 Code = 0x3e
	AStore0 Code = 0x4b
	AStore1 Code = 0x4c
	AStore2 Code = 0x4d
	AStore3 Code = 0x4e
	AAStore Code = 0x53

	// Stack
	Pop  Code = 0x57
	Dup  Code = 0x59
	Swap Code = 0x5f

	IInc Code = 0x84

	// Branch
	IfEq     Code = 0x99
	IfNe     Code = 0x9a
	IfICmpEq Code = 0x9f
	IfICmpNe Code = 0xa0
	IfICmpLt Code = 0xa1
	IfICmpGe Code = 0xa2
	IfICmpGt Code = 0xa3
	IfICmpLe Code = 0xa4
	Goto     Code = 0xa7

	// Return
	IReturn Code = 0xac
	AReturn Code = 0xb0
	Return  Code = 0xb1

	// Fields and methods
	GetStatic       Code = 0xb2
	PutStatic       Code = 0xb3
	GetField        Code = 0xb4
	PutField        Code = 0xb5
	InvokeVirtual   Code = 0xb6
	InvokeSpecial   Code = 0xb7
	InvokeStatic    Code = 0xb8
	InvokeInterface Code = 0xb9

	// Objects
	New         Code = 0xbb
	ANewArray   Code = 0xbd
	ArrayLength Code = 0xbe
	AThrow      Code = 0xbf
	CheckCast   Code = 0xc0
	InstanceOf  Code = 0xc1

	Wide Code = 0xc4
)

// OperandKind describes how the bytes following an opcode are interpreted.
type OperandKind uint8

const (
	// None means the opcode has no operands.
	None OperandKind = iota
	// Local is an unsigned one byte local variable index.
	Local
	// Byte is a signed one byte immediate.
	Byte
	// Short is a signed two byte immediate.
	Short
	// Const1 is a one byte constant pool index.
	Const1
	// Const2 is a two byte constant pool index.
	Const2
	// Branch is a signed two byte offset relative to the opcode.
	Branch
	// LocalIncrement is a local index followed by a signed byte.
	LocalIncrement
	// Interface is a two byte constant pool index followed by a count
	// byte and a zero byte.
	Interface
)

// Size returns the number of operand bytes for the kind.
func (k OperandKind) Size() int {
	switch k {
	case Local, Byte, Const1:
		return 1
	case Short, Const2, Branch, LocalIncrement:
		return 2
	case Interface:
		return 4
	default:
		return 0
	}
}

// Info contains information about an opcode.
type Info struct {
	Code     Code
	Name     string
	Operands OperandKind
}

// Valid reports whether the opcode is known to this package.
func (i Info) Valid() bool {
	return i.Name != ""
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op       Code
		name     string
		operands OperandKind
	}
	ops := []opInfo{
		{Nop, "nop", None},
		{AConstNull, "aconst_null", None},
		{IConstM1, "iconst_m1", None},
		{IConst0, "iconst_0", None},
		{IConst1, "iconst_1", None},
		{IConst2, "iconst_2", None},
		{IConst3, "iconst_3", None},
		{IConst4, "iconst_4", None},
		{IConst5, "iconst_5", None},
		{BIPush, "bipush", Byte},
		{SIPush, "sipush", Short},
		{Ldc, "ldc", Const1},
		{LdcW, "ldc_w", Const2},
		{ILoad, "iload", Local},
		{ALoad, "aload", Local},
		{ILoad0, "iload_0", None},
		{ILoad1, "iload_1", None},
		{ILoad2, "iload_2", None},
		{ILoad3, "iload_3", None},
		{ALoad0, "aload_0", None},
		{ALoad1, "aload_1", None},
		{ALoad2, "aload_2", None},
		{ALoad3, "aload_3", None},
		{AALoad, "aaload", None},
		{IStore, "istore", Local},
		{AStore, "astore", Local},
		{IStore0, "istore_0", None},
		{IStore1, "istore_1", None},
		{IStore2, "istore_2", None},
		{IStore3, "istore_3", None},
		{AStore0, "astore_0", None},
		{AStore1, "astore_1", None},
		{AStore2, "astore_2", None},
		{AStore3, "astore_3", None},
		{AAStore, "aastore", None},
		{Pop, "pop", None},
		{Dup, "dup", None},
		{Swap, "swap", None},
		{IInc, "iinc", LocalIncrement},
		{IfEq, "ifeq", Branch},
		{IfNe, "ifne", Branch},
		{IfICmpEq, "if_icmpeq", Branch},
		{IfICmpNe, "if_icmpne", Branch},
		{IfICmpLt, "if_icmplt", Branch},
		{IfICmpGe, "if_icmpge", Branch},
		{IfICmpGt, "if_icmpgt", Branch},
		{IfICmpLe, "if_icmple", Branch},
		{Goto, "goto", Branch},
		{IReturn, "ireturn", None},
		{AReturn, "areturn", None},
		{Return, "return", None},
		{GetStatic, "getstatic", Const2},
		{PutStatic, "putstatic", Const2},
		{GetField, "getfield", Const2},
		{PutField, "putfield", Const2},
		{InvokeVirtual, "invokevirtual", Const2},
		{InvokeSpecial, "invokespecial", Const2},
		{InvokeStatic, "invokestatic", Const2},
		{InvokeInterface, "invokeinterface", Interface},
		{New, "new", Const2},
		{ANewArray, "anewarray", Const2},
		{ArrayLength, "arraylength", None},
		{AThrow, "athrow", None},
		{CheckCast, "checkcast", Const2},
		{InstanceOf, "instanceof", Const2},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:     o.op,
			Name:     o.name,
			Operands: o.operands,
		}
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	return infos[op]
}

// String returns the mnemonic of the opcode.
func (c Code) String() string {
	if name := infos[c].Name; name != "" {
		return name
	}
	return "unknown"
}

// IsBranch reports whether the opcode takes a two byte branch offset.
func (c Code) IsBranch() bool {
	return infos[c].Operands == Branch
}
