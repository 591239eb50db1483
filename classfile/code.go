package classfile

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/deepnoodle-ai/classgen/op"
)

// Label marks a position in a method's code. Labels may be referenced by
// branches before they are bound with Mark.
type Label int

// Verification type tags used in stack map frames.
const (
	ItemTop     byte = 0
	ItemInteger byte = 1
	ItemNull    byte = 5
	ItemObject  byte = 7
)

// VerificationType is one entry of a stack map frame's locals or stack.
type VerificationType struct {
	Tag   byte
	Index uint16 // constant pool index of the class, for ItemObject
}

// IntegerType is the verification type of an int value.
var IntegerType = VerificationType{Tag: ItemInteger}

type fixup struct {
	at    int // address of the branch opcode
	label Label
}

type frame struct {
	label  Label
	locals []VerificationType
	stack  []VerificationType
}

// Code assembles the body of one method. Instructions referencing constants
// add them to the class's pool as they are emitted.
type Code struct {
	pool      *ConstantPool
	code      []byte
	maxStack  uint16
	maxLocals uint16
	labels    []int
	fixups    []fixup
	frames    []frame
}

func newCode(pool *ConstantPool) *Code {
	return &Code{pool: pool}
}

// Len returns the current code length in bytes.
func (c *Code) Len() int {
	return len(c.code)
}

// SetMaxs sets the operand stack depth and local variable count.
func (c *Code) SetMaxs(stack, locals int) {
	c.maxStack = uint16(stack)
	c.maxLocals = uint16(locals)
}

// ObjectType returns the verification type for instances of a class.
func (c *Code) ObjectType(class string) VerificationType {
	return VerificationType{Tag: ItemObject, Index: c.pool.Class(class)}
}

// Emit appends an instruction without operands.
func (c *Code) Emit(o op.Code) {
	c.code = append(c.code, byte(o))
}

func (c *Code) emitU1(o op.Code, v byte) {
	c.code = append(c.code, byte(o), v)
}

func (c *Code) emitU2(o op.Code, v uint16) {
	c.code = binary.BigEndian.AppendUint16(append(c.code, byte(o)), v)
}

// PushInt pushes an int constant using the shortest instruction.
func (c *Code) PushInt(v int32) {
	switch {
	case v >= -1 && v <= 5:
		c.Emit(op.Code(int32(op.IConst0) + v))
	case v >= math.MinInt8 && v <= math.MaxInt8:
		c.emitU1(op.BIPush, byte(int8(v)))
	case v >= math.MinInt16 && v <= math.MaxInt16:
		c.emitU2(op.SIPush, uint16(int16(v)))
	default:
		c.ldc(c.pool.Integer(v))
	}
}

// PushString pushes a String constant.
func (c *Code) PushString(s string) {
	c.ldc(c.pool.String(s))
}

// PushClass pushes the java.lang.Class object of a class.
func (c *Code) PushClass(class string) {
	c.ldc(c.pool.Class(class))
}

func (c *Code) ldc(idx uint16) {
	if idx <= math.MaxUint8 {
		c.emitU1(op.Ldc, byte(idx))
		return
	}
	c.emitU2(op.LdcW, idx)
}

func (c *Code) local(short, long op.Code, n int) {
	switch {
	case n <= 3:
		c.Emit(short + op.Code(n))
	case n <= math.MaxUint8:
		c.emitU1(long, byte(n))
	default:
		c.Emit(op.Wide)
		c.emitU2(long, uint16(n))
	}
}

// ALoad loads a reference from local n.
func (c *Code) ALoad(n int) { c.local(op.ALoad0, op.ALoad, n) }

// ILoad loads an int from local n.
func (c *Code) ILoad(n int) { c.local(op.ILoad0, op.ILoad, n) }

// AStore stores a reference into local n.
func (c *Code) AStore(n int) { c.local(op.AStore0, op.AStore, n) }

// IStore stores an int into local n.
func (c *Code) IStore(n int) { c.local(op.IStore0, op.IStore, n) }

// IInc increments int local n by delta.
func (c *Code) IInc(n int, delta int8) {
	c.code = append(c.code, byte(op.IInc), byte(n), byte(delta))
}

// New allocates an uninitialized instance of class.
func (c *Code) New(class string) { c.emitU2(op.New, c.pool.Class(class)) }

// ANewArray allocates an array whose component type is class.
func (c *Code) ANewArray(class string) { c.emitU2(op.ANewArray, c.pool.Class(class)) }

// CheckCast casts the top of the stack to class, which may be an array
// descriptor.
func (c *Code) CheckCast(class string) { c.emitU2(op.CheckCast, c.pool.Class(class)) }

// GetStatic pushes a static field.
func (c *Code) GetStatic(owner, name, desc string) {
	c.emitU2(op.GetStatic, c.pool.Fieldref(owner, name, desc))
}

// PutStatic stores into a static field.
func (c *Code) PutStatic(owner, name, desc string) {
	c.emitU2(op.PutStatic, c.pool.Fieldref(owner, name, desc))
}

// GetField pushes an instance field.
func (c *Code) GetField(owner, name, desc string) {
	c.emitU2(op.GetField, c.pool.Fieldref(owner, name, desc))
}

// PutField stores into an instance field.
func (c *Code) PutField(owner, name, desc string) {
	c.emitU2(op.PutField, c.pool.Fieldref(owner, name, desc))
}

// InvokeVirtual calls an instance method.
func (c *Code) InvokeVirtual(owner, name, desc string) {
	c.emitU2(op.InvokeVirtual, c.pool.Methodref(owner, name, desc))
}

// InvokeSpecial calls a constructor, private or super method.
func (c *Code) InvokeSpecial(owner, name, desc string) {
	c.emitU2(op.InvokeSpecial, c.pool.Methodref(owner, name, desc))
}

// InvokeStatic calls a static method.
func (c *Code) InvokeStatic(owner, name, desc string) {
	c.emitU2(op.InvokeStatic, c.pool.Methodref(owner, name, desc))
}

// NewLabel creates an unbound label.
func (c *Code) NewLabel() Label {
	c.labels = append(c.labels, -1)
	return Label(len(c.labels) - 1)
}

// Mark binds the label to the current code position.
func (c *Code) Mark(l Label) {
	c.labels[l] = len(c.code)
}

// Jump emits a branch instruction targeting the label. The offset is
// resolved when the method is added to the class.
func (c *Code) Jump(o op.Code, l Label) {
	c.fixups = append(c.fixups, fixup{at: len(c.code), label: l})
	c.emitU2(o, 0)
}

// Frame records a full stack map frame at the label.
func (c *Code) Frame(l Label, locals, stack []VerificationType) {
	c.frames = append(c.frames, frame{label: l, locals: locals, stack: stack})
}

// attribute resolves branches and returns the encoded Code attribute.
func (c *Code) attribute() ([]byte, error) {
	if len(c.code) > MaxCodeLength {
		return nil, ErrCodeTooLarge
	}
	for _, f := range c.fixups {
		target := c.labels[f.label]
		if target < 0 {
			return nil, ErrUnboundLabel
		}
		delta := target - f.at
		if delta < math.MinInt16 || delta > math.MaxInt16 {
			return nil, ErrBranchTooFar
		}
		binary.BigEndian.PutUint16(c.code[f.at+1:], uint16(int16(delta)))
	}

	body := binary.BigEndian.AppendUint16(nil, c.maxStack)
	body = binary.BigEndian.AppendUint16(body, c.maxLocals)
	body = binary.BigEndian.AppendUint32(body, uint32(len(c.code)))
	body = append(body, c.code...)
	body = binary.BigEndian.AppendUint16(body, 0) // exception table
	if len(c.frames) == 0 {
		body = binary.BigEndian.AppendUint16(body, 0)
	} else {
		table, err := c.stackMapTable()
		if err != nil {
			return nil, err
		}
		body = binary.BigEndian.AppendUint16(body, 1)
		body = append(body, table...)
	}
	return attribute(c.pool.Utf8("Code"), body), nil
}

// stackMapTable encodes the recorded frames as full frames ordered by
// offset. The first frame's offset_delta is its offset; each later one is
// the distance from the previous frame minus one.
func (c *Code) stackMapTable() ([]byte, error) {
	frames := make([]frame, len(c.frames))
	copy(frames, c.frames)
	for _, f := range frames {
		if c.labels[f.label] < 0 {
			return nil, ErrUnboundLabel
		}
	}
	sort.SliceStable(frames, func(i, j int) bool {
		return c.labels[frames[i].label] < c.labels[frames[j].label]
	})
	body := binary.BigEndian.AppendUint16(nil, uint16(len(frames)))
	prev := -1
	for _, f := range frames {
		offset := c.labels[f.label]
		body = append(body, 255)
		body = binary.BigEndian.AppendUint16(body, uint16(offset-prev-1))
		body = appendTypes(body, f.locals)
		body = appendTypes(body, f.stack)
		prev = offset
	}
	return attribute(c.pool.Utf8("StackMapTable"), body), nil
}

func appendTypes(b []byte, types []VerificationType) []byte {
	b = binary.BigEndian.AppendUint16(b, uint16(len(types)))
	for _, t := range types {
		b = append(b, t.Tag)
		if t.Tag == ItemObject {
			b = binary.BigEndian.AppendUint16(b, t.Index)
		}
	}
	return b
}

func attribute(name uint16, body []byte) []byte {
	b := binary.BigEndian.AppendUint16(nil, name)
	b = binary.BigEndian.AppendUint32(b, uint32(len(body)))
	return append(b, body...)
}
