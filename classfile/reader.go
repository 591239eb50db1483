package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
)

// Constant is a decoded constant pool entry.
type Constant struct {
	Tag   byte
	Utf8  string // TagUtf8
	Int   int32  // TagInteger
	Ref1  uint16 // name/class/string index, depending on the tag
	Ref2  uint16 // name_and_type or descriptor index
	Bytes []byte // raw payload for tags without a decoded form
}

// StackMapFrame is a decoded stack map frame.
type StackMapFrame struct {
	Type        byte
	OffsetDelta uint16
	Locals      []VerificationType
	Stack       []VerificationType
}

// CodeAttribute is a decoded Code attribute.
type CodeAttribute struct {
	MaxStack  uint16
	MaxLocals uint16
	Code      []byte
	Frames    []StackMapFrame
}

// Member is a decoded field or method.
type Member struct {
	Access     uint16
	Name       string
	Descriptor string
	Code       *CodeAttribute // methods only
}

// ClassFile is a decoded class file.
type ClassFile struct {
	Minor      uint16
	Major      uint16
	Constants  []Constant // indexed by pool index; entry 0 is unused
	Access     uint16
	Name       string
	SuperName  string
	Interfaces []string
	Fields     []Member
	Methods    []Member
	SourceFile string
}

// ErrTruncated is returned by Parse when the data ends early.
var ErrTruncated = errors.New("classfile: unexpected end of data")

type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = ErrTruncated
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) u1() byte {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u2() uint16 {
	if b := r.take(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (r *reader) u4() uint32 {
	if b := r.take(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

// Parse decodes a class file.
func Parse(data []byte) (*ClassFile, error) {
	r := &reader{data: data}
	if magic := r.u4(); r.err == nil && magic != Magic {
		return nil, fmt.Errorf("classfile: bad magic 0x%08X", magic)
	}
	cf := &ClassFile{Minor: r.u2(), Major: r.u2()}
	if err := cf.readPool(r); err != nil {
		return nil, err
	}
	cf.Access = r.u2()
	cf.Name = cf.ClassName(r.u2())
	cf.SuperName = cf.ClassName(r.u2())
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		cf.Interfaces = append(cf.Interfaces, cf.ClassName(r.u2()))
	}
	cf.Fields = cf.readMembers(r)
	cf.Methods = cf.readMembers(r)
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		name, body := cf.readAttribute(r)
		if name == "SourceFile" && len(body) == 2 {
			cf.SourceFile = cf.Utf8At(binary.BigEndian.Uint16(body))
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.pos != len(data) {
		return nil, fmt.Errorf("classfile: %d trailing bytes", len(data)-r.pos)
	}
	return cf, nil
}

func (cf *ClassFile) readPool(r *reader) error {
	count := int(r.u2())
	cf.Constants = make([]Constant, count)
	for i := 1; i < count && r.err == nil; i++ {
		c := Constant{Tag: r.u1()}
		switch c.Tag {
		case TagUtf8:
			c.Utf8 = decodeModifiedUTF8(r.take(int(r.u2())))
		case TagInteger:
			c.Int = int32(r.u4())
		case TagFloat:
			c.Bytes = r.take(4)
		case TagLong, TagDouble:
			c.Bytes = r.take(8)
		case TagClass, TagString:
			c.Ref1 = r.u2()
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType:
			c.Ref1 = r.u2()
			c.Ref2 = r.u2()
		default:
			if r.err == nil {
				return fmt.Errorf("classfile: unknown constant tag %d at index %d", c.Tag, i)
			}
		}
		cf.Constants[i] = c
		if c.Tag == TagLong || c.Tag == TagDouble {
			i++ // eight byte constants occupy two slots
		}
	}
	return r.err
}

func (cf *ClassFile) readMembers(r *reader) []Member {
	var members []Member
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		m := Member{
			Access:     r.u2(),
			Name:       cf.Utf8At(r.u2()),
			Descriptor: cf.Utf8At(r.u2()),
		}
		for a := r.u2(); a > 0 && r.err == nil; a-- {
			name, body := cf.readAttribute(r)
			if name == "Code" {
				m.Code = cf.readCode(body, r)
			}
		}
		members = append(members, m)
	}
	return members
}

func (cf *ClassFile) readAttribute(r *reader) (string, []byte) {
	name := cf.Utf8At(r.u2())
	body := r.take(int(r.u4()))
	return name, body
}

func (cf *ClassFile) readCode(body []byte, outer *reader) *CodeAttribute {
	r := &reader{data: body}
	code := &CodeAttribute{MaxStack: r.u2(), MaxLocals: r.u2()}
	code.Code = r.take(int(r.u4()))
	r.take(int(r.u2()) * 8) // exception table
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		name, attr := cf.readAttribute(r)
		if name == "StackMapTable" {
			code.Frames = readFrames(&reader{data: attr}, outer)
		}
	}
	if r.err != nil && outer.err == nil {
		outer.err = r.err
	}
	return code
}

func readFrames(r *reader, outer *reader) []StackMapFrame {
	var frames []StackMapFrame
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		f := StackMapFrame{Type: r.u1()}
		switch t := f.Type; {
		case t <= 63:
			f.OffsetDelta = uint16(t)
		case t <= 127:
			f.OffsetDelta = uint16(t - 64)
			f.Stack = readTypes(r, 1)
		case t == 247:
			f.OffsetDelta = r.u2()
			f.Stack = readTypes(r, 1)
		case t >= 248 && t <= 251:
			f.OffsetDelta = r.u2()
		case t >= 252 && t <= 254:
			f.OffsetDelta = r.u2()
			f.Locals = readTypes(r, int(t-251))
		case t == 255:
			f.OffsetDelta = r.u2()
			f.Locals = readTypes(r, int(r.u2()))
			f.Stack = readTypes(r, int(r.u2()))
		default:
			r.err = fmt.Errorf("classfile: reserved stack map frame type %d", t)
		}
		frames = append(frames, f)
	}
	if r.err != nil && outer.err == nil {
		outer.err = r.err
	}
	return frames
}

func readTypes(r *reader, n int) []VerificationType {
	types := make([]VerificationType, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		t := VerificationType{Tag: r.u1()}
		if t.Tag == ItemObject || t.Tag == 8 { // Object, Uninitialized
			t.Index = r.u2()
		}
		types = append(types, t)
	}
	return types
}

func (cf *ClassFile) constant(i uint16) (Constant, bool) {
	if int(i) <= 0 || int(i) >= len(cf.Constants) {
		return Constant{}, false
	}
	return cf.Constants[i], true
}

// Utf8At returns the string of a CONSTANT_Utf8 entry, or "" if the index
// does not refer to one.
func (cf *ClassFile) Utf8At(i uint16) string {
	if c, ok := cf.constant(i); ok && c.Tag == TagUtf8 {
		return c.Utf8
	}
	return ""
}

// ClassName returns the binary name of a CONSTANT_Class entry.
func (cf *ClassFile) ClassName(i uint16) string {
	if c, ok := cf.constant(i); ok && c.Tag == TagClass {
		return cf.Utf8At(c.Ref1)
	}
	return ""
}

// Describe renders a constant pool entry for humans, for example
// "java/lang/Enum.valueOf:(Ljava/lang/Class;Ljava/lang/String;)Ljava/lang/Enum;".
func (cf *ClassFile) Describe(i uint16) string {
	c, ok := cf.constant(i)
	if !ok {
		return fmt.Sprintf("#%d?", i)
	}
	switch c.Tag {
	case TagUtf8:
		return c.Utf8
	case TagInteger:
		return strconv.Itoa(int(c.Int))
	case TagString:
		return strconv.Quote(cf.Utf8At(c.Ref1))
	case TagClass:
		return cf.Utf8At(c.Ref1)
	case TagNameAndType:
		return cf.Utf8At(c.Ref1) + ":" + cf.Utf8At(c.Ref2)
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		return cf.ClassName(c.Ref1) + "." + cf.Describe(c.Ref2)
	default:
		return fmt.Sprintf("<tag %d>", c.Tag)
	}
}

// Field returns the field with the given name.
func (cf *ClassFile) Field(name string) (Member, bool) {
	for _, f := range cf.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Member{}, false
}

// Method returns the method with the given name and descriptor. An empty
// descriptor matches any.
func (cf *ClassFile) Method(name, descriptor string) (Member, bool) {
	for _, m := range cf.Methods {
		if m.Name == name && (descriptor == "" || m.Descriptor == descriptor) {
			return m, true
		}
	}
	return Member{}, false
}
