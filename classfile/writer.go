package classfile

import "encoding/binary"

type member struct {
	access     uint16
	name       uint16
	descriptor uint16
	attributes [][]byte
}

// ClassWriter lays out a single class. Add fields, methods and attributes,
// then call Bytes. Capacity errors are sticky: the first one is returned by
// Bytes and later additions are ignored.
type ClassWriter struct {
	pool       *ConstantPool
	major      uint16
	access     uint16
	this       uint16
	super      uint16
	interfaces []uint16
	fields     []member
	methods    []member
	attributes [][]byte
	err        error
}

// NewClassWriter starts a class with the given binary name and superclass.
func NewClassWriter(major, access uint16, name, superName string) *ClassWriter {
	pool := NewConstantPool()
	return &ClassWriter{
		pool:   pool,
		major:  major,
		access: access,
		this:   pool.Class(name),
		super:  pool.Class(superName),
	}
}

// Pool returns the class's constant pool.
func (w *ClassWriter) Pool() *ConstantPool {
	return w.pool
}

// AddInterface declares an implemented interface.
func (w *ClassWriter) AddInterface(name string) {
	w.interfaces = append(w.interfaces, w.pool.Class(name))
}

// AddField declares a field.
func (w *ClassWriter) AddField(access uint16, name, descriptor string) {
	if w.err != nil {
		return
	}
	if len(w.fields) >= MaxMembers {
		w.err = ErrTooManyFields
		return
	}
	w.fields = append(w.fields, member{
		access:     access,
		name:       w.pool.Utf8(name),
		descriptor: w.pool.Utf8(descriptor),
	})
}

// NewCode returns a code builder that adds its constants to this class.
func (w *ClassWriter) NewCode() *Code {
	return newCode(w.pool)
}

// AddMethod declares a method. The code is assembled immediately, so any
// error in it (an unbound label, code over the size limit) is returned here
// as well as from Bytes.
func (w *ClassWriter) AddMethod(access uint16, name, descriptor string, code *Code) error {
	if w.err != nil {
		return w.err
	}
	if len(w.methods) >= MaxMembers {
		w.err = ErrTooManyMethods
		return w.err
	}
	m := member{
		access:     access,
		name:       w.pool.Utf8(name),
		descriptor: w.pool.Utf8(descriptor),
	}
	if code != nil {
		attr, err := code.attribute()
		if err != nil {
			w.err = err
			return err
		}
		m.attributes = append(m.attributes, attr)
	}
	w.methods = append(w.methods, m)
	return nil
}

// SetSourceFile adds the SourceFile attribute.
func (w *ClassWriter) SetSourceFile(name string) {
	body := binary.BigEndian.AppendUint16(nil, w.pool.Utf8(name))
	w.attributes = append(w.attributes, attribute(w.pool.Utf8("SourceFile"), body))
}

// Bytes encodes the class file.
func (w *ClassWriter) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if err := w.pool.Err(); err != nil {
		return nil, err
	}
	b := binary.BigEndian.AppendUint32(nil, Magic)
	b = binary.BigEndian.AppendUint16(b, 0) // minor
	b = binary.BigEndian.AppendUint16(b, w.major)
	b = w.pool.appendTo(b)
	b = binary.BigEndian.AppendUint16(b, w.access)
	b = binary.BigEndian.AppendUint16(b, w.this)
	b = binary.BigEndian.AppendUint16(b, w.super)
	b = binary.BigEndian.AppendUint16(b, uint16(len(w.interfaces)))
	for _, i := range w.interfaces {
		b = binary.BigEndian.AppendUint16(b, i)
	}
	b = appendMembers(b, w.fields)
	b = appendMembers(b, w.methods)
	b = binary.BigEndian.AppendUint16(b, uint16(len(w.attributes)))
	for _, a := range w.attributes {
		b = append(b, a...)
	}
	return b, nil
}

func appendMembers(b []byte, members []member) []byte {
	b = binary.BigEndian.AppendUint16(b, uint16(len(members)))
	for _, m := range members {
		b = binary.BigEndian.AppendUint16(b, m.access)
		b = binary.BigEndian.AppendUint16(b, m.name)
		b = binary.BigEndian.AppendUint16(b, m.descriptor)
		b = binary.BigEndian.AppendUint16(b, uint16(len(m.attributes)))
		for _, a := range m.attributes {
			b = append(b, a...)
		}
	}
	return b
}
