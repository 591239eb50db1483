package classfile

import (
	"encoding/binary"
	"unicode/utf8"
)

type constant struct {
	tag  byte
	data []byte
}

// ConstantPool collects the constants of one class. Identical constants are
// stored once. Adding entries past the format limit records
// ErrConstantPoolOverflow, returned by Err, and yields index 0 from then on.
type ConstantPool struct {
	entries []constant // entries[i] has pool index i+1
	index   map[string]uint16
	err     error
}

// NewConstantPool returns an empty constant pool.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{index: map[string]uint16{}}
}

// Err returns the first error encountered while adding entries.
func (p *ConstantPool) Err() error {
	return p.err
}

// Count returns the constant_pool_count value: the number of entries plus one.
func (p *ConstantPool) Count() int {
	return len(p.entries) + 1
}

func (p *ConstantPool) add(tag byte, data []byte) uint16 {
	if p.err != nil {
		return 0
	}
	key := string(append([]byte{tag}, data...))
	if idx, ok := p.index[key]; ok {
		return idx
	}
	if len(p.entries)+1 > MaxPoolIndex {
		p.err = ErrConstantPoolOverflow
		return 0
	}
	p.entries = append(p.entries, constant{tag: tag, data: data})
	idx := uint16(len(p.entries))
	p.index[key] = idx
	return idx
}

func u2(v uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, v)
}

func pair(a, b uint16) []byte {
	return binary.BigEndian.AppendUint16(u2(a), b)
}

// Utf8 adds a CONSTANT_Utf8 entry.
func (p *ConstantPool) Utf8(s string) uint16 {
	enc := encodeModifiedUTF8(s)
	if len(enc) > MaxUtf8Length {
		if p.err == nil {
			p.err = ErrStringTooLong
		}
		return 0
	}
	return p.add(TagUtf8, enc)
}

// Integer adds a CONSTANT_Integer entry.
func (p *ConstantPool) Integer(v int32) uint16 {
	return p.add(TagInteger, binary.BigEndian.AppendUint32(nil, uint32(v)))
}

// String adds a CONSTANT_String entry.
func (p *ConstantPool) String(s string) uint16 {
	return p.add(TagString, u2(p.Utf8(s)))
}

// Class adds a CONSTANT_Class entry for a binary name such as "a/b/Color"
// or an array descriptor such as "[La/b/Color;".
func (p *ConstantPool) Class(name string) uint16 {
	return p.add(TagClass, u2(p.Utf8(name)))
}

// NameAndType adds a CONSTANT_NameAndType entry.
func (p *ConstantPool) NameAndType(name, descriptor string) uint16 {
	return p.add(TagNameAndType, pair(p.Utf8(name), p.Utf8(descriptor)))
}

// Fieldref adds a CONSTANT_Fieldref entry.
func (p *ConstantPool) Fieldref(owner, name, descriptor string) uint16 {
	return p.add(TagFieldref, pair(p.Class(owner), p.NameAndType(name, descriptor)))
}

// Methodref adds a CONSTANT_Methodref entry.
func (p *ConstantPool) Methodref(owner, name, descriptor string) uint16 {
	return p.add(TagMethodref, pair(p.Class(owner), p.NameAndType(name, descriptor)))
}

func (p *ConstantPool) appendTo(b []byte) []byte {
	b = binary.BigEndian.AppendUint16(b, uint16(p.Count()))
	for _, c := range p.entries {
		b = append(b, c.tag)
		if c.tag == TagUtf8 {
			b = binary.BigEndian.AppendUint16(b, uint16(len(c.data)))
		}
		b = append(b, c.data...)
	}
	return b
}

// encodeModifiedUTF8 encodes s the way the JVM stores strings: NUL as two
// bytes and supplementary characters as surrogate pairs of three bytes each.
func encodeModifiedUTF8(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r == 0:
			out = append(out, 0xC0, 0x80)
		case r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
		case r < 0x10000:
			out = append3(out, r)
		default:
			r -= 0x10000
			out = append3(out, 0xD800+(r>>10))
			out = append3(out, 0xDC00+(r&0x3FF))
		}
	}
	return out
}

func append3(out []byte, r rune) []byte {
	return append(out, 0xE0|byte(r>>12), 0x80|byte((r>>6)&0x3F), 0x80|byte(r&0x3F))
}

// decodeModifiedUTF8 reverses encodeModifiedUTF8.
func decodeModifiedUTF8(b []byte) string {
	runes := make([]rune, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			runes = append(runes, rune(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			runes = append(runes, rune(c&0x1F)<<6|rune(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			r := rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			i += 3
			if r >= 0xD800 && r < 0xDC00 && i+2 < len(b) && b[i]&0xF0 == 0xE0 {
				lo := rune(b[i]&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
				if lo >= 0xDC00 && lo < 0xE000 {
					r = 0x10000 + (r-0xD800)<<10 + (lo - 0xDC00)
					i += 3
				}
			}
			runes = append(runes, r)
		default:
			runes = append(runes, utf8.RuneError)
			i++
		}
	}
	return string(runes)
}
