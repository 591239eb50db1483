// Package dis disassembles JVM method code for the inspect command.
package dis

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/classgen/classfile"
	"github.com/deepnoodle-ai/classgen/internal/table"
	"github.com/deepnoodle-ai/classgen/op"
)

// Instruction is one decoded instruction.
type Instruction struct {
	Offset   int    `json:"offset"`
	Name     string `json:"name"`
	Operands []int  `json:"operands,omitempty"`
	Info     string `json:"info,omitempty"`
}

// Disassemble decodes a method's code. Constant pool operands are described
// using cf, which may be nil.
func Disassemble(code []byte, cf *classfile.ClassFile) ([]Instruction, error) {
	var instructions []Instruction
	for pc := 0; pc < len(code); {
		instr, size, err := decode(code, pc, cf)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, instr)
		pc += size
	}
	return instructions, nil
}

func decode(code []byte, pc int, cf *classfile.ClassFile) (Instruction, int, error) {
	opcode := op.Code(code[pc])
	if opcode == op.Wide {
		return decodeWide(code, pc)
	}
	info := op.GetInfo(opcode)
	if !info.Valid() {
		return Instruction{}, 0, fmt.Errorf("dis: unknown opcode 0x%02x at offset %d", byte(opcode), pc)
	}
	size := 1 + info.Operands.Size()
	if pc+size > len(code) {
		return Instruction{}, 0, fmt.Errorf("dis: truncated %s at offset %d", info.Name, pc)
	}
	instr := Instruction{Offset: pc, Name: info.Name}
	args := code[pc+1 : pc+size]
	switch info.Operands {
	case op.Local:
		instr.Operands = []int{int(args[0])}
	case op.Byte:
		instr.Operands = []int{int(int8(args[0]))}
	case op.Short:
		instr.Operands = []int{int(int16(binary.BigEndian.Uint16(args)))}
	case op.Const1:
		instr.Operands = []int{int(args[0])}
		instr.Info = describe(cf, uint16(args[0]))
	case op.Const2, op.Interface:
		idx := binary.BigEndian.Uint16(args)
		instr.Operands = []int{int(idx)}
		instr.Info = describe(cf, idx)
	case op.Branch:
		instr.Operands = []int{pc + int(int16(binary.BigEndian.Uint16(args)))}
	case op.LocalIncrement:
		instr.Operands = []int{int(args[0]), int(int8(args[1]))}
	}
	return instr, size, nil
}

func decodeWide(code []byte, pc int) (Instruction, int, error) {
	if pc+1 >= len(code) {
		return Instruction{}, 0, fmt.Errorf("dis: truncated wide at offset %d", pc)
	}
	info := op.GetInfo(op.Code(code[pc+1]))
	size := 4
	if info.Operands == op.LocalIncrement {
		size = 6
	} else if info.Operands != op.Local {
		return Instruction{}, 0, fmt.Errorf("dis: invalid wide opcode 0x%02x at offset %d", code[pc+1], pc)
	}
	if pc+size > len(code) {
		return Instruction{}, 0, fmt.Errorf("dis: truncated wide %s at offset %d", info.Name, pc)
	}
	instr := Instruction{
		Offset:   pc,
		Name:     "wide " + info.Name,
		Operands: []int{int(binary.BigEndian.Uint16(code[pc+2:]))},
	}
	if size == 6 {
		instr.Operands = append(instr.Operands, int(int16(binary.BigEndian.Uint16(code[pc+4:]))))
	}
	return instr, size, nil
}

func describe(cf *classfile.ClassFile, idx uint16) string {
	if cf == nil {
		return ""
	}
	return cf.Describe(idx)
}

// Print writes the instructions as a table.
func Print(instructions []Instruction, w io.Writer) error {
	tbl := table.NewTable(w)
	tbl.WithHeader([]string{"OFFSET", "OPCODE", "OPERANDS", "INFO"})
	tbl.WithHeaderAlignment([]table.Alignment{
		table.AlignCenter, table.AlignCenter, table.AlignCenter, table.AlignCenter,
	})
	tbl.WithColumnAlignment([]table.Alignment{
		table.AlignRight, table.AlignLeft, table.AlignRight, table.AlignLeft,
	})
	for _, instr := range instructions {
		operands := make([]string, len(instr.Operands))
		for i, v := range instr.Operands {
			operands[i] = strconv.Itoa(v)
		}
		tbl.Append([]string{
			strconv.Itoa(instr.Offset),
			instr.Name,
			strings.Join(operands, " "),
			instr.Info,
		})
	}
	return tbl.Render()
}
