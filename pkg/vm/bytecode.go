package vm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Bytecode file format:
// - Magic: "ICBC" (4 bytes)
// - Version: uint16
// - NumWords: uint32
// - Words: []int64 (little endian)

const (
	BytecodeMagic   = "ICBC"
	BytecodeVersion = 1
)

var (
	ErrInvalidMagic   = errors.New("invalid bytecode magic")
	ErrInvalidVersion = errors.New("unsupported bytecode version")
)

// SerializeProgram serializes a Program to bytecode format.
func SerializeProgram(p Program) ([]byte, error) {
	buf := new(bytes.Buffer)

	// Write magic
	buf.WriteString(BytecodeMagic)

	// Write version
	if err := binary.Write(buf, binary.LittleEndian, uint16(BytecodeVersion)); err != nil {
		return nil, fmt.Errorf("writing version: %w", err)
	}

	// Write words
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(p))); err != nil {
		return nil, fmt.Errorf("writing word count: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, []int64(p)); err != nil {
		return nil, fmt.Errorf("writing words: %w", err)
	}

	return buf.Bytes(), nil
}

// DeserializeProgram deserializes bytecode to a Program.
func DeserializeProgram(data []byte) (Program, error) {
	buf := bytes.NewReader(data)

	// Read and verify magic
	magic := make([]byte, 4)
	if _, err := io.ReadFull(buf, magic); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if string(magic) != BytecodeMagic {
		return nil, ErrInvalidMagic
	}

	// Read and verify version
	var version uint16
	if err := binary.Read(buf, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version != BytecodeVersion {
		return nil, ErrInvalidVersion
	}

	// Read words
	var numWords uint32
	if err := binary.Read(buf, binary.LittleEndian, &numWords); err != nil {
		return nil, fmt.Errorf("reading word count: %w", err)
	}
	if int64(numWords)*8 > int64(buf.Len()) {
		return nil, fmt.Errorf("reading words: %w", io.ErrUnexpectedEOF)
	}
	words := make([]int64, numWords)
	if err := binary.Read(buf, binary.LittleEndian, words); err != nil {
		return nil, fmt.Errorf("reading words: %w", err)
	}

	return Program(words), nil
}

// Disassemble converts a Program back to assembly source code.
// Words that do not form a canonical instruction are emitted as .data.
func Disassemble(p Program) string {
	var buf bytes.Buffer

	buf.WriteString("; Disassembled from Intcode\n")
	buf.WriteString(fmt.Sprintf("; %d words\n\n", len(p)))

	for addr := 0; addr < len(p); {
		text, size := disassembleAt(p, addr)
		buf.WriteString(fmt.Sprintf("%04d: %s\n", addr, text))
		addr += size
	}

	return buf.String()
}

// disassembleAt renders the instruction at addr and returns its size in
// words. Anything that would not re-encode to the same words is data.
func disassembleAt(p Program, addr int) (string, int) {
	word := p[addr]
	if word < 0 {
		return formatData(word), 1
	}
	raw := Instruction(word).RawOpcode()
	op := Opcode(raw)
	if !op.Valid() {
		return fmt.Sprintf("%s ; unknown opcode %d", formatData(word), raw), 1
	}
	inst, err := Instruction(word).Decode(int64(addr))
	if err != nil {
		return formatData(word), 1
	}
	arity := op.Arity()
	if addr+arity >= len(p) {
		return formatData(word), 1
	}
	if EncodeInstruction(op, inst.Modes[:arity]...) != Instruction(word) {
		return formatData(word), 1
	}
	if op.Writes() && inst.Modes[arity-1] == ModeImmediate {
		return formatData(word), 1
	}

	operands := make([]string, arity)
	for i := range arity {
		operands[i] = formatOperand(inst.Modes[i], p[addr+1+i])
	}
	if arity == 0 {
		return op.String(), 1
	}
	return fmt.Sprintf("%-4s %s", op.String(), strings.Join(operands, ", ")), arity + 1
}

func formatData(word int64) string {
	return fmt.Sprintf("%-4s %d", ".DATA", word)
}

func formatOperand(m Mode, v int64) string {
	switch m {
	case ModeImmediate:
		return fmt.Sprintf("#%d", v)
	case ModeRelative:
		if v < 0 {
			return fmt.Sprintf("[rb%d]", v)
		}
		return fmt.Sprintf("[rb+%d]", v)
	default:
		return fmt.Sprintf("[%d]", v)
	}
}
