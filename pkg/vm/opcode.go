package vm

import "strings"

// Opcode represents an Intcode operation, the low two decimal digits of an
// instruction word.
type Opcode int64

const (
	OpAdd                Opcode = 1  // [c] = a + b
	OpMultiply           Opcode = 2  // [c] = a * b
	OpInput              Opcode = 3  // [a] = next input
	OpOutput             Opcode = 4  // emit a
	OpJumpIfTrue         Opcode = 5  // if a != 0 { ip = b }
	OpJumpIfFalse        Opcode = 6  // if a == 0 { ip = b }
	OpLessThan           Opcode = 7  // [c] = a < b
	OpEqual              Opcode = 8  // [c] = a == b
	OpAdjustRelativeBase Opcode = 9  // rb += a
	OpHalt               Opcode = 99 // stop
)

// String returns the assembler mnemonic of an opcode.
func (o Opcode) String() string {
	switch o {
	case OpAdd:
		return "ADD"
	case OpMultiply:
		return "MUL"
	case OpInput:
		return "IN"
	case OpOutput:
		return "OUT"
	case OpJumpIfTrue:
		return "JT"
	case OpJumpIfFalse:
		return "JF"
	case OpLessThan:
		return "LT"
	case OpEqual:
		return "EQ"
	case OpAdjustRelativeBase:
		return "ARB"
	case OpHalt:
		return "HLT"
	default:
		return "UNKNOWN"
	}
}

// Arity returns the number of operands the opcode consumes.
func (o Opcode) Arity() int {
	switch o {
	case OpAdd, OpMultiply, OpLessThan, OpEqual:
		return 3
	case OpJumpIfTrue, OpJumpIfFalse:
		return 2
	case OpInput, OpOutput, OpAdjustRelativeBase:
		return 1
	default:
		return 0
	}
}

// Writes reports whether the last operand of the opcode is a destination.
func (o Opcode) Writes() bool {
	switch o {
	case OpAdd, OpMultiply, OpInput, OpLessThan, OpEqual:
		return true
	default:
		return false
	}
}

// Valid reports whether o is part of the instruction set.
func (o Opcode) Valid() bool {
	return o.String() != "UNKNOWN"
}

// opcodeNames maps mnemonics to opcodes, including long-form aliases.
var opcodeNames = map[string]Opcode{
	"ADD":      OpAdd,
	"MUL":      OpMultiply,
	"MULTIPLY": OpMultiply,
	"IN":       OpInput,
	"INPUT":    OpInput,
	"OUT":      OpOutput,
	"OUTPUT":   OpOutput,
	"JT":       OpJumpIfTrue,
	"JNZ":      OpJumpIfTrue,
	"JF":       OpJumpIfFalse,
	"JZ":       OpJumpIfFalse,
	"LT":       OpLessThan,
	"EQ":       OpEqual,
	"ARB":      OpAdjustRelativeBase,
	"RBO":      OpAdjustRelativeBase,
	"HLT":      OpHalt,
	"HALT":     OpHalt,
}

// OpcodeFromString returns the opcode for a mnemonic (case-insensitive).
func OpcodeFromString(s string) (Opcode, bool) {
	op, ok := opcodeNames[strings.ToUpper(s)]
	return op, ok
}
