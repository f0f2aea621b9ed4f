package vm

import "fmt"

// Mode is an operand addressing mode.
type Mode uint8

const (
	ModePosition  Mode = 0 // operand is an address
	ModeImmediate Mode = 1 // operand is the value
	ModeRelative  Mode = 2 // operand is an offset from the relative base
)

// String returns the string representation of a mode.
func (m Mode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeImmediate:
		return "immediate"
	case ModeRelative:
		return "relative"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Instruction is a raw instruction word as stored in memory.
//
// Layout (decimal digits, least significant first):
//
//	┌────────┬────────┬────────┬────────┐
//	│ mode 3 │ mode 2 │ mode 1 │ opcode │
//	│ 10^4   │ 10^3   │ 10^2   │ 10^1-0 │
//	└────────┴────────┴────────┴────────┘
type Instruction int64

// NumOperandSlots is the number of mode digits carried by an instruction.
const NumOperandSlots = 3

// Decoded is an instruction word split into its opcode and operand modes.
type Decoded struct {
	Op    Opcode
	Modes [NumOperandSlots]Mode
}

// DecodeError reports a mode digit outside {0, 1, 2}.
type DecodeError struct {
	IP    int64 // address of the instruction word
	Word  int64
	Slot  int   // 0-based operand slot
	Digit int64 // offending digit
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at %d: word %d has invalid mode %d for operand %d",
		e.IP, e.Word, e.Digit, e.Slot+1)
}

// Opcode returns the opcode (word mod 100). Opcodes outside the instruction
// set decode as OpHalt.
func (i Instruction) Opcode() Opcode {
	op := Opcode(int64(i) % 100)
	if !op.Valid() {
		return OpHalt
	}
	return op
}

// RawOpcode returns word mod 100 without the halt fallback.
func (i Instruction) RawOpcode() int64 {
	return int64(i) % 100
}

// modeDigit returns the mode digit for the 0-based operand slot.
func (i Instruction) modeDigit(slot int) int64 {
	div := int64(100)
	for range slot {
		div *= 10
	}
	return (int64(i) / div) % 10
}

// Decode splits the word into opcode and modes. The ip is only used to
// annotate errors.
func (i Instruction) Decode(ip int64) (Decoded, error) {
	d := Decoded{Op: i.Opcode()}
	for slot := range NumOperandSlots {
		digit := i.modeDigit(slot)
		switch digit {
		case int64(ModePosition), int64(ModeImmediate), int64(ModeRelative):
			d.Modes[slot] = Mode(digit)
		default:
			return Decoded{}, &DecodeError{IP: ip, Word: int64(i), Slot: slot, Digit: digit}
		}
	}
	return d, nil
}

// Decode decodes a single instruction word found at address 0.
func Decode(word int64) (Decoded, error) {
	return Instruction(word).Decode(0)
}

// EncodeInstruction builds an instruction word from an opcode and up to three
// operand modes. Missing modes default to ModePosition.
func EncodeInstruction(op Opcode, modes ...Mode) Instruction {
	word := int64(op)
	mul := int64(100)
	for i, m := range modes {
		if i >= NumOperandSlots {
			break
		}
		word += int64(m) * mul
		mul *= 10
	}
	return Instruction(word)
}

// String returns a human-readable representation of the instruction.
func (i Instruction) String() string {
	d, err := i.Decode(0)
	if err != nil {
		return fmt.Sprintf("?%d", int64(i))
	}
	return d.Op.String()
}
