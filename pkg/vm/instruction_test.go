package vm

import (
	"errors"
	"testing"
)

func TestInstruction_Decode(t *testing.T) {
	tests := []struct {
		word  int64
		op    Opcode
		modes [NumOperandSlots]Mode
	}{
		{1, OpAdd, [3]Mode{ModePosition, ModePosition, ModePosition}},
		{1002, OpMultiply, [3]Mode{ModePosition, ModeImmediate, ModePosition}},
		{1101, OpAdd, [3]Mode{ModeImmediate, ModeImmediate, ModePosition}},
		{203, OpInput, [3]Mode{ModeRelative, ModePosition, ModePosition}},
		{104, OpOutput, [3]Mode{ModeImmediate, ModePosition, ModePosition}},
		{21108, OpEqual, [3]Mode{ModeImmediate, ModeImmediate, ModeRelative}},
		{1205, OpJumpIfTrue, [3]Mode{ModeRelative, ModeImmediate, ModePosition}},
		{109, OpAdjustRelativeBase, [3]Mode{ModeImmediate, ModePosition, ModePosition}},
		{99, OpHalt, [3]Mode{ModePosition, ModePosition, ModePosition}},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			d, err := Decode(tt.word)
			if err != nil {
				t.Fatalf("Decode(%d) failed: %v", tt.word, err)
			}
			if d.Op != tt.op {
				t.Errorf("expected opcode %v, got %v", tt.op, d.Op)
			}
			if d.Modes != tt.modes {
				t.Errorf("expected modes %v, got %v", tt.modes, d.Modes)
			}
		})
	}
}

func TestInstruction_UnknownOpcodeIsHalt(t *testing.T) {
	for _, word := range []int64{0, 10, 42, 98, 1150, -1} {
		d, err := Decode(word)
		if err != nil {
			t.Fatalf("Decode(%d) failed: %v", word, err)
		}
		if d.Op != OpHalt {
			t.Errorf("Decode(%d): expected HLT, got %v", word, d.Op)
		}
	}
}

func TestInstruction_InvalidMode(t *testing.T) {
	tests := []struct {
		word  int64
		slot  int
		digit int64
	}{
		{301, 0, 3},
		{9002, 1, 9},
		{41101, 2, 4},
		{-301, 0, -3},
	}

	for _, tt := range tests {
		_, err := Instruction(tt.word).Decode(12)
		var decErr *DecodeError
		if !errors.As(err, &decErr) {
			t.Fatalf("Decode(%d): expected DecodeError, got %v", tt.word, err)
		}
		if decErr.Slot != tt.slot || decErr.Digit != tt.digit || decErr.IP != 12 {
			t.Errorf("Decode(%d): unexpected error fields %+v", tt.word, *decErr)
		}
	}
}

func TestInstruction_EncodeRoundTrip(t *testing.T) {
	tests := []struct {
		op    Opcode
		modes []Mode
		word  Instruction
	}{
		{OpAdd, nil, 1},
		{OpMultiply, []Mode{ModeImmediate, ModeImmediate}, 1102},
		{OpInput, []Mode{ModeRelative}, 203},
		{OpLessThan, []Mode{ModeRelative, ModeImmediate, ModeRelative}, 21207},
		{OpHalt, nil, 99},
	}

	for _, tt := range tests {
		word := EncodeInstruction(tt.op, tt.modes...)
		if word != tt.word {
			t.Errorf("EncodeInstruction(%v, %v) = %d, want %d", tt.op, tt.modes, word, tt.word)
		}
		d, err := word.Decode(0)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if d.Op != tt.op {
			t.Errorf("round trip opcode: expected %v, got %v", tt.op, d.Op)
		}
		for i, m := range tt.modes {
			if d.Modes[i] != m {
				t.Errorf("round trip mode %d: expected %v, got %v", i, m, d.Modes[i])
			}
		}
	}
}

func TestOpcode_Arity(t *testing.T) {
	tests := []struct {
		op     Opcode
		arity  int
		writes bool
	}{
		{OpAdd, 3, true},
		{OpMultiply, 3, true},
		{OpInput, 1, true},
		{OpOutput, 1, false},
		{OpJumpIfTrue, 2, false},
		{OpJumpIfFalse, 2, false},
		{OpLessThan, 3, true},
		{OpEqual, 3, true},
		{OpAdjustRelativeBase, 1, false},
		{OpHalt, 0, false},
	}

	for _, tt := range tests {
		if got := tt.op.Arity(); got != tt.arity {
			t.Errorf("%v.Arity() = %d, want %d", tt.op, got, tt.arity)
		}
		if got := tt.op.Writes(); got != tt.writes {
			t.Errorf("%v.Writes() = %v, want %v", tt.op, got, tt.writes)
		}
	}
}

func TestOpcodeFromString(t *testing.T) {
	for _, name := range []string{"add", "MUL", "in", "Out", "jt", "jf", "lt", "eq", "arb", "hlt"} {
		op, ok := OpcodeFromString(name)
		if !ok {
			t.Errorf("expected %q to be a known mnemonic", name)
			continue
		}
		back, _ := OpcodeFromString(op.String())
		if back != op {
			t.Errorf("%q: String() %q does not map back", name, op.String())
		}
	}
	if _, ok := OpcodeFromString("nop"); ok {
		t.Error("expected nop to be unknown")
	}
}
