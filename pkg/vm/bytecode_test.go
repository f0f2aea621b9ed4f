package vm

import (
	"errors"
	"strings"
	"testing"

	"github.com/akhildatla/intcode/internal/testutil"
)

func TestSerializeDeserialize_Simple(t *testing.T) {
	program := Program{1101, -5, 1125899906842624, 0, 99}

	data, err := SerializeProgram(program)
	if err != nil {
		t.Fatalf("SerializeProgram failed: %v", err)
	}

	// Verify magic header
	if string(data[:4]) != BytecodeMagic {
		t.Errorf("expected magic %q, got %q", BytecodeMagic, string(data[:4]))
	}
	if len(data) != 4+2+4+8*len(program) {
		t.Errorf("unexpected encoded size %d", len(data))
	}

	restored, err := DeserializeProgram(data)
	if err != nil {
		t.Fatalf("DeserializeProgram failed: %v", err)
	}
	testutil.AssertWords(t, program, restored)
}

func TestSerializeDeserialize_Empty(t *testing.T) {
	data, err := SerializeProgram(Program{})
	if err != nil {
		t.Fatalf("SerializeProgram failed: %v", err)
	}
	restored, err := DeserializeProgram(data)
	if err != nil {
		t.Fatalf("DeserializeProgram failed: %v", err)
	}
	if len(restored) != 0 {
		t.Errorf("expected empty program, got %v", restored)
	}
}

func TestDeserialize_InvalidMagic(t *testing.T) {
	_, err := DeserializeProgram([]byte("DFBC\x01\x00\x00\x00\x00\x00"))
	if !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestDeserialize_InvalidVersion(t *testing.T) {
	_, err := DeserializeProgram([]byte("ICBC\x09\x00\x00\x00\x00\x00"))
	if !errors.Is(err, ErrInvalidVersion) {
		t.Errorf("expected ErrInvalidVersion, got %v", err)
	}
}

func TestDeserialize_Truncated(t *testing.T) {
	data, err := SerializeProgram(Program{1, 2, 3})
	if err != nil {
		t.Fatalf("SerializeProgram failed: %v", err)
	}
	for _, n := range []int{2, 5, 9, len(data) - 1} {
		if _, err := DeserializeProgram(data[:n]); err == nil {
			t.Errorf("expected error for %d-byte input", n)
		}
	}
}

func TestDisassemble(t *testing.T) {
	asm := Disassemble(Program{1002, 4, 3, 4, 33, 109, -2, 204, 5, 99})

	for _, want := range []string{
		"; 10 words",
		"0000: MUL  [4], #3, [4]",
		"0004: .DATA 33 ; unknown opcode 33",
		"0005: ARB  #-2",
		"0007: OUT  [rb+5]",
		"0009: HLT",
	} {
		if !strings.Contains(asm, want) {
			t.Errorf("disassembly missing %q:\n%s", want, asm)
		}
	}
}

func TestDisassemble_NonCanonicalIsData(t *testing.T) {
	tests := []struct {
		name    string
		program Program
	}{
		{"unused mode digit", Program{1104, 5, 99}},
		{"immediate destination", Program{11101, 1, 1, 0}},
		{"truncated operands", Program{1, 0}},
		{"negative word", Program{-1}},
		{"bad mode", Program{301, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asm := Disassemble(tt.program)
			if !strings.Contains(asm, "0000: .DATA ") {
				t.Errorf("expected first word as data:\n%s", asm)
			}
		})
	}
}
