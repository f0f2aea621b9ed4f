// Package testutil provides testing utilities for Intcode tests.
package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Well-known programs used across package tests.
const (
	// Quine outputs a copy of itself.
	Quine = "109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99"

	// LargeMultiply outputs a 16-digit number.
	LargeMultiply = "1102,34915192,34915192,7,4,7,99"

	// LargeEcho outputs 1125899906842624.
	LargeEcho = "104,1125899906842624,99"

	// CompareToEight outputs 999 below 8, 1000 at 8 and 1001 above 8.
	CompareToEight = "3,21,1008,21,8,20,1005,20,22,107,8,21,20,1006,20,31," +
		"1106,0,36,98,0,0,1002,21,125,20,4,20,1105,1,46,104," +
		"999,1105,1,46,1101,1000,1,20,4,20,1105,1,46,98,99"

	// AddMultiply leaves 3500 at address 0. With address 1 and 2 patched,
	// the first pair that still yields 3500 is noun 2, verb 70.
	AddMultiply = "1,9,10,3,2,3,11,0,99,30,40,50"

	// SeriesAmplifier has its best single-pass signal 43210 at phases 4,3,2,1,0.
	SeriesAmplifier = "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0"

	// SeriesAmplifier2 has its best single-pass signal 54321 at phases 0,1,2,3,4.
	SeriesAmplifier2 = "3,23,3,24,1002,24,10,24,1002,23,-1,23,101,5,23,23,1,24,23,23,4,23,99,0,0"

	// FeedbackAmplifier has its best feedback signal 139629729 at phases 9,8,7,6,5.
	FeedbackAmplifier = "3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26,27,4,27,1001,28,-1,28,1005,28,6,99,0,0,5"

	// FeedbackAmplifier2 has its best feedback signal 18216 at phases 9,7,8,5,6.
	FeedbackAmplifier2 = "3,52,1001,52,-5,52,3,53,1,52,56,54,1007,54,5,55,1005,55,26,1001,54,-5,54,1105,1,12,1," +
		"53,54,53,1008,54,0,55,1001,55,1,55,2,53,55,53,4,53,1001,56,-1,56,1005,56,6,99,0,0,0,0,10"
)

// QuineWords returns the quine as a slice.
func QuineWords() []int64 {
	return []int64{109, 1, 204, -1, 1001, 100, 1, 100, 1008, 100, 16, 101, 1006, 101, 0, 99}
}

// Words parses a comma-separated program, failing the test on bad input.
func Words(t *testing.T, text string) []int64 {
	t.Helper()
	parts := strings.Split(strings.TrimSpace(text), ",")
	words := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			t.Fatalf("bad program word %d %q: %v", i, p, err)
		}
		words[i] = v
	}
	return words
}

// TempFile creates a temporary file with the given content and extension.
// The file is automatically cleaned up when the test finishes.
func TempFile(t *testing.T, content, ext string) string {
	t.Helper()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test"+ext)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// TempBytes creates a temporary file with binary content.
func TempBytes(t *testing.T, content []byte, ext string) string {
	t.Helper()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test"+ext)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// AssertInt64Equal checks if two int64 values are equal.
func AssertInt64Equal(t *testing.T, expected, actual int64) {
	t.Helper()
	if expected != actual {
		t.Errorf("expected %d, got %d", expected, actual)
	}
}

// AssertWords checks that two word sequences are identical.
func AssertWords(t *testing.T, expected, actual []int64) {
	t.Helper()
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
}
