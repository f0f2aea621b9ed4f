package loader

import (
	"errors"
	"testing"

	"github.com/akhildatla/intcode/internal/testutil"
)

func TestLoadJSON_Simple(t *testing.T) {
	path := testutil.TempFile(t, `[1101, 100, -1, 4, 0]`, ".json")

	program, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	testutil.AssertWords(t, []int64{1101, 100, -1, 4, 0}, program)
}

func TestLoadJSON_ViaLoadFile(t *testing.T) {
	path := testutil.TempFile(t, `[104, 1125899906842624, 99]`, ".JSON")

	program, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	testutil.AssertWords(t, []int64{104, 1125899906842624, 99}, program)
}

func TestLoadJSON_EmptyFile(t *testing.T) {
	path := testutil.TempFile(t, "", ".json")

	if _, err := LoadJSON(path); !errors.Is(err, ErrEmptyJSON) {
		t.Errorf("expected ErrEmptyJSON, got %v", err)
	}
}

func TestLoadJSON_EmptyArray(t *testing.T) {
	path := testutil.TempFile(t, "[]", ".json")

	if _, err := LoadJSON(path); !errors.Is(err, ErrEmptyJSON) {
		t.Errorf("expected ErrEmptyJSON, got %v", err)
	}
}

func TestLoadJSON_Invalid(t *testing.T) {
	for _, content := range []string{
		`{"a": 1}`,
		`[1, 2.5]`,
		`[1, "2"]`,
		`[1, 2`,
	} {
		if _, err := ParseJSON([]byte(content)); !errors.Is(err, ErrInvalidJSON) {
			t.Errorf("ParseJSON(%s): expected ErrInvalidJSON, got %v", content, err)
		}
	}
}

func TestLoadJSON_NotFound(t *testing.T) {
	if _, err := LoadJSON("/nonexistent/prog.json"); err == nil {
		t.Error("expected error for missing file")
	}
}
