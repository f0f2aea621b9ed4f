// Package loader reads Intcode programs from text, JSON, Parquet and
// bytecode files.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akhildatla/intcode/pkg/vm"
)

// LoadFile loads a program, choosing the format from the file extension:
// .json, .parquet, .icbc (bytecode image); anything else is program text.
func LoadFile(path string) (vm.Program, error) {
	var (
		program vm.Program
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		program, err = LoadJSON(path)
	case ".parquet":
		program, err = LoadParquet(path)
	case ".icbc":
		program, err = LoadBytecode(path)
	default:
		program, err = LoadText(path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return program, nil
}

// LoadBytecode reads a serialized bytecode image.
func LoadBytecode(path string) (vm.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return vm.DeserializeProgram(data)
}
