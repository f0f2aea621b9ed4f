package loader

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/akhildatla/intcode/pkg/vm"
)

// JSON-specific errors
var (
	ErrEmptyJSON   = errors.New("empty JSON file")
	ErrInvalidJSON = errors.New("invalid JSON format")
)

// LoadJSON reads a JSON file containing a flat array of integers:
// [1, 0, 0, 3, 99]
func LoadJSON(path string) (vm.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, ErrEmptyJSON
	}

	return ParseJSON(data)
}

// ParseJSON decodes a JSON array of integers.
func ParseJSON(data []byte) (vm.Program, error) {
	var words []int64
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if len(words) == 0 {
		return nil, ErrEmptyJSON
	}
	return vm.Program(words), nil
}
