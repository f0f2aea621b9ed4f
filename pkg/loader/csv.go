package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/akhildatla/intcode/pkg/vm"
)

// Error definitions
var (
	ErrEmptyProgram   = errors.New("empty program")
	ErrMalformedToken = errors.New("malformed token")
)

// LoadError reports a program word that is not a base-10 integer.
type LoadError struct {
	Index int    // 0-based word index
	Token string // token as it appeared in the input
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load error: word %d %q: %v", e.Index, e.Token, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Parse reads program text: one line of comma-separated signed integers.
// Whitespace around each token is ignored. Empty or non-integer tokens are
// errors, never zeros.
func Parse(text string) (vm.Program, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyProgram
	}

	tokens := strings.Split(text, ",")
	program := make(vm.Program, len(tokens))
	for i, tok := range tokens {
		trimmed := strings.TrimSpace(tok)
		if trimmed == "" {
			return nil, &LoadError{Index: i, Token: tok, Err: ErrMalformedToken}
		}
		v, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return nil, &LoadError{Index: i, Token: trimmed, Err: fmt.Errorf("%w: out of int64 range", ErrMalformedToken)}
			}
			return nil, &LoadError{Index: i, Token: trimmed, Err: ErrMalformedToken}
		}
		program[i] = v
	}
	return program, nil
}

// Read parses program text from r.
func Read(r io.Reader) (vm.Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// LoadText reads a program text file.
func LoadText(path string) (vm.Program, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file)
}
