package vm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrInvalidInput is returned when an interactive input line is not an integer.
var ErrInvalidInput = errors.New("invalid input")

// InputSource supplies values to an Input instruction once the input queue
// and the output fallback are exhausted. Interactive mode only.
type InputSource interface {
	ReadInput() (int64, error)
}

// InputFunc adapts a function to the InputSource interface.
type InputFunc func() (int64, error)

// ReadInput calls f.
func (f InputFunc) ReadInput() (int64, error) {
	return f()
}

// LineInput reads one integer per line, printing a prompt before each read.
// Blank lines are skipped; any other non-integer line is an error.
type LineInput struct {
	scanner *bufio.Scanner
	out     io.Writer
	prompt  string
}

// NewLineInput creates a LineInput over an existing scanner, so that a
// console can share its scanner with the machine.
func NewLineInput(scanner *bufio.Scanner, out io.Writer, prompt string) *LineInput {
	return &LineInput{scanner: scanner, out: out, prompt: prompt}
}

// NewReaderInput creates a LineInput reading from r.
func NewReaderInput(r io.Reader, out io.Writer, prompt string) *LineInput {
	return NewLineInput(bufio.NewScanner(r), out, prompt)
}

// ReadInput blocks until a line is available.
func (l *LineInput) ReadInput() (int64, error) {
	for {
		if l.out != nil && l.prompt != "" {
			fmt.Fprint(l.out, l.prompt)
		}
		if !l.scanner.Scan() {
			if err := l.scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		line := strings.TrimSpace(l.scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidInput, line)
		}
		return v, nil
	}
}
