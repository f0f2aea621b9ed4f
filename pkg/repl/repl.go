// Package repl implements the interactive Intcode console.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/akhildatla/intcode/pkg/amp"
	"github.com/akhildatla/intcode/pkg/compiler"
	"github.com/akhildatla/intcode/pkg/loader"
	"github.com/akhildatla/intcode/pkg/vm"
)

const (
	promptText  = "intcode> "
	promptASM   = "asm> "
	promptCont  = "...> "
	promptInput = "input> "
)

// Mode represents the REPL input mode.
type Mode int

const (
	ModeText Mode = iota // lines are comma-separated program text
	ModeASM              // lines are assembly
)

// REPL provides an interactive Read-Eval-Print Loop.
type REPL struct {
	mode        Mode
	program     vm.Program
	vm          *vm.VM
	interactive bool
	maxSteps    int64
	history     []string
	multiline   strings.Builder
	inMultiline bool
	done        bool
}

// New creates a new REPL instance.
func New() *REPL {
	return &REPL{
		mode:        ModeText,
		vm:          vm.NewVM(),
		interactive: true,
		history:     []string{},
	}
}

// SetMode sets the REPL input mode.
func (r *REPL) SetMode(mode Mode) {
	r.mode = mode
}

// SetMaxSteps caps instructions per run. Zero means unlimited.
func (r *REPL) SetMaxSteps(n int64) {
	r.maxSteps = n
	r.vm.SetMaxSteps(n)
}

// SetProgram loads program as the current program.
func (r *REPL) SetProgram(program vm.Program) error {
	r.program = program.Clone()
	return r.vm.Load(r.program)
}

// Start starts the REPL loop. Programs that execute Input while the
// queue is empty read their values from the same input stream.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	r.vm.SetInputSource(sourceFunc(func() vm.InputSource {
		if !r.interactive {
			return nil
		}
		return vm.NewLineInput(scanner, out, promptInput)
	}))

	fmt.Fprintln(out, "Intcode REPL")
	fmt.Fprintln(out, "Type 'help' for available commands, 'quit' to exit")
	fmt.Fprintln(out)

	for !r.done {
		if r.inMultiline {
			fmt.Fprint(out, promptCont)
		} else if r.mode == ModeText {
			fmt.Fprint(out, promptText)
		} else {
			fmt.Fprint(out, promptASM)
		}

		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		// Handle multiline input
		if r.inMultiline {
			if line == "" {
				// End multiline input
				r.inMultiline = false
				input := r.multiline.String()
				r.multiline.Reset()
				r.eval(input, out)
			} else {
				r.multiline.WriteString(line)
				r.multiline.WriteString("\n")
			}
			continue
		}

		// Check for special commands
		if handled := r.handleCommand(line, out); handled {
			continue
		}

		// Check for multiline start (ends with \)
		if strings.HasSuffix(line, "\\") {
			r.inMultiline = true
			r.multiline.WriteString(strings.TrimSuffix(line, "\\"))
			r.multiline.WriteString("\n")
			continue
		}

		r.eval(line, out)
	}
}

// sourceFunc defers the choice of input source to read time, so toggling
// interactive input takes effect without reconfiguring the machine.
type sourceFunc func() vm.InputSource

func (f sourceFunc) ReadInput() (int64, error) {
	src := f()
	if src == nil {
		return 0, vm.ErrNoInput
	}
	return src.ReadInput()
}

func (r *REPL) handleCommand(line string, out io.Writer) bool {
	trimmed := strings.TrimSpace(line)
	parts := strings.Fields(trimmed)

	if len(parts) == 0 {
		return true
	}

	switch parts[0] {
	case "quit", "exit", "q":
		fmt.Fprintln(out, "Goodbye!")
		r.done = true
		return true

	case "help", "h", "?":
		r.printHelp(out)
		return true

	case "mode":
		if len(parts) > 1 {
			switch parts[1] {
			case "text":
				r.mode = ModeText
				fmt.Fprintln(out, "Switched to program text mode")
			case "asm":
				r.mode = ModeASM
				fmt.Fprintln(out, "Switched to assembly mode")
			default:
				fmt.Fprintln(out, "Unknown mode. Use 'text' or 'asm'")
			}
		} else {
			if r.mode == ModeText {
				fmt.Fprintln(out, "Current mode: TEXT")
			} else {
				fmt.Fprintln(out, "Current mode: ASM")
			}
		}
		return true

	case "load":
		if len(parts) > 1 {
			r.loadFile(parts[1], out)
		} else {
			fmt.Fprintln(out, "Usage: load <path>")
		}
		return true

	case "run":
		values, err := parseValues(parts[1:])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return true
		}
		if !r.requireProgram(out) {
			return true
		}
		r.reset()
		r.vm.PushInput(values...)
		r.resume(out)
		return true

	case "input":
		values, err := parseValues(parts[1:])
		if err != nil || len(values) == 0 {
			fmt.Fprintln(out, "Usage: input <value>...")
			return true
		}
		if !r.requireProgram(out) {
			return true
		}
		r.vm.PushInput(values...)
		r.resume(out)
		return true

	case "interactive":
		if len(parts) > 1 {
			r.interactive = parts[1] == "on"
		}
		if r.interactive {
			fmt.Fprintln(out, "Interactive input: on")
		} else {
			fmt.Fprintln(out, "Interactive input: off")
		}
		return true

	case "amp":
		phases, err := parseValues(parts[1:])
		if err != nil || len(phases) == 0 {
			fmt.Fprintln(out, "Usage: amp <phase>...")
			return true
		}
		if !r.requireProgram(out) {
			return true
		}
		r.search(phases, out)
		return true

	case "mem":
		r.printMemory(parts[1:], out)
		return true

	case "disasm":
		if !r.requireProgram(out) {
			return true
		}
		fmt.Fprint(out, vm.Disassemble(r.vm.Memory().Snapshot()))
		return true

	case "state":
		r.printState(out)
		return true

	case "outputs":
		fmt.Fprintf(out, "=> %s\n", formatValues(r.vm.Outputs()))
		return true

	case "reset":
		if r.requireProgram(out) {
			r.reset()
			fmt.Fprintln(out, "Machine reset")
		}
		return true

	case "history":
		for i, cmd := range r.history {
			fmt.Fprintf(out, "%3d: %s\n", i+1, cmd)
		}
		return true
	}

	return false
}

// eval loads input as the current program, as text or assembly
// depending on the mode.
func (r *REPL) eval(input string, out io.Writer) {
	if strings.TrimSpace(input) == "" {
		return
	}

	r.history = append(r.history, input)

	var (
		program vm.Program
		err     error
	)
	if r.mode == ModeText {
		program, err = loader.Parse(input)
	} else {
		program, err = compiler.Compile(input)
	}
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	if err := r.SetProgram(program); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Loaded %d words\n", len(program))
}

func (r *REPL) loadFile(path string, out io.Writer) {
	program, err := loader.LoadFile(path)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	if err := r.SetProgram(program); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Loaded %d words from %s\n", len(program), path)
}

func (r *REPL) requireProgram(out io.Writer) bool {
	if r.program == nil {
		fmt.Fprintln(out, "No program loaded")
		return false
	}
	return true
}

func (r *REPL) reset() {
	// program length was accepted by the machine on first load
	_ = r.vm.Load(r.program)
}

// resume runs the machine until it halts, fails, or waits for input, and
// prints the outputs produced by this run.
func (r *REPL) resume(out io.Writer) {
	before := len(r.vm.Outputs())
	status, err := r.vm.Run()

	outputs := r.vm.Outputs()
	if len(outputs) > before {
		fmt.Fprintf(out, "=> %s\n", formatValues(outputs[before:]))
	}

	switch {
	case errors.Is(err, vm.ErrNoInput):
		fmt.Fprintln(out, "Waiting for input; use 'input <value>'")
	case err != nil:
		fmt.Fprintf(out, "Error: %v\n", err)
	case status == vm.StatusHalted:
		fmt.Fprintf(out, "Halted after %d steps\n", r.vm.Steps())
	}
}

func (r *REPL) search(phases []int64, out io.Writer) {
	loop := amp.NewLoop(r.program, amp.WithMaxSteps(r.maxSteps))
	res, err := loop.Search(context.Background(), phases)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "=> %d (phases %s, %d orderings)\n",
		res.Best.Signal, res.Best.PhaseString(), len(res.Results))
}

func (r *REPL) printMemory(args []string, out io.Writer) {
	from, to := int64(0), int64(r.vm.Memory().Len())
	if len(args) > 0 {
		v, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintln(out, "Usage: mem [from [to]]")
			return
		}
		from = v
	}
	if len(args) > 1 {
		v, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			fmt.Fprintln(out, "Usage: mem [from [to]]")
			return
		}
		to = v
	}

	cells := r.vm.Memory().Slice(from, to)
	for i := 0; i < len(cells); i += 8 {
		end := min(i+8, len(cells))
		fmt.Fprintf(out, "%04d: %s\n", from+int64(i), formatValues(cells[i:end]))
	}
}

func (r *REPL) printState(out io.Writer) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Register", "Value"})
	table.Append([]string{"status", r.vm.Status().String()})
	table.Append([]string{"ip", strconv.FormatInt(r.vm.IP(), 10)})
	table.Append([]string{"rb", strconv.FormatInt(r.vm.RelativeBase(), 10)})
	table.Append([]string{"steps", strconv.FormatInt(r.vm.Steps(), 10)})
	table.Append([]string{"memory", strconv.Itoa(r.vm.Memory().Len())})
	table.Append([]string{"inputs", strconv.Itoa(r.vm.PendingInputs())})
	table.Append([]string{"outputs", strconv.Itoa(len(r.vm.Outputs()))})
	if last, ok := r.vm.LastOutput(); ok {
		table.Append([]string{"last output", strconv.FormatInt(last, 10)})
	}
	if err := r.vm.Err(); err != nil {
		table.Append([]string{"fault", err.Error()})
	}
	table.Render()
}

func (r *REPL) printHelp(out io.Writer) {
	help := `
Intcode REPL Commands:
  help, h, ?         Show this help message
  quit, exit, q      Exit the REPL
  mode [text|asm]    Show or set input mode
  load <path>        Load a program file (text, .json, .parquet, .icbc)
  run [values...]    Restart the program with the given inputs queued
  input <values...>  Queue inputs and resume a waiting program
  interactive on|off Prompt for input when the queue is empty
  amp <phases...>    Search feedback-loop phase orderings
  mem [from [to]]    Show memory cells
  disasm             Disassemble current memory
  state              Show machine registers and status
  outputs            Show all outputs of the current run
  reset              Reload the program
  history            Show loaded programs

Program text example:
  3,9,8,9,10,9,4,9,99,-1,8

Assembly example:
  in  [rb]
  out [rb]
  hlt

Tips:
  - End a line with \ for multiline input
  - Press Enter twice to execute multiline input
`
	fmt.Fprint(out, help)
}

func parseValues(args []string) ([]int64, error) {
	var values []int64
	for _, a := range args {
		for _, tok := range strings.Split(a, ",") {
			if tok == "" {
				continue
			}
			v, err := strconv.ParseInt(tok, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid value %q", tok)
			}
			values = append(values, v)
		}
	}
	return values, nil
}

func formatValues(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ", ")
}
