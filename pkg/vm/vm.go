// Package vm implements the Intcode virtual machine.
//
// The machine is a memory-addressed interpreter with:
//   - a growable, zero-initialized tape of int64 cells
//   - an instruction pointer and a relative-base register
//   - an input queue and an output queue
//   - optional suspension after every Output instruction
//
// Basic usage:
//
//	v := vm.NewVM()
//	v.Load(program)
//	v.PushInput(1)
//	outputs, err := v.Execute()
//
// Cooperative interleaving of several machines:
//
//	v.SetSuspendOnOutput(true)
//	for {
//		status, err := v.Run()
//		...
//		if status == vm.StatusHalted {
//			break
//		}
//	}
package vm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Error definitions
var (
	ErrImmediateDestination = errors.New("immediate mode used for a destination operand")
	ErrNoInput              = errors.New("input requested but none available")
	ErrOverflow             = errors.New("arithmetic overflow")
	ErrStepLimitExceeded    = errors.New("step limit exceeded")
)

// Program is the initial memory image of a machine. Cells are int64; an Add
// or Multiply whose result does not fit fails the run with ErrOverflow
// instead of wrapping.
type Program []int64

// Clone returns an independent copy of the program.
func (p Program) Clone() Program {
	out := make(Program, len(p))
	copy(out, p)
	return out
}

// Status is the run status of a machine.
type Status uint8

const (
	StatusRunning   Status = iota // initial and resumed state
	StatusSuspended               // paused right after an Output instruction
	StatusHalted                  // terminal
)

// String returns the string representation of a status.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSuspended:
		return "suspended"
	case StatusHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// ExecutionStats contains metrics about VM execution for observability.
type ExecutionStats struct {
	StepsExecuted   int64          // Total instructions executed
	ExecutionTimeNs int64          // Time spent inside Run
	Suspensions     int            // Number of suspend-on-output pauses
	InputsConsumed  int            // Values taken by Input instructions
	OutputsProduced int            // Values emitted by Output instructions
	PeakMemory      int            // Largest memory length observed
	OpCounts        map[string]int // Count of each opcode executed
}

// State is a deep copy of everything a machine needs to continue.
type State struct {
	Registers RegisterFile
	Memory    []int64
	Inputs    []int64
	Outputs   []int64
	Status    Status
	Steps     int64
}

// VM represents the virtual machine.
type VM struct {
	registers RegisterFile
	memory    *Memory
	status    Status
	fault     error // sticky fatal error

	inputs  []int64 // consumed front to back
	outputs []int64 // appended at the back

	suspendOnOutput bool
	outputFallback  bool
	source          InputSource

	// Resource limits
	maxSteps  int64
	stepCount int64
	memLimit  int

	// Context for cancellation
	ctx context.Context

	log *zap.Logger

	// Observability - execution statistics
	stats        ExecutionStats
	statsEnabled bool
}

// NewVM creates a new VM instance with an empty program.
func NewVM() *VM {
	return &VM{
		memory:         NewMemory(nil),
		outputFallback: true,
		log:            zap.NewNop(),
	}
}

// Load loads a private copy of program and resets all machine state.
// Configuration (limits, flags, input source, logger) is kept.
func (vm *VM) Load(program Program) error {
	if vm.memLimit > 0 && len(program) > vm.memLimit {
		return fmt.Errorf("%w: program has %d cells, limit %d", ErrMemoryLimit, len(program), vm.memLimit)
	}
	vm.memory = NewMemory(program)
	vm.memory.SetLimit(vm.memLimit)
	vm.registers.Reset()
	vm.status = StatusRunning
	vm.fault = nil
	vm.inputs = nil
	vm.outputs = nil
	vm.stepCount = 0
	return nil
}

// SetSuspendOnOutput makes Run return after every Output instruction.
func (vm *VM) SetSuspendOnOutput(enabled bool) {
	vm.suspendOnOutput = enabled
}

// SetOutputFallback controls whether an Input instruction facing an empty
// input queue takes the most recent output instead. Enabled by default.
func (vm *VM) SetOutputFallback(enabled bool) {
	vm.outputFallback = enabled
}

// SetInputSource attaches an interactive input source.
func (vm *VM) SetInputSource(src InputSource) {
	vm.source = src
}

// SetMaxSteps sets the maximum number of executed instructions over the
// lifetime of the loaded program. Zero means unlimited.
func (vm *VM) SetMaxSteps(n int64) {
	vm.maxSteps = n
}

// SetMemoryLimit caps memory growth at the given number of cells.
// Zero means unlimited.
func (vm *VM) SetMemoryLimit(cells int) {
	vm.memLimit = cells
	vm.memory.SetLimit(cells)
}

// SetContext sets the context for cancellation/timeout.
func (vm *VM) SetContext(ctx context.Context) {
	vm.ctx = ctx
}

// SetLogger sets the logger used for lifecycle events. Nil disables logging.
func (vm *VM) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	vm.log = l
}

// EnableStats enables execution statistics collection.
func (vm *VM) EnableStats() {
	vm.statsEnabled = true
	vm.stats = ExecutionStats{
		OpCounts: make(map[string]int),
	}
}

// Stats returns the execution statistics collected so far.
// Returns nil if stats were not enabled via EnableStats().
func (vm *VM) Stats() *ExecutionStats {
	if !vm.statsEnabled {
		return nil
	}
	return &vm.stats
}

// PushInput appends values to the input queue.
func (vm *VM) PushInput(values ...int64) {
	vm.inputs = append(vm.inputs, values...)
}

// PendingInputs returns the number of queued input values.
func (vm *VM) PendingInputs() int {
	return len(vm.inputs)
}

// Outputs returns a copy of the output queue.
func (vm *VM) Outputs() []int64 {
	out := make([]int64, len(vm.outputs))
	copy(out, vm.outputs)
	return out
}

// TakeOutputs drains the output queue.
func (vm *VM) TakeOutputs() []int64 {
	out := vm.outputs
	vm.outputs = nil
	if out == nil {
		return []int64{}
	}
	return out
}

// LastOutput returns the most recent value still in the output queue.
func (vm *VM) LastOutput() (int64, bool) {
	if len(vm.outputs) == 0 {
		return 0, false
	}
	return vm.outputs[len(vm.outputs)-1], true
}

// Status returns the current run status.
func (vm *VM) Status() Status {
	return vm.status
}

// Err returns the fatal error that stopped the machine, if any.
func (vm *VM) Err() error {
	return vm.fault
}

// IP returns the instruction pointer.
func (vm *VM) IP() int64 {
	return vm.registers.IP
}

// RelativeBase returns the relative-base register.
func (vm *VM) RelativeBase() int64 {
	return vm.registers.RelativeBase
}

// Memory returns the machine memory.
func (vm *VM) Memory() *Memory {
	return vm.memory
}

// Steps returns the number of instructions executed since Load.
func (vm *VM) Steps() int64 {
	return vm.stepCount
}

// Snapshot returns a deep copy of the machine state.
func (vm *VM) Snapshot() *State {
	return &State{
		Registers: vm.registers,
		Memory:    vm.memory.Snapshot(),
		Inputs:    append([]int64{}, vm.inputs...),
		Outputs:   append([]int64{}, vm.outputs...),
		Status:    vm.status,
		Steps:     vm.stepCount,
	}
}

// Restore replaces the machine state with a copy of s and clears any fault.
func (vm *VM) Restore(s *State) {
	vm.registers = s.Registers
	vm.memory = NewMemory(s.Memory)
	vm.memory.SetLimit(vm.memLimit)
	vm.inputs = append([]int64{}, s.Inputs...)
	vm.outputs = append([]int64{}, s.Outputs...)
	vm.status = s.Status
	vm.stepCount = s.Steps
	vm.fault = nil
}

// Execute runs the loaded program to completion and returns every value
// left in the output queue. Suspensions are resumed transparently.
func (vm *VM) Execute() ([]int64, error) {
	for {
		status, err := vm.Run()
		if err != nil {
			return vm.Outputs(), err
		}
		if status == StatusHalted {
			return vm.Outputs(), nil
		}
	}
}

// Run executes instructions until the machine halts or, with
// suspend-on-output enabled, until an Output instruction completes.
// Calling Run after a suspension continues where execution stopped.
//
// ErrNoInput leaves the machine resumable: push input and call Run again.
// Every other error is fatal and returned again by later calls.
func (vm *VM) Run() (Status, error) {
	if vm.fault != nil {
		return vm.status, vm.fault
	}
	if vm.status == StatusHalted {
		return StatusHalted, nil
	}
	vm.status = StatusRunning

	if vm.statsEnabled {
		startTime := time.Now()
		defer func() {
			vm.stats.ExecutionTimeNs += time.Since(startTime).Nanoseconds()
		}()
	}

	for {
		// Context cancellation check
		if vm.ctx != nil {
			select {
			case <-vm.ctx.Done():
				return vm.fail(vm.ctx.Err())
			default:
			}
		}

		// Resource limit check
		if vm.maxSteps > 0 && vm.stepCount >= vm.maxSteps {
			return vm.fail(fmt.Errorf("%w: %d", ErrStepLimitExceeded, vm.maxSteps))
		}

		status, err := vm.step()
		if err != nil {
			if errors.Is(err, ErrNoInput) {
				return vm.status, err
			}
			return vm.fail(err)
		}
		vm.stepCount++

		switch status {
		case StatusSuspended:
			if vm.statsEnabled {
				vm.stats.Suspensions++
			}
			vm.log.Debug("suspended on output",
				zap.Int64("ip", vm.registers.IP),
				zap.Int64("steps", vm.stepCount))
			return status, nil
		case StatusHalted:
			vm.log.Debug("halted",
				zap.Int64("ip", vm.registers.IP),
				zap.Int64("steps", vm.stepCount),
				zap.Int("outputs", len(vm.outputs)))
			return status, nil
		}
	}
}

func (vm *VM) fail(err error) (Status, error) {
	vm.fault = err
	vm.log.Debug("fault",
		zap.Int64("ip", vm.registers.IP),
		zap.Int64("steps", vm.stepCount),
		zap.Error(err))
	return vm.status, err
}

// step executes one instruction.
func (vm *VM) step() (Status, error) {
	ip := vm.registers.IP
	if ip < 0 {
		return vm.status, &AddressError{IP: ip, Addr: ip}
	}
	word, err := vm.memory.Load(ip)
	if err != nil {
		return vm.status, err
	}
	inst, err := Instruction(word).Decode(ip)
	if err != nil {
		return vm.status, err
	}

	switch inst.Op {
	case OpAdd, OpMultiply, OpLessThan, OpEqual:
		a, err := vm.read(inst, 0)
		if err != nil {
			return vm.status, err
		}
		b, err := vm.read(inst, 1)
		if err != nil {
			return vm.status, err
		}
		var result int64
		switch inst.Op {
		case OpAdd:
			var ok bool
			if result, ok = addChecked(a, b); !ok {
				return vm.status, fmt.Errorf("%w at %d: %d + %d", ErrOverflow, ip, a, b)
			}
		case OpMultiply:
			var ok bool
			if result, ok = mulChecked(a, b); !ok {
				return vm.status, fmt.Errorf("%w at %d: %d * %d", ErrOverflow, ip, a, b)
			}
		case OpLessThan:
			result = boolToInt(a < b)
		case OpEqual:
			result = boolToInt(a == b)
		}
		if err := vm.write(inst, 2, result); err != nil {
			return vm.status, err
		}
		vm.registers.IP += 4

	case OpInput:
		// Resolve the destination before consuming input so a bad
		// operand never swallows a value.
		dst, err := vm.address(inst, 0)
		if err != nil {
			return vm.status, err
		}
		value, err := vm.nextInput()
		if err != nil {
			return vm.status, err
		}
		if err := vm.store(dst, value); err != nil {
			return vm.status, err
		}
		vm.registers.IP += 2

	case OpOutput:
		a, err := vm.read(inst, 0)
		if err != nil {
			return vm.status, err
		}
		vm.outputs = append(vm.outputs, a)
		vm.registers.IP += 2
		vm.record(inst.Op)
		if vm.statsEnabled {
			vm.stats.OutputsProduced++
		}
		if vm.suspendOnOutput {
			vm.status = StatusSuspended
		}
		return vm.status, nil

	case OpJumpIfTrue, OpJumpIfFalse:
		a, err := vm.read(inst, 0)
		if err != nil {
			return vm.status, err
		}
		b, err := vm.read(inst, 1)
		if err != nil {
			return vm.status, err
		}
		if (a != 0) == (inst.Op == OpJumpIfTrue) {
			vm.registers.IP = b
		} else {
			vm.registers.IP += 3
		}

	case OpAdjustRelativeBase:
		a, err := vm.read(inst, 0)
		if err != nil {
			return vm.status, err
		}
		vm.registers.RelativeBase += a
		vm.registers.IP += 2

	case OpHalt:
		vm.status = StatusHalted
	}

	vm.record(inst.Op)
	return vm.status, nil
}

// record updates statistics for one executed instruction.
func (vm *VM) record(op Opcode) {
	if !vm.statsEnabled {
		return
	}
	vm.stats.StepsExecuted++
	vm.stats.OpCounts[op.String()]++
	if n := vm.memory.Len(); n > vm.stats.PeakMemory {
		vm.stats.PeakMemory = n
	}
}

// operand returns the raw operand word for a 0-based slot.
func (vm *VM) operand(slot int) (int64, error) {
	return vm.load(vm.registers.IP + 1 + int64(slot))
}

// read resolves a source operand to its value.
func (vm *VM) read(inst Decoded, slot int) (int64, error) {
	raw, err := vm.operand(slot)
	if err != nil {
		return 0, err
	}
	switch inst.Modes[slot] {
	case ModeImmediate:
		return raw, nil
	case ModeRelative:
		return vm.load(vm.registers.RelativeBase + raw)
	default:
		return vm.load(raw)
	}
}

// address resolves a destination operand to an address. Position mode uses
// the operand itself and never dereferences it.
func (vm *VM) address(inst Decoded, slot int) (int64, error) {
	raw, err := vm.operand(slot)
	if err != nil {
		return 0, err
	}
	var addr int64
	switch inst.Modes[slot] {
	case ModeImmediate:
		return 0, fmt.Errorf("%w: %s operand %d at %d", ErrImmediateDestination, inst.Op, slot+1, vm.registers.IP)
	case ModeRelative:
		addr = vm.registers.RelativeBase + raw
	default:
		addr = raw
	}
	if addr < 0 {
		return 0, &AddressError{IP: vm.registers.IP, Addr: addr}
	}
	return addr, nil
}

func (vm *VM) write(inst Decoded, slot int, value int64) error {
	addr, err := vm.address(inst, slot)
	if err != nil {
		return err
	}
	return vm.store(addr, value)
}

func (vm *VM) load(addr int64) (int64, error) {
	if addr < 0 {
		return 0, &AddressError{IP: vm.registers.IP, Addr: addr}
	}
	return vm.memory.Load(addr)
}

func (vm *VM) store(addr, value int64) error {
	if addr < 0 {
		return &AddressError{IP: vm.registers.IP, Addr: addr}
	}
	return vm.memory.Store(addr, value)
}

// nextInput takes the next value for an Input instruction: the input queue
// first, then the most recent output (removed from the output queue), then
// the interactive source.
func (vm *VM) nextInput() (int64, error) {
	var value int64
	switch {
	case len(vm.inputs) > 0:
		value = vm.inputs[0]
		vm.inputs = vm.inputs[1:]
	case vm.outputFallback && len(vm.outputs) > 0:
		value = vm.outputs[len(vm.outputs)-1]
		vm.outputs = vm.outputs[:len(vm.outputs)-1]
	case vm.source != nil:
		v, err := vm.source.ReadInput()
		if err != nil {
			return 0, fmt.Errorf("reading input at %d: %w", vm.registers.IP, err)
		}
		value = v
	default:
		return 0, fmt.Errorf("%w at %d", ErrNoInput, vm.registers.IP)
	}
	if vm.statsEnabled {
		vm.stats.InputsConsumed++
	}
	return value, nil
}

func addChecked(a, b int64) (int64, bool) {
	c := a + b
	return c, (c > a) == (b > 0)
}

func mulChecked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	c := a * b
	return c, c/b == a
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
