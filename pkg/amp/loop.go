// Package amp runs chains of Intcode machines wired into a feedback loop
// and searches phase-setting orderings for the strongest output signal.
//
// Each machine in the loop runs its own private copy of the program. A
// machine receives its phase setting once, on its first turn, followed by
// the current signal. It runs until it emits an output, which becomes the
// signal for the next machine; the last machine feeds the first. The loop
// ends when any machine halts, and the signal at that moment is the result.
package amp

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/akhildatla/intcode/pkg/vm"
)

// ErrNoSignal is returned when a machine halts before any machine in the
// loop produced an output.
var ErrNoSignal = errors.New("loop halted without producing a signal")

// ErrNoPhases is returned for an empty phase list.
var ErrNoPhases = errors.New("no phase settings")

// Loop runs one program as a ring of machines.
type Loop struct {
	program        vm.Program
	maxSteps       int64
	maxMemory      int
	outputFallback bool
	log            *zap.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithMaxSteps caps the instructions each machine may execute per run.
func WithMaxSteps(n int64) Option {
	return func(l *Loop) { l.maxSteps = n }
}

// WithMaxMemory caps each machine's memory in cells.
func WithMaxMemory(cells int) Option {
	return func(l *Loop) { l.maxMemory = cells }
}

// WithOutputFallback sets the machines' empty-input fallback to their own
// last output.
func WithOutputFallback(enabled bool) Option {
	return func(l *Loop) { l.outputFallback = enabled }
}

// WithLogger sets the logger for loop and machine events.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.log = logger
		}
	}
}

// NewLoop creates a loop for program. The program is copied.
func NewLoop(program vm.Program, opts ...Option) *Loop {
	l := &Loop{
		program:        program.Clone(),
		outputFallback: true,
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// machine pairs an engine with whether it has received its phase.
type machine struct {
	vm     *vm.VM
	primed bool
}

func (l *Loop) newMachine(ctx context.Context, index int) (*machine, error) {
	m := vm.NewVM()
	m.SetSuspendOnOutput(true)
	m.SetOutputFallback(l.outputFallback)
	m.SetMaxSteps(l.maxSteps)
	m.SetMemoryLimit(l.maxMemory)
	m.SetContext(ctx)
	m.SetLogger(l.log.With(zap.Int("machine", index)))
	if err := m.Load(l.program); err != nil {
		return nil, err
	}
	return &machine{vm: m}, nil
}

// Run wires one machine per phase setting into a ring and runs it until a
// machine halts, returning the last signal produced. Machines take turns in
// order starting with the first; only one runs at a time.
func (l *Loop) Run(ctx context.Context, phases []int64) (int64, error) {
	if len(phases) == 0 {
		return 0, ErrNoPhases
	}
	if ctx == nil {
		ctx = context.Background()
	}

	machines := make([]*machine, len(phases))
	for i := range phases {
		m, err := l.newMachine(ctx, i)
		if err != nil {
			return 0, fmt.Errorf("machine %d: %w", i, err)
		}
		machines[i] = m
	}

	var (
		signal   int64
		produced bool
		turns    int
	)
	for i := 0; ; i = (i + 1) % len(machines) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		m := machines[i]
		if !m.primed {
			m.vm.PushInput(phases[i])
			m.primed = true
		}
		m.vm.PushInput(signal)

		status, err := m.vm.Run()
		turns++
		if err != nil {
			return 0, fmt.Errorf("machine %d (phase %d): %w", i, phases[i], err)
		}

		switch status {
		case vm.StatusSuspended:
			outputs := m.vm.TakeOutputs()
			signal = outputs[len(outputs)-1]
			produced = true
		case vm.StatusHalted:
			l.log.Debug("loop finished",
				zap.Int64s("phases", phases),
				zap.Int("halted", i),
				zap.Int("turns", turns),
				zap.Int64("signal", signal))
			if !produced {
				return 0, ErrNoSignal
			}
			return signal, nil
		}
	}
}
