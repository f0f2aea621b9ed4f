// Package embed provides the Go embedding API for Intcode.
//
// Pass a program, get its outputs.
//
// Basic usage:
//
//	outputs, err := embed.Execute("3,9,8,9,10,9,4,9,99,-1,8", 8)
//
// From assembly:
//
//	outputs, err := embed.ExecuteAsm(`
//	    in   [rb]
//	    mul  [rb], #2, [rb]
//	    out  [rb]
//	    hlt
//	`, 21)
//
// Feedback-loop search:
//
//	best, phases, err := embed.MaxSignal(program, []int64{5, 6, 7, 8, 9})
//
// Patch words before the run and read memory afterwards:
//
//	res, err := embed.Run(program, embed.WithPatch(1, 12), embed.WithPatch(2, 2))
//	fmt.Println(res.Memory[0])
package embed

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/akhildatla/intcode/pkg/amp"
	"github.com/akhildatla/intcode/pkg/compiler"
	"github.com/akhildatla/intcode/pkg/loader"
	"github.com/akhildatla/intcode/pkg/vm"
)

// Common errors
var (
	ErrTimeout          = errors.New("execution timeout exceeded")
	ErrInstructionLimit = errors.New("instruction limit exceeded")
	ErrMemoryLimit      = errors.New("memory limit exceeded")
	ErrNoSolution       = errors.New("no noun and verb produce the target")
)

// NounVerbRange bounds the noun and verb search: both run over
// [0, NounVerbRange).
const NounVerbRange = 100

// Execute parses program text, runs it with the given inputs queued and
// returns every output it produced.
func Execute(code string, inputs ...int64) ([]int64, error) {
	return ExecuteWithOptions(code, WithInputs(inputs...))
}

// ExecuteFile loads a program file (text, .json, .parquet or .icbc) and
// executes it.
func ExecuteFile(path string, inputs ...int64) ([]int64, error) {
	program, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return ExecuteProgram(program, WithInputs(inputs...))
}

// ExecuteAsm assembles source and executes the result.
func ExecuteAsm(source string, inputs ...int64) ([]int64, error) {
	program, err := compiler.Compile(source)
	if err != nil {
		return nil, err
	}
	return ExecuteProgram(program, WithInputs(inputs...))
}

// Options configures execution behavior for ExecuteWithOptions.
type Options struct {
	// Inputs are queued before the program starts.
	Inputs []int64

	// Input is consulted when the queue is empty. Nil means an empty
	// queue fails the run with vm.ErrNoInput.
	Input vm.InputSource

	// DisableOutputFallback stops Input instructions from consuming the
	// program's own last output when the queue is empty.
	DisableOutputFallback bool

	// Timeout sets maximum execution time. Zero means no timeout.
	Timeout time.Duration

	// MaxInstructions limits the number of instructions executed.
	// Zero means unlimited.
	MaxInstructions int64

	// MaxMemory limits memory in cells. Zero means unlimited.
	MaxMemory int

	// Logger receives VM debug events. Nil means no logging.
	Logger *zap.Logger

	// Context for cancellation. If nil, context.Background() is used.
	Context context.Context

	// Patches overwrite memory words after loading, in order.
	Patches []Patch
}

// Patch sets one memory word before the program starts.
type Patch struct {
	Addr  int64
	Value int64
}

// Result is everything a finished run leaves behind.
type Result struct {
	Outputs []int64
	Memory  []int64 // final memory, including growth
}

// Option is a functional option for configuring execution.
type Option func(*Options)

// WithInputs queues input values.
func WithInputs(values ...int64) Option {
	return func(o *Options) {
		o.Inputs = append(o.Inputs, values...)
	}
}

// WithInputSource sets the source consulted when the queue is empty.
func WithInputSource(src vm.InputSource) Option {
	return func(o *Options) {
		o.Input = src
	}
}

// WithoutOutputFallback disables reading back the last output.
func WithoutOutputFallback() Option {
	return func(o *Options) {
		o.DisableOutputFallback = true
	}
}

// WithTimeout sets execution timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithMaxInstructions sets instruction limit.
func WithMaxInstructions(n int64) Option {
	return func(o *Options) {
		o.MaxInstructions = n
	}
}

// WithMaxMemory sets memory limit in cells.
func WithMaxMemory(cells int) Option {
	return func(o *Options) {
		o.MaxMemory = cells
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithContext sets the context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		o.Context = ctx
	}
}

// WithPatch overwrites the word at addr with value before the run.
func WithPatch(addr, value int64) Option {
	return func(o *Options) {
		o.Patches = append(o.Patches, Patch{Addr: addr, Value: value})
	}
}

func newOptions(opts []Option) *Options {
	options := &Options{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Context == nil {
		options.Context = context.Background()
	}
	return options
}

// deadline derives the run context, applying Timeout when set.
func (o *Options) deadline() (context.Context, context.CancelFunc) {
	if o.Timeout > 0 {
		return context.WithTimeout(o.Context, o.Timeout)
	}
	return context.WithCancel(o.Context)
}

// ExecuteWithOptions parses program text and executes it with advanced
// configuration.
//
// Example:
//
//	outputs, err := embed.ExecuteWithOptions(code,
//	    embed.WithInputs(5),
//	    embed.WithTimeout(5*time.Second),
//	    embed.WithMaxInstructions(10000),
//	)
func ExecuteWithOptions(code string, opts ...Option) ([]int64, error) {
	program, err := loader.Parse(code)
	if err != nil {
		return nil, err
	}
	return ExecuteProgram(program, opts...)
}

// ExecuteProgram runs a loaded program to completion. On error the outputs
// produced before the failure are returned alongside it.
func ExecuteProgram(program vm.Program, opts ...Option) ([]int64, error) {
	res, err := Run(program, opts...)
	if res == nil {
		return nil, err
	}
	return res.Outputs, err
}

// Run executes a loaded program and returns its outputs and final memory.
// On a run error the partial result is returned alongside it; errors
// before execution starts return a nil result.
func Run(program vm.Program, opts ...Option) (*Result, error) {
	options := newOptions(opts)
	ctx, cancel := options.deadline()
	defer cancel()
	return run(ctx, program, options)
}

func run(ctx context.Context, program vm.Program, options *Options) (*Result, error) {
	machine := vm.NewVM()
	machine.SetMaxSteps(options.MaxInstructions)
	machine.SetMemoryLimit(options.MaxMemory)
	machine.SetOutputFallback(!options.DisableOutputFallback)
	if options.Input != nil {
		machine.SetInputSource(options.Input)
	}
	if options.Logger != nil {
		machine.SetLogger(options.Logger)
	}

	if err := machine.Load(program); err != nil {
		return nil, mapError(err)
	}
	for _, p := range options.Patches {
		if err := machine.Memory().Store(p.Addr, p.Value); err != nil {
			return nil, mapError(err)
		}
	}
	machine.PushInput(options.Inputs...)
	machine.SetContext(ctx)

	outputs, err := machine.Execute()
	res := &Result{Outputs: outputs, Memory: machine.Memory().Snapshot()}
	if err != nil {
		return res, mapError(err)
	}
	return res, nil
}

// MaxSignal parses program text and searches every ordering of phases
// through a feedback loop, returning the strongest signal and the ordering
// that produced it.
func MaxSignal(code string, phases []int64, opts ...Option) (int64, []int64, error) {
	program, err := loader.Parse(code)
	if err != nil {
		return 0, nil, err
	}
	options := newOptions(opts)

	loopOpts := []amp.Option{
		amp.WithMaxSteps(options.MaxInstructions),
		amp.WithMaxMemory(options.MaxMemory),
		amp.WithOutputFallback(!options.DisableOutputFallback),
		amp.WithLogger(options.Logger),
	}

	ctx, cancel := options.deadline()
	defer cancel()

	res, err := amp.NewLoop(program, loopOpts...).Search(ctx, phases)
	if err != nil {
		return 0, nil, mapError(err)
	}
	return res.Best.Signal, res.Best.Phases, nil
}

// FindNounVerb parses program text and searches for the noun and verb that,
// written to addresses 1 and 2, leave target at address 0 when the program
// halts. Nouns are tried in ascending order, then verbs; the first match
// wins.
func FindNounVerb(code string, target int64, opts ...Option) (noun, verb int64, err error) {
	program, err := loader.Parse(code)
	if err != nil {
		return 0, 0, err
	}
	return SearchNounVerb(program, target, opts...)
}

// SearchNounVerb is FindNounVerb for a loaded program. A candidate whose run
// fails counts as a miss; cancellation and timeout abort the search.
// Timeout bounds the whole search.
func SearchNounVerb(program vm.Program, target int64, opts ...Option) (noun, verb int64, err error) {
	options := newOptions(opts)
	ctx, cancel := options.deadline()
	defer cancel()

	log := options.Logger
	if log == nil {
		log = zap.NewNop()
	}

	base := slices.Clip(options.Patches)
	for noun = 0; noun < NounVerbRange; noun++ {
		for verb = 0; verb < NounVerbRange; verb++ {
			if err := ctx.Err(); err != nil {
				return 0, 0, mapError(err)
			}

			candidate := *options
			candidate.Patches = append(base, Patch{Addr: 1, Value: noun}, Patch{Addr: 2, Value: verb})
			res, err := run(ctx, program, &candidate)
			if err != nil {
				if ctx.Err() != nil {
					return 0, 0, mapError(ctx.Err())
				}
				log.Debug("candidate failed",
					zap.Int64("noun", noun),
					zap.Int64("verb", verb),
					zap.Error(err))
				continue
			}
			if res.Memory[0] == target {
				return noun, verb, nil
			}
		}
	}
	return 0, 0, ErrNoSolution
}

// mapError maps VM errors to embed package errors.
func mapError(err error) error {
	switch {
	case errors.Is(err, vm.ErrStepLimitExceeded):
		return ErrInstructionLimit
	case errors.Is(err, vm.ErrMemoryLimit):
		return ErrMemoryLimit
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	}
	return err
}
