package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gopkg.in/urfave/cli.v1"

	"github.com/akhildatla/intcode/pkg/embed"
	"github.com/akhildatla/intcode/pkg/vm"
)

var (
	runFlags = []cli.Flag{inputFlag, interactiveFlag, jsonFlag, maxStepsFlag, noFallbackFlag, setFlag, printMemFlag}

	runCommand = cli.Command{
		Name:      "run",
		Usage:     "Execute a program file (text, .json, .parquet, .icbc or .asm)",
		ArgsUsage: "<file>",
		Flags:     runFlags,
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("usage: intcode run [options] <file>")
			}
			program, err := readProgram(c.Args().First())
			if err != nil {
				return err
			}
			return execute(c, program)
		},
	}

	execCommand = cli.Command{
		Name:      "exec",
		Usage:     "Execute compiled bytecode",
		ArgsUsage: "<file.icbc>",
		Flags:     runFlags,
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("usage: intcode exec [options] <file.icbc>")
			}

			// Read bytecode
			bytecode, err := os.ReadFile(c.Args().First())
			if err != nil {
				return fmt.Errorf("reading bytecode: %w", err)
			}

			// Deserialize program
			program, err := vm.DeserializeProgram(bytecode)
			if err != nil {
				return fmt.Errorf("deserializing: %w", err)
			}
			return execute(c, program)
		},
	}
)

// execute runs program with the run flags applied over the configuration
// and prints its outputs, one per line or as JSON, followed by any
// requested memory cells.
func execute(c *cli.Context, program vm.Program) error {
	inputs, err := parseList(c.String(inputFlag.Name))
	if err != nil {
		return fmt.Errorf("--input: %w", err)
	}
	patches, err := parsePatches(c.String(setFlag.Name))
	if err != nil {
		return fmt.Errorf("--set: %w", err)
	}
	cells, err := parseList(c.String(printMemFlag.Name))
	if err != nil {
		return fmt.Errorf("--print-mem: %w", err)
	}
	for _, addr := range cells {
		if addr < 0 {
			return fmt.Errorf("--print-mem: negative address %d", addr)
		}
	}

	opts := append(vmOptions(c), embed.WithInputs(inputs...))
	for _, p := range patches {
		opts = append(opts, embed.WithPatch(p.Addr, p.Value))
	}
	if c.Bool(interactiveFlag.Name) {
		opts = append(opts, embed.WithInputSource(vm.NewReaderInput(os.Stdin, os.Stderr, "input> ")))
	}

	logger.Debug("executing",
		zap.Int("words", len(program)),
		zap.Int64s("inputs", inputs),
		zap.Int("patches", len(patches)))

	res, runErr := embed.Run(program, opts...)
	if res == nil {
		return runErr
	}
	if err := printResult(res, cells, c.Bool(jsonFlag.Name)); err != nil {
		return err
	}
	return runErr
}

// vmOptions maps the configuration and the shared limit flags to embed
// options.
func vmOptions(c *cli.Context) []embed.Option {
	maxSteps := cfg.VM.MaxSteps
	if c.IsSet(maxStepsFlag.Name) {
		maxSteps = c.Int64(maxStepsFlag.Name)
	}
	opts := []embed.Option{
		embed.WithMaxInstructions(maxSteps),
		embed.WithMaxMemory(cfg.VM.MaxMemory),
		embed.WithLogger(logger.Logger),
	}
	if !cfg.VM.OutputFallback || c.Bool(noFallbackFlag.Name) {
		opts = append(opts, embed.WithoutOutputFallback())
	}
	return opts
}

// memoryReport is the JSON form of a run with --print-mem.
type memoryReport struct {
	Outputs []int64          `json:"outputs"`
	Memory  map[string]int64 `json:"memory"`
}

func printResult(res *embed.Result, cells []int64, asJSON bool) error {
	outputs := res.Outputs
	if outputs == nil {
		outputs = []int64{}
	}
	cell := func(addr int64) int64 {
		if addr < int64(len(res.Memory)) {
			return res.Memory[addr]
		}
		return 0
	}

	if asJSON {
		var v any = outputs
		if len(cells) > 0 {
			report := memoryReport{Outputs: outputs, Memory: make(map[string]int64, len(cells))}
			for _, addr := range cells {
				report.Memory[strconv.FormatInt(addr, 10)] = cell(addr)
			}
			v = report
		}
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, v := range outputs {
		fmt.Println(v)
	}
	for _, addr := range cells {
		fmt.Printf("mem[%d] = %d\n", addr, cell(addr))
	}
	return nil
}
