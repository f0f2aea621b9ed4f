// Package main provides the CLI entry point for intcode.
//
// Usage:
//
//	intcode run --input 5 program.txt      # Execute a program
//	intcode run --interactive program.txt  # Prompt for input on stdin
//	intcode run --set 1=12,2=2 --print-mem 0 prog
//	                                       # Patch words, print final memory
//	intcode amp --phases 5,6,7,8,9 prog    # Feedback-loop phase search
//	intcode nounverb --target 19690720 prog
//	                                       # Search words 1 and 2 for a result
//	intcode asm program.asm                # Assemble to program text
//	intcode compile program.asm            # Compile to bytecode (.icbc)
//	intcode exec program.icbc              # Execute compiled bytecode
//	intcode disasm program.txt             # Disassemble a program
//	intcode repl                           # Interactive console
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/urfave/cli.v1"

	"github.com/akhildatla/intcode/internal/config"
	"github.com/akhildatla/intcode/internal/log"
	"github.com/akhildatla/intcode/pkg/compiler"
	"github.com/akhildatla/intcode/pkg/embed"
	"github.com/akhildatla/intcode/pkg/loader"
	"github.com/akhildatla/intcode/pkg/vm"
)

// Version info set by GoReleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfg    = config.Default()
	logger = log.New("info")

	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
		Value: config.DefaultFile,
	}
	logLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "log level: debug, info, warn, error (overrides config)",
	}
	outputFlag = cli.StringFlag{
		Name:  "o",
		Usage: "output file",
	}
	inputFlag = cli.StringFlag{
		Name:  "input",
		Usage: "comma-separated input values queued before the run",
	}
	interactiveFlag = cli.BoolFlag{
		Name:  "interactive",
		Usage: "read input from stdin when the queue is empty",
	}
	jsonFlag = cli.BoolFlag{
		Name:  "json",
		Usage: "print outputs as a JSON array",
	}
	maxStepsFlag = cli.Int64Flag{
		Name:  "max-steps",
		Usage: "instruction limit per machine, 0 = unlimited (overrides config)",
	}
	noFallbackFlag = cli.BoolFlag{
		Name:  "no-fallback",
		Usage: "do not feed the last output back when the input queue is empty",
	}
	setFlag = cli.StringFlag{
		Name:  "set",
		Usage: "comma-separated addr=value patches applied before the run",
	}
	printMemFlag = cli.StringFlag{
		Name:  "print-mem",
		Usage: "comma-separated addresses whose final values are printed",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "intcode"
	app.Usage = "Intcode virtual machine, assembler and feedback-loop search"
	app.Version = version
	app.HideVersion = true
	app.Flags = []cli.Flag{configFlag, logLevelFlag}
	app.Before = setup
	app.Commands = []cli.Command{
		runCommand,
		ampCommand,
		nounVerbCommand,
		asmCommand,
		compileCommand,
		execCommand,
		disasmCommand,
		replCommand,
		versionCommand,
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and configures logging.
func setup(c *cli.Context) error {
	path := c.GlobalString(configFlag.Name)
	var err error
	if c.GlobalIsSet(configFlag.Name) {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOptional(path)
	}
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if l := c.GlobalString(logLevelFlag.Name); l != "" {
		if !log.ValidLevel(l) {
			return fmt.Errorf("unknown log level %q", l)
		}
		level = l
	}
	logger.SetLevel(level)
	logger.Debug("configuration loaded",
		zap.String("path", cfg.Path),
		zap.Int64("max_steps", cfg.VM.MaxSteps),
		zap.Int("max_memory", cfg.VM.MaxMemory),
		zap.Bool("output_fallback", cfg.VM.OutputFallback))
	return nil
}

var versionCommand = cli.Command{
	Name:  "version",
	Usage: "Print version information",
	Action: func(c *cli.Context) error {
		fmt.Printf("intcode version %s\n", version)
		if commit != "none" {
			fmt.Printf("  commit: %s\n", commit)
		}
		if date != "unknown" {
			fmt.Printf("  built:  %s\n", date)
		}
		return nil
	},
}

var asmCommand = cli.Command{
	Name:      "asm",
	Usage:     "Assemble source to program text",
	ArgsUsage: "<file.asm>",
	Flags:     []cli.Flag{outputFlag},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("usage: intcode asm <file.asm> [-o output.txt]")
		}

		source, err := os.ReadFile(c.Args().First())
		if err != nil {
			return fmt.Errorf("reading source: %w", err)
		}
		program, err := compiler.Compile(string(source))
		if err != nil {
			return fmt.Errorf("assembling: %w", err)
		}

		text := formatProgram(program) + "\n"
		if out := c.String(outputFlag.Name); out != "" {
			if err := os.WriteFile(out, []byte(text), 0644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			fmt.Printf("Assembled %d words: %s\n", len(program), out)
			return nil
		}
		fmt.Print(text)
		return nil
	},
}

var compileCommand = cli.Command{
	Name:      "compile",
	Usage:     "Compile assembly or a program file to bytecode (.icbc)",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "o",
			Usage: "output file (default: input with .icbc extension)",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("usage: intcode compile <file> [-o output.icbc]")
		}

		inputPath := c.Args().First()
		outputPath := c.String("o")
		if outputPath == "" {
			// Replace extension with .icbc
			ext := filepath.Ext(inputPath)
			outputPath = strings.TrimSuffix(inputPath, ext) + ".icbc"
		}

		program, err := readProgram(inputPath)
		if err != nil {
			return err
		}

		// Serialize to bytecode
		bytecode, err := vm.SerializeProgram(program)
		if err != nil {
			return fmt.Errorf("serializing: %w", err)
		}

		// Write output
		if err := os.WriteFile(outputPath, bytecode, 0644); err != nil {
			return fmt.Errorf("writing bytecode: %w", err)
		}

		logger.Debug("compiled",
			zap.String("input", inputPath),
			zap.String("output", outputPath),
			zap.Int("words", len(program)),
			zap.Int("bytes", len(bytecode)))
		fmt.Printf("Compiled: %s\n", outputPath)
		return nil
	},
}

var disasmCommand = cli.Command{
	Name:      "disasm",
	Usage:     "Disassemble a program or bytecode file",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "o",
			Usage: "output file (default: stdout)",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("usage: intcode disasm <file> [-o output.asm]")
		}

		program, err := loader.LoadFile(c.Args().First())
		if err != nil {
			return err
		}

		// Disassemble
		asm := vm.Disassemble(program)

		// Output
		if out := c.String("o"); out != "" {
			if err := os.WriteFile(out, []byte(asm), 0644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			fmt.Printf("Disassembled to: %s\n", out)
			return nil
		}
		fmt.Print(asm)
		return nil
	},
}

// readProgram loads a program file; .asm files are assembled.
func readProgram(path string) (vm.Program, error) {
	if strings.EqualFold(filepath.Ext(path), ".asm") {
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading source: %w", err)
		}
		program, err := compiler.Compile(string(source))
		if err != nil {
			return nil, fmt.Errorf("assembling: %w", err)
		}
		return program, nil
	}
	return loader.LoadFile(path)
}

// parseList parses a comma-separated list of integers; empty means none.
func parseList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	values, err := loader.Parse(s)
	if err != nil {
		return nil, err
	}
	return values, nil
}

// parsePatches parses "addr=value,addr=value"; empty means none.
func parsePatches(s string) ([]embed.Patch, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var patches []embed.Patch
	for _, item := range strings.Split(s, ",") {
		addr, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			return nil, fmt.Errorf("patch %q: want addr=value", item)
		}
		a, err := strconv.ParseInt(strings.TrimSpace(addr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("patch %q: bad address", item)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("patch %q: bad value", item)
		}
		patches = append(patches, embed.Patch{Addr: a, Value: v})
	}
	return patches, nil
}

func formatProgram(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
