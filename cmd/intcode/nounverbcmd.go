package main

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/urfave/cli.v1"

	"github.com/akhildatla/intcode/pkg/embed"
)

var (
	targetFlag = cli.Int64Flag{
		Name:  "target",
		Usage: "value address 0 must hold when the program halts",
	}

	nounVerbCommand = cli.Command{
		Name:      "nounverb",
		Usage:     "Find the words for addresses 1 and 2 that leave a target at address 0",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{targetFlag, maxStepsFlag, noFallbackFlag},
		Action:    nounVerb,
	}
)

func nounVerb(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: intcode nounverb --target n <file>")
	}
	if !c.IsSet(targetFlag.Name) {
		return fmt.Errorf("--target is required")
	}
	program, err := readProgram(c.Args().First())
	if err != nil {
		return err
	}

	target := c.Int64(targetFlag.Name)
	noun, verb, err := embed.SearchNounVerb(program, target, vmOptions(c)...)
	if err != nil {
		return fmt.Errorf("target %d: %w", target, err)
	}

	logger.Debug("noun and verb found",
		zap.Int64("target", target),
		zap.Int64("noun", noun),
		zap.Int64("verb", verb))
	fmt.Printf("noun %d, verb %d: %d\n", noun, verb, 100*noun+verb)
	return nil
}
