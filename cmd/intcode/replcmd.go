package main

import (
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/akhildatla/intcode/pkg/repl"
)

var replCommand = cli.Command{
	Name:      "repl",
	Usage:     "Start the interactive console",
	ArgsUsage: "[file]",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "asm",
			Usage: "start in assembly mode (default: program text mode)",
		},
	},
	Action: func(c *cli.Context) error {
		r := repl.New()
		r.SetMaxSteps(cfg.VM.MaxSteps)

		if c.Bool("asm") {
			r.SetMode(repl.ModeASM)
		}

		if c.NArg() > 0 {
			program, err := readProgram(c.Args().First())
			if err != nil {
				return err
			}
			if err := r.SetProgram(program); err != nil {
				return err
			}
		}

		r.Start(os.Stdin, os.Stdout)
		return nil
	},
}
