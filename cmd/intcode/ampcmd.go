package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/akhildatla/intcode/pkg/amp"
)

var (
	phasesFlag = cli.StringFlag{
		Name:  "phases",
		Usage: "comma-separated phase settings to permute (overrides config)",
	}
	topFlag = cli.IntFlag{
		Name:  "top",
		Usage: "number of best orderings to list, 0 = none (overrides config)",
	}
	csvFlag = cli.StringFlag{
		Name:  "csv",
		Usage: "write every ordering and its signal as CSV to this file (- for stdout)",
	}
	plotFlag = cli.BoolFlag{
		Name:  "plot",
		Usage: "plot signals in enumeration order",
	}

	ampCommand = cli.Command{
		Name:      "amp",
		Usage:     "Search phase orderings of a feedback loop for the maximum signal",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{phasesFlag, topFlag, csvFlag, plotFlag, maxStepsFlag, noFallbackFlag},
		Action:    ampSearch,
	}
)

func ampSearch(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: intcode amp [options] <file>")
	}
	program, err := readProgram(c.Args().First())
	if err != nil {
		return err
	}

	phases := cfg.Amp.Phases
	if c.IsSet(phasesFlag.Name) {
		if phases, err = parseList(c.String(phasesFlag.Name)); err != nil {
			return fmt.Errorf("--phases: %w", err)
		}
	}
	top := cfg.Amp.Top
	if c.IsSet(topFlag.Name) {
		top = c.Int(topFlag.Name)
	}
	maxSteps := cfg.VM.MaxSteps
	if c.IsSet(maxStepsFlag.Name) {
		maxSteps = c.Int64(maxStepsFlag.Name)
	}

	loop := amp.NewLoop(program,
		amp.WithMaxSteps(maxSteps),
		amp.WithMaxMemory(cfg.VM.MaxMemory),
		amp.WithOutputFallback(cfg.VM.OutputFallback && !c.Bool(noFallbackFlag.Name)),
		amp.WithLogger(logger.Logger),
	)

	ctx := context.Background()
	res, err := loop.Search(ctx, phases)
	if err != nil {
		return err
	}

	if out := c.String(csvFlag.Name); out != "" {
		return writeCSV(ctx, res, out)
	}

	fmt.Printf("Max signal: %d (phases %s)\n", res.Best.Signal, res.Best.PhaseString())
	if top > 0 {
		printTop(os.Stdout, res.Top(top))
	}
	if c.Bool(plotFlag.Name) {
		fmt.Println(plotSignals(res))
	}
	return nil
}

func writeCSV(ctx context.Context, res *amp.SearchResult, path string) error {
	if path == "-" {
		return res.WriteCSV(ctx, os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := res.WriteCSV(ctx, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %d orderings to %s\n", len(res.Results), path)
	return nil
}

func printTop(w io.Writer, results []amp.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "Phases", "Signal"})
	for i, r := range results {
		table.Append([]string{strconv.Itoa(i + 1), r.PhaseString(), strconv.FormatInt(r.Signal, 10)})
	}
	table.Render()
}

func plotSignals(res *amp.SearchResult) string {
	series := make([]float64, len(res.Results))
	for i, r := range res.Results {
		series[i] = float64(r.Signal)
	}
	return asciigraph.Plot(series,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("signal over %d orderings", len(res.Results))))
}
