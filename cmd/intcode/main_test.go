package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akhildatla/intcode/internal/testutil"
)

// buildIntcode builds the intcode binary for testing
func buildIntcode(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	binary := filepath.Join(tmpDir, "intcode")
	cmd := exec.Command("go", "build", "-o", binary, ".")
	cmd.Dir = "."
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build intcode: %v\n%s", err, output)
	}
	return binary
}

// runIntcode runs the binary in a scratch directory so no intcode.toml
// from the source tree is picked up.
func runIntcode(t *testing.T, binary string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binary, args...)
	cmd.Dir = t.TempDir()
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func TestCLI_Help(t *testing.T) {
	binary := buildIntcode(t)

	out, err := runIntcode(t, binary, "help")
	if err != nil {
		t.Fatalf("help command failed: %v\n%s", err, out)
	}

	for _, want := range []string{"intcode", "run", "amp", "compile", "disasm", "repl"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output should contain %q:\n%s", want, out)
		}
	}
}

func TestCLI_Version(t *testing.T) {
	binary := buildIntcode(t)

	out, err := runIntcode(t, binary, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "intcode version") {
		t.Errorf("expected version output, got: %s", out)
	}
}

func TestCLI_Run(t *testing.T) {
	binary := buildIntcode(t)
	prog := writeFile(t, "cmp.txt", testutil.CompareToEight+"\n")

	out, err := runIntcode(t, binary, "run", "--input", "8", prog)
	if err != nil {
		t.Fatalf("run command failed: %v\n%s", err, out)
	}
	if strings.TrimSpace(out) != "1000" {
		t.Errorf("expected 1000, got %q", out)
	}
}

func TestCLI_RunJSON(t *testing.T) {
	binary := buildIntcode(t)
	prog := writeFile(t, "quine.txt", testutil.Quine)

	out, err := runIntcode(t, binary, "run", "--json", prog)
	if err != nil {
		t.Fatalf("run command failed: %v\n%s", err, out)
	}
	if strings.TrimSpace(out) != "["+testutil.Quine+"]" {
		t.Errorf("unexpected JSON output %q", out)
	}
}

func TestCLI_RunInteractive(t *testing.T) {
	binary := buildIntcode(t)
	prog := writeFile(t, "echo.txt", "3,0,4,0,99")

	cmd := exec.Command(binary, "run", "--interactive", "--no-fallback", prog)
	cmd.Dir = t.TempDir()
	cmd.Stdin = strings.NewReader("\n-12\n")
	output, err := cmd.Output()
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}
	if strings.TrimSpace(string(output)) != "-12" {
		t.Errorf("expected -12, got %q", output)
	}
}

func TestCLI_RunStepLimit(t *testing.T) {
	binary := buildIntcode(t)
	prog := writeFile(t, "spin.txt", "1105,1,0")

	out, err := runIntcode(t, binary, "run", "--max-steps", "50", prog)
	if err == nil {
		t.Fatalf("expected failure, got: %s", out)
	}
	if !strings.Contains(out, "instruction limit") {
		t.Errorf("expected instruction limit error, got: %s", out)
	}
}

func TestCLI_RunBadProgram(t *testing.T) {
	binary := buildIntcode(t)
	prog := writeFile(t, "bad.txt", "1,0,,0,99")

	out, err := runIntcode(t, binary, "run", prog)
	if err == nil {
		t.Fatal("expected failure for malformed program")
	}
	if !strings.Contains(out, "word 2") {
		t.Errorf("expected token position in error, got: %s", out)
	}
}

func TestCLI_RunMissingFile(t *testing.T) {
	binary := buildIntcode(t)

	if out, err := runIntcode(t, binary, "run", "/nonexistent/prog.txt"); err == nil {
		t.Errorf("expected failure, got: %s", out)
	}
}

func TestCLI_RunPatchAndPrintMemory(t *testing.T) {
	binary := buildIntcode(t)
	prog := writeFile(t, "addmul.txt", testutil.AddMultiply)

	out, err := runIntcode(t, binary, "run", "--set", "1=2,2=70", "--print-mem", "0,3", prog)
	if err != nil {
		t.Fatalf("run command failed: %v\n%s", err, out)
	}
	for _, want := range []string{"mem[0] = 3500", "mem[3] = 70"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q, got: %s", want, out)
		}
	}

	out, err = runIntcode(t, binary, "run", "--json", "--print-mem", "0", prog)
	if err != nil {
		t.Fatalf("run --json failed: %v\n%s", err, out)
	}
	if strings.TrimSpace(out) != `{"outputs":[],"memory":{"0":3500}}` {
		t.Errorf("unexpected JSON report: %s", out)
	}

	out, err = runIntcode(t, binary, "run", "--set", "1:2", prog)
	if err == nil || !strings.Contains(out, "--set") {
		t.Errorf("expected --set error, got: %s", out)
	}
}

func TestCLI_NounVerb(t *testing.T) {
	binary := buildIntcode(t)
	prog := writeFile(t, "addmul.txt", testutil.AddMultiply)

	out, err := runIntcode(t, binary, "nounverb", "--target", "3500", prog)
	if err != nil {
		t.Fatalf("nounverb command failed: %v\n%s", err, out)
	}
	if strings.TrimSpace(out) != "noun 2, verb 70: 270" {
		t.Errorf("unexpected answer: %s", out)
	}

	out, err = runIntcode(t, binary, "nounverb", "--target", "-1", prog)
	if err == nil || !strings.Contains(out, "no noun and verb") {
		t.Errorf("expected no-solution error, got: %s", out)
	}

	if out, err := runIntcode(t, binary, "nounverb", prog); err == nil {
		t.Errorf("expected failure without --target, got: %s", out)
	}
}

func TestCLI_Amp(t *testing.T) {
	binary := buildIntcode(t)
	prog := writeFile(t, "amp.txt", testutil.FeedbackAmplifier)

	out, err := runIntcode(t, binary, "amp", "--phases", "5,6,7,8,9", "--top", "3", prog)
	if err != nil {
		t.Fatalf("amp command failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Max signal: 139629729 (phases 9,8,7,6,5)") {
		t.Errorf("unexpected amp output:\n%s", out)
	}
	if !strings.Contains(out, "RANK") {
		t.Errorf("expected results table:\n%s", out)
	}
}

func TestCLI_AmpCSV(t *testing.T) {
	binary := buildIntcode(t)
	prog := writeFile(t, "amp.txt", testutil.SeriesAmplifier)

	out, err := runIntcode(t, binary, "amp", "--phases", "0,1,2,3,4", "--csv", "-", prog)
	if err != nil {
		t.Fatalf("amp command failed: %v\n%s", err, out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 121 {
		t.Fatalf("expected header and 120 rows, got %d lines", len(lines))
	}
	if lines[1] != `"4,3,2,1,0",43210` {
		t.Errorf("expected best ordering first, got %q", lines[1])
	}
}

func TestCLI_AmpPlot(t *testing.T) {
	binary := buildIntcode(t)
	prog := writeFile(t, "amp.txt", testutil.FeedbackAmplifier2)

	out, err := runIntcode(t, binary, "amp", "--plot", "--top", "0", prog)
	if err != nil {
		t.Fatalf("amp command failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Max signal: 18216") || !strings.Contains(out, "signal over 120 orderings") {
		t.Errorf("unexpected amp output:\n%s", out)
	}
}

func TestCLI_AsmCompileExecDisasm(t *testing.T) {
	binary := buildIntcode(t)
	src := writeFile(t, "double.asm", `
	in   [rb+20]
	mul  [rb+20], #2, [rb+20]
	out  [rb+20]
	hlt
`)

	out, err := runIntcode(t, binary, "asm", src)
	if err != nil {
		t.Fatalf("asm command failed: %v\n%s", err, out)
	}
	if strings.TrimSpace(out) != "203,20,21202,20,2,20,204,20,99" {
		t.Errorf("unexpected assembly %q", out)
	}

	bc := filepath.Join(t.TempDir(), "double.icbc")
	if out, err := runIntcode(t, binary, "compile", "-o", bc, src); err != nil {
		t.Fatalf("compile command failed: %v\n%s", err, out)
	}

	out, err = runIntcode(t, binary, "exec", "--input", "21", bc)
	if err != nil {
		t.Fatalf("exec command failed: %v\n%s", err, out)
	}
	if strings.TrimSpace(out) != "42" {
		t.Errorf("expected 42, got %q", out)
	}

	out, err = runIntcode(t, binary, "disasm", bc)
	if err != nil {
		t.Fatalf("disasm command failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "MUL  [rb+20], #2, [rb+20]") {
		t.Errorf("unexpected disassembly:\n%s", out)
	}
}

func TestCLI_Config(t *testing.T) {
	binary := buildIntcode(t)
	prog := writeFile(t, "spin.txt", "1105,1,0")
	conf := writeFile(t, "intcode.toml", "[vm]\nmax_steps = 10\n")

	out, err := runIntcode(t, binary, "--config", conf, "run", prog)
	if err == nil || !strings.Contains(out, "instruction limit") {
		t.Errorf("expected config step limit to apply, got: %v\n%s", err, out)
	}

	if out, err := runIntcode(t, binary, "--config", "/nonexistent/intcode.toml", "version"); err == nil {
		t.Errorf("expected explicit missing config to fail, got: %s", out)
	}
}

func TestCLI_UnknownCommand(t *testing.T) {
	binary := buildIntcode(t)

	out, _ := runIntcode(t, binary, "bogus")
	if !strings.Contains(out, "No help topic") && !strings.Contains(out, "bogus") {
		t.Errorf("expected unknown command message, got: %s", out)
	}
}
