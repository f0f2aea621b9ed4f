// Package compiler assembles Intcode assembly source into program words.
//
// Source is line oriented. Each line holds an optional address prefix
// ("0004:", as printed by the disassembler, ignored), optional label
// definitions ("loop:"), and at most one instruction or .data directive.
// Comments start with ';'.
//
//	start:  in   [rb+0]
//	        jf   [rb+0], #done
//	        out  [rb+0]
//	        jt   #1, #start
//	done:   hlt
//	        .data 7, -3, start
package compiler

import (
	"fmt"

	"github.com/akhildatla/intcode/pkg/vm"
)

// Compile assembles source into program words.
func Compile(source string) (vm.Program, error) {
	parser := NewParser(source)
	asmProgram, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	compiler := &Compiler{
		labels: make(map[string]int64),
	}

	return compiler.compile(asmProgram)
}

// Compiler lays out parsed assembly and emits words.
type Compiler struct {
	labels map[string]int64
	code   vm.Program
}

func (c *Compiler) compile(program *AsmProgram) (vm.Program, error) {
	// First pass: address of every statement.
	addrs := make([]int64, len(program.Instructions)+1)
	for i, inst := range program.Instructions {
		size, err := c.size(inst)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", inst.Line, err)
		}
		addrs[i+1] = addrs[i] + size
	}
	for name, idx := range program.Labels {
		c.labels[name] = addrs[idx]
	}

	// Second pass: emit.
	for _, inst := range program.Instructions {
		if err := c.compileInstruction(inst); err != nil {
			return nil, fmt.Errorf("line %d: %w", inst.Line, err)
		}
	}

	if c.code == nil {
		c.code = vm.Program{}
	}
	return c.code, nil
}

func (c *Compiler) size(inst AsmInstruction) (int64, error) {
	if inst.IsData() {
		return int64(len(inst.Operands)), nil
	}
	op, err := lookup(inst)
	if err != nil {
		return 0, err
	}
	return int64(1 + op.Arity()), nil
}

func (c *Compiler) compileInstruction(inst AsmInstruction) error {
	if inst.IsData() {
		for _, operand := range inst.Operands {
			v, err := c.resolve(operand)
			if err != nil {
				return err
			}
			c.code = append(c.code, v)
		}
		return nil
	}

	op, err := lookup(inst)
	if err != nil {
		return err
	}

	if len(inst.Operands) != op.Arity() {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrOperandCount, op, op.Arity(), len(inst.Operands))
	}

	modes := make([]vm.Mode, len(inst.Operands))
	for i, operand := range inst.Operands {
		modes[i] = operand.Mode
	}
	if op.Writes() && modes[len(modes)-1] == vm.ModeImmediate {
		return fmt.Errorf("%w: %s", ErrImmediateWrite, op)
	}

	c.code = append(c.code, int64(vm.EncodeInstruction(op, modes...)))
	for _, operand := range inst.Operands {
		v, err := c.resolve(operand)
		if err != nil {
			return err
		}
		c.code = append(c.code, v)
	}
	return nil
}

func (c *Compiler) resolve(operand Operand) (int64, error) {
	if operand.Label == "" {
		return operand.Value, nil
	}
	addr, ok := c.labels[operand.Label]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUndefinedLabel, operand.Label)
	}
	return addr, nil
}

func lookup(inst AsmInstruction) (vm.Opcode, error) {
	op, ok := vm.OpcodeFromString(inst.Opcode)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMnemonic, inst.Opcode)
	}
	return op, nil
}
