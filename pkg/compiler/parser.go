package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/akhildatla/intcode/pkg/vm"
)

// Assembly errors
var (
	ErrSyntax           = errors.New("syntax error")
	ErrDuplicateLabel   = errors.New("duplicate label")
	ErrUndefinedLabel   = errors.New("undefined label")
	ErrUnknownMnemonic  = errors.New("unknown mnemonic")
	ErrUnknownDirective = errors.New("unknown directive")
	ErrOperandCount     = errors.New("wrong number of operands")
	ErrImmediateWrite   = errors.New("destination operand cannot be immediate")
)

// DataDirective is the directive that emits raw words.
const DataDirective = ".data"

// Operand represents an instruction operand or a .data value.
// Label, when set, is resolved to an address in place of Value.
type Operand struct {
	Mode  vm.Mode
	Value int64
	Label string
}

// AsmInstruction represents a parsed instruction or directive.
type AsmInstruction struct {
	Opcode   string
	Operands []Operand
	Line     int
}

// IsData reports whether the statement is a .data directive.
func (i AsmInstruction) IsData() bool {
	return strings.EqualFold(i.Opcode, DataDirective)
}

// AsmProgram represents a parsed assembly program.
type AsmProgram struct {
	Instructions []AsmInstruction
	Labels       map[string]int // label -> instruction index
}

// Parser parses Intcode assembly source.
type Parser struct {
	tokens  []Token
	pos     int
	program *AsmProgram
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	lexer := NewLexer(input)
	tokens := lexer.Tokenize()
	return &Parser{
		tokens: tokens,
		pos:    0,
		program: &AsmProgram{
			Instructions: []AsmInstruction{},
			Labels:       make(map[string]int),
		},
	}
}

// Parse parses the entire input and returns the program.
func (p *Parser) Parse() (*AsmProgram, error) {
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		switch tok.Type {
		case TokenEOF:
			return p.program, nil

		case TokenNewline:
			p.pos++

		case TokenInt:
			// Address prefix as printed by the disassembler: "0004:"
			if p.peek(1).Type != TokenColon {
				return nil, p.errorf(tok, "unexpected integer %s", tok.Value)
			}
			p.pos += 2

		case TokenIdent:
			if p.peek(1).Type == TokenColon {
				if _, ok := p.program.Labels[tok.Value]; ok {
					return nil, fmt.Errorf("line %d: %w: %s", tok.Line, ErrDuplicateLabel, tok.Value)
				}
				p.program.Labels[tok.Value] = len(p.program.Instructions)
				p.pos += 2
				continue
			}
			inst, err := p.parseInstruction()
			if err != nil {
				return nil, err
			}
			p.program.Instructions = append(p.program.Instructions, inst)

		case TokenDirective:
			if !strings.EqualFold(tok.Value, DataDirective) {
				return nil, fmt.Errorf("line %d: %w: %s", tok.Line, ErrUnknownDirective, tok.Value)
			}
			inst, err := p.parseData()
			if err != nil {
				return nil, err
			}
			p.program.Instructions = append(p.program.Instructions, inst)

		default:
			return nil, p.errorf(tok, "unexpected %q", tok.Value)
		}
	}

	return p.program, nil
}

func (p *Parser) parseInstruction() (AsmInstruction, error) {
	inst := AsmInstruction{
		Opcode:   p.tokens[p.pos].Value,
		Line:     p.tokens[p.pos].Line,
		Operands: []Operand{},
	}
	p.pos++ // Consume opcode

	// Parse operands until newline or EOF
	for !p.atLineEnd() {
		if p.tokens[p.pos].Type == TokenComma {
			p.pos++
			continue
		}

		operand, err := p.parseOperand()
		if err != nil {
			return inst, err
		}
		inst.Operands = append(inst.Operands, operand)
	}

	return inst, nil
}

// parseData parses ".data v, v, ..." where each value is an integer or a
// label.
func (p *Parser) parseData() (AsmInstruction, error) {
	inst := AsmInstruction{
		Opcode: DataDirective,
		Line:   p.tokens[p.pos].Line,
	}
	p.pos++

	for !p.atLineEnd() {
		tok := p.tokens[p.pos]
		switch tok.Type {
		case TokenComma:
			p.pos++
		case TokenInt:
			v, err := p.parseInt(tok)
			if err != nil {
				return inst, err
			}
			inst.Operands = append(inst.Operands, Operand{Value: v})
			p.pos++
		case TokenIdent:
			inst.Operands = append(inst.Operands, Operand{Label: tok.Value})
			p.pos++
		default:
			return inst, p.errorf(tok, "unexpected %q in data", tok.Value)
		}
	}

	if len(inst.Operands) == 0 {
		return inst, fmt.Errorf("line %d: %w: .data needs at least one value", inst.Line, ErrOperandCount)
	}
	return inst, nil
}

// parseOperand parses one of:
//
//	#n  #label          immediate
//	[n] [label]         position
//	[rb] [rb+n] [rb-n]  relative
func (p *Parser) parseOperand() (Operand, error) {
	tok := p.tokens[p.pos]

	switch tok.Type {
	case TokenHash:
		p.pos++
		op, err := p.parseValue()
		if err != nil {
			return Operand{}, err
		}
		op.Mode = vm.ModeImmediate
		return op, nil

	case TokenLBracket:
		p.pos++
		var op Operand
		inner := p.tokens[p.pos]
		if inner.Type == TokenIdent && strings.EqualFold(inner.Value, "rb") {
			p.pos++
			off, err := p.parseOffset()
			if err != nil {
				return Operand{}, err
			}
			op = off
			op.Mode = vm.ModeRelative
		} else {
			v, err := p.parseValue()
			if err != nil {
				return Operand{}, err
			}
			op = v
			op.Mode = vm.ModePosition
		}
		if p.tokens[p.pos].Type != TokenRBracket {
			return Operand{}, p.errorf(p.tokens[p.pos], "expected ], got %q", p.tokens[p.pos].Value)
		}
		p.pos++
		return op, nil

	case TokenInt, TokenIdent:
		return Operand{}, p.errorf(tok, "operand %s needs a mode: #n, [n] or [rb+n]", tok.Value)

	default:
		return Operand{}, p.errorf(tok, "unexpected %q", tok.Value)
	}
}

// parseOffset parses what follows "rb" inside brackets.
func (p *Parser) parseOffset() (Operand, error) {
	tok := p.tokens[p.pos]
	switch tok.Type {
	case TokenRBracket:
		return Operand{}, nil
	case TokenPlus:
		p.pos++
		return p.parseValue()
	case TokenInt:
		if !strings.HasPrefix(tok.Value, "-") {
			return Operand{}, p.errorf(tok, "expected + or - after rb")
		}
		return p.parseValue()
	default:
		return Operand{}, p.errorf(tok, "unexpected %q after rb", tok.Value)
	}
}

func (p *Parser) parseValue() (Operand, error) {
	tok := p.tokens[p.pos]
	switch tok.Type {
	case TokenInt:
		v, err := p.parseInt(tok)
		if err != nil {
			return Operand{}, err
		}
		p.pos++
		return Operand{Value: v}, nil
	case TokenIdent:
		p.pos++
		return Operand{Label: tok.Value}, nil
	default:
		return Operand{}, p.errorf(tok, "expected integer or label, got %q", tok.Value)
	}
}

func (p *Parser) parseInt(tok Token) (int64, error) {
	v, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil {
		return 0, p.errorf(tok, "invalid integer %s", tok.Value)
	}
	return v, nil
}

func (p *Parser) peek(n int) Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return Token{Type: TokenEOF}
}

func (p *Parser) atLineEnd() bool {
	if p.pos >= len(p.tokens) {
		return true
	}
	t := p.tokens[p.pos].Type
	return t == TokenNewline || t == TokenEOF
}

func (p *Parser) errorf(tok Token, format string, args ...any) error {
	return fmt.Errorf("line %d: %w: %s", tok.Line, ErrSyntax, fmt.Sprintf(format, args...))
}
