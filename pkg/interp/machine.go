package interp

import (
	"bufio"
	"fmt"
	"io"

	"gobfc/pkg/compiler"
)

// flusher is satisfied by buffered sinks that need a final drain.
type flusher interface {
	Flush() error
}

// Machine executes a parsed program directly against an in-memory tape.
// The tape starts zeroed; all cell arithmetic wraps modulo 256 and all
// pointer arithmetic wraps modulo the program's tape size.
type Machine struct {
	prog  *compiler.Program
	tape  []byte
	index int
	block *compiler.Block
	open  []*compiler.Block // loop heads between block and the program end
	in    io.ByteReader
	out   io.ByteWriter
	steps int
	done  bool
}

// NewMachine builds a machine for prog reading input from in and writing
// output to out. Readers and writers that are not byte-oriented already get
// buffered; buffered output is flushed when the program terminates.
func NewMachine(prog *compiler.Program, in io.Reader, out io.Writer) *Machine {
	m := &Machine{
		prog:  prog,
		tape:  make([]byte, prog.TapeSize),
		block: prog.Root,
	}
	if br, ok := in.(io.ByteReader); ok {
		m.in = br
	} else {
		m.in = bufio.NewReader(in)
	}
	if bw, ok := out.(io.ByteWriter); ok {
		m.out = bw
	} else {
		m.out = bufio.NewWriter(out)
	}
	return m
}

// Done reports whether the program has terminated.
func (m *Machine) Done() bool { return m.done }

// Index is the current cell pointer.
func (m *Machine) Index() int { return m.index }

// Steps is the number of blocks executed so far.
func (m *Machine) Steps() int { return m.steps }

// Tape exposes the live cell array for inspection.
func (m *Machine) Tape() []byte { return m.tape }

// Depth is the current loop nesting at the execution point.
func (m *Machine) Depth() int { return len(m.open) }

// Step executes the current block: at a loop head it first tests the
// current cell and branches to the loop exit on zero, otherwise it applies
// every op and advances by the block's net shift. One call per block keeps
// stepping cheap enough for an interactive front end.
func (m *Machine) Step() error {
	if m.done {
		return nil
	}
	b := m.block
	m.steps++

	if b.Branch != nil {
		if m.tape[m.index] == 0 {
			m.leaveLoop(b)
			m.block = b.Branch
			return m.settle()
		}
		if n := len(m.open); n == 0 || m.open[n-1] != b {
			m.open = append(m.open, b)
		}
	}

	for i := range b.Ops {
		op := &b.Ops[i]
		cell := (m.index + op.Index) % m.prog.TapeSize
		switch op.Tag {
		case compiler.OpAdd:
			m.tape[cell] += op.Delta
		case compiler.OpInput:
			for j := 0; j < op.Count; j++ {
				c, err := m.in.ReadByte()
				if err == io.EOF {
					// Exhausted input reads as zero.
					m.tape[cell] = 0
					continue
				}
				if err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				m.tape[cell] = c
			}
		case compiler.OpOutput:
			for j := 0; j < op.Count; j++ {
				if err := m.out.WriteByte(m.tape[cell]); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			}
		default:
			return fmt.Errorf("unknown op tag %v", op.Tag)
		}
	}

	m.index = (m.index + b.LastIndex) % m.prog.TapeSize
	m.block = b.Next
	return m.settle()
}

// leaveLoop pops b off the open-loop stack if it is the innermost entry.
func (m *Machine) leaveLoop(b *compiler.Block) {
	if n := len(m.open); n != 0 && m.open[n-1] == b {
		m.open = m.open[:n-1]
	}
}

// settle marks the machine done when the block chain ends and drains any
// buffered output.
func (m *Machine) settle() error {
	if m.block != nil {
		return nil
	}
	m.done = true
	if f, ok := m.out.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

// Run executes the program to completion.
func (m *Machine) Run() error {
	for !m.done {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}
