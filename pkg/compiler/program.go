package compiler

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Program is the parse result: the root of the block graph plus the tape
// size the offsets were folded against. It is handed to exactly one emitter
// or interpreter.
type Program struct {
	Root     *Block
	TapeSize int
}

// Dump writes a readable listing of the block graph: one header per block,
// one line per op, loop bodies indented. Block ids are assigned in visit
// order, so the output is stable for a given program.
func (p *Program) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	ids := make(map[*Block]int)
	idFor := func(b *Block) int {
		id, ok := ids[b]
		if !ok {
			id = len(ids)
			ids[b] = id
		}
		return id
	}

	if _, err := fmt.Fprintf(bw, "tape size: %d\n", p.TapeSize); err != nil {
		return err
	}

	var open []*Block
	block := p.Root
	for {
		indent := strings.Repeat("\t", len(open))
		kind := "block"
		if block.Branch != nil {
			kind = "loop"
		}
		fmt.Fprintf(bw, "%s%s b%d\n", indent, kind, idFor(block))
		if block.Branch != nil {
			open = append(open, block)
		}
		for _, op := range block.Ops {
			switch op.Tag {
			case OpAdd:
				fmt.Fprintf(bw, "%s\tadd[%d] %+d\n", indent, op.Index, SignedDelta(op.Delta))
			case OpInput:
				fmt.Fprintf(bw, "%s\tinput[%d] x%d\n", indent, op.Index, op.Count)
			case OpOutput:
				fmt.Fprintf(bw, "%s\toutput[%d] x%d\n", indent, op.Index, op.Count)
			}
		}
		if _, err := fmt.Fprintf(bw, "%s\tshift %d\n", indent, block.LastIndex); err != nil {
			return err
		}

		next := block.Next
		if n := len(open); n != 0 && next == open[n-1] {
			head := open[n-1]
			open = open[:n-1]
			fmt.Fprintf(bw, "%send b%d\n", strings.Repeat("\t", len(open)), idFor(head))
			block = head.Branch
			continue
		}
		if next == nil {
			break
		}
		block = next
	}

	return bw.Flush()
}
