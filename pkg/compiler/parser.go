package compiler

import "fmt"

// SyntaxError reports unbalanced brackets, with the position of the byte at
// fault. Offset is a 0-based byte offset into the source; Line is 1-based.
type SyntaxError struct {
	Offset int
	Line   int
	msg    string
}

func (e *SyntaxError) Error() string { return e.msg }

// openLoop records a loop head awaiting its closing bracket, along with the
// position of the '[' that opened it, for error reporting.
type openLoop struct {
	head   *Block
	offset int
	line   int
}

// Parse scans src once, left to right, and builds the block graph. Every
// byte outside the eight-symbol alphabet is ignored. The pointer offset is
// tracked relative to the current block and folded into each op's Index;
// the leftover shift at a block boundary becomes the block's LastIndex.
func Parse(src []byte, tapeSize int) (*Program, error) {
	if tapeSize < 1 {
		return nil, fmt.Errorf("tape size must be at least 1, got %d", tapeSize)
	}

	root := &Block{}
	current := root
	var unclosed []openLoop
	index := 0
	line := 1

	for pos, c := range src {
		switch c {
		case '+':
			current.appendOp(Op{Tag: OpAdd, Index: index, Delta: 1})
		case '-':
			current.appendOp(Op{Tag: OpAdd, Index: index, Delta: 255})
		case ',':
			current.appendOp(Op{Tag: OpInput, Index: index, Count: 1})
		case '.':
			current.appendOp(Op{Tag: OpOutput, Index: index, Count: 1})
		case '>':
			index = (index + 1) % tapeSize
		case '<':
			index = (index + tapeSize - 1) % tapeSize
		case '[':
			current.LastIndex = index
			index = 0
			head := &Block{}
			current.Next = head
			unclosed = append(unclosed, openLoop{head: head, offset: pos, line: line})
			current = head
		case ']':
			if len(unclosed) == 0 {
				return nil, &SyntaxError{
					Offset: pos,
					Line:   line,
					msg:    fmt.Sprintf("unmatched ']' at byte %d (line %d)", pos, line),
				}
			}
			current.LastIndex = index
			index = 0
			head := unclosed[len(unclosed)-1].head
			unclosed = unclosed[:len(unclosed)-1]
			cont := &Block{}
			current.Next = head // back-edge into the loop head
			head.Branch = cont
			current = cont
		case '\n':
			line++
		}
	}

	current.LastIndex = index
	if len(unclosed) != 0 {
		inner := unclosed[len(unclosed)-1]
		return nil, &SyntaxError{
			Offset: inner.offset,
			Line:   inner.line,
			msg: fmt.Sprintf("%d unclosed '[' at end of input, innermost at byte %d (line %d)",
				len(unclosed), inner.offset, inner.line),
		}
	}

	return &Program{Root: root, TapeSize: tapeSize}, nil
}
