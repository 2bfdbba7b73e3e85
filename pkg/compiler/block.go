package compiler

// Block is a straight-line run of merged operations. A block whose Branch is
// non-nil is a loop head: Next leads into the loop body and Branch is the
// continuation taken when the current cell is zero. For the last block of a
// loop body, Next points back at the head, so traversal must track open loops
// instead of following Next blindly.
type Block struct {
	Ops       []Op
	LastIndex int // net pointer shift applied once when control leaves the block
	Next      *Block
	Branch    *Block
}

// appendOp adds op to the block, merging it with the previous op when both
// tag and cell match. A merged add whose delta reaches zero cancels out and
// is removed.
func (b *Block) appendOp(op Op) {
	if n := len(b.Ops); n != 0 {
		last := &b.Ops[n-1]
		if last.Tag == op.Tag && last.Index == op.Index {
			if op.Tag == OpAdd {
				last.Delta += op.Delta
				if last.Delta == 0 {
					b.Ops = b.Ops[:n-1]
				}
			} else {
				last.Count += op.Count
			}
			return
		}
	}
	b.Ops = append(b.Ops, op)
}
