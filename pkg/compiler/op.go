package compiler

import "fmt"

// OpTag identifies the kind of a merged operation.
type OpTag int

const (
	OpAdd    OpTag = iota // wrapping add to one cell
	OpInput               // read bytes into one cell
	OpOutput              // write one cell's byte
)

var opNames = [...]string{
	OpAdd:    "add",
	OpInput:  "input",
	OpOutput: "output",
}

func (t OpTag) String() string {
	if t >= 0 && int(t) < len(opNames) {
		return opNames[t]
	}
	return fmt.Sprintf("OpTag(%d)", int(t))
}

// Op is one run-length-merged operation. Index is the cell the op acts on,
// relative to the pointer position at block entry, always in [0, tapeSize).
// OpAdd uses Delta; OpInput and OpOutput use Count.
type Op struct {
	Tag   OpTag
	Index int
	Delta byte // net wrapping amount added to the cell
	Count int  // repeat count, at least 1
}

// SignedDelta maps a wrapping byte delta onto the range -128..127, so
// 255 reads as -1.
func SignedDelta(d byte) int {
	if d > 127 {
		return int(d) - 256
	}
	return int(d)
}

// shortestMove maps a forward cell distance in [0, tapeSize) onto the signed
// move with fewer steps: positive means right, negative means left around the
// tape. A distance of exactly tapeSize/2 stays a right move.
func shortestMove(dist, tapeSize int) int {
	if dist > tapeSize/2 {
		return dist - tapeSize
	}
	return dist
}
