package compiler

import (
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string, tapeSize int) *Program {
	t.Helper()
	prog, err := Parse([]byte(src), tapeSize)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return prog
}

func TestParseRunMerge(t *testing.T) {
	tests := []struct {
		src       string
		wantDelta byte
	}{
		{"+", 1},
		{"+++", 3},
		{"--", 254},
		{"+++--", 1},
		{"-+++", 2},
	}
	for _, tc := range tests {
		prog := mustParse(t, tc.src, 3000)
		ops := prog.Root.Ops
		if len(ops) != 1 {
			t.Errorf("Parse(%q): got %d ops; want 1", tc.src, len(ops))
			continue
		}
		if ops[0].Tag != OpAdd || ops[0].Delta != tc.wantDelta {
			t.Errorf("Parse(%q): got %v delta %d; want add delta %d", tc.src, ops[0].Tag, ops[0].Delta, tc.wantDelta)
		}
	}
}

func TestParseCancellation(t *testing.T) {
	tests := []string{"+-", "-+", "++--", "+-+-", strings.Repeat("+", 256)}
	for _, src := range tests {
		prog := mustParse(t, src, 3000)
		if n := len(prog.Root.Ops); n != 0 {
			t.Errorf("Parse(%q): got %d ops; want 0 (net-zero add must cancel)", src, n)
		}
	}
}

func TestParseIOMerge(t *testing.T) {
	prog := mustParse(t, ",,..", 3000)
	ops := prog.Root.Ops
	if len(ops) != 2 {
		t.Fatalf("got %d ops; want 2", len(ops))
	}
	if ops[0].Tag != OpInput || ops[0].Count != 2 {
		t.Errorf("ops[0] = %v x%d; want input x2", ops[0].Tag, ops[0].Count)
	}
	if ops[1].Tag != OpOutput || ops[1].Count != 2 {
		t.Errorf("ops[1] = %v x%d; want output x2", ops[1].Tag, ops[1].Count)
	}
}

func TestParseOffsetFolding(t *testing.T) {
	// Ops on different cells never merge; the offset folds into Index and
	// the leftover shift into LastIndex.
	prog := mustParse(t, ">+<+>>", 3000)
	ops := prog.Root.Ops
	if len(ops) != 2 {
		t.Fatalf("got %d ops; want 2", len(ops))
	}
	if ops[0].Index != 1 || ops[1].Index != 0 {
		t.Errorf("indexes = %d, %d; want 1, 0", ops[0].Index, ops[1].Index)
	}
	if prog.Root.LastIndex != 2 {
		t.Errorf("LastIndex = %d; want 2", prog.Root.LastIndex)
	}
}

func TestParseOffsetWraparound(t *testing.T) {
	const mem = 10
	tests := []struct {
		src  string
		want int
	}{
		{"<", mem - 1},
		{strings.Repeat(">", mem), 0},
		{strings.Repeat(">", mem+3), 3},
		{"<<<", mem - 3},
	}
	for _, tc := range tests {
		prog := mustParse(t, tc.src, mem)
		if prog.Root.LastIndex != tc.want {
			t.Errorf("Parse(%q): LastIndex = %d; want %d", tc.src, prog.Root.LastIndex, tc.want)
		}
	}
}

func TestParseCommentBytesIgnored(t *testing.T) {
	prog := mustParse(t, "this is a comment + with one real plus\n", 3000)
	ops := prog.Root.Ops
	if len(ops) != 1 || ops[0].Tag != OpAdd || ops[0].Delta != 1 {
		t.Fatalf("got ops %v; want a single add of 1", ops)
	}
}

func TestParseLoopShape(t *testing.T) {
	prog := mustParse(t, "+[-]+", 3000)
	root := prog.Root

	head := root.Next
	if head == nil || head.Branch == nil {
		t.Fatal("expected a loop head after the root block")
	}
	// Single-block body: the back-edge points at the head itself.
	if head.Next != head {
		t.Errorf("loop tail Next = %p; want the head %p", head.Next, head)
	}
	cont := head.Branch
	if cont == nil || cont.Next != nil {
		t.Fatal("expected a terminal continuation block")
	}
	if len(cont.Ops) != 1 || cont.Ops[0].Delta != 1 {
		t.Errorf("continuation ops = %v; want a single add of 1", cont.Ops)
	}
}

func TestParseNestedLoops(t *testing.T) {
	prog := mustParse(t, "[[+]]", 3000)
	outer := prog.Root.Next
	if outer == nil || outer.Branch == nil {
		t.Fatal("expected outer loop head")
	}
	inner := outer.Next
	if inner == nil || inner.Branch == nil {
		t.Fatal("expected inner loop head")
	}
	if inner.Next != inner {
		t.Error("inner back-edge does not return to the inner head")
	}
	// The inner loop's continuation closes the outer loop.
	if inner.Branch.Next != outer {
		t.Error("outer back-edge does not return to the outer head")
	}
	if outer.Branch == nil || outer.Branch.Next != nil {
		t.Error("outer continuation should terminate the program")
	}
}

func TestParseOffsetResetsAtLoopBoundary(t *testing.T) {
	// Offsets are block-relative: inside the loop the accumulator starts
	// over, so the '+' after '>' lands on Index 1 of the body block.
	prog := mustParse(t, ">>[>+]", 3000)
	if prog.Root.LastIndex != 2 {
		t.Errorf("root LastIndex = %d; want 2", prog.Root.LastIndex)
	}
	head := prog.Root.Next
	if head == nil || len(head.Ops) != 1 {
		t.Fatal("expected one op in the loop body")
	}
	if head.Ops[0].Index != 1 {
		t.Errorf("body op Index = %d; want 1", head.Ops[0].Index)
	}
	if head.LastIndex != 1 {
		t.Errorf("body LastIndex = %d; want 1", head.LastIndex)
	}
}

func TestParseUnmatchedClose(t *testing.T) {
	tests := []struct {
		src        string
		wantOffset int
		wantLine   int
	}{
		{"]", 0, 1},
		{"abc]", 3, 1},
		{"[+]]", 3, 1},
		{"++\n]", 3, 2},
		{"+\n+\n]", 4, 3},
	}
	for _, tc := range tests {
		_, err := Parse([]byte(tc.src), 3000)
		var serr *SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("Parse(%q): err = %v; want *SyntaxError", tc.src, err)
			continue
		}
		if serr.Offset != tc.wantOffset || serr.Line != tc.wantLine {
			t.Errorf("Parse(%q): offset %d line %d; want offset %d line %d",
				tc.src, serr.Offset, serr.Line, tc.wantOffset, tc.wantLine)
		}
	}
}

func TestParseUnmatchedOpen(t *testing.T) {
	tests := []struct {
		src        string
		wantOffset int
	}{
		{"[", 0},
		{"+[", 1},
		{"[[]", 0},
		{"[[", 1},
	}
	for _, tc := range tests {
		_, err := Parse([]byte(tc.src), 3000)
		var serr *SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("Parse(%q): err = %v; want *SyntaxError", tc.src, err)
			continue
		}
		if serr.Offset != tc.wantOffset {
			t.Errorf("Parse(%q): offset = %d; want %d", tc.src, serr.Offset, tc.wantOffset)
		}
	}
}

func TestParseBalancedBracketsNeverFail(t *testing.T) {
	tests := []string{"", "[]", "[[]]", "[][]", "+[>[<]]-", "[,[.[-]]]"}
	for _, src := range tests {
		if _, err := Parse([]byte(src), 3000); err != nil {
			t.Errorf("Parse(%q) failed: %v", src, err)
		}
	}
}

func TestParseBadTapeSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := Parse([]byte("+"), size); err == nil {
			t.Errorf("Parse with tape size %d: expected error", size)
		}
	}
}
