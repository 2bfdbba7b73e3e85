package compiler

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Target selects the emitter's output language.
type Target int

const (
	TargetBF        Target = iota // canonical Brainfuck rewrite
	TargetNASMLibc                // NASM using putchar/getchar/exit
	TargetNASMLinux               // NASM using raw Linux syscalls
)

var targetNames = [...]string{
	TargetBF:        "bf",
	TargetNASMLibc:  "nasm-libc",
	TargetNASMLinux: "nasm-linux",
}

func (t Target) String() string {
	if t >= 0 && int(t) < len(targetNames) {
		return targetNames[t]
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

// ParseTarget maps a command-line selector onto a Target.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "bf", "brainfuck":
		return TargetBF, nil
	case "nasm-libc", "libc":
		return TargetNASMLibc, nil
	case "nasm-linux", "linux":
		return TargetNASMLinux, nil
	default:
		return 0, fmt.Errorf("unknown target %q (want bf, nasm-libc or nasm-linux)", s)
	}
}

// emitter walks the block graph and prints one target's text. The buffered
// writer keeps the first write error sticky, so the walk prints without
// checking every line and the error surfaces from the final Flush.
type emitter struct {
	w        *bufio.Writer
	tapeSize int
	target   Target
	labels   map[*Block]int
	depth    int // current loop nesting, used for Brainfuck indentation
}

func (e *emitter) line(format string, args ...any) {
	fmt.Fprintf(e.w, format+"\n", args...)
}

// labelFor hands out a monotonically increasing id on first visit to each
// loop head; ids key the .loop_N/.end_N label pairs.
func (e *emitter) labelFor(b *Block) int {
	id, ok := e.labels[b]
	if !ok {
		id = len(e.labels)
		e.labels[b] = id
	}
	return id
}

// bfLine prints one indented line of Brainfuck.
func (e *emitter) bfLine(s string) {
	e.w.WriteString(strings.Repeat("    ", e.depth))
	e.w.WriteString(s)
	e.w.WriteByte('\n')
}

// Emit writes prog to w in the selected target language. Any failure writing
// to w aborts the walk and is returned wrapped with the target name.
func Emit(w io.Writer, prog *Program, target Target) error {
	switch target {
	case TargetBF, TargetNASMLibc, TargetNASMLinux:
	default:
		return fmt.Errorf("unsupported target %v", target)
	}

	e := &emitter{
		w:        bufio.NewWriter(w),
		tapeSize: prog.TapeSize,
		target:   target,
		labels:   make(map[*Block]int),
	}

	e.fileHead()
	var open []*Block
	block := prog.Root
	for {
		if block.Branch != nil {
			e.loopHead(block)
			open = append(open, block)
			e.depth++
		}

		// Offsets are block-relative: cur tracks where the emitted code has
		// left the pointer since block entry.
		cur := 0
		for _, op := range block.Ops {
			if op.Index != cur {
				e.move(forwardDist(cur, op.Index, e.tapeSize))
				cur = op.Index
			}
			switch op.Tag {
			case OpAdd:
				e.opAdd(op.Delta)
			case OpInput:
				e.opInput(op.Count)
			case OpOutput:
				e.opOutput(op.Count)
			}
		}
		if block.LastIndex != cur {
			e.move(forwardDist(cur, block.LastIndex, e.tapeSize))
		}

		next := block.Next
		if n := len(open); n != 0 && next == open[n-1] {
			head := open[n-1]
			open = open[:n-1]
			e.depth--
			e.loopTail(head)
			block = head.Branch
			continue
		}
		if next == nil {
			break
		}
		block = next
	}
	e.fileTail()

	if err := e.w.Flush(); err != nil {
		return fmt.Errorf("emit %s: %w", target, err)
	}
	return nil
}

// forwardDist is the rightward distance from cell offset a to b on the tape.
func forwardDist(a, b, tapeSize int) int {
	d := b - a
	if d < 0 {
		d += tapeSize
	}
	return d
}

func (e *emitter) fileHead() {
	switch e.target {
	case TargetNASMLinux:
		e.line("global _start")
		e.line("")
		e.line("section .bss")
		e.line("tmp resd 1")
		e.line("")
		e.line("section .data")
		e.line("mem db %d dup(0)", e.tapeSize)
		e.line("")
		e.line("section .text")
		e.line("_start:")
		e.line("xor esi, esi")
	case TargetNASMLibc:
		e.line("extern putchar")
		e.line("extern getchar")
		e.line("extern exit")
		e.line("global _start")
		e.line("")
		e.line("section .data")
		e.line("mem db %d dup(0)", e.tapeSize)
		e.line("")
		e.line("section .text")
		e.line("_start:")
		e.line("xor esi, esi")
	}
}

func (e *emitter) fileTail() {
	switch e.target {
	case TargetNASMLinux:
		e.line("mov eax, 1")
		e.line("mov ebx, 0")
		e.line("int 80h")
	case TargetNASMLibc:
		e.line("xor edi, edi")
		e.line("call exit")
	}
}

func (e *emitter) loopHead(b *Block) {
	switch e.target {
	case TargetBF:
		e.bfLine("[")
	default:
		id := e.labelFor(b)
		e.line(".loop_%d:", id)
		e.line("cmp byte [mem + esi], 0")
		e.line("je .end_%d", id)
	}
}

func (e *emitter) loopTail(b *Block) {
	switch e.target {
	case TargetBF:
		e.bfLine("]")
	default:
		id := e.labelFor(b)
		e.line("jmp .loop_%d", id)
		e.line(".end_%d:", id)
	}
}

// move shifts the cell pointer dist cells to the right, where dist is in
// [1, tapeSize). The Brainfuck target picks whichever direction is shorter;
// the assembly targets add and reduce modulo the tape size.
func (e *emitter) move(dist int) {
	switch e.target {
	case TargetBF:
		if n := shortestMove(dist, e.tapeSize); n > 0 {
			e.bfLine(strings.Repeat(">", n))
		} else {
			e.bfLine(strings.Repeat("<", -n))
		}
	default:
		e.line("add si, %d", dist)
		e.line("xor dx, dx")
		e.line("mov ax, si")
		e.line("mov bx, %d", e.tapeSize)
		e.line("div bx")
		e.line("mov si, dx")
	}
}

func (e *emitter) opAdd(delta byte) {
	switch e.target {
	case TargetBF:
		if d := SignedDelta(delta); d > 0 {
			e.bfLine(strings.Repeat("+", d))
		} else {
			e.bfLine(strings.Repeat("-", -d))
		}
	default:
		e.line("mov al, [mem + esi]")
		e.line("add al, %d", delta)
		e.line("mov [mem + esi], al")
	}
}

func (e *emitter) opInput(count int) {
	switch e.target {
	case TargetBF:
		e.bfLine(strings.Repeat(",", count))
	case TargetNASMLibc:
		for i := 0; i < count; i++ {
			e.line("call getchar")
			e.line("mov [mem + esi], al")
		}
	case TargetNASMLinux:
		for i := 0; i < count; i++ {
			e.line("mov eax, 0x3")
			e.line("mov ebx, 0x0")
			e.line("mov ecx, tmp")
			e.line("mov edx, 0x1")
			e.line("int 80h")
			e.line("mov al, [tmp]")
			e.line("mov [mem + esi], al")
		}
	}
}

func (e *emitter) opOutput(count int) {
	switch e.target {
	case TargetBF:
		e.bfLine(strings.Repeat(".", count))
	case TargetNASMLibc:
		for i := 0; i < count; i++ {
			e.line("xor rdi, rdi")
			e.line("mov dil, [mem + esi]")
			e.line("call putchar")
		}
	case TargetNASMLinux:
		e.line("xor eax, eax")
		e.line("mov al, [mem + esi]")
		e.line("mov [tmp], eax")
		for i := 0; i < count; i++ {
			e.line("mov eax, 0x4")
			e.line("mov ebx, 0x1")
			e.line("mov ecx, tmp")
			e.line("mov edx, 0x1")
			e.line("int 80h")
		}
	}
}
