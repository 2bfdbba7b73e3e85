package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"gobfc/pkg/compiler"
	"gobfc/pkg/grid"
	"gobfc/pkg/interp"
)

const (
	gridCols      = 64
	cellSize      = 8
	textAreaH     = 104
	stepsPerFrame = 10000
)

// keyFeed queues typed characters for the program's ',' reads. An empty
// queue reads as zero so the interpreter never blocks the frame loop.
type keyFeed struct {
	buf []byte
}

func (k *keyFeed) push(b byte) {
	k.buf = append(k.buf, b)
}

func (k *keyFeed) ReadByte() (byte, error) {
	if len(k.buf) == 0 {
		return 0, nil
	}
	b := k.buf[0]
	k.buf = k.buf[1:]
	return b, nil
}

func (k *keyFeed) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, _ := k.ReadByte()
	p[0] = b
	return 1, nil
}

// outputLog collects the program's output for the on-screen text area.
type outputLog struct {
	buf []byte
}

func (o *outputLog) WriteByte(b byte) error {
	o.buf = append(o.buf, b)
	return nil
}

func (o *outputLog) Write(p []byte) (int, error) {
	o.buf = append(o.buf, p...)
	return len(p), nil
}

// tail returns the last n printable-ish bytes for display.
func (o *outputLog) tail(n int) string {
	if len(o.buf) <= n {
		return string(o.buf)
	}
	return string(o.buf[len(o.buf)-n:])
}

type Game struct {
	vm      *interp.Machine
	keys    *keyFeed
	out     *outputLog
	tapeImg *ebiten.Image // reused grid canvas
	pixels  []byte
	rows    int
	runErr  error
	paused  bool
}

func (g *Game) Update() error {
	for _, r := range ebiten.AppendInputChars(nil) {
		if r < 256 {
			g.keys.push(byte(r))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.keys.push(10) // ASCII newline
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.keys.push(8) // ASCII backspace
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}

	if g.paused || g.runErr != nil {
		return nil
	}
	for i := 0; i < stepsPerFrame; i++ {
		if g.vm.Done() {
			break
		}
		if err := g.vm.Step(); err != nil {
			g.runErr = err
			break
		}
	}
	return nil
}

// drawTape paints every visible cell as a gray square scaled by its value,
// with the current cell in red.
func (g *Game) drawTape(screen *ebiten.Image) {
	gridW := gridCols * cellSize
	gridH := g.rows * cellSize
	if g.tapeImg == nil {
		g.tapeImg = ebiten.NewImage(gridW, gridH)
		g.pixels = make([]byte, gridW*gridH*4)
	}

	for i := range g.pixels {
		g.pixels[i] = 0
	}
	tape := g.vm.Tape()
	cursor := g.vm.Index()
	for i, v := range tape {
		if i >= g.rows*gridCols {
			break
		}
		px, py := grid.CellOrigin(i, gridCols, cellSize)
		r, gr, b := v, v, v
		if i == cursor {
			r, gr, b = 255, v/2, v/2
		}
		// Leave a 1px gap so cell boundaries stay visible.
		for y := py; y < py+cellSize-1; y++ {
			rowOff := (y*gridW + px) * 4
			for x := 0; x < cellSize-1; x++ {
				off := rowOff + x*4
				g.pixels[off+0] = r
				g.pixels[off+1] = gr
				g.pixels[off+2] = b
				g.pixels[off+3] = 0xFF
			}
		}
	}
	g.tapeImg.WritePixels(g.pixels)
	screen.DrawImage(g.tapeImg, nil)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawTape(screen)

	face := basicfont.Face7x13
	baseY := g.rows*cellSize + 16
	status := fmt.Sprintf("step %d  index %d  depth %d", g.vm.Steps(), g.vm.Index(), g.vm.Depth())
	switch {
	case g.runErr != nil:
		status += "  [error: " + g.runErr.Error() + "]"
	case g.vm.Done():
		status += "  [done]"
	case g.paused:
		status += "  [paused, space resumes]"
	}
	text.Draw(screen, status, face, 4, baseY, color.White)
	text.Draw(screen, "output:", face, 4, baseY+20, color.White)
	text.Draw(screen, g.out.tail(70), face, 4, baseY+36, color.RGBA{0x80, 0xFF, 0x80, 0xFF})
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return gridCols * cellSize, g.rows*cellSize + textAreaH
}

func main() {
	memSize := flag.Int("mem", 3000, "tape size in cells")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: desktop [-mem cells] <input.bf>")
		os.Exit(2)
	}

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("read source file: %v", err)
	}
	prog, err := compiler.Parse(src, *memSize)
	if err != nil {
		log.Fatalf("parse: %v", err)
	}

	keys := &keyFeed{}
	out := &outputLog{}
	game := &Game{
		vm:   interp.NewMachine(prog, keys, out),
		keys: keys,
		out:  out,
		rows: grid.Rows(prog.TapeSize, gridCols),
	}

	ebiten.SetWindowSize(gridCols*cellSize, game.rows*cellSize+textAreaH)
	ebiten.SetWindowTitle("gobfc tape")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
