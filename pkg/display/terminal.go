package display

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Dump renders a frame as ASCII art: '#' for lit pixels, '.' for dark ones,
// framed by a border.
func Dump(pix []byte) string {
	var sb strings.Builder
	border := "+" + strings.Repeat("-", Width) + "+\n"
	sb.WriteString(border)
	for y := 0; y < Height; y++ {
		sb.WriteByte('|')
		for x := 0; x < Width; x++ {
			if PixelAt(pix, x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(border)
	return sb.String()
}

// PixelAt reads a pixel from a frame in page layout.
func PixelAt(pix []byte, x, y int) bool {
	i := x + (y/8)*Width
	if x < 0 || x >= Width || y < 0 || y >= Height || i >= len(pix) {
		return false
	}
	return pix[i]&(1<<uint(y%8)) != 0
}

// TerminalPanel keeps the last frame and optionally prints every frame.
type TerminalPanel struct {
	mu     sync.Mutex
	out    io.Writer
	last   []byte
	frames int
}

// NewTerminalPanel creates a panel printing to out; nil out only records.
func NewTerminalPanel(out io.Writer) *TerminalPanel {
	return &TerminalPanel{out: out, last: make([]byte, BufferSize)}
}

// Init implements Panel.
func (p *TerminalPanel) Init() error {
	return nil
}

// Flush implements Panel.
func (p *TerminalPanel) Flush(pix []byte) error {
	if len(pix) != BufferSize {
		return fmt.Errorf("invalid frame size %d, want %d", len(pix), BufferSize)
	}
	p.mu.Lock()
	copy(p.last, pix)
	p.frames++
	out := p.out
	p.mu.Unlock()
	if out == nil {
		return nil
	}
	_, err := io.WriteString(out, Dump(pix))
	return err
}

// Frame returns a copy of the last frame.
func (p *TerminalPanel) Frame() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.last...)
}

// Frames returns how many frames were flushed.
func (p *TerminalPanel) Frames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// String implements fmt.Stringer with the ASCII art of the last frame.
func (p *TerminalPanel) String() string {
	return Dump(p.Frame())
}
