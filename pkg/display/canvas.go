// Package display holds the off-screen framebuffer of the 128x32 monochrome
// panel and the panels it can be flushed to.
//
// The framebuffer uses the SSD1306 page layout: byte x+(y/8)*Width holds the
// column of 8 pixels starting at row y&^7, least significant bit on top.
package display

import (
	"image"
	"image/color"
	"sync"

	"periph.io/x/devices/v3/ssd1306/image1bit"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinydraw"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const (
	Width  = 128
	Height = 32

	// BufferSize is the length in bytes of a full frame.
	BufferSize = Width * Height / 8
)

var (
	// On is the color of a lit pixel.
	On = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	// Off is the color of a dark pixel.
	Off = color.RGBA{A: 0xff}
)

var _ drivers.Displayer = (*Canvas)(nil)

// Panel is a physical (or emulated) display.
type Panel interface {
	Init() error
	// Flush shows a full frame in page layout, len(pix) == BufferSize.
	Flush(pix []byte) error
}

// Canvas is the framebuffer. It implements drivers.Displayer so tinyfont and
// tinydraw can render onto it. Drawing only touches memory; Show pushes the
// frame to the panel.
type Canvas struct {
	mu    sync.Mutex
	img   *image1bit.VerticalLSB
	panel Panel
	font  tinyfont.Fonter

	ascent int16
}

// NewCanvas creates a blank canvas flushing to panel.
func NewCanvas(panel Panel) *Canvas {
	c := &Canvas{
		img:   image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height)),
		panel: panel,
		font:  &proggy.TinySZ8pt7b,
	}
	c.ascent = fontAscent(c.font)
	return c
}

// Init initializes the panel.
func (c *Canvas) Init() error {
	if c.panel == nil {
		return nil
	}
	return c.panel.Init()
}

// Size implements drivers.Displayer.
func (c *Canvas) Size() (x, y int16) {
	return Width, Height
}

// SetPixel implements drivers.Displayer. Any non-black color lights the pixel.
// It does not lock; direct callers must not race with the Draw methods.
func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	c.img.SetBit(int(x), int(y), image1bit.Bit(col.R|col.G|col.B != 0))
}

// Display implements drivers.Displayer.
func (c *Canvas) Display() error {
	return c.Show()
}

// Clear turns every pixel off.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.img.Pix {
		c.img.Pix[i] = 0
	}
}

// DrawString renders s with its top-left corner at (x, y). Each font pixel
// becomes a scale x scale block.
func (c *Canvas) DrawString(x, y int16, s string, scale int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if scale <= 1 {
		tinyfont.WriteLine(c, c.font, x, y+c.ascent, s, On)
		return
	}
	sd := &scaled{Canvas: c, scale: int16(scale), x0: x, y0: y}
	tinyfont.WriteLine(sd, c.font, x, y+c.ascent, s, On)
}

// DrawLine draws a lit line, both endpoints included.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tinydraw.Line(c, x0, y0, x1, y1, On)
}

// Pixel reports whether the pixel at (x, y) is lit.
func (c *Canvas) Pixel(x, y int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return bool(c.img.BitAt(x, y))
}

// Bytes returns a copy of the frame.
func (c *Canvas) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.img.Pix...)
}

// Show flushes the frame to the panel.
func (c *Canvas) Show() error {
	if c.panel == nil {
		return nil
	}
	return c.panel.Flush(c.Bytes())
}

// scaled magnifies glyphs drawn relative to (x0, y0).
type scaled struct {
	*Canvas
	scale  int16
	x0, y0 int16
}

func (s *scaled) SetPixel(x, y int16, col color.RGBA) {
	bx := s.x0 + (x-s.x0)*s.scale
	by := s.y0 + (y-s.y0)*s.scale
	for dy := int16(0); dy < s.scale; dy++ {
		for dx := int16(0); dx < s.scale; dx++ {
			s.Canvas.SetPixel(bx+dx, by+dy, col)
		}
	}
}

// recorder tracks the topmost row a glyph touches.
type recorder struct {
	top int16
}

func (r *recorder) Size() (x, y int16) { return 0x7fff, 0x7fff }
func (r *recorder) Display() error     { return nil }

func (r *recorder) SetPixel(x, y int16, _ color.RGBA) {
	if y < r.top {
		r.top = y
	}
}

// fontAscent measures how far capitals and digits reach above the baseline.
func fontAscent(font tinyfont.Fonter) int16 {
	const baseline = 64
	r := &recorder{top: baseline}
	tinyfont.WriteLine(r, font, 0, baseline, "D0", On)
	return baseline - r.top
}
