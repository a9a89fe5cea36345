// Package window previews the panel in a desktop window.
package window

import (
	"context"
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/robotalks/sonar.go/pkg/display"
)

// Panel is a display.Panel shown in an ebiten window.
type Panel struct {
	Title string
	Scale int

	mu    sync.Mutex
	frame []byte
}

// New creates a window panel, each pixel drawn as a scale x scale block.
func New(title string, scale int) *Panel {
	if scale <= 0 {
		scale = 4
	}
	return &Panel{Title: title, Scale: scale, frame: make([]byte, display.BufferSize)}
}

// Init implements display.Panel.
func (p *Panel) Init() error {
	return nil
}

// Flush implements display.Panel.
func (p *Panel) Flush(pix []byte) error {
	if len(pix) != display.BufferSize {
		return fmt.Errorf("invalid frame size %d", len(pix))
	}
	p.mu.Lock()
	copy(p.frame, pix)
	p.mu.Unlock()
	return nil
}

// Run opens the window and blocks until it is closed or ctx is done.
// It must be called from the main goroutine.
func (p *Panel) Run(ctx context.Context) error {
	ebiten.SetWindowTitle(p.Title)
	ebiten.SetWindowSize(display.Width*p.Scale, display.Height*p.Scale)
	ebiten.SetTPS(30)
	return ebiten.RunGame(&game{ctx: ctx, panel: p})
}

type game struct {
	ctx   context.Context
	panel *Panel
	img   *ebiten.Image
	rgba  []byte
	pix   []byte
}

func (g *game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = ebiten.NewImage(display.Width, display.Height)
		g.rgba = make([]byte, display.Width*display.Height*4)
		g.pix = make([]byte, display.BufferSize)
	}
	g.panel.mu.Lock()
	copy(g.pix, g.panel.frame)
	g.panel.mu.Unlock()

	for y := 0; y < display.Height; y++ {
		for x := 0; x < display.Width; x++ {
			c := display.Off
			if display.PixelAt(g.pix, x, y) {
				c = display.On
			}
			j := (y*display.Width + x) * 4
			g.rgba[j+0] = c.R
			g.rgba[j+1] = c.G
			g.rgba[j+2] = c.B
			g.rgba[j+3] = c.A
		}
	}
	g.img.WritePixels(g.rgba)
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return display.Width, display.Height
}
