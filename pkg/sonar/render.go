package sonar

import (
	"fmt"
	"math"
)

const (
	// ScreenWidth is the panel width in pixels, the full progress bar.
	ScreenWidth = 128
	// BarRow is the pixel row of the progress bar.
	BarRow = 27
	// ErrorText replaces the reading beyond MaxRange.
	ErrorText = "Erro"
)

// Surface is what the presenter draws on.
type Surface interface {
	Init() error
	Clear()
	DrawString(x, y int16, s string, scale int)
	DrawLine(x0, y0, x1, y1 int16)
	Show() error
}

// FormatReading returns the text shown for d and whether d is in range.
func FormatReading(d Distance) (string, bool) {
	if d > MaxRange {
		return ErrorText, false
	}
	return fmt.Sprintf("Dist: %.2f cm", float64(d)), true
}

// ProgressLength is the progress bar length in pixels, floor(d*128/200)
// clamped to [0, 128].
func ProgressLength(d Distance) int {
	v := math.Floor(float64(d) * ScreenWidth / float64(BarFullScale))
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= ScreenWidth:
		return ScreenWidth
	}
	return int(v)
}

// Render draws one frame for d and shows it. The bar covers pixels 0 to
// length-1 of BarRow.
func Render(s Surface, d Distance) (string, error) {
	s.Clear()
	text, ok := FormatReading(d)
	s.DrawString(0, 0, text, 1)
	if ok {
		if n := ProgressLength(d); n > 0 {
			s.DrawLine(0, BarRow, int16(n-1), BarRow)
		}
	}
	return text, s.Show()
}
