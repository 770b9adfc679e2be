package panel

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/gorain/pkg/rain"
)

var (
	lcdBackground = color.RGBA{R: 120, G: 170, B: 40, A: 255}
	lcdText       = color.RGBA{R: 20, G: 40, B: 10, A: 255}
	barEmpty      = color.RGBA{R: 90, G: 130, B: 30, A: 255}
	barWet        = color.RGBA{R: 30, G: 90, B: 200, A: 255}
	plotFiltered  = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	plotBaseline  = color.RGBA{R: 100, G: 200, B: 255, A: 255}
	plotGrid      = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	plotTrend     = map[rain.TrendState]color.Color{
		rain.Stable:  color.RGBA{R: 150, G: 150, B: 150, A: 255},
		rain.Rising:  color.RGBA{R: 200, G: 60, B: 60, A: 255},
		rain.Falling: color.RGBA{R: 60, G: 200, B: 60, A: 255},
	}
)

const (
	textSize  = 22
	padding   = 8
	barHeight = 14
)

// lcdRenderer renders the LCD widget.
type lcdRenderer struct {
	lcd *LCD

	background *canvas.Rectangle
	line1      *canvas.Text
	line2      *canvas.Text
	barBack    *canvas.Rectangle
	barFill    *canvas.Rectangle
	plotBack   *canvas.Rectangle

	// Rebuilt on every refresh
	plotLines []fyne.CanvasObject

	objects  []fyne.CanvasObject
	lastSize fyne.Size
}

func newRenderer(l *LCD) *lcdRenderer {
	newText := func() *canvas.Text {
		t := canvas.NewText("", lcdText)
		t.TextSize = textSize
		t.TextStyle = fyne.TextStyle{Monospace: true, Bold: true}
		return t
	}

	r := &lcdRenderer{
		lcd:        l,
		background: canvas.NewRectangle(lcdBackground),
		line1:      newText(),
		line2:      newText(),
		barBack:    canvas.NewRectangle(barEmpty),
		barFill:    canvas.NewRectangle(barWet),
		plotBack:   canvas.NewRectangle(color.Black),
	}
	r.rebuildObjects()
	return r
}

// MinSize returns the minimum size of the widget.
func (r *lcdRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

// Layout arranges the widget components.
func (r *lcdRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	lineHeight := r.line1.MinSize().Height
	r.line1.Move(fyne.NewPos(padding, padding))
	r.line2.Move(fyne.NewPos(padding, padding+lineHeight))

	barY := padding*2 + lineHeight*2
	r.barBack.Move(fyne.NewPos(padding, barY))
	r.barBack.Resize(fyne.NewSize(size.Width-2*padding, barHeight))

	plotY := barY + barHeight + padding
	r.plotBack.Move(fyne.NewPos(padding, plotY))
	r.plotBack.Resize(fyne.NewSize(size.Width-2*padding, max(size.Height-plotY-padding, 0)))

	if r.lastSize != size {
		r.lastSize = size
		r.lcd.BaseWidget.Refresh()
	}
}

// Refresh updates the widget display.
func (r *lcdRenderer) Refresh() {
	r.lcd.mu.RLock()
	lines := r.lcd.lines
	percent := r.lcd.percent
	trend := r.lcd.trend
	filtered := r.lcd.filtered
	baseline := r.lcd.baseline
	r.lcd.mu.RUnlock()

	r.line1.Text = lines[0]
	r.line2.Text = lines[1]
	r.line1.Refresh()
	r.line2.Refresh()

	barSize := r.barBack.Size()
	r.barFill.Move(r.barBack.Position())
	r.barFill.Resize(fyne.NewSize(barSize.Width*float32(clampPercent(percent))/100, barSize.Height))
	r.barFill.Refresh()

	r.plotBack.StrokeColor = plotTrend[trend]
	r.plotBack.StrokeWidth = 2
	r.plotBack.Refresh()

	r.plotLines = r.plotLines[:0]
	pos := r.plotBack.Position()
	size := r.plotBack.Size()
	if size.Width > 0 && size.Height > 0 {
		r.drawGrid(pos, size)
		r.drawSeries(pos, size, baseline, plotBaseline, 1)
		r.drawSeries(pos, size, filtered, plotFiltered, 1.5)
	}

	r.rebuildObjects()
}

// drawGrid draws quarter lines at the category thresholds.
func (r *lcdRenderer) drawGrid(pos fyne.Position, size fyne.Size) {
	for i := 1; i < 4; i++ {
		y := pos.Y + float32(i)*size.Height/4
		line := canvas.NewLine(plotGrid)
		line.Position1 = fyne.NewPos(pos.X, y)
		line.Position2 = fyne.NewPos(pos.X+size.Width, y)
		line.StrokeWidth = 1
		r.plotLines = append(r.plotLines, line)
	}
}

// drawSeries draws raw-scale values as connected segments. Dry readings
// sit at the bottom, so the curve rises as the sensor gets wetter.
func (r *lcdRenderer) drawSeries(pos fyne.Position, size fyne.Size, values []int, c color.Color, width float32) {
	if len(values) < 2 {
		return
	}

	step := size.Width / float32(len(values)-1)
	point := func(i int) fyne.Position {
		v := min(max(values[i], 0), rain.MaxRaw)
		return fyne.NewPos(pos.X+float32(i)*step, pos.Y+float32(v)*size.Height/rain.MaxRaw)
	}

	for i := range len(values) - 1 {
		line := canvas.NewLine(c)
		line.Position1 = point(i)
		line.Position2 = point(i + 1)
		line.StrokeWidth = width
		r.plotLines = append(r.plotLines, line)
	}
}

func (r *lcdRenderer) rebuildObjects() {
	r.objects = r.objects[:0]
	r.objects = append(r.objects, r.background, r.line1, r.line2, r.barBack, r.barFill, r.plotBack)
	r.objects = append(r.objects, r.plotLines...)
}

// Objects returns all canvas objects.
func (r *lcdRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *lcdRenderer) Destroy() {}

func clampPercent(p int) int {
	return min(max(p, 0), 100)
}
