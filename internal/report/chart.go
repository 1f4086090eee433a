package report

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ChartWidth and ChartHeight are the rendered PNG dimensions.
const (
	ChartWidth  = 1000
	ChartHeight = 600
)

const (
	marginLeft   = 80
	marginRight  = 30
	marginTop    = 50
	marginBottom = 60
)

var (
	chartBackground = color.RGBA{0x23, 0x2b, 0x2b, 0xff}
	plotBackground  = color.RGBA{0x11, 0x11, 0x11, 0xff}
	gridColor       = color.RGBA{60, 60, 60, 255}
	axisColor       = color.RGBA{148, 148, 148, 255}
	labelColor      = color.RGBA{200, 200, 200, 255}
)

// Series palette. Comparison charts cycle through the tail of this list.
var (
	gold      = color.RGBA{255, 215, 0, 255}
	lightBlue = color.RGBA{173, 216, 230, 255}
	lime      = color.RGBA{50, 205, 50, 255}
	pink      = color.RGBA{255, 105, 180, 255}
	orange    = color.RGBA{255, 165, 0, 255}
	yellow    = color.RGBA{255, 255, 0, 255}
)

var numberPrinter = message.NewPrinter(language.English)

// Series is one line on a chart. Values align with the chart's dates.
type Series struct {
	Label  string
	Color  color.RGBA
	Values []int
}

// RenderLineChart draws the series over the shared date axis and writes the
// chart to path as PNG.
func RenderLineChart(title string, dates []string, series []Series, path string) error {
	if len(dates) == 0 {
		return errors.New("render chart: no dates")
	}
	for _, s := range series {
		if len(s.Values) != len(dates) {
			return fmt.Errorf("render chart: series %q has %d values for %d dates", s.Label, len(s.Values), len(dates))
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, ChartWidth, ChartHeight))
	fillRect(img, img.Bounds(), chartBackground)

	plot := image.Rect(marginLeft, marginTop, ChartWidth-marginRight, ChartHeight-marginBottom)
	fillRect(img, plot, plotBackground)

	maxValue := 1
	for _, s := range series {
		for _, v := range s.Values {
			if v > maxValue {
				maxValue = v
			}
		}
	}

	drawGrid(img, plot, maxValue)
	drawDateLabels(img, plot, dates)

	for _, s := range series {
		drawSeries(img, plot, s, dates, maxValue)
	}

	drawText(img, title, marginLeft, 22, labelColor)
	drawLegend(img, series)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	return nil
}

func fillRect(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

// drawGrid draws five horizontal gridlines with grouped value labels, plus
// the two axes.
func drawGrid(img *image.RGBA, plot image.Rectangle, maxValue int) {
	for i := 1; i <= 5; i++ {
		value := maxValue * i / 5
		y := scaleY(plot, value, maxValue)
		for x := plot.Min.X; x < plot.Max.X; x++ {
			img.SetRGBA(x, y, gridColor)
		}
		label := numberPrinter.Sprintf("%d", value)
		drawText(img, label, plot.Min.X-textWidth(label)-6, y+4, labelColor)
	}
	for x := plot.Min.X; x < plot.Max.X; x++ {
		img.SetRGBA(x, plot.Max.Y-1, axisColor)
	}
	for y := plot.Min.Y; y < plot.Max.Y; y++ {
		img.SetRGBA(plot.Min.X, y, axisColor)
	}
}

// drawDateLabels spreads about six date labels along the x axis.
func drawDateLabels(img *image.RGBA, plot image.Rectangle, dates []string) {
	step := len(dates) / 6
	if step < 1 {
		step = 1
	}
	for i := 0; i < len(dates); i += step {
		x := scaleX(plot, i, len(dates))
		drawText(img, dates[i], x-textWidth(dates[i])/2, plot.Max.Y+18, labelColor)
	}
}

func drawSeries(img *image.RGBA, plot image.Rectangle, s Series, dates []string, maxValue int) {
	prevX, prevY := 0, 0
	for i, v := range s.Values {
		x := scaleX(plot, i, len(dates))
		y := scaleY(plot, v, maxValue)
		if i > 0 {
			drawLine(img, prevX, prevY, x, y, s.Color)
		}
		prevX, prevY = x, y
	}
}

func drawLegend(img *image.RGBA, series []Series) {
	x := marginLeft
	for _, s := range series {
		fillRect(img, image.Rect(x, 32, x+10, 42), s.Color)
		drawText(img, s.Label, x+14, 41, labelColor)
		x += 14 + textWidth(s.Label) + 20
	}
}

func scaleX(plot image.Rectangle, i, n int) int {
	if n < 2 {
		return plot.Min.X
	}
	return plot.Min.X + i*(plot.Dx()-1)/(n-1)
}

func scaleY(plot image.Rectangle, value, maxValue int) int {
	y := plot.Max.Y - 1 - value*(plot.Dy()-1)/maxValue
	if y < plot.Min.Y {
		y = plot.Min.Y
	}
	if y > plot.Max.Y-1 {
		y = plot.Max.Y - 1
	}
	return y
}

// drawLine draws a two-pixel line between the points.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.SetRGBA(x0, y0, col)
		img.SetRGBA(x0, y0+1, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawText draws text with its baseline at the given position. The bitmap
// face covers ASCII only, so diacritics are stripped first.
func drawText(img *image.RGBA, text string, x, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(foldLabel(text))
}

func textWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, foldLabel(text)).Ceil()
}
