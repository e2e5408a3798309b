// Package overlay renders the clock, date and weather block onto composed
// frames. Rendering is a pure transform: the input frame is never mutated and
// missing data degrades by omitting lines, never by failing.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"time"

	"github.com/charmbracelet/log"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/quenby/photoframed/internal/imaging"
	"github.com/quenby/photoframed/internal/weather"
)

// Config mirrors the [overlay] table of the config file.
type Config struct {
	FontPath string

	TimeSize float64
	DateSize float64

	// Color is a hex string like "#ffffff".
	Color string

	MarginLeft   int
	MarginRight  int
	MarginBottom int
	Spacing      int

	// Time and date layouts in time.Format syntax. Empty selects the
	// defaults: 24h clock, long weekday date.
	TimeFormat string
	DateFormat string
}

// Data is the per-frame snapshot the renderer draws from. Weather may be nil.
type Data struct {
	Now     time.Time
	Weather *weather.Snapshot
}

// Renderer lays text out against a fixed canvas size. Safe for use from a
// single goroutine; the compositor owns it.
type Renderer struct {
	width  int
	height int

	timeFace font.Face
	dateFace font.Face
	col      color.RGBA

	timeFormat string
	dateFormat string

	marginLeft   int
	marginRight  int
	marginBottom int
	spacing      int
}

// New builds a renderer for a width x height canvas. Font or color problems
// are logged and replaced with fallbacks; New never fails.
func New(width, height int, cfg Config) *Renderer {
	if cfg.TimeSize <= 0 {
		cfg.TimeSize = 96
	}
	if cfg.DateSize <= 0 {
		cfg.DateSize = 48
	}
	if cfg.Spacing <= 0 {
		cfg.Spacing = 10
	}

	r := &Renderer{
		width:        width,
		height:       height,
		timeFace:     loadFace(cfg.FontPath, cfg.TimeSize),
		dateFace:     loadFace(cfg.FontPath, cfg.DateSize),
		col:          parseColor(cfg.Color),
		timeFormat:   cfg.TimeFormat,
		dateFormat:   cfg.DateFormat,
		marginLeft:   cfg.MarginLeft,
		marginRight:  cfg.MarginRight,
		marginBottom: cfg.MarginBottom,
		spacing:      cfg.Spacing,
	}
	if r.timeFormat == "" {
		r.timeFormat = "15:04"
	}
	if r.dateFormat == "" {
		r.dateFormat = "Monday, January 2"
	}
	return r
}

// loadFace resolves a face from an optional TTF/OTF path, falling back to the
// bundled Go Regular, and as a last resort to the fixed 7x13 bitmap face.
func loadFace(path string, size float64) font.Face {
	data := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			log.Warn("could not read overlay font, using bundled face", "path", path, "error", err)
		} else {
			data = b
		}
	}

	ft, err := opentype.Parse(data)
	if err != nil {
		log.Warn("could not parse overlay font, using bitmap face", "error", err)
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Warn("could not build overlay font face, using bitmap face", "error", err)
		return basicfont.Face7x13
	}
	return face
}

func parseColor(hex string) color.RGBA {
	if hex == "" {
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		log.Warn("invalid overlay color, using white", "color", hex, "error", err)
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 0xff}
}

// Compose letterboxes base to the canvas and flattens the text layer over it.
// The input image is not mutated.
func (r *Renderer) Compose(base image.Image, d Data) *image.RGBA {
	var frame *image.RGBA
	if rgba, ok := base.(*image.RGBA); ok &&
		rgba.Bounds().Dx() == r.width && rgba.Bounds().Dy() == r.height {
		frame = imaging.Clone(rgba)
	} else {
		frame = imaging.Letterbox(base, r.width, r.height)
	}

	layer := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	r.drawClock(layer, d.Now)
	r.drawWeather(layer, d.Weather)

	draw.Draw(frame, frame.Bounds(), layer, image.Point{}, draw.Over)
	return frame
}

// drawClock puts the time directly above the date, left-aligned against the
// bottom-left margins.
func (r *Renderer) drawClock(layer *image.RGBA, now time.Time) {
	dateBaseline := r.height - r.marginBottom
	r.drawString(layer, r.dateFace, now.Format(r.dateFormat), r.marginLeft, dateBaseline)

	timeBaseline := dateBaseline - r.dateFace.Metrics().Height.Ceil() - r.spacing
	r.drawString(layer, r.timeFace, now.Format(r.timeFormat), r.marginLeft, timeBaseline)
}

// drawWeather stacks the temperature over the optional detail lines,
// right-aligned, sharing the bottom baseline with the clock block.
func (r *Renderer) drawWeather(layer *image.RGBA, w *weather.Snapshot) {
	if w == nil {
		return
	}

	type line struct {
		text string
		face font.Face
	}
	lines := []line{{w.TempString(), r.timeFace}}
	if w.Description != "" {
		lines = append(lines, line{w.Description, r.dateFace})
	}
	if w.Humidity != nil {
		lines = append(lines, line{fmt.Sprintf("%.0f%% humidity", *w.Humidity), r.dateFace})
	}
	if w.WindSpeed != nil {
		unit := w.WindUnit
		if unit == "" {
			unit = "km/h"
		}
		lines = append(lines, line{fmt.Sprintf("%.1f %s wind", *w.WindSpeed, unit), r.dateFace})
	}

	baseline := r.height - r.marginBottom
	for i := len(lines) - 1; i >= 0; i-- {
		l := lines[i]
		width := font.MeasureString(l.face, l.text).Ceil()
		r.drawString(layer, l.face, l.text, r.width-r.marginRight-width, baseline)
		baseline -= l.face.Metrics().Height.Ceil() + r.spacing
	}
}

func (r *Renderer) drawString(layer *image.RGBA, face font.Face, s string, x, baseline int) {
	d := &font.Drawer{
		Dst:  layer,
		Src:  image.NewUniform(r.col),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}
