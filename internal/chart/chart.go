// Package chart renders the progress time-series as a PNG.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"deficit/internal/domain"
)

// ErrNoData is returned when there is nothing to plot. Callers surface it as
// a "no data" message, not as a failure.
var ErrNoData = errors.New("no data to render")

// caloriesDivisor rescales calories onto the centimetre axis so the series
// is visually comparable. It is not a unit conversion.
const caloriesDivisor = 30

const (
	imgW = 1200
	imgH = 700

	marginLeft   = 80.0
	marginRight  = 80.0
	marginTop    = 70.0
	marginBottom = 80.0
)

// Renderer draws progress charts. It is safe for concurrent use once built.
type Renderer struct {
	face font.Face
}

// NewRenderer builds a Renderer. With a non-empty fontPath a TTF is loaded
// for labels; otherwise the built-in bitmap face is used.
func NewRenderer(fontPath string) (*Renderer, error) {
	if fontPath == "" {
		return &Renderer{face: basicfont.Face7x13}, nil
	}
	raw, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("chart font: %w", err)
	}
	f, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("chart font: %w", err)
	}
	return &Renderer{face: truetype.NewFace(f, &truetype.Options{Size: 15})}, nil
}

type series struct {
	name      string
	hex       string
	secondary bool
	value     func(*domain.Measurement) *float64
}

func allSeries() []series {
	return []series{
		{name: "Weight (kg)", hex: "#2E86AB", value: func(m *domain.Measurement) *float64 { return m.Weight }},
		{name: "Waist (cm)", hex: "#A23B72", secondary: true, value: func(m *domain.Measurement) *float64 { return m.Waist }},
		{name: "Neck (cm)", hex: "#F18F01", secondary: true, value: func(m *domain.Measurement) *float64 { return m.Neck }},
		{name: fmt.Sprintf("Calories (÷%d)", caloriesDivisor), hex: "#06A77D", secondary: true, value: func(m *domain.Measurement) *float64 {
			if m.Calories == nil {
				return nil
			}
			v := float64(*m.Calories) / caloriesDivisor
			return &v
		}},
	}
}

// Render draws the period's measurements: weight on the primary (left) scale,
// waist/neck/rescaled calories on the secondary (right) scale. A row with an
// absent field is a gap in that series, never interpolated or zero-filled.
func (r *Renderer) Render(points []domain.Measurement, periodDays int) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}

	dc := gg.NewContext(imgW, imgH)
	dc.SetFontFace(r.face)
	dc.SetHexColor("#FFFFFF")
	dc.Clear()

	plotW := float64(imgW) - marginLeft - marginRight
	plotH := float64(imgH) - marginTop - marginBottom

	xOf := xMapper(points, plotW)

	primLo, primHi := scaleBounds(points, allSeries(), false)
	secLo, secHi := scaleBounds(points, allSeries(), true)

	r.drawGrid(dc, plotH, plotW, primLo, primHi, secLo, secHi)
	r.drawXAxis(dc, points, xOf, plotH)

	for _, s := range allSeries() {
		lo, hi := primLo, primHi
		if s.secondary {
			lo, hi = secLo, secHi
		}
		r.drawSeries(dc, points, s, xOf, plotH, lo, hi)
	}

	r.drawTitle(dc, periodDays)
	r.drawLegend(dc, points)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

// xMapper maps a day to its horizontal pixel position, spreading the points
// over the plot by calendar distance.
func xMapper(points []domain.Measurement, plotW float64) func(m *domain.Measurement) float64 {
	first := points[0].Date
	span := points[len(points)-1].Date.Sub(first).Hours() / 24
	if span <= 0 {
		return func(*domain.Measurement) float64 { return marginLeft + plotW/2 }
	}
	return func(m *domain.Measurement) float64 {
		d := m.Date.Sub(first).Hours() / 24
		return marginLeft + d/span*plotW
	}
}

// scaleBounds computes a padded min/max over every present value of the
// scale's series.
func scaleBounds(points []domain.Measurement, all []series, secondary bool) (float64, float64) {
	var lo, hi float64
	seen := false
	for _, s := range all {
		if s.secondary != secondary {
			continue
		}
		for i := range points {
			v := s.value(&points[i])
			if v == nil {
				continue
			}
			if !seen {
				lo, hi, seen = *v, *v, true
				continue
			}
			if *v < lo {
				lo = *v
			}
			if *v > hi {
				hi = *v
			}
		}
	}
	if !seen {
		return 0, 1
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}

func yPos(v, lo, hi, plotH float64) float64 {
	return marginTop + plotH - (v-lo)/(hi-lo)*plotH
}

func (r *Renderer) drawGrid(dc *gg.Context, plotH, plotW, primLo, primHi, secLo, secHi float64) {
	const gridLines = 6
	for i := 0; i <= gridLines; i++ {
		frac := float64(i) / gridLines
		y := marginTop + plotH - frac*plotH

		dc.SetHexColor("#DDDDDD")
		dc.SetLineWidth(1)
		dc.SetDash(4, 4)
		dc.DrawLine(marginLeft, y, marginLeft+plotW, y)
		dc.Stroke()
		dc.SetDash()

		dc.SetHexColor("#2E86AB")
		left := primLo + frac*(primHi-primLo)
		dc.DrawStringAnchored(fmt.Sprintf("%.1f", left), marginLeft-10, y, 1, 0.5)

		dc.SetHexColor("#555555")
		right := secLo + frac*(secHi-secLo)
		dc.DrawStringAnchored(fmt.Sprintf("%.1f", right), marginLeft+plotW+10, y, 0, 0.5)
	}
}

func (r *Renderer) drawXAxis(dc *gg.Context, points []domain.Measurement, xOf func(*domain.Measurement) float64, plotH float64) {
	step := len(points) / 10
	if step < 1 {
		step = 1
	}
	dc.SetHexColor("#333333")
	for i := 0; i < len(points); i += step {
		m := &points[i]
		dc.DrawStringAnchored(m.Date.Format("02.01"), xOf(m), marginTop+plotH+20, 0.5, 0.5)
	}
}

func (r *Renderer) drawSeries(dc *gg.Context, points []domain.Measurement, s series, xOf func(*domain.Measurement) float64, plotH, lo, hi float64) {
	dc.SetHexColor(s.hex)
	dc.SetLineWidth(2.5)

	// Connect only adjacent rows that both carry the field; an absent value
	// in between breaks the line.
	for i := 1; i < len(points); i++ {
		a := s.value(&points[i-1])
		b := s.value(&points[i])
		if a == nil || b == nil {
			continue
		}
		dc.DrawLine(xOf(&points[i-1]), yPos(*a, lo, hi, plotH), xOf(&points[i]), yPos(*b, lo, hi, plotH))
		dc.Stroke()
	}
	for i := range points {
		v := s.value(&points[i])
		if v == nil {
			continue
		}
		dc.DrawCircle(xOf(&points[i]), yPos(*v, lo, hi, plotH), 4)
		dc.Fill()
	}
}

func (r *Renderer) drawTitle(dc *gg.Context, periodDays int) {
	title := fmt.Sprintf("Progress over %d days", periodDays)
	switch periodDays {
	case 7:
		title = "Progress over a week"
	case 60:
		title = "Progress over 2 months"
	}
	dc.SetHexColor("#111111")
	dc.DrawStringAnchored(title, imgW/2, marginTop/2, 0.5, 0.5)
}

func (r *Renderer) drawLegend(dc *gg.Context, points []domain.Measurement) {
	x := marginLeft + 10
	y := marginTop + 15.0
	for _, s := range allSeries() {
		if !seriesHasData(points, s) {
			continue
		}
		dc.SetHexColor(s.hex)
		dc.DrawRectangle(x, y-5, 10, 10)
		dc.Fill()
		dc.SetHexColor("#333333")
		dc.DrawStringAnchored(s.name, x+16, y, 0, 0.5)
		y += 20
	}
}

func seriesHasData(points []domain.Measurement, s series) bool {
	for i := range points {
		if s.value(&points[i]) != nil {
			return true
		}
	}
	return false
}
