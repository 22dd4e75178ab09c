// Package render draws selections for the dashboard and the CLIs.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sort"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"meertime/tpaclassifier/classifier"
)

// Options sizes a P-Pdot chart.
type Options struct {
	Width  int
	Height int
	Title  string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 700
	}
	if o.Height <= 0 {
		o.Height = 500
	}
	if o.Title == "" {
		o.Title = "P-Pdot"
	}
	return o
}

var namedColors = map[string]string{
	"grey": "808080",
	"gray": "808080",
}

// dotColor converts a record colour ("#3498db" or a named colour) and alpha.
func dotColor(c string, alpha float64) drawing.Color {
	hex := strings.TrimPrefix(strings.TrimSpace(c), "#")
	if named, ok := namedColors[strings.ToLower(hex)]; ok {
		hex = named
	}
	col := drawing.ColorFromHex(hex)
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	return col.WithAlpha(uint8(math.Round(alpha * 255)))
}

type styleKey struct {
	color  string
	alpha  float64
	size   float64
	origin classifier.Origin
}

func seriesName(k styleKey) string {
	switch {
	case k.origin == classifier.OriginCatalogue:
		return "Catalogue"
	case k.size >= 9:
		return "DM measured"
	default:
		return "No DM"
	}
}

// Points groups plottable records into scatter series of log10(P0) against
// log10(P1). Records without a positive period or derivative are skipped and
// counted.
func Points(records []classifier.Record) ([]chart.ContinuousSeries, int) {
	groups := make(map[styleKey]*chart.ContinuousSeries)
	var keys []styleKey
	skipped := 0
	for _, r := range records {
		p0, p1 := r.Physical("P0"), r.Physical("P1")
		if p0 <= 0 || p1 <= 0 || math.IsInf(p0, 0) || math.IsInf(p1, 0) {
			skipped++
			continue
		}
		k := styleKey{color: r.Color, alpha: r.Alpha, size: r.Size, origin: r.Origin}
		s, ok := groups[k]
		if !ok {
			s = &chart.ContinuousSeries{
				Name: seriesName(k),
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    k.size / 2,
					DotColor:    dotColor(k.color, k.alpha),
				},
			}
			groups[k] = s
			keys = append(keys, k)
		}
		s.XValues = append(s.XValues, math.Log10(p0))
		s.YValues = append(s.YValues, math.Log10(p1))
	}
	// catalogue underneath, measured on top
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].origin != keys[j].origin {
			return keys[i].origin == classifier.OriginCatalogue
		}
		return keys[i].size < keys[j].size
	})
	out := make([]chart.ContinuousSeries, len(keys))
	for i, k := range keys {
		out[i] = *groups[k]
	}
	return out, skipped
}

func extent(series []chart.ContinuousSeries, y bool) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		vals := s.XValues
		if y {
			vals = s.YValues
		}
		for _, v := range vals {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	return math.Floor((lo - pad) * 10) / 10, math.Ceil((hi + pad) * 10) / 10
}

func powerOfTen(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("1e%.1f", f)
	}
	return ""
}

// Chart builds the P-Pdot chart. ok is false when nothing is plottable.
func Chart(records []classifier.Record, opts Options) (chart.Chart, bool) {
	opts = opts.withDefaults()
	series, _ := Points(records)
	if len(series) == 0 {
		return chart.Chart{}, false
	}
	xMin, xMax := extent(series, false)
	yMin, yMax := extent(series, true)
	all := make([]chart.Series, len(series))
	for i := range series {
		all[i] = series[i]
	}
	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "P0 (s)",
			Range:          &chart.ContinuousRange{Min: xMin, Max: xMax},
			ValueFormatter: powerOfTen,
		},
		YAxis: chart.YAxis{
			Name:           "P1 (s/s)",
			Range:          &chart.ContinuousRange{Min: yMin, Max: yMax},
			ValueFormatter: powerOfTen,
		},
		Series: all,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch, true
}

// PPdot renders the chart to an image. An empty selection gives a blank image.
func PPdot(records []classifier.Record, opts Options) (image.Image, error) {
	opts = opts.withDefaults()
	ch, ok := Chart(records, opts)
	if !ok {
		return blank(opts.Width, opts.Height), nil
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return blank(opts.Width, opts.Height), fmt.Errorf("render p-pdot: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return blank(opts.Width, opts.Height), fmt.Errorf("decode p-pdot: %w", err)
	}
	return img, nil
}

func blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return img
}
