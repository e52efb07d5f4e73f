// Package plot renders the decoded physio traces to an image file. Long
// scans are clamped to a window around the middle of the recording.
package plot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/openphysio/physiolog/internal/models"
)

type traceStyle struct {
	label string
	color color.RGBA
	// scaled traces (external triggers and the acquisition mask) are
	// boolean-ish; stretch them over the value band of the real signals so
	// they stay visible.
	scaled bool
}

var styles = []traceStyle{
	{"ECG1", color.RGBA{G: 0x80, A: 0xff}, false},
	{"ECG2", color.RGBA{G: 0x80, A: 0xff}, false},
	{"ECG3", color.RGBA{G: 0x80, A: 0xff}, false},
	{"ECG4", color.RGBA{G: 0x80, A: 0xff}, false},
	{"RESP", color.RGBA{B: 0xff, A: 0xff}, false},
	{"PULS", color.RGBA{R: 0xff, A: 0xff}, false},
	{"EXT", color.RGBA{G: 0xff, B: 0xff, A: 0xff}, true},
	{"EXT2", color.RGBA{R: 0x80, G: 0x80, A: 0xff}, true},
	{"ACQ", color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}, true},
}

// Render draws the active traces of res to path (format by extension).
// actualSamples is the unpadded scan length; window bounds how many ticks
// are shown.
func Render(res *models.Result, actualSamples, window int, path string) error {
	start, end := 0, actualSamples
	if window > 0 && actualSamples > window {
		start = actualSamples/2 - window/2
		end = start + window
	}

	p := plot.New()
	p.Title.Text = res.UUID
	p.X.Label.Text = "Samples"
	p.Legend.Top = false

	minY, maxY := 0.0, 1.0
	plotted := 0
	for _, st := range styles {
		data := series(res, st.label, start, end)
		if len(data) == 0 {
			continue
		}
		lo, hi := bounds(data)
		if st.scaled && hi > lo {
			// Stretch the 0/1-ish trace across the band seen so far.
			for i, v := range data {
				data[i] = minY + (v-lo)*(maxY-minY)/(hi-lo)
			}
		} else {
			if lo < minY {
				minY = lo
			}
			if hi > maxY {
				maxY = hi
			}
		}

		xys := make(plotter.XYs, len(data))
		for i, v := range data {
			xys[i].X = float64(start + i)
			xys[i].Y = v
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("plot %s: %w", st.label, err)
		}
		line.Color = st.color
		p.Add(line)
		p.Legend.Add(st.label, line)
		plotted++
	}
	if plotted == 0 {
		return fmt.Errorf("plot: no traces to render")
	}

	if err := p.Save(12*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	return nil
}

// series extracts the [start, end) window of the named trace, or nil when
// the trace is absent from the result.
func series(res *models.Result, label string, start, end int) []float64 {
	clip := func(n int) (int, int) {
		s, e := start, end
		if s < 0 {
			s = 0
		}
		if e > n {
			e = n
		}
		if s >= e {
			return 0, 0
		}
		return s, e
	}
	if label == "ACQ" {
		s, e := clip(len(res.ACQ))
		if s == e {
			return nil
		}
		out := make([]float64, e-s)
		for i := s; i < e; i++ {
			if res.ACQ[i] {
				out[i-s] = 1
			}
		}
		return out
	}
	t, ok := res.Traces[label]
	if !ok {
		return nil
	}
	s, e := clip(len(t))
	if s == e {
		return nil
	}
	out := make([]float64, e-s)
	for i := s; i < e; i++ {
		out[i-s] = float64(t[i])
	}
	return out
}

func bounds(data []float64) (lo, hi float64) {
	if len(data) == 0 {
		return 0, 0
	}
	lo, hi = data[0], data[0]
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
