// Package export persists a decoded physio result as an EDF file, one
// signal per active trace plus the acquisition mask.
package export

import (
	"fmt"
	"os"
	"time"

	"github.com/OpenPSG/edf"

	"github.com/openphysio/physiolog/internal/models"
)

// acqLabel is the signal label used for the acquisition-active mask.
const acqLabel = "ACQ"

// EDF writes the result's traces to path. Every trace is resampled onto
// fixed-length records of recordSamples ticks; the final partial record is
// zero-padded. startTime is recorded in the EDF header.
func EDF(res *models.Result, recordSamples int, startTime time.Time, path string) error {
	if recordSamples < 1 {
		return fmt.Errorf("export: non-positive record length %d", recordSamples)
	}

	labels := activeLabels(res)
	signals := make([]edf.Signal, 0, len(labels))
	series := make([][]float64, 0, len(labels))
	for _, label := range labels {
		data := traceSeries(res, label)
		lo, hi := bounds(data)
		if lo == hi {
			hi = lo + 1
		}
		signals = append(signals, edf.Signal{
			Label:            label,
			PhysicalMin:      lo,
			PhysicalMax:      hi,
			DigitalMin:       -32768,
			DigitalMax:       32767,
			SamplesPerRecord: recordSamples,
		})
		series = append(series, data)
	}

	recordDuration := time.Duration(recordSamples) * models.Tick

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	w, err := edf.Create(f, edf.Header{
		Version:            edf.Version0,
		RecordingID:        res.UUID,
		StartTime:          startTime,
		SignalCount:        len(signals),
		Signals:            signals,
		DataRecordDuration: recordDuration,
	})
	if err != nil {
		f.Close()
		return fmt.Errorf("export: %w", err)
	}

	total := len(res.ACQ)
	for off := 0; off < total; off += recordSamples {
		record := make([][]float64, len(series))
		for i, data := range series {
			record[i] = window(data, off, recordSamples)
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("export: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("export: %w", err)
	}
	return f.Close()
}

// activeLabels lists the traces to export in canonical order, with the
// acquisition mask last.
func activeLabels(res *models.Result) []string {
	labels := make([]string, 0, len(res.Traces)+1)
	for _, name := range models.TraceOrder {
		if _, ok := res.Traces[name]; ok {
			labels = append(labels, name)
		}
	}
	return append(labels, acqLabel)
}

func traceSeries(res *models.Result, label string) []float64 {
	if label == acqLabel {
		out := make([]float64, len(res.ACQ))
		for i, on := range res.ACQ {
			if on {
				out[i] = 1
			}
		}
		return out
	}
	t := res.Traces[label]
	out := make([]float64, len(t))
	for i, v := range t {
		out[i] = float64(v)
	}
	return out
}

func bounds(data []float64) (lo, hi float64) {
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

// window returns n samples of data starting at off, zero-padded past the
// end.
func window(data []float64, off, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n && off+i < len(data); i++ {
		out[i] = data[off+i]
	}
	return out
}
