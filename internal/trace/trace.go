// Package trace reconstructs per-tick sample arrays for one channel log
// (ECG, RESP, PULS or EXT) by sample-and-hold expansion of the sparse
// logged values.
package trace

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/openphysio/physiolog/internal/apperr"
	"github.com/openphysio/physiolog/internal/models"
	"github.com/openphysio/physiolog/internal/parser"
)

// Result holds the reconstructed lanes of one channel file. Lanes are
// indexed per the channel kind's lane order and are each expectedSamples
// long.
type Result struct {
	UUID  string
	Kind  models.LogKind
	Lanes []models.Trace
}

type header struct {
	uuid       string
	sampleTime int

	seenUUID, seenVersion, seenType, seenSampleTime bool
}

// Reconstruct parses a channel buffer and expands its samples onto the
// zero-based tick timeline. firstTime is the scan's first timestamp from the
// acquisition info; expectedSamples is the padded trace length.
func Reconstruct(buf models.LogBuffer, firstTime, expectedSamples int, log *slog.Logger) (*Result, error) {
	laneNames := buf.Kind.Lanes()
	if len(laneNames) == 0 {
		return nil, fmt.Errorf("%s: trace given %s buffer: %w", buf.Name, buf.Kind, apperr.ErrDataType)
	}

	lines := parser.Lines(buf.Data)
	events := make([]parser.Event, len(lines))
	for i, line := range lines {
		events[i] = parser.ParseLine(line)
	}

	var hdr header
	for _, ev := range events {
		if ev.Kind != parser.Assignment {
			continue
		}
		if err := hdr.apply(buf, ev.Key, ev.Value); err != nil {
			return nil, err
		}
	}
	if err := hdr.complete(buf.Name); err != nil {
		return nil, err
	}

	lanes := make([]models.Trace, len(laneNames))
	for i := range lanes {
		lanes[i] = make(models.Trace, expectedSamples)
	}

	for _, ev := range events {
		if ev.Kind != parser.DataRow {
			continue
		}
		ts, err := strconv.Atoi(ev.Fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s: bad timestamp %q", buf.Name, ev.Fields[0])
		}
		value, err := strconv.Atoi(ev.Fields[2])
		if err != nil {
			return nil, fmt.Errorf("%s: bad sample value %q", buf.Name, ev.Fields[2])
		}
		lane, err := laneIndex(buf, ev.Fields[1])
		if err != nil {
			return nil, err
		}

		// Hold the value for sampleTime ticks; later rows overwrite
		// earlier ones on overlap. Ticks outside the timeline are clipped.
		rel := ts - firstTime
		for t := rel; t < rel+hdr.sampleTime; t++ {
			if t >= 0 && t < expectedSamples {
				lanes[lane][t] = value
			}
		}
	}

	log.Info("reconstructed channel traces",
		slog.String("file", buf.Name),
		slog.String("type", buf.Kind.DataType()),
		slog.Int("lanes", len(lanes)))

	return &Result{UUID: hdr.uuid, Kind: buf.Kind, Lanes: lanes}, nil
}

func (h *header) apply(buf models.LogBuffer, key, value string) error {
	switch key {
	case "UUID":
		h.uuid = value
		h.seenUUID = true
	case "LogVersion":
		if value != models.LogVersion {
			return fmt.Errorf("%s: file format %q, expected %q: %w",
				buf.Name, value, models.LogVersion, apperr.ErrFormatVersion)
		}
		h.seenVersion = true
	case "LogDataType":
		if value != buf.Kind.DataType() {
			return fmt.Errorf("%s: expected %s data, found %q (check filenames): %w",
				buf.Name, buf.Kind.DataType(), value, apperr.ErrDataType)
		}
		h.seenType = true
	case "SampleTime":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: SampleTime = %q is not an integer", buf.Name, value)
		}
		h.sampleTime = n
		h.seenSampleTime = true
	case "NumSlices", "NumVolumes", "NumEchoes", "FirstTime", "LastTime":
		// Acquisition-info keys; never valid in a channel file.
		return fmt.Errorf("%s: invalid %s parameter in %s log: %w", buf.Name, key, buf.Kind.DataType(), apperr.ErrDataType)
	}
	return nil
}

func (h *header) complete(name string) error {
	missing := ""
	switch {
	case !h.seenUUID:
		missing = "UUID"
	case !h.seenVersion:
		missing = "LogVersion"
	case !h.seenType:
		missing = "LogDataType"
	case !h.seenSampleTime:
		missing = "SampleTime"
	}
	if missing != "" {
		return fmt.Errorf("%s: channel header lacks %s: %w", name, missing, apperr.ErrMissingField)
	}
	if h.sampleTime < 1 {
		return fmt.Errorf("%s: non-positive SampleTime %d: %w", name, h.sampleTime, apperr.ErrMissingField)
	}
	return nil
}

// laneIndex maps a row's channel token to its lane. ECG and EXT rows must
// name a known sub-channel; RESP and PULS have a single lane regardless of
// token.
func laneIndex(buf models.LogBuffer, token string) (int, error) {
	switch buf.Kind {
	case models.KindECG, models.KindEXT:
		for i, name := range buf.Kind.Lanes() {
			if token == name {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%s: invalid %s channel id %q: %w", buf.Name, buf.Kind.DataType(), token, apperr.ErrChannelToken)
	default:
		return 0, nil
	}
}
