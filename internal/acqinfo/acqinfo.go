// Package acqinfo builds the per-(volume, slice, echo) acquisition timing
// map and the scan metadata from an ACQUISITION_INFO log buffer.
package acqinfo

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/openphysio/physiolog/internal/apperr"
	"github.com/openphysio/physiolog/internal/models"
	"github.com/openphysio/physiolog/internal/parser"
)

// legacyHeaderLines is the fixed number of metadata/header lines preceding
// the data block in pre-R016a logs; the NumVolumes correction is defined
// relative to it.
const legacyHeaderLines = 11

// Result is the output of parsing an acquisition info buffer.
type Result struct {
	Map  *models.AcquisitionMap
	Meta models.ScanMeta
}

// header accumulates assignment values until all required keys are seen.
// Echoes predates multi-echo support and defaults to 1 for older logs.
type header struct {
	uuid      string
	slices    int
	volumes   int
	echoes    int
	firstTime int
	lastTime  int

	seenUUID    bool
	seenVersion bool
	seenType    bool
	seenSlices  bool
	seenVolumes bool
	seenFirst   bool
	seenLast    bool
}

// Parse decodes the INFO buffer into the timing map and scan metadata. The
// buffer is read in two stages: assignments first, then data rows, so the
// result does not depend on line order within the file.
func Parse(buf models.LogBuffer, log *slog.Logger) (*Result, error) {
	if buf.Kind != models.KindInfo {
		return nil, fmt.Errorf("%s: acqinfo given %s buffer: %w", buf.Name, buf.Kind, apperr.ErrDataType)
	}

	lines := parser.Lines(buf.Data)
	events := make([]parser.Event, len(lines))
	for i, line := range lines {
		events[i] = parser.ParseLine(line)
	}

	hdr := header{echoes: 1}
	for _, ev := range events {
		if ev.Kind != parser.Assignment {
			continue
		}
		if err := hdr.apply(buf.Name, ev.Key, ev.Value); err != nil {
			return nil, err
		}
	}
	if err := hdr.complete(buf.Name); err != nil {
		return nil, err
	}

	// Pre-R016a diffusion data reports NumVolumes as 1; recover the true
	// count from the line count of the data block.
	if hdr.volumes == 1 {
		corrected := (len(lines) - legacyHeaderLines) / (hdr.slices * hdr.echoes)
		if corrected < 1 {
			return nil, fmt.Errorf("%s: volume count correction produced %d: %w", buf.Name, corrected, apperr.ErrMissingField)
		}
		log.Warn("found NumVolumes = 1; correcting for pre-R016a diffusion data",
			slog.String("file", buf.Name), slog.Int("volumes", corrected))
		hdr.volumes = corrected
	}

	m, err := models.NewAcquisitionMap(hdr.volumes, hdr.slices, hdr.echoes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", buf.Name, err)
	}

	for _, ev := range events {
		if ev.Kind != parser.DataRow {
			continue
		}
		if err := applyRow(m, buf.Name, ev, log); err != nil {
			return nil, err
		}
	}

	m.Normalize(hdr.firstTime)

	return &Result{
		Map: m,
		Meta: models.ScanMeta{
			UUID:      hdr.uuid,
			Slices:    hdr.slices,
			Volumes:   hdr.volumes,
			Echoes:    hdr.echoes,
			FirstTime: hdr.firstTime,
			LastTime:  hdr.lastTime,
		},
	}, nil
}

func (h *header) apply(name, key, value string) error {
	intField := func(dst *int, seen *bool) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %s = %q is not an integer", name, key, value)
		}
		*dst = n
		if seen != nil {
			*seen = true
		}
		return nil
	}

	switch key {
	case "UUID":
		h.uuid = value
		h.seenUUID = true
	case "LogVersion":
		if value != models.LogVersion {
			return fmt.Errorf("%s: file format %q, expected %q: %w", name, value, models.LogVersion, apperr.ErrFormatVersion)
		}
		h.seenVersion = true
	case "LogDataType":
		if value != models.KindInfo.DataType() {
			return fmt.Errorf("%s: expected %s data, found %q: %w", name, models.KindInfo.DataType(), value, apperr.ErrDataType)
		}
		h.seenType = true
	case "SampleTime":
		// Per-channel key; never valid in an acquisition info file.
		return fmt.Errorf("%s: invalid SampleTime parameter in acquisition info: %w", name, apperr.ErrDataType)
	case "NumSlices":
		return intField(&h.slices, &h.seenSlices)
	case "NumVolumes":
		return intField(&h.volumes, &h.seenVolumes)
	case "NumEchoes":
		return intField(&h.echoes, nil)
	case "FirstTime":
		return intField(&h.firstTime, &h.seenFirst)
	case "LastTime":
		return intField(&h.lastTime, &h.seenLast)
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
	case !h.seenSlices:
		missing = "NumSlices"
	case !h.seenVolumes:
		missing = "NumVolumes"
	case !h.seenFirst:
		missing = "FirstTime"
	case !h.seenLast:
		missing = "LastTime"
	}
	if missing != "" {
		return fmt.Errorf("%s: acquisition info header lacks %s: %w", name, missing, apperr.ErrMissingField)
	}
	if h.slices < 1 || h.volumes < 1 || h.echoes < 1 {
		return fmt.Errorf("%s: non-positive scan geometry [%d slices, %d volumes, %d echoes]: %w",
			name, h.slices, h.volumes, h.echoes, apperr.ErrMissingField)
	}
	if h.lastTime <= h.firstTime {
		return fmt.Errorf("%s: last timestamp %d is not greater than first timestamp %d: %w",
			name, h.lastTime, h.firstTime, apperr.ErrTimeline)
	}
	return nil
}

func applyRow(m *models.AcquisitionMap, name string, ev parser.Event, log *slog.Logger) error {
	vol, err := strconv.Atoi(ev.Fields[0])
	if err != nil {
		return fmt.Errorf("%s: bad volume index %q", name, ev.Fields[0])
	}
	slc, err := strconv.Atoi(ev.Fields[1])
	if err != nil {
		return fmt.Errorf("%s: bad slice index %q", name, ev.Fields[1])
	}
	start, err := strconv.Atoi(ev.Fields[2])
	if err != nil {
		return fmt.Errorf("%s: bad start timestamp %q", name, ev.Fields[2])
	}
	finish, err := strconv.Atoi(ev.Fields[3])
	if err != nil {
		return fmt.Errorf("%s: bad finish timestamp %q", name, ev.Fields[3])
	}

	// A row with an explicit echo column is multi-echo data: rewriting a
	// cell is a hard error. A row without one predates multi-echo support;
	// duplicates there are a known benign quirk, so warn and let the last
	// write win.
	eco := 0
	explicit := ev.NFields >= parser.FieldCount
	if explicit {
		eco, err = strconv.Atoi(ev.Fields[4])
		if err != nil {
			return fmt.Errorf("%s: bad echo index %q", name, ev.Fields[4])
		}
	}
	if m.Written(vol, slc, eco) {
		if explicit {
			return fmt.Errorf("%s: duplicate timing data for vol %d slc %d eco %d: %w",
				name, vol, slc, eco, apperr.ErrDuplicateTiming)
		}
		log.Warn("duplicate timing data (ignore for pre-R015a multi-echo data)",
			slog.String("file", name), slog.Int("volume", vol), slog.Int("slice", slc))
	}
	if err := m.Set(vol, slc, eco, start, finish); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
