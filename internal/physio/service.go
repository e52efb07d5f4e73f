// Package physio assembles the full decode pipeline: locate sources, build
// the acquisition timing map, reconstruct every present channel, and
// cross-validate the result.
package physio

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/openphysio/physiolog/internal/acqinfo"
	"github.com/openphysio/physiolog/internal/apperr"
	"github.com/openphysio/physiolog/internal/models"
	"github.com/openphysio/physiolog/internal/source"
	"github.com/openphysio/physiolog/internal/trace"
)

// Service decodes physio recordings from a filesystem and a container
// reader.
type Service struct {
	fsys      source.FileSystem
	container source.ContainerReader
	log       *slog.Logger
}

// NewService creates a decode service over the given collaborators.
func NewService(fsys source.FileSystem, container source.ContainerReader, log *slog.Logger) *Service {
	return &Service{fsys: fsys, container: container, log: log}
}

// Read decodes the recording at path (a container file or the basename of
// sibling log files) into a fully materialized result. Any malformed input
// aborts the whole decode; no partial result is ever returned.
func (s *Service) Read(ctx context.Context, path string) (*models.Result, error) {
	src, err := source.Locate(path, s.fsys, s.container, s.log)
	if err != nil {
		return nil, err
	}

	info, err := acqinfo.Parse(src.Info, s.log)
	if err != nil {
		return nil, err
	}
	meta := info.Meta

	s.log.Info("parsed acquisition info",
		slog.Int("slices", meta.Slices),
		slog.Int("volumes", meta.Volumes),
		slog.Int("echoes", meta.Echoes),
		slog.Int("first_time", meta.FirstTime),
		slog.Int("last_time", meta.LastTime),
		slog.Duration("scan_duration", meta.Duration()))

	expected := meta.ExpectedSamples()

	// The channel files are mutually independent once the info pass is
	// done; reconstruct them concurrently, each writing its own slot.
	results := make([]*trace.Result, len(src.Channels))
	g, _ := errgroup.WithContext(ctx)
	for i, ch := range src.Channels {
		i, ch := i, ch
		g.Go(func() error {
			r, err := trace.Reconstruct(ch, meta.FirstTime, expected, s.log)
			if err != nil {
				return err
			}
			if r.UUID != meta.UUID {
				return fmt.Errorf("%w between %s and %s files", apperr.ErrUUIDMismatch,
					models.KindInfo.DataType(), ch.Kind.DataType())
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &models.Result{
		UUID:     meta.UUID,
		SliceMap: info.Map,
		ACQ:      acqMask(info.Map, expected),
		Traces:   make(map[string]models.Trace),
	}
	for _, r := range results {
		for lane, name := range r.Kind.Lanes() {
			if r.Lanes[lane].Active() {
				res.Traces[name] = r.Lanes[lane]
			}
		}
	}
	return res, nil
}

// acqMask marks every tick covered by a written timing cell, finish
// inclusive.
func acqMask(m *models.AcquisitionMap, expected int) []bool {
	acq := make([]bool, expected)
	m.EachWritten(func(_, _, _, start, finish int) {
		for t := start; t <= finish; t++ {
			if t >= 0 && t < expected {
				acq[t] = true
			}
		}
	})
	return acq
}
