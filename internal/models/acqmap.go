package models

import "fmt"

// AcquisitionMap is the per-(volume, slice, echo) table of start/finish
// timestamps, in ticks. Cells are written at most once during construction
// (overwrites are the caller's policy decision) and normalized once so the
// smallest written value is zero.
type AcquisitionMap struct {
	Volumes int
	Slices  int
	Echoes  int

	start   []int
	finish  []int
	written []bool
}

// NewAcquisitionMap allocates a zeroed map with the given dimensions.
func NewAcquisitionMap(volumes, slices, echoes int) (*AcquisitionMap, error) {
	if volumes < 1 || slices < 1 || echoes < 1 {
		return nil, fmt.Errorf("invalid acquisition map size [%d x %d x %d]", volumes, slices, echoes)
	}
	n := volumes * slices * echoes
	return &AcquisitionMap{
		Volumes: volumes,
		Slices:  slices,
		Echoes:  echoes,
		start:   make([]int, n),
		finish:  make([]int, n),
		written: make([]bool, n),
	}, nil
}

func (m *AcquisitionMap) index(vol, slc, eco int) (int, error) {
	if vol < 0 || vol >= m.Volumes || slc < 0 || slc >= m.Slices || eco < 0 || eco >= m.Echoes {
		return 0, fmt.Errorf("timing cell [vol %d, slc %d, eco %d] outside map [%d x %d x %d]",
			vol, slc, eco, m.Volumes, m.Slices, m.Echoes)
	}
	return (vol*m.Slices+slc)*m.Echoes + eco, nil
}

// Written reports whether the cell has been set.
func (m *AcquisitionMap) Written(vol, slc, eco int) bool {
	i, err := m.index(vol, slc, eco)
	if err != nil {
		return false
	}
	return m.written[i]
}

// Set stores the start/finish pair for a cell, overwriting any prior value.
func (m *AcquisitionMap) Set(vol, slc, eco, start, finish int) error {
	i, err := m.index(vol, slc, eco)
	if err != nil {
		return err
	}
	m.start[i] = start
	m.finish[i] = finish
	m.written[i] = true
	return nil
}

// Cell returns the start/finish pair for a cell; ok is false when the cell
// was never written.
func (m *AcquisitionMap) Cell(vol, slc, eco int) (start, finish int, ok bool) {
	i, err := m.index(vol, slc, eco)
	if err != nil || !m.written[i] {
		return 0, 0, false
	}
	return m.start[i], m.finish[i], true
}

// Normalize subtracts first from every written cell, shifting the map onto a
// zero-based timeline. Call exactly once, after the last Set.
func (m *AcquisitionMap) Normalize(first int) {
	for i := range m.written {
		if m.written[i] {
			m.start[i] -= first
			m.finish[i] -= first
		}
	}
}

// EachWritten calls fn for every written cell in (volume, slice, echo) order.
func (m *AcquisitionMap) EachWritten(fn func(vol, slc, eco, start, finish int)) {
	for v := 0; v < m.Volumes; v++ {
		for s := 0; s < m.Slices; s++ {
			for e := 0; e < m.Echoes; e++ {
				i := (v*m.Slices+s)*m.Echoes + e
				if m.written[i] {
					fn(v, s, e, m.start[i], m.finish[i])
				}
			}
		}
	}
}
