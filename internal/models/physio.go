// Package models defines the domain types for the physio log decoder.
package models

import "time"

// Tick is the base time unit of the log format: 2.5 ms per clock tick.
const Tick = 2500 * time.Microsecond

// LogVersion is the only log format version this decoder accepts.
const LogVersion = "EJA_1"

// SamplePadding extends the reconstructed timeline past the last recorded
// tick so a sample held at the final timestamp still fits.
const SamplePadding = 8

// LogKind identifies one logical sub-file of a physio recording.
type LogKind int

const (
	KindInfo LogKind = iota
	KindECG
	KindRESP
	KindPULS
	KindEXT
)

// DataType returns the LogDataType value a file of this kind must declare.
func (k LogKind) DataType() string {
	switch k {
	case KindInfo:
		return "ACQUISITION_INFO"
	case KindECG:
		return "ECG"
	case KindRESP:
		return "RESP"
	case KindPULS:
		return "PULS"
	case KindEXT:
		return "EXT"
	}
	return "UNKNOWN"
}

func (k LogKind) String() string { return k.DataType() }

// Suffix returns the filename suffix of this kind's log file.
func (k LogKind) Suffix() string {
	switch k {
	case KindInfo:
		return "_Info.log"
	case KindECG:
		return "_ECG.log"
	case KindRESP:
		return "_RESP.log"
	case KindPULS:
		return "_PULS.log"
	case KindEXT:
		return "_EXT.log"
	}
	return ""
}

// Lanes returns the physical sub-channel labels of a channel kind, in lane
// order. KindInfo has no lanes.
func (k LogKind) Lanes() []string {
	switch k {
	case KindECG:
		return []string{"ECG1", "ECG2", "ECG3", "ECG4"}
	case KindRESP:
		return []string{"RESP"}
	case KindPULS:
		return []string{"PULS"}
	case KindEXT:
		return []string{"EXT", "EXT2"}
	}
	return nil
}

// ChannelKinds lists the optional channel files in decode order.
var ChannelKinds = []LogKind{KindECG, KindRESP, KindPULS, KindEXT}

// LogBuffer is the raw text of one logical sub-file, tagged with its kind.
// It is transient: produced by the source locator and consumed by exactly
// one parse call.
type LogBuffer struct {
	Kind LogKind
	Name string // originating filename, for error context
	Data []byte
}

// ScanMeta holds the scan-level metadata extracted from the INFO file.
type ScanMeta struct {
	UUID      string
	Slices    int
	Volumes   int
	Echoes    int
	FirstTime int
	LastTime  int
}

// ActualSamples is the scan duration in ticks.
func (m ScanMeta) ActualSamples() int { return m.LastTime - m.FirstTime + 1 }

// ExpectedSamples is the reconstructed trace length: the scan duration plus
// padding for a worst-case sample held at the last timestamp.
func (m ScanMeta) ExpectedSamples() int { return m.ActualSamples() + SamplePadding }

// Duration returns the scan duration as wall-clock time.
func (m ScanMeta) Duration() time.Duration {
	return time.Duration(m.ActualSamples()) * Tick
}

// Trace is one reconstructed per-tick sample array for a single lane.
type Trace []int

// Active reports whether the trace contains at least one nonzero sample.
func (t Trace) Active() bool {
	for _, v := range t {
		if v != 0 {
			return true
		}
	}
	return false
}

// Result is the final decoded record. SliceMap, ACQ and UUID are always
// present; Traces holds only the lanes that carried a nonzero signal.
type Result struct {
	UUID     string
	SliceMap *AcquisitionMap
	ACQ      []bool
	Traces   map[string]Trace
}

// TraceOrder is the canonical presentation order of result traces.
var TraceOrder = []string{"ECG1", "ECG2", "ECG3", "ECG4", "RESP", "PULS", "EXT", "EXT2"}
