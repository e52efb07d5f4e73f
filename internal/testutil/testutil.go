// Package testutil provides shared helpers for building synthetic physio
// logs, encoded container payloads, and fake collaborators.
package testutil

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// InfoLog builds a synthetic acquisition info buffer. The preamble is padded
// to exactly 11 lines (the legacy header size), so a buffer with NumVolumes=1
// and len(rows) data rows line-counts the way period-correct files do.
// echoes <= 0 omits the NumEchoes assignment.
func InfoLog(uuid string, slices, volumes, echoes, first, last int, rows ...string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "UUID = %s\n", uuid)
	b.WriteString("LogVersion = EJA_1\n")
	b.WriteString("LogDataType = ACQUISITION_INFO\n")
	fmt.Fprintf(&b, "NumSlices = %d\n", slices)
	fmt.Fprintf(&b, "NumVolumes = %d\n", volumes)
	if echoes > 0 {
		fmt.Fprintf(&b, "NumEchoes = %d\n", echoes)
	} else {
		b.WriteString("# no NumEchoes\n")
	}
	fmt.Fprintf(&b, "FirstTime = %d\n", first)
	fmt.Fprintf(&b, "LastTime = %d\n", last)
	b.WriteString("#\n")
	b.WriteString("#\n")
	b.WriteString("VOLUME   SLICE   ACQ_START_TICS   ACQ_FINISH_TICS   ECHO\n")
	for _, row := range rows {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// ChannelLog builds a synthetic channel buffer of the given data type.
func ChannelLog(uuid, dataType string, sampleTime int, rows ...string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "UUID = %s\n", uuid)
	b.WriteString("LogVersion = EJA_1\n")
	fmt.Fprintf(&b, "LogDataType = %s\n", dataType)
	fmt.Fprintf(&b, "SampleTime = %d\n", sampleTime)
	b.WriteString("ACQ_TIME_TICS  CHANNEL  VALUE  SIGNAL\n")
	for _, row := range rows {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// EmbeddedFile is one logical file to encode into a container payload.
type EmbeddedFile struct {
	Name string
	Data []byte
}

// ContainerPayload encodes files into the private-tag chunk layout and
// returns the payload along with the row count a container would declare.
func ContainerPayload(files ...EmbeddedFile) (payload []byte, rows int) {
	maxLen := 0
	for _, f := range files {
		if len(f.Data) > maxLen {
			maxLen = len(f.Data)
		}
	}
	rows = 1 + (maxLen+1023)/1024
	chunkLen := rows * 1024

	payload = make([]byte, chunkLen*len(files))
	for i, f := range files {
		chunk := payload[i*chunkLen : (i+1)*chunkLen]
		binary.LittleEndian.PutUint32(chunk[0:4], uint32(len(f.Data)))
		binary.LittleEndian.PutUint32(chunk[4:8], uint32(len(f.Name)))
		copy(chunk[8:], f.Name)
		copy(chunk[1024:], f.Data)
	}
	return payload, rows
}

// FakeFS implements source.FileSystem over an in-memory path map.
type FakeFS map[string][]byte

func (f FakeFS) IsFile(path string) bool {
	_, ok := f[path]
	return ok
}

func (f FakeFS) ReadFile(path string) ([]byte, error) {
	data, ok := f[path]
	if !ok {
		return nil, fmt.Errorf("fakefs: %s does not exist", path)
	}
	return data, nil
}

// FakeContainer implements source.ContainerReader with fixed field values.
type FakeContainer struct {
	Manu    string
	Type    []string
	Rows    int
	Creator string
	Payload []byte
}

func (c *FakeContainer) Manufacturer(string) (string, error) { return c.Manu, nil }

func (c *FakeContainer) ImageType(string) ([]string, error) { return c.Type, nil }

func (c *FakeContainer) AcquisitionNumber(string) (int, error) { return c.Rows, nil }

func (c *FakeContainer) PrivateBlob(string, uint16, uint16) (string, []byte, error) {
	return c.Creator, c.Payload, nil
}

// PhysioContainer returns a FakeContainer carrying the given embedded files
// with valid identity fields.
func PhysioContainer(files ...EmbeddedFile) *FakeContainer {
	payload, rows := ContainerPayload(files...)
	return &FakeContainer{
		Manu:    "SIEMENS",
		Type:    []string{"ORIGINAL", "PRIMARY", "RAWDATA", "PHYSIO"},
		Rows:    rows,
		Creator: "SIEMENS CSA NON-IMAGE",
		Payload: payload,
	}
}
