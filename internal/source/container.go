package source

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openphysio/physiolog/internal/apperr"
	"github.com/openphysio/physiolog/internal/models"
)

// Container identity of an embedded physio recording.
const (
	expectedManufacturer = "SIEMENS"
	expectedCreator      = "SIEMENS CSA NON-IMAGE"

	// PhysioGroup and PhysioElement address the private tag carrying the
	// encoded log files.
	PhysioGroup   uint16 = 0x7fe1
	PhysioElement uint16 = 0x1010
)

// chunkRowBytes is the fixed row width of the encoded payload. Each embedded
// file occupies rows*1024 bytes: a header row of two little-endian uint32
// lengths plus the filename, then the file data starting at the fixed
// 1024-byte offset (the gap up to 1024 is reserved padding).
const chunkRowBytes = 1024

var expectedImageType = []string{"ORIGINAL", "PRIMARY", "RAWDATA", "PHYSIO"}

// fromContainer reads the private payload from the container at path and
// splits it into the embedded log buffers.
func fromContainer(path string, container ContainerReader, log *slog.Logger) (*Sources, error) {
	manufacturer, err := container.Manufacturer(path)
	if err != nil {
		return nil, fmt.Errorf("%s: read manufacturer: %w", path, err)
	}
	if manufacturer != expectedManufacturer {
		log.Warn("unsupported manufacturer; this decoder is designed for SIEMENS advanced physiological logging data",
			slog.String("path", path), slog.String("manufacturer", manufacturer))
	}

	imageType, err := container.ImageType(path)
	if err != nil {
		return nil, fmt.Errorf("%s: read image type: %w", path, err)
	}
	if !equalStrings(imageType, expectedImageType) {
		return nil, fmt.Errorf("%s: image type %v: %w", path, imageType, apperr.ErrMalformedContainer)
	}

	creator, payload, err := container.PrivateBlob(path, PhysioGroup, PhysioElement)
	if err != nil {
		return nil, fmt.Errorf("%s: read physio tag (%04x,%04x): %w", path, PhysioGroup, PhysioElement, err)
	}
	if creator != expectedCreator {
		return nil, fmt.Errorf("%s: private creator %q: %w", path, creator, apperr.ErrMalformedContainer)
	}

	rows, err := container.AcquisitionNumber(path)
	if err != nil {
		return nil, fmt.Errorf("%s: read acquisition number: %w", path, err)
	}
	if rows < 1 || len(payload)%rows != 0 {
		return nil, fmt.Errorf("%s: invalid image size [%d rows x %d bytes]: %w",
			path, rows, len(payload), apperr.ErrMalformedContainer)
	}
	columns := len(payload) / rows
	if columns%chunkRowBytes != 0 {
		return nil, fmt.Errorf("%s: invalid image size [%d x %d]: %w",
			path, rows, columns, apperr.ErrMalformedContainer)
	}
	nrFiles := columns / chunkRowBytes

	src := &Sources{}
	haveInfo := false
	chunkLen := rows * chunkRowBytes
	for i := 0; i < nrFiles; i++ {
		chunk := payload[i*chunkLen : (i+1)*chunkLen]
		name, data, err := decodeChunk(chunk)
		if err != nil {
			return nil, fmt.Errorf("%s: embedded file %d: %w", path, i, err)
		}
		log.Info("decoded embedded file", slog.String("filename", name), slog.Int("bytes", len(data)))

		kind, ok := kindForName(name)
		if !ok {
			continue
		}
		buf := models.LogBuffer{Kind: kind, Name: name, Data: data}
		if kind == models.KindInfo {
			src.Info = buf
			haveInfo = true
		} else {
			src.Channels = append(src.Channels, buf)
		}
	}
	if !haveInfo {
		return nil, fmt.Errorf("%s: no embedded %s file: %w", path, models.KindInfo.Suffix(), apperr.ErrSourceNotFound)
	}
	return src, nil
}

// decodeChunk splits one rows*1024-byte chunk into its filename and data.
// The returned data is an owned copy, not a view of the payload.
func decodeChunk(chunk []byte) (string, []byte, error) {
	if len(chunk) < chunkRowBytes {
		return "", nil, fmt.Errorf("chunk of %d bytes: %w", len(chunk), apperr.ErrMalformedContainer)
	}
	dataLen := int(binary.LittleEndian.Uint32(chunk[0:4]))
	nameLen := int(binary.LittleEndian.Uint32(chunk[4:8]))
	if nameLen < 0 || 8+nameLen > chunkRowBytes {
		return "", nil, fmt.Errorf("filename length %d: %w", nameLen, apperr.ErrMalformedContainer)
	}
	if dataLen < 0 || chunkRowBytes+dataLen > len(chunk) {
		return "", nil, fmt.Errorf("data length %d exceeds chunk of %d bytes: %w",
			dataLen, len(chunk), apperr.ErrMalformedContainer)
	}
	name := string(chunk[8 : 8+nameLen])
	data := make([]byte, dataLen)
	copy(data, chunk[chunkRowBytes:chunkRowBytes+dataLen])
	return name, data, nil
}

var allKinds = []models.LogKind{
	models.KindInfo, models.KindECG, models.KindRESP, models.KindPULS, models.KindEXT,
}

func kindForName(name string) (models.LogKind, bool) {
	for _, kind := range allKinds {
		if strings.HasSuffix(name, kind.Suffix()) {
			return kind, true
		}
	}
	return 0, false
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
