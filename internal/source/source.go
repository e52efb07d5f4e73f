// Package source locates and splits raw physio input into named logical log
// buffers. A path naming an existing regular file is decoded as an embedded
// container; otherwise it is treated as the basename of a set of sibling
// text log files.
package source

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/openphysio/physiolog/internal/apperr"
	"github.com/openphysio/physiolog/internal/models"
)

// FileSystem is the minimal filesystem surface the locator needs.
type FileSystem interface {
	// IsFile reports whether path names an existing regular file.
	IsFile(path string) bool
	// ReadFile returns the whole content of the file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFileSystem implements FileSystem on the local filesystem.
type OSFileSystem struct{}

func (OSFileSystem) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ContainerReader reads the container fields the locator depends on. The
// locator never writes the container.
type ContainerReader interface {
	Manufacturer(path string) (string, error)
	ImageType(path string) ([]string, error)
	AcquisitionNumber(path string) (int, error)
	// PrivateBlob returns the private creator string and byte payload of
	// the (group, element) tag.
	PrivateBlob(path string, group, element uint16) (creator string, data []byte, err error)
}

// Sources is the locator's output: the mandatory info buffer plus the
// channel buffers that were present.
type Sources struct {
	Info     models.LogBuffer
	Channels []models.LogBuffer
}

// Locate resolves path into log buffers. The info buffer is mandatory and at
// least one of the four channel buffers must be present.
func Locate(path string, fsys FileSystem, container ContainerReader, log *slog.Logger) (*Sources, error) {
	var (
		src *Sources
		err error
	)
	if fsys.IsFile(path) {
		log.Info("reading embedded physio container", slog.String("path", path))
		src, err = fromContainer(path, container, log)
	} else {
		src, err = fromSiblings(path, fsys, log)
	}
	if err != nil {
		return nil, err
	}
	if len(src.Channels) == 0 {
		return nil, fmt.Errorf("%s: no data files (ECG/RESP/PULS/EXT) found: %w", path, apperr.ErrSourceNotFound)
	}
	return src, nil
}

// fromSiblings resolves the five candidate sibling files next to base. Only
// the info file is mandatory.
func fromSiblings(base string, fsys FileSystem, log *slog.Logger) (*Sources, error) {
	infoPath := base + models.KindInfo.Suffix()
	if !fsys.IsFile(infoPath) {
		return nil, fmt.Errorf("%s: %w", infoPath, apperr.ErrSourceNotFound)
	}
	data, err := fsys.ReadFile(infoPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", infoPath, err)
	}

	src := &Sources{Info: models.LogBuffer{Kind: models.KindInfo, Name: infoPath, Data: data}}
	for _, kind := range models.ChannelKinds {
		p := base + kind.Suffix()
		if !fsys.IsFile(p) {
			continue
		}
		log.Info("reading physio log file", slog.String("path", p))
		data, err := fsys.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		src.Channels = append(src.Channels, models.LogBuffer{Kind: kind, Name: p, Data: data})
	}
	return src, nil
}
