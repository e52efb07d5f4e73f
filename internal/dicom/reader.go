// Package dicom adapts a DICOM file to the source.ContainerReader
// interface. Only the handful of fields the locator needs are exposed; the
// file is parsed once and cached per reader.
package dicom

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	godicom "github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Reader reads container fields from DICOM files.
type Reader struct {
	mu   sync.Mutex
	path string
	ds   godicom.Dataset
}

// NewReader creates an empty reader; files are parsed lazily on first use.
func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) dataset(path string) (*godicom.Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.path == path {
		return &r.ds, nil
	}
	ds, err := godicom.ParseFile(path, nil, godicom.SkipPixelData())
	if err != nil {
		return nil, fmt.Errorf("parse dicom %s: %w", path, err)
	}
	r.path = path
	r.ds = ds
	return &r.ds, nil
}

// Manufacturer returns the Manufacturer (0008,0070) attribute.
func (r *Reader) Manufacturer(path string) (string, error) {
	ds, err := r.dataset(path)
	if err != nil {
		return "", err
	}
	v, err := stringValues(ds, tag.Manufacturer)
	if err != nil {
		return "", err
	}
	if len(v) == 0 {
		return "", nil
	}
	return v[0], nil
}

// ImageType returns the ImageType (0008,0008) attribute values.
func (r *Reader) ImageType(path string) ([]string, error) {
	ds, err := r.dataset(path)
	if err != nil {
		return nil, err
	}
	return stringValues(ds, tag.ImageType)
}

// AcquisitionNumber returns the AcquisitionNumber (0020,0012) attribute.
func (r *Reader) AcquisitionNumber(path string) (int, error) {
	ds, err := r.dataset(path)
	if err != nil {
		return 0, err
	}
	el, err := ds.FindElementByTag(tag.AcquisitionNumber)
	if err != nil {
		return 0, fmt.Errorf("%s: acquisition number: %w", path, err)
	}
	switch v := el.Value.GetValue().(type) {
	case []int:
		if len(v) > 0 {
			return v[0], nil
		}
	case []string:
		if len(v) > 0 {
			n, err := strconv.Atoi(strings.TrimSpace(v[0]))
			if err != nil {
				return 0, fmt.Errorf("%s: acquisition number %q: %w", path, v[0], err)
			}
			return n, nil
		}
	}
	return 0, fmt.Errorf("%s: acquisition number has no value", path)
}

// PrivateBlob returns the private creator string for group and the byte
// payload of (group, element).
func (r *Reader) PrivateBlob(path string, group, element uint16) (string, []byte, error) {
	ds, err := r.dataset(path)
	if err != nil {
		return "", nil, err
	}

	// The private creator lives at element 0x0010 of the same group.
	creator := ""
	if el, err := ds.FindElementByTag(tag.Tag{Group: group, Element: 0x0010}); err == nil {
		if v, ok := el.Value.GetValue().([]string); ok && len(v) > 0 {
			creator = strings.TrimSpace(v[0])
		}
	}

	el, err := ds.FindElementByTag(tag.Tag{Group: group, Element: element})
	if err != nil {
		return "", nil, fmt.Errorf("%s: private tag (%04x,%04x): %w", path, group, element, err)
	}
	data, ok := el.Value.GetValue().([]byte)
	if !ok {
		return "", nil, fmt.Errorf("%s: private tag (%04x,%04x) is not a byte payload", path, group, element)
	}
	return creator, data, nil
}

func stringValues(ds *godicom.Dataset, t tag.Tag) ([]string, error) {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return nil, fmt.Errorf("tag %v: %w", t, err)
	}
	v, ok := el.Value.GetValue().([]string)
	if !ok {
		return nil, fmt.Errorf("tag %v is not a string attribute", t)
	}
	out := make([]string, len(v))
	for i, s := range v {
		out[i] = strings.TrimSpace(s)
	}
	return out, nil
}
