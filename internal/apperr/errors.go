// Package apperr defines the sentinel errors of the physio decode pipeline.
// Call sites wrap these with fmt.Errorf("...: %w", err) to attach
// file/field/value context; callers classify with errors.Is.
package apperr

import "errors"

var (
	// ErrFormatVersion: the log declares a LogVersion other than the one
	// fixed version this decoder supports.
	ErrFormatVersion = errors.New("unsupported log format version")
	// ErrDataType: a logical file carries the wrong LogDataType for its
	// context, or a metadata key appears in the wrong file type.
	ErrDataType = errors.New("unexpected log data type")
	// ErrMissingField: a required metadata key is absent before the first
	// data row.
	ErrMissingField = errors.New("missing required field")
	// ErrMalformedContainer: the container's image type, private creator or
	// chunk geometry does not describe an embedded physio recording.
	ErrMalformedContainer = errors.New("not a valid physio container")
	// ErrDuplicateTiming: a (volume, slice, echo) cell with an explicit echo
	// index was written twice.
	ErrDuplicateTiming = errors.New("duplicate timing data")
	// ErrChannelToken: a data row names an unknown sub-channel.
	ErrChannelToken = errors.New("invalid channel id")
	// ErrUUIDMismatch: a channel file belongs to a different scan than the
	// acquisition info file.
	ErrUUIDMismatch = errors.New("uuid mismatch")
	// ErrTimeline: the scan's last timestamp is not greater than its first.
	ErrTimeline = errors.New("last timestamp not greater than first")
	// ErrSourceNotFound: the mandatory info file, or every channel file, is
	// missing.
	ErrSourceNotFound = errors.New("physio source not found")
)
