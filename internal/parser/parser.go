// Package parser tokenizes the line-oriented grammar shared by all physio
// log files: metadata assignments, tabular data rows, and a skippable
// column-header row. It is pure; interpretation of the events belongs to the
// acqinfo and trace packages.
package parser

import "strings"

// FieldCount is the fixed width data rows are padded to.
const FieldCount = 5

// EventKind classifies one parsed line.
type EventKind int

const (
	// Blank: empty, or nothing left after stripping the comment.
	Blank EventKind = iota
	// Assignment: a "key = value" metadata line.
	Assignment
	// DataRow: a whitespace-delimited sample row.
	DataRow
	// Header: a row whose first token is non-numeric (the column-header
	// line preceding the data block); skipped by all consumers.
	Header
)

// Event is the parse result of a single line.
type Event struct {
	Kind  EventKind
	Key   string
	Value string
	// Fields holds the data row right-padded with "0" to FieldCount.
	Fields [FieldCount]string
	// NFields is the number of fields actually present before padding;
	// consumers use it to tell a defaulted trailing field from an explicit
	// one.
	NFields int
}

// Lines splits a log buffer into raw lines. A trailing newline does not
// produce a final empty line; carriage returns are stripped. The returned
// count is significant: the legacy volume correction is defined over it.
func Lines(data []byte) []string {
	s := string(data)
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// ParseLine tokenizes one raw line into an Event.
func ParseLine(line string) Event {
	// Strip a trailing #-introduced comment, then surrounding whitespace.
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return Event{Kind: Blank}
	}

	if i := strings.IndexByte(line, '='); i >= 0 {
		return Event{
			Kind:  Assignment,
			Key:   strings.TrimSpace(line[:i]),
			Value: strings.TrimSpace(line[i+1:]),
		}
	}

	fields := strings.Fields(line)
	if !isDigits(fields[0]) {
		return Event{Kind: Header}
	}
	ev := Event{Kind: DataRow, NFields: len(fields)}
	for i := 0; i < FieldCount; i++ {
		if i < len(fields) {
			ev.Fields[i] = fields[i]
		} else {
			ev.Fields[i] = "0"
		}
	}
	return ev
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
