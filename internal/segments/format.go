// Package segments reads and writes lists of speech segments in the
// formats accepted by voxtrim: ELAN tier XML, JSON and Kaldi segments.
package segments

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a segment list encoding
type Format string

const (
	ELAN  Format = "elan"  // AVATech tier XML, as exchanged with ELAN recognizers
	JSON  Format = "json"  // [{"start": s, "end": s}, ...]
	Kaldi Format = "kaldi" // "utt rec start end" or "start end" per line
)

// ELAN tier columns
const (
	ColumnAdjusted    = "VoxsegOutput-Adjusted" // Split mode output
	ColumnPassThrough = "VoxsegOutput"          // Offsets only
)

// ErrUnknownFormat is returned for unrecognised format names and extensions
var ErrUnknownFormat = errors.New("unknown segment format")

// ParseFormat resolves a format name, case-insensitively
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case ELAN, JSON, Kaldi:
		return f, nil
	case "xml":
		return ELAN, nil
	case "segments", "txt":
		return Kaldi, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatForPath infers the format from a file extension
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".etf":
		return ELAN, nil
	case ".json":
		return JSON, nil
	case ".segments", ".txt", ".seg", "":
		return Kaldi, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Extension returns the file extension written for a format
func (f Format) Extension() string {
	switch f {
	case ELAN:
		return ".xml"
	case JSON:
		return ".json"
	default:
		return ".segments"
	}
}
