package segments

import (
	"bufio"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/linuxmatters/voxtrim/internal/refine"
)

// Read loads a segment list, choosing the format from the file extension
func Read(path string) ([]refine.Span, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open segments: %w", err)
	}
	defer f.Close()

	spans, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spans, nil
}

// Decode parses a segment list in the given format. Spans are returned in
// file order; nothing is sorted or validated beyond parsing.
func Decode(r io.Reader, format Format) ([]refine.Span, error) {
	switch format {
	case ELAN:
		return decodeELAN(r)
	case JSON:
		return decodeJSON(r)
	case Kaldi:
		return decodeKaldi(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

type tier struct {
	XMLName xml.Name   `xml:"TIER"`
	Columns string     `xml:"columns,attr"`
	Spans   []tierSpan `xml:"span"`
}

type tierSpan struct {
	Start string `xml:"start,attr"`
	End   string `xml:"end,attr"`
	Value string `xml:"v"`
}

func decodeELAN(r io.Reader) ([]refine.Span, error) {
	var t tier
	if err := xml.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("invalid ELAN tier: %w", err)
	}

	spans := make([]refine.Span, 0, len(t.Spans))
	for i, s := range t.Spans {
		span, err := parseSpan(s.Start, s.End)
		if err != nil {
			return nil, fmt.Errorf("span %d: %w", i+1, err)
		}
		spans = append(spans, span)
	}
	return spans, nil
}

func decodeJSON(r io.Reader) ([]refine.Span, error) {
	var spans []refine.Span
	if err := json.NewDecoder(r).Decode(&spans); err != nil {
		return nil, fmt.Errorf("invalid JSON segments: %w", err)
	}
	return spans, nil
}

func decodeKaldi(r io.Reader) ([]refine.Span, error) {
	var spans []refine.Span
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		var span refine.Span
		var err error
		switch len(fields) {
		case 2:
			span, err = parseSpan(fields[0], fields[1])
		case 4:
			span, err = parseSpan(fields[2], fields[3])
		default:
			err = fmt.Errorf("expected 2 or 4 fields, got %d", len(fields))
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		spans = append(spans, span)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read segments: %w", err)
	}
	return spans, nil
}

func parseSpan(start, end string) (refine.Span, error) {
	s, err := parseSeconds(start)
	if err != nil {
		return refine.Span{}, fmt.Errorf("start: %w", err)
	}
	e, err := parseSeconds(end)
	if err != nil {
		return refine.Span{}, fmt.Errorf("end: %w", err)
	}
	return refine.Span{Start: s, End: e}, nil
}

func parseSeconds(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, err
	}
	if !finite(f) {
		return 0, fmt.Errorf("non-finite time %q", v)
	}
	return f, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
