package segments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/linuxmatters/voxtrim/internal/refine"
)

const tierHeader = `<TIER xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:noNamespaceSchemaLocation="file:avatech-tier.xsd" columns="%s">` + "\n"

// Write encodes spans in the given format. column names the ELAN tier
// column or the Kaldi recording id; JSON ignores it.
func Write(w io.Writer, format Format, spans []refine.Span, column string) error {
	var buf bytes.Buffer

	switch format {
	case ELAN:
		buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
		fmt.Fprintf(&buf, tierHeader, column)
		for _, s := range spans {
			fmt.Fprintf(&buf, "    <span start=\"%.3f\" end=\"%.3f\"><v></v></span>\n", s.Start, s.End)
		}
		buf.WriteString("</TIER>\n")

	case JSON:
		if spans == nil {
			spans = []refine.Span{}
		}
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(spans); err != nil {
			return fmt.Errorf("failed to encode segments: %w", err)
		}

	case Kaldi:
		rec := column
		if rec == "" {
			rec = "rec"
		}
		for i, s := range spans {
			fmt.Fprintf(&buf, "%s-%04d %s %.3f %.3f\n", rec, i+1, rec, s.Start, s.End)
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile writes spans to path, replacing any existing file
func WriteFile(path string, format Format, spans []refine.Span, column string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(f, format, spans, column); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
