// This file provides console display for inspect mode.

package logging

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/voxtrim/internal/processor"
	"github.com/linuxmatters/voxtrim/internal/refine"
)

// DisplayInspection outputs what refinement would do to a file's segments
// without writing anything. Used by the inspect command.
func DisplayInspection(w io.Writer, r *processor.ProcessingResult) {
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "INSPECT: %s\n", filepath.Base(r.AudioPath))
	fmt.Fprintln(w, strings.Repeat("=", 70))

	fmt.Fprintf(w, "Segments:    %s\n", filepath.Base(r.SegmentsPath))
	if md := r.Metadata; md != nil {
		fmt.Fprintf(w, "Duration:    %s\n", formatDurationHMS(md.Duration))
		fmt.Fprintf(w, "Sample Rate: %d Hz\n", md.SampleRate)
		fmt.Fprintf(w, "Channels:    %s\n", channelName(md.Channels))
	}
	fmt.Fprintf(w, "Mode:        %s\n", modeName(r.Config.Enabled))
	fmt.Fprintln(w)

	if m := r.Measurements; m != nil {
		writeAnalysisSection(w, "LEVELS")
		fmt.Fprintf(w, "  RMS Level:      %s dBFS\n", formatMetricDB(m.RMSLevel, 1))
		fmt.Fprintf(w, "  Peak Level:     %s dBFS\n", formatMetricDB(m.PeakLevel, 1))
		fmt.Fprintf(w, "  Noise Floor:    %s dBFS (%s)\n", formatMetricDB(m.NoiseFloor, 1), interpretNoiseFloor(m.NoiseFloor))
		fmt.Fprintf(w, "  Dynamic Range:  %.1f dB\n", m.DynamicRange)
		if r.MainsHz > 0 {
			fmt.Fprintf(w, "  Hum Rejection:  %d Hz\n", r.MainsHz)
		}
		fmt.Fprintln(w)
	}

	res := r.Refinement
	writeAnalysisSection(w, "SEGMENTS")
	fmt.Fprintf(w, "  Input:  %d   Output: %d", len(r.Input), len(res.Spans))
	if res.Split {
		fmt.Fprintf(w, "   Dropped: %d", len(res.Dropped))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	if res.Split {
		for _, tr := range res.Traces {
			writeTraceLine(w, tr)
		}
	} else {
		for i, s := range res.Spans {
			fmt.Fprintf(w, "  #%d: %s at %s\n", i+1, formatSpanRange(s.Start, s.End), formatTimestamp(secondsToDuration(s.Start)))
		}
	}
	fmt.Fprintln(w)

	writeAnalysisSection(w, "ADVISORIES")
	advisories := GenerateAdvisories(r)
	if len(advisories) == 0 {
		fmt.Fprintln(w, "  None")
		return
	}
	for _, a := range advisories {
		fmt.Fprintf(w, "  - %s\n", wrapText(a.Message, 66, "    "))
	}
}

// writeTraceLine shows how far edge refinement moved a segment and what the
// splitter made of it
func writeTraceLine(w io.Writer, tr refine.SegmentTrace) {
	startShift := tr.Refined.StartMS - tr.Original.StartMS
	endShift := tr.Refined.EndMS - tr.Original.EndMS

	fmt.Fprintf(w, "  #%d: %s at %s  start %+d ms, end %+d ms, %s\n",
		tr.Index+1,
		formatSpanRange(tr.Input.Start, tr.Input.End),
		formatTimestamp(secondsToDuration(tr.Input.Start)),
		startShift, endShift,
		describeChildren(tr.Children))
	fmt.Fprintf(w, "      level %s dBFS, edge threshold %s, split threshold %s\n",
		formatMetricDB(tr.Level, 1), formatMetricDB(tr.EdgeThreshold, 1), formatMetricDB(tr.InternalThreshold, 1))
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// writeAnalysisSection writes a section header for analysis output.
func writeAnalysisSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
}

// formatDurationHMS formats duration as "Xh Ym Zs" or "Ym Zs" or "Z.Xs".
func formatDurationHMS(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}

	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	}
	return fmt.Sprintf("%dm %ds", minutes, secs)
}

// formatTimestamp formats a duration as a timestamp string (e.g., "1m 32s" or "24.0s").
func formatTimestamp(d time.Duration) string {
	totalSeconds := d.Seconds()
	if totalSeconds < 60 {
		return fmt.Sprintf("%.1fs", totalSeconds)
	}

	minutes := int(totalSeconds) / 60
	seconds := math.Mod(totalSeconds, 60)

	if minutes >= 60 {
		hours := minutes / 60
		minutes = minutes % 60
		return fmt.Sprintf("%dh %dm %.0fs", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %.0fs", minutes, seconds)
}
