// Package logging handles generation of refinement reports for processed audio files

package logging

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/voxtrim/internal/processor"
	"github.com/linuxmatters/voxtrim/internal/refine"
)

// writeSection writes a section header with title and dashed underline.
// The underline length matches the title length.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

// ReportData contains all the information needed to generate a report
type ReportData struct {
	StartTime time.Time
	EndTime   time.Time
	Result    *processor.ProcessingResult
}

// ReportPath returns the report filename for an output file
// Example: interview-refined.xml → interview-refined.log
func ReportPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".log"
}

// GenerateReport creates a detailed refinement report and saves it
// alongside the output file. Returns the report path.
func GenerateReport(data ReportData) (string, error) {
	if data.Result == nil || data.Result.OutputPath == "" {
		return "", fmt.Errorf("no output to report on")
	}
	logPath := ReportPath(data.Result.OutputPath)

	f, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	WriteReport(f, data)
	return logPath, nil
}

// WriteReport writes the report sections:
// 1. Header - file info and timestamp
// 2. Processing Summary - pass timings
// 3. Configuration - refinement parameters
// 4. Audio Measurements - levels from the analysis pass (split mode only)
// 5. Segment Summary - counts and caller-visible conditions
// 6. Segments - per-segment table
// 7. Advisories
func WriteReport(w io.Writer, data ReportData) {
	r := data.Result

	writeReportHeader(w, data)
	writeProcessingSummary(w, data)
	writeConfiguration(w, r)
	if r.Measurements != nil {
		writeMeasurements(w, r.Measurements)
	}
	writeSegmentSummary(w, r)
	if r.Refinement.Split {
		writeSegmentTable(w, r.Refinement.Traces, r.Config)
	} else {
		writePassThroughTable(w, r.Input, r.Refinement.Spans)
	}
	writeAdvisories(w, GenerateAdvisories(r))
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// channelName returns a human-readable channel name
func channelName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%d channels", channels)
	}
}

// modeName describes the refinement mode
func modeName(split bool) string {
	if split {
		return "split (edge refinement + silence splitting)"
	}
	return "pass-through (offsets only)"
}

// writeReportHeader outputs the report header with file info and timestamp.
func writeReportHeader(w io.Writer, data ReportData) {
	r := data.Result
	fmt.Fprintln(w, "Voxtrim Refinement Report")
	fmt.Fprintln(w, "=========================")
	fmt.Fprintf(w, "File: %s\n", filepath.Base(r.AudioPath))
	fmt.Fprintf(w, "Segments: %s\n", filepath.Base(r.SegmentsPath))
	fmt.Fprintf(w, "Output: %s (%s)\n", filepath.Base(r.OutputPath), r.Format)
	fmt.Fprintf(w, "Processed: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	if md := r.Metadata; md != nil {
		fmt.Fprintf(w, "Duration: %s\n", formatDuration(time.Duration(md.Duration*float64(time.Second))))
		fmt.Fprintf(w, "Format: %d Hz, %s, %s\n", md.SampleRate, channelName(md.Channels), md.SampleFmt)
	}
	fmt.Fprintln(w, "")
}

// writeProcessingSummary outputs the processing time summary for all passes.
func writeProcessingSummary(w io.Writer, data ReportData) {
	r := data.Result
	writeSection(w, "Processing Summary")

	fmt.Fprintf(w, "Pass 1 (Analysis):    %s\n", formatDuration(r.AnalysisTime))
	fmt.Fprintf(w, "Pass 2 (Refinement):  %s\n", formatDuration(r.RefineTime))
	fmt.Fprintf(w, "Pass 3 (Writing):     %s\n", formatDuration(r.WriteTime))

	totalTime := data.EndTime.Sub(data.StartTime)
	fmt.Fprintf(w, "Total:                %s", formatDuration(totalTime))

	if r.Metadata != nil && r.Metadata.Duration > 0 && totalTime > 0 {
		audioDuration := time.Duration(r.Metadata.Duration * float64(time.Second))
		rtf := float64(audioDuration) / float64(totalTime)
		fmt.Fprintf(w, " (%.0fx real-time)", rtf)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "")
}

// thresholdPercent recovers the user percentage from a threshold factor
func thresholdPercent(factor float64) float64 {
	return (factor - 1) * 100
}

// writeConfiguration outputs the parameters used for the run
func writeConfiguration(w io.Writer, r *processor.ProcessingResult) {
	cfg := r.Config
	writeSection(w, "Configuration")

	fmt.Fprintf(w, "Mode:                %s\n", modeName(cfg.Enabled))
	fmt.Fprintf(w, "Start offset:        %s ms\n", formatMetricSigned(cfg.AdjustStart*1000, 0))
	fmt.Fprintf(w, "End offset:          %s ms\n", formatMetricSigned(cfg.AdjustEnd*1000, 0))

	if cfg.Enabled {
		fmt.Fprintf(w, "Edge threshold:      %s%% (factor %.2f)\n",
			formatMetricSigned(thresholdPercent(cfg.EdgeThresholdFactor), 1), cfg.EdgeThresholdFactor)
		fmt.Fprintf(w, "Internal threshold:  %s%% (factor %.2f)\n",
			formatMetricSigned(thresholdPercent(cfg.InternalThresholdFactor), 1), cfg.InternalThresholdFactor)
		fmt.Fprintf(w, "Edge search:         %d ms in %d ms windows\n", cfg.SearchWindowMS, cfg.WindowMS)
		fmt.Fprintf(w, "Minimum silence:     %d ms (step %d ms, keep %d ms)\n",
			cfg.MinSilenceRunMS, cfg.SeekStepMS, cfg.KeepSilenceMS)
		if r.MainsHz > 0 {
			fmt.Fprintf(w, "Hum rejection:       %d Hz\n", r.MainsHz)
		} else {
			fmt.Fprintln(w, "Hum rejection:       off")
		}
	}
	fmt.Fprintln(w, "")
}

// writeMeasurements outputs the analysis pass levels
func writeMeasurements(w io.Writer, m *processor.AudioMeasurements) {
	writeSection(w, "Audio Measurements")

	table := NewMetricTable("Value")
	table.AddLevelRow("RMS Level", []float64{m.RMSLevel}, "dBFS", "")
	table.AddLevelRow("Peak Level", []float64{m.PeakLevel}, "dBFS", "")
	table.AddLevelRow("Noise Floor", []float64{m.NoiseFloor}, "dBFS", interpretNoiseFloor(m.NoiseFloor))
	table.AddLevelRow("Loudest Interval", []float64{m.LoudestLevel}, "dBFS", "")
	table.AddMetricRow("Dynamic Range", []float64{m.DynamicRange}, 1, "dB", "")
	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

// interpretNoiseFloor describes the background level between words
func interpretNoiseFloor(db float64) string {
	switch {
	case isDigitalSilence(db):
		return "digital silence present"
	case db < -65:
		return "very quiet room"
	case db < -55:
		return "quiet, typical for speech"
	case db <= noisyFloorDB:
		return "audible background"
	default:
		return "noisy, edges may be imprecise"
	}
}

// writeSegmentSummary outputs counts and conditions
func writeSegmentSummary(w io.Writer, r *processor.ProcessingResult) {
	res := r.Refinement
	counts := res.Counts()
	writeSection(w, "Segment Summary")

	fmt.Fprintf(w, "Input segments:      %d\n", counts.Input)
	fmt.Fprintf(w, "Output segments:     %d\n", counts.Output)
	if res.Split {
		fmt.Fprintf(w, "Dropped (silent):    %d\n", counts.Dropped)
		fmt.Fprintf(w, "Split into several:  %d\n", counts.Split)
	}
	fmt.Fprintf(w, "Inverted:            %d\n", len(res.Inverted))
	fmt.Fprintf(w, "Overlapping:         %d\n", len(res.Overlapping))
	fmt.Fprintln(w, "")
}

// writeSegmentTable outputs one row per input segment: where it started,
// where edge refinement moved it, its level and thresholds, and what the
// splitter produced.
func writeSegmentTable(w io.Writer, traces []refine.SegmentTrace, cfg refine.Config) {
	writeSection(w, "Segments")
	if len(traces) == 0 {
		fmt.Fprintln(w, "No segments")
		fmt.Fprintln(w, "")
		return
	}

	table := NewMetricTable("Input", "Refined", "Level", "Edge Thr", "Split Thr", "Output")
	for _, tr := range traces {
		refined := tr.Refined.ToSpan()
		table.AddRow(fmt.Sprintf("#%d", tr.Index+1), []string{
			formatSpanRange(tr.Input.Start, tr.Input.End),
			formatSpanRange(refined.Start, refined.End),
			formatMetricDB(tr.Level, 1),
			formatMetricDB(tr.EdgeThreshold, 1),
			formatMetricDB(tr.InternalThreshold, 1),
			describeChildren(tr.Children),
		}, "", traceNote(tr))
	}
	fmt.Fprint(w, table.String())
	fmt.Fprintf(w, "Times in seconds before offsets; levels in dBFS. Output offsets: %s/%s ms\n",
		formatMetricSigned(cfg.AdjustStart*1000, 0), formatMetricSigned(cfg.AdjustEnd*1000, 0))
	fmt.Fprintln(w, "")
}

func describeChildren(children []refine.Interval) string {
	switch len(children) {
	case 0:
		return "dropped"
	case 1:
		return "1 segment"
	default:
		return fmt.Sprintf("%d segments", len(children))
	}
}

// traceNote flags anything unusual about one segment
func traceNote(tr refine.SegmentTrace) string {
	var notes []string
	if tr.Clamped {
		notes = append(notes, "clipped to audio")
	}
	if tr.Original.Empty() {
		notes = append(notes, "empty input")
	}
	if isDigitalSilence(tr.Level) {
		notes = append(notes, "digital silence")
	}
	moved := math.Abs(float64(tr.Refined.StartMS-tr.Original.StartMS)) +
		math.Abs(float64(tr.Refined.EndMS-tr.Original.EndMS))
	if moved == 0 && !tr.Original.Empty() {
		notes = append(notes, "edges unchanged")
	}
	return strings.Join(notes, ", ")
}

// writePassThroughTable outputs input and output spans side by side
func writePassThroughTable(w io.Writer, input, output []refine.Span) {
	writeSection(w, "Segments")
	if len(input) == 0 {
		fmt.Fprintln(w, "No segments")
		fmt.Fprintln(w, "")
		return
	}

	table := NewMetricTable("Input", "Output")
	for i := range input {
		out := MissingValue
		note := ""
		if i < len(output) {
			out = formatSpanRange(output[i].Start, output[i].End)
			if output[i].Inverted() {
				note = "inverted"
			}
		}
		table.AddRow(fmt.Sprintf("#%d", i+1), []string{formatSpanRange(input[i].Start, input[i].End), out}, "s", note)
	}
	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

// writeAdvisories outputs prioritised advisories, or a clean bill of health
func writeAdvisories(w io.Writer, advisories []Advisory) {
	writeSection(w, "Advisories")
	if len(advisories) == 0 {
		fmt.Fprintln(w, "None - all segments are ordered and well formed")
		return
	}
	for i, a := range advisories {
		fmt.Fprintf(w, "%d. %s\n", i+1, wrapText(a.Message, 72, "   "))
	}
}
