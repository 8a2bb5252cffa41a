package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/linuxmatters/voxtrim/internal/processor"
)

// Advisory represents a single caller-visible condition found in a
// refinement result, with advice on how to address it.
type Advisory struct {
	Priority int    // Higher = more important (1-10)
	Message  string // Human-readable advice (1-2 sentences)
	RuleID   string // Identifier for testing/logging (e.g., "segments_inverted")
}

// MaxAdvisories is the maximum number of advisories to return.
const MaxAdvisories = 5

// noisyFloorDB is the noise floor above which relative thresholds struggle
// to separate speech from background
const noisyFloorDB = -45.0

// maxListedIndices caps how many segment numbers an advisory lists
const maxListedIndices = 4

// GenerateAdvisories inspects a processing result and returns prioritised
// warnings about conditions the pipeline reports but does not correct.
func GenerateAdvisories(r *processor.ProcessingResult) []Advisory {
	if r == nil || r.Refinement == nil {
		return nil
	}

	var advisories []Advisory
	fired := make(map[string]bool)

	rules := []func(*processor.ProcessingResult) *Advisory{
		adviseNoSegments,
		adviseInverted,
		adviseOverlapFromOffsets,
		adviseOverlapping,
		adviseDropped,
		adviseBeyondAudio,
		adviseNoisyFloor,
		adviseLooseningThreshold,
	}

	for _, rule := range rules {
		if a := rule(r); a != nil {
			advisories = append(advisories, *a)
			fired[a.RuleID] = true
		}
	}

	advisories = applyExclusions(advisories, fired)

	sort.SliceStable(advisories, func(i, j int) bool {
		return advisories[i].Priority > advisories[j].Priority
	})

	if len(advisories) > MaxAdvisories {
		advisories = advisories[:MaxAdvisories]
	}

	return advisories
}

// applyExclusions removes advisories that are redundant when a more
// specific one has already fired.
func applyExclusions(advisories []Advisory, fired map[string]bool) []Advisory {
	var result []Advisory
	for _, a := range advisories {
		switch a.RuleID {
		case "segments_overlapping":
			if fired["overlap_from_offsets"] {
				continue
			}
		case "noisy_floor":
			if fired["no_segments"] {
				continue
			}
		}
		result = append(result, a)
	}
	return result
}

// wrapText wraps text at word boundaries to fit within maxWidth columns.
// Continuation lines are prefixed with indent.
func wrapText(text string, maxWidth int, indent string) string {
	words := strings.Fields(text)
	var lines []string
	currentLine := ""

	for _, word := range words {
		if currentLine == "" {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= maxWidth {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n"+indent)
}

// formatIndexList renders zero-based indices as 1-based segment numbers,
// e.g. "#2, #5, #9 and 3 more"
func formatIndexList(indices []int) string {
	n := min(len(indices), maxListedIndices)
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("#%d", indices[i]+1)
	}
	s := strings.Join(parts, ", ")
	if extra := len(indices) - n; extra > 0 {
		s += fmt.Sprintf(" and %d more", extra)
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// adviseNoSegments fires when the input segment list was empty
func adviseNoSegments(r *processor.ProcessingResult) *Advisory {
	if len(r.Input) > 0 {
		return nil
	}
	return &Advisory{
		Priority: 9,
		RuleID:   "no_segments",
		Message:  "The input segment list was empty, so there was nothing to refine. Check that the voice activity detector produced output for this file.",
	}
}

// adviseInverted fires when offsets made any output segment end before it starts
func adviseInverted(r *processor.ProcessingResult) *Advisory {
	n := len(r.Refinement.Inverted)
	if n == 0 {
		return nil
	}
	return &Advisory{
		Priority: 10,
		RuleID:   "segments_inverted",
		Message: fmt.Sprintf("%s end before they start (%s). Reduce adjust_start_ms or increase adjust_end_ms.",
			plural(n, "output segment", "output segments"), formatIndexList(r.Refinement.Inverted)),
	}
}

// adviseOverlapFromOffsets fires when overlaps exist and the offsets widen
// every segment, which is the likely cause
func adviseOverlapFromOffsets(r *processor.ProcessingResult) *Advisory {
	n := len(r.Refinement.Overlapping)
	widening := r.Config.AdjustEnd - r.Config.AdjustStart
	if n == 0 || widening <= 0 {
		return nil
	}
	return &Advisory{
		Priority: 8,
		RuleID:   "overlap_from_offsets",
		Message: fmt.Sprintf("%s overlap the previous one (%s). The offsets widen every segment by %.0f ms; ELAN does not allow overlapping annotations on one tier, so try smaller offsets.",
			plural(n, "output segment", "output segments"), formatIndexList(r.Refinement.Overlapping), widening*1000),
	}
}

// adviseOverlapping fires when output segments overlap their predecessor
func adviseOverlapping(r *processor.ProcessingResult) *Advisory {
	n := len(r.Refinement.Overlapping)
	if n == 0 {
		return nil
	}
	return &Advisory{
		Priority: 7,
		RuleID:   "segments_overlapping",
		Message: fmt.Sprintf("%s overlap the previous one (%s). Check the input segment list for overlapping or unsorted entries.",
			plural(n, "output segment", "output segments"), formatIndexList(r.Refinement.Overlapping)),
	}
}

// adviseDropped fires when split mode removed wholly silent input segments
func adviseDropped(r *processor.ProcessingResult) *Advisory {
	n := len(r.Refinement.Dropped)
	if n == 0 {
		return nil
	}
	return &Advisory{
		Priority: 6,
		RuleID:   "segments_dropped",
		Message: fmt.Sprintf("%s contained only silence and produced no output (input %s). If speech was lost, lower internal_threshold.",
			plural(n, "input segment", "input segments"), formatIndexList(r.Refinement.Dropped)),
	}
}

// adviseBeyondAudio fires when input segments extend past the audio
func adviseBeyondAudio(r *processor.ProcessingResult) *Advisory {
	var clamped []int
	for _, tr := range r.Refinement.Traces {
		if tr.Clamped {
			clamped = append(clamped, tr.Index)
		}
	}
	if len(clamped) == 0 {
		return nil
	}
	return &Advisory{
		Priority: 7,
		RuleID:   "beyond_audio",
		Message: fmt.Sprintf("%s extend beyond the audio (input %s) and were clipped to it. The segment list may belong to a different file.",
			plural(len(clamped), "input segment", "input segments"), formatIndexList(clamped)),
	}
}

// adviseNoisyFloor fires when background noise is high enough to blur
// segment boundaries
func adviseNoisyFloor(r *processor.ProcessingResult) *Advisory {
	m := r.Measurements
	if m == nil || m.NoiseFloor <= noisyFloorDB {
		return nil
	}
	msg := fmt.Sprintf("The background noise floor is high (%.0f dBFS), so quiet speech edges are hard to separate from noise.", m.NoiseFloor)
	if r.MainsHz == 0 {
		msg += " If the noise is a low hum, try --hum auto."
	}
	return &Advisory{
		Priority: 5,
		RuleID:   "noisy_floor",
		Message:  msg,
	}
}

// adviseLooseningThreshold fires when a threshold factor below 1 raises
// thresholds towards the segment level
func adviseLooseningThreshold(r *processor.ProcessingResult) *Advisory {
	if !r.Config.Enabled {
		return nil
	}
	var names []string
	if r.Config.EdgeThresholdFactor < 1 {
		names = append(names, "edge_threshold")
	}
	if r.Config.InternalThresholdFactor < 1 {
		names = append(names, "internal_threshold")
	}
	if len(names) == 0 {
		return nil
	}
	return &Advisory{
		Priority: 4,
		RuleID:   "loosening_threshold",
		Message: fmt.Sprintf("A negative %s raises the threshold towards the segment's own level, so more of each segment counts as silence. Use a positive percentage to be stricter.",
			strings.Join(names, " and ")),
	}
}
