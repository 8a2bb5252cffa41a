package refine

import "github.com/linuxmatters/voxtrim/internal/audio"

// SplitOnSilence divides iv at internal silences of at least
// MinSilenceRunMS. Sub-intervals keep KeepSilenceMS of context at internal
// seams only, never at the outer edges of iv. A wholly silent interval
// yields no sub-intervals.
func SplitOnSilence(buf *audio.Buffer, iv Interval, cfg Config) []Interval {
	children, _, _ := splitOnSilence(buf, iv, cfg)
	return children
}

// splitOnSilence also returns the interval's level and the internal threshold
func splitOnSilence(buf *audio.Buffer, iv Interval, cfg Config) ([]Interval, float64, float64) {
	iv = iv.Clamp(buf.DurationMS())
	if iv.Empty() {
		return nil, SilenceLevel, SilenceLevel
	}

	level := LevelOf(buf, iv.StartMS, iv.EndMS)
	threshold := level * cfg.InternalThresholdFactor

	ranges := detectNonSilent(buf, iv, threshold, cfg.MinSilenceRunMS, cfg.SeekStepMS)
	children := make([]Interval, 0, len(ranges))
	for i, r := range ranges {
		child := Interval{StartMS: iv.StartMS + r.StartMS, EndMS: iv.StartMS + r.EndMS}
		if i != 0 {
			child.StartMS -= cfg.KeepSilenceMS
		}
		if i != len(ranges)-1 {
			child.EndMS += cfg.KeepSilenceMS
		}
		child.StartMS = max(child.StartMS, iv.StartMS)
		child.EndMS = min(child.EndMS, iv.EndMS)
		if child.Empty() {
			continue
		}
		children = append(children, child)
	}

	return children, level, threshold
}

// detectSilence returns runs of iv, relative to iv.StartMS, in which every
// minLen window stepped by step is at or below threshold. The final window
// position is always examined even when it is off the step grid.
func detectSilence(buf *audio.Buffer, iv Interval, threshold float64, minLen, step int) []Interval {
	segLen := iv.Width()
	if minLen < 1 || segLen < minLen {
		return nil
	}
	if step < 1 {
		step = 1
	}

	var starts []int
	probe := func(i int) {
		if silentAt(buf, iv.StartMS+i, iv.StartMS+i+minLen, threshold) {
			starts = append(starts, i)
		}
	}

	last := segLen - minLen
	for i := 0; i <= last; i += step {
		probe(i)
	}
	if last%step != 0 {
		probe(last)
	}
	if len(starts) == 0 {
		return nil
	}

	var runs []Interval
	runStart, prev := starts[0], starts[0]
	for _, s := range starts[1:] {
		continuous := s == prev+step
		hasGap := s > prev+minLen
		if !continuous && hasGap {
			runs = append(runs, Interval{StartMS: runStart, EndMS: prev + minLen})
			runStart = s
		}
		prev = s
	}
	runs = append(runs, Interval{StartMS: runStart, EndMS: prev + minLen})

	return runs
}

// detectNonSilent returns the complement of detectSilence within iv,
// relative to iv.StartMS.
func detectNonSilent(buf *audio.Buffer, iv Interval, threshold float64, minLen, step int) []Interval {
	segLen := iv.Width()
	runs := detectSilence(buf, iv, threshold, minLen, step)
	if len(runs) == 0 {
		return []Interval{{StartMS: 0, EndMS: segLen}}
	}
	if runs[0].StartMS == 0 && runs[0].EndMS == segLen {
		return nil
	}

	var ranges []Interval
	prevEnd := 0
	for _, r := range runs {
		ranges = append(ranges, Interval{StartMS: prevEnd, EndMS: r.StartMS})
		prevEnd = r.EndMS
	}
	if prevEnd != segLen {
		ranges = append(ranges, Interval{StartMS: prevEnd, EndMS: segLen})
	}
	if ranges[0].StartMS == 0 && ranges[0].EndMS == 0 {
		ranges = ranges[1:]
	}

	return ranges
}
