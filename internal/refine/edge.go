package refine

import "github.com/linuxmatters/voxtrim/internal/audio"

// scanState is the state of one edge scan
type scanState int

const (
	scanning scanState = iota
	stopped
)

// edgeScan walks candidate windows for one edge. Silent windows move the
// edge; the first non-silent window fixes it and stops the scan.
type edgeScan struct {
	state scanState
	pos   int
}

// observe feeds one window to the scan. silentPos is where the edge moves
// if the window is silent, stopPos where it settles if it is not.
func (e *edgeScan) observe(silent bool, silentPos, stopPos int) {
	if e.state == stopped {
		return
	}
	if silent {
		e.pos = silentPos
		return
	}
	e.pos = stopPos
	e.state = stopped
}

// RefineEdges moves the start and end of iv to the energy boundaries found
// within SearchWindowMS of each edge, using a threshold derived from the
// interval's own level. Bounds are clamped to the buffer first; an interval
// that is empty after clamping is returned as is.
func RefineEdges(buf *audio.Buffer, iv Interval, cfg Config) Interval {
	refined, _, _ := refineEdges(buf, iv, cfg)
	return refined
}

// refineEdges also returns the interval's level and the edge threshold
func refineEdges(buf *audio.Buffer, iv Interval, cfg Config) (Interval, float64, float64) {
	duration := buf.DurationMS()
	iv = iv.Clamp(duration)
	if iv.Empty() {
		return iv, SilenceLevel, SilenceLevel
	}

	level := LevelOf(buf, iv.StartMS, iv.EndMS)
	threshold := level * cfg.EdgeThresholdFactor
	if cfg.WindowMS <= 0 {
		return iv, level, threshold
	}

	// Start: walk forward from the search floor towards the original end
	floor := max(0, iv.StartMS-cfg.SearchWindowMS)
	start := edgeScan{pos: iv.StartMS}
	for w := floor; w < iv.EndMS && start.state == scanning; w += cfg.WindowMS {
		start.observe(silentAt(buf, w, w+cfg.WindowMS, threshold), w, w-cfg.WindowMS)
	}
	newStart := max(start.pos, floor)

	// End: walk backward from the search ceiling towards the new start
	ceiling := min(iv.EndMS+cfg.SearchWindowMS, duration)
	end := edgeScan{pos: iv.EndMS}
	for w := ceiling - cfg.WindowMS; w > newStart && end.state == scanning; w -= cfg.WindowMS {
		end.observe(silentAt(buf, w, w+cfg.WindowMS, threshold), w, w)
	}

	return Interval{StartMS: newStart, EndMS: end.pos}, level, threshold
}
