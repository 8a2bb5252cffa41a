// Package refine corrects coarse voice-activity segments using the energy
// of the underlying audio.
//
// Each segment is processed in two stages:
//
//   - Edge refinement moves the start and end to where the local energy
//     crosses a threshold derived from the segment's own level, recovering
//     quiet onsets and offsets that detectors tend to clip.
//   - Silence splitting divides the refined segment at internal runs of
//     sustained low energy.
//
// Segments are refined independently of one another, so the pipeline
// spreads them across a bounded worker pool and merges the results back in
// input order. Output is identical for any worker count.
package refine

import (
	"context"
	"errors"
	"sync"

	"github.com/linuxmatters/voxtrim/internal/audio"
	"golang.org/x/sync/errgroup"
)

// ErrNoAudio is returned when split mode is requested without a buffer
var ErrNoAudio = errors.New("refine: split mode requires an audio buffer")

// ProgressFunc receives the number of segments completed so far.
// Calls are serialised and done increases monotonically.
type ProgressFunc func(done, total int)

// SegmentTrace records how one input span was transformed
type SegmentTrace struct {
	Index    int      `json:"index"`
	Input    Span     `json:"input"`
	Original Interval `json:"original"` // Input in ms, clamped to the audio
	Refined  Interval `json:"refined"`  // After edge refinement

	Level             float64 `json:"level"`              // dBFS of Original
	EdgeThreshold     float64 `json:"edge_threshold"`     // dBFS
	RefinedLevel      float64 `json:"refined_level"`      // dBFS of Refined
	InternalThreshold float64 `json:"internal_threshold"` // dBFS

	Children []Interval `json:"children"` // Split output, absolute ms; empty when dropped
	Clamped  bool       `json:"clamped"`  // Input extended beyond the audio
}

// Result is the outcome of one pipeline run
type Result struct {
	Spans  []Span         // Final spans in seconds, offsets applied
	Traces []SegmentTrace // Per input span; nil in pass-through mode
	Split  bool           // Whether split mode ran

	// Caller-visible conditions, as indices into Spans or the input.
	// None of these are corrected by the pipeline.
	Dropped     []int // Input spans that produced no output
	Inverted    []int // Final spans with Start > End
	Overlapping []int // Final spans starting before the previous span ends
}

// Counts summarises a Result
type Counts struct {
	Input   int // Spans given to Run
	Output  int // Final spans
	Dropped int // Input spans that produced no output
	Split   int // Input spans divided into more than one output span
}

// Counts returns the span counts of the run
func (r *Result) Counts() Counts {
	c := Counts{Output: len(r.Spans), Dropped: len(r.Dropped)}
	if !r.Split {
		c.Input = len(r.Spans)
		return c
	}
	c.Input = len(r.Traces)
	for _, tr := range r.Traces {
		if len(tr.Children) > 1 {
			c.Split++
		}
	}
	return c
}

// Pipeline runs edge refinement and silence splitting over a list of spans
type Pipeline struct {
	Config   Config
	Progress ProgressFunc
}

// NewPipeline creates a Pipeline with the given configuration
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{Config: cfg}
}

// Run refines spans against buf. In pass-through mode (Config.Enabled is
// false) buf is not read and may be nil; spans are only offset.
//
// The context is checked between segments. The computation itself is
// bounded by the buffer duration and never blocks.
func (p *Pipeline) Run(ctx context.Context, buf *audio.Buffer, spans []Span) (*Result, error) {
	cfg := p.Config
	if !cfg.Enabled {
		res := passThrough(spans, cfg)
		p.report(len(spans), len(spans))
		return res, nil
	}
	if buf == nil {
		return nil, ErrNoAudio
	}

	traces := make([]SegmentTrace, len(spans))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())

	var mu sync.Mutex
	done := 0
	for i, span := range spans {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			traces[i] = traceSegment(buf, i, span, cfg)

			mu.Lock()
			done++
			p.report(done, len(spans))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Traces: traces, Split: true}
	for _, tr := range traces {
		if len(tr.Children) == 0 {
			res.Dropped = append(res.Dropped, tr.Index)
		}
		for _, child := range tr.Children {
			res.Spans = append(res.Spans, Span{
				Start: roundMS(float64(child.StartMS)/1000 + cfg.AdjustStart),
				End:   roundMS(float64(child.EndMS)/1000 + cfg.AdjustEnd),
			})
		}
	}
	res.flagConditions()

	return res, nil
}

func (p *Pipeline) report(done, total int) {
	if p.Progress != nil {
		p.Progress(done, total)
	}
}

// traceSegment refines and splits one span
func traceSegment(buf *audio.Buffer, index int, span Span, cfg Config) SegmentTrace {
	raw := span.ToInterval()
	original := raw.Clamp(buf.DurationMS())

	tr := SegmentTrace{
		Index:    index,
		Input:    span,
		Original: original,
		Clamped:  raw != original,
	}

	tr.Refined, tr.Level, tr.EdgeThreshold = refineEdges(buf, original, cfg)
	tr.Children, tr.RefinedLevel, tr.InternalThreshold = splitOnSilence(buf, tr.Refined, cfg)

	return tr
}

// passThrough applies the global offsets without touching the audio
func passThrough(spans []Span, cfg Config) *Result {
	res := &Result{Spans: make([]Span, len(spans))}
	for i, s := range spans {
		res.Spans[i] = Span{
			Start: roundMS(s.Start + cfg.AdjustStart),
			End:   roundMS(s.End + cfg.AdjustEnd),
		}
	}
	res.flagConditions()
	return res
}

// flagConditions records inverted and overlapping final spans
func (r *Result) flagConditions() {
	for i, s := range r.Spans {
		if s.Inverted() {
			r.Inverted = append(r.Inverted, i)
		}
		if i > 0 && s.Start < r.Spans[i-1].End {
			r.Overlapping = append(r.Overlapping, i)
		}
	}
}
