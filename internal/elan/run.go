package elan

import (
	"context"
	"fmt"
	"io"

	"github.com/linuxmatters/voxtrim/internal/config"
	"github.com/linuxmatters/voxtrim/internal/processor"
	"github.com/linuxmatters/voxtrim/internal/segments"
	"github.com/sirupsen/logrus"
)

// Share of overall progress given to each processing pass
var passSpans = map[int][2]float64{
	processor.PassAnalyze: {0.0, 0.3},
	processor.PassRefine:  {0.3, 0.9},
	processor.PassWrite:   {0.9, 1.0},
}

// minProgressStep suppresses PROGRESS lines closer together than this
const minProgressStep = 0.05

// Run executes one recognizer invocation: it reads parameters from stdin,
// refines the input tier against the source audio and writes the output
// tier, reporting progress and the result on stdout. base supplies
// everything the parameters do not; it is not modified.
//
// The returned error is also reported as RESULT: FAILED.
func Run(ctx context.Context, stdin io.Reader, stdout io.Writer, base *config.Config) error {
	rep := NewReporter(stdout)

	err := run(ctx, stdin, rep, base)
	if err != nil {
		logrus.WithError(err).Error("recognizer failed")
		rep.Failed(err)
		return err
	}
	rep.Done()
	return rep.Err()
}

func run(ctx context.Context, stdin io.Reader, rep *Reporter, base *config.Config) error {
	params, err := ReadParams(stdin)
	if err != nil {
		return err
	}
	req, err := NewRequest(params)
	if err != nil {
		return err
	}

	cfg := *base
	req.Apply(&cfg)
	cfg.Output.Format = string(segments.ELAN)

	logrus.WithFields(logrus.Fields{
		"source": req.Source,
		"input":  req.InputSegments,
		"output": req.OutputSegments,
		"split":  req.Split,
	}).Info("recognizer request")

	rep.Progress(0, "Reading segments")
	tracker := &progressTracker{rep: rep, last: -1}

	job := processor.Job{
		AudioPath:    req.Source,
		SegmentsPath: req.InputSegments,
		OutputPath:   req.OutputSegments,
	}
	result, err := processor.ProcessFile(ctx, job, &cfg, tracker.callback)
	if err != nil {
		return err
	}

	rep.Progress(1, fmt.Sprintf("Wrote %d segments", len(result.Refinement.Spans)))
	return nil
}

// progressTracker maps per-pass progress onto a single 0..1 scale
type progressTracker struct {
	rep  *Reporter
	pass int
	last float64
}

func (t *progressTracker) callback(pass int, passName string, progress, _ float64, _ *processor.AudioMeasurements) {
	span, ok := passSpans[pass]
	if !ok {
		return
	}
	overall := span[0] + (span[1]-span[0])*max(0, min(1, progress))

	if pass == t.pass && overall-t.last < minProgressStep && progress < 1 {
		return
	}
	t.pass = pass
	t.last = overall
	t.rep.Progress(overall, passName)
}
