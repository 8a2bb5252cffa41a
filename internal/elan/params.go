// Package elan implements the ELAN local recognizer protocol: parameters
// arrive on standard input as <param> elements, and progress and the final
// result are reported as PROGRESS: and RESULT: lines on standard output.
package elan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/linuxmatters/voxtrim/internal/config"
)

// ErrMissingParam is returned when a required parameter was not supplied
var ErrMissingParam = errors.New("missing parameter")

// Parameter names, as declared in the recognizer's CMDI descriptor
const (
	ParamSource            = "source"
	ParamInputSegments     = "input_segments"
	ParamOutputSegments    = "output_segments"
	ParamEdgeThreshold     = "edge_threshold"
	ParamInternalThreshold = "internal_threshold"
	ParamAdjustStartMS     = "adjust_start_ms"
	ParamAdjustEndMS       = "adjust_end_ms"
	ParamSilenceDetection  = "do_silence_detection"
)

// silenceEnabled is the value ELAN sends when silence detection is selected
const silenceEnabled = "Enable"

var paramPattern = regexp.MustCompile(`<param name="(.*?)".*?>(.*?)</param>`)

// Params holds raw parameter values keyed by name
type Params map[string]string

// ReadParams collects every <param> element from r, one per line.
// Later values replace earlier ones with the same name.
func ReadParams(r io.Reader) (Params, error) {
	params := Params{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if m := paramPattern.FindStringSubmatch(scanner.Text()); m != nil {
			params[m[1]] = strings.TrimSpace(m[2])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}
	return params, nil
}

// Request is a validated recognizer invocation
type Request struct {
	Source         string // Audio file
	InputSegments  string // Tier XML with the segments to refine
	OutputSegments string // Tier XML to write
	Split          bool

	EdgeThreshold     float64 // percent
	InternalThreshold float64 // percent
	AdjustStartMS     float64
	AdjustEndMS       float64
}

// NewRequest validates params. Offsets default to zero; thresholds are
// required only when silence detection is enabled.
func NewRequest(params Params) (*Request, error) {
	req := &Request{
		Source:         params[ParamSource],
		InputSegments:  params[ParamInputSegments],
		OutputSegments: params[ParamOutputSegments],
		Split:          params[ParamSilenceDetection] == silenceEnabled,
	}

	for _, name := range []string{ParamSource, ParamInputSegments, ParamOutputSegments} {
		if params[name] == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingParam, name)
		}
	}

	var err error
	if req.AdjustStartMS, err = params.float(ParamAdjustStartMS, false); err != nil {
		return nil, err
	}
	if req.AdjustEndMS, err = params.float(ParamAdjustEndMS, false); err != nil {
		return nil, err
	}
	if req.EdgeThreshold, err = params.float(ParamEdgeThreshold, req.Split); err != nil {
		return nil, err
	}
	if req.InternalThreshold, err = params.float(ParamInternalThreshold, req.Split); err != nil {
		return nil, err
	}

	return req, nil
}

func (p Params) float(name string, required bool) (float64, error) {
	v, ok := p[name]
	if !ok || v == "" {
		if required {
			return 0, fmt.Errorf("%w: %s", ErrMissingParam, name)
		}
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", name, err)
	}
	return f, nil
}

// Apply copies the request's settings over cfg
func (r *Request) Apply(cfg *config.Config) {
	cfg.Refine.Split = r.Split
	cfg.Refine.AdjustStartMS = r.AdjustStartMS
	cfg.Refine.AdjustEndMS = r.AdjustEndMS
	if r.Split {
		cfg.Refine.SetThresholds(r.EdgeThreshold, r.InternalThreshold)
	}
}
