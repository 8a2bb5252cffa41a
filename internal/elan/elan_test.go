package elan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/linuxmatters/voxtrim/internal/config"
	"github.com/linuxmatters/voxtrim/internal/refine"
	"github.com/linuxmatters/voxtrim/internal/segments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paramLines(params map[string]string) string {
	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<PARAM>\n")
	for name, value := range params {
		fmt.Fprintf(&sb, "<param name=\"%s\" type=\"string\">%s</param>\n", name, value)
	}
	sb.WriteString("</PARAM>\n")
	return sb.String()
}

// writeSpeechWAV writes 3 s of 16 kHz audio: silence, 1 s of 1 kHz tone, silence
func writeSpeechWAV(t *testing.T, path string) {
	t.Helper()
	const rate = 16000
	data := make([]int, 3*rate)
	for i := rate; i < 2*rate; i++ {
		data[i] = int(0.5 * 32767 * math.Sin(2*math.Pi*1000*float64(i)/rate))
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func TestReadParams(t *testing.T) {
	input := `<?xml version="1.0" encoding="UTF-8"?>
<PARAM>
<param name="source" type="string">/tmp/take1.wav</param>
<param name="edge_threshold" type="float"> 10 </param>
<param name="do_silence_detection">Enable</param>
not a param line
<param name="source" type="string">/tmp/take2.wav</param>
</PARAM>
`
	params, err := ReadParams(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, Params{
		"source":               "/tmp/take2.wav",
		"edge_threshold":       "10",
		"do_silence_detection": "Enable",
	}, params)
}

func TestNewRequest(t *testing.T) {
	base := Params{
		ParamSource:         "take1.wav",
		ParamInputSegments:  "in.xml",
		ParamOutputSegments: "out.xml",
	}
	with := func(extra Params) Params {
		p := Params{}
		for k, v := range base {
			p[k] = v
		}
		for k, v := range extra {
			p[k] = v
		}
		return p
	}

	t.Run("pass-through defaults", func(t *testing.T) {
		req, err := NewRequest(base)
		require.NoError(t, err)
		assert.False(t, req.Split)
		assert.Zero(t, req.AdjustStartMS)
		assert.Zero(t, req.AdjustEndMS)
	})

	t.Run("split with thresholds", func(t *testing.T) {
		req, err := NewRequest(with(Params{
			ParamSilenceDetection:  "Enable",
			ParamEdgeThreshold:     "10",
			ParamInternalThreshold: "-5.5",
			ParamAdjustStartMS:     "-100",
			ParamAdjustEndMS:       "150",
		}))
		require.NoError(t, err)
		assert.True(t, req.Split)
		assert.Equal(t, 10.0, req.EdgeThreshold)
		assert.Equal(t, -5.5, req.InternalThreshold)
		assert.Equal(t, -100.0, req.AdjustStartMS)
		assert.Equal(t, 150.0, req.AdjustEndMS)
	})

	t.Run("disabled ignores thresholds", func(t *testing.T) {
		req, err := NewRequest(with(Params{ParamSilenceDetection: "Disable"}))
		require.NoError(t, err)
		assert.False(t, req.Split)
	})

	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{"missing source", Params{ParamInputSegments: "in.xml", ParamOutputSegments: "out.xml"}, ParamSource},
		{"missing output", Params{ParamSource: "a.wav", ParamInputSegments: "in.xml"}, ParamOutputSegments},
		{"split without edge threshold", with(Params{ParamSilenceDetection: "Enable", ParamInternalThreshold: "1"}), ParamEdgeThreshold},
		{"split without internal threshold", with(Params{ParamSilenceDetection: "Enable", ParamEdgeThreshold: "1"}), ParamInternalThreshold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRequest(tt.params)
			require.ErrorIs(t, err, ErrMissingParam)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := NewRequest(with(Params{ParamAdjustStartMS: "soon"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ParamAdjustStartMS)
}

func TestRequestApply(t *testing.T) {
	cfg := config.Default()
	req := &Request{Split: true, EdgeThreshold: 10, InternalThreshold: 20, AdjustStartMS: -100, AdjustEndMS: 100}
	req.Apply(cfg)

	require.NoError(t, cfg.Validate())
	p := cfg.Pipeline()
	assert.True(t, p.Enabled)
	assert.InDelta(t, 1.1, p.EdgeThresholdFactor, 1e-9)
	assert.InDelta(t, 1.2, p.InternalThresholdFactor, 1e-9)
	assert.InDelta(t, -0.1, p.AdjustStart, 1e-9)
	assert.InDelta(t, 0.1, p.AdjustEnd, 1e-9)
}

func TestReporter(t *testing.T) {
	var buf bytes.Buffer
	rep := NewReporter(&buf)

	rep.Progress(0.5, "Refining")
	rep.Progress(1.7, "Writing\nsegments")
	rep.Failed(errors.New("no\nsuch file"))
	rep.Done()

	assert.Equal(t, "PROGRESS: 0.50 Refining\n"+
		"PROGRESS: 1.00 Writing segments\n"+
		"RESULT: FAILED. no such file\n"+
		"RESULT: DONE.\n", buf.String())
	assert.NoError(t, rep.Err())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestReporterKeepsFirstError(t *testing.T) {
	rep := NewReporter(failingWriter{})
	rep.Progress(0, "start")
	rep.Done()
	assert.EqualError(t, rep.Err(), "closed pipe")
}

func TestRunSplit(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "take1.wav")
	inPath := filepath.Join(dir, "in.xml")
	outPath := filepath.Join(dir, "out.xml")
	writeSpeechWAV(t, audioPath)
	require.NoError(t, segments.WriteFile(inPath, segments.ELAN, []refine.Span{{Start: 1, End: 2}}, segments.ColumnPassThrough))

	stdin := paramLines(map[string]string{
		ParamSource:            audioPath,
		ParamInputSegments:     inPath,
		ParamOutputSegments:    outPath,
		ParamSilenceDetection:  "Enable",
		ParamEdgeThreshold:     "10",
		ParamInternalThreshold: "10",
		ParamAdjustStartMS:     "-100",
		ParamAdjustEndMS:       "100",
	})

	base := config.Default()
	var stdout bytes.Buffer
	require.NoError(t, Run(context.Background(), strings.NewReader(stdin), &stdout, base))

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "PROGRESS: 0.00 Reading segments", lines[0])
	assert.Equal(t, "PROGRESS: 1.00 Wrote 1 segments", lines[len(lines)-2])
	assert.Equal(t, "RESULT: DONE.", lines[len(lines)-1])

	spans, err := segments.Read(outPath)
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.InDelta(t, 0.89, spans[0].Start, 1e-9)
	assert.InDelta(t, 2.09, spans[0].End, 1e-9)

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), segments.ColumnAdjusted)

	assert.Nil(t, base.Refine.EdgeThreshold, "base config must not be modified")
}

func TestRunPassThroughWithoutAudio(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.xml")
	outPath := filepath.Join(dir, "out.xml")
	require.NoError(t, segments.WriteFile(inPath, segments.ELAN, []refine.Span{{Start: 1, End: 2}}, segments.ColumnPassThrough))

	stdin := paramLines(map[string]string{
		ParamSource:         filepath.Join(dir, "missing.wav"),
		ParamInputSegments:  inPath,
		ParamOutputSegments: outPath,
		ParamAdjustStartMS:  "-100",
		ParamAdjustEndMS:    "100",
	})

	base := config.Default()
	var stdout bytes.Buffer
	require.NoError(t, Run(context.Background(), strings.NewReader(stdin), &stdout, base))
	assert.True(t, strings.HasSuffix(stdout.String(), "RESULT: DONE.\n"))

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `columns="VoxsegOutput"`)
	assert.Contains(t, string(raw), `<span start="0.900" end="2.100">`)
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()
	base := config.Default()

	t.Run("missing parameter", func(t *testing.T) {
		var stdout bytes.Buffer
		err := Run(context.Background(), strings.NewReader(paramLines(map[string]string{ParamSource: "a.wav"})), &stdout, base)
		require.ErrorIs(t, err, ErrMissingParam)
		assert.Contains(t, stdout.String(), "RESULT: FAILED. missing parameter: input_segments")
	})

	t.Run("missing input tier", func(t *testing.T) {
		var stdout bytes.Buffer
		stdin := paramLines(map[string]string{
			ParamSource:         filepath.Join(dir, "a.wav"),
			ParamInputSegments:  filepath.Join(dir, "missing.xml"),
			ParamOutputSegments: filepath.Join(dir, "out.xml"),
		})
		err := Run(context.Background(), strings.NewReader(stdin), &stdout, base)
		require.ErrorIs(t, err, os.ErrNotExist)
		assert.Contains(t, stdout.String(), "RESULT: FAILED.")
		assert.NotContains(t, stdout.String(), "RESULT: DONE.")
	})
}

func TestProgressTracker(t *testing.T) {
	var buf bytes.Buffer
	tr := &progressTracker{rep: NewReporter(&buf), last: -1}

	tr.callback(1, "Analyzing", 0, 0, nil)
	tr.callback(1, "Analyzing", 0.1, 0, nil) // 0.03: below the step
	tr.callback(1, "Analyzing", 1, 0, nil)
	tr.callback(2, "Refining", 0.5, 0, nil)
	tr.callback(3, "Writing", 1, 0, nil)
	tr.callback(9, "Unknown", 1, 0, nil)

	assert.Equal(t, "PROGRESS: 0.00 Analyzing\n"+
		"PROGRESS: 0.30 Analyzing\n"+
		"PROGRESS: 0.60 Refining\n"+
		"PROGRESS: 1.00 Writing\n", buf.String())
}
