package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/linuxmatters/voxtrim/internal/processor"
)

func TestModelFileLifecycle(t *testing.T) {
	m := NewModel([]string{"a.wav", "b.wav"})

	updated, _ := m.Update(FileStartMsg{FileIndex: 0, FileName: "a.wav"})
	m = updated.(Model)
	if m.Files[0].Status != StatusAnalyzing {
		t.Fatalf("status after start = %v, want StatusAnalyzing", m.Files[0].Status)
	}

	steps := []struct {
		pass int
		want FileStatus
	}{
		{processor.PassAnalyze, StatusAnalyzing},
		{processor.PassRefine, StatusRefining},
		{processor.PassWrite, StatusWriting},
	}
	for _, s := range steps {
		updated, _ = m.Update(ProgressMsg{Pass: s.pass, PassName: "x", Progress: 0.5, Level: -20})
		m = updated.(Model)
		if m.Files[0].Status != s.want {
			t.Errorf("pass %d status = %v, want %v", s.pass, m.Files[0].Status, s.want)
		}
	}
	if m.Files[0].PeakLevel != -20 {
		t.Errorf("PeakLevel = %.1f, want -20", m.Files[0].PeakLevel)
	}

	updated, _ = m.Update(FileCompleteMsg{FileIndex: 0, InputSegments: 3, OutputSegments: 4, Dropped: 1, OutputPath: "a-refined.xml"})
	m = updated.(Model)
	if m.Files[0].Status != StatusComplete || m.CompletedFiles != 1 {
		t.Errorf("after complete: status %v, completed %d", m.Files[0].Status, m.CompletedFiles)
	}
	if m.Files[0].OutputPath != "a-refined.xml" {
		t.Errorf("OutputPath = %q", m.Files[0].OutputPath)
	}

	updated, _ = m.Update(FileStartMsg{FileIndex: 1, FileName: "b.wav"})
	m = updated.(Model)
	updated, _ = m.Update(FileCompleteMsg{FileIndex: 1, Error: errors.New("no segment list found")})
	m = updated.(Model)
	if m.Files[1].Status != StatusError || m.FailedFiles != 1 {
		t.Errorf("after failure: status %v, failed %d", m.Files[1].Status, m.FailedFiles)
	}

	updated, _ = m.Update(AllCompleteMsg{})
	m = updated.(Model)
	m.Width = 80
	view := m.View()
	for _, want := range []string{"a-refined.xml", "3 in → 4 out", "1 dropped", "1 of 2 file(s) refined, 1 failed", "no segment list found"} {
		if !strings.Contains(view, want) {
			t.Errorf("completion view missing %q:\n%s", want, view)
		}
	}
}

func TestSegmentSummary(t *testing.T) {
	tests := []struct {
		file FileProgress
		want string
	}{
		{FileProgress{InputSegments: 2, OutputSegments: 2}, "Segments: 2 in → 2 out"},
		{FileProgress{InputSegments: 2, OutputSegments: 1, Dropped: 1}, "Segments: 2 in → 1 out | 1 dropped"},
		{FileProgress{InputSegments: 2, OutputSegments: 3, Flagged: 2}, "Segments: 2 in → 3 out | 2 flagged"},
	}
	for _, tt := range tests {
		if got := segmentSummary(tt.file); got != tt.want {
			t.Errorf("segmentSummary() = %q, want %q", got, tt.want)
		}
	}
}

func TestInspectModel(t *testing.T) {
	m := NewInspectModel()

	updated, _ := m.Update(InspectStartMsg{FilePath: "/tmp/take1.wav"})
	m = updated.(InspectModel)
	if m.FileName != "take1.wav" {
		t.Errorf("FileName = %q, want take1.wav", m.FileName)
	}

	updated, _ = m.Update(ProgressMsg{Pass: processor.PassRefine, PassName: "Refining", Progress: 0.25})
	m = updated.(InspectModel)
	if m.PassName != "Refining" || m.Progress != 0.25 {
		t.Errorf("progress not applied: %q %.2f", m.PassName, m.Progress)
	}

	result := &processor.ProcessingResult{}
	updated, cmd := m.Update(InspectCompleteMsg{Result: result})
	m = updated.(InspectModel)
	if !m.Done || m.Result != result {
		t.Error("complete message should store the result and finish")
	}
	if cmd == nil {
		t.Error("complete message should quit the program")
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{5, "00:05"},
		{125, "02:05"},
		{3725, "01:02:05"},
	}
	for _, tt := range tests {
		if got := formatElapsed(secondsDuration(tt.secs)); got != tt.want {
			t.Errorf("formatElapsed(%ds) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func secondsDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}
