package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/voxtrim/internal/cli"
	"github.com/linuxmatters/voxtrim/internal/config"
	"github.com/linuxmatters/voxtrim/internal/elan"
	"github.com/linuxmatters/voxtrim/internal/logging"
	"github.com/linuxmatters/voxtrim/internal/processor"
	"github.com/linuxmatters/voxtrim/internal/ui"
	"github.com/sirupsen/logrus"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version bool   `short:"v" help:"Show version information"`
	Config  string `short:"c" type:"path" help:"Path to YAML config file (optional)"`

	Refine  RefineCmd  `cmd:"" default:"withargs" help:"Refine segment boundaries for audio files"`
	Inspect InspectCmd `cmd:"" help:"Show what refinement would do, without writing anything"`
	Elan    ElanCmd    `cmd:"" help:"Run as an ELAN local recognizer (parameters on stdin)"`
}

// RefineFlags override the refine, audio and output sections of the config
type RefineFlags struct {
	Segments          string   `short:"s" type:"path" help:"Segment list to refine (default: sidecar next to the audio)"`
	EdgeThreshold     *float64 `short:"e" help:"Edge threshold as a percentage of each segment's level"`
	InternalThreshold *float64 `short:"i" help:"Internal silence threshold as a percentage of each segment's level"`
	AdjustStartMS     *float64 `name:"adjust-start-ms" help:"Offset added to every segment start, in ms"`
	AdjustEndMS       *float64 `name:"adjust-end-ms" help:"Offset added to every segment end, in ms"`
	NoSplit           bool     `help:"Only apply the offsets; skip refinement and splitting"`
	Hum               string   `help:"Mains hum notch: off, auto, 50 or 60"`
	Workers           *int     `short:"w" help:"Segments refined in parallel (0 uses every CPU)"`
}

// RefineCmd processes a batch of audio files with a progress display
type RefineCmd struct {
	RefineFlags

	Format string   `short:"f" help:"Output format: elan, json or kaldi"`
	Logs   bool     `help:"Save a detailed refinement report next to each output"`
	Files  []string `arg:"" name:"files" help:"Audio files to process" type:"existingfile" optional:""`
}

// InspectCmd prints per-segment diagnostics for one file
type InspectCmd struct {
	RefineFlags

	File string `arg:"" name:"file" help:"Audio file to inspect" type:"existingfile"`
}

// ElanCmd speaks the ELAN local recognizer protocol on stdin/stdout
type ElanCmd struct{}

var setupDebugLog = logging.SetupDebugLog

// runWithDebugLog runs fn with the debug log open. A failure to close the
// log is joined to fn's error.
func runWithDebugLog(cfg *config.Config, fn func() error) error {
	closeLog, err := setupDebugLog(cfg.Logging.DebugFile, cfg.Logging.Level)
	if err != nil {
		return err
	}
	logrus.WithField("version", version).Debug("voxtrim starting")

	err = fn()
	if cerr := closeLog(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("closing debug log: %w", cerr))
	}
	return err
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("voxtrim"),
		kong.Description("Speech segment boundary refinement"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	cfg, err := config.Load(cliArgs.Config)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	err = runWithDebugLog(cfg, func() error { return ctx.Run(cfg) })
	if err != nil {
		if errors.Is(err, errNoInput) {
			cli.PrintError("No input files specified")
			ctx.PrintUsage(false)
			os.Exit(1)
		}
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

var errNoInput = errors.New("no input files specified")

// apply copies every flag that was given over cfg
func (f *RefineFlags) apply(cfg *config.Config) {
	if f.EdgeThreshold != nil {
		cfg.Refine.EdgeThreshold = f.EdgeThreshold
	}
	if f.InternalThreshold != nil {
		cfg.Refine.InternalThreshold = f.InternalThreshold
	}
	if f.AdjustStartMS != nil {
		cfg.Refine.AdjustStartMS = *f.AdjustStartMS
	}
	if f.AdjustEndMS != nil {
		cfg.Refine.AdjustEndMS = *f.AdjustEndMS
	}
	if f.NoSplit {
		cfg.Refine.Split = false
	}
	if f.Hum != "" {
		cfg.Audio.Hum = f.Hum
	}
	if f.Workers != nil {
		cfg.Refine.Workers = *f.Workers
	}
}

// Run refines every file in turn behind the Bubbletea progress display
func (c *RefineCmd) Run(cfg *config.Config) error {
	if len(c.Files) == 0 {
		return errNoInput
	}
	if c.Segments != "" && len(c.Files) > 1 {
		return fmt.Errorf("--segments applies to a single audio file, got %d", len(c.Files))
	}

	c.apply(cfg)
	if c.Format != "" {
		cfg.Output.Format = c.Format
	}
	if c.Logs {
		cfg.Logging.Reports = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Create the Bubbletea UI model
	model := ui.NewModel(c.Files)

	// Start the TUI
	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start processing in background
	go processFiles(ctx, p, c.Files, c.Segments, cfg)

	final, err := p.Run()
	cancel()
	if err != nil {
		return fmt.Errorf("UI error: %w", err)
	}

	m, ok := final.(ui.Model)
	if !ok {
		return nil
	}
	if m.Done {
		fmt.Print(m.View())
	}
	if m.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", m.FailedFiles, m.TotalFiles)
	}
	return nil
}

// processFiles refines each file and reports to the UI
func processFiles(ctx context.Context, p *tea.Program, files []string, segmentsPath string, cfg *config.Config) {
	log := logrus.WithField("component", "main")

	for i, inputPath := range files {
		if ctx.Err() != nil {
			log.Debug("cancelled, stopping")
			return
		}
		fileStartTime := time.Now()

		// Signal file start
		log.Debugf("sending FileStartMsg for file %d: %s", i, inputPath)
		p.Send(ui.FileStartMsg{
			FileIndex: i,
			FileName:  inputPath,
		})

		ph := &progressHandler{p: p}

		job := processor.Job{AudioPath: inputPath, SegmentsPath: segmentsPath}
		result, err := processor.ProcessFile(ctx, job, cfg, ph.callback)
		if err != nil {
			log.WithError(err).WithField("file", inputPath).Error("ProcessFile failed")
			p.Send(ui.FileCompleteMsg{
				FileIndex: i,
				Error:     err,
			})
			continue
		}

		advisories := logging.GenerateAdvisories(result)

		// Generate report if requested
		if cfg.Logging.Reports {
			reportData := logging.ReportData{
				StartTime: fileStartTime,
				EndTime:   time.Now(),
				Result:    result,
			}
			if path, err := logging.GenerateReport(reportData); err != nil {
				log.WithError(err).Warn("failed to generate report")
			} else {
				log.WithField("report", path).Debug("wrote report")
			}
		}

		counts := result.Refinement.Counts()
		msg := ui.FileCompleteMsg{
			FileIndex:      i,
			InputSegments:  counts.Input,
			OutputSegments: counts.Output,
			Dropped:        counts.Dropped,
			Flagged:        len(result.Refinement.Inverted) + len(result.Refinement.Overlapping),
			Advisories:     len(advisories),
			OutputPath:     result.OutputPath,
		}
		if result.Measurements != nil {
			msg.NoiseFloor = result.Measurements.NoiseFloor
		}

		// Signal file complete with actual data
		log.Debugf("sending FileCompleteMsg for file %d", i)
		p.Send(msg)
	}

	// Signal all complete
	p.Send(ui.AllCompleteMsg{})
}

// progressHandler forwards processor progress to the UI
type progressHandler struct {
	p *tea.Program
}

func (ph *progressHandler) callback(pass int, passName string, progress float64, level float64, measurements *processor.AudioMeasurements) {
	ph.p.Send(ui.ProgressMsg{
		Pass:         pass,
		PassName:     passName,
		Progress:     progress,
		Level:        level,
		Measurements: measurements,
	})
}

// Run refines one file without writing and prints the diagnostics
func (c *InspectCmd) Run(cfg *config.Config) error {
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	p := tea.NewProgram(ui.NewInspectModel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		p.Send(ui.InspectStartMsg{FilePath: c.File})
		ph := &progressHandler{p: p}
		result, err := processor.Inspect(ctx, processor.Job{AudioPath: c.File, SegmentsPath: c.Segments}, cfg, ph.callback)
		p.Send(ui.InspectCompleteMsg{Result: result, Error: err})
	}()

	final, err := p.Run()
	cancel()
	if err != nil {
		return fmt.Errorf("UI error: %w", err)
	}

	m, ok := final.(ui.InspectModel)
	switch {
	case !ok || !m.Done:
		return errors.New("inspection interrupted")
	case m.Error != nil:
		return m.Error
	}

	logging.DisplayInspection(os.Stdout, m.Result)
	return nil
}

// Run handles one recognizer invocation. ELAN sends an interrupt to
// cancel, which stops refinement between segments.
func (c *ElanCmd) Run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return elan.Run(ctx, os.Stdin, os.Stdout, cfg)
}
