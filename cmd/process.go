package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mangasplit/internal/archive"
	"mangasplit/internal/config"
	"mangasplit/internal/events"
	"mangasplit/internal/logger"
	"mangasplit/internal/metrics"
	"mangasplit/internal/packaging"
	"mangasplit/internal/pipeline"
	"mangasplit/internal/tools"
	"mangasplit/internal/tui"
	"mangasplit/pkg/imgutil"
)

var (
	formatFlag      string
	rotateWide      bool
	deleteOriginals bool
	workers         int
	toolTimeout     time.Duration
	jpegQuality     int
	metricsFile     string
	noTUI           bool
)

var processCmd = &cobra.Command{
	Use:   "process [flags] <root>",
	Short: "Extract, split and repackage every comic under root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]
		cfg, err := processingConfig(formatFlag, rotateWide, deleteOriginals)
		if err != nil {
			return err
		}

		interactive := !noTUI && term.IsTerminal(int(os.Stdout.Fd()))
		if err := initLogging(!interactive); err != nil {
			return err
		}
		metrics.Init()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		printConfig(cmd.OutOrStdout(), root, cfg)
		log.Info().
			Str("root", root).
			Str("mode", cfg.SplitMode.String()).
			Str("direction", cfg.Direction.String()).
			Str("format", cfg.Format.String()).
			Int("workers", workers).
			Msg("starting run")

		chain := tools.Chain{Timeout: toolTimeout}
		deps := pipeline.Deps{
			Encode:    imgutil.EncodeOptions{JPEGQuality: jpegQuality},
			HonorEXIF: honorEXIF,
			Workers:   workers,
		}

		var summary pipeline.Summary
		if interactive {
			summary, err = runWithTUI(ctx, stop, root, cfg, deps, chain)
		} else {
			summary, err = runWithBar(ctx, root, cfg, deps, chain)
		}
		if err != nil {
			return err
		}

		if metricsFile != "" {
			if err := metrics.WriteFile(metricsFile); err != nil {
				log.Warn().Err(err).Str("path", metricsFile).Msg("could not write metrics")
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, tui.RenderSummary(tui.SummaryRows(summary)))
		if failures := tui.RenderFailures(summary.Failures); failures != "" {
			fmt.Fprintln(out, failures)
		}
		for _, a := range summary.Artifacts {
			note := ""
			if a.FellBack() {
				note = fmt.Sprintf(" (written as %s)", a.Container)
			}
			fmt.Fprintf(out, "%s%s\n", a.Path, note)
		}
		if summary.Cancelled {
			fmt.Fprintln(out, "Run cancelled; remaining folders were left untouched.")
		}
		log.Info().Int("artifacts", summary.Packaged).Int("failures", len(summary.Failures)).Bool("cancelled", summary.Cancelled).Msg("run finished")
		return nil
	},
}

func withCollaborators(deps pipeline.Deps, sink events.Sink, chain tools.Chain) pipeline.Deps {
	deps.Sink = sink
	deps.Extractor = archive.NewExtractor(sink, chain)
	deps.Packager = packaging.NewPackager(sink, chain)
	return deps
}

func runWithTUI(ctx context.Context, cancel func(), root string, cfg config.Processing, deps pipeline.Deps, chain tools.Chain) (pipeline.Summary, error) {
	updates := make(chan events.Event, 64)
	program := tea.NewProgram(tui.NewModel(updates, cancel))

	uiDone := make(chan struct{})
	go func() {
		if _, err := program.Run(); err != nil {
			log.Warn().Err(err).Msg("progress view stopped")
		}
		close(uiDone)
		// The run may still be emitting; never let it block on a dead view.
		for range updates {
		}
	}()

	sink := events.Multi(events.Chan(updates), logger.Sink(*logger.Get()))
	summary, err := pipeline.Run(ctx, root, cfg, withCollaborators(deps, sink, chain))
	close(updates)
	<-uiDone
	return summary, err
}

func runWithBar(ctx context.Context, root string, cfg config.Processing, deps pipeline.Deps, chain tools.Chain) (pipeline.Summary, error) {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("mangasplit"),
		progressbar.OptionClearOnFinish(),
	)
	barSink := events.SinkFunc(func(e events.Event) {
		if !e.Progress {
			return
		}
		bar.Describe(e.Status)
		_ = bar.Set(e.Percent)
	})

	sink := events.Multi(barSink, logger.Sink(*logger.Get()))
	summary, err := pipeline.Run(ctx, root, cfg, withCollaborators(deps, sink, chain))
	_ = bar.Finish()
	return summary, err
}

func printConfig(w io.Writer, root string, cfg config.Processing) {
	fmt.Fprintf(w, "Root: %s\n", root)
	fmt.Fprintf(w, "Split mode: %s, direction: %s, skip %d/%d, rotate wide: %v\n",
		cfg.SplitMode, cfg.Direction, cfg.SkipStart, cfg.SkipEnd, cfg.RotateWide)
	fmt.Fprintf(w, "Output: %s, delete originals: %v\n", cfg.Format, cfg.DeleteOriginals)
}

func init() {
	flags := processCmd.Flags()
	flags.StringVarP(&formatFlag, "format", "f", env.Format, "output format: cbz, cbr, zip, rar, folder or pdf")
	flags.BoolVar(&rotateWide, "rotate-wide", false, "rotate wide pages that are not split by 90 degrees")
	flags.BoolVar(&deleteOriginals, "delete-originals", false, "delete source images, folders and archives after packaging")
	flags.IntVarP(&workers, "workers", "w", env.Workers, "folders processed concurrently")
	flags.DurationVar(&toolTimeout, "tool-timeout", env.ToolTimeout, "timeout for each external archive tool invocation")
	flags.IntVar(&jpegQuality, "jpeg-quality", env.JPEGQuality, "JPEG quality for split and rotated pages")
	flags.StringVar(&metricsFile, "metrics-file", env.MetricsFile, "write Prometheus metrics to this file after the run")
	flags.BoolVar(&noTUI, "no-tui", false, "plain progress bar even on a terminal")

	rootCmd.AddCommand(processCmd)
}
