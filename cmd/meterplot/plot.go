package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/meterplot/internal/pipeline"
	"github.com/jgoulah/meterplot/internal/render"
)

var (
	plotWeekly      bool
	plotSplitPhases bool
	plotExportCSV   bool
)

var plotCmd = &cobra.Command{
	Use:   "plot [source] [credentials...]",
	Short: "Render per-day meter charts from a source",
	Long: `Discovers the stored time range, splits it into local-midnight days and
renders one multi-panel chart per day. Days whose output file already exists
are skipped, so an interrupted run resumes where it stopped.

` + sourceUsage,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlot,
}

func init() {
	plotCmd.Flags().BoolVar(&plotWeekly, "weekly", false, "Bucket by ISO week instead of by day")
	plotCmd.Flags().BoolVar(&plotSplitPhases, "split-phases", false, "Render R and T currents on separate panels")
	plotCmd.Flags().BoolVar(&plotExportCSV, "export-csv", false, "Also write each bucket's table as CSV")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Plot started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	dir, err := getOutputDir(cfg)
	if err != nil {
		return err
	}

	source, closeSource, err := newSource(cfg, args[0], args[1:])
	if err != nil {
		return err
	}
	defer closeSource()

	runner := &pipeline.Runner{
		Source:    source,
		Renderer:  render.New(loc, render.Options{SplitPhases: plotSplitPhases}),
		Loc:       loc,
		OutDir:    dir,
		Weekly:    plotWeekly,
		ExportCSV: plotExportCSV,
	}

	return runner.Run(context.Background())
}
