package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jgoulah/meterplot/internal/render"
	"github.com/jgoulah/meterplot/internal/store"
	"github.com/jgoulah/meterplot/internal/timeseries"
)

// Runner drives the fetch→map→render pipeline over one source. Output files
// are the only state: a partition whose file exists is never fetched again,
// so an interrupted run resumes from the first missing file.
type Runner struct {
	Source   store.Source
	Renderer *render.Renderer
	Loc      *time.Location
	OutDir   string

	// Weekly buckets the range into ISO weeks instead of days.
	Weekly bool

	// ExportCSV additionally writes each partition's table as a CSV file
	// next to the chart.
	ExportCSV bool

	// Progress receives the run log; defaults to stdout.
	Progress io.Writer
}

func (r *Runner) logf(format string, args ...interface{}) {
	w := r.Progress
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// Run discovers the covered time range, partitions it and renders every
// partition whose output file does not exist yet.
func (r *Runner) Run(ctx context.Context) error {
	first, last, ok, err := r.Source.Bounds(ctx)
	if err != nil {
		return fmt.Errorf("discovering time range: %w", err)
	}
	if !ok {
		r.logf("no records found")
		return nil
	}

	r.logf("covering %s -> %s", first.In(r.Loc).Format(time.RFC3339), last.In(r.Loc).Format(time.RFC3339))

	split := timeseries.SplitDaily
	if r.Weekly {
		split = timeseries.SplitWeekly
	}

	rendered, skipped := 0, 0
	for _, part := range split(first, last, r.Loc) {
		name := part.BaseName()
		pngPath := filepath.Join(r.OutDir, name+".png")

		if _, err := os.Stat(pngPath); err == nil {
			r.logf("file %s already exists, pass", pngPath)
			skipped++
			continue
		}

		if err := r.renderPartition(ctx, part, name, pngPath); err != nil {
			return err
		}
		rendered++
	}

	r.logf("✓ rendered %d charts (%d already up to date)", rendered, skipped)
	return nil
}

func (r *Runner) renderPartition(ctx context.Context, part timeseries.Partition, name, pngPath string) error {
	r.logf("%s -> %s", part.Begin.Format(time.RFC3339), part.End.Format(time.RFC3339))

	records, err := r.Source.Query(ctx, part.Begin, part.End)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", name, err)
	}

	mapper := timeseries.NewMapper(r.Loc, r.Source.Fields())
	tbl, err := mapper.Map(records)
	if err != nil {
		return fmt.Errorf("mapping %s: %w", name, err)
	}
	tbl.Sort()

	if tbl.Empty() {
		r.logf("⚠ no samples in %s, skipping", name)
		return nil
	}

	if r.ExportCSV {
		csvPath := filepath.Join(r.OutDir, name+".csv")
		if err := store.WriteTable(csvPath, tbl); err != nil {
			return fmt.Errorf("exporting %s: %w", name, err)
		}
	}

	if err := r.Renderer.Render(&tbl, part, pngPath); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}

	r.logf("✓ wrote %s", pngPath)
	return nil
}
