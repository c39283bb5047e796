package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jgoulah/meterplot/internal/store"
	"github.com/jgoulah/meterplot/internal/timeseries"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write per-day CSV files from the archive",
	Long: `Writes one CSV file per archived day, named like the chart files. Days
whose CSV already exists are skipped.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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

	arch, err := openArchive(cfg)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer arch.Close()

	ctx := context.Background()
	first, last, ok, err := arch.Bounds(ctx)
	if err != nil {
		return fmt.Errorf("discovering time range: %w", err)
	}
	if !ok {
		fmt.Println("No data found")
		return nil
	}

	mapper := timeseries.NewMapper(loc, arch.Fields())
	written := 0
	for _, part := range timeseries.SplitDaily(first, last, loc) {
		path := filepath.Join(dir, part.BaseName()+".csv")
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("file %s already exists, pass\n", path)
			continue
		}

		records, err := arch.Query(ctx, part.Begin, part.End)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", part.BaseName(), err)
		}

		tbl, err := mapper.Map(records)
		if err != nil {
			return fmt.Errorf("mapping %s: %w", part.BaseName(), err)
		}
		tbl.Sort()

		if tbl.Empty() {
			continue
		}

		if err := store.WriteTable(path, tbl); err != nil {
			return err
		}
		fmt.Printf("✓ wrote %s (%d rows)\n", path, len(tbl.Rows))
		written++
	}

	fmt.Printf("✓ Exported %d files\n", written)
	return nil
}
