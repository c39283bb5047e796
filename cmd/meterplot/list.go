package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List daily consumption from the archive",
	Long:  `Displays per-day energy consumption and power peaks from the local archive database.`,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	arch, err := openArchive(cfg)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer arch.Close()

	days, err := arch.DailyConsumption(context.Background(), loc)
	if err != nil {
		return fmt.Errorf("listing daily consumption: %w", err)
	}

	if len(days) == 0 {
		fmt.Printf("No data found for %s\n", cfg.GetSensorID())
		return nil
	}

	fmt.Printf("\n%s Daily Usage:\n", cfg.GetSensorID())
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("%-12s  %10s  %10s  %-8s  %7s\n", "Date", "kWh", "Peak W", "At", "Samples")
	fmt.Println("------------------------------------------------------------")

	var total float64
	for _, day := range days {
		peak, at := "-", "-"
		if day.PeakWatt != nil {
			peak = fmt.Sprintf("%.0f", *day.PeakWatt)
			at = day.PeakAt.Format("15:04")
		}
		fmt.Printf("%-12s  %10.2f  %10s  %-8s  %7d\n",
			day.Date.Format("2006-01-02"), day.ConsumedKWh, peak, at, day.Samples)
		total += day.ConsumedKWh
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Total: %.2f kWh (%d days)\n", total, len(days))
	return nil
}
