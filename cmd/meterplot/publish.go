package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/meterplot/internal/publisher"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish daily usage summaries over MQTT",
	Long: `Sends one summary message per archived day (date, consumed kWh, power
peak) to the configured MQTT broker.`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

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
		return fmt.Errorf("summarizing archive: %w", err)
	}
	if len(days) == 0 {
		fmt.Println("No data to publish")
		return nil
	}

	pub, err := publisher.New(cfg.MQTT, cfg.GetSensorID())
	if err != nil {
		return fmt.Errorf("connecting publisher: %w", err)
	}
	defer pub.Close()

	for _, day := range days {
		if err := pub.Publish(day); err != nil {
			return fmt.Errorf("publishing %s: %w", day.Date.Format("2006-01-02"), err)
		}
		fmt.Printf("✓ published %s (%.2f kWh)\n", day.Date.Format("2006-01-02"), day.ConsumedKWh)
	}

	fmt.Printf("✓ Published %d summaries\n", len(days))
	return nil
}
