package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/meterplot/internal/store"
)

var deleteConfirm bool

var deleteCmd = &cobra.Command{
	Use:   "delete [endpoint key]",
	Short: "Delete all of the sensor's records from the document store",
	Long: `Queries the document store for every record of the configured sensor and
deletes them one at a time. A record already gone counts as deleted, so the
command can be re-run after a partial failure. There is no undo.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteConfirm, "yes", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	endpoint, key := cfg.Cosmos.Endpoint, cfg.Cosmos.Key
	if len(args) >= 2 {
		endpoint, key = args[0], args[1]
	}
	if endpoint == "" || key == "" {
		return fmt.Errorf("cosmos needs endpoint and key (arguments or config.yaml)")
	}

	if !deleteConfirm {
		fmt.Printf("Delete ALL records for sensor %q from %s/%s? [y/N] ",
			cfg.GetSensorID(), cfg.Cosmos.GetDatabase(), cfg.Cosmos.GetContainer())
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted")
			return nil
		}
	}

	s, err := store.NewCosmos(endpoint, key,
		cfg.Cosmos.GetDatabase(), cfg.Cosmos.GetContainer(), cfg.GetSensorID())
	if err != nil {
		return err
	}

	deleted, err := s.DeleteSensor(context.Background(), func(id string) {
		fmt.Printf("Delete item id=%s\n", id)
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Deleted %d records\n", deleted)
	return nil
}
