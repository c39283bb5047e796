package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/meterplot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Writes a config file pre-filled with the default sensor, timezone and
store names, ready for credentials to be filled in. Refuses to overwrite an
existing file.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	cfg := &config.Config{}
	cfg.Timezone = cfg.GetTimezone()
	cfg.SensorID = cfg.GetSensorID()
	cfg.OutputDir = cfg.GetOutputDir()
	cfg.Cosmos.Database = cfg.Cosmos.GetDatabase()
	cfg.Cosmos.Container = cfg.Cosmos.GetContainer()
	cfg.Dynamo.Table = cfg.Dynamo.GetTable()
	cfg.Dynamo.DeviceID = cfg.Dynamo.GetDeviceID()
	cfg.CSV.Dir = cfg.CSV.GetDir()

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("✓ wrote %s\n", path)
	return nil
}
