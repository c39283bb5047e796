package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jgoulah/meterplot/internal/archive"
	"github.com/jgoulah/meterplot/internal/config"
)

var (
	cfgFile string
	dbPath  string
	outDir  string
)

var rootCmd = &cobra.Command{
	Use:   "meterplot",
	Short: "Plot smart electricity meter readings as daily charts",
	Long: `Meterplot fetches smart-meter time series (cumulative kWh, instantaneous
watts and phase currents) from Azure Cosmos DB, DynamoDB, local CSV files or a
local sqlite archive, and renders one multi-panel PNG chart per day. Days whose
chart file already exists are skipped, so runs are safely resumable.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "archive database file (default is ./archive.db)")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "", "output directory for charts and CSV files")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getDBPath returns the archive database file path (local directory)
func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return "archive.db"
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

// getOutputDir returns the chart output directory, creating it if needed
func getOutputDir(cfg *config.Config) (string, error) {
	dir := outDir
	if dir == "" {
		dir = cfg.GetOutputDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	return dir, nil
}

// openArchive opens the local sqlite archive
func openArchive(cfg *config.Config) (*archive.Archive, error) {
	path := getDBPath()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	return archive.New(path, cfg.GetSensorID())
}
