package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "smartmeter", cfg.GetSensorID())
	assert.Equal(t, "Asia/Tokyo", cfg.GetTimezone())
	assert.Equal(t, "ThingsDatabase", cfg.Cosmos.GetDatabase())
	assert.Equal(t, "measurements", cfg.Dynamo.GetTable())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := &Config{
		Timezone: "UTC",
		SensorID: "meter-2",
	}
	cfg.Cosmos.Endpoint = "https://example.documents.azure.com:443/"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "UTC", loaded.GetTimezone())
	assert.Equal(t, "meter-2", loaded.GetSensorID())
	assert.Equal(t, cfg.Cosmos.Endpoint, loaded.Cosmos.Endpoint)

	// credentials may end up in here, keep it owner-readable
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
