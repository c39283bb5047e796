package main

import (
	"fmt"

	"github.com/jgoulah/meterplot/internal/config"
	"github.com/jgoulah/meterplot/internal/store"
)

// sourceUsage documents the positional credentials each source kind accepts.
// Omitted credentials fall back to config.yaml.
const sourceUsage = `Sources and their credentials:
  cosmos [endpoint key]            Azure Cosmos DB
  dynamo [region access secret]    DynamoDB
  csv                              local CSV files
  sqlite                           local archive database`

// newSource builds the store adapter for a source kind. The returned closer
// releases whatever the adapter holds open (only sqlite has one).
func newSource(cfg *config.Config, kind string, creds []string) (store.Source, func() error, error) {
	noop := func() error { return nil }

	switch kind {
	case "cosmos":
		endpoint, key := cfg.Cosmos.Endpoint, cfg.Cosmos.Key
		if len(creds) >= 2 {
			endpoint, key = creds[0], creds[1]
		}
		if endpoint == "" || key == "" {
			return nil, nil, fmt.Errorf("cosmos needs endpoint and key (arguments or config.yaml)")
		}
		s, err := store.NewCosmos(endpoint, key,
			cfg.Cosmos.GetDatabase(), cfg.Cosmos.GetContainer(), cfg.GetSensorID())
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil

	case "dynamo":
		region, access, secret := cfg.Dynamo.Region, cfg.Dynamo.AccessKey, cfg.Dynamo.SecretKey
		if len(creds) >= 3 {
			region, access, secret = creds[0], creds[1], creds[2]
		}
		if region == "" || access == "" || secret == "" {
			return nil, nil, fmt.Errorf("dynamo needs region, access key and secret key (arguments or config.yaml)")
		}
		s, err := store.NewDynamo(region, access, secret,
			cfg.Dynamo.GetTable(), cfg.Dynamo.GetDeviceID(), cfg.GetSensorID())
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil

	case "csv":
		return store.NewCSV(cfg.CSV.GetDir(), cfg.GetSensorID()), noop, nil

	case "sqlite":
		a, err := openArchive(cfg)
		if err != nil {
			return nil, nil, err
		}
		return a, a.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown source: %s (available: cosmos, dynamo, csv, sqlite)", kind)
	}
}
