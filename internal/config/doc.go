// Package config provides centralized configuration management for descstats.
// It handles loading configuration from multiple sources, validation, and the
// dataset table that every binary runs against.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern STATS_* for namespacing:
//
//	STATS_LOGGING_LEVEL=debug
//	STATS_PATHS_DATA_DIR=/srv/csv
//	STATS_RUNNER_PARALLELISM=3
//	STATS_SERVER_PORT=9090
//	STATS_CONFIG=/etc/descstats/config.yaml
//
// # Datasets
//
// Datasets come from the YAML file only. When the file lists none, the three
// built-in datasets from DefaultDatasets are used:
//
//	datasets:
//	  - name: fb_ads
//	    file: 2024_fb_ads_president_scored_anon.csv
//	    group_keys: [[page_id], [page_id, ad_id]]
//	    numeric_columns: [estimated_spend, estimated_impressions]
//	    categorical_columns: [publisher_platforms, currency]
//
// # Path Management
//
// Paths resolves the configured directories against a base directory:
//
//	paths, err := config.GetPaths(cfg.Paths)
//	jsonPath, _ := paths.GetReportJSONPath("pure")
//	figDir := paths.GetDatasetFiguresDir("fb_ads")
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Testing
//
// Default returns a complete, valid configuration that needs no environment
// variables or files.
package config
