package config

import "time"

// Application constants
const (
	AppName = "Combine Pulse"

	// EnvPrefix namespaces every environment variable
	EnvPrefix = "COMBINE"

	// ConfigFileEnv names an explicit configuration file
	ConfigFileEnv = "COMBINE_CONFIG_FILE"

	DefaultDataFile = "data/combine_data_since_2000.csv"

	// Data sources
	SourceFile     = "file"
	SourcePostgres = "postgres"

	DefaultCacheTTL      = 10 * time.Minute
	DefaultCacheKeyspace = "combine:view"

	// Request limits
	DefaultRequestTimeout = 30 * time.Second
	MaxRequestBodyBytes   = 1 << 20
)
