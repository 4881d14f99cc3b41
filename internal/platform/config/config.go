// Package config loads the hashR connection details and analyzer knobs from
// the environment. The variable names are the ones operators already set for
// the hashR lookup analyzer (HASHR_DB_USER, HASHR_DB_PW, ...); flags bound by
// the CLI override them through viper.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// DefaultQueryBatchSize bounds the membership list sent to the hashR database
// in one round-trip. Tunable via HASHR_QUERY_BATCH_SIZE.
const DefaultQueryBatchSize = 50000

// Config holds everything a run needs: the hashR database coordinates, the
// provenance switch, and the host-side settings for the CLI and HTTP surface.
type Config struct {
	DBUser     string
	DBPassword string
	DBAddr     string
	DBPort     int
	DBName     string
	DBSSLMode  string

	// AddSourceAttribute controls whether matched events also get an
	// attribute listing the source images the hash is known from.
	AddSourceAttribute bool
	QueryBatchSize     int

	// TimelinePath is the sqlite event store the run command operates on.
	TimelinePath string
	HTTPAddr     string
}

// Load reads the configuration from the given viper instance. Callers pass
// viper.GetViper() in the CLI and a fresh viper.New() in tests.
func Load(v *viper.Viper) Config {
	v.SetEnvPrefix("hashr")
	v.AutomaticEnv()

	v.SetDefault("db_port", 5432)
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("query_batch_size", DefaultQueryBatchSize)
	v.SetDefault("http_addr", ":8085")

	return Config{
		DBUser:             v.GetString("db_user"),
		DBPassword:         v.GetString("db_pw"),
		DBAddr:             v.GetString("db_addr"),
		DBPort:             v.GetInt("db_port"),
		DBName:             v.GetString("db_name"),
		DBSSLMode:          v.GetString("db_sslmode"),
		AddSourceAttribute: v.GetBool("add_source_attribute"),
		QueryBatchSize:     v.GetInt("query_batch_size"),
		TimelinePath:       v.GetString("timeline"),
		HTTPAddr:           v.GetString("http_addr"),
	}
}

// Validate reports the fatal setup error for incomplete hashR connection
// details. Nothing touches an event before this passes.
func (c Config) Validate() error {
	if c.DBUser == "" || c.DBPassword == "" || c.DBAddr == "" || c.DBPort == 0 || c.DBName == "" {
		return errors.New(
			"unable to load the hashR database connection details; " +
				"set HASHR_DB_USER, HASHR_DB_PW, HASHR_DB_ADDR, HASHR_DB_PORT " +
				"and HASHR_DB_NAME before starting the analyzer")
	}
	if c.QueryBatchSize < 1 {
		return fmt.Errorf("query batch size must be >= 1, got %d", c.QueryBatchSize)
	}
	return nil
}
