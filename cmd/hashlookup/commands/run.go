package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hashlookup/internal/analyzer"
	"hashlookup/internal/hashr"
	"hashlookup/internal/platform/config"
	"hashlookup/internal/platform/logger"
	"hashlookup/internal/timeline"
)

var runMarkdown bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one hashR lookup pass over a sqlite timeline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load(viper.GetViper())
		if err := cfg.Validate(); err != nil {
			return err
		}
		if cfg.TimelinePath == "" {
			return fmt.Errorf("a timeline is required; pass --timeline or set HASHR_TIMELINE")
		}

		store, err := timeline.OpenSQLite(cfg.TimelinePath)
		if err != nil {
			return err
		}
		defer store.Close()

		a, err := analyzer.New(hashrConfig(cfg), store, logger.New(), nil,
			cfg.QueryBatchSize, cfg.AddSourceAttribute)
		if err != nil {
			return err
		}

		result, err := a.Run(cmd.Context())
		if err != nil {
			return err
		}
		if runMarkdown {
			fmt.Fprintln(cmd.OutOrStdout(), result.Markdown)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), result.Summary)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runMarkdown, "markdown", false, "Print the markdown rendering of the summary")
}

func hashrConfig(cfg config.Config) hashr.PostgresConfig {
	return hashr.PostgresConfig{
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Addr:     cfg.DBAddr,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
}
