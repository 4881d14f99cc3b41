// Package commands wires the hashlookup CLI. Configuration comes from
// HASHR_* environment variables with flags as overrides, bound through viper.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hashlookup/internal/platform/config"
)

var rootCmd = &cobra.Command{
	Use:   "hashlookup",
	Short: "Tag timeline events whose sha256 hash is known to hashR",
	Long: `hashlookup reconciles sha256 values found in a forensic timeline against
the known-file catalog built by the hashR project. Events carrying a known
hash are tagged known-hash (zerobyte-file for the empty-input digest) and can
optionally be annotated with the source images the hash came from.`,
	SilenceUsage: true,
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("timeline", "", "Path to the sqlite timeline to analyze")
	pf.Int("batch-size", config.DefaultQueryBatchSize, "Hashes per hashR query")
	pf.Bool("add-source-attribute", false, "Attach the source images of matched hashes as an event attribute")

	v := viper.GetViper()
	cobra.CheckErr(v.BindPFlag("timeline", pf.Lookup("timeline")))
	cobra.CheckErr(v.BindPFlag("query_batch_size", pf.Lookup("batch-size")))
	cobra.CheckErr(v.BindPFlag("add_source_attribute", pf.Lookup("add-source-attribute")))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}
