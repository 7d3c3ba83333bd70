// Package cmd implements the support-matrix command line interface.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// defaultConfigFile is picked up from the working directory when --config is
// not given.
const defaultConfigFile = "support-matrix.yaml"

var (
	configFile   string
	outputDir    string
	templateFile string
	dryRun       bool
	verbose      bool
)

// stdout is swappable for tests.
var stdout io.Writer = os.Stdout

var rootCmd = &cobra.Command{
	Use:   "support-matrix",
	Short: "Scrape vendor documentation into a support matrix",
	Long: `Scrape vendor documentation pages to extract a support matrix: which
software component versions are supported in which product release.

The configured releases are fetched, their component tables extracted and
normalized, and the result is rendered as a browsable HTML page plus
machine-readable exports (one JSON file per release and a DocBook XML
article). A release whose page cannot be fetched or parsed is kept in the
output with an empty component list, so one broken page never hides the
others.`,
	Example: `  # Scrape using ./support-matrix.yaml and write exports next to it
  support-matrix

  # Explicit config and output directory
  support-matrix --config matrix.yaml --output-dir ./public

  # Inspect the assembled data without writing files
  support-matrix --dry-run`,
	RunE: runScrape,
}

// Execute runs the root cobra command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: "+defaultConfigFile+")")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for rendered exports (overrides config)")
	rootCmd.Flags().StringVar(&templateFile, "template", "", "Custom HTML page template file (overrides config)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the assembled data as JSON instead of writing files")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("support-matrix {{.Version}}\n")
}
