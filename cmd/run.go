package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/suse-edge/support-matrix/pkg/config"
	"github.com/suse-edge/support-matrix/pkg/fetch"
	"github.com/suse-edge/support-matrix/pkg/render"
	"github.com/suse-edge/support-matrix/pkg/scrape"
)

func runScrape(cmd *cobra.Command, _ []string) error {
	setupLogging()

	cfgPath := configFile
	if cfgPath == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			cfgPath = defaultConfigFile
		}
	}
	if cfgPath == "" {
		return fmt.Errorf("no config file found (looked for %s, use --config)", defaultConfigFile)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	slog.Debug("loaded config", "path", cfgPath, "releases", len(cfg.Releases))

	// CLI flags override config file settings.
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if templateFile != "" {
		cfg.Template = templateFile
	}

	fetcher := fetch.New(fetch.Options{
		Timeout:       cfg.Fetch.Timeout.Std(),
		UserAgent:     cfg.Fetch.UserAgent,
		MaxBodySize:   cfg.Fetch.MaxBodySize,
		Attempts:      cfg.Fetch.Attempts,
		RetryInterval: cfg.Fetch.RetryInterval.Std(),
	})

	releases := scrape.New(cfg, fetcher, slog.Default()).Run(cmd.Context())

	if dryRun {
		data, err := render.MarshalReleases(releases)
		if err != nil {
			return fmt.Errorf("failed to marshal releases: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}

	opts := render.Options{
		Product:           cfg.Product,
		TemplatePath:      cfg.Template,
		ArtifactSeparator: cfg.Normalize.ArtifactSeparator,
	}
	if err := render.WriteAll(cmd.Context(), cfg.OutputDir, releases, opts); err != nil {
		return fmt.Errorf("failed to write exports: %w", err)
	}
	slog.Info("wrote support matrix", "dir", cfg.OutputDir, "releases", len(releases))
	return nil
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
