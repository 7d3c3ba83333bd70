// Package config provides configuration loading for the support-matrix
// scraper: the tracked releases with their metadata, plus fetch,
// normalization and export options.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Release ordering policies for the assembled output.
const (
	OrderConfig      = "config"       // keep the order of the config file
	OrderNewestFirst = "newest-first" // sort by semantic version, descending
)

// Artifact cell policies for cells carrying more than one location.
const (
	ArtifactJoin  = "join"  // combine all entries with a separator
	ArtifactFirst = "first" // keep only the first entry
)

// VersionPlaceholder is replaced with the release version when building
// documentation page URLs from a pattern.
const VersionPlaceholder = "{version}"

// Duration wraps time.Duration so config files can say "30s" or "1m".
type Duration time.Duration

// UnmarshalYAML decodes a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the complete scraper configuration.
type Config struct {
	// Product is the display name used in rendered output titles.
	Product string `yaml:"product"`
	// DocURL is the documentation page URL pattern. The {version}
	// placeholder is replaced with each release's version.
	DocURL string `yaml:"doc_url"`
	// OutputDir receives the rendered exports.
	OutputDir string `yaml:"output_dir"`
	// Template is an optional path to a custom HTML page template,
	// overriding the built-in one.
	Template string `yaml:"template"`
	// Order controls the release order of the output: "config" or
	// "newest-first".
	Order string `yaml:"order"`

	Releases  []Release       `yaml:"releases"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Normalize NormalizeConfig `yaml:"normalize"`
}

// Release is the static metadata of one tracked release. Availability date
// and release-notes URL are configuration, not scraped.
type Release struct {
	Version string `yaml:"version"`
	// AvailabilityDate accepts ISO form (2006-01-02) or the documentation's
	// ordinal form (2nd January 2006); it is normalized to ISO on load.
	AvailabilityDate string `yaml:"availability_date"`
	// NotesURL is the release-notes link attached to the release. Defaults
	// to the resolved documentation page URL.
	NotesURL string `yaml:"notes_url"`
	// DocURL overrides the global doc_url pattern for this release.
	DocURL string `yaml:"doc_url"`
}

// PageURL resolves the documentation page to fetch for this release.
func (r Release) PageURL(defaultPattern string) string {
	pattern := r.DocURL
	if pattern == "" {
		pattern = defaultPattern
	}
	return strings.ReplaceAll(pattern, VersionPlaceholder, r.Version)
}

// FetchConfig controls the HTTP client used against documentation pages.
type FetchConfig struct {
	Timeout     Duration `yaml:"timeout"`
	UserAgent   string   `yaml:"user_agent"`
	MaxBodySize int64    `yaml:"max_body_size"`
	// Attempts is the number of tries per page. 1 means no retries.
	Attempts      int      `yaml:"attempts"`
	RetryInterval Duration `yaml:"retry_interval"`
}

// NormalizeConfig controls cell cleanup during normalization.
type NormalizeConfig struct {
	// ArtifactPolicy decides what happens when one cell carries several
	// artifact locations: "join" or "first".
	ArtifactPolicy string `yaml:"artifact_policy"`
	// ArtifactSeparator joins multiple artifact entries under the "join"
	// policy.
	ArtifactSeparator string `yaml:"artifact_separator"`
}

// Default returns a Config with working defaults for everything except the
// release list, which every deployment must supply.
func Default() *Config {
	return &Config{
		Product:   "SUSE Edge",
		DocURL:    "https://documentation.suse.com/suse-edge/{version}/html/edge/id-release-notes.html",
		OutputDir: ".",
		Order:     OrderConfig,
		Fetch: FetchConfig{
			Timeout:       Duration(30 * time.Second),
			UserAgent:     "support-matrix/1.0 (+https://github.com/suse-edge/support-matrix)",
			MaxBodySize:   10 << 20,
			Attempts:      1,
			RetryInterval: Duration(5 * time.Second),
		},
		Normalize: NormalizeConfig{
			ArtifactPolicy:    ArtifactJoin,
			ArtifactSeparator: "\n",
		},
	}
}

// Load reads a YAML config file on top of the defaults, normalizes
// availability dates and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	for i := range cfg.Releases {
		normalized, err := NormalizeDate(cfg.Releases[i].AvailabilityDate)
		if err != nil {
			return nil, fmt.Errorf("release %s: %w", cfg.Releases[i].Version, err)
		}
		cfg.Releases[i].AvailabilityDate = normalized
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for the invariants the pipeline relies
// on: a non-empty release list, unique non-empty versions, and parseable
// semantic versions when newest-first ordering is requested.
func (c *Config) Validate() error {
	if len(c.Releases) == 0 {
		return fmt.Errorf("at least one release must be configured")
	}
	if c.DocURL == "" {
		return fmt.Errorf("doc_url is required")
	}
	switch c.Order {
	case OrderConfig, OrderNewestFirst:
	default:
		return fmt.Errorf("order must be %q or %q, got %q", OrderConfig, OrderNewestFirst, c.Order)
	}
	switch c.Normalize.ArtifactPolicy {
	case ArtifactJoin, ArtifactFirst:
	default:
		return fmt.Errorf("normalize.artifact_policy must be %q or %q, got %q",
			ArtifactJoin, ArtifactFirst, c.Normalize.ArtifactPolicy)
	}
	if c.Fetch.Attempts < 1 {
		return fmt.Errorf("fetch.attempts must be at least 1, got %d", c.Fetch.Attempts)
	}

	seen := make(map[string]bool, len(c.Releases))
	for _, rel := range c.Releases {
		if rel.Version == "" {
			return fmt.Errorf("release with empty version")
		}
		if seen[rel.Version] {
			return fmt.Errorf("duplicate release version %q", rel.Version)
		}
		seen[rel.Version] = true

		if c.Order == OrderNewestFirst {
			if _, err := semver.NewVersion(rel.Version); err != nil {
				return fmt.Errorf("release %q is not a semantic version, required for %s ordering: %w",
					rel.Version, OrderNewestFirst, err)
			}
		}
	}
	return nil
}

var ordinalRe = regexp.MustCompile(`(\d)(st|nd|rd|th)`)

// NormalizeDate converts an availability date to ISO form. It accepts
// 2006-01-02 as-is and converts the documentation's "2nd January 2006"
// ordinal form.
func NormalizeDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return "", fmt.Errorf("availability_date is required")
	}
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Format("2006-01-02"), nil
	}
	clean := ordinalRe.ReplaceAllString(date, "$1")
	t, err := time.Parse("2 January 2006", clean)
	if err != nil {
		return "", fmt.Errorf("invalid availability_date %q", date)
	}
	return t.Format("2006-01-02"), nil
}
