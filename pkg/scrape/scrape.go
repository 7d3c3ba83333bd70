// Package scrape drives the per-release pipeline: fetch the documentation
// page, extract the component tables, normalize them, and assemble the full
// release list. A failure for one release never blocks the others; the
// release is kept with an empty component mapping so downstream exporters can
// render "no data available".
package scrape

import (
	"context"
	"log/slog"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/suse-edge/support-matrix/pkg/config"
	"github.com/suse-edge/support-matrix/pkg/extract"
	"github.com/suse-edge/support-matrix/pkg/matrix"
	"github.com/suse-edge/support-matrix/pkg/normalize"
)

// PageFetcher retrieves raw page content for a URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Scraper assembles the support matrix for a configured release list.
type Scraper struct {
	cfg     *config.Config
	fetcher PageFetcher
	logger  *slog.Logger
}

// New builds a Scraper. A nil logger falls back to slog.Default.
func New(cfg *config.Config, fetcher PageFetcher, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{cfg: cfg, fetcher: fetcher, logger: logger}
}

// Run processes the configured releases sequentially and returns exactly one
// Release per configured identifier, in display order. Releases whose fetch
// or extraction fails come back with an empty component mapping.
func (s *Scraper) Run(ctx context.Context) []matrix.Release {
	releases := make([]matrix.Release, 0, len(s.cfg.Releases))
	for _, rc := range s.orderedReleases() {
		releases = append(releases, s.scrapeRelease(ctx, rc))
	}
	return releases
}

// orderedReleases returns the release list in display order: the config
// order, or semantic-version descending when newest-first is configured.
func (s *Scraper) orderedReleases() []config.Release {
	ordered := make([]config.Release, len(s.cfg.Releases))
	copy(ordered, s.cfg.Releases)

	if s.cfg.Order == config.OrderNewestFirst {
		// Versions were validated as semver at config load.
		sort.SliceStable(ordered, func(i, j int) bool {
			vi, erri := semver.NewVersion(ordered[i].Version)
			vj, errj := semver.NewVersion(ordered[j].Version)
			if erri != nil || errj != nil {
				return false
			}
			return vi.GreaterThan(vj)
		})
	}
	return ordered
}

func (s *Scraper) scrapeRelease(ctx context.Context, rc config.Release) matrix.Release {
	pageURL := rc.PageURL(s.cfg.DocURL)
	notesURL := rc.NotesURL
	if notesURL == "" {
		notesURL = pageURL
	}
	rel := matrix.NewRelease(rc.Version, rc.AvailabilityDate, notesURL)
	logger := s.logger.With("release", rc.Version)

	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		logger.Warn("fetch failed, release will have no data", "url", pageURL, "error", err)
		return rel
	}

	root, err := extract.Parse(body)
	if err != nil {
		logger.Warn("page is not parseable, release will have no data", "url", pageURL, "error", err)
		return rel
	}

	scope := extract.FindReleaseSection(root, rc.Version)
	if scope == nil {
		logger.Debug("no release section found, scanning whole document")
		scope = root
	}

	tables := extract.Select(extract.CandidateTables(scope), normalize.RecognizesSchema)
	if len(tables) == 0 {
		logger.Warn("no component table found, release will have no data", "url", pageURL)
		return rel
	}

	opts := normalize.Options{
		ArtifactPolicy:    s.cfg.Normalize.ArtifactPolicy,
		ArtifactSeparator: s.cfg.Normalize.ArtifactSeparator,
		Logger:            logger,
	}
	for _, t := range tables {
		components, err := normalize.Table(t, opts)
		if err != nil {
			// Cannot happen for selected tables, but stay soft regardless.
			logger.Warn("skipping table", "error", err)
			continue
		}
		rel.Data.Merge(components)
	}

	if rel.Data.Len() == 0 {
		logger.Warn("component table matched but produced no components", "url", pageURL)
	} else {
		logger.Info("scraped release", "components", rel.Data.Len())
	}
	return rel
}
