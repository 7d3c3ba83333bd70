// Package render turns the assembled release list into its published forms:
// an aggregate HTML page, one JSON file per release, and a DocBook XML
// article. The exports are independent of each other and are written
// concurrently; the data model itself is read-only by this point.
package render

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/suse-edge/support-matrix/pkg/matrix"
)

// Output file names within the output directory.
const (
	HTMLFile    = "index.html"
	DocBookFile = "output.xml"
)

// Options configures the exporters.
type Options struct {
	// Product is the display name used in page and article titles.
	Product string
	// TemplatePath optionally points at a custom HTML template file,
	// overriding the built-in page template.
	TemplatePath string
	// ArtifactSeparator is the separator used when multiple artifact
	// locations were combined during normalization. Defaults to newline.
	ArtifactSeparator string
	// GeneratedAt stamps the output; zero means time.Now().
	GeneratedAt time.Time
}

func (o Options) withDefaults() Options {
	if o.Product == "" {
		o.Product = "Support matrix"
	}
	if o.ArtifactSeparator == "" {
		o.ArtifactSeparator = "\n"
	}
	if o.GeneratedAt.IsZero() {
		o.GeneratedAt = time.Now()
	}
	return o
}

// WriteAll writes every export into dir, creating it if needed.
func WriteAll(ctx context.Context, dir string, releases []matrix.Release, opts Options) error {
	opts = opts.withDefaults()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return WriteHTML(dir, releases, opts)
	})
	g.Go(func() error {
		return WriteDocBook(dir, releases, opts)
	})
	g.Go(func() error {
		return WriteJSON(dir, releases)
	})
	return g.Wait()
}

// releaseFileName returns the JSON export file name for a release version,
// with path-hostile characters replaced.
func releaseFileName(version string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, version)
	return sanitized + ".json"
}

// artifactEntries splits a combined artifact location back into its entries
// for display purposes.
func artifactEntries(location *string, separator string) []string {
	if location == nil {
		return nil
	}
	var out []string
	for _, entry := range strings.Split(*location, separator) {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
