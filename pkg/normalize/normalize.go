// Package normalize maps extracted table rows onto canonical component
// records. Columns are resolved by header text against a closed synonym set,
// so column order and minor wording drift across releases do not matter.
package normalize

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/suse-edge/support-matrix/pkg/config"
	"github.com/suse-edge/support-matrix/pkg/extract"
	"github.com/suse-edge/support-matrix/pkg/matrix"
)

// Field identifies which component field a table column feeds.
type Field int

const (
	FieldUnknown Field = iota
	FieldName
	FieldVersion
	FieldChartVersion
	FieldArtifact
)

// ErrUnrecognizedSchema reports a table whose headers do not resolve to a
// component schema. Callers treat it as "not the table we want", not as a
// failure.
var ErrUnrecognizedSchema = errors.New("table headers do not match the component schema")

// headerSynonyms is the closed set of accepted header wordings.
var headerSynonyms = map[string]Field{
	"name":           FieldName,
	"component":      FieldName,
	"component name": FieldName,

	"version":           FieldVersion,
	"component version": FieldVersion,

	"helm chart version": FieldChartVersion,
	"chart version":      FieldChartVersion,
	"helm chart":         FieldChartVersion,

	"artifact location (url/image)":   FieldArtifact,
	"artifact location (url / image)": FieldArtifact,
	"artifact location":               FieldArtifact,
	"artifact":                        FieldArtifact,
}

// ResolveHeader maps one header cell to a component field. Matching is
// case-insensitive and ignores surrounding whitespace, trailing colons and,
// as a fallback, a trailing parenthetical.
func ResolveHeader(header string) Field {
	h := canonicalHeader(header)
	if f, ok := headerSynonyms[h]; ok {
		return f
	}
	// Wording drift like "Artifact Location (OCI)": retry without the
	// parenthetical.
	if i := strings.Index(h, "("); i > 0 {
		if f, ok := headerSynonyms[strings.TrimSpace(h[:i])]; ok {
			return f
		}
	}
	return FieldUnknown
}

func canonicalHeader(h string) string {
	h = strings.Join(strings.Fields(h), " ")
	h = strings.TrimSuffix(h, ":")
	return strings.ToLower(strings.TrimSpace(h))
}

// MapHeaders resolves a header row into a column index to field mapping.
// A schema is recognized only when it names both a component and a version
// column; otherwise ErrUnrecognizedSchema is returned. When two columns
// resolve to the same field the first one wins.
func MapHeaders(headers []string) (map[int]Field, error) {
	cols := make(map[int]Field)
	seen := make(map[Field]bool)
	for i, h := range headers {
		f := ResolveHeader(h)
		if f == FieldUnknown || seen[f] {
			continue
		}
		cols[i] = f
		seen[f] = true
	}
	if !seen[FieldName] || !seen[FieldVersion] {
		return nil, ErrUnrecognizedSchema
	}
	return cols, nil
}

// RecognizesSchema reports whether a header row resolves to the component
// schema. Used by callers to pick matrix tables out of candidate tables.
func RecognizesSchema(headers []string) bool {
	_, err := MapHeaders(headers)
	return err == nil
}

// Options controls cell cleanup.
type Options struct {
	// ArtifactPolicy is config.ArtifactJoin or config.ArtifactFirst.
	ArtifactPolicy string
	// ArtifactSeparator joins multiple artifact entries under the join
	// policy.
	ArtifactSeparator string
	Logger            *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.ArtifactPolicy == "" {
		o.ArtifactPolicy = config.ArtifactJoin
	}
	if o.ArtifactSeparator == "" {
		o.ArtifactSeparator = "\n"
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Table normalizes one extracted table into an ordered component mapping.
// Rows without a component name are dropped with a warning; duplicate names
// keep the last occurrence. Returns ErrUnrecognizedSchema when the header
// row does not resolve.
func Table(t extract.Table, opts Options) (*matrix.ComponentMap, error) {
	opts = opts.withDefaults()

	cols, err := MapHeaders(t.Headers)
	if err != nil {
		return nil, err
	}

	components := matrix.NewComponentMap()
	for i, row := range t.Rows {
		var name string
		var comp matrix.Component

		for col, cell := range row {
			field, ok := cols[col]
			if !ok {
				continue
			}
			switch field {
			case FieldName:
				name = singleLine(cell.Text)
			case FieldVersion:
				if v := cell.Text; !absent(v) {
					comp.Version = singleLine(v)
				}
			case FieldChartVersion:
				if v := singleLine(cell.Text); !absent(v) {
					comp.ChartVersion = matrix.String(v)
				}
			case FieldArtifact:
				if v := artifactValue(cell, opts); !absent(v) {
					comp.ArtifactLocation = matrix.String(v)
				}
			}
		}

		if name == "" {
			opts.Logger.Warn("dropping row without component name", "row", i+1)
			continue
		}
		components.Set(name, comp)
	}
	return components, nil
}

// artifactValue derives the canonical artifact location for a cell. Linked
// entries contribute their href instead of their visible text; plain-text
// entries sharing the cell (for example a bare image reference next to a
// chart link) are kept as-is. Multiple entries are combined or truncated
// according to the configured policy.
func artifactValue(cell extract.Cell, opts Options) string {
	var entries []string
	linkText := make(map[string]bool, len(cell.Links))
	for _, l := range cell.Links {
		if !absent(l.Href) {
			entries = append(entries, l.Href)
		}
		linkText[strings.TrimSpace(l.Text)] = true
	}
	for _, line := range strings.Split(cell.Text, "\n") {
		line = strings.TrimSpace(line)
		// Lines that merely repeat a link's visible text are already
		// represented by the href.
		if absent(line) || linkText[line] {
			continue
		}
		entries = append(entries, line)
	}
	if len(entries) == 0 {
		return ""
	}
	if opts.ArtifactPolicy == config.ArtifactFirst {
		return entries[0]
	}
	return strings.Join(entries, opts.ArtifactSeparator)
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// absent reports cell values that mean "no value" in the documentation.
func absent(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "-" || strings.EqualFold(s, "n/a")
}
