package render

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/suse-edge/support-matrix/pkg/matrix"
)

// pageTemplate is the built-in HTML page. A custom template file supplied
// through Options.TemplatePath receives the same pageData.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ .Product }} support matrix</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; margin-bottom: 2rem; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: left; vertical-align: top; }
th { background: #f0f0f0; }
.meta { color: #555; font-size: 0.9rem; }
</style>
</head>
<body>
<h1>{{ .Product }} support matrix</h1>
<p class="meta">Generated: {{ .GeneratedAt }}</p>
{{ range .Releases }}
<h2 id="release-{{ .Anchor }}">Release {{ .Version }}</h2>
<p class="meta">
Availability date: {{ .AvailabilityDate }} &middot;
<a href="{{ .URL }}">Release notes</a> &middot;
<a href="{{ .JSONFile }}">Download as JSON</a>
</p>
{{ if .Rows }}
<table>
<thead>
<tr><th>Name</th><th>Version</th><th>Helm Chart Version</th><th>Artifact Location (URL/Image)</th></tr>
</thead>
<tbody>
{{ range .Rows }}
<tr>
<td>{{ .Name }}</td>
<td>{{ .Version }}</td>
<td>{{ .ChartVersion }}</td>
<td>{{ range $i, $a := .Artifacts }}{{ if $i }}<br>{{ end }}{{ if $a.IsURL }}<a href="{{ $a.Value }}">{{ $a.Value }}</a>{{ else }}{{ $a.Value }}{{ end }}{{ end }}</td>
</tr>
{{ end }}
</tbody>
</table>
{{ else }}
<p><em>No data available for this release.</em></p>
{{ end }}
{{ end }}
</body>
</html>
`

type pageData struct {
	Product     string
	GeneratedAt string
	Releases    []releaseView
}

type releaseView struct {
	Version          string
	Anchor           string
	AvailabilityDate string
	URL              string
	JSONFile         string
	Rows             []componentRow
}

type componentRow struct {
	Name         string
	Version      string
	ChartVersion string
	Artifacts    []artifactEntry
}

type artifactEntry struct {
	Value string
	IsURL bool
}

// WriteHTML renders the aggregate page into dir.
func WriteHTML(dir string, releases []matrix.Release, opts Options) error {
	opts = opts.withDefaults()

	tmpl, err := loadPageTemplate(opts.TemplatePath)
	if err != nil {
		return err
	}

	data := pageData{
		Product:     opts.Product,
		GeneratedAt: opts.GeneratedAt.Format("2006-01-02 15:04:05 MST"),
		Releases:    make([]releaseView, 0, len(releases)),
	}
	for _, rel := range releases {
		data.Releases = append(data.Releases, newReleaseView(rel, opts))
	}

	path := filepath.Join(dir, HTMLFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render HTML page: %w", err)
	}
	return nil
}

func loadPageTemplate(path string) (*template.Template, error) {
	if path == "" {
		return template.Must(template.New("page").Parse(pageTemplate)), nil
	}
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %s: %w", path, err)
	}
	return tmpl, nil
}

func newReleaseView(rel matrix.Release, opts Options) releaseView {
	view := releaseView{
		Version:          rel.Version,
		Anchor:           anchorFor(rel.Version),
		AvailabilityDate: rel.AvailabilityDate,
		URL:              rel.URL,
		JSONFile:         releaseFileName(rel.Version),
	}
	for _, name := range rel.Data.Names() {
		c, _ := rel.Data.Get(name)
		row := componentRow{
			Name:         name,
			Version:      c.Version,
			ChartVersion: "N/A",
		}
		if c.ChartVersion != nil {
			row.ChartVersion = *c.ChartVersion
		}
		for _, entry := range artifactEntries(c.ArtifactLocation, opts.ArtifactSeparator) {
			row.Artifacts = append(row.Artifacts, artifactEntry{Value: entry, IsURL: isURL(entry)})
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func anchorFor(version string) string {
	out := make([]rune, 0, len(version))
	for _, r := range version {
		if r == '.' {
			r = '-'
		}
		out = append(out, r)
	}
	return string(out)
}
