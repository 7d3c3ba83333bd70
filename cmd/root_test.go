// End-to-end tests for the root command.
//
// Globals mutated: configFile, outputDir, templateFile, dryRun, verbose,
// stdout (via captureOutput). All tests use defer resetFlags()() for cleanup.
package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// captureOutput swaps the package stdout writer and returns what was written.
func captureOutput(f func()) string {
	old := stdout
	var buf bytes.Buffer
	stdout = &buf
	defer func() { stdout = old }()

	f()
	return buf.String()
}

// resetFlags restores all flag globals after a test.
func resetFlags() func() {
	return func() {
		configFile = ""
		outputDir = ""
		templateFile = ""
		dryRun = false
		verbose = false
	}
}

const testPage = `<html><body>
<section id="id-release-notes-3-1-2" data-id-title="Release 3.1.2">
  <section id="components-3-1-2" data-id-title="Components Versions">
    <table>
      <tr><th>Name</th><th>Version</th><th>Helm Chart Version</th><th>Artifact Location (URL/Image)</th></tr>
      <tr><td>Longhorn</td><td>1.6.2</td><td>104.2.0</td><td><a href="https://charts.example.com/longhorn">chart</a></td></tr>
      <tr><td>Kubernetes</td><td>1.30.3</td><td>N/A</td><td></td></tr>
    </table>
  </section>
</section>
</body></html>`

// newDocsServer serves the test page for release 3.1.2 and 404s everything
// else.
func newDocsServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/3.1.2/") {
			fmt.Fprint(w, testPage)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeTestConfig(t *testing.T, srvURL, outDir string) string {
	t.Helper()
	content := fmt.Sprintf(`
product: SUSE Edge
doc_url: %s/{version}/notes.html
output_dir: %s
releases:
  - version: "3.1.2"
    availability_date: "2024-10-15"
  - version: "3.0.0"
    availability_date: "22nd April 2024"
`, srvURL, outDir)
	path := filepath.Join(t.TempDir(), "support-matrix.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestExecute_WritesExports(t *testing.T) {
	defer resetFlags()()

	srv := newDocsServer(t)
	outDir := t.TempDir()
	cfgPath := writeTestConfig(t, srv.URL, outDir)

	rootCmd.SetArgs([]string{"--config", cfgPath})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	for _, name := range []string{"index.html", "output.xml", "3.1.2.json", "3.0.0.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected export %s: %v", name, err)
		}
	}

	// The scraped release carries component data; the failed one is empty
	// but still exported.
	data, err := os.ReadFile(filepath.Join(outDir, "3.1.2.json"))
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(data), "Longhorn") {
		t.Errorf("expected Longhorn in export, got:\n%s", data)
	}

	data, err = os.ReadFile(filepath.Join(outDir, "3.0.0.json"))
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(data), `"Data": {}`) {
		t.Errorf("expected empty Data for unfetchable release, got:\n%s", data)
	}
}

func TestExecute_DryRun(t *testing.T) {
	defer resetFlags()()

	srv := newDocsServer(t)
	outDir := t.TempDir()
	cfgPath := writeTestConfig(t, srv.URL, outDir)

	rootCmd.SetArgs([]string{"--config", cfgPath, "--dry-run"})
	output := captureOutput(func() {
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
	})

	if !strings.Contains(output, `"Version": "3.1.2"`) {
		t.Errorf("expected release JSON in dry-run output, got:\n%s", output)
	}
	if !strings.Contains(output, "Longhorn") {
		t.Errorf("expected component in dry-run output, got:\n%s", output)
	}

	// Dry run must not write files
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("failed to read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no files in dry-run, found %d", len(entries))
	}
}

func TestExecute_OutputDirFlagOverridesConfig(t *testing.T) {
	defer resetFlags()()

	srv := newDocsServer(t)
	cfgPath := writeTestConfig(t, srv.URL, t.TempDir())
	override := t.TempDir()

	rootCmd.SetArgs([]string{"--config", cfgPath, "--output-dir", override})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(override, "index.html")); err != nil {
		t.Errorf("expected exports in override directory: %v", err)
	}
}

func TestExecute_MissingConfig(t *testing.T) {
	defer resetFlags()()

	rootCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")})
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	defer func() {
		rootCmd.SilenceUsage = false
		rootCmd.SilenceErrors = false
	}()

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
