// Test file for the version command.
//
// Globals mutated: Version, Commit, Date, stdout (via captureOutput).
package cmd

import (
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	defer resetFlags()()

	oldVersion, oldCommit, oldDate := Version, Commit, Date
	defer func() { Version, Commit, Date = oldVersion, oldCommit, oldDate }()

	Version = "1.2.3"
	Commit = "abc123"
	Date = "2026-08-29"

	rootCmd.SetArgs([]string{"version"})
	output := captureOutput(func() {
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("version command failed: %v", err)
		}
	})

	for _, want := range []string{"1.2.3", "abc123", "2026-08-29"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}
