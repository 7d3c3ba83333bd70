package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/suse-edge/support-matrix/pkg/matrix"
)

// WriteJSON writes one indented JSON file per release into dir, named after
// the release version.
func WriteJSON(dir string, releases []matrix.Release) error {
	for _, rel := range releases {
		data, err := json.MarshalIndent(rel, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal release %s: %w", rel.Version, err)
		}
		path := filepath.Join(dir, releaseFileName(rel.Version))
		if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// MarshalReleases renders the whole release list as indented JSON, used for
// dry runs.
func MarshalReleases(releases []matrix.Release) ([]byte, error) {
	return json.MarshalIndent(releases, "", "  ")
}
