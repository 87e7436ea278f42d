// Package batch runs contributing-area queries for many HUC8 boundaries
// concurrently against one immutable topology.
package batch

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/riverscapes/watershed-cli/internal/topology"
)

// Manifest lists the HUC8 boundaries a batch run should query.
type Manifest struct {
	HUC8s []string `yaml:"huc8s"`
}

// LoadManifest reads a YAML manifest from disk and validates every prefix
// up front, so a malformed entry fails the batch before any work starts.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, eris.Wrapf(err, "batch: read manifest %s", path)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, eris.Wrapf(err, "batch: parse manifest %s", path)
	}

	if len(m.HUC8s) == 0 {
		return Manifest{}, eris.Errorf("batch: manifest %s lists no huc8s", path)
	}
	for _, huc8 := range m.HUC8s {
		if len(huc8) != topology.HUC8Len {
			return Manifest{}, eris.Wrapf(topology.ErrInvalidPrefix, "manifest %s: entry %q", path, huc8)
		}
	}

	return m, nil
}
