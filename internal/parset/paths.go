package parset

import (
	"os"
	"path/filepath"
	"strings"
)

// discoverMeasurementSets lists the measurement sets directly inside dir.
// Measurement sets are directories on disk, but plain files with the same
// suffix are accepted too.
func discoverMeasurementSets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if strings.EqualFold(filepath.Ext(entry.Name()), ".ms") {
			names = append(names, entry.Name())
		}
	}
	// os.ReadDir already sorts by filename.
	return names, nil
}
