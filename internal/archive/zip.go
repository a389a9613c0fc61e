// Package archive lists recording batches out of the ZIP exports the
// recorder produces.
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"strings"

	"call-recon-go/internal/keys"
	"call-recon-go/internal/types"
)

// ListWavNames returns the basenames of the .wav entries in a ZIP,
// deduplicated with order preserved. Directories and other file types
// are skipped.
func ListWavNames(zipPath string) ([]string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	seen := map[string]bool{}
	var names []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(strings.ToLower(f.Name), ".wav") {
			continue
		}
		base := path.Base(f.Name)
		if seen[base] {
			continue
		}
		seen[base] = true
		names = append(names, base)
	}
	return names, nil
}

// LoadRecordings parses every .wav name in the archive into recording
// metadata. Names that encode no usable key or clock still come back,
// with those fields absent; they will simply never match.
func LoadRecordings(zipPath string, sites []string) ([]types.RecordingMetadata, error) {
	names, err := ListWavNames(zipPath)
	if err != nil {
		return nil, err
	}
	recs := make([]types.RecordingMetadata, 0, len(names))
	for _, n := range names {
		recs = append(recs, keys.ParseRecording(n, sites))
	}
	return recs, nil
}
