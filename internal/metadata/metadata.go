// Package metadata loads the initialization-time parameters of a proof-of-space
// dataset. The proving core never writes this file; it only reads what the
// (external) initialization phase produced.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metadata describes the shape of an initialized label dataset.
type Metadata struct {
	NumUnits      uint32 `json:"NumUnits"`
	LabelsPerUnit uint64 `json:"LabelsPerUnit"`
	MaxFileSize   uint64 `json:"MaxFileSize"`
}

// NumLabels returns the total number of labels across all storage units.
func (m *Metadata) NumLabels() uint64 {
	return uint64(m.NumUnits) * m.LabelsPerUnit
}

// Load reads postdata_metadata.json from path. A missing or malformed file
// is fatal to a proving run, matching the MetadataLoad error class.
func Load(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("metadata load %s: %w", path, err)
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("metadata load %s: %w", path, err)
	}
	if m.NumUnits == 0 {
		return nil, fmt.Errorf("metadata load %s: num_units must be > 0", path)
	}
	if m.LabelsPerUnit == 0 {
		return nil, fmt.Errorf("metadata load %s: labels_per_unit must be > 0", path)
	}
	return &m, nil
}
