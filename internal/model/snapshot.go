package model

import "time"

// SnapshotVersion is the snapshot format written by Export.
const SnapshotVersion = 1

// Snapshot is the complete exportable state of the catalog.
type Snapshot struct {
	ExportedAt  time.Time      `json:"exportedAt"`
	Calculators []Definition   `json:"calculators"`
	Formulas    GlobalFormulas `json:"seoFormulas"`
	Version     int            `json:"version"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Calculators = make([]Definition, len(s.Calculators))
	for i, def := range s.Calculators {
		out.Calculators[i] = def.Clone()
	}
	return out
}
