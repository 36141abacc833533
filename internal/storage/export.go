package storage

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/verletlab/internal/sim"
)

type ExportData struct {
	Run    RunMetadata    `json:"run"`
	Frames []sim.Snapshot `json:"frames"`
}

// ExportJSON writes a run's metadata and snapshots as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Frames: frames})
}

// ExportCSV copies a run's frames.csv to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	return s.copyFile(w, runID, framesFile)
}

func (s *Store) copyFile(w io.Writer, runID, name string) error {
	f, err := os.Open(filepath.Join(s.Dir(runID), name))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
