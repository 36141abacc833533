package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/verletlab/internal/config"
	"github.com/san-kum/verletlab/internal/sim"
	"github.com/san-kum/verletlab/internal/verlet"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	linksFile    = "links.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scene     string             `json:"scene"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      uint64             `json:"seed"`
	FPS       float64            `json:"fps"`
	SubSteps  int                `json:"sub_steps"`
	Frames    int                `json:"frames"`
	Snapshots int                `json:"snapshots"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Elapsed   float64            `json:"elapsed_seconds"`
	Errors    int                `json:"errors"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", result.Scene, time.Now().UnixNano())
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Scene:     result.Scene,
		Timestamp: time.Now(),
		Seed:      cfg.Seed,
		FPS:       cfg.FPS,
		SubSteps:  cfg.Solver.SubSteps,
		Frames:    result.FramesRun,
		Snapshots: len(result.Frames),
		Width:     cfg.World.Width,
		Height:    cfg.World.Height,
		Elapsed:   result.Elapsed.Seconds(),
		Errors:    len(result.Errors),
		Metrics:   result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result.Frames); err != nil {
		return "", err
	}
	if err := writeLinks(filepath.Join(runDir, linksFile), result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFrames(path string, frames []sim.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frame", "time", "index", "x", "y", "radius", "status", "color"}); err != nil {
		return err
	}
	for _, snap := range frames {
		frame := strconv.Itoa(snap.Frame)
		t := strconv.FormatFloat(snap.Time, 'f', 6, 64)
		for i, p := range snap.Particles {
			row := []string{
				frame,
				t,
				strconv.Itoa(i),
				strconv.FormatFloat(p.X, 'f', 4, 64),
				strconv.FormatFloat(p.Y, 'f', 4, 64),
				strconv.FormatFloat(p.Radius, 'f', 4, 64),
				p.Status.String(),
				fmt.Sprintf("%08x", p.Color),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func writeLinks(path string, frames []sim.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frame", "a", "b"}); err != nil {
		return err
	}
	for _, snap := range frames {
		frame := strconv.Itoa(snap.Frame)
		for _, l := range snap.Links {
			if err := w.Write([]string{frame, strconv.Itoa(l.A), strconv.Itoa(l.B)}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFrames reads back the recorded snapshots of a run in frame order.
func (s *Store) LoadFrames(runID string) ([]sim.Snapshot, error) {
	records, err := readCSV(filepath.Join(s.Dir(runID), framesFile))
	if err != nil {
		return nil, err
	}

	var frames []sim.Snapshot
	byFrame := make(map[int]int)
	for line, rec := range records {
		if len(rec) < 7 {
			return nil, fmt.Errorf("%s line %d: expected 7+ fields, got %d", framesFile, line+2, len(rec))
		}
		frame, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", framesFile, line+2, err)
		}
		nums, err := parseFloats(rec[1], rec[3], rec[4], rec[5])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", framesFile, line+2, err)
		}
		status := verlet.Free
		if rec[6] == verlet.Suspended.String() {
			status = verlet.Suspended
		}
		var color uint64 = 0xf5f5f5ff
		if len(rec) > 7 {
			if c, err := strconv.ParseUint(rec[7], 16, 32); err == nil {
				color = c
			}
		}

		idx, ok := byFrame[frame]
		if !ok {
			idx = len(frames)
			byFrame[frame] = idx
			frames = append(frames, sim.Snapshot{Frame: frame, Time: nums[0]})
		}
		frames[idx].Particles = append(frames[idx].Particles, sim.ParticleState{
			X: nums[1], Y: nums[2], Radius: nums[3], Status: status, Color: uint32(color),
		})
	}

	links, err := readCSV(filepath.Join(s.Dir(runID), linksFile))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for line, rec := range links {
		if len(rec) < 3 {
			return nil, fmt.Errorf("%s line %d: expected 3 fields, got %d", linksFile, line+2, len(rec))
		}
		var v [3]int
		for i := range v {
			if v[i], err = strconv.Atoi(rec[i]); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", linksFile, line+2, err)
			}
		}
		if idx, ok := byFrame[v[0]]; ok {
			frames[idx].Links = append(frames[idx].Links, sim.LinkState{A: v[1], B: v[2]})
		}
	}

	sort.SliceStable(frames, func(i, j int) bool { return frames[i].Frame < frames[j].Frame })
	return frames, nil
}

// readCSV returns every record after the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

func parseFloats(fields ...string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
