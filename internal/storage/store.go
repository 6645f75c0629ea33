package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/vec"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var framesHeader = []string{"time", "index", "x", "y", "vx", "vy", "mass", "pinned"}

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	G         float64            `json:"g"`
	Policy    string             `json:"policy"`
	Bodies    int                `json:"bodies"`
	Steps     int                `json:"steps"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run directory with its metadata and every sampled frame.
func (s *Store) Save(sc *config.Scenario, result *sim.Result) (string, error) {
	ts := s.now()
	name := sc.Name
	if name == "" {
		name = "run"
	}
	runID := fmt.Sprintf("%s_%d", name, ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Scenario:  sc.Name,
		Timestamp: ts,
		Seed:      sc.Seed,
		Dt:        sc.Dt,
		Duration:  sc.Duration,
		G:         sc.G,
		Policy:    sc.Collision,
		Bodies:    len(result.Final().Bodies),
		Steps:     result.StepsTaken,
		Metrics:   result.Metrics,
	}
	if meta.Policy == "" {
		meta.Policy = gravity.Merge.String()
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteFramesCSV(f, result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// WriteFramesCSV writes one row per body per frame.
func WriteFramesCSV(w io.Writer, frames []sim.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(framesHeader); err != nil {
		return err
	}

	for _, fr := range frames {
		for i, b := range fr.Bodies {
			row := []string{
				formatFloat(fr.Time),
				strconv.Itoa(i),
				formatFloat(b.Position.X),
				formatFloat(b.Position.Y),
				formatFloat(b.Velocity.X),
				formatFloat(b.Velocity.Y),
				formatFloat(b.Mass),
				strconv.FormatBool(b.Pinned),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns every stored run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadFrames reads the frames of a run back, grouping rows by time.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(framesHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	frames := make([]sim.Frame, 0)
	for i := 1; i < len(records); i++ {
		t, b, err := parseRow(records[i])
		if err != nil {
			return nil, fmt.Errorf("frames.csv line %d: %w", i+1, err)
		}

		if n := len(frames); n == 0 || frames[n-1].Time != t {
			frames = append(frames, sim.Frame{Time: t})
		}
		last := &frames[len(frames)-1]
		last.Bodies = append(last.Bodies, b)
	}

	return frames, nil
}

func parseRow(rec []string) (float64, gravity.Body, error) {
	var vals [6]float64
	for i, col := range []int{0, 2, 3, 4, 5, 6} {
		v, err := strconv.ParseFloat(rec[col], 64)
		if err != nil {
			return 0, gravity.Body{}, err
		}
		vals[i] = v
	}
	pinned, err := strconv.ParseBool(rec[7])
	if err != nil {
		return 0, gravity.Body{}, err
	}

	return vals[0], gravity.Body{
		Position: vec.New(vals[1], vals[2]),
		Velocity: vec.New(vals[3], vals[4]),
		Mass:     vals[5],
		Pinned:   pinned,
	}, nil
}

type exportBody struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Mass   float64 `json:"mass"`
	Pinned bool    `json:"pinned,omitempty"`
}

type exportFrame struct {
	Time   float64      `json:"time"`
	Bodies []exportBody `json:"bodies"`
}

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Frames []exportFrame `json:"frames"`
}

// ExportJSON writes a run and its frames as one JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, frames []sim.Frame) error {
	data := ExportData{
		Run:    meta,
		Frames: make([]exportFrame, len(frames)),
	}

	for i, fr := range frames {
		ef := exportFrame{Time: fr.Time, Bodies: make([]exportBody, len(fr.Bodies))}
		for j, b := range fr.Bodies {
			ef.Bodies[j] = exportBody{
				X:      b.Position.X,
				Y:      b.Position.Y,
				VX:     b.Velocity.X,
				VY:     b.Velocity.Y,
				Mass:   b.Mass,
				Pinned: b.Pinned,
			}
		}
		data.Frames[i] = ef
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
