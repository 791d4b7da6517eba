package result

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/signalnine/htmbench/internal/config"
)

const stampLayout = "06-01-02_15-04-05"

// CreateRunDir creates runs/<stamp>_<id>, where id is the first eight
// characters of runID, and points latest at it.
func CreateRunDir(baseDir, runID string) (string, error) {
	return createRunDirAt(baseDir, runID, time.Now())
}

func createRunDirAt(baseDir, runID string, now time.Time) (string, error) {
	name := now.Format(stampLayout)
	if runID != "" {
		name += "_" + runID[:min(8, len(runID))]
	}
	runsDir := filepath.Join(baseDir, "runs")
	runDir := filepath.Join(runsDir, name)
	runDir, err := filepath.Abs(runDir)
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(runDir, latest); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return runDir, nil
}

func ExperimentDir(runDir, experiment string) string {
	return filepath.Join(runDir, experiment)
}

func PlotPath(runDir, experiment string) string {
	return filepath.Join(runDir, experiment+".png")
}

func DBPath(runDir string) string {
	return filepath.Join(runDir, "results.db")
}

func WriteManifest(runDir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(runDir, "manifest.json"), data, 0o644)
}

func ReadManifest(runDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(runDir, "manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// WriteConfigDump writes the four config sections of an experiment, one per
// line: general, env, htmrl (or None), eps (or None).
func WriteConfigDump(expDir string, exp *config.Experiment) error {
	pooling, eps := "None", "None"
	if exp.Pooling != nil {
		pooling = fmt.Sprintf("%+v", *exp.Pooling)
	}
	if exp.Eps != nil {
		eps = fmt.Sprintf("%+v", *exp.Eps)
	}
	dump := fmt.Sprintf("%+v\n%+v\n%s\n%s", exp.General, exp.Env, pooling, eps)
	return os.WriteFile(filepath.Join(expDir, "config"), []byte(dump), 0o644)
}

// WriteCurveCSV writes a step,avg_reward table.
func WriteCurveCSV(path string, curve []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating curve file: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"step", "avg_reward"}); err != nil {
		return err
	}
	for i, v := range curve {
		if err := w.Write([]string{strconv.Itoa(i), strconv.FormatFloat(v, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing curve file: %w", err)
	}
	return f.Close()
}

func ReadCurveCSV(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading curve file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("curve file %s has no header", path)
	}
	curve := make([]float64, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != 2 {
			return nil, fmt.Errorf("curve file %s: expected 2 columns, got %d", path, len(row))
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("curve file %s: %w", path, err)
		}
		curve = append(curve, v)
	}
	return curve, nil
}

// RawSink appends an algorithm's per-trial output as JSON lines.
type RawSink struct {
	f   *os.File
	w   *bufio.Writer
	enc *json.Encoder
}

func CreateRawSink(path string) (*RawSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating raw output: %w", err)
	}
	w := bufio.NewWriter(f)
	return &RawSink{f: f, w: w, enc: json.NewEncoder(w)}, nil
}

func (s *RawSink) WriteRewards(trial int, rewards []float64) error {
	return s.write(trial, FieldRewards, rewards)
}

func (s *RawSink) WriteActions(trial int, actions []int) error {
	return s.write(trial, FieldActions, actions)
}

func (s *RawSink) WriteDebug(trial int, debug any) error {
	return s.write(trial, FieldDebug, debug)
}

func (s *RawSink) write(trial int, field string, v any) error {
	if s.f == nil {
		return errors.New("raw sink is closed")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", field, err)
	}
	if err := s.enc.Encode(RawRecord{Trial: trial, Field: field, Data: data}); err != nil {
		return err
	}
	// Flush per record so a trial's output is on disk before the next starts.
	return s.w.Flush()
}

// Close flushes and closes the file. Closing twice is a no-op.
func (s *RawSink) Close() error {
	if s.f == nil {
		return nil
	}
	f := s.f
	s.f = nil
	if err := s.w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ReadRawRecords(path string) ([]RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading raw output: %w", err)
	}
	defer f.Close()
	var records []RawRecord
	dec := json.NewDecoder(f)
	for dec.More() {
		var r RawRecord
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("parsing raw output %s: %w", path, err)
		}
		records = append(records, r)
	}
	return records, nil
}
