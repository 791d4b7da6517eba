package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/signalnine/htmbench/internal/result"
	"github.com/signalnine/htmbench/internal/storage"
)

// AlgorithmSummary condenses one final running-average curve.
type AlgorithmSummary struct {
	Experiment string  `json:"experiment"`
	Algorithm  string  `json:"algorithm"`
	Label      string  `json:"label"`
	Repeats    int     `json:"repeats"`
	Steps      int     `json:"steps"`
	Final      float64 `json:"final_reward"`
	Mean       float64 `json:"mean_reward"`
	Best       float64 `json:"best_reward"`
}

// Generate summarizes a finished run directory. Curves come from the run's
// SQLite store when it has one, and from the per-algorithm CSV files otherwise.
func Generate(ctx context.Context, runDir, format string, w io.Writer) error {
	records, err := collectCurves(ctx, runDir)
	if err != nil {
		return err
	}
	return write(Summarize(records), format, w)
}

// FromStore summarizes the curves a store holds for runID.
func FromStore(ctx context.Context, store storage.Store, runID, format string, w io.Writer) error {
	records, err := store.Curves(ctx, runID)
	if err != nil {
		return fmt.Errorf("reading curves: %w", err)
	}
	return write(Summarize(records), format, w)
}

func collectCurves(ctx context.Context, runDir string) ([]storage.CurveRecord, error) {
	manifest, err := result.ReadManifest(runDir)
	if err != nil {
		return nil, err
	}
	dbPath := result.DBPath(runDir)
	if manifest.Store == "sqlite" {
		if _, err := os.Stat(dbPath); err == nil {
			store := storage.NewSQLiteStore(dbPath)
			if err := store.Init(ctx); err != nil {
				return nil, fmt.Errorf("opening %s: %w", dbPath, err)
			}
			defer store.Close()
			records, err := store.Curves(ctx, manifest.RunID)
			if err != nil {
				return nil, fmt.Errorf("reading curves: %w", err)
			}
			return records, nil
		}
	}
	return collectCSVCurves(runDir, manifest)
}

func collectCSVCurves(runDir string, manifest *result.Manifest) ([]storage.CurveRecord, error) {
	var records []storage.CurveRecord
	for _, exp := range manifest.Experiments {
		expDir := result.ExperimentDir(runDir, exp)
		err := filepath.WalkDir(expDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".csv" {
				return nil
			}
			curve, err := result.ReadCurveCSV(path)
			if err != nil {
				return err
			}
			name := strings.TrimSuffix(d.Name(), ".csv")
			repeats := 0
			if raw, err := result.ReadRawRecords(filepath.Join(expDir, name)); err == nil {
				repeats = len(raw) / 3
			}
			label := manifest.Labels[name]
			if label == "" {
				label = name
			}
			records = append(records, storage.CurveRecord{
				RunID:      manifest.RunID,
				Experiment: exp,
				Algorithm:  name,
				Label:      label,
				Steps:      len(curve),
				Repeats:    repeats,
				Curve:      curve,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Summarize keeps the input order, which is the order curves were recorded in.
func Summarize(records []storage.CurveRecord) []AlgorithmSummary {
	summaries := make([]AlgorithmSummary, 0, len(records))
	for _, r := range records {
		s := AlgorithmSummary{
			Experiment: r.Experiment,
			Algorithm:  r.Algorithm,
			Label:      r.Label,
			Repeats:    r.Repeats,
			Steps:      r.Steps,
		}
		if len(r.Curve) > 0 {
			s.Final = r.Curve[len(r.Curve)-1]
			s.Mean = stat.Mean(r.Curve, nil)
			s.Best = floats.Max(r.Curve)
		}
		summaries = append(summaries, s)
	}
	return summaries
}

func write(summaries []AlgorithmSummary, format string, w io.Writer) error {
	switch format {
	case "markdown":
		return writeMarkdown(summaries, w)
	case "json":
		return writeJSON(summaries, w)
	default:
		return writeTable(summaries, w)
	}
}

func writeTable(summaries []AlgorithmSummary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EXPERIMENT\tALGORITHM\tREPEATS\tSTEPS\tFINAL\tMEAN\tBEST")
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.3f\t%.3f\t%.3f\n",
			s.Experiment, s.Label, s.Repeats, s.Steps, s.Final, s.Mean, s.Best)
	}
	return tw.Flush()
}

func writeMarkdown(summaries []AlgorithmSummary, w io.Writer) error {
	fmt.Fprintln(w, "| Experiment | Algorithm | Repeats | Steps | Final | Mean | Best |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|")
	for _, s := range summaries {
		fmt.Fprintf(w, "| %s | %s | %d | %d | %.3f | %.3f | %.3f |\n",
			s.Experiment, s.Label, s.Repeats, s.Steps, s.Final, s.Mean, s.Best)
	}
	return nil
}

func writeJSON(summaries []AlgorithmSummary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
