package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/signalnine/htmbench/internal/config"
	"github.com/signalnine/htmbench/internal/result"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("HTMBENCH_TEST_MARKER=loaded\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("HTMBENCH_TEST_MARKER") })

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("loadEnvFile: %v", err)
	}
	if got := os.Getenv("HTMBENCH_TEST_MARKER"); got != "loaded" {
		t.Errorf("HTMBENCH_TEST_MARKER = %q, want loaded", got)
	}
	if err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected error for missing explicit env file")
	}
}

func TestRunCommandEndToEnd(t *testing.T) {
	resultsDir := t.TempDir()
	t.Setenv("HTMBENCH_RESULTS_DIR", resultsDir)

	root := NewRootCmd()
	root.SetArgs([]string{"run", "--config", "../testdata/minimal.yaml", "--steps", "20"})
	if err := root.Execute(); err != nil {
		t.Fatalf("run: %v", err)
	}

	runDir, err := filepath.EvalSymlinks(filepath.Join(resultsDir, "latest"))
	if err != nil {
		t.Fatalf("resolving latest: %v", err)
	}
	manifest, err := result.ReadManifest(runDir)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if manifest.RunID == "" || len(manifest.Experiments) != 1 || manifest.Store != "sqlite" {
		t.Errorf("unexpected manifest: %+v", manifest)
	}
	if manifest.Labels["random"] != "random" {
		t.Errorf("expected random label in manifest, got %v", manifest.Labels)
	}
	for _, p := range []string{result.DBPath(runDir), result.PlotPath(runDir, "baseline"), filepath.Join(runDir, "baseline", "random.csv")} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}

	root = NewRootCmd()
	root.SetArgs([]string{"report", runDir, "--format", "json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("report: %v", err)
	}
}

func TestRunRejectsUnknownEnvBeforeRunning(t *testing.T) {
	resultsDir := filepath.Join(t.TempDir(), "out")
	t.Setenv("HTMBENCH_RESULTS_DIR", resultsDir)

	cfgPath := filepath.Join(t.TempDir(), "htmbench.yaml")
	doc := `
general: {steps: 10, repeats: 1}
env: {name: Bandit}
algorithms:
  random:
experiments:
  - good:
  - bad:
      env:
        name: Nowhere
`
	if err := os.WriteFile(cfgPath, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	root := NewRootCmd()
	root.SetArgs([]string{"run", "--config", cfgPath})
	if err := root.Execute(); !errors.Is(err, config.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if _, err := os.Stat(resultsDir); !os.IsNotExist(err) {
		t.Errorf("expected no results directory, stat returned %v", err)
	}
}
