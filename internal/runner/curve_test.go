package runner_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/signalnine/htmbench/internal/runner"
)

func approxEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestSmoothConstant(t *testing.T) {
	rewards := make([]float64, 150)
	for i := range rewards {
		rewards[i] = 1
	}
	for i, v := range runner.Smooth(rewards) {
		if math.Abs(v-1) > 1e-12 {
			t.Fatalf("Smooth()[%d] = %v, want 1", i, v)
		}
	}
}

func TestSmoothWindow(t *testing.T) {
	rewards := make([]float64, 250)
	for i := range rewards {
		rewards[i] = float64(i)
	}
	got := runner.Smooth(rewards)
	for _, tt := range []int{0, 1, 50, 99, 100, 101, 249} {
		lo := 0
		if tt >= runner.Window {
			lo = tt - runner.Window + 1
		}
		var sum float64
		for i := lo; i <= tt; i++ {
			sum += rewards[i]
		}
		want := sum / float64(tt-lo+1)
		if math.Abs(got[tt]-want) > 1e-9 {
			t.Errorf("Smooth()[%d] = %v, want %v", tt, got[tt], want)
		}
	}
}

func TestSmoothEmpty(t *testing.T) {
	if got := runner.Smooth(nil); len(got) != 0 {
		t.Errorf("expected empty curve, got %v", got)
	}
}

func TestFoldIsRunningMean(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	const n, steps = 6, 20
	curves := make([][]float64, n)
	var acc []float64
	for i := 0; i < n; i++ {
		curves[i] = make([]float64, steps)
		for t := range curves[i] {
			curves[i][t] = rng.NormFloat64()
		}
		acc = runner.Fold(acc, curves[i], i)

		mean := make([]float64, steps)
		for j := 0; j <= i; j++ {
			for t := range mean {
				mean[t] += curves[j][t] / float64(i+1)
			}
		}
		if !approxEqual(acc, mean) {
			t.Fatalf("after %d curves running average %v != mean %v", i+1, acc, mean)
		}
	}
}

func TestFoldDoesNotMutate(t *testing.T) {
	acc := []float64{1, 1}
	_ = runner.Fold(acc, []float64{3, 3}, 1)
	if acc[0] != 1 || acc[1] != 1 {
		t.Errorf("Fold modified its accumulator: %v", acc)
	}
}
