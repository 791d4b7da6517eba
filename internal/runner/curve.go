package runner

// Window is the trailing window of the smoothed reward curve.
const Window = 100

// Smooth returns the trailing moving average of rewards. Entry t averages
// rewards[max(0, t-Window+1) .. t].
func Smooth(rewards []float64) []float64 {
	out := make([]float64, len(rewards))
	var sum float64
	for t, r := range rewards {
		sum += r
		n := t + 1
		if t >= Window {
			sum -= rewards[t-Window]
			n = Window
		}
		out[t] = sum / float64(n)
	}
	return out
}

// Fold returns the running mean after folding curve in as the i-th
// (0-indexed) sample: (i*acc + curve) / (i+1). A nil acc counts as zeros.
// acc is not modified.
func Fold(acc, curve []float64, i int) []float64 {
	out := make([]float64, len(curve))
	w := float64(i)
	for t, c := range curve {
		var a float64
		if t < len(acc) {
			a = acc[t]
		}
		out[t] = (w*a + c) / (w + 1)
	}
	return out
}
