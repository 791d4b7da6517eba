// Package decoder collapses a sparse column encoding into a single action by
// splitting the encoding's value domain into equal-width buckets, one per
// action, and returning the bucket that holds the most values.
package decoder

import (
	"errors"
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/floats"
)

var ErrInvalidEncoding = errors.New("invalid encoding")

// Decode maps encoding to an action in [0, k). Values are bucketed by
// floor(v / (maxValue/k)); ties go to the lowest bucket.
func Decode(encoding []float64, k int, maxValue float64) (int, error) {
	counts, err := Counts(encoding, k, maxValue)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(counts), nil
}

// Counts returns the number of encoding values falling in each of the k
// buckets. Values at or past maxValue land in the last bucket.
func Counts(encoding []float64, k int, maxValue float64) ([]float64, error) {
	if len(encoding) == 0 {
		return nil, fmt.Errorf("%w: empty encoding", ErrInvalidEncoding)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: action count %d", ErrInvalidEncoding, k)
	}
	if maxValue <= 0 || math.IsNaN(maxValue) {
		return nil, fmt.Errorf("%w: domain max %v", ErrInvalidEncoding, maxValue)
	}
	width := maxValue / float64(k)
	counts := make([]float64, k)
	for _, v := range encoding {
		counts[Bucket(v, width, k)]++
	}
	return counts, nil
}

// Bucket returns the bucket index of v for the given width, clamped to
// [0, k).
func Bucket(v, width float64, k int) int {
	b := int(math.Floor(v / width))
	if b >= k {
		return k - 1
	}
	if b < 0 {
		return 0
	}
	return b
}

// Decoder carries the domain shared with the pooler that produces the
// encodings, plus an optional periodic trace of bucket counts.
type Decoder struct {
	Max         float64
	SampleEvery int
	Logger      *log.Logger
}

// Decode is Decode with the decoder's domain. step only drives tracing.
func (d *Decoder) Decode(encoding []float64, k, step int) (int, error) {
	counts, err := Counts(encoding, k, d.Max)
	if err != nil {
		return 0, err
	}
	if d.SampleEvery > 0 && step%d.SampleEvery == 0 {
		logger := d.Logger
		if logger == nil {
			logger = log.Default()
		}
		logger.Printf("step %d: bucket counts %v", step, counts)
	}
	return floats.MaxIdx(counts), nil
}
