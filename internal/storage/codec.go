package storage

import (
	"encoding/json"
	"fmt"
)

func EncodeCurve(curve []float64) ([]byte, error) {
	if curve == nil {
		curve = []float64{}
	}
	return json.Marshal(curve)
}

func DecodeCurve(data []byte) ([]float64, error) {
	var curve []float64
	if err := json.Unmarshal(data, &curve); err != nil {
		return nil, fmt.Errorf("decode curve: %w", err)
	}
	return curve, nil
}
