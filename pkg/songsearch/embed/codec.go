package embed

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes a vector as a JSON array of numbers, the on-disk
// representation of a stored embedding.
func Marshal(vec []float32) (string, error) {
	b, err := json.Marshal(vec)
	if err != nil {
		return "", fmt.Errorf("marshal embedding: %w", err)
	}
	return string(b), nil
}

// Unmarshal decodes a JSON array produced by Marshal.
func Unmarshal(s string) ([]float32, error) {
	var vec []float32
	if err := json.Unmarshal([]byte(s), &vec); err != nil {
		return nil, fmt.Errorf("unmarshal embedding: %w", err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("unmarshal embedding: %w", ErrEmptyInput)
	}
	return vec, nil
}
