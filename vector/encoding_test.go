package vector

import (
	"math"
	"testing"
)

func TestVectorEncodingRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		vector []float64
	}{
		{name: "simple vector", vector: []float64{1.0, 2.0, 3.0}},
		{name: "negative and fractional", vector: []float64{-0.25, 1e-12, 3.14159265358979}},
		{name: "empty vector", vector: []float64{}},
		{name: "extremes", vector: []float64{math.MaxFloat64, -math.MaxFloat64, math.SmallestNonzeroFloat64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := EncodeVector(tt.vector)
			got, err := DecodeVector(blob)
			if err != nil {
				t.Fatalf("DecodeVector failed: %v", err)
			}
			if len(got) != len(tt.vector) {
				t.Fatalf("length = %d, want %d", len(got), len(tt.vector))
			}
			for i := range got {
				if got[i] != tt.vector[i] {
					t.Errorf("component %d = %v, want %v", i, got[i], tt.vector[i])
				}
			}
		})
	}
}

func TestDecodeVectorInvalid(t *testing.T) {
	if _, err := DecodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("DecodeVector accepted a blob that is not a multiple of 8 bytes")
	}
}
