package vector

import "testing"

func TestScorePasses(t *testing.T) {
	tests := []struct {
		name      string
		metric    Metric
		score     float64
		threshold float64
		want      bool
	}{
		{"cosine above", MetricCosine, 0.8, 0.5, true},
		{"cosine below", MetricCosine, 0.2, 0.5, false},
		{"cosine at threshold is kept", MetricCosine, 0.5, 0.5, true},
		{"dotproduct above", MetricDotProduct, 3, 1, true},
		{"dotproduct below", MetricDotProduct, 0.5, 1, false},
		{"euclidean lower is better", MetricEuclidean, 0.2, 0.5, true},
		{"euclidean above cutoff", MetricEuclidean, 0.9, 0.5, false},
		{"euclidean at threshold is kept", MetricEuclidean, 0.5, 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scorePasses(tt.metric, tt.score, tt.threshold); got != tt.want {
				t.Errorf("scorePasses(%s, %v, %v) = %v, want %v", tt.metric, tt.score, tt.threshold, got, tt.want)
			}
		})
	}
}
