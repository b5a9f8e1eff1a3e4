package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetMetrics_singleton(t *testing.T) {
	m1 := GetMetrics()
	m2 := GetMetrics()
	require.NotNil(t, m1)
	require.Same(t, m1, m2)
	require.NotNil(t, m1.ExportsTotal)
	require.NotNil(t, m1.OrgCodeConflictsTotal)
}

func TestSampler(t *testing.T) {
	tests := []struct {
		name     string
		ratio    float64
		contains string
	}{
		{name: "zero samples everything", ratio: 0, contains: "AlwaysOnSampler"},
		{name: "one samples everything", ratio: 1, contains: "AlwaysOnSampler"},
		{name: "fraction uses ratio", ratio: 0.25, contains: "TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Contains(t, sampler(tt.ratio).Description(), tt.contains)
		})
	}
}
