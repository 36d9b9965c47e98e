package metrics

import (
	"strings"
	"testing"
)

func TestRenderContainsAllSeries(t *testing.T) {
	IncAnalysisJobsReceived()
	IncAnalysisJobsCompleted()
	IncAnalysisJobsFailed()
	IncAnalysisJobsDropped()
	ObserveAnalysisDurationMs(150)

	out := Render()
	for _, name := range []string{
		"analysis_jobs_received_total",
		"analysis_jobs_completed_total",
		"analysis_jobs_failed_total",
		"analysis_jobs_dropped_total",
		"analysis_duration_ms_bucket",
		"analysis_duration_ms_sum",
		"analysis_duration_ms_count",
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("missing series %s in output:\n%s", name, out)
		}
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100, 1000})
	h.Observe(5)
	h.Observe(50)
	h.Observe(5000)

	snap := h.Snapshot()
	if snap.count != 3 {
		t.Fatalf("expected count 3, got %d", snap.count)
	}
	// Raw counts are per bucket; cumulation happens at render time.
	if snap.counts[0] != 1 || snap.counts[1] != 1 || snap.counts[2] != 0 {
		t.Fatalf("unexpected bucket counts: %v", snap.counts)
	}

	out := Render()
	if !strings.Contains(out, `le="+Inf"`) {
		t.Fatalf("missing +Inf bucket:\n%s", out)
	}
}
