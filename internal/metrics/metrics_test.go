// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRecordAPIRequest(t *testing.T) {
	before := counterValue(t, APIRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200"))

	RecordAPIRequest("GET", "/api/v1/health", 200, 25*time.Millisecond)

	after := counterValue(t, APIRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200"))
	if after != before+1 {
		t.Errorf("APIRequestsTotal = %v, want %v", after, before+1)
	}
}

func TestRecordUpstream(t *testing.T) {
	okBefore := counterValue(t, UpstreamRequests.WithLabelValues("vectorstore", "ok"))
	errBefore := counterValue(t, UpstreamRequests.WithLabelValues("vectorstore", "error"))

	RecordUpstream("vectorstore", nil)
	RecordUpstream("vectorstore", errTest)

	if got := counterValue(t, UpstreamRequests.WithLabelValues("vectorstore", "ok")); got != okBefore+1 {
		t.Errorf("ok outcome = %v, want %v", got, okBefore+1)
	}
	if got := counterValue(t, UpstreamRequests.WithLabelValues("vectorstore", "error")); got != errBefore+1 {
		t.Errorf("error outcome = %v, want %v", got, errBefore+1)
	}
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "test error" }

func TestRecordEngineStage(t *testing.T) {
	// Histograms panic on unknown labels; this exercises the known set.
	for _, stage := range []string{"seed", "expand", "fuse", "total"} {
		RecordEngineStage(stage, time.Millisecond)
	}
}
