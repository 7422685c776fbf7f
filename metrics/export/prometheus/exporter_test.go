package prometheus

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goShield "github.com/MrEthical07/goShield"
)

type fakeSource struct {
	snapshot goShield.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goShield.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                      { return f.dropped }

func scrape(t testing.TB, exp *PrometheusExporter) (string, *http.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)
	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body), res
}

func TestScrapeEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goShield.MetricsSnapshot{
			Counters:   map[goShield.MetricID]uint64{},
			Histograms: map[goShield.MetricID][]uint64{},
		},
	})

	if got, _ := scrape(t, exp); strings.Contains(got, "goshield_") {
		t.Fatalf("expected no series for disabled metrics, got:\n%s", got)
	}
}

func TestScrapeIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goShield.MetricsSnapshot{
			Counters: map[goShield.MetricID]uint64{
				goShield.MetricLoginSuccess: 7,
			},
			Histograms: map[goShield.MetricID][]uint64{
				goShield.MetricValidateLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out, res := scrape(t, exp)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if got := res.Header.Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	for _, want := range []string{
		"goshield_login_success_total 7",
		"goshield_login_failure_total 0",
		`goshield_validate_latency_seconds_bucket{le="0.005"} 1`,
		`goshield_validate_latency_seconds_bucket{le="0.5"} 28`,
		`goshield_validate_latency_seconds_bucket{le="+Inf"} 36`,
		"goshield_validate_latency_seconds_count 36",
		"goshield_audit_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestCollectorGathersFromEngine(t *testing.T) {
	cfg := goShield.DefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.RateLimit.Limit = 1
	engine, err := goShield.New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	_ = engine.Admit(ctx, "198.51.100.1")
	_ = engine.Admit(ctx, "198.51.100.1")

	families, err := NewPrometheusExporter(engine).Registry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	values := map[string]float64{}
	for _, mf := range families {
		if len(mf.GetMetric()) == 1 && mf.GetMetric()[0].GetCounter() != nil {
			values[mf.GetName()] = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	if values["goshield_admission_allowed_total"] != 1 || values["goshield_admission_rejected_total"] != 1 {
		t.Fatalf("unexpected admission counters %v", values)
	}
}

func BenchmarkScrape(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goShield.MetricsSnapshot{
			Counters: map[goShield.MetricID]uint64{
				goShield.MetricLoginSuccess:      1000,
				goShield.MetricLoginFailure:      40,
				goShield.MetricRefreshSuccess:    800,
				goShield.MetricRefreshFailure:    10,
				goShield.MetricSessionCreated:    800,
				goShield.MetricSessionRevoked:    20,
				goShield.MetricAdmissionRejected: 3,
			},
			Histograms: map[goShield.MetricID][]uint64{
				goShield.MetricValidateLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = scrape(b, exp)
	}
}
