package prospector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_NoAPIKey(t *testing.T) {
	for _, key := range []string{"", "   "} {
		if _, err := New(key); err == nil {
			t.Errorf("New(%q): expected error", key)
		}
	}
}

func TestClientOptions(t *testing.T) {
	hc := &http.Client{}
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &clientConfig{}
	for _, o := range []Option{
		WithBaseURL("http://localhost:9999"),
		WithDefaultSize(25),
		WithHTTPClient(hc),
		WithTimeout(5 * time.Second),
		WithRateLimit(10, 3),
		WithRedisCache("localhost:6379", "pw", time.Hour),
		WithLogger(logger),
		WithPrometheus(reg),
	} {
		o.apply(cfg)
	}

	if cfg.baseURL != "http://localhost:9999" || cfg.defaultSize != 25 || cfg.httpClient != hc {
		t.Errorf("transport options not applied: %+v", cfg)
	}
	if cfg.timeout != 5*time.Second || cfg.rateLimit != 10 || cfg.burst != 3 {
		t.Errorf("throttle options not applied: %+v", cfg)
	}
	if len(cfg.cacheAddrs) != 1 || cfg.cachePassword != "pw" || cfg.cacheTTL != time.Hour {
		t.Errorf("cache options not applied: %+v", cfg)
	}
	if cfg.logger != logger || cfg.metricsReg != reg {
		t.Error("observability options not applied")
	}
}

func TestClient_Close_NoCache(t *testing.T) {
	c, err := New("key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Close()
}

func TestObserver_NilSafe(t *testing.T) {
	var o *observer
	o.observe("test", time.Now(), nil)
	if o.cacheCounter() != nil {
		t.Error("nil observer must not expose a cache counter")
	}
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	obs, err := newObserver(logger, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obs.observe("search_people", time.Now(), nil, "returned", 3)
	obs.observe("search_people", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("search_people", "ok")); got != 1 {
		t.Errorf("ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("search_people", "error")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
	if !strings.Contains(buf.String(), "returned=3") || !strings.Contains(buf.String(), "error=boom") {
		t.Errorf("log output = %s", buf.String())
	}
	if obs.cacheCounter() == nil {
		t.Error("expected cache counter")
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second registration failed: %v", err)
	}
	if first.metrics.operations != second.metrics.operations {
		t.Error("expected the registered collector to be reused")
	}
}

// upstreamStub serves canned upstream responses and records the last request.
type upstreamStub struct {
	t       *testing.T
	lastKey string
	lastURL string
	body    map[string]any
}

func (s *upstreamStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.lastKey = r.Header.Get("X-Api-Key")
	s.lastURL = r.URL.String()
	s.body = nil
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&s.body); err != nil {
			s.t.Errorf("decode upstream body: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-RateLimit-Remaining", "41")
	w.Header().Set("X-RateLimit-Limit", "50")
	switch r.URL.Path {
	case "/person/search":
		_, _ = io.WriteString(w, `{"status":200,"total":2,"scroll_token":"p2","data":[
			{"id":"p1","first_name":"Jane","last_name":"Doe","location_locality":"Austin","location_region":"TX"},
			{"full_name":"John Roe","emails":[{"address":"john@x.io"}]}
		]}`)
	case "/company/enrich":
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"status":404,"error":{"type":"not_found","message":"No records were found"}}`)
	case "/person/enrich":
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = io.WriteString(w, `{"status":402,"error":{"message":"out of credits"}}`)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func TestClient_EndToEnd(t *testing.T) {
	stub := &upstreamStub{t: t}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	reg := prometheus.NewRegistry()
	c, err := New("secret", WithBaseURL(srv.URL+"/"), WithDefaultSize(5), WithPrometheus(reg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ctx, credits := WithCreditTracking(context.Background())
	page, err := c.SearchPeople(ctx, PersonFilter{Country: "united states", Skills: []string{"go"}}, Page{})
	if err != nil {
		t.Fatalf("SearchPeople: %v", err)
	}

	if stub.lastKey != "secret" {
		t.Errorf("api key = %q", stub.lastKey)
	}
	if stub.body["sql"] != "SELECT * FROM person WHERE location_country='united states' AND (skills='go')" {
		t.Errorf("sql = %v", stub.body["sql"])
	}
	if stub.body["size"] != float64(5) || stub.body["titlecase"] != true {
		t.Errorf("body = %v", stub.body)
	}

	if page.Total != 2 || page.ScrollToken == nil || *page.ScrollToken != "p2" || len(page.Candidates) != 2 {
		t.Fatalf("page = %+v", page)
	}
	jane := page.Candidates[0]
	if jane.FullName != "Jane Doe" || jane.LocationName != "Austin, TX" {
		t.Errorf("candidate = %+v", jane)
	}
	john := page.Candidates[1]
	if !strings.HasPrefix(john.ID, "pdl_") || len(john.Emails) != 1 || john.Emails[0] != "john@x.io" {
		t.Errorf("candidate = %+v", john)
	}
	if !credits.Known || credits.Remaining != 41 || credits.Limit != 50 {
		t.Errorf("credits = %+v", credits)
	}

	// A miss is an empty match, not an error.
	cm, err := c.EnrichCompany(context.Background(), CompanyLookup{Website: "nope.io"})
	if err != nil || cm.Company != nil {
		t.Errorf("EnrichCompany = %+v, %v", cm, err)
	}
	if stub.lastURL != "/company/enrich?website=nope.io" {
		t.Errorf("url = %q", stub.lastURL)
	}

	_, err = c.EnrichPerson(context.Background(), PersonLookup{Email: "jane@x.io"})
	if !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("expected ErrPaymentRequired, got %v", err)
	}
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Status != http.StatusPaymentRequired || ue.Message != "out of credits" {
		t.Errorf("upstream error = %+v", ue)
	}

	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("enrich_person", "error")); got != 1 {
		t.Errorf("enrich_person errors = %v, want 1", got)
	}
}

func TestClient_InvalidInputNeverCallsUpstream(t *testing.T) {
	stub := &upstreamStub{t: t}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	c, err := New("secret", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.EnrichPerson(context.Background(), PersonLookup{Name: "Jane Doe"}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("EnrichPerson error = %v", err)
	}
	if _, err := c.BulkEnrichPeople(context.Background(), nil); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("BulkEnrichPeople error = %v", err)
	}
	if stub.lastURL != "" {
		t.Errorf("upstream called: %s", stub.lastURL)
	}
}

func TestClient_TransportWarningsReachLogger(t *testing.T) {
	stub := &upstreamStub{t: t}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	c, err := New("secret", WithBaseURL(srv.URL), WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.EnrichPerson(context.Background(), PersonLookup{Email: "jane@x.io"}); err == nil {
		t.Fatal("expected an upstream error")
	}

	out := buf.String()
	if !strings.Contains(out, `"msg":"Upstream returned error status"`) {
		t.Errorf("transport warning missing: %s", out)
	}
	if !strings.Contains(out, `"status":402`) || !strings.Contains(out, `"message":"out of credits"`) {
		t.Errorf("transport warning fields missing: %s", out)
	}
}
