package pdl

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prospector/internal/domain"
	"github.com/kailas-cloud/prospector/internal/domain/bulk"
	"github.com/kailas-cloud/prospector/internal/domain/entity"
	"github.com/kailas-cloud/prospector/internal/domain/lookup"
	"github.com/kailas-cloud/prospector/internal/domain/search/predicate"
	"github.com/kailas-cloud/prospector/internal/domain/search/request"
	"github.com/kailas-cloud/prospector/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterUpstreamMetrics()
	os.Exit(m.Run())
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewClient(&Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
		Logger:  zap.NewNop(),
	})
}

func TestClient_SearchPeople(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/person/search" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("unexpected api key header: %q", r.Header.Get("X-Api-Key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":200,"data":[{"id":"a"}],"total":1}`)
	})

	p := predicate.New(predicate.Equals(predicate.FieldCountry, "Canada"))
	req, err := request.New(entity.Person, p, 5, "")
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}

	resp, err := c.Search(context.Background(), entity.Person, req.Body())
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if records, ok := resp.Records(); !ok || len(records) != 1 {
		t.Errorf("Records() = %d, %v", len(records), ok)
	}
	if gotBody["sql"] != "SELECT * FROM person WHERE location_country='Canada'" {
		t.Errorf("sql = %v", gotBody["sql"])
	}
	if gotBody["size"] != float64(5) || gotBody["titlecase"] != true {
		t.Errorf("body = %v", gotBody)
	}
}

func TestClient_SearchCompanyEndpoint(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/company/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"status":200,"data":[]}`)
	})

	req, _ := request.NewRaw(entity.Company, "SELECT * FROM company", 10, "")
	if _, err := c.Search(context.Background(), entity.Company, req.Body()); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
}

func TestClient_ErrorStatuses(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
		msg    string
	}{
		{400, `{"error":{"type":"invalid_request_error","message":"bad sql"}}`, domain.ErrInvalidRequest, "bad sql"},
		{401, `{"error":"invalid api key"}`, domain.ErrUpstreamAuth, "invalid api key"},
		{402, `{}`, domain.ErrPaymentRequired, ""},
		{404, `{"error":{"type":"not_found","message":"No records were found"}}`, domain.ErrNotFound, "No records were found"},
		{429, `not json`, domain.ErrRateLimited, ""},
		{503, `{}`, domain.ErrUpstreamError, ""},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Lookup(context.Background(), EndpointPersonEnrich, url.Values{"email": {"a@x.io"}})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var upErr *domain.UpstreamError
			if !errors.As(err, &upErr) {
				t.Fatalf("expected *domain.UpstreamError, got %T", err)
			}
			if upErr.Status != tt.status || upErr.Message != tt.msg {
				t.Errorf("UpstreamError = %+v", upErr)
			}
		})
	}
}

func TestClient_LookupQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/person/enrich" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("profile"); got != "linkedin.com/in/jane" {
			t.Errorf("profile = %q", got)
		}
		_, _ = io.WriteString(w, `{"status":200,"likelihood":8,"data":{"id":"p"}}`)
	})

	q := lookup.Person{Profile: "linkedin.com/in/jane"}.Query()
	body, err := c.Lookup(context.Background(), EndpointPersonEnrich, q)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if len(body) == 0 {
		t.Error("expected body")
	}
}

func TestClient_Credits(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "97")
		w.Header().Set("X-RateLimit-Limit", "100")
		_, _ = io.WriteString(w, `{"status":200,"data":{}}`)
	})

	ctx, credits := domain.NewContextWithCredits(context.Background())
	if _, err := c.Lookup(ctx, EndpointIPEnrich, url.Values{"ip": {"1.1.1.1"}}); err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if !credits.Known || credits.Remaining != 97 || credits.Limit != 100 {
		t.Errorf("credits = %+v", credits)
	}
	if got := testutil.ToFloat64(metrics.UpstreamCreditsRemaining); got != 97 {
		t.Errorf("credits gauge = %v, want 97", got)
	}
}

func TestClient_CreditsAbsent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status":200}`)
	})

	ctx, credits := domain.NewContextWithCredits(context.Background())
	if _, err := c.Lookup(ctx, EndpointIPEnrich, nil); err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if credits.Known {
		t.Errorf("credits should stay unknown without headers: %+v", credits)
	}
}

func TestClient_Identify(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/person/identify" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "jane@x.io" {
			t.Errorf("email = %q", body["email"])
		}
		if _, ok := body["ip"]; ok {
			t.Error("empty ip should be omitted")
		}
		_, _ = io.WriteString(w, `{"status":200,"matches":[{"data":{"id":"p"},"match_score":0.9}]}`)
	})

	resp, err := c.Identify(context.Background(), lookup.Identity{Email: " jane@x.io "})
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if len(resp.Matches()) != 1 {
		t.Errorf("Matches() = %d", len(resp.Matches()))
	}
}

func TestClient_BulkEnrich(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/person/enrich/bulk" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body struct {
			Requests []map[string]map[string]string `json:"requests"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.Requests) != 2 {
			t.Errorf("requests = %d", len(body.Requests))
		}
		_, _ = io.WriteString(w, `[{"status":200,"data":{"id":"a"}},{"status":404,"error":{"message":"not found"}}]`)
	})

	b := bulk.NewBatch([]bulk.Params{{Email: "a@x.io"}, {Phone: "+1"}})
	items, err := c.BulkEnrich(context.Background(), b.Body())
	if err != nil {
		t.Fatalf("BulkEnrich failed: %v", err)
	}
	if len(items) != 2 || items[1].Status != 404 {
		t.Errorf("items = %+v", items)
	}
}

func TestClient_BulkEnrichNotArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status":200}`)
	})

	_, err := c.BulkEnrich(context.Background(), bulk.NewBatch([]bulk.Params{{Email: "a@x.io"}}).Body())
	if !errors.Is(err, domain.ErrUpstreamError) {
		t.Fatalf("expected ErrUpstreamError, got %v", err)
	}
}

func TestClient_MalformedSearchBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[1,2,3]`)
	})

	req, _ := request.NewRaw(entity.Person, "SELECT * FROM person", 1, "")
	_, err := c.Search(context.Background(), entity.Person, req.Body())
	if !errors.Is(err, domain.ErrUpstreamError) {
		t.Fatalf("expected ErrUpstreamError, got %v", err)
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	c := NewClient(&Config{BaseURL: server.URL, APIKey: "k", Logger: zap.NewNop()})
	_, err := c.Lookup(context.Background(), EndpointPersonEnrich, nil)
	if !errors.Is(err, domain.ErrUpstreamError) {
		t.Fatalf("expected ErrUpstreamError, got %v", err)
	}
}

func TestClient_RateLimiterHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	t.Cleanup(server.Close)

	c := NewClient(&Config{BaseURL: server.URL, APIKey: "k", RateLimit: 0.001, Burst: 1})

	if _, err := c.Lookup(context.Background(), EndpointIPEnrich, nil); err != nil {
		t.Fatalf("first call should use the burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Lookup(ctx, EndpointIPEnrich, nil); err == nil {
		t.Fatal("expected limiter error for second call")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(&Config{APIKey: "k"})
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.limiter != nil {
		t.Error("limiter should be nil without a rate limit")
	}
	if c.http.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", c.http.Timeout)
	}

	c = NewClient(&Config{BaseURL: "http://example.test/v5/", APIKey: "k"})
	if c.baseURL != "http://example.test/v5" {
		t.Errorf("trailing slash not trimmed: %q", c.baseURL)
	}
}
