package ownership

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jsterling/ownerchart/pkg/cache"
	"github.com/jsterling/ownerchart/pkg/errors"
)

func testResponse() *Response {
	return &Response{
		RootCompany: &Node{
			ID:   "root",
			Name: "Acme Holdings Ltd",
			Type: TypeUKCompany,
			Children: []*Node{
				{ID: "p1", Name: "Jane Doe", Type: TypeIndividual, NatureOfControl: []string{"ownership-of-shares-75-to-100-percent"}},
			},
		},
		TotalNodes:     5,
		ProcessingTime: 1.23,
		Errors:         []string{"x"},
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, cache.NewNullCache())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client, srv
}

func TestResolve_Success(t *testing.T) {
	var gotBody resolveRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ownership-structure" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("request is missing X-Request-ID")
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(testResponse())
	}))

	resp, err := client.Resolve(context.Background(), "Acme Holdings Ltd", false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if gotBody.CompanyName != "Acme Holdings Ltd" {
		t.Errorf("request company_name = %q", gotBody.CompanyName)
	}
	if resp.TotalNodes != 5 {
		t.Errorf("TotalNodes = %d, want 5", resp.TotalNodes)
	}
	if got := FormatProcessingTime(resp.ProcessingTime); got != "1.23s" {
		t.Errorf("FormatProcessingTime() = %q, want %q", got, "1.23s")
	}
	if len(resp.Errors) != 1 || resp.Errors[0] != "x" {
		t.Errorf("Errors = %v, want [x]", resp.Errors)
	}
}

func TestResolve_EmptyQueryNeverHitsNetwork(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := client.Resolve(context.Background(), query, false)
		if err == nil {
			t.Fatalf("Resolve(%q) should fail", query)
		}
		if !errors.Is(err, errors.ErrCodeInvalidQuery) {
			t.Errorf("Resolve(%q) code = %v, want INVALID_QUERY", query, errors.GetCode(err))
		}
		if errors.UserMessage(err) == "" {
			t.Errorf("Resolve(%q) must set a non-empty error message", query)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("backend received %d calls, want 0", calls.Load())
	}
}

func TestResolve_NotFoundUsesDetailVerbatim(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"company not found"}`))
	}))

	_, err := client.Resolve(context.Background(), "No Such Co", false)
	if err == nil {
		t.Fatal("Resolve() should fail on 404")
	}
	if got := errors.UserMessage(err); got != "company not found" {
		t.Errorf("error message = %q, want %q", got, "company not found")
	}
	if !errors.Is(err, errors.ErrCodeCompanyNotFound) {
		t.Errorf("code = %v, want COMPANY_NOT_FOUND", errors.GetCode(err))
	}
}

func TestResolve_NonJSONBodyFallsBackToGenericMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("<html>nope</html>"))
	}))

	_, err := client.Resolve(context.Background(), "Acme", false)
	if err == nil {
		t.Fatal("Resolve() should fail on 400")
	}
	if got := errors.UserMessage(err); got != "ownership lookup failed (status 400)" {
		t.Errorf("error message = %q", got)
	}
}

func TestResolve_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(testResponse())
	}))

	resp, err := client.Resolve(context.Background(), "Acme", false)
	if err != nil {
		t.Fatalf("Resolve() error = %v, want success after retry", err)
	}
	if resp.TotalNodes != 5 {
		t.Errorf("TotalNodes = %d", resp.TotalNodes)
	}
	if calls.Load() != 2 {
		t.Errorf("backend calls = %d, want 2", calls.Load())
	}
}

func TestResolve_CachesSuccessfulResponses(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(testResponse())
	}))
	t.Cleanup(srv.Close)

	fileCache, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	client, err := NewClient(srv.URL, fileCache)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	ctx := context.Background()
	for range 2 {
		if _, err := client.Resolve(ctx, "Acme Holdings Ltd", false); err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1 (second resolve served from cache)", calls.Load())
	}

	// Case and spacing variants share a cache entry.
	resp, err := client.Resolve(ctx, "  acme   holdings ltd ", false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !resp.Cached {
		t.Error("cache hit should be marked Cached")
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1 for normalized variant", calls.Load())
	}

	// Refresh bypasses the cache.
	if _, err := client.Resolve(ctx, "Acme Holdings Ltd", true); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("backend calls = %d, want 2 after refresh", calls.Load())
	}
}

func TestResolve_RejectsStructurallyInvalidTree(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"root_company":{"id":"","name":"Acme"},"total_nodes":1,"processing_time":0.1}`))
	}))

	_, err := client.Resolve(context.Background(), "Acme", false)
	if !errors.Is(err, errors.ErrCodeInvalidTree) {
		t.Fatalf("Resolve() error = %v, want INVALID_TREE", err)
	}
}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	if _, err := NewClient("not-a-url", nil); err == nil {
		t.Error("NewClient() should reject a base URL without scheme")
	}
}
