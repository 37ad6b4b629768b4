package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoRequestWithResilienceRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	cfg := HTTPClientConfig{
		Client:  srv.Client(),
		Backoff: BackoffConfig{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond},
	}
	var out struct {
		OK bool `json:"ok"`
	}
	if err := getJSON(context.Background(), cfg, newCircuit("test"), srv.URL, &out); err != nil {
		t.Fatalf("getJSON: %v", err)
	}
	if !out.OK || hits.Load() != 3 {
		t.Fatalf("expected success on third attempt, got ok=%v hits=%d", out.OK, hits.Load())
	}
}

func TestDoRequestWithResilienceSingleShot(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := getJSON(context.Background(), singleShot(srv.Client()), newCircuit("test"), srv.URL, &struct{}{})
	if !errors.Is(err, errServerError) {
		t.Fatalf("expected server error, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("single shot must not retry, got %d hits", hits.Load())
	}
}

func TestDoRequestWithResilienceConfig(t *testing.T) {
	err := getJSON(context.Background(), HTTPClientConfig{}, newCircuit("test"), "http://example.invalid", &struct{}{})
	if !errors.Is(err, errNoHTTPClient) {
		t.Fatalf("expected errNoHTTPClient, got %v", err)
	}

	cfg := HTTPClientConfig{Client: http.DefaultClient, Backoff: BackoffConfig{MaxRetries: -1, InitialInterval: time.Millisecond}}
	err = getJSON(context.Background(), cfg, newCircuit("test"), "http://example.invalid", &struct{}{})
	if !errors.Is(err, errInvalidConfig) {
		t.Fatalf("expected errInvalidConfig, got %v", err)
	}
}

func TestDoRequestWithResilienceDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := getJSON(context.Background(), withBackoff(srv.Client(), 3), newCircuit("test"), srv.URL, &struct{}{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("client errors must not be retried, got %d hits", hits.Load())
	}
}

func TestCircuitThresholdAndRecovery(t *testing.T) {
	var (
		hits      atomic.Int32
		recovered atomic.Bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		if !recovered.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cb := newCircuit("test")
	cfg := singleShot(srv.Client())

	for i := 0; i < circuitFailureThreshold; i++ {
		if err := getJSON(context.Background(), cfg, cb, srv.URL, &struct{}{}); !errors.Is(err, errServerError) {
			t.Fatalf("call %d: expected server error while closed, got %v", i+1, err)
		}
	}
	if got := hits.Load(); got != circuitFailureThreshold {
		t.Fatalf("expected every call below the threshold to reach the server, got %d", got)
	}

	if err := getJSON(context.Background(), cfg, cb, srv.URL, &struct{}{}); !errors.Is(err, errCircuitOpen) {
		t.Fatalf("expected circuit to open, got %v", err)
	}

	recovered.Store(true)
	time.Sleep(circuitOpenTimeout + 100*time.Millisecond)

	if err := getJSON(context.Background(), cfg, cb, srv.URL, &struct{}{}); err != nil {
		t.Fatalf("expected the half-open request to reach the recovered server, got %v", err)
	}
}
