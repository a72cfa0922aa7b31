package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestResolve_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages/msg-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sender":"user-9","member":{"name":"fallback","display_name":"Runa"},"system":{"tag":"| The Cluster"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Enabled: true, BaseURL: srv.URL, Timeout: time.Second})
	meta := c.Resolve(context.Background(), "msg-1")

	if meta == nil {
		t.Fatal("expected metadata")
	}
	if meta.SenderID != "user-9" {
		t.Errorf("sender: got %q", meta.SenderID)
	}
	if meta.DisplayName != "Runa" {
		t.Errorf("display name: got %q", meta.DisplayName)
	}
	if got := meta.Label(); got != "Runa | The Cluster" {
		t.Errorf("label: got %q", got)
	}
}

func TestResolve_DisplayNameFallsBackToName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"sender":"user-9","member":{"name":"runa"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Enabled: true, BaseURL: srv.URL, Timeout: time.Second})
	meta := c.Resolve(context.Background(), "msg-1")

	if meta == nil {
		t.Fatal("expected metadata")
	}
	if meta.DisplayName != "runa" {
		t.Errorf("display name: got %q", meta.DisplayName)
	}
	if got := meta.Label(); got != "runa" {
		t.Errorf("label without tag: got %q", got)
	}
}

func TestResolve_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{Enabled: true, BaseURL: srv.URL, Timeout: time.Second})
	if meta := c.Resolve(context.Background(), "msg-1"); meta != nil {
		t.Errorf("expected nil for 404, got %+v", meta)
	}
}

func TestResolve_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"sender":`))
	}))
	defer srv.Close()

	c := NewClient(Config{Enabled: true, BaseURL: srv.URL, Timeout: time.Second})
	if meta := c.Resolve(context.Background(), "msg-1"); meta != nil {
		t.Errorf("expected nil for malformed payload, got %+v", meta)
	}
}

func TestResolve_NetworkError(t *testing.T) {
	c := NewClient(Config{Enabled: true, BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})
	if meta := c.Resolve(context.Background(), "msg-1"); meta != nil {
		t.Errorf("expected nil on network error, got %+v", meta)
	}
}

func TestResolve_Disabled(t *testing.T) {
	c := NewClient(Config{Enabled: false, BaseURL: "http://127.0.0.1:1"})
	if meta := c.Resolve(context.Background(), "msg-1"); meta != nil {
		t.Errorf("expected nil when disabled, got %+v", meta)
	}
}

func TestResolve_SettleDelayHonored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"sender":"user-9"}`))
	}))
	defer srv.Close()

	delay := 150 * time.Millisecond
	c := NewClient(Config{Enabled: true, BaseURL: srv.URL, SettleDelay: delay, Timeout: time.Second})

	start := time.Now()
	meta := c.Resolve(context.Background(), "msg-1")
	elapsed := time.Since(start)

	if meta == nil {
		t.Fatal("expected metadata")
	}
	if elapsed < delay {
		t.Errorf("lookup fired before the settling delay: %v < %v", elapsed, delay)
	}
}

func TestResolve_ContextCancelledDuringSettle(t *testing.T) {
	c := NewClient(Config{Enabled: true, BaseURL: "http://127.0.0.1:1", SettleDelay: time.Second, Timeout: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	meta := c.Resolve(ctx, "msg-1")
	if meta != nil {
		t.Errorf("expected nil on cancelled context, got %+v", meta)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("resolve did not return promptly on cancellation")
	}
}
