package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pulsewatch/backend/internal/config"
	"github.com/pulsewatch/backend/internal/model"
)

func TestProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/probe" {
			t.Errorf("path = %q, want /probe", r.URL.Path)
		}
		var req ProbeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		if req.CheckID != "chk-1" || req.Location != "us-east" {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(ProbeResponse{ResponseTimeMS: 120, StatusCode: 200})
	}))
	defer server.Close()

	probeClient := NewProbeClient(config.ProberConfig{BaseURL: server.URL, Timeout: "5s"})
	resp, err := probeClient.Probe(context.Background(), model.Check{ID: "chk-1", Type: "http", Target: "https://example.com"}, "us-east")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if resp.StatusCode != 200 || resp.ResponseTimeMS != 120 {
		t.Fatalf("response = %+v", resp)
	}
}

func TestProbeNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "prober overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	probeClient := NewProbeClient(config.ProberConfig{BaseURL: server.URL, Timeout: "5s"})
	if _, err := probeClient.Probe(context.Background(), model.Check{ID: "chk-1"}, ""); err == nil {
		t.Fatalf("expected error on non-200 prober response")
	}
}
