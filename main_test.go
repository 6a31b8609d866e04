package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-notes/internal/config"
)

func TestSweepInterval(t *testing.T) {
	tests := []struct {
		idle time.Duration
		want time.Duration
	}{
		{12 * time.Hour, time.Hour},
		{time.Hour, 5 * time.Minute},
		{5 * time.Minute, time.Minute},
		{0, time.Minute},
	}

	for _, tt := range tests {
		if got := sweepInterval(tt.idle); got != tt.want {
			t.Errorf("sweepInterval(%v) = %v, want %v", tt.idle, got, tt.want)
		}
	}
}

func TestStoreKind(t *testing.T) {
	tests := map[string]string{
		"https://project.example.co": "https",
		"sqlite://:memory:":          "sqlite",
		"s3://bucket/notes":          "s3",
		"not a url":                  "unknown",
	}
	for url, want := range tests {
		if got := storeKind(url); got != want {
			t.Errorf("storeKind(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestNewApp(t *testing.T) {
	setLoggers(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	a, err := newApp(context.Background(), config.StoreCredentials{URL: "sqlite://:memory:", Key: "unused"}, config.Default())
	if err != nil {
		t.Fatalf("newApp returned error: %v", err)
	}
	defer a.Close()

	srv := httptest.NewServer(a.handler)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("Unexpected health response %d %q", res.StatusCode, body)
	}

	res, err = http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("Index request failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("Expected the index to render, got %d", res.StatusCode)
	}
	if a.sessions.Len() != 1 {
		t.Errorf("Expected one session after the first page view, got %d", a.sessions.Len())
	}
}

func TestNewAppRejectsBadEndpoint(t *testing.T) {
	setLoggers(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	_, err := newApp(context.Background(), config.StoreCredentials{URL: "gopher://x", Key: "k"}, config.Default())
	if err == nil {
		t.Fatal("Expected an unsupported scheme to fail")
	}
}
