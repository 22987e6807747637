package rugcheck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"solana-token-detector/internal/domain"
)

const testMint = "So11111111111111111111111111111111111111112"

func TestClient_Assess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantPath := "/tokens/" + testMint + "/report/summary"
		if r.URL.Path != wantPath {
			t.Errorf("expected path %s, got %s", wantPath, r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"score_normalised": 85,
			"tokenMeta": {"name": "Wrapped SOL", "symbol": "WSOL"},
			"creator": "CreatorWallet111",
			"risks": [
				{"name": "Low liquidity", "description": "LP under $1000", "level": "danger"},
				{"name": "Top holders", "description": "", "level": "warn"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	report, err := client.Assess(context.Background(), testMint)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}

	if report.Mint != testMint {
		t.Errorf("expected mint %s, got %s", testMint, report.Mint)
	}
	if report.Score != 85 {
		t.Errorf("expected score 85, got %d", report.Score)
	}
	if report.TokenName != "Wrapped SOL" {
		t.Errorf("expected name Wrapped SOL, got %q", report.TokenName)
	}
	if report.TokenSymbol != "WSOL" {
		t.Errorf("expected symbol WSOL, got %q", report.TokenSymbol)
	}
	if report.Creator != "CreatorWallet111" {
		t.Errorf("expected creator CreatorWallet111, got %q", report.Creator)
	}
	if len(report.Risks) != 2 {
		t.Fatalf("expected 2 risks, got %d", len(report.Risks))
	}
	if report.Risks[0].Severity != domain.SeverityDanger {
		t.Errorf("expected danger severity, got %s", report.Risks[0].Severity)
	}
	if report.Risks[0].Description != "Low liquidity: LP under $1000" {
		t.Errorf("unexpected description %q", report.Risks[0].Description)
	}
	if report.Risks[1].Severity != domain.SeverityWarn {
		t.Errorf("expected warn severity, got %s", report.Risks[1].Severity)
	}
	if report.Fingerprint == "" {
		t.Error("expected non-empty fingerprint")
	}
}

func TestClient_Assess_MissingScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tokenMeta": {"name": "NoScore", "symbol": "NS"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	report, err := client.Assess(context.Background(), testMint)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}

	if report.Score != 0 {
		t.Errorf("expected score 0 when omitted, got %d", report.Score)
	}
}

func TestClient_Assess_RiskNormalization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"score_normalised": 40,
			"risks": [
				{"name": "", "description": "", "level": "danger"},
				{"name": "Mint authority", "description": "", "level": "critical"},
				{"name": "", "description": "freeze authority enabled", "level": ""}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	report, err := client.Assess(context.Background(), testMint)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}

	// Empty entry dropped, the other two kept
	if len(report.Risks) != 2 {
		t.Fatalf("expected 2 risks after normalization, got %d", len(report.Risks))
	}

	// Unknown level coerced to warn
	if report.Risks[0].Severity != domain.SeverityWarn {
		t.Errorf("expected critical coerced to warn, got %s", report.Risks[0].Severity)
	}
	if report.Risks[1].Description != "freeze authority enabled" {
		t.Errorf("unexpected description %q", report.Risks[1].Description)
	}
}

func TestClient_Assess_InvalidMint(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.Assess(context.Background(), "not-a-mint")
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}

	if calls.Load() != 0 {
		t.Errorf("expected no network calls for invalid mint, got %d", calls.Load())
	}
}

func TestClient_Assess_RejectedNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL,
		WithMaxRetries(3),
		WithRetryDelay(10*time.Millisecond),
	)

	_, err := client.Assess(context.Background(), testMint)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("expected 1 call for 404, got %d", calls.Load())
	}
}

func TestClient_Assess_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"score_normalised": 90}`))
	}))
	defer server.Close()

	client := NewClient(server.URL,
		WithMaxRetries(5),
		WithRetryDelay(10*time.Millisecond),
		WithMaxDelay(50*time.Millisecond),
	)

	report, err := client.Assess(context.Background(), testMint)
	if err != nil {
		t.Fatalf("Assess after retries: %v", err)
	}

	if report.Score != 90 {
		t.Errorf("expected score 90, got %d", report.Score)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestClient_Assess_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL,
		WithMaxRetries(2),
		WithRetryDelay(10*time.Millisecond),
	)

	_, err := client.Assess(context.Background(), testMint)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestClient_Assess_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL,
		WithTimeout(50*time.Millisecond),
		WithMaxRetries(1),
		WithRetryDelay(10*time.Millisecond),
	)

	_, err := client.Assess(context.Background(), testMint)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestClient_NewTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stats/new_tokens" {
			t.Errorf("expected path /stats/new_tokens, got %s", r.URL.Path)
		}

		w.Write([]byte(`[
			{"mint": "Mint111", "symbol": "AAA", "creator": "Wallet1", "createAt": "2026-08-29T10:00:00Z"},
			{"mint": "Mint222", "symbol": "BBB", "creator": "Wallet2", "createAt": "2026-08-29T10:00:05Z"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	tokens, err := client.NewTokens(context.Background())
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0].Mint != "Mint111" {
		t.Errorf("expected Mint111, got %s", tokens[0].Mint)
	}
	if tokens[1].CreatedAt.Unix() != tokens[0].CreatedAt.Unix()+5 {
		t.Errorf("unexpected createAt parsing: %v vs %v", tokens[0].CreatedAt, tokens[1].CreatedAt)
	}
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	client := NewClient("")
	if client.baseURL != DefaultBaseURL {
		t.Errorf("expected default base URL, got %s", client.baseURL)
	}

	client = NewClient("http://localhost:1234/")
	if client.baseURL != "http://localhost:1234" {
		t.Errorf("expected trailing slash trimmed, got %s", client.baseURL)
	}
}
