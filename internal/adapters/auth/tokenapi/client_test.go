package tokenapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestVerifyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tokens/verify" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var req struct {
			Token string `json:"token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		switch req.Token {
		case "good":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"user_id":    "42",
				"email":      "ana@example.com",
				"expires_at": time.Now().Add(time.Hour).Unix(),
			})
		case "anonymous":
			_ = json.NewEncoder(w).Encode(map[string]any{"user_id": ""})
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
	v := NewVerifier(client)

	claims, err := v.Verify(context.Background(), "good")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.SubjectID != "42" || claims.Email != "ana@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.ExpiresAt.IsZero() {
		t.Fatal("expiry not decoded")
	}

	if _, err := v.Verify(context.Background(), "bad"); err == nil {
		t.Fatal("rejected token verified")
	}
	if _, err := v.Verify(context.Background(), "anonymous"); err == nil {
		t.Fatal("claims without subject accepted")
	}
	if _, err := v.Verify(context.Background(), "  "); !errors.Is(err, ErrTokenEmpty) {
		t.Fatalf("empty token: got %v", err)
	}
}

func TestClient_NotConfigured(t *testing.T) {
	v := NewVerifier(NewClient(Config{}))
	if _, err := v.Verify(context.Background(), "token"); err == nil {
		t.Fatal("unconfigured client verified a token")
	}
}
