package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pet-adoption-market/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	handler, _ := router.NewRouter(router.Options{Log: zerolog.Nop()})
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func doReq(t *testing.T, baseURL, method, path, userID string, admin bool, body any) (int, []byte) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}
	if admin {
		req.Header.Set("X-Debug-Admin", "true")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

func TestHTTP_AdoptionFlow(t *testing.T) {
	ts := newTestServer(t)

	// Owner lists a dog.
	st, body := doReq(t, ts.URL, "POST", "/pets", "owner-1", false, map[string]any{
		"name":         "Rex",
		"type":         "dog",
		"breed":        "mixed",
		"age":          6,
		"age_unit":     "months",
		"gender":       "male",
		"size":         "medium",
		"description":  "friendly dog",
		"adoption_fee": 200,
	})
	if st != http.StatusCreated {
		t.Fatalf("create pet: %d body=%s", st, body)
	}
	var pet struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &pet); err != nil || pet.ID == "" {
		t.Fatalf("bad create response: %s", body)
	}

	// Public listing filters by type.
	st, body = doReq(t, ts.URL, "GET", "/pets?type=dog", "", false, nil)
	if st != http.StatusOK {
		t.Fatalf("list pets: %d body=%s", st, body)
	}
	var listing struct {
		Pets []struct {
			ID string `json:"id"`
		} `json:"pets"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		t.Fatalf("bad listing: %s", body)
	}
	if listing.Pagination.Total != 1 || len(listing.Pets) != 1 {
		t.Fatalf("listing = %s", body)
	}

	// Admin publishes a discount code.
	st, body = doReq(t, ts.URL, "POST", "/discounts", "admin-1", true, map[string]any{
		"code":             "SUMMER25",
		"name":             "Summer Special",
		"type":             "percentage",
		"value":            25,
		"min_adoption_fee": 100,
		"max_discount":     50,
		"valid_from":       time.Now().Add(-time.Hour).Format(time.RFC3339),
		"valid_until":      time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	if st != http.StatusCreated {
		t.Fatalf("create discount: %d body=%s", st, body)
	}

	// Non-admin cannot touch the admin surface.
	if st, _ = doReq(t, ts.URL, "GET", "/discounts/stats", "adopter-1", false, nil); st != http.StatusForbidden {
		t.Fatalf("stats as non-admin: %d", st)
	}

	// Adopter validates the code against the listing.
	st, body = doReq(t, ts.URL, "POST", "/discounts/validate", "adopter-1", false, map[string]any{
		"code":   "summer25",
		"pet_id": pet.ID,
		"fee":    200,
	})
	if st != http.StatusOK {
		t.Fatalf("validate: %d body=%s", st, body)
	}
	var validation struct {
		Valid       bool `json:"valid"`
		Calculation struct {
			DiscountAmount float64 `json:"discount_amount"`
			FinalAmount    float64 `json:"final_amount"`
		} `json:"calculation"`
	}
	if err := json.Unmarshal(body, &validation); err != nil {
		t.Fatalf("bad validation: %s", body)
	}
	if !validation.Valid || validation.Calculation.DiscountAmount != 50 || validation.Calculation.FinalAmount != 150 {
		t.Fatalf("validation = %s", body)
	}

	// Adopter applies with the code.
	st, body = doReq(t, ts.URL, "POST", "/adoptions", "adopter-1", false, map[string]any{
		"pet_id":        pet.ID,
		"discount_code": "SUMMER25",
		"details":       map[string]any{"experience": "grew up with dogs"},
	})
	if st != http.StatusCreated {
		t.Fatalf("apply: %d body=%s", st, body)
	}
	var application struct {
		ID  string `json:"id"`
		Fee struct {
			FinalAmount float64 `json:"final_amount"`
		} `json:"fee"`
	}
	if err := json.Unmarshal(body, &application); err != nil {
		t.Fatalf("bad application: %s", body)
	}
	if application.Fee.FinalAmount != 150 {
		t.Fatalf("final amount = %v, want 150", application.Fee.FinalAmount)
	}

	// A second application for the same pet is rejected.
	if st, _ = doReq(t, ts.URL, "POST", "/adoptions", "adopter-1", false, map[string]any{"pet_id": pet.ID}); st != http.StatusConflict {
		t.Fatalf("duplicate apply: %d", st)
	}

	// Owner approves, then completes; the pet ends up adopted.
	st, body = doReq(t, ts.URL, "PATCH", "/adoptions/"+application.ID+"/review", "owner-1", false, map[string]any{"status": "approved"})
	if st != http.StatusOK {
		t.Fatalf("approve: %d body=%s", st, body)
	}
	st, body = doReq(t, ts.URL, "PATCH", "/adoptions/"+application.ID+"/review", "owner-1", false, map[string]any{"status": "completed"})
	if st != http.StatusOK {
		t.Fatalf("complete: %d body=%s", st, body)
	}

	st, body = doReq(t, ts.URL, "GET", "/pets/"+pet.ID, "", false, nil)
	if st != http.StatusOK {
		t.Fatalf("get pet: %d", st)
	}
	var got struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("bad pet body: %s", body)
	}
	if got.Status != "adopted" {
		t.Fatalf("pet status = %q, want adopted", got.Status)
	}
}

func TestHTTP_AuthRequired(t *testing.T) {
	ts := newTestServer(t)

	if st, _ := doReq(t, ts.URL, "POST", "/pets", "", false, map[string]any{"name": "x"}); st != http.StatusUnauthorized {
		t.Fatalf("create pet without identity: %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/me", "", false, nil); st != http.StatusUnauthorized {
		t.Fatalf("profile without identity: %d", st)
	}
}

func TestHTTP_RegisterAndProfile(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "POST", "/auth/register", "", false, map[string]any{
		"name":            "Ana",
		"email":           "ana@example.com",
		"credential_hash": "opaque",
	})
	if st != http.StatusCreated {
		t.Fatalf("register: %d body=%s", st, body)
	}
	var u struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &u); err != nil || u.ID == "" {
		t.Fatalf("bad register response: %s", body)
	}

	// The credential hash never appears in responses.
	if bytes.Contains(body, []byte("opaque")) {
		t.Fatalf("credential hash leaked: %s", body)
	}

	st, body = doReq(t, ts.URL, "GET", "/me", u.ID, false, nil)
	if st != http.StatusOK {
		t.Fatalf("profile: %d body=%s", st, body)
	}

	// Duplicate email is rejected.
	st, _ = doReq(t, ts.URL, "POST", "/auth/register", "", false, map[string]any{
		"name":            "Other",
		"email":           "ANA@example.com",
		"credential_hash": "h",
	})
	if st != http.StatusConflict {
		t.Fatalf("duplicate email: %d", st)
	}
}

func TestHTTP_HealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health", "", false, nil)
	if st != http.StatusOK {
		t.Fatalf("health: %d", st)
	}
	var h struct {
		Status  string `json:"status"`
		Storage string `json:"storage"`
	}
	if err := json.Unmarshal(body, &h); err != nil {
		t.Fatalf("bad health body: %s", body)
	}
	if h.Status != "ok" || h.Storage != "fallback-only" {
		t.Fatalf("health = %s", body)
	}
}
