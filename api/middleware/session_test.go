package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func captureSession(t *testing.T, header string) (string, *httptest.ResponseRecorder) {
	t.Helper()
	seen, _, rec := captureSessionMinted(t, header)
	return seen, rec
}

func captureSessionMinted(t *testing.T, header string) (string, bool, *httptest.ResponseRecorder) {
	t.Helper()
	var (
		seen   string
		minted bool
	)
	handler := Session(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
		minted = SessionMinted(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	if header != "" {
		req.Header.Set(SessionHeader, header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return seen, minted, rec
}

func TestSessionKeepsClientID(t *testing.T) {
	seen, rec := captureSession(t, "abc-123")
	if seen != "abc-123" {
		t.Fatalf("expected client session, got %q", seen)
	}
	if rec.Header().Get(SessionHeader) != "abc-123" {
		t.Fatalf("expected session echoed, got %q", rec.Header().Get(SessionHeader))
	}
}

func TestSessionMintsWhenMissingOrInvalid(t *testing.T) {
	for _, header := range []string{"", "has spaces", "semi;colon", strings.Repeat("a", 129)} {
		seen, rec := captureSession(t, header)
		if _, err := uuid.Parse(seen); err != nil {
			t.Fatalf("header %q: expected minted uuid, got %q", header, seen)
		}
		if rec.Header().Get(SessionHeader) != seen {
			t.Fatalf("header %q: expected minted id echoed", header)
		}
	}
}

func TestSessionMarksMintedIDs(t *testing.T) {
	if _, minted, _ := captureSessionMinted(t, "abc-123"); minted {
		t.Fatal("client session must not be marked minted")
	}
	if _, minted, _ := captureSessionMinted(t, ""); !minted {
		t.Fatal("expected generated session to be marked minted")
	}
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	handler := RequestID(nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get(requestIDHeader) != "req-1" {
		t.Fatalf("expected incoming request id kept, got %q", rec.Header().Get(requestIDHeader))
	}
}

func TestRecovererReturns500(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
