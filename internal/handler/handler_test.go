package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serve routes a single request through a chi router so URL params resolve.
func serve(t *testing.T, method, pattern, target, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Message
}

func TestHandler_Hello(t *testing.T) {
	h := New("1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.Hello(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["message"] != "Canteen API" || response["version"] != "1.2.3" {
		t.Errorf("unexpected banner: %v", response)
	}
}

func TestHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	h := New("dev")

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nonexistent", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "resource not found" {
		t.Errorf("unexpected message: %s", msg)
	}

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPatch, "/api/meals", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
}

func TestDecodeObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantOK   bool
		wantCode int
	}{
		{name: "object", body: `{"name":"Gluten","price":4.5}`, wantOK: true},
		{name: "trailing whitespace", body: "{}\n", wantOK: true},
		{name: "empty body", body: "", wantCode: http.StatusBadRequest},
		{name: "array", body: `["a"]`, wantCode: http.StatusBadRequest},
		{name: "null", body: `null`, wantCode: http.StatusBadRequest},
		{name: "malformed", body: `{"name":`, wantCode: http.StatusBadRequest},
		{name: "two values", body: `{}{}`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			payload, ok := decodeObject(rec, req)

			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				if rec.Code != tt.wantCode {
					t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
				}
				if msg := decodeMessage(t, rec); msg != msgInvalidBody {
					t.Fatalf("unexpected message %q", msg)
				}
				return
			}
			if payload == nil {
				t.Fatal("expected payload")
			}
		})
	}
}

func TestDecodeObject_KeepsNumbers(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"rating":4}`))
	payload, ok := decodeObject(rec, req)
	if !ok {
		t.Fatalf("decode failed: %s", rec.Body.String())
	}
	if _, isNumber := payload["rating"].(json.Number); !isNumber {
		t.Fatalf("expected json.Number, got %T", payload["rating"])
	}
}

func TestDecodeObject_BodyTooLarge(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 64)+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)

	if _, ok := decodeObject(rec, req); ok {
		t.Fatal("expected failure")
	}
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestPathID(t *testing.T) {
	t.Parallel()

	var got string
	h := func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		got = id
		w.WriteHeader(http.StatusNoContent)
	}

	rec := serve(t, http.MethodGet, "/things/{id}", "/things/01ARZ3NDEKTSV4RRFFQ69G5FAV", "", h)
	if rec.Code != http.StatusNoContent || got != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Fatalf("expected valid id to pass, got %d %q", rec.Code, got)
	}

	rec = serve(t, http.MethodGet, "/things/{id}", "/things/42", "", h)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "42 is not a valid Id" {
		t.Fatalf("unexpected message %q", msg)
	}
}
