package respond

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]bool{"success": true})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if body := rec.Body.String(); body != "{\"success\":true}\n" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Message(rec, http.StatusUnauthorized, "UnAuthorized User")
	if rec.Code != http.StatusUnauthorized || rec.Body.String() != "{\"message\":\"UnAuthorized User\"}\n" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	InternalError(rec)
	if rec.Code != http.StatusInternalServerError || rec.Body.String() != "{\"message\":\"internal error\"}\n" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}
