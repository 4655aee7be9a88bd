package internal

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestHealthEndpoints(t *testing.T) {
	var pingErr error
	r := chi.NewRouter()
	mountHealth(r, func() error { return pingErr })

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	if w := get("/health/live"); w.Code != http.StatusOK || w.Body.String() != `{"status":"ok"}` {
		t.Errorf("live = %d %s", w.Code, w.Body.String())
	}
	if w := get("/health/ready"); w.Code != http.StatusOK {
		t.Errorf("ready = %d", w.Code)
	}

	pingErr = errors.New("database is locked")
	if w := get("/health/ready"); w.Code != http.StatusServiceUnavailable || w.Body.String() != `{"status":"unavailable"}` {
		t.Errorf("ready while failing = %d %s", w.Code, w.Body.String())
	}
	if w := get("/health/live"); w.Code != http.StatusOK {
		t.Errorf("live while db failing = %d", w.Code)
	}
}

func TestSetup_RequiresConfig(t *testing.T) {
	if _, err := setup(nil); err == nil {
		t.Error("setup without config should fail")
	}
}
