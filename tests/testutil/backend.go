package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nhle/care-portal/internal/backend"
)

// TestToken is the bearer token clients created by NewTestBackend send.
const TestToken = "test-token"

// NewTestBackend starts an httptest server serving mux under /api and
// returns a client pointed at it. The server is closed when the test
// completes.
func NewTestBackend(t *testing.T, mux *http.ServeMux) *backend.Client {
	t.Helper()

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", mux))

	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)

	return backend.NewClient(srv.URL+"/api", TestToken, 5*time.Second)
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(t *testing.T, w http.ResponseWriter, status int, v interface{}) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}
