package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/decodeproject/decode/internal/duckdb"
	"github.com/decodeproject/decode/internal/model"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *duckdb.Store, *gin.Engine) {
	t.Helper()
	store, err := duckdb.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := NewServer("", store, nil)
	srv.startTime = time.Now()
	return srv, store, srv.routes()
}

func do(r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	_, _, r := newTestServer(t)

	w := do(r, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("health status = %v, want ok", body["status"])
	}
	if body["total"] != "0" {
		t.Errorf("health total = %v, want 0", body["total"])
	}
}

func TestHealthEndpoint_WrongMethod(t *testing.T) {
	_, _, r := newTestServer(t)

	w := do(r, http.MethodPost, "/api/health", nil)
	if w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/health status = %d, want 404 or 405", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, store, r := newTestServer(t)
	ctx := context.Background()
	for range 3 {
		if _, err := store.RecordIssuance(ctx, "email"); err != nil {
			t.Fatalf("RecordIssuance: %v", err)
		}
	}

	w := do(r, http.MethodGet, "/api/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d, want %d", w.Code, http.StatusOK)
	}
	var stats model.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if stats.Total != "3" {
		t.Errorf("total = %q, want %q", stats.Total, "3")
	}
}

func TestAttributesEndpoint(t *testing.T) {
	_, store, r := newTestServer(t)

	w := do(r, http.MethodGet, "/api/stats/attributes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("attributes status = %d", w.Code)
	}
	if got := w.Body.String(); got != `{"attributes":[]}` {
		t.Errorf("empty attributes body = %s", got)
	}

	if err := store.Seed(context.Background(), 3, []string{"age", "email"}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	w = do(r, http.MethodGet, "/api/stats/attributes", nil)
	var body struct {
		Attributes []model.AttributeCount `json:"attributes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal attributes: %v", err)
	}
	if len(body.Attributes) != 2 || body.Attributes[0].AttributeID != "age" || body.Attributes[0].Count != 2 {
		t.Errorf("attributes = %+v", body.Attributes)
	}
}

func TestIssueEndpoint(t *testing.T) {
	_, store, r := newTestServer(t)

	w := do(r, http.MethodPost, "/api/credentials", []byte(`{"attribute_id":"email"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("issue status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	var cred model.Credential
	if err := json.Unmarshal(w.Body.Bytes(), &cred); err != nil {
		t.Fatalf("unmarshal credential: %v", err)
	}
	if cred.ID == "" || cred.AttributeID != "email" {
		t.Errorf("credential = %+v", cred)
	}

	n, err := store.TotalIssued(context.Background())
	if err != nil {
		t.Fatalf("TotalIssued: %v", err)
	}
	if n != 1 {
		t.Errorf("TotalIssued = %d, want 1", n)
	}
}

func TestIssueEndpoint_BadRequests(t *testing.T) {
	_, _, r := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"missing attribute", `{}`},
		{"blank attribute", `{"attribute_id":"   "}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/credentials", []byte(tc.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

type failingAPI struct{}

func (failingAPI) Stats(context.Context) (model.Stats, error) {
	return model.Stats{}, errors.New("db down")
}

func (failingAPI) IssuedByAttribute(context.Context) ([]model.AttributeCount, error) {
	return nil, errors.New("db down")
}

func (failingAPI) RecordIssuance(context.Context, string) (model.Credential, error) {
	return model.Credential{}, errors.New("db down")
}

func TestStoreFailuresReturn500(t *testing.T) {
	srv := NewServer("", failingAPI{}, nil)
	r := srv.routes()

	for _, path := range []string{"/api/health", "/api/stats", "/api/stats/attributes"} {
		if w := do(r, http.MethodGet, path, nil); w.Code != http.StatusInternalServerError {
			t.Errorf("GET %s status = %d, want 500", path, w.Code)
		}
	}
	if w := do(r, http.MethodPost, "/api/credentials", []byte(`{"attribute_id":"x"}`)); w.Code != http.StatusInternalServerError {
		t.Errorf("POST /api/credentials status = %d, want 500", w.Code)
	}
}

func TestListenServeStop(t *testing.T) {
	store, err := duckdb.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	srv := NewServer("127.0.0.1:0", store, nil)
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	served := make(chan error, 1)
	go func() { served <- srv.Serve() }()

	resp, err := http.Get(fmt.Sprintf("http://%s/api/stats", srv.Addr()))
	if err != nil {
		t.Fatalf("GET /api/stats: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}

	select {
	case err := <-served:
		if err != nil {
			t.Fatalf("Serve after Stop = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Stop")
	}
}

func TestServeReportsListenerFailure(t *testing.T) {
	srv := NewServer("127.0.0.1:0", &failingAPI{}, nil)
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Stop()

	served := make(chan error, 1)
	go func() { served <- srv.Serve() }()

	// Closing the listener underneath the server is not a graceful shutdown.
	srv.listener.Close()

	select {
	case err := <-served:
		if err == nil {
			t.Fatal("Serve returned nil after its listener failed")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after listener close")
	}
}

func TestServeBeforeListen(t *testing.T) {
	srv := NewServer("127.0.0.1:0", &failingAPI{}, nil)
	if err := srv.Serve(); err == nil {
		t.Fatal("expected error from Serve without Listen")
	}
}
