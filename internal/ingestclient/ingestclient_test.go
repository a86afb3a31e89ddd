package ingestclient

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mhetreayush/xray-sdk/types"
)

// newFakeIngestServer builds a minimal presign/ingest server using chi's
// router, mirroring the client's two routes.
func newFakeIngestServer(t *testing.T, wantAPIKey string) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()

	r.Post("/api/v1/presign", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("x-api-key") != wantAPIKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var presignReq types.PresignRequest
		_ = json.NewDecoder(req.Body).Decode(&presignReq)
		_ = json.NewEncoder(w).Encode(types.PresignResponse{
			PresignedURL: "https://upload.example.com/" + presignReq.Key,
			DataPath:     "data/" + presignReq.DataID,
		})
	})

	r.Post("/api/v1/ingest", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("x-api-key") != wantAPIKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(types.IngestResponse{Success: true})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestPresignSuccess(t *testing.T) {
	srv := newFakeIngestServer(t, "secret-key")
	c := New(srv.URL, "secret-key", 5*time.Second)

	resp, err := c.Presign(t.Context(), types.PresignRequest{DataID: "d1", TraceID: "t1", Key: "foo.bin"})
	if err != nil {
		t.Fatalf("Presign: %v", err)
	}
	if resp.PresignedURL != "https://upload.example.com/foo.bin" {
		t.Fatalf("unexpected presigned url: %s", resp.PresignedURL)
	}
}

func TestIngestSuccess(t *testing.T) {
	srv := newFakeIngestServer(t, "secret-key")
	c := New(srv.URL, "secret-key", 5*time.Second)

	resp, err := c.Ingest(t.Context(), types.IngestRequest{Events: []*types.Event{{Type: types.EventStep}}})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success=true")
	}
}

func TestIngestBadAPIKeyFails(t *testing.T) {
	srv := newFakeIngestServer(t, "secret-key")
	c := New(srv.URL, "wrong-key", 5*time.Second)

	_, err := c.Ingest(t.Context(), types.IngestRequest{})
	if err == nil {
		t.Fatal("expected error for unauthorized request")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
}
