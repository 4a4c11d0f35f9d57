package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"cryptofeed/internal/application/service"
	"cryptofeed/internal/domain"
	"cryptofeed/internal/domain/model"
)

type stubReader struct {
	rows []model.TickerRecord
	err  error
}

func (s *stubReader) ReadAll(ctx context.Context) ([]model.TickerRecord, error) {
	return s.rows, s.err
}

func (s *stubReader) Ping(ctx context.Context) error { return s.err }

func newRouter(reader *stubReader) http.Handler {
	return NewRouter(RouterDeps{Snapshots: service.NewSnapshotService(reader)})
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListEmptyStore(t *testing.T) {
	rec := serve(newRouter(&stubReader{}), http.MethodGet, "/api/crypto")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %s", ct)
	}
}

func TestListRows(t *testing.T) {
	reader := &stubReader{rows: []model.TickerRecord{{
		ID:       1,
		Name:     "btcinr",
		Last:     decimal.RequireFromString("5000000"),
		Buy:      decimal.RequireFromString("4999000"),
		Sell:     decimal.RequireFromString("5001000"),
		Volume:   decimal.RequireFromString("120.5"),
		BaseUnit: "inr",
	}}}
	rec := serve(newRouter(reader), http.MethodGet, "/api/crypto")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	row := got[0]
	for _, key := range []string{"id", "name", "last", "buy", "sell", "volume", "base_unit"} {
		if _, ok := row[key]; !ok {
			t.Errorf("missing field %s in %v", key, row)
		}
	}
	if row["name"] != "btcinr" || row["last"] != "5000000" || row["volume"] != "120.5" || row["base_unit"] != "inr" {
		t.Errorf("unexpected row: %v", row)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Errorf("expected a request id header")
	}
}

func TestListStoreDown(t *testing.T) {
	reader := &stubReader{err: errors.Join(domain.ErrStoreUnavailable, errors.New("dial tcp: connection refused"))}
	rec := serve(newRouter(reader), http.MethodGet, "/api/crypto")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"error":"Internal Server Error"}` {
		t.Errorf("unexpected body %s", body)
	}
}

func TestListRejectsOtherMethods(t *testing.T) {
	rec := serve(newRouter(&stubReader{}), http.MethodPost, "/api/crypto")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	rec := serve(newRouter(&stubReader{}), http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = serve(newRouter(&stubReader{err: domain.ErrStoreUnavailable}), http.MethodGet, "/healthz")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"error":"Service Unavailable"}` {
		t.Errorf("unexpected body %s", body)
	}
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/crypto", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	newRouter(&stubReader{}).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}
