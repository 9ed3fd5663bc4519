package util

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithRequestLogRecordsStatus(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))

	h := WithRequestID(WithRequestLog(nil, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to get products"}`))
	})))
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = "198.51.100.7:5555"
	req.Header.Set(RequestIDHeader, "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "http_request" || entry["level"] != "ERROR" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["status"] != float64(500) || entry["request_id"] != "req-1" || entry["client_ip"] != "198.51.100.7" {
		t.Fatalf("unexpected fields: %v", entry)
	}
}
