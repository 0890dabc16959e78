package handlers_test

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/kerucko/tasklist/internal/export"
	"github.com/kerucko/tasklist/internal/handlers"
)

func TestHealthz_OK(t *testing.T) {
	rr := doRaw(t, newApp(t), http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestReadyz_OK(t *testing.T) {
	rr := doRaw(t, newApp(t), http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestReadyz_NotReady(t *testing.T) {
	svc := failingService{err: errors.New("db down")}
	app := handlers.NewHandler(svc, export.NewExporter(svc), discardLogger()).Routes()

	rr := doRaw(t, app, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestExport_Formats(t *testing.T) {
	app := newApp(t)
	createTask(t, app, "exported")

	cases := []struct {
		format      string
		contentType string
		prefix      string
	}{
		{format: "", contentType: "application/json", prefix: "["},
		{format: "csv", contentType: "text/csv; charset=utf-8", prefix: "id,title"},
		{format: "pdf", contentType: "application/pdf", prefix: "%PDF"},
	}
	for _, tc := range cases {
		rr := doRaw(t, app, http.MethodGet, "/tasks/export?format="+tc.format, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("format %q: status=%d body=%s", tc.format, rr.Code, rr.Body.String())
		}
		if got := rr.Header().Get("Content-Type"); got != tc.contentType {
			t.Fatalf("format %q: content-type=%q, want %q", tc.format, got, tc.contentType)
		}
		if !bytes.HasPrefix(rr.Body.Bytes(), []byte(tc.prefix)) {
			t.Fatalf("format %q: body does not start with %q", tc.format, tc.prefix)
		}
	}
}

func TestExport_UnknownFormat_400(t *testing.T) {
	rr := doRaw(t, newApp(t), http.MethodGet, "/tasks/export?format=xml", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want %d", rr.Code, http.StatusBadRequest)
	}
}
