package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// exercises captureWriter directly
func TestCaptureWriter_RecordsStatusAndBytes(t *testing.T) {
	rr := httptest.NewRecorder()
	c := &captureWriter{ResponseWriter: rr, status: http.StatusOK}

	c.WriteHeader(201)
	_, _ = io.WriteString(c, "hello")

	if c.status != 201 || rr.Code != 201 {
		t.Fatalf("expected status 201 got %d/%d", c.status, rr.Code)
	}
	if c.bytes != 5 {
		t.Fatalf("expected 5 bytes got %d", c.bytes)
	}
}
