package netx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDownloadPresigned(t *testing.T) {
	t.Run("success 200 OK", func(t *testing.T) {
		var gotMethod, gotQuery string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotQuery = r.URL.RawQuery
			_, _ = w.Write([]byte("PNG bytes"))
		}))
		defer ts.Close()

		got, err := DownloadPresigned(context.Background(), ts.URL+"/reports/2025/03/01/abc?X-Amz-Signature=abc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(got) != "PNG bytes" {
			t.Fatalf("body = %q", got)
		}
		if gotMethod != http.MethodGet {
			t.Fatalf("method = %q, want GET", gotMethod)
		}
		if gotQuery != "X-Amz-Signature=abc" {
			t.Fatalf("query = %q", gotQuery)
		}
	})

	t.Run("non-200 includes status and body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("SignatureDoesNotMatch"))
		}))
		defer ts.Close()

		_, err := DownloadPresigned(context.Background(), ts.URL)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "SignatureDoesNotMatch") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("bad url", func(t *testing.T) {
		if _, err := DownloadPresigned(context.Background(), "://bad"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := DownloadPresigned(ctx, "http://127.0.0.1:1/x"); err == nil {
			t.Fatal("expected error")
		}
	})
}
