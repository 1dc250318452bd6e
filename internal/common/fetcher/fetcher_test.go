package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("<html><body>jobs</body></html>"))
	}))
	defer srv.Close()

	f := NewCollyFetcher(Config{})
	body, err := f.Fetch(context.Background(), srv.URL+"/jobs/")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(string(body), "jobs") {
		t.Errorf("body = %q, want it to contain %q", body, "jobs")
	}
}

func TestFetchHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewCollyFetcher(Config{})
	_, err := f.Fetch(context.Background(), srv.URL+"/jobs/")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error %T is not a *FetchError", err)
	}
	if fe.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", fe.Status, http.StatusNotFound)
	}
}

func TestFetchNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := NewCollyFetcher(Config{})
	_, err := f.Fetch(context.Background(), url)
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error %T is not a *FetchError", err)
	}
	if fe.Status != 0 {
		t.Errorf("Status = %d, want 0 for a network failure", fe.Status)
	}
}

func TestFetchEmptyURL(t *testing.T) {
	f := NewCollyFetcher(Config{})
	if _, err := f.Fetch(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty url")
	}
}
