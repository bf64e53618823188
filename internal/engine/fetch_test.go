package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchURLContentSendsBrowserHeaders(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		fmt.Fprint(w, "<html><head><title>Hello Page</title></head><body><main><p>Some body text for extraction.</p></main></body></html>")
	}))
	defer srv.Close()

	Init(Config{FetchTimeout: 10 * time.Second, MaxContentChars: 6000, HTTPClient: srv.Client()})

	title, content, err := FetchURLContent(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if title != "Hello Page" {
		t.Errorf("title = %q", title)
	}
	if !strings.Contains(content, "Some body text") {
		t.Errorf("content = %q", content)
	}
	if ua == "" || strings.HasPrefix(ua, "Go-http-client") {
		t.Errorf("request must carry a browser user agent, got %q", ua)
	}
}

func TestFetchURLContentNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	Init(Config{FetchTimeout: 10 * time.Second, HTTPClient: srv.Client()})

	if _, _, err := FetchURLContent(context.Background(), srv.URL); err == nil {
		t.Fatal("404 must fail the fetch")
	}
}
