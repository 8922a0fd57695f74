package dispatch

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Snazzah/VideoEmbedFix/app/config"
	"github.com/Snazzah/VideoEmbedFix/app/provider"
)

const testUserAgent = "vidembedtest"

type fakeProvider struct {
	title    string
	domains  []string
	matches  bool
	extracts int
	result   *provider.Result
	err      error
}

func (f *fakeProvider) Title() string     { return f.title }
func (f *fakeProvider) Domains() []string { return f.domains }

func (f *fakeProvider) Match(url string) []string {
	if !f.matches {
		return nil
	}
	return []string{url, "1"}
}

func (f *fakeProvider) Extract(_ context.Context, _ provider.Request) (*provider.Result, error) {
	f.extracts++
	return f.result, f.err
}

func videoProvider() *fakeProvider {
	return &fakeProvider{
		title:   "Fake",
		domains: []string{"fake.example.com"},
		matches: true,
		result: &provider.Result{
			Descriptor: &provider.Descriptor{
				Title:    "A video",
				URL:      "https://fake.example.com/v/1",
				VideoURL: "https://cdn.example.com/1.mp4",
			},
		},
	}
}

func newTestDispatcher(providers ...provider.Provider) *Dispatcher {
	return NewDispatcher(provider.NewRegistry(providers...), config.Defaults(), 300*time.Second)
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		path  string
		url   string
		debug bool
	}{
		{"/fake.example.com/v/1", "https://fake.example.com/v/1", false},
		{"//fake.example.com/v/1", "https://fake.example.com/v/1", false},
		{"/https://fake.example.com/v/1", "https://fake.example.com/v/1", false},
		{"/http://fake.example.com/v/1", "https://fake.example.com/v/1", false},
		{"/https:/fake.example.com/v/1", "https://fake.example.com/v/1", false},
		{"/_d/fake.example.com/v/1", "https://fake.example.com/v/1", true},
		{"/_d/https://fake.example.com/v/1", "https://fake.example.com/v/1", true},
	}

	for _, tt := range tests {
		url, debug, err := Canonicalize(tt.path)
		if err != nil {
			t.Errorf("Canonicalize(%q) returned error: %v", tt.path, err)
			continue
		}
		if url != tt.url {
			t.Errorf("Canonicalize(%q) = %q, expected %q", tt.path, url, tt.url)
		}
		if debug != tt.debug {
			t.Errorf("Canonicalize(%q) debug = %t, expected %t", tt.path, debug, tt.debug)
		}
	}
}

func TestHandle_NoProvider(t *testing.T) {
	dispatcher := newTestDispatcher()

	resp := dispatcher.Handle(context.Background(), "/unknown.example.com/v/1", testUserAgent, "https://vid.example.com")
	if resp.Status != http.StatusFound {
		t.Fatalf("Expected 302, got %d", resp.Status)
	}
	if resp.Header.Get("Location") != "https://unknown.example.com/v/1" {
		t.Errorf("Unexpected redirect target: %s", resp.Header.Get("Location"))
	}
}

func TestHandle_PatternMiss(t *testing.T) {
	fake := videoProvider()
	fake.matches = false
	dispatcher := newTestDispatcher(fake)

	resp := dispatcher.Handle(context.Background(), "/fake.example.com/other", testUserAgent, "https://vid.example.com")
	if resp.Status != http.StatusFound {
		t.Fatalf("Expected 302, got %d", resp.Status)
	}
	if fake.extracts != 0 {
		t.Errorf("Expected no extraction on pattern miss, got %d", fake.extracts)
	}
}

func TestHandle_UnknownUserAgentRedirects(t *testing.T) {
	fake := videoProvider()
	dispatcher := newTestDispatcher(fake)

	resp := dispatcher.Handle(context.Background(), "/fake.example.com/v/1", "Mozilla/5.0 (some browser)", "https://vid.example.com")
	if resp.Status != http.StatusFound {
		t.Fatalf("Expected 302, got %d", resp.Status)
	}
	if resp.Header.Get("Location") != "https://fake.example.com/v/1" {
		t.Errorf("Unexpected redirect target: %s", resp.Header.Get("Location"))
	}
	if fake.extracts != 0 {
		t.Errorf("Expected no extraction for unknown user agent, got %d", fake.extracts)
	}
}

func TestHandle_SuccessCachedWithinTTL(t *testing.T) {
	fake := videoProvider()
	dispatcher := newTestDispatcher(fake)

	first := dispatcher.Handle(context.Background(), "/fake.example.com/v/1", testUserAgent, "https://vid.example.com")
	if first.Status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", first.Status)
	}
	if first.Header.Get("Cache-Control") != "s-maxage=300" {
		t.Errorf("Unexpected Cache-Control: %s", first.Header.Get("Cache-Control"))
	}

	second := dispatcher.Handle(context.Background(), "/fake.example.com/v/1", testUserAgent, "https://vid.example.com")
	if string(second.Body) != string(first.Body) {
		t.Error("Expected cached replay to be byte-identical")
	}
	if fake.extracts != 1 {
		t.Errorf("Expected a single extraction, got %d", fake.extracts)
	}
}

func TestHandle_FailuresNotCached(t *testing.T) {
	fake := videoProvider()
	fake.result = nil
	fake.err = errors.New("upstream exploded")
	dispatcher := newTestDispatcher(fake)

	for i := 0; i < 2; i++ {
		resp := dispatcher.Handle(context.Background(), "/fake.example.com/v/1", testUserAgent, "https://vid.example.com")
		if resp.Status != http.StatusFound {
			t.Fatalf("Expected 302, got %d", resp.Status)
		}
		if resp.Header.Get("Cache-Control") != "" {
			t.Errorf("Redirect should not carry Cache-Control, got %s", resp.Header.Get("Cache-Control"))
		}
	}
	if fake.extracts != 2 {
		t.Errorf("Expected failed extractions to retry, got %d", fake.extracts)
	}
}

func TestHandle_DebugTogglesPresentationOnly(t *testing.T) {
	fake := videoProvider()
	fake.result = nil
	fake.err = errors.New("upstream exploded")
	dispatcher := newTestDispatcher(fake)

	plain := dispatcher.Handle(context.Background(), "/fake.example.com/v/1", testUserAgent, "https://vid.example.com")
	if plain.Status != http.StatusFound {
		t.Fatalf("Expected 302 outside debug mode, got %d", plain.Status)
	}

	debug := dispatcher.Handle(context.Background(), "/_d/fake.example.com/v/1", testUserAgent, "https://vid.example.com")
	if debug.Status != http.StatusOK {
		t.Fatalf("Expected 200 in debug mode, got %d", debug.Status)
	}
	if !strings.Contains(string(debug.Body), "upstream exploded") {
		t.Error("Debug page should carry the failure message")
	}
}

func TestHandle_PrivateContent(t *testing.T) {
	fake := videoProvider()
	fake.result = nil
	fake.err = provider.ErrPrivateContent
	dispatcher := newTestDispatcher(fake)

	resp := dispatcher.Handle(context.Background(), "/_d/fake.example.com/v/1", testUserAgent, "https://vid.example.com")
	if !strings.Contains(string(resp.Body), "Video is private") {
		t.Error("Expected the private-video failure message")
	}
}

func TestHandle_RawPassThrough(t *testing.T) {
	fake := videoProvider()
	fake.result = &provider.Result{
		Raw: &provider.RawResponse{
			Status: http.StatusOK,
			Header: http.Header{"Content-Type": []string{"application/json"}},
			Body:   []byte(`{"ok":true}`),
		},
	}
	dispatcher := newTestDispatcher(fake)

	resp := dispatcher.Handle(context.Background(), "/fake.example.com/v/1", testUserAgent, "https://vid.example.com")
	if resp.Status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.Status)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Unexpected Content-Type: %s", resp.Header.Get("Content-Type"))
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("Unexpected body: %s", resp.Body)
	}
}
