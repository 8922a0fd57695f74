package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Snazzah/VideoEmbedFix/app/fetch"
)

func newTwitterForTest(t *testing.T, statusJSON string) *Twitter {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/1.1/guest/activate.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Guest activation should be a POST, got %s", r.Method)
		}
		if r.Header.Get("Authorization") == "" {
			t.Error("Guest activation should carry the bearer token")
		}
		w.Write([]byte(`{"guest_token": "guest-token-1"}`))
	})
	mux.HandleFunc("/1.1/statuses/show/12345.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Guest-Token") != "guest-token-1" {
			t.Errorf("Status lookup should carry the guest token, got %q", r.Header.Get("X-Guest-Token"))
		}
		if r.URL.Query().Get("tweet_mode") != "extended" {
			t.Error("Status lookup should request extended tweet mode")
		}
		w.Write([]byte(statusJSON))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	p := NewTwitter(fetch.NewClient(time.Minute), "test-bearer")
	p.apiBase = server.URL
	return p
}

func TestTwitter_Match(t *testing.T) {
	p := NewTwitter(nil, "token")

	tests := []struct {
		url      string
		statusID string
	}{
		{"https://twitter.com/user/status/12345", "12345"},
		{"https://mobile.twitter.com/user/status/12345", "12345"},
		{"https://m.twitter.com/user/status/12345", "12345"},
		{"https://fxtwitter.com/user/status/12345", "12345"},
		{"https://twitter.com/i/web/status/12345", "12345"},
		{"https://twitter.com/statuses/12345", "12345"},
	}
	for _, tt := range tests {
		match := p.Match(tt.url)
		if match == nil {
			t.Errorf("Expected %q to match", tt.url)
			continue
		}
		if match[1] != tt.statusID {
			t.Errorf("Expected status id %q for %q, got %q", tt.statusID, tt.url, match[1])
		}
	}

	if p.Match("https://twitter.com/user") != nil {
		t.Error("Profile URL should not match")
	}
}

func TestTwitter_Extract_SelectsHighestBitrateMP4(t *testing.T) {
	statusJSON := `{
		"full_text": "check this\nout",
		"user": {"name": "Some User", "screen_name": "someuser"},
		"extended_entities": {"media": [{
			"type": "video",
			"media_url": "https://pbs.twimg.com/media/fallback.jpg",
			"media_url_https": "https://pbs.twimg.com/media/thumb.jpg",
			"original_info": {"width": 1280, "height": 720},
			"video_info": {"variants": [
				{"bitrate": 800, "content_type": "video/mp4", "url": "https://video.twimg.com/low.mp4"},
				{"bitrate": 0, "content_type": "application/x-mpegURL", "url": "https://video.twimg.com/pl.m3u8"},
				{"bitrate": 1200, "content_type": "video/mp4", "url": "https://video.twimg.com/high.mp4"}
			]}
		}]}
	}`
	p := newTwitterForTest(t, statusJSON)

	target := "https://twitter.com/user/status/12345"
	result, err := p.Extract(context.Background(), Request{Match: p.Match(target), URL: target})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result == nil || result.Descriptor == nil {
		t.Fatal("Expected a descriptor result")
	}

	d := result.Descriptor
	if d.VideoURL != "https://video.twimg.com/high.mp4" {
		t.Errorf("Expected highest-bitrate mp4 variant, got %s", d.VideoURL)
	}
	if d.User != "Some User (@someuser)" {
		t.Errorf("Unexpected user: %s", d.User)
	}
	if d.Title != "check this out" {
		t.Errorf("Newlines should be flattened, got %q", d.Title)
	}
	if d.Thumbnail != "https://pbs.twimg.com/media/thumb.jpg" {
		t.Errorf("Unexpected thumbnail: %s", d.Thumbnail)
	}
}

func TestTwitter_Extract_ExpandsShortenedURLs(t *testing.T) {
	statusJSON := `{
		"full_text": "look https://t.co/abc",
		"entities": {"urls": [{"url": "https://t.co/abc", "expanded_url": "https://example.com/article"}]},
		"user": {"name": "Some User", "screen_name": "someuser"},
		"extended_entities": {"media": [{
			"type": "video",
			"media_url_https": "https://pbs.twimg.com/media/thumb.jpg",
			"original_info": {"width": 640, "height": 360},
			"video_info": {"variants": [
				{"bitrate": 500, "content_type": "video/mp4", "url": "https://video.twimg.com/only.mp4"}
			]}
		}]}
	}`
	p := newTwitterForTest(t, statusJSON)

	target := "https://twitter.com/user/status/12345"
	result, err := p.Extract(context.Background(), Request{Match: p.Match(target), URL: target})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.Descriptor.Title != "look https://example.com/article" {
		t.Errorf("t.co URL should be expanded, got %q", result.Descriptor.Title)
	}
}

func TestTwitter_Extract_PlayerCard(t *testing.T) {
	statusJSON := `{
		"full_text": "watch live",
		"user": {"name": "Some User", "screen_name": "someuser"},
		"card": {
			"name": "player",
			"binding_values": {
				"player_stream_content_type": {"string_value": "video/mp4; codecs=avc1"},
				"player_stream_url": {"string_value": "https://stream.example.com/live.mp4"},
				"player_image": {"image_value": {"url": "https://pbs.twimg.com/card.jpg", "width": 800, "height": 450}},
				"player_width": {"string_value": "800"},
				"player_height": {"string_value": "450"}
			}
		}
	}`
	p := newTwitterForTest(t, statusJSON)

	target := "https://twitter.com/user/status/12345"
	result, err := p.Extract(context.Background(), Request{Match: p.Match(target), URL: target})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	d := result.Descriptor
	if d.VideoURL != "https://stream.example.com/live.mp4" {
		t.Errorf("Unexpected video URL: %s", d.VideoURL)
	}
	if d.MediaType != "video/mp4" {
		t.Errorf("Media type should drop codec parameters, got %q", d.MediaType)
	}
	if d.Width != 800 || d.Height != 450 {
		t.Errorf("Unexpected dimensions: %dx%d", d.Width, d.Height)
	}
}

func TestTwitter_Extract_NoEntities(t *testing.T) {
	statusJSON := `{
		"full_text": "just text",
		"user": {"name": "Some User", "screen_name": "someuser"}
	}`
	p := newTwitterForTest(t, statusJSON)

	target := "https://twitter.com/user/status/12345"
	if _, err := p.Extract(context.Background(), Request{Match: p.Match(target), URL: target}); err == nil {
		t.Error("Expected error for status without media entities")
	}
}

func TestTwitter_Extract_PhotoOnlyStatus(t *testing.T) {
	statusJSON := `{
		"full_text": "a photo",
		"user": {"name": "Some User", "screen_name": "someuser"},
		"extended_entities": {"media": [{
			"type": "photo",
			"media_url_https": "https://pbs.twimg.com/media/photo.jpg"
		}]}
	}`
	p := newTwitterForTest(t, statusJSON)

	target := "https://twitter.com/user/status/12345"
	result, err := p.Extract(context.Background(), Request{Match: p.Match(target), URL: target})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result != nil {
		t.Error("Photo-only status should yield a nil result")
	}
}
