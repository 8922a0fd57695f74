package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/Snazzah/VideoEmbedFix/app/fetch"
)

var coubPattern = regexp.MustCompile(`^https?://(?:coub\.com/(?:view|embed|coubs)/|c-cdn\.coub\.com/fb-player\.swf\?.*\bcoub(?:ID|id)=)([\da-z]+)`)

// Coub extracts loops from Coub's public JSON API. Only coubs with a
// populated share rendition are embeddable.
type Coub struct {
	client  *fetch.Client
	apiBase string
}

func NewCoub(client *fetch.Client) *Coub {
	return &Coub{client: client, apiBase: "https://coub.com"}
}

func (p *Coub) Title() string { return "Coub" }

func (p *Coub) Domains() []string {
	return []string{"coub.com", "c-cdn.coub.com"}
}

func (p *Coub) Match(url string) []string {
	return coubPattern.FindStringSubmatch(url)
}

type coubResponse struct {
	Title   string `json:"title"`
	Channel struct {
		Title     string `json:"title"`
		Permalink string `json:"permalink"`
	} `json:"channel"`
	FileVersions struct {
		Share struct {
			Default string `json:"default"`
		} `json:"share"`
	} `json:"file_versions"`
	FirstFrameVersions struct {
		Template string `json:"template"`
	} `json:"first_frame_versions"`
	Size struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"size"`
}

func (p *Coub) Extract(ctx context.Context, req Request) (*Result, error) {
	videoID := req.Match[1]

	resp, _, err := p.client.Do(ctx, fetch.Request{
		URL: fmt.Sprintf("%s/api/v2/coubs/%s.json", p.apiBase, videoID),
	})
	if err != nil {
		return nil, err
	}
	if resp.Status != 200 {
		return nil, fmt.Errorf("coub API returned status %d", resp.Status)
	}

	var video coubResponse
	if err := json.Unmarshal(resp.Body, &video); err != nil {
		return nil, fmt.Errorf("failed to parse coub response: %w", err)
	}

	if video.FileVersions.Share.Default == "" {
		return nil, nil
	}

	return &Result{Descriptor: &Descriptor{
		User:       fmt.Sprintf("%s (@%s)", video.Channel.Title, video.Channel.Permalink),
		Title:      video.Title,
		URL:        "http://coub.com/view/" + videoID,
		ThemeColor: "#0026ca",
		Thumbnail:  video.FirstFrameVersions.Template,
		VideoURL:   video.FileVersions.Share.Default,
		Width:      video.Size.Width,
		Height:     video.Size.Height,
	}}, nil
}
