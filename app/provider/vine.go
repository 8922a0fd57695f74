package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/Snazzah/VideoEmbedFix/app/fetch"
)

var vinePattern = regexp.MustCompile(`^https?://(?:www\.)?vine\.co/(?:v|oembed)/(\w+)`)

// Vine serves posts from the static archive Twitter published after the
// platform shut down. The archive carries no dimensions, so placeholders
// are used.
type Vine struct {
	client      *fetch.Client
	archiveBase string
}

func NewVine(client *fetch.Client) *Vine {
	return &Vine{client: client, archiveBase: "https://archive.vine.co"}
}

func (p *Vine) Title() string { return "Vine" }

func (p *Vine) Domains() []string {
	return []string{"vine.co", "www.vine.co"}
}

func (p *Vine) Match(url string) []string {
	return vinePattern.FindStringSubmatch(url)
}

type vinePost struct {
	Username     string `json:"username"`
	Description  string `json:"description"`
	PermalinkURL string `json:"permalinkUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	VideoURL     string `json:"videoUrl"`
}

func (p *Vine) Extract(ctx context.Context, req Request) (*Result, error) {
	videoID := req.Match[1]

	resp, _, err := p.client.Do(ctx, fetch.Request{
		URL: fmt.Sprintf("%s/posts/%s.json", p.archiveBase, videoID),
	})
	if err != nil {
		return nil, err
	}
	if resp.Status != 200 {
		return nil, fmt.Errorf("vine archive returned status %d", resp.Status)
	}

	var video vinePost
	if err := json.Unmarshal(resp.Body, &video); err != nil {
		return nil, fmt.Errorf("failed to parse vine archive response: %w", err)
	}

	return &Result{Descriptor: &Descriptor{
		User:        video.Username,
		Title:       video.Description,
		Description: video.Description,
		URL:         video.PermalinkURL,
		ThemeColor:  "#00bf8f",
		Thumbnail:   video.ThumbnailURL,
		VideoURL:    video.VideoURL,
		Width:       500,
		Height:      500,
	}}, nil
}
