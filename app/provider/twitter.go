package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Snazzah/VideoEmbedFix/app/fetch"
)

var (
	twitterPattern = regexp.MustCompile(`^https?://(?:(?:www|m(?:obile)?)\.)?(?:fx)?twitter\.com/(?:(?:i/web|[^/]+)/status|statuses)/(\d+)`)
	vmapPattern    = regexp.MustCompile(`<tw:videoVariant url="(https%3A%2F%2Fvideo\.twimg\.com%2F[^.>]+\.mp4)" content_type="video/mp4" bit_rate="\d+"`)
)

const playerPlaceholderThumb = "https://pbs.twimg.com/cards/player-placeholder.png"

// Twitter extracts status videos through the guest-level v1.1 API: first a
// guest session token, then the status JSON. Statuses attach video in
// several card sub-formats which are tried in a fixed priority order before
// falling back to plain attached media.
type Twitter struct {
	client      *fetch.Client
	apiBase     string
	bearerToken string
}

func NewTwitter(client *fetch.Client, bearerToken string) *Twitter {
	return &Twitter{
		client:      client,
		apiBase:     "https://api.twitter.com",
		bearerToken: bearerToken,
	}
}

func (p *Twitter) Title() string { return "Twitter" }

func (p *Twitter) Domains() []string {
	return []string{
		"twitter.com",
		"www.twitter.com",
		"m.twitter.com",
		"mobile.twitter.com",
		"fxtwitter.com",
		"www.fxtwitter.com",
	}
}

func (p *Twitter) Match(url string) []string {
	return twitterPattern.FindStringSubmatch(url)
}

// Partial shapes of the v1.1 status payload, limited to the fields consumed.

type tweetStatus struct {
	FullText string `json:"full_text"`
	Entities struct {
		URLs []struct {
			URL         string `json:"url"`
			ExpandedURL string `json:"expanded_url"`
		} `json:"urls"`
	} `json:"entities"`
	User struct {
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
	} `json:"user"`
	Card *struct {
		Name          string                  `json:"name"`
		BindingValues map[string]bindingValue `json:"binding_values"`
	} `json:"card"`
	ExtendedEntities *struct {
		Media []tweetMedia `json:"media"`
	} `json:"extended_entities"`
}

type bindingValue struct {
	StringValue string `json:"string_value"`
	ImageValue  *struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"image_value"`
}

type tweetMedia struct {
	Type          string `json:"type"`
	MediaURL      string `json:"media_url"`
	MediaURLHTTPS string `json:"media_url_https"`
	VideoInfo     *struct {
		Variants []videoVariant `json:"variants"`
	} `json:"video_info"`
	OriginalInfo struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"original_info"`
}

type videoVariant struct {
	Bitrate     int    `json:"bitrate"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

func (p *Twitter) Extract(ctx context.Context, req Request) (*Result, error) {
	statusID := req.Match[1]

	token, err := p.guestToken(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"cards_platform":        {"Web-12"},
		"include_cards":         {"1"},
		"include_reply_count":   {"1"},
		"include_user_entities": {"0"},
		"tweet_mode":            {"extended"},
	}

	resp, _, err := p.client.Do(ctx, fetch.Request{
		URL: fmt.Sprintf("%s/1.1/statuses/show/%s.json?%s", p.apiBase, statusID, query.Encode()),
		Header: http.Header{
			"Authorization": {"Bearer " + p.bearerToken},
			"X-Guest-Token": {token},
		},
	})
	if err != nil {
		return nil, err
	}
	if resp.Status != 200 {
		return nil, fmt.Errorf("status lookup returned %d", resp.Status)
	}

	var status tweetStatus
	if err := json.Unmarshal(resp.Body, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}

	tweetContent := strings.ReplaceAll(status.FullText, "\n", " ")
	for _, u := range status.Entities.URLs {
		tweetContent = strings.ReplaceAll(tweetContent, u.URL, u.ExpandedURL)
	}

	partial := Descriptor{
		User:        formatHandle(status.User.Name, status.User.ScreenName),
		Title:       tweetContent,
		Description: tweetContent,
		URL:         req.URL,
		ThemeColor:  "#1da0f2",
	}

	if result := p.extractFromCard(ctx, &status, partial); result != nil {
		return result, nil
	}

	if status.ExtendedEntities == nil || len(status.ExtendedEntities.Media) == 0 {
		return nil, fmt.Errorf("no media entities in status")
	}

	media := status.ExtendedEntities.Media[0]
	if media.Type != "video" || media.VideoInfo == nil {
		return nil, nil
	}

	videoURL := bestMP4Variant(media.VideoInfo.Variants)
	if videoURL == "" {
		videoURL = media.MediaURL
	}

	descriptor := partial
	descriptor.Thumbnail = media.MediaURLHTTPS
	descriptor.VideoURL = videoURL
	descriptor.Width = media.OriginalInfo.Width
	descriptor.Height = media.OriginalInfo.Height
	return &Result{Descriptor: &descriptor}, nil
}

// extractFromCard tries the card sub-formats in priority order and returns
// nil when none of them yields a usable video URL.
func (p *Twitter) extractFromCard(ctx context.Context, status *tweetStatus, partial Descriptor) *Result {
	card := status.Card
	if card == nil {
		return nil
	}
	values := card.BindingValues

	if card.Name == "amplify" {
		if videoURL := p.extractFromVMap(ctx, values["amplify_url_vmap"].StringValue); videoURL != "" {
			descriptor := partial
			descriptor.Thumbnail = playerPlaceholderThumb
			descriptor.VideoURL = videoURL
			descriptor.Width = atoi(values["player_width"].StringValue)
			descriptor.Height = atoi(values["player_height"].StringValue)
			return &Result{Descriptor: &descriptor}
		}
	}

	if card.Name == "player" && values["player_stream_content_type"].StringValue != "" {
		descriptor := partial
		if image := values["player_image"].ImageValue; image != nil {
			descriptor.Thumbnail = image.URL
		}
		descriptor.VideoURL = values["player_stream_url"].StringValue
		descriptor.Width = atoi(values["player_width"].StringValue)
		descriptor.Height = atoi(values["player_height"].StringValue)
		descriptor.MediaType = baseMediaType(values["player_stream_content_type"].StringValue)
		return &Result{Descriptor: &descriptor}
	}

	if card.Name == "promo_video_convo" {
		if videoURL := p.extractFromVMap(ctx, values["player_url"].StringValue); videoURL != "" {
			descriptor := partial
			if cover := values["cover_player_image"].ImageValue; cover != nil {
				descriptor.Thumbnail = cover.URL
				descriptor.Width = cover.Width
				descriptor.Height = cover.Height
			}
			descriptor.VideoURL = videoURL
			descriptor.MediaType = baseMediaType(values["cover_player_stream_content_type"].StringValue)
			return &Result{Descriptor: &descriptor}
		}
	}

	appPlayerCards := map[string]bool{
		"appplayer":         true,
		"poll2choice_video": true,
		"poll3choice_video": true,
		"poll4choice_video": true,
	}
	if appPlayerCards[card.Name] || strings.HasSuffix(card.Name, ":video_direct_message") {
		if videoURL := p.extractFromVMap(ctx, values["player_stream_url"].StringValue); videoURL != "" {
			descriptor := partial
			if cover := values["player_image"].ImageValue; cover != nil {
				descriptor.Thumbnail = cover.URL
				descriptor.Width = cover.Width
				descriptor.Height = cover.Height
			}
			descriptor.VideoURL = videoURL
			return &Result{Descriptor: &descriptor}
		}
	}

	return nil
}

func (p *Twitter) guestToken(ctx context.Context) (string, error) {
	resp, _, err := p.client.Do(ctx, fetch.Request{
		Method: http.MethodPost,
		URL:    p.apiBase + "/1.1/guest/activate.json",
		Header: http.Header{"Authorization": {"Bearer " + p.bearerToken}},
	})
	if err != nil {
		return "", err
	}
	if resp.Status != 200 {
		return "", fmt.Errorf("guest token request returned %d", resp.Status)
	}

	var token struct {
		GuestToken string `json:"guest_token"`
	}
	if err := json.Unmarshal(resp.Body, &token); err != nil {
		return "", fmt.Errorf("failed to parse guest token response: %w", err)
	}
	if token.GuestToken == "" {
		return "", fmt.Errorf("guest token response was empty")
	}

	return token.GuestToken, nil
}

// extractFromVMap resolves an amplify-style VMAP document to its first mp4
// variant URL, or "" when the document has none.
func (p *Twitter) extractFromVMap(ctx context.Context, vmapURL string) string {
	if vmapURL == "" {
		return ""
	}

	resp, _, err := p.client.Do(ctx, fetch.Request{URL: vmapURL})
	if err != nil {
		return ""
	}

	match := vmapPattern.FindStringSubmatch(string(resp.Body))
	if match == nil {
		return ""
	}

	decoded, err := url.QueryUnescape(match[1])
	if err != nil {
		return ""
	}
	return decoded
}

func bestMP4Variant(variants []videoVariant) string {
	sorted := make([]videoVariant, len(variants))
	copy(sorted, variants)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Bitrate > sorted[j].Bitrate })

	for _, v := range sorted {
		if v.ContentType == "video/mp4" {
			return v.URL
		}
	}
	return ""
}

func formatHandle(name, screenName string) string {
	if name != "" {
		return fmt.Sprintf("%s (@%s)", name, screenName)
	}
	return "@" + screenName
}

func baseMediaType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return base
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
