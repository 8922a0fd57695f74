package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Snazzah/VideoEmbedFix/app/database"
	"github.com/Snazzah/VideoEmbedFix/app/fetch"
)

var tiktokPattern = regexp.MustCompile(`^https?://(?:www\.)?tiktok\.com/@([^/]+)/video/(\d+)`)

const (
	tiktokPrivateStatusCode = 10216
	tiktokSideChannelTTL    = 1440 * time.Minute
)

// TikTok scrapes the content page and pulls the JSON payload the web client
// embeds in it. The upstream CDN rejects playback without a matching
// referer, so the descriptor's video URL points at the same-origin proxy
// endpoint instead of the CDN directly. The resolved CDN URL is also stored
// in the durable side channel so the stream lookup route can serve it
// without re-scraping.
type TikTok struct {
	client   *fetch.Client
	stealth  *fetch.Stealth
	store    database.MediaURLRepository
	pageBase string
}

func NewTikTok(client *fetch.Client, stealth *fetch.Stealth, store database.MediaURLRepository) *TikTok {
	return &TikTok{
		client:   client,
		stealth:  stealth,
		store:    store,
		pageBase: "https://www.tiktok.com",
	}
}

func (p *TikTok) Title() string { return "TikTok" }

func (p *TikTok) Domains() []string {
	return []string{"tiktok.com", "www.tiktok.com"}
}

func (p *TikTok) Match(url string) []string {
	return tiktokPattern.FindStringSubmatch(url)
}

type tiktokPayload struct {
	Props struct {
		PageProps struct {
			StatusCode int `json:"statusCode"`
			ItemInfo   struct {
				ItemStruct struct {
					Desc   string `json:"desc"`
					Author struct {
						Nickname string `json:"nickname"`
						UniqueID string `json:"uniqueId"`
					} `json:"author"`
					Video struct {
						PlayAddr    string `json:"playAddr"`
						OriginCover string `json:"originCover"`
						Width       int    `json:"width"`
						Height      int    `json:"height"`
					} `json:"video"`
				} `json:"itemStruct"`
			} `json:"itemInfo"`
		} `json:"pageProps"`
	} `json:"props"`
}

func (p *TikTok) Extract(ctx context.Context, req Request) (*Result, error) {
	username, videoID := req.Match[1], req.Match[2]

	page, evict, err := p.client.Do(ctx, fetch.Request{
		URL: fmt.Sprintf("%s/@%s/video/%s", p.pageBase, username, videoID),
		Header: http.Header{
			"User-Agent": {p.stealth.UserAgent()},
			"Referer":    {"https://www.tiktok.com/"},
			"Cookie":     {p.stealth.SessionCookie()},
		},
	})
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse content page: %w", err)
	}

	payload := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text())
	if payload == "" {
		// The page format likely changed; keeping it cached would poison
		// every later request for the same video.
		evict()
		return nil, fmt.Errorf("embedded data payload not found")
	}

	var data tiktokPayload
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("failed to parse embedded data payload: %w", err)
	}

	if data.Props.PageProps.StatusCode == tiktokPrivateStatusCode {
		return nil, ErrPrivateContent
	}

	item := data.Props.PageProps.ItemInfo.ItemStruct
	if item.Video.PlayAddr == "" {
		return nil, nil
	}

	p.storeMediaURL(username, videoID, item.Video.PlayAddr)

	user := "@" + item.Author.UniqueID
	if item.Author.Nickname != "" {
		user = fmt.Sprintf("%s (@%s)", item.Author.Nickname, item.Author.UniqueID)
	}

	return &Result{Descriptor: &Descriptor{
		User:        user,
		Title:       item.Desc,
		Description: item.Desc,
		URL:         req.URL,
		ThemeColor:  "#fe2c56",
		Thumbnail:   item.Video.OriginCover,
		VideoURL:    req.HostURL + "/proxy?l=" + url.QueryEscape(item.Video.PlayAddr),
		Width:       item.Video.Width,
		Height:      item.Video.Height,
	}}, nil
}

// storeMediaURL writes the resolved CDN URL to the durable side channel.
// Failures are non-fatal: the side channel is best-effort.
func (p *TikTok) storeMediaURL(username, videoID, mediaURL string) {
	if p.store == nil {
		return
	}
	err := p.store.Set("tiktok", username, videoID, mediaURL, time.Now().Add(tiktokSideChannelTTL))
	if err != nil {
		slog.Warn("Failed to store resolved media URL", "user", username, "video", videoID, "error", err)
	}
}
