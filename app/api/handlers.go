package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Snazzah/VideoEmbedFix/app/config"
	"github.com/Snazzah/VideoEmbedFix/app/database"
	"github.com/Snazzah/VideoEmbedFix/app/dispatch"
	"github.com/Snazzah/VideoEmbedFix/app/embed"
	"github.com/gin-gonic/gin"
)

const indexDescription = "VideoEmbedFix is a service that fixes embeds for various services in Discord and Telegram.\n" +
	"Created by Snazzah (snazzah.com), inspired by TwitFix by robinuniverse.\n\n" +
	"Click here to redirect to the GitHub repo!"

type oembedResponse struct {
	Type         string `json:"type"`
	Version      string `json:"version"`
	ProviderName string `json:"provider_name"`
	ProviderURL  string `json:"provider_url"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url"`
}

func NewHandler(dispatcher *dispatch.Dispatcher, settings *config.Config,
	store database.MediaURLRepository, baseURL string) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		settings:   settings,
		store:      store,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
	}
}

// GetIndex serves an informational embed to link-preview fetchers and sends
// everyone else to the project repository.
func (h *Handler) GetIndex(c *gin.Context) {
	if !h.settings.IsEmbedClient(c.Request.UserAgent()) {
		c.Redirect(http.StatusMovedPermanently, embed.RepoURL)
		return
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
  <head>
    <title>%[1]s</title>
    <meta content="%[1]s" property="og:title" />
    <meta content="%[2]s" property="og:description" />
    <meta content="%[3]s" property="og:url" />
    <meta content="#fc2929" data-react-helmet="true" name="theme-color" />
    <meta http-equiv="refresh" content="0; url=%[3]s" />
  </head>
  <body>
    Redirecting you to this service's Github Repository: <a href="%[3]s">%[3]s</a>
  </body>
</html>`, embed.ServiceName, indexDescription, embed.RepoURL)

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Expires", "0")
	c.Header("Surrogate-Control", "no-store")

	c.String(http.StatusOK, "OK")
}

// GetOEmbed echoes the query parameters embedded by the renderer back as an
// oEmbed document. Embed fetchers resolve the discovery link themselves, so
// the document only ever describes what this service rendered.
func (h *Handler) GetOEmbed(c *gin.Context) {
	service := c.Query("s")

	c.JSON(http.StatusOK, oembedResponse{
		Type:         "video",
		Version:      "1.0",
		ProviderName: fmt.Sprintf("%s (via %s)", service, embed.ServiceName),
		ProviderURL:  embed.RepoURL,
		Title:        c.Query("t"),
		URL:          c.Query("l"),
		AuthorName:   c.Query("u"),
		AuthorURL:    c.Query("l"),
	})
}

// GetProxy streams an upstream media file through this origin. Some
// upstreams reject hot-linked playback, so rendered embeds point players
// here instead of at the CDN directly.
func (h *Handler) GetProxy(c *gin.Context) {
	mediaURL := c.Query("l")

	parsed, err := url.Parse(mediaURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") ||
		!h.settings.Proxy.Allows(parsed.Hostname()) {
		c.String(http.StatusBadRequest, "Invalid media URL.")
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, parsed.String(), nil)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid media URL.")
		return
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Referer", parsed.String())

	resp, err := h.httpClient.Do(req)
	if err != nil {
		slog.Error("Media proxy fetch failed", "url", parsed.String(), "error", err)
		c.Status(http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	c.DataFromReader(resp.StatusCode, resp.ContentLength, resp.Header.Get("Content-Type"), resp.Body, nil)
}

// GetStream resolves a previously stored media URL for one piece of content
// and redirects to its proxied form. On a miss it falls back to the
// canonical upstream page rather than re-scraping.
func (h *Handler) GetStream(c *gin.Context) {
	service := c.Param("service")
	user := c.Param("user")
	contentID := c.Param("id")

	mediaURL, err := h.store.Get(service, user, contentID)
	if err != nil {
		slog.Error("Database error", "operation", "get_media_url", "service", service, "error", err)
		mediaURL = ""
	}

	if mediaURL != "" {
		c.Redirect(http.StatusFound, h.hostURL(c)+"/proxy?l="+url.QueryEscape(mediaURL))
		return
	}

	if service == "tiktok" {
		c.Redirect(http.StatusFound, fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", user, contentID))
		return
	}

	c.Status(http.StatusNotFound)
}

// GetEmbed runs the dispatch pipeline for any path not claimed by another
// route.
func (h *Handler) GetEmbed(c *gin.Context) {
	path := c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		path += "?" + c.Request.URL.RawQuery
	}

	resp := h.dispatcher.Handle(c.Request.Context(), path, c.Request.UserAgent(), h.hostURL(c))

	for key, values := range resp.Header {
		for _, value := range values {
			c.Writer.Header().Add(key, value)
		}
	}
	c.Writer.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		c.Writer.Write(resp.Body)
	}
}

func (h *Handler) hostURL(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	return "https://" + c.Request.Host
}
