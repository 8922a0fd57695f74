package embed

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/Snazzah/VideoEmbedFix/app/provider"
)

const (
	ServiceName = "VideoEmbedFix"
	RepoURL     = "https://github.com/Snazzah/VideoEmbedFix"

	defaultThemeColor = "#fc2929"
	defaultWidth      = 720
	defaultHeight     = 480
	defaultMediaType  = "video/mp4"
)

// ClientHints captures the two embed fetchers whose rendering quirks need
// per-client markup: Telegram has no oEmbed discovery or auto-redirect
// support, and Discord is the only one that renders a description.
type ClientHints struct {
	IsDiscord  bool
	IsTelegram bool
}

func HintsFromUserAgent(userAgent string) ClientHints {
	return ClientHints{
		IsDiscord:  strings.Contains(userAgent, "Discordbot"),
		IsTelegram: strings.Contains(userAgent, "TelegramBot"),
	}
}

var embedTemplate = template.Must(template.New("embed").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta content="text/html; charset=UTF-8" http-equiv="Content-Type" />
    <meta content="{{.ThemeColor}}" data-react-helmet="true" name="theme-color" />
    <meta property="og:site_name" content="{{.SiteName}}" />

    <meta name="twitter:card" content="player" />
    <meta name="twitter:title" content="{{.Title}}" />
    <meta name="twitter:image" content="{{.Thumbnail}}" />
    <meta name="twitter:player:width" content="{{.Width}}" />
    <meta name="twitter:player:height" content="{{.Height}}" />
    <meta name="twitter:player:stream" content="{{.VideoURL}}" />
    <meta name="twitter:player:stream:content_type" content="{{.MediaType}}" />

    <meta property="og:url" content="{{.URL}}" />
    <meta property="og:video" content="{{.VideoURL}}" />
    <meta property="og:video:secure_url" content="{{.VideoURL}}" />
    <meta property="og:video:type" content="{{.MediaType}}" />
    <meta property="og:video:width" content="{{.Width}}" />
    <meta property="og:video:height" content="{{.Height}}" />
    <meta property="og:title" content="{{.Title}}" />
    {{- if .Description}}
    <meta property="og:description" content="{{.Description}}" />
    {{- end}}
    <meta property="og:image" content="{{.Thumbnail}}" />
    {{- if .OEmbedURL}}
    <link rel="alternate" href="{{.OEmbedURL}}" type="application/json+oembed" title="{{.Title}}" />
    {{- end}}
    {{- if .ShowRefresh}}
    <meta http-equiv="refresh" content="0; url={{.URL}}" />
    {{- end}}
  </head>
  <body>
    Redirecting you to the following {{.ProviderTitle}} URL: <a href="{{.URL}}">{{.URL}}</a>
  </body>
</html>
`))

type embedData struct {
	ThemeColor    string
	SiteName      string
	ProviderTitle string
	Title         string
	Description   string
	Thumbnail     string
	VideoURL      string
	MediaType     string
	URL           string
	Width         int
	Height        int
	OEmbedURL     string
	ShowRefresh   bool
}

// Renderer turns normalized descriptors into embed-friendly HTML documents.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render builds the metadata document for one descriptor. hostURL is the
// public origin of this service and anchors the oEmbed discovery link.
func (r *Renderer) Render(d *provider.Descriptor, providerTitle, hostURL string, hints ClientHints) *Response {
	title := d.Title
	if hints.IsTelegram && d.TelegramTitle != "" {
		title = d.TelegramTitle
	}

	data := embedData{
		ThemeColor:    d.ThemeColor,
		SiteName:      fmt.Sprintf("%s (via %s)", providerTitle, ServiceName),
		ProviderTitle: providerTitle,
		Title:         title,
		Thumbnail:     d.Thumbnail,
		VideoURL:      d.VideoURL,
		MediaType:     d.MediaType,
		URL:           d.URL,
		Width:         d.Width,
		Height:        d.Height,
	}

	if data.ThemeColor == "" {
		data.ThemeColor = defaultThemeColor
	}
	if data.Width == 0 {
		data.Width = defaultWidth
	}
	if data.Height == 0 {
		data.Height = defaultHeight
	}
	if data.MediaType == "" {
		data.MediaType = defaultMediaType
	}

	if hints.IsDiscord {
		data.Description = d.Description
	}

	// Telegram does not support oEmbed discovery and would follow the
	// refresh before rendering the embed.
	if !hints.IsTelegram {
		data.OEmbedURL = oembedURL(hostURL, d, providerTitle)
		data.ShowRefresh = true
	}

	var buf bytes.Buffer
	if err := embedTemplate.Execute(&buf, data); err != nil {
		return RedirectDebug(fmt.Sprintf("Failed to render embed (%s): %s", providerTitle, err), d.URL, false)
	}

	return NewHTML(http.StatusOK, buf.Bytes())
}

func oembedURL(hostURL string, d *provider.Descriptor, providerTitle string) string {
	user := d.User
	if user == "" {
		user = d.Title
	}

	query := url.Values{
		"t": {d.Title},
		"u": {user},
		"l": {d.VideoURL},
		"s": {providerTitle},
	}
	return hostURL + "/oembed.json?" + query.Encode()
}
