package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Snazzah/VideoEmbedFix/app/config"
	"github.com/Snazzah/VideoEmbedFix/app/embed"
	"github.com/Snazzah/VideoEmbedFix/app/provider"
)

const responseCacheSize = 4096

var schemePattern = regexp.MustCompile(`^https?:/{1,2}`)

// Canonicalize turns a request path into the upstream URL it names. The
// leading slashes and an optional "_d/" debug marker are stripped, any
// mangled scheme prefix is removed and "https://" is prepended, so the
// same content URL always canonicalizes to the same string.
func Canonicalize(path string) (string, bool, error) {
	target := strings.TrimLeft(path, "/")

	debug := strings.HasPrefix(target, "_d/")
	if debug {
		target = target[len("_d/"):]
	}

	target = schemePattern.ReplaceAllString(target, "")
	canonical := "https://" + target

	if _, err := url.Parse(canonical); err != nil {
		return "", debug, err
	}
	return canonical, debug, nil
}

// Dispatcher drives the full pipeline for one request path: canonicalize,
// resolve a provider, gate on the embed-client allow list, then serve a
// rendered embed out of the response cache.
type Dispatcher struct {
	registry *provider.Registry
	settings *config.Config
	renderer *embed.Renderer
	cache    *expirable.LRU[string, *embed.Response]
	cacheTTL time.Duration
}

func NewDispatcher(registry *provider.Registry, settings *config.Config, cacheTTL time.Duration) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		settings: settings,
		renderer: embed.NewRenderer(),
		cache:    expirable.NewLRU[string, *embed.Response](responseCacheSize, nil, cacheTTL),
		cacheTTL: cacheTTL,
	}
}

func (d *Dispatcher) Handle(ctx context.Context, path, userAgent, hostURL string) *embed.Response {
	target, debug, err := Canonicalize(path)
	if err != nil {
		return embed.RedirectDebug(fmt.Sprintf("Failed to extract (%s): %s", path, err), path, debug)
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return embed.RedirectDebug(fmt.Sprintf("Failed to extract (%s): %s", target, err), target, debug)
	}

	prov := d.registry.Lookup(parsed.Hostname())
	if prov == nil {
		return embed.RedirectDebug("Could not find a provider", target, debug)
	}

	// Regular browsers get sent straight to the content. Only known embed
	// crawlers are worth the extraction cost.
	if userAgent != "" && !d.settings.IsEmbedClient(userAgent) {
		slog.Debug("Redirecting non-embed client", "user_agent", userAgent, "url", target)
		return embed.Redirect(target, http.StatusFound)
	}

	hints := embed.HintsFromUserAgent(userAgent)
	key := cacheKey(target, debug, hints)

	if cached, ok := d.cache.Get(key); ok {
		return cached.Clone()
	}

	resp := d.compute(ctx, prov, target, debug, hints, hostURL)

	// Redirect outcomes are transient failures and stay uncached so a
	// later request gets another chance at extraction.
	if resp.Status < http.StatusMultipleChoices || resp.Status >= http.StatusBadRequest {
		resp.Header.Set("Cache-Control", fmt.Sprintf("s-maxage=%d", int(d.cacheTTL.Seconds())))
		d.cache.Add(key, resp.Clone())
	}
	return resp
}

func (d *Dispatcher) compute(ctx context.Context, prov provider.Provider, target string, debug bool, hints embed.ClientHints, hostURL string) *embed.Response {
	match := prov.Match(target)
	if match == nil {
		return embed.RedirectDebug(fmt.Sprintf("Failed to match URL (%s, %s)", prov.Title(), target), target, debug)
	}

	result, err := prov.Extract(ctx, provider.Request{
		Match:   match,
		URL:     target,
		Debug:   debug,
		HostURL: hostURL,
	})
	switch {
	case errors.Is(err, provider.ErrPrivateContent):
		return embed.RedirectDebug("Video is private", target, debug)
	case err != nil:
		return embed.RedirectDebug(fmt.Sprintf("Provider threw an error (%s, %s): %s", prov.Title(), target, err), target, debug)
	case result == nil || (result.Descriptor == nil && result.Raw == nil):
		return embed.RedirectDebug(fmt.Sprintf("Provider gave a null response (%s, %s)", prov.Title(), target), target, debug)
	}

	if result.Raw != nil {
		header := result.Raw.Header.Clone()
		if header == nil {
			header = http.Header{}
		}
		return &embed.Response{
			Status: result.Raw.Status,
			Header: header,
			Body:   result.Raw.Body,
		}
	}

	return d.renderer.Render(result.Descriptor, prov.Title(), hostURL, hints)
}

func cacheKey(target string, debug bool, hints embed.ClientHints) string {
	return fmt.Sprintf("%t|%t|%t|%s", debug, hints.IsDiscord, hints.IsTelegram, target)
}
