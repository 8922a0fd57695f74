package provider

import (
	"context"
	"errors"
	"net/http"
)

// ErrPrivateContent is returned when an upstream explicitly reports that the
// requested content is access-restricted. Callers surface it as its own
// user-facing failure instead of a generic extraction error.
var ErrPrivateContent = errors.New("video is private")

// Descriptor is the normalized output contract every provider produces.
// VideoURL must be directly fetchable by a media-embedding client without
// further auth; providers whose upstream forbids hot-linking rewrite it to a
// same-origin proxy URL.
type Descriptor struct {
	User          string
	Title         string
	Description   string
	TelegramTitle string
	URL           string
	Thumbnail     string
	VideoURL      string
	ThemeColor    string
	Width         int
	Height        int
	MediaType     string
}

// RawResponse is a verbatim response a provider may hand back instead of a
// descriptor, bypassing HTML rendering entirely.
type RawResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// Result carries exactly one of Descriptor or Raw.
type Result struct {
	Descriptor *Descriptor
	Raw        *RawResponse
}

// Request is the per-extraction input: the capture groups from the
// provider's pattern, the canonical target URL, the per-request debug flag
// and the public origin of this service (for same-origin URL rewrites).
type Request struct {
	Match   []string
	URL     string
	Debug   bool
	HostURL string
}

// Provider is one self-contained unit of knowledge about an upstream
// content service. Extract returns (nil, nil) when the host was recognized
// but the specific content has no eligible video.
type Provider interface {
	Title() string
	Domains() []string
	Match(url string) []string
	Extract(ctx context.Context, req Request) (*Result, error)
}
