package fetch

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/Snazzah/VideoEmbedFix/app/config"
)

// Stealth generates randomized browser-looking headers and session cookies
// from the configured scrape strategy. The short-form video upstreams serve
// stripped-down pages to anything that does not look like a real browser.
type Stealth struct {
	settings config.ScrapeSettings
}

func NewStealth(settings config.ScrapeSettings) *Stealth {
	return &Stealth{settings: settings}
}

// UserAgent returns a plausible desktop Chrome user agent with a randomized
// platform and version.
func (s *Stealth) UserAgent() string {
	platform := s.settings.Platforms[rand.IntN(len(s.settings.Platforms))]

	major := s.settings.ChromeMajorMin
	if spread := s.settings.ChromeMajorMax - s.settings.ChromeMajorMin; spread > 0 {
		major += rand.IntN(spread + 1)
	}
	build := 4100 + rand.IntN(190)
	patch := 140 + rand.IntN(50)

	return fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.%d.%d Safari/537.36",
		platform, major, build, patch)
}

// SessionCookie returns a "name=value" pair with a randomized numeric
// session identifier.
func (s *Stealth) SessionCookie() string {
	var digits strings.Builder
	digits.WriteString(s.settings.CookiePrefix)
	for i := 0; i < s.settings.CookieDigits; i++ {
		digits.WriteByte(byte('0' + rand.IntN(10)))
	}
	return s.settings.CookieName + "=" + digits.String()
}
