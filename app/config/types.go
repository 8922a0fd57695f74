package config

import "strings"

// Config holds the embed client allow-list and the scrape strategy used to
// mimic a browser against upstreams that reject non-browser traffic.
type Config struct {
	EmbedClients []string       `yaml:"embed_clients"`
	Scrape       ScrapeSettings `yaml:"scrape"`
	Proxy        ProxySettings  `yaml:"proxy"`
}

// ScrapeSettings describes how randomized browser headers and session
// cookies are generated. Upstream scrape targets change their bot detection
// over time, so none of this is hard-coded in provider logic.
type ScrapeSettings struct {
	Platforms      []string `yaml:"platforms"`
	ChromeMajorMin int      `yaml:"chrome_major_min"`
	ChromeMajorMax int      `yaml:"chrome_major_max"`
	CookieName     string   `yaml:"cookie_name"`
	CookiePrefix   string   `yaml:"cookie_prefix"`
	CookieDigits   int      `yaml:"cookie_digits"`
}

// ProxySettings restricts which upstream hosts the media proxy endpoint
// will fetch from.
type ProxySettings struct {
	AllowedSuffixes []string `yaml:"allowed_suffixes"`
}

// Allows reports whether hostname matches one of the allowed domain
// suffixes, either exactly or as a subdomain.
func (p ProxySettings) Allows(hostname string) bool {
	for _, suffix := range p.AllowedSuffixes {
		if hostname == suffix || strings.HasSuffix(hostname, "."+suffix) {
			return true
		}
	}
	return false
}
