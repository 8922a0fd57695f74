package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults matches the set of link-preview fetchers known to request rich
// embeds, plus the strategy observed to pass the short-form video platform's
// bot checks. A YAML file can override any of it without a rebuild.
func Defaults() *Config {
	return &Config{
		EmbedClients: []string{
			"Mozilla/5.0 (compatible; Discordbot/2.0; +https://discordapp.com)",
			"TelegramBot (like TwitterBot)",
			"Mozilla/5.0 (compatible; January/1.0; +https://gitlab.insrt.uk/revolt/january)",
			"vidembedtest",
		},
		Scrape: ScrapeSettings{
			Platforms: []string{
				"Macintosh; Intel Mac OS X 10_15_7",
				"Macintosh; Intel Mac OS X 10_15_5",
				"Macintosh; Intel Mac OS X 10_11_6",
				"Macintosh; Intel Mac OS X 10_6_6",
				"Macintosh; Intel Mac OS X 10_9_5",
				"Macintosh; Intel Mac OS X 10_10_5",
				"Windows NT 10.0; Win64; x64",
				"Windows NT 10.0; WOW64",
				"Windows NT 10.0",
			},
			ChromeMajorMin: 87,
			ChromeMajorMax: 89,
			CookieName:     "tt_webid_v2",
			CookiePrefix:   "69",
			CookieDigits:   17,
		},
		Proxy: ProxySettings{
			AllowedSuffixes: []string{"tiktok.com", "tiktokcdn.com"},
		},
	}
}

// Load returns the embedded defaults when path is empty, otherwise the
// defaults overlaid with the YAML file at path.
func Load(path string) (*Config, error) {
	config := Defaults()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	slog.Info("Configuration loaded", "path", path, "embed_clients", len(config.EmbedClients))

	return config, nil
}

func validate(config *Config) error {
	if len(config.EmbedClients) == 0 {
		return fmt.Errorf("embed_clients must not be empty")
	}
	if len(config.Scrape.Platforms) == 0 {
		return fmt.Errorf("scrape.platforms must not be empty")
	}
	if config.Scrape.ChromeMajorMin > config.Scrape.ChromeMajorMax {
		return fmt.Errorf("scrape.chrome_major_min must not exceed scrape.chrome_major_max")
	}
	if config.Scrape.CookieDigits <= 0 {
		return fmt.Errorf("scrape.cookie_digits must be positive")
	}
	return nil
}

// IsEmbedClient reports whether the given User-Agent belongs to a known
// link-preview fetcher. Matching is exact: embed fetchers send fixed UA
// strings.
func (c *Config) IsEmbedClient(userAgent string) bool {
	for _, ua := range c.EmbedClients {
		if ua == userAgent {
			return true
		}
	}
	return false
}
