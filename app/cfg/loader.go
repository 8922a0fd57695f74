package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

// The default bearer token is the one Twitter's own web client ships with;
// it only grants guest-level API access.
const defaultBearerToken = "AAAAAAAAAAAAAAAAAAAAAPYXBAAAAAAACLXUNDekMxqa8h%2F40K4moUkGsoc%3DTYfbDKbT3jJPCEVnMYqilB28NHfOPqkca3qaAxGfsyKCs0wRbw"

type rawCfg struct {
	// Application configuration
	Port       string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl    string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://vid.example.com)"`
	DBPath     string `long:"db-path" env:"DB_PATH" default:"./data/videoembedfix.db" description:"Path to the SQLite database file"`
	ConfigFile string `long:"config-file" env:"CONFIG_FILE" description:"Optional YAML file overriding embed client and scrape settings"`

	// Cache windows
	ResponseCacheTTL int `long:"response-cache-ttl" env:"RESPONSE_CACHE_TTL" default:"300" description:"Rendered response cache TTL in seconds"`
	FetchCacheTTL    int `long:"fetch-cache-ttl" env:"FETCH_CACHE_TTL" default:"86400" description:"Upstream fetch cache TTL in seconds"`

	// Background maintenance
	CleanupInterval int `long:"cleanup-interval" env:"CLEANUP_INTERVAL" default:"3600" description:"Interval in seconds between expired media URL cleanups"`
	WorkerCount     int `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for maintenance tasks"`

	// Provider credentials
	TwitterBearerToken string `long:"twitter-bearer-token" env:"TWITTER_BEARER_TOKEN" description:"Bearer token for Twitter guest API access (defaults to the public web client token)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"VideoEmbedFix/1.0" description:"User agent string for plain upstream requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:               raw.Port,
		BaseUrl:            raw.BaseUrl,
		DBPath:             raw.DBPath,
		ConfigFile:         raw.ConfigFile,
		ResponseCacheTTL:   raw.ResponseCacheTTL,
		FetchCacheTTL:      raw.FetchCacheTTL,
		CleanupInterval:    raw.CleanupInterval,
		WorkerCount:        raw.WorkerCount,
		TwitterBearerToken: cmp.Or(raw.TwitterBearerToken, defaultBearerToken),
		UserAgent:          raw.UserAgent,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
