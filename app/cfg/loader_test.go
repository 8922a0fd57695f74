package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		Port:               "8080",
		BaseUrl:            "https://vid.example.com",
		DBPath:             "./data/test.db",
		ResponseCacheTTL:   300,
		FetchCacheTTL:      86400,
		TwitterBearerToken: "test-token",
		UserAgent:          "Test Agent",
		Debug:              true,
		Version:            "test-version",
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.BaseUrl != "https://vid.example.com" {
		t.Errorf("Expected base URL 'https://vid.example.com', got '%s'", cfg.BaseUrl)
	}
	if cfg.ResponseCacheTTL != 300 {
		t.Errorf("Expected response cache TTL 300, got %d", cfg.ResponseCacheTTL)
	}
	if cfg.FetchCacheTTL != 86400 {
		t.Errorf("Expected fetch cache TTL 86400, got %d", cfg.FetchCacheTTL)
	}
	if cfg.TwitterBearerToken != "test-token" {
		t.Errorf("Expected bearer token 'test-token', got '%s'", cfg.TwitterBearerToken)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}
