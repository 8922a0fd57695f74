package api

import (
	"net/http"

	"github.com/Snazzah/VideoEmbedFix/app/config"
	"github.com/Snazzah/VideoEmbedFix/app/database"
	"github.com/Snazzah/VideoEmbedFix/app/dispatch"
)

type Handler struct {
	dispatcher *dispatch.Dispatcher
	settings   *config.Config
	store      database.MediaURLRepository
	httpClient *http.Client
	baseURL    string
}
