package api

import (
	"time"

	"github.com/ekazakov/news-relay/app/database"
	"github.com/ekazakov/news-relay/app/source"
	"github.com/ekazakov/news-relay/app/state"
)

type Handler struct {
	repository  database.PostRepositoryInterface
	configCache *source.ConfigCache
	state       *state.State
	startedAt   time.Time
}
