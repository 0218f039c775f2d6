package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ekazakov/news-relay/app/cfg"
	"github.com/ekazakov/news-relay/app/database"
	"github.com/ekazakov/news-relay/app/source"
	"github.com/ekazakov/news-relay/app/state"
)

// Relay drives the publish cycle: every interval it visits the enabled
// sources in configured order and pushes their unseen items through the
// pipeline. A mutex tried (never awaited) on each tick guarantees a
// single running cycle; a slow cycle makes overlapping ticks no-ops.
type Relay struct {
	configCache   *source.ConfigCache
	repository    database.PostRepositoryInterface
	translator    Translator
	enricher      Enricher
	finder        ImageFinder
	publisher     Publisher
	state         *state.State
	httpClient    *http.Client
	pageExtractor Extractor
	feedExtractor Extractor
	userAgent     string
	fetchLimit    int
	fetchTimeout  time.Duration
	interval      time.Duration
	cooldown      time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	cycleMu sync.Mutex
}

func NewRelay(configCache *source.ConfigCache, repository database.PostRepositoryInterface,
	translator Translator, enricher Enricher, finder ImageFinder, publisher Publisher,
	st *state.State, httpClient *http.Client) *Relay {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Relay{
		configCache:   configCache,
		repository:    repository,
		translator:    translator,
		enricher:      enricher,
		finder:        finder,
		publisher:     publisher,
		state:         st,
		httpClient:    httpClient,
		pageExtractor: source.NewPageExtractor(),
		feedExtractor: source.NewFeedExtractor(),
		userAgent:     cfg.UserAgent,
		fetchLimit:    cfg.FetchLimit,
		fetchTimeout:  time.Duration(cfg.HTTPTimeout) * time.Second,
		interval:      time.Duration(cfg.CycleInterval) * time.Second,
		cooldown:      time.Duration(cfg.CycleCooldown) * time.Second,
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (r *Relay) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.tick()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				r.tick()
			}
		}
	}()
}

// Stop cancels the in-flight cycle, waits for it to return, then
// flushes the state snapshot.
func (r *Relay) Stop() {
	r.cancel()
	r.wg.Wait()

	if err := r.state.Save(); err != nil {
		slog.Error("Failed to save state snapshot on shutdown", "error", err)
	}
}

func (r *Relay) tick() {
	if !r.cycleMu.TryLock() {
		slog.Debug("Previous cycle still running, skipping tick")
		return
	}
	defer r.cycleMu.Unlock()

	err := r.runCycle(r.ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}

	// Per-source isolation should make this unreachable; treat it as
	// an escalation and back off before the next tick.
	slog.Error("Cycle failed", "error", err)
	r.state.RecordError(err.Error())
	r.publisher.Alert(r.ctx, "News relay cycle failed: "+err.Error())

	select {
	case <-r.ctx.Done():
	case <-time.After(r.cooldown):
	}
}

func (r *Relay) runCycle(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("cycle panic: %v", rec)
		}
	}()

	r.state.CycleStarted()

	configs := r.configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		slog.Debug("No enabled sources configured")
		return nil
	}

	started := time.Now()
	slog.Info("Cycle started", "sources", len(configs))

	for _, src := range configs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.processSource(ctx, src); err != nil {
			// Shutdown cancellation is not a source failure.
			if errors.Is(err, context.Canceled) {
				return err
			}
			slog.Error("Source processing failed", "source", src.Name, "error", err)
			r.state.RecordError(fmt.Sprintf("%s: %v", src.Name, err))
		}
	}

	stats := r.state.Stats()
	slog.Info("Cycle completed", "duration", time.Since(started).Round(time.Millisecond).String(), "published", stats.LastPublished)

	return nil
}
