package cfg

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Publish sink configuration
	BotToken      string `long:"bot-token" env:"BOT_TOKEN" description:"Bot API token (required)" required:"true"`
	PublisherChat string `long:"publisher-chat" env:"PUBLISHER_CHANNEL_ID" description:"Destination chat/channel identifier (required)" required:"true"`
	AdminChat     string `long:"admin-chat" env:"ADMIN_CHAT_ID" description:"Admin chat for operator alerts (optional)"`

	// Storage configuration
	DBPath     string `long:"db-path" env:"DB_PATH" default:"./published_posts.db" description:"SQLite database file for the identity store"`
	StatePath  string `long:"state-path" env:"STATE_PATH" default:"./state.json" description:"Snapshot file for caches and statistics"`
	BackupDir  string `long:"backup-dir" env:"BACKUP_DIR" default:"./backups" description:"Directory for dated state backups"`
	BackupDays int    `long:"backup-days" env:"BACKUP_DAYS" default:"7" description:"Days to retain dated state backups"`

	// Pipeline configuration
	SourcesDir      string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing source configuration files"`
	CycleInterval   int    `long:"cycle-interval" env:"UPDATE_INTERVAL" default:"600" description:"Seconds between relay cycles"`
	CycleCooldown   int    `long:"cycle-cooldown" env:"CYCLE_COOLDOWN" default:"60" description:"Cooldown in seconds after a failed cycle"`
	FetchLimit      int    `long:"fetch-limit" env:"FETCH_LIMIT" default:"20" description:"Maximum candidates taken per source per cycle"`
	PublishDelay    int    `long:"publish-delay" env:"PUBLISH_DELAY" default:"5" description:"Pacing delay in seconds after each publish"`
	RetryDelay      int    `long:"retry-delay" env:"RETRY_DELAY" default:"2" description:"Delay in seconds before retrying a translation provider"`
	HTTPTimeout     int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"30" description:"Timeout in seconds for outbound HTTP calls"`
	IdentityCeiling int    `long:"identity-ceiling" env:"IDENTITY_CEILING" default:"10000" description:"Maximum records kept in the identity store"`

	// Transform configuration
	TargetLanguage  string `long:"target-language" env:"TARGET_LANGUAGE" default:"ru" description:"Language published items are translated into"`
	EnrichEndpoint  string `long:"enrich-endpoint" env:"ENRICH_ENDPOINT" description:"OpenAI-compatible chat completions endpoint (optional)"`
	EnrichModel     string `long:"enrich-model" env:"ENRICH_MODEL" default:"gpt-4o-mini" description:"Model used for deep-research reports"`
	EnrichAPIKey    string `long:"enrich-api-key" env:"ENRICH_API_KEY" description:"API key for the enrichment endpoint"`
	EnrichMinLength int    `long:"enrich-min-length" env:"ENRICH_MIN_LENGTH" default:"400" description:"Minimum body length for enrichment eligibility"`
	EnrichMaxLength int    `long:"enrich-max-length" env:"ENRICH_MAX_LENGTH" default:"3500" description:"Hard ceiling on generated report length"`
	EnrichKeywords  string `long:"enrich-keywords" env:"ENRICH_KEYWORDS" description:"Comma-separated trigger keywords for enrichment"`

	// Application metadata
	Port      string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"NewsRelay/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
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
		BotToken:        raw.BotToken,
		PublisherChat:   raw.PublisherChat,
		AdminChat:       raw.AdminChat,
		DBPath:          raw.DBPath,
		StatePath:       raw.StatePath,
		BackupDir:       raw.BackupDir,
		BackupDays:      raw.BackupDays,
		SourcesDir:      raw.SourcesDir,
		CycleInterval:   raw.CycleInterval,
		CycleCooldown:   raw.CycleCooldown,
		FetchLimit:      raw.FetchLimit,
		PublishDelay:    raw.PublishDelay,
		RetryDelay:      raw.RetryDelay,
		HTTPTimeout:     raw.HTTPTimeout,
		IdentityCeiling: raw.IdentityCeiling,
		TargetLanguage:  raw.TargetLanguage,
		EnrichEndpoint:  raw.EnrichEndpoint,
		EnrichModel:     raw.EnrichModel,
		EnrichAPIKey:    raw.EnrichAPIKey,
		EnrichMinLength: raw.EnrichMinLength,
		EnrichMaxLength: raw.EnrichMaxLength,
		EnrichKeywords:  splitKeywords(raw.EnrichKeywords),
		Port:            raw.Port,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
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

func splitKeywords(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var keywords []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			keywords = append(keywords, part)
		}
	}
	return keywords
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
