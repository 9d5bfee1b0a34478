package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DataDir string `long:"data-dir" env:"DATA_DIR" default:"data" description:"Directory for the database and generated reports"`
	DBPath  string `long:"db-path" env:"DB_PATH" description:"Path to the SQLite database (default: <data-dir>/radar.db)"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" default:"http://localhost:8080" description:"Public base URL used in digest links"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for mutating endpoints (optional)"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for task processing"`

	// Scheduling intervals
	IngestInterval  int `long:"ingest-interval" env:"INGEST_INTERVAL" default:"60" description:"Ingestion run interval in minutes"`
	DigestInterval  int `long:"digest-interval" env:"DIGEST_INTERVAL" default:"1440" description:"Digest email interval in minutes"`
	CleanupInterval int `long:"cleanup-interval" env:"CLEANUP_INTERVAL" default:"1440" description:"Retention cleanup interval in minutes"`

	// Source credentials
	XBearerToken  string `long:"x-bearer-token" env:"X_API_BEARER_TOKEN" description:"X API bearer token (absence disables the source)"`
	YouTubeAPIKey string `long:"youtube-api-key" env:"YOUTUBE_API_KEY" description:"YouTube Data API key (absence disables the source)"`
	GoogleCSEKey  string `long:"google-cse-key" env:"GOOGLE_CSE_API_KEY" description:"Google Custom Search API key (absence disables the source)"`
	GoogleCSECX   string `long:"google-cse-cx" env:"GOOGLE_CSE_CX" description:"Google Custom Search engine ID"`

	// Classification hook
	OpenAIAPIKey string `long:"openai-api-key" env:"OPENAI_API_KEY" description:"OpenAI API key (absence disables classification)"`
	OpenAIModel  string `long:"openai-model" env:"OPENAI_MODEL" default:"gpt-4o-mini" description:"Model used for item classification"`

	// Digest delivery
	SMTPHost        string `long:"smtp-host" env:"SMTP_HOST" description:"SMTP host for digest delivery (absence disables email)"`
	SMTPPort        int    `long:"smtp-port" env:"SMTP_PORT" default:"587" description:"SMTP port"`
	SMTPUsername    string `long:"smtp-username" env:"SMTP_USERNAME" description:"SMTP username"`
	SMTPPassword    string `long:"smtp-password" env:"SMTP_PASSWORD" description:"SMTP password"`
	SMTPSender      string `long:"smtp-sender" env:"SMTP_SENDER" description:"Digest sender address"`
	DigestRecipient string `long:"digest-recipient" env:"DEFAULT_EMAIL_RECIPIENT" description:"Default digest recipient address"`

	// Freshness and retention policy
	ContentMinDate    string `long:"content-min-date" env:"CONTENT_MIN_DATE" default:"2025-11-01" description:"Absolute floor date for item timestamps (YYYY-MM-DD)"`
	ContentMaxAgeDays int    `long:"content-max-age-days" env:"CONTENT_MAX_AGE_DAYS" default:"7" description:"Rolling freshness window in days"`
	RetentionDays     int    `long:"retention-days" env:"RETENTION_DAYS" default:"90" description:"Retention of stored items in days"`

	// Watchlist configuration
	WatchlistPath string `long:"watchlist" env:"WATCHLIST_PATH" default:"./watchlist.yml" description:"Path to the watchlist YAML file"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"AI-Radar/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Singapore)"`
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

	minDate, err := time.ParseInLocation("2006-01-02", raw.ContentMinDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid content-min-date %q: %w", raw.ContentMinDate, err)
	}

	cfg := &Cfg{
		DataDir:           raw.DataDir,
		DBPath:            cmp.Or(raw.DBPath, raw.DataDir+"/radar.db"),
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		APIAccessKey:      raw.APIAccessKey,
		WorkerCount:       raw.WorkerCount,
		IngestInterval:    raw.IngestInterval,
		DigestInterval:    raw.DigestInterval,
		CleanupInterval:   raw.CleanupInterval,
		XBearerToken:      raw.XBearerToken,
		YouTubeAPIKey:     raw.YouTubeAPIKey,
		GoogleCSEKey:      raw.GoogleCSEKey,
		GoogleCSECX:       raw.GoogleCSECX,
		OpenAIAPIKey:      raw.OpenAIAPIKey,
		OpenAIModel:       raw.OpenAIModel,
		SMTPHost:          raw.SMTPHost,
		SMTPPort:          raw.SMTPPort,
		SMTPUsername:      raw.SMTPUsername,
		SMTPPassword:      raw.SMTPPassword,
		SMTPSender:        raw.SMTPSender,
		DigestRecipient:   raw.DigestRecipient,
		ContentMinDate:    minDate,
		ContentMaxAgeDays: raw.ContentMaxAgeDays,
		RetentionDays:     raw.RetentionDays,
		WatchlistPath:     raw.WatchlistPath,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
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
