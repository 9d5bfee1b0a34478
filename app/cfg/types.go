package cfg

import "time"

type Cfg struct {
	// Storage configuration
	DataDir string
	DBPath  string

	// Application configuration
	Port         string
	BaseUrl      string
	APIAccessKey string
	WorkerCount  int

	// Scheduling intervals, minutes
	IngestInterval  int
	DigestInterval  int
	CleanupInterval int

	// Source credentials; an empty value disables the source
	XBearerToken  string
	YouTubeAPIKey string
	GoogleCSEKey  string
	GoogleCSECX   string

	// Classification hook
	OpenAIAPIKey string
	OpenAIModel  string

	// Digest delivery
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPSender      string
	DigestRecipient string

	// Freshness and retention policy
	ContentMinDate    time.Time
	ContentMaxAgeDays int
	RetentionDays     int

	// Watchlist configuration
	WatchlistPath string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
