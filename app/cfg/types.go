package cfg

type Cfg struct {
	// Publish sink configuration
	BotToken      string
	PublisherChat string
	AdminChat     string

	// Storage configuration
	DBPath     string
	StatePath  string
	BackupDir  string
	BackupDays int

	// Pipeline configuration
	SourcesDir      string
	CycleInterval   int // seconds
	CycleCooldown   int // seconds
	FetchLimit      int
	PublishDelay    int // seconds
	RetryDelay      int // seconds
	HTTPTimeout     int // seconds
	IdentityCeiling int

	// Transform configuration
	TargetLanguage  string
	EnrichEndpoint  string
	EnrichModel     string
	EnrichAPIKey    string
	EnrichMinLength int
	EnrichMaxLength int
	EnrichKeywords  []string

	// Application metadata
	Port      string
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
