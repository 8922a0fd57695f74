package cfg

type Cfg struct {
	// Application configuration
	Port       string
	BaseUrl    string
	DBPath     string
	ConfigFile string

	// Cache windows (seconds)
	ResponseCacheTTL int
	FetchCacheTTL    int

	// Background maintenance
	CleanupInterval int
	WorkerCount     int

	// Provider credentials
	TwitterBearerToken string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
