package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from .env, environment and flags.
type Config struct {
	RunAddress string
	APIBase    string
	PublicURL  string

	DatabaseURI string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PlanCacheTTL  time.Duration

	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string

	StripeSecretKey string
	TurnstileSecret string
	StateSecret     string

	CookieDomain  string
	CookieSecure  bool
	RememberMeTTL time.Duration

	PollInterval    time.Duration
	PollMaxAttempts int
	TrackerInterval time.Duration
	TrackerBatch    int
	WorkerPoolSize  int

	RedirectDelay   time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	LogLevel        string
}

const (
	defaultRunAddress      = ":8080"
	defaultPublicURL       = "http://localhost:8080"
	defaultStateSecret     = "change-me-in-production"
	defaultPlanCacheTTL    = 5 * time.Minute
	defaultRememberMeTTL   = 30 * 24 * time.Hour
	defaultPollInterval    = 2 * time.Second
	defaultPollMaxAttempts = 15
	defaultTrackerInterval = 3 * time.Second
	defaultTrackerBatch    = 32
	defaultWorkerPoolSize  = 4
	defaultRedirectDelay   = 1500 * time.Millisecond
	defaultRequestTimeout  = 10 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultAllowedOrigins  = "http://localhost:3000"
	defaultLogLevel        = "info"
)

// Load parses configuration from .env file, environment variables and flags.
func Load() (*Config, error) {
	if err := loadDotEnv(os.Getenv("ENV_FILE")); err != nil {
		return nil, err
	}
	return load(os.Args[1:], os.LookupEnv)
}

func loadDotEnv(file string) error {
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", file, err)
	}
	return nil
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		APIBase:           getString(lookup, "API_BASE", ""),
		PublicURL:         getString(lookup, "PUBLIC_URL", defaultPublicURL),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		RedisAddr:         getString(lookup, "REDIS_ADDR", ""),
		RedisPassword:     getString(lookup, "REDIS_PASSWORD", ""),
		RedisDB:           getInt(lookup, "REDIS_DB", 0),
		PlanCacheTTL:      getDuration(lookup, "PLAN_CACHE_TTL", defaultPlanCacheTTL),
		SupabaseURL:       getString(lookup, "SUPABASE_URL", ""),
		SupabaseAnonKey:   getString(lookup, "SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret: getString(lookup, "SUPABASE_JWT_SECRET", ""),
		StripeSecretKey:   getString(lookup, "STRIPE_SECRET_KEY", ""),
		TurnstileSecret:   getString(lookup, "TURNSTILE_SECRET_KEY", ""),
		StateSecret:       getString(lookup, "STATE_SECRET", defaultStateSecret),
		CookieDomain:      getString(lookup, "COOKIE_DOMAIN", ""),
		CookieSecure:      getBool(lookup, "COOKIE_SECURE", false),
		RememberMeTTL:     getDuration(lookup, "REMEMBER_ME_TTL", defaultRememberMeTTL),
		PollInterval:      getDuration(lookup, "POLL_INTERVAL", defaultPollInterval),
		PollMaxAttempts:   getInt(lookup, "POLL_MAX_ATTEMPTS", defaultPollMaxAttempts),
		TrackerInterval:   getDuration(lookup, "TRACKER_INTERVAL", defaultTrackerInterval),
		TrackerBatch:      getInt(lookup, "TRACKER_BATCH", defaultTrackerBatch),
		WorkerPoolSize:    getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		RedirectDelay:     getDuration(lookup, "REDIRECT_DELAY", defaultRedirectDelay),
		RequestTimeout:    getDuration(lookup, "REQUEST_TIMEOUT", defaultRequestTimeout),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:          getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}
	origins := getString(lookup, "ALLOWED_ORIGINS", defaultAllowedOrigins)

	flags := flag.NewFlagSet("vpndash", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.PollInterval.String()
		trackerIntervalStr = cfg.TrackerInterval.String()
		redirectDelayStr   = cfg.RedirectDelay.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		planCacheTTLStr    = cfg.PlanCacheTTL.String()
	)

	flags.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	flags.StringVar(&cfg.APIBase, "b", cfg.APIBase, "Backend API base URL")
	flags.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	flags.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "Externally visible base URL")
	flags.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for plan cache")
	flags.StringVar(&cfg.StateSecret, "state-secret", cfg.StateSecret, "Secret for signing OAuth state")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	flags.IntVar(&cfg.PollMaxAttempts, "poll-attempts", cfg.PollMaxAttempts, "Maximum status checks per purchase")
	flags.IntVar(&cfg.TrackerBatch, "tracker-batch", cfg.TrackerBatch, "Maximum purchases per tracker batch")
	flags.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent tracker workers")
	flags.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between status checks")
	flags.StringVar(&trackerIntervalStr, "tracker-interval", trackerIntervalStr, "Interval between tracker batches")
	flags.StringVar(&redirectDelayStr, "redirect-delay", redirectDelayStr, "Delay before redirecting expired sessions")
	flags.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	flags.StringVar(&planCacheTTLStr, "plan-cache-ttl", planCacheTTLStr, "Plan catalog cache TTL")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.PollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}
	if cfg.TrackerInterval, err = time.ParseDuration(trackerIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid tracker interval: %w", err)
	}
	if cfg.RedirectDelay, err = time.ParseDuration(redirectDelayStr); err != nil {
		return nil, fmt.Errorf("invalid redirect delay: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	if cfg.PlanCacheTTL, err = time.ParseDuration(planCacheTTLStr); err != nil {
		return nil, fmt.Errorf("invalid plan cache ttl: %w", err)
	}

	if secretFile, ok := lookup("STATE_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read state secret file: %w", err)
		}
		cfg.StateSecret = strings.TrimSpace(string(content))
	}

	cfg.AllowedOrigins = splitList(origins)
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.PollMaxAttempts <= 0 {
		cfg.PollMaxAttempts = defaultPollMaxAttempts
	}
	if cfg.TrackerInterval <= 0 {
		cfg.TrackerInterval = defaultTrackerInterval
	}
	if cfg.TrackerBatch <= 0 {
		cfg.TrackerBatch = defaultTrackerBatch
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}
	if cfg.RedirectDelay < 0 {
		cfg.RedirectDelay = defaultRedirectDelay
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.PlanCacheTTL <= 0 {
		cfg.PlanCacheTTL = defaultPlanCacheTTL
	}
	if cfg.RememberMeTTL <= 0 {
		cfg.RememberMeTTL = defaultRememberMeTTL
	}

	if cfg.APIBase == "" {
		return nil, fmt.Errorf("backend API base must be provided")
	}
	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
