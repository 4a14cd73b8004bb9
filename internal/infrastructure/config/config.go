package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides
const EnvPrefix = "DAIRY"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Upstream  UpstreamConfig
	Dashboard DashboardConfig
	Review    ReviewConfig
	Directory DirectoryConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Log       LogConfig
	Event     EventConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// UpstreamConfig holds settings for the dairy backend API
type UpstreamConfig struct {
	BaseURL        string
	AuthToken      string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// DashboardConfig holds metric aggregation settings
type DashboardConfig struct {
	WeekStart          string        // monday, sunday, ...
	Timezone           string        // IANA zone used for calendar windows
	SourceTimeout      time.Duration // per-source fetch timeout
	CustomerFetchLimit int           // page size used when loading all customers for counts
}

// ReviewConfig holds quantity update review settings
type ReviewConfig struct {
	LockEnabled  bool
	LockTTL      time.Duration
	AuditEnabled bool
}

// DirectoryConfig holds customer directory settings
type DirectoryConfig struct {
	DebounceDelay   time.Duration
	DefaultPageSize int
	SessionTTL      time.Duration
	BulkDeleteRate  float64 // deletes per second
	BulkDeleteBurst int
}

// DatabaseConfig holds database connection settings for the review audit log
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	LogLevel        string
}

// RedisConfig holds Redis connection settings for action locks
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// StorageConfig holds snapshot archive storage settings
type StorageConfig struct {
	Type            string // local or s3
	LocalPath       string
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	Prefix          string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// EventConfig holds event bus configuration
type EventConfig struct {
	AsyncDispatch bool
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// SchedulerConfig holds background job configuration
type SchedulerConfig struct {
	Enabled             bool
	RefreshInterval     time.Duration
	ArchiveEnabled      bool
	ArchiveCronSchedule string
	MaxConcurrentJobs   int
	JobTimeout          time.Duration
	RetryAttempts       int
	RetryDelay          time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsInterval   time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with DAIRY_ prefix (e.g., DAIRY_UPSTREAM_BASE_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Upstream: UpstreamConfig{
			BaseURL:        v.GetString("upstream.base_url"),
			AuthToken:      v.GetString("upstream.auth_token"),
			Timeout:        v.GetDuration("upstream.timeout"),
			MaxRetries:     v.GetInt("upstream.max_retries"),
			RetryBaseDelay: v.GetDuration("upstream.retry_base_delay"),
			RetryMaxDelay:  v.GetDuration("upstream.retry_max_delay"),
		},
		Dashboard: DashboardConfig{
			WeekStart:          v.GetString("dashboard.week_start"),
			Timezone:           v.GetString("dashboard.timezone"),
			SourceTimeout:      v.GetDuration("dashboard.source_timeout"),
			CustomerFetchLimit: v.GetInt("dashboard.customer_fetch_limit"),
		},
		Review: ReviewConfig{
			LockEnabled:  !v.IsSet("review.lock_enabled") || v.GetBool("review.lock_enabled"),
			LockTTL:      v.GetDuration("review.lock_ttl"),
			AuditEnabled: v.GetBool("review.audit_enabled"),
		},
		Directory: DirectoryConfig{
			DebounceDelay:   v.GetDuration("directory.debounce_delay"),
			DefaultPageSize: v.GetInt("directory.default_page_size"),
			SessionTTL:      v.GetDuration("directory.session_ttl"),
			BulkDeleteRate:  v.GetFloat64("directory.bulk_delete_rate"),
			BulkDeleteBurst: v.GetInt("directory.bulk_delete_burst"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("database.enabled"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			LogLevel:        v.GetString("database.log_level"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Storage: StorageConfig{
			Type:            v.GetString("storage.type"),
			LocalPath:       v.GetString("storage.local_path"),
			Bucket:          v.GetString("storage.bucket"),
			Region:          v.GetString("storage.region"),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			Prefix:          v.GetString("storage.prefix"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Event: EventConfig{
			AsyncDispatch: v.GetBool("event.async_dispatch"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Scheduler: SchedulerConfig{
			Enabled:             v.GetBool("scheduler.enabled"),
			RefreshInterval:     v.GetDuration("scheduler.refresh_interval"),
			ArchiveEnabled:      v.GetBool("scheduler.archive_enabled"),
			ArchiveCronSchedule: v.GetString("scheduler.archive_cron_schedule"),
			MaxConcurrentJobs:   v.GetInt("scheduler.max_concurrent_jobs"),
			JobTimeout:          v.GetDuration("scheduler.job_timeout"),
			RetryAttempts:       v.GetInt("scheduler.retry_attempts"),
			RetryDelay:          v.GetDuration("scheduler.retry_delay"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "dairy-dashboard"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = "http://localhost:5000/api"
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = 10 * time.Second
	}
	if cfg.Upstream.MaxRetries == 0 {
		cfg.Upstream.MaxRetries = 2
	}
	if cfg.Upstream.RetryBaseDelay == 0 {
		cfg.Upstream.RetryBaseDelay = 200 * time.Millisecond
	}
	if cfg.Upstream.RetryMaxDelay == 0 {
		cfg.Upstream.RetryMaxDelay = 2 * time.Second
	}
	if cfg.Dashboard.WeekStart == "" {
		cfg.Dashboard.WeekStart = "monday"
	}
	if cfg.Dashboard.Timezone == "" {
		cfg.Dashboard.Timezone = "Asia/Kolkata"
	}
	if cfg.Dashboard.SourceTimeout == 0 {
		cfg.Dashboard.SourceTimeout = 8 * time.Second
	}
	if cfg.Dashboard.CustomerFetchLimit == 0 {
		cfg.Dashboard.CustomerFetchLimit = 1000
	}
	if cfg.Review.LockTTL == 0 {
		cfg.Review.LockTTL = 30 * time.Second
	}
	if cfg.Directory.DebounceDelay == 0 {
		cfg.Directory.DebounceDelay = 300 * time.Millisecond
	}
	if cfg.Directory.DefaultPageSize == 0 {
		cfg.Directory.DefaultPageSize = 10
	}
	if cfg.Directory.SessionTTL == 0 {
		cfg.Directory.SessionTTL = 30 * time.Minute
	}
	if cfg.Directory.BulkDeleteRate == 0 {
		cfg.Directory.BulkDeleteRate = 10
	}
	if cfg.Directory.BulkDeleteBurst == 0 {
		cfg.Directory.BulkDeleteBurst = 5
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "dairy_dashboard"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "./data/archive"
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = "snapshots"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 300
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// CORS origins have no wildcard fallback; an empty list allows no cross-origin requests.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Actor"}
	}
	if cfg.Scheduler.RefreshInterval == 0 {
		cfg.Scheduler.RefreshInterval = 5 * time.Minute
	}
	if cfg.Scheduler.ArchiveCronSchedule == "" {
		cfg.Scheduler.ArchiveCronSchedule = "55 23 * * *"
	}
	if cfg.Scheduler.MaxConcurrentJobs == 0 {
		cfg.Scheduler.MaxConcurrentJobs = 2
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 2 * time.Minute
	}
	if cfg.Scheduler.RetryAttempts == 0 {
		cfg.Scheduler.RetryAttempts = 2
	}
	if cfg.Scheduler.RetryDelay == 0 {
		cfg.Scheduler.RetryDelay = 30 * time.Second
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "dairy-dashboard"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 30 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream.base_url must be an absolute URL, got %q", c.Upstream.BaseURL)
	}
	if c.Upstream.MaxRetries < 0 {
		return fmt.Errorf("upstream.max_retries cannot be negative")
	}
	if _, err := c.Dashboard.WeekStartDay(); err != nil {
		return err
	}
	if _, err := c.Dashboard.Location(); err != nil {
		return err
	}
	if c.Directory.DefaultPageSize < 1 || c.Directory.DefaultPageSize > 100 {
		return fmt.Errorf("directory.default_page_size must be between 1 and 100")
	}
	if c.Directory.BulkDeleteRate < 0 {
		return fmt.Errorf("directory.bulk_delete_rate cannot be negative")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Review.AuditEnabled && !c.Database.Enabled {
		return fmt.Errorf("review.audit_enabled requires database.enabled")
	}
	switch c.Storage.Type {
	case "local":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required when storage.type is s3")
		}
	default:
		return fmt.Errorf("storage.type must be local or s3, got %q", c.Storage.Type)
	}

	if c.App.Env == "production" {
		if c.Database.Enabled && c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// WeekStartDay parses WeekStart
func (d DashboardConfig) WeekStartDay() (time.Weekday, error) {
	day, ok := weekdays[strings.ToLower(strings.TrimSpace(d.WeekStart))]
	if !ok {
		return time.Monday, fmt.Errorf("dashboard.week_start must be a weekday name, got %q", d.WeekStart)
	}
	return day, nil
}

// Location loads the configured time zone
func (d DashboardConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("dashboard.timezone: %w", err)
	}
	return loc, nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
