package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App          AppConfig
	Discord      DiscordConfig
	Ticket       TicketConfig
	Verify       VerifyConfig
	Counter      CounterConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Notification NotificationConfig
}

// AppConfig controls the health server.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string
}

// DiscordConfig holds gateway credentials.
type DiscordConfig struct {
	Token string
}

// TicketConfig identifies the guild resources the ticket workflow operates on.
type TicketConfig struct {
	GuildID          string
	SupportChannelID string
	OpenCategoryID   string
	ClosedCategoryID string
	SupportRoleID    string
}

// EveryoneRoleID returns the id of the guild's @everyone role, which shares the guild id.
func (t TicketConfig) EveryoneRoleID() string {
	return t.GuildID
}

// VerifyConfig configures the join-time verification flow. Empty values disable it.
type VerifyConfig struct {
	ChannelID string
	RoleID    string
}

// Enabled reports whether both verification identifiers are present.
func (v VerifyConfig) Enabled() bool {
	return v.ChannelID != "" && v.RoleID != ""
}

// CounterBackend selects where the ticket counter is persisted.
type CounterBackend string

const (
	CounterBackendFile     CounterBackend = "file"
	CounterBackendRedis    CounterBackend = "redis"
	CounterBackendPostgres CounterBackend = "postgres"
)

// CounterConfig holds ticket counter persistence settings.
type CounterConfig struct {
	Backend  CounterBackend
	FilePath string
	RedisKey string
	Name     string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level         string
	File          string
	MaxSizeMB     int
	MaxBackups    int
	MaxAgeDays    int
	CompressFiles bool
}

// NotificationConfig holds the optional ticket lifecycle webhook.
type NotificationConfig struct {
	WebhookURL            string
	WebhookTimeoutSeconds int
}

// MissingError lists required environment variables that were not set.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return "missing required configuration: " + strings.Join(e.Keys, ", ")
}

// Load reads configuration from environment variables, applying defaults where possible.
// Any missing required identifier is reported as a *MissingError.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	backend := CounterBackend(strings.ToLower(getEnv("COUNTER_BACKEND", string(CounterBackendFile))))
	switch backend {
	case CounterBackendFile, CounterBackendRedis, CounterBackendPostgres:
	default:
		return nil, fmt.Errorf("invalid COUNTER_BACKEND %q", backend)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "ticketbot"),
			Env:     getEnv("APP_ENV", "development"),
			Host:    getEnv("APP_HOST", "0.0.0.0"),
			Port:    getEnv("APP_PORT", "3001"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Discord: DiscordConfig{
			Token: os.Getenv("TICKET_DISCORD_TOKEN"),
		},
		Ticket: TicketConfig{
			GuildID:          os.Getenv("TICKET_GUILD_ID"),
			SupportChannelID: os.Getenv("TICKET_SUPPORT_CHANNEL_ID"),
			OpenCategoryID:   os.Getenv("TICKET_OPEN_CATEGORY_ID"),
			ClosedCategoryID: os.Getenv("TICKET_CLOSED_CATEGORY_ID"),
			SupportRoleID:    os.Getenv("TICKET_SUPPORT_ROLE_ID"),
		},
		Verify: VerifyConfig{
			ChannelID: os.Getenv("VERIFY_CHANNEL_ID"),
			RoleID:    os.Getenv("VERIFY_ROLE_ID"),
		},
		Counter: CounterConfig{
			Backend:  backend,
			FilePath: getEnv("COUNTER_FILE", "ticket_counter.json"),
			RedisKey: getEnv("COUNTER_REDIS_KEY", "ticketbot:ticket_count"),
			Name:     getEnv("COUNTER_NAME", "tickets"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:         getEnv("LOG_LEVEL", "info"),
			File:          os.Getenv("LOG_FILE"),
			MaxSizeMB:     getEnvAsInt("LOG_FILE_MAX_SIZE_MB", 50),
			MaxBackups:    getEnvAsInt("LOG_FILE_MAX_BACKUPS", 5),
			MaxAgeDays:    getEnvAsInt("LOG_FILE_MAX_AGE_DAYS", 14),
			CompressFiles: getEnvAsBool("LOG_FILE_COMPRESS", true),
		},
		Notification: NotificationConfig{
			WebhookURL:            getEnv("NOTIFY_WEBHOOK_URL", ""),
			WebhookTimeoutSeconds: getEnvAsInt("NOTIFY_WEBHOOK_TIMEOUT_SECONDS", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every required identifier is present.
func (c *Config) Validate() error {
	required := []struct {
		key, val string
	}{
		{"TICKET_DISCORD_TOKEN", c.Discord.Token},
		{"TICKET_GUILD_ID", c.Ticket.GuildID},
		{"TICKET_SUPPORT_CHANNEL_ID", c.Ticket.SupportChannelID},
		{"TICKET_OPEN_CATEGORY_ID", c.Ticket.OpenCategoryID},
		{"TICKET_CLOSED_CATEGORY_ID", c.Ticket.ClosedCategoryID},
		{"TICKET_SUPPORT_ROLE_ID", c.Ticket.SupportRoleID},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			missing = append(missing, r.key)
		}
	}
	if c.Counter.Backend == CounterBackendPostgres && c.Postgres.DSN == "" {
		missing = append(missing, "POSTGRES_DSN")
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
