package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DBTypePostgres = "postgres"
	DBTypeMySQL    = "mysql"
)

// Config is the process configuration, read once at startup.
type Config struct {
	AppEnv        string
	Port          string
	AppBaseURL    string
	BaseURLDomain string
	CORSOrigins   []string

	Database DatabaseConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Internal BasicAuthConfig
	Metrics  MetricsConfig
	Log      LogConfig
	Loki     LokiConfig
	Redis    RedisConfig
	Upload   UploadConfig
	Reminder ReminderConfig
}

type DatabaseConfig struct {
	Type         string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	LogSQL       bool
	AutoMigrate  bool
}

type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether outbound mail is configured
func (c SMTPConfig) Enabled() bool { return c.Host != "" }

type BasicAuthConfig struct {
	User     string
	Password string
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

type LogConfig struct {
	Level  string
	Output string
	Path   string
}

type LokiConfig struct {
	URL      string
	User     string
	Password string
	Labels   map[string]string
}

type RedisConfig struct {
	Addr     string
	Password string
}

type UploadConfig struct {
	Dir      string
	MaxWidth int
}

type ReminderConfig struct {
	DaysAhead int
	Cron      string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_BASE_URL", "http://localhost:8080")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")

	v.SetDefault("DB_TYPE", DBTypePostgres)
	v.SetDefault("PGHOST", "localhost")
	v.SetDefault("PGPORT", "5432")
	v.SetDefault("PGUSER", "postgres")
	v.SetDefault("PGPASSWORD", "postgres")
	v.SetDefault("PGDATABASE", "backoffice")
	v.SetDefault("PGSSLMODE", "disable")
	v.SetDefault("MYSQL_HOST", "localhost")
	v.SetDefault("MYSQL_PORT", "3306")
	v.SetDefault("MYSQL_USER", "root")
	v.SetDefault("MYSQL_PASSWORD", "")
	v.SetDefault("MYSQL_DATABASE", "backoffice")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_LOG_SQL", false)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("METRICS_ENABLED", false)
	v.SetDefault("METRICS_PATH", "/metrics")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("LOG_PATH", "./logs")
	v.SetDefault("LOKI_LABELS", "app=backoffice")
	v.SetDefault("UPLOAD_DIR", "public/uploads")
	v.SetDefault("UPLOAD_MAX_WIDTH", 1600)
	v.SetDefault("PAYMENT_REMINDER_DAYS", 3)
	v.SetDefault("PAYMENT_REMINDER_CRON", "")
}

// Load reads configs/.env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:        v.GetString("APP_ENV"),
		Port:          v.GetString("PORT"),
		AppBaseURL:    strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
		BaseURLDomain: v.GetString("BASE_URL_DOMAIN"),
		CORSOrigins:   splitList(v.GetString("CORS_ORIGINS")),
	}

	cfg.Database = DatabaseConfig{
		Type:         strings.ToLower(v.GetString("DB_TYPE")),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		LogSQL:       v.GetBool("DB_LOG_SQL"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}
	switch cfg.Database.Type {
	case DBTypePostgres:
		cfg.Database.Host = v.GetString("PGHOST")
		cfg.Database.Port = v.GetString("PGPORT")
		cfg.Database.User = v.GetString("PGUSER")
		cfg.Database.Password = v.GetString("PGPASSWORD")
		cfg.Database.Name = v.GetString("PGDATABASE")
		cfg.Database.SSLMode = v.GetString("PGSSLMODE")
	case DBTypeMySQL:
		cfg.Database.Host = v.GetString("MYSQL_HOST")
		cfg.Database.Port = v.GetString("MYSQL_PORT")
		cfg.Database.User = v.GetString("MYSQL_USER")
		cfg.Database.Password = v.GetString("MYSQL_PASSWORD")
		cfg.Database.Name = v.GetString("MYSQL_DATABASE")
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q: must be postgres or mysql", cfg.Database.Type)
	}

	ttl, err := time.ParseDuration(v.GetString("TOKEN_TTL"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL %q", v.GetString("TOKEN_TTL"))
	}
	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET"), TokenTTL: ttl}
	if cfg.JWT.Secret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWT.Secret = "development_only_secret"
	}

	cfg.SMTP = SMTPConfig{
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		User:     v.GetString("SMTP_USER"),
		Password: v.GetString("SMTP_PASS"),
		From:     v.GetString("SMTP_FROM"),
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}

	cfg.Internal = BasicAuthConfig{
		User:     v.GetString("INTERNAL_BASIC_AUTH_USER"),
		Password: v.GetString("INTERNAL_BASIC_AUTH_PASS"),
	}
	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("METRICS_ENABLED"), Path: v.GetString("METRICS_PATH")}
	cfg.Log = LogConfig{Level: v.GetString("LOG_LEVEL"), Output: v.GetString("LOG_OUTPUT"), Path: v.GetString("LOG_PATH")}
	cfg.Loki = LokiConfig{
		URL:      strings.TrimRight(v.GetString("LOKI_URL"), "/"),
		User:     v.GetString("LOKI_USER"),
		Password: v.GetString("LOKI_PASS"),
		Labels:   parseLabels(v.GetString("LOKI_LABELS")),
	}
	cfg.Redis = RedisConfig{Addr: v.GetString("REDIS_ADDR"), Password: v.GetString("REDIS_PASSWORD")}
	cfg.Upload = UploadConfig{Dir: v.GetString("UPLOAD_DIR"), MaxWidth: v.GetInt("UPLOAD_MAX_WIDTH")}
	cfg.Reminder = ReminderConfig{DaysAhead: v.GetInt("PAYMENT_REMINDER_DAYS"), Cron: v.GetString("PAYMENT_REMINDER_CRON")}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseLabels turns "k1=v1,k2=v2" into a map
func parseLabels(s string) map[string]string {
	labels := make(map[string]string)
	for _, pair := range splitList(s) {
		k, val, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		labels[strings.TrimSpace(k)] = strings.TrimSpace(val)
	}
	return labels
}
