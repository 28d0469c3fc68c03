package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel          string
	LogFormat         string
	OtelEnabled       bool
	OTLPEndpoint      string
	OTLPProtocol      string
	OtelSamplingRatio float64

	AuthCookieName     string
	AuthCookieDomain   string
	AuthCookieSecure   bool
	SessionTTL         time.Duration
	AdminUsername      string
	AdminEmail         string
	AdminPassword      string
	LoginRatePerMinute float64
	LoginBurst         int

	Shipping ShippingConfig
	Media    MediaConfig
	Import   ImportConfig

	DeliveryStrictTransitions bool
}

type ShippingConfig struct {
	FlatRate decimal.Decimal
	// FreeAbove waives the flat rate when the subtotal reaches it. Nil disables.
	FreeAbove *decimal.Decimal
}

type MediaConfig struct {
	Root           string
	URLPrefix      string
	MaxUploadBytes int64
}

type ImportConfig struct {
	DefaultMode string
}

const (
	ImportModeStrict     = "strict"
	ImportModePermissive = "permissive"
)

var ErrInvalidConfig = errors.New("invalid_config")

// Load reads defaults, an optional vitrine.yaml, the .env file and the
// process environment, in increasing order of precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := strings.TrimSpace(os.Getenv("VITRINE_CONFIG"))
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("vitrine")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/vitrine")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds a validated Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	environment := strings.TrimSpace(v.GetString("app.environment"))
	cookieSecure := v.GetBool("auth.cookie_secure") || environment == "production"

	flatRate, err := parseAmount(v.GetString("shipping.flat_rate"))
	if err != nil {
		return Config{}, fmt.Errorf("%w: shipping.flat_rate: %v", ErrInvalidConfig, err)
	}
	var freeAbove *decimal.Decimal
	if raw := strings.TrimSpace(v.GetString("shipping.free_above")); raw != "" {
		parsed, err := parseAmount(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: shipping.free_above: %v", ErrInvalidConfig, err)
		}
		freeAbove = &parsed
	}

	cfg := Config{
		AppName:     v.GetString("app.name"),
		AppVersion:  v.GetString("app.version"),
		Environment: environment,

		HTTPAddr:         v.GetString("http.addr"),
		HTTPReadTimeout:  v.GetDuration("http.read_timeout"),
		HTTPWriteTimeout: v.GetDuration("http.write_timeout"),

		DBType:            strings.ToLower(strings.TrimSpace(v.GetString("database.type"))),
		DBHost:            v.GetString("database.host"),
		DBPort:            v.GetString("database.port"),
		DBName:            v.GetString("database.name"),
		DBUser:            v.GetString("database.user"),
		DBPassword:        v.GetString("database.password"),
		DBSSLMode:         v.GetString("database.sslmode"),
		DBMaxIdleConn:     v.GetInt("database.max_idle_conn"),
		DBMaxOpenConn:     v.GetInt("database.max_open_conn"),
		DBConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		DBConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),

		RedisAddr:     strings.TrimSpace(v.GetString("redis.addr")),
		RedisPassword: v.GetString("redis.password"),
		RedisDB:       v.GetInt("redis.db"),

		LogLevel:          strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
		LogFormat:         strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),
		OtelEnabled:       v.GetBool("otel.enabled"),
		OTLPEndpoint:      strings.TrimSpace(v.GetString("otel.endpoint")),
		OTLPProtocol:      strings.ToLower(strings.TrimSpace(v.GetString("otel.protocol"))),
		OtelSamplingRatio: v.GetFloat64("otel.sampling_ratio"),

		AuthCookieName:     strings.TrimSpace(v.GetString("auth.cookie_name")),
		AuthCookieDomain:   strings.TrimSpace(v.GetString("auth.cookie_domain")),
		AuthCookieSecure:   cookieSecure,
		SessionTTL:         v.GetDuration("auth.session_ttl"),
		AdminUsername:      strings.TrimSpace(v.GetString("auth.admin_username")),
		AdminEmail:         strings.TrimSpace(v.GetString("auth.admin_email")),
		AdminPassword:      v.GetString("auth.admin_password"),
		LoginRatePerMinute: v.GetFloat64("auth.login_rate"),
		LoginBurst:         v.GetInt("auth.login_burst"),

		Shipping: ShippingConfig{
			FlatRate:  flatRate,
			FreeAbove: freeAbove,
		},
		Media: MediaConfig{
			Root:           v.GetString("media.root"),
			URLPrefix:      v.GetString("media.url_prefix"),
			MaxUploadBytes: v.GetInt64("media.max_upload_bytes"),
		},
		Import: ImportConfig{
			DefaultMode: strings.ToLower(strings.TrimSpace(v.GetString("import.default_mode"))),
		},

		DeliveryStrictTransitions: v.GetBool("delivery.strict_transitions"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "vitrine")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "30s")

	v.SetDefault("database.type", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "vitrine")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conn", 10)
	v.SetDefault("database.max_open_conn", 50)
	v.SetDefault("database.conn_max_lifetime", 3600)
	v.SetDefault("database.conn_max_idle_time", 600)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "localhost:4317")
	v.SetDefault("otel.protocol", "grpc")
	v.SetDefault("otel.sampling_ratio", 0.1)

	v.SetDefault("auth.cookie_name", "vitrine_session")
	v.SetDefault("auth.cookie_domain", "")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.session_ttl", "12h")
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.admin_email", "")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("auth.login_rate", 5)
	v.SetDefault("auth.login_burst", 5)

	v.SetDefault("shipping.flat_rate", "0")
	v.SetDefault("shipping.free_above", "")

	v.SetDefault("media.root", "media")
	v.SetDefault("media.url_prefix", "/media/")
	v.SetDefault("media.max_upload_bytes", 10<<20)

	v.SetDefault("import.default_mode", ImportModeStrict)

	v.SetDefault("delivery.strict_transitions", false)
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.DBType {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("%w: unsupported database type %q", ErrInvalidConfig, c.DBType)
	}
	if strings.TrimSpace(c.DBName) == "" {
		return fmt.Errorf("%w: database name is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("%w: http address is required", ErrInvalidConfig)
	}
	if c.Shipping.FlatRate.IsNegative() {
		return fmt.Errorf("%w: shipping flat rate must not be negative", ErrInvalidConfig)
	}
	if c.Shipping.FreeAbove != nil && c.Shipping.FreeAbove.IsNegative() {
		return fmt.Errorf("%w: shipping free-above threshold must not be negative", ErrInvalidConfig)
	}
	switch c.Import.DefaultMode {
	case ImportModeStrict, ImportModePermissive:
	default:
		return fmt.Errorf("%w: unknown import mode %q", ErrInvalidConfig, c.Import.DefaultMode)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: session ttl must be positive", ErrInvalidConfig)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// RedisEnabled reports whether a Redis address was configured.
func (c Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
