package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig

	CORSOrigin string `env:"CORS_ORIGIN, default=*"`
}

type AuthConfig struct {
	TokenSecret string   `env:"TOKEN_SECRET, required"`
	TokenTTL    Duration `env:"JWT_EXPIRES_IN, default=7d"`
	BcryptCost  int      `env:"BCRYPT_COST,    default=10"`
}

type MongoConfig struct {
	URI string `env:"DB_CONNECT, required"`
	// Database may be empty; the name in the URI is used then.
	Database string `env:"MONGO_DB"`
}

// RedisConfig is optional: an empty Addr keeps rate limiting in memory.
type RedisConfig struct {
	Addr     string   `env:"REDIS_ADDR"`
	Password string   `env:"REDIS_PASSWORD"`
	DB       int      `env:"REDIS_DB,      default=0"`
	Timeout  Duration `env:"REDIS_TIMEOUT, default=5s"`
}

type RateLimitConfig struct {
	Max    int      `env:"RATE_LIMIT_MAX,    default=100"`
	Window Duration `env:"RATE_LIMIT_WINDOW, default=15m"`
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.TokenSecret) == "" {
		errs = append(errs, errors.New("TOKEN_SECRET must not be empty"))
	}
	if strings.TrimSpace(c.Mongo.URI) == "" {
		errs = append(errs, errors.New("DB_CONNECT must not be empty"))
	}
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT %q is not a valid port", c.Port))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST %d out of range 4-31", c.Auth.BcryptCost))
	}
	if c.Redis.DB < 0 {
		errs = append(errs, fmt.Errorf("REDIS_DB %d must not be negative", c.Redis.DB))
	}
	if c.RateLimit.Max <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be positive"))
	}
	return errors.Join(errs...)
}

// Duration accepts Go durations ("90m"), day and week counts ("7d", "2w")
// and bare seconds ("3600").
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

// EnvDecode implements envconfig.Decoder.
func (d *Duration) EnvDecode(val string) error {
	parsed, err := ParseDuration(val)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// ParseDuration parses the formats accepted by Duration. The result is
// always positive.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return scale(s, n, time.Second)
	}
	if unit, ok := calendarUnits[s[len(s)-1]]; ok {
		n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return scale(s, n, unit)
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}

// scale multiplies n by unit, rejecting results that do not fit in a
// time.Duration.
func scale(s string, n int64, unit time.Duration) (time.Duration, error) {
	if n <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	if n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("duration %q is too large", s)
	}
	return time.Duration(n) * unit, nil
}

var calendarUnits = map[byte]time.Duration{
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
}
