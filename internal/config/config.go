package config // package config loads application configuration from environment variables

import (
	"errors"  // errors joins every configuration problem into one report
	"fmt"     // fmt formats configuration errors
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings normalises driver and format names
	"time"    // time parses token expiry windows
)

// Supported values for DB_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Access and refresh tokens are signed with
// distinct secrets and live for distinct windows.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	DBDriver      string        // "mysql" or "sqlite"
	DBUser        string        // database username
	DBPass        string        // database password (optional)
	DBHost        string        // database host address
	DBPort        string        // database port number
	DBName        string        // database name
	DBPath        string        // sqlite database file
	AccessSecret  string        // secret used to sign access tokens
	RefreshSecret string        // secret used to sign refresh tokens
	AccessTTL     time.Duration // access token lifetime
	RefreshTTL    time.Duration // refresh token lifetime
	BcryptCost    int           // bcrypt cost for password hashing
	LogLevel      string        // debug, info, warn, error
	LogFormat     string        // text or json
	CORSOrigin    string        // allowed CORS origin
	AMQPURL       string        // broker for audit events; empty disables publishing
}

// Load reads configuration values from environment variables and returns a
// Config.  Every missing or malformed required variable is reported in the
// returned error so a misconfigured deployment fails once with the full list.
func Load() (Config, error) {
	var errs []error
	l := loader{errs: &errs}

	cfg := Config{
		Env:           l.str("APP_ENV", "dev"),
		Port:          l.str("APP_PORT", "8080"),
		DBDriver:      strings.ToLower(l.str("DB_DRIVER", DriverMySQL)),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		AccessSecret:  l.must("JWT_ACCESS_SECRET"),
		RefreshSecret: l.must("JWT_REFRESH_SECRET"),
		AccessTTL:     l.duration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		RefreshTTL:    l.duration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		BcryptCost:    l.integer("BCRYPT_COST", 10),
		LogLevel:      strings.ToLower(l.str("LOG_LEVEL", "info")),
		LogFormat:     strings.ToLower(l.str("LOG_FORMAT", "text")),
		CORSOrigin:    l.str("CORS_ORIGIN", "*"),
		AMQPURL:       l.str("AMQP_URL", os.Getenv("RABBITMQ_URL")),
	}

	switch cfg.DBDriver {
	case DriverMySQL:
		cfg.DBUser = l.must("DB_USER")
		cfg.DBHost = l.must("DB_HOST")
		cfg.DBPort = l.str("DB_PORT", "3306")
		cfg.DBName = l.must("DB_NAME")
	case DriverSQLite:
		cfg.DBPath = l.str("DB_PATH", "data/finance.db")
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver))
	}

	if cfg.AccessSecret != "" && cfg.AccessSecret == cfg.RefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if cfg.AccessTTL >= cfg.RefreshTTL {
		errs = append(errs, errors.New("JWT_ACCESS_EXPIRY must be shorter than JWT_REFRESH_EXPIRY"))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loader accumulates errors while reading variables so Load can report all
// of them at once.
type loader struct {
	errs *[]error
}

// must retrieves the value of a required environment variable.
func (l loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		*l.errs = append(*l.errs, fmt.Errorf("missing required env var: %s", key))
	}
	return v
}

func (l loader) str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// integer is like str() but converts the retrieved string into an integer.
func (l loader) integer(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*l.errs = append(*l.errs, fmt.Errorf("invalid int for %s: %q", key, s))
	}
	return n
}

func (l loader) duration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := parseExpiry(s)
	if err != nil {
		*l.errs = append(*l.errs, fmt.Errorf("invalid duration for %s: %q", key, s))
	}
	return d
}

// parseExpiry accepts Go durations ("15m", "168h") and a day suffix ("7d").
func parseExpiry(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("non-positive duration %q", s)
	}
	return d, nil
}
