package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"credit-ledger/pkg/bizday"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	AppPort  string
	LogLevel string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int
	QuoteTTLSecs int

	// WeekendRule names the non-business days used to roll due dates (fri_sat or sat_sun).
	WeekendRule string
	DueSoonDays int

	SnapshotEnabled   bool
	SnapshotRunHour   int
	SnapshotRunMinute int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

// Load reads the environment. A .env file in the working directory, when present,
// fills in variables that are not already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "ledger"),
		MySQLUser: getenv("MYSQL_USER", "ledger"),
		MySQLPass: getenv("MYSQL_PASS", "ledger"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getint("REDIS_DB", 0),

		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),
		QuoteTTLSecs: getint("QUOTE_TTL_SECONDS", 86400),

		WeekendRule: getenv("WEEKEND_RULE", "fri_sat"),
		DueSoonDays: getint("DUE_SOON_DAYS", 30),

		SnapshotEnabled:   getbool("SNAPSHOT_ENABLED", true),
		SnapshotRunHour:   getint("SNAPSHOT_RUN_HOUR", 1),
		SnapshotRunMinute: getint("SNAPSHOT_RUN_MINUTE", 0),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	if _, err := bizday.ParseWeekendRule(c.WeekendRule); err != nil {
		return fmt.Errorf("invalid WEEKEND_RULE: %w", err)
	}
	if c.DueSoonDays < 0 {
		return fmt.Errorf("invalid DUE_SOON_DAYS %d", c.DueSoonDays)
	}
	if c.IdempTTLSecs <= 0 {
		return fmt.Errorf("invalid IDEMPOTENCY_TTL_SECONDS %d", c.IdempTTLSecs)
	}
	if c.SnapshotRunHour < 0 || c.SnapshotRunHour > 23 || c.SnapshotRunMinute < 0 || c.SnapshotRunMinute > 59 {
		return fmt.Errorf("invalid snapshot schedule %02d:%02d", c.SnapshotRunHour, c.SnapshotRunMinute)
	}
	return nil
}

// Weekend returns the parsed rule; call Validate first.
func (c *Config) Weekend() bizday.WeekendRule {
	r, _ := bizday.ParseWeekendRule(c.WeekendRule)
	return r
}

func (c *Config) IdempTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }
func (c *Config) QuoteTTL() time.Duration { return time.Duration(c.QuoteTTLSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime is needed for DATE/DATETIME columns
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
