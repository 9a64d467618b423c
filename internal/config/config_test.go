package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "LOG_LEVEL", "MYSQL_DB", "WEEKEND_RULE", "DUE_SOON_DAYS",
		"SNAPSHOT_ENABLED", "SNAPSHOT_RUN_HOUR", "IDEMPOTENCY_TTL_SECONDS"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.AppPort != "8080" || c.LogLevel != "info" || c.MySQLDB != "ledger" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.WeekendRule != "fri_sat" || c.DueSoonDays != 30 || !c.SnapshotEnabled || c.SnapshotRunHour != 1 {
		t.Fatalf("unexpected ledger defaults: %+v", c)
	}
	if c.IdempTTL() != 5*time.Minute {
		t.Fatalf("idempotency ttl = %v", c.IdempTTL())
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WEEKEND_RULE", "sat_sun")
	t.Setenv("DUE_SOON_DAYS", "14")
	t.Setenv("SNAPSHOT_ENABLED", "false")
	t.Setenv("SNAPSHOT_RUN_MINUTE", "45")
	t.Setenv("REDIS_DB", "not-a-number")

	c := Load()
	if c.Weekend().String() != "sat_sun" || c.DueSoonDays != 14 || c.SnapshotEnabled || c.SnapshotRunMinute != 45 {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.RedisDB != 0 {
		t.Fatalf("unparsable REDIS_DB should fall back to 0, got %d", c.RedisDB)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("WEEKEND_RULE", "")
	t.Setenv("LOG_LEVEL", "")
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"weekend", func(c *Config) { c.WeekendRule = "sun_mon" }, "WEEKEND_RULE"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"port", func(c *Config) { c.MySQLPort = "notaport" }, "MYSQL_PORT"},
		{"mysql", func(c *Config) { c.MySQLHost = "" }, "missing MySQL"},
		{"schedule", func(c *Config) { c.SnapshotRunHour = 24 }, "snapshot schedule"},
		{"due soon", func(c *Config) { c.DueSoonDays = -1 }, "DUE_SOON_DAYS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Load()
			tt.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("want error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLUser: "u", MySQLPass: "p", MySQLHost: "db", MySQLPort: "3307", MySQLDB: "ledger"}
	dsn := c.MySQLDSN()
	if !strings.HasPrefix(dsn, "u:p@tcp(db:3307)/ledger?") || !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("dsn = %s", dsn)
	}
}
