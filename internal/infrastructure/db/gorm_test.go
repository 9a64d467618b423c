package db

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func mockDialector(t *testing.T, pingErr error) (sqlmock.Sqlmock, gorm.Dialector) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	exp := mock.ExpectPing()
	if pingErr != nil {
		exp.WillReturnError(pingErr)
	}
	dial := mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true})
	return mock, dial
}

func TestOpenGormWithDialector(t *testing.T) {
	tests := []struct {
		name    string
		pingErr error
	}{
		{"ping ok", nil},
		{"ping fails", errors.New("no ping")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, dial := mockDialector(t, tt.pingErr)

			gdb, err := OpenGormWithDialector(dial)
			if (err != nil) != (tt.pingErr != nil) {
				t.Fatalf("err = %v, want failure=%v", err, tt.pingErr != nil)
			}
			if err == nil && !gdb.Config.TranslateError {
				t.Fatal("duplicate keys must surface as gorm.ErrDuplicatedKey")
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestOpenGorm_UnreachableServer(t *testing.T) {
	if _, err := OpenGorm("u:p@tcp(127.0.0.1:1)/ledger?timeout=200ms", logger.Silent, nil); err == nil {
		t.Fatal("expected a connection error")
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"debug":  logger.Info,
		"info":   logger.Warn,
		"warn":   logger.Warn,
		"":       logger.Warn,
		"error":  logger.Error,
		"silent": logger.Silent,
	}
	for in, want := range cases {
		if got := LogLevel(in); got != want {
			t.Errorf("LogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
