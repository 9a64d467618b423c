package db

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LogLevel maps the service LOG_LEVEL onto gorm's logger levels.
func LogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	}
	return logger.Warn
}

func OpenGorm(dsn string, level logger.LogLevel, log *zap.Logger) (*gorm.DB, error) {
	gdb, err := open(mysql.Open(dsn), level)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	if log != nil {
		log.Info("gorm: connected")
	}
	return gdb, nil
}

// OpenGormWithDialector opens and pings with a caller-supplied dialector.
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	gdb, err := open(dial, logger.Silent)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return gdb, nil
}

func open(dial gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	return gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(level),
		// unique violations come back as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
}
