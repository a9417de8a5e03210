package core

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// ParseLogLevel maps DB_LOG_LEVEL values onto LogLevel. Unknown values fall back to warn.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "info":
		return LogLevelInfo
	default:
		return LogLevelWarn
	}
}

func (l LogLevel) gorm() logger.LogLevel {
	switch l {
	case LogLevelSilent:
		return logger.Silent
	case LogLevelError:
		return logger.Error
	case LogLevelInfo:
		return logger.Info
	default:
		return logger.Warn
	}
}

type DatabaseManager struct {
	SqlDB    *sql.DB
	LogLevel LogLevel
	Logger   *logrus.Logger
}

// New creates the global pool. dsn must name the warehouse schema.
func New(dsn string, maxConnection int) (*DatabaseManager, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxConnection)
	sqlDB.SetMaxIdleConns(maxConnection)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	return &DatabaseManager{SqlDB: sqlDB, LogLevel: LogLevelWarn}, nil
}

// NewLogger routes gorm's SQL log through logrus.
func NewLogger(log *logrus.Logger, level LogLevel) logger.Interface {
	if log == nil {
		return logger.Default.LogMode(level.gorm())
	}
	return logger.New(log.WithField("component", "gorm"), logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  level.gorm(),
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// GetDB gets a *gorm.DB bound to a single connection. The caller closes the connection.
func (dm *DatabaseManager) GetDB(ctx context.Context) (*gorm.DB, *sql.Conn, error) {
	conn, err := dm.SqlDB.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get conn: %w", err)
	}

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: conn}), &gorm.Config{
		Logger: NewLogger(dm.Logger, dm.LogLevel),
	})
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return db, conn, nil
}

// Close closes the global pool
func (dm *DatabaseManager) Close() error {
	return dm.SqlDB.Close()
}

func (dm *DatabaseManager) Exec(ctx context.Context, fn func(db *gorm.DB) error) error {
	db, conn, err := dm.GetDB(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(db)
}
