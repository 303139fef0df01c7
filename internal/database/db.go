package database

import (
	"fmt"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds the driver connection string for the configured backend
func DSN(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Type {
	case config.DBTypePostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode), nil
	case config.DBTypeMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name), nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

func dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Type == config.DBTypeMySQL {
		return mysql.Open(dsn), nil
	}
	return postgres.Open(dsn), nil
}

// NewConnection initializes a new connection pool using GORM against postgres or mysql
func NewConnection(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}
	gormLog := NewGormLogger(logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	}, log)

	db, err := gorm.Open(d, &gorm.Config{Logger: gormLog, TranslateError: true})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Models lists every table owned by the application, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.Role{},
		&model.Menu{},
		&model.RoleMenuPermission{},
		&model.User{},
		&model.AuditLog{},
		&model.Asset{},
		&model.Unit{},
		&model.Tenant{},
		&model.Lease{},
		&model.Payment{},
		&model.TaskGroup{},
		&model.Task{},
		&model.UserTask{},
		&model.ScanInfo{},
		&model.ComplaintReport{},
		&model.Setting{},
		&model.Attachment{},
	}
}

// Migrate auto-migrates core models
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
