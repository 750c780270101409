package db

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/littlewanderers/frontdesk/internal/models"
	cfgpkg "github.com/littlewanderers/frontdesk/pkg/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate creates tables and indexes from the models, then applies the SQL
// migrations that gorm tags cannot express (check constraints, catalog seed).
func Migrate(l *zap.SugaredLogger, cfg *cfgpkg.Config, db *gorm.DB) error {
	if err := AutoMigrate(l, db); err != nil {
		return err
	}
	if !cfg.Database.RunMigrations {
		l.Infow("sql migrations disabled")
		return nil
	}
	return runMigrations(l, db)
}

// AutoMigrate runs GORM migrations on startup
func AutoMigrate(l *zap.SugaredLogger, db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		l.Errorf("automigrate failed: %v", err)
		return err
	}
	l.Infow("automigrate completed")
	return nil
}

func runMigrations(l *zap.SugaredLogger, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{l})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		l.Errorw("goose_up_failed", "error", err)
		return fmt.Errorf("goose up: %w", err)
	}
	l.Infow("sql migrations completed")
	return nil
}

type gooseLogger struct {
	l *zap.SugaredLogger
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) { g.l.Fatalf(format, v...) }
func (g gooseLogger) Printf(format string, v ...interface{}) { g.l.Infof(format, v...) }
