package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"vibeapps/internal/models"
	"vibeapps/internal/utils"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init opens the configured database, migrates it and seeds the default tags.
func Init(databaseURL string) error {
	conn, err := Open(databaseURL)
	if err != nil {
		return err
	}
	if err := Migrate(conn); err != nil {
		return err
	}
	if err := seedTags(conn); err != nil {
		return err
	}
	DB = conn
	return nil
}

// Open accepts "sqlite://path", a postgres URL, or a bare postgres DSN.
func Open(databaseURL string) (*gorm.DB, error) {
	var dial gorm.Dialector
	isSqlite := false
	openConns := 40

	switch {
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if !strings.Contains(path, ":memory:") {
			if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		dial = sqlite.Open(path)
		// a single connection serializes every transaction
		openConns = 1
		isSqlite = true
	case databaseURL == "":
		return nil, fmt.Errorf("empty database url")
	default:
		dial = postgres.Open(databaseURL)
	}

	conn, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true,
		Logger:         slogGorm.New(slogGorm.WithLogger(slog.Default())),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqldb, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(openConns)
	sqldb.SetConnMaxIdleTime(time.Hour)

	if isSqlite {
		for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout=5000;"} {
			if err := conn.Exec(pragma).Error; err != nil {
				return nil, fmt.Errorf("sqlite %q: %w", pragma, err)
			}
		}
	}

	slog.Info("database connection established", "sqlite", isSqlite)
	return conn, nil
}

// Migrate creates or updates every table the engine owns.
func Migrate(conn *gorm.DB) error {
	if err := conn.SetupJoinTable(&models.Story{}, "Tags", &models.StoryTag{}); err != nil {
		return fmt.Errorf("setup story tags: %w", err)
	}
	err := conn.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Story{},
		&models.StoryTag{},
		&models.Vote{},
		&models.Rating{},
		&models.Bookmark{},
		&models.Comment{},
		&models.Report{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	slog.Info("database migration completed")
	return nil
}

func seedTags(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.Tag{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		slog.Debug("tags already seeded, skipping")
		return nil
	}

	names := []string{"AI", "Games", "Productivity", "Developer Tools"}
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, models.Tag{Name: name, NameKey: utils.TagKey(name), ShowInHeader: true})
	}
	if err := conn.Create(&tags).Error; err != nil {
		return fmt.Errorf("seed tags: %w", err)
	}
	slog.Info("initial tags created", "count", len(tags))
	return nil
}
