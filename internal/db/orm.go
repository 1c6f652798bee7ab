package db

import (
	"fmt"
	"time"

	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/models/gorm"

	"gorm.io/driver/postgres"
	gormlib "gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var PgDB *gormlib.DB

// Models lists every primary-store entity, in migration order
func Models() []interface{} {
	return []interface{}{
		&gorm.Publisher{},
		&gorm.Organization{},
		&gorm.OrganizationNameMatch{},
		&gorm.Mission{},
		&gorm.MissionModeration{},
		&gorm.MissionHistoryEvent{},
		&gorm.ModerationEvent{},
		&gorm.Import{},
	}
}

func InitPostgresORM(dsn string) (*gormlib.DB, error) {
	db, err := gormlib.Open(postgres.Open(dsn), &gormlib.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	PgDB = db
	logging.Info("Connected to Postgres via GORM")
	return db, nil
}

// Migrate creates or updates the primary-store schema
func Migrate(db *gormlib.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate primary store: %w", err)
	}
	return nil
}
