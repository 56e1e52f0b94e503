package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/selve-org/selve-engine/internal/config"
	"github.com/selve-org/selve-engine/internal/logging"
	"github.com/selve-org/selve-engine/internal/models"
)

var DB *gorm.DB

func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logger.Warn

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})

	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database connection established successfully.")
	runMigrations(log)
}

func runMigrations(log *zap.Logger) {
	// GORM's AutoMigrate will create tables, columns, and foreign keys.
	// It will NOT create custom indexes, so we handle that separately.
	err := DB.AutoMigrate(
		&models.SessionRecord{},
		&models.AnswerRecord{},
		&models.ScoreRecord{},
	)
	if err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	historyIndex := `CREATE INDEX IF NOT EXISTS idx_scores_history ON score_records (session_id, dimension, created_at DESC);`
	if err := DB.Exec(historyIndex).Error; err != nil {
		log.Fatal("Failed to create custom index on score records", zap.Error(err))
	}
	log.Info("Custom indexes ensured successfully.")
}
