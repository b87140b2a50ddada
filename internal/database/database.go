package database

import (
	"errors"
	"fmt"

	"github.com/thereayou/gigmate/internal/apperr"
	"github.com/thereayou/gigmate/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// Config общий для всех драйверов: ошибки драйвера переводятся в gorm.ErrDuplicatedKey и т.п.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// Connect открывает Postgres; миграции запускает вызывающий через Migrate
func Connect(dsn string) (*Database, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, err
	}

	return NewDatabase(db), nil
}

func (d *Database) Migrate() error {
	return d.db.AutoMigrate(
		&models.Profile{},
		&models.Event{},
		&models.RoomMembership{},
		&models.RoomMessage{},
		&models.Connection{},
		&models.Thread{},
		&models.ThreadParticipant{},
		&models.ThreadMessage{},
		&models.ChecklistItem{},
	)
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// notFound заменяет gorm.ErrRecordNotFound на доменную ошибку
func notFound(err error, target *apperr.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
