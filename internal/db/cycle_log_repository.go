package db

import (
	"errors"
	"time"

	"github.com/sakhi-health/sakhi/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CycleLogRepository struct {
	database *gorm.DB
}

func NewCycleLogRepository(database *gorm.DB) *CycleLogRepository {
	return &CycleLogRepository{database: database}
}

// LoadPayload returns the stored log payload for userID, or nil when the
// user has never recorded anything.
func (repo *CycleLogRepository) LoadPayload(userID uint) ([]byte, error) {
	var record models.CycleLogRecord
	err := repo.database.Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(record.Payload), nil
}

// SavePayload replaces the user's stored payload in a single statement.
func (repo *CycleLogRepository) SavePayload(userID uint, payload []byte) error {
	record := models.CycleLogRecord{
		UserID:    userID,
		Payload:   string(payload),
		UpdatedAt: time.Now().UTC(),
	}
	return repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&record).Error
}
