package db

import (
	"errors"

	"github.com/sakhi-health/sakhi/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DailyMetricRepository struct {
	database *gorm.DB
}

func NewDailyMetricRepository(database *gorm.DB) *DailyMetricRepository {
	return &DailyMetricRepository{database: database}
}

// FindByUserAndDate returns the entry and whether it exists.
func (repo *DailyMetricRepository) FindByUserAndDate(userID uint, day string) (models.DailyMetric, bool, error) {
	var entry models.DailyMetric
	err := repo.database.Where("user_id = ? AND date = ?", userID, day).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DailyMetric{}, false, nil
	}
	if err != nil {
		return models.DailyMetric{}, false, err
	}
	return entry, true, nil
}

// ListRange returns entries with from <= date <= to ordered by date. Dates
// are stored as YYYY-MM-DD so string comparison is chronological.
func (repo *DailyMetricRepository) ListRange(userID uint, from string, to string) ([]models.DailyMetric, error) {
	entries := make([]models.DailyMetric, 0)
	if err := repo.database.
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *DailyMetricRepository) Upsert(entry *models.DailyMetric) error {
	if entry.Symptoms == nil {
		entry.Symptoms = []string{}
	}
	return repo.database.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"water_glasses",
			"sleep_hours",
			"exercise_minutes",
			"mood",
			"symptoms",
			"notes",
			"updated_at",
		}),
	}).Create(entry).Error
}
