package models

import "time"

const (
	MoodHappy   = "happy"
	MoodNeutral = "neutral"
	MoodSad     = "sad"
)

// DailyMetric is the wellness tracking entry for one user and date. Nil
// fields were never reported.
type DailyMetric struct {
	ID              uint     `gorm:"primaryKey"`
	UserID          uint     `gorm:"not null;uniqueIndex:uidx_user_date"`
	Date            string   `gorm:"not null;uniqueIndex:uidx_user_date"`
	WaterGlasses    *int     `gorm:"column:water_glasses"`
	SleepHours      *float64 `gorm:"column:sleep_hours"`
	ExerciseMinutes *int     `gorm:"column:exercise_minutes"`
	Mood            *string  `gorm:"column:mood"`
	Symptoms        []string `gorm:"serializer:json;not null"`
	Notes           string   `gorm:"not null;default:''"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
