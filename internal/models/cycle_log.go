package models

import "time"

// CycleLogRecord stores a user's whole cycle log as one serialized JSON
// object. Writes replace Payload in full.
type CycleLogRecord struct {
	UserID    uint   `gorm:"primaryKey;autoIncrement:false"`
	Payload   string `gorm:"not null;default:'{}'"`
	UpdatedAt time.Time
}

func (CycleLogRecord) TableName() string {
	return "cycle_logs"
}
