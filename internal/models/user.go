package models

import "time"

const (
	DefaultPeriodLength = 5
	MinCycleLength      = 20
	MaxCycleLength      = 45
	MinPeriodLength     = 1
	MaxPeriodLength     = 14
)

// User owns one cycle log and one profile. A zero CycleLength means the
// profile has not been filled in yet.
type User struct {
	ID                 uint   `gorm:"primaryKey"`
	Email              string `gorm:"not null"`
	DisplayName        string `gorm:"not null;default:''"`
	PasswordHash       string `gorm:"not null"`
	CycleLength        int    `gorm:"not null;default:0"`
	PeriodLength       int    `gorm:"not null;default:5"`
	MustChangePassword bool   `gorm:"not null;default:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (user User) ProfileComplete() bool {
	return user.CycleLength > 0
}
