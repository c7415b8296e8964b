package db

import "gorm.io/gorm"

type Repositories struct {
	Users        *UserRepository
	CycleLogs    *CycleLogRepository
	DailyMetrics *DailyMetricRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(database),
		CycleLogs:    NewCycleLogRepository(database),
		DailyMetrics: NewDailyMetricRepository(database),
	}
}
