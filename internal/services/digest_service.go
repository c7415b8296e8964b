package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/robfig/cron/v3"
	"github.com/sakhi-health/sakhi/internal/cycle"
	"github.com/sakhi-health/sakhi/internal/metrics"
	"github.com/sakhi-health/sakhi/internal/models"
	"github.com/sirupsen/logrus"
)

type DigestUserRepository interface {
	ListAll() ([]models.User, error)
}

type DigestSummary struct {
	Date   civil.Date     `json:"date"`
	Counts map[string]int `json:"counts"`
	Failed int            `json:"failed"`
}

// DigestService computes every user's cycle state once a day and publishes
// the per-state counts. It delivers nothing to users.
type DigestService struct {
	users    DigestUserRepository
	cycles   *CycleService
	location *time.Location
	logger   logrus.FieldLogger
	now      func() time.Time

	scheduler *cron.Cron
}

func NewDigestService(users DigestUserRepository, cycles *CycleService, location *time.Location, logger logrus.FieldLogger) *DigestService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DigestService{
		users:    users,
		cycles:   cycles,
		location: location,
		logger:   logger.WithField("component", "digest"),
		now:      time.Now,
	}
}

func (service *DigestService) RunOnce(ctx context.Context, today civil.Date) (DigestSummary, error) {
	startedAt := service.now()
	summary := DigestSummary{
		Date: today,
		Counts: map[string]int{
			metrics.DigestPeriodActive:     0,
			metrics.DigestInsufficientData: 0,
			metrics.DigestTracking:         0,
		},
	}

	users, err := service.users.ListAll()
	if err != nil {
		return summary, fmt.Errorf("list digest users: %w", err)
	}

	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		state, err := service.cycles.State(user.ID, today)
		entry := service.logger.WithFields(logrus.Fields{"user_id": user.ID, "date": today.String()})
		switch {
		case errors.Is(err, cycle.ErrInsufficientData):
			summary.Counts[metrics.DigestInsufficientData]++
			entry.Debug("digest: no period start recorded yet")
		case err != nil:
			summary.Failed++
			entry.WithError(err).Warn("digest: cycle state failed")
		case state.PeriodActive:
			summary.Counts[metrics.DigestPeriodActive]++
			entry.WithField("cycle_day", state.CurrentCycleDay).Debug("digest: period active")
		default:
			summary.Counts[metrics.DigestTracking]++
			entry.WithFields(logrus.Fields{
				"cycle_day":   state.CurrentCycleDay,
				"next_period": state.NextPeriodDate.String(),
			}).Debug("digest: tracking")
		}
	}

	finishedAt := service.now()
	metrics.RecordDigest(summary.Counts, finishedAt, finishedAt.Sub(startedAt))
	service.logger.WithFields(logrus.Fields{
		"date":              today.String(),
		"users":             len(users),
		"period_active":     summary.Counts[metrics.DigestPeriodActive],
		"insufficient_data": summary.Counts[metrics.DigestInsufficientData],
		"tracking":          summary.Counts[metrics.DigestTracking],
		"failed":            summary.Failed,
	}).Info("daily digest completed")
	return summary, nil
}

// Start schedules RunOnce on spec, evaluated in the service's location.
func (service *DigestService) Start(ctx context.Context, spec string) error {
	scheduler := cron.New(cron.WithLocation(service.location))
	_, err := scheduler.AddFunc(spec, func() {
		jobCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		today := cycle.Today(service.now(), service.location)
		if _, err := service.RunOnce(jobCtx, today); err != nil {
			service.logger.WithError(err).Error("daily digest failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule digest %q: %w", spec, err)
	}
	scheduler.Start()
	service.scheduler = scheduler
	service.logger.WithField("spec", spec).Info("digest scheduler started")
	return nil
}

// Stop halts the scheduler and waits for a running job until ctx expires.
func (service *DigestService) Stop(ctx context.Context) {
	if service.scheduler == nil {
		return
	}
	select {
	case <-service.scheduler.Stop().Done():
	case <-ctx.Done():
		service.logger.Warn("digest job still running at shutdown")
	}
}
