// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/ypng-go/internal/store"
)

// Registry errors.
var (
	ErrJobNotFound     = errors.New("job not found")
	ErrInvalidSchedule = errors.New("invalid cron expression")
)

// JobTimeout bounds a single run of a job.
const JobTimeout = 5 * time.Minute

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// registeredJob holds a job and its cron entry.
type registeredJob struct {
	job      Job
	schedule string // effective schedule (override or default)
	entryID  cron.EntryID
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DefaultSchedule string    `json:"defaultSchedule"`
	Schedule        string    `json:"schedule"`
	IsOverridden    bool      `json:"isOverridden"`
	LastRun         time.Time `json:"lastRun"`
	NextRun         time.Time `json:"nextRun"`
}

// Registry tracks the scheduled jobs and their schedule overrides.
type Registry struct {
	queries *store.Queries
	cron    *cron.Cron
	logger  *slog.Logger
	now     func() time.Time
	mu      sync.RWMutex
	jobs    map[string]*registeredJob
}

// NewRegistry creates a registry adding its jobs to c.
func NewRegistry(db *sql.DB, c *cron.Cron, logger *slog.Logger) *Registry {
	return &Registry{
		queries: store.New(db),
		cron:    c,
		logger:  logger,
		now:     time.Now,
		jobs:    make(map[string]*registeredJob),
	}
}

// effectiveSchedule returns the stored override of a job if one exists and
// parses, otherwise the default.
func (r *Registry) effectiveSchedule(name, defaultSchedule string) string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	override, err := r.queries.GetSchedulerOverride(ctx, name)
	if err != nil || override == "" {
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("failed to load schedule override", "job", name, "error", err)
		}
		return defaultSchedule
	}
	if _, err := scheduleParser.Parse(override); err != nil {
		r.logger.Warn("ignoring invalid schedule override", "job", name, "schedule", override, "error", err)
		return defaultSchedule
	}
	return override
}

// Register adds job to the cron instance under its effective schedule.
func (r *Registry) Register(job Job) error {
	if _, err := scheduleParser.Parse(job.Schedule); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidSchedule, job.Schedule, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[job.Name]; ok {
		return fmt.Errorf("job %q already registered", job.Name)
	}

	schedule := r.effectiveSchedule(job.Name, job.Schedule)
	entryID, err := r.cron.AddFunc(schedule, r.runner(job))
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", job.Name, err)
	}
	r.jobs[job.Name] = &registeredJob{job: job, schedule: schedule, entryID: entryID}

	r.logger.Debug("registered scheduled job", "job", job.Name, "schedule", schedule)
	return nil
}

func (r *Registry) runner(job Job) func() {
	return func() {
		_, _ = r.run(job)
	}
}

// run executes job once with a timeout and logs the outcome.
func (r *Registry) run(job Job) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), JobTimeout)
	defer cancel()

	n, err := job.Run(ctx)
	if err != nil {
		r.logger.Error("scheduled job failed", "job", job.Name, "error", err)
		return n, err
	}
	if n > 0 {
		r.logger.Info("scheduled job finished", "job", job.Name, "count", n)
	}
	return n, nil
}

// List returns all registered jobs sorted by name.
func (r *Registry) List() []JobInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]JobInfo, 0, len(r.jobs))
	for _, rj := range r.jobs {
		entry := r.cron.Entry(rj.entryID)
		result = append(result, JobInfo{
			Name:            rj.job.Name,
			Description:     rj.job.Description,
			DefaultSchedule: rj.job.Schedule,
			Schedule:        rj.schedule,
			IsOverridden:    rj.schedule != rj.job.Schedule,
			LastRun:         entry.Prev,
			NextRun:         entry.Next,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// TriggerNow runs a job immediately and returns how many records it touched.
func (r *Registry) TriggerNow(name string) (int, error) {
	r.mu.RLock()
	rj, ok := r.jobs[name]
	r.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	r.logger.Info("manually triggering job", "job", name)
	return r.run(rj.job)
}

// UpdateSchedule reschedules a job and persists the override.
func (r *Registry) UpdateSchedule(name, schedule string) error {
	if _, err := scheduleParser.Parse(schedule); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidSchedule, schedule, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rj, ok := r.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if err := r.reschedule(rj, schedule); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.queries.UpsertSchedulerOverride(ctx, name, schedule, r.now()); err != nil {
		r.logger.Error("failed to persist schedule override", "job", name, "error", err)
	}

	r.logger.Info("updated job schedule", "job", name, "schedule", schedule)
	return nil
}

// ResetSchedule removes the override and restores the default schedule.
func (r *Registry) ResetSchedule(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rj, ok := r.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if rj.schedule != rj.job.Schedule {
		if err := r.reschedule(rj, rj.job.Schedule); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.queries.DeleteSchedulerOverride(ctx, name); err != nil {
		r.logger.Error("failed to remove schedule override", "job", name, "error", err)
	}

	r.logger.Info("reset job schedule to default", "job", name, "schedule", rj.job.Schedule)
	return nil
}

// reschedule swaps the cron entry of rj, restoring the old one on failure.
func (r *Registry) reschedule(rj *registeredJob, schedule string) error {
	r.cron.Remove(rj.entryID)
	entryID, err := r.cron.AddFunc(schedule, r.runner(rj.job))
	if err != nil {
		fallbackID, fallbackErr := r.cron.AddFunc(rj.schedule, r.runner(rj.job))
		if fallbackErr != nil {
			return fmt.Errorf("critical: failed to restore schedule after update failure: %w (original: %w)", fallbackErr, err)
		}
		rj.entryID = fallbackID
		return fmt.Errorf("failed to apply new schedule: %w", err)
	}
	rj.entryID = entryID
	rj.schedule = schedule
	return nil
}
