// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"time"

	"github.com/olegiv/ypng-go/internal/geoip"
	"github.com/olegiv/ypng-go/internal/service"
	"github.com/olegiv/ypng-go/internal/webhook"
)

// Job names.
const (
	JobCompleteEvents     = "complete-past-events"
	JobExpireMemberships  = "expire-memberships"
	JobRenewalReminders   = "renewal-reminders"
	JobRetrySignals       = "retry-signals"
	JobPruneActivity      = "prune-activity"
	JobPruneSignalHistory = "prune-signal-history"
	JobReloadGeoIP        = "reload-geoip"
)

// Retention is how long log records are kept.
type Retention struct {
	Activity   time.Duration
	Deliveries time.Duration
}

// DefaultRetention keeps activity for 90 days and finished deliveries for 30.
func DefaultRetention() Retention {
	return Retention{
		Activity:   90 * 24 * time.Hour,
		Deliveries: 30 * 24 * time.Hour,
	}
}

// CoreJobs returns the maintenance jobs. Signal jobs are left out when
// signals is nil.
func CoreJobs(svc *service.Services, signals *webhook.Dispatcher, keep Retention) []Job {
	jobs := []Job{
		{
			Name:        JobCompleteEvents,
			Description: "Mark published events whose date has passed as completed",
			Schedule:    "5 * * * *",
			Run:         svc.Events.CompletePastEvents,
		},
		{
			Name:        JobExpireMemberships,
			Description: "Expire memberships past their expiration date",
			Schedule:    "15 0 * * *",
			Run:         svc.Users.ExpireMemberships,
		},
		{
			Name:        JobRenewalReminders,
			Description: "Send membership renewal reminders",
			Schedule:    "0 9 * * *",
			Run:         svc.Users.SendRenewalReminders,
		},
		{
			Name:        JobPruneActivity,
			Description: "Delete old activity log entries",
			Schedule:    "30 3 * * *",
			Run: func(ctx context.Context) (int, error) {
				n, err := svc.Activity.DeleteOld(ctx, keep.Activity)
				return int(n), err
			},
		},
	}
	if signals == nil {
		return jobs
	}
	return append(jobs,
		Job{
			Name:        JobRetrySignals,
			Description: "Re-queue signal deliveries due for a retry",
			Schedule:    "* * * * *",
			Run:         signals.RetryPending,
		},
		Job{
			Name:        JobPruneSignalHistory,
			Description: "Delete finished signal deliveries",
			Schedule:    "45 3 * * *",
			Run: func(ctx context.Context) (int, error) {
				n, err := signals.DeleteOld(ctx, keep.Deliveries)
				return int(n), err
			},
		},
	)
}

// GeoIPReloadJob picks up a replaced GeoIP database file. It reports 1 when
// the database was reopened.
func GeoIPReloadJob(r *geoip.Resolver) Job {
	return Job{
		Name:        JobReloadGeoIP,
		Description: "Reload the GeoIP database when the file changes",
		Schedule:    "0 4 * * *",
		Run: func(context.Context) (int, error) {
			reloaded, err := r.Reload()
			if err != nil || !reloaded {
				return 0, err
			}
			return 1, nil
		},
	}
}
