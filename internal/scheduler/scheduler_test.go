// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/olegiv/ypng-go/internal/geoip"
	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/service"
	"github.com/olegiv/ypng-go/internal/testutil"
	"github.com/olegiv/ypng-go/internal/webhook"
)

var fixedTime = time.Date(2025, 10, 10, 18, 0, 0, 0, time.UTC)

func TestScheduler_StartStop(t *testing.T) {
	s := New(testutil.TestMemoryDB(t), testutil.TestLoggerSilent())

	calls := 0
	if err := s.Add(countingJob("test-job", &calls)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Start()
	s.Stop()

	if got := len(s.Registry().List()); got != 1 {
		t.Errorf("registered jobs = %d, want 1", got)
	}
}

func TestCoreJobs(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	logger := testutil.TestLoggerSilent()
	svc := service.New(service.Deps{DB: db, Logger: logger})

	jobs := CoreJobs(svc, nil, DefaultRetention())
	names := map[string]bool{}
	for _, j := range jobs {
		names[j.Name] = true
	}
	for _, want := range []string{JobCompleteEvents, JobExpireMemberships, JobRenewalReminders, JobPruneActivity} {
		if !names[want] {
			t.Errorf("missing job %q", want)
		}
	}
	if names[JobRetrySignals] {
		t.Error("signal jobs need a dispatcher")
	}

	signals := webhook.NewDispatcher(db, logger, webhook.DefaultConfig())
	if got := len(CoreJobs(svc, signals, DefaultRetention())); got != len(jobs)+2 {
		t.Errorf("jobs with signals = %d, want %d", got, len(jobs)+2)
	}

	s := New(db, logger)
	if err := s.Add(CoreJobs(svc, signals, DefaultRetention())...); err != nil {
		t.Fatalf("Add: %v", err)
	}
	for _, info := range s.Registry().List() {
		if _, err := s.Registry().TriggerNow(info.Name); err != nil {
			t.Errorf("%s: %v", info.Name, err)
		}
	}
}

func TestPruneActivityJob(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	clock := testutil.NewClock(fixedTime)
	svc := service.New(service.Deps{DB: db, Logger: testutil.TestLoggerSilent(), Now: clock.Now})
	ctx := context.Background()

	if err := svc.Activity.LogInfo(ctx, model.ActivityCategorySystem, "old", nil, nil); err != nil {
		t.Fatalf("LogInfo: %v", err)
	}
	clock.Advance(100 * 24 * time.Hour)

	var prune Job
	for _, j := range CoreJobs(svc, nil, DefaultRetention()) {
		if j.Name == JobPruneActivity {
			prune = j
		}
	}
	n, err := prune.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d entries, want 1", n)
	}
}

func TestGeoIPReloadJob(t *testing.T) {
	r, err := geoip.Open("")
	if err != nil {
		t.Fatalf("geoip.Open: %v", err)
	}
	job := GeoIPReloadJob(r)
	if job.Name != JobReloadGeoIP {
		t.Errorf("Name = %q, want %q", job.Name, JobReloadGeoIP)
	}
	n, err := job.Run(context.Background())
	if err != nil || n != 0 {
		t.Errorf("Run() = %d, %v; want 0, nil", n, err)
	}

	s := New(testutil.TestMemoryDB(t), testutil.TestLoggerSilent())
	if err := s.Add(job); err != nil {
		t.Fatalf("Add: %v", err)
	}
}
