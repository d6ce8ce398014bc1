package scheduler

import (
	"context"
	"testing"
	"time"

	catalogdomain "github.com/opendrive/drivevalue/internal/catalog/domain"
	"github.com/opendrive/drivevalue/internal/catalog/repository"
	"github.com/opendrive/drivevalue/internal/clock"
	"github.com/opendrive/drivevalue/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestScheduler(t *testing.T) (*Scheduler, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&catalogdomain.CacheEntry{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	fake := clock.NewFakeClock(time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC))
	sched, err := New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		Repo:  repository.Provide(),
		Clock: fake,
	})
	if err != nil {
		t.Fatalf("failed to build scheduler: %v", err)
	}
	return sched, dbConn, fake
}

func seedEntry(t *testing.T, dbConn *gorm.DB, key string, expiresAt time.Time) {
	t.Helper()
	entry := &catalogdomain.CacheEntry{
		CacheKey:  key,
		DataType:  catalogdomain.KindMakes,
		Data:      []byte(`[]`),
		ExpiresAt: expiresAt,
		CreatedAt: expiresAt.Add(-time.Hour),
		UpdatedAt: expiresAt.Add(-time.Hour),
	}
	if err := dbConn.Create(entry).Error; err != nil {
		t.Fatalf("seed entry: %v", err)
	}
}

func TestRunOncePurgesOnlyExpiredEntries(t *testing.T) {
	sched, dbConn, fake := newTestScheduler(t)
	now := fake.Now()

	seedEntry(t, dbConn, "vehicle_makes", now.Add(-time.Minute))
	seedEntry(t, dbConn, "vehicle_years_1", now.Add(time.Hour))

	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	var keys []string
	if err := dbConn.Model(&catalogdomain.CacheEntry{}).Pluck("cache_key", &keys).Error; err != nil {
		t.Fatalf("pluck: %v", err)
	}
	if len(keys) != 1 || keys[0] != "vehicle_years_1" {
		t.Fatalf("expected only the live entry to survive, got %v", keys)
	}
}

func TestRunOnceAdvancingClock(t *testing.T) {
	sched, dbConn, fake := newTestScheduler(t)
	seedEntry(t, dbConn, "vehicle_makes", fake.Now().Add(time.Hour))

	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	var count int64
	dbConn.Model(&catalogdomain.CacheEntry{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected entry to survive before expiry, got %d rows", count)
	}

	fake.Advance(2 * time.Hour)
	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	dbConn.Model(&catalogdomain.CacheEntry{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected entry purged after expiry, got %d rows", count)
	}
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	if _, err := New(Params{}); err != ErrInvalidConfig {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
