package auth

import (
	"errors"
	"sync"
	"testing"

	"github.com/salonibalkondekar/analytics/internal/database"
)

func TestQuotaCheckLimitUnknownUserAllowed(t *testing.T) {
	setupDB(t)
	q := NewQuotaEnforcer(testConfig())

	allowed, err := q.CheckLimit("never-seen")
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Error("user with no record must be implicitly allowed")
	}
}

func TestQuotaIncrementToCeiling(t *testing.T) {
	setupDB(t)
	cfg := testConfig()
	svc := NewService(cfg)
	q := NewQuotaEnforcer(cfg)

	user, _, err := svc.Login("a@b.com", "A", "1.2.3.4", "ua")
	if err != nil {
		t.Fatal(err)
	}

	// First increment.
	count, err := q.Increment(user.ID)
	if err != nil {
		t.Fatalf("first increment failed: %v", err)
	}
	if count != 1 {
		t.Errorf("model_count = %d after one increment, want 1", count)
	}

	// Up to the ceiling.
	for i := 2; i <= cfg.ModelLimit; i++ {
		count, err = q.Increment(user.ID)
		if err != nil {
			t.Fatalf("increment %d failed: %v", i, err)
		}
	}
	if count != cfg.ModelLimit {
		t.Errorf("model_count = %d, want %d", count, cfg.ModelLimit)
	}

	// The increment past the ceiling fails and the counter holds.
	if _, err := q.Increment(user.ID); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("increment at ceiling: err = %v, want ErrQuotaExceeded", err)
	}

	fresh, err := database.NewUserRepo().GetByID(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.ModelCount != cfg.ModelLimit {
		t.Errorf("model_count pushed past ceiling: %d", fresh.ModelCount)
	}

	allowed, err := q.CheckLimit(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Error("CheckLimit true at ceiling")
	}
}

func TestQuotaIncrementUnknownUser(t *testing.T) {
	setupDB(t)
	q := NewQuotaEnforcer(testConfig())

	if _, err := q.Increment("no-such-user"); !errors.Is(err, database.ErrUserNotFound) {
		t.Errorf("increment for missing user: err = %v, want ErrUserNotFound", err)
	}
}

func TestQuotaConcurrentIncrementAtCeilingMinusOne(t *testing.T) {
	setupDB(t)
	cfg := testConfig()
	svc := NewService(cfg)
	q := NewQuotaEnforcer(cfg)

	user, _, err := svc.Login("a@b.com", "A", "1.2.3.4", "ua")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < cfg.ModelLimit-1; i++ {
		if _, err := q.Increment(user.ID); err != nil {
			t.Fatal(err)
		}
	}

	// Two racing increments with one slot left: exactly one may win.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = q.Increment(user.ID)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else if !errors.Is(err, ErrQuotaExceeded) {
			t.Errorf("unexpected race error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("%d increments won the race, want exactly 1", successes)
	}

	fresh, err := database.NewUserRepo().GetByID(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.ModelCount != cfg.ModelLimit {
		t.Errorf("model_count = %d after race, want %d", fresh.ModelCount, cfg.ModelLimit)
	}
}

func TestQuotaReset(t *testing.T) {
	setupDB(t)
	cfg := testConfig()
	svc := NewService(cfg)
	q := NewQuotaEnforcer(cfg)

	user, _, err := svc.Login("a@b.com", "A", "1.2.3.4", "ua")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < cfg.ModelLimit; i++ {
		if _, err := q.Increment(user.ID); err != nil {
			t.Fatal(err)
		}
	}

	if err := q.Reset(user.ID); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	allowed, err := q.CheckLimit(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Error("CheckLimit false after reset")
	}

	count, err := q.Increment(user.ID)
	if err != nil {
		t.Fatalf("increment after reset failed: %v", err)
	}
	if count != 1 {
		t.Errorf("model_count = %d after reset and one increment, want 1", count)
	}

	if err := q.Reset("no-such-user"); !errors.Is(err, database.ErrUserNotFound) {
		t.Errorf("reset for missing user: err = %v, want ErrUserNotFound", err)
	}
}
