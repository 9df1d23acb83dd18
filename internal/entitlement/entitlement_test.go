package entitlement

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/investbud/chat-gateway/internal/store"
)

const subject = "0x1111111111111111111111111111111111111111"

func newCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(store.NewRedisStore(rdb))
}

func TestIsEntitledToday_NoRecord(t *testing.T) {
	c := newCache(t)
	ok, err := c.IsEntitledToday(context.Background(), subject)
	if err != nil {
		t.Fatalf("IsEntitledToday: %v", err)
	}
	if ok {
		t.Error("entitled without a record")
	}
}

func TestIsEntitledToday_AfterRecord(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	if err := c.Record(ctx, subject, time.Now()); err != nil {
		t.Fatalf("Record: %v", err)
	}
	ok, err := c.IsEntitledToday(ctx, subject)
	if err != nil {
		t.Fatalf("IsEntitledToday: %v", err)
	}
	if !ok {
		t.Error("expected entitled immediately after Record")
	}
}

func TestIsEntitledToday_YesterdayExpires(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	if err := c.Record(ctx, subject, time.Now().AddDate(0, 0, -1)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	ok, err := c.IsEntitledToday(ctx, subject)
	if err != nil {
		t.Fatalf("IsEntitledToday: %v", err)
	}
	if ok {
		t.Error("yesterday's purchase still entitled")
	}
}

// The boundary is the local calendar day, not a 24h window: a purchase late
// yesterday evening is expired this morning even though fewer than 24 hours
// passed.
func TestIsEntitledToday_LocalDayBoundary(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	morning := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	lastEvening := time.Date(2026, 3, 9, 23, 30, 0, 0, time.Local)
	c.now = func() time.Time { return morning }

	if err := c.Record(ctx, subject, lastEvening); err != nil {
		t.Fatal(err)
	}
	ok, err := c.IsEntitledToday(ctx, subject)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("purchase from yesterday evening should not carry over")
	}
}

func TestIsEntitledToday_DifferentSubject(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	if err := c.Record(ctx, subject, time.Now()); err != nil {
		t.Fatal(err)
	}
	ok, err := c.IsEntitledToday(ctx, "0x2222222222222222222222222222222222222222")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("entitlement leaked to another subject")
	}
}

func TestRecord_Overwrites(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	other := "0x2222222222222222222222222222222222222222"

	c.Record(ctx, subject, time.Now()) //nolint:errcheck
	c.Record(ctx, other, time.Now())   //nolint:errcheck

	rec, err := c.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.Subject != other {
		t.Errorf("stored record: %+v, want subject %s", rec, other)
	}
	// Only one record exists; the first subject is forgotten.
	if ok, _ := c.IsEntitledToday(ctx, subject); ok {
		t.Error("overwritten subject still entitled")
	}
}

func TestClear(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	c.Record(ctx, subject, time.Now()) //nolint:errcheck
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	rec, err := c.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Errorf("record survived clear: %+v", rec)
	}
}
