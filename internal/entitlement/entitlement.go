package entitlement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/investbud/chat-gateway/internal/store"
)

// Record is the single stored entitlement: when the premium capability was
// last purchased and for which subject wallet.
type Record struct {
	PaidAt  int64  `json:"paid_at"` // unix seconds
	Subject string `json:"subject"`
}

// Cache tracks whether the premium analysis was already paid for today.
// It holds at most one record; a new purchase simply overwrites the old one.
type Cache struct {
	store store.Store
	now   func() time.Time
}

func New(s store.Store) *Cache {
	return &Cache{store: s, now: time.Now}
}

// IsEntitledToday reports whether a premium purchase was recorded for subject
// on the current calendar day. The comparison uses local-time year/month/day,
// so the entitlement rolls over at the user's local midnight, not UTC.
// A missing record or any other subject means not entitled; that is a normal
// routing branch, never an error.
func (c *Cache) IsEntitledToday(ctx context.Context, subject string) (bool, error) {
	rec, err := c.get(ctx)
	if err != nil {
		return false, err
	}
	if rec == nil || rec.Subject != subject {
		return false, nil
	}
	return sameLocalDay(time.Unix(rec.PaidAt, 0), c.now()), nil
}

// Record overwrites the stored entitlement with a purchase for subject at t.
func (c *Cache) Record(ctx context.Context, subject string, t time.Time) error {
	raw, err := json.Marshal(Record{PaidAt: t.Unix(), Subject: subject})
	if err != nil {
		return fmt.Errorf("marshal entitlement: %w", err)
	}
	return c.store.Set(ctx, store.EntitlementKey, string(raw))
}

// Clear removes the stored entitlement.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Del(ctx, store.EntitlementKey)
}

// Get returns the stored record, or nil when none exists.
func (c *Cache) Get(ctx context.Context) (*Record, error) {
	return c.get(ctx)
}

func (c *Cache) get(ctx context.Context) (*Record, error) {
	val, ok, err := c.store.Get(ctx, store.EntitlementKey)
	if err != nil {
		return nil, fmt.Errorf("read entitlement: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("decode entitlement: %w", err)
	}
	return &rec, nil
}

func sameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
