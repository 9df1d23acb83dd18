package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/investbud/chat-gateway/internal/store"
)

// Manager owns the conversation correlation id and the subject wallet carried
// across turns once a premium analysis has run. Both live in the injected
// store so a restart resumes the same backend conversation.
type Manager struct {
	store store.Store
}

func New(s store.Store) *Manager {
	return &Manager{store: s}
}

// ID returns the session correlation id, generating and persisting a fresh
// one on first use.
func (m *Manager) ID(ctx context.Context) (string, error) {
	val, ok, err := m.store.Get(ctx, store.SessionIDKey)
	if err != nil {
		return "", fmt.Errorf("read session id: %w", err)
	}
	if ok && val != "" {
		return val, nil
	}
	id := uuid.NewString()
	if err := m.store.Set(ctx, store.SessionIDKey, id); err != nil {
		return "", fmt.Errorf("persist session id: %w", err)
	}
	return id, nil
}

// Subject returns the remembered premium-analysis subject, or "" if none.
func (m *Manager) Subject(ctx context.Context) (string, error) {
	val, _, err := m.store.Get(ctx, store.SessionSubjectKey)
	if err != nil {
		return "", fmt.Errorf("read session subject: %w", err)
	}
	return val, nil
}

// SetSubject remembers the wallet a premium analysis was performed for, so
// follow-up questions route to the follow-up capability.
func (m *Manager) SetSubject(ctx context.Context, addr string) error {
	return m.store.Set(ctx, store.SessionSubjectKey, addr)
}

// Reset clears the session id, the remembered subject, and the entitlement
// record in a single delete, so a routing decision can never observe a
// half-cleared conversation.
func (m *Manager) Reset(ctx context.Context) error {
	return m.store.Del(ctx, store.SessionIDKey, store.SessionSubjectKey, store.EntitlementKey)
}
