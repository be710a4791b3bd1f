// Package cache provides the transcript cache: an explicit component with an
// injectable backing store instead of module-level mutable state.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Store is the backing store contract. The memory implementation serves tests
// and single-node deployments; a durable store can be swapped in without
// touching the orchestrator.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process Store with per-entry TTL.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	logger  *slog.Logger
}

func NewMemory(ttl time.Duration, logger *slog.Logger) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		logger:  logger.With("component", "transcript_cache"),
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || (!e.expiresAt.IsZero() && time.Now().After(e.expiresAt)) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	var expiresAt time.Time
	if m.ttl > 0 {
		expiresAt = time.Now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry{value: value, expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// StartJanitor evicts expired entries on the given interval until ctx is
// canceled. Run it in its own goroutine.
func (m *Memory) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("cache janitor stopped")
			return
		case <-ticker.C:
			m.evictExpired()
		}
	}
}

func (m *Memory) evictExpired() {
	now := time.Now()

	m.mu.Lock()
	evicted := 0
	for key, e := range m.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(m.entries, key)
			evicted++
		}
	}
	m.mu.Unlock()

	if evicted > 0 {
		m.logger.Debug("evicted expired transcripts", "count", evicted)
	}
}
