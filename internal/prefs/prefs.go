// Package prefs stores per-wallet preferences such as the USDC amount spent
// on each accepted swipe.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KeyAmountPerSwipe holds the USDC amount bought on every accepted card.
const KeyAmountPerSwipe = "usdc_amount_per_swipe"

// Store is a single key-value read/write per user.
type Store interface {
	// Get returns the value and whether it was set.
	Get(ctx context.Context, user, key string) (string, bool, error)
	Set(ctx context.Context, user, key, value string) error
}

// Memory is a process-local Store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]map[string]string)}
}

func (m *Memory) Get(_ context.Context, user, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[user][key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, user, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values[user] == nil {
		m.values[user] = make(map[string]string)
	}
	m.values[user][key] = value
	return nil
}

// Postgres stores preferences in the user_prefs table.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres creates a Store backed by db. The schema must be migrated.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, user, key string) (string, bool, error) {
	var value string
	err := p.db.QueryRow(ctx,
		`SELECT value FROM user_prefs WHERE user_id = $1 AND key = $2`,
		user, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get pref %s: %w", key, err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, user, key, value string) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO user_prefs (user_id, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, user, key, value)
	if err != nil {
		return fmt.Errorf("set pref %s: %w", key, err)
	}
	return nil
}
