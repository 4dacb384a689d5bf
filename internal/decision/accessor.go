// Package decision projects the append-style decisions log onto "latest
// decision per name" and keeps that projection cached per user.
//
// The cache is read-through and optimistic: writes update it before the store
// confirms, and the next LoadLatestDecisions reconciles it with the store.
package decision

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/KevDevLee/namens-tinder/internal/db"
	"github.com/KevDevLee/namens-tinder/internal/domain"
	"github.com/KevDevLee/namens-tinder/internal/utils/pagination"
)

// Latest maps name id to the user's latest decision.
type Latest map[uint64]domain.Decision

// Store is the decisions table as the accessor needs it.
type Store interface {
	LatestPage(ctx context.Context, userID uint64, offset, limit int) ([]db.Decision, error)
	Upsert(ctx context.Context, userID, nameID uint64, decision domain.Decision) (db.Decision, error)
	LatestForPair(ctx context.Context, userID, nameID uint64) (db.Decision, bool, error)
	DeletePair(ctx context.Context, userID, nameID uint64) (int64, error)
	DeleteByID(ctx context.Context, userID, decisionID uint64) (db.Decision, error)
}

type Accessor struct {
	store    Store
	log      *slog.Logger
	pageSize int

	mu     sync.RWMutex
	latest map[uint64]Latest
}

type Option func(*Accessor)

// WithPageSize overrides pagination.PageSize; tests use small pages.
func WithPageSize(n int) Option {
	return func(a *Accessor) { a.pageSize = n }
}

func NewAccessor(store Store, log *slog.Logger, opts ...Option) *Accessor {
	a := &Accessor{
		store:    store,
		log:      log,
		pageSize: pagination.PageSize,
		latest:   make(map[uint64]Latest),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LoadLatestDecisions reads the user's whole log newest-first and keeps the
// first decision seen per name. A failing page ends the read; the rows fetched
// before it still count. The result replaces the cached map for the user.
func (a *Accessor) LoadLatestDecisions(ctx context.Context, userID uint64) Latest {
	_, latest, _ := a.load(ctx, userID)
	return latest
}

// LoadLatest is LoadLatestDecisions that also returns the page error, so
// callers can tell a partial map from a complete one.
func (a *Accessor) LoadLatest(ctx context.Context, userID uint64) (Latest, error) {
	_, latest, err := a.load(ctx, userID)
	return latest, err
}

// LatestRows loads like LoadLatestDecisions but returns the latest row per
// name, newest first.
func (a *Accessor) LatestRows(ctx context.Context, userID uint64) []db.Decision {
	rows, _, _ := a.load(ctx, userID)
	return rows
}

func (a *Accessor) load(ctx context.Context, userID uint64) ([]db.Decision, Latest, error) {
	rows, err := pagination.FetchAll(ctx, a.pageSize, func(ctx context.Context, offset, limit int) ([]db.Decision, error) {
		return a.store.LatestPage(ctx, userID, offset, limit)
	})
	if err != nil {
		a.log.Error("load decisions failed", "user", userID, "rows_read", len(rows), "err", err)
	}

	seen := make(map[uint64]struct{}, len(rows))
	var kept []db.Decision
	for _, row := range rows {
		if _, ok := seen[row.NameID]; !ok {
			seen[row.NameID] = struct{}{}
			kept = append(kept, row)
		}
	}
	latest := Project(kept)

	a.mu.Lock()
	a.latest[userID] = latest
	a.mu.Unlock()

	return kept, maps.Clone(latest), err
}

// Project reduces rows ordered by id DESC to the latest decision per name.
func Project(rows []db.Decision) Latest {
	latest := make(Latest, len(rows))
	for _, row := range rows {
		if _, seen := latest[row.NameID]; !seen {
			latest[row.NameID] = row.Decision
		}
	}
	return latest
}

// RecordDecision sets the user's decision on a name. The cached map changes
// first; the returned row is the one the store now treats as latest.
func (a *Accessor) RecordDecision(ctx context.Context, userID, nameID uint64, decision domain.Decision) (db.Decision, error) {
	a.mu.Lock()
	a.userMap(userID)[nameID] = decision
	a.mu.Unlock()

	row, err := a.store.Upsert(ctx, userID, nameID, decision)
	if err != nil {
		a.log.Error("record decision failed", "user", userID, "name", nameID, "decision", decision, "err", err)
		return db.Decision{}, err
	}
	return row, nil
}

// ClearDecision deletes every row of the pair, returning the name to the
// user's undecided pool.
func (a *Accessor) ClearDecision(ctx context.Context, userID, nameID uint64) error {
	a.mu.Lock()
	delete(a.userMap(userID), nameID)
	a.mu.Unlock()

	if _, err := a.store.DeletePair(ctx, userID, nameID); err != nil {
		a.log.Error("clear decision failed", "user", userID, "name", nameID, "err", err)
		return err
	}
	return nil
}

// DeleteDecision removes one row by id and drops its name from the cache.
func (a *Accessor) DeleteDecision(ctx context.Context, userID, decisionID uint64) (db.Decision, error) {
	row, err := a.store.DeleteByID(ctx, userID, decisionID)
	if err != nil {
		a.log.Error("delete decision failed", "user", userID, "decision_id", decisionID, "err", err)
		return db.Decision{}, err
	}

	a.mu.Lock()
	delete(a.userMap(userID), row.NameID)
	a.mu.Unlock()
	return row, nil
}

// LatestFor asks the store for the user's newest decision on one name.
// Errors are logged and read as "no decision".
func (a *Accessor) LatestFor(ctx context.Context, userID, nameID uint64) (domain.Decision, bool) {
	row, found, err := a.store.LatestForPair(ctx, userID, nameID)
	if err != nil {
		a.log.Error("latest decision lookup failed", "user", userID, "name", nameID, "err", err)
		return "", false
	}
	return row.Decision, found
}

// Snapshot copies the cached map without touching the store.
func (a *Accessor) Snapshot(userID uint64) Latest {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return maps.Clone(a.latest[userID])
}

// userMap returns the cached map of userID, creating it. Callers hold a.mu.
func (a *Accessor) userMap(userID uint64) Latest {
	m, ok := a.latest[userID]
	if !ok {
		m = make(Latest)
		a.latest[userID] = m
	}
	return m
}
