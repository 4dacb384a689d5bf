// Package prefs keeps the small per-user settings the swipe screens need:
// the gender filter, the family name shown under each card and a one-shot
// "name list changed" flag.
package prefs

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/KevDevLee/namens-tinder/internal/domain"
)

const (
	keyGenderFilter = "gender_filter"
	keyLastName     = "last_name"
	keyReload       = "reload_names"

	maxLastNameLen = 64
)

// Preferences is the user-facing settings object.
type Preferences struct {
	GenderFilter domain.GenderFilter `json:"gender_filter"`
	LastName     string              `json:"last_name"`
}

// Defaults returns the settings of a user who never saved any.
func Defaults() Preferences {
	return Preferences{GenderFilter: domain.FilterAll}
}

// Backend is the key-value store the settings live in.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
	KeyForPreference(userID uint64, name string) string
}

type Store struct {
	kv Backend
}

func NewStore(kv Backend) *Store {
	return &Store{kv: kv}
}

// Load returns the saved settings, filling gaps with Defaults.
func (s *Store) Load(ctx context.Context, userID uint64) (Preferences, error) {
	p := Defaults()

	filter, err := s.kv.Get(ctx, s.kv.KeyForPreference(userID, keyGenderFilter))
	if err != nil {
		return p, errors.Wrap(err, "load gender filter")
	}
	if f, err := domain.ParseGenderFilter(filter); err == nil {
		p.GenderFilter = f
	}

	last, err := s.kv.Get(ctx, s.kv.KeyForPreference(userID, keyLastName))
	if err != nil {
		return p, errors.Wrap(err, "load last name")
	}
	p.LastName = last
	return p, nil
}

// Save validates and persists p. Settings never expire.
func (s *Store) Save(ctx context.Context, userID uint64, p Preferences) (Preferences, error) {
	filter, err := domain.ParseGenderFilter(string(p.GenderFilter))
	if err != nil {
		return Preferences{}, err
	}
	p.GenderFilter = filter
	p.LastName = strings.TrimSpace(p.LastName)
	if len(p.LastName) > maxLastNameLen {
		return Preferences{}, errors.Wrapf(domain.ErrInvalidInput, "last name longer than %d bytes", maxLastNameLen)
	}

	if err := s.kv.Set(ctx, s.kv.KeyForPreference(userID, keyGenderFilter), string(p.GenderFilter), 0); err != nil {
		return Preferences{}, errors.Wrap(err, "save gender filter")
	}
	if err := s.kv.Set(ctx, s.kv.KeyForPreference(userID, keyLastName), p.LastName, 0); err != nil {
		return Preferences{}, errors.Wrap(err, "save last name")
	}
	return p, nil
}

// MarkReload tells the user's next list view to refetch names.
func (s *Store) MarkReload(ctx context.Context, userID uint64) error {
	return s.kv.Set(ctx, s.kv.KeyForPreference(userID, keyReload), "true", 0)
}

// ConsumeReload reports whether a reload was requested and clears the flag.
func (s *Store) ConsumeReload(ctx context.Context, userID uint64) (bool, error) {
	v, err := s.kv.GetDel(ctx, s.kv.KeyForPreference(userID, keyReload))
	if err != nil {
		return false, errors.Wrap(err, "consume reload flag")
	}
	return v == "true", nil
}
