// Package prefs persists per-user dashboard preferences in Redis.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Preferences are the dashboard display settings a user can tune.
type Preferences struct {
	Theme        string `json:"theme"`
	ItemsPerPage int    `json:"items_per_page"`
}

// ErrInvalidPreferences signals a value outside the allowed sets.
var ErrInvalidPreferences = errors.New("invalid preferences")

var validThemes = map[string]bool{"light": true, "dark": true, "system": true}

var validPageSizes = map[int]bool{10: true, 25: true, 50: true, 100: true}

// Defaults returns the preferences applied when a user has saved nothing.
func Defaults() Preferences {
	return Preferences{Theme: "system", ItemsPerPage: 25}
}

// Validate checks the preference values against their allowed sets.
func (p Preferences) Validate() error {
	if !validThemes[p.Theme] {
		return fmt.Errorf("%w: theme must be light, dark or system", ErrInvalidPreferences)
	}
	if !validPageSizes[p.ItemsPerPage] {
		return fmt.Errorf("%w: items_per_page must be one of 10, 25, 50, 100", ErrInvalidPreferences)
	}
	return nil
}

// Store reads and writes preferences keyed by actor.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func prefsKey(actor string) string {
	return "prefs:" + actor
}

// Load returns the saved preferences for the actor, or the defaults when
// nothing was saved yet.
func (s *Store) Load(ctx context.Context, actor string) (Preferences, error) {
	raw, err := s.client.Get(ctx, prefsKey(actor)).Bytes()
	if err == redis.Nil {
		return Defaults(), nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	var p Preferences
	if err := json.Unmarshal(raw, &p); err != nil {
		// Corrupt entries fall back to defaults rather than wedging the UI.
		return Defaults(), nil
	}
	return p, nil
}

// Save validates and persists the preferences for the actor.
func (s *Store) Save(ctx context.Context, actor string, p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, prefsKey(actor), raw, 0).Err(); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
