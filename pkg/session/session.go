// Package session persists the dashboard client's credentials and cached
// profile between runs. A Keeper reads the stored session once when opened
// and writes every change through to its Store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// DefaultProfile is the profile used when none is configured.
const DefaultProfile = "default"

var (
	// ErrNotFound is returned by stores when no session is saved for a profile.
	ErrNotFound = errors.New("session: not found")
	// ErrClosed is returned by stores after Close.
	ErrClosed = errors.New("session: store closed")
)

// Session is the persisted client state.
type Session struct {
	ID           string          `json:"id"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	User         json.RawMessage `json:"user,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Authenticated reports whether the session has both a token and a profile.
func (s Session) Authenticated() bool {
	return s.AccessToken != "" && len(s.User) > 0
}

func (s Session) clone() Session {
	out := s
	if s.User != nil {
		out.User = append(json.RawMessage(nil), s.User...)
	}
	return out
}

// Store saves one session per profile.
type Store interface {
	Load(ctx context.Context, profile string) (Session, error)
	Save(ctx context.Context, profile string, session Session) error
	Delete(ctx context.Context, profile string) error
	Close() error
}
