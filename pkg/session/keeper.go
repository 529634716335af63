package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Keeper holds the active session in memory and writes changes through to a
// Store. It satisfies the client's credential contract.
type Keeper struct {
	mu      sync.RWMutex
	store   Store
	profile string
	current Session
	now     func() time.Time
	logger  *zap.Logger
}

// KeeperOption configures a Keeper.
type KeeperOption func(*Keeper)

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) KeeperOption {
	return func(k *Keeper) {
		if now != nil {
			k.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) KeeperOption {
	return func(k *Keeper) {
		if logger != nil {
			k.logger = logger
		}
	}
}

// Open reads the saved session for profile. A missing session yields an
// empty keeper; a session whose cached profile is not valid JSON is removed.
func Open(ctx context.Context, store Store, profile string, opts ...KeeperOption) (*Keeper, error) {
	if store == nil {
		return nil, errors.New("session: store is nil")
	}
	if profile == "" {
		profile = DefaultProfile
	}
	k := &Keeper{store: store, profile: profile, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(k)
		}
	}

	saved, err := store.Load(ctx, profile)
	switch {
	case errors.Is(err, ErrNotFound):
		return k, nil
	case err != nil:
		return nil, err
	}
	if len(saved.User) > 0 && !json.Valid(saved.User) {
		k.logger.Warn("discarding session with corrupt profile", zap.String("profile", profile), zap.String("session", saved.ID))
		if err := store.Delete(ctx, profile); err != nil {
			return nil, err
		}
		return k, nil
	}
	k.current = saved
	return k, nil
}

// Profile reports the profile name the keeper persists under.
func (k *Keeper) Profile() string {
	return k.profile
}

// Current returns a copy of the active session.
func (k *Keeper) Current() Session {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.current.clone()
}

func (k *Keeper) AccessToken() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.current.AccessToken
}

func (k *Keeper) RefreshToken() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.current.RefreshToken
}

// User decodes the cached profile into v.
func (k *Keeper) User(v any) error {
	k.mu.RLock()
	raw := k.current.User
	k.mu.RUnlock()
	if len(raw) == 0 {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("session: decode profile: %w", err)
	}
	return nil
}

// SaveLogin starts a new session with fresh tokens and profile.
func (k *Keeper) SaveLogin(ctx context.Context, access, refresh string, user json.RawMessage) error {
	next := Session{
		ID:           uuid.NewString(),
		AccessToken:  access,
		RefreshToken: refresh,
		User:         append(json.RawMessage(nil), user...),
		UpdatedAt:    k.now(),
	}
	if err := k.store.Save(ctx, k.profile, next); err != nil {
		return err
	}
	k.mu.Lock()
	k.current = next
	k.mu.Unlock()
	k.logger.Debug("session saved", zap.String("profile", k.profile), zap.String("session", next.ID))
	return nil
}

// UpdateAccess replaces the access token after a refresh.
func (k *Keeper) UpdateAccess(ctx context.Context, access string) error {
	k.mu.RLock()
	next := k.current.clone()
	k.mu.RUnlock()
	if next.ID == "" {
		next.ID = uuid.NewString()
	}
	next.AccessToken = access
	next.UpdatedAt = k.now()
	if err := k.store.Save(ctx, k.profile, next); err != nil {
		return err
	}
	k.mu.Lock()
	k.current = next
	k.mu.Unlock()
	return nil
}

// Clear forgets the session in memory and in the store.
func (k *Keeper) Clear(ctx context.Context) error {
	k.mu.Lock()
	k.current = Session{}
	k.mu.Unlock()
	if err := k.store.Delete(ctx, k.profile); err != nil {
		return err
	}
	k.logger.Debug("session cleared", zap.String("profile", k.profile))
	return nil
}
