// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/reelmatch/internal/accounts"
	"github.com/tomtom215/reelmatch/internal/events"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

const (
	// DefaultTTL is the session lifetime when Config.TTL is zero.
	DefaultTTL = 24 * time.Hour

	// DefaultMinAge is the minimum age accepted by VerifyAge.
	DefaultMinAge = 18
)

// Credentials is the account store used by Register and Login.
type Credentials interface {
	Register(ctx context.Context, email, password string) (*accounts.Account, error)
	Authenticate(ctx context.Context, email, password string) (*accounts.Account, error)
}

// Publisher receives an event after each persisted transition.
type Publisher interface {
	PublishSessionTransition(ctx context.Context, evt events.SessionTransitioned)
}

// Config configures a Manager.
type Config struct {
	TTL    time.Duration
	MinAge int

	// Now is the clock used for age checks. Defaults to time.Now. Session
	// timestamps always use wall time because stores expire against it.
	Now func() time.Time
}

// Manager applies events to stored sessions.
type Manager struct {
	store Store
	dob   DOBProvider
	creds Credentials
	pub   Publisher
	cfg   Config
}

// NewManager creates a Manager. pub may be nil.
func NewManager(store Store, dob DOBProvider, creds Credentials, pub Publisher, cfg Config) (*Manager, error) {
	if store == nil || dob == nil || creds == nil {
		return nil, errors.New("session manager requires a store, dob provider and credential store")
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", cfg.TTL)
	}
	if cfg.MinAge == 0 {
		cfg.MinAge = DefaultMinAge
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{store: store, dob: dob, creds: creds, pub: pub, cfg: cfg}, nil
}

// TTL returns the session lifetime.
func (m *Manager) TTL() time.Duration { return m.cfg.TTL }

// Start creates a new unverified session.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	now := time.Now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		State:     StateUnverified,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(m.cfg.TTL),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logging.Ctx(ctx).Debug().Str("session_id", s.ID).Msg("Session started")
	return s, nil
}

// Get returns the session with id.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	return m.store.Get(ctx, id)
}

// VerifyAge moves an unverified session to age_verified when aadhaar is
// well formed and the holder is at least MinAge.
func (m *Manager) VerifyAge(ctx context.Context, id, aadhaar string) (*Session, error) {
	s, to, err := m.prepare(ctx, id, EventVerifyAge)
	if err != nil {
		return nil, err
	}

	dob, err := m.dob.DateOfBirth(ctx, aadhaar)
	if err != nil {
		if errors.Is(err, ErrInvalidAadhaar) {
			m.reject(ctx, s, EventVerifyAge, "invalid_aadhaar")
			return nil, ErrInvalidAadhaar
		}
		m.reject(ctx, s, EventVerifyAge, "error")
		return nil, fmt.Errorf("resolve date of birth: %w", err)
	}

	if age := AgeAt(dob, m.cfg.Now()); age < m.cfg.MinAge {
		m.reject(ctx, s, EventVerifyAge, "underage")
		return nil, &UnderageError{Age: age, MinAge: m.cfg.MinAge}
	}

	return m.apply(ctx, s, EventVerifyAge, to)
}

// Register creates an account and signs the session in with it.
func (m *Manager) Register(ctx context.Context, id, email, password string) (*Session, error) {
	s, to, err := m.prepare(ctx, id, EventRegister)
	if err != nil {
		return nil, err
	}

	acct, err := m.creds.Register(ctx, email, password)
	if err != nil {
		m.reject(ctx, s, EventRegister, credentialReason(err))
		return nil, err
	}

	s.Email = acct.Email
	return m.apply(ctx, s, EventRegister, to)
}

// Login signs the session in with existing credentials.
func (m *Manager) Login(ctx context.Context, id, email, password string) (*Session, error) {
	s, to, err := m.prepare(ctx, id, EventLogin)
	if err != nil {
		return nil, err
	}

	acct, err := m.creds.Authenticate(ctx, email, password)
	if err != nil {
		m.reject(ctx, s, EventLogin, credentialReason(err))
		return nil, err
	}

	s.Email = acct.Email
	return m.apply(ctx, s, EventLogin, to)
}

// Logout returns the session to unverified from any state.
func (m *Manager) Logout(ctx context.Context, id string) (*Session, error) {
	s, to, err := m.prepare(ctx, id, EventLogout)
	if err != nil {
		return nil, err
	}
	s.Email = ""
	return m.apply(ctx, s, EventLogout, to)
}

func (m *Manager) prepare(ctx context.Context, id string, ev Event) (*Session, State, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	to, err := Next(s.State, ev)
	if err != nil {
		m.reject(ctx, s, ev, "invalid_transition")
		return nil, "", err
	}
	return s, to, nil
}

func (m *Manager) apply(ctx context.Context, s *Session, ev Event, to State) (*Session, error) {
	from := s.State
	s.State = to
	s.UpdatedAt = time.Now().UTC()
	if err := m.store.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	account := ""
	if s.Email != "" {
		account = logging.MaskEmail(s.Email)
	}
	logging.Ctx(ctx).Info().
		Str("session_id", s.ID).
		Str("event", string(ev)).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("Session transitioned")

	if m.pub != nil {
		m.pub.PublishSessionTransition(ctx, events.SessionTransitioned{
			SessionID: s.ID,
			Event:     string(ev),
			From:      string(from),
			To:        string(to),
			Account:   account,
			Timestamp: s.UpdatedAt,
		})
	}
	return s, nil
}

func (m *Manager) reject(ctx context.Context, s *Session, ev Event, reason string) {
	metrics.RecordSessionRejection(string(ev), reason)
	logging.Ctx(ctx).Info().
		Str("session_id", s.ID).
		Str("event", string(ev)).
		Str("state", string(s.State)).
		Str("reason", reason).
		Msg("Session event rejected")
}

func credentialReason(err error) string {
	switch {
	case errors.Is(err, accounts.ErrAccountExists):
		return "account_exists"
	case errors.Is(err, accounts.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, accounts.ErrInvalidPassword):
		return "invalid_password"
	default:
		return "error"
	}
}
