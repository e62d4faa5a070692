// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package accounts stores viewer credentials in BadgerDB. Passwords are
// kept only as bcrypt hashes and never leave the package.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/reelmatch/internal/logging"
)

const accountKeyPrefix = "account:"

var (
	// ErrAccountExists is returned by Register for a taken email.
	ErrAccountExists = errors.New("account already exists")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidPassword is returned for passwords bcrypt cannot accept or
	// that are shorter than the configured minimum.
	ErrInvalidPassword = errors.New("password does not meet requirements")
)

// Account is the stored record. PasswordHash is never returned to callers.
type Account struct {
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Config configures a Store.
type Config struct {
	BcryptCost        int
	MinPasswordLength int
}

// Store is a BadgerDB-backed credential store.
type Store struct {
	db  *badger.DB
	cfg Config

	dummyOnce sync.Once
	dummyHash []byte
}

// NewStore creates a Store over an open database.
func NewStore(db *badger.DB, cfg Config) *Store {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.MinPasswordLength == 0 {
		cfg.MinPasswordLength = 8
	}
	return &Store{db: db, cfg: cfg}
}

// NormalizeEmail is the canonical account key form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account for email.
func (s *Store) Register(ctx context.Context, email, password string) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	if len(password) < s.cfg.MinPasswordLength {
		return nil, fmt.Errorf("%w: at least %d characters required", ErrInvalidPassword, s.cfg.MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: at most 72 bytes allowed", ErrInvalidPassword)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acct := Account{Email: email, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	data, err := json.Marshal(&acct)
	if err != nil {
		return nil, fmt.Errorf("marshal account: %w", err)
	}

	key := []byte(accountKeyPrefix + email)
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrAccountExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get account: %w", err)
		}
		return txn.Set(key, data)
	})
	if errors.Is(err, badger.ErrConflict) {
		// A concurrent Register for the same email committed first.
		err = ErrAccountExists
	}
	if err != nil {
		return nil, err
	}

	logging.Info().Str("email", logging.MaskEmail(email)).Msg("Account registered")
	return publicCopy(&acct), nil
}

// Authenticate verifies credentials. An unknown email still costs one bcrypt
// comparison so response time does not reveal which emails exist.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)

	acct, err := s.get(email)
	if errors.Is(err, badger.ErrKeyNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return publicCopy(acct), nil
}

// Exists reports whether email has an account.
func (s *Store) Exists(_ context.Context, email string) (bool, error) {
	_, err := s.get(NormalizeEmail(email))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Count returns the number of stored accounts.
func (s *Store) Count(_ context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(accountKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

func (s *Store) get(email string) (*Account, error) {
	var acct Account
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(accountKeyPrefix + email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &acct)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &acct, nil
}

func (s *Store) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("reelmatch-dummy-password"), s.cfg.BcryptCost)
		if err != nil {
			h = []byte("$2a$10$invalidinvalidinvalidinvalidinvalidinvalidinvalidinva")
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func publicCopy(a *Account) *Account {
	return &Account{Email: a.Email, CreatedAt: a.CreatedAt}
}
