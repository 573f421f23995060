package token

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/pizzeria/internal/credential"
	"github.com/dukerupert/pizzeria/internal/store"
)

const (
	DocumentName             = "token_config"
	DefaultMaxFailedAttempts = 5
	Validity                 = 24 * time.Hour
	LockoutDuration          = 30 * time.Minute
	tokenBytes               = 32
)

// Reason explains a validation outcome.
type Reason string

const (
	ReasonOK            Reason = "ok"
	ReasonLocked        Reason = "locked"
	ReasonNotConfigured Reason = "not_configured"
	ReasonExpired       Reason = "expired"
	ReasonInvalid       Reason = "invalid"
)

func (r Reason) Message() string {
	switch r {
	case ReasonOK:
		return "Token validated successfully"
	case ReasonLocked:
		return "System is locked due to too many failed attempts"
	case ReasonNotConfigured:
		return "No valid token configured"
	case ReasonExpired:
		return "Token has expired"
	default:
		return "Invalid token"
	}
}

// Result is the outcome of Validate. A denied token is not an error.
type Result struct {
	OK     bool
	Reason Reason
}

// Record is the single persisted admin token. Only the digest is stored.
type Record struct {
	TokenHash         string     `json:"token_hash"`
	Expiry            *time.Time `json:"expiry"`
	MaxFailedAttempts int        `json:"max_failed_attempts"`
	FailedAttempts    int        `json:"failed_attempts"`
	LockoutUntil      *time.Time `json:"lockout_until"`
}

func defaultRecord() Record {
	return Record{MaxFailedAttempts: DefaultMaxFailedAttempts}
}

type State string

const (
	StateNoToken State = "no_token"
	StateActive  State = "active"
	StateExpired State = "expired"
	StateLocked  State = "locked"
)

// Status is a read-only view of the record for operators.
type Status struct {
	State          State      `json:"state"`
	Expiry         *time.Time `json:"expiry,omitempty"`
	LockoutUntil   *time.Time `json:"lockout_until,omitempty"`
	FailedAttempts int        `json:"failed_attempts"`
}

// Authority issues and validates the admin token. The record is re-read from
// the backend on every call, so a token issued by another process sharing the
// same storage takes effect immediately.
type Authority struct {
	mu      sync.Mutex
	backend store.Backend
	hasher  *credential.Hasher
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Authority)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) { a.now = now }
}

func NewAuthority(b store.Backend, h *credential.Hasher, logger *slog.Logger, opts ...Option) *Authority {
	a := &Authority{
		backend: b,
		hasher:  h,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Issue creates a new token, replacing any previous one, and returns its
// plaintext. The plaintext is never persisted.
func (a *Authority) Issue() (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	plain := base64.RawURLEncoding.EncodeToString(raw)

	a.mu.Lock()
	defer a.mu.Unlock()

	rec, err := a.load()
	if err != nil {
		return "", err
	}
	expiry := a.now().Add(Validity)
	rec.TokenHash = a.hasher.Hash(plain)
	rec.Expiry = &expiry
	rec.FailedAttempts = 0
	rec.LockoutUntil = nil
	if err := a.save(rec); err != nil {
		return "", err
	}

	a.logger.Info("admin token issued", "expiry", expiry)
	return plain, nil
}

// Validate checks candidate against the stored digest. Checks run in order:
// lockout, configuration, expiry, digest. Only a digest mismatch counts as a
// failed attempt.
func (a *Authority) Validate(candidate string) (Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, err := a.load()
	if err != nil {
		return Result{}, err
	}
	now := a.now()

	if rec.LockoutUntil != nil && now.Before(*rec.LockoutUntil) {
		return Result{Reason: ReasonLocked}, nil
	}
	if rec.TokenHash == "" || rec.Expiry == nil {
		return Result{Reason: ReasonNotConfigured}, nil
	}
	if now.After(*rec.Expiry) {
		return Result{Reason: ReasonExpired}, nil
	}

	if !a.hasher.Verify(candidate, rec.TokenHash) {
		rec.FailedAttempts++
		if rec.FailedAttempts >= rec.MaxFailedAttempts {
			until := now.Add(LockoutDuration)
			rec.LockoutUntil = &until
			rec.FailedAttempts = 0
			a.logger.Warn("admin token locked out", "until", until)
		} else {
			a.logger.Warn("invalid admin token", "failed_attempts", rec.FailedAttempts)
		}
		if err := a.save(rec); err != nil {
			return Result{}, err
		}
		return Result{Reason: ReasonInvalid}, nil
	}

	rec.FailedAttempts = 0
	if err := a.save(rec); err != nil {
		return Result{}, err
	}
	return Result{OK: true, Reason: ReasonOK}, nil
}

func (a *Authority) Status() (Status, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, err := a.load()
	if err != nil {
		return Status{}, err
	}
	now := a.now()
	st := Status{
		Expiry:         rec.Expiry,
		FailedAttempts: rec.FailedAttempts,
	}
	switch {
	case rec.LockoutUntil != nil && now.Before(*rec.LockoutUntil):
		st.State = StateLocked
		st.LockoutUntil = rec.LockoutUntil
	case rec.TokenHash == "" || rec.Expiry == nil:
		st.State = StateNoToken
	case now.After(*rec.Expiry):
		st.State = StateExpired
	default:
		st.State = StateActive
	}
	return st, nil
}

func (a *Authority) load() (Record, error) {
	data, err := a.backend.Read(DocumentName)
	if errors.Is(err, store.ErrNotExist) {
		return defaultRecord(), nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("load token config: %w", err)
	}

	rec := defaultRecord()
	if err := json.Unmarshal(data, &rec); err != nil {
		a.logger.Warn("token config is corrupted, treating as unconfigured", "error", err)
		return defaultRecord(), nil
	}
	if rec.MaxFailedAttempts <= 0 {
		rec.MaxFailedAttempts = DefaultMaxFailedAttempts
	}
	return rec, nil
}

func (a *Authority) save(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal token config: %w", err)
	}
	if err := a.backend.Write(DocumentName, data); err != nil {
		return fmt.Errorf("save token config: %w", err)
	}
	return nil
}
