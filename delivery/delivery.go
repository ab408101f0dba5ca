// Package delivery issues and verifies one-time confirmation codes.
package delivery

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"
)

const (
	// CodeLength is the number of digits in an issued code.
	CodeLength = 6
	// DefaultTTL bounds how long an issued code stays valid.
	DefaultTTL = 10 * time.Minute
)

var (
	ErrNoCode      = errors.New("delivery: no code issued")
	ErrExpired     = errors.New("delivery: code expired")
	ErrInvalidCode = errors.New("delivery: invalid code")
)

// Message is what a Sender delivers.
type Message struct {
	To        string
	Code      string
	ExpiresAt time.Time
}

// Sender delivers a code to an address (email, phone).
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, m Message) error

func (f SenderFunc) Send(ctx context.Context, m Message) error { return f(ctx, m) }

// LogSender writes codes to a logger. Development only.
type LogSender struct{ Logger *slog.Logger }

func (s LogSender) Send(ctx context.Context, m Message) error {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "confirmation code", slog.String("to", m.To), slog.String("code", m.Code),
		slog.Time("expires_at", m.ExpiresAt))
	return nil
}

// CodeStore keeps the latest code per address.
type CodeStore interface {
	PutCode(ctx context.Context, address, code string, expiresAt time.Time) error
	// GetCode returns ErrNoCode when nothing is stored for address.
	GetCode(ctx context.Context, address string) (code string, expiresAt time.Time, err error)
	DeleteCode(ctx context.Context, address string) error
}

type entry struct {
	code      string
	expiresAt time.Time
}

// MemoryCodes is an in-process CodeStore.
type MemoryCodes struct {
	mu    sync.Mutex
	codes map[string]entry
}

func NewMemoryCodes() *MemoryCodes { return &MemoryCodes{codes: map[string]entry{}} }

func (m *MemoryCodes) PutCode(_ context.Context, address, code string, expiresAt time.Time) error {
	m.mu.Lock()
	m.codes[address] = entry{code: code, expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCodes) GetCode(_ context.Context, address string) (string, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.codes[address]
	if !ok {
		return "", time.Time{}, ErrNoCode
	}
	return e.code, e.expiresAt, nil
}

func (m *MemoryCodes) DeleteCode(_ context.Context, address string) error {
	m.mu.Lock()
	delete(m.codes, address)
	m.mu.Unlock()
	return nil
}

// Issuer generates, delivers and checks codes.
type Issuer struct {
	store  CodeStore
	sender Sender
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// IssuerOpt configures an Issuer. Zero fields take defaults.
type IssuerOpt struct {
	TTL    time.Duration
	Now    func() time.Time
	Logger *slog.Logger
}

func NewIssuer(store CodeStore, sender Sender, opt IssuerOpt) *Issuer {
	i := &Issuer{store: store, sender: sender, ttl: opt.TTL, now: opt.Now, logger: opt.Logger}
	if i.ttl <= 0 {
		i.ttl = DefaultTTL
	}
	if i.now == nil {
		i.now = time.Now
	}
	if i.logger == nil {
		i.logger = slog.New(slog.DiscardHandler)
	}
	return i
}

// Issue stores a fresh code for address, replacing any earlier one, and
// sends it.
func (i *Issuer) Issue(ctx context.Context, address string) (string, error) {
	code, err := newCode()
	if err != nil {
		return "", err
	}
	exp := i.now().Add(i.ttl).UTC()
	if err := i.store.PutCode(ctx, address, code, exp); err != nil {
		return "", fmt.Errorf("delivery: store code: %w", err)
	}
	if err := i.sender.Send(ctx, Message{To: address, Code: code, ExpiresAt: exp}); err != nil {
		return "", fmt.Errorf("delivery: send code: %w", err)
	}
	i.logger.Debug("code issued", slog.String("to", address))
	return code, nil
}

// Verify checks code for address and consumes it on success.
func (i *Issuer) Verify(ctx context.Context, address, code string) error {
	want, exp, err := i.store.GetCode(ctx, address)
	if err != nil {
		return err
	}
	if !i.now().Before(exp) {
		_ = i.store.DeleteCode(ctx, address)
		return ErrExpired
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(code)) != 1 {
		return ErrInvalidCode
	}
	return i.store.DeleteCode(ctx, address)
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("delivery: generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}
