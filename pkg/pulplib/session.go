package pulplib

import (
	"fmt"
	"log/slog"
)

// Session binds entities to a live Client and carries the hooks and logger
// used by orchestrated operations. Entities hold the session as a relation
// only; they never manage its lifetime.
type Session struct {
	client Client
	hooks  *Hooks
	logger *slog.Logger
}

// SessionOption represents a functional option for configuring a session.
type SessionOption func(*Session)

// WithClient sets the transport client for the session.
func WithClient(c Client) SessionOption {
	return func(s *Session) {
		s.client = c
	}
}

// WithHooks sets the extension hooks evaluated by orchestrated operations.
func WithHooks(h *Hooks) SessionOption {
	return func(s *Session) {
		s.hooks = h
	}
}

// WithLogger sets the logger used for best-effort failures and warnings.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// NewSession creates a session with the given options. A client is required.
func NewSession(options ...SessionOption) (*Session, error) {
	s := &Session{
		hooks: &Hooks{},
	}
	for _, option := range options {
		option(s)
	}
	if s.client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// DecodeRepository decodes raw remote data polymorphically and attaches the
// result to this session.
func (s *Session) DecodeRepository(data RemoteData) (Repo, error) {
	repo, err := DecodeRepository(data)
	if err != nil {
		return nil, err
	}
	if err := repo.Base().Attach(s); err != nil {
		return nil, err
	}
	return repo, nil
}
