package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/services"
	"github.com/desertthunder/musicat/internal/shared"
)

// Session holds the signed-in profile. Absence means unauthenticated.
type Session struct {
	client *services.Client

	mu      sync.RWMutex
	profile *models.Profile
}

// NewSession creates an empty session.
func NewSession(client *services.Client) *Session {
	return &Session{client: client}
}

// Load fetches the profile and replaces the stored one wholesale.
//
// Any failure, or an empty profile, clears the session and reports
// [shared.ErrNotAuthenticated].
func (s *Session) Load(ctx context.Context) (*models.Profile, error) {
	p, err := s.client.Profile(ctx)
	if err != nil {
		s.Clear()
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, err)
	}
	if p == nil || (p.UserID == 0 && p.Login == "") {
		s.Clear()
		return nil, shared.ErrNotAuthenticated
	}

	s.Set(*p)
	return s.Current(), nil
}

// Set replaces the stored profile.
func (s *Session) Set(p models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &p
}

// Current returns a copy of the profile or nil when signed out.
func (s *Session) Current() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Authenticated reports whether a profile is loaded.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile != nil
}

// IsAdmin reports the admin flag of the loaded profile.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile != nil && s.profile.IsAdmin
}

// DisplayName is the full name, or the login when no name is set.
func (s *Session) DisplayName() string {
	p := s.Current()
	if p == nil {
		return ""
	}
	if name := p.FullName(); name != "" {
		return name
	}
	return p.Login
}

// Clear forgets the profile.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
}
