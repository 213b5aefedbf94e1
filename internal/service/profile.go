package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/gct-et/assistant/internal/model"
	"github.com/gct-et/assistant/pkg/logger"
)

var (
	// ErrProfileNotFound is returned when a user has no synced profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileNameRequired is returned when syncing a profile without a name.
	ErrProfileNameRequired = errors.New("profile name is required")
)

// ProfileService keeps one engineer profile per user in memory.
type ProfileService struct {
	logger *logger.Logger
	idFunc func() string

	profiles map[string]model.Profile
	mu       sync.RWMutex
}

// NewProfileService creates a new profile service.
func NewProfileService(log *logger.Logger) *ProfileService {
	return &ProfileService{
		logger:   log.Named("profiles"),
		idFunc:   newIDNumber,
		profiles: make(map[string]model.Profile),
	}
}

// newIDNumber returns GCT- followed by a number in [1000, 9999].
func newIDNumber() string {
	return fmt.Sprintf("GCT-%d", 1000+rand.IntN(9000))
}

// Sync stores the profile. An ID number is kept from the request, else from
// the stored profile, else freshly assigned.
func (s *ProfileService) Sync(ctx context.Context, userID string, p *model.Profile) (*model.Profile, error) {
	profile := *p
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return nil, ErrProfileNameRequired
	}

	s.mu.Lock()
	if profile.IDNumber == "" {
		if existing, ok := s.profiles[userID]; ok {
			profile.IDNumber = existing.IDNumber
		} else {
			profile.IDNumber = s.idFunc()
		}
	}
	s.profiles[userID] = profile
	s.mu.Unlock()

	s.logger.Info("profile synced",
		zap.String("user_id", userID),
		zap.String("id_number", profile.IDNumber),
	)
	return &profile, nil
}

// Get returns the stored profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	s.mu.RLock()
	profile, ok := s.profiles[userID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrProfileNotFound
	}
	return &profile, nil
}

// Reset discards the stored profile. Resetting an absent profile is a no-op.
func (s *ProfileService) Reset(ctx context.Context, userID string) {
	s.mu.Lock()
	delete(s.profiles, userID)
	s.mu.Unlock()

	s.logger.Info("profile reset", zap.String("user_id", userID))
}
