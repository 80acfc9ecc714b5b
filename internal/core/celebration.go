package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/birthdaywall/internal/store"
)

// CelebrationService owns the single name/birthday record.
type CelebrationService struct {
	backend store.CelebrationBackend
	mu      sync.Mutex
	log     *zerolog.Logger
}

// NewCelebrationService creates a celebration service over backend.
func NewCelebrationService(backend store.CelebrationBackend, logger *zerolog.Logger) *CelebrationService {
	return &CelebrationService{backend: backend, log: logger}
}

// Load returns the stored record, or the empty (unconfigured) record.
func (s *CelebrationService) Load(ctx context.Context) store.Celebration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Load(ctx)
}

// Save overwrites the record. name must be non-empty and birthday must be YYYY-MM-DD.
func (s *CelebrationService) Save(ctx context.Context, name, birthday string) (store.Celebration, error) {
	c, err := newCelebration(name, birthday)
	if err != nil {
		return store.Celebration{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, c)
}

// Setup saves the record only when none is configured yet. It guards against
// accidental overwrites, not against a determined caller: Reset is open to
// everyone, so Reset followed by Setup replaces the record.
func (s *CelebrationService) Setup(ctx context.Context, name, birthday string) (store.Celebration, error) {
	c, err := newCelebration(name, birthday)
	if err != nil {
		return store.Celebration{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend.Load(ctx).IsConfigured() {
		return store.Celebration{}, ErrAlreadyConfigured
	}
	return s.save(ctx, c)
}

// Reset clears the record back to unconfigured.
func (s *CelebrationService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.save(ctx, store.Celebration{})
	return err
}

func (s *CelebrationService) save(ctx context.Context, c store.Celebration) (store.Celebration, error) {
	err := s.backend.SaveAll(ctx, c)
	if err != nil && !store.IsWarning(err) {
		return store.Celebration{}, err
	}
	s.log.Info().Bool("configured", c.IsConfigured()).Msg("celebration saved")
	return c, err
}

func newCelebration(name, birthday string) (store.Celebration, error) {
	name = strings.TrimSpace(name)
	birthday = strings.TrimSpace(birthday)
	if name == "" {
		return store.Celebration{}, invalid("name", "please enter a name")
	}
	if _, err := time.Parse(DateLayout, birthday); err != nil {
		return store.Celebration{}, invalid("birthday", "birthday must be a date in YYYY-MM-DD form")
	}
	return store.Celebration{Name: name, Birthday: birthday}, nil
}

// Gate compares submitted personal facts against the celebration record.
// It is a courtesy check for a private page, not authentication: the facts
// it compares are known to family and friends.
type Gate struct {
	celebration *CelebrationService
}

// NewGate creates a gate reading from celebration.
func NewGate(celebration *CelebrationService) *Gate {
	return &Gate{celebration: celebration}
}

// Check reports whether name matches (trimmed, case-insensitive) and date
// matches exactly. An unconfigured record never matches.
func (g *Gate) Check(ctx context.Context, name, date string) bool {
	c := g.celebration.Load(ctx)
	if !c.IsConfigured() {
		return false
	}
	return normalizeName(name) == normalizeName(c.Name) && date == c.Birthday
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
