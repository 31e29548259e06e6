package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/warung-pos/warung-pos/internal/platform/store"
)

// Profile holds the business identity shown on receipts and reports.
type Profile struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Owner   string `json:"owner"`
}

// ErrNotFound is returned when no profile has been saved yet.
var ErrNotFound = errors.New("profile: not found")

// Service persists the single business profile through the store gateway.
type Service struct {
	mu      sync.Mutex
	gateway store.Gateway
	logger  *slog.Logger
	timeout time.Duration
}

// NewService constructs the profile service.
func NewService(gateway store.Gateway, logger *slog.Logger, storeTimeout time.Duration) *Service {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &Service{gateway: gateway, logger: logger, timeout: storeTimeout}
}

// Get loads the saved profile.
func (s *Service) Get(ctx context.Context) (Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.gateway.Load(ctx, store.KeyProfile)
	if errors.Is(err, store.ErrNotFound) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Profile{}, fmt.Errorf("profile: decode: %w", err)
	}
	return p, nil
}

// Save replaces the stored profile.
func (s *Service) Save(ctx context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("profile: encode: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.gateway.Save(ctx, store.KeyProfile, raw); err != nil {
		s.logger.Error("persist profile", slog.Any("error", err))
		return err
	}
	return nil
}
