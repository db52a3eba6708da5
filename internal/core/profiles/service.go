package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rivo/uniseg"
)

const maxUsernameGraphemes = 64

type profileService struct {
	repo   Repository
	logger *slog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(repo Repository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &profileService{
		repo:   repo,
		logger: logger,
	}
}

// Register creates the caller's profile. A DID can register exactly once.
func (s *profileService) Register(ctx context.Context, req RegisterRequest) (*Profile, error) {
	if strings.TrimSpace(req.DID) == "" {
		return nil, fmt.Errorf("DID is required")
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidUsername)
	}
	if uniseg.GraphemeClusterCount(username) > maxUsernameGraphemes {
		return nil, fmt.Errorf("%w: username must not exceed %d characters", ErrInvalidUsername, maxUsernameGraphemes)
	}

	profile := &Profile{
		DID:       req.DID,
		Username:  username,
		AvatarURL: strings.TrimSpace(req.AvatarURL),
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Info("profile registered",
		"did", profile.DID,
		"username", profile.Username)

	return profile, nil
}

// GetProfile looks up a profile; absence is not an error
func (s *profileService) GetProfile(ctx context.Context, did string) (*Profile, error) {
	profile, err := s.repo.GetByDID(ctx, did)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) RequireRegistered(ctx context.Context, did string) error {
	if did == "" {
		return ErrNotRegistered
	}
	_, err := s.repo.GetByDID(ctx, did)
	if errors.Is(err, ErrProfileNotFound) {
		return ErrNotRegistered
	}
	if err != nil {
		return fmt.Errorf("failed to check registration: %w", err)
	}
	return nil
}
