package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Options tunes follow policy
type Options struct {
	// RequireRegisteredSubject rejects follows of DIDs without a profile.
	// Off by default: only the follower must be registered.
	RequireRegisteredSubject bool
}

type graphService struct {
	repo     Repository
	profiles RegistrationChecker
	logger   *slog.Logger
	opts     Options
}

// NewGraphService creates a new follow graph service
func NewGraphService(repo Repository, profiles RegistrationChecker, opts Options, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &graphService{
		repo:     repo,
		profiles: profiles,
		opts:     opts,
		logger:   logger,
	}
}

// Follow creates the caller -> subject edge. Following twice is a no-op.
func (s *graphService) Follow(ctx context.Context, callerDID, subjectDID string) error {
	subjectDID = strings.TrimSpace(subjectDID)
	if subjectDID == "" {
		return ErrInvalidSubject
	}
	if callerDID == subjectDID {
		return ErrSelfFollow
	}

	if err := s.profiles.RequireRegistered(ctx, callerDID); err != nil {
		return err
	}
	if s.opts.RequireRegisteredSubject {
		if err := s.profiles.RequireRegistered(ctx, subjectDID); err != nil {
			return err
		}
	}

	if err := s.repo.Follow(ctx, callerDID, subjectDID); err != nil {
		return fmt.Errorf("failed to follow: %w", err)
	}

	s.logger.Debug("follow recorded",
		"follower", callerDID,
		"subject", subjectDID)

	return nil
}

// Unfollow removes the caller -> subject edge if present
func (s *graphService) Unfollow(ctx context.Context, callerDID, subjectDID string) error {
	if err := s.repo.Unfollow(ctx, callerDID, strings.TrimSpace(subjectDID)); err != nil {
		return fmt.Errorf("failed to unfollow: %w", err)
	}
	return nil
}

func (s *graphService) GetFollowing(ctx context.Context, did string) ([]string, error) {
	following, err := s.repo.ListFollowing(ctx, did)
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	if following == nil {
		following = []string{}
	}
	return following, nil
}

func (s *graphService) GetFollowers(ctx context.Context, did string) ([]string, error) {
	followers, err := s.repo.ListFollowers(ctx, did)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	if followers == nil {
		followers = []string{}
	}
	return followers, nil
}

func (s *graphService) IsFollowing(ctx context.Context, followerDID, followeeDID string) (bool, error) {
	ok, err := s.repo.IsFollowing(ctx, followerDID, followeeDID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return ok, nil
}
