package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"Agora/internal/core/profiles"
)

type postgresProfileRepo struct {
	db *sql.DB
}

// NewProfileRepository creates a new PostgreSQL profile repository
func NewProfileRepository(db *sql.DB) profiles.Repository {
	return &postgresProfileRepo{db: db}
}

// Create inserts the profile and fills in CreatedAt.
// The primary key on did turns a second registration into ErrAlreadyRegistered.
func (r *postgresProfileRepo) Create(ctx context.Context, profile *profiles.Profile) error {
	query := `
		INSERT INTO profiles (did, username, avatar_url)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, profile.DID, profile.Username, profile.AvatarURL).
		Scan(&profile.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return profiles.ErrAlreadyRegistered
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	profile.CreatedAt = profile.CreatedAt.UTC()
	return nil
}

// GetByDID retrieves a profile by DID
func (r *postgresProfileRepo) GetByDID(ctx context.Context, did string) (*profiles.Profile, error) {
	profile := &profiles.Profile{}
	query := `SELECT did, username, avatar_url, created_at FROM profiles WHERE did = $1`

	err := r.db.QueryRowContext(ctx, query, did).
		Scan(&profile.DID, &profile.Username, &profile.AvatarURL, &profile.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, profiles.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile by DID: %w", err)
	}

	profile.CreatedAt = profile.CreatedAt.UTC()
	return profile, nil
}
