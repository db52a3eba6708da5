package graph

import (
	"context"
	"errors"
	"testing"

	"Agora/internal/core/profiles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFollowRepository is a mock implementation of Repository
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Follow(ctx context.Context, followerDID, followeeDID string) error {
	args := m.Called(ctx, followerDID, followeeDID)
	return args.Error(0)
}

func (m *MockFollowRepository) Unfollow(ctx context.Context, followerDID, followeeDID string) error {
	args := m.Called(ctx, followerDID, followeeDID)
	return args.Error(0)
}

func (m *MockFollowRepository) ListFollowing(ctx context.Context, followerDID string) ([]string, error) {
	args := m.Called(ctx, followerDID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFollowRepository) ListFollowers(ctx context.Context, followeeDID string) ([]string, error) {
	args := m.Called(ctx, followeeDID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFollowRepository) IsFollowing(ctx context.Context, followerDID, followeeDID string) (bool, error) {
	args := m.Called(ctx, followerDID, followeeDID)
	return args.Bool(0), args.Error(1)
}

type fakeRegistry map[string]bool

func (f fakeRegistry) RequireRegistered(_ context.Context, did string) error {
	if !f[did] {
		return profiles.ErrNotRegistered
	}
	return nil
}

const (
	alice = "did:plc:alice"
	bob   = "did:plc:bob"
)

func TestFollow_Success(t *testing.T) {
	mockRepo := new(MockFollowRepository)
	mockRepo.On("Follow", mock.Anything, alice, bob).Return(nil)

	service := NewGraphService(mockRepo, fakeRegistry{alice: true}, Options{}, nil)
	err := service.Follow(context.Background(), alice, " "+bob+" ")

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestFollow_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		registry fakeRegistry
		opts     Options
		caller   string
		subject  string
		wantErr  error
	}{
		{
			name:     "empty subject",
			registry: fakeRegistry{alice: true},
			caller:   alice,
			subject:  "  ",
			wantErr:  ErrInvalidSubject,
		},
		{
			name:     "self follow reported before registration",
			registry: fakeRegistry{},
			caller:   alice,
			subject:  alice,
			wantErr:  ErrSelfFollow,
		},
		{
			name:     "unregistered caller",
			registry: fakeRegistry{bob: true},
			caller:   alice,
			subject:  bob,
			wantErr:  profiles.ErrNotRegistered,
		},
		{
			name:     "unregistered subject when required",
			registry: fakeRegistry{alice: true},
			opts:     Options{RequireRegisteredSubject: true},
			caller:   alice,
			subject:  bob,
			wantErr:  profiles.ErrNotRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockFollowRepository)
			service := NewGraphService(mockRepo, tt.registry, tt.opts, nil)

			err := service.Follow(ctx, tt.caller, tt.subject)

			assert.ErrorIs(t, err, tt.wantErr)
			mockRepo.AssertNotCalled(t, "Follow", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestFollow_UnregisteredSubjectAllowedByDefault(t *testing.T) {
	mockRepo := new(MockFollowRepository)
	mockRepo.On("Follow", mock.Anything, alice, bob).Return(nil)

	service := NewGraphService(mockRepo, fakeRegistry{alice: true}, Options{}, nil)

	assert.NoError(t, service.Follow(context.Background(), alice, bob))
}

func TestFollow_RepositoryFailureIsWrapped(t *testing.T) {
	mockRepo := new(MockFollowRepository)
	dbErr := errors.New("deadlock detected")
	mockRepo.On("Follow", mock.Anything, alice, bob).Return(dbErr)

	service := NewGraphService(mockRepo, fakeRegistry{alice: true}, Options{}, nil)
	err := service.Follow(context.Background(), alice, bob)

	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "failed to follow")
}

func TestUnfollow(t *testing.T) {
	mockRepo := new(MockFollowRepository)
	mockRepo.On("Unfollow", mock.Anything, alice, bob).Return(nil)

	// Unfollow does not require registration: it can only remove what exists
	service := NewGraphService(mockRepo, fakeRegistry{}, Options{}, nil)

	assert.NoError(t, service.Unfollow(context.Background(), alice, bob))
	mockRepo.AssertExpectations(t)
}

func TestListings_NeverNil(t *testing.T) {
	mockRepo := new(MockFollowRepository)
	mockRepo.On("ListFollowing", mock.Anything, alice).Return(nil, nil)
	mockRepo.On("ListFollowers", mock.Anything, alice).Return([]string{bob}, nil)

	service := NewGraphService(mockRepo, fakeRegistry{}, Options{}, nil)
	ctx := context.Background()

	following, err := service.GetFollowing(ctx, alice)
	require.NoError(t, err)
	assert.NotNil(t, following)
	assert.Empty(t, following)

	followers, err := service.GetFollowers(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{bob}, followers)
}

func TestIsFollowing(t *testing.T) {
	mockRepo := new(MockFollowRepository)
	mockRepo.On("IsFollowing", mock.Anything, alice, bob).Return(true, nil)

	service := NewGraphService(mockRepo, fakeRegistry{}, Options{}, nil)
	ok, err := service.IsFollowing(context.Background(), alice, bob)

	require.NoError(t, err)
	assert.True(t, ok)
}
