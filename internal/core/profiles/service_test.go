package profiles

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProfileRepository is a mock implementation of Repository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByDID(ctx context.Context, did string) (*Profile, error) {
	args := m.Called(ctx, did)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

func TestRegister_Success(t *testing.T) {
	mockRepo := new(MockProfileRepository)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *Profile) bool {
		return p.DID == "did:plc:alice" && p.Username == "alice" && p.AvatarURL == "https://img/1"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*Profile).CreatedAt = time.Now()
	}).Return(nil)

	service := NewProfileService(mockRepo, nil)
	profile, err := service.Register(context.Background(), RegisterRequest{
		DID:       "did:plc:alice",
		Username:  "  alice ",
		AvatarURL: "https://img/1",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.False(t, profile.CreatedAt.IsZero())
	mockRepo.AssertExpectations(t)
}

func TestRegister_AlreadyRegistered(t *testing.T) {
	mockRepo := new(MockProfileRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(ErrAlreadyRegistered)

	service := NewProfileService(mockRepo, nil)
	_, err := service.Register(context.Background(), RegisterRequest{DID: "did:plc:alice", Username: "alice"})

	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegister_InvalidUsername(t *testing.T) {
	mockRepo := new(MockProfileRepository)
	service := NewProfileService(mockRepo, nil)

	tests := []struct {
		name     string
		username string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"too long", strings.Repeat("a", maxUsernameGraphemes+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(context.Background(), RegisterRequest{DID: "did:plc:alice", Username: tt.username})
			assert.ErrorIs(t, err, ErrInvalidUsername)
		})
	}

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_RepositoryFailureIsWrapped(t *testing.T) {
	mockRepo := new(MockProfileRepository)
	dbErr := errors.New("connection refused")
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(dbErr)

	service := NewProfileService(mockRepo, nil)
	_, err := service.Register(context.Background(), RegisterRequest{DID: "did:plc:alice", Username: "alice"})

	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrAlreadyRegistered)
}

func TestGetProfile_AbsentIsNotAnError(t *testing.T) {
	mockRepo := new(MockProfileRepository)
	mockRepo.On("GetByDID", mock.Anything, "did:plc:nobody").Return(nil, ErrProfileNotFound)

	service := NewProfileService(mockRepo, nil)
	profile, err := service.GetProfile(context.Background(), "did:plc:nobody")

	assert.NoError(t, err)
	assert.Nil(t, profile)
}

func TestRequireRegistered(t *testing.T) {
	mockRepo := new(MockProfileRepository)
	mockRepo.On("GetByDID", mock.Anything, "did:plc:alice").Return(&Profile{DID: "did:plc:alice"}, nil)
	mockRepo.On("GetByDID", mock.Anything, "did:plc:nobody").Return(nil, ErrProfileNotFound)

	service := NewProfileService(mockRepo, nil)
	ctx := context.Background()

	assert.NoError(t, service.RequireRegistered(ctx, "did:plc:alice"))
	assert.ErrorIs(t, service.RequireRegistered(ctx, "did:plc:nobody"), ErrNotRegistered)
	assert.ErrorIs(t, service.RequireRegistered(ctx, ""), ErrNotRegistered)
}
