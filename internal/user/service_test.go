package user

import (
	"context"
	"testing"

	"educycle_backend/internal/common"
	"educycle_backend/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, u *User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockRepository) FindByUID(ctx context.Context, uid string) (*User, error) {
	args := m.Called(ctx, uid)
	if u, ok := args.Get(0).(*User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, u *User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockRepository) UpdateReputation(ctx context.Context, uid string, reputation float64) error {
	return m.Called(ctx, uid, reputation).Error(0)
}

func (m *mockRepository) FindPickupCandidates(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]User)
	return users, args.Error(1)
}

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Geocode(ctx context.Context, query string) (*shared.GeoPoint, error) {
	args := m.Called(ctx, query)
	p, _ := args.Get(0).(*shared.GeoPoint)
	return p, args.Error(1)
}

func (m *mockGeocoder) Reverse(ctx context.Context, lat, lon float64) (*shared.Address, error) {
	args := m.Called(ctx, lat, lon)
	a, _ := args.Get(0).(*shared.Address)
	return a, args.Error(1)
}

type mockCredits struct {
	mock.Mock
}

func (m *mockCredits) Award(ctx context.Context, uid, reason, refID string) (bool, error) {
	args := m.Called(ctx, uid, reason, refID)
	return args.Bool(0), args.Error(1)
}

func newTestService(repo *mockRepository, geo shared.Geocoder, credits shared.CreditAwarder) *ServiceImplementation {
	return NewService(repo, geo, credits, zap.NewNop())
}

func TestBootstrap_CreatesStudentByDefault(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	repo.On("FindByUID", ctx, "u1").Return(nil, common.ErrNotFound).Once()
	repo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
		return u.UID == "u1" && u.Role == common.RoleStudent && u.Email == "a@b.com"
	})).Return(nil)

	svc := newTestService(repo, nil, nil)
	u, created, err := svc.Bootstrap(ctx, "u1", "a@b.com", BootstrapRequest{DisplayName: "Asha"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, common.RoleStudent, u.Role)
	assert.Equal(t, "Asha", u.DisplayName)
	assert.False(t, u.ProfileCompleted)
	repo.AssertExpectations(t)
}

func TestBootstrap_RoleNeverChanges(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	existing := &User{UID: "u1", Email: "a@b.com", Role: common.RoleStudent}
	repo.On("FindByUID", ctx, "u1").Return(existing, nil)
	repo.On("Update", ctx, existing).Return(nil)

	svc := newTestService(repo, nil, nil)
	u, created, err := svc.Bootstrap(ctx, "u1", "a@b.com", BootstrapRequest{Role: common.RoleNGO, City: "Pune"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, common.RoleStudent, u.Role)
	assert.Equal(t, "Pune", u.City)
}

func TestBootstrap_LostCreateRaceReturnsWinner(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	winner := &User{UID: "u1", Role: common.RoleNGO}
	repo.On("FindByUID", ctx, "u1").Return(nil, common.ErrNotFound).Once()
	repo.On("Create", ctx, mock.Anything).Return(common.ErrConflict)
	repo.On("FindByUID", ctx, "u1").Return(winner, nil).Once()

	svc := newTestService(repo, nil, nil)
	u, created, err := svc.Bootstrap(ctx, "u1", "", BootstrapRequest{Role: common.RoleStudent})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, common.RoleNGO, u.Role)
}

func TestBootstrap_NGOAddressIsGeocoded(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	geo := new(mockGeocoder)
	repo.On("FindByUID", ctx, "ngo1").Return(nil, common.ErrNotFound).Once()
	repo.On("Create", ctx, mock.Anything).Return(nil)
	geo.On("Geocode", ctx, "Kothrud, Pune").Return(nil, nil)
	geo.On("Geocode", ctx, "Pune").Return(&shared.GeoPoint{Lat: 18.52, Lon: 73.85}, nil)

	svc := newTestService(repo, geo, nil)
	u, _, err := svc.Bootstrap(ctx, "ngo1", "ngo@x.org", BootstrapRequest{Role: common.RoleNGO, City: "Pune", Area: "Kothrud"})
	require.NoError(t, err)
	assert.True(t, u.Verified)
	require.NotNil(t, u.Latitude)
	assert.InDelta(t, 18.52, *u.Latitude, 1e-9)
	geo.AssertExpectations(t)
}

func TestBootstrap_GeocoderFailureLeavesNGOUnverified(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	geo := new(mockGeocoder)
	repo.On("FindByUID", ctx, "ngo1").Return(nil, common.ErrNotFound).Once()
	repo.On("Create", ctx, mock.Anything).Return(nil)
	geo.On("Geocode", ctx, "Pune").Return(nil, assert.AnError)

	svc := newTestService(repo, geo, nil)
	u, created, err := svc.Bootstrap(ctx, "ngo1", "", BootstrapRequest{Role: common.RoleNGO, City: "Pune"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, u.Verified)
	assert.Nil(t, u.Latitude)
}

func TestUpdateProfile_FirstCompletionAwardsCredits(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	credits := new(mockCredits)
	stored := &User{UID: "u1", Role: common.RoleStudent, DisplayName: "Asha"}
	repo.On("FindByUID", ctx, "u1").Return(stored, nil).Once()
	repo.On("Update", ctx, stored).Return(nil)
	credits.On("Award", ctx, "u1", shared.CreditReasonProfileCompleted, "u1").Return(true, nil).Once()
	repo.On("FindByUID", ctx, "u1").Return(&User{UID: "u1", EduCredits: 10}, nil).Once()

	city, area := "Pune", "Kothrud"
	svc := newTestService(repo, nil, credits)
	u, err := svc.UpdateProfile(ctx, "u1", UpdateProfileRequest{City: &city, Area: &area})
	require.NoError(t, err)
	assert.True(t, u.ProfileCompleted)
	assert.Equal(t, 10, u.EduCredits)
	credits.AssertExpectations(t)
}

func TestUpdateProfile_AlreadyCompletedDoesNotAwardAgain(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	credits := new(mockCredits)
	stored := &User{UID: "u1", Role: common.RoleStudent, DisplayName: "Asha", City: "Pune", Area: "Kothrud", ProfileCompleted: true, EduCredits: 10}
	repo.On("FindByUID", ctx, "u1").Return(stored, nil)
	repo.On("Update", ctx, stored).Return(nil)

	name := "Asha K"
	svc := newTestService(repo, nil, credits)
	u, err := svc.UpdateProfile(ctx, "u1", UpdateProfileRequest{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Asha K", u.DisplayName)
	credits.AssertNotCalled(t, "Award", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSetReputation_RoundsToTwoDecimals(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	repo.On("UpdateReputation", ctx, "u1", 4.33).Return(nil)

	svc := newTestService(repo, nil, nil)
	require.NoError(t, svc.SetReputation(ctx, "u1", 13.0/3.0))
	repo.AssertExpectations(t)
}

func TestGetUserByUID_EmptyIsBadRequest(t *testing.T) {
	svc := newTestService(new(mockRepository), nil, nil)
	_, err := svc.GetUserByUID(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrBadRequest)
}
