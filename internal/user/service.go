package user

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"educycle_backend/internal/common"
	"educycle_backend/internal/shared"

	"go.uber.org/zap"
)

// Service defines the user operations exposed to handlers and other modules.
type Service interface {
	shared.UserService
	GetUserByEmail(ctx context.Context, email string) (*shared.User, error)
	Bootstrap(ctx context.Context, uid, email string, req BootstrapRequest) (*shared.User, bool, error)
	CreateWithPassword(ctx context.Context, uid, email, passwordHash string, req BootstrapRequest) (*shared.User, error)
	PasswordHash(ctx context.Context, email string) (uid string, hash string, err error)
	UpdateProfile(ctx context.Context, uid string, req UpdateProfileRequest) (*shared.User, error)
	SetReputation(ctx context.Context, uid string, reputation float64) error
	ListPickupCandidates(ctx context.Context) ([]shared.User, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo     Repository
	geocoder shared.Geocoder
	credits  shared.CreditAwarder
	logger   *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new user service. geocoder may be nil, in which case NGO addresses stay unresolved.
func NewService(repo Repository, geocoder shared.Geocoder, credits shared.CreditAwarder, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		geocoder: geocoder,
		credits:  credits,
		logger:   logger,
	}
}

func (s *ServiceImplementation) GetUserByUID(ctx context.Context, uid string) (*shared.User, error) {
	if uid == "" {
		return nil, common.ErrBadRequest.WithDetails("User id is required.")
	}
	u, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return DBToShared(u), nil
}

func (s *ServiceImplementation) GetUserByEmail(ctx context.Context, email string) (*shared.User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return DBToShared(u), nil
}

// Bootstrap creates the caller's profile on first sign-in. On later calls it fills in
// profile fields that were sent and never changes the role. The bool reports creation.
func (s *ServiceImplementation) Bootstrap(ctx context.Context, uid, email string, req BootstrapRequest) (*shared.User, bool, error) {
	existing, err := s.repo.FindByUID(ctx, uid)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}

	if existing != nil {
		if req.Role != "" && req.Role != existing.Role {
			s.logger.Info("Ignoring role change on re-bootstrap",
				zap.String("uid", uid), zap.String("current", existing.Role), zap.String("requested", req.Role))
		}
		if existing.Email == "" && email != "" {
			existing.Email = email
		}
		addressChanged := applyProfileFields(existing, req.DisplayName, req.OrganizationName, req.City, req.Area)
		if addressChanged {
			s.resolveAddress(ctx, existing)
		}
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		s.maybeAwardProfileCompletion(ctx, existing)
		return DBToShared(existing), false, nil
	}

	u := newUser(uid, email, req)
	s.resolveAddress(ctx, u)
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, common.ErrConflict) {
			// Lost a race with a concurrent bootstrap; the winner's row is authoritative.
			winner, findErr := s.repo.FindByUID(ctx, uid)
			if findErr != nil {
				return nil, false, findErr
			}
			return DBToShared(winner), false, nil
		}
		s.logger.Error("Failed to create user during bootstrap", zap.Error(err), zap.String("uid", uid))
		return nil, false, err
	}
	s.logger.Info("User bootstrapped", zap.String("uid", uid), zap.String("role", u.Role))
	s.maybeAwardProfileCompletion(ctx, u)
	return DBToShared(u), true, nil
}

// CreateWithPassword creates a profile for an account registered through the OTP flow.
func (s *ServiceImplementation) CreateWithPassword(ctx context.Context, uid, email, passwordHash string, req BootstrapRequest) (*shared.User, error) {
	u := newUser(uid, email, req)
	if passwordHash != "" {
		u.PasswordHash = &passwordHash
	}
	s.resolveAddress(ctx, u)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.maybeAwardProfileCompletion(ctx, u)
	return DBToShared(u), nil
}

// PasswordHash returns the stored bcrypt hash for an email login.
func (s *ServiceImplementation) PasswordHash(ctx context.Context, email string) (string, string, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	if u.PasswordHash == nil {
		return u.UID, "", nil
	}
	return u.UID, *u.PasswordHash, nil
}

func (s *ServiceImplementation) UpdateProfile(ctx context.Context, uid string, req UpdateProfileRequest) (*shared.User, error) {
	u, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	addressChanged := applyProfileFields(u, deref(req.DisplayName), deref(req.OrganizationName), deref(req.City), deref(req.Area))
	if addressChanged {
		s.resolveAddress(ctx, u)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.maybeAwardProfileCompletion(ctx, u)
	return DBToShared(u), nil
}

// SetReputation stores the average feedback rating, rounded to two decimals.
func (s *ServiceImplementation) SetReputation(ctx context.Context, uid string, reputation float64) error {
	return s.repo.UpdateReputation(ctx, uid, math.Round(reputation*100)/100)
}

func (s *ServiceImplementation) ListPickupCandidates(ctx context.Context) ([]shared.User, error) {
	users, err := s.repo.FindPickupCandidates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]shared.User, 0, len(users))
	for i := range users {
		out = append(out, *DBToShared(&users[i]))
	}
	return out, nil
}

func newUser(uid, email string, req BootstrapRequest) *User {
	role := req.Role
	if role == "" {
		role = common.RoleStudent
	}
	u := &User{
		UID:   uid,
		Email: email,
		Role:  role,
	}
	applyProfileFields(u, req.DisplayName, req.OrganizationName, req.City, req.Area)
	return u
}

// applyProfileFields copies non-empty values and reports whether the address needs geocoding.
func applyProfileFields(u *User, displayName, organizationName, city, area string) bool {
	if v := strings.TrimSpace(displayName); v != "" {
		u.DisplayName = v
	}
	if v := strings.TrimSpace(organizationName); v != "" {
		u.OrganizationName = v
	}
	changed := false
	if v := strings.TrimSpace(city); v != "" && v != u.City {
		u.City = v
		changed = true
	}
	if v := strings.TrimSpace(area); v != "" && v != u.Area {
		u.Area = v
		changed = true
	}
	return changed || (u.Role == common.RoleNGO && u.Latitude == nil && u.City != "")
}

// resolveAddress geocodes an NGO's address so it can act as a pickup point.
// Geocoding failures are logged and leave the NGO unverified.
func (s *ServiceImplementation) resolveAddress(ctx context.Context, u *User) {
	if u.Role != common.RoleNGO || s.geocoder == nil || u.City == "" {
		return
	}
	queries := []string{u.City}
	if u.Area != "" {
		queries = []string{fmt.Sprintf("%s, %s", u.Area, u.City), u.City}
	}
	for _, q := range queries {
		point, err := s.geocoder.Geocode(ctx, q)
		if err != nil {
			s.logger.Warn("Geocoding NGO address failed", zap.String("uid", u.UID), zap.String("query", q), zap.Error(err))
			return
		}
		if point != nil {
			lat, lon := point.Lat, point.Lon
			u.Latitude, u.Longitude = &lat, &lon
			u.Verified = true
			return
		}
	}
	s.logger.Info("NGO address could not be resolved", zap.String("uid", u.UID), zap.String("city", u.City), zap.String("area", u.Area))
}

func (s *ServiceImplementation) maybeAwardProfileCompletion(ctx context.Context, u *User) {
	if u.ProfileCompleted || !u.hasCompleteProfile() {
		return
	}
	u.ProfileCompleted = true
	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Warn("Failed to flag profile as completed", zap.String("uid", u.UID), zap.Error(err))
		return
	}
	if s.credits == nil {
		return
	}
	awarded, err := s.credits.Award(ctx, u.UID, shared.CreditReasonProfileCompleted, u.UID)
	if err != nil {
		s.logger.Warn("Failed to award profile completion credits", zap.String("uid", u.UID), zap.Error(err))
		return
	}
	if awarded {
		if fresh, err := s.repo.FindByUID(ctx, u.UID); err == nil {
			u.EduCredits = fresh.EduCredits
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
