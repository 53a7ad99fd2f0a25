package user

import (
	"context"

	"educycle_backend/internal/shared"
)

// DBToShared converts a GORM user.User model to a shared.User DTO.
func DBToShared(dbUser *User) *shared.User {
	if dbUser == nil {
		return nil
	}
	return &shared.User{
		UID:              dbUser.UID,
		Email:            dbUser.Email,
		Role:             dbUser.Role,
		DisplayName:      dbUser.DisplayName,
		OrganizationName: dbUser.OrganizationName,
		City:             dbUser.City,
		Area:             dbUser.Area,
		Latitude:         dbUser.Latitude,
		Longitude:        dbUser.Longitude,
		Verified:         dbUser.Verified,
		EduCredits:       dbUser.EduCredits,
		Reputation:       dbUser.Reputation,
		ProfileCompleted: dbUser.ProfileCompleted,
		CreatedAt:        dbUser.CreatedAt,
		UpdatedAt:        dbUser.UpdatedAt,
	}
}

// ToPublicProfile strips private fields.
func ToPublicProfile(u *shared.User) PublicProfile {
	return PublicProfile{
		UID:        u.UID,
		Name:       u.PublicName(),
		Role:       u.Role,
		City:       u.City,
		Area:       u.Area,
		Verified:   u.Verified,
		Reputation: u.Reputation,
	}
}

// Lookup reads profiles straight from the repository. Modules that the user service
// itself depends on (credits) use it to avoid a construction cycle.
type Lookup struct {
	repo Repository
}

func NewLookup(repo Repository) *Lookup {
	return &Lookup{repo: repo}
}

func (l *Lookup) GetUserByUID(ctx context.Context, uid string) (*shared.User, error) {
	u, err := l.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return DBToShared(u), nil
}
