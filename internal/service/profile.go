package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"busline/internal/auth"
	apperrors "busline/internal/errors"
	"busline/internal/logger"
	"busline/internal/models"
)

type ProfileReader interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

type RoleReader interface {
	ListActiveByUserID(ctx context.Context, userID string) ([]models.UserRole, error)
}

// ProfileLoader merges the profile row and active roles of a principal.
type ProfileLoader struct {
	profiles ProfileReader
	roles    RoleReader
}

func NewProfileLoader(profiles ProfileReader, roles RoleReader) *ProfileLoader {
	return &ProfileLoader{profiles: profiles, roles: roles}
}

// Load fails when the profile cannot be read; a failed roles read yields
// an identity without roles.
func (l *ProfileLoader) Load(ctx context.Context, user *auth.User) (*models.Identity, error) {
	var (
		profile *models.Profile
		roles   []models.UserRole
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := l.profiles.GetByID(gctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		if p == nil {
			return fmt.Errorf("profile %s: %w", user.ID, apperrors.ErrNotFound)
		}
		profile = p
		return nil
	})

	g.Go(func() error {
		r, err := l.roles.ListActiveByUserID(gctx, user.ID)
		if err != nil {
			logger.WithContext(ctx).Warn("Failed to load user roles, continuing without roles",
				"error", err, "user_id", user.ID)
			return nil
		}
		roles = r
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	identity := &models.Identity{
		ID:    user.ID,
		Email: user.Email,
		Profile: models.IdentityProfile{
			FullName: profile.FullName,
		},
		Roles: make([]models.IdentityRole, 0, len(roles)),
	}
	if profile.Phone != nil {
		identity.Profile.Phone = *profile.Phone
	}
	for _, r := range roles {
		identity.Roles = append(identity.Roles, models.IdentityRole{Role: r.Role, RoleLevel: r.RoleLevel})
	}

	return identity, nil
}

// MinimalIdentity is substituted when the profile cannot be loaded.
func MinimalIdentity(user *auth.User) *models.Identity {
	return &models.Identity{
		ID:    user.ID,
		Email: user.Email,
		Roles: []models.IdentityRole{},
	}
}
