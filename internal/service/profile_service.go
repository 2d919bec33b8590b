package service

import (
	"context"

	"roomdesk/internal/domain"
	"roomdesk/internal/models"

	"github.com/rs/zerolog"
)

// ProfileService maintains the local identity projection. It does not
// authenticate anyone; the identity provider lives upstream and this
// core only resolves an id into an Actor with a role.
type ProfileService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewProfileService(store domain.Store, logger *zerolog.Logger) *ProfileService {
	return &ProfileService{store: store, logger: logger}
}

func (s *ProfileService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	return s.store.GetProfile(ctx, id)
}

func (s *ProfileService) ResolveActor(ctx context.Context, userID string) (models.Actor, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return models.Actor{}, err
	}
	return profile.Actor(), nil
}

func (s *ProfileService) SaveProfile(ctx context.Context, profile *models.Profile) error {
	if profile.Role == "" {
		profile.Role = models.RoleUser
	}
	return s.store.UpsertProfile(ctx, profile)
}

// PromoteAdmins grants the admin role to config-listed emails. Emails
// without a profile yet are skipped silently; they get the role on
// their next sync once the projection knows them.
func (s *ProfileService) PromoteAdmins(ctx context.Context, emails []string) error {
	for _, email := range emails {
		if email == "" {
			continue
		}
		if err := s.store.SetRoleByEmail(ctx, email, models.RoleAdmin); err != nil {
			return err
		}
		s.logger.Info().Str("email", email).Msg("admin role granted")
	}
	return nil
}
