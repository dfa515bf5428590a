package service

import (
	"context"

	"hospital_training_portal/internal/model"
	"hospital_training_portal/internal/upstream"
	"hospital_training_portal/internal/util"
)

// ProfileAPI is the slice of the upstream client the profile screen uses.
type ProfileAPI interface {
	UpdateUser(ctx context.Context, id string, payload upstream.UpdateUserPayload) (*model.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type ProfileService struct {
	api ProfileAPI
}

func NewProfileService(api ProfileAPI) *ProfileService {
	return &ProfileService{api: api}
}

// UpdateProfile lets the user edit their own name fields. Role and area
// are administrative and never pass through here.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, firstName, lastName *string) (*model.User, error) {
	if firstName == nil && lastName == nil {
		return nil, util.NewValidationError("profile", "no changes provided")
	}
	if firstName != nil && *firstName == "" {
		return nil, util.NewValidationError("first_name", "cannot be empty")
	}
	if lastName != nil && *lastName == "" {
		return nil, util.NewValidationError("last_name", "cannot be empty")
	}
	return s.api.UpdateUser(ctx, userID, upstream.UpdateUserPayload{
		FirstName: firstName,
		LastName:  lastName,
	})
}

func (s *ProfileService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" {
		return util.NewValidationError("last_password", "is required")
	}
	if len(newPassword) < 8 {
		return util.NewValidationError("new_password", "must be at least 8 characters")
	}
	if newPassword == currentPassword {
		return util.NewValidationError("new_password", "must differ from the current password")
	}
	return s.api.ChangePassword(ctx, userID, currentPassword, newPassword)
}
