package upstream

import (
	"context"
	"net/url"

	"hospital_training_portal/internal/model"
)

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.getJSON(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(userID), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUserPayload uses pointers for the optional references so "not
// provided" and "explicitly null" both stay out of the request body.
type CreateUserPayload struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Cedula    string  `json:"cedula"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	RoleID    *string `json:"role_id,omitempty"`
	AreaID    *string `json:"area_id,omitempty"`
}

func (c *Client) CreateUser(ctx context.Context, payload CreateUserPayload) (*model.User, error) {
	var user model.User
	if err := c.postJSON(ctx, "/users", payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type UpdateUserPayload struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Cedula    *string `json:"cedula,omitempty"`
	Email     *string `json:"email,omitempty"`
	RoleID    *string `json:"role_id,omitempty"`
	AreaID    *string `json:"area_id,omitempty"`
}

func (c *Client) UpdateUser(ctx context.Context, userID string, payload UpdateUserPayload) (*model.User, error) {
	var user model.User
	if err := c.putJSON(ctx, "/users/"+url.PathEscape(userID), payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.delete(ctx, "/users/"+url.PathEscape(userID))
}

// ChangePassword hits the password endpoint, which takes both passwords
// as query parameters rather than a body. That is the upstream contract.
func (c *Client) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	params := url.Values{}
	params.Set("new_password", newPassword)
	params.Set("last_password", currentPassword)

	path := "/users/" + url.PathEscape(userID) + "/password?" + params.Encode()
	return c.putJSON(ctx, path, nil, nil)
}

func (c *Client) ListAreas(ctx context.Context) ([]model.Area, error) {
	var areas []model.Area
	if err := c.getJSON(ctx, "/areas", &areas); err != nil {
		return nil, err
	}
	return areas, nil
}

func (c *Client) ListRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := c.getJSON(ctx, "/roles", &roles); err != nil {
		return nil, err
	}
	return roles, nil
}
