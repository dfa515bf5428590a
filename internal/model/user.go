package model

import (
	"strings"

	"hospital_training_portal/internal/util"
)

type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Area is the organizational unit trainings are assigned to.
type Area struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Cedula       string `json:"cedula"`
	Email        string `json:"email"`
	RegisteredAt string `json:"registered_at"`
	Role         Role   `json:"role"`
	Area         *Area  `json:"area"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdmin reports whether the user's role lands on the admin home.
// Any other role (including an empty one) is a regular employee.
func (u *User) IsAdmin() bool {
	switch strings.ToLower(u.Role.Name) {
	case "administrador_area", "superusuario", "admin":
		return true
	}
	return false
}

// HomePath is the post-login redirect target for the user's role.
func (u *User) HomePath() string {
	if u.IsAdmin() {
		return "/admin"
	}
	return "/user"
}

// Validate checks the upstream payload against the schema the gateway
// relies on. A violation is a contract error, not a transport error.
func (u *User) Validate() error {
	if u.ID == "" {
		return util.NewValidationError("user.id", "missing in upstream payload")
	}
	if u.Email == "" {
		return util.NewValidationError("user.email", "missing in upstream payload")
	}
	return nil
}

// UserInfo is the reduced author shape embedded in trainings and answers.
type UserInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
