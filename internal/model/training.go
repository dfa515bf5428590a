package model

import (
	"strings"
	"time"

	"hospital_training_portal/internal/util"
)

type Training struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	VideoURL        string    `json:"url_video"`
	ImageURL        string    `json:"url_image"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	Author          UserInfo  `json:"user"`
}

func (t *Training) Validate() error {
	if t.ID == "" {
		return util.NewValidationError("training.id", "missing in upstream payload")
	}
	if t.Title == "" {
		return util.NewValidationError("training.title", "missing in upstream payload")
	}
	return nil
}

// Status is an upstream-defined assignment state. Comparisons go through
// the helpers below because the upstream is not consistent about casing.
type Status struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

const (
	StatusPending    = "pending"
	StatusInProgress = "in progress"
	StatusCompleted  = "completed"
	StatusExpired    = "expired"
)

func (s Status) Is(name string) bool {
	return strings.ToLower(s.Name) == name
}

// Assignment links one training to one area.
type Assignment struct {
	ID             string     `json:"id"`
	AssignmentDate time.Time  `json:"assignment_date"`
	CompletedDate  *time.Time `json:"completed_date"`
	Area           Area       `json:"area"`
	Training       Training   `json:"trainings"`
	Status         Status     `json:"status"`
}

// UserTraining is the per-user instance of an Assignment, carrying the
// individual employee's progress.
type UserTraining struct {
	ID         string     `json:"id"`
	StartDate  *string    `json:"start_date"`
	EndDate    *string    `json:"end_date"`
	Progress   float64    `json:"progress"`
	User       User       `json:"user"`
	Area       Area       `json:"area"`
	Assignment Assignment `json:"assignments"`
	Training   Training   `json:"trainings"`
	Status     Status     `json:"status"`
}

func (ut *UserTraining) Validate() error {
	if ut.ID == "" {
		return util.NewValidationError("user_training.id", "missing in upstream payload")
	}
	if ut.Training.ID == "" {
		return util.NewValidationError("user_training.trainings", "missing training reference")
	}
	return nil
}
