package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"hospital_training_portal/internal/model"
	"hospital_training_portal/internal/util"
)

func (c *Client) ListAssignments(ctx context.Context) ([]model.Assignment, error) {
	var assignments []model.Assignment
	if err := c.getJSON(ctx, "/assignments", &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (c *Client) AssignmentsByArea(ctx context.Context, areaID string) ([]model.Assignment, error) {
	var assignments []model.Assignment
	if err := c.getJSON(ctx, "/assignments/"+url.PathEscape(areaID), &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

type assignRequest struct {
	TrainingID string `json:"training_id"`
	AreaID     string `json:"id_area"`
}

// AssignTrainingToArea creates the assignment that makes every employee
// of the area owe the training.
func (c *Client) AssignTrainingToArea(ctx context.Context, trainingID, areaID string) (*model.Assignment, error) {
	var assignment model.Assignment
	err := c.postJSON(ctx, "/assignments", assignRequest{TrainingID: trainingID, AreaID: areaID}, &assignment)
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// UserTrainings lists the per-user training instances. The upstream
// answers 404 for users with nothing assigned; that is an empty list
// here, not an error.
func (c *Client) UserTrainings(ctx context.Context, userID string) ([]model.UserTraining, error) {
	var items []model.UserTraining
	err := c.getJSON(ctx, "/user_trainings?id_user="+url.QueryEscape(userID), &items)
	if err != nil {
		var rErr *util.RequestError
		if errors.As(err, &rErr) && rErr.Status == http.StatusNotFound {
			return []model.UserTraining{}, nil
		}
		return nil, err
	}
	return items, nil
}

type statusUpdate struct {
	Status string `json:"status"`
}

// UpdateUserTrainingStatus moves one user training to a new status,
// e.g. "Completed" after an approved result.
func (c *Client) UpdateUserTrainingStatus(ctx context.Context, userTrainingID, status string) (*model.UserTraining, error) {
	var item model.UserTraining
	err := c.putJSON(ctx, "/user_trainings/"+url.PathEscape(userTrainingID), statusUpdate{Status: status}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
