package service

import (
	"context"
	"math"

	"hospital_training_portal/internal/model"
	"hospital_training_portal/internal/util"
	"hospital_training_portal/pkg/logger"

	"go.uber.org/zap"
)

// TrainingAPI is the slice of the upstream client the training views use.
type TrainingAPI interface {
	ListTrainings(ctx context.Context) ([]model.Training, error)
	GetTraining(ctx context.Context, id string) (*model.Training, error)
	UserTrainings(ctx context.Context, userID string) ([]model.UserTraining, error)
	UpdateUserTrainingStatus(ctx context.Context, userTrainingID, status string) (*model.UserTraining, error)
}

type TrainingService struct {
	api TrainingAPI
}

func NewTrainingService(api TrainingAPI) *TrainingService {
	return &TrainingService{api: api}
}

func (s *TrainingService) ListTrainings(ctx context.Context) ([]model.Training, error) {
	return s.api.ListTrainings(ctx)
}

func (s *TrainingService) GetTraining(ctx context.Context, id string) (*model.Training, error) {
	return s.api.GetTraining(ctx, id)
}

// UserTrainings lists the employee's assigned trainings. A user with no
// assignments gets an empty list.
func (s *TrainingService) UserTrainings(ctx context.Context, userID string) ([]model.UserTraining, error) {
	return s.api.UserTrainings(ctx, userID)
}

// ProgressStats is the dashboard summary of one employee's assignments.
type ProgressStats struct {
	Total        int     `json:"total"`
	Completed    int     `json:"completed"`
	InProgress   int     `json:"in_progress"`
	Expired      int     `json:"expired"`
	CompliancePC float64 `json:"compliance_percent"`
}

// ProgressFor buckets the user's assignments by status and computes the
// compliance percentage. Pending counts as in progress for the summary,
// since both mean "still owed". Zero assignments is 0% compliance, not a
// division error.
func (s *TrainingService) ProgressFor(ctx context.Context, userID string) (*ProgressStats, error) {
	items, err := s.api.UserTrainings(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &ProgressStats{Total: len(items)}
	for _, it := range items {
		switch {
		case it.Status.Is(model.StatusCompleted):
			stats.Completed++
		case it.Status.Is(model.StatusExpired):
			stats.Expired++
		default:
			stats.InProgress++
		}
	}
	if stats.Total > 0 {
		pct := float64(stats.Completed) / float64(stats.Total) * 100
		stats.CompliancePC = math.Round(pct*100) / 100
	}
	return stats, nil
}

// MarkInProgress records that the user started working on the training.
// Only pending and expired items transition; completed and already
// started ones are left alone.
func (s *TrainingService) MarkInProgress(ctx context.Context, userID, trainingID string) error {
	items, err := s.api.UserTrainings(ctx, userID)
	if err != nil {
		return err
	}

	for i := range items {
		it := &items[i]
		if it.Training.ID != trainingID {
			continue
		}
		if !it.Status.Is(model.StatusPending) && !it.Status.Is(model.StatusExpired) {
			return nil
		}
		_, err := s.api.UpdateUserTrainingStatus(ctx, it.ID, "In Progress")
		return err
	}
	return nil
}

// MarkCompleted moves a user training to Completed after an approved
// quiz result. Already-completed items are left untouched so repeated
// calls never generate redundant writes.
func (s *TrainingService) MarkCompleted(ctx context.Context, userID, trainingID string) (*model.UserTraining, error) {
	items, err := s.api.UserTrainings(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		it := &items[i]
		if it.Training.ID != trainingID {
			continue
		}
		if it.Status.Is(model.StatusCompleted) {
			logger.Log.Debug("user training already completed, skipping update",
				zap.String("user_training_id", it.ID))
			return it, nil
		}
		return s.api.UpdateUserTrainingStatus(ctx, it.ID, "Completed")
	}

	logger.Log.Warn("no user training found to mark completed",
		zap.String("user_id", userID),
		zap.String("training_id", trainingID))
	return nil, util.NewValidationError("training_id", "not assigned to the user")
}
