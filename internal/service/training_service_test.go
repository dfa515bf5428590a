package service

import (
	"context"
	"testing"

	"hospital_training_portal/internal/model"
)

type fakeTrainingAPI struct {
	trainings     []model.Training
	userTrainings []model.UserTraining
	statusUpdates []string // user training ids that got a status write
}

func (f *fakeTrainingAPI) ListTrainings(ctx context.Context) ([]model.Training, error) {
	return f.trainings, nil
}

func (f *fakeTrainingAPI) GetTraining(ctx context.Context, id string) (*model.Training, error) {
	for i := range f.trainings {
		if f.trainings[i].ID == id {
			return &f.trainings[i], nil
		}
	}
	return nil, nil
}

func (f *fakeTrainingAPI) UserTrainings(ctx context.Context, userID string) ([]model.UserTraining, error) {
	return f.userTrainings, nil
}

func (f *fakeTrainingAPI) UpdateUserTrainingStatus(ctx context.Context, userTrainingID, status string) (*model.UserTraining, error) {
	f.statusUpdates = append(f.statusUpdates, userTrainingID)
	for i := range f.userTrainings {
		if f.userTrainings[i].ID == userTrainingID {
			f.userTrainings[i].Status = model.Status{Name: status}
			return &f.userTrainings[i], nil
		}
	}
	return nil, nil
}

func userTraining(id, trainingID, status string) model.UserTraining {
	return model.UserTraining{
		ID:       id,
		Training: model.Training{ID: trainingID, Title: "t"},
		Status:   model.Status{Name: status},
	}
}

func TestProgressForBucketsStatuses(t *testing.T) {
	api := &fakeTrainingAPI{userTrainings: []model.UserTraining{
		userTraining("ut-1", "tr-1", "Completed"),
		userTraining("ut-2", "tr-2", "completed"),
		userTraining("ut-3", "tr-3", "In Progress"),
		userTraining("ut-4", "tr-4", "Pending"),
		userTraining("ut-5", "tr-5", "Expired"),
	}}
	s := NewTrainingService(api)

	stats, err := s.ProgressFor(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ProgressFor: %v", err)
	}

	if stats.Total != 5 || stats.Completed != 2 || stats.Expired != 1 || stats.InProgress != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.CompliancePC != 40 {
		t.Errorf("compliance = %v, want 40", stats.CompliancePC)
	}
}

func TestProgressForNoAssignmentsIsZeroCompliance(t *testing.T) {
	s := NewTrainingService(&fakeTrainingAPI{})

	stats, err := s.ProgressFor(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ProgressFor: %v", err)
	}
	if stats.Total != 0 || stats.CompliancePC != 0 {
		t.Errorf("stats = %+v, want zeros", stats)
	}
}

func TestMarkCompletedWritesOnce(t *testing.T) {
	api := &fakeTrainingAPI{userTrainings: []model.UserTraining{
		userTraining("ut-1", "tr-1", "In Progress"),
	}}
	s := NewTrainingService(api)

	ut, err := s.MarkCompleted(context.Background(), "u-1", "tr-1")
	if err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if !ut.Status.Is(model.StatusCompleted) {
		t.Errorf("status = %q, want completed", ut.Status.Name)
	}
	if len(api.statusUpdates) != 1 {
		t.Fatalf("status writes = %d, want 1", len(api.statusUpdates))
	}

	// repeating the call must not produce another write
	if _, err := s.MarkCompleted(context.Background(), "u-1", "tr-1"); err != nil {
		t.Fatalf("second MarkCompleted: %v", err)
	}
	if len(api.statusUpdates) != 1 {
		t.Errorf("status writes = %d after repeat, want still 1", len(api.statusUpdates))
	}
}

func TestMarkInProgressTransitions(t *testing.T) {
	cases := []struct {
		status    string
		wantWrite bool
	}{
		{"Pending", true},
		{"Expired", true},
		{"In Progress", false},
		{"Completed", false},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			api := &fakeTrainingAPI{userTrainings: []model.UserTraining{
				userTraining("ut-1", "tr-1", tc.status),
			}}
			s := NewTrainingService(api)

			if err := s.MarkInProgress(context.Background(), "u-1", "tr-1"); err != nil {
				t.Fatalf("MarkInProgress: %v", err)
			}
			wrote := len(api.statusUpdates) == 1
			if wrote != tc.wantWrite {
				t.Errorf("status %q: wrote=%v, want %v", tc.status, wrote, tc.wantWrite)
			}
		})
	}
}

func TestMarkCompletedUnknownTraining(t *testing.T) {
	s := NewTrainingService(&fakeTrainingAPI{})
	if _, err := s.MarkCompleted(context.Background(), "u-1", "tr-404"); err == nil {
		t.Error("expected error for a training the user does not have")
	}
}
