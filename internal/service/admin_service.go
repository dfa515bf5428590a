package service

import (
	"context"
	"fmt"
	"strings"

	"hospital_training_portal/internal/model"
	"hospital_training_portal/internal/upstream"
	"hospital_training_portal/internal/util"
	"hospital_training_portal/pkg/logger"

	"go.uber.org/zap"
)

// AdminAPI is the slice of the upstream client the administration
// screens use: people management, training authoring, assignments and
// the questionnaire builder.
type AdminAPI interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	CreateUser(ctx context.Context, payload upstream.CreateUserPayload) (*model.User, error)
	UpdateUser(ctx context.Context, id string, payload upstream.UpdateUserPayload) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListAreas(ctx context.Context) ([]model.Area, error)
	ListRoles(ctx context.Context) ([]model.Role, error)

	CreateTraining(ctx context.Context, upload upstream.TrainingUpload) (*model.Training, error)
	UpdateTraining(ctx context.Context, id string, upload upstream.TrainingUpload) (*model.Training, error)
	DeleteTraining(ctx context.Context, id string) error
	ListAssignments(ctx context.Context) ([]model.Assignment, error)
	AssignmentsByArea(ctx context.Context, areaID string) ([]model.Assignment, error)
	AssignTrainingToArea(ctx context.Context, trainingID, areaID string) (*model.Assignment, error)

	QuestionTypes(ctx context.Context) ([]model.QuestionType, error)
	CreateQuestionnaire(ctx context.Context, trainingID string) (*model.Questionnaire, error)
	CreateQuestion(ctx context.Context, questionnaireID, text, typeID string) (*model.Question, error)
	CreateOption(ctx context.Context, questionID, text string, isCorrect bool) (*model.Option, error)
}

type AdminService struct {
	api AdminAPI
}

func NewAdminService(api AdminAPI) *AdminService {
	return &AdminService{api: api}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.api.ListUsers(ctx)
}

func (s *AdminService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.api.GetUser(ctx, id)
}

// CreateUser validates locally before touching the network so obvious
// mistakes fail fast with a field-level message.
func (s *AdminService) CreateUser(ctx context.Context, payload upstream.CreateUserPayload) (*model.User, error) {
	if strings.TrimSpace(payload.FirstName) == "" {
		return nil, util.NewValidationError("first_name", "is required")
	}
	if strings.TrimSpace(payload.LastName) == "" {
		return nil, util.NewValidationError("last_name", "is required")
	}
	if strings.TrimSpace(payload.Cedula) == "" {
		return nil, util.NewValidationError("cedula", "is required")
	}
	if !strings.Contains(payload.Email, "@") {
		return nil, util.NewValidationError("email", "is not a valid address")
	}
	if len(payload.Password) < 8 {
		return nil, util.NewValidationError("password", "must be at least 8 characters")
	}

	user, err := s.api.CreateUser(ctx, payload)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email))
	return user, nil
}

func (s *AdminService) UpdateUser(ctx context.Context, id string, payload upstream.UpdateUserPayload) (*model.User, error) {
	if payload.Email != nil && !strings.Contains(*payload.Email, "@") {
		return nil, util.NewValidationError("email", "is not a valid address")
	}
	return s.api.UpdateUser(ctx, id, payload)
}

func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	if err := s.api.DeleteUser(ctx, id); err != nil {
		return err
	}
	logger.Log.Info("user deleted", zap.String("user_id", id))
	return nil
}

func (s *AdminService) ListAreas(ctx context.Context) ([]model.Area, error) {
	return s.api.ListAreas(ctx)
}

func (s *AdminService) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.api.ListRoles(ctx)
}

func (s *AdminService) CreateTraining(ctx context.Context, upload upstream.TrainingUpload) (*model.Training, error) {
	if upload.Title == nil || strings.TrimSpace(*upload.Title) == "" {
		return nil, util.NewValidationError("title", "is required")
	}
	training, err := s.api.CreateTraining(ctx, upload)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("training created",
		zap.String("training_id", training.ID),
		zap.String("title", training.Title))
	return training, nil
}

func (s *AdminService) UpdateTraining(ctx context.Context, id string, upload upstream.TrainingUpload) (*model.Training, error) {
	return s.api.UpdateTraining(ctx, id, upload)
}

func (s *AdminService) DeleteTraining(ctx context.Context, id string) error {
	return s.api.DeleteTraining(ctx, id)
}

func (s *AdminService) ListAssignments(ctx context.Context) ([]model.Assignment, error) {
	return s.api.ListAssignments(ctx)
}

func (s *AdminService) AssignmentsByArea(ctx context.Context, areaID string) ([]model.Assignment, error) {
	return s.api.AssignmentsByArea(ctx, areaID)
}

func (s *AdminService) AssignTraining(ctx context.Context, trainingID, areaID string) (*model.Assignment, error) {
	if trainingID == "" {
		return nil, util.NewValidationError("training_id", "is required")
	}
	if areaID == "" {
		return nil, util.NewValidationError("id_area", "is required")
	}
	return s.api.AssignTrainingToArea(ctx, trainingID, areaID)
}

func (s *AdminService) QuestionTypes(ctx context.Context) ([]model.QuestionType, error) {
	return s.api.QuestionTypes(ctx)
}

// QuestionDraft is one question of a questionnaire draft, with its
// options inline.
type QuestionDraft struct {
	Text    string        `json:"question_text"`
	TypeID  string        `json:"question_type_id"`
	Options []OptionDraft `json:"options"`
}

type OptionDraft struct {
	Text      string `json:"option_text"`
	IsCorrect bool   `json:"is_correct"`
}

// BuiltQuestionnaire reports what the builder managed to create.
type BuiltQuestionnaire struct {
	Questionnaire *model.Questionnaire `json:"questionnaire"`
	Questions     []model.Question     `json:"questions"`
}

// BuildQuestionnaire creates a questionnaire for the training and then
// its questions and options, in order. The upstream has no batch
// endpoint, so a mid-sequence failure leaves the part already created in
// place; the error tells the admin where it stopped so they can resume
// in the builder.
func (s *AdminService) BuildQuestionnaire(ctx context.Context, trainingID string, drafts []QuestionDraft) (*BuiltQuestionnaire, error) {
	if trainingID == "" {
		return nil, util.NewValidationError("training_id", "is required")
	}
	if len(drafts) == 0 {
		return nil, util.NewValidationError("questions", "at least one question is required")
	}
	for i, d := range drafts {
		if strings.TrimSpace(d.Text) == "" {
			return nil, util.NewValidationError("questions", fmt.Sprintf("question %d has no text", i+1))
		}
		if d.TypeID == "" {
			return nil, util.NewValidationError("questions", fmt.Sprintf("question %d has no type", i+1))
		}
		if len(d.Options) < 2 {
			return nil, util.NewValidationError("questions", fmt.Sprintf("question %d needs at least two options", i+1))
		}
		correct := 0
		for _, o := range d.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct == 0 {
			return nil, util.NewValidationError("questions", fmt.Sprintf("question %d needs a correct option", i+1))
		}
	}

	questionnaire, err := s.api.CreateQuestionnaire(ctx, trainingID)
	if err != nil {
		return nil, err
	}

	built := &BuiltQuestionnaire{Questionnaire: questionnaire}
	for _, d := range drafts {
		question, err := s.api.CreateQuestion(ctx, questionnaire.ID, d.Text, d.TypeID)
		if err != nil {
			return built, err
		}
		for _, o := range d.Options {
			if _, err := s.api.CreateOption(ctx, question.ID, o.Text, o.IsCorrect); err != nil {
				return built, err
			}
		}
		built.Questions = append(built.Questions, *question)
	}

	logger.Log.Info("questionnaire built",
		zap.String("training_id", trainingID),
		zap.String("questionnaire_id", questionnaire.ID),
		zap.Int("questions", len(built.Questions)))
	return built, nil
}
