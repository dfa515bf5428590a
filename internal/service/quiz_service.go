package service

import (
	"context"
	"sync"

	"hospital_training_portal/internal/config"
	"hospital_training_portal/internal/model"
	"hospital_training_portal/internal/quiz"
	"hospital_training_portal/internal/util"
	"hospital_training_portal/pkg/logger"

	"go.uber.org/zap"
)

// FeedbackAPI fetches a finished attempt and its stored answers.
type FeedbackAPI interface {
	GetResult(ctx context.Context, resultID string) (*model.Result, error)
	AnswersByResult(ctx context.Context, resultID string) ([]model.UserAnswer, error)
}

// QuizService manages quiz attempts for the session's user, one active
// attempt per training. Passing an attempt also marks the matching user
// training completed.
type QuizService struct {
	api       quiz.QuizAPI
	feedback  FeedbackAPI
	trainings *TrainingService
	cfg       config.QuizConfig

	mu       sync.Mutex
	attempts map[string]*quiz.Runner
}

func NewQuizService(api quiz.QuizAPI, feedback FeedbackAPI, trainings *TrainingService, cfg config.QuizConfig) *QuizService {
	return &QuizService{
		api:       api,
		feedback:  feedback,
		trainings: trainings,
		cfg:       cfg,
		attempts:  make(map[string]*quiz.Runner),
	}
}

// StartAttempt loads the training's questionnaire into a fresh runner.
// Starting again discards any unsubmitted answers for that training.
// Pending and expired assignments move to In Progress; that update is
// best-effort and never blocks the attempt.
func (s *QuizService) StartAttempt(ctx context.Context, userID, trainingID string) (*quiz.Runner, error) {
	runner := quiz.NewRunner(s.api, s.cfg)
	if err := runner.LoadQuestionnaire(ctx, trainingID); err != nil {
		return nil, err
	}

	if err := s.trainings.MarkInProgress(ctx, userID, trainingID); err != nil {
		logger.Log.Warn("could not mark training in progress",
			zap.String("training_id", trainingID),
			zap.Error(err))
	}

	s.mu.Lock()
	s.attempts[trainingID] = runner
	s.mu.Unlock()
	return runner, nil
}

func (s *QuizService) Attempt(trainingID string) (*quiz.Runner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runner, ok := s.attempts[trainingID]
	if !ok {
		return nil, util.NewValidationError("training_id", "no attempt in progress")
	}
	return runner, nil
}

func (s *QuizService) RecordAnswer(trainingID string, index int, optionIDs []string) error {
	runner, err := s.Attempt(trainingID)
	if err != nil {
		return err
	}
	return runner.RecordAnswer(index, optionIDs)
}

// SubmitOutcome is what the result screen renders: the scored result
// and, on a pass, the per-question feedback.
type SubmitOutcome struct {
	Result   *model.Result      `json:"result"`
	Passed   bool               `json:"passed"`
	Feedback []model.UserAnswer `json:"feedback,omitempty"`
}

// Submit finishes the attempt. On an approved result the user training
// is marked completed and the answer feedback is attached; failures of
// those follow-ups degrade the response, not the result itself.
func (s *QuizService) Submit(ctx context.Context, userID, trainingID string) (*SubmitOutcome, error) {
	runner, err := s.Attempt(trainingID)
	if err != nil {
		return nil, err
	}

	result, err := runner.Submit(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.attempts, trainingID)
	s.mu.Unlock()

	outcome := &SubmitOutcome{Result: result, Passed: result.Passed()}
	if !outcome.Passed {
		return outcome, nil
	}

	if _, err := s.trainings.MarkCompleted(ctx, userID, trainingID); err != nil {
		logger.Log.Warn("could not mark training completed after approved result",
			zap.String("training_id", trainingID),
			zap.Error(err))
	}
	answers, err := s.feedback.AnswersByResult(ctx, result.ID)
	if err != nil {
		logger.Log.Warn("could not load answer feedback",
			zap.String("result_id", result.ID),
			zap.Error(err))
		return outcome, nil
	}
	outcome.Feedback = answers
	return outcome, nil
}

// ResultHistory returns a past result with its answer feedback for the
// completion-history view.
func (s *QuizService) ResultHistory(ctx context.Context, resultID string) (*SubmitOutcome, error) {
	result, err := s.feedback.GetResult(ctx, resultID)
	if err != nil {
		return nil, err
	}
	outcome := &SubmitOutcome{Result: result, Passed: result.Passed()}

	answers, err := s.feedback.AnswersByResult(ctx, resultID)
	if err != nil {
		logger.Log.Warn("could not load answer feedback",
			zap.String("result_id", resultID),
			zap.Error(err))
		return outcome, nil
	}
	outcome.Feedback = answers
	return outcome, nil
}

// DiscardAttempts drops all in-memory attempts, e.g. on logout.
func (s *QuizService) DiscardAttempts() {
	s.mu.Lock()
	s.attempts = make(map[string]*quiz.Runner)
	s.mu.Unlock()
}
