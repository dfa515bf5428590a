// Package quiz drives a single quiz attempt: load the questionnaire,
// collect answers in memory, then replay them to the upstream in
// question order.
package quiz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hospital_training_portal/internal/config"
	"hospital_training_portal/internal/model"
	"hospital_training_portal/internal/upstream"
	"hospital_training_portal/internal/util"
	"hospital_training_portal/pkg/logger"

	"go.uber.org/zap"
)

// QuizAPI is the slice of the upstream client the runner needs.
type QuizAPI interface {
	QuestionsByTraining(ctx context.Context, trainingID string) ([]model.Question, error)
	OptionsByQuestion(ctx context.Context, questionID string) ([]model.Option, error)
	UpsertUserAnswer(ctx context.Context, upsert upstream.AnswerUpsert) error
	CreateResult(ctx context.Context, questionnaireID string) (*model.Result, error)
}

// LoadedQuestion pairs an upstream question with its options and the
// normalized kind the answer shape depends on.
type LoadedQuestion struct {
	Question model.Question
	Kind     model.QuestionKind
	Options  []model.Option
}

// Runner holds one attempt's state. Answers are indexed by question
// position and recording one overwrites any previous selection for
// that question.
type Runner struct {
	api   QuizAPI
	delay time.Duration
	sleep func(time.Duration)

	mu              sync.Mutex
	questionnaireID string
	questions       []LoadedQuestion
	answers         [][]string
	submitted       bool
}

func NewRunner(api QuizAPI, cfg config.QuizConfig) *Runner {
	delay := cfg.SubmitDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &Runner{api: api, delay: delay, sleep: time.Sleep}
}

// LoadQuestionnaire fetches the training's questions and, per question,
// its options. A training without questions has no questionnaire and
// loading it is ErrNoQuestionnaire, which callers render as "nothing to
// take", not as a failure.
func (r *Runner) LoadQuestionnaire(ctx context.Context, trainingID string) error {
	if trainingID == "" {
		return util.NewValidationError("training_id", "is required")
	}

	questions, err := r.api.QuestionsByTraining(ctx, trainingID)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return util.ErrNoQuestionnaire
	}

	loaded := make([]LoadedQuestion, 0, len(questions))
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
		options, err := r.api.OptionsByQuestion(ctx, q.ID)
		if err != nil {
			return err
		}
		loaded = append(loaded, LoadedQuestion{
			Question: q,
			Kind:     model.NormalizeQuestionType(q.Type.Name),
			Options:  options,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Every question of a questionnaire carries the same parent id.
	r.questionnaireID = loaded[0].Question.Questionnaire.ID
	r.questions = loaded
	r.answers = make([][]string, len(loaded))
	r.submitted = false

	logger.Log.Debug("questionnaire loaded",
		zap.String("training_id", trainingID),
		zap.String("questionnaire_id", r.questionnaireID),
		zap.Int("questions", len(loaded)))
	return nil
}

func (r *Runner) QuestionnaireID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.questionnaireID
}

func (r *Runner) Questions() []LoadedQuestion {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LoadedQuestion, len(r.questions))
	copy(out, r.questions)
	return out
}

// RecordAnswer stores the selection for one question. Single and
// boolean questions take exactly one option id; multiple-response
// questions take a non-empty set. Recording replaces, never appends.
func (r *Runner) RecordAnswer(index int, optionIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.questions) {
		return util.NewValidationError("question index", "out of range")
	}
	if len(optionIDs) == 0 {
		return util.NewValidationError("option_ids", "at least one option is required")
	}

	q := r.questions[index]
	if !q.Kind.IsSet() && len(optionIDs) > 1 {
		return util.NewValidationError("option_ids", "question takes a single option")
	}
	valid := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		valid[opt.ID] = true
	}
	for _, id := range optionIDs {
		if !valid[id] {
			return util.NewValidationError("option_ids", "option does not belong to the question")
		}
	}

	r.answers[index] = append([]string(nil), optionIDs...)
	return nil
}

// IsComplete reports whether every question has at least one recorded
// answer. Submission is refused until it does.
func (r *Runner) IsComplete() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.questions) == 0 {
		return false
	}
	for _, a := range r.answers {
		if len(a) == 0 {
			return false
		}
	}
	return true
}

// UnanswerableIndexes lists questions that have no options at all. Such
// questions can never be answered and the attempt cannot be completed;
// callers surface them before the user wastes an attempt.
func (r *Runner) UnanswerableIndexes() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int
	for i, q := range r.questions {
		if len(q.Options) == 0 {
			out = append(out, i)
		}
	}
	return out
}

// Submit replays the recorded answers one question at a time in order,
// pausing between saves, then finalizes the attempt. A failed save
// aborts the sequence immediately: questions before the failure are
// saved upstream, questions after it were never attempted, and the
// returned PartialSubmissionError names the failing index. Because the
// saves are PUT upserts, retrying the whole submission is safe.
func (r *Runner) Submit(ctx context.Context) (*model.Result, error) {
	r.mu.Lock()
	if r.submitted {
		r.mu.Unlock()
		return nil, util.NewValidationError("attempt", "already submitted")
	}
	if len(r.questions) == 0 {
		r.mu.Unlock()
		return nil, util.ErrNoQuestionnaire
	}
	for i, a := range r.answers {
		if len(a) == 0 {
			r.mu.Unlock()
			return nil, util.NewValidationError("answers", fmt.Sprintf("question %d is unanswered", i+1))
		}
	}
	questionnaireID := r.questionnaireID
	upserts := make([]upstream.AnswerUpsert, len(r.questions))
	for i, q := range r.questions {
		upserts[i] = upstream.AnswerUpsert{QuestionID: q.Question.ID}
		if q.Kind.IsSet() {
			upserts[i].OptionIDs = r.answers[i]
		} else {
			upserts[i].OptionID = r.answers[i][0]
		}
	}
	r.mu.Unlock()

	for i, upsert := range upserts {
		if err := r.api.UpsertUserAnswer(ctx, upsert); err != nil {
			logger.Log.Warn("answer save failed, aborting submission",
				zap.Int("question_index", i),
				zap.Error(err))
			return nil, &util.PartialSubmissionError{Index: i, Err: err}
		}
		if i < len(upserts)-1 {
			r.sleep(r.delay)
		}
	}

	result, err := r.api.CreateResult(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.submitted = true
	r.mu.Unlock()

	logger.Log.Info("quiz submitted",
		zap.String("questionnaire_id", questionnaireID),
		zap.Float64("score", result.Score),
		zap.String("status", result.Status))
	return result, nil
}
