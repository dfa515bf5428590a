package model

import (
	"strings"
	"time"

	"hospital_training_portal/internal/util"
)

// Questionnaire is the quiz attached to exactly one training.
type Questionnaire struct {
	ID       string   `json:"id"`
	Training Training `json:"trainings"`
}

type QuestionType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Question struct {
	ID            string        `json:"id"`
	Text          string        `json:"question_text"`
	Type          QuestionType  `json:"question_types"`
	Questionnaire Questionnaire `json:"questionnaires"`
}

func (q *Question) Validate() error {
	if q.ID == "" {
		return util.NewValidationError("question.id", "missing in upstream payload")
	}
	if q.Text == "" {
		return util.NewValidationError("question.question_text", "missing in upstream payload")
	}
	return nil
}

// Option is one selectable answer. IsCorrect is only populated on
// feedback payloads after a result exists; the upstream strips it from
// quiz-taking responses so the answer key never reaches the client.
type Option struct {
	ID        string   `json:"id"`
	Text      string   `json:"option_text"`
	IsCorrect bool     `json:"is_correct"`
	Question  Question `json:"questions"`
}

func (o *Option) Validate() error {
	if o.ID == "" {
		return util.NewValidationError("option.id", "missing in upstream payload")
	}
	return nil
}

// UserAnswer is the stored answer row echoed back by the upstream after
// an upsert, and later listed per result for the feedback view.
type UserAnswer struct {
	ID         string   `json:"id"`
	AnswerDate string   `json:"answer_date"`
	User       UserInfo `json:"user"`
	Question   struct {
		Text string `json:"question_text"`
	} `json:"questions"`
	Option struct {
		Text      string `json:"option_text"`
		IsCorrect bool   `json:"is_correct"`
	} `json:"options"`
}

// Result is the scored outcome of one quiz attempt. Immutable once
// created from the gateway's point of view.
type Result struct {
	ID              string    `json:"id"`
	Score           float64   `json:"score"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UserID          string    `json:"user_id"`
	QuestionnaireID string    `json:"questionnaire_id"`
}

// Passed reports whether the attempt reached the approval threshold.
// Grading is entirely upstream; the gateway only inspects the verdict.
func (r *Result) Passed() bool {
	return strings.ToLower(r.Status) == "aprobado"
}

func (r *Result) Validate() error {
	if r.ID == "" {
		return util.NewValidationError("result.id", "missing in upstream payload")
	}
	if r.Score < 0 || r.Score > 100 {
		return util.NewValidationError("result.score", "outside the 0-100 range")
	}
	return nil
}
