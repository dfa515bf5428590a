package upstream

import (
	"context"
	"net/url"

	"hospital_training_portal/internal/model"
)

// AnswerUpsert is the body of the per-question answer save. Exactly one
// of OptionID and OptionIDs is set, depending on the question kind.
type AnswerUpsert struct {
	QuestionID string   `json:"question_id"`
	OptionID   string   `json:"option_id,omitempty"`
	OptionIDs  []string `json:"option_ids,omitempty"`
}

// UpsertUserAnswer saves one answer with PUT semantics: repeating the
// call for the same question replaces the stored answer, so a retried
// submission never duplicates rows.
func (c *Client) UpsertUserAnswer(ctx context.Context, upsert AnswerUpsert) error {
	return c.putJSON(ctx, "/results/user_answer", upsert, nil)
}

// CreateResult finalizes the attempt: the upstream grades the stored
// answers for the questionnaire and returns the scored result.
func (c *Client) CreateResult(ctx context.Context, questionnaireID string) (*model.Result, error) {
	var result model.Result
	err := c.postJSON(ctx, "/results/"+url.PathEscape(questionnaireID), nil, &result)
	if err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetResult(ctx context.Context, resultID string) (*model.Result, error) {
	var result model.Result
	if err := c.getJSON(ctx, "/results/"+url.PathEscape(resultID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnswersByResult lists the stored answers for the feedback view shown
// after an approved attempt.
func (c *Client) AnswersByResult(ctx context.Context, resultID string) ([]model.UserAnswer, error) {
	var answers []model.UserAnswer
	err := c.getJSON(ctx, "/results/"+url.PathEscape(resultID)+"/answers", &answers)
	if err != nil {
		return nil, err
	}
	return answers, nil
}
