package upstream

import (
	"context"
	"net/url"

	"hospital_training_portal/internal/model"
)

// QuestionsByTraining lists every question of the training's
// questionnaire. Quiz-taking payloads never include is_correct.
func (c *Client) QuestionsByTraining(ctx context.Context, trainingID string) ([]model.Question, error) {
	var questions []model.Question
	err := c.getJSON(ctx, "/evaluations/questions?training_id="+url.QueryEscape(trainingID), &questions)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (c *Client) OptionsByQuestion(ctx context.Context, questionID string) ([]model.Option, error) {
	var options []model.Option
	err := c.getJSON(ctx, "/evaluations/options?question_id="+url.QueryEscape(questionID), &options)
	if err != nil {
		return nil, err
	}
	return options, nil
}

func (c *Client) QuestionTypes(ctx context.Context) ([]model.QuestionType, error) {
	var types []model.QuestionType
	if err := c.getJSON(ctx, "/evaluations/question_types", &types); err != nil {
		return nil, err
	}
	return types, nil
}

type createQuestionnaireRequest struct {
	TrainingID string `json:"training_id"`
}

func (c *Client) CreateQuestionnaire(ctx context.Context, trainingID string) (*model.Questionnaire, error) {
	var questionnaire model.Questionnaire
	err := c.postJSON(ctx, "/questionnaires", createQuestionnaireRequest{TrainingID: trainingID}, &questionnaire)
	if err != nil {
		return nil, err
	}
	return &questionnaire, nil
}

type createQuestionRequest struct {
	QuestionText    string `json:"question_text"`
	QuestionTypeID  string `json:"question_type_id"`
	QuestionnaireID string `json:"questionnaire_id"`
}

func (c *Client) CreateQuestion(ctx context.Context, questionnaireID, text, typeID string) (*model.Question, error) {
	var question model.Question
	err := c.postJSON(ctx, "/evaluations/questions", createQuestionRequest{
		QuestionText:    text,
		QuestionTypeID:  typeID,
		QuestionnaireID: questionnaireID,
	}, &question)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

type createOptionRequest struct {
	QuestionID string `json:"question_id"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
}

func (c *Client) CreateOption(ctx context.Context, questionID, text string, isCorrect bool) (*model.Option, error) {
	var option model.Option
	err := c.postJSON(ctx, "/evaluations/option", createOptionRequest{
		QuestionID: questionID,
		OptionText: text,
		IsCorrect:  isCorrect,
	}, &option)
	if err != nil {
		return nil, err
	}
	return &option, nil
}
