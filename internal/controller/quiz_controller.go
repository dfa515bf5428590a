package controller

import (
	"hospital_training_portal/internal/model"
	"hospital_training_portal/internal/quiz"
	"hospital_training_portal/internal/service"
	"hospital_training_portal/internal/session"
	"hospital_training_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Sessions *session.Manager
	Quizzes  *service.QuizService
}

func NewQuizController(sessions *session.Manager, quizzes *service.QuizService) *QuizController {
	return &QuizController{Sessions: sessions, Quizzes: quizzes}
}

// questionView is the quiz-taking payload. Options carry only id and
// text; correctness never leaves the upstream before a result exists.
type questionView struct {
	ID      string             `json:"id"`
	Text    string             `json:"question_text"`
	Kind    model.QuestionKind `json:"kind"`
	Options []optionView       `json:"options"`
}

type optionView struct {
	ID   string `json:"id"`
	Text string `json:"option_text"`
}

func viewQuestions(loaded []quiz.LoadedQuestion) []questionView {
	out := make([]questionView, len(loaded))
	for i, q := range loaded {
		view := questionView{
			ID:      q.Question.ID,
			Text:    q.Question.Text,
			Kind:    q.Kind,
			Options: make([]optionView, len(q.Options)),
		}
		for j, opt := range q.Options {
			view.Options[j] = optionView{ID: opt.ID, Text: opt.Text}
		}
		out[i] = view
	}
	return out
}

// Start loads the training's questionnaire and opens an attempt. A
// training without a questionnaire is a 404, and questions that cannot
// be answered (no options) are flagged up front.
func (c *QuizController) Start(ctx *gin.Context) {
	user, err := c.Sessions.CurrentUser()
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	trainingID := ctx.Param("trainingId")
	runner, err := c.Quizzes.StartAttempt(ctx.Request.Context(), user.ID, trainingID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"questionnaire_id": runner.QuestionnaireID(),
		"questions":        viewQuestions(runner.Questions()),
		"unanswerable":     runner.UnanswerableIndexes(),
	})
}

type AnswerRequest struct {
	Index     int      `json:"index"`
	OptionIDs []string `json:"option_ids" binding:"required"`
}

func (c *QuizController) Answer(ctx *gin.Context) {
	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	trainingID := ctx.Param("trainingId")
	if err := c.Quizzes.RecordAnswer(trainingID, req.Index, req.OptionIDs); err != nil {
		util.FromError(ctx, err)
		return
	}

	runner, err := c.Quizzes.Attempt(trainingID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"complete": runner.IsComplete()})
}

// Submit finishes the attempt and returns the scored outcome. A partial
// submission failure comes back as 502 naming the failing question so
// the user can simply retry: saved answers are upserts.
func (c *QuizController) Submit(ctx *gin.Context) {
	user, err := c.Sessions.CurrentUser()
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	outcome, err := c.Quizzes.Submit(ctx.Request.Context(), user.ID, ctx.Param("trainingId"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, outcome)
}

// Result shows a past attempt with its answer feedback.
func (c *QuizController) Result(ctx *gin.Context) {
	outcome, err := c.Quizzes.ResultHistory(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, outcome)
}
