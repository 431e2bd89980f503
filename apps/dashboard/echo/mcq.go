package echoapi

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unidash/unidash/core/mcq"
)

type mcqApi struct {
	bank *mcq.Bank

	mu      sync.Mutex
	quizzes map[string]*mcq.Quiz
}

func registerMCQAPI(g *echo.Group, opts *Options) {
	api := mcqApi{
		bank:    opts.Bank,
		quizzes: make(map[string]*mcq.Quiz),
	}

	mg := g.Group("/mcqs")
	mg.GET("", api.query)
	mg.POST("", api.create)
	mg.GET("/subjects", api.querySubjects)
	mg.GET("/:id", api.retrieve)
	mg.DELETE("/:id", api.destroy)

	qg := g.Group("/quiz")
	qg.POST("", api.startQuiz)
	qdg := qg.Group("/:id")
	qdg.GET("", api.retrieveQuiz)
	qdg.DELETE("", api.destroyQuiz)
	qdg.POST("/answers", api.answer)
	qdg.PUT("/current", api.setCurrent)
	qdg.POST("/pause", api.pauseQuiz)
	qdg.POST("/resume", api.resumeQuiz)
	qdg.POST("/finish", api.finishQuiz)
	qdg.POST("/reset", api.resetQuiz)
}

// Question bank handlers

func (api *mcqApi) query(ctx echo.Context) error {
	cr := mcq.Criteria{
		Subject:    ctx.QueryParam("subject"),
		Difficulty: ctx.QueryParam("difficulty"),
	}
	qs := api.bank.List(cr)
	if qs == nil {
		qs = []mcq.Question{}
	}
	return ctx.JSON(http.StatusOK, qs)
}

func (api *mcqApi) create(ctx echo.Context) error {
	var data mcq.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}

	q, err := api.bank.Add(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *mcqApi) retrieve(ctx echo.Context) error {
	q, err := api.bank.Get(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *mcqApi) destroy(ctx echo.Context) error {
	if err := api.bank.Remove(ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *mcqApi) querySubjects(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.bank.Subjects())
}

// Quiz handlers

func (api *mcqApi) quiz(ctx echo.Context) (*mcq.Quiz, error) {
	api.mu.Lock()
	defer api.mu.Unlock()
	q, ok := api.quizzes[ctx.Param("id")]
	if !ok {
		return nil, errHttpNotFound
	}
	return q, nil
}

func (api *mcqApi) quizResponse(ctx echo.Context, id string, q *mcq.Quiz) error {
	return ctx.JSON(http.StatusOK, QuizResponse{ID: id, Snapshot: q.Snapshot()})
}

func (api *mcqApi) startQuiz(ctx echo.Context) error {
	var data mcq.Settings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Settings")
	}

	q := mcq.NewQuiz()
	if err := q.Start(api.bank, data); err != nil {
		return err
	}

	id := uuid.New().String()
	api.mu.Lock()
	api.quizzes[id] = q
	api.mu.Unlock()

	return ctx.JSON(http.StatusCreated, QuizResponse{ID: id, Snapshot: q.Snapshot()})
}

func (api *mcqApi) retrieveQuiz(ctx echo.Context) error {
	q, err := api.quiz(ctx)
	if err != nil {
		return err
	}
	return api.quizResponse(ctx, ctx.Param("id"), q)
}

func (api *mcqApi) destroyQuiz(ctx echo.Context) error {
	api.mu.Lock()
	q, ok := api.quizzes[ctx.Param("id")]
	delete(api.quizzes, ctx.Param("id"))
	api.mu.Unlock()

	if ok {
		q.Close()
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *mcqApi) answer(ctx echo.Context) error {
	q, err := api.quiz(ctx)
	if err != nil {
		return err
	}

	var data AnswerRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnswerRequest")
	}
	if err := q.Answer(data.QuestionID, data.Option); err != nil {
		return err
	}
	return api.quizResponse(ctx, ctx.Param("id"), q)
}

func (api *mcqApi) setCurrent(ctx echo.Context) error {
	q, err := api.quiz(ctx)
	if err != nil {
		return err
	}

	var data CurrentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CurrentRequest")
	}
	if err := q.SetCurrent(data.Index); err != nil {
		return err
	}
	return api.quizResponse(ctx, ctx.Param("id"), q)
}

func (api *mcqApi) pauseQuiz(ctx echo.Context) error {
	q, err := api.quiz(ctx)
	if err != nil {
		return err
	}
	if err := q.Pause(); err != nil {
		return err
	}
	return api.quizResponse(ctx, ctx.Param("id"), q)
}

func (api *mcqApi) resumeQuiz(ctx echo.Context) error {
	q, err := api.quiz(ctx)
	if err != nil {
		return err
	}
	if err := q.Resume(); err != nil {
		return err
	}
	return api.quizResponse(ctx, ctx.Param("id"), q)
}

func (api *mcqApi) finishQuiz(ctx echo.Context) error {
	q, err := api.quiz(ctx)
	if err != nil {
		return err
	}
	if err := q.Finish(); err != nil {
		return err
	}
	return api.quizResponse(ctx, ctx.Param("id"), q)
}

func (api *mcqApi) resetQuiz(ctx echo.Context) error {
	q, err := api.quiz(ctx)
	if err != nil {
		return err
	}
	if err := q.Reset(); err != nil {
		return err
	}
	return api.quizResponse(ctx, ctx.Param("id"), q)
}

type (
	QuizResponse struct {
		ID       string       `json:"id"`
		Snapshot mcq.Snapshot `json:"snapshot"`
	}

	AnswerRequest struct {
		QuestionID string `json:"question_id"`
		Option     int    `json:"option"`
	}

	CurrentRequest struct {
		Index int `json:"index"`
	}
)
