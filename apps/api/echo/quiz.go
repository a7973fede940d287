package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core/quiz"
)

type quizApi struct {
	svc *quiz.Service
}

func registerQuizAPI(g *echo.Group, svc *quiz.Service) {
	api := quizApi{svc: svc}

	qg := g.Group("/quizes")
	qg.POST("/add", api.create)
	qg.POST("/submit", api.submit)
	qg.POST("/review", api.review)
	qg.GET("/all", api.query)
	qg.GET("/assigned-to/:assignedTo", api.queryByAssignedTo)
	qg.GET("/teacher/:teacherCode", api.queryByTeacher)
	qg.GET("/submitted-students/:quizeCode", api.submittedStudents)
	qg.GET("/student-submission/:quizeCode/:studentCode", api.studentSubmission)
	qg.GET("/:quizeCode", api.retrieve)
}

// Handlers

func (api *quizApi) create(ctx echo.Context) error {
	var data quiz.NewQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}

	qz, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating quiz")
	}
	return ctx.JSON(http.StatusCreated, qz)
}

func (api *quizApi) submit(ctx echo.Context) error {
	var data quiz.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}

	qz, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting quiz")
	}
	return ctx.JSON(http.StatusOK, qz)
}

func (api *quizApi) review(ctx echo.Context) error {
	var data quiz.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}

	qz, err := api.svc.Review(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "reviewing quiz")
	}
	return ctx.JSON(http.StatusOK, qz)
}

func (api *quizApi) query(ctx echo.Context) error {
	var filter quiz.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []quiz.Quiz{})
	}
	orderings := bindOrderings(ctx, quiz.OrderingFields)

	quizzes, err := api.svc.Filter(ctx.Request().Context(), filter, orderings...)
	if err != nil {
		return errors.Wrap(err, "querying quizes")
	}
	return ctx.JSON(http.StatusOK, quizList(quizzes))
}

func (api *quizApi) queryByAssignedTo(ctx echo.Context) error {
	orderings := bindOrderings(ctx, quiz.OrderingFields)

	quizzes, err := api.svc.QueryByAssignedTo(ctx.Request().Context(), ctx.Param("assignedTo"), orderings...)
	if err != nil {
		return errors.Wrap(err, "querying quizes by assignedTo")
	}
	return ctx.JSON(http.StatusOK, quizList(quizzes))
}

func (api *quizApi) queryByTeacher(ctx echo.Context) error {
	orderings := bindOrderings(ctx, quiz.OrderingFields)

	quizzes, err := api.svc.QueryByTeacher(ctx.Request().Context(), ctx.Param("teacherCode"), orderings...)
	if err != nil {
		return errors.Wrap(err, "querying quizes by teacher")
	}
	return ctx.JSON(http.StatusOK, quizList(quizzes))
}

func (api *quizApi) submittedStudents(ctx echo.Context) error {
	students, err := api.svc.SubmittedStudents(ctx.Request().Context(), ctx.Param("quizeCode"))
	if err != nil {
		return errors.Wrap(err, "listing submitted students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *quizApi) studentSubmission(ctx echo.Context) error {
	ss, err := api.svc.StudentSubmission(ctx.Request().Context(), ctx.Param("quizeCode"), ctx.Param("studentCode"))
	if err != nil {
		return errors.Wrap(err, "getting student submission")
	}
	return ctx.JSON(http.StatusOK, ss)
}

func (api *quizApi) retrieve(ctx echo.Context) error {
	qz, err := api.svc.GetByCode(ctx.Request().Context(), ctx.Param("quizeCode"))
	if err != nil {
		return errors.Wrap(err, "finding quiz by code")
	}
	return ctx.JSON(http.StatusOK, qz)
}

func quizList(quizzes []quiz.Quiz) []quiz.Quiz {
	if quizzes == nil {
		return []quiz.Quiz{}
	}
	return quizzes
}
