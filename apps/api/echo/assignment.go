package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core/assignment"
	"github.com/pragya-git-bug/aibackend/core/report"
)

type assignmentApi struct {
	svc     *assignment.Service
	reports *report.Service
}

func registerAssignmentAPI(g *echo.Group, svc *assignment.Service, reports *report.Service) {
	api := assignmentApi{svc: svc, reports: reports}

	ag := g.Group("/assignments")
	ag.POST("/add", api.create)
	ag.POST("/submit", api.submit)
	ag.POST("/review", api.review)
	ag.GET("/all", api.query)
	ag.GET("/assigned-to/:assignedTo", api.queryByAssignedTo)
	ag.GET("/teacher/:teacherCode", api.queryByTeacher)
	ag.GET("/submitted-students/:assignmentCode", api.submittedStudents)
	ag.GET("/student-submission/:assignmentCode/:studentCode", api.studentSubmission)
	ag.GET("/student-report/:studentCode", api.studentReport)
	ag.GET("/:assignmentCode", api.retrieve)
}

// Handlers

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}

	a, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	var data assignment.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}

	a, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) review(ctx echo.Context) error {
	var data assignment.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}

	a, err := api.svc.Review(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "reviewing assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

// query lists every assignment, optionally filtered by teacherCode, assignedTo and submittedBy.
func (api *assignmentApi) query(ctx echo.Context) error {
	var filter assignment.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []assignment.Assignment{})
	}
	orderings := bindOrderings(ctx, assignment.OrderingFields)

	assignments, err := api.svc.Filter(ctx.Request().Context(), filter, orderings...)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, assignmentList(assignments))
}

func (api *assignmentApi) queryByAssignedTo(ctx echo.Context) error {
	orderings := bindOrderings(ctx, assignment.OrderingFields)

	assignments, err := api.svc.QueryByAssignedTo(ctx.Request().Context(), ctx.Param("assignedTo"), orderings...)
	if err != nil {
		return errors.Wrap(err, "querying assignments by assignedTo")
	}
	return ctx.JSON(http.StatusOK, assignmentList(assignments))
}

func (api *assignmentApi) queryByTeacher(ctx echo.Context) error {
	orderings := bindOrderings(ctx, assignment.OrderingFields)

	assignments, err := api.svc.QueryByTeacher(ctx.Request().Context(), ctx.Param("teacherCode"), orderings...)
	if err != nil {
		return errors.Wrap(err, "querying assignments by teacher")
	}
	return ctx.JSON(http.StatusOK, assignmentList(assignments))
}

func (api *assignmentApi) submittedStudents(ctx echo.Context) error {
	students, err := api.svc.SubmittedStudents(ctx.Request().Context(), ctx.Param("assignmentCode"))
	if err != nil {
		return errors.Wrap(err, "listing submitted students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *assignmentApi) studentSubmission(ctx echo.Context) error {
	ss, err := api.svc.StudentSubmission(ctx.Request().Context(), ctx.Param("assignmentCode"), ctx.Param("studentCode"))
	if err != nil {
		return errors.Wrap(err, "getting student submission")
	}
	return ctx.JSON(http.StatusOK, ss)
}

func (api *assignmentApi) studentReport(ctx echo.Context) error {
	rep, err := api.reports.StudentReport(ctx.Request().Context(), ctx.Param("studentCode"))
	if err != nil {
		return errors.Wrap(err, "building student report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	a, err := api.svc.GetByCode(ctx.Request().Context(), ctx.Param("assignmentCode"))
	if err != nil {
		return errors.Wrap(err, "finding assignment by code")
	}
	return ctx.JSON(http.StatusOK, a)
}

func assignmentList(assignments []assignment.Assignment) []assignment.Assignment {
	if assignments == nil {
		return []assignment.Assignment{}
	}
	return assignments
}
