package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core/grade"
)

type gradeApi struct {
	svc grade.Service
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc grade.Service) {
	api := gradeApi{svc: svc}

	gg := g.Group("/lesson-grades", jwt)
	gg.POST("", api.create, staffMiddleware())
	gg.GET("", api.query)
	gg.GET("/:id", api.retrieve)
	gg.PUT("/:id", api.update, staffMiddleware())
	gg.DELETE("/:id", api.destroy, staffMiddleware())
}

func (api *gradeApi) create(ctx echo.Context) error {
	var data grade.NewLessonGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLessonGrade")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	lg, err := api.svc.Create(ctx.Request().Context(), data, claims.UserID())
	if err != nil {
		return errors.Wrap(err, "creating lesson grade")
	}
	return ctx.JSON(http.StatusCreated, lg)
}

func (api *gradeApi) query(ctx echo.Context) error {
	filter := new(grade.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []grade.LessonGrade{})
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// students only see their own grades
	if !claims.IsStaff() {
		filter.StudentID = claims.UserID()
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	grades, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings, bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying lesson grades")
	}
	if grades == nil {
		grades = []grade.LessonGrade{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	lg, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding lesson grade by ID")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.IsStaff() && lg.StudentID != claims.UserID() {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, lg)
}

func (api *gradeApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data grade.UpdateLessonGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLessonGrade")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	lg, err := api.svc.Update(ctx.Request().Context(), id, data, claims.UserID())
	if err != nil {
		return errors.Wrap(err, "updating lesson grade")
	}
	return ctx.JSON(http.StatusOK, lg)
}

func (api *gradeApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting lesson grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}
