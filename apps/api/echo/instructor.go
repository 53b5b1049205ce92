package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core/instructor"
)

type instructorApi struct {
	svc instructor.Service
}

func registerInstructorAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc instructor.Service) {
	api := instructorApi{svc: svc}

	ig := g.Group("/course-instructors", jwt)
	ig.POST("", api.create, adminMiddleware())
	ig.GET("", api.query)
	ig.GET("/:id", api.retrieve)
	ig.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *instructorApi) create(ctx echo.Context) error {
	var data instructor.NewCourseInstructor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourseInstructor")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ci, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "assigning instructor to course")
	}
	return ctx.JSON(http.StatusCreated, ci)
}

func (api *instructorApi) query(ctx echo.Context) error {
	filter := new(instructor.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []instructor.CourseInstructor{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	cis, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings, bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying course instructors")
	}
	if cis == nil {
		cis = []instructor.CourseInstructor{}
	}
	return ctx.JSON(http.StatusOK, cis)
}

func (api *instructorApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	ci, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding course instructor by ID")
	}
	return ctx.JSON(http.StatusOK, ci)
}

func (api *instructorApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting course instructor")
	}
	return ctx.NoContent(http.StatusNoContent)
}
