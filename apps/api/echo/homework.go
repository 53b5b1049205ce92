package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/homework"
	"github.com/darasa-io/darasa/core/user"
)

const homeworkFileField = "file"

type homeworkApi struct {
	svc     homework.Service
	userSvc user.Service
}

func registerHomeworkAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc homework.Service, userSvc user.Service) {
	api := homeworkApi{svc: svc, userSvc: userSvc}

	hg := g.Group("/homeworks", jwt)
	hg.POST("", api.create)
	hg.GET("", api.query)
	hg.GET("/:id", api.retrieve)
	hg.PUT("/:id", api.update)
	hg.DELETE("/:id", api.destroy)
}

func (api *homeworkApi) create(ctx echo.Context) error {
	var data homework.NewHomework
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewHomework")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// students submit for themselves only
	if !claims.IsStaff() {
		data.StudentID = claims.UserID()
	}

	if err := data.Validate(); err != nil {
		return err
	}

	attachment, err := bindAttachment(ctx)
	if err != nil {
		return err
	}

	hw, err := api.svc.Create(ctx.Request().Context(), data, attachment)
	if err != nil {
		return errors.Wrap(err, "creating homework")
	}
	view, err := api.svc.View(ctx.Request().Context(), hw)
	if err != nil {
		return errors.Wrap(err, "rendering homework view")
	}
	return ctx.JSON(http.StatusCreated, view)
}

func (api *homeworkApi) query(ctx echo.Context) error {
	filter := new(homework.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []homework.View{})
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// students only see their own submissions
	if !claims.IsStaff() {
		filter.StudentID = claims.UserID()
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	hws, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings, bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying homeworks")
	}

	views := make([]homework.View, 0, len(hws))
	for _, hw := range hws {
		view, err := api.svc.View(ctx.Request().Context(), hw)
		if err != nil {
			return errors.Wrap(err, "rendering homework view")
		}
		views = append(views, view)
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *homeworkApi) retrieve(ctx echo.Context) error {
	hw, err := api.getObject(ctx)
	if err != nil {
		return err
	}
	view, err := api.svc.View(ctx.Request().Context(), hw)
	if err != nil {
		return errors.Wrap(err, "rendering homework view")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *homeworkApi) update(ctx echo.Context) error {
	hw, err := api.getObject(ctx)
	if err != nil {
		return err
	}

	var data homework.UpdateHomework
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateHomework")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	attachment, err := bindAttachment(ctx)
	if err != nil {
		return err
	}

	hw, err = api.svc.Update(ctx.Request().Context(), hw.ID, data, attachment)
	if err != nil {
		return errors.Wrap(err, "updating homework")
	}
	view, err := api.svc.View(ctx.Request().Context(), hw)
	if err != nil {
		return errors.Wrap(err, "rendering homework view")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *homeworkApi) destroy(ctx echo.Context) error {
	hw, err := api.getObject(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), hw.ID); err != nil {
		return errors.Wrap(err, "deleting homework")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getObject fetches the homework in the path and enforces ownership:
// staff see everything, students only their own submissions.
func (api *homeworkApi) getObject(ctx echo.Context) (homework.Homework, error) {
	id, err := pathID(ctx)
	if err != nil {
		return homework.Homework{}, err
	}
	hw, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return homework.Homework{}, errors.Wrap(err, "finding homework by ID")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return homework.Homework{}, errors.Wrap(err, "getting context claims")
	}
	if !claims.IsStaff() && hw.StudentID != claims.UserID() {
		return homework.Homework{}, errHttpNotFound
	}
	return hw, nil
}

// bindAttachment reads the optional multipart file field into memory.
func bindAttachment(ctx echo.Context) (*core.Attachment, error) {
	fh, err := ctx.FormFile(homeworkFileField)
	if err != nil {
		// the field is optional; a missing file or a non-multipart body is fine
		return nil, nil
	}

	src, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	buf := new(bytes.Buffer)
	if _, err = buf.ReadFrom(src); err != nil {
		return nil, errors.Wrap(err, "reading uploaded file")
	}
	return &core.Attachment{
		Content:     buf,
		ContentType: fh.Header.Get("Content-Type"),
		Filename:    fh.Filename,
	}, nil
}
