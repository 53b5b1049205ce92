package course

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
)

var (
	// errors
	ErrNotFound     = core.NewNotFoundError("course not found")
	ErrCourseExists = core.NewConflictError("a course with this name already exists")
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string, excludedCourses []Course, exec ...core.DBExecutor) error
		CreateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		// QueryCourses applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Course.Name or Course.Description.
		QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Course, error)
		GetCourse(ctx context.Context, id int, exec ...core.DBExecutor) (Course, error)
		UpdateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		GetRelationCounts(ctx context.Context, courseID int, exec ...core.DBExecutor) (RelationCounts, error)
		DeleteCourse(ctx context.Context, id int, exec ...core.DBExecutor) error
	}

	Service interface {
		CheckUniqueness(ctx context.Context, name string, exclCourses ...Course) error
		Create(ctx context.Context, nc NewCourse) (Course, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Course, error)
		GetByID(ctx context.Context, id int) (Course, error)
		Update(ctx context.Context, id int, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, id int) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(ctx context.Context, name string, exclCourses ...Course) error {
	return svc.repo.CheckNameUniqueness(ctx, name, exclCourses)
}

func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Name:        nc.Name,
		Description: nc.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter, ordering, page)
}

func (svc *service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	crs.Name = uc.Name
	crs.Description = uc.Description
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

// Delete removes a Course; it fails while instructors, groups, students or
// lessons are still attached.
func (svc *service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetCourse(ctx, id); err != nil {
		return err
	}
	counts, err := svc.repo.GetRelationCounts(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting course relations")
	}
	if !counts.IsZero() {
		return core.NewValidationError(fmt.Errorf(
			"course cannot be deleted: %d instructor(s), %d group(s), %d student(s), %d lesson(s) attached",
			counts.Instructors, counts.Groups, counts.Students, counts.Lessons,
		))
	}
	return svc.repo.DeleteCourse(ctx, id)
}
