package instructor

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/course"
	"github.com/darasa-io/darasa/core/user"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("course instructor not found")
	ErrAssignmentExists = core.NewConflictError("this instructor is already assigned to this course")

	errCourseNotFound     = errors.New("course does not exist")
	errInstructorNotFound = errors.New("instructor does not exist")
	errNotAnInstructor    = errors.New("user is not an instructor")
)

type (
	Repository interface {
		CreateCourseInstructor(ctx context.Context, ci CourseInstructor, exec ...core.DBExecutor) (CourseInstructor, error)
		QueryCourseInstructors(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]CourseInstructor, error)
		GetCourseInstructorByID(ctx context.Context, id int, exec ...core.DBExecutor) (CourseInstructor, error)
		// GetCourseInstructor fetches the unique (course, instructor) row.
		GetCourseInstructor(ctx context.Context, courseID, instructorID int, exec ...core.DBExecutor) (CourseInstructor, error)
		DeleteCourseInstructor(ctx context.Context, id int, exec ...core.DBExecutor) error
	}

	Service interface {
		Create(ctx context.Context, nc NewCourseInstructor) (CourseInstructor, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]CourseInstructor, error)
		GetByID(ctx context.Context, id int) (CourseInstructor, error)
		Delete(ctx context.Context, id int) error
	}

	service struct {
		repo       Repository
		courseRepo course.Repository
		userRepo   user.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, courseRepo course.Repository, userRepo user.Repository) Service {
	return &service{
		repo:       repo,
		courseRepo: courseRepo,
		userRepo:   userRepo,
	}
}

func (svc *service) Create(ctx context.Context, nc NewCourseInstructor) (CourseInstructor, error) {
	if _, err := svc.courseRepo.GetCourse(ctx, nc.CourseID); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return CourseInstructor{}, core.NewValidationError(errCourseNotFound, core.FieldError{Field: "course_id", Error: errCourseNotFound.Error()})
		}
		return CourseInstructor{}, err
	}
	usr, err := svc.userRepo.GetUser(ctx, user.GetFilter{ID: nc.InstructorID})
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return CourseInstructor{}, core.NewValidationError(errInstructorNotFound, core.FieldError{Field: "instructor_id", Error: errInstructorNotFound.Error()})
		}
		return CourseInstructor{}, err
	}
	if !usr.IsInstructor() {
		return CourseInstructor{}, core.NewValidationError(errNotAnInstructor, core.FieldError{Field: "instructor_id", Error: errNotAnInstructor.Error()})
	}
	if _, err = svc.repo.GetCourseInstructor(ctx, nc.CourseID, nc.InstructorID); err == nil {
		return CourseInstructor{}, ErrAssignmentExists
	} else if errors.Cause(err) != ErrNotFound {
		return CourseInstructor{}, err
	}

	ci := CourseInstructor{
		CourseID:     nc.CourseID,
		InstructorID: nc.InstructorID,
		CreatedAt:    time.Now().UTC(),
	}
	return svc.repo.CreateCourseInstructor(ctx, ci)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]CourseInstructor, error) {
	return svc.repo.QueryCourseInstructors(ctx, filter, ordering, page)
}

func (svc *service) GetByID(ctx context.Context, id int) (CourseInstructor, error) {
	return svc.repo.GetCourseInstructorByID(ctx, id)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetCourseInstructorByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteCourseInstructor(ctx, id)
}
