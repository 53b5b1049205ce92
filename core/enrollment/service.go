package enrollment

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/course"
	"github.com/darasa-io/darasa/core/user"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("enrollment not found")
	ErrEnrollmentExists = core.NewConflictError("this student is already enrolled in this course")

	errCourseNotFound  = errors.New("course does not exist")
	errStudentNotFound = errors.New("student does not exist")
)

type (
	Repository interface {
		CreateEnrollment(ctx context.Context, enr StudentCourse, exec ...core.DBExecutor) (StudentCourse, error)
		QueryEnrollments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]StudentCourse, error)
		GetEnrollmentByID(ctx context.Context, id int, exec ...core.DBExecutor) (StudentCourse, error)
		// GetEnrollment fetches the unique (course, student) row.
		GetEnrollment(ctx context.Context, courseID, studentID int, exec ...core.DBExecutor) (StudentCourse, error)
		UpdateEnrollment(ctx context.Context, enr StudentCourse, exec ...core.DBExecutor) (StudentCourse, error)
		DeleteEnrollment(ctx context.Context, id int, exec ...core.DBExecutor) error
	}

	Service interface {
		Create(ctx context.Context, ne NewStudentCourse) (StudentCourse, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]StudentCourse, error)
		GetByID(ctx context.Context, id int) (StudentCourse, error)
		Update(ctx context.Context, id int, ue UpdateStudentCourse) (StudentCourse, error)
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

func (svc *service) Create(ctx context.Context, ne NewStudentCourse) (StudentCourse, error) {
	if _, err := svc.courseRepo.GetCourse(ctx, ne.CourseID); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return StudentCourse{}, core.NewValidationError(errCourseNotFound, core.FieldError{Field: "course_id", Error: errCourseNotFound.Error()})
		}
		return StudentCourse{}, err
	}
	if _, err := svc.userRepo.GetUser(ctx, user.GetFilter{ID: ne.StudentID}); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return StudentCourse{}, core.NewValidationError(errStudentNotFound, core.FieldError{Field: "student_id", Error: errStudentNotFound.Error()})
		}
		return StudentCourse{}, err
	}
	if _, err := svc.repo.GetEnrollment(ctx, ne.CourseID, ne.StudentID); err == nil {
		return StudentCourse{}, ErrEnrollmentExists
	} else if errors.Cause(err) != ErrNotFound {
		return StudentCourse{}, err
	}

	now := time.Now().UTC()
	enr := StudentCourse{
		CourseID:  ne.CourseID,
		StudentID: ne.StudentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateEnrollment(ctx, enr)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]StudentCourse, error) {
	return svc.repo.QueryEnrollments(ctx, filter, ordering, page)
}

func (svc *service) GetByID(ctx context.Context, id int) (StudentCourse, error) {
	return svc.repo.GetEnrollmentByID(ctx, id)
}

// Update is the administrative direct patch; it bypasses the grade-driven
// recomputation on purpose.
func (svc *service) Update(ctx context.Context, id int, ue UpdateStudentCourse) (StudentCourse, error) {
	enr, err := svc.repo.GetEnrollmentByID(ctx, id)
	if err != nil {
		return StudentCourse{}, err
	}
	if ue.FinalMark != nil {
		enr.FinalMark = null.Float64From(*ue.FinalMark)
	}
	if ue.Feedback != nil {
		enr.Feedback = null.StringFrom(*ue.Feedback)
	}
	if ue.Passed != nil {
		enr.Passed = *ue.Passed
	}
	enr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEnrollment(ctx, enr)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetEnrollmentByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteEnrollment(ctx, id)
}
