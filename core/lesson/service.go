package lesson

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/course"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("lesson not found")
	ErrThemeExists = core.NewConflictError("a lesson with this theme already exists")

	errCourseNotFound = errors.New("course does not exist")
)

type (
	Repository interface {
		CheckThemeUniqueness(ctx context.Context, theme string, excludedLessons []Lesson, exec ...core.DBExecutor) error
		CreateLesson(ctx context.Context, lsn Lesson, exec ...core.DBExecutor) (Lesson, error)
		// QueryLessons applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Lesson.Theme.
		QueryLessons(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Lesson, error)
		GetLesson(ctx context.Context, id int, exec ...core.DBExecutor) (Lesson, error)
		UpdateLesson(ctx context.Context, lsn Lesson, exec ...core.DBExecutor) (Lesson, error)
		CountLessons(ctx context.Context, courseID int, exec ...core.DBExecutor) (int, error)
		GetRelationCounts(ctx context.Context, lessonID int, exec ...core.DBExecutor) (RelationCounts, error)
		DeleteLesson(ctx context.Context, id int, exec ...core.DBExecutor) error
	}

	Service interface {
		CheckUniqueness(ctx context.Context, theme string, exclLessons ...Lesson) error
		Create(ctx context.Context, nl NewLesson) (Lesson, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Lesson, error)
		GetByID(ctx context.Context, id int) (Lesson, error)
		Update(ctx context.Context, id int, ul UpdateLesson) (Lesson, error)
		Delete(ctx context.Context, id int) error
	}

	service struct {
		db         core.DB
		repo       Repository
		courseRepo course.Repository
		logger     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, courseRepo course.Repository, logger core.Logger) Service {
	return &service{
		db:         db,
		repo:       repo,
		courseRepo: courseRepo,
		logger:     logger,
	}
}

func (svc *service) CheckUniqueness(ctx context.Context, theme string, exclLessons ...Lesson) error {
	return svc.repo.CheckThemeUniqueness(ctx, theme, exclLessons)
}

// Create inserts a Lesson; when the course reaches the availability threshold
// its `available` flag flips true within the same transaction as the insert.
func (svc *service) Create(ctx context.Context, nl NewLesson) (Lesson, error) {
	crs, err := svc.courseRepo.GetCourse(ctx, nl.CourseID)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return Lesson{}, core.NewValidationError(errCourseNotFound, core.FieldError{Field: "course_id", Error: errCourseNotFound.Error()})
		}
		return Lesson{}, err
	}

	now := time.Now().UTC()
	lsn := Lesson{
		CourseID:  nl.CourseID,
		Theme:     nl.Theme,
		Date:      nl.Date,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return Lesson{}, errors.Wrap(err, "beginning transaction")
	}

	lsn, err = svc.createTx(ctx, tx, lsn, crs)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("creating lesson: %v", err), err)
		_ = tx.Rollback()
		return Lesson{}, err
	}
	if err = tx.Commit(); err != nil {
		return Lesson{}, errors.Wrap(err, "committing transaction")
	}
	return lsn, nil
}

func (svc *service) createTx(ctx context.Context, tx core.DBTransactor, lsn Lesson, crs course.Course) (Lesson, error) {
	lsn, err := svc.repo.CreateLesson(ctx, lsn, tx)
	if err != nil {
		return Lesson{}, err
	}

	if !crs.Available {
		count, err := svc.repo.CountLessons(ctx, crs.ID, tx)
		if err != nil {
			return Lesson{}, err
		}
		if count >= core.Conf.Courses.MinLessons {
			crs.Available = true
			crs.UpdatedAt = time.Now().UTC()
			if _, err = svc.courseRepo.UpdateCourse(ctx, crs, tx); err != nil {
				return Lesson{}, err
			}
		}
	}
	return lsn, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Lesson, error) {
	return svc.repo.QueryLessons(ctx, filter, ordering, page)
}

func (svc *service) GetByID(ctx context.Context, id int) (Lesson, error) {
	return svc.repo.GetLesson(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, ul UpdateLesson) (Lesson, error) {
	lsn, err := svc.repo.GetLesson(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	if ul.CourseID != lsn.CourseID {
		if _, err = svc.courseRepo.GetCourse(ctx, ul.CourseID); err != nil {
			if errors.Cause(err) == course.ErrNotFound {
				return Lesson{}, core.NewValidationError(errCourseNotFound, core.FieldError{Field: "course_id", Error: errCourseNotFound.Error()})
			}
			return Lesson{}, err
		}
	}
	lsn.CourseID = ul.CourseID
	lsn.Theme = ul.Theme
	lsn.Date = ul.Date
	lsn.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLesson(ctx, lsn)
}

// Delete removes a Lesson; it fails while grades or homeworks still reference it.
func (svc *service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetLesson(ctx, id); err != nil {
		return err
	}
	counts, err := svc.repo.GetRelationCounts(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting lesson relations")
	}
	if !counts.IsZero() {
		return core.NewValidationError(fmt.Errorf(
			"lesson cannot be deleted: %d grade(s), %d homework(s) attached",
			counts.Grades, counts.Homeworks,
		))
	}
	return svc.repo.DeleteLesson(ctx, id)
}
