package grade

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/course"
	"github.com/darasa-io/darasa/core/enrollment"
	"github.com/darasa-io/darasa/core/lesson"
	"github.com/darasa-io/darasa/core/user"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("lesson grade not found")
	ErrGradeExists = core.NewConflictError("a grade already exists for this lesson and student")

	errLessonNotFound  = errors.New("lesson does not exist")
	errStudentNotFound = errors.New("student does not exist")
	errNotEnrolled     = errors.New("student is not assigned to this course")
)

type (
	Repository interface {
		CreateGrade(ctx context.Context, lg LessonGrade, exec ...core.DBExecutor) (LessonGrade, error)
		// QueryGrades applies AND operation on available QueryFilter fields.
		QueryGrades(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]LessonGrade, error)
		GetGrade(ctx context.Context, id int, exec ...core.DBExecutor) (LessonGrade, error)
		// GetGradeForLesson fetches the unique (lesson, student) row.
		GetGradeForLesson(ctx context.Context, lessonID, studentID int, exec ...core.DBExecutor) (LessonGrade, error)
		UpdateGrade(ctx context.Context, lg LessonGrade, exec ...core.DBExecutor) (LessonGrade, error)
		DeleteGrade(ctx context.Context, id int, exec ...core.DBExecutor) error
	}

	Service interface {
		Create(ctx context.Context, ng NewLessonGrade, actorID int) (LessonGrade, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]LessonGrade, error)
		GetByID(ctx context.Context, id int) (LessonGrade, error)
		Update(ctx context.Context, id int, ug UpdateLessonGrade, actorID int) (LessonGrade, error)
		Delete(ctx context.Context, id int) error
	}

	service struct {
		db         core.DB
		repo       Repository
		lessonRepo lesson.Repository
		userRepo   user.Repository
		enrollRepo enrollment.Repository
		courseRepo course.Repository
		mailSvc    core.EmailService
		logger     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	db core.DB,
	repo Repository,
	lessonRepo lesson.Repository,
	userRepo user.Repository,
	enrollRepo enrollment.Repository,
	courseRepo course.Repository,
	mailSvc core.EmailService,
	logger core.Logger,
) Service {
	return &service{
		db:         db,
		repo:       repo,
		lessonRepo: lessonRepo,
		userRepo:   userRepo,
		enrollRepo: enrollRepo,
		courseRepo: courseRepo,
		mailSvc:    mailSvc,
		logger:     logger,
	}
}

// Create records a grade for a (lesson, student) pair and recomputes the
// student's final mark for the lesson's course, atomically.
func (svc *service) Create(ctx context.Context, ng NewLessonGrade, actorID int) (LessonGrade, error) {
	lsn, err := svc.lessonRepo.GetLesson(ctx, ng.LessonID)
	if err != nil {
		if errors.Cause(err) == lesson.ErrNotFound {
			return LessonGrade{}, core.NewValidationError(errLessonNotFound, core.FieldError{Field: "lesson_id", Error: errLessonNotFound.Error()})
		}
		return LessonGrade{}, err
	}
	if _, err = svc.userRepo.GetUser(ctx, user.GetFilter{ID: ng.StudentID}); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return LessonGrade{}, core.NewValidationError(errStudentNotFound, core.FieldError{Field: "student_id", Error: errStudentNotFound.Error()})
		}
		return LessonGrade{}, err
	}
	if _, err = svc.repo.GetGradeForLesson(ctx, ng.LessonID, ng.StudentID); err == nil {
		return LessonGrade{}, ErrGradeExists
	} else if errors.Cause(err) != ErrNotFound {
		return LessonGrade{}, err
	}
	if err = svc.checkEnrollment(ctx, lsn.CourseID, ng.StudentID); err != nil {
		return LessonGrade{}, err
	}

	now := time.Now().UTC()
	lg := LessonGrade{
		LessonID:  ng.LessonID,
		StudentID: ng.StudentID,
		Grade:     ng.Grade,
		CreatedBy: actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return LessonGrade{}, errors.Wrap(err, "beginning transaction")
	}

	var passedNow bool
	if lg, passedNow, err = svc.createTx(ctx, tx, lg, lsn.CourseID); err != nil {
		svc.logger.Error(fmt.Sprintf("creating lesson grade: %v", err), err)
		_ = tx.Rollback()
		return LessonGrade{}, err
	}
	if err = tx.Commit(); err != nil {
		return LessonGrade{}, errors.Wrap(err, "committing transaction")
	}

	if passedNow {
		svc.sendCoursePassedMail(ctx, lsn.CourseID, lg.StudentID)
	}
	return lg, nil
}

func (svc *service) createTx(ctx context.Context, tx core.DBTransactor, lg LessonGrade, courseID int) (LessonGrade, bool, error) {
	lg, err := svc.repo.CreateGrade(ctx, lg, tx)
	if err != nil {
		return LessonGrade{}, false, err
	}
	passedNow, err := svc.updateFinalMark(ctx, tx, courseID, lg.StudentID)
	return lg, passedNow, err
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]LessonGrade, error) {
	return svc.repo.QueryGrades(ctx, filter, ordering, page)
}

func (svc *service) GetByID(ctx context.Context, id int) (LessonGrade, error) {
	return svc.repo.GetGrade(ctx, id)
}

// Update partially replaces a grade's fields and recomputes the final mark for
// the grade's (possibly new) student/course pair, atomically.
func (svc *service) Update(ctx context.Context, id int, ug UpdateLessonGrade, actorID int) (LessonGrade, error) {
	lg, err := svc.repo.GetGrade(ctx, id)
	if err != nil {
		return LessonGrade{}, err
	}

	if ug.LessonID != 0 {
		lg.LessonID = ug.LessonID
	}
	if ug.StudentID != 0 {
		lg.StudentID = ug.StudentID
	}
	if ug.Grade != 0 {
		lg.Grade = ug.Grade
	}

	lsn, err := svc.lessonRepo.GetLesson(ctx, lg.LessonID)
	if err != nil {
		if errors.Cause(err) == lesson.ErrNotFound {
			return LessonGrade{}, core.NewValidationError(errLessonNotFound, core.FieldError{Field: "lesson_id", Error: errLessonNotFound.Error()})
		}
		return LessonGrade{}, err
	}
	if ug.StudentID != 0 {
		if _, err = svc.userRepo.GetUser(ctx, user.GetFilter{ID: lg.StudentID}); err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return LessonGrade{}, core.NewValidationError(errStudentNotFound, core.FieldError{Field: "student_id", Error: errStudentNotFound.Error()})
			}
			return LessonGrade{}, err
		}
	}
	// moving the grade to another (lesson, student) pair must not collide
	if ug.LessonID != 0 || ug.StudentID != 0 {
		dup, err := svc.repo.GetGradeForLesson(ctx, lg.LessonID, lg.StudentID)
		if err == nil && dup.ID != lg.ID {
			return LessonGrade{}, ErrGradeExists
		}
		if err != nil && errors.Cause(err) != ErrNotFound {
			return LessonGrade{}, err
		}
	}
	if err = svc.checkEnrollment(ctx, lsn.CourseID, lg.StudentID); err != nil {
		return LessonGrade{}, err
	}

	lg.UpdatedBy = null.IntFrom(actorID)
	lg.UpdatedAt = time.Now().UTC()

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return LessonGrade{}, errors.Wrap(err, "beginning transaction")
	}

	var passedNow bool
	if lg, passedNow, err = svc.updateTx(ctx, tx, lg, lsn.CourseID); err != nil {
		svc.logger.Error(fmt.Sprintf("updating lesson grade %d: %v", id, err), err)
		_ = tx.Rollback()
		return LessonGrade{}, err
	}
	if err = tx.Commit(); err != nil {
		return LessonGrade{}, errors.Wrap(err, "committing transaction")
	}

	if passedNow {
		svc.sendCoursePassedMail(ctx, lsn.CourseID, lg.StudentID)
	}
	return lg, nil
}

func (svc *service) updateTx(ctx context.Context, tx core.DBTransactor, lg LessonGrade, courseID int) (LessonGrade, bool, error) {
	lg, err := svc.repo.UpdateGrade(ctx, lg, tx)
	if err != nil {
		return LessonGrade{}, false, err
	}
	passedNow, err := svc.updateFinalMark(ctx, tx, courseID, lg.StudentID)
	return lg, passedNow, err
}

// Delete removes a grade and recomputes the final mark for the student/course
// pair it belonged to, atomically.
func (svc *service) Delete(ctx context.Context, id int) error {
	lg, err := svc.repo.GetGrade(ctx, id)
	if err != nil {
		return err
	}
	lsn, err := svc.lessonRepo.GetLesson(ctx, lg.LessonID)
	if err != nil {
		return err
	}

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}

	if err = svc.deleteTx(ctx, tx, lg, lsn.CourseID); err != nil {
		svc.logger.Error(fmt.Sprintf("deleting lesson grade %d: %v", id, err), err)
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

func (svc *service) deleteTx(ctx context.Context, tx core.DBTransactor, lg LessonGrade, courseID int) error {
	if err := svc.repo.DeleteGrade(ctx, lg.ID, tx); err != nil {
		return err
	}
	_, err := svc.updateFinalMark(ctx, tx, courseID, lg.StudentID)
	return err
}

func (svc *service) checkEnrollment(ctx context.Context, courseID, studentID int) error {
	if _, err := svc.enrollRepo.GetEnrollment(ctx, courseID, studentID); err != nil {
		if errors.Cause(err) == enrollment.ErrNotFound {
			return core.NewValidationError(errNotEnrolled, core.FieldError{Field: "student_id", Error: errNotEnrolled.Error()})
		}
		return err
	}
	return nil
}

// updateFinalMark recomputes and persists a student's final mark and passed
// state for a course using the transaction-scoped handle. The enrollment row
// is expected to exist: enrollment is checked before any grade is written.
// It reports whether the passed flag flipped from false to true.
func (svc *service) updateFinalMark(ctx context.Context, tx core.DBTransactor, courseID, studentID int) (bool, error) {
	grades, err := svc.repo.QueryGrades(ctx, &QueryFilter{CourseID: courseID, StudentID: studentID}, nil, core.Pagination{}, tx)
	if err != nil {
		return false, err
	}

	var finalMark float64
	if len(grades) > 0 {
		var sum int
		for _, g := range grades {
			sum += g.Grade
		}
		finalMark = float64(sum) / float64(len(grades))
	}

	enr, err := svc.enrollRepo.GetEnrollment(ctx, courseID, studentID, tx)
	if err != nil {
		return false, err
	}
	lessonCount, err := svc.lessonRepo.CountLessons(ctx, courseID, tx)
	if err != nil {
		return false, err
	}

	passed := finalMark >= core.Conf.Courses.PassThreshold && len(grades) == lessonCount
	passedNow := passed && !enr.Passed

	enr.FinalMark = null.Float64From(finalMark)
	enr.Passed = passed
	enr.UpdatedAt = time.Now().UTC()
	if _, err = svc.enrollRepo.UpdateEnrollment(ctx, enr, tx); err != nil {
		return false, err
	}
	return passedNow, nil
}

func (svc *service) sendCoursePassedMail(ctx context.Context, courseID, studentID int) {
	usr, err := svc.userRepo.GetUser(ctx, user.GetFilter{ID: studentID})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("finding student %d for course passed mail: %v", studentID, err), err)
		return
	}
	crs, err := svc.courseRepo.GetCourse(ctx, courseID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("finding course %d for course passed mail: %v", courseID, err), err)
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Course Completed",
		BodyStr: fmt.Sprintf("Congratulations %s,\n\nYou have passed the course %q.", usr.Name, crs.Name),
	})
}
