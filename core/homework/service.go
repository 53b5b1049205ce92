package homework

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/lesson"
	"github.com/darasa-io/darasa/core/user"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("homework not found")

	errLessonNotFound  = errors.New("lesson does not exist")
	errStudentNotFound = errors.New("student does not exist")
)

type (
	Repository interface {
		CreateHomework(ctx context.Context, hw Homework, exec ...core.DBExecutor) (Homework, error)
		QueryHomeworks(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Homework, error)
		GetHomework(ctx context.Context, id int, exec ...core.DBExecutor) (Homework, error)
		UpdateHomework(ctx context.Context, hw Homework, exec ...core.DBExecutor) (Homework, error)
		DeleteHomework(ctx context.Context, id int, exec ...core.DBExecutor) error
	}

	Service interface {
		Create(ctx context.Context, nh NewHomework, attachment *core.Attachment) (Homework, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Homework, error)
		GetByID(ctx context.Context, id int) (Homework, error)
		Update(ctx context.Context, id int, uh UpdateHomework, attachment *core.Attachment) (Homework, error)
		Delete(ctx context.Context, id int) error
		View(ctx context.Context, hw Homework) (View, error)
	}

	service struct {
		repo       Repository
		lessonRepo lesson.Repository
		userRepo   user.Repository
		fileStore  core.FileStorage
		logger     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, lessonRepo lesson.Repository, userRepo user.Repository, fileStore core.FileStorage, logger core.Logger) Service {
	return &service{
		repo:       repo,
		lessonRepo: lessonRepo,
		userRepo:   userRepo,
		fileStore:  fileStore,
		logger:     logger,
	}
}

func (svc *service) Create(ctx context.Context, nh NewHomework, attachment *core.Attachment) (Homework, error) {
	if _, err := svc.lessonRepo.GetLesson(ctx, nh.LessonID); err != nil {
		if errors.Cause(err) == lesson.ErrNotFound {
			return Homework{}, core.NewValidationError(errLessonNotFound, core.FieldError{Field: "lesson_id", Error: errLessonNotFound.Error()})
		}
		return Homework{}, err
	}
	if _, err := svc.userRepo.GetUser(ctx, user.GetFilter{ID: nh.StudentID}); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Homework{}, core.NewValidationError(errStudentNotFound, core.FieldError{Field: "student_id", Error: errStudentNotFound.Error()})
		}
		return Homework{}, err
	}

	now := time.Now().UTC()
	hw := Homework{
		LessonID:  nh.LessonID,
		StudentID: nh.StudentID,
		Comment:   nh.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if attachment != nil {
		key := objectKey(hw.LessonID, hw.StudentID, attachment.Filename)
		if err := svc.fileStore.UploadFile(ctx, key, attachment.Content, attachment.ContentType); err != nil {
			return Homework{}, errors.Wrap(err, "uploading homework attachment")
		}
		hw.FileKey = null.StringFrom(key)
		hw.FileName = null.StringFrom(attachment.Filename)
		hw.ContentType = null.StringFrom(attachment.ContentType)
	}
	return svc.repo.CreateHomework(ctx, hw)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Homework, error) {
	return svc.repo.QueryHomeworks(ctx, filter, ordering, page)
}

func (svc *service) GetByID(ctx context.Context, id int) (Homework, error) {
	return svc.repo.GetHomework(ctx, id)
}

// Update patches the comment and, when a new attachment is provided, replaces
// the stored object. The previous object is deleted best-effort after the row
// is updated.
func (svc *service) Update(ctx context.Context, id int, uh UpdateHomework, attachment *core.Attachment) (Homework, error) {
	hw, err := svc.repo.GetHomework(ctx, id)
	if err != nil {
		return Homework{}, err
	}

	if uh.Comment != "" {
		hw.Comment = uh.Comment
	}
	oldKey := ""
	if attachment != nil {
		key := objectKey(hw.LessonID, hw.StudentID, attachment.Filename)
		if err = svc.fileStore.UploadFile(ctx, key, attachment.Content, attachment.ContentType); err != nil {
			return Homework{}, errors.Wrap(err, "uploading homework attachment")
		}
		if hw.FileKey.Valid {
			oldKey = hw.FileKey.String
		}
		hw.FileKey = null.StringFrom(key)
		hw.FileName = null.StringFrom(attachment.Filename)
		hw.ContentType = null.StringFrom(attachment.ContentType)
	}
	hw.UpdatedAt = time.Now().UTC()

	hw, err = svc.repo.UpdateHomework(ctx, hw)
	if err != nil {
		return Homework{}, err
	}
	if oldKey != "" {
		if err = svc.fileStore.DeleteObject(ctx, oldKey); err != nil {
			svc.logger.Error("deleting replaced homework attachment", err)
		}
	}
	return hw, nil
}

func (svc *service) Delete(ctx context.Context, id int) error {
	hw, err := svc.repo.GetHomework(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteHomework(ctx, id); err != nil {
		return err
	}
	if hw.FileKey.Valid {
		if err = svc.fileStore.DeleteObject(ctx, hw.FileKey.String); err != nil {
			svc.logger.Error("deleting homework attachment", err)
		}
	}
	return nil
}

func (svc *service) View(ctx context.Context, hw Homework) (View, error) {
	return NewView(ctx, svc.fileStore, hw)
}

// objectKey namespaces attachments per (lesson, student) and randomizes the
// name so uploads never collide.
func objectKey(lessonID, studentID int, filename string) string {
	return fmt.Sprintf("homeworks/%d/%d/%s%s", lessonID, studentID, uuid.New().String(), filepath.Ext(filename))
}
