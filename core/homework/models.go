package homework

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/darasa-io/darasa/core"
)

// Homework is a student's submission for a Lesson, optionally carrying an
// attachment stored in the external object store.
type Homework struct {
	ID          int         `json:"id" db:"id"`
	LessonID    int         `json:"lesson_id" db:"lesson_id"`
	StudentID   int         `json:"student_id" db:"student_id"`
	Comment     string      `json:"comment" db:"comment"`
	FileKey     null.String `json:"-" db:"file_key"`
	FileName    null.String `json:"file_name" db:"file_name"`
	ContentType null.String `json:"content_type" db:"content_type"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

// View is the API projection of a Homework; FileURL is a pre-signed read URL
// with a limited lifetime.
type View struct {
	Homework
	FileURL string `json:"file_url,omitempty"`
}

// NewView projects a Homework onto its API shape, signing a read URL for the
// attachment when one is stored.
func NewView(ctx context.Context, fileStore core.FileStorage, hw Homework) (View, error) {
	view := View{Homework: hw}
	if hw.FileKey.Valid {
		url, err := fileStore.SignedReadURL(ctx, hw.FileKey.String, core.Conf.Storage.SignedURLTTL)
		if err != nil {
			return View{}, err
		}
		view.FileURL = url
	}
	return view, nil
}

// NewHomework contains information needed to create a new Homework.
type NewHomework struct {
	LessonID  int    `json:"lesson_id" form:"lesson_id" validate:"required"`
	StudentID int    `json:"student_id" form:"student_id" validate:"required"`
	Comment   string `json:"comment" form:"comment"`
}

func (nh *NewHomework) Validate() error {
	nh.Comment = core.CleanString(nh.Comment)
	return core.Validate.Struct(nh)
}

// UpdateHomework defines what information may be provided to modify an
// existing Homework. Zero fields are left untouched.
type UpdateHomework struct {
	Comment string `json:"comment" form:"comment"`
}

func (uh *UpdateHomework) Validate() error {
	uh.Comment = core.CleanString(uh.Comment)
	return core.Validate.Struct(uh)
}

type QueryFilter struct {
	LessonID  int `query:"lesson_id"`
	StudentID int `query:"student_id"`
}
