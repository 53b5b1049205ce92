package enrollment

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/darasa-io/darasa/core"
)

// StudentCourse enrolls a student in a Course and carries the computed course
// outcome: FinalMark mirrors the mean of the student's lesson grades for the
// course and Passed whether the threshold was met on a fully graded course.
type StudentCourse struct {
	ID        int          `json:"id" db:"id"`
	CourseID  int          `json:"course_id" db:"course_id"`
	StudentID int          `json:"student_id" db:"student_id"`
	FinalMark null.Float64 `json:"final_mark" db:"final_mark"`
	Feedback  null.String  `json:"feedback" db:"feedback"`
	Passed    bool         `json:"passed" db:"passed"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"` // UTC
}

// NewStudentCourse contains information needed to enroll a student in a Course.
type NewStudentCourse struct {
	CourseID  int `json:"course_id" validate:"required"`
	StudentID int `json:"student_id" validate:"required"`
}

func (ne NewStudentCourse) Validate() error { return core.Validate.Struct(ne) }

// UpdateStudentCourse is the administrative override of an enrollment's
// computed fields; nil fields are left untouched. It writes the same columns
// as the grade-driven recomputation — whichever writes last wins.
type UpdateStudentCourse struct {
	FinalMark *float64 `json:"final_mark" validate:"omitempty,gte=0,lte=100"`
	Feedback  *string  `json:"feedback"`
	Passed    *bool    `json:"passed"`
}

func (ue UpdateStudentCourse) Validate() error { return core.Validate.Struct(ue) }

type QueryFilter struct {
	CourseID  int   `query:"course_id"`
	StudentID int   `query:"student_id"`
	Passed    *bool `query:"passed"`
}
