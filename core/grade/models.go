package grade

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/darasa-io/darasa/core"
)

// LessonGrade is a student's grade for one Lesson; unique per (lesson, student).
type LessonGrade struct {
	ID        int       `json:"id" db:"id"`
	LessonID  int       `json:"lesson_id" db:"lesson_id"`
	StudentID int       `json:"student_id" db:"student_id"`
	Grade     int       `json:"grade" db:"grade"`
	CreatedBy int       `json:"created_by" db:"created_by"`
	UpdatedBy null.Int  `json:"updated_by" db:"updated_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewLessonGrade contains information needed to record a new LessonGrade.
type NewLessonGrade struct {
	LessonID  int `json:"lesson_id" validate:"required"`
	StudentID int `json:"student_id" validate:"required"`
	Grade     int `json:"grade" validate:"required,gte=1,lte=100"`
}

func (ng NewLessonGrade) Validate() error { return core.Validate.Struct(ng) }

// UpdateLessonGrade defines what information may be provided to modify an
// existing LessonGrade. Zero fields are left untouched.
type UpdateLessonGrade struct {
	LessonID  int `json:"lesson_id"`
	StudentID int `json:"student_id"`
	Grade     int `json:"grade" validate:"omitempty,gte=1,lte=100"`
}

func (ug UpdateLessonGrade) Validate() error { return core.Validate.Struct(ug) }

type QueryFilter struct {
	LessonID  int `query:"lesson_id"`
	StudentID int `query:"student_id"`
	// CourseID matches grades of all lessons belonging to the course.
	CourseID int `query:"course_id"`
}
