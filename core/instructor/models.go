package instructor

import (
	"time"

	"github.com/darasa-io/darasa/core"
)

// CourseInstructor assigns an instructor to a Course; unique per
// (course, instructor).
type CourseInstructor struct {
	ID           int       `json:"id" db:"id"`
	CourseID     int       `json:"course_id" db:"course_id"`
	InstructorID int       `json:"instructor_id" db:"instructor_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
}

// NewCourseInstructor contains information needed to assign an instructor to
// a Course.
type NewCourseInstructor struct {
	CourseID     int `json:"course_id" validate:"required"`
	InstructorID int `json:"instructor_id" validate:"required"`
}

func (nc NewCourseInstructor) Validate() error { return core.Validate.Struct(nc) }

type QueryFilter struct {
	CourseID     int `query:"course_id"`
	InstructorID int `query:"instructor_id"`
}
