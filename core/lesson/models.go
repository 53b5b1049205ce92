package lesson

import (
	"context"
	"time"

	"github.com/darasa-io/darasa/core"
)

type Lesson struct {
	ID        int       `json:"id" db:"id"`
	CourseID  int       `json:"course_id" db:"course_id"`
	Theme     string    `json:"theme" db:"theme"`
	Date      time.Time `json:"date" db:"date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewLesson contains information needed to create a new Lesson.
type NewLesson struct {
	CourseID int       `json:"course_id" validate:"required"`
	Theme    string    `json:"theme" validate:"required"`
	Date     time.Time `json:"date"`
}

func (nl *NewLesson) Validate(ctx context.Context, svc Service) error {
	nl.Theme = core.CleanString(nl.Theme)
	if err := core.Validate.Struct(nl); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nl.Theme)
}

// UpdateLesson defines what information may be provided to modify an existing
// Lesson. Zero fields are left untouched.
type UpdateLesson struct {
	CourseID int       `json:"course_id"`
	Theme    string    `json:"theme"`
	Date     time.Time `json:"date"`
}

func (ul *UpdateLesson) Validate(ctx context.Context, origLsn Lesson, svc Service) error {
	if ul.CourseID == 0 {
		ul.CourseID = origLsn.CourseID
	}
	theme := core.CleanString(ul.Theme)
	if theme != "" {
		ul.Theme = theme
	} else {
		ul.Theme = origLsn.Theme
	}
	if ul.Date.IsZero() {
		ul.Date = origLsn.Date
	}

	if err := core.Validate.Struct(ul); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, ul.Theme, origLsn)
}

type QueryFilter struct {
	Search   string    `query:"search"`
	CourseID int       `query:"course_id"`
	DateFrom time.Time `query:"date_from"`
	DateTo   time.Time `query:"date_to"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// RelationCounts reports how many rows in related tables reference a Lesson;
// a Lesson may only be deleted when all counts are zero.
type RelationCounts struct {
	Grades    int `db:"grades"`
	Homeworks int `db:"homeworks"`
}

func (rc RelationCounts) IsZero() bool {
	return rc.Grades == 0 && rc.Homeworks == 0
}
