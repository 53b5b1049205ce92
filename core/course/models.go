package course

import (
	"context"
	"time"

	"github.com/darasa-io/darasa/core"
)

type Course struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Available   bool      `json:"available" db:"available"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewCourse) Validate(ctx context.Context, svc Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)

	if err := core.Validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nc.Name)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Zero fields are left untouched.
type UpdateCourse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (uc *UpdateCourse) Validate(ctx context.Context, origCrs Course, svc Service) error {
	name := core.CleanString(uc.Name)
	if name != "" {
		uc.Name = name
	} else {
		uc.Name = origCrs.Name
	}
	if desc := core.CleanString(uc.Description); desc != "" {
		uc.Description = desc
	} else {
		uc.Description = origCrs.Description
	}

	if err := core.Validate.Struct(uc); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uc.Name, origCrs)
}

type QueryFilter struct {
	Search    string `query:"search"`
	Available *bool  `query:"available"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// RelationCounts reports how many rows in related tables reference a Course;
// a Course may only be deleted when all counts are zero.
type RelationCounts struct {
	Instructors int `db:"instructors"`
	Groups      int `db:"groups"`
	Students    int `db:"students"`
	Lessons     int `db:"lessons"`
}

func (rc RelationCounts) IsZero() bool {
	return rc.Instructors == 0 && rc.Groups == 0 && rc.Students == 0 && rc.Lessons == 0
}
