package group

import (
	"context"
	"time"

	"github.com/darasa-io/darasa/core"
)

type Group struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// GroupCourse assigns an available Course to a Group.
type GroupCourse struct {
	ID       int `json:"id" db:"id"`
	GroupID  int `json:"group_id" db:"group_id"`
	CourseID int `json:"course_id" db:"course_id"`
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Name string `json:"name" validate:"required"`
}

func (ng *NewGroup) Validate(ctx context.Context, svc Service) error {
	ng.Name = core.CleanString(ng.Name)
	if err := core.Validate.Struct(ng); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, ng.Name)
}

// UpdateGroup defines what information may be provided to modify an existing Group.
type UpdateGroup struct {
	Name string `json:"name"`
}

func (ug *UpdateGroup) Validate(ctx context.Context, origGrp Group, svc Service) error {
	name := core.CleanString(ug.Name)
	if name != "" {
		ug.Name = name
	} else {
		ug.Name = origGrp.Name
	}
	if err := core.Validate.Struct(ug); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, ug.Name, origGrp)
}

// NewGroupCourse assigns a Course to a Group.
type NewGroupCourse struct {
	CourseID int `json:"course_id" validate:"required"`
}

func (ngc NewGroupCourse) Validate() error { return core.Validate.Struct(ngc) }

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
