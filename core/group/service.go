package group

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
	ErrNotFound    = core.NewNotFoundError("group not found")
	ErrGroupExists = core.NewConflictError("a group with this name already exists")
	ErrGroupCourseExists   = core.NewConflictError("this course is already assigned to this group")
	ErrGroupCourseNotFound = core.NewNotFoundError("group course assignment not found")

	errCourseNotFound     = errors.New("course does not exist")
	errCourseNotAvailable = errors.New("course is not available yet")
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string, excludedGroups []Group, exec ...core.DBExecutor) error
		CreateGroup(ctx context.Context, grp Group, exec ...core.DBExecutor) (Group, error)
		QueryGroups(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Group, error)
		GetGroup(ctx context.Context, id int, exec ...core.DBExecutor) (Group, error)
		UpdateGroup(ctx context.Context, grp Group, exec ...core.DBExecutor) (Group, error)
		// DeleteGroup also detaches the group's course assignments.
		DeleteGroup(ctx context.Context, id int, exec ...core.DBExecutor) error

		GetGroupCourse(ctx context.Context, groupID, courseID int, exec ...core.DBExecutor) (GroupCourse, error)
		CreateGroupCourse(ctx context.Context, gc GroupCourse, exec ...core.DBExecutor) (GroupCourse, error)
		QueryGroupCourses(ctx context.Context, groupID int, exec ...core.DBExecutor) ([]GroupCourse, error)
	}

	Service interface {
		CheckUniqueness(ctx context.Context, name string, exclGroups ...Group) error
		Create(ctx context.Context, ng NewGroup) (Group, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Group, error)
		GetByID(ctx context.Context, id int) (Group, error)
		Update(ctx context.Context, id int, ug UpdateGroup) (Group, error)
		Delete(ctx context.Context, id int) error
		AssignCourse(ctx context.Context, groupID int, ngc NewGroupCourse) (GroupCourse, error)
		QueryCourses(ctx context.Context, groupID int) ([]GroupCourse, error)
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

func (svc *service) CheckUniqueness(ctx context.Context, name string, exclGroups ...Group) error {
	return svc.repo.CheckNameUniqueness(ctx, name, exclGroups)
}

func (svc *service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	now := time.Now().UTC()
	grp := Group{
		Name:      ng.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateGroup(ctx, grp)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Group, error) {
	return svc.repo.QueryGroups(ctx, filter, ordering, page)
}

func (svc *service) GetByID(ctx context.Context, id int) (Group, error) {
	return svc.repo.GetGroup(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, ug UpdateGroup) (Group, error) {
	grp, err := svc.repo.GetGroup(ctx, id)
	if err != nil {
		return Group{}, err
	}
	grp.Name = ug.Name
	grp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGroup(ctx, grp)
}

// Delete removes a Group and detaches its course assignments in one transaction.
func (svc *service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetGroup(ctx, id); err != nil {
		return err
	}

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = svc.repo.DeleteGroup(ctx, id, tx); err != nil {
		svc.logger.Error(fmt.Sprintf("deleting group %d: %v", id, err), err)
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

// AssignCourse attaches an available Course to a Group.
func (svc *service) AssignCourse(ctx context.Context, groupID int, ngc NewGroupCourse) (GroupCourse, error) {
	if _, err := svc.repo.GetGroup(ctx, groupID); err != nil {
		return GroupCourse{}, err
	}
	crs, err := svc.courseRepo.GetCourse(ctx, ngc.CourseID)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return GroupCourse{}, core.NewValidationError(errCourseNotFound, core.FieldError{Field: "course_id", Error: errCourseNotFound.Error()})
		}
		return GroupCourse{}, err
	}
	if !crs.Available {
		return GroupCourse{}, core.NewValidationError(errCourseNotAvailable, core.FieldError{Field: "course_id", Error: errCourseNotAvailable.Error()})
	}
	if _, err := svc.repo.GetGroupCourse(ctx, groupID, ngc.CourseID); err == nil {
		return GroupCourse{}, ErrGroupCourseExists
	} else if errors.Cause(err) != ErrGroupCourseNotFound {
		return GroupCourse{}, err
	}
	return svc.repo.CreateGroupCourse(ctx, GroupCourse{GroupID: groupID, CourseID: ngc.CourseID})
}

func (svc *service) QueryCourses(ctx context.Context, groupID int) ([]GroupCourse, error) {
	if _, err := svc.repo.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return svc.repo.QueryGroupCourses(ctx, groupID)
}
