package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/group"
)

const groupColumns = "id, name, created_at, updated_at"

type groupRepository struct {
	exec core.DBExecutor
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(exec core.DBExecutor) *groupRepository {
	return &groupRepository{exec: exec}
}

func (repo groupRepository) CheckNameUniqueness(ctx context.Context, name string, excludedGroups []group.Group, exec ...core.DBExecutor) error {
	qb := newQueryBuilder(`SELECT COUNT(*) FROM groups`)
	qb.whereClause("LOWER(name) = LOWER(" + qb.arg(name) + ")")
	if len(excludedGroups) > 0 {
		ids := make([]int, 0, len(excludedGroups))
		for _, grp := range excludedGroups {
			ids = append(ids, grp.ID)
		}
		qb.whereClause("id NOT IN " + inClause(qb, ids))
	}

	var count int
	q, args := qb.build(nil, core.Pagination{})
	if err := getExec(repo.exec, exec).GetContext(ctx, &count, q, args...); err != nil {
		return errors.Wrap(err, "checking group uniqueness")
	}
	if count > 0 {
		return group.ErrGroupExists
	}
	return nil
}

func (repo groupRepository) CreateGroup(ctx context.Context, grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	const q = `INSERT INTO groups (name, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`

	err := getExec(repo.exec, exec).GetContext(ctx, &grp.ID, q, grp.Name, grp.CreatedAt, grp.UpdatedAt)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "inserting group")
	}
	return grp, nil
}

func (repo groupRepository) QueryGroups(ctx context.Context, filter *group.QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]group.Group, error) {
	qb := newQueryBuilder(`SELECT ` + groupColumns + ` FROM groups`)
	if filter != nil && filter.Search != "" {
		qb.whereClause("name ILIKE " + qb.arg("%"+filter.Search+"%"))
	}

	var groups []group.Group
	q, args := qb.build(ordering, page)
	if err := getExec(repo.exec, exec).SelectContext(ctx, &groups, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	return groups, nil
}

func (repo groupRepository) GetGroup(ctx context.Context, id int, exec ...core.DBExecutor) (group.Group, error) {
	const q = `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`

	var grp group.Group
	if err := getExec(repo.exec, exec).GetContext(ctx, &grp, q, id); err != nil {
		return group.Group{}, trapNoRowsErr(err, group.ErrNotFound, "getting group")
	}
	return grp, nil
}

func (repo groupRepository) UpdateGroup(ctx context.Context, grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	const q = `UPDATE groups SET name = $1, updated_at = $2 WHERE id = $3 RETURNING ` + groupColumns

	var updated group.Group
	if err := getExec(repo.exec, exec).GetContext(ctx, &updated, q, grp.Name, grp.UpdatedAt.UTC(), grp.ID); err != nil {
		return group.Group{}, trapNoRowsErr(err, group.ErrNotFound, "updating group")
	}
	return updated, nil
}

// DeleteGroup drops the group's course assignments along with it.
func (repo groupRepository) DeleteGroup(ctx context.Context, id int, exec ...core.DBExecutor) error {
	ex := getExec(repo.exec, exec)
	if _, err := ex.ExecContext(ctx, `DELETE FROM group_courses WHERE group_id = $1`, id); err != nil {
		return errors.Wrap(err, "detaching group courses")
	}
	if _, err := ex.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return nil
}

func (repo groupRepository) GetGroupCourse(ctx context.Context, groupID, courseID int, exec ...core.DBExecutor) (group.GroupCourse, error) {
	const q = `SELECT id, group_id, course_id FROM group_courses WHERE group_id = $1 AND course_id = $2`

	var gc group.GroupCourse
	if err := getExec(repo.exec, exec).GetContext(ctx, &gc, q, groupID, courseID); err != nil {
		return group.GroupCourse{}, trapNoRowsErr(err, group.ErrGroupCourseNotFound, "getting group course")
	}
	return gc, nil
}

func (repo groupRepository) CreateGroupCourse(ctx context.Context, gc group.GroupCourse, exec ...core.DBExecutor) (group.GroupCourse, error) {
	const q = `INSERT INTO group_courses (group_id, course_id) VALUES ($1, $2) RETURNING id`

	err := getExec(repo.exec, exec).GetContext(ctx, &gc.ID, q, gc.GroupID, gc.CourseID)
	if err != nil {
		return group.GroupCourse{}, errors.Wrap(err, "inserting group course")
	}
	return gc, nil
}

func (repo groupRepository) QueryGroupCourses(ctx context.Context, groupID int, exec ...core.DBExecutor) ([]group.GroupCourse, error) {
	const q = `SELECT id, group_id, course_id FROM group_courses WHERE group_id = $1 ORDER BY id`

	var gcs []group.GroupCourse
	if err := getExec(repo.exec, exec).SelectContext(ctx, &gcs, q, groupID); err != nil {
		return nil, errors.Wrap(err, "querying group courses")
	}
	return gcs, nil
}
