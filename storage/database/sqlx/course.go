package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/course"
)

const courseColumns = "id, name, description, available, created_at, updated_at"

type courseRepository struct {
	exec core.DBExecutor
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{exec: exec}
}

func (repo courseRepository) CheckNameUniqueness(ctx context.Context, name string, excludedCourses []course.Course, exec ...core.DBExecutor) error {
	qb := newQueryBuilder(`SELECT COUNT(*) FROM courses`)
	qb.whereClause("LOWER(name) = LOWER(" + qb.arg(name) + ")")
	if len(excludedCourses) > 0 {
		ids := make([]int, 0, len(excludedCourses))
		for _, crs := range excludedCourses {
			ids = append(ids, crs.ID)
		}
		qb.whereClause("id NOT IN " + inClause(qb, ids))
	}

	var count int
	q, args := qb.build(nil, core.Pagination{})
	if err := getExec(repo.exec, exec).GetContext(ctx, &count, q, args...); err != nil {
		return errors.Wrap(err, "checking course uniqueness")
	}
	if count > 0 {
		return course.ErrCourseExists
	}
	return nil
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	const q = `
	INSERT INTO courses (name, description, available, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id`

	err := getExec(repo.exec, exec).GetContext(
		ctx, &crs.ID, q,
		crs.Name, crs.Description, crs.Available, crs.CreatedAt, crs.UpdatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]course.Course, error) {
	qb := newQueryBuilder(`SELECT ` + courseColumns + ` FROM courses`)
	if filter != nil {
		if filter.Search != "" {
			search := qb.arg("%" + filter.Search + "%")
			qb.whereClause(fmt.Sprintf("(name ILIKE %[1]s OR description ILIKE %[1]s)", search))
		}
		if filter.Available != nil {
			qb.whereClause("available = " + qb.arg(*filter.Available))
		}
	}

	var courses []course.Course
	q, args := qb.build(ordering, page)
	if err := getExec(repo.exec, exec).SelectContext(ctx, &courses, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, id int, exec ...core.DBExecutor) (course.Course, error) {
	const q = `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	var crs course.Course
	if err := getExec(repo.exec, exec).GetContext(ctx, &crs, q, id); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "getting course")
	}
	return crs, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	const q = `
	UPDATE courses SET name = $1, description = $2, available = $3, updated_at = $4
	WHERE id = $5
	RETURNING ` + courseColumns

	var updated course.Course
	err := getExec(repo.exec, exec).GetContext(
		ctx, &updated, q,
		crs.Name, crs.Description, crs.Available, crs.UpdatedAt.UTC(), crs.ID,
	)
	if err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "updating course")
	}
	return updated, nil
}

func (repo courseRepository) GetRelationCounts(ctx context.Context, courseID int, exec ...core.DBExecutor) (course.RelationCounts, error) {
	const q = `
	SELECT
		(SELECT COUNT(*) FROM course_instructors WHERE course_id = $1) AS instructors,
		(SELECT COUNT(*) FROM group_courses WHERE course_id = $1) AS groups,
		(SELECT COUNT(*) FROM student_courses WHERE course_id = $1) AS students,
		(SELECT COUNT(*) FROM lessons WHERE course_id = $1) AS lessons`

	var counts course.RelationCounts
	if err := getExec(repo.exec, exec).GetContext(ctx, &counts, q, courseID); err != nil {
		return course.RelationCounts{}, errors.Wrap(err, "counting course relations")
	}
	return counts, nil
}

func (repo courseRepository) DeleteCourse(ctx context.Context, id int, exec ...core.DBExecutor) error {
	const q = `DELETE FROM courses WHERE id = $1`
	if _, err := getExec(repo.exec, exec).ExecContext(ctx, q, id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}
