package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/instructor"
)

const instructorColumns = "id, course_id, instructor_id, created_at"

type instructorRepository struct {
	exec core.DBExecutor
}

var _ instructor.Repository = (*instructorRepository)(nil) // interface compliance check

func NewInstructorRepository(exec core.DBExecutor) *instructorRepository {
	return &instructorRepository{exec: exec}
}

func (repo instructorRepository) CreateCourseInstructor(ctx context.Context, ci instructor.CourseInstructor, exec ...core.DBExecutor) (instructor.CourseInstructor, error) {
	const q = `
	INSERT INTO course_instructors (course_id, instructor_id, created_at)
	VALUES ($1, $2, $3)
	RETURNING id`

	err := getExec(repo.exec, exec).GetContext(ctx, &ci.ID, q, ci.CourseID, ci.InstructorID, ci.CreatedAt)
	if err != nil {
		return instructor.CourseInstructor{}, errors.Wrap(err, "inserting course instructor")
	}
	return ci, nil
}

func (repo instructorRepository) QueryCourseInstructors(ctx context.Context, filter *instructor.QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]instructor.CourseInstructor, error) {
	qb := newQueryBuilder(`SELECT ` + instructorColumns + ` FROM course_instructors`)
	if filter != nil {
		if filter.CourseID != 0 {
			qb.whereClause("course_id = " + qb.arg(filter.CourseID))
		}
		if filter.InstructorID != 0 {
			qb.whereClause("instructor_id = " + qb.arg(filter.InstructorID))
		}
	}

	var cis []instructor.CourseInstructor
	q, args := qb.build(ordering, page)
	if err := getExec(repo.exec, exec).SelectContext(ctx, &cis, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying course instructors")
	}
	return cis, nil
}

func (repo instructorRepository) GetCourseInstructorByID(ctx context.Context, id int, exec ...core.DBExecutor) (instructor.CourseInstructor, error) {
	const q = `SELECT ` + instructorColumns + ` FROM course_instructors WHERE id = $1`

	var ci instructor.CourseInstructor
	if err := getExec(repo.exec, exec).GetContext(ctx, &ci, q, id); err != nil {
		return instructor.CourseInstructor{}, trapNoRowsErr(err, instructor.ErrNotFound, "getting course instructor")
	}
	return ci, nil
}

func (repo instructorRepository) GetCourseInstructor(ctx context.Context, courseID, instructorID int, exec ...core.DBExecutor) (instructor.CourseInstructor, error) {
	const q = `SELECT ` + instructorColumns + ` FROM course_instructors WHERE course_id = $1 AND instructor_id = $2`

	var ci instructor.CourseInstructor
	if err := getExec(repo.exec, exec).GetContext(ctx, &ci, q, courseID, instructorID); err != nil {
		return instructor.CourseInstructor{}, trapNoRowsErr(err, instructor.ErrNotFound, "getting course instructor")
	}
	return ci, nil
}

func (repo instructorRepository) DeleteCourseInstructor(ctx context.Context, id int, exec ...core.DBExecutor) error {
	const q = `DELETE FROM course_instructors WHERE id = $1`
	if _, err := getExec(repo.exec, exec).ExecContext(ctx, q, id); err != nil {
		return errors.Wrap(err, "deleting course instructor")
	}
	return nil
}
