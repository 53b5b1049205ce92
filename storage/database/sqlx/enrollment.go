package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/enrollment"
)

const enrollmentColumns = "id, course_id, student_id, final_mark, feedback, passed, created_at, updated_at"

type enrollmentRepository struct {
	exec core.DBExecutor
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(exec core.DBExecutor) *enrollmentRepository {
	return &enrollmentRepository{exec: exec}
}

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.StudentCourse, exec ...core.DBExecutor) (enrollment.StudentCourse, error) {
	const q = `
	INSERT INTO student_courses (course_id, student_id, final_mark, feedback, passed, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id`

	err := getExec(repo.exec, exec).GetContext(
		ctx, &enr.ID, q,
		enr.CourseID, enr.StudentID, enr.FinalMark, enr.Feedback, enr.Passed, enr.CreatedAt, enr.UpdatedAt,
	)
	if err != nil {
		return enrollment.StudentCourse{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo enrollmentRepository) QueryEnrollments(ctx context.Context, filter *enrollment.QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]enrollment.StudentCourse, error) {
	qb := newQueryBuilder(`SELECT ` + enrollmentColumns + ` FROM student_courses`)
	if filter != nil {
		if filter.CourseID != 0 {
			qb.whereClause("course_id = " + qb.arg(filter.CourseID))
		}
		if filter.StudentID != 0 {
			qb.whereClause("student_id = " + qb.arg(filter.StudentID))
		}
		if filter.Passed != nil {
			qb.whereClause("passed = " + qb.arg(*filter.Passed))
		}
	}

	var enrollments []enrollment.StudentCourse
	q, args := qb.build(ordering, page)
	if err := getExec(repo.exec, exec).SelectContext(ctx, &enrollments, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	return enrollments, nil
}

func (repo enrollmentRepository) GetEnrollmentByID(ctx context.Context, id int, exec ...core.DBExecutor) (enrollment.StudentCourse, error) {
	const q = `SELECT ` + enrollmentColumns + ` FROM student_courses WHERE id = $1`

	var enr enrollment.StudentCourse
	if err := getExec(repo.exec, exec).GetContext(ctx, &enr, q, id); err != nil {
		return enrollment.StudentCourse{}, trapNoRowsErr(err, enrollment.ErrNotFound, "getting enrollment")
	}
	return enr, nil
}

func (repo enrollmentRepository) GetEnrollment(ctx context.Context, courseID, studentID int, exec ...core.DBExecutor) (enrollment.StudentCourse, error) {
	const q = `SELECT ` + enrollmentColumns + ` FROM student_courses WHERE course_id = $1 AND student_id = $2`

	var enr enrollment.StudentCourse
	if err := getExec(repo.exec, exec).GetContext(ctx, &enr, q, courseID, studentID); err != nil {
		return enrollment.StudentCourse{}, trapNoRowsErr(err, enrollment.ErrNotFound, "getting enrollment")
	}
	return enr, nil
}

func (repo enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enrollment.StudentCourse, exec ...core.DBExecutor) (enrollment.StudentCourse, error) {
	const q = `
	UPDATE student_courses SET final_mark = $1, feedback = $2, passed = $3, updated_at = $4
	WHERE id = $5
	RETURNING ` + enrollmentColumns

	var updated enrollment.StudentCourse
	err := getExec(repo.exec, exec).GetContext(
		ctx, &updated, q,
		enr.FinalMark, enr.Feedback, enr.Passed, enr.UpdatedAt.UTC(), enr.ID,
	)
	if err != nil {
		return enrollment.StudentCourse{}, trapNoRowsErr(err, enrollment.ErrNotFound, "updating enrollment")
	}
	return updated, nil
}

func (repo enrollmentRepository) DeleteEnrollment(ctx context.Context, id int, exec ...core.DBExecutor) error {
	const q = `DELETE FROM student_courses WHERE id = $1`
	if _, err := getExec(repo.exec, exec).ExecContext(ctx, q, id); err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return nil
}
