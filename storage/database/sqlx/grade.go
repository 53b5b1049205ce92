package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/grade"
)

const gradeColumns = "id, lesson_id, student_id, grade, created_by, updated_by, created_at, updated_at"

type gradeRepository struct {
	exec core.DBExecutor
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(exec core.DBExecutor) *gradeRepository {
	return &gradeRepository{exec: exec}
}

func (repo gradeRepository) CreateGrade(ctx context.Context, lg grade.LessonGrade, exec ...core.DBExecutor) (grade.LessonGrade, error) {
	const q = `
	INSERT INTO lesson_grades (lesson_id, student_id, grade, created_by, updated_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id`

	err := getExec(repo.exec, exec).GetContext(
		ctx, &lg.ID, q,
		lg.LessonID, lg.StudentID, lg.Grade, lg.CreatedBy, lg.UpdatedBy, lg.CreatedAt, lg.UpdatedAt,
	)
	if err != nil {
		return grade.LessonGrade{}, errors.Wrap(err, "inserting lesson grade")
	}
	return lg, nil
}

func (repo gradeRepository) QueryGrades(ctx context.Context, filter *grade.QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]grade.LessonGrade, error) {
	query := `SELECT ` + gradeColumns + ` FROM lesson_grades`
	if filter != nil && filter.CourseID != 0 {
		query = `
		SELECT lg.id, lg.lesson_id, lg.student_id, lg.grade, lg.created_by, lg.updated_by, lg.created_at, lg.updated_at
		FROM lesson_grades lg
		JOIN lessons l ON l.id = lg.lesson_id`
	}

	qb := newQueryBuilder(query)
	if filter != nil {
		if filter.CourseID != 0 {
			qb.whereClause("l.course_id = " + qb.arg(filter.CourseID))
			if filter.LessonID != 0 {
				qb.whereClause("lg.lesson_id = " + qb.arg(filter.LessonID))
			}
			if filter.StudentID != 0 {
				qb.whereClause("lg.student_id = " + qb.arg(filter.StudentID))
			}
		} else {
			if filter.LessonID != 0 {
				qb.whereClause("lesson_id = " + qb.arg(filter.LessonID))
			}
			if filter.StudentID != 0 {
				qb.whereClause("student_id = " + qb.arg(filter.StudentID))
			}
		}
	}

	var grades []grade.LessonGrade
	q, args := qb.build(ordering, page)
	if err := getExec(repo.exec, exec).SelectContext(ctx, &grades, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying lesson grades")
	}
	return grades, nil
}

func (repo gradeRepository) GetGrade(ctx context.Context, id int, exec ...core.DBExecutor) (grade.LessonGrade, error) {
	const q = `SELECT ` + gradeColumns + ` FROM lesson_grades WHERE id = $1`

	var lg grade.LessonGrade
	if err := getExec(repo.exec, exec).GetContext(ctx, &lg, q, id); err != nil {
		return grade.LessonGrade{}, trapNoRowsErr(err, grade.ErrNotFound, "getting lesson grade")
	}
	return lg, nil
}

func (repo gradeRepository) GetGradeForLesson(ctx context.Context, lessonID, studentID int, exec ...core.DBExecutor) (grade.LessonGrade, error) {
	const q = `SELECT ` + gradeColumns + ` FROM lesson_grades WHERE lesson_id = $1 AND student_id = $2`

	var lg grade.LessonGrade
	if err := getExec(repo.exec, exec).GetContext(ctx, &lg, q, lessonID, studentID); err != nil {
		return grade.LessonGrade{}, trapNoRowsErr(err, grade.ErrNotFound, "getting lesson grade")
	}
	return lg, nil
}

func (repo gradeRepository) UpdateGrade(ctx context.Context, lg grade.LessonGrade, exec ...core.DBExecutor) (grade.LessonGrade, error) {
	const q = `
	UPDATE lesson_grades SET lesson_id = $1, student_id = $2, grade = $3, updated_by = $4, updated_at = $5
	WHERE id = $6
	RETURNING ` + gradeColumns

	var updated grade.LessonGrade
	err := getExec(repo.exec, exec).GetContext(
		ctx, &updated, q,
		lg.LessonID, lg.StudentID, lg.Grade, lg.UpdatedBy, lg.UpdatedAt.UTC(), lg.ID,
	)
	if err != nil {
		return grade.LessonGrade{}, trapNoRowsErr(err, grade.ErrNotFound, "updating lesson grade")
	}
	return updated, nil
}

func (repo gradeRepository) DeleteGrade(ctx context.Context, id int, exec ...core.DBExecutor) error {
	const q = `DELETE FROM lesson_grades WHERE id = $1`
	if _, err := getExec(repo.exec, exec).ExecContext(ctx, q, id); err != nil {
		return errors.Wrap(err, "deleting lesson grade")
	}
	return nil
}
