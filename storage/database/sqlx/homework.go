package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/homework"
)

const homeworkColumns = "id, lesson_id, student_id, comment, file_key, file_name, content_type, created_at, updated_at"

type homeworkRepository struct {
	exec core.DBExecutor
}

var _ homework.Repository = (*homeworkRepository)(nil) // interface compliance check

func NewHomeworkRepository(exec core.DBExecutor) *homeworkRepository {
	return &homeworkRepository{exec: exec}
}

func (repo homeworkRepository) CreateHomework(ctx context.Context, hw homework.Homework, exec ...core.DBExecutor) (homework.Homework, error) {
	const q = `
	INSERT INTO homeworks (lesson_id, student_id, comment, file_key, file_name, content_type, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id`

	err := getExec(repo.exec, exec).GetContext(
		ctx, &hw.ID, q,
		hw.LessonID, hw.StudentID, hw.Comment, hw.FileKey, hw.FileName, hw.ContentType, hw.CreatedAt, hw.UpdatedAt,
	)
	if err != nil {
		return homework.Homework{}, errors.Wrap(err, "inserting homework")
	}
	return hw, nil
}

func (repo homeworkRepository) QueryHomeworks(ctx context.Context, filter *homework.QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]homework.Homework, error) {
	qb := newQueryBuilder(`SELECT ` + homeworkColumns + ` FROM homeworks`)
	if filter != nil {
		if filter.LessonID != 0 {
			qb.whereClause("lesson_id = " + qb.arg(filter.LessonID))
		}
		if filter.StudentID != 0 {
			qb.whereClause("student_id = " + qb.arg(filter.StudentID))
		}
	}

	var homeworks []homework.Homework
	q, args := qb.build(ordering, page)
	if err := getExec(repo.exec, exec).SelectContext(ctx, &homeworks, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying homeworks")
	}
	return homeworks, nil
}

func (repo homeworkRepository) GetHomework(ctx context.Context, id int, exec ...core.DBExecutor) (homework.Homework, error) {
	const q = `SELECT ` + homeworkColumns + ` FROM homeworks WHERE id = $1`

	var hw homework.Homework
	if err := getExec(repo.exec, exec).GetContext(ctx, &hw, q, id); err != nil {
		return homework.Homework{}, trapNoRowsErr(err, homework.ErrNotFound, "getting homework")
	}
	return hw, nil
}

func (repo homeworkRepository) UpdateHomework(ctx context.Context, hw homework.Homework, exec ...core.DBExecutor) (homework.Homework, error) {
	const q = `
	UPDATE homeworks SET comment = $1, file_key = $2, file_name = $3, content_type = $4, updated_at = $5
	WHERE id = $6
	RETURNING ` + homeworkColumns

	var updated homework.Homework
	err := getExec(repo.exec, exec).GetContext(
		ctx, &updated, q,
		hw.Comment, hw.FileKey, hw.FileName, hw.ContentType, hw.UpdatedAt.UTC(), hw.ID,
	)
	if err != nil {
		return homework.Homework{}, trapNoRowsErr(err, homework.ErrNotFound, "updating homework")
	}
	return updated, nil
}

func (repo homeworkRepository) DeleteHomework(ctx context.Context, id int, exec ...core.DBExecutor) error {
	const q = `DELETE FROM homeworks WHERE id = $1`
	if _, err := getExec(repo.exec, exec).ExecContext(ctx, q, id); err != nil {
		return errors.Wrap(err, "deleting homework")
	}
	return nil
}
