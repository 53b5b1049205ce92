package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/lesson"
)

const lessonColumns = "id, course_id, theme, date, created_at, updated_at"

type lessonRepository struct {
	exec core.DBExecutor
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(exec core.DBExecutor) *lessonRepository {
	return &lessonRepository{exec: exec}
}

func (repo lessonRepository) CheckThemeUniqueness(ctx context.Context, theme string, excludedLessons []lesson.Lesson, exec ...core.DBExecutor) error {
	qb := newQueryBuilder(`SELECT COUNT(*) FROM lessons`)
	qb.whereClause("LOWER(theme) = LOWER(" + qb.arg(theme) + ")")
	if len(excludedLessons) > 0 {
		ids := make([]int, 0, len(excludedLessons))
		for _, lsn := range excludedLessons {
			ids = append(ids, lsn.ID)
		}
		qb.whereClause("id NOT IN " + inClause(qb, ids))
	}

	var count int
	q, args := qb.build(nil, core.Pagination{})
	if err := getExec(repo.exec, exec).GetContext(ctx, &count, q, args...); err != nil {
		return errors.Wrap(err, "checking lesson uniqueness")
	}
	if count > 0 {
		return lesson.ErrThemeExists
	}
	return nil
}

func (repo lessonRepository) CreateLesson(ctx context.Context, lsn lesson.Lesson, exec ...core.DBExecutor) (lesson.Lesson, error) {
	const q = `
	INSERT INTO lessons (course_id, theme, date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id`

	err := getExec(repo.exec, exec).GetContext(
		ctx, &lsn.ID, q,
		lsn.CourseID, lsn.Theme, lsn.Date, lsn.CreatedAt, lsn.UpdatedAt,
	)
	if err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "inserting lesson")
	}
	return lsn, nil
}

func (repo lessonRepository) QueryLessons(ctx context.Context, filter *lesson.QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]lesson.Lesson, error) {
	qb := newQueryBuilder(`SELECT ` + lessonColumns + ` FROM lessons`)
	if filter != nil {
		if filter.Search != "" {
			qb.whereClause("theme ILIKE " + qb.arg("%"+filter.Search+"%"))
		}
		if filter.CourseID != 0 {
			qb.whereClause("course_id = " + qb.arg(filter.CourseID))
		}
		if !filter.DateFrom.IsZero() {
			qb.whereClause("date >= " + qb.arg(filter.DateFrom.UTC()))
		}
		if !filter.DateTo.IsZero() {
			qb.whereClause("date <= " + qb.arg(filter.DateTo.UTC()))
		}
	}

	var lessons []lesson.Lesson
	q, args := qb.build(ordering, page)
	if err := getExec(repo.exec, exec).SelectContext(ctx, &lessons, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	return lessons, nil
}

func (repo lessonRepository) GetLesson(ctx context.Context, id int, exec ...core.DBExecutor) (lesson.Lesson, error) {
	const q = `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`

	var lsn lesson.Lesson
	if err := getExec(repo.exec, exec).GetContext(ctx, &lsn, q, id); err != nil {
		return lesson.Lesson{}, trapNoRowsErr(err, lesson.ErrNotFound, "getting lesson")
	}
	return lsn, nil
}

func (repo lessonRepository) UpdateLesson(ctx context.Context, lsn lesson.Lesson, exec ...core.DBExecutor) (lesson.Lesson, error) {
	const q = `
	UPDATE lessons SET course_id = $1, theme = $2, date = $3, updated_at = $4
	WHERE id = $5
	RETURNING ` + lessonColumns

	var updated lesson.Lesson
	err := getExec(repo.exec, exec).GetContext(
		ctx, &updated, q,
		lsn.CourseID, lsn.Theme, lsn.Date, lsn.UpdatedAt.UTC(), lsn.ID,
	)
	if err != nil {
		return lesson.Lesson{}, trapNoRowsErr(err, lesson.ErrNotFound, "updating lesson")
	}
	return updated, nil
}

func (repo lessonRepository) CountLessons(ctx context.Context, courseID int, exec ...core.DBExecutor) (int, error) {
	const q = `SELECT COUNT(*) FROM lessons WHERE course_id = $1`

	var count int
	if err := getExec(repo.exec, exec).GetContext(ctx, &count, q, courseID); err != nil {
		return 0, errors.Wrap(err, "counting lessons")
	}
	return count, nil
}

func (repo lessonRepository) GetRelationCounts(ctx context.Context, lessonID int, exec ...core.DBExecutor) (lesson.RelationCounts, error) {
	const q = `
	SELECT
		(SELECT COUNT(*) FROM lesson_grades WHERE lesson_id = $1) AS grades,
		(SELECT COUNT(*) FROM homeworks WHERE lesson_id = $1) AS homeworks`

	var counts lesson.RelationCounts
	if err := getExec(repo.exec, exec).GetContext(ctx, &counts, q, lessonID); err != nil {
		return lesson.RelationCounts{}, errors.Wrap(err, "counting lesson relations")
	}
	return counts, nil
}

func (repo lessonRepository) DeleteLesson(ctx context.Context, id int, exec ...core.DBExecutor) error {
	const q = `DELETE FROM lessons WHERE id = $1`
	if _, err := getExec(repo.exec, exec).ExecContext(ctx, q, id); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return nil
}
