package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/lesson"
)

type lessonRepository struct {
	db *DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *DB) *lessonRepository {
	return &lessonRepository{db: db}
}

func (repo *lessonRepository) query() []lesson.Lesson {
	lessons := make([]lesson.Lesson, 0, len(repo.db.lesson.table))
	for _, lsn := range repo.db.lesson.table {
		lessons = append(lessons, *lsn)
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].ID < lessons[j].ID })
	return lessons
}

func (repo *lessonRepository) CheckThemeUniqueness(ctx context.Context, theme string, excludedLessons []lesson.Lesson, exec ...core.DBExecutor) error {
	repo.db.lesson.RLock()
	defer repo.db.lesson.RUnlock()

	excluded := make(map[int]bool, len(excludedLessons))
	for _, lsn := range excludedLessons {
		excluded[lsn.ID] = true
	}
	for _, lsn := range repo.query() {
		if !excluded[lsn.ID] && strings.EqualFold(lsn.Theme, theme) {
			return lesson.ErrThemeExists
		}
	}
	return nil
}

func (repo *lessonRepository) CreateLesson(ctx context.Context, lsn lesson.Lesson, exec ...core.DBExecutor) (lesson.Lesson, error) {
	repo.db.lesson.Lock()
	defer repo.db.lesson.Unlock()

	repo.db.lesson.seq++
	lsn.ID = repo.db.lesson.seq
	repo.db.lesson.table[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *lessonRepository) QueryLessons(ctx context.Context, filter *lesson.QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]lesson.Lesson, error) {
	repo.db.lesson.RLock()
	defer repo.db.lesson.RUnlock()

	lessons := repo.query()
	if filter != nil {
		if filter.Search != "" {
			var filtered []lesson.Lesson
			search := strings.ToLower(filter.Search)
			for _, lsn := range lessons {
				if strings.Contains(strings.ToLower(lsn.Theme), search) {
					filtered = append(filtered, lsn)
				}
			}
			lessons = filtered
		}
		if filter.CourseID != 0 {
			var filtered []lesson.Lesson
			for _, lsn := range lessons {
				if lsn.CourseID == filter.CourseID {
					filtered = append(filtered, lsn)
				}
			}
			lessons = filtered
		}
		if !filter.DateFrom.IsZero() {
			var filtered []lesson.Lesson
			from := filter.DateFrom.UTC()
			for _, lsn := range lessons {
				if !lsn.Date.Before(from) {
					filtered = append(filtered, lsn)
				}
			}
			lessons = filtered
		}
		if !filter.DateTo.IsZero() {
			var filtered []lesson.Lesson
			to := filter.DateTo.UTC()
			for _, lsn := range lessons {
				if !lsn.Date.After(to) {
					filtered = append(filtered, lsn)
				}
			}
			lessons = filtered
		}
	}
	return lessons, nil
}

func (repo *lessonRepository) GetLesson(ctx context.Context, id int, exec ...core.DBExecutor) (lesson.Lesson, error) {
	repo.db.lesson.RLock()
	defer repo.db.lesson.RUnlock()

	if lsn, ok := repo.db.lesson.table[id]; ok {
		return *lsn, nil
	}
	return lesson.Lesson{}, lesson.ErrNotFound
}

func (repo *lessonRepository) UpdateLesson(ctx context.Context, lsn lesson.Lesson, exec ...core.DBExecutor) (lesson.Lesson, error) {
	repo.db.lesson.Lock()
	defer repo.db.lesson.Unlock()

	if _, ok := repo.db.lesson.table[lsn.ID]; !ok {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	repo.db.lesson.table[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *lessonRepository) CountLessons(ctx context.Context, courseID int, exec ...core.DBExecutor) (int, error) {
	repo.db.lesson.RLock()
	defer repo.db.lesson.RUnlock()

	var count int
	for _, lsn := range repo.db.lesson.table {
		if lsn.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (repo *lessonRepository) GetRelationCounts(ctx context.Context, lessonID int, exec ...core.DBExecutor) (lesson.RelationCounts, error) {
	var counts lesson.RelationCounts

	repo.db.grade.RLock()
	for _, lg := range repo.db.grade.table {
		if lg.LessonID == lessonID {
			counts.Grades++
		}
	}
	repo.db.grade.RUnlock()

	repo.db.homework.RLock()
	for _, hw := range repo.db.homework.table {
		if hw.LessonID == lessonID {
			counts.Homeworks++
		}
	}
	repo.db.homework.RUnlock()

	return counts, nil
}

func (repo *lessonRepository) DeleteLesson(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.lesson.Lock()
	defer repo.db.lesson.Unlock()
	delete(repo.db.lesson.table, id)
	return nil
}
