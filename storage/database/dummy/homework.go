package dummydb

import (
	"context"
	"sort"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/homework"
)

type homeworkRepository struct {
	db *homeworkTable
}

var _ homework.Repository = (*homeworkRepository)(nil) // interface compliance check

func NewHomeworkRepository(db *DB) *homeworkRepository {
	return &homeworkRepository{db: db.homework}
}

func (repo *homeworkRepository) CreateHomework(ctx context.Context, hw homework.Homework, exec ...core.DBExecutor) (homework.Homework, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	hw.ID = repo.db.seq
	repo.db.table[hw.ID] = &hw
	return hw, nil
}

func (repo *homeworkRepository) QueryHomeworks(ctx context.Context, filter *homework.QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]homework.Homework, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var homeworks []homework.Homework
	for _, hw := range repo.db.table {
		if filter != nil {
			if filter.LessonID != 0 && hw.LessonID != filter.LessonID {
				continue
			}
			if filter.StudentID != 0 && hw.StudentID != filter.StudentID {
				continue
			}
		}
		homeworks = append(homeworks, *hw)
	}
	sort.Slice(homeworks, func(i, j int) bool { return homeworks[i].ID < homeworks[j].ID })
	return homeworks, nil
}

func (repo *homeworkRepository) GetHomework(ctx context.Context, id int, exec ...core.DBExecutor) (homework.Homework, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if hw, ok := repo.db.table[id]; ok {
		return *hw, nil
	}
	return homework.Homework{}, homework.ErrNotFound
}

func (repo *homeworkRepository) UpdateHomework(ctx context.Context, hw homework.Homework, exec ...core.DBExecutor) (homework.Homework, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[hw.ID]; !ok {
		return homework.Homework{}, homework.ErrNotFound
	}
	repo.db.table[hw.ID] = &hw
	return hw, nil
}

func (repo *homeworkRepository) DeleteHomework(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
