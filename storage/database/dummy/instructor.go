package dummydb

import (
	"context"
	"sort"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/instructor"
)

type instructorRepository struct {
	db *instructorTable
}

var _ instructor.Repository = (*instructorRepository)(nil) // interface compliance check

func NewInstructorRepository(db *DB) *instructorRepository {
	return &instructorRepository{db: db.instructor}
}

func (repo *instructorRepository) CreateCourseInstructor(ctx context.Context, ci instructor.CourseInstructor, exec ...core.DBExecutor) (instructor.CourseInstructor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	ci.ID = repo.db.seq
	repo.db.table[ci.ID] = &ci
	return ci, nil
}

func (repo *instructorRepository) QueryCourseInstructors(ctx context.Context, filter *instructor.QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]instructor.CourseInstructor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var cis []instructor.CourseInstructor
	for _, ci := range repo.db.table {
		if filter != nil {
			if filter.CourseID != 0 && ci.CourseID != filter.CourseID {
				continue
			}
			if filter.InstructorID != 0 && ci.InstructorID != filter.InstructorID {
				continue
			}
		}
		cis = append(cis, *ci)
	}
	sort.Slice(cis, func(i, j int) bool { return cis[i].ID < cis[j].ID })
	return cis, nil
}

func (repo *instructorRepository) GetCourseInstructorByID(ctx context.Context, id int, exec ...core.DBExecutor) (instructor.CourseInstructor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ci, ok := repo.db.table[id]; ok {
		return *ci, nil
	}
	return instructor.CourseInstructor{}, instructor.ErrNotFound
}

func (repo *instructorRepository) GetCourseInstructor(ctx context.Context, courseID, instructorID int, exec ...core.DBExecutor) (instructor.CourseInstructor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, ci := range repo.db.table {
		if ci.CourseID == courseID && ci.InstructorID == instructorID {
			return *ci, nil
		}
	}
	return instructor.CourseInstructor{}, instructor.ErrNotFound
}

func (repo *instructorRepository) DeleteCourseInstructor(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
