package dummydb

import (
	"context"
	"sort"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/enrollment"
)

type enrollmentRepository struct {
	db *enrollmentTable
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db.enrollment}
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.StudentCourse, exec ...core.DBExecutor) (enrollment.StudentCourse, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	enr.ID = repo.db.seq
	repo.db.table[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) QueryEnrollments(ctx context.Context, filter *enrollment.QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]enrollment.StudentCourse, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var enrollments []enrollment.StudentCourse
	for _, enr := range repo.db.table {
		if filter != nil {
			if filter.CourseID != 0 && enr.CourseID != filter.CourseID {
				continue
			}
			if filter.StudentID != 0 && enr.StudentID != filter.StudentID {
				continue
			}
			if filter.Passed != nil && enr.Passed != *filter.Passed {
				continue
			}
		}
		enrollments = append(enrollments, *enr)
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].ID < enrollments[j].ID })
	return enrollments, nil
}

func (repo *enrollmentRepository) GetEnrollmentByID(ctx context.Context, id int, exec ...core.DBExecutor) (enrollment.StudentCourse, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if enr, ok := repo.db.table[id]; ok {
		return *enr, nil
	}
	return enrollment.StudentCourse{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, courseID, studentID int, exec ...core.DBExecutor) (enrollment.StudentCourse, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, enr := range repo.db.table {
		if enr.CourseID == courseID && enr.StudentID == studentID {
			return *enr, nil
		}
	}
	return enrollment.StudentCourse{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enrollment.StudentCourse, exec ...core.DBExecutor) (enrollment.StudentCourse, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[enr.ID]; !ok {
		return enrollment.StudentCourse{}, enrollment.ErrNotFound
	}
	repo.db.table[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
