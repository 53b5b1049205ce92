package dummydb

import (
	"context"
	"sort"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, lg grade.LessonGrade, exec ...core.DBExecutor) (grade.LessonGrade, error) {
	repo.db.grade.Lock()
	defer repo.db.grade.Unlock()

	repo.db.grade.seq++
	lg.ID = repo.db.grade.seq
	repo.db.grade.table[lg.ID] = &lg
	return lg, nil
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter *grade.QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]grade.LessonGrade, error) {
	// course filtering needs the lessons table
	var courseLessons map[int]bool
	if filter != nil && filter.CourseID != 0 {
		courseLessons = make(map[int]bool)
		repo.db.lesson.RLock()
		for _, lsn := range repo.db.lesson.table {
			if lsn.CourseID == filter.CourseID {
				courseLessons[lsn.ID] = true
			}
		}
		repo.db.lesson.RUnlock()
	}

	repo.db.grade.RLock()
	defer repo.db.grade.RUnlock()

	var grades []grade.LessonGrade
	for _, lg := range repo.db.grade.table {
		if filter != nil {
			if filter.LessonID != 0 && lg.LessonID != filter.LessonID {
				continue
			}
			if filter.StudentID != 0 && lg.StudentID != filter.StudentID {
				continue
			}
			if courseLessons != nil && !courseLessons[lg.LessonID] {
				continue
			}
		}
		grades = append(grades, *lg)
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].ID < grades[j].ID })
	return grades, nil
}

func (repo *gradeRepository) GetGrade(ctx context.Context, id int, exec ...core.DBExecutor) (grade.LessonGrade, error) {
	repo.db.grade.RLock()
	defer repo.db.grade.RUnlock()

	if lg, ok := repo.db.grade.table[id]; ok {
		return *lg, nil
	}
	return grade.LessonGrade{}, grade.ErrNotFound
}

func (repo *gradeRepository) GetGradeForLesson(ctx context.Context, lessonID, studentID int, exec ...core.DBExecutor) (grade.LessonGrade, error) {
	repo.db.grade.RLock()
	defer repo.db.grade.RUnlock()

	for _, lg := range repo.db.grade.table {
		if lg.LessonID == lessonID && lg.StudentID == studentID {
			return *lg, nil
		}
	}
	return grade.LessonGrade{}, grade.ErrNotFound
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, lg grade.LessonGrade, exec ...core.DBExecutor) (grade.LessonGrade, error) {
	repo.db.grade.Lock()
	defer repo.db.grade.Unlock()

	if _, ok := repo.db.grade.table[lg.ID]; !ok {
		return grade.LessonGrade{}, grade.ErrNotFound
	}
	repo.db.grade.table[lg.ID] = &lg
	return lg, nil
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.grade.Lock()
	defer repo.db.grade.Unlock()
	delete(repo.db.grade.table, id)
	return nil
}
