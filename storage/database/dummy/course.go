package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) query() []course.Course {
	courses := make([]course.Course, 0, len(repo.db.course.table))
	for _, crs := range repo.db.course.table {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses
}

func (repo *courseRepository) CheckNameUniqueness(ctx context.Context, name string, excludedCourses []course.Course, exec ...core.DBExecutor) error {
	repo.db.course.RLock()
	defer repo.db.course.RUnlock()

	excluded := make(map[int]bool, len(excludedCourses))
	for _, crs := range excludedCourses {
		excluded[crs.ID] = true
	}
	for _, crs := range repo.query() {
		if !excluded[crs.ID] && strings.EqualFold(crs.Name, name) {
			return course.ErrCourseExists
		}
	}
	return nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	repo.db.course.Lock()
	defer repo.db.course.Unlock()

	repo.db.course.seq++
	crs.ID = repo.db.course.seq
	repo.db.course.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]course.Course, error) {
	repo.db.course.RLock()
	defer repo.db.course.RUnlock()

	courses := repo.query()
	if filter != nil {
		if filter.Search != "" {
			var filtered []course.Course
			search := strings.ToLower(filter.Search)
			for _, crs := range courses {
				if strings.Contains(strings.ToLower(crs.Name), search) ||
					strings.Contains(strings.ToLower(crs.Description), search) {
					filtered = append(filtered, crs)
				}
			}
			courses = filtered
		}
		if filter.Available != nil {
			var filtered []course.Course
			for _, crs := range courses {
				if crs.Available == *filter.Available {
					filtered = append(filtered, crs)
				}
			}
			courses = filtered
		}
	}
	return courses, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id int, exec ...core.DBExecutor) (course.Course, error) {
	repo.db.course.RLock()
	defer repo.db.course.RUnlock()

	if crs, ok := repo.db.course.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	repo.db.course.Lock()
	defer repo.db.course.Unlock()

	if _, ok := repo.db.course.table[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.course.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetRelationCounts(ctx context.Context, courseID int, exec ...core.DBExecutor) (course.RelationCounts, error) {
	var counts course.RelationCounts

	repo.db.instructor.RLock()
	for _, ci := range repo.db.instructor.table {
		if ci.CourseID == courseID {
			counts.Instructors++
		}
	}
	repo.db.instructor.RUnlock()

	repo.db.groupCourse.RLock()
	for _, gc := range repo.db.groupCourse.table {
		if gc.CourseID == courseID {
			counts.Groups++
		}
	}
	repo.db.groupCourse.RUnlock()

	repo.db.enrollment.RLock()
	for _, enr := range repo.db.enrollment.table {
		if enr.CourseID == courseID {
			counts.Students++
		}
	}
	repo.db.enrollment.RUnlock()

	repo.db.lesson.RLock()
	for _, lsn := range repo.db.lesson.table {
		if lsn.CourseID == courseID {
			counts.Lessons++
		}
	}
	repo.db.lesson.RUnlock()

	return counts, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.course.Lock()
	defer repo.db.course.Unlock()
	delete(repo.db.course.table, id)
	return nil
}
