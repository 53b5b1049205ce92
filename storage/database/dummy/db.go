// Package dummydb provides in-memory repositories for tests.
package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/course"
	"github.com/darasa-io/darasa/core/enrollment"
	"github.com/darasa-io/darasa/core/grade"
	"github.com/darasa-io/darasa/core/group"
	"github.com/darasa-io/darasa/core/homework"
	"github.com/darasa-io/darasa/core/instructor"
	"github.com/darasa-io/darasa/core/lesson"
	"github.com/darasa-io/darasa/core/user"
)

type (
	DB struct {
		user        *userTable
		course      *courseTable
		group       *groupTable
		groupCourse *groupCourseTable
		lesson      *lessonTable
		homework    *homeworkTable
		grade       *gradeTable
		enrollment  *enrollmentTable
		instructor  *instructorTable
	}

	userTable struct {
		sync.RWMutex
		seq   int
		table map[int]*user.User
	}
	courseTable struct {
		sync.RWMutex
		seq   int
		table map[int]*course.Course
	}
	groupTable struct {
		sync.RWMutex
		seq   int
		table map[int]*group.Group
	}
	groupCourseTable struct {
		sync.RWMutex
		seq   int
		table map[int]*group.GroupCourse
	}
	lessonTable struct {
		sync.RWMutex
		seq   int
		table map[int]*lesson.Lesson
	}
	homeworkTable struct {
		sync.RWMutex
		seq   int
		table map[int]*homework.Homework
	}
	gradeTable struct {
		sync.RWMutex
		seq   int
		table map[int]*grade.LessonGrade
	}
	enrollmentTable struct {
		sync.RWMutex
		seq   int
		table map[int]*enrollment.StudentCourse
	}
	instructorTable struct {
		sync.RWMutex
		seq   int
		table map[int]*instructor.CourseInstructor
	}
)

var _ core.DB = (*DB)(nil) // interface compliance check

func Open() (*DB, error) {
	db := &DB{
		user:        &userTable{table: make(map[int]*user.User)},
		course:      &courseTable{table: make(map[int]*course.Course)},
		group:       &groupTable{table: make(map[int]*group.Group)},
		groupCourse: &groupCourseTable{table: make(map[int]*group.GroupCourse)},
		lesson:      &lessonTable{table: make(map[int]*lesson.Lesson)},
		homework:    &homeworkTable{table: make(map[int]*homework.Homework)},
		grade:       &gradeTable{table: make(map[int]*grade.LessonGrade)},
		enrollment:  &enrollmentTable{table: make(map[int]*enrollment.StudentCourse)},
		instructor:  &instructorTable{table: make(map[int]*instructor.CourseInstructor)},
	}
	return db, nil
}

// Reset truncates all tables.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.seq, db.user.table = 0, make(map[int]*user.User)
	db.user.Unlock()

	db.course.Lock()
	db.course.seq, db.course.table = 0, make(map[int]*course.Course)
	db.course.Unlock()

	db.group.Lock()
	db.group.seq, db.group.table = 0, make(map[int]*group.Group)
	db.group.Unlock()

	db.groupCourse.Lock()
	db.groupCourse.seq, db.groupCourse.table = 0, make(map[int]*group.GroupCourse)
	db.groupCourse.Unlock()

	db.lesson.Lock()
	db.lesson.seq, db.lesson.table = 0, make(map[int]*lesson.Lesson)
	db.lesson.Unlock()

	db.homework.Lock()
	db.homework.seq, db.homework.table = 0, make(map[int]*homework.Homework)
	db.homework.Unlock()

	db.grade.Lock()
	db.grade.seq, db.grade.table = 0, make(map[int]*grade.LessonGrade)
	db.grade.Unlock()

	db.enrollment.Lock()
	db.enrollment.seq, db.enrollment.table = 0, make(map[int]*enrollment.StudentCourse)
	db.enrollment.Unlock()

	db.instructor.Lock()
	db.instructor.seq, db.instructor.table = 0, make(map[int]*instructor.CourseInstructor)
	db.instructor.Unlock()
}

// The in-memory store has no SQL surface; repositories reach their tables
// directly and transactions are no-ops.

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (db *DB) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}

func (db *DB) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}

func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (core.DBTransactor, error) {
	return noopTx{}, nil
}

type noopTx struct{}

func (tx noopTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (tx noopTx) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}

func (tx noopTx) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}

func (tx noopTx) Commit() error   { return nil }
func (tx noopTx) Rollback() error { return nil }
