package lesson_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/course"
	"github.com/darasa-io/darasa/core/grade"
	"github.com/darasa-io/darasa/core/lesson"
	"github.com/darasa-io/darasa/storage/database/dummy"
	"github.com/darasa-io/darasa/tests"
)

func setup(t *testing.T) (lesson.Service, lesson.Repository, course.Repository) {
	t.Helper()

	core.Conf.Courses.MinLessons = 2

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewLessonRepository(db)
	crsRepo := dummydb.NewCourseRepository(db)
	svc := lesson.NewService(db, repo, crsRepo, testutil.NopLogger{})
	return svc, repo, crsRepo
}

func Test_service_Create(t *testing.T) {
	svc, _, crsRepo := setup(t)
	ctx := context.Background()

	crs := testutil.CreateCourse(t, crsRepo, "Maths", false)

	// unknown course is a field error
	if _, err := svc.Create(ctx, lesson.NewLesson{CourseID: 999, Theme: "Algebra"}); err == nil {
		t.Error("Create() expected error for unknown course")
	} else if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("Create() error = %v, want ValidationError", err)
	}

	lsn, err := svc.Create(ctx, lesson.NewLesson{CourseID: crs.ID, Theme: "Algebra", Date: time.Now()})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if lsn.ID == 0 || lsn.Theme != "Algebra" {
		t.Errorf("Create() = %+v", lsn)
	}

	// below the threshold the course stays unavailable
	crs, err = crsRepo.GetCourse(ctx, crs.ID)
	if err != nil {
		t.Fatalf("GetCourse() failed: %v", err)
	}
	if crs.Available {
		t.Error("course should not be available after 1 lesson")
	}

	// the second lesson flips availability
	if _, err = svc.Create(ctx, lesson.NewLesson{CourseID: crs.ID, Theme: "Geometry"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	crs, err = crsRepo.GetCourse(ctx, crs.ID)
	if err != nil {
		t.Fatalf("GetCourse() failed: %v", err)
	}
	if !crs.Available {
		t.Error("course should be available after reaching the lesson threshold")
	}
}

func Test_service_Update(t *testing.T) {
	svc, repo, crsRepo := setup(t)
	ctx := context.Background()

	crs := testutil.CreateCourse(t, crsRepo, "Maths", true)
	other := testutil.CreateCourse(t, crsRepo, "Physics", true)
	lsn := testutil.CreateLesson(t, repo, crs.ID, "Algebra")

	// moving to an unknown course fails
	if _, err := svc.Update(ctx, lsn.ID, lesson.UpdateLesson{CourseID: 999, Theme: lsn.Theme, Date: lsn.Date}); err == nil {
		t.Error("Update() expected error for unknown course")
	} else if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("Update() error = %v, want ValidationError", err)
	}

	updated, err := svc.Update(ctx, lsn.ID, lesson.UpdateLesson{CourseID: other.ID, Theme: "Mechanics", Date: lsn.Date})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.CourseID != other.ID || updated.Theme != "Mechanics" {
		t.Errorf("Update() = %+v", updated)
	}

	if _, err = svc.Update(ctx, 999, lesson.UpdateLesson{Theme: "x"}); errors.Cause(err) != lesson.ErrNotFound {
		t.Errorf("Update() error = %v, want %v", err, lesson.ErrNotFound)
	}
}

func Test_service_Delete(t *testing.T) {
	core.Conf.Courses.MinLessons = 2

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewLessonRepository(db)
	crsRepo := dummydb.NewCourseRepository(db)
	gradeRepo := dummydb.NewGradeRepository(db)
	svc := lesson.NewService(db, repo, crsRepo, testutil.NopLogger{})
	ctx := context.Background()

	crs := testutil.CreateCourse(t, crsRepo, "Maths", true)
	lsn := testutil.CreateLesson(t, repo, crs.ID, "Algebra")

	// a referenced lesson cannot be deleted
	lg, err := gradeRepo.CreateGrade(ctx, grade.LessonGrade{LessonID: lsn.ID, StudentID: 1, Grade: 50})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	if err := svc.Delete(ctx, lsn.ID); err == nil {
		t.Error("Delete() expected error for referenced lesson")
	} else if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("Delete() error = %v, want ValidationError", err)
	}
	if err := gradeRepo.DeleteGrade(ctx, lg.ID); err != nil {
		t.Fatalf("DeleteGrade() failed: %v", err)
	}

	if err := svc.Delete(ctx, lsn.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := repo.GetLesson(ctx, lsn.ID); errors.Cause(err) != lesson.ErrNotFound {
		t.Errorf("GetLesson() error = %v, want %v", err, lesson.ErrNotFound)
	}

	if err := svc.Delete(ctx, 999); errors.Cause(err) != lesson.ErrNotFound {
		t.Errorf("Delete() error = %v, want %v", err, lesson.ErrNotFound)
	}
}
