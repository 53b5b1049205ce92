package group_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/course"
	"github.com/darasa-io/darasa/core/group"
	"github.com/darasa-io/darasa/storage/database/dummy"
	"github.com/darasa-io/darasa/tests"
)

func setup(t *testing.T) (group.Service, group.Repository, course.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewGroupRepository(db)
	crsRepo := dummydb.NewCourseRepository(db)
	return group.NewService(db, repo, crsRepo, testutil.NopLogger{}), repo, crsRepo
}

func Test_service_CRUD(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	grp, err := svc.Create(ctx, group.NewGroup{Name: "Grade 7A"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// names are unique, case-insensitively
	if err = svc.CheckUniqueness(ctx, "grade 7a"); errors.Cause(err) != group.ErrGroupExists {
		t.Errorf("CheckUniqueness() error = %v, want %v", err, group.ErrGroupExists)
	}
	if err = svc.CheckUniqueness(ctx, "grade 7a", grp); err != nil {
		t.Errorf("CheckUniqueness() with exclusion failed: %v", err)
	}

	grp, err = svc.Update(ctx, grp.ID, group.UpdateGroup{Name: "Grade 7B"})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if grp.Name != "Grade 7B" {
		t.Errorf("Name = %s, want Grade 7B", grp.Name)
	}

	if err = svc.Delete(ctx, grp.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err = svc.GetByID(ctx, grp.ID); errors.Cause(err) != group.ErrNotFound {
		t.Errorf("GetByID() error = %v, want %v", err, group.ErrNotFound)
	}
}

func Test_service_AssignCourse(t *testing.T) {
	svc, _, crsRepo := setup(t)
	ctx := context.Background()

	grp, err := svc.Create(ctx, group.NewGroup{Name: "Grade 7A"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	available := testutil.CreateCourse(t, crsRepo, "Maths", true)
	pending := testutil.CreateCourse(t, crsRepo, "Physics", false)

	// unknown group
	if _, err = svc.AssignCourse(ctx, 999, group.NewGroupCourse{CourseID: available.ID}); errors.Cause(err) != group.ErrNotFound {
		t.Errorf("AssignCourse() error = %v, want %v", err, group.ErrNotFound)
	}

	// unknown course
	if _, err = svc.AssignCourse(ctx, grp.ID, group.NewGroupCourse{CourseID: 999}); err == nil {
		t.Error("AssignCourse() expected error for unknown course")
	} else if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("AssignCourse() error = %v, want ValidationError", err)
	}

	// unavailable course
	if _, err = svc.AssignCourse(ctx, grp.ID, group.NewGroupCourse{CourseID: pending.ID}); err == nil {
		t.Error("AssignCourse() expected error for unavailable course")
	} else if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("AssignCourse() error = %v, want ValidationError", err)
	}

	gc, err := svc.AssignCourse(ctx, grp.ID, group.NewGroupCourse{CourseID: available.ID})
	if err != nil {
		t.Fatalf("AssignCourse() failed: %v", err)
	}
	if gc.GroupID != grp.ID || gc.CourseID != available.ID {
		t.Errorf("AssignCourse() = %+v", gc)
	}

	// assigning twice conflicts
	if _, err = svc.AssignCourse(ctx, grp.ID, group.NewGroupCourse{CourseID: available.ID}); errors.Cause(err) != group.ErrGroupCourseExists {
		t.Errorf("AssignCourse() error = %v, want %v", err, group.ErrGroupCourseExists)
	}

	gcs, err := svc.QueryCourses(ctx, grp.ID)
	if err != nil {
		t.Fatalf("QueryCourses() failed: %v", err)
	}
	if len(gcs) != 1 || gcs[0].ID != gc.ID {
		t.Errorf("QueryCourses() = %+v", gcs)
	}
}

func Test_service_Delete_detachesCourses(t *testing.T) {
	svc, repo, crsRepo := setup(t)
	ctx := context.Background()

	crs := testutil.CreateCourse(t, crsRepo, "Maths", true)
	grp, err := svc.Create(ctx, group.NewGroup{Name: "Grade 8A"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err = svc.AssignCourse(ctx, grp.ID, group.NewGroupCourse{CourseID: crs.ID}); err != nil {
		t.Fatalf("AssignCourse() failed: %v", err)
	}

	if err = svc.Delete(ctx, grp.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err = svc.GetByID(ctx, grp.ID); errors.Cause(err) != group.ErrNotFound {
		t.Errorf("GetByID() error = %v, want %v", err, group.ErrNotFound)
	}

	// no orphaned assignments survive the group
	gcs, err := repo.QueryGroupCourses(ctx, grp.ID)
	if err != nil {
		t.Fatalf("QueryGroupCourses() failed: %v", err)
	}
	if len(gcs) != 0 {
		t.Errorf("QueryGroupCourses() = %+v, want none", gcs)
	}
}
