package homework_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/homework"
	"github.com/darasa-io/darasa/core/lesson"
	"github.com/darasa-io/darasa/core/user"
	"github.com/darasa-io/darasa/storage/database/dummy"
	"github.com/darasa-io/darasa/storage/object/dummy"
	"github.com/darasa-io/darasa/tests"
)

type testEnv struct {
	svc   homework.Service
	store *dummystorage.Storage

	lsn     lesson.Lesson
	student user.User
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewHomeworkRepository(db)
	lsnRepo := dummydb.NewLessonRepository(db)
	usrRepo := dummydb.NewUserRepository(db)
	crsRepo := dummydb.NewCourseRepository(db)
	store := dummystorage.New()

	crs := testutil.CreateCourse(t, crsRepo, "Maths", true)
	return &testEnv{
		svc:     homework.NewService(repo, lsnRepo, usrRepo, store, testutil.NopLogger{}),
		store:   store,
		lsn:     testutil.CreateLesson(t, lsnRepo, crs.ID, "Algebra"),
		student: testutil.CreateUser(t, usrRepo, "Student", "stud", "stud@test.cd", "", []string{user.RoleStudent}, true),
	}
}

func attachment(name, content string) *core.Attachment {
	return &core.Attachment{
		Content:     bytes.NewBufferString(content),
		ContentType: "application/pdf",
		Filename:    name,
	}
}

func Test_service_Create(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	// unknown lesson
	if _, err := env.svc.Create(ctx, homework.NewHomework{LessonID: 999, StudentID: env.student.ID}, nil); err == nil {
		t.Error("Create() expected error for unknown lesson")
	} else if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("Create() error = %v, want ValidationError", err)
	}

	// unknown student
	if _, err := env.svc.Create(ctx, homework.NewHomework{LessonID: env.lsn.ID, StudentID: 999}, nil); err == nil {
		t.Error("Create() expected error for unknown student")
	} else if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("Create() error = %v, want ValidationError", err)
	}

	// without attachment
	hw, err := env.svc.Create(ctx, homework.NewHomework{LessonID: env.lsn.ID, StudentID: env.student.ID, Comment: "done"}, nil)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if hw.FileKey.Valid {
		t.Errorf("FileKey should be empty, got %v", hw.FileKey)
	}

	// with attachment
	hw, err = env.svc.Create(ctx, homework.NewHomework{LessonID: env.lsn.ID, StudentID: env.student.ID}, attachment("essay.pdf", "content"))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if !hw.FileKey.Valid || !strings.HasPrefix(hw.FileKey.String, "homeworks/") || !strings.HasSuffix(hw.FileKey.String, ".pdf") {
		t.Errorf("FileKey = %v", hw.FileKey)
	}
	if hw.FileName.String != "essay.pdf" || hw.ContentType.String != "application/pdf" {
		t.Errorf("file metadata = %v / %v", hw.FileName, hw.ContentType)
	}
	if content, ok := env.store.Object(hw.FileKey.String); !ok || string(content) != "content" {
		t.Errorf("stored object = %q, %v", content, ok)
	}
}

func Test_service_Update_replacesAttachment(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	hw, err := env.svc.Create(ctx, homework.NewHomework{LessonID: env.lsn.ID, StudentID: env.student.ID}, attachment("v1.pdf", "v1"))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	oldKey := hw.FileKey.String

	hw, err = env.svc.Update(ctx, hw.ID, homework.UpdateHomework{Comment: "revised"}, attachment("v2.pdf", "v2"))
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if hw.Comment != "revised" || hw.FileName.String != "v2.pdf" {
		t.Errorf("Update() = %+v", hw)
	}
	if hw.FileKey.String == oldKey {
		t.Error("FileKey should have been replaced")
	}
	if _, ok := env.store.Object(oldKey); ok {
		t.Error("old object should have been deleted")
	}
	if content, ok := env.store.Object(hw.FileKey.String); !ok || string(content) != "v2" {
		t.Errorf("stored object = %q, %v", content, ok)
	}

	if _, err = env.svc.Update(ctx, 999, homework.UpdateHomework{}, nil); errors.Cause(err) != homework.ErrNotFound {
		t.Errorf("Update() error = %v, want %v", err, homework.ErrNotFound)
	}
}

func Test_service_Delete(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	hw, err := env.svc.Create(ctx, homework.NewHomework{LessonID: env.lsn.ID, StudentID: env.student.ID}, attachment("essay.pdf", "content"))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err = env.svc.Delete(ctx, hw.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err = env.svc.GetByID(ctx, hw.ID); errors.Cause(err) != homework.ErrNotFound {
		t.Errorf("GetByID() error = %v, want %v", err, homework.ErrNotFound)
	}
	if _, ok := env.store.Object(hw.FileKey.String); ok {
		t.Error("object should have been deleted with the row")
	}

	if err = env.svc.Delete(ctx, 999); errors.Cause(err) != homework.ErrNotFound {
		t.Errorf("Delete() error = %v, want %v", err, homework.ErrNotFound)
	}
}

func Test_service_View(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	hw, err := env.svc.Create(ctx, homework.NewHomework{LessonID: env.lsn.ID, StudentID: env.student.ID}, attachment("essay.pdf", "content"))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	view, err := env.svc.View(ctx, hw)
	if err != nil {
		t.Fatalf("View() failed: %v", err)
	}
	if view.FileURL == "" {
		t.Error("FileURL should be signed for stored attachments")
	}

	// no attachment, no URL
	hw, err = env.svc.Create(ctx, homework.NewHomework{LessonID: env.lsn.ID, StudentID: env.student.ID}, nil)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	view, err = env.svc.View(ctx, hw)
	if err != nil {
		t.Fatalf("View() failed: %v", err)
	}
	if view.FileURL != "" {
		t.Errorf("FileURL = %q, want empty", view.FileURL)
	}
}
