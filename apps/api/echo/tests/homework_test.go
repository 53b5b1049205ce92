package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/darasa-io/darasa/core/homework"
	"github.com/darasa-io/darasa/core/lesson"
	"github.com/darasa-io/darasa/core/user"
	"github.com/darasa-io/darasa/tests"
)

type homeworkEnv struct {
	teacher  user.User
	student1 user.User
	student2 user.User
	lsn      lesson.Lesson
}

func setupHomeworks(t *testing.T) homeworkEnv {
	t.Helper()
	testutil.ResetDB(t, db)

	crs := testutil.CreateCourse(t, crsRepo, "Maths", true)
	return homeworkEnv{
		teacher:  testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleInstructor}, true),
		student1: testutil.CreateUser(t, usrRepo, "Hero", "heroman", "hero@test.cd", "", []string{user.RoleStudent}, true),
		student2: testutil.CreateUser(t, usrRepo, "Rival", "rivalus", "rival@test.cd", "", []string{user.RoleStudent}, true),
		lsn:      testutil.CreateLesson(t, lsnRepo, crs.ID, "Algebra"),
	}
}

// newUploadRequest builds a multipart request carrying form fields and an
// optional file under the "file" field.
func newUploadRequest(t *testing.T, method, path, token string, fields map[string]string, fileName, fileContent string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(): %v", err)
		}
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("CreateFormFile(): %v", err)
		}
		if _, err = fw.Write([]byte(fileContent)); err != nil {
			t.Fatalf("Write(): %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func submitHomework(t *testing.T, env homeworkEnv, asUser user.User, fileName string) homework.View {
	t.Helper()

	fields := map[string]string{
		"lesson_id":  strconv.Itoa(env.lsn.ID),
		"student_id": strconv.Itoa(asUser.ID),
		"comment":    "my submission",
	}
	req, rec := newUploadRequest(t, http.MethodPost, "/v1/homeworks", getToken(t, asUser), fields, fileName, "solved it")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submitHomework() failed! code = %v; body = %v", rec.Code, rec.Body.String())
	}
	var view homework.View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("submitHomework() json.Unmarshal() failed! err %v", err)
	}
	return view
}

func Test_homeworkApi_homeworkCreate(t *testing.T) {
	env := setupHomeworks(t)

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/homeworks")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("students submit for themselves only", func(t *testing.T) {
		fields := map[string]string{
			"lesson_id":  strconv.Itoa(env.lsn.ID),
			"student_id": strconv.Itoa(env.student2.ID), // ignored
		}
		req, rec := newUploadRequest(t, http.MethodPost, "/v1/homeworks", getToken(t, env.student1), fields, "", "")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		var view homework.View
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if view.StudentID != env.student1.ID {
			t.Errorf("failed! student_id = %v; want %v", view.StudentID, env.student1.ID)
		}
		if view.FileURL != "" {
			t.Errorf("failed! file_url = %q; want empty", view.FileURL)
		}
	})

	t.Run("with attachment", func(t *testing.T) {
		view := submitHomework(t, env, env.student2, "essay.pdf")
		if view.FileName.String != "essay.pdf" {
			t.Errorf("failed! file_name = %v; want essay.pdf", view.FileName)
		}
		if view.FileURL == "" {
			t.Error("failed! empty file_url for stored attachment")
		}
	})
}

func Test_homeworkApi_homeworkRetrieve(t *testing.T) {
	env := setupHomeworks(t)
	view := submitHomework(t, env, env.student1, "essay.pdf")

	tests := []httpTest{
		{name: "Own submission", path: homeworkPath(view.ID), token: getToken(t, env.student1), wantCode: http.StatusOK},
		{name: "Other students' submissions are hidden", path: homeworkPath(view.ID), token: getToken(t, env.student2), wantCode: http.StatusNotFound},
		{name: "Staff sees all", path: homeworkPath(view.ID), token: getToken(t, env.teacher), wantCode: http.StatusOK},
		{name: "Unknown ID", path: homeworkPath(999), token: getToken(t, env.teacher), wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
		})
	}
}

func Test_homeworkApi_homeworkQuery(t *testing.T) {
	env := setupHomeworks(t)
	hw1 := submitHomework(t, env, env.student1, "")
	submitHomework(t, env, env.student2, "")

	count := func(token, path string) ([]homework.View, int) {
		req, rec := newAuthRequest(http.MethodGet, path, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		var views []homework.View
		if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		return views, len(views)
	}

	if _, n := count(getToken(t, env.teacher), "/v1/homeworks"); n != 2 {
		t.Errorf("failed! staff sees %d submissions; want 2", n)
	}
	views, n := count(getToken(t, env.student1), "/v1/homeworks")
	if n != 1 || views[0].ID != hw1.ID {
		t.Errorf("failed! student sees %d submissions; want only their own", n)
	}
}

func Test_homeworkApi_homeworkUpdateDestroy(t *testing.T) {
	env := setupHomeworks(t)
	view := submitHomework(t, env, env.student1, "essay.pdf")

	// update the comment, keep the attachment
	body := marchallObj(t, homework.UpdateHomework{Comment: "revised"})
	req, rec := newAuthRequest(http.MethodPut, homeworkPath(view.ID), getToken(t, env.student1), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
	}
	var updated homework.View
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if updated.Comment != "revised" {
		t.Errorf("failed! comment = %v; want revised", updated.Comment)
	}
	if updated.FileName.String != "essay.pdf" || updated.FileURL == "" {
		t.Errorf("failed! attachment lost: %+v", updated)
	}

	// other students may not touch it
	req, rec = newAuthRequest(http.MethodDelete, homeworkPath(view.ID), getToken(t, env.student2))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
	}

	req, rec = newAuthRequest(http.MethodDelete, homeworkPath(view.ID), getToken(t, env.student1))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
	}
}

func homeworkPath(id int) string {
	return "/v1/homeworks/" + itoa(id)
}
