package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/darasa-io/darasa/core/grade"
	"github.com/darasa-io/darasa/core/lesson"
	"github.com/darasa-io/darasa/core/user"
	"github.com/darasa-io/darasa/tests"
)

type gradeEnv struct {
	teacher  user.User
	student1 user.User
	student2 user.User
	lsn1     lesson.Lesson
	lsn2     lesson.Lesson
}

func setupGrades(t *testing.T) gradeEnv {
	t.Helper()
	testutil.ResetDB(t, db)

	crs := testutil.CreateCourse(t, crsRepo, "Maths", true)
	env := gradeEnv{
		teacher:  testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleInstructor}, true),
		student1: testutil.CreateUser(t, usrRepo, "Hero", "heroman", "hero@test.cd", "", []string{user.RoleStudent}, true),
		student2: testutil.CreateUser(t, usrRepo, "Rival", "rivalus", "rival@test.cd", "", []string{user.RoleStudent}, true),
		lsn1:     testutil.CreateLesson(t, lsnRepo, crs.ID, "Algebra"),
		lsn2:     testutil.CreateLesson(t, lsnRepo, crs.ID, "Geometry"),
	}
	testutil.Enroll(t, enrRepo, crs.ID, env.student1.ID)
	testutil.Enroll(t, enrRepo, crs.ID, env.student2.ID)
	return env
}

func Test_gradeApi_gradeCreate(t *testing.T) {
	env := setupGrades(t)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff required", token: getToken(t, env.student1), wantCode: http.StatusForbidden,
			body:     marchallObj(t, grade.NewLessonGrade{LessonID: env.lsn1.ID, StudentID: env.student1.ID, Grade: 100}),
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", token: getToken(t, env.teacher), wantCode: http.StatusBadRequest,
			body: marchallObj(t, grade.NewLessonGrade{}),
			wantData: marchallObj(t, map[string]string{
				"lesson_id": "this field is required", "student_id": "this field is required", "grade": "this field is required",
			}),
		},
		{
			name: "student not enrolled", token: getToken(t, env.teacher), wantCode: http.StatusBadRequest,
			body:     marchallObj(t, grade.NewLessonGrade{LessonID: env.lsn1.ID, StudentID: env.teacher.ID, Grade: 80}),
			extra:    "any field error",
			wantData: nil,
		},
		{
			name: "grade recorded", token: getToken(t, env.teacher), wantCode: http.StatusCreated,
			body: marchallObj(t, grade.NewLessonGrade{LessonID: env.lsn1.ID, StudentID: env.student1.ID, Grade: 80}),
		},
		{
			name: "duplicate grade", token: getToken(t, env.teacher), wantCode: http.StatusConflict,
			body:     marchallObj(t, grade.NewLessonGrade{LessonID: env.lsn1.ID, StudentID: env.student1.ID, Grade: 80}),
			wantData: marchallObj(t, httpErr{Error: "a grade already exists for this lesson and student"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/lesson-grades"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var lg grade.LessonGrade
				if err := json.Unmarshal(rec.Body.Bytes(), &lg); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if lg.ID == 0 || lg.Grade != 80 || lg.CreatedBy != env.teacher.ID {
					t.Errorf("failed! grade = %+v", lg)
				}
				return
			}
			if tt.extra != nil { // only the code matters
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_gradeApi_gradeQuery(t *testing.T) {
	env := setupGrades(t)

	teacherToken := getToken(t, env.teacher)
	lg1 := createGrade(t, teacherToken, env.lsn1.ID, env.student1.ID, 80)
	lg2 := createGrade(t, teacherToken, env.lsn1.ID, env.student2.ID, 55)
	lg3 := createGrade(t, teacherToken, env.lsn2.ID, env.student1.ID, 70)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/lesson-grades", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Staff sees all", path: "/v1/lesson-grades", token: teacherToken, wantData: marchallList(t, lg1, lg2, lg3)},
		{
			name: "Staff filters by lesson", path: "/v1/lesson-grades?" + url.Values{"lesson_id": {strconv.Itoa(env.lsn1.ID)}}.Encode(),
			token: teacherToken, wantData: marchallList(t, lg1, lg2),
		},
		{
			name: "Students only see their own grades", path: "/v1/lesson-grades", token: getToken(t, env.student1),
			wantData: marchallList(t, lg1, lg3),
		},
		{
			name: "Students cannot peek via student_id", path: "/v1/lesson-grades?" + url.Values{"student_id": {strconv.Itoa(env.student2.ID)}}.Encode(),
			token: getToken(t, env.student1), wantData: marchallList(t, lg1, lg3),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_gradeApi_gradeRetrieve(t *testing.T) {
	env := setupGrades(t)

	teacherToken := getToken(t, env.teacher)
	lg1 := createGrade(t, teacherToken, env.lsn1.ID, env.student1.ID, 80)
	lg2 := createGrade(t, teacherToken, env.lsn1.ID, env.student2.ID, 55)

	tests := []httpTest{
		{name: "Own grade", path: gradePath(lg1.ID), token: getToken(t, env.student1), wantData: marchallObj(t, lg1)},
		{
			name: "Other students' grades are hidden", path: gradePath(lg2.ID), token: getToken(t, env.student1),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "Staff sees all", path: gradePath(lg2.ID), token: teacherToken, wantData: marchallObj(t, lg2)},
		{
			name: "Unknown ID", path: gradePath(999), token: teacherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "lesson grade not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_gradeApi_gradeUpdateRecomputesFinalMark(t *testing.T) {
	env := setupGrades(t)
	teacherToken := getToken(t, env.teacher)

	lg := createGrade(t, teacherToken, env.lsn1.ID, env.student1.ID, 40)
	createGrade(t, teacherToken, env.lsn2.ID, env.student1.ID, 50)

	// staff only
	body := marchallObj(t, grade.UpdateLessonGrade{Grade: 90})
	req, rec := newAuthRequest(http.MethodPut, gradePath(lg.ID), getToken(t, env.student1), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusForbidden)
	}

	req, rec = newAuthRequest(http.MethodPut, gradePath(lg.ID), teacherToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body = %v", rec.Code, http.StatusOK, rec.Body.String())
	}
	var updated grade.LessonGrade
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if updated.Grade != 90 {
		t.Errorf("failed! grade = %v; want 90", updated.Grade)
	}
	if !updated.UpdatedBy.Valid || updated.UpdatedBy.Int != env.teacher.ID {
		t.Errorf("failed! updated_by = %v; want %v", updated.UpdatedBy, env.teacher.ID)
	}

	// the final mark follows: (90 + 50) / 2 = 70, all lessons graded => passed
	enr, err := enrRepo.GetEnrollment(context.Background(), env.lsn1.CourseID, env.student1.ID)
	if err != nil {
		t.Fatalf("GetEnrollment() failed: %v", err)
	}
	if enr.FinalMark.Float64 != 70 || !enr.Passed {
		t.Errorf("failed! finalMark = %v, passed = %v; want 70, true", enr.FinalMark.Float64, enr.Passed)
	}
}

func Test_gradeApi_gradeDestroy(t *testing.T) {
	env := setupGrades(t)
	teacherToken := getToken(t, env.teacher)

	lg := createGrade(t, teacherToken, env.lsn1.ID, env.student1.ID, 80)

	// staff only
	req, rec := newAuthRequest(http.MethodDelete, gradePath(lg.ID), getToken(t, env.student1))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusForbidden)
	}

	req, rec = newAuthRequest(http.MethodDelete, gradePath(lg.ID), teacherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
	}

	// gone, and the final mark is back to zero
	req, rec = newAuthRequest(http.MethodGet, gradePath(lg.ID), teacherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
	}
	enr, err := enrRepo.GetEnrollment(context.Background(), env.lsn1.CourseID, env.student1.ID)
	if err != nil {
		t.Fatalf("GetEnrollment() failed: %v", err)
	}
	if enr.FinalMark.Float64 != 0 || enr.Passed {
		t.Errorf("failed! finalMark = %v, passed = %v; want 0, false", enr.FinalMark.Float64, enr.Passed)
	}
}

func createGrade(t *testing.T, token string, lessonID, studentID, mark int) grade.LessonGrade {
	t.Helper()

	body := marchallObj(t, grade.NewLessonGrade{LessonID: lessonID, StudentID: studentID, Grade: mark})
	req, rec := newAuthRequest(http.MethodPost, "/v1/lesson-grades", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("createGrade() failed! code = %v; body = %v", rec.Code, rec.Body.String())
	}
	var lg grade.LessonGrade
	if err := json.Unmarshal(rec.Body.Bytes(), &lg); err != nil {
		t.Fatalf("createGrade() json.Unmarshal() failed! err %v", err)
	}
	return lg
}

func gradePath(id int) string {
	return "/v1/lesson-grades/" + itoa(id)
}
