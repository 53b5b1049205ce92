package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strconv"
	"testing"

	. "github.com/darasa-io/darasa/apps/api/echo"
	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/course"
	"github.com/darasa-io/darasa/core/enrollment"
	"github.com/darasa-io/darasa/core/grade"
	"github.com/darasa-io/darasa/core/group"
	"github.com/darasa-io/darasa/core/homework"
	"github.com/darasa-io/darasa/core/instructor"
	"github.com/darasa-io/darasa/core/lesson"
	"github.com/darasa-io/darasa/core/user"
	"github.com/darasa-io/darasa/services/email"
	"github.com/darasa-io/darasa/storage/database/dummy"
	"github.com/darasa-io/darasa/storage/object/dummy"
	"github.com/darasa-io/darasa/tests"
)

var (
	db  *dummydb.DB
	app Server

	usrRepo user.Repository
	crsRepo course.Repository
	lsnRepo lesson.Repository
	enrRepo enrollment.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	core.Conf.TestMode = true
	core.Conf.Debug = false

	// set up DB & repos
	db, _ = dummydb.Open()
	usrRepo = dummydb.NewUserRepository(db)
	crsRepo = dummydb.NewCourseRepository(db)
	grpRepo := dummydb.NewGroupRepository(db)
	lsnRepo = dummydb.NewLessonRepository(db)
	hwRepo := dummydb.NewHomeworkRepository(db)
	lgRepo := dummydb.NewGradeRepository(db)
	enrRepo = dummydb.NewEnrollmentRepository(db)
	ciRepo := dummydb.NewInstructorRepository(db)

	// set up services
	logger := testutil.NopLogger{}
	mailSvc := emailsvc.NewConsoleServiceMock()
	fileStore := dummystorage.New()

	// set up server
	app = NewServer(&Options{
		DisableReqLogs: true,
		Logger:         logger,
		UserSvc:        user.NewServiceMock(usrRepo, mailSvc),
		CourseSvc:      course.NewService(crsRepo),
		GroupSvc:       group.NewService(db, grpRepo, crsRepo, logger),
		LessonSvc:      lesson.NewService(db, lsnRepo, crsRepo, logger),
		HomeworkSvc:    homework.NewService(hwRepo, lsnRepo, usrRepo, fileStore, logger),
		GradeSvc:       grade.NewService(db, lgRepo, lsnRepo, usrRepo, enrRepo, crsRepo, mailSvc, logger),
		EnrollSvc:      enrollment.NewService(enrRepo, crsRepo, usrRepo),
		InstructorSvc:  instructor.NewService(ciRepo, crsRepo, usrRepo),
	})

	os.Exit(m.Run())
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func itoa(id int) string {
	return strconv.Itoa(id)
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
