package main

import (
	"log"
	"os"

	"github.com/darasa-io/darasa/apps/api/echo"
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
	"github.com/darasa-io/darasa/services/email/sendgrid"
	"github.com/darasa-io/darasa/services/logger"
	"github.com/darasa-io/darasa/storage/database"
	"github.com/darasa-io/darasa/storage/database/sqlx"
	"github.com/darasa-io/darasa/storage/object"
	"github.com/darasa-io/darasa/storage/object/dummy"
)

// TODO:
// - APM/Tracing
// - swagger
func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	if err := core.Conf.Validate(); err != nil {
		std.Fatal(err)
	}

	appLogger := logsvc.NewRollbarLogger(std, core.Conf)
	appLogger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(std, err)
	defer db.Close()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = sendgridmail.NewService(core.Conf.SendgridAPIKey, core.Conf.AppName, core.Conf.DefaultFromEmail.Address, appLogger)
	}

	var fileStore core.FileStorage
	if core.Conf.Debug && core.Conf.Storage.AccessKey == "" {
		fileStore = dummystorage.New()
	} else {
		fileStore, err = object.NewS3Storage(core.Conf)
		errAndDie(std, err)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)
	grpRepo := sqlxrepos.NewGroupRepository(db)
	lsnRepo := sqlxrepos.NewLessonRepository(db)
	hwRepo := sqlxrepos.NewHomeworkRepository(db)
	lgRepo := sqlxrepos.NewGradeRepository(db)
	enrRepo := sqlxrepos.NewEnrollmentRepository(db)
	ciRepo := sqlxrepos.NewInstructorRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc)
	crsSvc := course.NewService(crsRepo)
	grpSvc := group.NewService(db, grpRepo, crsRepo, appLogger)
	lsnSvc := lesson.NewService(db, lsnRepo, crsRepo, appLogger)
	hwSvc := homework.NewService(hwRepo, lsnRepo, usrRepo, fileStore, appLogger)
	lgSvc := grade.NewService(db, lgRepo, lsnRepo, usrRepo, enrRepo, crsRepo, mailSvc, appLogger)
	enrSvc := enrollment.NewService(enrRepo, crsRepo, usrRepo)
	ciSvc := instructor.NewService(ciRepo, crsRepo, usrRepo)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address: core.Conf.Server.Addr,

			Logger:        appLogger,
			UserSvc:       usrSvc,
			CourseSvc:     crsSvc,
			GroupSvc:      grpSvc,
			LessonSvc:     lsnSvc,
			HomeworkSvc:   hwSvc,
			GradeSvc:      lgSvc,
			EnrollSvc:     enrSvc,
			InstructorSvc: ciSvc,
		},
	)
	app.Start()
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
