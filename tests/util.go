package testutil

import (
	"context"
	"net/mail"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/assignment"
	"github.com/pragya-git-bug/aibackend/core/codegen"
	"github.com/pragya-git-bug/aibackend/core/coursework"
	"github.com/pragya-git-bug/aibackend/core/quiz"
	"github.com/pragya-git-bug/aibackend/core/report"
	"github.com/pragya-git-bug/aibackend/core/user"
	emailsvc "github.com/pragya-git-bug/aibackend/services/email"
	eventsvc "github.com/pragya-git-bug/aibackend/services/events"
	logsvc "github.com/pragya-git-bug/aibackend/services/logger"
	inmemdb "github.com/pragya-git-bug/aibackend/storage/database/inmem"
)

// NewConfig returns a config fit for tests: debug off, in-memory storage, no broker.
func NewConfig() *core.Config {
	return &core.Config{
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		AppName:          "Classwork",
		SecretKey:        "test-secret-key",
		DefaultFromEmail: mail.Address{Name: "Classwork", Address: "noreply@classwork.test"},
		Server: core.ServerConfig{
			Address:                   ":0",
			Host:                      "localhost",
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 10 * time.Minute,
		},
		Database: core.DatabaseConfig{Engine: core.EngineMemory},
		CodeGen:  core.CodeGenConfig{MaxAttempts: codegen.DefaultMaxAttempts},
	}
}

// NewValidator returns a validator with every custom validator of the app registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// Services wires every domain service on an in-memory database.
type Services struct {
	Conf        *core.Config
	DB          *inmemdb.DB
	Validate    *validator.Validate
	Translator  ut.Translator
	Logger      core.Logger
	Events      *eventsvc.PublisherMock
	Mail        *emailsvc.ConsoleServiceMock
	Users       *user.Service
	Assignments *assignment.Service
	Quizzes     *quiz.Service
	Reports     *report.Service
}

func NewServices() *Services {
	conf := NewConfig()
	db := inmemdb.Open()
	validate, translator := NewValidator()
	logger := logsvc.NewRollbarLoggerMock()
	events := eventsvc.NewPublisherMock()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	codeGen := codegen.NewGenerator(conf.CodeGen.MaxAttempts)

	usrSvc := user.NewService(inmemdb.NewUserRepository(db), codeGen, validate, events, logger)
	notifier := coursework.NewReviewNotifier(usrSvc, mailSvc, logger)
	asgSvc := assignment.NewService(inmemdb.NewAssignmentRepository(db), codeGen, validate, events, notifier, logger)
	quizSvc := quiz.NewService(inmemdb.NewQuizRepository(db), codeGen, validate, events, notifier, logger)

	return &Services{
		Conf:        conf,
		DB:          db,
		Validate:    validate,
		Translator:  translator,
		Logger:      logger,
		Events:      events,
		Mail:        mailSvc,
		Users:       usrSvc,
		Assignments: asgSvc,
		Quizzes:     quizSvc,
		Reports:     report.NewService(usrSvc, asgSvc, quizSvc),
	}
}

func CreateUser(t *testing.T, svc *user.Service, name, email, pwd, role string, className ...string) user.User {
	t.Helper()
	nu := user.NewUser{
		FullName:     name,
		Email:        email,
		MobileNumber: "+243810000000",
		Password:     pwd,
		Role:         role,
		ClassName:    "Grade 8",
	}
	if len(className) > 0 {
		nu.ClassName = className[0]
	}
	usr, err := svc.Create(context.Background(), nu)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateAssignment creates an assignment with one question per text, numbered from 1.
func CreateAssignment(
	t *testing.T,
	svc *assignment.Service,
	teacherCode, name, assignedTo string,
	questions ...string,
) assignment.Assignment {
	t.Helper()
	na := assignment.NewAssignment{
		TeacherCode: teacherCode,
		Name:        name,
		Subject:     "Science",
		DueDate:     time.Now().Add(7 * 24 * time.Hour),
		AssignedTo:  assignedTo,
		Questions:   make(map[string]assignment.Question, len(questions)),
	}
	for i, text := range questions {
		na.Questions[coursework.QuestionKey(i+1)] = assignment.Question{Question: text}
	}
	a, err := svc.Create(context.Background(), na)
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return a
}

// CreateQuiz creates a quiz with the given questions, numbered from 1.
func CreateQuiz(t *testing.T, svc *quiz.Service, teacherCode, name, assignedTo string, questions ...quiz.Question) quiz.Quiz {
	t.Helper()
	nq := quiz.NewQuiz{
		TeacherCode: teacherCode,
		Name:        name,
		Subject:     "Science",
		DueDate:     time.Now().Add(7 * 24 * time.Hour),
		AssignedTo:  assignedTo,
		Questions:   make(map[string]quiz.Question, len(questions)),
	}
	for i, q := range questions {
		nq.Questions[coursework.QuestionKey(i+1)] = q
	}
	qz, err := svc.Create(context.Background(), nq)
	if err != nil {
		t.Fatalf("CreateQuiz() failed: %v", err)
	}
	return qz
}

// QuizQuestion returns a 4 options question whose correct option is correct.
func QuizQuestion(text string, options [4]string, correct string) quiz.Question {
	return quiz.Question{
		Question:      text,
		Options:       quiz.Options{Op1: options[0], Op2: options[1], Op3: options[2], Op4: options[3]},
		CorrectOption: correct,
	}
}

// StepClock makes core.NowFunc tick one second per call, starting at start, until the test ends.
func StepClock(t *testing.T, start time.Time) {
	t.Helper()
	orig := core.NowFunc
	var (
		mu   sync.Mutex
		tick time.Duration
	)
	core.NowFunc = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick += time.Second
		return start.Add(tick).UTC()
	}
	t.Cleanup(func() { core.NowFunc = orig })
}
