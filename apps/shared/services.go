package shared

import (
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
)

type Services struct {
	Validate    *validator.Validate
	Translator  ut.Translator
	Users       *user.Service
	Assignments *assignment.Service
	Quizzes     *quiz.Service
	Reports     *report.Service
}

// NewValidator returns the validator with every custom validation of the app registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// NewEventPublisher publishes to RabbitMQ when it is configured, and drops events otherwise.
// The returned func releases the broker connection.
func NewEventPublisher(conf *core.Config, logger core.Logger) (core.EventPublisher, func() error, error) {
	if !conf.RabbitMQ.Enabled() {
		logger.Info("rabbitmq not configured: domain events are dropped")
		return eventsvc.NewNoopPublisher(), func() error { return nil }, nil
	}
	pub, err := eventsvc.NewRabbitMQPublisher(conf)
	if err != nil {
		return nil, nil, err
	}
	return pub, pub.Close, nil
}

func NewEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// NewServices wires the domain services on top of stores.
func NewServices(
	conf *core.Config,
	logger core.Logger,
	stores *Stores,
	events core.EventPublisher,
	mailSvc core.EmailService,
) *Services {
	validate, translator := NewValidator()
	codeGen := codegen.NewGenerator(conf.CodeGen.MaxAttempts)

	usrSvc := user.NewService(stores.Users, codeGen, validate, events, logger)
	notifier := coursework.NewReviewNotifier(usrSvc, mailSvc, logger)
	asgSvc := assignment.NewService(stores.Assignments, codeGen, validate, events, notifier, logger)
	quizSvc := quiz.NewService(stores.Quizzes, codeGen, validate, events, notifier, logger)

	return &Services{
		Validate:    validate,
		Translator:  translator,
		Users:       usrSvc,
		Assignments: asgSvc,
		Quizzes:     quizSvc,
		Reports:     report.NewService(usrSvc, asgSvc, quizSvc),
	}
}
