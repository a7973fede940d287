package quiz

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/codegen"
	"github.com/pragya-git-bug/aibackend/core/coursework"
)

var (
	// errors
	ErrNotFound           = errors.New("quiz not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

type (
	Repository interface {
		CodeExists(ctx context.Context, code string) (bool, error)
		// Store failures are returned as *core.PersistenceError.
		// CreateQuiz fails with core.ErrDuplicateKey when the code is taken.
		CreateQuiz(ctx context.Context, qz Quiz) (Quiz, error)
		GetQuizByCode(ctx context.Context, code string) (Quiz, error)
		QueryQuizzes(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Quiz, error)
		// SaveSubmission replaces the submission of studentCode only, leaving the other students' work untouched.
		SaveSubmission(ctx context.Context, code, studentCode string, sub Submission, updatedAt time.Time) (Quiz, error)
	}

	Service struct {
		repo     Repository
		codeGen  *codegen.Generator
		validate *validator.Validate
		events   core.EventPublisher
		notifier *coursework.ReviewNotifier
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	codeGen *codegen.Generator,
	validate *validator.Validate,
	events core.EventPublisher,
	notifier *coursework.ReviewNotifier,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		codeGen:  codeGen,
		validate: validate,
		events:   events,
		notifier: notifier,
		logger:   logger,
	}
}

func (svc *Service) Create(ctx context.Context, nq NewQuiz) (Quiz, error) {
	if err := nq.Validate(svc.validate); err != nil {
		return Quiz{}, err
	}

	now := core.NowFunc()
	qz := Quiz{
		ID:          uuid.New().String(),
		TeacherCode: nq.TeacherCode,
		Name:        nq.Name,
		Subject:     nq.Subject,
		DueDate:     nq.DueDate,
		AssignedTo:  nq.AssignedTo,
		Questions:   nq.Questions,
		Submissions: map[string]Submission{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var err error
	qz.Code, err = svc.codeGen.Assign(ctx, qz.Code, true, qz.Name, CodeFallback, svc.repo.CodeExists)
	if err != nil {
		return Quiz{}, errors.Wrap(err, "generating quiz code")
	}
	qz, err = svc.repo.CreateQuiz(ctx, qz)
	if err != nil {
		return Quiz{}, errors.Wrap(err, "creating quiz")
	}
	svc.publish(ctx, core.QuizCreated, qz.WithoutSubmissions())
	return qz, nil
}

func (svc *Service) GetByCode(ctx context.Context, code string) (Quiz, error) {
	return svc.repo.GetQuizByCode(ctx, core.CleanString(code))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Quiz, error) {
	filter.Clean()
	return svc.repo.QueryQuizzes(ctx, filter, core.CleanOrderings(orderings, OrderingFields)...)
}

func (svc *Service) QueryAll(ctx context.Context, orderings ...core.DBOrdering) ([]Quiz, error) {
	return svc.Filter(ctx, QueryFilter{}, orderings...)
}

func (svc *Service) QueryByAssignedTo(ctx context.Context, assignedTo string, orderings ...core.DBOrdering) ([]Quiz, error) {
	return svc.Filter(ctx, QueryFilter{AssignedTo: assignedTo}, orderings...)
}

func (svc *Service) QueryByTeacher(ctx context.Context, teacherCode string, orderings ...core.DBOrdering) ([]Quiz, error) {
	return svc.Filter(ctx, QueryFilter{TeacherCode: teacherCode}, orderings...)
}

// QuerySubmittedBy returns the quizzes studentCode submitted.
func (svc *Service) QuerySubmittedBy(ctx context.Context, studentCode string, orderings ...core.DBOrdering) ([]Quiz, error) {
	return svc.Filter(ctx, QueryFilter{SubmittedBy: studentCode}, orderings...)
}

// Submit records the answers of a student, replacing any earlier submission of theirs.
func (svc *Service) Submit(ctx context.Context, ns NewSubmission) (Quiz, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Quiz{}, err
	}
	qz, err := svc.GetByCode(ctx, ns.QuizCode)
	if err != nil {
		return Quiz{}, err
	}

	now := core.NowFunc()
	sub, err := Submit(&qz, ns.StudentCode, ns.Answers, now)
	if err != nil {
		return Quiz{}, err
	}
	qz, err = svc.repo.SaveSubmission(ctx, qz.Code, ns.StudentCode, sub, now)
	if err != nil {
		return Quiz{}, errors.Wrap(err, "saving submission")
	}
	svc.publish(ctx, core.QuizSubmitted, submissionEvent{Code: qz.Code, StudentCode: ns.StudentCode, Submission: sub})
	return qz, nil
}

// Review merges a teacher review into an existing submission and completes it.
func (svc *Service) Review(ctx context.Context, nr NewReview) (Quiz, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return Quiz{}, err
	}
	qz, err := svc.GetByCode(ctx, nr.QuizCode)
	if err != nil {
		return Quiz{}, err
	}

	now := core.NowFunc()
	sub, err := Review(&qz, nr.StudentCode, nr.Review, now)
	if err != nil {
		return Quiz{}, err
	}
	qz, err = svc.repo.SaveSubmission(ctx, qz.Code, nr.StudentCode, sub, now)
	if err != nil {
		return Quiz{}, errors.Wrap(err, "saving review")
	}

	svc.publish(ctx, core.QuizReviewed, submissionEvent{Code: qz.Code, StudentCode: nr.StudentCode, Submission: sub})
	svc.notifier.Notify(ctx, coursework.ReviewNotice{
		Kind:        "quiz",
		Name:        qz.Name,
		Code:        qz.Code,
		StudentCode: nr.StudentCode,
		Feedback:    sub.Feedback,
	})
	return qz, nil
}

func (svc *Service) SubmittedStudents(ctx context.Context, code string) (SubmittedStudents, error) {
	qz, err := svc.GetByCode(ctx, code)
	if err != nil {
		return SubmittedStudents{}, err
	}
	return SubmittedStudents{
		QuizCode: qz.Code,
		QuizName: qz.Name,
		Students: qz.SubmittedStudents(),
	}, nil
}

// StudentSubmission returns the quiz along with the submission of studentCode, if any.
func (svc *Service) StudentSubmission(ctx context.Context, code, studentCode string) (StudentSubmission, error) {
	qz, err := svc.GetByCode(ctx, code)
	if err != nil {
		return StudentSubmission{}, err
	}
	studentCode = core.CleanString(studentCode)
	ss := StudentSubmission{Quiz: qz.WithoutSubmissions(), StudentCode: studentCode}
	if sub, ok := qz.Submission(studentCode); ok {
		ss.Submission = &sub
	}
	return ss, nil
}

type submissionEvent struct {
	Code        string     `json:"quizeCode"`
	StudentCode string     `json:"studentCode"`
	Submission  Submission `json:"submission"`
}

func (svc *Service) publish(ctx context.Context, typ core.EventType, payload interface{}) {
	if svc.events == nil {
		return
	}
	if err := svc.events.Publish(ctx, core.NewEvent(typ, payload)); err != nil {
		svc.logger.Warn("publishing "+string(typ), err)
	}
}
