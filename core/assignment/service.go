package assignment

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
	ErrNotFound           = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

type (
	Repository interface {
		CodeExists(ctx context.Context, code string) (bool, error)
		// Store failures are returned as *core.PersistenceError.
		// CreateAssignment fails with core.ErrDuplicateKey when the code is taken.
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		GetAssignmentByCode(ctx context.Context, code string) (Assignment, error)
		QueryAssignments(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Assignment, error)
		// SaveSubmission replaces the submission of studentCode only, leaving the other students' work untouched.
		SaveSubmission(ctx context.Context, code, studentCode string, sub Submission, updatedAt time.Time) (Assignment, error)
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

func (svc *Service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	if err := na.Validate(svc.validate); err != nil {
		return Assignment{}, err
	}

	now := core.NowFunc()
	a := Assignment{
		ID:          uuid.New().String(),
		TeacherCode: na.TeacherCode,
		Name:        na.Name,
		Subject:     na.Subject,
		DueDate:     na.DueDate,
		AssignedTo:  na.AssignedTo,
		Questions:   na.Questions,
		Submissions: map[string]Submission{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var err error
	a.Code, err = svc.codeGen.Assign(ctx, a.Code, true, a.Name, CodeFallback, svc.repo.CodeExists)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "generating assignment code")
	}
	a, err = svc.repo.CreateAssignment(ctx, a)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "creating assignment")
	}
	svc.publish(ctx, core.AssignmentCreated, a.WithoutSubmissions())
	return a, nil
}

func (svc *Service) GetByCode(ctx context.Context, code string) (Assignment, error) {
	return svc.repo.GetAssignmentByCode(ctx, core.CleanString(code))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Assignment, error) {
	filter.Clean()
	return svc.repo.QueryAssignments(ctx, filter, core.CleanOrderings(orderings, OrderingFields)...)
}

func (svc *Service) QueryAll(ctx context.Context, orderings ...core.DBOrdering) ([]Assignment, error) {
	return svc.Filter(ctx, QueryFilter{}, orderings...)
}

func (svc *Service) QueryByAssignedTo(ctx context.Context, assignedTo string, orderings ...core.DBOrdering) ([]Assignment, error) {
	return svc.Filter(ctx, QueryFilter{AssignedTo: assignedTo}, orderings...)
}

func (svc *Service) QueryByTeacher(ctx context.Context, teacherCode string, orderings ...core.DBOrdering) ([]Assignment, error) {
	return svc.Filter(ctx, QueryFilter{TeacherCode: teacherCode}, orderings...)
}

// QuerySubmittedBy returns the assignments studentCode submitted.
func (svc *Service) QuerySubmittedBy(ctx context.Context, studentCode string, orderings ...core.DBOrdering) ([]Assignment, error) {
	return svc.Filter(ctx, QueryFilter{SubmittedBy: studentCode}, orderings...)
}

// Submit records the answers of a student, replacing any earlier submission of theirs.
func (svc *Service) Submit(ctx context.Context, ns NewSubmission) (Assignment, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Assignment{}, err
	}
	a, err := svc.GetByCode(ctx, ns.AssignmentCode)
	if err != nil {
		return Assignment{}, err
	}

	now := core.NowFunc()
	sub, err := Submit(&a, ns.StudentCode, ns.Answers, now)
	if err != nil {
		return Assignment{}, err
	}
	a, err = svc.repo.SaveSubmission(ctx, a.Code, ns.StudentCode, sub, now)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "saving submission")
	}
	svc.publish(ctx, core.AssignmentSubmitted, submissionEvent{Code: a.Code, StudentCode: ns.StudentCode, Submission: sub})
	return a, nil
}

// Review merges a teacher review into an existing submission.
func (svc *Service) Review(ctx context.Context, nr NewReview) (Assignment, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return Assignment{}, err
	}
	ratings, err := nr.QuestionRatings.Normalize()
	if err != nil {
		return Assignment{}, err
	}
	a, err := svc.GetByCode(ctx, nr.AssignmentCode)
	if err != nil {
		return Assignment{}, err
	}

	now := core.NowFunc()
	sub, err := Review(&a, nr.StudentCode, nr.Review, ratings, now)
	if err != nil {
		return Assignment{}, err
	}
	a, err = svc.repo.SaveSubmission(ctx, a.Code, nr.StudentCode, sub, now)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "saving review")
	}

	svc.publish(ctx, core.AssignmentReviewed, submissionEvent{Code: a.Code, StudentCode: nr.StudentCode, Submission: sub})
	svc.notifier.Notify(ctx, coursework.ReviewNotice{
		Kind:        "assignment",
		Name:        a.Name,
		Code:        a.Code,
		StudentCode: nr.StudentCode,
		Feedback:    sub.Feedback,
	})
	return a, nil
}

func (svc *Service) SubmittedStudents(ctx context.Context, code string) (SubmittedStudents, error) {
	a, err := svc.GetByCode(ctx, code)
	if err != nil {
		return SubmittedStudents{}, err
	}
	return SubmittedStudents{
		AssignmentCode: a.Code,
		AssignmentName: a.Name,
		Students:       a.SubmittedStudents(),
	}, nil
}

// StudentSubmission returns the assignment along with the submission of studentCode, if any.
func (svc *Service) StudentSubmission(ctx context.Context, code, studentCode string) (StudentSubmission, error) {
	a, err := svc.GetByCode(ctx, code)
	if err != nil {
		return StudentSubmission{}, err
	}
	studentCode = core.CleanString(studentCode)
	ss := StudentSubmission{Assignment: a.WithoutSubmissions(), StudentCode: studentCode}
	if sub, ok := a.Submission(studentCode); ok {
		ss.Submission = &sub
	}
	return ss, nil
}

type submissionEvent struct {
	Code        string     `json:"assignmentCode"`
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
