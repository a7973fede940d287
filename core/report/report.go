// Package report aggregates the work of a student across assignments and quizzes.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/assignment"
	"github.com/pragya-git-bug/aibackend/core/coursework"
	"github.com/pragya-git-bug/aibackend/core/quiz"
	"github.com/pragya-git-bug/aibackend/core/user"
)

const (
	KindAssignment = "assignment"
	KindQuiz       = "quiz"
)

type (
	AssignmentFinder interface {
		QuerySubmittedBy(ctx context.Context, studentCode string, orderings ...core.DBOrdering) ([]assignment.Assignment, error)
	}

	QuizFinder interface {
		QuerySubmittedBy(ctx context.Context, studentCode string, orderings ...core.DBOrdering) ([]quiz.Quiz, error)
	}

	// Item is the outcome of one assignment or quiz for the student.
	Item struct {
		Kind            string     `json:"kind"`
		Code            string     `json:"code"`
		Name            string     `json:"name"`
		Subject         string     `json:"subject"`
		TeacherCode     string     `json:"teacherCode"`
		DueDate         time.Time  `json:"dueDate"`
		Status          string     `json:"status"`
		Reviewed        bool       `json:"reviewed"`
		SubmissionDate  *time.Time `json:"submissionDate"`
		OverallScore    *float64   `json:"overallScore"`
		TeacherComments *string    `json:"teacherComments"`
		Correct         *int       `json:"correct,omitempty"` // quizzes only
		Total           *int       `json:"total,omitempty"`   // quizzes only
	}

	Summary struct {
		Submitted    int      `json:"submitted"`
		Reviewed     int      `json:"reviewed"`
		AverageScore *float64 `json:"averageScore"` // over reviewed and scored items
	}

	Report struct {
		StudentCode string     `json:"studentCode"`
		Student     *user.User `json:"student"` // nil when no user has this code
		Assignments []Item     `json:"assignments"`
		Quizzes     []Item     `json:"quizes"`
		Summary     Summary    `json:"summary"`
		GeneratedAt time.Time  `json:"generatedAt"`
	}

	Service struct {
		students    coursework.StudentFinder
		assignments AssignmentFinder
		quizzes     QuizFinder
	}
)

func NewService(students coursework.StudentFinder, assignments AssignmentFinder, quizzes QuizFinder) *Service {
	return &Service{students: students, assignments: assignments, quizzes: quizzes}
}

// StudentReport gathers every assignment and quiz studentCode submitted.
// Students are weak references: the report is produced even when no user has this code.
func (svc *Service) StudentReport(ctx context.Context, studentCode string) (Report, error) {
	studentCode = core.CleanString(studentCode)
	if studentCode == "" {
		return Report{}, core.NewValidationError(nil, core.FieldError{Field: "studentCode", Error: "this field is required"})
	}

	rep := Report{StudentCode: studentCode, GeneratedAt: core.NowFunc()}

	usr, err := svc.students.GetByCode(ctx, studentCode)
	switch {
	case err == nil:
		rep.Student = &usr
	case !errors.Is(err, user.ErrNotFound):
		return Report{}, errors.Wrap(err, "finding student")
	}

	assignments, err := svc.assignments.QuerySubmittedBy(ctx, studentCode)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying assignments")
	}
	rep.Assignments = make([]Item, 0, len(assignments))
	for _, a := range assignments {
		if sub, ok := a.Submission(studentCode); ok {
			rep.Assignments = append(rep.Assignments, assignmentItem(a, sub))
		}
	}

	quizzes, err := svc.quizzes.QuerySubmittedBy(ctx, studentCode)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying quizzes")
	}
	rep.Quizzes = make([]Item, 0, len(quizzes))
	for _, qz := range quizzes {
		if sub, ok := qz.Submission(studentCode); ok {
			rep.Quizzes = append(rep.Quizzes, quizItem(qz, sub))
		}
	}

	sortItems(rep.Assignments)
	sortItems(rep.Quizzes)
	rep.Summary = summarize(rep.Assignments, rep.Quizzes)
	return rep, nil
}

func assignmentItem(a assignment.Assignment, sub assignment.Submission) Item {
	return Item{
		Kind:            KindAssignment,
		Code:            a.Code,
		Name:            a.Name,
		Subject:         a.Subject,
		TeacherCode:     a.TeacherCode,
		DueDate:         a.DueDate,
		Status:          sub.Status,
		Reviewed:        sub.Status == assignment.StatusReviewed,
		SubmissionDate:  sub.SubmissionDate,
		OverallScore:    sub.OverallScore,
		TeacherComments: sub.TeacherComments,
	}
}

func quizItem(qz quiz.Quiz, sub quiz.Submission) Item {
	correct, total := sub.Correct(), len(qz.Questions)
	return Item{
		Kind:            KindQuiz,
		Code:            qz.Code,
		Name:            qz.Name,
		Subject:         qz.Subject,
		TeacherCode:     qz.TeacherCode,
		DueDate:         qz.DueDate,
		Status:          sub.Status,
		Reviewed:        sub.Status == quiz.StatusCompleted,
		SubmissionDate:  sub.SubmissionDate,
		OverallScore:    sub.OverallScore,
		TeacherComments: sub.TeacherComments,
		Correct:         &correct,
		Total:           &total,
	}
}

// sortItems orders items by submission date, most recent first.
func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		di, dj := items[i].SubmissionDate, items[j].SubmissionDate
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		}
		return di.After(*dj)
	})
}

func summarize(itemSets ...[]Item) Summary {
	var (
		sum     Summary
		total   float64
		nScored int
	)
	for _, items := range itemSets {
		for _, it := range items {
			sum.Submitted++
			if !it.Reviewed {
				continue
			}
			sum.Reviewed++
			if it.OverallScore != nil {
				total += *it.OverallScore
				nScored++
			}
		}
	}
	if nScored > 0 {
		avg := total / float64(nScored)
		sum.AverageScore = &avg
	}
	return sum
}
