package inmemdb

import (
	"context"
	"time"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/assignment"
)

type assignmentRepository struct {
	db *assignmentTable
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db.assignment}
}

// copyAssignment returns a copy of a that shares no map or slice with it.
func copyAssignment(a assignment.Assignment) assignment.Assignment {
	questions := make(map[string]assignment.Question, len(a.Questions))
	for k, q := range a.Questions {
		questions[k] = q
	}
	submissions := make(map[string]assignment.Submission, len(a.Submissions))
	for k, sub := range a.Submissions {
		sub.Answers = append([]assignment.Answer{}, sub.Answers...)
		submissions[k] = sub
	}
	a.Questions = questions
	a.Submissions = submissions
	return a
}

func (repo *assignmentRepository) CodeExists(_ context.Context, code string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	_, ok := repo.db.table[code]
	return ok, nil
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[a.Code]; ok {
		return assignment.Assignment{}, core.ErrDuplicateKey
	}
	a = copyAssignment(a)
	repo.db.table[a.Code] = &a
	return copyAssignment(a), nil
}

func (repo *assignmentRepository) GetAssignmentByCode(_ context.Context, code string) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[code]; ok {
		return copyAssignment(*a), nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) QueryAssignments(
	_ context.Context,
	filter assignment.QueryFilter,
	orderings ...core.DBOrdering,
) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assignments := make([]assignment.Assignment, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		if filter.Match(*a) {
			assignments = append(assignments, copyAssignment(*a))
		}
	}
	sortByOrderings(
		len(assignments),
		func(i, j int) { assignments[i], assignments[j] = assignments[j], assignments[i] },
		func(i int, field string) interface{} { return assignmentField(assignments[i], field) },
		orderings,
	)
	return assignments, nil
}

func assignmentField(a assignment.Assignment, field string) interface{} {
	switch field {
	case "assignmentName":
		return a.Name
	case "assignmentCode":
		return a.Code
	case "subject":
		return a.Subject
	case "dueDate":
		return a.DueDate
	case "assignedTo":
		return a.AssignedTo
	case "teacherCode":
		return a.TeacherCode
	case "createdAt":
		return a.CreatedAt
	case "updatedAt":
		return a.UpdatedAt
	}
	return nil
}

func (repo *assignmentRepository) SaveSubmission(
	_ context.Context,
	code, studentCode string,
	sub assignment.Submission,
	updatedAt time.Time,
) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.table[code]
	if !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	updated := copyAssignment(*a)
	sub.Answers = append([]assignment.Answer{}, sub.Answers...)
	updated.Submissions[studentCode] = sub
	updated.UpdatedAt = updatedAt
	repo.db.table[code] = &updated
	return copyAssignment(updated), nil
}
