package pgdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/assignment"
)

type assignmentRepository struct {
	table courseworkTable
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{table: courseworkTable{db: db, table: "assignments"}}
}

func assignmentToRow(a assignment.Assignment) (courseworkRow, error) {
	questions, err := marshalJSON(a.Questions)
	if err != nil {
		return courseworkRow{}, err
	}
	submissions, err := marshalJSON(a.Submissions)
	if err != nil {
		return courseworkRow{}, err
	}
	return courseworkRow{
		ID:          a.ID,
		Code:        a.Code,
		Name:        a.Name,
		TeacherCode: a.TeacherCode,
		Subject:     a.Subject,
		DueDate:     a.DueDate,
		AssignedTo:  a.AssignedTo,
		Questions:   questions,
		Submissions: submissions,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}, nil
}

func rowToAssignment(row courseworkRow) (assignment.Assignment, error) {
	a := assignment.Assignment{
		ID:          row.ID,
		TeacherCode: row.TeacherCode,
		Name:        row.Name,
		Code:        row.Code,
		Subject:     row.Subject,
		DueDate:     row.DueDate.UTC(),
		AssignedTo:  row.AssignedTo,
		Questions:   make(map[string]assignment.Question),
		Submissions: make(map[string]assignment.Submission),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if err := row.decode(&a.Questions, &a.Submissions); err != nil {
		return assignment.Assignment{}, core.NewPersistenceError("decoding assignment", err)
	}
	return a, nil
}

func (repo *assignmentRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	return repo.table.codeExists(ctx, code)
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	if a.Questions == nil {
		a.Questions = make(map[string]assignment.Question)
	}
	if a.Submissions == nil {
		a.Submissions = make(map[string]assignment.Submission)
	}
	row, err := assignmentToRow(a)
	if err != nil {
		return assignment.Assignment{}, core.NewPersistenceError("encoding assignment", err)
	}
	if err = repo.table.insert(ctx, row); err != nil {
		return assignment.Assignment{}, err
	}
	return a, nil
}

func (repo *assignmentRepository) GetAssignmentByCode(ctx context.Context, code string) (assignment.Assignment, error) {
	row, err := repo.table.get(ctx, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, storeError("selecting assignment", err)
	}
	return rowToAssignment(row)
}

func (repo *assignmentRepository) QueryAssignments(
	ctx context.Context,
	filter assignment.QueryFilter,
	orderings ...core.DBOrdering,
) ([]assignment.Assignment, error) {
	rows, err := repo.table.query(ctx, filter.TeacherCode, filter.AssignedTo, filter.SubmittedBy, orderings)
	if err != nil {
		return nil, err
	}
	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		a, err := rowToAssignment(row)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

func (repo *assignmentRepository) SaveSubmission(
	ctx context.Context,
	code, studentCode string,
	sub assignment.Submission,
	updatedAt time.Time,
) (assignment.Assignment, error) {
	row, err := repo.table.saveSubmission(ctx, code, studentCode, sub, updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, storeError("saving submission", err)
	}
	return rowToAssignment(row)
}
