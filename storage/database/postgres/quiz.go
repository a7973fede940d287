package pgdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/quiz"
)

type quizRepository struct {
	table courseworkTable
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(db *sqlx.DB) quiz.Repository {
	return &quizRepository{table: courseworkTable{db: db, table: "quizes"}}
}

func quizToRow(qz quiz.Quiz) (courseworkRow, error) {
	questions, err := marshalJSON(qz.Questions)
	if err != nil {
		return courseworkRow{}, err
	}
	submissions, err := marshalJSON(qz.Submissions)
	if err != nil {
		return courseworkRow{}, err
	}
	return courseworkRow{
		ID:          qz.ID,
		Code:        qz.Code,
		Name:        qz.Name,
		TeacherCode: qz.TeacherCode,
		Subject:     qz.Subject,
		DueDate:     qz.DueDate,
		AssignedTo:  qz.AssignedTo,
		Questions:   questions,
		Submissions: submissions,
		CreatedAt:   qz.CreatedAt,
		UpdatedAt:   qz.UpdatedAt,
	}, nil
}

func rowToQuiz(row courseworkRow) (quiz.Quiz, error) {
	qz := quiz.Quiz{
		ID:          row.ID,
		TeacherCode: row.TeacherCode,
		Name:        row.Name,
		Code:        row.Code,
		Subject:     row.Subject,
		DueDate:     row.DueDate.UTC(),
		AssignedTo:  row.AssignedTo,
		Questions:   make(map[string]quiz.Question),
		Submissions: make(map[string]quiz.Submission),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if err := row.decode(&qz.Questions, &qz.Submissions); err != nil {
		return quiz.Quiz{}, core.NewPersistenceError("decoding quiz", err)
	}
	return qz, nil
}

func (repo *quizRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	return repo.table.codeExists(ctx, code)
}

func (repo *quizRepository) CreateQuiz(ctx context.Context, qz quiz.Quiz) (quiz.Quiz, error) {
	if qz.Questions == nil {
		qz.Questions = make(map[string]quiz.Question)
	}
	if qz.Submissions == nil {
		qz.Submissions = make(map[string]quiz.Submission)
	}
	row, err := quizToRow(qz)
	if err != nil {
		return quiz.Quiz{}, core.NewPersistenceError("encoding quiz", err)
	}
	if err = repo.table.insert(ctx, row); err != nil {
		return quiz.Quiz{}, err
	}
	return qz, nil
}

func (repo *quizRepository) GetQuizByCode(ctx context.Context, code string) (quiz.Quiz, error) {
	row, err := repo.table.get(ctx, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return quiz.Quiz{}, quiz.ErrNotFound
		}
		return quiz.Quiz{}, storeError("selecting quiz", err)
	}
	return rowToQuiz(row)
}

func (repo *quizRepository) QueryQuizzes(ctx context.Context, filter quiz.QueryFilter, orderings ...core.DBOrdering) ([]quiz.Quiz, error) {
	rows, err := repo.table.query(ctx, filter.TeacherCode, filter.AssignedTo, filter.SubmittedBy, orderings)
	if err != nil {
		return nil, err
	}
	quizzes := make([]quiz.Quiz, 0, len(rows))
	for _, row := range rows {
		qz, err := rowToQuiz(row)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, qz)
	}
	return quizzes, nil
}

func (repo *quizRepository) SaveSubmission(
	ctx context.Context,
	code, studentCode string,
	sub quiz.Submission,
	updatedAt time.Time,
) (quiz.Quiz, error) {
	row, err := repo.table.saveSubmission(ctx, code, studentCode, sub, updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return quiz.Quiz{}, quiz.ErrNotFound
		}
		return quiz.Quiz{}, storeError("saving submission", err)
	}
	return rowToQuiz(row)
}
