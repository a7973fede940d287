package inmemdb

import (
	"context"
	"time"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/quiz"
)

type quizRepository struct {
	db *quizTable
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(db *DB) quiz.Repository {
	return &quizRepository{db: db.quiz}
}

// copyQuiz returns a copy of qz that shares no map or slice with it.
func copyQuiz(qz quiz.Quiz) quiz.Quiz {
	questions := make(map[string]quiz.Question, len(qz.Questions))
	for k, q := range qz.Questions {
		questions[k] = q
	}
	submissions := make(map[string]quiz.Submission, len(qz.Submissions))
	for k, sub := range qz.Submissions {
		sub.Answers = append([]quiz.Answer{}, sub.Answers...)
		submissions[k] = sub
	}
	qz.Questions = questions
	qz.Submissions = submissions
	return qz
}

func (repo *quizRepository) CodeExists(_ context.Context, code string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	_, ok := repo.db.table[code]
	return ok, nil
}

func (repo *quizRepository) CreateQuiz(_ context.Context, qz quiz.Quiz) (quiz.Quiz, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[qz.Code]; ok {
		return quiz.Quiz{}, core.ErrDuplicateKey
	}
	qz = copyQuiz(qz)
	repo.db.table[qz.Code] = &qz
	return copyQuiz(qz), nil
}

func (repo *quizRepository) GetQuizByCode(_ context.Context, code string) (quiz.Quiz, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if qz, ok := repo.db.table[code]; ok {
		return copyQuiz(*qz), nil
	}
	return quiz.Quiz{}, quiz.ErrNotFound
}

func (repo *quizRepository) QueryQuizzes(_ context.Context, filter quiz.QueryFilter, orderings ...core.DBOrdering) ([]quiz.Quiz, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	quizzes := make([]quiz.Quiz, 0, len(repo.db.table))
	for _, qz := range repo.db.table {
		if filter.Match(*qz) {
			quizzes = append(quizzes, copyQuiz(*qz))
		}
	}
	sortByOrderings(
		len(quizzes),
		func(i, j int) { quizzes[i], quizzes[j] = quizzes[j], quizzes[i] },
		func(i int, field string) interface{} { return quizField(quizzes[i], field) },
		orderings,
	)
	return quizzes, nil
}

func quizField(qz quiz.Quiz, field string) interface{} {
	switch field {
	case "quizeName":
		return qz.Name
	case "quizeCode":
		return qz.Code
	case "subject":
		return qz.Subject
	case "dueDate":
		return qz.DueDate
	case "assignedTo":
		return qz.AssignedTo
	case "teacherCode":
		return qz.TeacherCode
	case "createdAt":
		return qz.CreatedAt
	case "updatedAt":
		return qz.UpdatedAt
	}
	return nil
}

func (repo *quizRepository) SaveSubmission(
	_ context.Context,
	code, studentCode string,
	sub quiz.Submission,
	updatedAt time.Time,
) (quiz.Quiz, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	qz, ok := repo.db.table[code]
	if !ok {
		return quiz.Quiz{}, quiz.ErrNotFound
	}
	updated := copyQuiz(*qz)
	sub.Answers = append([]quiz.Answer{}, sub.Answers...)
	updated.Submissions[studentCode] = sub
	updated.UpdatedAt = updatedAt
	repo.db.table[code] = &updated
	return copyQuiz(updated), nil
}
