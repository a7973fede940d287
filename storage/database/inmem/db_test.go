package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/assignment"
	"github.com/pragya-git-bug/aibackend/core/quiz"
	"github.com/pragya-git-bug/aibackend/core/user"
)

var epoch = time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

func newAssignment(code, name string, createdAt time.Time) assignment.Assignment {
	return assignment.Assignment{
		Code:        code,
		Name:        name,
		TeacherCode: "TEA1234",
		AssignedTo:  "Grade 8",
		Questions:   map[string]assignment.Question{"1": {QuestionNo: 1, Question: "6 x 7 ?"}},
		Submissions: map[string]assignment.Submission{},
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(Open())
	ctx := context.Background()

	jane := user.User{UserCode: "JAN1234", FullName: "Jane Doe", Email: "jane@school.test", Role: user.RoleStudent, CreatedAt: epoch}
	john := user.User{UserCode: "JOH1234", FullName: "John Doe", Email: "john@school.test", Role: user.RoleTeacher, CreatedAt: epoch.Add(time.Second)}

	for _, usr := range []user.User{jane, john} {
		if _, err := repo.CreateUser(ctx, usr); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}

	t.Run("duplicates", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, user.User{UserCode: "JAN1234", Email: "other@school.test"})
		assert.True(t, core.IsDuplicateKey(err), "err = %v", err)
		_, err = repo.CreateUser(ctx, user.User{UserCode: "JAN9999", Email: "jane@school.test"})
		assert.True(t, core.IsDuplicateKey(err), "err = %v", err)
	})

	t.Run("lookups", func(t *testing.T) {
		exists, err := repo.CodeExists(ctx, "JAN1234")
		assert.NoError(t, err)
		assert.True(t, exists)

		usr, err := repo.GetUserByEmail(ctx, "john@school.test")
		assert.NoError(t, err)
		assert.Equal(t, "JOH1234", usr.UserCode)

		_, err = repo.GetUserByCode(ctx, "NOP0000")
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("query", func(t *testing.T) {
		users, err := repo.QueryUsers(ctx, user.QueryFilter{})
		assert.NoError(t, err)
		if assert.Len(t, users, 2) {
			assert.Equal(t, "JAN1234", users[0].UserCode)
		}

		users, err = repo.QueryUsers(ctx, user.QueryFilter{}, core.DBOrdering{Field: "fullName"})
		assert.NoError(t, err)
		if assert.Len(t, users, 2) {
			assert.Equal(t, "JOH1234", users[0].UserCode)
		}
	})

	t.Run("update", func(t *testing.T) {
		upd := jane
		upd.Email = "john@school.test"
		_, err := repo.UpdateUser(ctx, upd)
		assert.True(t, core.IsDuplicateKey(err), "err = %v", err)

		upd.Email = "jane.doe@school.test"
		upd.CreatedAt = time.Time{}
		got, err := repo.UpdateUser(ctx, upd)
		assert.NoError(t, err)
		assert.Equal(t, "jane.doe@school.test", got.Email)
		assert.Equal(t, epoch, got.CreatedAt, "createdAt is not updatable")

		_, err = repo.UpdateUser(ctx, user.User{UserCode: "NOP0000"})
		assert.Equal(t, user.ErrNotFound, err)
	})
}

func TestAssignmentRepository(t *testing.T) {
	repo := NewAssignmentRepository(Open())
	ctx := context.Background()

	alg := newAssignment("ALG1234", "Algebra", epoch)
	bio := newAssignment("BIO1234", "Biology", epoch.Add(time.Second))
	bio.AssignedTo = "Grade 9"
	for _, a := range []assignment.Assignment{bio, alg} {
		if _, err := repo.CreateAssignment(ctx, a); err != nil {
			t.Fatalf("CreateAssignment() failed: %v", err)
		}
	}
	_, err := repo.CreateAssignment(ctx, alg)
	assert.True(t, core.IsDuplicateKey(err), "err = %v", err)

	t.Run("stored copies are isolated", func(t *testing.T) {
		got, err := repo.GetAssignmentByCode(ctx, "ALG1234")
		assert.NoError(t, err)
		got.Questions["1"] = assignment.Question{QuestionNo: 1, Question: "changed"}
		got.Submissions["STU0001"] = assignment.Submission{}

		got, _ = repo.GetAssignmentByCode(ctx, "ALG1234")
		assert.Equal(t, "6 x 7 ?", got.Questions["1"].Question)
		assert.Empty(t, got.Submissions)
	})

	t.Run("save submission", func(t *testing.T) {
		sub := assignment.Submission{Answers: []assignment.Answer{{QuestionNo: 1, Answer: "42"}}, Status: assignment.StatusSubmitted}
		updatedAt := epoch.Add(time.Hour)

		got, err := repo.SaveSubmission(ctx, "ALG1234", "STU1234", sub, updatedAt)
		assert.NoError(t, err)
		assert.Equal(t, sub.Answers, got.Submissions["STU1234"].Answers)
		assert.Equal(t, updatedAt, got.UpdatedAt)

		sub.Answers[0].Answer = "changed"
		got, _ = repo.GetAssignmentByCode(ctx, "ALG1234")
		assert.Equal(t, "42", got.Submissions["STU1234"].Answers[0].Answer)

		_, err = repo.SaveSubmission(ctx, "NOP0000", "STU1234", sub, updatedAt)
		assert.True(t, errors.Is(err, assignment.ErrNotFound), "err = %v", err)
	})

	t.Run("query", func(t *testing.T) {
		tests := []struct {
			name      string
			filter    assignment.QueryFilter
			orderings []core.DBOrdering
			want      []string
		}{
			{name: "all by creation", want: []string{"ALG1234", "BIO1234"}},
			{name: "by name desc", orderings: []core.DBOrdering{{Field: "assignmentName"}}, want: []string{"BIO1234", "ALG1234"}},
			{name: "assigned to", filter: assignment.QueryFilter{AssignedTo: "Grade 9"}, want: []string{"BIO1234"}},
			{name: "submitted by", filter: assignment.QueryFilter{SubmittedBy: "STU1234"}, want: []string{"ALG1234"}},
			{name: "no match", filter: assignment.QueryFilter{TeacherCode: "TEA0000"}, want: []string{}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.QueryAssignments(ctx, tt.filter, tt.orderings...)
				assert.NoError(t, err)
				codes := make([]string, 0, len(got))
				for _, a := range got {
					codes = append(codes, a.Code)
				}
				assert.Equal(t, tt.want, codes)
			})
		}
	})
}

func TestQuizRepository(t *testing.T) {
	repo := NewQuizRepository(Open())
	ctx := context.Background()

	qz := quiz.Quiz{
		Code:        "CHE1234",
		Name:        "Chemistry",
		Questions:   map[string]quiz.Question{"1": {QuestionNo: 1, Question: "H2O is?", CorrectOption: "water"}},
		Submissions: map[string]quiz.Submission{},
		CreatedAt:   epoch,
	}
	if _, err := repo.CreateQuiz(ctx, qz); err != nil {
		t.Fatalf("CreateQuiz() failed: %v", err)
	}

	exists, err := repo.CodeExists(ctx, "CHE1234")
	assert.NoError(t, err)
	assert.True(t, exists)

	sub := quiz.Submission{Answers: []quiz.Answer{{QuestionNo: 1, Answer: "water", Match: true}}, Status: quiz.StatusActive}
	_, err = repo.SaveSubmission(ctx, "CHE1234", "STU1234", sub, epoch.Add(time.Minute))
	assert.NoError(t, err)
	_, err = repo.SaveSubmission(ctx, "CHE1234", "STU5678", sub, epoch.Add(2*time.Minute))
	assert.NoError(t, err)

	got, err := repo.GetQuizByCode(ctx, "CHE1234")
	assert.NoError(t, err)
	assert.Len(t, got.Submissions, 2)
	assert.Equal(t, epoch.Add(2*time.Minute), got.UpdatedAt)

	quizzes, err := repo.QueryQuizzes(ctx, quiz.QueryFilter{SubmittedBy: "STU5678"})
	assert.NoError(t, err)
	assert.Len(t, quizzes, 1)

	_, err = repo.GetQuizByCode(ctx, "NOP0000")
	assert.Equal(t, quiz.ErrNotFound, err)
}
