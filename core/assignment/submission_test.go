package assignment

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/coursework"
)

func newTestAssignment() Assignment {
	return Assignment{
		Code: "ALG1234",
		Name: "Algebra Basics",
		Questions: map[string]Question{
			"1": {QuestionNo: 1, Question: "6 x 7 ?"},
			"2": {QuestionNo: 2, Question: "9 + 10 ?"},
		},
		Submissions: map[string]Submission{},
	}
}

func TestNewStudentSubmission(t *testing.T) {
	now := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		answers []AnswerInput
		wantErr bool
	}{
		{name: "all answered", answers: []AnswerInput{{QuestionNo: 1, Answer: "42"}, {QuestionNo: 2, Answer: "19"}}},
		{name: "partially answered", answers: []AnswerInput{{QuestionNo: 2, Answer: "21"}}},
		{name: "unknown question", answers: []AnswerInput{{QuestionNo: 3, Answer: "?"}}, wantErr: true},
		{name: "answered twice", answers: []AnswerInput{{QuestionNo: 1, Answer: "42"}, {QuestionNo: 1, Answer: "41"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := NewStudentSubmission(newTestAssignment(), tt.answers, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStudentSubmission() error = %v; wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var verr *core.ValidationError
				assert.True(t, errors.As(err, &verr), "err = %T", err)
				return
			}
			assert.Equal(t, StatusSubmitted, sub.Status)
			assert.Equal(t, now, *sub.SubmissionDate)
			assert.Nil(t, sub.OverallScore)
			assert.Len(t, sub.Answers, len(tt.answers))
			for i, ans := range sub.Answers {
				assert.Equal(t, int(tt.answers[i].QuestionNo), ans.QuestionNo)
				assert.Equal(t, tt.answers[i].Answer, ans.Answer)
				assert.Zero(t, ans.Rate)
			}
		})
	}
}

func TestSubmit_lastWriteWins(t *testing.T) {
	a := newTestAssignment()
	first := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	_, err := Submit(&a, "STU1234", []AnswerInput{{QuestionNo: 1, Answer: "41"}, {QuestionNo: 2, Answer: "19"}}, first)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	score := 3.0
	sub, _ := Review(&a, "STU1234", coursework.Review{OverallScore: &score}, map[int]float64{1: 2}, first)
	assert.Equal(t, StatusReviewed, sub.Status)

	if _, err = Submit(&a, "STU1234", []AnswerInput{{QuestionNo: 1, Answer: "42"}}, second); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	got := a.Submissions["STU1234"]
	assert.Equal(t, []Answer{{QuestionNo: 1, Answer: "42"}}, got.Answers)
	assert.Equal(t, StatusSubmitted, got.Status)
	assert.Equal(t, second, *got.SubmissionDate)
	assert.Nil(t, got.OverallScore, "review of the first submission must not survive")
	assert.Equal(t, second, a.UpdatedAt)
}

func TestSubmit_otherStudentsUntouched(t *testing.T) {
	a := newTestAssignment()
	now := time.Now().UTC()

	_, _ = Submit(&a, "STU1111", []AnswerInput{{QuestionNo: 1, Answer: "42"}}, now)
	_, _ = Submit(&a, "STU2222", []AnswerInput{{QuestionNo: 2, Answer: "19"}}, now)

	assert.Len(t, a.Submissions, 2)
	assert.Equal(t, "42", a.Submissions["STU1111"].Answers[0].Answer)
	assert.Equal(t, "19", a.Submissions["STU2222"].Answers[0].Answer)
}

func TestApplyReview(t *testing.T) {
	submittedAt := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	fPtr := func(f float64) *float64 { return &f }
	sPtr := func(s string) *string { return &s }

	base := func() Submission {
		sub, _ := NewStudentSubmission(newTestAssignment(), []AnswerInput{{QuestionNo: 1, Answer: "42"}, {QuestionNo: 2, Answer: "19"}}, submittedAt)
		return sub
	}

	t.Run("ratings by number and label", func(t *testing.T) {
		ratings, err := coursework.Ratings{"1": 8, "q2": 6}.Normalize()
		if err != nil {
			t.Fatalf("Normalize() failed: %v", err)
		}
		sub := ApplyReview(base(), coursework.Review{}, ratings)
		assert.Equal(t, 8.0, sub.Answers[0].Rate)
		assert.Equal(t, 6.0, sub.Answers[1].Rate)
		assert.Equal(t, StatusReviewed, sub.Status)
	})

	t.Run("unmatched ratings ignored", func(t *testing.T) {
		sub := ApplyReview(base(), coursework.Review{}, map[int]float64{7: 9})
		assert.Zero(t, sub.Answers[0].Rate)
		assert.Zero(t, sub.Answers[1].Rate)
		assert.Equal(t, StatusReviewed, sub.Status)
	})

	t.Run("partial merge", func(t *testing.T) {
		sub := ApplyReview(base(), coursework.Review{
			OverallScore:    fPtr(5),
			TeacherComments: sPtr("show your work"),
			Summary:         sPtr("ok"),
			NeedPractice:    []string{"multiplication"},
		}, nil)
		sub = ApplyReview(sub, coursework.Review{OverallScore: fPtr(8)}, nil)

		assert.Equal(t, 8.0, *sub.OverallScore)
		assert.Equal(t, "show your work", *sub.TeacherComments)
		assert.Equal(t, "ok", *sub.Summary)
		assert.Equal(t, []string{"multiplication"}, sub.NeedPractice)
		assert.Equal(t, submittedAt, *sub.SubmissionDate)
	})

	t.Run("input left untouched", func(t *testing.T) {
		orig := base()
		_ = ApplyReview(orig, coursework.Review{}, map[int]float64{1: 8})
		assert.Zero(t, orig.Answers[0].Rate)
		assert.Equal(t, StatusSubmitted, orig.Status)
	})
}

func TestReview_submissionNotFound(t *testing.T) {
	a := newTestAssignment()
	_, err := Review(&a, "STU1234", coursework.Review{}, nil, time.Now())
	if err != ErrSubmissionNotFound {
		t.Errorf("Review() error = %v; wantErr %v", err, ErrSubmissionNotFound)
	}
}

func TestNewAssignment_normalizeQuestions(t *testing.T) {
	tests := []struct {
		name      string
		questions map[string]Question
		wantKeys  []string
		wantErr   bool
	}{
		{
			name:      "mixed keys",
			questions: map[string]Question{"1": {Question: "a"}, "q2": {Question: "b"}, "Q3": {QuestionNo: 3, Question: "c"}},
			wantKeys:  []string{"1", "2", "3"},
		},
		{name: "invalid key", questions: map[string]Question{"first": {Question: "a"}}, wantErr: true},
		{name: "mismatching questionNo", questions: map[string]Question{"1": {QuestionNo: 2, Question: "a"}}, wantErr: true},
		{name: "duplicate", questions: map[string]Question{"1": {Question: "a"}, "q1": {Question: "b"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			na := NewAssignment{Questions: tt.questions}
			err := na.normalizeQuestions()
			if (err != nil) != tt.wantErr {
				t.Fatalf("normalizeQuestions() error = %v; wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			for _, key := range tt.wantKeys {
				q, ok := na.Questions[key]
				if assert.True(t, ok, "missing question %s", key) {
					assert.Equal(t, key, coursework.QuestionKey(q.QuestionNo))
				}
			}
			assert.Len(t, na.Questions, len(tt.wantKeys))
		})
	}
}
