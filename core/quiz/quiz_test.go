package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pragya-git-bug/aibackend/core/coursework"
)

func TestQuestion_Matches(t *testing.T) {
	q := Question{
		Options:       Options{Op1: "A", Op2: "B", Op3: "C", Op4: "D"},
		CorrectOption: "B",
	}
	byKey := Question{
		Options:       Options{Op1: "Paris", Op2: "Lyon", Op3: "Nice", Op4: "Lille"},
		CorrectOption: "op1",
	}

	tests := []struct {
		name   string
		q      Question
		answer string
		want   bool
	}{
		{name: "exact", q: q, answer: "B", want: true},
		{name: "case and spaces", q: q, answer: " b ", want: true},
		{name: "by option key", q: q, answer: "op2", want: true},
		{name: "wrong", q: q, answer: "C"},
		{name: "empty", q: q, answer: "  "},
		{name: "value of key-designated option", q: byKey, answer: "paris", want: true},
		{name: "key of key-designated option", q: byKey, answer: "OP1", want: true},
		{name: "other option", q: byKey, answer: "Lyon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Matches(tt.answer); got != tt.want {
				t.Errorf("Matches(%q) = %v; want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestNewQuiz_normalizeQuestions(t *testing.T) {
	opts := Options{Op1: "A", Op2: "B", Op3: "C", Op4: "D"}

	tests := []struct {
		name      string
		questions map[string]Question
		wantErr   bool
	}{
		{name: "valid", questions: map[string]Question{"q1": {Question: "?", Options: opts, CorrectOption: " B "}}},
		{name: "correct option by key", questions: map[string]Question{"1": {Question: "?", Options: opts, CorrectOption: "op4"}}},
		{name: "correct option not an option", questions: map[string]Question{"1": {Question: "?", Options: opts, CorrectOption: "E"}}, wantErr: true},
		{name: "invalid key", questions: map[string]Question{"first": {Question: "?", Options: opts, CorrectOption: "A"}}, wantErr: true},
		{
			name:      "duplicate",
			questions: map[string]Question{"1": {Question: "?", Options: opts, CorrectOption: "A"}, "Q1": {Question: "?", Options: opts, CorrectOption: "A"}},
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nq := NewQuiz{Questions: tt.questions}
			if err := nq.normalizeQuestions(); (err != nil) != tt.wantErr {
				t.Fatalf("normalizeQuestions() error = %v; wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				q, ok := nq.Questions["1"]
				assert.True(t, ok)
				assert.Equal(t, 1, q.QuestionNo)
			}
		})
	}
}

func newTestQuiz() Quiz {
	return Quiz{
		Code: "SCI1234",
		Name: "Science",
		Questions: map[string]Question{
			"1": {QuestionNo: 1, Question: "H2O is?", Options: Options{Op1: "A", Op2: "B", Op3: "C", Op4: "D"}, CorrectOption: "B"},
			"2": {QuestionNo: 2, Question: "Planets?", Options: Options{Op1: "7", Op2: "8", Op3: "9", Op4: "10"}, CorrectOption: "8"},
		},
		Submissions: map[string]Submission{},
	}
}

func TestSubmit(t *testing.T) {
	qz := newTestQuiz()
	now := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

	sub, err := Submit(&qz, "STU1234", []AnswerInput{{QuestionNo: 1, Answer: "B"}, {QuestionNo: 2, Answer: "9"}}, now)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	assert.Equal(t, []Answer{{QuestionNo: 1, Answer: "B", Match: true}, {QuestionNo: 2, Answer: "9", Match: false}}, sub.Answers)
	assert.Equal(t, StatusActive, sub.Status)
	assert.Equal(t, now, *sub.SubmissionDate)
	assert.Equal(t, 1, sub.Correct())
	assert.Equal(t, sub, qz.Submissions["STU1234"])

	// resubmission replaces everything
	sub, err = Submit(&qz, "STU1234", []AnswerInput{{QuestionNo: 1, Answer: "C"}}, now.Add(time.Minute))
	assert.NoError(t, err)
	assert.Equal(t, []Answer{{QuestionNo: 1, Answer: "C", Match: false}}, qz.Submissions["STU1234"].Answers)
	assert.Equal(t, 0, sub.Correct())

	_, err = Submit(&qz, "STU1234", []AnswerInput{{QuestionNo: 3, Answer: "C"}}, now)
	assert.Error(t, err)
}

func TestReview(t *testing.T) {
	qz := newTestQuiz()
	now := time.Now().UTC()

	_, err := Review(&qz, "STU1234", coursework.Review{}, now)
	assert.Equal(t, ErrSubmissionNotFound, err)

	_, _ = Submit(&qz, "STU1234", []AnswerInput{{QuestionNo: 1, Answer: "B"}}, now)
	comments := "good"
	score := 9.0
	if _, err = Review(&qz, "STU1234", coursework.Review{TeacherComments: &comments}, now); err != nil {
		t.Fatalf("Review() failed: %v", err)
	}
	sub, err := Review(&qz, "STU1234", coursework.Review{OverallScore: &score}, now)
	assert.NoError(t, err)

	assert.Equal(t, StatusCompleted, sub.Status)
	assert.Equal(t, 9.0, *sub.OverallScore)
	assert.Equal(t, "good", *sub.TeacherComments)
	assert.True(t, sub.Answers[0].Match, "review must not touch the answers")
}

func TestQuiz_SubmittedStudents(t *testing.T) {
	qz := newTestQuiz()
	now := time.Now().UTC()
	_, _ = Submit(&qz, "STU2222", []AnswerInput{{QuestionNo: 1, Answer: "B"}, {QuestionNo: 2, Answer: "8"}}, now)
	_, _ = Submit(&qz, "STU1111", []AnswerInput{{QuestionNo: 1, Answer: "A"}}, now)

	students := qz.SubmittedStudents()
	if assert.Len(t, students, 2) {
		assert.Equal(t, "STU1111", students[0].StudentCode)
		assert.Equal(t, 0, students[0].Correct)
		assert.Equal(t, "STU2222", students[1].StudentCode)
		assert.Equal(t, 2, students[1].Correct)
		assert.Equal(t, 2, students[1].Total)
	}
}
