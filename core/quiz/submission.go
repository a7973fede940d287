package quiz

import (
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/coursework"
)

// NewStudentSubmission builds the submission of answers to qz, made at submittedAt.
// Each answer is matched against the correct option of its question.
func NewStudentSubmission(qz Quiz, answers []AnswerInput, submittedAt time.Time) (Submission, error) {
	seen := make(map[int]bool, len(answers))
	subAnswers := make([]Answer, 0, len(answers))
	for _, ans := range answers {
		no := int(ans.QuestionNo)
		q, ok := qz.Question(no)
		if !ok {
			return Submission{}, answerError("question " + strconv.Itoa(no) + " does not exist")
		}
		if seen[no] {
			return Submission{}, answerError("question " + strconv.Itoa(no) + " is answered more than once")
		}
		seen[no] = true
		subAnswers = append(subAnswers, Answer{
			QuestionNo: no,
			Answer:     ans.Answer,
			Match:      q.Matches(ans.Answer),
		})
	}
	return Submission{
		Answers:  subAnswers,
		Feedback: coursework.NewFeedback(submittedAt),
		Status:   StatusActive,
	}, nil
}

// Submit records the submission of studentCode on qz, replacing any earlier one.
func Submit(qz *Quiz, studentCode string, answers []AnswerInput, now time.Time) (Submission, error) {
	sub, err := NewStudentSubmission(*qz, answers, now)
	if err != nil {
		return Submission{}, err
	}
	if qz.Submissions == nil {
		qz.Submissions = make(map[string]Submission)
	}
	qz.Submissions[studentCode] = sub
	qz.UpdatedAt = now
	return sub, nil
}

// ApplyReview merges review into sub and completes it.
func ApplyReview(sub Submission, review coursework.Review) Submission {
	sub.Feedback.Apply(review)
	sub.Status = StatusCompleted
	return sub
}

// Review applies review to the submission of studentCode on qz.
// It fails with ErrSubmissionNotFound when the student has not submitted.
func Review(qz *Quiz, studentCode string, review coursework.Review, now time.Time) (Submission, error) {
	sub, ok := qz.Submission(studentCode)
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	sub = ApplyReview(sub, review)
	qz.Submissions[studentCode] = sub
	qz.UpdatedAt = now
	return sub, nil
}

func answerError(msg string) error {
	return core.NewValidationError(errors.New(msg), core.FieldError{Field: "answers", Error: msg})
}
