package assignment

import (
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/coursework"
)

// NewStudentSubmission builds the submission of answers to a, made at submittedAt.
// Every answer must refer to a question of a, at most once.
func NewStudentSubmission(a Assignment, answers []AnswerInput, submittedAt time.Time) (Submission, error) {
	seen := make(map[int]bool, len(answers))
	subAnswers := make([]Answer, 0, len(answers))
	for _, ans := range answers {
		no := int(ans.QuestionNo)
		if !a.HasQuestion(no) {
			return Submission{}, answerError("question " + strconv.Itoa(no) + " does not exist")
		}
		if seen[no] {
			return Submission{}, answerError("question " + strconv.Itoa(no) + " is answered more than once")
		}
		seen[no] = true
		subAnswers = append(subAnswers, Answer{QuestionNo: no, Answer: ans.Answer})
	}
	return Submission{
		Answers:  subAnswers,
		Feedback: coursework.NewFeedback(submittedAt),
		Status:   StatusSubmitted,
	}, nil
}

// Submit records the submission of studentCode on a, replacing any earlier one.
func Submit(a *Assignment, studentCode string, answers []AnswerInput, now time.Time) (Submission, error) {
	sub, err := NewStudentSubmission(*a, answers, now)
	if err != nil {
		return Submission{}, err
	}
	if a.Submissions == nil {
		a.Submissions = make(map[string]Submission)
	}
	a.Submissions[studentCode] = sub
	a.UpdatedAt = now
	return sub, nil
}

// ApplyReview merges review into sub and rates its answers. Ratings of unanswered questions are ignored.
func ApplyReview(sub Submission, review coursework.Review, ratings map[int]float64) Submission {
	sub.Feedback.Apply(review)
	if len(ratings) > 0 {
		answers := make([]Answer, len(sub.Answers))
		copy(answers, sub.Answers)
		for i, ans := range answers {
			if rate, ok := ratings[ans.QuestionNo]; ok {
				answers[i].Rate = rate
			}
		}
		sub.Answers = answers
	}
	sub.Status = StatusReviewed
	return sub
}

// Review applies review and ratings to the submission of studentCode on a.
// It fails with ErrSubmissionNotFound when the student has not submitted.
func Review(a *Assignment, studentCode string, review coursework.Review, ratings map[int]float64, now time.Time) (Submission, error) {
	sub, ok := a.Submission(studentCode)
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	sub = ApplyReview(sub, review, ratings)
	a.Submissions[studentCode] = sub
	a.UpdatedAt = now
	return sub, nil
}

func answerError(msg string) error {
	return core.NewValidationError(errors.New(msg), core.FieldError{Field: "answers", Error: msg})
}
