// Package coursework holds what assignments and quizzes have in common:
// question keys, teacher reviews and the feedback part of a submission.
package coursework

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
)

const (
	MinRating = 0
	MaxRating = 10
)

var ErrInvalidQuestionKey = errors.New("question keys must be positive numbers, optionally prefixed with q (eg: 1 or q1)")

type Resource struct {
	Type string `json:"type" bson:"type"`
	Link string `json:"link" bson:"link" validate:"required,notblank"`
}

func CleanResources(resources []Resource) []Resource {
	if resources == nil {
		return nil
	}
	cleaned := make([]Resource, 0, len(resources))
	for _, r := range resources {
		cleaned = append(cleaned, Resource{Type: core.CleanString(r.Type), Link: core.CleanString(r.Link)})
	}
	return cleaned
}

// ParseQuestionNo parses a question key: "1", "q1" and "Q1" all give 1.
func ParseQuestionNo(key string) (int, error) {
	key = strings.TrimSpace(key)
	if len(key) > 1 && (key[0] == 'q' || key[0] == 'Q') {
		key = key[1:]
	}
	no, err := strconv.Atoi(key)
	if err != nil || no <= 0 {
		return 0, ErrInvalidQuestionKey
	}
	return no, nil
}

// QuestionNo is a question number that decodes from 1, "1" or "q1".
type QuestionNo int

func (qn *QuestionNo) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	no, err := ParseQuestionNo(raw)
	if err != nil {
		return errors.Wrapf(err, "questionNo %s", data)
	}
	*qn = QuestionNo(no)
	return nil
}

// QuestionKey is the canonical key of question no in a questions map.
func QuestionKey(no int) string {
	return strconv.Itoa(no)
}

// NormalizeQuestionKey returns the canonical form of key.
func NormalizeQuestionKey(key string) (string, error) {
	no, err := ParseQuestionNo(key)
	if err != nil {
		return "", err
	}
	return QuestionKey(no), nil
}

// Review holds the fields a teacher may set on a submission. nil fields are left untouched.
type Review struct {
	OverallScore      *float64   `json:"overallScore" validate:"omitempty,gte=0"`
	TeacherComments   *string    `json:"teacherComments"`
	Summary           *string    `json:"summary"`
	NeedPractice      []string   `json:"needPractice"`
	TopicUnderCovered []string   `json:"topicUnderCovered"`
	Resources         []Resource `json:"resources" validate:"omitempty,dive"`
}

func (r *Review) Clean() {
	if r.TeacherComments != nil {
		s := core.CleanString(*r.TeacherComments)
		r.TeacherComments = &s
	}
	if r.Summary != nil {
		s := core.CleanString(*r.Summary)
		r.Summary = &s
	}
	r.NeedPractice = core.CleanStrings(r.NeedPractice)
	r.TopicUnderCovered = core.CleanStrings(r.TopicUnderCovered)
	r.Resources = CleanResources(r.Resources)
}

// Feedback is the part of a submission written by the teacher, plus the submission date.
type Feedback struct {
	OverallScore      *float64   `json:"overallScore" bson:"overallScore"`
	SubmissionDate    *time.Time `json:"submissionDate" bson:"submissionDate"`
	TeacherComments   *string    `json:"teacherComments" bson:"teacherComments"`
	Summary           *string    `json:"summary" bson:"summary"`
	NeedPractice      []string   `json:"needPractice" bson:"needPractice"`
	TopicUnderCovered []string   `json:"topicUnderCovered" bson:"topicUnderCovered"`
	Resources         []Resource `json:"resources" bson:"resources"`
}

// NewFeedback returns the feedback of a fresh submission: submitted at, not reviewed yet.
func NewFeedback(submittedAt time.Time) Feedback {
	return Feedback{
		SubmissionDate:    &submittedAt,
		NeedPractice:      []string{},
		TopicUnderCovered: []string{},
		Resources:         []Resource{},
	}
}

// Apply merges the provided fields of r.
func (f *Feedback) Apply(r Review) {
	if r.OverallScore != nil {
		score := *r.OverallScore
		f.OverallScore = &score
	}
	if r.TeacherComments != nil {
		comments := *r.TeacherComments
		f.TeacherComments = &comments
	}
	if r.Summary != nil {
		summary := *r.Summary
		f.Summary = &summary
	}
	if r.NeedPractice != nil {
		f.NeedPractice = append([]string{}, r.NeedPractice...)
	}
	if r.TopicUnderCovered != nil {
		f.TopicUnderCovered = append([]string{}, r.TopicUnderCovered...)
	}
	if r.Resources != nil {
		f.Resources = append([]Resource{}, r.Resources...)
	}
}

// Ratings are per question ratings keyed by question number ("1") or label ("q1").
type Ratings map[string]float64

// Normalize returns the ratings keyed by question number.
// Keys that are not question numbers are ignored.
func (rt Ratings) Normalize() (map[int]float64, error) {
	if len(rt) == 0 {
		return nil, nil
	}
	normalized := make(map[int]float64, len(rt))
	for key, rating := range rt {
		no, err := ParseQuestionNo(key)
		if err != nil {
			continue
		}
		if rating < MinRating || rating > MaxRating {
			msg := "ratings must be between 0 and 10"
			return nil, core.NewValidationError(errors.New(msg), core.FieldError{Field: "questionRatings", Error: msg})
		}
		if prev, ok := normalized[no]; ok && prev != rating {
			msg := "conflicting ratings for question " + QuestionKey(no)
			return nil, core.NewValidationError(errors.New(msg), core.FieldError{Field: "questionRatings", Error: msg})
		}
		normalized[no] = rating
	}
	return normalized, nil
}
