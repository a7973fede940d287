package assignment

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/coursework"
)

// Submission statuses
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusReviewed  = "reviewed"
)

// CodeFallback prefixes generated assignment codes when the name has less than 3 letters.
const CodeFallback = "ASS"

type Question struct {
	QuestionNo   int    `json:"questionNo" bson:"questionNo"`
	Question     string `json:"question" bson:"question" validate:"required,notblank"`
	Difficulties string `json:"difficulties,omitempty" bson:"difficulties,omitempty"`
}

type Answer struct {
	QuestionNo int     `json:"questionNo" bson:"questionNo"`
	Answer     string  `json:"answer" bson:"answer"`
	Rate       float64 `json:"rate" bson:"rate"`
}

// Submission is the work of one student on an assignment.
type Submission struct {
	Answers             []Answer `json:"answers" bson:"answers"`
	coursework.Feedback `bson:",inline"`
	Status              string `json:"status" bson:"status"`
}

type Assignment struct {
	ID          string                `json:"id" bson:"_id"`
	TeacherCode string                `json:"teacherCode" bson:"teacherCode"`
	Name        string                `json:"assignmentName" bson:"assignmentName"`
	Code        string                `json:"assignmentCode" bson:"assignmentCode"`
	Subject     string                `json:"subject" bson:"subject"`
	DueDate     time.Time             `json:"dueDate" bson:"dueDate"`
	AssignedTo  string                `json:"assignedTo" bson:"assignedTo"`
	Questions   map[string]Question   `json:"questions" bson:"questions"`
	Submissions map[string]Submission `json:"submissions" bson:"submissions"` // by student code
	CreatedAt   time.Time             `json:"createdAt" bson:"createdAt"`     // UTC
	UpdatedAt   time.Time             `json:"updatedAt" bson:"updatedAt"`     // UTC
}

func (a Assignment) Submission(studentCode string) (Submission, bool) {
	sub, ok := a.Submissions[studentCode]
	return sub, ok
}

func (a Assignment) HasQuestion(no int) bool {
	_, ok := a.Questions[coursework.QuestionKey(no)]
	return ok
}

// SubmittedStudents lists the students who submitted, ordered by student code.
func (a Assignment) SubmittedStudents() []SubmittedStudent {
	students := make([]SubmittedStudent, 0, len(a.Submissions))
	for code, sub := range a.Submissions {
		students = append(students, SubmittedStudent{
			StudentCode:    code,
			Status:         sub.Status,
			SubmissionDate: sub.SubmissionDate,
			OverallScore:   sub.OverallScore,
		})
	}
	sort.Slice(students, func(i, j int) bool { return students[i].StudentCode < students[j].StudentCode })
	return students
}

// WithoutSubmissions returns a copy of a that carries no student work.
func (a Assignment) WithoutSubmissions() Assignment {
	a.Submissions = map[string]Submission{}
	return a
}

type SubmittedStudent struct {
	StudentCode    string     `json:"studentCode"`
	Status         string     `json:"status"`
	SubmissionDate *time.Time `json:"submissionDate"`
	OverallScore   *float64   `json:"overallScore"`
}

type SubmittedStudents struct {
	AssignmentCode string             `json:"assignmentCode"`
	AssignmentName string             `json:"assignmentName"`
	Students       []SubmittedStudent `json:"students"`
}

// StudentSubmission is an assignment seen by one student. Submission is nil until the student submits.
type StudentSubmission struct {
	Assignment  Assignment  `json:"assignment"`
	StudentCode string      `json:"studentCode"`
	Submission  *Submission `json:"submission"`
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	TeacherCode string              `json:"teacherCode" validate:"required,notblank"`
	Name        string              `json:"assignmentName" validate:"required,notblank"`
	Subject     string              `json:"subject" validate:"required,notblank"`
	DueDate     time.Time           `json:"dueDate" validate:"required"`
	AssignedTo  string              `json:"assignedTo" validate:"required,notblank"`
	Questions   map[string]Question `json:"questions" validate:"required,min=1,dive"`
}

func (na *NewAssignment) Clean() {
	na.TeacherCode = core.CleanString(na.TeacherCode)
	na.Name = core.CleanString(na.Name)
	na.Subject = core.CleanString(na.Subject)
	na.AssignedTo = core.CleanString(na.AssignedTo)
	na.DueDate = na.DueDate.UTC()
}

// normalizeQuestions re-keys the questions by question number. A question number set
// in the body must agree with its key.
func (na *NewAssignment) normalizeQuestions() error {
	if na.Questions == nil {
		return nil
	}
	questions := make(map[string]Question, len(na.Questions))
	for key, q := range na.Questions {
		no, err := coursework.ParseQuestionNo(key)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "questions", Error: err.Error()})
		}
		if q.QuestionNo != 0 && q.QuestionNo != no {
			msg := "questionNo of question " + key + " does not match its key"
			return core.NewValidationError(errors.New(msg), core.FieldError{Field: "questions", Error: msg})
		}
		nkey := coursework.QuestionKey(no)
		if _, dup := questions[nkey]; dup {
			msg := "question " + nkey + " is defined more than once"
			return core.NewValidationError(errors.New(msg), core.FieldError{Field: "questions", Error: msg})
		}
		q.QuestionNo = no
		q.Question = core.CleanString(q.Question)
		q.Difficulties = core.CleanString(q.Difficulties)
		questions[nkey] = q
	}
	na.Questions = questions
	return nil
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Clean()
	if err := validate.Struct(na); err != nil {
		return err
	}
	return na.normalizeQuestions()
}

type AnswerInput struct {
	QuestionNo coursework.QuestionNo `json:"questionNo" validate:"required,gt=0"`
	Answer     string                `json:"answer" validate:"required,notblank"`
}

// NewSubmission contains the answers of a student to an assignment.
type NewSubmission struct {
	AssignmentCode string        `json:"assignmentCode" validate:"required,notblank"`
	StudentCode    string        `json:"studentCode" validate:"required,alphanum"`
	Answers        []AnswerInput `json:"answers" validate:"required,min=1,dive"`
}

func (ns *NewSubmission) Clean() {
	ns.AssignmentCode = core.CleanString(ns.AssignmentCode)
	ns.StudentCode = core.CleanString(ns.StudentCode)
	for i := range ns.Answers {
		ns.Answers[i].Answer = core.CleanString(ns.Answers[i].Answer)
	}
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.Clean()
	return validate.Struct(ns)
}

// NewReview contains the review of a student's submission by a teacher.
type NewReview struct {
	AssignmentCode string `json:"assignmentCode" validate:"required,notblank"`
	StudentCode    string `json:"studentCode" validate:"required,alphanum"`
	coursework.Review
	QuestionRatings coursework.Ratings `json:"questionRatings"`
}

func (nr *NewReview) Clean() {
	nr.AssignmentCode = core.CleanString(nr.AssignmentCode)
	nr.StudentCode = core.CleanString(nr.StudentCode)
	nr.Review.Clean()
}

func (nr *NewReview) Validate(validate *validator.Validate) error {
	nr.Clean()
	return validate.Struct(nr)
}

type QueryFilter struct {
	TeacherCode string `query:"teacherCode"`
	AssignedTo  string `query:"assignedTo"`
	SubmittedBy string `query:"submittedBy"` // student code
}

func (qf *QueryFilter) Clean() {
	qf.TeacherCode = core.CleanString(qf.TeacherCode)
	qf.AssignedTo = core.CleanString(qf.AssignedTo)
	qf.SubmittedBy = core.CleanString(qf.SubmittedBy)
}

// Match reports whether a satisfies every set field of the filter.
func (qf QueryFilter) Match(a Assignment) bool {
	if qf.TeacherCode != "" && a.TeacherCode != qf.TeacherCode {
		return false
	}
	if qf.AssignedTo != "" && a.AssignedTo != qf.AssignedTo {
		return false
	}
	if qf.SubmittedBy != "" {
		if _, ok := a.Submissions[qf.SubmittedBy]; !ok {
			return false
		}
	}
	return true
}

// OrderingFields maps the json names of orderable fields to their storage names.
var OrderingFields = map[string]string{
	"assignmentName": "assignmentName",
	"assignmentCode": "assignmentCode",
	"subject":        "subject",
	"dueDate":        "dueDate",
	"assignedTo":     "assignedTo",
	"teacherCode":    "teacherCode",
	"createdAt":      "createdAt",
	"updatedAt":      "updatedAt",
}
