package quiz

import (
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/coursework"
)

// Submission statuses
const (
	StatusPending   = "pending"
	StatusActive    = "active"    // submitted, waiting for the teacher
	StatusCompleted = "completed" // reviewed
	StatusCancelled = "cancelled"
)

// CodeFallback prefixes generated quiz codes when the name has less than 3 letters.
const CodeFallback = "QUI"

type Options struct {
	Op1 string `json:"op1" bson:"op1" validate:"required,notblank"`
	Op2 string `json:"op2" bson:"op2" validate:"required,notblank"`
	Op3 string `json:"op3" bson:"op3" validate:"required,notblank"`
	Op4 string `json:"op4" bson:"op4" validate:"required,notblank"`
}

func (o Options) byKey() [4][2]string {
	return [4][2]string{{"op1", o.Op1}, {"op2", o.Op2}, {"op3", o.Op3}, {"op4", o.Op4}}
}

// Resolve returns the key of the option s designates, either by key (eg: "op2") or by value.
// It returns "" when s designates no option.
func (o Options) Resolve(s string) string {
	s = normalize(s)
	if s == "" {
		return ""
	}
	for _, kv := range o.byKey() {
		if s == kv[0] || s == normalize(kv[1]) {
			return kv[0]
		}
	}
	return ""
}

type Question struct {
	QuestionNo    int     `json:"questionNo" bson:"questionNo"`
	Question      string  `json:"question" bson:"question" validate:"required,notblank"`
	Options       Options `json:"options" bson:"options"`
	CorrectOption string  `json:"correctOption" bson:"correctOption" validate:"required,notblank"`
	Difficulties  string  `json:"difficulties,omitempty" bson:"difficulties,omitempty"`
}

// Matches reports whether answer is the correct option of q.
// Both sides are compared trimmed and case insensitively, and an option may be given by key or by value.
func (q Question) Matches(answer string) bool {
	if normalize(answer) == "" {
		return false
	}
	if normalize(answer) == normalize(q.CorrectOption) {
		return true
	}
	key := q.Options.Resolve(answer)
	return key != "" && key == q.Options.Resolve(q.CorrectOption)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type Answer struct {
	QuestionNo int    `json:"questionNo" bson:"questionNo"`
	Answer     string `json:"answer" bson:"answer"`
	Match      bool   `json:"match" bson:"match"`
}

// Submission is the work of one student on a quiz.
type Submission struct {
	Answers             []Answer `json:"answers" bson:"answers"`
	coursework.Feedback `bson:",inline"`
	Status              string `json:"status" bson:"status"`
}

// Correct counts the matching answers.
func (s Submission) Correct() int {
	var n int
	for _, ans := range s.Answers {
		if ans.Match {
			n++
		}
	}
	return n
}

type Quiz struct {
	ID          string                `json:"id" bson:"_id"`
	TeacherCode string                `json:"teacherCode" bson:"teacherCode"`
	Name        string                `json:"quizeName" bson:"quizeName"`
	Code        string                `json:"quizeCode" bson:"quizeCode"`
	Subject     string                `json:"subject" bson:"subject"`
	DueDate     time.Time             `json:"dueDate" bson:"dueDate"`
	AssignedTo  string                `json:"assignedTo" bson:"assignedTo"`
	Questions   map[string]Question   `json:"questions" bson:"questions"`
	Submissions map[string]Submission `json:"submissions" bson:"submissions"` // by student code
	CreatedAt   time.Time             `json:"createdAt" bson:"createdAt"`     // UTC
	UpdatedAt   time.Time             `json:"updatedAt" bson:"updatedAt"`     // UTC
}

func (qz Quiz) Submission(studentCode string) (Submission, bool) {
	sub, ok := qz.Submissions[studentCode]
	return sub, ok
}

func (qz Quiz) Question(no int) (Question, bool) {
	q, ok := qz.Questions[coursework.QuestionKey(no)]
	return q, ok
}

// SubmittedStudents lists the students who submitted, ordered by student code.
func (qz Quiz) SubmittedStudents() []SubmittedStudent {
	students := make([]SubmittedStudent, 0, len(qz.Submissions))
	for code, sub := range qz.Submissions {
		students = append(students, SubmittedStudent{
			StudentCode:    code,
			Status:         sub.Status,
			SubmissionDate: sub.SubmissionDate,
			OverallScore:   sub.OverallScore,
			Correct:        sub.Correct(),
			Total:          len(qz.Questions),
		})
	}
	sort.Slice(students, func(i, j int) bool { return students[i].StudentCode < students[j].StudentCode })
	return students
}

// WithoutSubmissions returns a copy of qz that carries no student work.
func (qz Quiz) WithoutSubmissions() Quiz {
	qz.Submissions = map[string]Submission{}
	return qz
}

type SubmittedStudent struct {
	StudentCode    string     `json:"studentCode"`
	Status         string     `json:"status"`
	SubmissionDate *time.Time `json:"submissionDate"`
	OverallScore   *float64   `json:"overallScore"`
	Correct        int        `json:"correct"`
	Total          int        `json:"total"`
}

type SubmittedStudents struct {
	QuizCode string             `json:"quizeCode"`
	QuizName string             `json:"quizeName"`
	Students []SubmittedStudent `json:"students"`
}

// StudentSubmission is a quiz seen by one student. Submission is nil until the student submits.
type StudentSubmission struct {
	Quiz        Quiz        `json:"quize"`
	StudentCode string      `json:"studentCode"`
	Submission  *Submission `json:"submission"`
}

// NewQuiz contains information needed to create a new Quiz.
type NewQuiz struct {
	TeacherCode string              `json:"teacherCode" validate:"required,notblank"`
	Name        string              `json:"quizeName" validate:"required,notblank"`
	Subject     string              `json:"subject" validate:"required,notblank"`
	DueDate     time.Time           `json:"dueDate" validate:"required"`
	AssignedTo  string              `json:"assignedTo" validate:"required,notblank"`
	Questions   map[string]Question `json:"questions" validate:"required,min=1,dive"`
}

func (nq *NewQuiz) Clean() {
	nq.TeacherCode = core.CleanString(nq.TeacherCode)
	nq.Name = core.CleanString(nq.Name)
	nq.Subject = core.CleanString(nq.Subject)
	nq.AssignedTo = core.CleanString(nq.AssignedTo)
	nq.DueDate = nq.DueDate.UTC()
}

// normalizeQuestions re-keys the questions by question number and checks that every
// correct option designates one of the 4 options.
func (nq *NewQuiz) normalizeQuestions() error {
	questions := make(map[string]Question, len(nq.Questions))
	for key, q := range nq.Questions {
		no, err := coursework.ParseQuestionNo(key)
		if err != nil {
			return questionError(err.Error())
		}
		if q.QuestionNo != 0 && q.QuestionNo != no {
			return questionError("questionNo of question " + key + " does not match its key")
		}
		nkey := coursework.QuestionKey(no)
		if _, dup := questions[nkey]; dup {
			return questionError("question " + nkey + " is defined more than once")
		}

		q.QuestionNo = no
		q.Question = core.CleanString(q.Question)
		q.Options = Options{
			Op1: core.CleanString(q.Options.Op1),
			Op2: core.CleanString(q.Options.Op2),
			Op3: core.CleanString(q.Options.Op3),
			Op4: core.CleanString(q.Options.Op4),
		}
		q.CorrectOption = core.CleanString(q.CorrectOption)
		q.Difficulties = core.CleanString(q.Difficulties)
		if q.Options.Resolve(q.CorrectOption) == "" {
			return questionError("correctOption of question " + nkey + " is not one of its options")
		}
		questions[nkey] = q
	}
	nq.Questions = questions
	return nil
}

func (nq *NewQuiz) Validate(validate *validator.Validate) error {
	nq.Clean()
	if err := validate.Struct(nq); err != nil {
		return err
	}
	return nq.normalizeQuestions()
}

func questionError(msg string) error {
	return core.NewValidationError(errors.New(msg), core.FieldError{Field: "questions", Error: msg})
}

type AnswerInput struct {
	QuestionNo coursework.QuestionNo `json:"questionNo" validate:"required,gt=0"`
	Answer     string                `json:"answer" validate:"required,notblank"`
}

// NewSubmission contains the answers of a student to a quiz.
type NewSubmission struct {
	QuizCode    string        `json:"quizeCode" validate:"required,notblank"`
	StudentCode string        `json:"studentCode" validate:"required,alphanum"`
	Answers     []AnswerInput `json:"answers" validate:"required,min=1,dive"`
}

func (ns *NewSubmission) Clean() {
	ns.QuizCode = core.CleanString(ns.QuizCode)
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
	QuizCode    string `json:"quizeCode" validate:"required,notblank"`
	StudentCode string `json:"studentCode" validate:"required,alphanum"`
	coursework.Review
}

func (nr *NewReview) Clean() {
	nr.QuizCode = core.CleanString(nr.QuizCode)
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

// Match reports whether qz satisfies every set field of the filter.
func (qf QueryFilter) Match(qz Quiz) bool {
	if qf.TeacherCode != "" && qz.TeacherCode != qf.TeacherCode {
		return false
	}
	if qf.AssignedTo != "" && qz.AssignedTo != qf.AssignedTo {
		return false
	}
	if qf.SubmittedBy != "" {
		if _, ok := qz.Submissions[qf.SubmittedBy]; !ok {
			return false
		}
	}
	return true
}

// OrderingFields maps the json names of orderable fields to their storage names.
var OrderingFields = map[string]string{
	"quizeName":   "quizeName",
	"quizeCode":   "quizeCode",
	"subject":     "subject",
	"dueDate":     "dueDate",
	"assignedTo":  "assignedTo",
	"teacherCode": "teacherCode",
	"createdAt":   "createdAt",
	"updatedAt":   "updatedAt",
}
