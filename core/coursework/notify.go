package coursework

import (
	"context"
	htmltmpl "html/template"
	"net/mail"
	"strconv"
	texttmpl "text/template"

	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/user"
)

var (
	reviewSubject  = "Your work has been reviewed"
	reviewTextTmpl = texttmpl.Must(texttmpl.New("review.txt").Parse(`Hello {{.StudentName}},

Your {{.Kind}} "{{.Name}}" ({{.Code}}) has been reviewed.
{{with .OverallScore}}
Overall score: {{.}}{{end}}{{with .TeacherComments}}
Comments: {{.}}{{end}}{{with .Summary}}
Summary: {{.}}{{end}}
`))
	reviewHTMLTmpl = htmltmpl.Must(htmltmpl.New("review.html").Parse(`<p>Hello {{.StudentName}},</p>
<p>Your {{.Kind}} <strong>{{.Name}}</strong> ({{.Code}}) has been reviewed.</p>
<ul>{{with .OverallScore}}
  <li>Overall score: {{.}}</li>{{end}}{{with .TeacherComments}}
  <li>Comments: {{.}}</li>{{end}}{{with .Summary}}
  <li>Summary: {{.}}</li>{{end}}
</ul>
`))
)

// StudentFinder looks students up by user code.
type StudentFinder interface {
	GetByCode(ctx context.Context, code string) (user.User, error)
}

// ReviewNotice describes a reviewed submission.
type ReviewNotice struct {
	Kind        string // assignment | quiz
	Name        string
	Code        string
	StudentCode string
	Feedback    Feedback
}

type reviewTemplateData struct {
	StudentName     string
	Kind            string
	Name            string
	Code            string
	OverallScore    string
	TeacherComments string
	Summary         string
}

// NewReviewMessage returns the email telling student that their work was reviewed.
func NewReviewMessage(student user.User, notice ReviewNotice) *core.EmailMessage {
	data := reviewTemplateData{
		StudentName: student.FullName,
		Kind:        notice.Kind,
		Name:        notice.Name,
		Code:        notice.Code,
	}
	if notice.Feedback.OverallScore != nil {
		data.OverallScore = strconv.FormatFloat(*notice.Feedback.OverallScore, 'f', -1, 64)
	}
	if notice.Feedback.TeacherComments != nil {
		data.TeacherComments = *notice.Feedback.TeacherComments
	}
	if notice.Feedback.Summary != nil {
		data.Summary = *notice.Feedback.Summary
	}
	return &core.EmailMessage{
		To:           []mail.Address{{Name: student.FullName, Address: student.Email}},
		Subject:      reviewSubject,
		TextTemplate: reviewTextTmpl,
		HTMLTemplate: reviewHTMLTmpl,
		TemplateData: data,
	}
}

// ReviewNotifier emails students when their work is reviewed.
type ReviewNotifier struct {
	students StudentFinder
	mailSvc  core.EmailService
	logger   core.Logger
}

func NewReviewNotifier(students StudentFinder, mailSvc core.EmailService, logger core.Logger) *ReviewNotifier {
	return &ReviewNotifier{students: students, mailSvc: mailSvc, logger: logger}
}

// Notify sends the review email. Students are weak references: an unknown student is skipped.
func (n *ReviewNotifier) Notify(ctx context.Context, notice ReviewNotice) {
	if n == nil {
		return
	}
	student, err := n.students.GetByCode(ctx, notice.StudentCode)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			n.logger.Warn("finding student to notify", errors.Wrap(err, "finding student "+notice.StudentCode))
		}
		return
	}
	n.mailSvc.SendMessages(NewReviewMessage(student, notice))
}
