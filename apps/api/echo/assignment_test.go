package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pragya-git-bug/aibackend/core/assignment"
	"github.com/pragya-git-bug/aibackend/core/report"
	"github.com/pragya-git-bug/aibackend/core/user"
	testutil "github.com/pragya-git-bug/aibackend/tests"
)

func Test_assignmentApi_endToEnd(t *testing.T) {
	srv, svcs := setup(t)
	teacher := testutil.CreateUser(t, svcs.Users, "Tom Teacher", "tom@school.test", testPwd, user.RoleTeacher)
	jane := testutil.CreateUser(t, svcs.Users, "Jane Doe", "jane@school.test", testPwd, user.RoleStudent)

	rec := do(t, srv, httpTest{
		method: http.MethodPost,
		path:   "/api/assignments/add",
		body: map[string]interface{}{
			"teacherCode":    teacher.UserCode,
			"assignmentName": "Geometry basics",
			"subject":        "Maths",
			"dueDate":        time.Now().Add(48 * time.Hour).Format(time.RFC3339),
			"assignedTo":     "Grade 8",
			"questions": map[string]interface{}{
				"q1": map[string]string{"question": "What is a right angle?"},
				"2":  map[string]string{"question": "Sum of the angles of a triangle?"},
			},
		},
		wantCode: http.StatusCreated,
	})
	var asg assignment.Assignment
	decode(t, rec, &asg)
	assert.Regexp(t, `^GEO[0-9]{4}$`, asg.Code)
	assert.Len(t, asg.Questions, 2)
	assert.Contains(t, asg.Questions, "1")
	assert.Empty(t, asg.Submissions)

	t.Run("submit", func(t *testing.T) {
		rec := do(t, srv, httpTest{
			method: http.MethodPost,
			path:   "/api/assignments/submit",
			body: map[string]interface{}{
				"assignmentCode": asg.Code,
				"studentCode":    jane.UserCode,
				"answers": []map[string]interface{}{
					{"questionNo": "1", "answer": "90 degrees"},
					{"questionNo": "q2", "answer": "180 degrees", "rate": 10},
				},
			},
			wantCode: http.StatusOK,
		})
		var got assignment.Assignment
		decode(t, rec, &got)
		sub, ok := got.Submission(jane.UserCode)
		if !ok {
			t.Fatalf("submission of %s not found", jane.UserCode)
		}
		assert.Equal(t, assignment.StatusSubmitted, sub.Status)
		assert.NotNil(t, sub.SubmissionDate)
		assert.Nil(t, sub.OverallScore)
		for _, ans := range sub.Answers {
			assert.Zero(t, ans.Rate)
		}
	})

	t.Run("review", func(t *testing.T) {
		rec := do(t, srv, httpTest{
			method: http.MethodPost,
			path:   "/api/assignments/review",
			body: map[string]interface{}{
				"assignmentCode":  asg.Code,
				"studentCode":     jane.UserCode,
				"overallScore":    8.5,
				"teacherComments": "Well done",
				"questionRatings": map[string]float64{"q1": 9, "2": 8},
			},
			wantCode: http.StatusOK,
		})
		var got assignment.Assignment
		decode(t, rec, &got)
		sub, _ := got.Submission(jane.UserCode)
		assert.Equal(t, assignment.StatusReviewed, sub.Status)
		if assert.NotNil(t, sub.OverallScore) {
			assert.Equal(t, 8.5, *sub.OverallScore)
		}
		if assert.NotNil(t, sub.TeacherComments) {
			assert.Equal(t, "Well done", *sub.TeacherComments)
		}
		rates := map[int]float64{}
		for _, ans := range sub.Answers {
			rates[ans.QuestionNo] = ans.Rate
		}
		assert.Equal(t, map[int]float64{1: 9, 2: 8}, rates)
		assert.Len(t, svcs.Mail.SentMessages(), 1)
	})

	t.Run("review with unknown rating keys", func(t *testing.T) {
		rec := do(t, srv, httpTest{
			method: http.MethodPost,
			path:   "/api/assignments/review",
			body: map[string]interface{}{
				"assignmentCode":  asg.Code,
				"studentCode":     jane.UserCode,
				"overallScore":    8,
				"questionRatings": map[string]float64{"q1": 7, "bogus": 3},
			},
			wantCode: http.StatusOK,
		})
		var got assignment.Assignment
		decode(t, rec, &got)
		sub, _ := got.Submission(jane.UserCode)
		if assert.NotNil(t, sub.OverallScore) {
			assert.Equal(t, 8.0, *sub.OverallScore)
		}
		rates := map[int]float64{}
		for _, ans := range sub.Answers {
			rates[ans.QuestionNo] = ans.Rate
		}
		assert.Equal(t, map[int]float64{1: 7, 2: 8}, rates)
	})

	t.Run("submitted students", func(t *testing.T) {
		rec := do(t, srv, httpTest{path: "/api/assignments/submitted-students/" + asg.Code, wantCode: http.StatusOK})
		var got assignment.SubmittedStudents
		decode(t, rec, &got)
		assert.Equal(t, asg.Code, got.AssignmentCode)
		if assert.Len(t, got.Students, 1) {
			assert.Equal(t, jane.UserCode, got.Students[0].StudentCode)
			assert.Equal(t, assignment.StatusReviewed, got.Students[0].Status)
		}
	})

	t.Run("student submission", func(t *testing.T) {
		rec := do(t, srv, httpTest{path: "/api/assignments/student-submission/" + asg.Code + "/" + jane.UserCode, wantCode: http.StatusOK})
		var got assignment.StudentSubmission
		decode(t, rec, &got)
		assert.Equal(t, asg.Code, got.Assignment.Code)
		assert.NotNil(t, got.Submission)

		rec = do(t, srv, httpTest{path: "/api/assignments/student-submission/" + asg.Code + "/NOBODY1", wantCode: http.StatusOK})
		got = assignment.StudentSubmission{}
		decode(t, rec, &got)
		assert.Nil(t, got.Submission)
	})

	t.Run("student report", func(t *testing.T) {
		rec := do(t, srv, httpTest{path: "/api/assignments/student-report/" + jane.UserCode, wantCode: http.StatusOK})
		var got report.Report
		decode(t, rec, &got)
		if assert.NotNil(t, got.Student) {
			assert.Equal(t, jane.Email, got.Student.Email)
		}
		if assert.Len(t, got.Assignments, 1) {
			assert.Equal(t, asg.Code, got.Assignments[0].Code)
			assert.True(t, got.Assignments[0].Reviewed)
		}
		assert.Empty(t, got.Quizzes)
		assert.Equal(t, 1, got.Summary.Submitted)
		assert.Equal(t, 1, got.Summary.Reviewed)
	})

	t.Run("retrieve", func(t *testing.T) {
		rec := do(t, srv, httpTest{path: "/api/assignments/" + asg.Code, wantCode: http.StatusOK})
		var got assignment.Assignment
		decode(t, rec, &got)
		assert.Equal(t, asg.Name, got.Name)
	})
}

func Test_assignmentApi_errors(t *testing.T) {
	srv, svcs := setup(t)
	jane := testutil.CreateUser(t, svcs.Users, "Jane Doe", "jane@school.test", testPwd, user.RoleStudent)
	asg := testutil.CreateAssignment(t, svcs.Assignments, "TOM1000", "History", "Grade 8", "Who was Lumumba?")

	tests := []httpTest{
		{name: "retrieve unknown", path: "/api/assignments/NOP0000", wantCode: http.StatusNotFound},
		{name: "submitted students of unknown", path: "/api/assignments/submitted-students/NOP0000", wantCode: http.StatusNotFound},
		{
			name: "add without questions", method: http.MethodPost, path: "/api/assignments/add",
			body: map[string]string{"teacherCode": "TOM1000", "assignmentName": "Empty"}, wantCode: http.StatusBadRequest,
		},
		{
			name: "submit to unknown", method: http.MethodPost, path: "/api/assignments/submit",
			body: map[string]interface{}{
				"assignmentCode": "NOP0000", "studentCode": jane.UserCode,
				"answers": []map[string]interface{}{{"questionNo": 1, "answer": "a hero"}},
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "submit unknown question", method: http.MethodPost, path: "/api/assignments/submit",
			body: map[string]interface{}{
				"assignmentCode": asg.Code, "studentCode": jane.UserCode,
				"answers": []map[string]interface{}{{"questionNo": 7, "answer": "a hero"}},
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "review without submission", method: http.MethodPost, path: "/api/assignments/review",
			body: map[string]interface{}{"assignmentCode": asg.Code, "studentCode": jane.UserCode, "overallScore": 5},
			wantCode: http.StatusNotFound,
		},
		{
			name: "review negative score", method: http.MethodPost, path: "/api/assignments/review",
			body: map[string]interface{}{"assignmentCode": asg.Code, "studentCode": jane.UserCode, "overallScore": -1},
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			do(t, srv, tt)
		})
	}
}

func Test_assignmentApi_query(t *testing.T) {
	srv, svcs := setup(t)
	testutil.StepClock(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))

	geo := testutil.CreateAssignment(t, svcs.Assignments, "TOM1000", "Geography", "Grade 8", "Capital of Congo?")
	alg := testutil.CreateAssignment(t, svcs.Assignments, "ANN2000", "Algebra", "Grade 9", "Solve x+1=2")
	his := testutil.CreateAssignment(t, svcs.Assignments, "TOM1000", "History", "Grade 9", "Who was Lumumba?")

	do(t, srv, httpTest{
		method: http.MethodPost, path: "/api/assignments/submit",
		body: map[string]interface{}{
			"assignmentCode": alg.Code, "studentCode": "JAN1234",
			"answers": []map[string]interface{}{{"questionNo": 1, "answer": "x=1"}},
		},
		wantCode: http.StatusOK,
	})

	codes := func(path string) []string {
		rec := do(t, srv, httpTest{path: path, wantCode: http.StatusOK})
		var assignments []assignment.Assignment
		decode(t, rec, &assignments)
		cc := make([]string, 0, len(assignments))
		for _, a := range assignments {
			cc = append(cc, a.Code)
		}
		return cc
	}

	tests := []struct {
		path string
		want []string
	}{
		{"/api/assignments/all", []string{geo.Code, alg.Code, his.Code}},
		{"/api/assignments/all?ordering=-createdAt", []string{his.Code, alg.Code, geo.Code}},
		{"/api/assignments/all?ordering=assignmentName", []string{alg.Code, geo.Code, his.Code}},
		{"/api/assignments/all?teacherCode=TOM1000", []string{geo.Code, his.Code}},
		{"/api/assignments/all?assignedTo=Grade%209&teacherCode=TOM1000", []string{his.Code}},
		{"/api/assignments/all?submittedBy=JAN1234", []string{alg.Code}},
		{"/api/assignments/assigned-to/Grade%209", []string{alg.Code, his.Code}},
		{"/api/assignments/teacher/TOM1000?ordering=-createdAt", []string{his.Code, geo.Code}},
		{"/api/assignments/teacher/NOBODY", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(tt.path))
		})
	}
}
