package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/assignment"
)

func Test_bindOrderings(t *testing.T) {
	tests := []struct {
		query string
		want  []core.DBOrdering
	}{
		{query: "", want: nil},
		{query: "?ordering=", want: nil},
		{query: "?ordering=assignmentName", want: []core.DBOrdering{{Field: "assignmentName", Ascending: true}}},
		{
			query: "?ordering=-createdAt,%20dueDate",
			want:  []core.DBOrdering{{Field: "createdAt"}, {Field: "dueDate", Ascending: true}},
		},
		{
			query: "?ordering=-dueDate&ordering=assignmentName",
			want:  []core.DBOrdering{{Field: "dueDate"}, {Field: "assignmentName", Ascending: true}},
		},
		{query: "?ordering=password,-,submissions", want: nil},
		{query: "?ordering=dueDate,-dueDate", want: []core.DBOrdering{{Field: "dueDate", Ascending: true}}},
	}
	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/assignments/all"+tt.query, nil)
			ctx := e.NewContext(req, httptest.NewRecorder())
			assert.Equal(t, tt.want, bindOrderings(ctx, assignment.OrderingFields))
		})
	}
}
