package pgdb

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
)

const courseworkColumns = "id, code, name, teacher_code, subject, due_date, assigned_to, questions, submissions, created_at, updated_at"

// courseworkRow is the row shape shared by the assignments and quizes tables.
// Questions and submissions are stored as JSONB documents keyed like the domain maps.
type courseworkRow struct {
	ID          string         `db:"id"`
	Code        string         `db:"code"`
	Name        string         `db:"name"`
	TeacherCode string         `db:"teacher_code"`
	Subject     string         `db:"subject"`
	DueDate     time.Time      `db:"due_date"`
	AssignedTo  string         `db:"assigned_to"`
	Questions   types.JSONText `db:"questions"`
	Submissions types.JSONText `db:"submissions"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func marshalJSON(v interface{}) (types.JSONText, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return types.JSONText(b), nil
}

// decode unmarshals the JSONB columns into questions and submissions (pointers to maps).
func (row courseworkRow) decode(questions, submissions interface{}) error {
	if len(row.Questions) > 0 {
		if err := row.Questions.Unmarshal(questions); err != nil {
			return errors.Wrap(err, "decoding questions")
		}
	}
	if len(row.Submissions) > 0 {
		if err := row.Submissions.Unmarshal(submissions); err != nil {
			return errors.Wrap(err, "decoding submissions")
		}
	}
	return nil
}

type courseworkTable struct {
	db    *sqlx.DB
	table string
}

func (t courseworkTable) codeExists(ctx context.Context, code string) (bool, error) {
	found, err := exists(ctx, t.db, "SELECT true FROM "+t.table+" WHERE code = $1", code)
	if err != nil {
		return false, core.NewPersistenceError("checking "+t.table+" code", err)
	}
	return found, nil
}

func (t courseworkTable) insert(ctx context.Context, row courseworkRow) error {
	q := `INSERT INTO ` + t.table + ` (` + courseworkColumns + `)
		VALUES (:id, :code, :name, :teacher_code, :subject, :due_date, :assigned_to, :questions, :submissions, :created_at, :updated_at)`
	if _, err := t.db.NamedExecContext(ctx, q, row); err != nil {
		return storeError("inserting into "+t.table, err)
	}
	return nil
}

// get returns sql.ErrNoRows (unwrapped) when no row has the code.
func (t courseworkTable) get(ctx context.Context, code string) (courseworkRow, error) {
	var row courseworkRow
	err := t.db.GetContext(ctx, &row, "SELECT "+courseworkColumns+" FROM "+t.table+" WHERE code = $1", code)
	return row, err
}

func (t courseworkTable) query(
	ctx context.Context,
	teacherCode, assignedTo, submittedBy string,
	orderings []core.DBOrdering,
) ([]courseworkRow, error) {
	var (
		where []string
		args  []interface{}
	)
	if teacherCode != "" {
		args = append(args, teacherCode)
		where = append(where, "teacher_code = $"+strconv.Itoa(len(args)))
	}
	if assignedTo != "" {
		args = append(args, assignedTo)
		where = append(where, "assigned_to = $"+strconv.Itoa(len(args)))
	}
	if submittedBy != "" {
		args = append(args, submittedBy)
		where = append(where, "submissions ? $"+strconv.Itoa(len(args)))
	}

	q := "SELECT " + courseworkColumns + " FROM " + t.table
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += orderBy(orderings)

	rows := make([]courseworkRow, 0)
	if err := t.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, storeError("selecting from "+t.table, err)
	}
	return rows, nil
}

// saveSubmission sets submissions[studentCode] in place and returns the updated row,
// or sql.ErrNoRows (unwrapped) when no row has the code.
func (t courseworkTable) saveSubmission(
	ctx context.Context,
	code, studentCode string,
	sub interface{},
	updatedAt time.Time,
) (courseworkRow, error) {
	doc, err := marshalJSON(sub)
	if err != nil {
		return courseworkRow{}, core.NewPersistenceError("encoding submission", err)
	}
	q := `UPDATE ` + t.table + `
		SET submissions = jsonb_set(submissions, $1, $2::jsonb, true), updated_at = $3
		WHERE code = $4
		RETURNING ` + courseworkColumns

	var row courseworkRow
	err = t.db.GetContext(ctx, &row, q, pq.Array([]string{studentCode}), doc.String(), updatedAt, code)
	return row, err
}
