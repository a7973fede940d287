package pgdb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/pragya-git-bug/aibackend/core"
)

const driverName = "postgres"

//go:embed migrations/*.sql
var migrations embed.FS

func open(dbName string, admin bool, conf *core.Config) (*sqlx.DB, error) {
	user := url.UserPassword(conf.Database.User, conf.Database.Password)
	if admin && conf.Database.AdminUser != "" {
		user = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPassword)
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   driverName,
		User:     user,
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return sqlx.Open(driverName, u.String())
}

// Open opens the application database and waits for it to be ready.
func Open(ctx context.Context, conf *core.Config) (*sqlx.DB, error) {
	db, err := open(conf.Database.Name, false, conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping cancelled")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}

// StatusCheck reports whether the database answers.
func StatusCheck(ctx context.Context, db *sqlx.DB) error {
	var ok bool
	return db.QueryRowContext(ctx, "SELECT true").Scan(&ok)
}

func exists(ctx context.Context, db *sqlx.DB, query string, args ...interface{}) (bool, error) {
	var found bool
	err := db.QueryRowContext(ctx, query, args...).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return found, err
}

func createAppUser(ctx context.Context, db *sqlx.DB, conf *core.Config) error {
	if conf.Database.User == "" {
		return nil
	}

	found, err := exists(ctx, db, "SELECT true FROM pg_roles WHERE rolname = $1", conf.Database.User)
	if err != nil {
		return errors.Wrap(err, "checking app user")
	}
	if !found {
		q := fmt.Sprintf(
			"CREATE USER %s CREATEDB ENCRYPTED PASSWORD %s",
			pq.QuoteIdentifier(conf.Database.User),
			pq.QuoteLiteral(conf.Database.Password),
		)
		if _, err = db.ExecContext(ctx, q); err != nil {
			return errors.Wrap(err, "creating app user")
		}
	}
	return nil
}

func createDB(ctx context.Context, db *sqlx.DB, conf *core.Config) error {
	found, err := exists(ctx, db, "SELECT true FROM pg_database WHERE datname = $1", conf.Database.Name)
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !found {
		if _, err = db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the app user (as admin) then the app database (as app user).
func CreateIfNotExist(ctx context.Context, conf *core.Config) error {
	adminDB, err := open("postgres", true, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = adminDB.Close() }()

	if err = ping(ctx, adminDB); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	if err = createAppUser(ctx, adminDB, conf); err != nil {
		return errors.Wrap(err, "creating app user")
	}

	db, err := open("postgres", false, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = createDB(ctx, db, conf); err != nil {
		return errors.Wrap(err, "creating database")
	}
	return nil
}

// Migrate runs a goose command ("up", "down", "status", ...) against the embedded migrations.
func Migrate(ctx context.Context, db *sqlx.DB, command string, args ...string) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(driverName); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	if err := goose.RunContext(ctx, command, db.DB, "migrations", args...); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// storeError maps driver errors to core errors.
func storeError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return errors.Wrap(core.ErrDuplicateKey, op)
	}
	return core.NewPersistenceError(op, err)
}

// storage field -> column
var columns = map[string]string{
	"fullName":       "full_name",
	"email":          "email",
	"role":           "role",
	"className":      "class_name",
	"userCode":       "user_code",
	"assignmentName": "name",
	"assignmentCode": "code",
	"quizeName":      "name",
	"quizeCode":      "code",
	"subject":        "subject",
	"dueDate":        "due_date",
	"assignedTo":     "assigned_to",
	"teacherCode":    "teacher_code",
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
}

// orderBy translates orderings to an ORDER BY clause, falling back on created_at (ascending).
func orderBy(orderings []core.DBOrdering) string {
	clauses := make([]string, 0, len(orderings)+2)
	for _, ord := range orderings {
		col, ok := columns[ord.Field]
		if !ok {
			continue
		}
		dir := "DESC"
		if ord.Ascending {
			dir = "ASC"
		}
		clauses = append(clauses, col+" "+dir)
	}
	clauses = append(clauses, "created_at ASC", "id ASC")
	return " ORDER BY " + strings.Join(clauses, ", ")
}
