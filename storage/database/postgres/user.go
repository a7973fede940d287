package pgdb

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/user"
)

const userColumns = "id, full_name, email, mobile_number, password, role, class_name, user_code, created_at, updated_at"

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	found, err := exists(ctx, repo.db, "SELECT true FROM users WHERE user_code = $1", code)
	if err != nil {
		return false, core.NewPersistenceError("checking user code", err)
	}
	return found, nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :full_name, :email, :mobile_number, :password, :role, :class_name, :user_code, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, usr); err != nil {
		return user.User{}, storeError("inserting user", err)
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, orderings ...core.DBOrdering) ([]user.User, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Role != "" {
		args = append(args, filter.Role)
		where = append(where, "role = $"+strconv.Itoa(len(args)))
	}
	if filter.ClassName != "" {
		args = append(args, filter.ClassName)
		where = append(where, "class_name = $"+strconv.Itoa(len(args)))
	}

	q := "SELECT " + userColumns + " FROM users"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += orderBy(orderings)

	users := make([]user.User, 0)
	if err := repo.db.SelectContext(ctx, &users, q, args...); err != nil {
		return nil, storeError("selecting users", err)
	}
	return users, nil
}

func (repo *userRepository) getUser(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, "SELECT "+userColumns+" FROM users WHERE "+where, arg); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, storeError("selecting user", err)
	}
	return usr, nil
}

func (repo *userRepository) GetUserByCode(ctx context.Context, code string) (user.User, error) {
	return repo.getUser(ctx, "user_code = $1", code)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, "email = $1", email)
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE users SET
			full_name = :full_name,
			email = :email,
			mobile_number = :mobile_number,
			password = :password,
			role = :role,
			class_name = :class_name,
			updated_at = :updated_at
		WHERE user_code = :user_code
		RETURNING ` + userColumns
	rows, err := repo.db.NamedQueryContext(ctx, q, usr)
	if err != nil {
		return user.User{}, storeError("updating user", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return user.User{}, storeError("updating user", err)
		}
		return user.User{}, user.ErrNotFound
	}
	var updated user.User
	if err = rows.StructScan(&updated); err != nil {
		return user.User{}, storeError("updating user", err)
	}
	return updated, nil
}
