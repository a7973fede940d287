package inmemdb

import (
	"context"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) query(filter user.QueryFilter) []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		if filter.Match(*u) {
			users = append(users, *u)
		}
	}
	return users
}

func (repo *userRepository) CodeExists(_ context.Context, code string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	_, ok := repo.db.table[code]
	return ok, nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[usr.UserCode]; ok {
		return user.User{}, core.ErrDuplicateKey
	}
	for _, u := range repo.db.table {
		if u.Email == usr.Email {
			return user.User{}, core.ErrDuplicateKey
		}
	}
	repo.db.table[usr.UserCode] = &usr
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter, orderings ...core.DBOrdering) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := repo.query(filter)
	sortByOrderings(
		len(users),
		func(i, j int) { users[i], users[j] = users[j], users[i] },
		func(i int, field string) interface{} { return userField(users[i], field) },
		orderings,
	)
	return users, nil
}

func userField(usr user.User, field string) interface{} {
	switch field {
	case "fullName":
		return usr.FullName
	case "email":
		return usr.Email
	case "role":
		return usr.Role
	case "className":
		return usr.ClassName
	case "userCode":
		return usr.UserCode
	case "createdAt":
		return usr.CreatedAt
	case "updatedAt":
		return usr.UpdatedAt
	}
	return nil
}

func (repo *userRepository) GetUserByCode(_ context.Context, code string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[code]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.table {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origUsr, ok := repo.db.table[usr.UserCode]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	for code, u := range repo.db.table {
		if code != usr.UserCode && u.Email == usr.Email {
			return user.User{}, core.ErrDuplicateKey
		}
	}

	updated := *origUsr
	updated.FullName = usr.FullName
	updated.Email = usr.Email
	updated.MobileNumber = usr.MobileNumber
	updated.PasswordHash = usr.PasswordHash
	updated.Role = usr.Role
	updated.ClassName = usr.ClassName
	updated.UpdatedAt = usr.UpdatedAt

	repo.db.table[usr.UserCode] = &updated
	return updated, nil
}
