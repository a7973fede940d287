package user

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/codegen"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CodeExists(ctx context.Context, code string) (bool, error)
		// Store failures are returned as *core.PersistenceError.
		// CreateUser fails with core.ErrDuplicateKey when the email or the user code is taken.
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryUsers(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]User, error)
		GetUserByCode(ctx context.Context, code string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// UpdateUser saves every field of usr but its code, ID and CreatedAt.
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo     Repository
		codeGen  *codegen.Generator
		validate *validator.Validate
		events   core.EventPublisher
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	codeGen *codegen.Generator,
	validate *validator.Validate,
	events core.EventPublisher,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		codeGen:  codeGen,
		validate: validate,
		events:   events,
		logger:   logger,
	}
}

func (svc *Service) checkEmailUniqueness(ctx context.Context, email string, exclCode string) error {
	usr, err := svc.repo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return errors.Wrap(err, "checking email uniqueness")
	case usr.UserCode == exclCode:
		return nil
	}
	return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return User{}, err
	}
	if err := svc.checkEmailUniqueness(ctx, nu.Email, ""); err != nil {
		return User{}, err
	}

	now := core.NowFunc()
	usr := User{
		ID:           uuid.New().String(),
		FullName:     nu.FullName,
		Email:        nu.Email,
		MobileNumber: nu.MobileNumber,
		Role:         nu.Role,
		ClassName:    nu.ClassName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	var err error
	usr.UserCode, err = svc.codeGen.Assign(ctx, usr.UserCode, true, usr.FullName, CodeFallback, svc.repo.CodeExists)
	if err != nil {
		return User{}, errors.Wrap(err, "generating user code")
	}

	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}
	svc.publish(ctx, core.UserRegistered, usr)
	return usr, nil
}

func (svc *Service) QueryAll(ctx context.Context, orderings ...core.DBOrdering) ([]User, error) {
	return svc.Filter(ctx, QueryFilter{}, orderings...)
}

func (svc *Service) QueryByRole(ctx context.Context, role string, orderings ...core.DBOrdering) ([]User, error) {
	return svc.Filter(ctx, QueryFilter{Role: role}, orderings...)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]User, error) {
	filter.Clean()
	return svc.repo.QueryUsers(ctx, filter, core.CleanOrderings(orderings, OrderingFields)...)
}

func (svc *Service) GetByCode(ctx context.Context, code string) (User, error) {
	return svc.repo.GetUserByCode(ctx, core.CleanString(code))
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Login returns the user matching creds. It fails with ErrInvalidCredential
// whether the email is unknown or the password does not match.
func (svc *Service) Login(ctx context.Context, creds LoginCredentials) (User, error) {
	if err := svc.validate.Struct(creds); err != nil {
		return User{}, err
	}
	usr, err := svc.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredential
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if !usr.CheckPassword(creds.Password) {
		return User{}, ErrInvalidCredential
	}
	return usr, nil
}

// Update applies uu to the user with the given code.
// The password is re-hashed only when uu carries one.
func (svc *Service) Update(ctx context.Context, code string, uu UpdateUser) (User, error) {
	if err := uu.Validate(svc.validate); err != nil {
		return User{}, err
	}
	usr, err := svc.GetByCode(ctx, code)
	if err != nil {
		return User{}, err
	}
	if uu.Email != nil && *uu.Email != usr.Email {
		if err = svc.checkEmailUniqueness(ctx, *uu.Email, usr.UserCode); err != nil {
			return User{}, err
		}
	}

	uu.Apply(&usr)
	if uu.Password != nil {
		if err = usr.SetPassword(*uu.Password); err != nil {
			return User{}, err
		}
	}
	usr.UpdatedAt = core.NowFunc()

	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "updating user")
}

// ChangePassword sets a new password on the user with the given code.
func (svc *Service) ChangePassword(ctx context.Context, code, pwd string) (User, error) {
	return svc.Update(ctx, code, UpdateUser{Password: &pwd})
}

func (svc *Service) publish(ctx context.Context, typ core.EventType, usr User) {
	if svc.events == nil {
		return
	}
	if err := svc.events.Publish(ctx, core.NewEvent(typ, usr)); err != nil {
		svc.logger.Warn("publishing "+string(typ), err, usr)
	}
}
