package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pragya-git-bug/aibackend/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// CodeFallback prefixes generated user codes when the full name has less than 3 letters.
const CodeFallback = "USR"

var (
	AllRoles = []string{RoleStudent, RoleTeacher, RoleAdmin}

	rolePriorities = map[string]int{
		RoleAdmin:   30,
		RoleTeacher: 20,
		RoleStudent: 10,
	}
)

// RolePriority returns 0 for unknown roles.
func RolePriority(role string) int {
	return rolePriorities[role]
}

// MaxSignupRole is the highest role a user may pick when signing up.
const MaxSignupRole = RoleTeacher

type User struct {
	ID           string    `json:"id" bson:"_id" db:"id"`
	FullName     string    `json:"fullName" bson:"fullName" db:"full_name"`
	Email        string    `json:"email" bson:"email" db:"email"`
	MobileNumber string    `json:"mobileNumber" bson:"mobileNumber" db:"mobile_number"`
	PasswordHash string    `json:"-" bson:"password" db:"password"`
	Role         string    `json:"role" bson:"role" db:"role"`
	ClassName    string    `json:"className" bson:"className" db:"class_name"`
	UserCode     string    `json:"userCode" bson:"userCode" db:"user_code"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt" db:"updated_at"` // UTC
}

// SetPassword hashes pwd unless it is already a bcrypt hash.
func (u *User) SetPassword(pwd string) error {
	hash, err := HashPassword(pwd)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) bool {
	return VerifyPassword(pwd, u.PasswordHash)
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// NewUser contains information needed to create a new User.
type NewUser struct {
	FullName     string `json:"fullName" validate:"required,notblank"`
	Email        string `json:"email" validate:"required,email"`
	MobileNumber string `json:"mobileNumber" validate:"required,phone"`
	Password     string `json:"password" validate:"required,min=6,pwdbytes"`
	Role         string `json:"role" validate:"required,role"`
	ClassName    string `json:"className" validate:"required,notblank"`
}

func (nu *NewUser) Clean() {
	nu.FullName = core.CleanString(nu.FullName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.MobileNumber = core.CleanString(nu.MobileNumber)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	nu.ClassName = core.CleanString(nu.ClassName)
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Clean()
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// nil fields are left untouched. The user code is immutable.
type UpdateUser struct {
	FullName     *string `json:"fullName" validate:"omitempty,notblank"`
	Email        *string `json:"email" validate:"omitempty,email"`
	MobileNumber *string `json:"mobileNumber" validate:"omitempty,phone"`
	Role         *string `json:"role" validate:"omitempty,role"`
	ClassName    *string `json:"className" validate:"omitempty,notblank"`
	Password     *string `json:"password" validate:"omitempty,min=6,pwdbytes"`
}

func (uu *UpdateUser) Clean() {
	clean := func(s *string, lower bool) {
		if s != nil {
			*s = core.CleanString(*s, lower)
		}
	}
	clean(uu.FullName, false)
	clean(uu.Email, true)
	clean(uu.MobileNumber, false)
	clean(uu.Role, true)
	clean(uu.ClassName, false)
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.Clean()
	return validate.Struct(uu)
}

// Apply copies the provided fields onto usr. The password is handled by the Service.
func (uu UpdateUser) Apply(usr *User) {
	if uu.FullName != nil {
		usr.FullName = *uu.FullName
	}
	if uu.Email != nil {
		usr.Email = *uu.Email
	}
	if uu.MobileNumber != nil {
		usr.MobileNumber = *uu.MobileNumber
	}
	if uu.Role != nil {
		usr.Role = *uu.Role
	}
	if uu.ClassName != nil {
		usr.ClassName = *uu.ClassName
	}
}

type LoginCredentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type QueryFilter struct {
	Role      string `query:"role"`
	ClassName string `query:"className"`
}

func (qf *QueryFilter) Clean() {
	qf.Role = core.CleanString(qf.Role, true /* lower */)
	qf.ClassName = core.CleanString(qf.ClassName)
}

func (qf QueryFilter) IsEmpty() bool {
	return qf.Role == "" && qf.ClassName == ""
}

// Match reports whether usr satisfies every set field of the filter.
func (qf QueryFilter) Match(usr User) bool {
	if qf.Role != "" && usr.Role != qf.Role {
		return false
	}
	if qf.ClassName != "" && usr.ClassName != qf.ClassName {
		return false
	}
	return true
}

// OrderingFields maps the json names of orderable fields to their storage names.
var OrderingFields = map[string]string{
	"fullName":  "fullName",
	"email":     "email",
	"role":      "role",
	"className": "className",
	"userCode":  "userCode",
	"createdAt": "createdAt",
	"updatedAt": "updatedAt",
}
