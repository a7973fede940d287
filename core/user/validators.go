package user

import (
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/pragya-git-bug/aibackend/core"
)

var (
	roleTag  = "role"
	roleText = "role must be one of student, teacher or admin"

	phoneTag   = "phone"
	phoneText  = "invalid mobile number"
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,18}[0-9]$`)

	pwdBytesTag  = "pwdbytes"
	pwdBytesText = "password cannot be longer than 72 bytes"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

// InitValidators registers the user validators on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)

	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	core.RegisterCustomTranslation(validate, translator, phoneTag, phoneText)

	_ = validate.RegisterValidation(pwdBytesTag, pwdBytesValidation)
	core.RegisterCustomTranslation(validate, translator, pwdBytesTag, pwdBytesText)

	validate.RegisterStructValidation(userStructValidation, NewUser{})
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// Custom Validators

func roleValidation(fl validator.FieldLevel) bool {
	if role, ok := fl.Field().Interface().(string); ok {
		for _, r := range AllRoles {
			if role == r {
				return true
			}
		}
	}
	return false
}

func phoneValidation(fl validator.FieldLevel) bool {
	if phone, ok := fl.Field().Interface().(string); ok {
		return phoneRegex.MatchString(phone)
	}
	return false
}

// pwdBytesValidation checks the bcrypt input limit, counted in bytes.
func pwdBytesValidation(fl validator.FieldLevel) bool {
	if pwd, ok := fl.Field().Interface().(string); ok {
		return len(pwd) <= MaxPasswordBytes
	}
	return false
}

// userStructValidation checks that the password of a NewUser is not too similar to its name or email.
func userStructValidation(sl validator.StructLevel) {
	if nu, ok := sl.Current().Interface().(NewUser); ok {
		if passwordTooSimilar(nu.Password, nu.FullName, nu.Email) {
			sl.ReportError(nu.Password, "password", "Password", pwdAttrSimTag, "")
		}
	}
}

func passwordTooSimilar(pwd string, attrs ...string) bool {
	if len(pwd) < 6 || IsHashed(pwd) {
		return false // reported by min / nothing to compare
	}
	lpwd := strings.Split(strings.ToLower(pwd), "")
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(lpwd, strings.Split(strings.ToLower(attr), "")).QuickRatio()
		if ratio >= pwdMaxSim {
			return true
		}
	}
	return false
}
