package forms

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 150
	MinPasswordLength = 8
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	numericPattern  = regexp.MustCompile(`^[0-9]+$`)
)

// RegisterForm is the account creation submission. Username is kept as
// typed; the auth service lower-cases it before persisting.
type RegisterForm struct {
	Username  string
	Password1 string
	Password2 string
	Errors    Errors
}

func BindRegisterForm(values url.Values) *RegisterForm {
	return &RegisterForm{
		Username:  strings.TrimSpace(values.Get("username")),
		Password1: values.Get("password1"),
		Password2: values.Get("password2"),
		Errors:    Errors{},
	}
}

func (f *RegisterForm) Valid() bool {
	f.Errors = Errors{}

	if required(f.Errors, "username", f.Username) {
		maxLength(f.Errors, "username", f.Username, MaxUsernameLength)
		if !usernamePattern.MatchString(f.Username) {
			f.Errors.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
		}
	}

	if required(f.Errors, "password1", f.Password1) {
		if utf8.RuneCountInString(f.Password1) < MinPasswordLength {
			f.Errors.Add("password1", "This password is too short. It must contain at least 8 characters.")
		}
		if numericPattern.MatchString(f.Password1) {
			f.Errors.Add("password1", "This password is entirely numeric.")
		}
	}

	if required(f.Errors, "password2", f.Password2) && f.Password1 != f.Password2 {
		f.Errors.Add("password2", "The two password fields didn't match.")
	}

	return !f.Errors.Any()
}
