package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const minPasswordLength = 8

var (
	validate        = validator.New(validator.WithRequiredStructEnabled())
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9@.+_-]+$`)
)

// commonPasswords is a short deny list of the most reused passwords.
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {},
	"123456789": {}, "1234567890": {}, "qwertyuiop": {}, "qwerty123": {},
	"iloveyou": {}, "sunshine": {}, "princess": {}, "football": {},
	"baseball": {}, "welcome1": {}, "letmein1": {}, "abc12345": {},
	"11111111": {}, "00000000": {}, "passw0rd": {}, "superman": {},
	"trustno1": {}, "starwars": {}, "whatever": {}, "dragon123": {},
}

// TaskRequest is the submitted task form.
type TaskRequest struct {
	Title       string `validate:"required,max=200"`
	Description string
	Complete    bool
}

// RegisterRequest is the submitted sign-up form.
type RegisterRequest struct {
	Username        string `validate:"required,max=150"`
	Email           string `validate:"required,email,max=254"`
	Password        string `validate:"required"`
	PasswordConfirm string `validate:"required"`
}

var fieldNames = map[string]string{
	"Title":           "title",
	"Username":        "username",
	"Email":           "email",
	"Password":        "password1",
	"PasswordConfirm": "password2",
}

// normalize trims the title. The description is free text and kept as typed.
func (r *TaskRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

func (r *RegisterRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// validateTask checks a normalized task form.
func validateTask(r TaskRequest) error {
	verr := &ValidationError{}
	structErrors(verr, r)
	return verr.OrNil()
}

// registerRules run in order after the struct tags pass for the fields they
// read. Uniqueness checks need the store and live in the user service.
var registerRules = []func(r RegisterRequest, verr *ValidationError){
	usernameCharset,
	passwordsMatch,
	passwordLength,
	passwordNotNumeric,
	passwordNotSimilar,
	passwordNotCommon,
}

// validateRegistration runs the struct tags and the explicit rule list.
func validateRegistration(r RegisterRequest) *ValidationError {
	verr := &ValidationError{}
	structErrors(verr, r)
	for _, rule := range registerRules {
		rule(r, verr)
	}
	return verr
}

func usernameCharset(r RegisterRequest, verr *ValidationError) {
	if r.Username != "" && !usernamePattern.MatchString(r.Username) {
		verr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
}

func passwordsMatch(r RegisterRequest, verr *ValidationError) {
	if r.Password != "" && r.PasswordConfirm != "" && r.Password != r.PasswordConfirm {
		verr.Add("password2", "The two password fields didn't match.")
	}
}

// The strength rules only look at a confirmed password.
func confirmed(r RegisterRequest) bool {
	return r.Password != "" && r.Password == r.PasswordConfirm
}

func passwordLength(r RegisterRequest, verr *ValidationError) {
	if confirmed(r) && len([]rune(r.Password)) < minPasswordLength {
		verr.Add("password2", fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	}
}

func passwordNotNumeric(r RegisterRequest, verr *ValidationError) {
	if !confirmed(r) {
		return
	}
	for _, c := range r.Password {
		if !unicode.IsDigit(c) {
			return
		}
	}
	verr.Add("password2", "This password is entirely numeric.")
}

func passwordNotSimilar(r RegisterRequest, verr *ValidationError) {
	if !confirmed(r) {
		return
	}
	pw := strings.ToLower(r.Password)
	candidates := map[string]string{"username": strings.ToLower(r.Username)}
	if local, _, ok := strings.Cut(r.Email, "@"); ok {
		candidates["email address"] = local
	}
	for label, v := range candidates {
		if len(v) >= 3 && (strings.Contains(pw, v) || strings.Contains(v, pw)) {
			verr.Add("password2", "The password is too similar to the "+label+".")
			return
		}
	}
}

func passwordNotCommon(r RegisterRequest, verr *ValidationError) {
	if !confirmed(r) {
		return
	}
	if _, ok := commonPasswords[strings.ToLower(r.Password)]; ok {
		verr.Add("password2", "This password is too common.")
	}
}

// structErrors translates validator tag failures into form messages.
func structErrors(verr *ValidationError, s any) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		verr.Add("__all__", err.Error())
		return
	}
	for _, fe := range ves {
		name, ok := fieldNames[fe.Field()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		verr.Add(name, tagMessage(fe))
	}
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), len([]rune(fmt.Sprint(fe.Value()))))
	default:
		return "Enter a valid value."
	}
}
