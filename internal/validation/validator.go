// Package validation checks untrusted input fields and collects
// human-readable failures.
package validation

import (
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/dom/taskflow/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate

	personNamePattern = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
)

func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
			return personNamePattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return strongPassword(fl.Field().String())
		})
	})
	return validate
}

// strongPassword requires at least one lower-case letter, one upper-case
// letter and one digit.
func strongPassword(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// Validator accumulates field failures. Only the first failure per field is
// kept, matching the order the checks are declared in.
type Validator struct {
	fields []domain.FieldError
	failed map[string]bool
}

func New() *Validator {
	return &Validator{failed: make(map[string]bool)}
}

// Check runs a validator tag expression against value and records message
// under field on failure.
func (v *Validator) Check(field string, value any, tag, message string) *Validator {
	if v.failed[field] {
		return v
	}
	if err := engine().Var(value, tag); err != nil {
		v.Fail(field, message)
	}
	return v
}

// Fail records a failure that was decided by the caller.
func (v *Validator) Fail(field, message string) *Validator {
	if v.failed[field] {
		return v
	}
	v.failed[field] = true
	v.fields = append(v.fields, domain.FieldError{Field: field, Message: message})
	return v
}

func (v *Validator) Valid() bool {
	return len(v.fields) == 0
}

// Err returns a *domain.ValidationError, or nil when every check passed.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return domain.NewValidationError(v.fields...)
}

// Name checks a display name.
func (v *Validator) Name(field, name string) *Validator {
	return v.
		Check(field, name, "required", "Name is required").
		Check(field, name, "min=2,max=50", "Name must be between 2 and 50 characters").
		Check(field, name, "personname", "Name can only contain letters, spaces, hyphens, and apostrophes")
}

// Email checks an e-mail address.
func (v *Validator) Email(field, email string) *Validator {
	return v.
		Check(field, email, "required", "Email is required").
		Check(field, email, "email", "Please provide a valid email address")
}

// Password checks the strength rules for a new password.
func (v *Validator) Password(field, password string) *Validator {
	v.
		Check(field, password, "required", "Password is required").
		Check(field, password, "min=6", "Password must be at least 6 characters")
	// bcrypt only reads the first 72 bytes.
	if len(password) > 72 {
		v.Fail(field, "Password cannot exceed 72 characters")
	}
	return v.Check(field, password, "password", "Password must contain at least one uppercase letter, one lowercase letter, and one number")
}

// Title checks a task title. Creation and update report a missing title
// differently.
func (v *Validator) Title(field, title string, creating bool) *Validator {
	if creating {
		v.Check(field, title, "required", "Task title is required")
	} else {
		v.Check(field, title, "required", "Title cannot be empty")
	}
	return v.Check(field, title, "max=200", "Title cannot exceed 200 characters")
}

func (v *Validator) Description(field, description string) *Validator {
	return v.Check(field, description, "max=2000", "Description cannot exceed 2000 characters")
}

func (v *Validator) Status(field, status string) *Validator {
	return v.Check(field, status, "oneof=todo in-progress completed", "Status must be todo, in-progress, or completed")
}

func (v *Validator) Priority(field, priority string) *Validator {
	return v.Check(field, priority, "oneof=low medium high", "Priority must be low, medium, or high")
}

// DueDate parses an ISO 8601 date, recording a failure when it is not one.
func (v *Validator) DueDate(field, raw string) *time.Time {
	due, err := ParseDate(raw)
	if err != nil {
		v.Fail(field, "Due date must be a valid ISO 8601 date")
		return nil
	}
	return &due
}

// Tags checks the task tag list limits. Tags must already be trimmed.
func (v *Validator) Tags(field string, tags []string) *Validator {
	v.Check(field, tags, "max=10", "Tags must be an array with at most 10 items")
	for _, tag := range tags {
		v.Check(field, tag, "max=30", "Each tag cannot exceed 30 characters")
	}
	return v
}

// TrimAll trims every element, returning a new slice.
func TrimAll(values []string) []string {
	out := make([]string, len(values))
	for i, s := range values {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts the common ISO 8601 forms: a full timestamp with or
// without zone, or a calendar date. Values without a zone are taken as UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}
