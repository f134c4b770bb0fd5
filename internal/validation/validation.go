// Package validation holds the form-level checks run before anything is
// persisted. The server re-runs them on every request; clients run them to
// fail fast before submitting.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/justsurfingit/career-tracker/internal/apperrors"
	"github.com/justsurfingit/career-tracker/internal/filter"
)

var phonePattern = regexp.MustCompile(`^[0-9+\-() .]{7,20}$`)

var (
	once     sync.Once
	instance *validator.Validate
)

// Register adds the custom rules and json field naming to v. It is applied
// to the gin binding engine as well as the package validator.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
}

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		instance.SetTagName("binding")
		if err := Register(instance); err != nil {
			panic(err)
		}
	})
	return instance
}

// Struct validates s using its `binding` tags.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	return Translate(err)
}

// Translate turns validator errors into an apperrors.ValidationError.
// Other errors (e.g. malformed JSON) come back as a single "body" entry.
func Translate(err error) error {
	verr := apperrors.NewValidationError()
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), message(fe))
		}
		return verr
	}
	verr.Add("body", err.Error())
	return verr
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "phone":
		return "must be a valid phone number"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	}
	return "failed " + fe.Tag() + " check"
}

// SalaryRange checks min ≤ max when both parse. Unparseable values are
// rejected so nothing silently drops out of salary filters later.
func SalaryRange(minRaw, maxRaw string, verr *apperrors.ValidationError) {
	lo, loOK := filter.ParseSalary(minRaw)
	hi, hiOK := filter.ParseSalary(maxRaw)
	if strings.TrimSpace(minRaw) != "" && !loOK {
		verr.Add("salary_min", "must be a number")
	}
	if strings.TrimSpace(maxRaw) != "" && !hiOK {
		verr.Add("salary_max", "must be a number")
	}
	if loOK && hiOK && lo > hi {
		verr.Add("salary_min", "must not exceed salary_max")
	}
}
