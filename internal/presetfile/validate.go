package presetfile

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	layerNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
)

// validatorInstance returns the validator with the preset file tags registered.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		_ = v.RegisterValidation("layername", func(fl validator.FieldLevel) bool {
			return layerNamePattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
			_, err := regexp.Compile(fl.Field().String())
			return err == nil
		})

		validateInst = v
	})
	return validateInst
}

// Validate checks a decoded file and reports every problem.
func Validate(f *File) error {
	err := validatorInstance().Struct(f)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	var errs error
	for _, fe := range ves {
		errs = multierr.Append(errs, fmt.Errorf("%s: %s", fe.Namespace(), describe(fe)))
	}
	return errs
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return fmt.Sprintf("is required when %s is empty", fe.Param())
	case "excluded_with":
		return fmt.Sprintf("cannot be combined with %s", fe.Param())
	case "regexp":
		return fmt.Sprintf("invalid regular expression %q", fe.Value())
	case "layername":
		return fmt.Sprintf("invalid layer name %q", fe.Value())
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	case "contains":
		return fmt.Sprintf("must contain %q", fe.Param())
	}
	return fmt.Sprintf("failed %q", fe.Tag())
}
