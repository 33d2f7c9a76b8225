package utilcss

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/multierr"
)

var (
	validatorOnce     sync.Once
	validatorInstance *validator.Validate

	layerNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
)

// Validator returns the shared validator with the layername tag registered.
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("layername", func(fl validator.FieldLevel) bool {
			return layerNamePattern.MatchString(fl.Field().String())
		})
		validatorInstance = v
	})
	return validatorInstance
}

// validateSettings checks the resolved settings and layer names.
func validateSettings(rc *ResolvedConfig) error {
	var errs error
	if err := Validator().Struct(rc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = multierr.Append(errs, fmt.Errorf("setting %s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
		} else {
			errs = multierr.Append(errs, err)
		}
	}
	for name := range rc.Layers {
		if err := Validator().Var(name, "layername"); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("layer %q: invalid name", name))
		}
	}
	return errs
}

// checkPreflightCSS reports unbalanced blocks and the first parser error in
// static preflight text.
func checkPreflightCSS(text string) error {
	depth := 0
	l := css.NewLexer(parse.NewInputString(text))
	for {
		tt, _ := l.Next()
		if tt == css.ErrorToken {
			break
		}
		switch tt {
		case css.LeftBraceToken:
			depth++
		case css.RightBraceToken:
			depth--
			if depth < 0 {
				return errors.New("invalid css: unexpected }")
			}
		}
	}
	if depth > 0 {
		return errors.New("invalid css: unclosed block")
	}

	p := css.NewParser(parse.NewInputString(text), false)
	for {
		gt, _, _ := p.Next()
		if gt != css.ErrorGrammar {
			continue
		}
		if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("invalid css: %w", err)
		}
		return nil
	}
}
