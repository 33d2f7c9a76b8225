package utilcss

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

var (
	// ErrShortcutDepth is returned when shortcut expansion nests deeper than
	// MaxShortcutDepth.
	ErrShortcutDepth = errors.New("shortcut expansion too deep")
	// ErrShortcutCycle is reported at config time for static shortcut cycles.
	ErrShortcutCycle = errors.New("shortcut cycle")
	// ErrTooManyVariants is returned when one branch applies more than 500
	// variant handlers.
	ErrTooManyVariants = errors.New("too many variants applied")
)

// Stage names the pipeline step that failed
type Stage string

const (
	StageVariant   Stage = "variant"
	StageRule      Stage = "rule"
	StageShortcut  Stage = "shortcut"
	StagePreflight Stage = "preflight"
	StageExtractor Stage = "extractor"
)

// StageError reports a failure of a user supplied function for one token.
type StageError struct {
	Stage Stage
	Token string
	Err   error
}

func (e *StageError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Stage, e.Token, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// stageError wraps err unless it already carries a stage.
func stageError(stage Stage, token string, err error) error {
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Token: token, Err: err}
}

// ConfigError aggregates every problem found while resolving a config.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	errs := multierr.Errors(e.Err)
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config (%d problems): %s", len(errs), strings.Join(msgs, "; "))
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Errors lists the individual problems.
func (e *ConfigError) Errors() []error {
	return multierr.Errors(e.Err)
}
