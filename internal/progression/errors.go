package progression

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSkill is wrapped by ConfigurationError when no definition
	// exists for a reported skill id.
	ErrUnknownSkill = errors.New("unknown skill")

	// ErrUnknownStage is wrapped by ConfigurationError when a report names a
	// stage the skill does not define.
	ErrUnknownStage = errors.New("unknown stage")

	// ErrSkillUnavailable is wrapped by ConfigurationError when the skill
	// exists but is not accepting sessions.
	ErrSkillUnavailable = errors.New("skill not active")
)

// ValidationError reports a malformed session report, skill definition or
// progress record. Nothing is applied when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConfigurationError reports a missing or unusable skill configuration for
// one request. It is fatal to that request only.
type ConfigurationError struct {
	SkillID string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("skill %q: %v", e.SkillID, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConfiguration reports whether err is or wraps a *ConfigurationError.
func IsConfiguration(err error) bool {
	var c *ConfigurationError
	return errors.As(err, &c)
}
