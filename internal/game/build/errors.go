package build

import (
	"errors"
	"fmt"
	"strings"
)

// MinLevel and MaxLevel bound a character's level.
const (
	MinLevel = 1
	MaxLevel = 18
)

// ErrInvalidLevel is wrapped by every LevelError.
var ErrInvalidLevel = errors.New("invalid level")

// ErrInvalidBuildConfig is wrapped by every ValidationError.
var ErrInvalidBuildConfig = errors.New("invalid build config")

// LevelError reports a level outside [MinLevel, MaxLevel].
type LevelError struct {
	Level int
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("level must be between %d and %d, got %d", MinLevel, MaxLevel, e.Level)
}

// Unwrap returns ErrInvalidLevel.
func (e *LevelError) Unwrap() error { return ErrInvalidLevel }

// CheckLevel returns a *LevelError when level is outside [MinLevel, MaxLevel].
func CheckLevel(level int) error {
	if level < MinLevel || level > MaxLevel {
		return &LevelError{Level: level}
	}
	return nil
}

// ValidationError collects every constraint a value failed.
type ValidationError struct {
	// Subject names what was validated, e.g. "build" or "item \"Long Sword\"".
	Subject string
	// Problems holds one message per violated constraint.
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Subject, strings.Join(e.Problems, "; "))
}

// Unwrap returns ErrInvalidBuildConfig.
func (e *ValidationError) Unwrap() error { return ErrInvalidBuildConfig }

// problems accumulates validation messages for one subject.
type problems struct {
	subject string
	list    []string
}

func (p *problems) add(format string, args ...any) {
	p.list = append(p.list, fmt.Sprintf(format, args...))
}

func (p *problems) addErr(prefix string, err error) {
	if err == nil {
		return
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		for _, msg := range ve.Problems {
			p.add("%s: %s", prefix, msg)
		}
		return
	}
	for _, line := range strings.Split(err.Error(), "\n") {
		p.add("%s: %s", prefix, line)
	}
}

func (p *problems) err() error {
	if len(p.list) == 0 {
		return nil
	}
	return &ValidationError{Subject: p.subject, Problems: p.list}
}
