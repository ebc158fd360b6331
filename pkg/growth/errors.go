package growth

import (
	"errors"
	"fmt"

	"github.com/chazu/arbor/pkg/graph"
)

var (
	// ErrInvalidConfig is wrapped by every *ConfigError.
	ErrInvalidConfig = errors.New("growth: invalid configuration")
	// ErrGrowthState is wrapped by every *StateError.
	ErrGrowthState = errors.New("growth: unexpected growth state")
)

// ConfigError reports a parameter outside its accepted range. It is returned
// before the function mutates anything.
type ConfigError struct {
	Function string
	Field    string
	Value    float64
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("growth: %s.%s = %g: %s", e.Function, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// StateError reports a node whose growth state is not the variant the
// function expects, e.g. a node created by a different function.
type StateError struct {
	Function string
	Got      graph.GrowthState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("growth: %s: node carries growth state %T", e.Function, e.Got)
}

func (e *StateError) Unwrap() error { return ErrGrowthState }

// check collects the first failing range check of a configuration.
type check struct {
	function string
	err      error
}

func (c *check) fail(field string, v float64, reason string) {
	if c.err == nil {
		c.err = &ConfigError{Function: c.function, Field: field, Value: v, Reason: reason}
	}
}

func (c *check) positive(field string, v float64) {
	if !(v > 0) {
		c.fail(field, v, "must be positive")
	}
}

func (c *check) nonNegative(field string, v float64) {
	if !(v >= 0) {
		c.fail(field, v, "must not be negative")
	}
}

func (c *check) unit(field string, v float64) {
	if !(v >= 0 && v <= 1) {
		c.fail(field, v, "must be within [0, 1]")
	}
}

func (c *check) property(field string, p Property, valid func(string, float64)) {
	if p == nil {
		c.fail(field, 0, "is not set")
		return
	}
	lo, hi := p.Range()
	if lo > hi {
		c.fail(field, lo, "minimum exceeds maximum")
		return
	}
	valid(field, lo)
	valid(field, hi)
}
