package pbg

import (
	"nickandperla.net/pbg/internal/eval"
	"nickandperla.net/pbg/internal/parser"
)

// NumberEqualityMode selects how EQ/NEQ compare two NUMBER operands.
type NumberEqualityMode = eval.NumberEqualityMode

const (
	// ByValue compares parsed float64 values: NUMBER "1" equals NUMBER "1.0".
	ByValue = eval.NumberEqualityByValue
	// ByRepresentation compares raw source bytes: NUMBER "1" and "1.0"
	// compare unequal.
	ByRepresentation = eval.NumberEqualityByPayload
)

// Option configures a Parse call's parsing and evaluation behavior.
type Option func(*config)

type config struct {
	parseOpts parser.Options
	evalOpts  eval.Options
}

func defaultConfig() config {
	return config{
		parseOpts: parser.DefaultOptions(),
		evalOpts:  eval.DefaultOptions(),
	}
}

// WithMaxDepth bounds operator nesting depth. 0 keeps the default of
// parser.DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		c.parseOpts.MaxDepth = n
	}
}

// WithDateRangeValidation enables or disables month/day range checking on
// DATE literals. Enabled by default.
func WithDateRangeValidation(enabled bool) Option {
	return func(c *config) {
		c.parseOpts.ValidateDateRange = enabled
	}
}

// WithNumberEquality selects EQ/NEQ's NUMBER comparison mode. ByValue by
// default.
func WithNumberEquality(mode NumberEqualityMode) Option {
	return func(c *config) {
		c.evalOpts.NumberEquality = mode
	}
}

// WithStrictBooleans controls whether a non-boolean literal reached in
// boolean position is a type error (true, the default) or is silently
// treated as false.
func WithStrictBooleans(strict bool) Option {
	return func(c *config) {
		c.evalOpts.StrictBooleans = strict
	}
}
