package models

import "fmt"

// ConfigError indicates a malformed evaluation config or a reference to an
// unknown check, judge category, service, or schema. It is fatal: nothing
// runs after it. Every other failure class is isolated into a single test
// case's result.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// GenerationError records a service invocation that failed to produce
// output. The test case it belongs to still reaches a final state.
type GenerationError struct {
	Service string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation via %s failed: %v", e.Service, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// DeterministicCheckError records a deterministic check that could not
// execute. The check reports pass=false and the run continues.
type DeterministicCheckError struct {
	Check string
	Err   error
}

func (e *DeterministicCheckError) Error() string {
	return fmt.Sprintf("deterministic check %s: %v", e.Check, e.Err)
}

func (e *DeterministicCheckError) Unwrap() error { return e.Err }

// JudgeInvocationError records a judge model call that failed after the
// fallback retry, timeouts included. The category collapses to a single
// failing result.
type JudgeInvocationError struct {
	Category string
	Model    string
	Err      error
}

func (e *JudgeInvocationError) Error() string {
	return fmt.Sprintf("judge %s call to %s failed: %v", e.Category, e.Model, e.Err)
}

func (e *JudgeInvocationError) Unwrap() error { return e.Err }

// JudgeParseError records a judge response that could not be interpreted.
// Unwrap exposes the specific parse failure.
type JudgeParseError struct {
	Category string
	Err      error
}

func (e *JudgeParseError) Error() string {
	return fmt.Sprintf("judge %s returned an unusable response: %v", e.Category, e.Err)
}

func (e *JudgeParseError) Unwrap() error { return e.Err }
