package services

import (
	"fmt"
	"strings"
)

// TransientInfraError marks a failure of the model call itself (timeout,
// connection reset, upstream unavailable). It is the only error class the
// analysis pipeline recovers from by substituting the fallback scorer.
type TransientInfraError struct {
	Op  string
	Err error
}

func (e *TransientInfraError) Error() string {
	return fmt.Sprintf("transient infrastructure failure during %s: %v", e.Op, e.Err)
}

func (e *TransientInfraError) Unwrap() error { return e.Err }

// ValidationError reports exactly which field of a candidate result violated
// the contract, with the received value and its Go type, so a misbehaving
// upstream model can be diagnosed without re-running the request.
type ValidationError struct {
	Field  string
	Reason string
	Value  interface{}
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid analysis result: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid analysis result: %s: %s (got %v of type %T)", e.Field, e.Reason, e.Value, e.Value)
}

// ContentPolicyError marks banned terminology in model output. Never
// downgraded to the fallback path: a safety violation is not an infra blip.
type ContentPolicyError struct {
	Matches []string
}

func (e *ContentPolicyError) Error() string {
	return fmt.Sprintf("analysis result violates content policy (matched: %s)", strings.Join(e.Matches, ", "))
}

var transientIndicators = []string{
	"timeout",
	"timed out",
	"connection",
	"unavailable",
	"network",
	"context deadline",
	"no such host",
}

// isTransientInfra classifies an error from the external model call by
// message substring. Everything that does not match is a hard failure.
func isTransientInfra(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, indicator := range transientIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
