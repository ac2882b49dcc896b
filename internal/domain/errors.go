package domain

import "fmt"

// ValidationError rejects a request before any external call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProviderError surfaces a failure of the external data gateway with the
// gateway's own message attached.
type ProviderError struct {
	Op  string
	Msg string
	Err error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("provider %s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("provider %s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("provider %s failed", e.Op)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NormalizationError marks a raw batch that could not be coerced into
// canonical bars. The whole batch is rejected, never partial output.
type NormalizationError struct {
	Row    int
	Field  string
	Reason string
}

func (e *NormalizationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("normalize row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("normalize row %d field %s: %s", e.Row, e.Field, e.Reason)
}

// SignalComputationError names the signal whose computation failed.
type SignalComputationError struct {
	Signal string
	Reason string
}

func (e *SignalComputationError) Error() string {
	return fmt.Sprintf("signal %s: %s", e.Signal, e.Reason)
}
