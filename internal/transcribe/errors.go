package transcribe

import "fmt"

// InputError is a malformed request or unreadable audio source. Surfaced
// immediately, never retried.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

// ProviderError is a failed adapter call (HTTP, auth, quota, vendor-side
// processing). It affects only its own provider within a batch and is never
// retried automatically: provider calls are expensive and potentially
// non-idempotent for metered billing, so retrying is a caller decision.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
