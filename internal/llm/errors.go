package llm

import "errors"

// Failure classes for one upstream call. All are terminal for the current
// request; nothing here is retried.
var (
	ErrMissingCredential = errors.New("upstream API key is not configured")
	ErrUpstream          = errors.New("upstream completion call failed")
	ErrMalformed         = errors.New("upstream returned a malformed response")
)
