package tool

import "strings"

// AuthorizationRequiredError is not a failure: it is the suspended state a
// tool raises when the caller must complete an external authorization flow
// before the call can proceed. URL, when present, is the resumable token the
// user visits to authorize.
type AuthorizationRequiredError struct {
	URL     string
	Message string
}

func (e *AuthorizationRequiredError) Error() string {
	if e.URL != "" {
		return "authorization required: " + e.URL
	}
	return "authorization required: " + e.Message
}

// Interrupt returns the interrupt payload surfaced to the engine: the URL
// when one exists, otherwise the descriptive text.
func (e *AuthorizationRequiredError) Interrupt() string {
	if e.URL != "" {
		return e.URL
	}
	return e.Message
}

// HasURL reports whether the interrupt payload carries an authorization URL.
func (e *AuthorizationRequiredError) HasURL() bool {
	return e.URL != "" || strings.Contains(e.Message, "http")
}
