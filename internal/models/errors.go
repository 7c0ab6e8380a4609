package models

import "errors"

// RecoverableError is implemented by errors that carry a stable code,
// structured context and a remediation hint for CLI output. It lives here so
// store and output can share it without importing each other.
type RecoverableError interface {
	error
	ErrorCode() string
	Context() map[string]string
	SuggestedAction() string
}

// AsRecoverable finds the first RecoverableError in err's chain.
func AsRecoverable(err error) (RecoverableError, bool) {
	var re RecoverableError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
