package app

// ValidationError reports the first violated input constraint. Its message is
// a single human-readable line, safe to surface to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
