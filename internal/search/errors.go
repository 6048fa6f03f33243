package search

// ConfigurationError reports invalid construction arguments: a missing
// required collaborator, a non-positive pool size, or a numeric parameter
// outside its domain. It is fatal and never retried.
// Use errors.Is(err, &ConfigurationError{}) to check for this error.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

func (e *ConfigurationError) Is(target error) bool {
	_, ok := target.(*ConfigurationError)
	return ok
}
