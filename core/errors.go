package core

// FieldError names one invalid field of a request payload.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a user-correctable failure, optionally broken down
// per field. The HTTP layer reports it as a bad request.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}
