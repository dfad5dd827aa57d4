package app

import "errors"

// InputError marks failures caused by the input or configuration rather than
// by the run itself. The CLI exits with a distinct code for them.
type InputError struct {
	Err error
}

func (e *InputError) Error() string {
	if e == nil || e.Err == nil {
		return "invalid input"
	}
	return e.Err.Error()
}

func (e *InputError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsInputError reports whether err is, or wraps, an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
