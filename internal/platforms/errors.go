package platforms

import "fmt"

// StatusError is a conversion failure that carries the HTTP status the
// route layer should respond with. Conversion errors without a
// StatusError default to 500.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// Errorf builds a StatusError with a formatted message.
func Errorf(status int, format string, args ...any) *StatusError {
	return &StatusError{Status: status, Message: fmt.Sprintf(format, args...)}
}
