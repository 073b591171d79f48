package wire

import "fmt"

// MessageError describes an issue encountered while encoding or decoding
// a wire message. It wraps the name of the function that detected the
// problem along with a human-readable description.
type MessageError struct {
	Func        string
	Description string
}

func (e *MessageError) Error() string {
	if e.Func != "" {
		return fmt.Sprintf("%s: %s", e.Func, e.Description)
	}
	return e.Description
}

func messageError(f string, desc string) *MessageError {
	return &MessageError{Func: f, Description: desc}
}

func messageErrorf(f string, format string, args ...interface{}) *MessageError {
	return &MessageError{Func: f, Description: fmt.Sprintf(format, args...)}
}
