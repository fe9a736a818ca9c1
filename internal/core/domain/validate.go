package domain

import "fmt"

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Message)
}

func errMissingField(field string) error {
	return FieldError{Field: field, Message: "is required"}
}

func errInvalidField(field, message string) error {
	return FieldError{Field: field, Message: message}
}
