package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// ValidationError: malformed or missing input. Reported before any mutation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError: unknown order/item/product/element/raw material.
type NotFoundError struct {
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(resource string, format string, args ...interface{}) error {
	return &NotFoundError{Resource: resource, Message: fmt.Sprintf(format, args...)}
}

// BusinessRuleError: the operation is well-formed but violates a fulfillment
// rule (insufficient stock, exceeding needed boxes, shipping an incomplete
// order, ...). The message names the offending quantity.
type BusinessRuleError struct {
	Message string
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

func NewBusinessRuleError(format string, args ...interface{}) error {
	return &BusinessRuleError{Message: fmt.Sprintf(format, args...)}
}
