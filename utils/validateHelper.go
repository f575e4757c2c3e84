package utils

import (
	"context"
	"fmt"
)

// check if id exists, return RecordNotFound error otherwise
func ValidateResourceId[T any](ctx context.Context, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

// check uniqueness of a column value. (excludeId = 0 for create)
func ValidateUnique[T any](ctx context.Context, field string, value interface{}, excludeId int) error {

	count, err := ResourceCountWhere[T](ctx, fmt.Sprintf("%s = ? AND id != ?", field), value, excludeId)
	if err != nil {
		return err
	}
	if count > 0 {
		return NewValidationError("%s must be unique, %v is already used", field, value)
	}

	return nil
}
