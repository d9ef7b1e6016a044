package services

import (
	"errors"
	"fmt"

	"cargodesk/internal/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// lookupErr turns a failed single-row lookup into NotFound or an internal error.
func lookupErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound("%s not found", what)
	}
	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return err
	}
	return errs.Internal(fmt.Sprintf("failed to load %s", what), err)
}

func internal(msg string, err error) error {
	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return err
	}
	return errs.Internal(msg, err)
}

// checkOrderID rejects malformed order ids before they reach a uuid column.
func checkOrderID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errs.InvalidRequest("invalid order id %q", id)
	}
	return nil
}
