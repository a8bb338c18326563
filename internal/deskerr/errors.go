package deskerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrAmbiguous    = errors.New("ambiguous reference")
	ErrConflict     = errors.New("scheduling conflict")
	ErrStoreFailure = errors.New("store failure")
	ErrSchemaGap    = errors.New("schema needs migration")
)

// IsMissingColumn reports whether a driver error message names a column the
// schema does not have. column may be empty to match any missing column.
func IsMissingColumn(err error, column string) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	if !strings.Contains(message, "no such column") && !strings.Contains(message, "has no column named") {
		return false
	}
	column = strings.ToLower(strings.TrimSpace(column))
	return column == "" || strings.Contains(message, column)
}

// AsStoreFailure tags err with ErrStoreFailure unless it is already
// classified as a store failure or a schema gap.
func AsStoreFailure(err error) error {
	if err == nil || errors.Is(err, ErrSchemaGap) || errors.Is(err, ErrStoreFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}
