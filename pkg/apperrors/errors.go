package apperrors

import "errors"

var (
	ErrEmptyTableList = errors.New("at least one table is required")
	ErrUnknownDialect = errors.New("unknown datasource dialect")
)
