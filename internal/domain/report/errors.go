package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Categories; handlers map on these with errors.Is
	ErrValidation           = errors.New("validation failed")
	ErrForbidden            = errors.New("not allowed for this role")
	ErrReportNotFound       = errors.New("report not found")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")

	ErrInvalidStatus     = fmt.Errorf("%w: invalid report status", ErrValidation)
	ErrInvalidType       = fmt.Errorf("%w: invalid report type", ErrValidation)
	ErrTrackingIDExhaust = errors.New("could not allocate a unique tracking id")
)

// ValidationError carries per-field messages and matches ErrValidation
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// FieldErrors returns the field map for a validation failure, or nil
func FieldErrors(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	switch {
	case errors.Is(err, ErrInvalidStatus):
		return map[string]string{"status": "Must be one of: PENDING, IN_PROGRESS, RESOLVED, DISMISSED"}
	case errors.Is(err, ErrInvalidType):
		return map[string]string{"type": "Unknown report type"}
	}
	return nil
}
