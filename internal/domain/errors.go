package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrIssueNotFound is returned by repositories for unknown issue IDs.
	ErrIssueNotFound = errors.New("issue not found")
)

// ValidationKind names the specific rule an input broke.
type ValidationKind string

const (
	KindMissingTitle          ValidationKind = "missing_title"
	KindMissingDescription    ValidationKind = "missing_description"
	KindMissingLocation       ValidationKind = "missing_location"
	KindLatitudeOutOfRange    ValidationKind = "latitude_out_of_range"
	KindLongitudeOutOfRange   ValidationKind = "longitude_out_of_range"
	KindInvalidStatus         ValidationKind = "invalid_status"
	KindInvalidImageFeatures  ValidationKind = "invalid_image_features"
	KindInvalidCategoryFilter ValidationKind = "invalid_category"
)

// ValidationError reports malformed input rejected before it reaches the
// pipeline.
type ValidationError struct {
	Field string
	Kind  ValidationKind
	Value interface{}
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed: %s: %s (got %v)", e.Field, e.Kind, e.Value)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Kind)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidationKind reports whether err is a ValidationError of the given kind.
func IsValidationKind(err error, kind ValidationKind) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind == kind
	}
	return false
}
