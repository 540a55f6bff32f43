package models

// ValidationResult is the reconciliation verdict carried on a worklog record.
// The set is closed: reconciliation always leaves a record in exactly one of
// these states, never a free-form string.
type ValidationResult string

const (
	VldNotValidated    ValidationResult = "not_validated"
	VldPassed          ValidationResult = "passed"
	VldExceedsQuantity ValidationResult = "exceeds_quantity"
	VldOrderNoNotFound ValidationResult = "order_not_found"
)

func (v ValidationResult) Valid() bool {
	switch v {
	case VldNotValidated, VldPassed, VldExceedsQuantity, VldOrderNoNotFound:
		return true
	}
	return false
}

// IsException reports whether the verdict flags the record for review.
func (v ValidationResult) IsException() bool {
	return v == VldExceedsQuantity || v == VldOrderNoNotFound
}
