package common

// RequireID checks that an identifier is non-empty.
func RequireID(id, errMsg string) *CommandError {
	if id == "" {
		return NewInvalidArgument(ReasonInvalidProduct, errMsg)
	}
	return nil
}

// RequirePositive checks that a quantity is greater than zero.
func RequirePositive(value int, errMsg string) *CommandError {
	if value <= 0 {
		return NewInvalidArgument(ReasonInvalidQuantity, errMsg)
	}
	return nil
}

// RequireNonNegative checks that a value is zero or greater.
func RequireNonNegative(value int, errMsg string) *CommandError {
	if value < 0 {
		return NewInvalidArgument(ReasonInvalidQuantity, errMsg)
	}
	return nil
}

// RequireNotEmpty checks that a slice has at least one element.
func RequireNotEmpty[T any](items []T, reason Reason, errMsg string) *CommandError {
	if len(items) == 0 {
		return NewFailedPrecondition(reason, errMsg)
	}
	return nil
}
