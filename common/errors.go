// Package common provides the error model, identifiers, validation helpers
// and gRPC plumbing shared by the storefront domains.
package common

import (
	"errors"
	"fmt"
)

// StatusCode represents the category of a command rejection.
type StatusCode int

const (
	StatusInvalidArgument StatusCode = iota
	StatusFailedPrecondition
	StatusNotFound
	StatusUnavailable
	StatusAborted
	StatusPermissionDenied
)

func (s StatusCode) String() string {
	switch s {
	case StatusInvalidArgument:
		return "INVALID_ARGUMENT"
	case StatusFailedPrecondition:
		return "FAILED_PRECONDITION"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusUnavailable:
		return "UNAVAILABLE"
	case StatusAborted:
		return "ABORTED"
	case StatusPermissionDenied:
		return "PERMISSION_DENIED"
	default:
		return "UNKNOWN"
	}
}

// Reason is the machine-readable cause of a CommandError.
type Reason string

const (
	ReasonInvalidQuantity   Reason = "INVALID_QUANTITY"
	ReasonInvalidProduct    Reason = "INVALID_PRODUCT"
	ReasonCartNotFound      Reason = "CART_NOT_FOUND"
	ReasonProductNotFound   Reason = "PRODUCT_NOT_FOUND"
	ReasonLineNotFound      Reason = "LINE_NOT_FOUND"
	ReasonTicketNotFound    Reason = "TICKET_NOT_FOUND"
	ReasonInsufficientStock Reason = "INSUFFICIENT_STOCK"
	ReasonEmptyCart         Reason = "EMPTY_CART"
	ReasonDuplicateCode     Reason = "DUPLICATE_CODE"
	ReasonMissingPurchaser  Reason = "MISSING_PURCHASER"
	ReasonForbidden         Reason = "FORBIDDEN"
	ReasonStorageFailure    Reason = "STORAGE_FAILURE"
	ReasonPartialSettlement Reason = "PARTIAL_SETTLEMENT"
)

// Error message constants shared by the cart, checkout and catalog domains.
const (
	ErrMsgCartNotFound        = "Cart does not exist"
	ErrMsgCartEmpty           = "Cart is empty"
	ErrMsgProductNotFound     = "Product does not exist"
	ErrMsgItemNotInCart       = "Item not in cart"
	ErrMsgQuantityPositive    = "Quantity must be positive"
	ErrMsgProductIDRequired   = "Product ID is required"
	ErrMsgCartIDRequired      = "Cart ID is required"
	ErrMsgPurchaserRequired   = "Purchaser is required"
	ErrMsgInsufficientStock   = "Insufficient stock"
	ErrMsgTicketNotFound      = "Ticket does not exist"
	ErrMsgDuplicateCode       = "A product with that code already exists"
	ErrMsgStorageFailure      = "Storage failure"
	ErrMsgPartialSettlement   = "Settlement partially applied"
	ErrMsgDeleteNotPermitted  = "Not permitted to delete this product"
	ErrMsgEditNotPermitted    = "Not permitted to change this product"
	ErrMsgCreateNotPermitted  = "Only admin and premium users may add products"
	ErrMsgMandatoryFields     = "All fields are mandatory"
	ErrMsgPriceNegative       = "Price cannot be negative"
	ErrMsgStockNegative       = "Stock cannot be negative"
	ErrMsgDuplicateTicketCode = "A ticket with that code already exists"
)

// CommandError is returned when an operation is rejected or cannot complete.
type CommandError struct {
	Code    StatusCode
	Reason  Reason
	Message string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewInvalidArgument creates a CommandError for invalid input.
func NewInvalidArgument(reason Reason, message string) *CommandError {
	return &CommandError{Code: StatusInvalidArgument, Reason: reason, Message: message}
}

// NewFailedPrecondition creates a CommandError for violated preconditions.
func NewFailedPrecondition(reason Reason, message string) *CommandError {
	return &CommandError{Code: StatusFailedPrecondition, Reason: reason, Message: message}
}

// NewFailedPreconditionf creates a CommandError with a formatted message.
func NewFailedPreconditionf(reason Reason, format string, args ...interface{}) *CommandError {
	return &CommandError{Code: StatusFailedPrecondition, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound creates a CommandError for a missing cart, product, line or ticket.
func NewNotFound(reason Reason, message string) *CommandError {
	return &CommandError{Code: StatusNotFound, Reason: reason, Message: message}
}

// NewPermissionDenied creates a CommandError for an actor lacking rights.
func NewPermissionDenied(message string) *CommandError {
	return &CommandError{Code: StatusPermissionDenied, Reason: ReasonForbidden, Message: message}
}

// NewStorageFailure wraps a persistence error. The caller may retry.
func NewStorageFailure(op string, err error) *CommandError {
	return &CommandError{
		Code:    StatusUnavailable,
		Reason:  ReasonStorageFailure,
		Message: fmt.Sprintf("%s: %s", ErrMsgStorageFailure, op),
		Err:     err,
	}
}

// NewPartialSettlement reports a failure after stock was already decremented.
func NewPartialSettlement(step string, err error) *CommandError {
	return &CommandError{
		Code:    StatusAborted,
		Reason:  ReasonPartialSettlement,
		Message: fmt.Sprintf("%s: %s", ErrMsgPartialSettlement, step),
		Err:     err,
	}
}

// ReasonOf returns the Reason of the first CommandError in err's chain, or "".
func ReasonOf(err error) Reason {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Reason
	}
	return ""
}

// CodeOf returns the StatusCode of the first CommandError in err's chain.
// The second result is false when err carries no CommandError.
func CodeOf(err error) (StatusCode, bool) {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code, true
	}
	return 0, false
}

// HasReason reports whether err carries a CommandError with the given reason.
func HasReason(err error, reason Reason) bool {
	return err != nil && ReasonOf(err) == reason
}
