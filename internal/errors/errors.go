package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrCardNotFound is returned when a referenced card does not exist.
	ErrCardNotFound = errors.New("card not found")
	// ErrRequestNotFound is returned when a block request does not exist.
	ErrRequestNotFound = errors.New("block request not found")
	// ErrSourceCardBlocked is returned when the debited card is blocked.
	ErrSourceCardBlocked = errors.New("source card is blocked")
	// ErrDestinationCardBlocked is returned when the credited card is blocked.
	ErrDestinationCardBlocked = errors.New("destination card is blocked")
	// ErrCardAlreadyBlocked is returned when requesting a block for a blocked card.
	ErrCardAlreadyBlocked = errors.New("card is already blocked")
	// ErrRequestAlreadyProcessed is returned when a block request left PENDING.
	ErrRequestAlreadyProcessed = errors.New("block request already processed")
	// ErrCardHasPendingRequests is returned when deleting a card with open block requests.
	ErrCardHasPendingRequests = errors.New("card has pending block requests")
	// ErrInvalidAmount is returned when a transfer amount is malformed.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientFunds is returned when the source balance cannot cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrForbidden is returned when an ownership precondition fails.
	ErrForbidden = errors.New("operation not allowed for this user")
	// ErrConflict is returned when the storage layer detects conflicting writers.
	ErrConflict = errors.New("conflicting concurrent update")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrCardNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "CARD_NOT_FOUND")
	case errors.Is(err, ErrRequestNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "REQUEST_NOT_FOUND")
	case errors.Is(err, ErrSourceCardBlocked):
		return NewHTTPError(http.StatusConflict, err.Error(), "SOURCE_CARD_BLOCKED")
	case errors.Is(err, ErrDestinationCardBlocked):
		return NewHTTPError(http.StatusConflict, err.Error(), "DESTINATION_CARD_BLOCKED")
	case errors.Is(err, ErrCardAlreadyBlocked):
		return NewHTTPError(http.StatusConflict, err.Error(), "CARD_ALREADY_BLOCKED")
	case errors.Is(err, ErrRequestAlreadyProcessed):
		return NewHTTPError(http.StatusConflict, err.Error(), "REQUEST_ALREADY_PROCESSED")
	case errors.Is(err, ErrCardHasPendingRequests):
		return NewHTTPError(http.StatusConflict, err.Error(), "CARD_HAS_PENDING_REQUESTS")
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_AMOUNT")
	case errors.Is(err, ErrInsufficientFunds):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "INSUFFICIENT_FUNDS")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusConflict, err.Error(), "CONFLICT")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
