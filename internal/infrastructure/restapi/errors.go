package restapi

import (
	"errors"
	"net/http"
	"time"

	"market_aggregator/internal/domain/entity"
	"market_aggregator/internal/pkg/retry"

	"github.com/gin-gonic/gin"
)

// ErrorCode is a machine readable error kind.
type ErrorCode string

const (
	ErrorCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidAddress   ErrorCode = "INVALID_ADDRESS"
	ErrorCodeAccountRequired  ErrorCode = "ACCOUNT_REQUIRED"
	ErrorCodeUnsupportedChain ErrorCode = "UNSUPPORTED_CHAIN"
	ErrorCodeUpstream         ErrorCode = "UPSTREAM_ERROR"
	ErrorCodeTimeout          ErrorCode = "UPSTREAM_TIMEOUT"
	ErrorCodeOnChainData      ErrorCode = "INVALID_ONCHAIN_DATA"
	ErrorCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// HTTPStatusCode returns the status code sent for the error kind.
func (e ErrorCode) HTTPStatusCode() int {
	switch e {
	case ErrorCodeInvalidRequest, ErrorCodeInvalidAddress, ErrorCodeAccountRequired, ErrorCodeUnsupportedChain:
		return http.StatusBadRequest
	case ErrorCodeUpstream, ErrorCodeTimeout, ErrorCodeOnChainData:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorDetail is the body of an error response.
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ErrorResponse is the envelope of every non-2xx response.
type ErrorResponse struct {
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"requestId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func codeForError(err error) ErrorCode {
	switch {
	case errors.Is(err, entity.ErrInvalidAddress):
		return ErrorCodeInvalidAddress
	case errors.Is(err, entity.ErrAccountRequired):
		return ErrorCodeAccountRequired
	case errors.Is(err, entity.ErrUnsupportedChain):
		return ErrorCodeUnsupportedChain
	case errors.Is(err, entity.ErrTimeout), errors.Is(err, retry.ErrAttemptTimeout):
		return ErrorCodeTimeout
	case errors.Is(err, entity.ErrIncompleteResponse),
		errors.Is(err, entity.ErrMissingMetadata),
		errors.Is(err, entity.ErrMalformedTokenURI):
		return ErrorCodeOnChainData
	case errors.Is(err, entity.ErrUpstream):
		return ErrorCodeUpstream
	default:
		return ErrorCodeInternal
	}
}

func abortWithCode(c *gin.Context, code ErrorCode, message string) {
	c.AbortWithStatusJSON(code.HTTPStatusCode(), ErrorResponse{
		Error:     ErrorDetail{Code: code, Message: message},
		RequestID: c.GetString(requestIDKey),
		Timestamp: time.Now().UTC(),
	})
}

// abortWithError maps a service error onto a status code and records it for the access log.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	abortWithCode(c, codeForError(err), err.Error())
}
