package response

import (
	"errors"

	"github.com/littlewanderers/frontdesk/pkg/apperr"
)

// APIResponseCode is the business code carried in the portal/admin envelope.
type APIResponseCode int

const (
	APIResponseCodeOK            APIResponseCode = 0
	APIResponseCodeBadRequest    APIResponseCode = 40000
	APIResponseCodeUnauthorized  APIResponseCode = 40100
	APIResponseCodeNotFound      APIResponseCode = 40400
	APIResponseCodeUnprocessable APIResponseCode = 42200
	APIResponseCodeError         APIResponseCode = 50000
)

var codeToMsg = map[APIResponseCode]string{
	APIResponseCodeOK:            "ok",
	APIResponseCodeBadRequest:    "bad request",
	APIResponseCodeUnauthorized:  "unauthorized",
	APIResponseCodeNotFound:      "not found",
	APIResponseCodeUnprocessable: "unprocessable",
	APIResponseCodeError:         "internal error",
}

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: codeToMsg[APIResponseCodeOK], Data: data}
}

// ErrorT returns an error response with message and optional data.
func ErrorT[T any](code APIResponseCode, data T) *APIResponse[T] {
	return &APIResponse[T]{Code: code, Message: codeToMsg[code], Data: data}
}

// CodeOf maps an apperr error onto the envelope code.
func CodeOf(err error) APIResponseCode {
	switch {
	case err == nil:
		return APIResponseCodeOK
	case errors.Is(err, apperr.ErrInput):
		return APIResponseCodeBadRequest
	case errors.Is(err, apperr.ErrAuth):
		return APIResponseCodeUnauthorized
	case errors.Is(err, apperr.ErrNotFound):
		return APIResponseCodeNotFound
	case errors.Is(err, apperr.ErrNoApplicableRule):
		return APIResponseCodeUnprocessable
	default:
		return APIResponseCodeError
	}
}

// FromError builds an error envelope whose data is the error text.
func FromError(err error) *APIResponse[string] {
	return ErrorT(CodeOf(err), err.Error())
}
