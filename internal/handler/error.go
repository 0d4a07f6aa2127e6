// Package handler exposes the order pipeline over HTTP.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roastersquare/ordercore/internal/domain"
)

// ErrorCodeToHTTPStatus maps a domain error code to an HTTP status code.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// errorResponse renders a domain error as a JSON envelope. Internal details
// never reach the client; domain.ErrorMessage substitutes the generic text.
func errorResponse(c echo.Context, err error) error {
	code := domain.ErrorCode(err)
	body := errorBody{
		Code:    code,
		Message: domain.ErrorMessage(err),
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}

	return c.JSON(ErrorCodeToHTTPStatus(code), errorEnvelope{Error: body})
}
