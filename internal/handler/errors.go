package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/finance-tracker/internal/log"
	"github.com/iliyamo/finance-tracker/internal/repository"
	"github.com/iliyamo/finance-tracker/internal/validation"
)

// APIError is an error with the HTTP status and client-facing message it
// should be rendered with.
type APIError struct {
	Status  int
	Message string
	Errors  validation.Errors
}

func (e *APIError) Error() string { return e.Message }

func badRequest(msg string) *APIError   { return &APIError{Status: http.StatusBadRequest, Message: msg} }
func unauthorized(msg string) *APIError { return &APIError{Status: http.StatusUnauthorized, Message: msg} }
func forbidden(msg string) *APIError    { return &APIError{Status: http.StatusForbidden, Message: msg} }
func notFound(msg string) *APIError     { return &APIError{Status: http.StatusNotFound, Message: msg} }
func conflict(msg string) *APIError     { return &APIError{Status: http.StatusConflict, Message: msg} }

func notFoundf(format string, args ...any) *APIError {
	return notFound(fmt.Sprintf(format, args...))
}

var errInvalidID = badRequest("Invalid ID")

// failure is the error envelope.
type failure struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  validation.Errors `json:"errors,omitempty"`
}

// ErrorHandler renders every error returned by handlers and middleware
// as the failure envelope.  Unrecognised errors become a logged 500 so
// driver messages never reach the client.
func ErrorHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		apiErr := toAPIError(err)
		if apiErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed",
				log.FieldRequestID, c.Response().Header().Get(echo.HeaderXRequestID),
				log.FieldMethod, c.Request().Method,
				log.FieldURI, c.Request().RequestURI,
				log.FieldError, err)
		}

		body := failure{Message: apiErr.Message, Errors: apiErr.Errors}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(apiErr.Status)
		} else {
			err = c.JSON(apiErr.Status, body)
		}
		if err != nil {
			logger.Error("write error response", log.FieldError, err)
		}
	}
}

func toAPIError(err error) *APIError {
	var (
		apiErr  *APIError
		verrs   validation.Errors
		httpErr *echo.HTTPError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &verrs):
		return &APIError{Status: http.StatusBadRequest, Message: "Validation failed", Errors: verrs}
	case errors.Is(err, validation.ErrMalformedBody):
		return badRequest("Invalid JSON body")
	case errors.Is(err, repository.ErrNotFound):
		return notFound("Record not found")
	case errors.Is(err, repository.ErrConflict):
		return conflict("A record with this value already exists")
	case errors.Is(err, repository.ErrRelatedNotFound):
		return badRequest("Related record not found")
	case errors.Is(err, repository.ErrReferenced):
		return badRequest("Record is still referenced by other records")
	case errors.Is(err, repository.ErrValueOutOfRange):
		return badRequest("A value is too long or out of range")
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return &APIError{Status: http.StatusBadRequest, Message: "Validation failed", Errors: validation.Errors{
			{Field: "password", Message: "the length must be no more than 72 bytes"},
		}}
	case errors.As(err, &httpErr):
		msg, ok := httpErr.Message.(string)
		if !ok || msg == "" {
			msg = http.StatusText(httpErr.Code)
		}
		return &APIError{Status: httpErr.Code, Message: msg}
	}
	return &APIError{Status: http.StatusInternalServerError, Message: "Internal Server Error"}
}

// NotFoundRoute answers requests that match no route.
func NotFoundRoute(c echo.Context) error {
	return notFoundf("Route %s %s not found", c.Request().Method, c.Request().URL.RequestURI())
}
