package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avolkov/streamtube/internal/logging"
	"github.com/avolkov/streamtube/internal/service"
)

type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type APIError struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

func respond(c echo.Context, code int, data any, message string) error {
	return c.JSON(code, APIResponse{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// ErrorHandler is the single flow boundary: every failure raised anywhere in
// a request is converted here into the uniform error envelope. Internal
// causes stay out of the response body.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal server error"

	var he *echo.HTTPError

	switch {
	case errors.Is(err, service.ErrValidation):
		code, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUploadFailed):
		code, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrConflict):
		code, msg = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrNotFound):
		code, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenSuperseded):
		code, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrTokenIssuance):
		code, msg = http.StatusInternalServerError, err.Error()
	case errors.As(err, &he):
		code, msg = he.Code, fmt.Sprint(he.Message)
	}

	if code >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request_failed", "status", code, "error", err)
	}

	if jsonErr := c.JSON(code, APIError{
		StatusCode: code,
		Message:    msg,
		Success:    false,
		Errors:     []string{},
	}); jsonErr != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_write_failed", "error", jsonErr)
	}
}
