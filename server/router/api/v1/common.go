package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/omar251/CinemaTec-sub001/internal/errors"
)

type errorResponse struct {
	Code    apierr.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// replyError maps a typed error to an HTTP response. The cause stays in the
// logs; only code and message cross the boundary.
func replyError(c echo.Context, err error) error {
	code := apierr.GetCodeFromError(err, apierr.ErrCodeStorageFailure)

	status := http.StatusInternalServerError
	switch code {
	case apierr.ErrCodeNotFound:
		status = http.StatusNotFound
	case apierr.ErrCodeInvalidArgument:
		status = http.StatusBadRequest
	case apierr.ErrCodeUpstreamUnavailable:
		status = http.StatusBadGateway
	case apierr.ErrCodeLLMUnavailable:
		status = http.StatusServiceUnavailable
	case apierr.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}

	message := err.Error()
	if apiErr, ok := err.(*apierr.APIError); ok {
		message = apiErr.Message
	}
	return c.JSON(status, &errorResponse{Code: code, Message: message})
}
