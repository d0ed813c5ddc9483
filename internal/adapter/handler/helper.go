package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bymediadev/SoapBoxx/errors"
)

type errs struct {
	Code    errors.ErrorCode  `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Info    string            `json:"info,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// HandleError centralizes error handling and logging. AppError codes
// carry their own HTTP status; anything else is an internal error.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			logger.Error("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.String("app_code", appErr.Code.String()),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		return c.JSON(appErr.HTTPCode, errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
			Info:    info,
		})
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.JSON(http.StatusInternalServerError, errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    err.Error(),
	})
}

// bindAndValidate decodes the request body and runs struct validation,
// normalizing both failure modes onto INVALID_INPUT.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.ErrInvalidInput("malformed request body")
	}
	if err := c.Validate(req); err != nil {
		return errors.ErrInvalidInput(err.Error())
	}
	return nil
}
