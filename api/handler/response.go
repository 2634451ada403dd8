package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"authcore/internal/dto"
	"authcore/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const genericServerError = "server error"

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return invalidInput(err)
	}
	return nil
}

func validate(v *validator.Validate, payload any) error {
	if v == nil {
		return nil
	}
	if err := v.Struct(payload); err != nil {
		return invalidInput(err)
	}
	return nil
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
}

func writeSuccess(c echo.Context, status int, body dto.Envelope) error {
	body.Success = true
	return c.JSON(status, body)
}

// ErrorHandler renders every failure as {success:false, message}. Internal
// errors only expose their detail when verbose is set.
func ErrorHandler(logger logrus.FieldLogger, verbose bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, message := classify(err)
		body := dto.Envelope{Success: false, Message: message}
		if status >= http.StatusInternalServerError {
			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"uri":    c.Request().RequestURI,
			}).Error("request failed")
			if verbose {
				body.Error = err.Error()
			}
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.WithError(writeErr).Error("write error response")
		}
	}
}

func classify(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if text, ok := httpErr.Message.(string); ok {
			message = text
		}
		return httpErr.Code, message
	}
	switch service.KindOf(err) {
	case service.KindValidation:
		return http.StatusBadRequest, err.Error()
	case service.KindAuthentication:
		return http.StatusUnauthorized, err.Error()
	case service.KindAuthorization:
		return http.StatusForbidden, err.Error()
	case service.KindNotFound:
		return http.StatusNotFound, err.Error()
	}
	return http.StatusInternalServerError, genericServerError
}
