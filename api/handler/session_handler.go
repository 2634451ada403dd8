package handler

import (
	"net/http"

	"authcore/api/middleware"
	"authcore/internal/dto"
	"authcore/internal/repository"
	"authcore/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type SessionHandler struct {
	Service  *service.SessionService
	Validate *validator.Validate
	Logger   logrus.FieldLogger
}

func NewSessionHandler(svc *service.SessionService, validate *validator.Validate, logger logrus.FieldLogger) *SessionHandler {
	return &SessionHandler{Service: svc, Validate: validate, Logger: logger}
}

func (h *SessionHandler) Mine(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return service.ErrMissingToken
	}
	sessions, err := h.Service.ListActive(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, dto.Envelope{
		Count: dto.IntPtr(len(sessions)),
		Data:  dto.SessionResponsesFromEntities(sessions),
	})
}

func (h *SessionHandler) All(c echo.Context) error {
	var query dto.SessionQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
		return invalidInput(err)
	}
	if err := validate(h.Validate, query); err != nil {
		return err
	}

	var filter repository.SessionFilter
	if query.UserID != "" {
		userID, err := uuid.Parse(query.UserID)
		if err != nil {
			return invalidInput(err)
		}
		filter.UserID = &userID
	}
	if query.IsActive != "" {
		isActive := query.IsActive == "true"
		filter.IsActive = &isActive
	}

	page, err := h.Service.ListAll(c.Request().Context(), filter, query.Page, query.Limit)
	if err != nil {
		return err
	}
	total := page.Total
	return writeSuccess(c, http.StatusOK, dto.Envelope{
		Count: dto.IntPtr(len(page.Sessions)),
		Total: &total,
		Page:  dto.IntPtr(page.Page),
		Pages: dto.IntPtr(page.Pages()),
		Data:  dto.SessionResponsesFromEntities(page.Sessions),
	})
}

func (h *SessionHandler) Logout(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return service.ErrMissingToken
	}
	var req dto.LogoutSessionRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if err := validate(h.Validate, req); err != nil {
		return err
	}
	if err := h.Service.LogoutBySessionID(c.Request().Context(), req.SessionID, userID); err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, dto.Envelope{Message: "Session logged out successfully"})
}

// LogoutAll reports the count even when it stops early, since it is authoritative.
func (h *SessionHandler) LogoutAll(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return service.ErrMissingToken
	}
	count, err := h.Service.LogoutAll(c.Request().Context(), userID)
	if err != nil {
		h.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "count": count}).Error("logout all incomplete")
		return c.JSON(http.StatusInternalServerError, dto.Envelope{
			Success: false,
			Message: "logout all incomplete, retry to finish",
			Count:   dto.IntPtr(count),
		})
	}
	return writeSuccess(c, http.StatusOK, dto.Envelope{
		Message: "Logged out all sessions successfully",
		Count:   dto.IntPtr(count),
	})
}

func (h *SessionHandler) Terminate(c echo.Context) error {
	if err := h.Service.Terminate(c.Request().Context(), c.Param("sessionId")); err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, dto.Envelope{Message: "Session terminated successfully"})
}

func (h *SessionHandler) Sweep(c echo.Context) error {
	count, err := h.Service.SweepExpired(c.Request().Context())
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, dto.Envelope{
		Message: "Expired sessions swept",
		Count:   dto.IntPtr(int(count)),
	})
}
