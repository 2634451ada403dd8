package handler

import (
	"net/http"

	"authcore/api/middleware"
	"authcore/internal/dto"
	"authcore/internal/entity"
	"authcore/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Service  *service.AuthService
	Validate *validator.Validate
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{Service: svc, Validate: validate}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if err := validate(h.Validate, req); err != nil {
		return err
	}
	dob, err := dto.ParseDate(req.DOB)
	if err != nil {
		return invalidInput(err)
	}
	input := service.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		UserName:    req.UserName,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		Gender:      entity.Gender(req.Gender),
		DateOfBirth: dob,
	}
	result, err := h.Service.Register(c.Request().Context(), input, requestMeta(c))
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusCreated, dto.Envelope{
		Message: "User registered successfully",
		Data: dto.RegisterResponse{
			User:  dto.UserResponseFromEntity(result.User),
			Token: result.Token,
		},
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if err := validate(h.Validate, req); err != nil {
		return err
	}
	result, err := h.Service.Login(c.Request().Context(), req.Email, req.Password, requestMeta(c))
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, dto.Envelope{
		Message: "Login successful",
		Data: dto.LoginResponse{
			User:      dto.UserResponseFromEntity(result.User),
			Token:     result.Token,
			ExpiresIn: int64(result.ExpiresIn.Seconds()),
		},
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return service.ErrMissingToken
	}
	if err := h.Service.LogoutCurrent(c.Request().Context(), identity.Token, identity.UserID); err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, dto.Envelope{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return service.ErrMissingToken
	}
	user, err := h.Service.GetCurrentUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, dto.Envelope{
		Data: dto.MeResponse{User: dto.UserResponseFromEntity(user)},
	})
}

func requestMeta(c echo.Context) service.RequestMeta {
	return service.RequestMeta{
		IPAddress:   c.RealIP(),
		UserAgent:   c.Request().UserAgent(),
		LoginMethod: entity.LoginMethodEmail,
	}
}
