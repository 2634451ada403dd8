package handler

import (
	"net/http"
	"strconv"

	"authcore/api/middleware"
	"authcore/internal/dto"
	"authcore/internal/entity"
	"authcore/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	Service  *service.UserService
	Validate *validator.Validate
}

func NewUserHandler(svc *service.UserService, validate *validator.Validate) *UserHandler {
	return &UserHandler{Service: svc, Validate: validate}
}

func (h *UserHandler) List(c echo.Context) error {
	limit, offset := parseLimitOffset(c)
	users, err := h.Service.List(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, dto.Envelope{
		Count: dto.IntPtr(len(users)),
		Data:  dto.UserResponsesFromEntities(users),
	})
}

func (h *UserHandler) Get(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return err
	}
	user, err := h.Service.Get(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, dto.Envelope{Data: dto.UserResponseFromEntity(user)})
}

func (h *UserHandler) Update(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if err := validate(h.Validate, req); err != nil {
		return err
	}
	input, err := updateInput(req.UpdateProfileRequest)
	if err != nil {
		return err
	}
	if req.Role != nil {
		role, ok := entity.ParseUserRole(*req.Role)
		if !ok {
			return service.ErrInvalidInput
		}
		input.Role = &role
	}
	input.IsActive = req.IsActive

	user, err := h.Service.Update(c.Request().Context(), userID, input)
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, dto.Envelope{
		Message: "User updated successfully",
		Data:    dto.UserResponseFromEntity(user),
	})
}

func (h *UserHandler) Delete(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return err
	}
	if err := h.Service.Delete(c.Request().Context(), userID); err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, dto.Envelope{Message: "User deleted successfully"})
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return service.ErrMissingToken
	}
	var req dto.UpdateProfileRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if err := validate(h.Validate, req); err != nil {
		return err
	}
	input, err := updateInput(req)
	if err != nil {
		return err
	}
	user, err := h.Service.UpdateProfile(c.Request().Context(), userID, input)
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, dto.Envelope{
		Message: "Profile updated successfully",
		Data:    dto.UserResponseFromEntity(user),
	})
}

func updateInput(req dto.UpdateProfileRequest) (service.UpdateUserInput, error) {
	input := service.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserName:  req.UserName,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if req.Gender != nil {
		gender := entity.Gender(*req.Gender)
		input.Gender = &gender
	}
	if req.DOB != nil {
		dob, err := dto.ParseDate(*req.DOB)
		if err != nil {
			return input, invalidInput(err)
		}
		input.DateOfBirth = dob
	}
	return input, nil
}

// An id that cannot be parsed cannot name a user either.
func pathUserID(c echo.Context) (uuid.UUID, error) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, service.ErrUserNotFound
	}
	return userID, nil
}

func parseLimitOffset(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}
