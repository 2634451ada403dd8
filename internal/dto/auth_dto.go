package dto

import (
	"time"

	"authcore/internal/entity"
)

const DateLayout = "2006-01-02"

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	UserName  string `json:"userName" validate:"required,min=3,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,max=32"`
	Password  string `json:"password" validate:"required,min=6"`
	Gender    string `json:"gender" validate:"omitempty,oneof=male female other"`
	DOB       string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	UserName  string    `json:"userName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Gender    string    `json:"gender,omitempty"`
	DOB       *string   `json:"dob,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RegisterResponse struct {
	User  UserResponse `json:"user"`
	Token *string      `json:"token"`
}

type LoginResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"`
}

type MeResponse struct {
	User UserResponse `json:"user"`
}

// UserResponseFromEntity is the only way a user leaves the service; the hash stays behind.
func UserResponseFromEntity(user *entity.User) UserResponse {
	response := UserResponse{
		ID:        user.ID.String(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		UserName:  user.UserName,
		Email:     user.Email,
		Phone:     user.Phone,
		Gender:    string(user.Gender),
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.DateOfBirth != nil {
		dob := user.DateOfBirth.Format(DateLayout)
		response.DOB = &dob
	}
	return response
}

func UserResponsesFromEntities(users []entity.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, UserResponseFromEntity(&users[i]))
	}
	return responses
}

// ParseDate returns nil for an empty string.
func ParseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
