package dto

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	UserName  *string `json:"userName" validate:"omitempty,min=3,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	Gender    *string `json:"gender" validate:"omitempty,oneof=male female other"`
	DOB       *string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateUserRequest struct {
	UpdateProfileRequest
	Role     *string `json:"role" validate:"omitempty,oneof=user admin"`
	IsActive *bool   `json:"isActive"`
}
