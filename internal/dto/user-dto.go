package dto

import "github.com/aarondl/null/v8"

type CreateUserDTO struct {
	Username string `json:"username" validate:"required,notblank,max=100"`
	RealName string `json:"realName" validate:"max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,user_role"`
}

type UpdateUserDTO struct {
	Username null.String `json:"username" validate:"omitempty,notblank,max=100"`
	RealName null.String `json:"realName" validate:"omitempty,max=255"`
	Email    null.String `json:"email" validate:"omitempty,email"`
	Password null.String `json:"password" validate:"omitempty,min=6"`
	Role     null.String `json:"role" validate:"omitempty,user_role"`
}

type UpdateProfileDTO struct {
	RealName  null.String `json:"realName" validate:"omitempty,max=255"`
	Email     null.String `json:"email" validate:"omitempty,email"`
	AvatarURL null.String `json:"avatarUrl"`
	Password  null.String `json:"password" validate:"omitempty,min=6"`
}
