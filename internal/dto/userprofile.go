package dto

// ProfileUpdateRequest is the body of PUT /api/auth/profile.
// Nil fields are left untouched; "" clears display_name and avatar_url.
type ProfileUpdateRequest struct {
	Username    *string `json:"username" validate:"omitempty,min=3,max=50"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
}

// ChangePasswordRequest is the body of PUT /api/auth/password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// AdminCreateUserRequest is the body of POST /api/admin/users
type AdminCreateUserRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=50"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	IsSuperuser bool    `json:"is_superuser"`
}

// AdminUpdateUserRequest is the body of PUT /api/admin/users/{id}
type AdminUpdateUserRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	Username    *string `json:"username" validate:"omitempty,min=3,max=50"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	Password    *string `json:"password" validate:"omitempty,min=6"`
	IsSuperuser *bool   `json:"is_superuser"`
	IsActive    *bool   `json:"is_active"`
}

// UserListResponse envelope
type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination Pagination     `json:"pagination"`
}
