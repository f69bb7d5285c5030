package dto

// RegisterRequest represents the request payload for user registration
type RegisterRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=50"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// UserResponse represents user data in API responses
type UserResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	IsSuperuser bool    `json:"is_superuser"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// ForgotPasswordRequest starts the password reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPasswordResponse confirms a code was mailed
type ForgotPasswordResponse struct {
	Message   string `json:"message"`
	Email     string `json:"email"`
	ExpiresIn string `json:"expires_in"`
}

// VerifyOTPRequest exchanges the mailed code for a reset token
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// VerifyOTPResponse carries the short-lived reset token
type VerifyOTPResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token"`
	ExpiresIn  string `json:"expires_in"`
}

// ResetPasswordRequest sets a new password
type ResetPasswordRequest struct {
	ResetToken  string `json:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// ResetPasswordResponse confirms the reset
type ResetPasswordResponse struct {
	Message string `json:"message"`
}
