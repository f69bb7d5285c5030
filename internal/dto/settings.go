package dto

// APIKeyResponse never exposes the full key
type APIKeyResponse struct {
	Key         string  `json:"key"`
	MaskedValue string  `json:"masked_value"`
	Configured  bool    `json:"configured"`
	IsActive    bool    `json:"is_active"`
	Description *string `json:"description"`
	UpdatedAt   *string `json:"updated_at"`
}

// APIKeyUpsertRequest stores one key
type APIKeyUpsertRequest struct {
	Key         string  `json:"key" validate:"required,api_key"`
	Value       string  `json:"value" validate:"required,max=500"`
	IsActive    *bool   `json:"is_active"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// APIKeysUpsertRequest is the body of PUT /api/settings/api-keys
type APIKeysUpsertRequest struct {
	Keys []APIKeyUpsertRequest `json:"keys" validate:"required,min=1,max=3,dive"`
}

// EmailConfigRequest is the body of PUT /api/settings/email.
// A nil password keeps the stored one.
type EmailConfigRequest struct {
	Host             string  `json:"host" validate:"required,hostname|ip"`
	Port             int     `json:"port" validate:"required,min=1,max=65535"`
	Username         string  `json:"username" validate:"max=255"`
	Password         *string `json:"password" validate:"omitempty,max=255"`
	UseTLS           bool    `json:"use_tls"`
	UseSSL           bool    `json:"use_ssl"`
	DefaultFromEmail string  `json:"default_from_email" validate:"omitempty,email"`
}

// EmailConfigResponse never exposes the password
type EmailConfigResponse struct {
	Host             string  `json:"host"`
	Port             int     `json:"port"`
	Username         string  `json:"username"`
	PasswordSet      bool    `json:"password_set"`
	UseTLS           bool    `json:"use_tls"`
	UseSSL           bool    `json:"use_ssl"`
	DefaultFromEmail string  `json:"default_from_email"`
	UpdatedAt        *string `json:"updated_at"`
}

// EmailTestRequest is the body of POST /api/settings/email/test
type EmailTestRequest struct {
	To string `json:"to" validate:"required,email"`
}

// AccessLogResponse is one sign-in event
type AccessLogResponse struct {
	ID        string  `json:"id"`
	UserID    *string `json:"user_id"`
	Email     string  `json:"email"`
	Action    string  `json:"action"`
	IPAddress string  `json:"ip_address"`
	Timestamp string  `json:"timestamp"`
}

// AccessLogListResponse envelope
type AccessLogListResponse struct {
	Logs       []AccessLogResponse `json:"logs"`
	Pagination Pagination          `json:"pagination"`
}
